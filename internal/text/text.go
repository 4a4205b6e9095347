// Package text contains small helpers for transcript formatting and parsing
// of user-supplied time arguments.
package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/tldrbot/tldrbot/internal/database"
)

// MinWindowHours and MaxWindowHours bound every time-window query (1 hour to
// 7 days).
const (
	MinWindowHours = 1
	MaxWindowHours = 168
)

// FormatTranscript turns archived messages into a readable transcript for the
// AI, one line per message with a minute-precision UTC timestamp.
func FormatTranscript(messages []database.Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(fmt.Sprintf("[%s] %s: %s", m.Timestamp.UTC().Format("2006-01-02 15:04"), m.Username, m.Text))
	}
	return sb.String()
}

// ParseClock parses an "HH:MM" 24-hour wall-clock string and returns its hour
// and minute components. A single-digit hour is accepted.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatClock renders an hour and minute as the canonical "HH:MM" form stored
// in the schedules table.
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ClampHours limits a requested window size to [MinWindowHours, MaxWindowHours].
func ClampHours(hours int) int {
	if hours < MinWindowHours {
		return MinWindowHours
	}
	if hours > MaxWindowHours {
		return MaxWindowHours
	}
	return hours
}
