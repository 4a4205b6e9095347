package database

import "time"

// Message represents a single archived group chat message. Messages are
// immutable once stored and are only ever read back through time-window
// or per-author queries.
type Message struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Text      string    `db:"text"`
	Timestamp time.Time `db:"timestamp"`
	MessageID int       `db:"message_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Schedule represents a chat's daily digest trigger time. At most one row
// exists per chat; TimeOfDay is a UTC wall-clock time in "HH:MM" form.
type Schedule struct {
	ChatID    int64     `db:"chat_id"`
	TimeOfDay string    `db:"time_of_day"`
	UpdatedAt time.Time `db:"updated_at"`
}
