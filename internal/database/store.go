package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new immutable message record.
	SaveMessage(ctx context.Context, message *Message) error

	// GetMessagesInWindow retrieves all messages for a chat newer than
	// (now - hours), ordered by ascending timestamp.
	GetMessagesInWindow(ctx context.Context, chatID int64, hours int) ([]Message, error)

	// GetMessagesByAuthor retrieves the most recent 'limit' messages a user
	// wrote in a chat, matched case-insensitively on username, ordered by
	// descending timestamp.
	GetMessagesByAuthor(ctx context.Context, chatID int64, username string, limit int) ([]Message, error)

	// SaveSchedule inserts or overwrites the single schedule row for a chat.
	SaveSchedule(ctx context.Context, chatID int64, timeOfDay string) error

	// GetSchedule retrieves a chat's schedule. Returns nil, nil if not found.
	GetSchedule(ctx context.Context, chatID int64) (*Schedule, error)

	// RemoveSchedule deletes a chat's schedule row. Deleting an absent row
	// is a no-op, not an error.
	RemoveSchedule(ctx context.Context, chatID int64) error

	// ListSchedules retrieves all schedule rows. Used at startup to rebuild
	// the in-memory job registry.
	ListSchedules(ctx context.Context) ([]Schedule, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveMessage inserts a new message record.
func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.Text == "" {
		return fmt.Errorf("message must have non-empty text")
	}
	if message.Timestamp.IsZero() {
		return fmt.Errorf("message must have a non-zero timestamp")
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO messages (chat_id, user_id, username, text, timestamp, message_id, created_at)
        VALUES (:chat_id, :user_id, :username, :text, :timestamp, :message_id, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to save message (chat %d, user %d): %w", message.ChatID, message.UserID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		message.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "user_id", message.UserID, "error", idErr)
	}

	s.logger.DebugContext(ctx, "Message saved successfully",
		"chat_id", message.ChatID, "user_id", message.UserID, "message_id", message.ID)
	return nil
}

// GetMessagesInWindow retrieves all messages for a chat with timestamp newer
// than (now - hours), oldest first so transcripts read chronologically.
func (s *sqlxStore) GetMessagesInWindow(ctx context.Context, chatID int64, hours int) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if hours <= 0 {
		return nil, fmt.Errorf("hours must be positive, got %d", hours)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var messages []Message
	query := `
        SELECT id, chat_id, user_id, username, text, timestamp, message_id, created_at
        FROM messages
        WHERE chat_id = ? AND timestamp >= ?
        ORDER BY timestamp ASC;
    `

	s.logger.DebugContext(ctx, "Fetching message window", "chat_id", chatID, "hours", hours, "cutoff", cutoff)
	err := s.db.SelectContext(ctx, &messages, query, chatID, cutoff)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching message window",
			"chat_id", chatID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting message window", "chat_id", chatID, "hours", hours, "error", err)
		return nil, fmt.Errorf("failed to get messages for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched message window successfully", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

// GetMessagesByAuthor retrieves the most recent messages written by a user in
// a chat. Username matching is case-insensitive.
func (s *sqlxStore) GetMessagesByAuthor(ctx context.Context, chatID int64, username string, limit int) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	if limit <= 0 {
		limit = 100
		s.logger.DebugContext(ctx, "Invalid limit provided, using default", "chat_id", chatID, "default_limit", limit)
	} else if limit > 500 {
		limit = 500
		s.logger.DebugContext(ctx, "Limit exceeded maximum value, capping", "chat_id", chatID, "capped_limit", limit)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var messages []Message
	query := `
        SELECT id, chat_id, user_id, username, text, timestamp, message_id, created_at
        FROM messages
        WHERE chat_id = ? AND LOWER(username) = LOWER(?)
        ORDER BY timestamp DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &messages, query, chatID, username, limit)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching author messages",
			"chat_id", chatID, "username", username, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting author messages",
			"chat_id", chatID, "username", username, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get messages by %q in chat %d: %w", username, chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched author messages successfully",
		"chat_id", chatID, "username", username, "count", len(messages))
	return messages, nil
}

// SaveSchedule inserts or overwrites the schedule row for a chat and refreshes
// updated_at. Saving the same time twice is a no-op in effect.
func (s *sqlxStore) SaveSchedule(ctx context.Context, chatID int64, timeOfDay string) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}
	if timeOfDay == "" {
		return fmt.Errorf("time_of_day cannot be empty")
	}

	query := `
        INSERT INTO schedules (chat_id, time_of_day, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(chat_id) DO UPDATE SET
            time_of_day = excluded.time_of_day,
            updated_at = excluded.updated_at;
    `

	_, err := s.db.ExecContext(ctx, query, chatID, timeOfDay, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving schedule", "chat_id", chatID, "time_of_day", timeOfDay, "error", err)
		return fmt.Errorf("failed to save schedule for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Schedule saved successfully", "chat_id", chatID, "time_of_day", timeOfDay)
	return nil
}

// GetSchedule retrieves a chat's schedule. Returns nil, nil if not found.
func (s *sqlxStore) GetSchedule(ctx context.Context, chatID int64) (*Schedule, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var schedule Schedule
	query := `SELECT chat_id, time_of_day, updated_at FROM schedules WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &schedule, query, chatID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Not found is expected for chats without a daily digest
		s.logger.DebugContext(ctx, "No schedule found", "chat_id", chatID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching schedule",
			"chat_id", chatID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting schedule", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get schedule for chat %d: %w", chatID, err)
	}

	return &schedule, nil
}

// RemoveSchedule deletes the schedule row for a chat.
func (s *sqlxStore) RemoveSchedule(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error removing schedule", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to remove schedule for chat %d: %w", chatID, err)
	}

	count, _ := result.RowsAffected()
	s.logger.DebugContext(ctx, "Schedule removed", "chat_id", chatID, "rows_affected", count)
	return nil
}

// ListSchedules retrieves all schedule rows.
func (s *sqlxStore) ListSchedules(ctx context.Context) ([]Schedule, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var schedules []Schedule
	query := `SELECT chat_id, time_of_day, updated_at FROM schedules`

	err := s.db.SelectContext(ctx, &schedules, query)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing schedules", "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error listing schedules", "error", err)
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed schedules successfully", "count", len(schedules))
	return schedules, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
