package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/public-health-assistant/internal/queue"
)

// ChatEventRepo stores consumed chat.answered events in the chat_events
// table. Rows are append-only; there is no update path.
type ChatEventRepo struct {
	db *sql.DB
}

// NewChatEventRepo returns a ChatEventRepo bound to db.
func NewChatEventRepo(db *sql.DB) *ChatEventRepo { return &ChatEventRepo{db: db} }

// ChatEventRecord mirrors a row of chat_events.
type ChatEventRecord struct {
	EventID    string
	RequestID  string
	Outcome    string
	Status     int
	QueryChars int
	Sections   string // comma separated section names
	Model      string
	OracleMS   int64
	AnsweredAt time.Time
}

const createChatEvents = `CREATE TABLE IF NOT EXISTS chat_events (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    event_id CHAR(36) NOT NULL,
    request_id VARCHAR(64) NOT NULL DEFAULT '',
    outcome VARCHAR(32) NOT NULL,
    status SMALLINT NOT NULL,
    query_chars INT NOT NULL,
    sections VARCHAR(255) NOT NULL DEFAULT '',
    model VARCHAR(64) NOT NULL DEFAULT '',
    oracle_ms BIGINT NOT NULL DEFAULT 0,
    answered_at DATETIME NOT NULL,
    UNIQUE KEY uq_chat_events_event_id (event_id),
    KEY idx_chat_events_answered_at (answered_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the chat_events table when it does not exist.
func (r *ChatEventRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChatEvents); err != nil {
		return fmt.Errorf("create chat_events: %w", err)
	}
	return nil
}

// Insert stores rec. A duplicate event_id (a redelivered message) is ignored.
func (r *ChatEventRepo) Insert(ctx context.Context, rec ChatEventRecord) error {
	const q = `INSERT IGNORE INTO chat_events
        (event_id, request_id, outcome, status, query_chars, sections, model, oracle_ms, answered_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rec.EventID, rec.RequestID, rec.Outcome, rec.Status,
		rec.QueryChars, rec.Sections, rec.Model, rec.OracleMS, rec.AnsweredAt.UTC())
	return err
}

// Record implements queue.Sink.
func (r *ChatEventRepo) Record(ctx context.Context, ev queue.ChatAnsweredEvent) error {
	if ev.EventID == "" || ev.Outcome == "" {
		return fmt.Errorf("%w: event_id=%q outcome=%q", ErrInvalidEvent, ev.EventID, ev.Outcome)
	}
	at, err := time.Parse(time.RFC3339, ev.AnsweredAt)
	if err != nil {
		at = time.Now().UTC()
	}
	return r.Insert(ctx, ChatEventRecord{
		EventID:    ev.EventID,
		RequestID:  ev.RequestID,
		Outcome:    ev.Outcome,
		Status:     ev.Status,
		QueryChars: ev.QueryChars,
		Sections:   strings.Join(ev.Sections, ","),
		Model:      ev.Model,
		OracleMS:   ev.OracleMS,
		AnsweredAt: at,
	})
}

// CountByOutcome returns the number of events per outcome answered at or
// after since.
func (r *ChatEventRepo) CountByOutcome(ctx context.Context, since time.Time) (map[string]int64, error) {
	const q = `SELECT outcome, COUNT(*) FROM chat_events WHERE answered_at >= ? GROUP BY outcome ORDER BY outcome`
	rows, err := r.db.QueryContext(ctx, q, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}
