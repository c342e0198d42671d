// Package queue carries chat.answered events over RabbitMQ. The API side
// publishes one event per chat request; the consume command records them in
// the audit store or a log file. Events describe the outcome of a request
// and never contain the user's question.
package queue

// ChatAnsweredEvent is published after every /chat request that reached the
// pipeline.
type ChatAnsweredEvent struct {
	EventID    string   `json:"event_id"`
	RequestID  string   `json:"request_id,omitempty"`
	Outcome    string   `json:"outcome"`
	Status     int      `json:"status"`
	QueryChars int      `json:"query_chars"`
	Sections   []string `json:"sections"`
	Model      string   `json:"model,omitempty"`
	OracleMS   int64    `json:"oracle_ms"`
	AnsweredAt string   `json:"answered_at"`
}
