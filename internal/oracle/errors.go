package oracle

import (
	"errors"
	"fmt"
	"time"
)

// Failure kinds returned by Client.Generate. Match them with errors.Is.
var (
	ErrUnreachable   = errors.New("oracle unreachable")
	ErrTimeout       = errors.New("oracle timeout")
	ErrUnauthorized  = errors.New("oracle rejected credentials")
	ErrRateLimited   = errors.New("oracle rate limited")
	ErrEmptyResponse = errors.New("oracle returned no content")
	ErrUpstream      = errors.New("oracle upstream error")
)

// Error carries the HTTP details of a failed call. Unwrap yields one of the
// Err* kinds above.
type Error struct {
	Kind       error
	Status     int
	RetryAfter time.Duration
	Message    string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// RetryAfter extracts the server-suggested wait from err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var oe *Error
	if errors.As(err, &oe) && oe.RetryAfter > 0 {
		return oe.RetryAfter, true
	}
	return 0, false
}
