package repository

import "errors"

// ErrInvalidEvent is returned by ChatEventRepo.Record for events without an
// event id or outcome. The consumer drops such messages instead of
// requeueing them.
var ErrInvalidEvent = errors.New("invalid chat event")
