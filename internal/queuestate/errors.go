package queuestate

import "errors"

var (
	ErrNotActive     = errors.New("queue is not currently active")
	ErrFull          = errors.New("queue is at full capacity")
	ErrAlreadyMember = errors.New("user is already in this queue")
	ErrNotMember     = errors.New("user is not in this queue")
	ErrEmpty         = errors.New("no users in queue")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("queue not found")
	ErrInvalidQueue  = errors.New("invalid queue")
)
