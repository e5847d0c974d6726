package service

import (
	"errors"
	"strings"

	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/repository"
	apperrors "github.com/queuely/queue-service/pkg/util/errorutil"
)

// mapQueueError translates state and store errors into client-facing domain errors.
func mapQueueError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case isNotFound(err):
		return apperrors.NewNotFound("queue", nil)
	case errors.Is(err, queuestate.ErrNotActive):
		return apperrors.NewBadRequest("QUEUE_NOT_ACTIVE", "Queue is not currently active", err)
	case errors.Is(err, queuestate.ErrFull):
		return apperrors.NewBadRequest("QUEUE_FULL", "Queue is at full capacity", err)
	case errors.Is(err, queuestate.ErrAlreadyMember):
		return apperrors.NewBadRequest("ALREADY_IN_QUEUE", "You are already in this queue", err)
	case errors.Is(err, queuestate.ErrNotMember):
		return apperrors.NewBadRequest("NOT_IN_QUEUE", "You are not in this queue", err)
	case errors.Is(err, queuestate.ErrEmpty):
		return apperrors.NewBadRequest("QUEUE_EMPTY", "No users in queue", err)
	case errors.Is(err, queuestate.ErrInvalidStatus):
		return apperrors.NewBadRequest("INVALID_STATUS", "Invalid status", err)
	case errors.Is(err, queuestate.ErrInvalidQueue):
		return apperrors.NewValidationError(validationMessage(err), nil)
	case errors.Is(err, repository.ErrRevisionConflict):
		return apperrors.NewConflict("queue was modified by another request, retry", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}

// notSearchable hides whether a queue exists but is paused or completed.
func notSearchable(err error) error {
	if errors.Is(err, queuestate.ErrNotFound) {
		return apperrors.NewNotFound("queue", map[string]any{"reason": "not found or not active"})
	}
	return mapQueueError(err)
}

// validationMessage strips the generic "invalid queue: " prefix.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, queuestate.ErrInvalidQueue.Error()+": "); i >= 0 {
		return msg[i+len(queuestate.ErrInvalidQueue.Error())+2:]
	}
	return msg
}
