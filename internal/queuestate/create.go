package queuestate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/queuely/queue-service/internal/domain"
)

const (
	MaxNameLength        = 50
	MaxDescriptionLength = 25
	MinCapacity          = 10
	MaxCapacity          = 200
	DefaultCapacity      = 50
)

// CreateInput describes a new queue requested by an admin.
type CreateInput struct {
	Name        string
	Description string
	Category    domain.QueueCategory
	Capacity    int
}

// NewQueue validates input and returns an active, empty queue owned by ownerID.
func NewQueue(ownerID string, input CreateInput) (*domain.Queue, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidQueue)
	case utf8.RuneCountInString(name) > MaxNameLength:
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidQueue, MaxNameLength)
	case description == "":
		return nil, fmt.Errorf("%w: description is required", ErrInvalidQueue)
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidQueue, MaxDescriptionLength)
	case !input.Category.Valid():
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidQueue, input.Category)
	}

	capacity := input.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < MinCapacity || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: capacity must be between %d and %d", ErrInvalidQueue, MinCapacity, MaxCapacity)
	}

	return &domain.Queue{
		Name:        name,
		Description: description,
		Category:    input.Category,
		Capacity:    capacity,
		Status:      domain.QueueStatusActive,
		CreatedBy:   ownerID,
		Members:     []domain.Membership{},
		Served:      []domain.ServedRecord{},
	}, nil
}
