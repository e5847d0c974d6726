package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "domain error passes through", err: NewConflict("stale", nil), wantCode: "CONFLICT", wantStatus: http.StatusConflict},
		{name: "wrapped domain error", err: fmt.Errorf("ctx: %w", NewForbidden("nope")), wantCode: "FORBIDDEN", wantStatus: http.StatusForbidden},
		{name: "pgx no rows", err: pgx.ErrNoRows, wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound},
		{name: "fiber error", err: fiber.NewError(http.StatusForbidden, "admin role required"), wantCode: "Forbidden", wantStatus: http.StatusForbidden},
		{name: "unknown error", err: errors.New("boom"), wantCode: "INTERNAL_ERROR", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestBadRequestUnwraps(t *testing.T) {
	cause := errors.New("queue is at full capacity")
	err := NewBadRequest("QUEUE_FULL", "Queue is at full capacity", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadRequest, ToDomainError(err).HTTPStatus)
}
