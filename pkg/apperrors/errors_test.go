package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("client_id is required"), http.StatusBadRequest},
		{"not found", NewNotFoundError("service not found"), http.StatusNotFound},
		{"conflict", NewConflictError("slot taken"), http.StatusConflict},
		{"persistence", NewPersistenceError("insert booking", errors.New("conn reset")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("bookings: create: %w", NewNotFoundError("service not found")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesDriverErrors(t *testing.T) {
	err := NewPersistenceError("insert booking", errors.New("pq: relation bookings does not exist"))
	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, "service not found", PublicMessage(NewNotFoundError("service not found")))
}

func TestUnwrapAndIs(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := fmt.Errorf("bookings: cancel: %w", NewPersistenceError("update booking", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrorTypePersistence))
	assert.False(t, Is(err, ErrorTypeConflict))
	assert.Contains(t, err.Error(), "PERSISTENCE: update booking: deadlock detected")
}
