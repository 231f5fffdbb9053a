package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("expense lookup: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"validation", Validationf("amount is required"), http.StatusBadRequest},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"conflict", Conflictf("email already registered"), http.StatusConflict},
		{"rate limited", ErrTooManyRequests, http.StatusTooManyRequests},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"pg unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "description is required", PublicMessage(fmt.Errorf("create: %w", Validationf("description is required"))))
	assert.Equal(t, ErrNotFound.Error(), PublicMessage(fmt.Errorf("find: %w", ErrNotFound)))
	assert.Equal(t, ErrInternalServer.Error(), PublicMessage(errors.New("dial tcp: connection refused")))
}

func TestRespondWithDomainError(t *testing.T) {
	t.Cleanup(func() { SetExposeErrorDetails(false) })

	err := fmt.Errorf("sqlUserRepository.FindByID: %w", NotFoundf("user not found"))

	SetExposeErrorDetails(false)
	rr := httptest.NewRecorder()
	RespondWithDomainError(rr, err)
	require.Equal(t, http.StatusNotFound, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body.Error)
	assert.Empty(t, body.Detail)

	SetExposeErrorDetails(true)
	rr = httptest.NewRecorder()
	RespondWithDomainError(rr, err)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "sqlUserRepository.FindByID: user not found", body.Detail)
}
