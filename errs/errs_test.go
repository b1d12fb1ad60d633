package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDatabaseError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
	}{
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "users_uid_key"`), http.StatusConflict},
		{"gorm duplicated key", errors.New("duplicated key not allowed"), http.StatusConflict},
		{"foreign key", errors.New("violates foreign key constraint"), http.StatusBadRequest},
		{"not found", errors.New("record not found"), http.StatusNotFound},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{"anything else", errors.New("syntax error at or near"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "post", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.ErrorIs(t, err.Cause, tt.cause)
			assert.Contains(t, err.GetFullError(), tt.cause.Error())
		})
	}
}

func TestNewDatabaseError_PassesApiErrThrough(t *testing.T) {
	original := NewForbiddenError("nope")
	assert.Same(t, original, NewDatabaseError("update", "post", fmt.Errorf("wrapped: %w", original)))
}

func TestStatusSentinels(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("post not found")))
	assert.True(t, IsNotFound(NewNotFound("post")))
	assert.True(t, IsForbidden(NewForbiddenError("x")))
	assert.True(t, IsBadRequest(NewMissingRequiredFieldError("title")))
	assert.True(t, IsUnauthorized(NewMissingTokenError()))
	assert.True(t, IsConflict(NewAlreadyExists("user")))
	assert.True(t, IsConflict(NewConflictError("x")))
	assert.False(t, IsNotFound(NewForbiddenError("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestFieldErrors(t *testing.T) {
	missing := NewMissingRequiredFieldError("title")
	assert.True(t, IsMissingRequiredFieldError(missing))
	assert.Equal(t, "title", missing.Field)
	assert.Equal(t, "title is required: missing required field", missing.Error())

	invalid := NewInvalidFieldError("body", "must have at least 10 characters")
	assert.True(t, IsInvalidFieldError(invalid))
	assert.Equal(t, "invalid field: body must have at least 10 characters", invalid.Error())
	assert.Equal(t, "invalid field", invalid.Message())

	assert.True(t, IsInvalidJSONError(NewInvalidJSONError(errors.New("eof"))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, NewMaxBodySizeExceededError(10).StatusCode)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("ctx: %w", NewNotFoundError("x"))))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(NewRateLimitError(15*time.Minute)))
}

func TestTokenErrors(t *testing.T) {
	assert.True(t, IsMissingTokenError(NewMissingTokenError()))
	assert.True(t, IsExpiredTokenError(NewExpiredTokenError()))

	cause := errors.New("bad signature")
	invalid := NewInvalidTokenError(cause)
	assert.True(t, IsInvalidTokenError(invalid))
	assert.Equal(t, "invalid access token -> bad signature", invalid.GetFullError())

	limited := NewRateLimitError(90 * time.Second)
	assert.True(t, IsRateLimitError(limited))
	assert.Equal(t, "too many requests: please try again in 1m30s", limited.Error())
}

func TestServerSideErrors(t *testing.T) {
	cause := errors.New("deadlock detected")

	failed := NewTransactionFailedError("toggle like on post", cause)
	assert.Equal(t, http.StatusInternalServerError, failed.StatusCode)
	assert.ErrorIs(t, failed, ErrTransactionFailed)
	assert.ErrorIs(t, failed, ErrInternal)
	assert.Equal(t, "transaction failed: Transaction failed during toggle like on post -> deadlock detected", failed.GetFullError())

	internal := NewInternalErrorWithCause("an unexpected error occurred", cause)
	assert.Equal(t, "an unexpected error occurred", internal.Message())
	assert.Same(t, cause, internal.Cause)
	assert.ErrorIs(t, internal, ErrInternal)
}
