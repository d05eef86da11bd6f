package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"validation", &ValidationError{Field: "holder_name"}, KindValidation},
		{"wrapped not found", fmt.Errorf("get: %w", &NotFoundError{Resource: "licenses", ID: "x"}), KindNotFound},
		{"conflict", &ConflictError{Resource: "licenses", ID: "x"}, KindConflict},
		{"unauthorized", &UnauthorizedError{}, KindUnauthorized},
		{"forbidden", &ForbiddenError{}, KindForbidden},
		{"server", &ServerError{Status: 503}, KindServer},
		{"network", &NetworkError{Op: "GET /licenses", Err: context.DeadlineExceeded}, KindNetwork},
		{"cancelled", &UserCancelledError{Op: "sign"}, KindCancelled},
		{"transition", &InvalidTransitionError{From: "revoke", To: "active"}, KindTransition},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFromStatus(t *testing.T) {
	assert.Equal(t, KindUnauthorized, Classify(FromStatus(http.StatusUnauthorized, "")))
	assert.Equal(t, KindForbidden, Classify(FromStatus(http.StatusForbidden, "")))
	assert.Equal(t, KindNotFound, Classify(FromStatus(http.StatusNotFound, "")))
	assert.Equal(t, KindServer, Classify(FromStatus(http.StatusServiceUnavailable, "down")))
	assert.Equal(t, KindValidation, Classify(FromStatus(http.StatusBadRequest, "")))
	assert.Equal(t, KindServer, Classify(FromStatus(http.StatusTooManyRequests, "slow down")))
	assert.NoError(t, FromStatus(http.StatusOK, ""))

	var se *ServerError
	assert.ErrorAs(t, FromStatus(502, ""), &se)
	assert.Equal(t, 502, se.StatusCode())
}

func TestNetworkErrorUnwrap(t *testing.T) {
	err := &NetworkError{Op: "GET", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestToResponse(t *testing.T) {
	resp := ToResponse(&ValidationError{Field: "plate_number", Message: "is required"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "plate_number", resp.Field)
	assert.Equal(t, "is required", resp.Message)

	resp = ToResponse(&NotFoundError{Resource: "vehicles", ID: "v9"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "v9", resp.ID)
	assert.Equal(t, `vehicle "v9" not found`, resp.Message)

	resp = ToResponse(errors.New("pq: connection reset at 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", resp.Message)
	assert.Empty(t, resp.Hint)
}

func TestFromResponse_RoundTrip(t *testing.T) {
	errs := []error{
		&ValidationError{Field: "points", Message: "must be between 0 and 12"},
		&NotFoundError{Resource: "licenses", ID: "lic-404"},
		&ConflictError{Resource: "vehicles", ID: "veh-001"},
		&InvalidTransitionError{Resource: "licenses", From: "revoke", To: "active"},
		&UnauthorizedError{Message: "token expired"},
		&ForbiddenError{Message: "viewer accounts are read-only"},
		&ServerError{Status: http.StatusServiceUnavailable, Message: "maintenance"},
	}
	for _, want := range errs {
		resp := ToResponse(want)
		got := FromResponse(resp.StatusCode, resp)
		assert.Equal(t, want, got)
	}
}

func TestFromResponse_NilBody(t *testing.T) {
	assert.Equal(t, KindServer, Classify(FromResponse(http.StatusBadGateway, nil)))
}
