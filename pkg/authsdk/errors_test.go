package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrTokenRevoked.WithMessage("custom"))
	require.ErrorIs(t, err, ErrTokenRevoked)
	require.NotErrorIs(t, err, ErrTokenInvalid)

	// WithMessage must not mutate the sentinel.
	require.Equal(t, sessionExpiredMessage, ErrTokenRevoked.Message)

	inner := errors.New("dial tcp: refused")
	netErr := networkError(inner)
	require.Equal(t, KindNetworkFailure, netErr.Kind)
	require.ErrorIs(t, netErr, inner)
	require.Same(t, ErrRoleDenied, networkError(ErrRoleDenied))
}

func TestWriteErrorWireShape(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{ErrTokenInvalid, http.StatusUnauthorized, "unauthorized"},
		{ErrTokenRevoked, http.StatusUnauthorized, "unauthorized"},
		{ErrIdentityGone, http.StatusUnauthorized, "unauthorized"},
		{ErrRoleDenied, http.StatusForbidden, "forbidden"},
		{ErrNotFound, http.StatusNotFound, "not_found"},
		{ErrConflict, http.StatusConflict, "conflict"},
		{ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{ErrRefreshExhausted, http.StatusInternalServerError, "server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.err.WriteError(rec)
			require.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, tt.code, body.Error)
			require.Equal(t, tt.err.Message, body.Message)
		})
	}
}

func TestSessionFailuresIndistinguishableOnWire(t *testing.T) {
	var bodies []string
	for _, err := range []*Error{ErrTokenInvalid, ErrTokenRevoked, ErrIdentityGone} {
		rec := httptest.NewRecorder()
		err.WriteError(rec)
		bodies = append(bodies, rec.Body.String())
	}
	require.Equal(t, bodies[0], bodies[1])
	require.Equal(t, bodies[0], bodies[2])
}

func TestErrorFromResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		on401  Kind
		want   Kind
		msg    string
	}{
		{"login 401", 401, `{"error":"unauthorized","message":"invalid email or password"}`,
			KindInvalidCredentials, KindInvalidCredentials, "invalid email or password"},
		{"refresh 401 empty body", 401, ``, KindTokenInvalid, KindTokenInvalid, refreshFailedMessage},
		{"forbidden", 403, `{"error":"forbidden","message":"forbidden resource"}`,
			KindTokenInvalid, KindRoleDenied, "forbidden resource"},
		{"bad request", 400, `{"error":"invalid_request","message":"title is required"}`,
			KindTokenInvalid, KindInvalidRequest, "title is required"},
		{"not found", 404, `{}`, KindTokenInvalid, KindNotFound, refreshFailedMessage},
		{"conflict", 409, `{}`, KindTokenInvalid, KindConflict, refreshFailedMessage},
		{"unavailable", 503, `<html>`, KindTokenInvalid, KindServerError, refreshFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errorFromResponse(tt.status, []byte(tt.body), tt.on401, refreshFailedMessage)
			require.Equal(t, tt.want, err.Kind)
			require.Equal(t, tt.status, err.StatusCode)
			require.Equal(t, tt.msg, err.Message)
		})
	}
}
