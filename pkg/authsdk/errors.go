package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/quill/pkg/httpx"
)

// Kind classifies every failure the SDK and the server agree on.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindTokenInvalid
	KindTokenRevoked
	KindIdentityGone
	KindRoleDenied
	KindRefreshExhausted
	KindNetworkFailure

	KindInvalidRequest
	KindNotFound
	KindConflict
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTokenInvalid:
		return "token_invalid"
	case KindTokenRevoked:
		return "token_revoked"
	case KindIdentityGone:
		return "identity_gone"
	case KindRoleDenied:
		return "role_denied"
	case KindRefreshExhausted:
		return "refresh_exhausted"
	case KindNetworkFailure:
		return "network_failure"
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// wireCode is the "error" field written for k. The three session failures
// and bad credentials all look the same on the wire.
func (k Kind) wireCode() string {
	switch k {
	case KindInvalidCredentials, KindTokenInvalid, KindTokenRevoked, KindIdentityGone:
		return "unauthorized"
	case KindRoleDenied:
		return "forbidden"
	case KindInvalidRequest, KindNotFound, KindConflict:
		return k.String()
	default:
		return "server_error"
	}
}

// Error is the error type returned by the SDK and written by the server.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so callers can write
// errors.Is(err, authsdk.ErrTokenInvalid).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WriteError writes e as {"error": code, "message": msg}.
func (e *Error) WriteError(w http.ResponseWriter) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	httpx.WriteError(w, status, e.Kind.wireCode(), e.Message)
}

const sessionExpiredMessage = "session expired, please log in again"

var (
	ErrInvalidCredentials = &Error{
		Kind:       KindInvalidCredentials,
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid email or password",
	}

	// ErrTokenInvalid, ErrTokenRevoked and ErrIdentityGone write identical
	// responses. The distinction only exists in server logs.
	ErrTokenInvalid = &Error{
		Kind:       KindTokenInvalid,
		StatusCode: http.StatusUnauthorized,
		Message:    sessionExpiredMessage,
	}
	ErrTokenRevoked = &Error{
		Kind:       KindTokenRevoked,
		StatusCode: http.StatusUnauthorized,
		Message:    sessionExpiredMessage,
	}
	ErrIdentityGone = &Error{
		Kind:       KindIdentityGone,
		StatusCode: http.StatusUnauthorized,
		Message:    sessionExpiredMessage,
	}

	ErrRoleDenied = &Error{
		Kind:       KindRoleDenied,
		StatusCode: http.StatusForbidden,
		Message:    "forbidden resource",
	}

	// ErrRefreshExhausted never crosses the wire.
	ErrRefreshExhausted = &Error{
		Kind:    KindRefreshExhausted,
		Message: "max refresh attempts reached, please log in again",
	}

	ErrInvalidRequest = &Error{
		Kind:       KindInvalidRequest,
		StatusCode: http.StatusBadRequest,
		Message:    "the request is malformed or missing required fields",
	}
	ErrNotFound = &Error{
		Kind:       KindNotFound,
		StatusCode: http.StatusNotFound,
		Message:    "resource not found",
	}
	ErrConflict = &Error{
		Kind:       KindConflict,
		StatusCode: http.StatusConflict,
		Message:    "resource already exists",
	}
	ErrServerError = &Error{
		Kind:       KindServerError,
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
	}
)

const (
	refreshFailedMessage = "failed to refresh token"
	unexpectedMessage    = "an unexpected error occurred"
)

// networkError wraps a transport failure.
func networkError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindNetworkFailure, Message: unexpectedMessage, Err: err}
}

// errorFromResponse converts a non-2xx response into an *Error. on401 picks
// the kind for 401, which depends on the endpoint called.
func errorFromResponse(status int, body []byte, on401 Kind, fallback string) *Error {
	var wire httpx.ErrorBody
	_ = json.Unmarshal(body, &wire)

	msg := wire.Message
	if msg == "" {
		msg = fallback
	}

	kind := KindServerError
	switch status {
	case http.StatusUnauthorized:
		kind = on401
	case http.StatusForbidden:
		kind = KindRoleDenied
	case http.StatusBadRequest:
		kind = KindInvalidRequest
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusConflict:
		kind = KindConflict
	}
	return &Error{Kind: kind, StatusCode: status, Message: msg}
}
