package service

import (
	"errors"

	"github.com/aussiebroadwan/quill/pkg/httpx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrTokenInvalid       = errors.New("token_invalid")
	ErrTokenRevoked       = errors.New("token_revoked")

	// ErrIdentityGone is shared with the middleware so both layers match it.
	ErrIdentityGone = httpx.ErrIdentityGone

	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
)

// InputError carries a client-facing message and matches ErrInvalidInput.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string        { return e.Msg }
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(msg string) error { return &InputError{Msg: msg} }
