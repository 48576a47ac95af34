package authsdk

import (
	"strings"
)

const maxPasswordLen = 128

// Validate reports the first missing or oversized field.
func (r LoginRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return ErrInvalidRequest.WithMessage("email is required")
	case r.Password == "":
		return ErrInvalidRequest.WithMessage("password is required")
	case len(r.Password) > maxPasswordLen:
		return ErrInvalidRequest.WithMessage("password too long (max 128)")
	}
	return nil
}

func (r RegisterRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return ErrInvalidRequest.WithMessage("email is required")
	case strings.TrimSpace(r.Name) == "":
		return ErrInvalidRequest.WithMessage("name is required")
	case len(strings.TrimSpace(r.Name)) > 64:
		return ErrInvalidRequest.WithMessage("name too long (max 64)")
	case len(r.Password) < 8:
		return ErrInvalidRequest.WithMessage("password too short (min 8)")
	case len(r.Password) > maxPasswordLen:
		return ErrInvalidRequest.WithMessage("password too long (max 128)")
	}
	return nil
}

func (r BootstrapRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return ErrInvalidRequest.WithMessage("email is required")
	case r.Password == "":
		return ErrInvalidRequest.WithMessage("password is required")
	case len(r.Password) < 8:
		return ErrInvalidRequest.WithMessage("password too short (min 8)")
	case len(r.Password) > maxPasswordLen:
		return ErrInvalidRequest.WithMessage("password too long (max 128)")
	case len(strings.TrimSpace(r.Name)) > 64:
		return ErrInvalidRequest.WithMessage("name too long (max 64)")
	}
	return nil
}

func (r CreateUserRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return ErrInvalidRequest.WithMessage("email is required")
	case strings.TrimSpace(r.Name) == "":
		return ErrInvalidRequest.WithMessage("name is required")
	case len(strings.TrimSpace(r.Name)) > 64:
		return ErrInvalidRequest.WithMessage("name too long (max 64)")
	case r.Password == "":
		return ErrInvalidRequest.WithMessage("password is required")
	case len(r.Password) > maxPasswordLen:
		return ErrInvalidRequest.WithMessage("password too long (max 128)")
	case r.Role == "":
		return ErrInvalidRequest.WithMessage("role is required")
	}
	return nil
}

func (r UpdateUserRequest) Validate() error {
	if r.Name == nil && r.Password == nil && r.Role == nil {
		return ErrInvalidRequest.WithMessage("at least one of name, password or role is required")
	}
	if r.Password != nil && len(*r.Password) > maxPasswordLen {
		return ErrInvalidRequest.WithMessage("password too long (max 128)")
	}
	return nil
}

func (r CreateContentRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrInvalidRequest.WithMessage("title is required")
	}
	return nil
}

func (r UpdateContentRequest) Validate() error {
	if r.Title == nil && r.Blocks == nil {
		return ErrInvalidRequest.WithMessage("at least one of title or blocks is required")
	}
	return nil
}
