package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleClient Role = "client"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// Route allow-sets.
var (
	ContentReaders = []string{string(RoleAdmin), string(RoleEditor), string(RoleClient)}
	ContentWriters = []string{string(RoleAdmin), string(RoleEditor)}
	UserManagers   = []string{string(RoleAdmin)}
)

// ParseRole normalises s and rejects anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleClient:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
