package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // argon2id PHC, or bcrypt for imported accounts
	Role         Role
	CreatedBy    string // empty for the bootstrap admin
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch holds the optional fields of a user update. Nil means unchanged.
type UserPatch struct {
	Name     *string
	Password *string
	Role     *Role
}
