package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string // lower-cased, unique, the login key
	PasswordHash string // argon2id encoded, never serialized to clients
	Role         Role
	Department   string
	Position     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch carries the fields an admin may change on a user. Nil means
// leave unchanged.
type UserPatch struct {
	Name       *string
	Role       *Role
	Department *string
	Position   *string
}
