package models

import "time"

// Account is a row of the account table. PasswordHash is the bcrypt hash
// and must never be serialized to clients.
type Account struct {
	ID           string
	Email        string
	Name         *string
	PhoneNumber  *string
	DateOfBirth  *string // YYYY-MM-DD
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfilePatch lists the profile fields a caller may change. Nil fields are
// left as they are.
type ProfilePatch struct {
	Name        *string
	PhoneNumber *string
	DateOfBirth *string
}
