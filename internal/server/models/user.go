// Package models defines server-side records persisted in the database.
// Records are plain values: repositories return them and mutations go back
// through explicit repository calls.
package models

import "time"

// User is an identity that can log in and own tasks.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerID makes a user its own owner of record, so self-only routes go
// through the same ownership check as tasks. A nil user owns nothing (0).
func (u *User) OwnerID() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

// UserUpdate lists the fields a user may change about themselves. Nil means
// "leave as is".
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	IsActive     *bool
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.PasswordHash == nil && u.IsActive == nil
}
