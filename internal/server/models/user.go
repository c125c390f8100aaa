// Package models defines the plain value records persisted by the server.
// Children reference their parent by id only.
package models

import "time"

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	Verified     bool
	CreatedAt    time.Time
}

// VerificationToken is the single pending email-verification credential of
// a user. It is deleted when consumed.
type VerificationToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
