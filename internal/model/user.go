// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// EmailVerifiedAt is nil until the user clicks the verification link.
// VerificationToken holds the single-use token embedded in that link; it is
// cleared on successful verification, so exactly one of the two is set for
// any account that finished (or never started) the verification flow.
type User struct {
	ID                string     `json:"id"        db:"id"`
	Username          string     `json:"username"  db:"username"`
	FirstName         string     `json:"firstName" db:"first_name"`
	LastName          string     `json:"lastName"  db:"last_name"`
	Email             string     `json:"email"     db:"email"`
	PasswordHash      string     `json:"-"         db:"password_hash"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	EmailVerifiedAt   *time.Time `json:"-"         db:"email_verified_at"`
	VerificationToken *string    `json:"-"         db:"verification_token"`
}

// Verified reports whether the account completed email verification.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// PublicUser is the profile subset returned by the login endpoint.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

// Public returns the profile fields safe to hand to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
	}
}
