package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

var ErrInvalidPage = errors.New("no live cursor for requested page")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidRole = errors.New("unsupported role")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrUnauthorized = errors.New("unauthorized")
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRecord is the raw record held by the identity provider. The directory
// reads it; mutations happen only through explicit provider calls.
type UserRecord struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	Disabled      bool      `json:"disabled"`
	EmailVerified bool      `json:"email_verified"`
	Role          string    `json:"role,omitempty"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	LastSignIn    time.Time `json:"last_sign_in,omitzero"`
}

// ProfileDocument is the per-role document stored alongside a user. Its shape
// is owned by the profile store; the directory only inspects completeness.
type ProfileDocument map[string]any

// IsComplete reports whether the profile declares itself complete.
func (p ProfileDocument) IsComplete() bool {
	complete, _ := p["isProfileComplete"].(bool)
	return complete
}

// UserView is a record enriched with its profile document. Profile is only
// populated for non-admin records that carry a role.
type UserView struct {
	UserRecord
	Profile ProfileDocument `json:"profile,omitempty"`
}

// ScoredView is a view annotated with a search relevance score.
type ScoredView struct {
	View  UserView
	Score float64
}

// TokenClaims are the verified claims extracted from a bearer token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
	Admin  bool
}

// ComplementaryRole returns the role visible to the given restricted role in
// the two-sided directory.
func ComplementaryRole(role string) (string, bool) {
	switch role {
	case RoleDoctor:
		return RolePatient, true
	case RolePatient:
		return RoleDoctor, true
	}
	return "", false
}

// ProfileCollection maps a role to its profile store collection.
func ProfileCollection(role string) (string, bool) {
	switch role {
	case RoleDoctor:
		return "doctors", true
	case RolePatient:
		return "patients", true
	}
	return "", false
}
