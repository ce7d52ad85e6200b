package ports

import (
	"context"

	"github.com/caredesk/user-directory/internal/core/domain"
)

// UserPage is one provider batch. NextToken is an opaque, forward-only
// continuation cursor; empty means the enumeration is exhausted.
type UserPage struct {
	Users     []domain.UserRecord
	NextToken string
}

// CreateUserInput carries the data needed to provision a new identity.
type CreateUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
	Admin       bool
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Email         *string
	DisplayName   *string
	Disabled      *bool
	EmailVerified *bool
}

// IdentityProvider abstracts the external identity system. Continuation
// tokens cannot jump backward or to an arbitrary offset; the cursor cache
// exists to bridge logical page numbers onto this API.
type IdentityProvider interface {
	ListUsers(ctx context.Context, pageSize int, pageToken string) (*UserPage, error)
	// GetUsers resolves a batch of ids, reporting misses per id rather than
	// failing the batch.
	GetUsers(ctx context.Context, ids []string) (found []domain.UserRecord, missing []string, err error)
	VerifyToken(ctx context.Context, bearer string) (*domain.TokenClaims, error)
	VerifyPassword(ctx context.Context, email, password string) (*domain.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	SetCustomClaims(ctx context.Context, id string, claims map[string]any) error
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.UserRecord, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.UserRecord, error)
	DeleteUsers(ctx context.Context, ids []string) error
}
