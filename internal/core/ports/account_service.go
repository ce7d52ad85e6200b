package ports

import (
	"context"

	"github.com/caredesk/user-directory/internal/core/domain"
)

// CreateAccountInput carries the data for provisioning a directory account.
type CreateAccountInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// UpdateAccountInput is a partial account update; nil fields are untouched.
type UpdateAccountInput struct {
	Email       *string
	DisplayName *string
}

// AccountService covers the pass-through account verbs against the identity
// provider and profile store.
type AccountService interface {
	CreateUser(ctx context.Context, input CreateAccountInput) (*domain.UserRecord, error)
	UpdateUser(ctx context.Context, id string, patch UpdateAccountInput) (*domain.UserRecord, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*domain.UserRecord, error)
	DeleteUsers(ctx context.Context, ids []string) error
	Login(ctx context.Context, email, password string) (string, *domain.UserRecord, error)
}
