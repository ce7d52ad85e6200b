package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

// AccountService implements the pass-through account verbs: provisioning,
// updates, enable/disable, bulk deletion, and password login.
type AccountService struct {
	provider ports.IdentityProvider
	profiles ports.ProfileStore
	log      zerolog.Logger
}

func NewAccountService(provider ports.IdentityProvider, profiles ports.ProfileStore, log zerolog.Logger) *AccountService {
	return &AccountService{provider: provider, profiles: profiles, log: log}
}

// CreateUser provisions a new identity, stamps its role claims, and seeds an
// empty profile document for roled non-admin accounts.
func (s *AccountService) CreateUser(ctx context.Context, in ports.CreateAccountInput) (*domain.UserRecord, error) {
	switch in.Role {
	case domain.RoleAdmin, domain.RoleDoctor, domain.RolePatient:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, in.Role)
	}

	rec, err := s.provider.CreateUser(ctx, ports.CreateUserInput{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
		Role:        in.Role,
		Admin:       in.Role == domain.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	claims := map[string]any{"role": in.Role, "admin": in.Role == domain.RoleAdmin}
	if err := s.provider.SetCustomClaims(ctx, rec.ID, claims); err != nil {
		return nil, fmt.Errorf("set claims for %s: %w", rec.ID, err)
	}
	rec.Role = in.Role
	rec.IsAdmin = in.Role == domain.RoleAdmin

	if collection, ok := domain.ProfileCollection(in.Role); ok {
		doc := domain.ProfileDocument{"isProfileComplete": false}
		if err := s.profiles.Set(ctx, collection, rec.ID, doc); err != nil {
			// The account exists; a missing seed document only delays
			// directory visibility until the profile is saved.
			s.log.Warn().Err(err).Str("user_id", rec.ID).Msg("failed to seed profile document")
		}
	}

	s.log.Info().Str("user_id", rec.ID).Str("role", in.Role).Msg("user created")
	return rec, nil
}

func (s *AccountService) UpdateUser(ctx context.Context, id string, patch ports.UpdateAccountInput) (*domain.UserRecord, error) {
	return s.provider.UpdateUser(ctx, id, ports.UserPatch{
		Email:       patch.Email,
		DisplayName: patch.DisplayName,
	})
}

func (s *AccountService) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.UserRecord, error) {
	rec, err := s.provider.UpdateUser(ctx, id, ports.UserPatch{Disabled: &disabled})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Bool("disabled", disabled).Msg("user availability changed")
	return rec, nil
}

// DeleteUsers removes the identities and their profile documents. Profile
// cleanup runs against every role collection since deleted records no
// longer reveal their role.
func (s *AccountService) DeleteUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.provider.DeleteUsers(ctx, ids); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	for _, role := range []string{domain.RoleDoctor, domain.RolePatient} {
		collection, _ := domain.ProfileCollection(role)
		if err := s.profiles.BatchDelete(ctx, collection, ids); err != nil {
			s.log.Warn().Err(err).Str("collection", collection).Msg("profile cleanup failed")
		}
	}
	s.log.Info().Int("count", len(ids)).Msg("users deleted")
	return nil
}

// Login verifies the password and mints a custom token for the account.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *domain.UserRecord, error) {
	rec, err := s.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.provider.CustomToken(ctx, rec.ID)
	if err != nil {
		return "", nil, fmt.Errorf("mint token for %s: %w", rec.ID, err)
	}
	return token, rec, nil
}
