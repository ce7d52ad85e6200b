package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

type stubProvider struct {
	createFn         func(ctx context.Context, input ports.CreateUserInput) (*domain.UserRecord, error)
	updateFn         func(ctx context.Context, id string, patch ports.UserPatch) (*domain.UserRecord, error)
	deleteFn         func(ctx context.Context, ids []string) error
	verifyPasswordFn func(ctx context.Context, email, password string) (*domain.UserRecord, error)
	customTokenFn    func(ctx context.Context, uid string) (string, error)
	setClaimsFn      func(ctx context.Context, id string, claims map[string]any) error
	claimsByID       map[string]map[string]any
}

func (s *stubProvider) ListUsers(context.Context, int, string) (*ports.UserPage, error) {
	return &ports.UserPage{}, nil
}

func (s *stubProvider) GetUsers(context.Context, []string) ([]domain.UserRecord, []string, error) {
	return nil, nil, nil
}

func (s *stubProvider) VerifyToken(context.Context, string) (*domain.TokenClaims, error) {
	return nil, domain.ErrUnauthorized
}

func (s *stubProvider) VerifyPassword(ctx context.Context, email, password string) (*domain.UserRecord, error) {
	return s.verifyPasswordFn(ctx, email, password)
}

func (s *stubProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	return s.customTokenFn(ctx, uid)
}

func (s *stubProvider) SetCustomClaims(ctx context.Context, id string, claims map[string]any) error {
	if s.setClaimsFn != nil {
		return s.setClaimsFn(ctx, id, claims)
	}
	if s.claimsByID == nil {
		s.claimsByID = make(map[string]map[string]any)
	}
	s.claimsByID[id] = claims
	return nil
}

func (s *stubProvider) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.UserRecord, error) {
	return s.createFn(ctx, input)
}

func (s *stubProvider) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.UserRecord, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubProvider) DeleteUsers(ctx context.Context, ids []string) error {
	return s.deleteFn(ctx, ids)
}

func TestAccountService_CreateUser_SeedsProfileAndClaims(t *testing.T) {
	provider := &stubProvider{
		createFn: func(_ context.Context, input ports.CreateUserInput) (*domain.UserRecord, error) {
			if input.Admin {
				t.Fatalf("doctor account must not carry the admin claim")
			}
			return &domain.UserRecord{ID: "u1", Email: input.Email}, nil
		},
	}
	store := newStubProfileStore()
	svc := NewAccountService(provider, store, zerolog.Nop())

	rec, err := svc.CreateUser(context.Background(), ports.CreateAccountInput{
		Email:       "doc@example.com",
		Password:    "longenough",
		DisplayName: "Dr. Who",
		Role:        domain.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Role != domain.RoleDoctor || rec.IsAdmin {
		t.Fatalf("record not stamped with role: %+v", rec)
	}

	claims := provider.claimsByID["u1"]
	if claims == nil || claims["role"] != domain.RoleDoctor || claims["admin"] != false {
		t.Fatalf("unexpected claims: %v", claims)
	}

	doc, ok := store.docs["doctors/u1"]
	if !ok {
		t.Fatal("profile document not seeded")
	}
	if doc.IsComplete() {
		t.Fatal("seeded profile must start incomplete")
	}
}

func TestAccountService_CreateUser_AdminSkipsProfile(t *testing.T) {
	provider := &stubProvider{
		createFn: func(_ context.Context, input ports.CreateUserInput) (*domain.UserRecord, error) {
			if !input.Admin {
				t.Fatalf("admin account must carry the admin claim")
			}
			return &domain.UserRecord{ID: "a1", Email: input.Email}, nil
		},
	}
	store := newStubProfileStore()
	svc := NewAccountService(provider, store, zerolog.Nop())

	if _, err := svc.CreateUser(context.Background(), ports.CreateAccountInput{
		Email: "root@example.com", Password: "longenough", Role: domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.setCalls) != 0 {
		t.Fatalf("admin accounts have no profile collection, seeded %v", store.setCalls)
	}
}

func TestAccountService_CreateUser_UnknownRole(t *testing.T) {
	svc := NewAccountService(&stubProvider{
		createFn: func(context.Context, ports.CreateUserInput) (*domain.UserRecord, error) {
			t.Fatal("provider must not be called for an unknown role")
			return nil, nil
		},
	}, newStubProfileStore(), zerolog.Nop())

	_, err := svc.CreateUser(context.Background(), ports.CreateAccountInput{Role: "nurse"})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAccountService_CreateUser_ProfileSeedFailureIsNonFatal(t *testing.T) {
	provider := &stubProvider{
		createFn: func(context.Context, ports.CreateUserInput) (*domain.UserRecord, error) {
			return &domain.UserRecord{ID: "u1"}, nil
		},
	}
	store := newStubProfileStore()
	store.setErr = errors.New("store down")
	svc := NewAccountService(provider, store, zerolog.Nop())

	rec, err := svc.CreateUser(context.Background(), ports.CreateAccountInput{
		Email: "p@example.com", Password: "longenough", Role: domain.RolePatient,
	})
	if err != nil {
		t.Fatalf("seed failure must not fail account creation: %v", err)
	}
	if rec.ID != "u1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestAccountService_SetDisabled(t *testing.T) {
	var gotPatch ports.UserPatch
	provider := &stubProvider{
		updateFn: func(_ context.Context, id string, patch ports.UserPatch) (*domain.UserRecord, error) {
			gotPatch = patch
			return &domain.UserRecord{ID: id, Disabled: *patch.Disabled}, nil
		},
	}
	svc := NewAccountService(provider, newStubProfileStore(), zerolog.Nop())

	rec, err := svc.SetDisabled(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if gotPatch.Disabled == nil || !*gotPatch.Disabled || gotPatch.Email != nil {
		t.Fatalf("patch must only touch disabled: %+v", gotPatch)
	}
	if !rec.Disabled {
		t.Fatal("record not disabled")
	}
}

func TestAccountService_DeleteUsers_CleansBothCollections(t *testing.T) {
	var deleted []string
	provider := &stubProvider{
		deleteFn: func(_ context.Context, ids []string) error {
			deleted = ids
			return nil
		},
	}
	store := newStubProfileStore()
	store.docs["doctors/d1"] = domain.ProfileDocument{}
	store.docs["patients/p1"] = domain.ProfileDocument{}
	svc := NewAccountService(provider, store, zerolog.Nop())

	if err := svc.DeleteUsers(context.Background(), []string{"d1", "p1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("provider delete got %v", deleted)
	}
	// Deleted records no longer reveal their role, so cleanup sweeps every
	// profile collection.
	if len(store.docs) != 0 {
		t.Fatalf("profiles left behind: %v", store.docs)
	}
}

func TestAccountService_Login(t *testing.T) {
	provider := &stubProvider{
		verifyPasswordFn: func(_ context.Context, email, password string) (*domain.UserRecord, error) {
			if password != "secret" {
				return nil, domain.ErrInvalidCredentials
			}
			return &domain.UserRecord{ID: "u1", Email: email}, nil
		},
		customTokenFn: func(_ context.Context, uid string) (string, error) {
			return "token-" + uid, nil
		},
	}
	svc := NewAccountService(provider, newStubProfileStore(), zerolog.Nop())

	token, rec, err := svc.Login(context.Background(), "a@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "token-u1" || rec.ID != "u1" {
		t.Fatalf("unexpected login result: %s %+v", token, rec)
	}

	if _, _, err := svc.Login(context.Background(), "a@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
