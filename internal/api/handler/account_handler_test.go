package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

type stubAccountService struct {
	createFn      func(ctx context.Context, input ports.CreateAccountInput) (*domain.UserRecord, error)
	updateFn      func(ctx context.Context, id string, patch ports.UpdateAccountInput) (*domain.UserRecord, error)
	setDisabledFn func(ctx context.Context, id string, disabled bool) (*domain.UserRecord, error)
	deleteFn      func(ctx context.Context, ids []string) error
	loginFn       func(ctx context.Context, email, password string) (string, *domain.UserRecord, error)
}

func (s *stubAccountService) CreateUser(ctx context.Context, input ports.CreateAccountInput) (*domain.UserRecord, error) {
	return s.createFn(ctx, input)
}

func (s *stubAccountService) UpdateUser(ctx context.Context, id string, patch ports.UpdateAccountInput) (*domain.UserRecord, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubAccountService) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.UserRecord, error) {
	return s.setDisabledFn(ctx, id, disabled)
}

func (s *stubAccountService) DeleteUsers(ctx context.Context, ids []string) error {
	return s.deleteFn(ctx, ids)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (string, *domain.UserRecord, error) {
	return s.loginFn(ctx, email, password)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubAccountService{
		createFn: func(ctx context.Context, input ports.CreateAccountInput) (*domain.UserRecord, error) {
			if input.Email != "doc@example.com" || input.Role != domain.RoleDoctor {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.UserRecord{ID: "u1", Email: input.Email, Role: input.Role}, nil
		},
	}
	handler := NewAccountHandler(stub)

	body := strings.NewReader(`{"email":"doc@example.com","password":"longenough","display_name":"Dr. Who","role":"doctor"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["role"] != "doctor" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAccountHandler_Create_UnknownRole(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAccountHandler(&stubAccountService{
		createFn: func(ctx context.Context, input ports.CreateAccountInput) (*domain.UserRecord, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	})

	body := strings.NewReader(`{"email":"x@example.com","password":"longenough","display_name":"X","role":"nurse"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Create(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_Conflict(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAccountHandler(&stubAccountService{
		createFn: func(ctx context.Context, input ports.CreateAccountInput) (*domain.UserRecord, error) {
			return nil, domain.ErrUserExists
		},
	})

	body := strings.NewReader(`{"email":"dup@example.com","password":"longenough","display_name":"Dup","role":"patient"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Create(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Update_NotFound(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAccountHandler(&stubAccountService{
		updateFn: func(ctx context.Context, id string, patch ports.UpdateAccountInput) (*domain.UserRecord, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/v1/users/ghost", strings.NewReader(`{"display_name":"New Name"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	_ = handler.Update(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_DisableEnable(t *testing.T) {
	e := echo.New()
	var gotDisabled []bool
	handler := NewAccountHandler(&stubAccountService{
		setDisabledFn: func(ctx context.Context, id string, disabled bool) (*domain.UserRecord, error) {
			gotDisabled = append(gotDisabled, disabled)
			return &domain.UserRecord{ID: id, Disabled: disabled}, nil
		},
	})

	for _, tc := range []struct {
		fn   func(echo.Context) error
		path string
	}{
		{handler.Disable, "/v1/users/u1/disable"},
		{handler.Enable, "/v1/users/u1/enable"},
	} {
		req := httptest.NewRequest(http.MethodPost, tc.path, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("u1")

		if err := tc.fn(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	if len(gotDisabled) != 2 || gotDisabled[0] != true || gotDisabled[1] != false {
		t.Fatalf("unexpected disabled sequence: %v", gotDisabled)
	}
}

func TestAccountHandler_Delete_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAccountHandler(&stubAccountService{
		deleteFn: func(ctx context.Context, ids []string) error {
			if len(ids) != 2 {
				t.Fatalf("unexpected ids: %v", ids)
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/v1/users", strings.NewReader(`{"ids":["u1","u2"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAccountHandler_Login_InvalidCredentials(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAccountHandler(&stubAccountService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.UserRecord, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccountHandler_Login_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAccountHandler(&stubAccountService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.UserRecord, error) {
			return "token123", &domain.UserRecord{ID: "u1", Email: email}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}
