package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

// AccountHandler handles HTTP requests for account lifecycle operations.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// --- Request / Response types ---

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=admin doctor patient"`
}

type updateUserRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName *string `json:"display_name,omitempty"`
}

type deleteUsersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=1000"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  *domain.UserRecord `json:"user"`
}

// Create handles POST /v1/users.
//
// @Summary      Provision a new user account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  domain.UserRecord
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rec, err := h.service.CreateUser(c.Request().Context(), ports.CreateAccountInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "user already exists"})
		}
		if errors.Is(err, domain.ErrInvalidRole) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusCreated, rec)
}

// Update handles PATCH /v1/users/:id.
//
// @Summary      Update account fields
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.UserRecord
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/users/{id} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rec, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), ports.UpdateAccountInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return accountError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Enable handles POST /v1/users/:id/enable.
//
// @Summary      Re-enable a disabled account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200 {object}  domain.UserRecord
// @Failure      404 {object}  map[string]string
// @Router       /v1/users/{id}/enable [post]
func (h *AccountHandler) Enable(c echo.Context) error {
	rec, err := h.service.SetDisabled(c.Request().Context(), c.Param("id"), false)
	if err != nil {
		return accountError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Disable handles POST /v1/users/:id/disable.
//
// @Summary      Disable an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200 {object}  domain.UserRecord
// @Failure      404 {object}  map[string]string
// @Router       /v1/users/{id}/disable [post]
func (h *AccountHandler) Disable(c echo.Context) error {
	rec, err := h.service.SetDisabled(c.Request().Context(), c.Param("id"), true)
	if err != nil {
		return accountError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /v1/users.
//
// @Summary      Delete a batch of accounts and their profiles
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  deleteUsersRequest  true  "User ids to delete"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/users [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	var req deleteUsersRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.service.DeleteUsers(c.Request().Context(), req.IDs); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Login handles POST /v1/auth/login.
//
// @Summary      Exchange credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, rec, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, User: rec})
}

// accountError maps service errors shared by the account verbs.
func accountError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	if errors.Is(err, domain.ErrUserExists) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "user already exists"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
