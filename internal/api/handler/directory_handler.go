package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

// DirectoryHandler handles HTTP requests for listing, searching, and batch
// lookup of directory users.
type DirectoryHandler struct {
	service ports.DirectoryService
}

func NewDirectoryHandler(service ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// --- Request / Response types ---

type listUsersResponse struct {
	Users       []domain.UserView `json:"users"`
	TotalCount  *int              `json:"total_count,omitempty"`
	TotalPages  *int              `json:"total_pages,omitempty"`
	CurrentPage int               `json:"current_page"`
	HasNextPage bool              `json:"has_next_page"`
	PageTokens  []bool            `json:"page_tokens,omitempty"`
}

type lookupRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

type lookupResponse struct {
	Users    []domain.UserView `json:"users"`
	NotFound []string          `json:"not_found,omitempty"`
}

// List handles GET /v1/users.
//
// @Summary      List or search directory users
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Logical page, 0-based"
// @Param        search  query     string  false  "Search term, repeatable"
// @Success      200     {object}  listUsersResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /v1/users [get]
func (h *DirectoryHandler) List(c echo.Context) error {
	role, isAdmin, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "page must be an integer"})
		}
	}

	result, err := h.service.ListUsers(c.Request().Context(), ports.ListUsersInput{
		Page:          page,
		Search:        c.QueryParams()["search"],
		CallerRole:    role,
		CallerIsAdmin: isAdmin,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "page is not reachable, restart from page 0"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	resp := listUsersResponse{
		Users:       result.Users,
		CurrentPage: result.CurrentPage,
		HasNextPage: result.HasNextPage,
		PageTokens:  result.PageTokens,
	}
	if resp.Users == nil {
		resp.Users = []domain.UserView{}
	}
	// The listing path cannot count the population; totals are omitted there
	// and only reported by the search path.
	if result.TotalCount >= 0 {
		resp.TotalCount = &result.TotalCount
		resp.TotalPages = &result.TotalPages
	}
	return c.JSON(http.StatusOK, resp)
}

// Lookup handles POST /v1/users/lookup.
//
// @Summary      Resolve a batch of user ids
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      lookupRequest  true  "User ids to resolve"
// @Success      200   {object}  lookupResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/users/lookup [post]
func (h *DirectoryHandler) Lookup(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	var req lookupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.GetUsersByIDs(c.Request().Context(), req.IDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	resp := lookupResponse{Users: result.Users, NotFound: result.NotFound}
	if resp.Users == nil {
		resp.Users = []domain.UserView{}
	}
	return c.JSON(http.StatusOK, resp)
}
