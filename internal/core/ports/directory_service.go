package ports

import (
	"context"

	"github.com/caredesk/user-directory/internal/core/domain"
)

// ListUsersInput carries all parameters for a directory listing request.
type ListUsersInput struct {
	Page          int      // 0-based logical page
	Search        []string // non-empty terms switch to the search path
	CallerRole    string
	CallerIsAdmin bool
}

// ListUsersResult is the listing response envelope.
//
// TotalCount and TotalPages are -1 on the listing path: the provider's
// forward-only API exposes no population count without a full scan. The
// search path, which materializes the whole filtered population, reports
// real totals. PageTokens is only set on the listing path: index i is true
// iff page i is currently reachable without restarting from page 0.
type ListUsersResult struct {
	Users       []domain.UserView
	TotalCount  int
	TotalPages  int
	CurrentPage int
	HasNextPage bool
	PageTokens  []bool
}

// LookupResult reports batch id resolution; misses are per-id, not fatal.
type LookupResult struct {
	Users    []domain.UserView
	NotFound []string
}

// DirectoryService is the listing and search surface exposed to callers.
type DirectoryService interface {
	ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	GetUsersByIDs(ctx context.Context, ids []string) (*LookupResult, error)
}
