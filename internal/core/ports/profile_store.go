package ports

import (
	"context"

	"github.com/caredesk/user-directory/internal/core/domain"
)

// ProfileStore holds per-role profile documents keyed by user id.
type ProfileStore interface {
	// Get returns the document for id, or found=false when absent.
	Get(ctx context.Context, collection, id string) (domain.ProfileDocument, bool, error)
	Set(ctx context.Context, collection, id string, doc domain.ProfileDocument) error
	// BatchDelete removes the documents for ids, chunked to the store's
	// batch limit with chunks executed in parallel.
	BatchDelete(ctx context.Context, collection string, ids []string) error
}
