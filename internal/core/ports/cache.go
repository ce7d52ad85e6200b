package ports

import (
	"context"

	"github.com/caredesk/user-directory/internal/core/domain"
)

// CursorCache maps (scope, logical page) to the provider continuation token
// that starts that page. Entries expire after a fixed TTL; an expired entry
// reads as absent. Page 0 is never stored — it is the provider's natural
// start. Implementations that can fail (remote backends) log and report a
// miss rather than surfacing errors into the request path.
type CursorCache interface {
	Get(ctx context.Context, scope string, page int) (token string, ok bool)
	Put(ctx context.Context, scope string, page int, token string)
}

// ResultCache memoizes the fully ranked result set for a search key so that
// repeated pagination of the same query does not re-scan the population.
// There is no single-flight guarantee: two concurrent misses for the same
// key may both compute, and the last write wins.
type ResultCache interface {
	Get(ctx context.Context, key string) (results []domain.ScoredView, ok bool)
	Put(ctx context.Context, key string, results []domain.ScoredView)
}
