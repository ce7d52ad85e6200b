package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caredesk/user-directory/internal/api/metrics"
	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
	"github.com/caredesk/user-directory/internal/core/search"
)

const (
	defaultPageSize      = 10
	defaultScanBatchSize = 1000
)

// IdentitySource abstracts the provider calls the listing path needs.
type IdentitySource interface {
	ListUsers(ctx context.Context, pageSize int, pageToken string) (*ports.UserPage, error)
	GetUsers(ctx context.Context, ids []string) ([]domain.UserRecord, []string, error)
}

// Options tunes the orchestrator's page and scan sizes.
type Options struct {
	PageSize      int
	ScanBatchSize int
}

// DirectoryService orchestrates role-scoped listing and search over the
// identity provider's forward-only pagination API.
type DirectoryService struct {
	source    IdentitySource
	projector *Projector
	cursors   ports.CursorCache
	results   ports.ResultCache
	engine    *search.Engine
	pageSize  int
	scanBatch int
	log       zerolog.Logger
}

func NewDirectoryService(
	source IdentitySource,
	projector *Projector,
	cursors ports.CursorCache,
	results ports.ResultCache,
	engine *search.Engine,
	opts Options,
	log zerolog.Logger,
) *DirectoryService {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.ScanBatchSize <= 0 {
		opts.ScanBatchSize = defaultScanBatchSize
	}
	return &DirectoryService{
		source:    source,
		projector: projector,
		cursors:   cursors,
		results:   results,
		engine:    engine,
		pageSize:  opts.PageSize,
		scanBatch: opts.ScanBatchSize,
		log:       log,
	}
}

// ListUsers serves one logical page of the directory. The caller's scope is
// resolved before any cache or provider work; non-empty search terms take
// the search path, everything else the cursor-driven listing path.
func (s *DirectoryService) ListUsers(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	scope, err := domain.ScopeFor(in.CallerRole, in.CallerIsAdmin)
	if err != nil {
		return nil, err
	}
	if in.Page < 0 {
		return nil, domain.ErrInvalidPage
	}

	terms := search.NormalizeTerms(in.Search)
	if len(terms) > 0 {
		metrics.ListingsTotal.WithLabelValues("search").Inc()
		return s.searchPage(ctx, scope, terms, in.Page)
	}
	metrics.ListingsTotal.WithLabelValues("listing").Inc()
	return s.listPage(ctx, scope, in.Page)
}

// GetUsersByIDs resolves a batch of ids; misses are reported per id.
func (s *DirectoryService) GetUsersByIDs(ctx context.Context, ids []string) (*ports.LookupResult, error) {
	found, missing, err := s.source.GetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return &ports.LookupResult{
		Users:    s.projector.ProjectBatch(ctx, found),
		NotFound: missing,
	}, nil
}

// searchPage serves a page of ranked search results. The full ranked set for
// (terms, scope) is memoized; repeated pagination within the TTL never
// re-scans the population.
func (s *DirectoryService) searchPage(ctx context.Context, scope domain.Scope, terms []string, page int) (*ports.ListUsersResult, error) {
	key := searchKey(scope, terms)

	ranked, ok := s.results.Get(ctx, key)
	if ok {
		metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
		started := time.Now()

		population, err := s.scanPopulation(ctx, scope)
		if err != nil {
			return nil, err
		}
		ranked = s.engine.Search(terms, population)
		s.results.Put(ctx, key, ranked)

		metrics.SearchDuration.Observe(time.Since(started).Seconds())
		s.log.Debug().
			Str("key", key).
			Int("population", len(population)).
			Int("matches", len(ranked)).
			Msg("search result set computed")
	}

	total := len(ranked)
	start := page * s.pageSize
	end := start + s.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	users := make([]domain.UserView, 0, end-start)
	for _, sv := range ranked[start:end] {
		users = append(users, sv.View)
	}

	return &ports.ListUsersResult{
		Users:       users,
		TotalCount:  total,
		TotalPages:  (total + s.pageSize - 1) / s.pageSize,
		CurrentPage: page,
		HasNextPage: end < total,
	}, nil
}

// scanPopulation fetches the entire provider population in large batches,
// following every continuation token, and returns the projected views
// admitted by the scope.
func (s *DirectoryService) scanPopulation(ctx context.Context, scope domain.Scope) ([]domain.UserView, error) {
	var population []domain.UserView
	token := ""
	pages := 0
	for {
		batch, err := s.source.ListUsers(ctx, s.scanBatch, token)
		if err != nil {
			return nil, fmt.Errorf("population scan: %w", err)
		}
		pages++
		for _, v := range s.projector.ProjectBatch(ctx, batch.Users) {
			if scope.Admits(v) {
				population = append(population, v)
			}
		}
		if batch.NextToken == "" {
			break
		}
		token = batch.NextToken
	}
	metrics.ProviderPagesPerRequest.Observe(float64(pages))
	return population, nil
}

// listPage serves one logical page of the plain listing. Page 0 starts the
// provider stream; any other page requires a live cached cursor, otherwise
// the request fails with ErrInvalidPage and the caller must restart from 0.
func (s *DirectoryService) listPage(ctx context.Context, scope domain.Scope, page int) (*ports.ListUsersResult, error) {
	token := ""
	if page > 0 {
		cached, ok := s.cursors.Get(ctx, scope.CacheKey(), page)
		if !ok {
			metrics.CursorCacheLookups.WithLabelValues("miss").Inc()
			return nil, domain.ErrInvalidPage
		}
		metrics.CursorCacheLookups.WithLabelValues("hit").Inc()
		token = cached
	}

	var users []domain.UserView
	var hasNext bool
	var err error
	if scope.Restricted() {
		users, hasNext, err = s.fillRestrictedPage(ctx, scope, page, token)
	} else {
		users, hasNext, err = s.fetchUnrestrictedPage(ctx, scope, page, token)
	}
	if err != nil {
		return nil, err
	}

	return &ports.ListUsersResult{
		Users:       users,
		TotalCount:  -1,
		TotalPages:  -1,
		CurrentPage: page,
		HasNextPage: hasNext,
		PageTokens:  s.pageTokens(ctx, scope, page),
	}, nil
}

// fetchUnrestrictedPage serves an admin page from a single provider call.
func (s *DirectoryService) fetchUnrestrictedPage(ctx context.Context, scope domain.Scope, page int, token string) ([]domain.UserView, bool, error) {
	batch, err := s.source.ListUsers(ctx, s.pageSize, token)
	if err != nil {
		return nil, false, fmt.Errorf("list page %d: %w", page, err)
	}
	metrics.ProviderPagesPerRequest.Observe(1)

	if batch.NextToken != "" {
		s.cursors.Put(ctx, scope.CacheKey(), page+1, batch.NextToken)
	}
	return s.projector.ProjectBatch(ctx, batch.Users), batch.NextToken != "", nil
}

// fillRestrictedPage accumulates admitted views across as many provider
// pages as needed to fill one logical page, storing the most recent
// continuation token under page+1 as it goes. It stops once the page is
// full or the provider is exhausted.
func (s *DirectoryService) fillRestrictedPage(ctx context.Context, scope domain.Scope, page int, token string) ([]domain.UserView, bool, error) {
	var accumulated []domain.UserView
	lastToken := ""
	pages := 0
	for {
		batch, err := s.source.ListUsers(ctx, s.pageSize, token)
		if err != nil {
			return nil, false, fmt.Errorf("list page %d: %w", page, err)
		}
		pages++

		for _, v := range s.projector.ProjectBatch(ctx, batch.Users) {
			if scope.Admits(v) {
				accumulated = append(accumulated, v)
			}
		}

		lastToken = batch.NextToken
		if batch.NextToken != "" {
			s.cursors.Put(ctx, scope.CacheKey(), page+1, batch.NextToken)
		}
		if batch.NextToken == "" || len(accumulated) >= s.pageSize {
			break
		}
		token = batch.NextToken
	}
	metrics.ProviderPagesPerRequest.Observe(float64(pages))

	hasNext := len(accumulated) > s.pageSize || lastToken != ""
	if len(accumulated) > s.pageSize {
		accumulated = accumulated[:s.pageSize]
	}
	return accumulated, hasNext, nil
}

// pageTokens reports which logical pages are currently jumpable. Index 0 is
// always true (the provider's natural start needs no cursor); indices 1
// through page+1 reflect live cursor cache entries.
func (s *DirectoryService) pageTokens(ctx context.Context, scope domain.Scope, page int) []bool {
	tokens := make([]bool, page+2)
	tokens[0] = true
	for i := 1; i <= page+1; i++ {
		_, ok := s.cursors.Get(ctx, scope.CacheKey(), i)
		tokens[i] = ok
	}
	return tokens
}

// searchKey builds the deterministic cache key for a search request.
func searchKey(scope domain.Scope, terms []string) string {
	return scope.CacheKey() + "\x1e" + strings.Join(terms, "\x1f")
}
