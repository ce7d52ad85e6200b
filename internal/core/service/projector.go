package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

// Projector maps raw identity records into directory views, enriching roled
// non-admin records with their profile document. It never propagates
// per-record failures: a record that cannot be projected is logged and
// dropped so one bad record cannot abort a batch.
type Projector struct {
	profiles ports.ProfileStore
	log      zerolog.Logger
}

func NewProjector(profiles ports.ProfileStore, log zerolog.Logger) *Projector {
	return &Projector{profiles: profiles, log: log}
}

// Project returns the view for a single record, or nil when the record is
// malformed or its profile fetch failed. Admin and role-less records skip
// profile enrichment entirely.
func (p *Projector) Project(ctx context.Context, rec domain.UserRecord) *domain.UserView {
	if rec.ID == "" {
		p.log.Warn().Str("email", rec.Email).Msg("dropping record without id")
		return nil
	}

	view := &domain.UserView{UserRecord: rec}
	if rec.IsAdmin || rec.Role == "" {
		return view
	}

	collection, ok := domain.ProfileCollection(rec.Role)
	if !ok {
		return view
	}

	doc, found, err := p.profiles.Get(ctx, collection, rec.ID)
	if err != nil {
		p.log.Warn().Err(err).Str("user_id", rec.ID).Msg("profile fetch failed, dropping record")
		return nil
	}
	if found {
		view.Profile = doc
	}
	return view
}

// ProjectBatch projects records concurrently, joining by input index so the
// output preserves provider order with failed records removed.
func (p *Projector) ProjectBatch(ctx context.Context, recs []domain.UserRecord) []domain.UserView {
	if len(recs) == 0 {
		return nil
	}

	projected := make([]*domain.UserView, len(recs))
	var wg sync.WaitGroup
	for i, rec := range recs {
		wg.Add(1)
		go func(i int, rec domain.UserRecord) {
			defer wg.Done()
			projected[i] = p.Project(ctx, rec)
		}(i, rec)
	}
	wg.Wait()

	views := make([]domain.UserView, 0, len(recs))
	for _, v := range projected {
		if v != nil {
			views = append(views, *v)
		}
	}
	return views
}
