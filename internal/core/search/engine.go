// Package search implements the directory's fuzzy search: records are
// flattened into searchable text, matched per term with a typo-tolerant
// ranker, then merged, deduplicated by user id, and sorted by relevance.
package search

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xrash/smetrics"

	"github.com/caredesk/user-directory/internal/core/domain"
)

const (
	// defaultPerTermLimit caps how many ranked hits a single term may
	// contribute before merging.
	defaultPerTermLimit = 100
	// admitThreshold is the minimum Jaro-Winkler similarity for a ranked
	// match; permissive enough to admit single-typo matches.
	admitThreshold = 0.75
	// jaroBoostThreshold and jaroPrefixSize are the standard Winkler
	// prefix-boost parameters.
	jaroBoostThreshold = 0.7
	jaroPrefixSize     = 4
)

// Engine matches search terms against a population of user views.
type Engine struct {
	perTermLimit int
	log          zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{perTermLimit: defaultPerTermLimit, log: log}
}

type document struct {
	view   domain.UserView
	fields map[string]string
}

// Search ranks the population against the given terms. Each term is matched
// independently; results are concatenated, deduplicated by user id keeping
// the highest score, and sorted by score descending. Terms that are empty
// after trimming are dropped.
func (e *Engine) Search(terms []string, population []domain.UserView) []domain.ScoredView {
	cleaned := NormalizeTerms(terms)
	if len(cleaned) == 0 || len(population) == 0 {
		return nil
	}

	docs := make([]document, len(population))
	for i, v := range population {
		docs[i] = document{view: v, fields: Flatten(v)}
	}

	var merged []domain.ScoredView
	for _, term := range cleaned {
		hits := e.matchTerm(term, docs)
		if len(hits) == 0 {
			hits = containmentFallback(term, docs)
		}
		merged = append(merged, hits...)
	}

	return dedupeByID(merged)
}

// matchTerm scores the term against each document's "all" field using
// Jaro-Winkler similarity over its tokens, admitting scores above the
// threshold, sorted descending and capped at perTermLimit.
func (e *Engine) matchTerm(term string, docs []document) []domain.ScoredView {
	var hits []domain.ScoredView
	for _, doc := range docs {
		best := 0.0
		for _, token := range strings.Fields(doc.fields["all"]) {
			score := smetrics.JaroWinkler(term, token, jaroBoostThreshold, jaroPrefixSize)
			if score > best {
				best = score
			}
		}
		if best >= admitThreshold {
			hits = append(hits, domain.ScoredView{View: doc.view, Score: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > e.perTermLimit {
		hits = hits[:e.perTermLimit]
	}
	return hits
}

// containmentFallback is the plain substring scan used only when the ranked
// matcher found nothing for a term. Matches score zero.
func containmentFallback(term string, docs []document) []domain.ScoredView {
	var hits []domain.ScoredView
	for _, doc := range docs {
		for _, value := range doc.fields {
			if strings.Contains(value, term) {
				hits = append(hits, domain.ScoredView{View: doc.view, Score: 0})
				break
			}
		}
	}
	return hits
}

// dedupeByID keeps one entry per user id with its maximum score, preserving
// first-seen order among equal scores.
func dedupeByID(hits []domain.ScoredView) []domain.ScoredView {
	if len(hits) == 0 {
		return nil
	}
	best := make(map[string]int, len(hits))
	var out []domain.ScoredView
	for _, h := range hits {
		idx, seen := best[h.View.ID]
		if !seen {
			best[h.View.ID] = len(out)
			out = append(out, h)
			continue
		}
		if h.Score > out[idx].Score {
			out[idx].Score = h.Score
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// NormalizeTerms lowercases and trims terms, dropping any that end up empty.
func NormalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
