package search

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/caredesk/user-directory/internal/core/domain"
)

func view(id, name string) domain.UserView {
	return domain.UserView{UserRecord: domain.UserRecord{ID: id, DisplayName: name}}
}

func TestEngine_TypoToleranceAndRanking(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	population := []domain.UserView{view("1", "Anne"), view("2", "Anna")}

	results := e.Search([]string{"anna"}, population)

	if len(results) != 2 {
		t.Fatalf("expected both users matched, got %d", len(results))
	}
	if results[0].View.ID != "2" {
		t.Errorf("exact match must rank first, got id %s", results[0].View.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores out of order: %f < %f", results[0].Score, results[1].Score)
	}
}

func TestEngine_MultiTermDedupeKeepsMaxScore(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	population := []domain.UserView{view("1", "Anne"), view("2", "Anna")}

	results := e.Search([]string{"anna", "anne"}, population)

	if len(results) != 2 {
		t.Fatalf("expected one entry per id, got %d", len(results))
	}
	for _, r := range results {
		// Each id has an exact match under one of the terms.
		if r.Score != 1.0 {
			t.Errorf("id %s: expected max score 1.0, got %f", r.View.ID, r.Score)
		}
	}
}

func TestEngine_SensitiveFieldsNeverMatch(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	population := []domain.UserView{
		{
			UserRecord: domain.UserRecord{ID: "1", DisplayName: "Bob"},
			Profile:    domain.ProfileDocument{"token": "secretvalue", "note": "checkup"},
		},
	}

	if got := e.Search([]string{"secretvalue"}, population); len(got) != 0 {
		t.Fatalf("token value must not be searchable, got %d hits", len(got))
	}
	if got := e.Search([]string{"bob"}, population); len(got) != 1 {
		t.Fatalf("expected name match, got %d hits", len(got))
	}
}

func TestEngine_ContainmentFallback(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	population := []domain.UserView{view("1", "Goldenretrieverhound"), view("2", "Maria")}

	// "den" scores below the similarity threshold against every token but
	// is contained in the first name.
	results := e.Search([]string{"den"}, population)

	if len(results) != 1 || results[0].View.ID != "1" {
		t.Fatalf("expected fallback containment hit for id 1, got %+v", results)
	}
	if results[0].Score != 0 {
		t.Errorf("fallback matches must score zero, got %f", results[0].Score)
	}
}

func TestEngine_FallbackOnlyWhenRankedMatcherEmpty(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	// "ann" ranks against "Anne"; the fallback must not additionally add
	// containment-only hits for the same term.
	population := []domain.UserView{view("1", "Anne"), view("2", "Joanne-Banner")}

	results := e.Search([]string{"anne"}, population)

	for _, r := range results {
		if r.View.ID == "1" && r.Score == 0 {
			t.Error("ranked match downgraded to fallback score")
		}
	}
	if len(results) == 0 {
		t.Fatal("expected at least the exact match")
	}
	if results[0].View.ID != "1" {
		t.Errorf("exact match must rank first, got %s", results[0].View.ID)
	}
}

func TestEngine_EmptyInputs(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	if got := e.Search(nil, []domain.UserView{view("1", "Anne")}); got != nil {
		t.Errorf("empty terms must return empty, got %+v", got)
	}
	if got := e.Search([]string{"anne"}, nil); got != nil {
		t.Errorf("empty population must return empty, got %+v", got)
	}
	if got := e.Search([]string{"  ", "\t"}, []domain.UserView{view("1", "Anne")}); got != nil {
		t.Errorf("whitespace-only terms must be dropped, got %+v", got)
	}
}

func TestEngine_PerTermCap(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	e.perTermLimit = 2

	population := []domain.UserView{
		view("1", "Anna"), view("2", "Anna"), view("3", "Anna"), view("4", "Bruno"),
	}

	results := e.Search([]string{"anna"}, population)

	if len(results) != 2 {
		t.Fatalf("expected per-term cap of 2, got %d", len(results))
	}
}
