package extract

import (
	"errors"
	"testing"
)

func TestValidateRankings_Valid(t *testing.T) {
	response := `[
		{"quote_index": 1, "relevance_score": 9.0, "relevance_explanation": "direct evidence", "key_insight": "pricing power"},
		{"quote_index": 2, "relevance_score": 6.5}
	]`

	entries, dropped, err := ValidateRankings(response, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// quote_index converts from 1-based to 0-based.
	if entries[0].QuoteIndex != 0 || entries[1].QuoteIndex != 1 {
		t.Errorf("indexes = %d, %d", entries[0].QuoteIndex, entries[1].QuoteIndex)
	}
	if entries[0].RelevanceExplanation != "direct evidence" {
		t.Errorf("explanation = %q", entries[0].RelevanceExplanation)
	}
}

func TestValidateRankings_DropsOutOfRangeIndex(t *testing.T) {
	response := `[{"quote_index": 999, "relevance_score": 9.0}]`

	entries, dropped, err := ValidateRankings(response, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestValidateRankings_DropsMalformedEntriesKeepsRest(t *testing.T) {
	response := `[
		{"quote_index": 1},
		"not an object",
		{"relevance_score": 5.0},
		{"quote_index": 0},
		{"quote_index": 2}
	]`

	entries, dropped, err := ValidateRankings(response, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
	// Dropped: non-object, missing quote_index, and 1-based 0 (out of range).
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestValidateRankings_SingleObjectTreatedAsBatch(t *testing.T) {
	entries, _, err := ValidateRankings(`{"quote_index": 1, "relevance_score": 4.0}`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].QuoteIndex != 0 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestValidateRankings_NegativeScoreNormalizesToZero(t *testing.T) {
	entries, _, err := ValidateRankings(`[{"quote_index": 1, "relevance_score": -3.0}]`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].RelevanceScore != 0.0 {
		t.Errorf("score = %f, want 0", entries[0].RelevanceScore)
	}
}

func TestValidateRankings_ParsingErrorWhenNoJSON(t *testing.T) {
	_, _, err := ValidateRankings("no payload here at all", 2)
	var parseErr *ParsingError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParsingError, got %v", err)
	}
}

func TestValidateThemes(t *testing.T) {
	response := "```json\n" + `[
		{"name": "Turnaround Speed", "description": "fast service", "key_insights": ["same-day"], "max_quotes": 6},
		{"name": "Defaults Applied"},
		{"description": "missing name"},
		42
	]` + "\n```"

	themes, dropped, err := ValidateThemes(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(themes) != 2 {
		t.Fatalf("got %d themes, want 2", len(themes))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if themes[0].MaxQuotes != 6 {
		t.Errorf("max_quotes = %d, want 6", themes[0].MaxQuotes)
	}
	if themes[1].MaxQuotes != defaultMaxQuotes {
		t.Errorf("defaulted max_quotes = %d, want %d", themes[1].MaxQuotes, defaultMaxQuotes)
	}
	if themes[1].Description != "" || themes[1].KeyInsights != nil {
		t.Errorf("defaults not applied: %+v", themes[1])
	}
}

func TestValidateThemes_EmptyResultIsNotError(t *testing.T) {
	themes, dropped, err := ValidateThemes(`[{"description": "nameless"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(themes) != 0 || dropped != 1 {
		t.Errorf("themes = %v, dropped = %d", themes, dropped)
	}
}
