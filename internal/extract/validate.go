package extract

import "github.com/veridian-research/quotient/internal/quote"

// defaultMaxQuotes caps quotes per theme when the model omits the field.
const defaultMaxQuotes = 4

// RankingEntry is one validated row of a model ranking response. QuoteIndex
// is 0-based after validation.
type RankingEntry struct {
	QuoteIndex           int     `json:"quote_index"`
	RelevanceScore       float64 `json:"relevance_score"`
	RelevanceExplanation string  `json:"relevance_explanation"`
	KeyInsight           string  `json:"key_insight"`
}

// Theme is one validated theme entry.
type Theme struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	KeyInsights []string `json:"key_insights"`
	MaxQuotes   int      `json:"max_quotes"`
}

// ValidateRankings extracts a ranking array from responseText and validates
// each entry against a candidate list of numQuotes quotes. Entries with a
// missing or out-of-range quote_index (1-based on the wire) are dropped
// silently; dropped reports how many. An empty result with a nil error is a
// valid outcome.
func ValidateRankings(responseText string, numQuotes int) (entries []RankingEntry, dropped int, err error) {
	jsonText, err := ExtractJSON(responseText)
	if err != nil {
		return nil, 0, err
	}
	value, err := ParseJSONSafe(jsonText, "quote ranking response")
	if err != nil {
		return nil, 0, err
	}

	for _, raw := range asArray(value) {
		entry, ok := validateRankingEntry(raw, numQuotes)
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, dropped, nil
}

func validateRankingEntry(raw any, numQuotes int) (RankingEntry, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return RankingEntry{}, false
	}
	idxValue, ok := obj["quote_index"]
	if !ok {
		return RankingEntry{}, false
	}
	idxFloat, ok := idxValue.(float64)
	if !ok {
		return RankingEntry{}, false
	}

	// The wire format is 1-based.
	idx := int(idxFloat) - 1
	if idx < 0 || idx >= numQuotes {
		return RankingEntry{}, false
	}

	return RankingEntry{
		QuoteIndex:           idx,
		RelevanceScore:       quote.NormalizeRelevance(asFloat(obj["relevance_score"])),
		RelevanceExplanation: asString(obj["relevance_explanation"]),
		KeyInsight:           asString(obj["key_insight"]),
	}, true
}

// ValidateThemes extracts a theme array from responseText. Entries without a
// non-empty name are dropped; description, key_insights, and max_quotes are
// defaulted when absent.
func ValidateThemes(responseText string) (themes []Theme, dropped int, err error) {
	jsonText, err := ExtractJSON(responseText)
	if err != nil {
		return nil, 0, err
	}
	value, err := ParseJSONSafe(jsonText, "themes response")
	if err != nil {
		return nil, 0, err
	}

	for _, raw := range asArray(value) {
		theme, ok := validateTheme(raw)
		if !ok {
			dropped++
			continue
		}
		themes = append(themes, theme)
	}
	return themes, dropped, nil
}

func validateTheme(raw any) (Theme, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Theme{}, false
	}
	name := asString(obj["name"])
	if name == "" {
		return Theme{}, false
	}

	theme := Theme{
		Name:        name,
		Description: asString(obj["description"]),
		MaxQuotes:   defaultMaxQuotes,
	}
	if n := asFloat(obj["max_quotes"]); n > 0 {
		theme.MaxQuotes = int(n)
	}
	if insights, ok := obj["key_insights"].([]any); ok {
		for _, v := range insights {
			if s := asString(v); s != "" {
				theme.KeyInsights = append(theme.KeyInsights, s)
			}
		}
	}
	return theme, true
}

// asArray treats a single object as a one-element batch; models sometimes
// return the entry bare instead of wrapped in an array.
func asArray(value any) []any {
	if arr, ok := value.([]any); ok {
		return arr
	}
	return []any{value}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}
