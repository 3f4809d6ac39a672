package quote

// Stage records which pipeline step most specifically produced a quote's
// current score or rank. Stages are ordered by processing depth; assignment is
// first-writer-wins so an earlier, more specific stage is never overwritten.
type Stage string

const (
	StageTranscriptExtracted Stage = "transcript_extracted"
	StageExpertQuote         Stage = "expert_quote"
	StageThemeSelected       Stage = "theme_selected"
	StageVectorRanked        Stage = "vector_ranked"
	StageOpenAIRanked        Stage = "openai_ranked"
	StageExpandedProcessing  Stage = "expanded_processing"
)

// rankedStages are the stages that count toward ranking coverage.
var rankedStages = map[Stage]bool{
	StageVectorRanked:       true,
	StageOpenAIRanked:       true,
	StageExpandedProcessing: true,
}

// AssignStage sets the quote's selection stage if none is recorded yet.
// Returns true when the stage was written.
func AssignStage(q *Quote, stage Stage) bool {
	if q.Metadata.SelectionStage != "" {
		return false
	}
	q.Metadata.SelectionStage = stage
	return true
}

// CoverageStats summarizes how much of a quote collection reached a ranking
// stage. Used for observability only; it never gates pipeline behavior.
type CoverageStats struct {
	TotalQuotes     int           `json:"total_quotes"`
	RankedQuotes    int           `json:"ranked_quotes"`
	CoveragePercent float64       `json:"coverage_percent"`
	StageBreakdown  map[Stage]int `json:"selection_stage_breakdown"`
}

// Coverage computes per-stage counts and ranking coverage for a collection.
func Coverage(quotes []Quote) CoverageStats {
	stats := CoverageStats{
		TotalQuotes:    len(quotes),
		StageBreakdown: make(map[Stage]int),
	}
	for _, q := range quotes {
		stage := q.Metadata.SelectionStage
		if stage == "" {
			continue
		}
		stats.StageBreakdown[stage]++
		if rankedStages[stage] {
			stats.RankedQuotes++
		}
	}
	if stats.TotalQuotes > 0 {
		stats.CoveragePercent = float64(stats.RankedQuotes) / float64(stats.TotalQuotes) * 100
	}
	return stats
}
