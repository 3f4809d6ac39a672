// Package ranker scores quote batches against a research question with a
// chat-completion model. Model failures degrade to positional fallback ranks
// per batch; a batch is never lost to a single bad reply.
package ranker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/veridian-research/quotient/internal/extract"
	"github.com/veridian-research/quotient/internal/quote"
)

// batchSize bounds how many quotes go into one model call. Larger batches
// degrade index discipline in the reply.
const batchSize = 20

const (
	rankingTemperature = 0.3
	rankingMaxTokens   = 4000
)

// fallbackScore is assigned to quotes ranked positionally after a model
// failure; low enough that any model-ranked quote sorts above them.
const fallbackScore = 1.0

// Completer is the chat-completion surface the ranker needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
	Model() string
}

// Statistics summarizes a ranking run.
type Statistics struct {
	Total          int                 `json:"total"`
	Ranked         int                 `json:"ranked"`
	Fallback       int                 `json:"fallback"`
	Dropped        int                 `json:"dropped_entries"`
	FailedBatches  int                 `json:"failed_batches"`
	StageBreakdown map[quote.Stage]int `json:"stage_breakdown"`
}

type Ranker struct {
	llm    Completer
	logger *slog.Logger
}

func New(llm Completer, logger *slog.Logger) *Ranker {
	return &Ranker{llm: llm, logger: logger}
}

// Model reports the underlying model identifier for cache keying.
func (r *Ranker) Model() string { return r.llm.Model() }

// Rank scores quotes against the question and returns them ordered by
// descending relevance, rank fields assigned 1..n. Quotes in batches where
// the model call or its parsing failed get positional fallback ranks and a
// fallback stage instead of being dropped.
func (r *Ranker) Rank(ctx context.Context, question string, quotes []quote.Quote) ([]quote.Quote, Statistics, error) {
	stats := Statistics{Total: len(quotes), StageBreakdown: make(map[quote.Stage]int)}
	if len(quotes) == 0 {
		return nil, stats, nil
	}

	ranked := make([]quote.Quote, len(quotes))
	copy(ranked, quotes)

	for start := 0; start < len(ranked); start += batchSize {
		end := start + batchSize
		if end > len(ranked) {
			end = len(ranked)
		}
		batch := ranked[start:end]

		entries, dropped, err := r.rankBatch(ctx, question, batch)
		if err != nil {
			stats.FailedBatches++
			r.logger.Warn("ranking batch failed, applying positional fallback",
				"batch_start", start,
				"batch_size", len(batch),
				"error", err)
			applyFallback(batch, err)
			stats.Fallback += len(batch)
			continue
		}
		stats.Dropped += dropped
		applyRankings(batch, entries)
		stats.Ranked += len(entries)
	}

	// Order by relevance, then original position for stability.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metadata.RelevanceScore > ranked[j].Metadata.RelevanceScore
	})
	for i := range ranked {
		ranked[i].Metadata.Rank = i + 1
		stats.StageBreakdown[ranked[i].Metadata.SelectionStage]++
	}

	r.logger.Info("ranking complete",
		"total", stats.Total,
		"ranked", stats.Ranked,
		"fallback", stats.Fallback,
		"dropped_entries", stats.Dropped,
		"failed_batches", stats.FailedBatches)
	return ranked, stats, nil
}

func (r *Ranker) rankBatch(ctx context.Context, question string, batch []quote.Quote) ([]extract.RankingEntry, int, error) {
	prompt := fmt.Sprintf(rankingUserPrompt, question, formatQuotes(batch))

	raw, err := r.llm.Complete(ctx, systemPrompt, prompt, rankingTemperature, rankingMaxTokens)
	if err != nil {
		return nil, 0, fmt.Errorf("ranking call: %w", err)
	}

	entries, dropped, err := extract.ValidateRankings(raw, len(batch))
	if err != nil {
		return nil, 0, fmt.Errorf("parse ranking response: %w", err)
	}
	return entries, dropped, nil
}

// applyRankings writes validated model scores onto the batch. Quotes the
// model skipped keep a zero score but still get a ranked stage so coverage
// reflects that the batch was processed.
func applyRankings(batch []quote.Quote, entries []extract.RankingEntry) {
	for _, e := range entries {
		q := &batch[e.QuoteIndex]
		q.Metadata.RelevanceScore = e.RelevanceScore
		q.Metadata.RelevanceReason = e.RelevanceExplanation
		q.Metadata.KeyInsight = e.KeyInsight
	}
	for i := range batch {
		quote.AssignStage(&batch[i], quote.StageOpenAIRanked)
	}
}

// applyFallback gives every quote in a failed batch the same low score; the
// stable final sort then ranks them by batch position. The cause is recorded
// so downstream consumers can tell a fallback rank from a model rank.
func applyFallback(batch []quote.Quote, cause error) {
	for i := range batch {
		q := &batch[i]
		q.Metadata.RelevanceScore = fallbackScore
		q.Metadata.RelevanceReason = "positional fallback after ranking failure"
		q.Metadata.ErrorNote = cause.Error()
		quote.AssignStage(q, quote.StageExpandedProcessing)
	}
}

func formatQuotes(batch []quote.Quote) string {
	var b strings.Builder
	for i, q := range batch {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)
	}
	return b.String()
}
