// Package pipeline orchestrates the full processing flow for one question's
// quote batch: role correction, question-aware prefiltering, near-duplicate
// collapsing, cached model ranking, and result publication.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veridian-research/quotient/internal/cache"
	"github.com/veridian-research/quotient/internal/corrector"
	"github.com/veridian-research/quotient/internal/dedup"
	"github.com/veridian-research/quotient/internal/events"
	"github.com/veridian-research/quotient/internal/prefilter"
	"github.com/veridian-research/quotient/internal/quote"
	"github.com/veridian-research/quotient/internal/ranker"
)

// RankingCache is the caching surface the pipeline needs; satisfied by
// cache.Store. Cache failures are treated as misses, never as run failures.
type RankingCache interface {
	Get(ctx context.Context, questionID, transcriptHash, modelVersion string) (json.RawMessage, bool, error)
	Put(ctx context.Context, questionID, transcriptHash, modelVersion string, ranked json.RawMessage, ttl time.Duration) error
}

// Publisher is the outbound event surface; satisfied by events.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// RunReport captures one pipeline run for the status API.
type RunReport struct {
	QuestionID  string              `json:"question_id"`
	Question    string              `json:"question"`
	InputQuotes int                 `json:"input_quotes"`
	Corrections corrector.Summary   `json:"corrections"`
	Prefiltered int                 `json:"prefiltered"`
	Collapsed   int                 `json:"collapsed"`
	CacheHit    bool                `json:"cache_hit"`
	Ranking     ranker.Statistics   `json:"ranking"`
	Coverage    quote.CoverageStats `json:"coverage"`
	CompletedAt time.Time           `json:"completed_at"`
}

type Pipeline struct {
	corrector *corrector.Corrector
	prefilter *prefilter.Prefilter
	collapser *dedup.Collapser
	ranker    *ranker.Ranker
	cache     RankingCache
	publisher Publisher
	cacheTTL  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	lastRun *RunReport
}

func New(c *corrector.Corrector, pf *prefilter.Prefilter, col *dedup.Collapser, r *ranker.Ranker, rc RankingCache, pub Publisher, cacheTTL time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		corrector: c,
		prefilter: pf,
		collapser: col,
		ranker:    r,
		cache:     rc,
		publisher: pub,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// HandleQuoteBatch is the NATS handler for research.transcript.quotes.
func (p *Pipeline) HandleQuoteBatch(subject string, data []byte) {
	ctx := context.Background()

	var batch events.QuoteBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		p.logger.Error("failed to parse quote batch", "subject", subject, "error", err)
		return
	}
	if batch.QuestionID == "" {
		p.logger.Error("quote batch missing question_id, dropping")
		return
	}

	if _, err := p.Run(ctx, batch); err != nil {
		p.logger.Error("pipeline run failed", "question_id", batch.QuestionID, "error", err)
	}
}

// Run processes one quote batch end to end and publishes the ranked result.
func (p *Pipeline) Run(ctx context.Context, batch events.QuoteBatch) (RunReport, error) {
	report := RunReport{
		QuestionID:  batch.QuestionID,
		Question:    batch.Question,
		InputQuotes: len(batch.Quotes),
	}

	p.logger.Info("processing quote batch",
		"question_id", batch.QuestionID,
		"quotes", len(batch.Quotes))

	corrected, summary := p.corrector.Correct(batch.Quotes)
	report.Corrections = summary
	p.publishCorrections(batch.QuestionID, corrected)

	kept := p.prefilter.Filter(corrected, batch.Question)
	report.Prefiltered = len(kept)

	kept, collapse := p.collapser.Collapse(kept)
	report.Collapsed = collapse.Collapsed

	ranked, err := p.rankWithCache(ctx, batch, kept, &report)
	if err != nil {
		return report, err
	}

	report.Coverage = quote.Coverage(ranked)
	report.CompletedAt = time.Now().UTC()

	if err := p.publisher.Publish(events.SubjectQuotesRanked, events.RankedBatch{
		QuestionID: batch.QuestionID,
		Question:   batch.Question,
		Model:      p.ranker.Model(),
		CacheHit:   report.CacheHit,
		Quotes:     ranked,
		Coverage:   report.Coverage,
	}); err != nil {
		p.logger.Error("failed to publish ranked batch", "question_id", batch.QuestionID, "error", err)
	}

	p.mu.Lock()
	p.lastRun = &report
	p.mu.Unlock()

	p.logger.Info("quote batch processed",
		"question_id", batch.QuestionID,
		"input", report.InputQuotes,
		"ranked", len(ranked),
		"cache_hit", report.CacheHit,
		"coverage_percent", report.Coverage.CoveragePercent)
	return report, nil
}

// rankWithCache consults the ranking cache before calling the model. Every
// cache error degrades to a miss; the run itself only fails when ranking does.
func (p *Pipeline) rankWithCache(ctx context.Context, batch events.QuoteBatch, kept []quote.Quote, report *RunReport) ([]quote.Quote, error) {
	contentHash := cache.HashContent(quoteTexts(kept))
	model := p.ranker.Model()

	if p.cache != nil {
		raw, hit, err := p.cache.Get(ctx, batch.QuestionID, contentHash, model)
		if err != nil {
			p.logger.Warn("cache read failed, treating as miss", "question_id", batch.QuestionID, "error", err)
		} else if hit {
			var cached []quote.Quote
			if err := json.Unmarshal(raw, &cached); err != nil {
				p.logger.Warn("cache entry unreadable, treating as miss", "question_id", batch.QuestionID, "error", err)
			} else {
				report.CacheHit = true
				return cached, nil
			}
		}
	}

	ranked, stats, err := p.ranker.Rank(ctx, batch.Question, kept)
	if err != nil {
		return nil, fmt.Errorf("rank quotes: %w", err)
	}
	report.Ranking = stats

	if p.cache != nil && len(ranked) > 0 {
		payload, err := json.Marshal(ranked)
		if err != nil {
			p.logger.Warn("failed to marshal ranking for cache", "question_id", batch.QuestionID, "error", err)
		} else if err := p.cache.Put(ctx, batch.QuestionID, contentHash, model, payload, p.cacheTTL); err != nil {
			p.logger.Warn("cache write failed", "question_id", batch.QuestionID, "error", err)
		}
	}
	return ranked, nil
}

// publishCorrections emits one signal per flipped speaker label so upstream
// diarization can learn from the disagreement.
func (p *Pipeline) publishCorrections(questionID string, quotes []quote.Quote) {
	for _, q := range quotes {
		if !q.Metadata.CorrectedRole {
			continue
		}
		signal := events.CorrectionSignal{
			QuestionID:       questionID,
			QuoteID:          q.ID.String(),
			ToRole:           q.SpeakerRole,
			FromRole:         flippedFrom(q.SpeakerRole),
			CorrectionReason: q.Metadata.CorrectionReason,
		}
		if dc := q.Metadata.DetectionConfidence; dc != nil {
			signal.InterviewerScore = dc.InterviewerScore
			signal.ExpertScore = dc.ExpertScore
		}
		if err := p.publisher.Publish(events.SubjectQuoteCorrections, signal); err != nil {
			p.logger.Error("failed to publish correction signal", "quote_id", q.ID, "error", err)
		}
	}
}

// LastRun returns the most recent completed run, if any.
func (p *Pipeline) LastRun() (RunReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRun == nil {
		return RunReport{}, false
	}
	return *p.lastRun, true
}

func quoteTexts(quotes []quote.Quote) []string {
	texts := make([]string, len(quotes))
	for i, q := range quotes {
		texts[i] = q.Text
	}
	return texts
}

// flippedFrom recovers the pre-correction role; corrections only ever swap
// the two known roles.
func flippedFrom(current quote.Role) quote.Role {
	if current == quote.RoleExpert {
		return quote.RoleInterviewer
	}
	return quote.RoleExpert
}
