package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/veridian-research/quotient/internal/events"
	"github.com/veridian-research/quotient/internal/pipeline"
)

// Config holds the ingest command configuration.
type Config struct {
	Dir        string // directory walked for .jsonl exports
	SingleFile string // process a single file only
	MinQuotes  int    // skip batches with fewer quotes
	DryRun     bool   // parse and report without running the pipeline
}

// BatchProcessor is the pipeline surface the runner drives.
type BatchProcessor interface {
	Run(ctx context.Context, batch events.QuoteBatch) (pipeline.RunReport, error)
}

// Runner replays exported quote files through the pipeline.
type Runner struct {
	cfg      Config
	pipeline BatchProcessor
	logger   *slog.Logger
}

func NewRunner(cfg Config, p BatchProcessor, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, pipeline: p, logger: logger}
}

// Summary reports one ingest run.
type Summary struct {
	Files        int
	Batches      int
	Quotes       int
	SkippedLines int
	Errors       int
}

// Run discovers and processes every export file, continuing past per-file and
// per-batch failures.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	files, err := r.discoverFiles()
	if err != nil {
		return Summary{}, fmt.Errorf("discover files: %w", err)
	}

	r.logger.Info("ingest files discovered", "files", len(files), "dry_run", r.cfg.DryRun)

	var summary Summary
	for _, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		batches, skipped, err := ParseFile(path)
		if err != nil {
			r.logger.Warn("failed to parse export file", "path", path, "error", err)
			summary.Errors++
			continue
		}
		summary.Files++
		summary.SkippedLines += skipped

		for _, batch := range batches {
			if len(batch.Quotes) < r.cfg.MinQuotes {
				continue
			}
			summary.Batches++
			summary.Quotes += len(batch.Quotes)

			if r.cfg.DryRun {
				r.logger.Info("would process batch",
					"question_id", batch.QuestionID,
					"quotes", len(batch.Quotes))
				continue
			}

			if _, err := r.pipeline.Run(ctx, batch); err != nil {
				r.logger.Error("batch processing failed",
					"question_id", batch.QuestionID,
					"path", path,
					"error", err)
				summary.Errors++
			}
		}
	}

	r.logger.Info("ingest complete",
		"files", summary.Files,
		"batches", summary.Batches,
		"quotes", summary.Quotes,
		"skipped_lines", summary.SkippedLines,
		"errors", summary.Errors)
	return summary, nil
}

func (r *Runner) discoverFiles() ([]string, error) {
	if r.cfg.SingleFile != "" {
		if _, err := os.Stat(r.cfg.SingleFile); err != nil {
			return nil, fmt.Errorf("single file not found: %s", r.cfg.SingleFile)
		}
		return []string{r.cfg.SingleFile}, nil
	}

	var files []string
	err := filepath.Walk(r.cfg.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", r.cfg.Dir, err)
	}
	return files, nil
}
