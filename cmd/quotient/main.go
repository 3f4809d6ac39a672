package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/veridian-research/quotient/internal/api"
	"github.com/veridian-research/quotient/internal/cache"
	"github.com/veridian-research/quotient/internal/config"
	"github.com/veridian-research/quotient/internal/corrector"
	"github.com/veridian-research/quotient/internal/dedup"
	"github.com/veridian-research/quotient/internal/events"
	"github.com/veridian-research/quotient/internal/ingest"
	"github.com/veridian-research/quotient/internal/openai"
	"github.com/veridian-research/quotient/internal/patterns"
	"github.com/veridian-research/quotient/internal/pipeline"
	"github.com/veridian-research/quotient/internal/prefilter"
	"github.com/veridian-research/quotient/internal/ranker"
	"github.com/veridian-research/quotient/internal/scorer"
)

func main() {
	ingestDir := flag.String("ingest", "", "replay JSONL quote exports from this directory, then exit")
	ingestFile := flag.String("ingest-file", "", "replay a single JSONL quote export, then exit")
	dryRun := flag.Bool("dry-run", false, "with -ingest: parse and report without processing")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("quotient starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenAI client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	// Ranking cache (optional — without it every batch re-ranks)
	var rankCache *cache.Store
	if cfg.DatabaseURL != "" {
		var err error
		rankCache, err = cache.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer rankCache.Close()
		if err := rankCache.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure cache schema", "error", err)
			os.Exit(1)
		}
		slog.Info("ranking cache connected")
	} else {
		slog.Warn("DATABASE_URL not set — running without ranking cache")
	}

	// NATS
	natsClient, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Pipeline
	lib := patterns.Default(strings.ToLower(cfg.SubjectName))
	sc := scorer.New(lib, cfg.ConfidenceThreshold)
	pipe := pipeline.New(
		corrector.New(sc, corrector.Thresholds{}, slog.Default()),
		prefilter.New(lib, sc, slog.Default()),
		dedup.New(cfg.DedupThreshold, slog.Default()),
		ranker.New(llm, slog.Default()),
		cacheOrNil(rankCache),
		natsClient,
		cfg.CacheTTL,
		slog.Default(),
	)

	// Ingest mode: replay exports and exit.
	if *ingestDir != "" || *ingestFile != "" {
		runner := ingest.NewRunner(ingest.Config{
			Dir:        *ingestDir,
			SingleFile: *ingestFile,
			DryRun:     *dryRun,
		}, pipe, slog.Default())
		if _, err := runner.Run(ctx); err != nil {
			slog.Error("ingest failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Subscribe to incoming quote batches.
	if err := natsClient.Subscribe(events.SubjectTranscriptQuotes, pipe.HandleQuoteBatch); err != nil {
		slog.Error("failed to subscribe to quote batches", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, pipe, cacheAdminOrNil(rankCache))
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := natsClient.Publish("research.service.quotient.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"model":     cfg.OpenAIModel,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("quotient ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("quotient stopped")
}

// cacheOrNil avoids handing the pipeline a typed-nil interface when the cache
// is not configured.
func cacheOrNil(s *cache.Store) pipeline.RankingCache {
	if s == nil {
		return nil
	}
	return s
}

func cacheAdminOrNil(s *cache.Store) api.CacheAdmin {
	if s == nil {
		return nil
	}
	return s
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
