// Package api exposes the operational HTTP surface: health, status, ranking
// coverage of the latest run, and cache administration.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/veridian-research/quotient/internal/cache"
	"github.com/veridian-research/quotient/internal/pipeline"
)

// RunSource reports the most recent pipeline run; satisfied by
// pipeline.Pipeline.
type RunSource interface {
	LastRun() (pipeline.RunReport, bool)
}

// CacheAdmin is the cache surface the admin endpoints need; satisfied by
// cache.Store.
type CacheAdmin interface {
	ReadStats(ctx context.Context) (cache.Stats, error)
	Clear(ctx context.Context) (int64, error)
}

type Server struct {
	router *chi.Mux
	port   int
	runs   RunSource
	cache  CacheAdmin
}

func NewServer(port int, runs RunSource, cacheAdmin CacheAdmin) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		runs:   runs,
		cache:  cacheAdmin,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1/quotient", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/coverage", s.coverage)
		r.Get("/cache/stats", s.cacheStats)
		r.Delete("/cache", s.cacheClear)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"service": "quotient",
		"status":  "ready",
	}
	if report, ok := s.runs.LastRun(); ok {
		resp["last_run"] = report
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) coverage(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runs.LastRun()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed runs"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question_id": report.QuestionID,
		"coverage":    report.Coverage,
	})
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "cache not configured"})
		return
	}
	stats, err := s.cache.ReadStats(r.Context())
	if err != nil {
		slog.Error("cache stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache stats failed"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) cacheClear(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "cache not configured"})
		return
	}
	removed, err := s.cache.Clear(r.Context())
	if err != nil {
		slog.Error("cache clear failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache clear failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
