// Package cache is the content-addressed ranking cache, the only durable
// artifact this service owns. A ranking computed for a (question, transcript
// content, model version) triple is reusable until its TTL passes; any edit
// to the transcript changes the content hash and therefore the key, so
// invalidation needs no bookkeeping.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed ranking cache.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the cache table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ranking_cache (
			cache_key       text PRIMARY KEY,
			question_id     text NOT NULL,
			transcript_hash text NOT NULL,
			model_version   text NOT NULL,
			ranked_results  jsonb NOT NULL,
			created_at      timestamptz NOT NULL DEFAULT now(),
			expires_at      timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create ranking_cache: %w", err)
	}
	return nil
}

// Key derives the deterministic cache key for an identifying triple. The
// fields are NUL-separated before hashing so no concatenation of distinct
// triples can collide.
func Key(questionID, transcriptHash, modelVersion string) string {
	h := sha256.New()
	h.Write([]byte(questionID))
	h.Write([]byte{0})
	h.Write([]byte(transcriptHash))
	h.Write([]byte{0})
	h.Write([]byte(modelVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// HashContent produces the transcript content hash over the quote texts in
// order. Any edit to any quote yields a different hash.
func HashContent(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached ranking for the triple, or ok=false on a miss.
// Entries past expires_at are misses.
func (s *Store) Get(ctx context.Context, questionID, transcriptHash, modelVersion string) (json.RawMessage, bool, error) {
	var ranked json.RawMessage
	err := s.pool.QueryRow(ctx, `
		SELECT ranked_results
		FROM ranking_cache
		WHERE cache_key = $1 AND expires_at > now()`,
		Key(questionID, transcriptHash, modelVersion),
	).Scan(&ranked)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return ranked, true, nil
}

// Put stores a ranking for the triple, replacing any existing entry for the
// same key wholesale. Entries are never mutated in place.
func (s *Store) Put(ctx context.Context, questionID, transcriptHash, modelVersion string, ranked json.RawMessage, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ranking_cache (cache_key, question_id, transcript_hash, model_version, ranked_results, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, now(), now() + make_interval(secs => $6))
		ON CONFLICT (cache_key)
		DO UPDATE SET
			ranked_results = EXCLUDED.ranked_results,
			created_at = now(),
			expires_at = now() + make_interval(secs => $6)`,
		Key(questionID, transcriptHash, modelVersion),
		questionID, transcriptHash, modelVersion, ranked, ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Prune removes expired entries. Correctness never depends on this running;
// it only reclaims space.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ranking_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Clear drops every entry. This is the only external deletion path.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ranking_cache`)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats reports entry counts for the status API.
type Stats struct {
	Entries int64 `json:"entries"`
	Expired int64 `json:"expired"`
}

func (s *Store) ReadStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE expires_at <= now())
		FROM ranking_cache`,
	).Scan(&st.Entries, &st.Expired)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}
