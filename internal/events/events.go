// Package events is the NATS surface of the service: quote batches arrive on
// the transcript subject, ranked results and role-correction signals go back
// out for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/veridian-research/quotient/internal/quote"
)

const (
	// SubjectTranscriptQuotes carries incoming quote batches per question.
	SubjectTranscriptQuotes = "research.transcript.quotes"
	// SubjectQuotesRanked carries completed rankings.
	SubjectQuotesRanked = "research.quotes.ranked"
	// SubjectQuoteCorrections carries role-correction signals so upstream
	// diarization can learn from flipped labels.
	SubjectQuoteCorrections = "research.quotes.corrections"
)

// QuoteBatch is the inbound payload on SubjectTranscriptQuotes.
type QuoteBatch struct {
	QuestionID string        `json:"question_id"`
	Question   string        `json:"question"`
	Quotes     []quote.Quote `json:"quotes"`
}

// RankedBatch is the outbound payload on SubjectQuotesRanked.
type RankedBatch struct {
	QuestionID string              `json:"question_id"`
	Question   string              `json:"question"`
	Model      string              `json:"model"`
	CacheHit   bool                `json:"cache_hit"`
	Quotes     []quote.Quote       `json:"quotes"`
	Coverage   quote.CoverageStats `json:"coverage"`
}

// CorrectionSignal is emitted once per flipped speaker label.
type CorrectionSignal struct {
	QuestionID       string     `json:"question_id"`
	QuoteID          string     `json:"quote_id"`
	FromRole         quote.Role `json:"from_role"`
	ToRole           quote.Role `json:"to_role"`
	CorrectionReason string     `json:"correction_reason"`
	InterviewerScore int        `json:"interviewer_score"`
	ExpertScore      int        `json:"expert_score"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
