//go:build integration

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_PubSub(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()
	logger := slog.Default()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan QuoteBatch, 1)

	err = client.Subscribe("research.transcript.test.>", func(subject string, data []byte) {
		var batch QuoteBatch
		json.Unmarshal(data, &batch)
		received <- batch
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	err = client.Publish("research.transcript.test.ping", QuoteBatch{
		QuestionID: "q-test",
		Question:   "integration ping",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case batch := <-received:
		if batch.QuestionID != "q-test" {
			t.Errorf("expected q-test, got %v", batch)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
