// Package ingest replays JSONL quote exports through the pipeline, for
// backfilling questions that were analyzed before this service existed or
// reprocessing after a model upgrade.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/veridian-research/quotient/internal/events"
	"github.com/veridian-research/quotient/internal/quote"
)

// quoteLine is one JSONL record of an exported quote.
type quoteLine struct {
	ID             string `json:"id"`
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	Text           string `json:"text"`
	SpeakerRole    string `json:"speaker_role"`
	TranscriptName string `json:"transcript_name"`
	Position       int    `json:"position"`
}

// ParseFile reads a JSONL export and groups its quotes into one batch per
// question. Malformed lines and lines without a question_id or text are
// skipped; skipped reports how many.
func ParseFile(path string) (batches []events.QuoteBatch, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	byQuestion := make(map[string]*events.QuoteBatch)
	var order []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB line buffer
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line quoteLine
		if err := json.Unmarshal(raw, &line); err != nil {
			skipped++
			continue
		}
		if line.QuestionID == "" || line.Text == "" {
			skipped++
			continue
		}

		batch, ok := byQuestion[line.QuestionID]
		if !ok {
			batch = &events.QuoteBatch{QuestionID: line.QuestionID, Question: line.Question}
			byQuestion[line.QuestionID] = batch
			order = append(order, line.QuestionID)
		}
		if batch.Question == "" {
			batch.Question = line.Question
		}

		id, err := uuid.Parse(line.ID)
		if err != nil {
			id = uuid.New()
		}
		batch.Quotes = append(batch.Quotes, quote.Quote{
			ID:             id,
			Text:           line.Text,
			SpeakerRole:    quote.ParseRole(line.SpeakerRole),
			TranscriptName: line.TranscriptName,
			Position:       line.Position,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan: %w", err)
	}

	for _, qid := range order {
		batch := byQuestion[qid]
		sort.SliceStable(batch.Quotes, func(i, j int) bool {
			return batch.Quotes[i].Position < batch.Quotes[j].Position
		})
		batches = append(batches, *batch)
	}
	return batches, skipped, nil
}
