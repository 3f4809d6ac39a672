// Package corrector rewrites quote speaker roles when the confidence scorer
// disagrees with the ingested label, attaching provenance for every decision.
package corrector

import (
	"log/slog"

	"github.com/veridian-research/quotient/internal/quote"
	"github.com/veridian-research/quotient/internal/scorer"
)

// Correction reasons recorded in quote metadata.
const (
	ReasonInterviewerDetected = "interviewer_question_detected"
	ReasonExpertDetected      = "expert_response_detected"
)

// Thresholds classify a correction's confidence tier for summary statistics.
// The defaults are empirical; they are configuration, not constants.
type Thresholds struct {
	InterviewerHigh   int
	InterviewerMedium int
	ExpertHigh        int
	ExpertMedium      int
}

// DefaultThresholds mirrors the tiers observed to work in production analysis
// runs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		InterviewerHigh:   4,
		InterviewerMedium: 2,
		ExpertHigh:        5,
		ExpertMedium:      3,
	}
}

// Summary aggregates a correction pass for reporting.
type Summary struct {
	Corrected        int            `json:"corrected"`
	HighConfidence   int            `json:"high_confidence"`
	MediumConfidence int            `json:"medium_confidence"`
	LowConfidence    int            `json:"low_confidence"`
	Reasons          map[string]int `json:"reasons,omitempty"`
}

// Corrector validates and corrects quote speaker roles.
type Corrector struct {
	scorer     *scorer.Scorer
	thresholds Thresholds
	logger     *slog.Logger
}

// New builds a corrector around a scorer. Zero-valued thresholds fall back to
// the defaults.
func New(s *scorer.Scorer, thresholds Thresholds, logger *slog.Logger) *Corrector {
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	return &Corrector{scorer: s, thresholds: thresholds, logger: logger}
}

// Correct scores every quote and returns a new list with corrected roles and
// detection provenance. The input list is never mutated.
//
// A role flips only when exactly one detector fires against the current
// label: expert→interviewer on an interviewer match, interviewer→expert on an
// expert match without an interviewer match. When both or neither detector
// fires, the original label is trusted.
func (c *Corrector) Correct(quotes []quote.Quote) ([]quote.Quote, Summary) {
	out := make([]quote.Quote, len(quotes))
	summary := Summary{Reasons: make(map[string]int)}

	for i, q := range quotes {
		res := c.scorer.Score(q.Text)

		q.Metadata.DetectionConfidence = &quote.DetectionConfidence{
			InterviewerScore: res.InterviewerScore,
			ExpertScore:      res.ExpertScore,
			InterviewerCues:  cueNames(res.InterviewerCues),
			ExpertCues:       cueNames(res.ExpertCues),
		}

		switch {
		case res.IsInterviewer && q.SpeakerRole == quote.RoleExpert:
			q.SpeakerRole = quote.RoleInterviewer
			q.Metadata.CorrectedRole = true
			q.Metadata.CorrectionReason = ReasonInterviewerDetected
			c.tally(&summary, ReasonInterviewerDetected,
				res.InterviewerScore, c.thresholds.InterviewerHigh, c.thresholds.InterviewerMedium)

		case !res.IsInterviewer && res.IsExpert && q.SpeakerRole == quote.RoleInterviewer:
			q.SpeakerRole = quote.RoleExpert
			q.Metadata.CorrectedRole = true
			q.Metadata.CorrectionReason = ReasonExpertDetected
			c.tally(&summary, ReasonExpertDetected,
				res.ExpertScore, c.thresholds.ExpertHigh, c.thresholds.ExpertMedium)
		}

		out[i] = q
	}

	if summary.Corrected > 0 && c.logger != nil {
		c.logger.Info("speaker roles corrected",
			"corrected", summary.Corrected,
			"high", summary.HighConfidence,
			"medium", summary.MediumConfidence,
			"low", summary.LowConfidence,
		)
	}
	return out, summary
}

// Recommend exposes the scorer's tie-break diagnostic for an utterance.
func (c *Corrector) Recommend(text string) scorer.Recommendation {
	return c.scorer.Score(text).Recommend()
}

func (c *Corrector) tally(s *Summary, reason string, score, high, medium int) {
	s.Corrected++
	s.Reasons[reason]++
	switch {
	case score >= high:
		s.HighConfidence++
	case score >= medium:
		s.MediumConfidence++
	default:
		s.LowConfidence++
	}
}

func cueNames(cues []scorer.Cue) []string {
	if len(cues) == 0 {
		return nil
	}
	names := make([]string, len(cues))
	for i, c := range cues {
		names[i] = c.Name
	}
	return names
}
