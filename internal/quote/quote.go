// Package quote defines the core data model shared across the pipeline:
// quotes, speaker roles, selection stages, and coverage accounting.
package quote

import "github.com/google/uuid"

// Role is the speaker classification attached to a quote.
type Role string

const (
	RoleExpert      Role = "expert"
	RoleInterviewer Role = "interviewer"
	RoleUnknown     Role = "unknown"
)

// ParseRole normalizes a raw role string to one of the three enumerated values.
func ParseRole(s string) Role {
	switch s {
	case "expert":
		return RoleExpert
	case "interviewer":
		return RoleInterviewer
	default:
		return RoleUnknown
	}
}

// DetectionConfidence carries the scorer output recorded on a quote.
type DetectionConfidence struct {
	InterviewerScore int      `json:"interviewer_score"`
	ExpertScore      int      `json:"expert_score"`
	InterviewerCues  []string `json:"interviewer_cues,omitempty"`
	ExpertCues       []string `json:"expert_cues,omitempty"`
}

// Metadata is the open provenance mapping on a quote. Fields are pointers or
// zero-value-meaningful so absent provenance stays absent in JSON.
type Metadata struct {
	CorrectedRole       bool                 `json:"corrected_role,omitempty"`
	CorrectionReason    string               `json:"correction_reason,omitempty"`
	DetectionConfidence *DetectionConfidence `json:"detection_confidence,omitempty"`
	SelectionStage      Stage                `json:"selection_stage,omitempty"`
	RelevanceScore      float64              `json:"relevance_score,omitempty"`
	RelevanceReason     string               `json:"relevance_explanation,omitempty"`
	KeyInsight          string               `json:"key_insight,omitempty"`
	Rank                int                  `json:"rank,omitempty"`
	ErrorNote           string               `json:"error_note,omitempty"`
}

// Quote is a single utterance extracted from an interview transcript.
type Quote struct {
	ID             uuid.UUID `json:"id"`
	Text           string    `json:"text"`
	SpeakerRole    Role      `json:"speaker_role"`
	TranscriptName string    `json:"transcript_name"`
	Position       int       `json:"position"`
	Metadata       Metadata  `json:"metadata"`
}

// NormalizeRelevance clamps an incoming relevance score to the non-negative
// range required by the data model. Invalid (negative, NaN-ish) inputs
// normalize to 0.
func NormalizeRelevance(score float64) float64 {
	if score != score || score < 0 {
		return 0.0
	}
	return score
}
