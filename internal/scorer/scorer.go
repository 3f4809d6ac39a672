// Package scorer classifies raw utterance text as interviewer question,
// expert response, both, or neither, via weighted pattern and structural cues.
//
// Scoring is a pure function of the pattern library and the input text. Cues
// are evaluated as an ordered rule list so new cues are additive data rather
// than new branches.
package scorer

import (
	"regexp"
	"strings"

	"github.com/veridian-research/quotient/internal/patterns"
)

// Length boundaries for the structural cues. Empirically chosen; see the
// corrector for the matching confidence-tier thresholds.
const (
	shortQuestionLen = 150
	veryShortLen     = 50
	longLen          = 200
	veryLongLen      = 300
	expertLongLen    = 200
	expertMediumLen  = 100
)

// DefaultThreshold is the interviewer confidence threshold.
const DefaultThreshold = 2

// expertThreshold is fixed, independent of the configurable interviewer one.
const expertThreshold = 2

// Cue names one contribution to a confidence score.
type Cue struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

// Result is the scorer output for a single utterance. Both flags may be true
// (ambiguous utterance) or both false; callers own the tie-break policy.
type Result struct {
	IsInterviewer    bool
	IsExpert         bool
	InterviewerScore int
	ExpertScore      int
	InterviewerCues  []Cue
	ExpertCues       []Cue
}

// Recommendation is a diagnostic role suggestion derived from the two flags.
// It is reported for observability and never silently overwrites a role.
type Recommendation string

const (
	RecommendInterviewer          Recommendation = "interviewer"
	RecommendExpert               Recommendation = "expert"
	RecommendUncertainInterviewer Recommendation = "uncertain_interviewer"
	RecommendUncertainExpert      Recommendation = "uncertain_expert"
)

// Recommend maps the flag pair to a role suggestion. When both flags fire the
// interviewer reading takes priority; when neither fires we default to expert.
func (r Result) Recommend() Recommendation {
	switch {
	case r.IsInterviewer && !r.IsExpert:
		return RecommendInterviewer
	case r.IsExpert && !r.IsInterviewer:
		return RecommendExpert
	case r.IsInterviewer && r.IsExpert:
		return RecommendUncertainInterviewer
	default:
		return RecommendUncertainExpert
	}
}

// features are the per-utterance inputs shared by every rule.
type features struct {
	lower       string
	length      int
	hasQuestion bool
}

// rule evaluates one cue; a zero delta means the cue did not fire.
type rule struct {
	name string
	eval func(f features) int
}

// Scorer scores utterances against an immutable pattern library.
type Scorer struct {
	lib       *patterns.Library
	threshold int

	interviewerRules []rule
	expertRules      []rule
}

// New builds a scorer with the given interviewer confidence threshold.
// A threshold <= 0 falls back to DefaultThreshold.
func New(lib *patterns.Library, threshold int) *Scorer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	s := &Scorer{lib: lib, threshold: threshold}
	s.interviewerRules = s.buildInterviewerRules()
	s.expertRules = s.buildExpertRules()
	return s
}

// Threshold reports the configured interviewer confidence threshold.
func (s *Scorer) Threshold() int { return s.threshold }

// Score computes interviewer and expert confidence for an utterance.
func (s *Scorer) Score(text string) Result {
	f := features{
		lower:       strings.ToLower(strings.TrimSpace(text)),
		length:      len(text),
		hasQuestion: strings.Contains(text, "?"),
	}

	res := Result{}
	for _, r := range s.interviewerRules {
		if delta := r.eval(f); delta != 0 {
			res.InterviewerScore += delta
			res.InterviewerCues = append(res.InterviewerCues, Cue{Name: r.name, Delta: delta})
		}
	}
	for _, r := range s.expertRules {
		if delta := r.eval(f); delta != 0 {
			res.ExpertScore += delta
			res.ExpertCues = append(res.ExpertCues, Cue{Name: r.name, Delta: delta})
		}
	}

	res.IsInterviewer = res.InterviewerScore >= s.threshold
	res.IsExpert = res.ExpertScore >= expertThreshold
	return res
}

func (s *Scorer) buildInterviewerRules() []rule {
	lib := s.lib
	return []rule{
		// Tier deltas fire once per tier, not per pattern.
		{"high_pattern", func(f features) int {
			return tierDelta(lib.HighConfidence, f.lower, 3)
		}},
		{"medium_pattern", func(f features) int {
			return tierDelta(lib.MediumConfidence, f.lower, 2)
		}},
		{"low_pattern", func(f features) int {
			return tierDelta(lib.LowConfidence, f.lower, 1)
		}},
		{"question_mark", func(f features) int {
			if f.hasQuestion {
				return 1
			}
			return 0
		}},
		{"short_length", func(f features) int {
			if f.hasQuestion && f.length < shortQuestionLen {
				return 1
			}
			return 0
		}},
		{"subject_mention", func(f features) int {
			if f.hasQuestion && lib.SubjectName != "" && strings.Contains(f.lower, lib.SubjectName) {
				return 1
			}
			return 0
		}},
		{"question_words", func(f features) int {
			return min(countContained(f.lower, lib.QuestionWords), 2)
		}},
		{"expert_indicators", func(f features) int {
			n := countContained(f.lower, lib.ExpertIndicators)
			return -min(n*2, 4)
		}},
		{"business_terms", func(f features) int {
			n := countContained(f.lower, lib.BusinessTerms) + countContained(f.lower, lib.IndustryTerms)
			return -min(n, 3)
		}},
		{"length", func(f features) int {
			switch {
			case f.length > veryLongLen:
				return -2
			case f.length > longLen:
				return -1
			case f.length < veryShortLen:
				return 1
			}
			return 0
		}},
		{"you_context", func(f features) int {
			if containsAny(f.lower, lib.YouContext) {
				return 1
			}
			return 0
		}},
	}
}

func (s *Scorer) buildExpertRules() []rule {
	lib := s.lib
	return []rule{
		{"expert_indicators", func(f features) int {
			return countContained(f.lower, lib.ExpertIndicators)
		}},
		{"length", func(f features) int {
			switch {
			case f.length > expertLongLen:
				return 2
			case f.length > expertMediumLen:
				return 1
			}
			return 0
		}},
		{"business_terms", func(f features) int {
			return min(countContained(f.lower, lib.BusinessTerms), 3)
		}},
		{"industry_terms", func(f features) int {
			return min(countContained(f.lower, lib.IndustryTerms), 2)
		}},
		{"professional_language", func(f features) int {
			n := 0
			for _, re := range lib.ProfessionalPatterns {
				if re.MatchString(f.lower) {
					n++
				}
			}
			return n
		}},
		{"specific_language", func(f features) int {
			if containsAny(f.lower, lib.SpecificityTerms) {
				return 1
			}
			return 0
		}},
	}
}

func tierDelta(tier []*regexp.Regexp, lower string, delta int) int {
	for _, re := range tier {
		if re.MatchString(lower) {
			return delta
		}
	}
	return 0
}

func countContained(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
