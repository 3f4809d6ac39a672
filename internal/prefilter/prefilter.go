// Package prefilter narrows a candidate quote pool for a question before the
// expensive model ranking runs. Filtering is fail-open: when no keyword family
// matches the question, every remaining expert quote passes through rather
// than starving the ranker.
package prefilter

import (
	"log/slog"
	"strings"

	"github.com/veridian-research/quotient/internal/patterns"
	"github.com/veridian-research/quotient/internal/quote"
	"github.com/veridian-research/quotient/internal/scorer"
)

// Prefilter reduces quote sets using corrected roles and per-question keyword
// families.
type Prefilter struct {
	lib    *patterns.Library
	scorer *scorer.Scorer
	logger *slog.Logger
}

// New builds a prefilter sharing the scorer's pattern library.
func New(lib *patterns.Library, s *scorer.Scorer, logger *slog.Logger) *Prefilter {
	return &Prefilter{lib: lib, scorer: s, logger: logger}
}

// Filter returns the quotes relevant to question. Non-expert quotes are
// dropped first, then quotes the scorer independently re-detects as
// interviewer questions (defense against stale role labels), then quotes that
// match no term of the question's keyword family.
func (p *Prefilter) Filter(quotes []quote.Quote, question string) []quote.Quote {
	if len(quotes) == 0 {
		return nil
	}

	family := p.lib.FamilyFor(strings.ToLower(question))

	var out []quote.Quote
	questionsRemoved := 0
	for _, q := range quotes {
		if q.SpeakerRole != quote.RoleExpert {
			continue
		}
		if p.scorer.Score(q.Text).IsInterviewer {
			questionsRemoved++
			continue
		}
		if family != nil && !matchesFamily(q.Text, family) {
			continue
		}
		out = append(out, q)
	}

	if p.logger != nil {
		familyName := "none"
		if family != nil {
			familyName = family.Name
		}
		p.logger.Debug("prefiltered quotes",
			"in", len(quotes),
			"out", len(out),
			"family", familyName,
			"stale_questions_removed", questionsRemoved,
		)
	}
	return out
}

func matchesFamily(text string, family *patterns.Family) bool {
	lower := strings.ToLower(text)
	for _, term := range family.Terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
