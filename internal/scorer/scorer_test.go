package scorer

import (
	"strings"
	"testing"

	"github.com/veridian-research/quotient/internal/patterns"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	return New(patterns.Default(""), DefaultThreshold)
}

func TestScore_LeadingQuestionWord(t *testing.T) {
	s := newTestScorer(t)

	res := s.Score("What evidence shows market leadership?")

	if !res.IsInterviewer {
		t.Error("expected is_interviewer true")
	}
	if res.InterviewerScore < 4 {
		t.Errorf("interviewer_score = %d, want >= 4", res.InterviewerScore)
	}
	if res.IsExpert {
		t.Error("expected is_expert false for a short question")
	}
}

func TestScore_ExpertResponse(t *testing.T) {
	s := newTestScorer(t)

	res := s.Score("Our rapid turnaround times give us a significant advantage over competitors.")

	if !res.IsExpert {
		t.Errorf("expected is_expert true, expert_score = %d, cues = %v", res.ExpertScore, res.ExpertCues)
	}
	if res.IsInterviewer {
		t.Errorf("expected is_interviewer false, interviewer_score = %d, cues = %v", res.InterviewerScore, res.InterviewerCues)
	}
}

func TestScore_HighPatternRegardlessOfThreshold(t *testing.T) {
	texts := []string{
		"Why did volumes drop?",
		"How do they compare?",
		"Tell me more please.",
		"Walk me through the onboarding.",
	}
	for _, threshold := range []int{1, 2, 3} {
		s := New(patterns.Default(""), threshold)
		for _, text := range texts {
			res := s.Score(text)
			if res.InterviewerScore < 3 {
				t.Errorf("threshold %d, %q: interviewer_score = %d, want >= 3", threshold, text, res.InterviewerScore)
			}
			if !res.IsInterviewer {
				t.Errorf("threshold %d, %q: expected is_interviewer true", threshold, text)
			}
		}
	}
}

func TestScore_TwoBusinessTermsMakeExpert(t *testing.T) {
	// No interviewer pattern, two business terms.
	s := newTestScorer(t)
	res := s.Score("Pricing pressure forced a revenue reset last year.")

	if !res.IsExpert {
		t.Errorf("expected is_expert true, expert_score = %d", res.ExpertScore)
	}
}

func TestScore_TierDeltaIsNonCumulative(t *testing.T) {
	s := newTestScorer(t)

	// Two high-tier openers cannot both fire; the tier contributes +3 once.
	res := s.Score("What happened")
	var highDelta int
	for _, cue := range res.InterviewerCues {
		if cue.Name == "high_pattern" {
			highDelta += cue.Delta
		}
	}
	if highDelta != 3 {
		t.Errorf("high_pattern tier contributed %d, want exactly 3", highDelta)
	}
}

func TestScore_SubjectMention(t *testing.T) {
	withSubject := New(patterns.Default("flexxray"), DefaultThreshold)
	without := New(patterns.Default(""), DefaultThreshold)

	text := "Is that FlexXray's standard offering?"
	if got, want := withSubject.Score(text).InterviewerScore, without.Score(text).InterviewerScore+1; got != want {
		t.Errorf("subject mention bonus: got %d, want %d", got, want)
	}
}

func TestScore_LongTextPenalizesInterviewer(t *testing.T) {
	s := newTestScorer(t)

	long := strings.Repeat("we built the process around inspection throughput and it shows. ", 6)
	short := "we built the process around inspection throughput"

	if s.Score(long).InterviewerScore >= s.Score(short).InterviewerScore {
		t.Error("expected long text to score lower than short text for interviewer")
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := newTestScorer(t)
	text := "Could you describe your quality assurance workflow?"

	first := s.Score(text)
	second := s.Score(text)

	if first.InterviewerScore != second.InterviewerScore || first.ExpertScore != second.ExpertScore {
		t.Errorf("scoring is not deterministic: %+v vs %+v", first, second)
	}
	if len(first.InterviewerCues) != len(second.InterviewerCues) {
		t.Error("cue lists differ between runs")
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want Recommendation
	}{
		{"only interviewer", Result{IsInterviewer: true}, RecommendInterviewer},
		{"only expert", Result{IsExpert: true}, RecommendExpert},
		{"both flagged", Result{IsInterviewer: true, IsExpert: true}, RecommendUncertainInterviewer},
		{"neither flagged", Result{}, RecommendUncertainExpert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Recommend(); got != tt.want {
				t.Errorf("Recommend() = %q, want %q", got, tt.want)
			}
		})
	}
}
