// Package patterns holds the static weighted cue sets used by the confidence
// scorer and the question-aware prefilter. A Library is immutable after
// construction so multiple scorers with different thresholds can share one
// safely across goroutines.
package patterns

import (
	"regexp"
	"strings"
)

// Library is the full set of textual cues. All regexes match against
// lowercased, trimmed text.
type Library struct {
	// Interviewer-question tiers. A tier contributes its delta once,
	// regardless of how many of its patterns match.
	HighConfidence   []*regexp.Regexp
	MediumConfidence []*regexp.Regexp
	LowConfidence    []*regexp.Regexp

	// Expert-response vocabulary, matched as substrings.
	ExpertIndicators []string
	BusinessTerms    []string
	IndustryTerms    []string

	// Structural cue inputs.
	QuestionWords    []string
	YouContext       []string
	SpecificityTerms []string

	// Professional connective / evidential phrasing.
	ProfessionalPatterns []*regexp.Regexp

	// SubjectName is the lowercased name of the company or subject under
	// study; its mention inside a question is an interviewer cue.
	SubjectName string

	// Families are the per-question keyword disjunctions used by the
	// prefilter.
	Families []Family
}

// Family is a hand-curated keyword disjunction activated when any of its
// trigger phrases appears in the question text.
type Family struct {
	Name     string
	Triggers []string
	Terms    []string
}

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Default builds the standard library for interview-transcript analysis.
// subjectName may be empty, which disables the subject-mention cue.
func Default(subjectName string) *Library {
	return &Library{
		HighConfidence: compileAll([]string{
			`^what\s+`, `^how\s+`, `^why\s+`, `^when\s+`, `^where\s+`, `^who\s+`,
			`^can you\s+`, `^could you\s+`, `^would you\s+`, `^is that\s+`,
			`^has\s+`, `^do you\s+`, `^are you\s+`, `^tell me\s+`, `^describe\s+`,
			`^explain\s+`, `^walk me through\s+`, `^take me through\s+`,
			`^what if\s+`, `^how about\s+`, `^why do you\s+`, `^when do you\s+`,
			`^where do you\s+`, `^who do you\s+`, `^can we\s+`, `^could we\s+`,
			`^would we\s+`, `^is there\s+`, `^are there\s+`, `^does it\s+`,
			`^do they\s+`, `^have you\s+`, `^has it\s+`, `^will you\s+`,
			`^should we\s+`, `^might you\s+`, `^could it\s+`, `^would it\s+`,
		}),
		MediumConfidence: compileAll([]string{
			`^just to start out`, `^i guess, just on`, `^out of those, how many`,
			`^you would really go to`, `^i'm curious about`, `^i'd like to understand`,
			`^help me understand`, `^can you help me`, `^i want to know`,
			`^i'm wondering`, `^i'd love to hear`, `^it would be great to know`,
			`^i'm trying to understand`, `^i'm looking to understand`, `^i need to know`,
			`^i'd appreciate if you could`, `^would it be possible to`, `^i was thinking`,
			`^let me ask you`, `^let me get this straight`, `^so what you're saying is`,
			`^to clarify`, `^to make sure i understand`, `^just to confirm`,
			`^one more thing`, `^before we move on`, `^while we're on the topic`,
		}),
		LowConfidence: compileAll([]string{
			`\b(think|thought|thinking)\s+about\b`, `\b(see|saw|seeing)\s+in\b`,
			`\b(find|found|finding)\s+out\b`, `\b(learn|learned|learning)\s+about\b`,
			`\b(hear|heard|hearing)\s+about\b`, `\b(read|reading)\s+about\b`,
			`\b(experience|experienced)\s+with\b`, `\b(work|worked|working)\s+with\b`,
			`\b(deal|dealt|dealing)\s+with\b`, `\b(handle|handled|handling)\b`,
		}),
		ExpertIndicators: []string{
			"our company", "our team", "our customers", "our service", "our technology",
			"we have", "we provide", "we offer", "we deliver", "we specialize",
			"i believe", "i think", "in my experience", "from my perspective",
			"the advantage", "the benefit", "the challenge", "the opportunity",
			"our approach", "our strategy", "our process", "our methodology",
			"we focus on", "we concentrate on", "we emphasize", "we prioritize",
			"our capabilities", "our expertise", "our knowledge", "our understanding",
			"we've developed", "we've created", "we've built", "we've established",
			"our competitive position", "our market position", "our industry position",
			"we're able to", "we can", "we will", "we do", "we are", "we have been",
		},
		BusinessTerms: []string{
			"revenue", "profit", "market", "customer", "competition", "technology",
			"turnaround", "pricing",
			"innovation", "strategy", "advantage", "benefit", "challenge", "opportunity",
			"efficiency", "effectiveness", "quality", "performance", "capability",
			"capacity", "scalability", "sustainability", "reliability", "flexibility",
			"integration", "optimization", "standardization", "automation", "digitization",
			"compliance", "regulatory", "certification", "accreditation", "validation",
			"verification", "testing", "inspection", "analysis", "assessment", "evaluation",
		},
		IndustryTerms: []string{
			"food safety", "quality assurance", "foreign material", "contamination",
			"inspection", "detection", "x-ray", "imaging", "processing", "packaging",
			"manufacturing", "production", "supply chain", "logistics", "distribution",
			"retail", "wholesale", "restaurant", "catering", "food service", "hospitality",
		},
		QuestionWords: []string{
			"what", "how", "why", "when", "where", "who", "can", "could", "would",
			"is", "are", "do", "does", "has", "have",
		},
		YouContext: []string{
			"you think", "you believe", "you see", "you find",
		},
		SpecificityTerms: []string{
			"specific", "particular", "exact", "precise", "detailed", "comprehensive",
		},
		ProfessionalPatterns: compileAll([]string{
			`\b(according to|based on|research shows|studies indicate|data suggests)\b`,
			`\b(typically|generally|usually|commonly|frequently)\b`,
			`\b(however|nevertheless|furthermore|additionally|moreover)\b`,
			`\b(consequently|therefore|thus|hence|as a result)\b`,
		}),
		SubjectName: subjectName,
		Families:    defaultFamilies(),
	}
}

func defaultFamilies() []Family {
	return []Family{
		{
			Name:     "market_leadership",
			Triggers: []string{"market leadership", "competitive advantage"},
			Terms: []string{
				"advantage", "strength", "leadership", "competitive", "superior",
				"better", "excellent", "strong", "market", "position", "edge", "benefit",
			},
		},
		{
			Name:     "value_proposition",
			Triggers: []string{"value proposition", "insourcing risk"},
			Terms: []string{
				"value", "proposition", "benefit", "advantage", "cost", "pricing",
				"quality", "service", "turnaround", "efficiency", "effectiveness",
				"superior", "better", "advantageous",
			},
		},
		{
			Name:     "customer_satisfaction",
			Triggers: []string{"customer satisfaction", "loyalty"},
			Terms: []string{
				"customer", "satisfaction", "loyalty", "retention", "experience",
				"service", "quality", "turnaround", "portal", "interface", "user",
				"friendly", "easy", "convenient", "helpful",
			},
		},
		{
			Name:     "technology_advantage",
			Triggers: []string{"technology", "innovation"},
			Terms: []string{
				"technology", "innovation", "proprietary", "advanced", "sophisticated",
				"cutting-edge", "modern", "efficient", "automated", "digital",
				"software", "system", "platform", "solution",
			},
		},
		{
			Name:     "growth_potential",
			Triggers: []string{"growth", "expansion"},
			Terms: []string{
				"growth", "expansion", "increase", "grow", "expand", "scalable",
				"scalability", "capacity", "volume", "demand", "opportunity",
				"potential", "future", "market", "customer",
			},
		},
		{
			Name:     "operational_efficiency",
			Triggers: []string{"operational efficiency", "cost structure"},
			Terms: []string{
				"efficiency", "efficient", "cost", "pricing", "turnaround", "speed",
				"fast", "quick", "rapid", "streamlined", "optimized", "process",
				"workflow", "automation", "productivity",
			},
		},
		{
			Name:     "industry_expertise",
			Triggers: []string{"industry expertise", "knowledge"},
			Terms: []string{
				"expertise", "knowledge", "experience", "understanding", "insight",
				"perspective", "viewpoint", "assessment", "evaluation", "analysis",
				"industry", "market", "sector", "field", "domain",
			},
		},
	}
}

// FamilyFor returns the first family whose trigger matches the lowercased
// question text, or nil when none applies.
func (l *Library) FamilyFor(questionLower string) *Family {
	for i := range l.Families {
		for _, trigger := range l.Families[i].Triggers {
			if strings.Contains(questionLower, trigger) {
				return &l.Families[i]
			}
		}
	}
	return nil
}
