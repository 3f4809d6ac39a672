package patterns

import "testing"

func TestFamilyFor(t *testing.T) {
	lib := Default("")

	tests := []struct {
		question string
		want     string
	}{
		{"what evidence supports market leadership claims?", "market_leadership"},
		{"how strong is the value proposition?", "value_proposition"},
		{"describe customer satisfaction and loyalty drivers", "customer_satisfaction"},
		{"what role does technology play?", "technology_advantage"},
		{"where is the growth coming from?", "growth_potential"},
		{"walk me through the cost structure", "operational_efficiency"},
		{"how deep is their industry expertise?", "industry_expertise"},
	}
	for _, tt := range tests {
		family := lib.FamilyFor(tt.question)
		if family == nil {
			t.Errorf("%q: no family matched, want %s", tt.question, tt.want)
			continue
		}
		if family.Name != tt.want {
			t.Errorf("%q: family = %s, want %s", tt.question, family.Name, tt.want)
		}
	}
}

func TestFamilyFor_NoMatch(t *testing.T) {
	lib := Default("")
	if family := lib.FamilyFor("what did you have for breakfast?"); family != nil {
		t.Errorf("expected no family, got %s", family.Name)
	}
}

func TestDefault_SubjectName(t *testing.T) {
	if Default("acme").SubjectName != "acme" {
		t.Error("subject name not carried into the library")
	}
	if Default("").SubjectName != "" {
		t.Error("empty subject name should stay empty")
	}
}
