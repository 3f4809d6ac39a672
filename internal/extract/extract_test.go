package extract

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExtractJSON_Plain(t *testing.T) {
	got, err := ExtractJSON(`{"key": "value"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"key": "value"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSON_MarkdownFenceRoundTrip(t *testing.T) {
	valid := `{"quotes": [{"quote_index": 1, "relevance_score": 8.5}]}`
	wrapped := "```json\n" + valid + "\n```"

	got, err := ExtractJSON(wrapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, err := ParseJSONSafe(valid, "test")
	if err != nil {
		t.Fatalf("reference parse failed: %v", err)
	}
	have, err := ParseJSONSafe(got, "test")
	if err != nil {
		t.Fatalf("extracted parse failed: %v", err)
	}
	if !reflect.DeepEqual(want, have) {
		t.Errorf("round trip mismatch: %v vs %v", want, have)
	}
}

func TestExtractJSON_ConversationalPreamble(t *testing.T) {
	got, err := ExtractJSON(`Here is the analysis: {"key": "value"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"key": "value"}` {
		t.Errorf("got %q, want the bare object", got)
	}
}

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	text := `Sure! Here are the themes you asked for. {"name": "Speed"} Hope that helps.`

	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"name": "Speed"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSON_RepairsTrailingComma(t *testing.T) {
	got, err := ExtractJSON(`{"a": 1, "b": 2,}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, err := ParseJSONSafe(got, "test")
	if err != nil {
		t.Fatalf("repaired text does not parse: %v", err)
	}
	obj := value.(map[string]any)
	if obj["a"] != 1.0 || obj["b"] != 2.0 {
		t.Errorf("unexpected repaired value: %v", obj)
	}
}

func TestExtractJSON_RepairsBareKeys(t *testing.T) {
	got, err := ExtractJSON(`{name: "Pricing Power", "max_quotes": 3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, err := ParseJSONSafe(got, "test")
	if err != nil {
		t.Fatalf("repaired text does not parse: %v", err)
	}
	if value.(map[string]any)["name"] != "Pricing Power" {
		t.Errorf("unexpected repaired value: %v", value)
	}
}

func TestExtractJSON_AllStrategiesExhausted(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace", "   \n  "},
		{"prose only", "I could not produce a ranking for these quotes."},
		{"unclosed brace", `{"key": "value"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSON(tt.in)
			var parseErr *ParsingError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected *ParsingError, got %v", err)
			}
		})
	}
}

func TestParseJSONSafe_Diagnostics(t *testing.T) {
	_, err := ParseJSONSafe("{\n  \"a\": ,\n}", "test payload")
	var parseErr *ParsingError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParsingError, got %v", err)
	}
	// The decoder stops on line 2; the message must carry position info.
	if want := "line 2"; !strings.Contains(parseErr.Msg, want) {
		t.Errorf("message %q missing %q", parseErr.Msg, want)
	}
}
