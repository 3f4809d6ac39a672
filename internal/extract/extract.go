// Package extract pulls JSON payloads out of free-form language-model
// responses. Models wrap their output in code fences, greetings, and chatty
// preambles, and frequently emit slightly malformed JSON; extraction runs an
// ordered chain of strategies and the first one that yields valid JSON wins.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParsingError reports that no extraction strategy produced valid JSON.
// Callers skip ranking for the offending response; it is never retried here.
type ParsingError struct {
	Msg string
	Err error
}

func (e *ParsingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParsingError) Unwrap() error { return e.Err }

var (
	fenceOpenRe  = regexp.MustCompile("```json\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```")

	conversationalPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Hello! How can I assist you today\?`),
		regexp.MustCompile(`(?i)^Hello! How can I help you today\?`),
		regexp.MustCompile(`(?i)^Hello! How can I help you\?`),
		regexp.MustCompile(`(?i)^Hello! How can I assist you\?`),
		regexp.MustCompile(`(?i)^Here is the analysis:`),
		regexp.MustCompile(`(?i)^Here is the response:`),
		regexp.MustCompile(`(?i)^Analysis:`),
		regexp.MustCompile(`(?i)^Response:`),
		regexp.MustCompile(`(?i)^JSON:`),
		regexp.MustCompile(`(?i)^Here is the JSON:`),
	}

	// Shape templates for the pattern-based scan, most specific first.
	jsonShapeRes = []*regexp.Regexp{
		regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`),     // nested objects
		regexp.MustCompile(`\[[^\[\]]*(?:\{[^{}]*\}[^\[\]]*)*\]`), // arrays of objects
		regexp.MustCompile(`\{[^{}]*\}`),                          // simple objects
		regexp.MustCompile(`\[[^\[\]]*\]`),                        // simple arrays
	}

	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{\[])\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)

	conversationalPayloads = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Here is the JSON:?\s*(\{.*\}|\[.*\])`),
		regexp.MustCompile(`(?is)Here is the response:?\s*(\{.*\}|\[.*\])`),
		regexp.MustCompile(`(?is)Here is the analysis:?\s*(\{.*\}|\[.*\])`),
		regexp.MustCompile(`(?is)JSON:?\s*(\{.*\}|\[.*\])`),
		regexp.MustCompile(`(?is)Response:?\s*(\{.*\}|\[.*\])`),
		regexp.MustCompile(`(?is)Analysis:?\s*(\{.*\}|\[.*\])`),
	}
)

// ExtractJSON locates a JSON payload inside responseText. It fails with a
// *ParsingError only when every strategy is exhausted.
func ExtractJSON(responseText string) (string, error) {
	if strings.TrimSpace(responseText) == "" {
		return "", &ParsingError{Msg: "empty response text"}
	}

	cleaned := cleanResponseText(responseText)

	strategies := []func(string) string{
		extractBalanced,
		extractWithShapePatterns,
		extractWithFixes,
		extractFromConversation,
	}
	for _, strategy := range strategies {
		if result := strategy(cleaned); result != "" {
			return result, nil
		}
	}

	return "", &ParsingError{Msg: "no valid JSON found in response after all extraction strategies"}
}

// cleanResponseText strips code fences and known conversational preambles.
func cleanResponseText(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = fenceOpenRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	for _, re := range conversationalPrefixes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// extractBalanced scans forward from the first opening delimiter (whichever
// of { or [ appears first), counting nesting depth until the matching close.
func extractBalanced(text string) string {
	start, open := firstDelimiter(text)
	if start == -1 {
		return ""
	}
	if candidate := balancedSlice(text, start, open, matchingClose(open)); candidate != "" && json.Valid([]byte(candidate)) {
		return candidate
	}
	return ""
}

func firstDelimiter(text string) (int, byte) {
	if i := strings.IndexAny(text, "{["); i != -1 {
		return i, text[i]
	}
	return -1, 0
}

func matchingClose(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}

// balancedSlice returns text[start:i+1] where i closes the delimiter opened at
// start, or "" when the text ends before depth returns to zero.
func balancedSlice(text string, start int, open, closing byte) string {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// extractWithShapePatterns applies regex templates for common payload shapes
// and validates each candidate by parse attempt.
func extractWithShapePatterns(text string) string {
	for _, re := range jsonShapeRes {
		for _, match := range re.FindAllString(text, -1) {
			if json.Valid([]byte(match)) {
				return match
			}
		}
	}
	return ""
}

// extractWithFixes applies common syntactic repairs (trailing commas before a
// closing delimiter, bare identifier keys) and re-runs the balanced scan on
// the repaired text.
func extractWithFixes(text string) string {
	start, _ := firstDelimiter(text)
	if start == -1 {
		return ""
	}
	fixed := applyCommonFixes(text[start:])
	if fixed != "" && json.Valid([]byte(fixed)) {
		return fixed
	}
	return ""
}

func applyCommonFixes(text string) string {
	fixed := trailingCommaRe.ReplaceAllString(text, "$1")
	fixed = bareKeyRe.ReplaceAllString(fixed, `$1"$2":`)

	if start, open := firstDelimiter(fixed); start != -1 {
		if balanced := balancedSlice(fixed, start, open, matchingClose(open)); balanced != "" {
			return balanced
		}
	}
	return fixed
}

// extractFromConversation pulls a trailing JSON payload out of chatty wrapper
// text via prefix-anchored templates.
func extractFromConversation(text string) string {
	for _, re := range conversationalPayloads {
		for _, groups := range re.FindAllStringSubmatch(text, -1) {
			if len(groups) > 1 && json.Valid([]byte(groups[1])) {
				return groups[1]
			}
		}
	}
	return ""
}

// ParseJSONSafe converts JSON text to a structured value. Failures carry
// line/column diagnostics from the underlying decoder.
func ParseJSONSafe(jsonText, context string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(jsonText), &value); err != nil {
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			line, col := lineCol(jsonText, syntaxErr.Offset)
			return nil, &ParsingError{
				Msg: fmt.Sprintf("failed to parse JSON in %s at line %d, column %d", context, line, col),
				Err: err,
			}
		}
		return nil, &ParsingError{Msg: fmt.Sprintf("failed to parse JSON in %s", context), Err: err}
	}
	return value, nil
}

func lineCol(text string, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(text)); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
