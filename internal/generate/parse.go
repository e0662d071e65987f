package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"faqgen/internal/models"

	"github.com/google/uuid"
)

// ErrMalformedResponse marks model output the parser could not use. The
// rotation logic treats it as a per-backend batch failure, like any other
// non-rate-limit error.
var ErrMalformedResponse = errors.New("malformed model response")

// ParseQuestions extracts candidate questions from free-form model output:
// non-empty lines ending with a question mark, in order.
func ParseQuestions(text string) ([]models.GeneratedQuestion, error) {
	var questions []models.GeneratedQuestion
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasSuffix(line, "?") {
			continue
		}
		questions = append(questions, models.GeneratedQuestion{
			ID:       uuid.New(),
			Question: line,
		})
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions found", ErrMalformedResponse)
	}
	return questions, nil
}

// ParseAnswerBatch extracts the JSON answer array from model output, which
// may be wrapped in markdown fences or surrounded by commentary.
func ParseAnswerBatch(text string) ([]models.GeneratedFAQ, error) {
	raw, err := ExtractJSONArray(text)
	if err != nil {
		return nil, err
	}

	var answers []models.GeneratedFAQ
	if err := json.Unmarshal([]byte(SanitizeJSON(raw)), &answers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: empty answer array", ErrMalformedResponse)
	}
	for _, a := range answers {
		if a.Question == "" || a.Answer == "" {
			return nil, fmt.Errorf("%w: missing question or answer field", ErrMalformedResponse)
		}
	}
	return answers, nil
}

// ExtractJSONArray cuts the outermost JSON array out of model output,
// stripping markdown code fences first.
func ExtractJSONArray(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON array found", ErrMalformedResponse)
	}
	return text[start : end+1], nil
}

// SanitizeJSON escapes raw control characters inside string values. Models
// regularly emit literal newlines inside answers, which is invalid JSON.
// Already-valid input is returned unchanged.
func SanitizeJSON(raw string) string {
	if json.Valid([]byte(raw)) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	inString := false
	escaped := false
	for _, r := range raw {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			b.WriteRune(r)
			escaped = true
			continue
		}
		if r == '"' {
			inString = !inString
			b.WriteRune(r)
			continue
		}

		if inString {
			switch {
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			case r < 0x20:
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
