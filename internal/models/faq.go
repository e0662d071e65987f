package models

import "github.com/google/uuid"

// AnswerMaxLen is the cap applied to corpus answers to bound memory.
// The offline embedding generator truncates at the same length.
const AnswerMaxLen = 700

// FAQItem is one published FAQ entry as stored in faq.json.
type FAQItem struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Usefulness  int    `json:"usefulness"`
	Path        string `json:"path"`
}

// CorpusEntry is one FAQ item with its precomputed embedding, as produced
// by cmd/embedgen. Entries are immutable after loading.
type CorpusEntry struct {
	ID         string    `json:"faq_id"`
	Vector     []float32 `json:"embedding"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   string    `json:"category"`
	Usefulness int       `json:"usefulness"`
}

// GeneratedQuestion is a candidate question proposed by the LLM.
type GeneratedQuestion struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Selected bool      `json:"selected"`
}

// GeneratedFAQ is a question/answer pair produced by the generation pipeline.
type GeneratedFAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TruncateAnswer caps an answer at AnswerMaxLen characters without splitting
// a multi-byte rune.
func TruncateAnswer(answer string) string {
	runes := []rune(answer)
	if len(runes) <= AnswerMaxLen {
		return answer
	}
	return string(runes[:AnswerMaxLen])
}
