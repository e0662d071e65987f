package style

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"faqgen/internal/models"

	"go.uber.org/zap"
)

const (
	shortAnswerLimit    = 200
	detailedAnswerLimit = 500
	examplesPerType     = 5
	topStarts           = 10
	topPhrases          = 20
	phraseScanLimit     = 1000
)

// Analysis is a compressed statistical portrait of the corpus writing style,
// fed into generation prompts so new answers match the house voice.
type Analysis struct {
	AvgQuestionLength int
	AvgAnswerLength   int

	PercentWithLists    int
	PercentWithSteps    int
	PercentShortAnswers int

	CommonQuestionStarts []string
	CommonAnswerStarts   []string
	KeyPhrases           []string

	Examples ExamplesByType
}

// ExamplesByType holds high-usefulness exemplars per structural answer type.
type ExamplesByType struct {
	Short      []models.CorpusEntry
	StepByStep []models.CorpusEntry
	WithLists  []models.CorpusEntry
	Detailed   []models.CorpusEntry
}

var (
	listPattern  = regexp.MustCompile(`^\s*[-•\d]`)
	stepsPattern = regexp.MustCompile(`[Шш]аг\s*\d|[Пп]ерейдите|[Нн]ажмите|[Вв]ыберите|[Уу]кажите`)

	questionStartPattern = regexp.MustCompile(`^([А-Яа-яЁё]+\s+[А-Яа-яЁё]+(?:\s+[А-Яа-яЁё]+)?)`)
	answerStartPattern   = regexp.MustCompile(`^([А-Яа-яЁё]+(?:\s+[А-Яа-яЁё]+){0,2})`)

	phrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)приложени[ие]\s+Kaspi\.kz`),
		regexp.MustCompile(`(?i)сервис[е]?\s+[«"]?[А-Яа-я\s]+[»"]?`),
		regexp.MustCompile(`(?i)в\s+раздел[е]\s+[«"]?[А-Яа-я\s]+[»"]?`),
		regexp.MustCompile(`(?i)перейдите\s+в\s+[А-Яа-я\s]+`),
		regexp.MustCompile(`(?i)нажмите\s+[«"]?[А-Яа-я\s]+[»"]?`),
	}
)

// Analyzer computes the corpus style portrait once and serves it from cache.
type Analyzer struct {
	logger *zap.Logger

	mu     sync.Mutex
	cached *Analysis
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze returns the cached analysis, computing it on first call.
func (a *Analyzer) Analyze(entries []models.CorpusEntry) (*Analysis, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil {
		return a.cached, nil
	}

	analysis, err := analyze(entries)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Style analysis complete",
		zap.Int("entries", len(entries)),
		zap.Int("avg_question_length", analysis.AvgQuestionLength),
		zap.Int("avg_answer_length", analysis.AvgAnswerLength),
		zap.Int("percent_with_lists", analysis.PercentWithLists),
		zap.Int("percent_with_steps", analysis.PercentWithSteps),
		zap.Int("percent_short", analysis.PercentShortAnswers),
	)

	a.cached = analysis
	return analysis, nil
}

// Reset drops the cached analysis.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = nil
}

func analyze(entries []models.CorpusEntry) (*Analysis, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries provided for style analysis")
	}

	var questionChars, answerChars int
	var withLists, withSteps, shortAnswers int
	examples := ExamplesByType{}

	for _, entry := range entries {
		questionChars += utf8.RuneCountInString(entry.Question)
		answerLen := utf8.RuneCountInString(entry.Answer)
		answerChars += answerLen

		hasList := listPattern.MatchString(entry.Answer) ||
			strings.Contains(entry.Answer, "\n-") ||
			strings.Contains(entry.Answer, "\n•")
		if hasList {
			withLists++
			if len(examples.WithLists) < examplesPerType && entry.Usefulness > 80 {
				examples.WithLists = append(examples.WithLists, entry)
			}
		}

		if stepsPattern.MatchString(entry.Answer) {
			withSteps++
			if len(examples.StepByStep) < examplesPerType && entry.Usefulness > 80 {
				examples.StepByStep = append(examples.StepByStep, entry)
			}
		}

		if answerLen < shortAnswerLimit {
			shortAnswers++
			if len(examples.Short) < examplesPerType && entry.Usefulness > 80 {
				examples.Short = append(examples.Short, entry)
			}
		}

		if answerLen > detailedAnswerLimit && len(examples.Detailed) < examplesPerType && entry.Usefulness > 85 {
			examples.Detailed = append(examples.Detailed, entry)
		}
	}

	n := len(entries)
	questionStarts := make(map[string]int)
	answerStarts := make(map[string]int)
	for _, entry := range entries {
		if m := questionStartPattern.FindStringSubmatch(entry.Question); m != nil {
			questionStarts[m[1]]++
		}
		if m := answerStartPattern.FindStringSubmatch(entry.Answer); m != nil {
			answerStarts[m[1]]++
		}
	}

	return &Analysis{
		AvgQuestionLength:    roundDiv(questionChars, n),
		AvgAnswerLength:      roundDiv(answerChars, n),
		PercentWithLists:     roundDiv(withLists*100, n),
		PercentWithSteps:     roundDiv(withSteps*100, n),
		PercentShortAnswers:  roundDiv(shortAnswers*100, n),
		CommonQuestionStarts: topByCount(questionStarts, topStarts),
		CommonAnswerStarts:   topByCount(answerStarts, topStarts),
		KeyPhrases:           extractKeyPhrases(entries),
		Examples:             examples,
	}, nil
}

// extractKeyPhrases collects recurring domain phrasing from answers. Only the
// first phraseScanLimit entries are scanned to bound the cost on large corpora.
func extractKeyPhrases(entries []models.CorpusEntry) []string {
	counts := make(map[string]int)

	scan := entries
	if len(scan) > phraseScanLimit {
		scan = scan[:phraseScanLimit]
	}

	for _, entry := range scan {
		for _, pattern := range phrasePatterns {
			for _, match := range pattern.FindAllString(entry.Answer, -1) {
				phrase := strings.TrimSpace(match)
				length := utf8.RuneCountInString(phrase)
				if length > 10 && length < 60 {
					counts[phrase]++
				}
			}
		}
	}

	return topByCount(counts, topPhrases)
}

func topByCount(counts map[string]int, limit int) []string {
	type pair struct {
		value string
		count int
	}

	pairs := make([]pair, 0, len(counts))
	for value, count := range counts {
		pairs = append(pairs, pair{value, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].value < pairs[j].value
	})

	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.value
	}
	return out
}

func roundDiv(numerator, denominator int) int {
	return (numerator + denominator/2) / denominator
}

// FormatGuide renders the analysis as a compact prompt fragment.
func FormatGuide(analysis *Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "АНАЛИЗ СТИЛЯ СУЩЕСТВУЮЩИХ FAQ:\n\n")
	fmt.Fprintf(&b, "1. СТРУКТУРА ОТВЕТОВ:\n")
	fmt.Fprintf(&b, "   - Средняя длина вопроса: %d символов\n", analysis.AvgQuestionLength)
	fmt.Fprintf(&b, "   - Средняя длина ответа: %d символов\n", analysis.AvgAnswerLength)
	fmt.Fprintf(&b, "   - %d%% ответов краткие (< %d символов)\n", analysis.PercentShortAnswers, shortAnswerLimit)
	fmt.Fprintf(&b, "   - %d%% содержат пошаговые инструкции\n", analysis.PercentWithSteps)
	fmt.Fprintf(&b, "   - %d%% используют списки\n", analysis.PercentWithLists)

	writeBullets := func(title string, values []string, limit int, quoted bool) {
		fmt.Fprintf(&b, "\n%s\n", title)
		if len(values) > limit {
			values = values[:limit]
		}
		for _, v := range values {
			if quoted {
				fmt.Fprintf(&b, "   • \"%s...\"\n", v)
			} else {
				fmt.Fprintf(&b, "   • %s\n", v)
			}
		}
	}

	writeBullets("2. ТИПИЧНЫЕ НАЧАЛА ВОПРОСОВ:", analysis.CommonQuestionStarts, 8, true)
	writeBullets("3. ТИПИЧНЫЕ НАЧАЛА ОТВЕТОВ:", analysis.CommonAnswerStarts, 8, true)
	writeBullets("4. КЛЮЧЕВЫЕ ФРАЗЫ И ТЕРМИНЫ:", analysis.KeyPhrases, 10, false)

	fmt.Fprintf(&b, "\n5. ПРИМЕРЫ РАЗНЫХ ТИПОВ ОТВЕТОВ:\n")
	writeExample(&b, "А) Краткий ответ", analysis.Examples.Short, 300)
	writeExample(&b, "Б) Пошаговая инструкция", analysis.Examples.StepByStep, 400)
	writeExample(&b, "В) Ответ со списком", analysis.Examples.WithLists, 400)

	return strings.TrimSpace(b.String())
}

func writeExample(b *strings.Builder, title string, entries []models.CorpusEntry, maxRunes int) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(entries) == 0 {
		fmt.Fprintf(b, "Вопрос: N/A\nОтвет: N/A\n")
		return
	}

	entry := entries[0]
	answer := entry.Answer
	truncated := false
	if runes := []rune(answer); len(runes) > maxRunes {
		answer = string(runes[:maxRunes])
		truncated = true
	}
	fmt.Fprintf(b, "Вопрос: %s\n", entry.Question)
	if truncated {
		fmt.Fprintf(b, "Ответ: %s...\n", answer)
	} else {
		fmt.Fprintf(b, "Ответ: %s\n", answer)
	}
}
