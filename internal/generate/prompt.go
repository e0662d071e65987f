package generate

import (
	"fmt"
	"strings"

	"faqgen/internal/models"
)

// EstimateTokens approximates prompt size as one token per four bytes. Used
// for logging and diagnostics only, never for hard limits.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// FormatExamples renders retrieved FAQ entries as a prompt fragment.
func FormatExamples(entries []*models.CorpusEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Примеры существующих FAQ для анализа стиля:\n")
	for i, entry := range entries {
		fmt.Fprintf(&b, "\nПример %d:\nВопрос: %s\nОтвет: %s\n", i+1, entry.Question, entry.Answer)
	}
	return b.String()
}

// BuildQuestionsPrompt assembles the prompt that asks for candidate
// questions, one per line.
func BuildQuestionsPrompt(sourceText, styleGuide, examples string) string {
	var b strings.Builder

	b.WriteString("Ты - эксперт по созданию FAQ для финансового сервиса Kaspi.kz.\n\n")
	if styleGuide != "" {
		b.WriteString(styleGuide)
		b.WriteString("\n\n")
	}
	if examples != "" {
		b.WriteString(examples)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `На основе анализа стиля существующих FAQ, сгенерируй список из 10-15 вопросов, которые пользователи могут задать по следующему тексту:

ИСХОДНЫЙ ТЕКСТ:
%s

ТРЕБОВАНИЯ:
1. Вопросы должны быть конкретными и практичными
2. Используй стиль существующих вопросов из примеров
3. Вопросы должны начинаться с "Как...", "Что...", "Где...", "Нужна ли..." и т.д.
4. Ориентируйся на реальные потребности пользователей Kaspi.kz
5. Вопросы должны быть на русском языке

ФОРМАТ ОТВЕТА:
Верни только список вопросов, каждый вопрос на новой строке, без нумерации.
`, sourceText)

	return b.String()
}

// BuildAnswersPrompt assembles one batched prompt answering several questions
// in a single call. The fixed overhead (style guide, examples, checklist) is
// amortized across the batch; the model must reply with a JSON array of
// question/answer objects.
func BuildAnswersPrompt(questions []string, sourceText, styleGuide, examples, rules string) string {
	var b strings.Builder

	b.WriteString("Ты - эксперт по созданию FAQ для финансового сервиса Kaspi.kz.\n\n")
	if styleGuide != "" {
		b.WriteString(styleGuide)
		b.WriteString("\n\n")
	}
	if examples != "" {
		b.WriteString(examples)
		b.WriteString("\n")
	}
	if rules != "" {
		b.WriteString("ПРАВИЛА РЕДАКТУРЫ (обязательны к соблюдению):\n")
		b.WriteString(rules)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `На основе стиля существующих FAQ и правил редактуры, создай краткие и понятные ответы на вопросы ниже.

ИСХОДНЫЙ ТЕКСТ (источник информации):
%s

ВОПРОСЫ:
`, sourceText)
	for i, question := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, question)
	}

	b.WriteString(`
ТРЕБОВАНИЯ К КАЖДОМУ ОТВЕТУ:
1. Ответ должен быть кратким и конкретным (2-5 абзацев)
2. Используй стиль существующих ответов из примеров
3. Структурируй информацию с помощью коротких абзацев, списков и пошаговых инструкций, где уместно
4. Используй простой язык, понятный обычному пользователю
5. Упоминай приложение Kaspi.kz там, где это уместно
6. Ответы должны быть на русском языке
7. Не используй markdown форматирование (**, ##, и т.д.)

ФОРМАТ ОТВЕТА:
Верни ТОЛЬКО JSON-массив вида [{"question": "...", "answer": "..."}], по одному объекту на каждый вопрос, в том же порядке. Без markdown разметки, без комментариев до или после JSON.
`)

	return b.String()
}
