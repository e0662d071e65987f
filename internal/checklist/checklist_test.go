package checklist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleChecklist = `Чек-лист редактора FAQ
Общие требования к текстам.

1.1 Обращения клиентов
Фиксируйте типовые обращения и жалобы.
Проверяйте формулировки на полноту.

1.4 Базовые вопросы
Для нового продукта отвечайте на "что такое" и "как работает".

1.5 SEO и бренд
Пишите Kaspi латиницей.

1.6 Единая терминология
Используйте термины из глоссария.

1.7 Интерфейсные названия
Названия кнопок и разделов как в приложении.

1.8 Закрытые вопросы
На вопрос "можно ли" отвечайте сначала да или нет.

1.9 Логическая последовательность
Шаги нумеруйте по порядку.

1.10 Полный ответ с альтернативами
Если нельзя, предложите альтернативу.
`

func TestParseTwoSectionsNoHeader(t *testing.T) {
	c := NewCompressor(zap.NewNop())
	doc := "1.1 Title A\nbody a\n1.2 Title B\nbody b\n"

	sections := c.Parse(doc)

	require.Len(t, sections, 2)
	assert.NotContains(t, sections, HeaderID)

	require.Contains(t, sections, "1.1")
	assert.Equal(t, "Title A", sections["1.1"].Title)
	assert.Equal(t, "1.1 Title A\nbody a", sections["1.1"].Body)

	require.Contains(t, sections, "1.2")
	assert.Equal(t, "Title B", sections["1.2"].Title)
	assert.Equal(t, "1.2 Title B\nbody b", sections["1.2"].Body)
}

func TestParseStripsTrailingDotFromID(t *testing.T) {
	c := NewCompressor(zap.NewNop())
	sections := c.Parse("1.3. Title\nbody\n")

	require.Contains(t, sections, "1.3")
	assert.Equal(t, "1.3. Title\nbody", sections["1.3"].Body)
}

func TestParseRoundTrip(t *testing.T) {
	c := NewCompressor(zap.NewNop())
	sections := c.Parse(sampleChecklist)

	var bodies []string
	if header, ok := sections[HeaderID]; ok {
		bodies = append(bodies, header.Body)
	}
	for _, id := range c.SectionIDs(sampleChecklist) {
		bodies = append(bodies, sections[id].Body)
	}

	assert.Equal(t, strings.TrimSuffix(sampleChecklist, "\n"), strings.Join(bodies, "\n"))
}

func TestParseCachesUntilCleared(t *testing.T) {
	c := NewCompressor(zap.NewNop())

	first := c.Parse(sampleChecklist)
	second := c.Parse(sampleChecklist)
	assert.Equal(t, first, second)

	other := c.Parse("2.1 Other\nbody\n")
	assert.Contains(t, other, "2.1")
	assert.NotContains(t, other, "1.1")

	c.ClearCache()
	again := c.Parse(sampleChecklist)
	assert.Contains(t, again, "1.1")
}

func TestDetectRelevantSectionsBaseline(t *testing.T) {
	ids := DetectRelevantSections("Нейтральный текст без триггеров")

	assert.Contains(t, ids, "1.6")
	assert.Contains(t, ids, "1.7")
}

func TestDetectRelevantSectionsTriggers(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		section string
	}{
		{"brand latin", "Оплата через Kaspi QR", "1.5"},
		{"brand cyrillic", "перевод в каспи", "1.5"},
		{"steps", "Сначала откройте приложение, затем выберите раздел", "1.9"},
		{"numbered list", "1. Откройте приложение", "1.9"},
		{"closed question", "Можно ли отменить платеж?", "1.8"},
		{"complaint", "Не работает перевод, ошибка при оплате", "1.1"},
		{"new product", "Что такое рассрочка и как работает", "1.4"},
		{"restriction", "Нельзя превысить лимит, действует ограничение", "1.10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ids := DetectRelevantSections(tc.text)
			assert.Contains(t, ids, tc.section)
			assert.Contains(t, ids, "1.6")
			assert.Contains(t, ids, "1.7")
		})
	}
}

func TestDetectRelevantSectionsDeduplicates(t *testing.T) {
	ids := DetectRelevantSections("Шаг 1. Сначала войдите, затем выберите далее")

	seen := make(map[string]int)
	for _, id := range ids {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "section %s appears more than once", id)
	}
}

func TestExtractSkipsMissingSections(t *testing.T) {
	c := NewCompressor(zap.NewNop())
	sections := c.Parse("1.1 Title A\nbody a\n")

	out := c.Extract(sections, []string{"1.1", "9.9"})

	assert.Contains(t, out, "1.1 Title A")
	assert.NotContains(t, out, "9.9")
}

func TestCompressSelectsTriggeredSections(t *testing.T) {
	c := NewCompressor(zap.NewNop())

	out := c.Compress("Можно ли оплатить через Kaspi?", sampleChecklist)

	assert.Contains(t, out, "1.6 Единая терминология")
	assert.Contains(t, out, "1.7 Интерфейсные названия")
	assert.Contains(t, out, "1.5 SEO и бренд")
	assert.Contains(t, out, "1.8 Закрытые вопросы")
	assert.NotContains(t, out, "1.10 Полный ответ")
	assert.Contains(t, out, "Чек-лист редактора FAQ")
	assert.Less(t, len(out), len(sampleChecklist))
}
