package checklist

import (
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// HeaderID names the pseudo-section holding preamble lines that precede the
// first numbered section.
const HeaderID = "header"

// Section is one numbered block of the editorial checklist. Body keeps the
// boundary line as its first line, so concatenating all bodies in document
// order reproduces the original line content.
type Section struct {
	ID    string
	Title string
	Body  string
}

// baselineSections are always relevant: unified terminology (1.6) and
// interface conventions (1.7) apply to any FAQ text.
var baselineSections = []string{"1.6", "1.7"}

var sectionBoundary = regexp.MustCompile(`^(\d+\.\d+\.?)\s+(.+)`)

// trigger maps an input-text pattern to the checklist section it activates.
// Triggers are independent: any number of them may fire for one text, and the
// result is the deduplicated union.
type trigger struct {
	pattern *regexp.Regexp
	section string
}

var triggers = []trigger{
	// brand mentions pull in the SEO section
	{regexp.MustCompile(`(?i)kaspi|каспи`), "1.5"},
	// step-sequencing words pull in the logical-sequence section
	{regexp.MustCompile(`(?i)шаг|сначала|затем|далее|после этого|следующий шаг|\d+\.|во-первых|во-вторых|порядок действий`), "1.9"},
	// yes/no question markers pull in the closed-question section
	{regexp.MustCompile(`(?i)можно ли|нужна ли|нужен ли|доступно ли|есть ли|могу ли|возможно ли`), "1.8"},
	// complaint and error vocabulary pulls in the customer-inquiries section
	{regexp.MustCompile(`(?i)обращени|жалоб|вопрос|проблем|не работает|ошибк`), "1.1"},
	// new-product phrasing pulls in the basic-questions section
	{regexp.MustCompile(`(?i)новый|запуск|что такое|как работает`), "1.4"},
	// restriction vocabulary pulls in the full-answer-with-alternatives section
	{regexp.MustCompile(`(?i)нельзя|не могу|недоступно|ограничение`), "1.10"},
}

// Compressor parses the checklist document into sections and selects the
// subset relevant to a given input text. Parsing happens once per document
// and is cached for the lifetime of the Compressor.
type Compressor struct {
	logger *zap.Logger

	mu       sync.Mutex
	document string
	sections map[string]*Section
	order    []string
}

func NewCompressor(logger *zap.Logger) *Compressor {
	return &Compressor{logger: logger}
}

// Parse splits the document into sections keyed by id. A line starting a new
// section matches `^(\d+\.\d+\.?)\s+(.+)`; the numeric prefix with any
// trailing dot stripped becomes the id. Lines before the first boundary form
// the header pseudo-section. The result is cached until ClearCache.
func (c *Compressor) Parse(document string) map[string]*Section {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections != nil && c.document == document {
		return c.sections
	}

	sections := make(map[string]*Section)
	var order []string

	text := strings.TrimSuffix(document, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}

	var current *Section
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.Join(body, "\n")
		sections[current.ID] = current
		order = append(order, current.ID)
	}

	for _, line := range lines {
		if m := sectionBoundary.FindStringSubmatch(line); m != nil {
			flush()
			current = &Section{
				ID:    strings.TrimSuffix(m[1], "."),
				Title: strings.TrimSpace(m[2]),
			}
			body = []string{line}
			continue
		}

		if current != nil {
			body = append(body, line)
			continue
		}

		// preamble before the first numbered section
		if header, ok := sections[HeaderID]; ok {
			header.Body += "\n" + line
		} else {
			sections[HeaderID] = &Section{ID: HeaderID, Title: "Заголовок", Body: line}
			order = append(order, HeaderID)
		}
	}
	flush()

	c.document = document
	c.sections = sections
	c.order = order
	c.logger.Debug("Checklist parsed", zap.Int("sections", len(sections)))

	return sections
}

// ClearCache drops the cached parse so the next Parse rereads the document.
func (c *Compressor) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.document = ""
	c.sections = nil
	c.order = nil
}

// SectionIDs returns the numbered section ids of the parsed document in
// document order, excluding the header.
func (c *Compressor) SectionIDs(document string) []string {
	c.Parse(document)

	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.order))
	for _, id := range c.order {
		if id != HeaderID {
			ids = append(ids, id)
		}
	}
	return ids
}

// DetectRelevantSections returns the section ids relevant to the input text:
// the fixed baseline plus every section whose trigger pattern matches,
// deduplicated, in detection order.
func DetectRelevantSections(inputText string) []string {
	var relevant []string
	seen := make(map[string]bool)

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			relevant = append(relevant, id)
		}
	}

	for _, id := range baselineSections {
		add(id)
	}
	for _, tr := range triggers {
		if tr.pattern.MatchString(inputText) {
			add(tr.section)
		}
	}

	return relevant
}

// Extract concatenates the header (when non-empty) and the requested section
// bodies in the order given, separated by blank lines. Ids missing from the
// parsed document are logged and skipped; they never abort compression.
func (c *Compressor) Extract(sections map[string]*Section, ids []string) string {
	var parts []string

	if header, ok := sections[HeaderID]; ok && strings.TrimSpace(header.Body) != "" {
		parts = append(parts, strings.TrimSpace(header.Body), "")
	}

	for _, id := range ids {
		section, ok := sections[id]
		if !ok {
			c.logger.Warn("Checklist section not found", zap.String("section_id", id))
			continue
		}
		parts = append(parts, strings.TrimSpace(section.Body), "")
	}

	return strings.Join(parts, "\n")
}

// Compress reduces the checklist to the sections relevant to sourceText.
// Compression is lossy by design: its goal is prompt-size reduction, and
// correctness means "baseline plus every triggered section", not "every rule
// that might apply".
func (c *Compressor) Compress(sourceText, document string) string {
	sections := c.Parse(document)
	ids := DetectRelevantSections(sourceText)
	compressed := c.Extract(sections, ids)

	c.logger.Info("Checklist compressed",
		zap.Int("sections_selected", len(ids)),
		zap.Int("original_chars", len(document)),
		zap.Int("compressed_chars", len(compressed)),
	)

	return compressed
}
