package cli

import (
	"fmt"
	"os"
	"strings"

	"faqgen/internal/checklist"

	"github.com/spf13/cobra"
)

var sectionsShowText bool

var sectionsCmd = &cobra.Command{
	Use:   "sections [file]",
	Short: "Show which checklist sections apply to a source text",
	Long: `Reads a source document (file argument or stdin) and reports the
editorial checklist sections its content triggers. With --text the compressed
checklist itself is printed, exactly as it would enter a generation prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSections,
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsShowText, "text", false, "print the compressed checklist text")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	sourceText, err := readSourceText(args)
	if err != nil {
		return err
	}

	doc, err := os.ReadFile(shared.cfg.Corpus.ChecklistPath)
	if err != nil {
		return fmt.Errorf("failed to read checklist: %w", err)
	}

	if sectionsShowText {
		cmd.Println(shared.compressor.Compress(sourceText, string(doc)))
		return nil
	}

	sections := shared.compressor.Parse(string(doc))
	ids := checklist.DetectRelevantSections(sourceText)

	cmd.Printf("Relevant sections: %s\n\n", strings.Join(ids, ", "))
	for _, id := range ids {
		section, ok := sections[id]
		if !ok {
			cmd.Printf("  %s (not present in checklist)\n", id)
			continue
		}
		cmd.Printf("  %s %s\n", section.ID, section.Title)
	}
	return nil
}
