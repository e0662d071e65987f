package cli

import (
	"faqgen/internal/generate"
	"faqgen/internal/style"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the embedding corpus",
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus size and style statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := shared.store.Load()
		if err != nil {
			return err
		}

		cmd.Printf("Entries:    %d\n", len(entries))
		cmd.Printf("Dimensions: %d\n", shared.store.Dimensions())

		categories := make(map[string]int)
		for _, entry := range entries {
			categories[entry.Category]++
		}
		cmd.Printf("Categories: %d\n\n", len(categories))

		analysis, err := shared.analyzer.Analyze(entries)
		if err != nil {
			return err
		}
		cmd.Println(style.FormatGuide(analysis))
		return nil
	},
}

var corpusStyleCmd = &cobra.Command{
	Use:   "style",
	Short: "Print the style guide prompt fragment",
	Long: `Prints the corpus style analysis exactly as it is injected into
generation prompts, for inspection and prompt debugging.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := shared.store.Load()
		if err != nil {
			return err
		}

		analysis, err := shared.analyzer.Analyze(entries)
		if err != nil {
			return err
		}

		guide := style.FormatGuide(analysis)
		cmd.Println(guide)
		cmd.Println()
		cmd.Printf("(%d chars, ~%d tokens)\n", len(guide), generate.EstimateTokens(guide))
		return nil
	},
}

func init() {
	corpusCmd.AddCommand(corpusStatsCmd, corpusStyleCmd)
	rootCmd.AddCommand(corpusCmd)
}
