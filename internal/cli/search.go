package cli

import (
	"fmt"

	"faqgen/internal/rank"

	"github.com/spf13/cobra"
)

var (
	searchTopK    int
	searchLexical bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the FAQ entries most similar to a query",
	Long: `Embeds the query and ranks the whole corpus by cosine similarity.
With --lexical the query is matched with full-text search instead, which
needs no embedding backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 5, "number of results")
	searchCmd.Flags().BoolVar(&searchLexical, "lexical", false, "use full-text search instead of embeddings")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	entries, err := shared.store.Load()
	if err != nil {
		return err
	}

	if searchLexical {
		index, err := shared.buildLexicalIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		results, err := index.Search(query, searchTopK)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			cmd.Println("No results found.")
			return nil
		}
		for i, entry := range results {
			cmd.Printf("[%d] %s\n    %s\n\n", i+1, entry.Question, entry.Answer)
		}
		return nil
	}

	vector, err := shared.embedder.Embed(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("failed to embed query (try --lexical): %w", err)
	}

	ranked, err := rank.TopKContext(cmd.Context(), vector, entries, searchTopK)
	if err != nil {
		return err
	}

	for i, result := range ranked {
		cmd.Printf("[%d] %.1f%% %s\n    %s\n\n", i+1, result.Score*100, result.Entry.Question, result.Entry.Answer)
	}
	return nil
}
