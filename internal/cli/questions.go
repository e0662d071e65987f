package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var questionsJSON bool

var questionsCmd = &cobra.Command{
	Use:   "questions [file]",
	Short: "Propose FAQ questions for a source text",
	Long: `Reads a source document (file argument or stdin) and proposes the
questions users are likely to ask about it, in the style of the existing
knowledge base.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuestions,
}

func init() {
	questionsCmd.Flags().BoolVar(&questionsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(questionsCmd)
}

func runQuestions(cmd *cobra.Command, args []string) error {
	sourceText, err := readSourceText(args)
	if err != nil {
		return err
	}

	generator, err := shared.buildGenerator(cmd.Context())
	if err != nil {
		return err
	}

	questions, err := generator.GenerateQuestions(cmd.Context(), sourceText)
	if err != nil {
		return fmt.Errorf("question generation failed: %w", err)
	}

	if questionsJSON {
		data, err := json.MarshalIndent(questions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal questions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, q := range questions {
		cmd.Println(q.Question)
	}
	return nil
}
