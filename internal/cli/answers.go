package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	answersQuestionsFile string
	answersJSON          bool
)

var answersCmd = &cobra.Command{
	Use:   "answers [file]",
	Short: "Generate FAQ answers for selected questions",
	Long: `Reads a source document (file argument or stdin) and a list of
questions (--questions file, one per line) and generates answers in the house
style. Results for the same (source, questions) input are served from the
answer cache within its TTL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnswers,
}

func init() {
	answersCmd.Flags().StringVarP(&answersQuestionsFile, "questions", "q", "", "file with one question per line (required)")
	answersCmd.Flags().BoolVar(&answersJSON, "json", false, "output as JSON")
	answersCmd.MarkFlagRequired("questions")
	rootCmd.AddCommand(answersCmd)
}

func runAnswers(cmd *cobra.Command, args []string) error {
	sourceText, err := readSourceText(args)
	if err != nil {
		return err
	}

	questions, err := readLines(answersQuestionsFile)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("%s contains no questions", answersQuestionsFile)
	}

	generator, err := shared.buildGenerator(cmd.Context())
	if err != nil {
		return err
	}

	results, err := generator.GenerateAnswers(cmd.Context(), sourceText, questions)
	if err != nil {
		return fmt.Errorf("answer generation failed: %w", err)
	}

	if answersJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answers: %w", err)
		}
		cmd.Println(string(data))
	} else {
		for _, faq := range results {
			cmd.Printf("Вопрос: %s\n\n%s\n\n---\n\n", faq.Question, faq.Answer)
		}
	}

	for backend, count := range generator.Usage() {
		shared.logger.Info("Backend usage",
			zap.String("backend", backend),
			zap.Int("batches", count),
		)
	}
	return nil
}
