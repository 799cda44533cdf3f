package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run [path|url] [question]...",
	Short: "Index a document and answer questions about it",
	Long: `Index a local file or URL (skipped when the content is already known)
and answer every question against it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print answers as JSON")
	runCmd.Flags().StringVar(&ingestMIME, "mime", "", "Declared MIME type of a local file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(true); err != nil {
		return err
	}

	source, questions := args[0], args[1:]
	logger.Section("Ingest")
	doc, err := ingestSource(cmd, source)
	if err != nil {
		return err
	}
	if !jsonOutput {
		printIngested(cmd, doc)
		cmd.Println()
	}

	logger.Section("Answer")
	answers, err := answerService.AnswerBatch(commandContext(cmd), doc.ID, questions)
	if err != nil {
		return err
	}
	return printAnswers(cmd, doc.ID, answers)
}
