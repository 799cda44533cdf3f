package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the text extracted from a file",
	Long:  `Extract and print the canonical text of a file without indexing it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

// extractMIME is the declared MIME type of the file.
var extractMIME string

func init() {
	extractCmd.Flags().StringVar(&extractMIME, "mime", "", "Declared MIME type")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractor == nil {
		return errors.New("extractor not configured")
	}

	extraction, err := extractor.ExtractFile(commandContext(cmd), args[0], extractMIME)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", args[0], err)
	}

	if extraction.Title != "" {
		cmd.Println(heading(cmd, extraction.Title))
	}
	cmd.Println(muted(cmd, fmt.Sprintf("format: %s", extraction.Format)))
	cmd.Println()
	cmd.Println(extraction.Text)
	return nil
}
