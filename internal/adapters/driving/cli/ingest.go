package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|url]...",
	Short: "Index documents",
	Long: `Index one or more local files or http(s) URLs.

Identical content is only indexed once; ingesting it again reports the
document that was recorded first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

// ingestMIME is the declared MIME type for local files.
var ingestMIME string

func init() {
	ingestCmd.Flags().StringVar(&ingestMIME, "mime", "", "Declared MIME type of local files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(false); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	failed := 0
	for _, source := range args {
		doc, err := ingestSource(cmd, source)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			cmd.Printf("%s %s: %v\n", failure(cmd, "FAILED"), source, err)
			continue
		}
		printIngested(cmd, doc)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(args))
	}
	return nil
}

// ingestSource dispatches to URL or file ingestion.
func ingestSource(cmd *cobra.Command, source string) (*domain.Document, error) {
	ctx := commandContext(cmd)
	if isURL(source) {
		return ingestService.IngestURL(ctx, source)
	}
	return ingestService.IngestFile(ctx, source, ingestMIME)
}

func printIngested(cmd *cobra.Command, doc *domain.Document) {
	if doc.State == domain.StateCacheHit {
		cmd.Printf("Already indexed: %s %s\n", doc.Filename, muted(cmd, doc.ID))
		return
	}

	cmd.Printf("Indexed: %s %s\n", doc.Filename, muted(cmd, doc.ID))
	if doc.Report != nil {
		cmd.Printf("  Format: %s, chunks: %d/%d", doc.Format, doc.Report.Indexed, doc.Report.Chunks)
		if doc.Report.Degraded > 0 || doc.Report.Failed > 0 {
			cmd.Printf(" (degraded %d, failed %d)", doc.Report.Degraded, doc.Report.Failed)
		}
		cmd.Println()
	}
}

func isURL(source string) bool {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return false
	}
	u, err := url.Parse(source)
	return err == nil && u.Host != ""
}
