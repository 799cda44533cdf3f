// Package cli implements the docqa command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// version is set by SetVersion, normally from build flags.
var version = "dev"

// Services injected by main.
var (
	ingestService   driving.IngestService
	answerService   driving.AnswerService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	extractor       fileExtractor

	// serverToken guards the HTTP endpoint when set.
	serverToken string

	// serverAddr is the default listen address of the HTTP endpoint.
	serverAddr = ":8000"

	// pipelineErr explains why the ingest and answer services are missing.
	pipelineErr error
)

// fileExtractor turns a local file into text without indexing it.
type fileExtractor interface {
	ExtractFile(ctx context.Context, path, declaredMIME string) (*domain.Extraction, error)
}

// Services holds everything the commands need. Nil fields disable the
// commands that depend on them.
type Services struct {
	Ingest    driving.IngestService
	Answer    driving.AnswerService
	Document  driving.DocumentService
	Settings  driving.SettingsService
	Extractor fileExtractor

	// ServerAddr and ServerToken configure `docqa serve`.
	ServerAddr  string
	ServerToken string

	// InitErr is reported by commands that need the pipeline when it could
	// not be built.
	InitErr error
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	answerService = s.Answer
	documentService = s.Document
	settingsService = s.Settings
	extractor = s.Extractor
	serverToken = s.ServerToken
	if s.ServerAddr != "" {
		serverAddr = s.ServerAddr
	}
	pipelineErr = s.InitErr
}

// SetVersion sets the version reported by `docqa version`.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa ingests documents (PDF, DOCX, PPTX, XLSX, CSV, email, images, text),
indexes them once per unique content, and answers batches of questions
against the indexed text with a language model.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// requirePipeline returns an error naming why ingestion or answering is
// unavailable.
func requirePipeline(needAnswer bool) error {
	if ingestService != nil && (!needAnswer || answerService != nil) {
		return nil
	}
	if pipelineErr != nil {
		return fmt.Errorf("pipeline not available: %w", pipelineErr)
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	return errors.New("answer service not configured")
}

// commandContext returns the command context, falling back to Background
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
