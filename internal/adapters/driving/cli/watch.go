package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index a directory and keep indexing new files",
	Long: `Index every file under a directory, then watch it and index files as
they are created or written. Hidden files and directories are skipped.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// watchNoScan skips the initial scan.
var watchNoScan bool

func init() {
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "Only index files changed after start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(false); err != nil {
		return err
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", args[0])
	}

	ctx := commandContext(cmd)
	watcher := filesystem.New(args[0])
	defer watcher.Close() //nolint:errcheck // best-effort cleanup

	if !watchNoScan {
		files, err := watcher.Scan(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Indexing %d existing file(s) in %s\n", len(files), watcher.Root())
		for _, path := range files {
			ingestWatched(cmd, path)
		}
	}

	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s\n", watcher.Root())

	for path := range events {
		ingestWatched(cmd, path)
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ingestWatched indexes one file and reports the outcome without stopping
// the watch on failure.
func ingestWatched(cmd *cobra.Command, path string) {
	doc, err := ingestService.IngestFile(commandContext(cmd), path, "")
	if err != nil {
		logger.Warn("watch: %s: %v", path, err)
		cmd.Printf("%s %s: %v\n", failure(cmd, "FAILED"), path, err)
		return
	}
	printIngested(cmd, doc)
}
