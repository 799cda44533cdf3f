package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List indexed documents and view their chunks or content.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Show the chunks of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

// chunkPreview is the number of characters of each chunk shown by default.
const chunkPreview = 120

// fullChunks prints whole chunks instead of previews.
var fullChunks bool

func init() {
	documentChunksCmd.Flags().BoolVar(&fullChunks, "full", false, "Print whole chunks")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentContentCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	records, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, []string{
			shortID(records[i].Hash),
			records[i].Filename,
			string(records[i].Format),
			strconv.Itoa(records[i].Chunks),
			records[i].CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	cmd.Println(renderTable(cmd, []string{"ID", "FILENAME", "FORMAT", "CHUNKS", "INDEXED"}, rows))
	cmd.Printf("Total: %d documents\n", len(records))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	record, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", record.Hash)
	cmd.Printf("  Filename: %s\n", record.Filename)
	cmd.Printf("  Format:   %s\n", record.Format)
	cmd.Printf("  Chunks:   %d\n", record.Chunks)
	cmd.Printf("  Indexed:  %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.Chunks(commandContext(cmd), resolveDocumentID(cmd, args[0]))
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Printf("No chunks found for document: %s\n", args[0])
		return nil
	}

	for i := range chunks {
		c := &chunks[i]
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("%s %s\n", heading(cmd, fmt.Sprintf("#%d", c.Ordinal)), title)
		if c.Summary != "" {
			cmd.Printf("  %s\n", muted(cmd, c.Summary))
		}
		content := c.Content
		if !fullChunks {
			content = preview(content, chunkPreview)
		}
		cmd.Printf("  %s\n\n", content)
	}

	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.GetContent(commandContext(cmd), resolveDocumentID(cmd, args[0]))
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(content)
	return nil
}

// resolveDocumentID expands an ID prefix shown by `document list`. The
// input is returned unchanged when it cannot be resolved.
func resolveDocumentID(cmd *cobra.Command, id string) string {
	if documentService == nil {
		return id
	}
	record, err := documentService.Get(commandContext(cmd), id)
	if err != nil || record == nil {
		return id
	}
	return record.Hash
}

// shortID abbreviates a content hash for tables.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

// preview collapses whitespace and truncates to n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
