package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Source   string `json:"source" jsonschema:"local file path or http(s) URL of the document"`
	MIMEType string `json:"mime_type,omitempty" jsonschema:"declared content type, used when the file extension is unknown"`
}

// DocumentOutput describes one ingested document.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	State      string `json:"state,omitempty"`
	Title      string `json:"title,omitempty"`
	Chunks     int    `json:"chunks"`
	Indexed    int    `json:"indexed,omitempty"`
	Degraded   int    `json:"degraded,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// AnswerInput is the input schema for the answer_questions tool.
type AnswerInput struct {
	DocumentID string   `json:"document_id,omitempty" jsonschema:"ID of an ingested document"`
	Document   string   `json:"document,omitempty" jsonschema:"file path or URL to ingest first when document_id is empty"`
	Questions  []string `json:"questions" jsonschema:"questions to answer from the document"`
}

// AnswerOutput is the output schema for the answer_questions tool.
type AnswerOutput struct {
	DocumentID string           `json:"document_id"`
	Answers    []QuestionAnswer `json:"answers"`
}

// QuestionAnswer is the answer to one question, in input order.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Sources  []int  `json:"sources,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default all)"`
}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Extract, chunk and index a document from a file path or URL. Identical content is only processed once.",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_questions",
		Description: "Answer questions using only the content of one ingested document",
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents, newest first",
	}, s.handleList)
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ingest(ctx, input.Source, input.MIMEType)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, documentOutput(doc), nil
}

// handleAnswer handles the answer_questions tool invocation.
func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	documentID := input.DocumentID
	if documentID == "" {
		if input.Document == "" {
			return nil, AnswerOutput{}, ErrNoDocument
		}
		doc, err := s.ingest(ctx, input.Document, "")
		if err != nil {
			return nil, AnswerOutput{}, err
		}
		documentID = doc.ID
	}

	answers, err := s.ports.Answer.AnswerBatch(ctx, documentID, input.Questions)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	output := AnswerOutput{
		DocumentID: documentID,
		Answers:    make([]QuestionAnswer, len(answers)),
	}
	for i, answer := range answers {
		output.Answers[i] = QuestionAnswer{
			Question: answer.Question,
			Answer:   answer.Text,
			Sources:  answer.Sources,
			Failed:   answer.Failed(),
		}
	}

	return nil, output, nil
}

// handleList handles the list_documents tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	output := ListOutput{Documents: []DocumentOutput{}}
	if s.ports.Document == nil {
		return nil, output, nil
	}

	records, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}
	if input.Limit > 0 && len(records) > input.Limit {
		records = records[:input.Limit]
	}

	for i := range records {
		output.Documents = append(output.Documents, recordOutput(&records[i]))
	}
	output.Count = len(output.Documents)

	return nil, output, nil
}

// ingest dispatches to the URL or file ingestion path.
func (s *Server) ingest(ctx context.Context, source, mimeType string) (*domain.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrNoDocument
	}
	if isURL(source) {
		return s.ports.Ingest.IngestURL(ctx, source)
	}
	return s.ports.Ingest.IngestFile(ctx, source, mimeType)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func documentOutput(doc *domain.Document) DocumentOutput {
	out := DocumentOutput{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Format:     doc.Format.String(),
		State:      string(doc.State),
		Title:      doc.Title,
	}
	if doc.Report != nil {
		out.Chunks = doc.Report.Chunks
		out.Indexed = doc.Report.Indexed
		out.Degraded = doc.Report.Degraded
	}
	return out
}

func recordOutput(record *domain.DedupRecord) DocumentOutput {
	return DocumentOutput{
		DocumentID: record.Hash,
		Filename:   record.Filename,
		Format:     record.Format.String(),
		Chunks:     record.Chunks,
		CreatedAt:  record.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
