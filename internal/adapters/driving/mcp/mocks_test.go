package mcp

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	doc      *domain.Document
	err      error
	lastFile string
	lastURL  string
}

func (m *mockIngestService) Ingest(_ context.Context, _ *domain.RawDocument) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, path, _ string) (*domain.Document, error) {
	m.lastFile = path
	return m.doc, m.err
}

func (m *mockIngestService) IngestURL(_ context.Context, url string) (*domain.Document, error) {
	m.lastURL = url
	return m.doc, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answers    []domain.Answer
	err        error
	documentID string
}

func (m *mockAnswerService) AnswerBatch(_ context.Context, documentID string, _ []string) ([]domain.Answer, error) {
	m.documentID = documentID
	return m.answers, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	records []domain.DedupRecord
	record  *domain.DedupRecord
	chunks  []domain.Chunk
	content string
	err     error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DedupRecord, error) {
	return m.records, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.DedupRecord, error) {
	return m.record, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func requiredPorts() *Ports {
	return &Ports{
		Ingest: &mockIngestService{},
		Answer: &mockAnswerService{},
	}
}
