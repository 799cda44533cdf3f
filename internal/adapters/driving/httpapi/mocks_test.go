package httpapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

type mockIngestService struct {
	doc  *domain.Document
	err  error
	urls []string
}

func (m *mockIngestService) Ingest(_ context.Context, _ *domain.RawDocument) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) IngestURL(_ context.Context, url string) (*domain.Document, error) {
	m.urls = append(m.urls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

type mockAnswerService struct {
	err        error
	documentID string
}

func (m *mockAnswerService) AnswerBatch(_ context.Context, documentID string, questions []string) ([]domain.Answer, error) {
	m.documentID = documentID
	if m.err != nil {
		return nil, m.err
	}
	answers := make([]domain.Answer, len(questions))
	for i, q := range questions {
		answers[i] = domain.Answer{Question: q, Text: "answer to " + q}
		if q == "fail" {
			answers[i].Err = errors.New("llm down")
			answers[i].Text = "llm down"
		}
	}
	return answers, nil
}

type mockDocumentService struct {
	records []domain.DedupRecord
	err     error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DedupRecord, error) {
	return m.records, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.DedupRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return "", nil
}

func testPorts() *Ports {
	return &Ports{
		Ingest: &mockIngestService{doc: &domain.Document{ID: "abc123", Filename: "u_policy.pdf"}},
		Answer: &mockAnswerService{},
		Document: &mockDocumentService{records: []domain.DedupRecord{{
			Hash:      "abc123",
			Filename:  "u_policy.pdf",
			Format:    domain.FormatPDF,
			Chunks:    12,
			CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}}},
	}
}

// serve sends one request through the router.
func serve(s *Server, method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
