package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

const testDocID = "3f2a9c1d5e7b4a6c8d0e2f4a6b8c0d1e3f5a7b9c1d3e5f7a9b1c3d5e7f9a1b3c"

type mockIngestService struct {
	files []string
	urls  []string
}

func (m *mockIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return m.document(raw.Filename), nil
}

func (m *mockIngestService) IngestFile(_ context.Context, path, _ string) (*domain.Document, error) {
	m.files = append(m.files, path)
	if strings.Contains(path, "broken") {
		return nil, &domain.ExtractionError{Format: domain.FormatPDF, Cause: errors.New("corrupt xref")}
	}
	if strings.Contains(path, "again") {
		return &domain.Document{ID: testDocID, Filename: "policy.pdf", State: domain.StateCacheHit}, nil
	}
	return m.document(path), nil
}

func (m *mockIngestService) IngestURL(_ context.Context, url string) (*domain.Document, error) {
	m.urls = append(m.urls, url)
	return m.document("1234_remote.pdf"), nil
}

func (m *mockIngestService) document(filename string) *domain.Document {
	return &domain.Document{
		ID:       testDocID,
		Filename: filename,
		Format:   domain.FormatPDF,
		State:    domain.StateIndexed,
		Report:   &domain.IndexReport{Chunks: 4, Indexed: 3, Degraded: 1},
	}
}

type mockAnswerService struct {
	documentID string
}

func (m *mockAnswerService) AnswerBatch(_ context.Context, documentID string, questions []string) ([]domain.Answer, error) {
	m.documentID = documentID
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	answers := make([]domain.Answer, len(questions))
	for i, q := range questions {
		if q == "fail" {
			err := &domain.AnswerGenerationError{Index: i, Question: q, Cause: errors.New("quota exceeded")}
			answers[i] = domain.Answer{Question: q, Text: err.Error(), Err: err}
			continue
		}
		answers[i] = domain.Answer{Question: q, Text: "The grace period is 30 days.", Sources: []int{0, 2}}
	}
	return answers, nil
}

type mockDocumentService struct {
	records []domain.DedupRecord
	chunks  []domain.Chunk
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		records: []domain.DedupRecord{{
			Hash:      testDocID,
			Filename:  "policy.pdf",
			Format:    domain.FormatPDF,
			Chunks:    2,
			CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		}},
		chunks: []domain.Chunk{
			{DocumentID: testDocID, Ordinal: 0, Content: "Grace period of thirty days.", Title: "Grace period", Summary: "Premium due dates."},
			{DocumentID: testDocID, Ordinal: 1, Content: "Waiting period of two years."},
		},
	}
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DedupRecord, error) {
	return m.records, nil
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.DedupRecord, error) {
	for i := range m.records {
		if strings.HasPrefix(m.records[i].Hash, documentID) {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	if documentID != testDocID {
		return nil, nil
	}
	return m.chunks, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, documentID string) (string, error) {
	if documentID != testDocID {
		return "", domain.ErrNotFound
	}
	return "Grace period of thirty days.\n\nWaiting period of two years.", nil
}

type mockSettingsService struct {
	values        map[string]string
	embeddingErr  error
	llmErr        error
	withEmbedding bool
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: map[string]string{}, withEmbedding: true}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	if m.withEmbedding {
		settings.Embedding.APIKey = "test-embedding-key-1234"
	}
	settings.Storage.DataDir = "/tmp/docqa/data"
	return &settings, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := []string{"llm.model", "embedding.api_key"}
	sort.Strings(keys)
	return keys
}

func (m *mockSettingsService) EnvVar(key string) string {
	return "DOCQA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.embeddingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

type mockExtractor struct{}

func (m *mockExtractor) ExtractFile(_ context.Context, path, _ string) (*domain.Extraction, error) {
	if strings.Contains(path, "broken") {
		return nil, domain.ErrUnsupportedFormat
	}
	return &domain.Extraction{Format: domain.FormatFallback, Text: "Plain text body.", Title: "Notes"}, nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest   *mockIngestService
	answer   *mockAnswerService
	document *mockDocumentService
	settings *mockSettingsService
}

// setupTestServices installs mock services and returns them with a cleanup
// func restoring the previous state.
func setupTestServices() (*testServices, func()) {
	oldIngest, oldAnswer, oldDocument := ingestService, answerService, documentService
	oldSettings, oldExtractor, oldErr := settingsService, extractor, pipelineErr

	ts := &testServices{
		ingest:   &mockIngestService{},
		answer:   &mockAnswerService{},
		document: newMockDocumentService(),
		settings: newMockSettingsService(),
	}
	SetServices(Services{
		Ingest:    ts.ingest,
		Answer:    ts.answer,
		Document:  ts.document,
		Settings:  ts.settings,
		Extractor: &mockExtractor{},
	})

	return ts, func() {
		ingestService, answerService, documentService = oldIngest, oldAnswer, oldDocument
		settingsService, extractor, pipelineErr = oldSettings, oldExtractor, oldErr
		jsonOutput = false
		fullChunks = false
		ingestMIME = ""
		watchNoScan = false
	}
}
