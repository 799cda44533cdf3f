package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// --- Test doubles shared by the service tests ---

const fakeDims = 64

// fakeEmbedder embeds text as a bag of hashed words so texts sharing words
// are similar.
type fakeEmbedder struct {
	mu      sync.Mutex
	fail    map[string]error
	calls   atomic.Int32
	delay   time.Duration
	dims    int
	pingErr error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{fail: make(map[string]error), dims: fakeDims}
}

func (e *fakeEmbedder) failOn(text string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail[text] = err
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.delay):
		}
	}

	e.mu.Lock()
	err := e.fail[text]
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return bagOfWords(text, e.dims), nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int              { return e.dims }
func (e *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (e *fakeEmbedder) Ping(_ context.Context) error { return e.pingErr }
func (e *fakeEmbedder) Close() error                 { return nil }

func bagOfWords(text string, dims int) []float32 {
	vec := make([]float32, dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%uint32(dims)]++
	}
	if IsZeroVector(vec) {
		vec[0] = 0.01
	}
	return vec
}

// fakeLLM answers with a function of the prompts.
type fakeLLM struct {
	mu       sync.Mutex
	respond  func(system, user string) (string, error)
	prompts  []string
	lastOpts driven.CompleteOptions
	calls    atomic.Int32
}

func (l *fakeLLM) Complete(ctx context.Context, system, user string, opts driven.CompleteOptions) (string, error) {
	l.calls.Add(1)
	l.mu.Lock()
	l.prompts = append(l.prompts, user)
	l.lastOpts = opts
	respond := l.respond
	l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if respond == nil {
		return "ok", nil
	}
	return respond(system, user)
}

func (l *fakeLLM) userPrompts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.prompts...)
}

func (l *fakeLLM) ModelName() string            { return "fake-llm" }
func (l *fakeLLM) Ping(_ context.Context) error { return nil }
func (l *fakeLLM) Close() error                 { return nil }

// fakeExtractor returns the raw bytes as text, or a canned extraction.
type fakeExtractor struct {
	result *domain.Extraction
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (x *fakeExtractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	x.calls.Add(1)
	if x.delay > 0 {
		time.Sleep(x.delay)
	}
	if x.err != nil {
		return nil, x.err
	}
	if x.result != nil {
		return x.result, nil
	}
	return &domain.Extraction{
		Format: domain.DetectFormat(raw.Filename, raw.MIMEType),
		Text:   string(raw.Content),
		Title:  raw.Stem(),
	}, nil
}

func (x *fakeExtractor) Register(_ driven.Normaliser) {}

func (x *fakeExtractor) SupportedFormats() []domain.Format { return domain.Formats() }

// paragraphChunker emits one chunk per paragraph.
type paragraphChunker struct{}

func (paragraphChunker) Chunk(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c paragraphChunker) Process(documentID, text string) []domain.Chunk {
	segments := c.Chunk(text)
	chunks := make([]domain.Chunk, len(segments))
	for i, segment := range segments {
		chunks[i] = domain.Chunk{ID: segment, DocumentID: documentID, Ordinal: i, Content: segment}
	}
	return chunks
}

// recordingStore wraps inserts with optional per-ordinal failures.
type recordingStore struct {
	mu       sync.Mutex
	inserted []domain.Chunk
	failOn   map[int]error
	queryErr error
	extra    []domain.ScoredChunk
}

func (s *recordingStore) Insert(_ context.Context, chunk domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[chunk.Ordinal]; err != nil {
		return err
	}
	s.inserted = append(s.inserted, chunk)
	return nil
}

func (s *recordingStore) Query(_ context.Context, documentID string, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	s.mu.Lock()
	var scoped []domain.Chunk
	for _, chunk := range s.inserted {
		if chunk.DocumentID == documentID {
			scoped = append(scoped, chunk)
		}
	}
	s.mu.Unlock()
	return append(domain.TopK(scoped, vector, k), s.extra...), nil
}

func (s *recordingStore) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Chunk
	for _, chunk := range s.inserted {
		if chunk.DocumentID == documentID {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (s *recordingStore) DeleteDocument(_ context.Context, _ string) error { return nil }
func (s *recordingStore) Close() error                                     { return nil }

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

// faultyLedger fails lookups or records on demand and otherwise behaves
// like a first-write-wins map.
type faultyLedger struct {
	mu        sync.Mutex
	records   map[string]domain.DedupRecord
	lookupErr error
	recordErr error
	recorded  atomic.Int32
}

func newFaultyLedger() *faultyLedger {
	return &faultyLedger{records: make(map[string]domain.DedupRecord)}
}

func (l *faultyLedger) Lookup(_ context.Context, hash string) (*domain.DedupRecord, error) {
	if l.lookupErr != nil {
		return nil, l.lookupErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (l *faultyLedger) Record(_ context.Context, record domain.DedupRecord) error {
	l.recorded.Add(1)
	if l.recordErr != nil {
		return l.recordErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[record.Hash]; !ok {
		l.records[record.Hash] = record
	}
	return nil
}

func (l *faultyLedger) List(_ context.Context) ([]domain.DedupRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.DedupRecord, 0, len(l.records))
	for _, record := range l.records {
		out = append(out, record)
	}
	return out, nil
}

func (l *faultyLedger) Close() error { return nil }

// countingLock is a process-local ClaimLock that counts claims.
type countingLock struct {
	mu       sync.Mutex
	claims   atomic.Int32
	releases atomic.Int32
	err      error
}

func (l *countingLock) Claim(_ context.Context, _ string, _ time.Duration) (func(), error) {
	l.claims.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	return func() {
		l.releases.Add(1)
		l.mu.Unlock()
	}, nil
}

// staticFetcher returns a fixed document.
type staticFetcher struct {
	raw *domain.RawDocument
	err error
}

func (f *staticFetcher) Fetch(_ context.Context, _ string) (*domain.RawDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

// mapPromptStore serves prompts from a map.
type mapPromptStore map[string]string

func (m mapPromptStore) Load(name string) (string, error) {
	if prompt, ok := m[name]; ok {
		return prompt, nil
	}
	return "", errors.New("no prompt")
}

func (m mapPromptStore) Reload() {}
