package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.maxTokens != DefaultMaxTokens {
			t.Errorf("expected maxTokens %d, got %d", DefaultMaxTokens, p.maxTokens)
		}
		if p.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, p.overlap)
		}
		if _, ok := p.tokenizer.(RuneTokenizer); !ok {
			t.Errorf("expected RuneTokenizer default, got %T", p.tokenizer)
		}
	})

	t.Run("custom max tokens", func(t *testing.T) {
		p := New(WithMaxTokens(500))
		if p.maxTokens != 500 {
			t.Errorf("expected maxTokens 500, got %d", p.maxTokens)
		}
	})

	t.Run("overlap exceeds window", func(t *testing.T) {
		p := New(WithMaxTokens(100), WithOverlap(150))
		if p.overlap >= p.maxTokens {
			t.Error("overlap should be reduced when it exceeds the window")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithMaxTokens(0), WithOverlap(-1), WithTokenizer(nil))
		if p.maxTokens != DefaultMaxTokens {
			t.Errorf("expected default maxTokens, got %d", p.maxTokens)
		}
		if p.overlap != DefaultOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if p.tokenizer == nil {
			t.Error("expected tokenizer to stay set")
		}
	})

	t.Run("from settings", func(t *testing.T) {
		p := NewFromSettings(domain.ChunkingSettings{MaxTokens: 300, OverlapTokens: 20}, RuneTokenizer{})
		if p.maxTokens != 300 || p.overlap != 20 {
			t.Errorf("expected 300/20, got %d/%d", p.maxTokens, p.overlap)
		}
	})
}

func TestChunk_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t"} {
		if chunks := New().Chunk(text); chunks != nil {
			t.Errorf("Chunk(%q) = %v, want nil", text, chunks)
		}
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := New(WithMaxTokens(100)).Chunk("  Grace period is thirty days.\n")
	want := []string{"Grace period is thirty days."}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("got %q, want %q", chunks, want)
	}
}

func TestChunk_ExactlyMaxTokens(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := New(WithMaxTokens(50)).Chunk(text)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("expected one chunk equal to input, got %q", chunks)
	}
}

func TestChunk_OverlapWithoutBoundaries(t *testing.T) {
	chunks := New(WithMaxTokens(10), WithOverlap(2)).Chunk("abcdefghijklmnopqrstuvwxyz")
	want := []string{"abcdefghij", "ijklmnopqr", "qrstuvwxyz"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("got %q, want %q", chunks, want)
	}
}

func TestChunk_ParagraphAndSentenceBoundaries(t *testing.T) {
	text := "Section 1. General terms apply to all members.\n\n" +
		"Room Rent limit is 2% of Sum Insured. ICU charges are capped at 5% of Sum Insured.\n\n" +
		"Section 3. Exclusions apply to cosmetic care."

	chunks := New(WithMaxTokens(60), WithOverlap(5)).Chunk(text)
	want := []string{
		"Section 1. General terms apply to all members.",
		"bers.\n\nRoom Rent limit is 2% of Sum Insured.",
		"ured. ICU charges are capped at 5% of Sum Insured.",
		"ured.\n\nSection 3. Exclusions apply to cosmetic care.",
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("got %q, want %q", chunks, want)
	}
}

func TestChunk_LargeOverlapStillProgresses(t *testing.T) {
	chunks := New(WithMaxTokens(10), WithOverlap(9)).Chunk("ab cd ef gh ij kl mn op qr st uv wx yz")
	want := []string{"ab cd ef", "gh ij kl", "mn op qr", "st uv wx", "yz"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("got %q, want %q", chunks, want)
	}
}

func TestChunk_Invariants(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The insured may claim reimbursement within thirty days. ")
		if i%7 == 0 {
			b.WriteString("\n\n")
		}
	}
	text := b.String()
	maxTokens := 120

	chunks := New(WithMaxTokens(maxTokens), WithOverlap(10)).Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c == "" || c != strings.TrimSpace(c) {
			t.Errorf("chunk %d not trimmed or empty: %q", i, c)
		}
		if n := utf8.RuneCountInString(c); n > maxTokens {
			t.Errorf("chunk %d has %d tokens, max %d", i, n, maxTokens)
		}
	}

	// Every word survives chunking.
	joined := strings.Join(chunks, " ")
	if strings.Count(joined, "reimbursement") < 200 {
		t.Errorf("content lost: %d occurrences", strings.Count(joined, "reimbursement"))
	}
}

func TestProcess_DenseOrdinals(t *testing.T) {
	chunks := New(WithMaxTokens(10), WithOverlap(2)).Process("doc-hash", "abcdefghijklmnopqrstuvwxyz")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	seen := make(map[string]bool)
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if c.DocumentID != "doc-hash" {
			t.Errorf("chunk %d has document %q", i, c.DocumentID)
		}
		if c.ID == "" || seen[c.ID] {
			t.Errorf("chunk %d has empty or duplicate ID %q", i, c.ID)
		}
		seen[c.ID] = true
	}
}

func TestProcess_Empty(t *testing.T) {
	if chunks := New().Process("doc", "  "); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestFindBoundary(t *testing.T) {
	tests := []struct {
		name   string
		window string
		want   int
	}{
		{name: "paragraph break", window: "aaaa bbbb\n\ncccc dddd", want: 9},
		{name: "paragraph too early falls to sentence", window: "a\n\nbbbbbbbbbb. cccc", want: 14},
		{name: "furthest sentence terminator", window: "One. Two! Three? four", want: 16},
		{name: "word boundary", window: "aaaa bbbb cccc", want: 9},
		{name: "no boundary", window: "abcdefghij", want: 10},
		{name: "boundary before threshold", window: "ab cdefghijklmnop", want: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findBoundary(tt.window); got != tt.want {
				t.Errorf("findBoundary(%q) = %d, want %d", tt.window, got, tt.want)
			}
		})
	}
}

func TestRuneTokenizer_RoundTrip(t *testing.T) {
	text := "Sum Insured ₹5,00,000 - café"
	tok := RuneTokenizer{}
	tokens := tok.Encode(text)
	if len(tokens) != utf8.RuneCountInString(text) {
		t.Errorf("expected %d tokens, got %d", utf8.RuneCountInString(text), len(tokens))
	}
	if got := tok.Decode(tokens); got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}
