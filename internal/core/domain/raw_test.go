package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash([]byte("Room Rent limit is 2% of Sum Insured"))
	b := ContentHash([]byte("Room Rent limit is 2% of Sum Insured"))

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestContentHash_KnownValue(t *testing.T) {
	// sha256("") is a well-known constant.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ContentHash(nil))
}

func TestContentHash_DiffersOnContent(t *testing.T) {
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}

func TestRawDocument_HashIgnoresFilename(t *testing.T) {
	a := RawDocument{Filename: "policy.pdf", Content: []byte("same bytes")}
	b := RawDocument{Filename: "renamed-copy.pdf", Content: []byte("same bytes")}

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestRawDocument_Stem(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"people.csv", "people"},
		{"/tmp/data/report.final.xlsx", "report.final"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			raw := RawDocument{Filename: tt.filename}
			assert.Equal(t, tt.want, raw.Stem())
		})
	}
}
