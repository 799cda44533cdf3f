package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCmd(t *testing.T) {
	t.Run("prints text", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute("extract", "notes.txt")

		require.NoError(t, err)
		assert.Contains(t, out, "Notes")
		assert.Contains(t, out, "format: generic_fallback")
		assert.Contains(t, out, "Plain text body.")
	})

	t.Run("extraction error", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute("extract", "broken.bin")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to extract broken.bin")
	})

	t.Run("no extractor", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		extractor = nil

		_, err := execute("extract", "notes.txt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "extractor not configured")
	})
}
