package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("DOCQA_TEST_A=first\n"), 0600))
	require.NoError(t, os.WriteFile(second, []byte("DOCQA_TEST_A=second\nDOCQA_TEST_B=second\n"), 0600))
	t.Setenv("DOCQA_TEST_A", "")
	t.Setenv("DOCQA_TEST_B", "")
	os.Unsetenv("DOCQA_TEST_A")
	os.Unsetenv("DOCQA_TEST_B")

	loaded, err := LoadEnv(first, filepath.Join(dir, "missing.env"), second)

	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, loaded)
	assert.Equal(t, "first", os.Getenv("DOCQA_TEST_A"))
	assert.Equal(t, "second", os.Getenv("DOCQA_TEST_B"))
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCQA_TEST_C=file\n"), 0600))
	t.Setenv("DOCQA_TEST_C", "process")

	_, err := LoadEnv(path)

	require.NoError(t, err)
	assert.Equal(t, "process", os.Getenv("DOCQA_TEST_C"))
}

func TestLoadEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCQA_TEST_D='unterminated\n"), 0600))

	_, err := LoadEnv(path)

	assert.Error(t, err)
}
