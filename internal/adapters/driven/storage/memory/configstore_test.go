package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "gemini-2.5-flash"))
	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", val)

	require.NoError(t, store.Set("llm.model", "llama3.2"))
	val, _ = store.Get("llm.model")
	assert.Equal(t, "llama3.2", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_KeepsValueTypes(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{
		"retrieval.top_k": 3,
		"indexing.titles": true,
		"resilience.rps":  2.5,
	})

	tests := []struct {
		key  string
		want any
	}{
		{"retrieval.top_k", 3},
		{"indexing.titles", true},
		{"resilience.rps", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"k": "v"}
	store := NewConfigStoreWith(seed)
	seed["k"] = "changed"

	got, _ := store.Get("k")
	assert.Equal(t, "v", got)
}

func TestConfigStore_Path(t *testing.T) {
	assert.Equal(t, ":memory:", NewConfigStore().Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Get("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
