package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ingest service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingIngestService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(requiredPorts())
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, "dev", server.Version())
	})

	t.Run("version option", func(t *testing.T) {
		server, err := NewServer(requiredPorts(), WithVersion("1.4.0"))
		require.NoError(t, err)
		assert.Equal(t, "1.4.0", server.Version())
	})

	t.Run("empty version keeps default", func(t *testing.T) {
		server, err := NewServer(requiredPorts(), WithVersion(""))
		require.NoError(t, err)
		assert.Equal(t, "dev", server.Version())
	})
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(requiredPorts())
	require.NoError(t, err)

	// A GET without a session is rejected by the streamable transport.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestServer_ServeHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(requiredPorts())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ServeBadAddress(t *testing.T) {
	server, err := NewServer(requiredPorts())
	require.NoError(t, err)

	err = server.Serve(context.Background(), "256.0.0.1:bad")

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "mcp: listen"))
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:    "empty ports",
			ports:   &Ports{},
			wantErr: ErrMissingIngestService,
		},
		{
			name:    "missing answer service",
			ports:   &Ports{Ingest: &mockIngestService{}},
			wantErr: ErrMissingAnswerService,
		},
		{
			name:  "required ports only",
			ports: requiredPorts(),
		},
		{
			name: "all ports",
			ports: &Ports{
				Ingest:   &mockIngestService{},
				Answer:   &mockAnswerService{},
				Document: &mockDocumentService{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
