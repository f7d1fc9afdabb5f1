package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Logging.Development = true
	return cfg
}

func TestNewServerServesBlueprints(t *testing.T) {
	srv, err := NewServer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	req := httptest.NewRequest(http.MethodPost, "/blueprints", strings.NewReader(`{"name":"Alpha"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `autothinker_store_operations_total{backend="memory",op="create",status="success"} 1`)
	assert.Contains(t, w.Body.String(), "autothinker_blueprints 1")
}

func TestSQLiteBackendPersists(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "bp.db")

	srv, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/blueprints", strings.NewReader(`{"name":"Durable"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, srv.Close())

	srv, err = NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blueprints", nil))
	var items []blueprint.Blueprint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Durable", items[0].Name)
}

func TestUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "postgres"
	_, err := NewServer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestServeAndShutdown(t *testing.T) {
	srv, err := NewServer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client, err := store.NewHTTPStore(store.HTTPOptions{BaseURL: "http://" + ln.Addr().String(), Timeout: 2 * time.Second})
	require.NoError(t, err)

	created, err := client.Create(ctx, blueprint.Draft{Name: "Over the wire"})
	require.NoError(t, err)
	got, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
