//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/generation"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/server"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/store"
)

// startStoreService runs the blueprint store service on a loopback port and
// returns its base URL.
func startStoreService(t *testing.T, mutate func(cfg *config.Config)) string {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := server.NewServer(cfg, zap.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("store service did not shut down")
		}
		_ = srv.Close()
	})
	return "http://" + ln.Addr().String()
}

func newStoreClient(t *testing.T, baseURL string) *store.HTTPStore {
	t.Helper()
	s, err := store.NewHTTPStore(store.HTTPOptions{
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		Retries:      2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return s
}

// generationStub imitates the generation service. It answers with the
// sample blueprint wrapped in a Markdown fence, or with status when set.
type generationStub struct {
	*httptest.Server
	calls  atomic.Int32
	status atomic.Int32
}

func startGenerationStub(t *testing.T) *generationStub {
	t.Helper()
	stub := &generationStub{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.calls.Add(1)
		if r.URL.Path != generation.GeneratePath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Idea string `json:"idea"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Idea == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		if code := stub.status.Load(); code != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(int(code))
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Failed to generate a valid business blueprint."})
			return
		}

		sample := generation.Sample()
		body, _ := json.MarshalIndent(map[string]any{
			"name":             sample.Name,
			"pitch":            sample.Pitch,
			"valueProposition": sample.ValueProposition,
			"swot":             sample.SWOT,
			"marketing":        sample.Marketing,
		}, "", "  ")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("```json\n" + string(body) + "\n```"))
	}))
	t.Cleanup(stub.Close)
	return stub
}

func (s *generationStub) client() *generation.Client {
	return generation.NewClient(generation.Options{BaseURL: s.URL, Timeout: 2 * time.Second})
}
