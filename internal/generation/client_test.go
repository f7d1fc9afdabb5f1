package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/resilience"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "name": "Trailhead",
  "pitch": "Personalized travel itineraries.",
  "valueProposition": "Plan a trip in minutes.",
  "swot": {"strengths": "s", "weaknesses": "w", "opportunities": "o", "threats": "t"},
  "marketing": {"funnel": "f", "ads": "a", "leadMagnet": "l"}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func requireKind(t *testing.T, err error, kind blueprint.GenerationErrorKind) *blueprint.GenerationError {
	t.Helper()
	var gerr *blueprint.GenerationError
	require.True(t, errors.As(err, &gerr), "want GenerationError, got %v", err)
	assert.Equal(t, kind, gerr.Kind)
	return gerr
}

func TestGenerateSuccess(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GeneratePath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "travel planner", body.Idea)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validReply))
	})

	metrics := monitoring.NewMetrics()
	client := NewClient(Options{BaseURL: srv.URL + "/", Timeout: time.Second, Metrics: metrics})

	bp, err := client.Generate(context.Background(), "travel planner")
	require.NoError(t, err)
	assert.Equal(t, "Trailhead", bp.Name)
	assert.Equal(t, "t", bp.SWOT.Threats)
	assert.Equal(t, blueprint.StatusDraft, bp.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GenerationCalls.WithLabelValues("success")))
}

func TestGenerateStripsCodeFence(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("```json\n" + validReply + "\n```"))
	})

	bp, err := NewClient(Options{BaseURL: srv.URL}).Generate(context.Background(), "idea")
	require.NoError(t, err)
	assert.Equal(t, "Trailhead", bp.Name)
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantKind   blueprint.GenerationErrorKind
		wantReason string
	}{
		{
			name: "server error with detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail":"Failed to communicate with the generation model."}`))
			},
			wantKind:   blueprint.GenerationServerError,
			wantReason: "Failed to communicate with the generation model.",
		},
		{
			name: "server error without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantKind:   blueprint.GenerationServerError,
			wantReason: blueprint.InvalidOutputReason,
		},
		{
			name: "missing swot",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"name":"x","pitch":"p","valueProposition":"v","marketing":{"funnel":"f","ads":"a","leadMagnet":"l"}}`))
			},
			wantKind:   blueprint.GenerationServerError,
			wantReason: blueprint.InvalidOutputReason,
		},
		{
			name: "slow service",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			},
			wantKind: blueprint.GenerationTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newTestServer(t, tt.handler)
			client := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

			bp, err := client.Generate(context.Background(), "idea")
			assert.Nil(t, bp)
			gerr := requireKind(t, err, tt.wantKind)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, gerr.UserMessage())
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "never retried")
		})
	}
}

func TestGenerateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Options{BaseURL: url, Timeout: time.Second}).Generate(context.Background(), "idea")
	requireKind(t, err, blueprint.GenerationNetwork)
}

func TestGenerateContextDeadline(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := NewClient(Options{BaseURL: srv.URL, Timeout: 5 * time.Second}).Generate(ctx, "idea")
	requireKind(t, err, blueprint.GenerationTimeout)
}

func TestGenerateRateLimitedPastDeadline(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validReply))
	})
	client := NewClient(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, RPS: 0.2})

	_, err := client.Generate(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err = client.Generate(ctx, "second")
	requireKind(t, err, blueprint.GenerationTimeout)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second})

	for i := 0; i < 3; i++ {
		_, err := client.Generate(context.Background(), "idea")
		requireKind(t, err, blueprint.GenerationServerError)
	}
	require.Equal(t, resilience.StateOpen, client.Breaker().State())

	_, err := client.Generate(context.Background(), "idea")
	gerr := requireKind(t, err, blueprint.GenerationServerError)
	assert.ErrorIs(t, gerr, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestFake(t *testing.T) {
	f := NewFake()

	bp, err := f.Generate(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "QuantumLeap AI", bp.Name)

	f.FailWith(blueprint.GenerationNetwork, "")
	_, err = f.Generate(context.Background(), "second")
	requireKind(t, err, blueprint.GenerationNetwork)

	f.FailWith("", "")
	f.Block()
	done := make(chan error, 1)
	go func() {
		_, err := f.Generate(context.Background(), "third")
		done <- err
	}()

	assert.Equal(t, "first", <-f.Started())
	assert.Equal(t, "second", <-f.Started())
	assert.Equal(t, "third", <-f.Started())

	select {
	case <-done:
		t.Fatal("call should still be blocked")
	case <-time.After(20 * time.Millisecond):
	}
	f.Release()
	require.NoError(t, <-done)

	assert.Equal(t, 3, f.Calls())
	assert.Equal(t, []string{"first", "second", "third"}, f.Ideas())
}

func TestFakeHonoursCancellation(t *testing.T) {
	f := NewFake()
	f.SetDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Generate(ctx, "idea")
	assert.ErrorIs(t, err, context.Canceled)
}
