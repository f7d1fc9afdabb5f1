package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPStore(t *testing.T, handler http.HandlerFunc) *HTTPStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewHTTPStore(HTTPOptions{
		BaseURL:      srv.URL,
		Timeout:      2 * time.Second,
		Retries:      2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPStoreRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://nope"} {
		_, err := NewHTTPStore(HTTPOptions{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestHTTPStoreList(t *testing.T) {
	want := []blueprint.Blueprint{
		{ID: "1", Name: "Alpha", Status: blueprint.StatusDraft},
		{ID: "2", Name: "Beta", Status: blueprint.StatusComplete},
	}
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/blueprints", r.URL.Path)
		assert.True(t, id.IsValidRequestID(r.Header.Get("X-Request-ID")))
		writeJSON(w, http.StatusOK, want)
	})

	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Name)
	assert.Equal(t, blueprint.StatusComplete, items[1].Status)
}

func TestHTTPStoreListNullBody(t *testing.T) {
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, nil)
	})

	items, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHTTPStoreCreateSendsDraft(t *testing.T) {
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var d blueprint.Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, "Alpha", d.Name)
		assert.Equal(t, "l", d.Marketing.LeadMagnet)

		bp := d.Build("bp_new", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
		writeJSON(w, http.StatusCreated, bp)
	})

	bp, err := s.Create(context.Background(), fullDraft("Alpha"))
	require.NoError(t, err)
	assert.Equal(t, "bp_new", bp.ID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), bp.UpdatedAt.UTC())
}

func TestHTTPStoreStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   map[string]string{"error": "Blueprint not found"},
			check: func(t *testing.T, err error) {
				assert.True(t, blueprint.IsNotFound(err))
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   map[string]string{"error": "name is required"},
			check: func(t *testing.T, err error) {
				var verr *blueprint.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "name is required", verr.Message)
			},
		},
		{
			name:   "conflict",
			status: http.StatusConflict,
			body:   map[string]string{"error": "busy"},
			check: func(t *testing.T, err error) {
				var serr *blueprint.StoreError
				require.True(t, errors.As(err, &serr))
				assert.Equal(t, blueprint.StoreServer, serr.Kind)
				assert.Contains(t, serr.Error(), "busy")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			name := "x"
			_, err := s.Update(context.Background(), "bp_1", blueprint.Patch{Name: &name})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHTTPStoreDeleteOfMissingSucceeds(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/blueprints/gone" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Blueprint not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, s.Delete(context.Background(), "bp_1"))
	assert.NoError(t, s.Delete(context.Background(), "gone"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/blueprints/bp_1", "/blueprints/gone"}, paths)
}

func TestHTTPStoreRetriesIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []blueprint.Blueprint{})
	})

	_, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPStoreNeverRetriesCreate(t *testing.T) {
	var calls atomic.Int32
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "warming up"})
	})

	_, err := s.Create(context.Background(), fullDraft("Alpha"))
	var serr *blueprint.StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, blueprint.StoreServer, serr.Kind)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPStoreNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	s, err := NewHTTPStore(HTTPOptions{BaseURL: base, Retries: 0})
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "bp_1")
	var serr *blueprint.StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, blueprint.StoreNetwork, serr.Kind)
}

func TestHTTPStoreReturnsContextError(t *testing.T) {
	release := make(chan struct{})
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPStoreUndecodableBody(t *testing.T) {
	s := newTestHTTPStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	})

	_, err := s.Get(context.Background(), "bp_1")
	var serr *blueprint.StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, blueprint.StoreServer, serr.Kind)
}
