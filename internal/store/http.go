package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/id"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// maxResponseSize caps how much of a store reply is read
const maxResponseSize = 8 << 20

// HTTPOptions configures HTTPStore
type HTTPOptions struct {
	BaseURL string
	Timeout time.Duration
	// Retries applies to idempotent requests only; creates are never retried
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *zap.Logger
	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper
}

// HTTPStore is the client for the blueprint store service.
type HTTPStore struct {
	base     string
	retrying *retryablehttp.Client
	once     *retryablehttp.Client
	logger   *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPStore creates a store client for the service at opts.BaseURL
func NewHTTPStore(opts HTTPOptions) (*HTTPStore, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store URL %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 200 * time.Millisecond
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 2 * time.Second
	}
	logger := logging.OrNop(opts.Logger).Named("store")

	newClient := func(retries int) *retryablehttp.Client {
		c := retryablehttp.NewClient()
		c.RetryMax = retries
		c.RetryWaitMin = opts.RetryWaitMin
		c.RetryWaitMax = opts.RetryWaitMax
		c.HTTPClient.Timeout = opts.Timeout
		if opts.Transport != nil {
			c.HTTPClient.Transport = opts.Transport
		}
		c.Logger = leveledLogger{logger.Sugar()}
		// Hand the final response back instead of a generic "giving up" error
		c.ErrorHandler = retryablehttp.PassthroughErrorHandler
		return c
	}

	return &HTTPStore{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		retrying: newClient(opts.Retries),
		once:     newClient(0),
		logger:   logger,
	}, nil
}

func (s *HTTPStore) List(ctx context.Context) ([]blueprint.Blueprint, error) {
	var out []blueprint.Blueprint
	if err := s.do(ctx, "list", http.MethodGet, "/blueprints", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []blueprint.Blueprint{}
	}
	return out, nil
}

func (s *HTTPStore) Get(ctx context.Context, bpID string) (*blueprint.Blueprint, error) {
	var out blueprint.Blueprint
	if err := s.do(ctx, "get", http.MethodGet, itemPath(bpID), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPStore) Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	var out blueprint.Blueprint
	if err := s.do(ctx, "create", http.MethodPost, "/blueprints", draft, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPStore) Update(ctx context.Context, bpID string, patch blueprint.Patch) (*blueprint.Blueprint, error) {
	var out blueprint.Blueprint
	if err := s.do(ctx, "update", http.MethodPut, itemPath(bpID), patch, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPStore) Delete(ctx context.Context, bpID string) error {
	err := s.do(ctx, "delete", http.MethodDelete, itemPath(bpID), nil, http.StatusNoContent, nil)
	if blueprint.IsNotFound(err) {
		return nil
	}
	return err
}

func itemPath(bpID string) string {
	return "/blueprints/" + url.PathEscape(bpID)
}

func (s *HTTPStore) do(ctx context.Context, op, method, path string, body any, want int, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, s.base+path, payload)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	rid := id.NewRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rid)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := s.retrying
	if method == http.MethodPost {
		client = s.once
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn("Store request failed",
			zap.String("op", op),
			zap.String("request_id", rid),
			zap.Error(err))
		return &blueprint.StoreError{Op: op, Kind: blueprint.StoreNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &blueprint.StoreError{Op: op, Kind: blueprint.StoreNetwork, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != want {
		return s.statusError(op, rid, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &blueprint.StoreError{Op: op, Kind: blueprint.StoreServer, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (s *HTTPStore) statusError(op, rid string, status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	switch {
	case status == http.StatusNotFound:
		return &blueprint.StoreError{Op: op, Kind: blueprint.StoreServer, Err: blueprint.ErrNotFound}
	case status == http.StatusBadRequest:
		msg := er.Error
		if msg == "" {
			msg = "rejected by store"
		}
		return blueprint.NewValidationError("", msg)
	default:
		s.logger.Warn("Store returned unexpected status",
			zap.String("op", op),
			zap.String("request_id", rid),
			zap.Int("status", status),
			zap.String("error", er.Error))
		err := fmt.Errorf("unexpected status %d", status)
		if er.Error != "" {
			err = fmt.Errorf("unexpected status %d: %s", status, er.Error)
		}
		return &blueprint.StoreError{Op: op, Kind: blueprint.StoreServer, Err: err}
	}
}

// leveledLogger adapts zap to retryablehttp's logger interface
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

var _ retryablehttp.LeveledLogger = leveledLogger{}
