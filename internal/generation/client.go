package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/id"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GeneratePath is the generation service endpoint
const GeneratePath = "/api/v1/generate_blueprint"

// unavailableReason is shown while the breaker rejects calls
const unavailableReason = "The blueprint service is temporarily unavailable. Please try again shortly."

// Generator turns idea text into an unsaved blueprint. Implementations make
// a single attempt and never retry.
type Generator interface {
	Generate(ctx context.Context, idea string) (*blueprint.Blueprint, error)
}

// Options configures Client
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RPS limits outgoing calls; 0 disables limiting
	RPS     float64
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper
}

// Client calls the remote generation service
type Client struct {
	resty   *resty.Client
	guard   *resilience.Guard
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

type generateRequest struct {
	Idea string `json:"idea"`
}

// errorBody covers both {"detail": ...} and {"error": ...} replies
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// NewClient creates a generation client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	logger := logging.OrNop(opts.Logger).Named("generation")

	r := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "AutoThinker/1.0").
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		r.SetTransport(opts.Transport)
	}

	metrics := opts.Metrics
	breaker := resilience.NewBreaker("generation", resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
			if metrics != nil {
				metrics.SetBreakerState(name, int(to))
			}
		},
	})

	return &Client{
		resty:   r,
		guard:   resilience.NewGuard(breaker, opts.RPS),
		logger:  logger,
		metrics: metrics,
	}
}

// Generate posts idea to the generation service and parses the reply.
// Every failure is a *blueprint.GenerationError.
func (c *Client) Generate(ctx context.Context, idea string) (*blueprint.Blueprint, error) {
	start := time.Now()
	rid := id.NewRequestID()

	var out *blueprint.Blueprint
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		bp, err := c.call(ctx, rid, idea)
		out = bp
		return err
	})
	err = classify(err)

	outcome := "success"
	var gerr *blueprint.GenerationError
	if errors.As(err, &gerr) {
		outcome = string(gerr.Kind)
	}
	if c.metrics != nil {
		c.metrics.RecordGeneration(outcome, time.Since(start))
	}

	if err != nil {
		c.logger.Warn("Blueprint generation failed",
			zap.String("request_id", rid),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Info("Blueprint generated",
		zap.String("request_id", rid),
		zap.String("name", out.Name),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Breaker exposes the client's breaker for health reporting
func (c *Client) Breaker() *resilience.Breaker {
	return c.guard.Breaker()
}

func (c *Client) call(ctx context.Context, rid, idea string) (*blueprint.Blueprint, error) {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", rid).
		SetBody(generateRequest{Idea: idea}).
		Post(GeneratePath)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.IsError() {
		return nil, &blueprint.GenerationError{
			Kind:   blueprint.GenerationServerError,
			Reason: errorReason(resp.Body()),
			Err:    fmt.Errorf("generation service returned %s", resp.Status()),
		}
	}

	return blueprint.Parse(resp.Body())
}

// classify maps guard and transport errors onto the generation taxonomy
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *blueprint.GenerationError
	if errors.As(err, &gerr) {
		return gerr
	}
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return &blueprint.GenerationError{Kind: blueprint.GenerationServerError, Reason: unavailableReason, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &blueprint.GenerationError{Kind: blueprint.GenerationTimeout, Err: err}
	default:
		return &blueprint.GenerationError{Kind: blueprint.GenerationNetwork, Err: err}
	}
}

func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &blueprint.GenerationError{Kind: blueprint.GenerationTimeout, Err: err}
	}
	return &blueprint.GenerationError{Kind: blueprint.GenerationNetwork, Err: err}
}

func errorReason(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Detail != "" {
		return eb.Detail
	}
	return eb.Error
}
