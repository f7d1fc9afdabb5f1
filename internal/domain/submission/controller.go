package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/generation"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/observe"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/utils"
	"go.uber.org/zap"
)

// State of the submission lifecycle
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StatePresenting State = "presenting"
)

var (
	// ErrClosed is returned by operations on a closed controller
	ErrClosed = errors.New("submission controller closed")
	// ErrNothingToSave is returned by Save outside the Presenting state
	ErrNothingToSave = errors.New("no blueprint to save")
)

// Creator persists a draft. store.Store satisfies it.
type Creator interface {
	Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error)
}

// Snapshot is an immutable view of the controller state
type Snapshot struct {
	State     State
	Idea      string
	Blueprint *blueprint.Blueprint
	// Error is the user-visible message, empty when there is none
	Error   string
	Err     error
	Version uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller owns the idea input and the single in-flight generation
type Controller struct {
	generator generation.Generator
	logger    *zap.Logger
	notifier  observe.Notifier[Snapshot]

	mu      sync.Mutex
	state   State
	idea    string
	result  *blueprint.Blueprint
	err     error
	version uint64
	seq     uint64
	cancel  context.CancelFunc
	// inflight stays set until Generate returns, even after Reset
	inflight bool
	closed   bool
}

// New creates a controller in the Idle state
func New(generator generation.Generator, opts ...Option) *Controller {
	c := &Controller{generator: generator, state: StateIdle}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).Named("submission")
	c.notifier.Version = snapshotVersion
	return c
}

// Subscribe registers fn for every later snapshot. The returned function
// unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	return c.notifier.Subscribe(fn)
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Submit validates ideaText and generates a blueprint for it. It blocks
// until the request resolves. While a request is in flight further calls
// return nil without effect.
func (c *Controller) Submit(ctx context.Context, ideaText string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.inflight || c.state == StateValidating {
		c.mu.Unlock()
		c.logger.Debug("Submit ignored, request in flight")
		return nil
	}

	c.state = StateValidating
	c.idea = ideaText
	validating := c.bumpLocked()

	idea, err := utils.ValidateIdea(ideaText)
	if err != nil {
		c.state = StateIdle
		c.result = nil
		c.err = err
		invalid := c.bumpLocked()
		c.mu.Unlock()

		c.notifier.Publish(validating)
		c.notifier.Publish(invalid)
		return err
	}

	c.seq++
	seq := c.seq
	taskCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inflight = true
	c.state = StateSubmitting
	c.idea = idea
	c.result = nil
	c.err = nil
	submitting := c.bumpLocked()
	c.mu.Unlock()

	c.notifier.Publish(validating)
	c.notifier.Publish(submitting)
	c.logger.Info("Generating blueprint", zap.Uint64("seq", seq), zap.Int("idea_length", len(idea)))

	bp, err := c.generator.Generate(taskCtx, idea)
	cancel()
	if err != nil {
		err = asGenerationError(err)
	}

	c.mu.Lock()
	c.inflight = false
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale generation result", zap.Uint64("seq", seq))
		return err
	}
	c.cancel = nil
	if err != nil {
		c.state = StateIdle
		c.result = nil
		c.err = err
	} else {
		c.state = StatePresenting
		c.result = bp
		c.err = nil
	}
	resolved := c.bumpLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Generation failed", zap.Uint64("seq", seq), zap.Error(err))
	} else {
		c.logger.Info("Blueprint generated", zap.Uint64("seq", seq), zap.String("name", bp.Name))
	}
	c.notifier.Publish(resolved)
	return err
}

// Reset returns to Idle, dropping the result, the error and any in-flight
// request. Submit stays a no-op until the cancelled request returns.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.state = StateIdle
	c.idea = ""
	c.result = nil
	c.err = nil
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.notifier.Publish(snap)
}

// Save persists the presented blueprint and presents the stored copy
func (c *Controller) Save(ctx context.Context, store Creator) (*blueprint.Blueprint, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state != StatePresenting || c.result == nil {
		c.mu.Unlock()
		return nil, ErrNothingToSave
	}
	seq := c.seq
	draft := c.result.ToDraft()
	c.mu.Unlock()

	saved, err := store.Create(ctx, draft)
	if err != nil {
		c.logger.Warn("Saving blueprint failed", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	if c.closed || seq != c.seq || c.state != StatePresenting {
		c.mu.Unlock()
		return saved, nil
	}
	c.result = saved
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.logger.Info("Blueprint saved", zap.String("id", saved.ID))
	c.notifier.Publish(snap)
	return saved, nil
}

// Close cancels any in-flight request and drops all subscribers. Results
// arriving afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.notifier.Clear()
}

func snapshotVersion(s Snapshot) uint64 { return s.Version }

func (c *Controller) bumpLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:   c.state,
		Idea:    c.idea,
		Err:     c.err,
		Version: c.version,
	}
	if c.result != nil {
		bp := c.result.Clone()
		s.Blueprint = &bp
	}
	if c.err != nil {
		s.Error = UserMessage(c.err)
	}
	return s
}

// UserMessage returns the text shown next to the idea input for err
func UserMessage(err error) string {
	var verr *blueprint.ValidationError
	var gerr *blueprint.GenerationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &gerr):
		return gerr.UserMessage()
	default:
		return err.Error()
	}
}

func asGenerationError(err error) error {
	var gerr *blueprint.GenerationError
	if errors.As(err, &gerr) {
		return err
	}
	kind := blueprint.GenerationNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = blueprint.GenerationTimeout
	}
	return &blueprint.GenerationError{Kind: kind, Err: err}
}
