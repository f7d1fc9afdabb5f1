package generation

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
)

// Fake is an in-process Generator for tests and offline demos. It can
// inject a delay or a failure kind, and hold calls until released.
type Fake struct {
	mu      sync.Mutex
	result  blueprint.Blueprint
	err     error
	delay   time.Duration
	gate    chan struct{}
	calls   int
	ideas   []string
	started chan string
}

// NewFake returns a fake that succeeds with Sample()
func NewFake() *Fake {
	return &Fake{result: Sample(), started: make(chan string, 64)}
}

// Sample is the blueprint the fake returns by default
func Sample() blueprint.Blueprint {
	return blueprint.Blueprint{
		Name:             "QuantumLeap AI",
		Pitch:            "An AI-powered platform that helps developers write and debug quantum computing algorithms.",
		ValueProposition: "Making quantum computing accessible to the average developer, today.",
		SWOT: blueprint.SWOT{
			Strengths:     "First-mover advantage, strong technical team.",
			Weaknesses:    "High barrier to entry, niche market.",
			Opportunities: "Growth in AI and quantum computing sectors.",
			Threats:       "Competition from major tech giants.",
		},
		Marketing: blueprint.Marketing{
			Funnel:     "Content marketing (blogs, tutorials) -> Webinar -> Free Trial -> Subscription.",
			Ads:        "Targeted LinkedIn ads for developers and researchers.",
			LeadMagnet: "A free e-book: 'The Developer's Guide to Quantum Computing'.",
		},
		Status: blueprint.StatusDraft,
	}
}

// SetResult changes the blueprint returned on success
func (f *Fake) SetResult(bp blueprint.Blueprint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = bp.Clone()
}

// FailWith makes later calls fail with the given kind. An empty kind
// restores success.
func (f *Fake) FailWith(kind blueprint.GenerationErrorKind, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind == "" {
		f.err = nil
		return
	}
	f.err = &blueprint.GenerationError{Kind: kind, Reason: reason}
}

// SetDelay makes every call wait d before resolving
func (f *Fake) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Block holds every later call until Release
func (f *Fake) Block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate == nil {
		f.gate = make(chan struct{})
	}
}

// Release lets blocked calls proceed
func (f *Fake) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Started receives the idea of each call as it begins
func (f *Fake) Started() <-chan string {
	return f.started
}

// Calls returns how many times Generate was invoked
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Ideas returns the idea text of every call, in order
func (f *Fake) Ideas() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ideas...)
}

// Generate implements Generator
func (f *Fake) Generate(ctx context.Context, idea string) (*blueprint.Blueprint, error) {
	f.mu.Lock()
	f.calls++
	f.ideas = append(f.ideas, idea)
	gate, delay := f.gate, f.delay
	f.mu.Unlock()

	select {
	case f.started <- idea:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, contextFailure(ctx)
		}
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, contextFailure(ctx)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	bp := f.result.Clone()
	return &bp, nil
}

func contextFailure(ctx context.Context) error {
	kind := blueprint.GenerationNetwork
	if ctx.Err() == context.DeadlineExceeded {
		kind = blueprint.GenerationTimeout
	}
	return &blueprint.GenerationError{Kind: kind, Err: ctx.Err()}
}
