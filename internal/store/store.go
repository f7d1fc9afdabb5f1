package store

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/id"
)

// Store is the remote blueprint store contract.
//
// List returns blueprints in store order. Get and Update report unknown ids
// with blueprint.ErrNotFound. Delete of an unknown id succeeds. Invalid
// drafts and patches are *blueprint.ValidationError; transport and server
// failures are *blueprint.StoreError.
type Store interface {
	List(ctx context.Context) ([]blueprint.Blueprint, error)
	Get(ctx context.Context, id string) (*blueprint.Blueprint, error)
	Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error)
	Update(ctx context.Context, id string, patch blueprint.Patch) (*blueprint.Blueprint, error)
	Delete(ctx context.Context, id string) error
}

// Counter is implemented by stores that can count without listing
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Option configures the local stores
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock sets the time source used for updatedAt
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc sets the id generator used by Create
func WithIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newID: id.NewBlueprintID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// materialize validates a draft and assigns store-owned fields
func (o options) materialize(draft blueprint.Draft) (blueprint.Blueprint, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return blueprint.Blueprint{}, err
	}
	return draft.Build(o.newID(), o.now()), nil
}

func cloneAll(in []blueprint.Blueprint) []blueprint.Blueprint {
	out := make([]blueprint.Blueprint, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
