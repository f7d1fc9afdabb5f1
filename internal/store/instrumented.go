package store

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// Instrumented records metrics and logs for every operation of a Store
type Instrumented struct {
	next    Store
	backend string
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// Instrument wraps s. metrics may be nil.
func Instrument(s Store, backend string, metrics *monitoring.Metrics, logger *zap.Logger) *Instrumented {
	return &Instrumented{
		next:    s,
		backend: backend,
		metrics: metrics,
		logger:  logging.OrNop(logger).Named("store").With(zap.String("backend", backend)),
	}
}

var (
	_ Store = (*Instrumented)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*HTTPStore)(nil)
)

func (i *Instrumented) List(ctx context.Context) ([]blueprint.Blueprint, error) {
	timer := monitoring.NewTimer(i.metrics, i.backend, "list")
	items, err := i.next.List(ctx)
	timer.Stop(status(err))
	if err != nil {
		i.logger.Error("List failed", zap.Error(err))
		return nil, err
	}
	if i.metrics != nil {
		i.metrics.SetBlueprints(len(items))
	}
	return items, nil
}

func (i *Instrumented) Get(ctx context.Context, id string) (*blueprint.Blueprint, error) {
	timer := monitoring.NewTimer(i.metrics, i.backend, "get")
	bp, err := i.next.Get(ctx, id)
	timer.Stop(status(err))
	return bp, err
}

func (i *Instrumented) Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	timer := monitoring.NewTimer(i.metrics, i.backend, "create")
	bp, err := i.next.Create(ctx, draft)
	timer.Stop(status(err))
	if err != nil {
		i.logFailure("Create failed", "", err)
		return nil, err
	}
	i.logger.Info("Blueprint created", zap.String("id", bp.ID), zap.String("name", bp.Name))
	i.refreshCount(ctx)
	return bp, nil
}

func (i *Instrumented) Update(ctx context.Context, id string, patch blueprint.Patch) (*blueprint.Blueprint, error) {
	timer := monitoring.NewTimer(i.metrics, i.backend, "update")
	bp, err := i.next.Update(ctx, id, patch)
	timer.Stop(status(err))
	if err != nil {
		i.logFailure("Update failed", id, err)
		return nil, err
	}
	i.logger.Info("Blueprint updated", zap.String("id", id), zap.Time("updated_at", bp.UpdatedAt))
	return bp, nil
}

func (i *Instrumented) Delete(ctx context.Context, id string) error {
	timer := monitoring.NewTimer(i.metrics, i.backend, "delete")
	err := i.next.Delete(ctx, id)
	timer.Stop(status(err))
	if err != nil {
		i.logFailure("Delete failed", id, err)
		return err
	}
	i.logger.Info("Blueprint deleted", zap.String("id", id))
	i.refreshCount(ctx)
	return nil
}

func (i *Instrumented) refreshCount(ctx context.Context) {
	c, ok := i.next.(Counter)
	if !ok || i.metrics == nil {
		return
	}
	if n, err := c.Count(ctx); err == nil {
		i.metrics.SetBlueprints(n)
	}
}

// Client mistakes are logged at debug level, store faults at error
func (i *Instrumented) logFailure(msg, id string, err error) {
	var verr *blueprint.ValidationError
	if errors.As(err, &verr) || blueprint.IsNotFound(err) {
		i.logger.Debug(msg, zap.String("id", id), zap.Error(err))
		return
	}
	i.logger.Error(msg, zap.String("id", id), zap.Error(err))
}

func status(err error) string {
	var verr *blueprint.ValidationError
	switch {
	case err == nil:
		return "success"
	case blueprint.IsNotFound(err):
		return "not_found"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}
