package store

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/monitoring"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstrumentedRecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	metrics := monitoring.NewMetrics()
	core, logs := observer.New(zapcore.DebugLevel)
	s := Instrument(NewMemoryStore(), "memory", metrics, zap.New(core))

	a, err := s.Create(ctx, fullDraft("Alpha"))
	require.NoError(t, err)
	_, err = s.Create(ctx, fullDraft("Beta"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BlueprintsTotal))

	_, err = s.Get(ctx, "bp_missing")
	require.True(t, blueprint.IsNotFound(err))

	_, err = s.Create(ctx, blueprint.Draft{Name: ""})
	require.Error(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BlueprintsTotal))

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	ops := metrics.StoreOps
	assert.Equal(t, 2.0, testutil.ToFloat64(ops.WithLabelValues("memory", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "create", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "delete", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "list", "success")))

	assert.Equal(t, 2, logs.FilterMessage("Blueprint created").Len())
	assert.Equal(t, 1, logs.FilterMessage("Blueprint deleted").Len())

	invalid := logs.FilterMessage("Create failed").All()
	require.Len(t, invalid, 1)
	assert.Equal(t, zapcore.DebugLevel, invalid[0].Level)
}

func TestInstrumentedWithoutMetrics(t *testing.T) {
	s := Instrument(NewMemoryStore(), "memory", nil, nil)

	_, err := s.Create(context.Background(), fullDraft("Alpha"))
	require.NoError(t, err)
	_, err = s.List(context.Background())
	assert.NoError(t, err)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "success", status(nil))
	assert.Equal(t, "not_found", status(&blueprint.StoreError{Op: "get", Err: blueprint.ErrNotFound}))
	assert.Equal(t, "invalid", status(blueprint.NewValidationError("name", "required")))
	assert.Equal(t, "error", status(&blueprint.StoreError{Op: "list", Kind: blueprint.StoreNetwork}))
}
