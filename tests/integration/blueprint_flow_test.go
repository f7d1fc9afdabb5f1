//go:build integration
// +build integration

package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/collection"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/submission"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AutoThinker/backend/tests/helpers/testutil"
)

func TestGenerateSaveAndManage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stub := startGenerationStub(t)
	remote := newStoreClient(t, startStoreService(t, nil))

	t.Run("generate and save", func(t *testing.T) {
		sub := submission.New(stub.client())
		defer sub.Close()

		require.NoError(t, sub.Submit(ctx, "  A platform for quantum developers  "))
		snap := sub.Snapshot()
		require.Equal(t, submission.StatePresenting, snap.State)
		assert.Equal(t, "QuantumLeap AI", snap.Blueprint.Name)
		assert.Empty(t, snap.Blueprint.ID)

		saved, err := sub.Save(ctx, remote)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, blueprint.StatusDraft, saved.Status)
		assert.False(t, saved.UpdatedAt.IsZero())
	})

	t.Run("collection over the wire", func(t *testing.T) {
		coll := collection.New(remote)
		defer coll.Close()

		_, err := coll.Create(ctx, testutil.CreateTestDraft(t, "Alpha Analytics"))
		require.NoError(t, err)
		beta, err := coll.Create(ctx, testutil.CreateTestDraft(t, "Beta Bakery"))
		require.NoError(t, err)

		require.NoError(t, coll.Load(ctx))
		names := func() []string {
			var out []string
			for _, bp := range coll.Visible() {
				out = append(out, bp.Name)
			}
			return out
		}
		assert.Equal(t, []string{"QuantumLeap AI", "Alpha Analytics", "Beta Bakery"}, names())

		coll.SetSearch("BAKERY")
		assert.Equal(t, []string{"Beta Bakery"}, names())
		coll.SetSearch("")

		status := blueprint.StatusComplete
		updated, err := coll.Update(ctx, beta.ID, blueprint.Patch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, blueprint.StatusComplete, updated.Status)
		assert.False(t, updated.UpdatedAt.Before(beta.UpdatedAt))

		swot := blueprint.SWOT{Strengths: "only one"}
		_, err = coll.Update(ctx, beta.ID, blueprint.Patch{SWOT: &swot})
		testutil.AssertValidationError(t, err, "swot")

		require.NoError(t, coll.Delete(ctx, beta.ID))
		require.NoError(t, coll.Delete(ctx, beta.ID))
		assert.Equal(t, []string{"QuantumLeap AI", "Alpha Analytics"}, names())

		_, err = remote.Get(ctx, beta.ID)
		assert.True(t, blueprint.IsNotFound(err))
	})

	t.Run("fresh controller sees the same store", func(t *testing.T) {
		coll := collection.New(remote)
		defer coll.Close()

		require.NoError(t, coll.Refresh(ctx))
		snap := coll.Snapshot()
		assert.True(t, snap.Loaded)
		assert.Len(t, snap.Items, 2)
	})
}

func TestDeclinedDeleteLeavesRemoteIntact(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	remote := newStoreClient(t, startStoreService(t, nil))

	created, err := remote.Create(ctx, testutil.CreateTestDraft(t, "Keep Me"))
	require.NoError(t, err)

	var asked []string
	coll := collection.New(remote, collection.WithConfirmer(collection.ConfirmFunc(
		func(_ context.Context, bp blueprint.Blueprint) (bool, error) {
			asked = append(asked, bp.Name)
			return false, nil
		})))
	defer coll.Close()

	require.NoError(t, coll.Load(ctx))
	require.NoError(t, coll.Delete(ctx, created.ID))

	assert.Equal(t, []string{"Keep Me"}, asked)
	_, err = remote.Get(ctx, created.ID)
	assert.NoError(t, err)
}

func TestSQLiteServiceSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blueprints.db")
	useSQLite := func(cfg *config.Config) {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.Path = path
	}

	t.Run("write", func(t *testing.T) {
		remote := newStoreClient(t, startStoreService(t, useSQLite))
		_, err := remote.Create(ctx, testutil.CreateTestDraft(t, "Durable Goods"))
		require.NoError(t, err)
	})

	t.Run("read after restart", func(t *testing.T) {
		remote := newStoreClient(t, startStoreService(t, useSQLite))
		items, err := remote.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Durable Goods", items[0].Name)
		assert.True(t, items[0].SWOT.Complete())
	})
}
