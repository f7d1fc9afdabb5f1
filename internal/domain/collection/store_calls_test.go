package collection

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/tests/helpers/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRepeatedDeleteCallsStoreOnce(t *testing.T) {
	ctx := context.Background()
	s := new(testutil.MockStore)
	s.On("List", mock.Anything).Return([]blueprint.Blueprint{
		testutil.CreateTestBlueprint(t, "1", "Alpha"),
		testutil.CreateTestBlueprint(t, "2", "Beta"),
	}, nil).Once()
	s.On("Delete", mock.Anything, "2").Return(nil).Once()

	c := newController(t, s)
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Delete(ctx, "2"))
	require.NoError(t, c.Delete(ctx, "2"))

	assert.Equal(t, []string{"1"}, ids(c.Snapshot().Items))
	s.AssertExpectations(t)
	s.AssertNumberOfCalls(t, "Delete", 1)
}

func TestLoadStoreErrorIsReported(t *testing.T) {
	s := new(testutil.MockStore)
	s.On("List", mock.Anything).
		Return(nil, &blueprint.StoreError{Op: "list", Kind: blueprint.StoreNetwork}).
		Once()

	reports := &reportLog{}
	c := newController(t, s, WithReporter(reports))

	err := c.Load(context.Background())
	testutil.AssertStoreError(t, err, blueprint.StoreNetwork)
	assert.Equal(t, []string{OpLoad}, reports.all())
	assert.False(t, c.Snapshot().Loaded)
	s.AssertExpectations(t)
}

func TestUpdateOfRemovedBlueprint(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewMockStore(t, testutil.CreateTestBlueprint(t, "1", "Alpha"))
	name := "Renamed"
	s.On("Update", mock.Anything, "1", blueprint.Patch{Name: &name}).
		Return(nil, &blueprint.StoreError{Op: "update", Kind: blueprint.StoreServer, Err: blueprint.ErrNotFound}).
		Once()

	c := newController(t, s)
	require.NoError(t, c.Load(ctx))

	_, err := c.Update(ctx, "1", blueprint.Patch{Name: &name})
	assert.True(t, blueprint.IsNotFound(err))

	snap := c.Snapshot()
	assert.Equal(t, "Alpha", snap.Items[0].Name)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, OpUpdate, snap.Notice.Op)
}

func TestCreateAppendsStoredCopy(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewMockStore(t, testutil.CreateTestBlueprint(t, "1", "Alpha"))
	draft := testutil.CreateTestDraft(t, "Gamma")
	created := draft.Build("3", testutil.FixedTime)
	s.On("Create", mock.Anything, draft).Return(&created, nil).Once()

	c := newController(t, s)
	require.NoError(t, c.Load(ctx))

	got, err := c.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "3", got.ID)
	assert.Equal(t, []string{"1", "3"}, ids(c.Snapshot().Items))
}
