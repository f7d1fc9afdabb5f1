package submission

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/tests/helpers/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitSendsTrimmedIdeaOnce(t *testing.T) {
	gen := new(testutil.MockGenerator)
	result := testutil.CreateTestBlueprint(t, "", "Bean Box")
	gen.On("Generate", mock.Anything, "Coffee subscriptions").Return(&result, nil).Once()

	c := New(gen)
	defer c.Close()

	require.NoError(t, c.Submit(context.Background(), "  Coffee subscriptions \n"))
	snap := c.Snapshot()
	assert.Equal(t, StatePresenting, snap.State)
	assert.Equal(t, "Bean Box", snap.Blueprint.Name)
	gen.AssertExpectations(t)
}

func TestSubmitWrapsPlainGeneratorErrors(t *testing.T) {
	gen := new(testutil.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded).Once()

	c := New(gen)
	defer c.Close()

	err := c.Submit(context.Background(), "Anything")
	testutil.AssertGenerationError(t, err, blueprint.GenerationTimeout)
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Nil(t, c.Snapshot().Blueprint)
}

func TestSubmitBlankNeverCallsGenerator(t *testing.T) {
	gen := testutil.NewMockGenerator(t, testutil.CreateTestBlueprint(t, "", "Unused"))

	c := New(gen)
	defer c.Close()

	err := c.Submit(context.Background(), " \t ")
	require.Error(t, err)
	assert.Equal(t, blueprint.EmptyIdeaMessage, c.Snapshot().Error)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSaveUsesMockStore(t *testing.T) {
	ctx := context.Background()
	gen := testutil.NewMockGenerator(t, testutil.CreateTestBlueprint(t, "", "Bean Box"))
	s := testutil.NewMockStore(t)
	saved := testutil.CreateTestBlueprint(t, "bp_1", "Bean Box")
	s.On("Create", mock.Anything, mock.MatchedBy(func(d blueprint.Draft) bool {
		return d.Name == "Bean Box" && d.SWOT.Complete()
	})).Return(&saved, nil).Once()

	c := New(gen)
	defer c.Close()

	require.NoError(t, c.Submit(ctx, "Coffee"))
	got, err := c.Save(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "bp_1", got.ID)
	assert.Equal(t, "bp_1", c.Snapshot().Blueprint.ID)
}

func TestResetKeepsGuardUntilGeneratorReturns(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	result := testutil.CreateTestBlueprint(t, "", "Bean Box")

	gen := new(testutil.MockGenerator)
	// Ignores cancellation, like a transport that only notices at the next read
	gen.On("Generate", mock.Anything, mock.Anything).Return(func(context.Context, string) *blueprint.Blueprint {
		started <- struct{}{}
		<-release
		bp := result.Clone()
		return &bp
	}, nil)

	c := New(gen)
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "first") }()
	<-started

	c.Reset()
	require.NoError(t, c.Submit(context.Background(), "second"))
	assert.Equal(t, StateIdle, c.Snapshot().State)
	gen.AssertNumberOfCalls(t, "Generate", 1)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Nil(t, c.Snapshot().Blueprint)

	require.NoError(t, c.Submit(context.Background(), "third"))
	assert.Equal(t, StatePresenting, c.Snapshot().State)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}
