// Package testutil provides testing utilities and helpers for backend tests.
package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/stretchr/testify/mock"
)

// FixedTime is the UpdatedAt of fixtures built by CreateTestBlueprint.
var FixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// MockStore is a mock implementation of store.Store for testing.
type MockStore struct {
	mock.Mock
}

// List mocks the List method.
func (m *MockStore) List(ctx context.Context) ([]blueprint.Blueprint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.Blueprint), args.Error(1)
}

// Get mocks the Get method.
func (m *MockStore) Get(ctx context.Context, id string) (*blueprint.Blueprint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blueprint.Blueprint), args.Error(1)
}

// Create mocks the Create method.
func (m *MockStore) Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blueprint.Blueprint), args.Error(1)
}

// Update mocks the Update method.
func (m *MockStore) Update(ctx context.Context, id string, patch blueprint.Patch) (*blueprint.Blueprint, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blueprint.Blueprint), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGenerator is a mock implementation of generation.Generator for testing.
type MockGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockGenerator) Generate(ctx context.Context, idea string) (*blueprint.Blueprint, error) {
	args := m.Called(ctx, idea)
	if fn, ok := args.Get(0).(func(context.Context, string) *blueprint.Blueprint); ok {
		return fn(ctx, idea), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blueprint.Blueprint), args.Error(1)
}

// NewMockStore creates a mock store that lists items and accepts deletes.
func NewMockStore(t *testing.T, items ...blueprint.Blueprint) *MockStore {
	t.Helper()
	m := new(MockStore)

	// Default behavior: list returns the fixtures
	m.On("List", mock.Anything).
		Return(append([]blueprint.Blueprint{}, items...), nil).
		Maybe()

	// Default behavior: delete succeeds
	m.On("Delete", mock.Anything, mock.Anything).
		Return(nil).
		Maybe()

	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// NewMockGenerator creates a mock generator that returns bp for any idea.
func NewMockGenerator(t *testing.T, bp blueprint.Blueprint) *MockGenerator {
	t.Helper()
	m := new(MockGenerator)

	m.On("Generate", mock.Anything, mock.Anything).
		Return(func(context.Context, string) *blueprint.Blueprint {
			c := bp.Clone()
			return &c
		}, nil).
		Maybe()

	return m
}

// CreateTestBlueprint creates a complete stored blueprint.
func CreateTestBlueprint(t *testing.T, id, name string) blueprint.Blueprint {
	t.Helper()

	return blueprint.Blueprint{
		ID:               id,
		Name:             name,
		Pitch:            name + " helps small teams ship faster.",
		ValueProposition: "Less busywork for " + name + " customers.",
		SWOT: blueprint.SWOT{
			Strengths:     "Experienced founders.",
			Weaknesses:    "Small marketing budget.",
			Opportunities: "Underserved niche.",
			Threats:       "Incumbent platforms.",
		},
		Marketing: blueprint.Marketing{
			Funnel:     "Blog -> Newsletter -> Trial.",
			Ads:        "Search ads on long-tail keywords.",
			LeadMagnet: "Free planning template.",
		},
		Status:    blueprint.StatusDraft,
		UpdatedAt: FixedTime,
	}
}

// CreateTestDraft creates a complete create payload.
func CreateTestDraft(t *testing.T, name string) blueprint.Draft {
	t.Helper()
	return CreateTestBlueprint(t, "", name).ToDraft()
}

// AssertValidationError is a helper to assert err is a validation error on field.
func AssertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *blueprint.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if verr.Field != field {
		t.Fatalf("Validation field: expected %q, got %q", field, verr.Field)
	}
}

// AssertGenerationError is a helper to assert err is a generation error of kind.
func AssertGenerationError(t *testing.T, err error, kind blueprint.GenerationErrorKind) {
	t.Helper()
	var gerr *blueprint.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("Expected generation error, got %v", err)
	}
	if gerr.Kind != kind {
		t.Fatalf("Generation kind: expected %s, got %s", kind, gerr.Kind)
	}
}

// AssertStoreError is a helper to assert err is a store error of kind.
func AssertStoreError(t *testing.T, err error, kind blueprint.StoreErrorKind) {
	t.Helper()
	var serr *blueprint.StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected store error, got %v", err)
	}
	if serr.Kind != kind {
		t.Fatalf("Store kind: expected %s, got %s", kind, serr.Kind)
	}
}
