package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
)

// MemoryStore keeps blueprints in process, in creation order.
type MemoryStore struct {
	opts options

	mu    sync.RWMutex
	items []blueprint.Blueprint
	index map[string]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:  buildOptions(opts),
		index: make(map[string]int),
	}
}

// Seed inserts blueprints as-is, keeping their ids and timestamps.
// Existing entries with the same id are replaced in place.
func (m *MemoryStore) Seed(items ...blueprint.Blueprint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bp := range items {
		if i, ok := m.index[bp.ID]; ok {
			m.items[i] = bp.Clone()
			continue
		}
		m.index[bp.ID] = len(m.items)
		m.items = append(m.items, bp.Clone())
	}
}

func (m *MemoryStore) List(ctx context.Context) ([]blueprint.Blueprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.items), nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*blueprint.Blueprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, blueprint.ErrNotFound)
	}
	bp := m.items[i].Clone()
	return &bp, nil
}

func (m *MemoryStore) Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bp, err := m.opts.materialize(draft)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.index[bp.ID]; exists {
		return nil, &blueprint.StoreError{Op: "create", Kind: blueprint.StoreServer, Err: fmt.Errorf("duplicate id %s", bp.ID)}
	}
	m.index[bp.ID] = len(m.items)
	m.items = append(m.items, bp)

	out := bp.Clone()
	return &out, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, patch blueprint.Patch) (*blueprint.Blueprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, blueprint.ErrNotFound)
	}
	updated, err := patch.Apply(m.items[i], m.opts.now())
	if err != nil {
		return nil, err
	}
	m.items[i] = updated

	out := updated.Clone()
	return &out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return nil
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.items); j++ {
		m.index[m.items[j].ID] = j
	}
	return nil
}

// Count implements Counter
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}
