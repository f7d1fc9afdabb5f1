package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/observe"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/store"
	"go.uber.org/zap"
)

// Operation names used in notices and reports
const (
	OpLoad    = "load"
	OpRefresh = "refresh"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpConfirm = "confirm"
)

// ErrClosed is returned by operations on a closed controller
var ErrClosed = errors.New("collection controller closed")

// Notice is the last user-visible failure
type Notice struct {
	Op      string
	Message string
	Err     error
}

// Snapshot is an immutable view of the controller state
type Snapshot struct {
	// Items is the full collection in store order
	Items []blueprint.Blueprint
	// Visible is Items filtered by SearchTerm
	Visible    []blueprint.Blueprint
	SearchTerm string
	Loading    bool
	Refreshing bool
	Loaded     bool
	Notice     *Notice
	Version    uint64
}

type writeKind int

const (
	writeCreate writeKind = iota
	writeUpdate
	writeDelete
)

// write is a confirmed mutation kept for replay over older list responses
type write struct {
	seq  uint64
	kind writeKind
	id   string
	bp   blueprint.Blueprint
}

// Option configures a Controller
type Option func(*Controller)

// WithConfirmer sets the delete confirmation collaborator
func WithConfirmer(c Confirmer) Option {
	return func(ctrl *Controller) { ctrl.confirmer = c }
}

// WithReporter sets the error reporter
func WithReporter(r ErrorReporter) Option {
	return func(ctrl *Controller) { ctrl.reporter = r }
}

// WithLogger sets the controller logger
func WithLogger(logger *zap.Logger) Option {
	return func(ctrl *Controller) { ctrl.logger = logger }
}

// Controller owns the local view of the saved blueprint collection
type Controller struct {
	store     store.Store
	confirmer Confirmer
	reporter  ErrorReporter
	logger    *zap.Logger
	notifier  observe.Notifier[Snapshot]

	mu          sync.Mutex
	items       []blueprint.Blueprint
	search      string
	loading     int
	refreshing  int
	loaded      bool
	notice      *Notice
	seq         uint64
	appliedList uint64
	writes      []write
	tasks       map[uint64]context.CancelFunc
	version     uint64
	closed      bool
}

// New creates a controller over s. Without a Confirmer every delete is
// approved.
func New(s store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:     s,
		confirmer: AlwaysConfirm,
		reporter:  nopReporter{},
		items:     []blueprint.Blueprint{},
		tasks:     make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).Named("collection")
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

// Visible returns the collection filtered by the search term
func (c *Controller) Visible() []blueprint.Blueprint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filter(c.items, c.search)
}

// Load fetches the collection from the store. On failure the current
// collection is kept and the error is reported and returned.
func (c *Controller) Load(ctx context.Context) error {
	return c.list(ctx, OpLoad)
}

// Refresh is Load tracked under the refreshing flag
func (c *Controller) Refresh(ctx context.Context) error {
	return c.list(ctx, OpRefresh)
}

// SetSearch sets the case-insensitive name filter. It never changes the
// collection itself.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	if c.closed || c.search == term {
		c.mu.Unlock()
		return
	}
	c.search = term
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.notifier.Publish(snap)
}

// Get fetches one blueprint from the store without changing the collection
func (c *Controller) Get(ctx context.Context, id string) (*blueprint.Blueprint, error) {
	taskCtx, seq, err := c.startTask(ctx)
	if err != nil {
		return nil, err
	}
	bp, err := c.store.Get(taskCtx, id)

	c.mu.Lock()
	closed := c.finishTaskLocked(seq)
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	return bp, err
}

// Create stores a new blueprint and appends it to the collection
func (c *Controller) Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	taskCtx, seq, err := c.startTask(ctx)
	if err != nil {
		return nil, err
	}
	created, err := c.store.Create(taskCtx, draft)
	if err != nil {
		return nil, c.fail(seq, OpCreate, "Could not create the blueprint.", err)
	}

	c.mu.Lock()
	if c.finishTaskLocked(seq) {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.confirmLocked(write{kind: writeCreate, id: created.ID, bp: created.Clone()})
	c.notice = nil
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.logger.Info("Blueprint created", zap.String("id", created.ID))
	c.notifier.Publish(snap)
	return created, nil
}

// Update patches a stored blueprint and replaces it in the collection
func (c *Controller) Update(ctx context.Context, id string, patch blueprint.Patch) (*blueprint.Blueprint, error) {
	taskCtx, seq, err := c.startTask(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := c.store.Update(taskCtx, id, patch)
	if err != nil {
		return nil, c.fail(seq, OpUpdate, "Could not save your changes.", err)
	}

	c.mu.Lock()
	if c.finishTaskLocked(seq) {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.confirmLocked(write{kind: writeUpdate, id: id, bp: updated.Clone()})
	c.notice = nil
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.logger.Info("Blueprint updated", zap.String("id", id))
	c.notifier.Publish(snap)
	return updated, nil
}

// Delete removes id from the store and the collection after the Confirmer
// approves. An id missing from the collection is a no-op, as is a declined
// confirmation.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	i := indexOf(c.items, id)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	target := c.items[i].Clone()
	c.mu.Unlock()

	ok, err := c.confirmer.Confirm(ctx, target)
	if err != nil {
		c.reporter.Report(OpConfirm, err)
		return fmt.Errorf("confirming delete of %s: %w", id, err)
	}
	if !ok {
		c.logger.Debug("Delete declined", zap.String("id", id))
		return nil
	}

	taskCtx, seq, err := c.startTask(ctx)
	if err != nil {
		return err
	}
	err = c.store.Delete(taskCtx, id)
	if err != nil && !blueprint.IsNotFound(err) {
		return c.fail(seq, OpDelete, fmt.Sprintf("Could not delete %q.", target.Name), err)
	}

	c.mu.Lock()
	if c.finishTaskLocked(seq) {
		c.mu.Unlock()
		return ErrClosed
	}
	c.confirmLocked(write{kind: writeDelete, id: id})
	c.notice = nil
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.logger.Info("Blueprint deleted", zap.String("id", id))
	c.notifier.Publish(snap)
	return nil
}

// Close cancels outstanding tasks and drops all subscribers. Results
// arriving afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for seq, cancel := range c.tasks {
		cancel()
		delete(c.tasks, seq)
	}
	c.mu.Unlock()

	c.notifier.Clear()
}

func (c *Controller) list(ctx context.Context, op string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	seq, taskCtx := c.registerLocked(ctx)
	c.setListFlagLocked(op, 1)
	started := c.bumpLocked()
	c.mu.Unlock()

	c.notifier.Publish(started)
	items, err := c.store.List(taskCtx)

	c.mu.Lock()
	if c.finishTaskLocked(seq) {
		c.mu.Unlock()
		return ErrClosed
	}
	c.setListFlagLocked(op, -1)

	if err != nil {
		report := !isContextErr(err)
		if report {
			c.notice = &Notice{Op: op, Message: "Could not load blueprints. Showing the last loaded list.", Err: err}
		}
		snap := c.bumpLocked()
		c.mu.Unlock()

		c.logger.Warn("Listing blueprints failed", zap.String("op", op), zap.Uint64("seq", seq), zap.Error(err))
		if report {
			c.reporter.Report(op, err)
		}
		c.notifier.Publish(snap)
		return err
	}

	if applied := c.appliedList; seq < applied {
		snap := c.bumpLocked()
		c.mu.Unlock()

		c.logger.Debug("Discarding stale list response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", applied))
		c.notifier.Publish(snap)
		return nil
	}

	c.items = c.replayLocked(items, seq)
	c.appliedList = seq
	c.pruneLocked()
	c.loaded = true
	c.notice = nil
	snap := c.bumpLocked()
	c.mu.Unlock()

	c.logger.Debug("Applied list response", zap.Uint64("seq", seq), zap.Int("count", len(snap.Items)))
	c.notifier.Publish(snap)
	return nil
}

// fail finishes a failed write task, records the notice and reports it
func (c *Controller) fail(seq uint64, op, message string, err error) error {
	c.mu.Lock()
	if c.finishTaskLocked(seq) {
		c.mu.Unlock()
		return ErrClosed
	}
	if isContextErr(err) {
		c.mu.Unlock()
		return err
	}
	c.notice = &Notice{Op: op, Message: message, Err: err}
	snap := c.bumpLocked()
	c.mu.Unlock()

	var verr *blueprint.ValidationError
	if errors.As(err, &verr) {
		c.logger.Debug("Write rejected", zap.String("op", op), zap.Error(err))
	} else {
		c.logger.Warn("Write failed", zap.String("op", op), zap.Error(err))
	}
	c.reporter.Report(op, err)
	c.notifier.Publish(snap)
	return err
}

func (c *Controller) startTask(ctx context.Context) (context.Context, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, 0, ErrClosed
	}
	seq, taskCtx := c.registerLocked(ctx)
	return taskCtx, seq, nil
}

func (c *Controller) registerLocked(ctx context.Context) (uint64, context.Context) {
	c.seq++
	taskCtx, cancel := context.WithCancel(ctx)
	c.tasks[c.seq] = cancel
	return c.seq, taskCtx
}

// finishTaskLocked releases the task and reports whether the controller
// was closed while it ran.
func (c *Controller) finishTaskLocked(seq uint64) bool {
	if cancel, ok := c.tasks[seq]; ok {
		cancel()
		delete(c.tasks, seq)
	}
	return c.closed
}

// confirmLocked applies a confirmed write and records it for replay
func (c *Controller) confirmLocked(w write) {
	c.seq++
	w.seq = c.seq
	c.items = apply(c.items, w)
	c.writes = append(c.writes, w)
}

// replayLocked applies every write confirmed after seq on top of items
func (c *Controller) replayLocked(items []blueprint.Blueprint, seq uint64) []blueprint.Blueprint {
	out := make([]blueprint.Blueprint, 0, len(items))
	for _, bp := range items {
		out = append(out, bp.Clone())
	}
	for _, w := range c.writes {
		if w.seq > seq {
			out = apply(out, w)
		}
	}
	return out
}

// pruneLocked drops writes that every future applied list already reflects
func (c *Controller) pruneLocked() {
	kept := c.writes[:0]
	for _, w := range c.writes {
		if w.seq > c.appliedList {
			kept = append(kept, w)
		}
	}
	c.writes = kept
}

func (c *Controller) setListFlagLocked(op string, delta int) {
	if op == OpRefresh {
		c.refreshing += delta
	} else {
		c.loading += delta
	}
}

func snapshotVersion(s Snapshot) uint64 { return s.Version }

func (c *Controller) bumpLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]blueprint.Blueprint, len(c.items))
	for i := range c.items {
		items[i] = c.items[i].Clone()
	}
	s := Snapshot{
		Items:      items,
		Visible:    filter(c.items, c.search),
		SearchTerm: c.search,
		Loading:    c.loading > 0,
		Refreshing: c.refreshing > 0,
		Loaded:     c.loaded,
		Version:    c.version,
	}
	if c.notice != nil {
		n := *c.notice
		s.Notice = &n
	}
	return s
}

// apply returns items with w applied. Creates upsert, updates replace in
// place, deletes remove.
func apply(items []blueprint.Blueprint, w write) []blueprint.Blueprint {
	i := indexOf(items, w.id)
	switch w.kind {
	case writeDelete:
		if i >= 0 {
			items = append(items[:i:i], items[i+1:]...)
		}
	case writeUpdate:
		if i >= 0 {
			items[i] = w.bp.Clone()
		}
	case writeCreate:
		if i >= 0 {
			items[i] = w.bp.Clone()
		} else {
			items = append(items, w.bp.Clone())
		}
	}
	return items
}

// filter matches term case-insensitively against names, keeping order
func filter(items []blueprint.Blueprint, term string) []blueprint.Blueprint {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]blueprint.Blueprint, 0, len(items))
	for _, bp := range items {
		if needle == "" || strings.Contains(strings.ToLower(bp.Name), needle) {
			out = append(out, bp.Clone())
		}
	}
	return out
}

func indexOf(items []blueprint.Blueprint, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
