package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	_ "github.com/mattn/go-sqlite3"
)

const blueprintColumns = `id, name, pitch, value_proposition,
	swot_strengths, swot_weaknesses, swot_opportunities, swot_threats,
	marketing_funnel, marketing_ads, marketing_lead_magnet,
	description, status, updated_at`

// SQLiteStore persists blueprints in a SQLite database. List order is
// insertion order.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers and keeps :memory: a single database
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, opts: buildOptions(opts)}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS blueprints (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			pitch TEXT NOT NULL DEFAULT '',
			value_proposition TEXT NOT NULL DEFAULT '',
			swot_strengths TEXT NOT NULL DEFAULT '',
			swot_weaknesses TEXT NOT NULL DEFAULT '',
			swot_opportunities TEXT NOT NULL DEFAULT '',
			swot_threats TEXT NOT NULL DEFAULT '',
			marketing_funnel TEXT NOT NULL DEFAULT '',
			marketing_ads TEXT NOT NULL DEFAULT '',
			marketing_lead_magnet TEXT NOT NULL DEFAULT '',
			description TEXT,
			status TEXT NOT NULL CHECK (status IN ('draft', 'complete')),
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blueprints_name ON blueprints(name COLLATE NOCASE)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlueprint(row rowScanner) (blueprint.Blueprint, error) {
	var (
		bp      blueprint.Blueprint
		desc    sql.NullString
		status  string
		updated string
	)
	err := row.Scan(
		&bp.ID, &bp.Name, &bp.Pitch, &bp.ValueProposition,
		&bp.SWOT.Strengths, &bp.SWOT.Weaknesses, &bp.SWOT.Opportunities, &bp.SWOT.Threats,
		&bp.Marketing.Funnel, &bp.Marketing.Ads, &bp.Marketing.LeadMagnet,
		&desc, &status, &updated,
	)
	if err != nil {
		return bp, err
	}
	if desc.Valid {
		d := desc.String
		bp.Description = &d
	}
	bp.Status = blueprint.Status(status)
	bp.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return bp, fmt.Errorf("parsing updated_at of %s: %w", bp.ID, err)
	}
	return bp, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]blueprint.Blueprint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+blueprintColumns+` FROM blueprints ORDER BY seq`)
	if err != nil {
		return nil, s.fail("list", err)
	}
	defer rows.Close()

	out := []blueprint.Blueprint{}
	for rows.Next() {
		bp, err := scanBlueprint(rows)
		if err != nil {
			return nil, s.fail("list", err)
		}
		out = append(out, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*blueprint.Blueprint, error) {
	bp, err := s.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &bp, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) get(ctx context.Context, q queryer, id string) (blueprint.Blueprint, error) {
	row := q.QueryRowContext(ctx, `SELECT `+blueprintColumns+` FROM blueprints WHERE id = ?`, id)
	bp, err := scanBlueprint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bp, fmt.Errorf("get %s: %w", id, blueprint.ErrNotFound)
	}
	if err != nil {
		return bp, s.fail("get", err)
	}
	return bp, nil
}

func (s *SQLiteStore) Create(ctx context.Context, draft blueprint.Draft) (*blueprint.Blueprint, error) {
	bp, err := s.opts.materialize(draft)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO blueprints (`+blueprintColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, values(bp)...)
	if err != nil {
		return nil, s.fail("create", err)
	}
	return &bp, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, patch blueprint.Patch) (*blueprint.Blueprint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.fail("update", err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	updated, err := patch.Apply(current, s.opts.now())
	if err != nil {
		return nil, err
	}

	v := values(updated)
	_, err = tx.ExecContext(ctx, `UPDATE blueprints SET
		name = ?, pitch = ?, value_proposition = ?,
		swot_strengths = ?, swot_weaknesses = ?, swot_opportunities = ?, swot_threats = ?,
		marketing_funnel = ?, marketing_ads = ?, marketing_lead_magnet = ?,
		description = ?, status = ?, updated_at = ?
		WHERE id = ?`, append(v[1:], id)...)
	if err != nil {
		return nil, s.fail("update", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.fail("update", err)
	}
	return &updated, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blueprints WHERE id = ?`, id); err != nil {
		return s.fail("delete", err)
	}
	return nil
}

// Count implements Counter
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM blueprints`).Scan(&n); err != nil {
		return 0, s.fail("count", err)
	}
	return n, nil
}

func (s *SQLiteStore) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &blueprint.StoreError{Op: op, Kind: blueprint.StoreServer, Err: err}
}

func values(bp blueprint.Blueprint) []any {
	var desc sql.NullString
	if bp.Description != nil {
		desc = sql.NullString{String: *bp.Description, Valid: true}
	}
	return []any{
		bp.ID, bp.Name, bp.Pitch, bp.ValueProposition,
		bp.SWOT.Strengths, bp.SWOT.Weaknesses, bp.SWOT.Opportunities, bp.SWOT.Threats,
		bp.Marketing.Funnel, bp.Marketing.Ads, bp.Marketing.LeadMagnet,
		desc, string(bp.Status), bp.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
