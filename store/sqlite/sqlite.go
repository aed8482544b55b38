/*
Package sqlite provides a SQLite-backed implementation of the workload
Source and SnapshotStore interfaces.

PURPOSE:
  Keeps school-year definitions and employment inputs as JSON documents
  (the factory schema) and rendered workload reports as snapshots. Reads
  parse the documents through the factory, so the engine always receives
  fully resolved domain objects.

KEY TABLES:
  school_years:        School-year definitions (versioned)
  employments:         One input document per teacher and school year
  workload_snapshots:  Append-only rendered reports

IDENTITY:
  Payroll types are compared by pointer. Every read parses the school year
  once and resolves all employments of that read against the same catalog.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

USAGE:
  store, err := sqlite.New("./data/workload.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ws, err := factory.BuildWorkloads(ctx, store, "2025", factory.BuildOptions{})

SEE ALSO:
  - workload/store.go: Interface definitions
  - workload/store/memory.go: In-memory implementation for testing
  - factory/schoolyear.go: The JSON schema
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/workload-engine/factory"
	"github.com/warp/workload-engine/workload"
)

// Store implements the workload storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.Factory
}

// snapshotTimeLayout is fixed width so created_at sorts as text.
const snapshotTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	_ workload.Source        = (*Store)(nil)
	_ workload.SnapshotStore = (*Store)(nil)
)

// SchoolYearRecord is a stored school-year definition.
type SchoolYearRecord struct {
	ID              string
	Name            string
	CalculationMode int
	ConfigJSON      string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	store := Open(db)
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Open wraps an existing connection without migrating it.
func Open(db *sql.DB) *Store {
	return &Store{db: db, factory: factory.New()}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS school_years (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		calculation_mode INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employments (
		id TEXT PRIMARY KEY,
		school_year_id TEXT NOT NULL REFERENCES school_years(id) ON DELETE CASCADE,
		teacher_id TEXT NOT NULL,
		input_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_employments_year_teacher
		ON employments(school_year_id, teacher_id);

	-- Rendered reports (append-only)
	CREATE TABLE IF NOT EXISTS workload_snapshots (
		id TEXT PRIMARY KEY,
		school_year_id TEXT NOT NULL,
		teacher_id TEXT NOT NULL,
		calculation_id TEXT NOT NULL,
		report_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_year_teacher
		ON workload_snapshots(school_year_id, teacher_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHOOL YEARS
// =============================================================================

// SaveSchoolYear validates and stores a school-year definition.
func (s *Store) SaveSchoolYear(ctx context.Context, configJSON []byte) (*factory.Catalog, error) {
	cat, err := s.factory.ParseSchoolYear(configJSON)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO school_years (id, name, calculation_mode, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			calculation_mode = excluded.calculation_mode,
			config_json = excluded.config_json,
			version = school_years.version + 1,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	sy := cat.SchoolYear
	if _, err := s.db.ExecContext(ctx, query,
		sy.ID, sy.Name, sy.CalculationMode, string(configJSON), now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to save school year: %w", err)
	}
	return cat, nil
}

func (s *Store) GetSchoolYearRecord(ctx context.Context, id string) (*SchoolYearRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schoolYearRecord(ctx, id)
}

func (s *Store) schoolYearRecord(ctx context.Context, id string) (*SchoolYearRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, calculation_mode, config_json, version, created_at, updated_at FROM school_years WHERE id = ?",
		id,
	)
	var r SchoolYearRecord
	var createdAt, updatedAt string
	err := row.Scan(&r.ID, &r.Name, &r.CalculationMode, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workload.ErrSchoolYearNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load school year %q: %w", id, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

func (s *Store) ListSchoolYears(ctx context.Context) ([]SchoolYearRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, calculation_mode, config_json, version, created_at, updated_at FROM school_years ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SchoolYearRecord
	for rows.Next() {
		var r SchoolYearRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.CalculationMode, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Catalog loads and parses a school year with its catalogs.
func (s *Store) Catalog(ctx context.Context, id string) (*factory.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog(ctx, id)
}

func (s *Store) catalog(ctx context.Context, id string) (*factory.Catalog, error) {
	r, err := s.schoolYearRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.factory.ParseSchoolYear([]byte(r.ConfigJSON))
}

func (s *Store) SchoolYear(ctx context.Context, id string) (*workload.SchoolYear, error) {
	cat, err := s.Catalog(ctx, id)
	if err != nil {
		return nil, err
	}
	return cat.SchoolYear, nil
}

// =============================================================================
// EMPLOYMENTS
// =============================================================================

// SaveEmployment validates an employment document against its school year
// and stores it, replacing the teacher's previous document.
func (s *Store) SaveEmployment(ctx context.Context, schoolYearID string, inputJSON []byte) (*workload.EmploymentInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.catalog(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}
	in, err := s.factory.ParseEmployment(cat, inputJSON)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO employments (id, school_year_id, teacher_id, input_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(school_year_id, teacher_id) DO UPDATE SET
			id = excluded.id,
			input_json = excluded.input_json,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	e := in.Employment
	if _, err := s.db.ExecContext(ctx, query,
		e.ID, schoolYearID, e.TeacherID, string(inputJSON), now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to save employment: %w", err)
	}
	return in, nil
}

func (s *Store) Employments(ctx context.Context, schoolYearID string) ([]*workload.EmploymentInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, err := s.catalog(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT input_json FROM employments WHERE school_year_id = ? ORDER BY teacher_id",
		schoolYearID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load employments: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	inputs := make([]*workload.EmploymentInput, 0, len(docs))
	for _, doc := range docs {
		in, err := s.factory.ParseEmployment(cat, []byte(doc))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func (s *Store) Employment(ctx context.Context, schoolYearID, teacherID string) (*workload.EmploymentInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, err := s.catalog(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}

	var doc string
	err = s.db.QueryRowContext(ctx,
		"SELECT input_json FROM employments WHERE school_year_id = ? AND teacher_id = ?",
		schoolYearID, teacherID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workload.ErrEmploymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load employment: %w", err)
	}
	return s.factory.ParseEmployment(cat, []byte(doc))
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (s *Store) SaveSnapshot(ctx context.Context, snap workload.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workload_snapshots (id, school_year_id, teacher_id, calculation_id, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.SchoolYearID, snap.TeacherID, snap.CalculationID,
		string(snap.Report), createdAt.UTC().Format(snapshotTimeLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("snapshot %q already exists: %w", snap.ID, err)
		}
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns nil without error when none exists.
func (s *Store) LatestSnapshot(ctx context.Context, schoolYearID, teacherID string) (*workload.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap workload.Snapshot
	var report, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, school_year_id, teacher_id, calculation_id, report_json, created_at
		FROM workload_snapshots
		WHERE school_year_id = ? AND teacher_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		schoolYearID, teacherID,
	).Scan(&snap.ID, &snap.SchoolYearID, &snap.TeacherID, &snap.CalculationID, &report, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap.Report = []byte(report)
	snap.CreatedAt, _ = time.Parse(snapshotTimeLayout, createdAt)
	return &snap, nil
}

// Reset removes all data (dev only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{"workload_snapshots", "employments", "school_years"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
