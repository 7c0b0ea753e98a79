package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mapxml/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Store is a SQLite database holding the mapping library and run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in dataDir.
// If dataDir is empty, defaults to ~/.mapxml/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mapxml", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mapxml.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// MappingStore returns a MappingStore backed by this store.
func (s *Store) MappingStore() driven.MappingStore {
	return &mappingStore{store: s}
}

// RunStore returns a RunStore backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Mapping Store ====================

// mappingStore implements driven.MappingStore.
type mappingStore struct {
	store *Store
}

var _ driven.MappingStore = (*mappingStore)(nil)

// Save stores or replaces a mapping and all of its rows.
func (s *mappingStore) Save(ctx context.Context, m domain.StoredMapping) error {
	if m.Name == "" {
		return fmt.Errorf("%w: mapping name is required", domain.ErrInvalidInput)
	}
	if m.ImportedAt.IsZero() {
		m.ImportedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := deleteMapping(ctx, tx, m.Name); err != nil {
		return fmt.Errorf("replacing mapping: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mapping_tables (name, source, fingerprint, imported_at)
		VALUES (?, ?, ?, ?)
	`, m.Name, m.Source, formatFingerprint(m.Fingerprint), m.ImportedAt)
	if err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mapping_rows (mapping_name, position, line, input_path, output_path,
			is_list, input_type, output_type, expression, namespace, parent_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range m.Rows {
		if _, err := stmt.ExecContext(ctx, m.Name, i, r.Line, r.InputPath, r.OutputPath,
			r.IsList, r.InputType, r.OutputType, r.Expression, r.Namespace, r.ParentKey); err != nil {
			return fmt.Errorf("saving mapping row %d: %w", r.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing mapping: %w", err)
	}
	return nil
}

// Get retrieves a mapping and its rows by name.
func (s *mappingStore) Get(ctx context.Context, name string) (*domain.StoredMapping, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, source, fingerprint, imported_at FROM mapping_tables WHERE name = ?
	`, name)

	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT line, input_path, output_path, is_list, input_type, output_type,
			expression, namespace, parent_key
		FROM mapping_rows WHERE mapping_name = ? ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying mapping rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.MappingRow
		if err := rows.Scan(&r.Line, &r.InputPath, &r.OutputPath, &r.IsList, &r.InputType,
			&r.OutputType, &r.Expression, &r.Namespace, &r.ParentKey); err != nil {
			return nil, fmt.Errorf("scanning mapping row: %w", err)
		}
		m.Rows = append(m.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mapping rows: %w", err)
	}

	return m, nil
}

// List returns all mappings ordered by name, without rows.
func (s *mappingStore) List(ctx context.Context) ([]domain.StoredMapping, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, source, fingerprint, imported_at FROM mapping_tables ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var mappings []domain.StoredMapping //nolint:prealloc // size unknown from query
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}
	return mappings, nil
}

// Delete removes a mapping and its rows.
func (s *mappingStore) Delete(ctx context.Context, name string) error {
	var exists int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM mapping_tables WHERE name = ?", name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := deleteMapping(ctx, tx, name); err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	return tx.Commit()
}

func deleteMapping(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM mapping_rows WHERE mapping_name = ?", name); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM mapping_tables WHERE name = ?", name)
	return err
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save records a run.
func (s *runStore) Save(ctx context.Context, run domain.ConversionRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversion_runs (id, mapping, input, output, fingerprint, status,
			warnings, bytes_written, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			warnings = excluded.warnings,
			bytes_written = excluded.bytes_written,
			error = excluded.error,
			duration_ns = excluded.duration_ns
	`, run.ID, run.Mapping, run.Input, run.Output, formatFingerprint(run.Fingerprint),
		string(run.Status), run.Warnings, run.BytesWritten, run.Error,
		run.StartedAt, int64(run.Duration))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// List returns recent runs, newest first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.ConversionRun, error) {
	query := `
		SELECT id, mapping, input, output, fingerprint, status, warnings,
			bytes_written, error, started_at, duration_ns
		FROM conversion_runs ORDER BY started_at DESC, id
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ConversionRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.ConversionRun
		var fingerprint, status string
		var duration int64
		if err := rows.Scan(&run.ID, &run.Mapping, &run.Input, &run.Output, &fingerprint,
			&status, &run.Warnings, &run.BytesWritten, &run.Error, &run.StartedAt,
			&duration); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Fingerprint = parseFingerprint(fingerprint)
		run.Status = domain.RunStatus(status)
		run.Duration = time.Duration(duration)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Clear removes all runs.
func (s *runStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM conversion_runs"); err != nil {
		return fmt.Errorf("clearing runs: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

type scanner interface {
	Scan(dest ...any) error
}

func scanMapping(row scanner) (*domain.StoredMapping, error) {
	var m domain.StoredMapping
	var fingerprint string
	if err := row.Scan(&m.Name, &m.Source, &fingerprint, &m.ImportedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning mapping: %w", err)
	}
	m.Fingerprint = parseFingerprint(fingerprint)
	return &m, nil
}

// Fingerprints use the full uint64 range, which database/sql rejects as a
// parameter, so they are stored as hex text.
func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func parseFingerprint(s string) uint64 {
	fp, _ := strconv.ParseUint(s, 16, 64)
	return fp
}
