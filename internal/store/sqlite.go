package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/legalsts/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned when an id prefix matches several runs.
var ErrAmbiguousRunID = errors.New("run id prefix matches several runs")

// Store is the catalog of dataset exports
type Store struct {
	db *sql.DB
}

// New opens (or creates) the catalog at dbPath
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddRun records a run and its files. ID and CreatedAt are assigned here.
func (s *Store) AddRun(run *domain.Run) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, pipeline, variant, seed, samples, skipped, duplicates, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Pipeline, run.Variant, int64(run.Seed), run.Samples, run.Skipped, run.Duplicates, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range run.Files {
		_, err := tx.Exec(
			"INSERT INTO run_files (run_id, split, path, row_count, location) VALUES (?, ?, ?, ?, ?)",
			run.ID, f.Split, f.Path, f.Rows, f.Location,
		)
		if err != nil {
			return fmt.Errorf("insert run file %s: %w", f.Split, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// SetFileLocation stores where a run file was published
func (s *Store) SetFileLocation(runID, split, location string) error {
	res, err := s.db.Exec(
		"UPDATE run_files SET location = ? WHERE run_id = ? AND split = ?",
		location, runID, split,
	)
	if err != nil {
		return fmt.Errorf("set file location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set file location %s/%s: %w", runID, split, ErrRunNotFound)
	}
	return nil
}

func scanRun(row interface{ Scan(...any) error }) (domain.Run, error) {
	var r domain.Run
	var seed int64
	err := row.Scan(&r.ID, &r.Pipeline, &r.Variant, &seed, &r.Samples, &r.Skipped, &r.Duplicates, &r.CreatedAt)
	r.Seed = uint64(seed)
	return r, err
}

const runColumns = "id, pipeline, variant, seed, samples, skipped, duplicates, created_at"

// GetRun retrieves a run with its files
func (s *Store) GetRun(id string) (*domain.Run, error) {
	run, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	files, err := s.ListRunFiles(id)
	if err != nil {
		return nil, err
	}
	run.Files = files

	return &run, nil
}

// FindRunByPrefix retrieves the run whose id is, or uniquely starts with, prefix
func (s *Store) FindRunByPrefix(prefix string) (*domain.Run, error) {
	if prefix == "" {
		return nil, fmt.Errorf("find run: %w", ErrRunNotFound)
	}
	escaped := likeEscaper.Replace(prefix)
	rows, err := s.db.Query(
		`SELECT id FROM runs WHERE id = ? OR id LIKE ? || '%' ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		prefix, escaped, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}

	switch {
	case len(ids) == 0:
		return nil, fmt.Errorf("find run %s: %w", prefix, ErrRunNotFound)
	case ids[0] == prefix || len(ids) == 1:
		return s.GetRun(ids[0])
	default:
		return nil, fmt.Errorf("find run %s: %w", prefix, ErrAmbiguousRunID)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// DeleteRun removes a run; its files go with it
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns recent runs, newest first, optionally filtered by variant
func (s *Store) ListRuns(variant string, limit, offset int) ([]domain.Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	args := []any{}
	if variant != "" {
		query += " WHERE variant = ?"
		args = append(args, variant)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// ListRunFiles returns the files of a run in the order they were written
func (s *Store) ListRunFiles(runID string) ([]domain.RunFile, error) {
	rows, err := s.db.Query(
		"SELECT split, path, row_count, location FROM run_files WHERE run_id = ? ORDER BY rowid",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []domain.RunFile
	for rows.Next() {
		var f domain.RunFile
		if err := rows.Scan(&f.Split, &f.Path, &f.Rows, &f.Location); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}
