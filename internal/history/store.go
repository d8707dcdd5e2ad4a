package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"skyarea/internal/fileutil"
	"skyarea/internal/services"
)

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Area is the sky area enclosed at one credible level, in square degrees.
type Area struct {
	Level float64 `json:"level"`
	Area  float64 `json:"area"`
}

// Run is one completed driver invocation.
type Run struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	SamplesPath     string    `json:"samples_path"`
	OutputDir       string    `json:"output_dir"`
	InjectionPath   string    `json:"injection_path,omitempty"`
	EventNum        *int      `json:"event_num,omitempty"`
	LoadedPosterior bool      `json:"loaded_posterior"`
	TotalPoints     int       `json:"total_points"`
	UsedPoints      int       `json:"used_points"`
	Attempts        int       `json:"attempts"`
	Clusters        int       `json:"clusters"`
	Nside           int       `json:"nside"`
	Areas           []Area    `json:"areas,omitempty"`
	PValue          *float64  `json:"p_value,omitempty"`
	SnapshotSHA256  string    `json:"snapshot_sha256,omitempty"`
}

// Duration returns the wall-clock time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "history path is empty", nil)
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a completed run. A missing ID is filled with a new UUID.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	var areasJSON any
	if len(run.Areas) > 0 {
		data, err := json.Marshal(run.Areas)
		if err != nil {
			return fmt.Errorf("marshal areas: %w", err)
		}
		areasJSON = string(data)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, samples_path, output_dir, injection_path,
            event_num, loaded_posterior, total_points, used_points, attempts,
            clusters, nside, areas_json, p_value, snapshot_sha256
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.SamplesPath,
		run.OutputDir,
		nullableString(run.InjectionPath),
		nullableInt(run.EventNum),
		boolToInt(run.LoadedPosterior),
		run.TotalPoints,
		run.UsedPoints,
		run.Attempts,
		run.Clusters,
		run.Nside,
		areasJSON,
		nullableFloat(run.PValue),
		nullableString(run.SnapshotSHA256),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, samples_path, output_dir, injection_path,
    event_num, loaded_posterior, total_points, used_points, attempts,
    clusters, nside, areas_json, p_value, snapshot_sha256`

// List returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get fetches a run by identifier. It returns an error wrapping
// services.ErrNotFound when no such run exists.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("run %s", id), nil)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run       Run
		started   string
		finished  string
		injection sql.NullString
		eventNum  sql.NullInt64
		loaded    int
		areasJSON sql.NullString
		pValue    sql.NullFloat64
		digest    sql.NullString
	)
	err := row.Scan(
		&run.ID, &started, &finished, &run.SamplesPath, &run.OutputDir, &injection,
		&eventNum, &loaded, &run.TotalPoints, &run.UsedPoints, &run.Attempts,
		&run.Clusters, &run.Nside, &areasJSON, &pValue, &digest,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	run.InjectionPath = injection.String
	if eventNum.Valid {
		v := int(eventNum.Int64)
		run.EventNum = &v
	}
	run.LoadedPosterior = loaded != 0
	if areasJSON.Valid && areasJSON.String != "" {
		if err := json.Unmarshal([]byte(areasJSON.String), &run.Areas); err != nil {
			return nil, fmt.Errorf("decode areas: %w", err)
		}
	}
	if pValue.Valid {
		v := pValue.Float64
		run.PValue = &v
	}
	run.SnapshotSHA256 = digest.String
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
