package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = errors.New("run not found")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Record is a finished run handed to Save.
type Record struct {
	Preset  string
	Config  *config.Config
	Summary telemetry.Summary
	Report  any // marshalled as JSON; may be nil
	History []telemetry.RoundStats
}

// Run is an archived run. List leaves Config and Report empty.
type Run struct {
	ID              uuid.UUID             `json:"id"`
	CreatedAt       time.Time             `json:"created_at"`
	Preset          string                `json:"preset,omitempty"`
	Seed            int64                 `json:"seed"`
	RoundsCompleted int                   `json:"rounds_completed"`
	Termination     string                `json:"termination"`
	Final           telemetry.Composition `json:"final"`
	Summary         telemetry.Summary     `json:"summary"`
	Config          *config.Config        `json:"config,omitempty"`
	Report          json.RawMessage       `json:"report,omitempty"`
}

// SQLiteStore is the run archive.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// Use MemoryPath for a throwaway archive.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == MemoryPath {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; also keeps one in-memory database alive

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save archives a run and its round history in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) (Run, error) {
	if rec.Config == nil {
		return Run{}, errors.New("saving run: missing config")
	}
	cfgYAML, err := yaml.Marshal(rec.Config)
	if err != nil {
		return Run{}, fmt.Errorf("encoding config: %w", err)
	}
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return Run{}, fmt.Errorf("encoding summary: %w", err)
	}
	var reportJSON sql.NullString
	if rec.Report != nil {
		data, err := json.Marshal(rec.Report)
		if err != nil {
			return Run{}, fmt.Errorf("encoding report: %w", err)
		}
		reportJSON = sql.NullString{String: string(data), Valid: true}
	}

	run := Run{
		ID:              uuid.New(),
		CreatedAt:       time.Now().UTC(),
		Preset:          rec.Preset,
		Seed:            rec.Summary.Seed,
		RoundsCompleted: rec.Summary.RoundsCompleted,
		Termination:     rec.Summary.Termination,
		Final:           rec.Summary.Final,
		Summary:         rec.Summary,
		Config:          rec.Config,
	}
	if reportJSON.Valid {
		run.Report = json.RawMessage(reportJSON.String)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, preset, seed, rounds_completed, termination,
			final_hawks, final_doves, config, summary, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), formatTime(run.CreatedAt), run.Preset, run.Seed,
		run.RoundsCompleted, run.Termination, run.Final.Hawks, run.Final.Doves,
		string(cfgYAML), string(summaryJSON), reportJSON,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rounds (run_id, round, food, hawks, doves, dead_hawks, dead_doves,
			hawk_births, dove_births, pairs, unpaired,
			hawk_energy_mean, hawk_energy_p10, hawk_energy_p50, hawk_energy_p90,
			dove_energy_mean, dove_energy_p10, dove_energy_p50, dove_energy_p90,
			total_energy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing round insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rec.History {
		_, err := stmt.ExecContext(ctx,
			run.ID.String(), r.Round, r.Food, r.Hawks, r.Doves, r.DeadHawks, r.DeadDoves,
			r.HawkBirths, r.DoveBirths, r.Pairs, r.Unpaired,
			r.HawkEnergyMean, r.HawkEnergyP10, r.HawkEnergyP50, r.HawkEnergyP90,
			r.DoveEnergyMean, r.DoveEnergyP10, r.DoveEnergyP50, r.DoveEnergyP90,
			r.TotalEnergy,
		)
		if err != nil {
			return Run{}, fmt.Errorf("inserting round %d: %w", r.Round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. limit <= 0 means no limit.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, preset, seed, rounds_completed, termination,
			final_hawks, final_doves, summary
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			id        string
			createdAt string
			summary   string
		)
		if err := rows.Scan(&id, &createdAt, &run.Preset, &run.Seed, &run.RoundsCompleted,
			&run.Termination, &run.Final.Hawks, &run.Final.Doves, &summary); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := decodeRun(&run, id, createdAt, summary); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its config and report.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	var (
		run       Run
		rawID     string
		createdAt string
		summary   string
		cfgYAML   string
		report    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, preset, seed, rounds_completed, termination,
			final_hawks, final_doves, summary, config, report
		FROM runs WHERE id = ?`, id.String()).Scan(
		&rawID, &createdAt, &run.Preset, &run.Seed, &run.RoundsCompleted,
		&run.Termination, &run.Final.Hawks, &run.Final.Doves, &summary, &cfgYAML, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}
	if err := decodeRun(&run, rawID, createdAt, summary); err != nil {
		return nil, err
	}

	cfg, err := config.Parse([]byte(cfgYAML))
	if err != nil {
		return nil, fmt.Errorf("decoding config for run %s: %w", id, err)
	}
	run.Config = cfg
	if report.Valid {
		run.Report = json.RawMessage(report.String)
	}
	return &run, nil
}

// Rounds returns the round history of a run, oldest first.
func (s *SQLiteStore) Rounds(ctx context.Context, id uuid.UUID) ([]telemetry.RoundStats, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT round, food, hawks, doves, dead_hawks, dead_doves,
			hawk_births, dove_births, pairs, unpaired,
			hawk_energy_mean, hawk_energy_p10, hawk_energy_p50, hawk_energy_p90,
			dove_energy_mean, dove_energy_p10, dove_energy_p50, dove_energy_p90,
			total_energy
		FROM rounds WHERE run_id = ? ORDER BY round`, id.String())
	if err != nil {
		return nil, fmt.Errorf("reading rounds for %s: %w", id, err)
	}
	defer rows.Close()

	history := []telemetry.RoundStats{}
	for rows.Next() {
		var r telemetry.RoundStats
		if err := rows.Scan(&r.Round, &r.Food, &r.Hawks, &r.Doves, &r.DeadHawks, &r.DeadDoves,
			&r.HawkBirths, &r.DoveBirths, &r.Pairs, &r.Unpaired,
			&r.HawkEnergyMean, &r.HawkEnergyP10, &r.HawkEnergyP50, &r.HawkEnergyP90,
			&r.DoveEnergyMean, &r.DoveEnergyP10, &r.DoveEnergyP50, &r.DoveEnergyP90,
			&r.TotalEnergy); err != nil {
			return nil, fmt.Errorf("scanning round: %w", err)
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

func decodeRun(run *Run, id, createdAt, summary string) error {
	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("parsing run id %q: %w", id, err)
	}
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return fmt.Errorf("parsing created_at for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return fmt.Errorf("decoding summary for %s: %w", id, err)
	}
	return nil
}
