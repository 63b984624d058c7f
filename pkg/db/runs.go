package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/referendum-map/models"
)

// Run represents one pipeline execution
type Run struct {
	RunID           int64
	RunUUID         string
	CreatedAt       time.Time
	Fingerprint     string
	ReferendumRows  int
	DroppedRows     int
	JoinedRows      int
	ExcludedRows    int
	RegionCount     int
	RatioDefinition string
	OutputDir       string
}

// RunResult is a stored region result. Ratio is invalid when the region had
// no geometry in that run.
type RunResult struct {
	models.RegionResult
	Ratio sql.NullFloat64
}

// RecordRun stores a run with its region results and excluded codes in one
// transaction and returns the new run_id. ratios is keyed by region code.
func (db *DB) RecordRun(run *Run, results []models.RegionResult, ratios map[string]float64, excluded []models.ExcludedCode) (int64, error) {
	if run.RunUUID == "" {
		run.RunUUID = uuid.NewString()
	}
	if run.RatioDefinition == "" {
		run.RatioDefinition = models.RatioDefinition
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO runs (run_uuid, fingerprint, referendum_rows, dropped_rows, joined_rows,
		                  excluded_rows, region_count, ratio_definition, output_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunUUID, run.Fingerprint, run.ReferendumRows, run.DroppedRows, run.JoinedRows,
		run.ExcludedRows, len(results), run.RatioDefinition, run.OutputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, r := range results {
		var ratio sql.NullFloat64
		if v, ok := ratios[r.CodeReg]; ok {
			ratio = sql.NullFloat64{Float64: v, Valid: true}
		}
		_, err = tx.Exec(`
			INSERT INTO region_results (run_id, code_reg, name_reg, registered, abstentions,
			                            null_votes, choice_a, choice_b, ratio)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, r.CodeReg, r.NameReg, r.Registered, r.Abstentions, r.Null, r.ChoiceA, r.ChoiceB, ratio)
		if err != nil {
			return 0, fmt.Errorf("failed to insert result for region %s: %w", r.CodeReg, err)
		}
	}

	for _, ex := range excluded {
		_, err = tx.Exec(`
			INSERT INTO excluded_codes (run_id, code, name, row_count)
			VALUES (?, ?, ?, ?)
		`, runID, ex.Code, ex.Name, ex.Rows)
		if err != nil {
			return 0, fmt.Errorf("failed to insert excluded code %s: %w", ex.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	run.RunID = runID
	return runID, nil
}

const runColumns = `run_id, run_uuid, created_at, fingerprint, referendum_rows, dropped_rows,
	joined_rows, excluded_rows, region_count, ratio_definition, COALESCE(output_dir, '')`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	if err := row.Scan(&r.RunID, &r.RunUUID, &r.CreatedAt, &r.Fingerprint, &r.ReferendumRows,
		&r.DroppedRows, &r.JoinedRows, &r.ExcludedRows, &r.RegionCount, &r.RatioDefinition,
		&r.OutputDir); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRunByID retrieves run details by ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %d not found", runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// FindRunByFingerprint returns the latest run computed from the same inputs,
// or nil when there is none.
func (db *DB) FindRunByFingerprint(fingerprint string) (*Run, error) {
	r, err := scanRun(db.QueryRow("SELECT "+runColumns+` FROM runs
		WHERE fingerprint = ? ORDER BY run_id DESC LIMIT 1`, fingerprint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. A limit of 0 returns all runs.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, run_id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRunResults returns the region results of a run ordered by region code.
func (db *DB) GetRunResults(runID int64) ([]RunResult, error) {
	rows, err := db.Query(`
		SELECT code_reg, name_reg, registered, abstentions, null_votes, choice_a, choice_b, ratio
		FROM region_results
		WHERE run_id = ?
		ORDER BY code_reg
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.CodeReg, &r.NameReg, &r.Registered, &r.Abstentions, &r.Null,
			&r.ChoiceA, &r.ChoiceB, &r.Ratio); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetExcludedCodes returns the department codes a run left out.
func (db *DB) GetExcludedCodes(runID int64) ([]models.ExcludedCode, error) {
	rows, err := db.Query(`
		SELECT code, COALESCE(name, ''), row_count
		FROM excluded_codes
		WHERE run_id = ?
		ORDER BY code
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get excluded codes: %w", err)
	}
	defer rows.Close()

	var codes []models.ExcludedCode
	for rows.Next() {
		var ex models.ExcludedCode
		if err := rows.Scan(&ex.Code, &ex.Name, &ex.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan excluded code: %w", err)
		}
		codes = append(codes, ex)
	}
	return codes, rows.Err()
}
