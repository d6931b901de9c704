package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// ScenarioRun is a scenario verdict together with the run it belongs to.
type ScenarioRun struct {
	Run      Run            `json:"run"`
	Scenario ScenarioRecord `json:"scenario"`
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or
// less returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, browser, base_url, data_file, total, passed, failed
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a run and its scenarios in execution order, each with its
// checkpoints. An unknown ID returns ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, []ScenarioRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, browser, base_url, data_file, total, passed, failed
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, nil, err
	}

	scenarios, err := s.readScenarios(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}
	return run, scenarios, nil
}

// ScenarioHistory returns the verdicts recorded for one scenario name,
// newest run first. Checkpoints are included.
func (s *Store) ScenarioHistory(ctx context.Context, name string, limit int) ([]ScenarioRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.finished_at, r.browser, r.base_url, r.data_file,
		       r.total, r.passed, r.failed,
		       s.seq, s.name, s.status, s.error_kind, s.error, s.order_number, s.discount, s.shipping_methods
		FROM scenarios s
		JOIN runs r ON r.id = s.run_id
		WHERE s.name = ?
		ORDER BY r.started_at DESC, r.id COLLATE BINARY ASC, s.seq ASC
		LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query scenario history: %w", err)
	}
	defer rows.Close()

	history := []ScenarioRun{}
	for rows.Next() {
		var (
			sr                ScenarioRun
			started, finished string
			methods           string
		)
		err := rows.Scan(
			&sr.Run.ID, &started, &finished, &sr.Run.Browser, &sr.Run.BaseURL, &sr.Run.DataFile,
			&sr.Run.Total, &sr.Run.Passed, &sr.Run.Failed,
			&sr.Scenario.Seq, &sr.Scenario.Name, &sr.Scenario.Status, &sr.Scenario.ErrorKind,
			&sr.Scenario.Error, &sr.Scenario.OrderNumber, &sr.Scenario.Discount, &methods,
		)
		if err != nil {
			return nil, fmt.Errorf("scan scenario history: %w", err)
		}
		if err := fillRunTimes(&sr.Run, started, finished); err != nil {
			return nil, err
		}
		if sr.Scenario.ShippingMethods, err = unmarshalStrings(methods); err != nil {
			return nil, err
		}
		history = append(history, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario history: %w", err)
	}
	rows.Close()

	for i := range history {
		cps, err := s.readCheckpoints(ctx, history[i].Run.ID, history[i].Scenario.Seq)
		if err != nil {
			return nil, err
		}
		history[i].Scenario.Checkpoints = cps
	}
	return history, nil
}

func (s *Store) readScenarios(ctx context.Context, runID string) ([]ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, status, error_kind, error, order_number, discount, shipping_methods
		FROM scenarios
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []ScenarioRecord{}
	for rows.Next() {
		var (
			rec     ScenarioRecord
			methods string
		)
		if err := rows.Scan(&rec.Seq, &rec.Name, &rec.Status, &rec.ErrorKind, &rec.Error,
			&rec.OrderNumber, &rec.Discount, &methods); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		if rec.ShippingMethods, err = unmarshalStrings(methods); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	// The single connection is held by rows until closed.
	rows.Close()

	for i := range scenarios {
		cps, err := s.readCheckpoints(ctx, runID, scenarios[i].Seq)
		if err != nil {
			return nil, err
		}
		scenarios[i].Checkpoints = cps
	}
	return scenarios, nil
}

func (s *Store) readCheckpoints(ctx context.Context, runID string, scenarioSeq int) ([]CheckpointRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, status, error_kind, error
		FROM checkpoints
		WHERE run_id = ? AND scenario_seq = ?
		ORDER BY seq ASC
	`, runID, scenarioSeq)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	checkpoints := []CheckpointRecord{}
	for rows.Next() {
		var cp CheckpointRecord
		if err := rows.Scan(&cp.Seq, &cp.Name, &cp.Status, &cp.ErrorKind, &cp.Error); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return checkpoints, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished string
	)
	err := row.Scan(&run.ID, &started, &finished, &run.Browser, &run.BaseURL, &run.DataFile,
		&run.Total, &run.Passed, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := fillRunTimes(&run, started, finished); err != nil {
		return Run{}, err
	}
	return run, nil
}

func fillRunTimes(run *Run, started, finished string) error {
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return err
	}
	return nil
}
