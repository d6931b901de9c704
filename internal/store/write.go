package store

import (
	"context"
	"fmt"
	"time"
)

// Scenario verdicts as stored.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Run is one execution of the suite.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Browser    string    `json:"browser,omitempty"`
	BaseURL    string    `json:"base_url,omitempty"`
	DataFile   string    `json:"data_file,omitempty"`
	Total      int       `json:"total"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
}

// ScenarioRecord is the stored verdict of one scenario.
type ScenarioRecord struct {
	Seq             int                `json:"seq"`
	Name            string             `json:"name"`
	Status          string             `json:"status"`
	ErrorKind       string             `json:"error_kind,omitempty"`
	Error           string             `json:"error,omitempty"`
	OrderNumber     string             `json:"order_number,omitempty"`
	Discount        string             `json:"discount,omitempty"`
	ShippingMethods []string           `json:"shipping_methods"`
	Checkpoints     []CheckpointRecord `json:"checkpoints"`
}

// CheckpointRecord is one stored checkpoint of a scenario.
type CheckpointRecord struct {
	Seq       int    `json:"seq"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BeginRun inserts a run with zero totals. The ID must be unique.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("begin run: empty run id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, browser, base_url, data_file)
		VALUES (?, ?, ?, ?, ?)
	`,
		run.ID,
		formatTime(run.StartedAt),
		run.Browser,
		run.BaseURL,
		run.DataFile,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordScenario stores a scenario verdict and its checkpoints, and bumps
// the run totals. The scenario, its checkpoints and the totals are written
// in one transaction.
func (s *Store) RecordScenario(ctx context.Context, runID string, rec ScenarioRecord) error {
	methods, err := marshalStrings(rec.ShippingMethods)
	if err != nil {
		return fmt.Errorf("record scenario: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record scenario: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scenarios
		(run_id, seq, name, status, error_kind, error, order_number, discount, shipping_methods)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		rec.Seq,
		rec.Name,
		rec.Status,
		rec.ErrorKind,
		rec.Error,
		rec.OrderNumber,
		rec.Discount,
		methods,
	)
	if err != nil {
		return fmt.Errorf("record scenario %q: %w", rec.Name, err)
	}

	for _, cp := range rec.Checkpoints {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checkpoints
			(run_id, scenario_seq, seq, name, status, error_kind, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			rec.Seq,
			cp.Seq,
			cp.Name,
			cp.Status,
			cp.ErrorKind,
			cp.Error,
		)
		if err != nil {
			return fmt.Errorf("record checkpoint %q: %w", cp.Name, err)
		}
	}

	passed, failed := 0, 0
	if rec.Status == StatusPassed {
		passed = 1
	} else {
		failed = 1
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE runs SET total = total + 1, passed = passed + ?, failed = failed + ?
		WHERE id = ?
	`, passed, failed, runID)
	if err != nil {
		return fmt.Errorf("record scenario: update run totals: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record scenario: %w: %s", ErrRunNotFound, runID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record scenario: commit: %w", err)
	}
	return nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ? WHERE id = ?
	`, formatTime(finishedAt), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrRunNotFound, runID)
	}
	return nil
}
