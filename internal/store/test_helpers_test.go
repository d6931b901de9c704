package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

var t0 = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// createTestStore opens a fresh database in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTestRun inserts a run started at t0 plus offset.
func beginTestRun(t *testing.T, s *Store, id string, offset time.Duration) {
	t.Helper()
	err := s.BeginRun(context.Background(), Run{
		ID:        id,
		StartedAt: t0.Add(offset),
		Browser:   "chromium",
		BaseURL:   "https://shop.example.com/",
		DataFile:  "data/test_data.xlsx",
	})
	if err != nil {
		t.Fatalf("BeginRun(%q) failed: %v", id, err)
	}
}

// passedScenario is a fully passed scenario record with three checkpoints.
func passedScenario(seq int, name string) ScenarioRecord {
	return ScenarioRecord{
		Seq:             seq,
		Name:            name,
		Status:          StatusPassed,
		OrderNumber:     "000012345",
		Discount:        "Subtotal: $64.00",
		ShippingMethods: []string{"Flat Rate", "Best Way"},
		Checkpoints: []CheckpointRecord{
			{Seq: 1, Name: "open_home", Status: StatusPassed},
			{Seq: 2, Name: "navigate_category", Status: StatusPassed},
			{Seq: 3, Name: "place_order", Status: StatusPassed},
		},
	}
}

// failedScenario fails at its second checkpoint.
func failedScenario(seq int, name string) ScenarioRecord {
	return ScenarioRecord{
		Seq:       seq,
		Name:      name,
		Status:    StatusFailed,
		ErrorKind: "TIMEOUT",
		Error:     "click: timeout",
		Checkpoints: []CheckpointRecord{
			{Seq: 1, Name: "open_home", Status: StatusPassed},
			{Seq: 2, Name: "navigate_category", Status: StatusFailed, ErrorKind: "TIMEOUT", Error: "click: timeout"},
			{Seq: 3, Name: "place_order", Status: StatusSkipped},
		},
	}
}
