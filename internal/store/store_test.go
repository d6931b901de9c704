package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestOpen_CreatesDatabaseAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report", "history", "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file was not created: %v", err)
	}
}

func TestOpen_KeepsExistingRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	beginTestRun(t, s, "run-1", 0)
	if err := s.RecordScenario(context.Background(), "run-1", passedScenario(1, "Men tee")); err != nil {
		t.Fatalf("RecordScenario() failed: %v", err)
	}
	s.Close()

	for i := 0; i < 2; i++ {
		s, err = Open(path)
		if err != nil {
			t.Fatalf("reopen %d failed: %v", i, err)
		}
		runs, err := s.ListRuns(context.Background(), 0)
		s.Close()
		if err != nil {
			t.Fatalf("ListRuns() failed: %v", err)
		}
		if len(runs) != 1 || runs[0].Passed != 1 {
			t.Fatalf("reopen %d: runs = %+v, want run-1 with one pass", i, runs)
		}
	}
}

func TestOpen_ParentIsAFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "report")
	if err := os.WriteFile(parent, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(filepath.Join(parent, "history.db")); err == nil {
		t.Error("expected error when the parent path is a file, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestConnectionPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.pragma(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	tests := map[string][]string{
		"runs":        {"id", "started_at", "finished_at", "browser", "base_url", "data_file", "total", "passed", "failed"},
		"scenarios":   {"run_id", "seq", "name", "status", "error_kind", "error", "order_number", "discount", "shipping_methods"},
		"checkpoints": {"run_id", "scenario_seq", "seq", "name", "status", "error_kind", "error"},
	}
	for table, want := range tests {
		got := tableColumns(t, s.db, table)
		for _, col := range want {
			if !slices.Contains(got, col) {
				t.Errorf("table %s missing column %q (have %v)", table, col, got)
			}
		}
	}
}

func TestConstraint_ScenarioRequiresRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO scenarios (run_id, seq, name, status) VALUES ('missing', 1, 'x', 'passed')
	`)
	if err == nil {
		t.Error("expected foreign key violation for scenario without run")
	}
}

func TestMigrate_FreshDatabaseIsCurrent(t *testing.T) {
	s := createTestStore(t)

	if got := userVersion(t, s.db); got != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", got, currentSchemaVersion)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].version <= migrations[i-1].version {
			t.Errorf("migration %q out of order", migrations[i].name)
		}
	}
}

func TestMigrate_UpgradesOlderDatabases(t *testing.T) {
	tests := []struct {
		name        string
		fromVersion int
	}{
		{"from v0", 0},
		{"from v1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.db")

			// tables only, as an older binary would leave them
			db, err := sql.Open("sqlite3", path)
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			if _, err := db.Exec(schemaSQL); err != nil {
				t.Fatalf("failed to apply schema: %v", err)
			}
			for _, m := range migrations[:tt.fromVersion] {
				if _, err := db.Exec(m.stmt); err != nil {
					t.Fatalf("failed to apply %q: %v", m.name, err)
				}
			}
			if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", tt.fromVersion)); err != nil {
				t.Fatalf("failed to set user_version: %v", err)
			}
			db.Close()

			s, err := Open(path)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			defer s.Close()

			if got := userVersion(t, s.db); got != currentSchemaVersion {
				t.Errorf("user_version = %d, want %d after migration", got, currentSchemaVersion)
			}
			if idx := tableIndexes(t, s.db, "scenarios"); !slices.Contains(idx, "idx_scenarios_name") {
				t.Errorf("expected idx_scenarios_name, got %v", idx)
			}
			if idx := tableIndexes(t, s.db, "runs"); !slices.Contains(idx, "idx_runs_started") {
				t.Errorf("expected idx_runs_started, got %v", idx)
			}
		})
	}
}

func userVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	return version
}

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func tableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
