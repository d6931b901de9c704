// Package store keeps a SQLite history of harness runs.
//
// Three tables, each append-only:
//   - runs: one row per invocation of the suite, with pass/fail totals
//   - scenarios: one row per executed scenario, with its verdict, error
//     kind, order number and discount summary
//   - checkpoints: the ordered checkpoint trace of each scenario
//
// Rows are ordered by their sequence columns, never by timestamps, so two
// runs of the same catalog read back identically.
//
// # Database Configuration
//
// Every connection runs in WAL mode with synchronous=NORMAL, a 5 second
// busy timeout and foreign keys enforced. Open applies the embedded schema
// and then any migration above the file's user_version.
package store
