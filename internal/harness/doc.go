// Package harness runs checkout scenarios end to end.
//
// A scenario is one catalog row driven through thirteen fixed checkpoints:
//
//	open_home, navigate_category, apply_filters, open_first_product,
//	customize_product, add_to_cart, open_mini_cart, proceed_to_checkout,
//	fill_shipping_address, shipping_methods, continue_to_payment,
//	apply_discount, place_order
//
// Each checkpoint is an evidence step. The first failing checkpoint ends
// the scenario and every later checkpoint is recorded as skipped. There is
// no retry and no rollback.
//
// # Logging
//
// Run opens a LogScope for the scenario: an slog.Handler bound to the
// scenario's page and evidence recorder. Records at error level also
// capture a screenshot into the current step. The scope is closed when Run
// returns, whatever the outcome.
//
// # Golden Traces
//
// Result.Trace renders the checkpoint sequence as stable text, and
// AssertGolden compares it with testdata/golden/<name>.golden. The same row
// run against independent sessions produces the same trace.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
