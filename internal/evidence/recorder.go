// Package evidence records what happened during a scenario: nested step
// annotations, file attachments and run-level metadata.
//
// The on-disk format is an Allure results directory, so any Allure renderer
// can produce the HTML report:
//
//	<results>/<uuid>-result.json       one per scenario
//	<results>/<uuid>-attachment.<ext>  screenshots and text evidence
//	<results>/environment.properties   browser, platform, operator
//	<results>/categories.json          failure categories
//	<results>/executor.json            CI/executor metadata
package evidence

// Media types used for attachments.
const (
	MediaPNG  = "image/png"
	MediaText = "text/plain"
	MediaJSON = "application/json"
)

// Recorder is the sink page objects and the harness write evidence to.
type Recorder interface {
	// Step runs fn as a named step. Steps nest: a Step called from inside fn
	// becomes a child of this step. The error returned by fn is returned
	// unchanged and determines the step status.
	Step(name string, fn func() error) error

	// Attach adds a named attachment to the innermost open step, or to the
	// scenario itself when no step is open.
	Attach(name, mediaType string, data []byte)
}

// Status is the Allure outcome of a step or scenario.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"  // assertion-style failure
	StatusBroken  Status = "broken"  // unexpected error
	StatusSkipped Status = "skipped" // never executed
)
