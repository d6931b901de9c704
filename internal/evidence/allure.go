package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/storefront-e2e/internal/browser"
)

// Sink writes Allure results for a whole run.
type Sink struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// SinkOption customizes a Sink.
type SinkOption func(*Sink)

// WithClock replaces the wall clock used for step timestamps.
func WithClock(now func() time.Time) SinkOption {
	return func(s *Sink) { s.now = now }
}

// WithIDs replaces the UUID generator used for result and attachment names.
func WithIDs(newID func() string) SinkOption {
	return func(s *Sink) { s.newID = newID }
}

// NewSink creates the results directory if needed.
func NewSink(dir string, opts ...SinkOption) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	s := &Sink{dir: dir, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the results directory.
func (s *Sink) Dir() string {
	return s.dir
}

// WriteEnvironment writes environment.properties with keys in sorted order.
func (s *Sink) WriteEnvironment(props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + props[k]
	}
	path := filepath.Join(s.dir, "environment.properties")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write environment properties: %w", err)
	}
	return nil
}

// Category groups results in the report by status and trace pattern.
type Category struct {
	Name            string   `json:"name"`
	MatchedStatuses []Status `json:"matchedStatuses,omitempty"`
	TraceRegex      string   `json:"traceRegex,omitempty"`
	MessageRegex    string   `json:"messageRegex,omitempty"`
}

// DefaultCategories separates regressions from known issues.
var DefaultCategories = []Category{
	{Name: "Regression", MatchedStatuses: []Status{StatusPassed, StatusFailed}},
	{Name: "Known Issues", MatchedStatuses: []Status{StatusBroken}, TraceRegex: ".*known_issue.*"},
}

// WriteCategories writes categories.json.
func (s *Sink) WriteCategories(categories []Category) error {
	return s.writeJSON("categories.json", categories)
}

// WriteExecutor writes executor.json. A nil map is written as an empty object.
func (s *Sink) WriteExecutor(executor map[string]any) error {
	if executor == nil {
		executor = map[string]any{}
	}
	return s.writeJSON("executor.json", executor)
}

func (s *Sink) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Label is an Allure label (tag, severity, suite, ...).
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Parameter is a scenario parameter shown in the report.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StatusDetails carries the failure message of a step or scenario.
type StatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// Attachment references an attachment file in the results directory.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// StepResult is one step of a scenario.
type StepResult struct {
	Name          string         `json:"name"`
	Status        Status         `json:"status"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Stage         string         `json:"stage"`
	Start         int64          `json:"start"`
	Stop          int64          `json:"stop"`
	Steps         []*StepResult  `json:"steps,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
}

// TestResult is the JSON document written for one scenario.
type TestResult struct {
	UUID          string         `json:"uuid"`
	HistoryID     string         `json:"historyId"`
	Name          string         `json:"name"`
	FullName      string         `json:"fullName"`
	Status        Status         `json:"status"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Stage         string         `json:"stage"`
	Start         int64          `json:"start"`
	Stop          int64          `json:"stop"`
	Labels        []Label        `json:"labels,omitempty"`
	Parameters    []Parameter    `json:"parameters,omitempty"`
	Steps         []*StepResult  `json:"steps,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
}

// Scenario records one scenario's evidence. It implements Recorder.
type Scenario struct {
	sink   *Sink
	mu     sync.Mutex
	result TestResult
	stack  []*StepResult
	done   bool
}

// StartScenario opens a result for the named scenario.
func (s *Sink) StartScenario(name, fullName string, labels []Label, params []Parameter) *Scenario {
	return &Scenario{
		sink: s,
		result: TestResult{
			UUID:       s.newID(),
			HistoryID:  fullName,
			Name:       name,
			FullName:   fullName,
			Stage:      "running",
			Start:      s.now().UnixMilli(),
			Labels:     labels,
			Parameters: params,
		},
	}
}

// Step implements Recorder.
func (sc *Scenario) Step(name string, fn func() error) error {
	sc.mu.Lock()
	step := &StepResult{Name: name, Stage: "running", Start: sc.sink.now().UnixMilli()}
	if n := len(sc.stack); n > 0 {
		sc.stack[n-1].Steps = append(sc.stack[n-1].Steps, step)
	} else {
		sc.result.Steps = append(sc.result.Steps, step)
	}
	sc.stack = append(sc.stack, step)
	sc.mu.Unlock()

	err := fn()

	sc.mu.Lock()
	step.Stop = sc.sink.now().UnixMilli()
	step.Stage = "finished"
	step.Status = StatusOf(err)
	if err != nil {
		step.StatusDetails = &StatusDetails{Message: err.Error()}
	}
	sc.stack = sc.stack[:len(sc.stack)-1]
	sc.mu.Unlock()
	return err
}

// Attach implements Recorder. Write failures are reported as a text
// attachment naming the lost file rather than failing the scenario.
func (sc *Scenario) Attach(name, mediaType string, data []byte) {
	source := sc.sink.newID() + "-attachment" + extensionFor(mediaType)
	att := Attachment{Name: name, Source: source, Type: mediaType}
	if err := os.WriteFile(filepath.Join(sc.sink.dir, source), data, 0644); err != nil {
		att = Attachment{Name: name + " (write failed: " + err.Error() + ")", Type: MediaText}
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if n := len(sc.stack); n > 0 {
		sc.stack[n-1].Attachments = append(sc.stack[n-1].Attachments, att)
		return
	}
	sc.result.Attachments = append(sc.result.Attachments, att)
}

// Finish closes the scenario with the given status and writes its result
// file. Calling Finish twice is an error.
func (sc *Scenario) Finish(status Status, err error) (*TestResult, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.done {
		return nil, fmt.Errorf("scenario %q already finished", sc.result.Name)
	}
	sc.done = true

	sc.result.Status = status
	sc.result.Stage = "finished"
	sc.result.Stop = sc.sink.now().UnixMilli()
	if err != nil {
		sc.result.StatusDetails = &StatusDetails{Message: err.Error()}
	}

	if werr := sc.sink.writeJSON(sc.result.UUID+"-result.json", sc.result); werr != nil {
		return nil, werr
	}
	out := sc.result
	return &out, nil
}

// StatusOf maps a step error to an Allure status: nil passes, content
// mismatches fail, everything else is broken.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusPassed
	case browser.IsAssertion(err):
		return StatusFailed
	default:
		return StatusBroken
	}
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case MediaPNG:
		return ".png"
	case MediaJSON:
		return ".json"
	default:
		return ".txt"
	}
}
