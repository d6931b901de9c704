// Package config loads the harness settings document.
//
// Settings are YAML with five required top-level sections (environment,
// urls, credentials, timeouts, reporting) and an optional executor section.
// Loading is strict: unknown keys are rejected by the YAML decoder and values
// are checked against an embedded CUE schema. A few values can be overridden
// from the process environment, optionally seeded from a .env file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront-e2e/internal/pages"
)

//go:embed schema.cue
var schemaSource string

// RequiredSections are the top-level keys every settings file must carry.
var RequiredSections = []string{"environment", "urls", "credentials", "timeouts", "reporting"}

// Defaults applied to optional reporting paths.
const (
	DefaultScreenshotsDir = "report/screenshots"
	DefaultHistoryDB      = "report/history.db"
	DefaultDataFile       = "data/test_data.xlsx"
)

// Settings is the decoded settings document.
type Settings struct {
	Environment Environment       `yaml:"environment" json:"environment"`
	URLs        URLs              `yaml:"urls" json:"urls"`
	Credentials map[string]string `yaml:"credentials" json:"credentials"`
	Timeouts    Timeouts          `yaml:"timeouts" json:"timeouts"`
	Reporting   Reporting         `yaml:"reporting" json:"reporting"`
	Executor    map[string]any    `yaml:"executor,omitempty" json:"executor,omitempty"`
}

// Environment describes the browser under test and who ran it.
type Environment struct {
	Browser  string `yaml:"browser" json:"browser"`
	Platform string `yaml:"platform" json:"platform"`
	TestedBy string `yaml:"tested_by" json:"tested_by"`
	Headless bool   `yaml:"headless" json:"headless"`
}

// URLs are the storefront endpoints.
type URLs struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	APIBaseURL string `yaml:"api_base_url,omitempty" json:"api_base_url,omitempty"`
}

// Timeouts are wait budgets in milliseconds. Zero optional values fall back
// to the page defaults.
type Timeouts struct {
	PageLoad       int `yaml:"page_load" json:"page_load"`
	ElementWait    int `yaml:"element_wait" json:"element_wait"`
	Menu           int `yaml:"menu,omitempty" json:"menu,omitempty"`
	Popup          int `yaml:"popup,omitempty" json:"popup,omitempty"`
	Loader         int `yaml:"loader,omitempty" json:"loader,omitempty"`
	Success        int `yaml:"success,omitempty" json:"success,omitempty"`
	FilterSettle   int `yaml:"filter_settle,omitempty" json:"filter_settle,omitempty"`
	ResultsSettle  int `yaml:"results_settle,omitempty" json:"results_settle,omitempty"`
	ProductsSettle int `yaml:"products_settle,omitempty" json:"products_settle,omitempty"`
	AddressSettle  int `yaml:"address_settle,omitempty" json:"address_settle,omitempty"`
}

// Reporting says where evidence, history and test data live.
type Reporting struct {
	ResultsDir     string `yaml:"results_dir" json:"results_dir"`
	ScreenshotsDir string `yaml:"screenshots_dir,omitempty" json:"screenshots_dir,omitempty"`
	HistoryDB      string `yaml:"history_db,omitempty" json:"history_db,omitempty"`
	DataFile       string `yaml:"data_file,omitempty" json:"data_file,omitempty"`
}

// Load reads, validates and returns the settings at path, with environment
// overrides applied. Every failure is a *Error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeRead, Path: path, Message: "failed to read settings file", Err: err}
	}
	s, err := Parse(data)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
		}
		return nil, err
	}
	return s, nil
}

// Parse decodes and validates a settings document.
func Parse(data []byte) (*Settings, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Code: ErrCodeParse, Message: "failed to parse YAML", Err: err}
	}
	var missing []string
	for _, key := range RequiredSections {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{
			Code:    ErrCodeMissingSection,
			Message: "settings missing required sections: " + strings.Join(missing, ", "),
		}
	}

	var s Settings
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, &Error{Code: ErrCodeParse, Message: "failed to parse YAML", Err: err}
	}
	if s.Credentials == nil {
		s.Credentials = map[string]string{}
	}

	if err := applyEnv(&s, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	s.applyDefaults()
	return &s, nil
}

// Validate checks s against the embedded schema.
func Validate(s *Settings) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile settings schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	v := def.Unify(ctx.Encode(s))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &Error{
			Code:    ErrCodeSchema,
			Message: strings.TrimSpace(cueerrors.Details(err, nil)),
		}
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.Reporting.ScreenshotsDir == "" {
		s.Reporting.ScreenshotsDir = DefaultScreenshotsDir
	}
	if s.Reporting.HistoryDB == "" {
		s.Reporting.HistoryDB = DefaultHistoryDB
	}
	if s.Reporting.DataFile == "" {
		s.Reporting.DataFile = DefaultDataFile
	}
}

// EnvironmentProperties are the key/value pairs written to the report's
// environment file.
func (s *Settings) EnvironmentProperties() map[string]string {
	return map[string]string{
		"Browser":  s.Environment.Browser,
		"Platform": s.Environment.Platform,
		"TestedBy": s.Environment.TestedBy,
	}
}

// PageTimeouts converts the millisecond budgets to page timeouts, keeping
// page defaults for unset optional values. Settle pauses are taken as
// configured, so an unset pause is disabled.
func (s *Settings) PageTimeouts() pages.Timeouts {
	t := pages.DefaultTimeouts()
	t.PageLoad = ms(s.Timeouts.PageLoad)
	t.ElementWait = ms(s.Timeouts.ElementWait)
	if s.Timeouts.Menu > 0 {
		t.Menu = ms(s.Timeouts.Menu)
	}
	if s.Timeouts.Popup > 0 {
		t.Popup = ms(s.Timeouts.Popup)
	}
	if s.Timeouts.Loader > 0 {
		t.Loader = ms(s.Timeouts.Loader)
	}
	if s.Timeouts.Success > 0 {
		t.Success = ms(s.Timeouts.Success)
	}
	t.FilterSettle = ms(s.Timeouts.FilterSettle)
	t.ResultsSettle = ms(s.Timeouts.ResultsSettle)
	t.ProductsSettle = ms(s.Timeouts.ProductsSettle)
	t.AddressSettle = ms(s.Timeouts.AddressSettle)
	return t
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
