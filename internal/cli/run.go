package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
	"github.com/roach88/storefront-e2e/internal/harness"
	"github.com/roach88/storefront-e2e/internal/store"
)

// Session is a launched browser that hands out one page per scenario.
type Session interface {
	harness.PageSource
	Close() error
}

// Launcher starts the browser session for a run.
type Launcher func(opts browser.LaunchOptions) (Session, error)

// LaunchPlaywright is the default Launcher.
func LaunchPlaywright(opts browser.LaunchOptions) (Session, error) {
	return browser.Launch(opts)
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	CatalogOptions
	NoHistory bool
	Install   bool

	// Launcher, NewID and Now can be overridden for testing. Nil uses
	// Playwright, UUIDs and the wall clock.
	Launcher Launcher
	NewID    func() string
	Now      func() time.Time
}

// RunReport is the JSON payload of the run command.
type RunReport struct {
	*harness.Summary
	ResultsDir string `json:"results_dir"`
	HistoryDB  string `json:"history_db,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run checkout scenarios in a browser",
		Long: `Run every scenario of the workbook against the storefront.

Scenarios run one after another, each on a fresh page of a single browser
session. A failed scenario is reported with a screenshot and the run moves
on; Ctrl-C stops the run before the next scenario.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed, or the run was interrupted
  2 - Command error (settings, workbook, browser, history)

Examples:
  storefront-e2e run
  storefront-e2e run --filter "Men*" --verbose
  storefront-e2e run --data data/smoke.xlsx --duplicates suffix --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, cmd)
		},
	}

	addCatalogFlags(cmd, &opts.CatalogOptions)
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not record the run in the history database")
	cmd.Flags().BoolVar(&opts.Install, "install", false, "download the browser before launching")

	return cmd
}

func addCatalogFlags(cmd *cobra.Command, copts *CatalogOptions) {
	cmd.Flags().StringVar(&copts.DataFile, "data", "", "test data workbook (default: reporting.data_file)")
	cmd.Flags().StringVar(&copts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&copts.Duplicates, "duplicates", "reject", "duplicate scenario names: reject|suffix")
}

func runScenarios(opts *RunOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	in, err := loadInputs(opts.RootOptions, opts.CatalogOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to load run inputs", err)
	}
	if len(in.Scenarios) == 0 {
		_ = formatter.Error(ErrCodeNoScenarios, fmt.Sprintf("no scenarios match %q", opts.Filter), nil)
		return NewExitError(ExitCommandError, "no scenarios to run")
	}
	formatter.VerboseLog("Loaded %d of %d scenario(s) from %s", len(in.Scenarios), in.Total, in.DataFile)

	settings := in.Settings
	newID, now := opts.NewID, opts.Now
	if newID == nil {
		newID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}

	sink, err := evidence.NewSink(settings.Reporting.ResultsDir, evidence.WithClock(now), evidence.WithIDs(newID))
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to prepare results directory", err)
	}
	if err := writeRunMetadata(sink, settings.EnvironmentProperties(), settings.Executor); err != nil {
		return formatter.Fail(ExitCommandError, "failed to write report metadata", err)
	}

	runID := newID()
	var history *store.Store
	if !opts.NoHistory {
		history, err = store.Open(settings.Reporting.HistoryDB)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to open history database", err)
		}
		defer func() {
			if closeErr := history.Close(); closeErr != nil {
				logger.Error("error closing history database", "error", closeErr)
			}
		}()
		err = history.BeginRun(cmd.Context(), store.Run{
			ID:        runID,
			StartedAt: now(),
			Browser:   settings.Environment.Browser,
			BaseURL:   settings.URLs.BaseURL,
			DataFile:  in.DataFile,
		})
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to record run", err)
		}
	}

	launch := opts.Launcher
	if launch == nil {
		launch = LaunchPlaywright
	}
	timeouts := settings.PageTimeouts()
	session, err := launch(browser.LaunchOptions{
		Browser:        settings.Environment.Browser,
		Headless:       settings.Environment.Headless,
		DefaultTimeout: timeouts.ElementWait,
		BlockedHosts:   browser.DefaultBlockedHosts,
		Install:        opts.Install,
		Logger:         logger,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to launch browser", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Error("error closing browser", "error", closeErr)
		}
	}()

	ctx, stop := signalContext(cmd.Context(), logger)
	defer stop()

	suite := &harness.Suite{
		Pages:    session,
		Customer: in.Customer,
		Options: harness.Options{
			BaseURL:        settings.URLs.BaseURL,
			Timeouts:       timeouts,
			ScreenshotsDir: settings.Reporting.ScreenshotsDir,
			Logger:         logger,
		},
		Sink:  sink,
		RunID: runID,
	}
	if history != nil {
		suite.History = history
	}

	logger.Info("run started", "run_id", runID, "scenarios", len(in.Scenarios))
	summary, runErr := suite.Run(ctx, in.Scenarios)
	if history != nil {
		// The run context may be cancelled; the finish time is still recorded.
		if err := history.FinishRun(context.WithoutCancel(ctx), runID, now()); err != nil {
			logger.Error("failed to finish run record", "run_id", runID, "error", err)
		}
	}
	if runErr != nil {
		_ = formatter.Error(ErrCodeHistory, runErr.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record run history", runErr)
	}
	logger.Info("run finished", "run_id", runID, "passed", summary.Passed, "failed", summary.Failed)

	report := RunReport{Summary: summary, ResultsDir: sink.Dir()}
	if history != nil {
		report.HistoryDB = settings.Reporting.HistoryDB
	}
	return outputRun(formatter, report)
}

func writeRunMetadata(sink *evidence.Sink, env map[string]string, executor map[string]any) error {
	if err := sink.WriteEnvironment(env); err != nil {
		return err
	}
	if err := sink.WriteCategories(evidence.DefaultCategories); err != nil {
		return err
	}
	if executor != nil {
		return sink.WriteExecutor(executor)
	}
	return nil
}

// signalContext cancels on SIGINT or SIGTERM. The returned stop releases
// the signal handler.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after the current scenario", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func outputRun(formatter *OutputFormatter, report RunReport) error {
	s := report.Summary
	failed := !s.AllPassed()

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: report}
		if failed {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeScenarioFailed, Message: failureMessage(s)}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
	} else {
		writeRunText(formatter.Writer, report)
	}

	if failed {
		return NewExitError(ExitFailure, failureMessage(s))
	}
	return nil
}

func failureMessage(s *harness.Summary) string {
	if s.Interrupted {
		return fmt.Sprintf("run interrupted after %d scenario(s), %d failed", s.Total, s.Failed)
	}
	return fmt.Sprintf("%d scenario(s) failed", s.Failed)
}

func writeRunText(w io.Writer, report RunReport) {
	s := report.Summary
	for _, r := range s.Results {
		if r.Pass {
			fmt.Fprintf(w, "PASS  %s  order %s\n", r.Scenario, r.OrderNumber)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s  at %s [%s]: %s\n", r.Scenario, r.FailedAt, r.ErrorKind, r.Error)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s: %d passed, %d failed, %d total\n", s.RunID, s.Passed, s.Failed, s.Total)
	fmt.Fprintf(w, "Results: %s\n", report.ResultsDir)
	if s.Interrupted {
		fmt.Fprintln(w, "✗ Run interrupted")
		return
	}
	if s.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
