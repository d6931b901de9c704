package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront-e2e/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Scenario string
}

// RunDetail is the JSON payload of "history <run-id>".
type RunDetail struct {
	Run       store.Run              `json:"run"`
	Scenarios []store.ScenarioRecord `json:"scenarios"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded in the history database.

With no argument, lists the most recent runs. With a run ID, shows every
scenario of that run with its checkpoints. With --scenario, shows the
verdicts of one scenario across runs.

Examples:
  storefront-e2e history
  storefront-e2e history --limit 5 --format json
  storefront-e2e history 0192f6d4-...
  storefront-e2e history --scenario "Men tee"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "history database (default: reporting.history_db)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum rows to show; 0 shows all")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "show the history of one scenario name")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dbPath := opts.Database
	if dbPath == "" {
		settings, err := loadSettings(opts.RootOptions)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to load settings", err)
		}
		dbPath = settings.Reporting.HistoryDB
	}
	if _, err := os.Stat(dbPath); err != nil {
		return formatter.Fail(ExitCommandError, "history database not found", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()
	ctx := cmd.Context()

	switch {
	case len(args) == 1:
		run, scenarios, err := st.ReadRun(ctx, args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, "unknown run", err)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read run", err)
		}
		detail := RunDetail{Run: run, Scenarios: scenarios}
		if formatter.JSON() {
			return formatter.Success(detail)
		}
		writeRunDetail(formatter.Writer, detail)
		return nil

	case opts.Scenario != "":
		history, err := st.ScenarioHistory(ctx, opts.Scenario, opts.Limit)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read scenario history", err)
		}
		if formatter.JSON() {
			return formatter.Success(history)
		}
		writeScenarioHistory(formatter.Writer, opts.Scenario, history)
		return nil

	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to list runs", err)
		}
		if formatter.JSON() {
			return formatter.Success(runs)
		}
		writeRuns(formatter.Writer, runs)
		return nil
	}
}

const historyTimeLayout = "2006-01-02 15:04:05"

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeLayout)
}

func writeRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s  %d passed, %d failed, %d total\n",
			r.ID, formatStamp(r.StartedAt), r.Browser, r.Passed, r.Failed, r.Total)
	}
}

func writeRunDetail(w io.Writer, d RunDetail) {
	r := d.Run
	fmt.Fprintf(w, "Run %s\n", r.ID)
	fmt.Fprintf(w, "  started:  %s\n", formatStamp(r.StartedAt))
	fmt.Fprintf(w, "  finished: %s\n", formatStamp(r.FinishedAt))
	fmt.Fprintf(w, "  browser:  %s\n", r.Browser)
	fmt.Fprintf(w, "  base url: %s\n", r.BaseURL)
	fmt.Fprintf(w, "  data:     %s\n", r.DataFile)
	fmt.Fprintf(w, "  result:   %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)

	for _, sc := range d.Scenarios {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d. %s: %s", sc.Seq, sc.Name, sc.Status)
		if sc.OrderNumber != "" {
			fmt.Fprintf(w, " (order %s)", sc.OrderNumber)
		}
		fmt.Fprintln(w)
		if sc.Error != "" {
			fmt.Fprintf(w, "   %s: %s\n", sc.ErrorKind, sc.Error)
		}
		for _, cp := range sc.Checkpoints {
			fmt.Fprintf(w, "   %02d %-22s %s\n", cp.Seq, cp.Name, cp.Status)
		}
	}
}

func writeScenarioHistory(w io.Writer, name string, history []store.ScenarioRun) {
	if len(history) == 0 {
		fmt.Fprintf(w, "No history for scenario %q.\n", name)
		return
	}
	for _, h := range history {
		line := fmt.Sprintf("%s  %s  %s", h.Run.ID, formatStamp(h.Run.StartedAt), h.Scenario.Status)
		if h.Scenario.ErrorKind != "" {
			line += " " + h.Scenario.ErrorKind
		}
		if h.Scenario.OrderNumber != "" {
			line += " order " + h.Scenario.OrderNumber
		}
		fmt.Fprintln(w, line)
	}
}
