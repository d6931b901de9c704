package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront-e2e/internal/dataset"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	CatalogOptions
}

// ValidationIssue is one problem found by validate.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Sheet   string `json:"sheet,omitempty"`
	Row     int    `json:"row,omitempty"`
	Column  string `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Config    string            `json:"config"`
	DataFile  string            `json:"data_file,omitempty"`
	Scenarios int               `json:"scenarios"`
	Errors    []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check settings and test data without running",
		Long: `Check the settings file against its schema and the workbook against
its sheet schemas, then build the scenario catalog. Nothing is launched.

Exit codes:
  0 - Settings and workbook are valid
  2 - A settings, workbook or catalog problem was found`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	addCatalogFlags(cmd, &opts.CatalogOptions)
	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	result := ValidationResult{Config: opts.Config, DataFile: opts.DataFile}

	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		result.Errors = append(result.Errors, issueOf(err))
	} else if result.DataFile == "" {
		result.DataFile = settings.Reporting.DataFile
	}
	formatter.VerboseLog("Checked settings %s", opts.Config)

	if result.DataFile != "" {
		scenarios, _, _, err := loadCatalog(result.DataFile, opts.CatalogOptions)
		if err != nil {
			result.Errors = append(result.Errors, issueOf(err))
		} else {
			result.Scenarios = len(scenarios)
		}
		formatter.VerboseLog("Checked workbook %s", result.DataFile)
	}

	result.Valid = len(result.Errors) == 0
	return outputValidation(formatter, result)
}

func issueOf(err error) ValidationIssue {
	issue := ValidationIssue{Code: ErrorCode(err), Message: err.Error()}
	var (
		se *dataset.SchemaError
		ce *dataset.ConfigError
	)
	switch {
	case errors.As(err, &se):
		issue.Message, issue.Sheet, issue.Row, issue.Column = se.Message, se.Sheet, se.Row, se.Column
	case errors.As(err, &ce):
		issue.Sheet = ce.Sheet
	}
	return issue
}

func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Valid {
			fmt.Fprintf(w, "✓ Settings valid: %s\n", result.Config)
			fmt.Fprintf(w, "✓ Workbook valid: %s (%d scenario(s))\n", result.DataFile, result.Scenarios)
		} else {
			fmt.Fprintln(w, "✗ Validation failed")
			fmt.Fprintln(w)
			for _, issue := range result.Errors {
				if issue.Sheet != "" && issue.Row > 0 {
					fmt.Fprintf(w, "%s row %d\n", issue.Sheet, issue.Row)
				}
				fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitCommandError, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}
