package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront-e2e/internal/catalog"
)

// ScenariosOptions holds flags for the scenarios command.
type ScenariosOptions struct {
	*RootOptions
	CatalogOptions
}

// ScenarioList is the JSON payload of the scenarios command.
type ScenarioList struct {
	DataFile  string                  `json:"data_file"`
	Total     int                     `json:"total"`
	Scenarios []catalog.OrderScenario `json:"scenarios"`
}

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenariosOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios a run would execute",
		Long: `List the scenarios built from the workbook, in run order, without
launching a browser. Accepts the same --data, --filter and --duplicates
flags as run.

Examples:
  storefront-e2e scenarios
  storefront-e2e scenarios --filter "*jacket*" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListScenarios(opts, cmd)
		},
	}

	addCatalogFlags(cmd, &opts.CatalogOptions)
	return cmd
}

func runListScenarios(opts *ScenariosOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	in, err := loadInputs(opts.RootOptions, opts.CatalogOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to load scenarios", err)
	}

	list := ScenarioList{DataFile: in.DataFile, Total: in.Total, Scenarios: in.Scenarios}
	if list.Scenarios == nil {
		list.Scenarios = []catalog.OrderScenario{}
	}
	if formatter.JSON() {
		return formatter.Success(list)
	}

	w := formatter.Writer
	if len(list.Scenarios) == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}
	for _, sc := range list.Scenarios {
		fmt.Fprintf(w, "%4d  %s  [%s]%s\n", sc.Row, sc.Name, strings.Join(sc.CategoryPath, " > "), describeChoices(sc))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d scenario(s) from %s\n", len(list.Scenarios), list.Total, list.DataFile)
	return nil
}

// describeChoices renders the set filters, quantity and discount code.
func describeChoices(sc catalog.OrderScenario) string {
	var parts []string
	for _, f := range sc.Filters {
		if v := strings.TrimSpace(f.Value); v != "" {
			parts = append(parts, f.Name+"="+v)
		}
	}
	if sc.Quantity > 0 {
		parts = append(parts, fmt.Sprintf("qty=%d", sc.Quantity))
	}
	if sc.DiscountCode != "" {
		parts = append(parts, "code="+sc.DiscountCode)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
