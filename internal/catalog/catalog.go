// Package catalog turns order rows into the ordered list of checkout
// scenarios a run executes.
package catalog

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/roach88/storefront-e2e/internal/dataset"
	"github.com/roach88/storefront-e2e/internal/pages"
)

// DuplicatePolicy decides what Build does when two rows share a scenario name.
type DuplicatePolicy int

const (
	// RejectDuplicates fails the build with a *DuplicateScenarioError.
	RejectDuplicates DuplicatePolicy = iota
	// DisambiguateDuplicates renames later occurrences "name#2", "name#3", ...
	// skipping any suffixed name another row already uses.
	DisambiguateDuplicates
)

// ParsePolicy maps a flag value to a policy.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectDuplicates, nil
	case "suffix", "disambiguate":
		return DisambiguateDuplicates, nil
	default:
		return RejectDuplicates, fmt.Errorf("unknown duplicate policy %q (want reject or suffix)", s)
	}
}

// Filter names, in the order filters are applied on the listing page.
const (
	FilterSize    = "SIZE"
	FilterColor   = "COLOR"
	FilterPattern = "Pattern"
	FilterClimate = "Climate"
	FilterStyle   = "Style"
)

// OrderScenario is one end-to-end checkout case.
type OrderScenario struct {
	Name         string         `json:"name"`
	Row          int            `json:"row"`
	CategoryPath []string       `json:"category_path"`
	Filters      []pages.Filter `json:"filters"`
	Size         string         `json:"size,omitempty"`
	Color        string         `json:"color,omitempty"`
	Quantity     int            `json:"quantity,omitempty"`
	DiscountCode string         `json:"discount_code,omitempty"`
}

// DuplicateScenarioError reports a scenario name used by more than one row.
type DuplicateScenarioError struct {
	Name string
	Rows []int
}

func (e *DuplicateScenarioError) Error() string {
	rows := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("duplicate scenario name %q (rows %s)", e.Name, strings.Join(rows, ", "))
}

// FromRow maps a single order row to a scenario. Blank category labels are
// dropped; filters keep their fixed order even when empty so the page
// can skip them.
func FromRow(r dataset.OrderRow) OrderScenario {
	var category []string
	for _, label := range []string{r.Category, r.SubCategory1, r.SubCategory2} {
		if label = strings.TrimSpace(label); label != "" {
			category = append(category, label)
		}
	}
	return OrderScenario{
		Name:         strings.TrimSpace(r.Scenario),
		Row:          r.Row,
		CategoryPath: category,
		Filters: []pages.Filter{
			{Name: FilterSize, Value: r.Size},
			{Name: FilterColor, Value: r.Color},
			{Name: FilterPattern, Value: r.Pattern},
			{Name: FilterClimate, Value: r.Climate},
			{Name: FilterStyle, Value: r.Style},
		},
		Size:         r.Size,
		Color:        r.Color,
		Quantity:     r.Quantity,
		DiscountCode: r.DiscountCode,
	}
}

// Build maps rows to scenarios in row order, applying policy to repeated
// names.
func Build(rows []dataset.OrderRow, policy DuplicatePolicy) ([]OrderScenario, error) {
	scenarios := make([]OrderScenario, 0, len(rows))
	firstRow := make(map[string]int, len(rows))
	raw := make(map[string]bool, len(rows))
	for _, r := range rows {
		raw[FromRow(r).Name] = true
	}
	emitted := make(map[string]bool, len(rows))
	next := make(map[string]int, len(rows))
	for _, r := range rows {
		s := FromRow(r)
		if _, dup := firstRow[s.Name]; !dup {
			firstRow[s.Name] = r.Row
		} else if policy == RejectDuplicates {
			return nil, &DuplicateScenarioError{Name: s.Name, Rows: []int{firstRow[s.Name], r.Row}}
		}
		if emitted[s.Name] {
			// suffixes skip every name a row spells out itself
			n := max(next[s.Name], 2)
			for raw[s.Name+"#"+strconv.Itoa(n)] || emitted[s.Name+"#"+strconv.Itoa(n)] {
				n++
			}
			next[s.Name] = n + 1
			s.Name = s.Name + "#" + strconv.Itoa(n)
		}
		emitted[s.Name] = true
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Filter keeps the scenarios whose name matches the glob pattern. An empty
// pattern keeps everything.
func Filter(scenarios []OrderScenario, pattern string) ([]OrderScenario, error) {
	if pattern == "" {
		return scenarios, nil
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}
	var out []OrderScenario
	for _, s := range scenarios {
		if ok, _ := path.Match(pattern, s.Name); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Names returns scenario names in catalog order.
func Names(scenarios []OrderScenario) []string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	return names
}
