package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/catalog"
	"github.com/roach88/storefront-e2e/internal/dataset"
	"github.com/roach88/storefront-e2e/internal/evidence"
	"github.com/roach88/storefront-e2e/internal/store"
)

// PageSource opens a fresh page for each scenario. *browser.Session
// implements it.
type PageSource interface {
	NewPage() (browser.Surface, error)
}

// History persists scenario verdicts. *store.Store implements it.
type History interface {
	RecordScenario(ctx context.Context, runID string, rec store.ScenarioRecord) error
}

// Suite runs a catalog sequentially, one fresh page per scenario.
type Suite struct {
	Pages    PageSource
	Customer dataset.Customer
	Options  Options

	// Sink receives Allure results. Nil keeps evidence in memory.
	Sink *evidence.Sink

	// History records verdicts under RunID. Nil skips persistence.
	History History
	RunID   string
}

// Summary is the outcome of a suite run.
type Summary struct {
	RunID       string    `json:"run_id,omitempty"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Interrupted bool      `json:"interrupted,omitempty"`
	Results     []*Result `json:"results"`
}

// AllPassed reports whether every scenario that ran passed.
func (s *Summary) AllPassed() bool {
	return s.Failed == 0 && !s.Interrupted
}

// Run executes scenarios in order. A failed scenario never stops the run;
// a cancelled ctx stops it before the next scenario. The returned error is
// reserved for history write failures.
func (s *Suite) Run(ctx context.Context, scenarios []catalog.OrderScenario) (*Summary, error) {
	logger := s.Options.Logger
	if logger == nil {
		logger = slog.New(discardHandler())
	}
	summary := &Summary{RunID: s.RunID, Results: []*Result{}}

	for i, sc := range scenarios {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logger.Warn("run interrupted", "remaining", len(scenarios)-i)
			break
		}

		result := s.runOne(ctx, sc, logger)
		summary.Results = append(summary.Results, result)
		summary.Total++
		if result.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}

		if s.History != nil {
			if err := s.History.RecordScenario(ctx, s.RunID, result.Record(i+1)); err != nil {
				return summary, fmt.Errorf("failed to record scenario %q: %w", sc.Name, err)
			}
		}
	}
	// cancelled while the last scenario ran
	if ctx.Err() != nil && !summary.Interrupted {
		summary.Interrupted = true
		logger.Warn("run interrupted", "remaining", 0)
	}
	return summary, nil
}

func (s *Suite) runOne(ctx context.Context, sc catalog.OrderScenario, logger *slog.Logger) *Result {
	var (
		rec      evidence.Recorder = evidence.NewMemory()
		scenario *evidence.Scenario
	)
	if s.Sink != nil {
		scenario = s.Sink.StartScenario(sc.Name, "checkout."+sc.Name, Labels(sc), Parameters(sc))
		rec = scenario
	}

	var result *Result
	page, err := s.Pages.NewPage()
	if err != nil {
		logger.Error("failed to open page", "scenario", sc.Name, "error", err)
		result = pageFailure(sc.Name, err)
		rec.Attach("Failure Details", evidence.MediaText, []byte(result.Error))
	} else {
		result = Run(ctx, sc, s.Customer, page, rec, s.Options)
		if err := page.Close(); err != nil {
			logger.Warn("failed to close page", "scenario", sc.Name, "error", err)
		}
	}

	if scenario != nil {
		if _, err := scenario.Finish(result.Status(), result.Err()); err != nil {
			logger.Warn("failed to write scenario result", "scenario", sc.Name, "error", err)
		}
	}
	return result
}

// pageFailure is the result of a scenario whose page never opened.
func pageFailure(name string, err error) *Result {
	err = fmt.Errorf("failed to open page: %w", err)
	r := &Result{Scenario: name}
	for i, cp := range checkpointNames {
		c := Checkpoint{Seq: i + 1, Name: cp, Status: Skipped}
		if i == 0 {
			c.Status = Failed
			c.Kind = kindOf(err)
			c.Error = err.Error()
		}
		r.Checkpoints = append(r.Checkpoints, c)
	}
	r.fail(OpenHome, err)
	return r
}

// checkpointNames lists every checkpoint in execution order.
var checkpointNames = []string{
	OpenHome, NavigateCategory, ApplyFilters, OpenFirstProduct, CustomizeProduct,
	AddToCart, OpenMiniCart, ProceedToCheckout, FillShippingAddress,
	ShippingMethods, ContinueToPayment, ApplyDiscount, PlaceOrder,
}

// Labels are the report labels of a scenario.
func Labels(sc catalog.OrderScenario) []evidence.Label {
	labels := []evidence.Label{
		{Name: "suite", Value: "Checkout"},
		{Name: "feature", Value: "Place order"},
		{Name: "story", Value: sc.Name},
		{Name: "severity", Value: "critical"},
	}
	if len(sc.CategoryPath) > 0 {
		labels = append(labels, evidence.Label{Name: "tag", Value: sc.CategoryPath[0]})
	}
	return labels
}

// Parameters are the report parameters of a scenario: its category path,
// the filters that are set, quantity and discount code.
func Parameters(sc catalog.OrderScenario) []evidence.Parameter {
	params := []evidence.Parameter{
		{Name: "category", Value: strings.Join(sc.CategoryPath, " > ")},
	}
	for _, f := range sc.Filters {
		if strings.TrimSpace(f.Value) != "" {
			params = append(params, evidence.Parameter{Name: f.Name, Value: f.Value})
		}
	}
	if sc.Quantity > 0 {
		params = append(params, evidence.Parameter{Name: "quantity", Value: strconv.Itoa(sc.Quantity)})
	}
	if sc.DiscountCode != "" {
		params = append(params, evidence.Parameter{Name: "discount code", Value: sc.DiscountCode})
	}
	return params
}
