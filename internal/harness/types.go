package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/storefront-e2e/internal/evidence"
	"github.com/roach88/storefront-e2e/internal/pages"
	"github.com/roach88/storefront-e2e/internal/store"
)

// Checkpoint names, in execution order.
const (
	OpenHome            = "open_home"
	NavigateCategory    = "navigate_category"
	ApplyFilters        = "apply_filters"
	OpenFirstProduct    = "open_first_product"
	CustomizeProduct    = "customize_product"
	AddToCart           = "add_to_cart"
	OpenMiniCart        = "open_mini_cart"
	ProceedToCheckout   = "proceed_to_checkout"
	FillShippingAddress = "fill_shipping_address"
	ShippingMethods     = "shipping_methods"
	ContinueToPayment   = "continue_to_payment"
	ApplyDiscount       = "apply_discount"
	PlaceOrder          = "place_order"
)

// CheckpointStatus is the outcome of one checkpoint.
type CheckpointStatus string

const (
	Passed  CheckpointStatus = "passed"
	Failed  CheckpointStatus = "failed"
	Skipped CheckpointStatus = "skipped"
)

// Error kinds reported alongside browser.Kind values.
const (
	KindValidation = "VALIDATION"
	KindCancelled  = "CANCELLED"
)

// Checkpoint is one entry of a scenario's trace.
type Checkpoint struct {
	Seq    int              `json:"seq"`
	Name   string           `json:"name"`
	Status CheckpointStatus `json:"status"`
	Kind   string           `json:"kind,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario        string                      `json:"scenario"`
	Pass            bool                        `json:"pass"`
	Checkpoints     []Checkpoint                `json:"checkpoints"`
	FailedAt        string                      `json:"failed_at,omitempty"`
	Error           string                      `json:"error,omitempty"`
	ErrorKind       string                      `json:"error_kind,omitempty"`
	Discount        *pages.DiscountVerification `json:"discount,omitempty"`
	ShippingMethods []pages.ShippingMethod      `json:"shipping_methods,omitempty"`
	OrderNumber     string                      `json:"order_number,omitempty"`

	err error
}

// Err returns the error that failed the scenario, or nil.
func (r *Result) Err() error {
	return r.err
}

// fail records err against the checkpoint named at.
func (r *Result) fail(at string, err error) {
	r.Pass = false
	r.FailedAt = at
	r.err = err
	r.Error = err.Error()
	r.ErrorKind = kindOf(err)
}

// Status maps the result to a report status.
func (r *Result) Status() evidence.Status {
	if r.Pass {
		return evidence.StatusPassed
	}
	if r.err == nil {
		return evidence.StatusBroken
	}
	return evidence.StatusOf(r.err)
}

// Record converts the result to its stored form. seq is the scenario's
// position in the run.
func (r *Result) Record(seq int) store.ScenarioRecord {
	rec := store.ScenarioRecord{
		Seq:         seq,
		Name:        r.Scenario,
		Status:      store.StatusPassed,
		ErrorKind:   r.ErrorKind,
		Error:       r.Error,
		OrderNumber: r.OrderNumber,
	}
	if !r.Pass {
		rec.Status = store.StatusFailed
	}
	if r.Discount != nil {
		rec.Discount = r.Discount.Summary()
	}
	for _, m := range r.ShippingMethods {
		rec.ShippingMethods = append(rec.ShippingMethods, m.Title)
	}
	for _, cp := range r.Checkpoints {
		rec.Checkpoints = append(rec.Checkpoints, store.CheckpointRecord{
			Seq:       cp.Seq,
			Name:      cp.Name,
			Status:    string(cp.Status),
			ErrorKind: cp.Kind,
			Error:     cp.Error,
		})
	}
	return rec
}

// Trace renders the checkpoint sequence as stable text for golden
// comparison. Error messages are left out; kinds are kept.
func (r *Result) Trace() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	for _, cp := range r.Checkpoints {
		fmt.Fprintf(&b, "%02d %s %s", cp.Seq, cp.Name, cp.Status)
		if cp.Kind != "" {
			fmt.Fprintf(&b, " %s", cp.Kind)
		}
		b.WriteString("\n")
	}
	if r.Pass {
		b.WriteString("result: passed\n")
	} else {
		fmt.Fprintf(&b, "result: failed at %s\n", r.FailedAt)
	}
	if r.OrderNumber != "" {
		fmt.Fprintf(&b, "order_number: %s\n", r.OrderNumber)
	}
	return []byte(b.String())
}
