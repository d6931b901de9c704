package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/catalog"
	"github.com/roach88/storefront-e2e/internal/dataset"
	"github.com/roach88/storefront-e2e/internal/evidence"
	"github.com/roach88/storefront-e2e/internal/pages"
)

// Options configure a scenario run.
type Options struct {
	BaseURL  string
	Timeouts pages.Timeouts

	// ScreenshotsDir, when set, also receives <scenario>_failure.png files.
	ScreenshotsDir string

	// Logger receives scenario logs. Nil discards them.
	Logger *slog.Logger
}

// checkpoint is one fixed stage of the workflow.
type checkpoint struct {
	name  string
	title string
	run   func() error
}

// Run drives one scenario through the checkout workflow on surface and
// returns its result. Run never returns a nil Result; failures are carried
// in it. ctx is checked between checkpoints.
func Run(ctx context.Context, sc catalog.OrderScenario, customer dataset.Customer, surface browser.Surface, rec evidence.Recorder, opts Options) *Result {
	if rec == nil {
		rec = evidence.NewMemory()
	}
	inner := discardHandler()
	if opts.Logger != nil {
		inner = opts.Logger.Handler()
	}
	scope := OpenLogScope(inner, surface, rec)
	defer scope.Close()
	logger := slog.New(scope).With("scenario", sc.Name)

	set := pages.NewSet(surface, rec, logger, opts.Timeouts)
	result := &Result{Scenario: sc.Name, Pass: true}

	steps := workflow(sc, customer, set, rec, opts, result)
	logger.Info("scenario started", "checkpoints", len(steps))

	for i, step := range steps {
		cp := Checkpoint{Seq: i + 1, Name: step.name}
		if !result.Pass {
			cp.Status = Skipped
			result.Checkpoints = append(result.Checkpoints, cp)
			continue
		}

		err := ctx.Err()
		if err != nil {
			err = fmt.Errorf("interrupted before %s: %w", step.name, err)
		} else {
			err = rec.Step(step.title, step.run)
		}

		if err != nil {
			cp.Status = Failed
			cp.Kind = kindOf(err)
			cp.Error = err.Error()
			result.fail(step.name, err)
			logger.Warn("checkpoint failed", "checkpoint", step.name, "kind", cp.Kind, "error", err)
		} else {
			cp.Status = Passed
			logger.Debug("checkpoint passed", "checkpoint", step.name)
		}
		result.Checkpoints = append(result.Checkpoints, cp)
	}

	if !result.Pass {
		captureFailure(sc.Name, surface, rec, opts.ScreenshotsDir, result, logger)
	}
	logger.Info("scenario finished", "pass", result.Pass, "failed_at", result.FailedAt)
	return result
}

// workflow binds the fixed checkpoint order to one scenario.
func workflow(sc catalog.OrderScenario, customer dataset.Customer, set *pages.Set, rec evidence.Recorder, opts Options, result *Result) []checkpoint {
	return []checkpoint{
		{OpenHome, "Open home page", func() error {
			return set.Home.Navigate(opts.BaseURL)
		}},
		{NavigateCategory, strings.TrimSpace("Navigate to category " + strings.Join(sc.CategoryPath, " > ")), func() error {
			return set.Home.NavigateToCategory(sc.CategoryPath)
		}},
		{ApplyFilters, "Apply filters", func() error {
			return set.Product.ApplyFilters(sc.Filters)
		}},
		{OpenFirstProduct, "Open first product", func() error {
			return set.Product.ClickFirstVisibleProduct()
		}},
		{CustomizeProduct, "Customize product", func() error {
			return set.Product.CustomizeSelection(sc.Size, sc.Color, sc.Quantity)
		}},
		{AddToCart, "Add to cart", func() error {
			_, err := set.Product.AddToCartAndVerify()
			return err
		}},
		{OpenMiniCart, "Open mini cart", func() error {
			return set.Product.OpenMiniCart()
		}},
		{ProceedToCheckout, "Proceed to checkout", func() error {
			return set.Product.ProceedToCheckout()
		}},
		{FillShippingAddress, "Fill shipping address", func() error {
			return set.Checkout.FillShippingAddress(AddressOf(customer))
		}},
		{ShippingMethods, "Select shipping method", func() error {
			methods := set.Checkout.ShippingMethods()
			result.ShippingMethods = methods
			if len(methods) == 0 {
				return &browser.AssertionError{Check: "shipping methods", Expected: "at least one method", Actual: "none"}
			}
			if data, err := json.MarshalIndent(methods, "", "  "); err == nil {
				rec.Attach("Shipping Methods", evidence.MediaJSON, data)
			}
			return nil
		}},
		{ContinueToPayment, "Continue to payment", func() error {
			return set.Checkout.Next()
		}},
		{ApplyDiscount, "Apply discount code", func() error {
			v, err := set.Checkout.ApplyAndVerifyDiscount(sc.DiscountCode)
			if err != nil {
				return err
			}
			if v == nil {
				return &browser.AssertionError{Check: "discount verification", Expected: "a result", Actual: "none"}
			}
			result.Discount = v
			rec.Attach("Discount Verification", evidence.MediaText, []byte(v.Summary()))
			return nil
		}},
		{PlaceOrder, "Place order", func() error {
			number, ok := set.PlaceOrder.PlaceAndCapture()
			if !ok || number == "" {
				return &browser.AssertionError{Check: "order number", Expected: "a non-empty order number", Actual: "none"}
			}
			result.OrderNumber = number
			return nil
		}},
	}
}

// AddressOf maps the customer profile to the checkout address form.
func AddressOf(c dataset.Customer) pages.Address {
	return pages.Address{
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Street:    c.Street,
		City:      c.City,
		ZipCode:   c.ZipCode,
		Country:   c.Country,
		Phone:     c.Phone,
	}
}

// FailureScreenshotName is the attachment and file name of a scenario's
// failure screenshot.
func FailureScreenshotName(scenario string) string {
	return safeName(scenario) + "_failure.png"
}

// captureFailure attaches the failure screenshot and error text. Capture
// problems are logged and never change the verdict.
func captureFailure(name string, surface browser.Surface, rec evidence.Recorder, dir string, result *Result, logger *slog.Logger) {
	rec.Attach("Failure Details", evidence.MediaText, []byte(fmt.Sprintf("%s at %s: %s", result.ErrorKind, result.FailedAt, result.Error)))

	data, err := surface.Screenshot(true)
	if err != nil {
		logger.Warn("failed to capture failure screenshot", "error", err)
		return
	}
	file := FailureScreenshotName(name)
	rec.Attach(file, evidence.MediaPNG, data)

	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("failed to create screenshots directory", "dir", dir, "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0644); err != nil {
		logger.Warn("failed to save failure screenshot", "file", file, "error", err)
	}
}

func kindOf(err error) string {
	var ve *pages.ValidationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return string(browser.KindOf(err))
	}
}

// safeName keeps letters, digits, '-' and '_'; everything else becomes '_'.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
