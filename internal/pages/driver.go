// Package pages models the storefront checkout workflow as page objects.
//
// Every page type embeds *Driver, which supplies the shared capabilities
// (navigate, wait, click, fill, hover, read) over a browser.Surface. Pages are
// composed, never derived: a page adds domain operations on top of the
// capability set and nothing else.
//
// Operations follow one contract: wait for the precondition element, perform
// the interaction, and on failure log with context and return the error.
// Advisory helpers (consent popup, ad modal, loader) log and never fail.
// Two operations report failure as an absent result instead of an error:
// PlaceOrder.PlaceAndCapture returns no order, and Checkout.ShippingMethods
// returns an empty list. Callers that need shipping options must treat an
// empty list as a failed discovery.
package pages

import (
	"io"
	"log/slog"
	"time"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
)

// Timeouts are the wait budgets page objects use.
type Timeouts struct {
	PageLoad     time.Duration // Navigate
	ElementWait  time.Duration // default element wait
	Menu         time.Duration // category menu entries
	Popup        time.Duration // optional consent and ad dialogs
	Loader       time.Duration // loading mask disappearance
	LoaderAppear time.Duration // loading mask appearance after "Next"
	DiscountRow  time.Duration // discount totals row after applying a coupon
	Success      time.Duration // redirect to the order success page

	// Settle pauses give the storefront time to re-render. Zero disables.
	FilterSettle   time.Duration // before each filter
	ResultsSettle  time.Duration // after each filter
	ProductsSettle time.Duration // before picking the first product
	AddressSettle  time.Duration // after filling the shipping address
}

// DefaultTimeouts returns the budgets used against the live storefront.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		PageLoad:       30 * time.Second,
		ElementWait:    10 * time.Second,
		Menu:           5 * time.Second,
		Popup:          3 * time.Second,
		Loader:         10 * time.Second,
		LoaderAppear:   2 * time.Second,
		DiscountRow:    8 * time.Second,
		Success:        30 * time.Second,
		FilterSettle:   500 * time.Millisecond,
		ResultsSettle:  time.Second,
		ProductsSettle: 2 * time.Second,
		AddressSettle:  10 * time.Second,
	}
}

// WithoutSettle returns a copy with every settle pause disabled.
func (t Timeouts) WithoutSettle() Timeouts {
	t.FilterSettle = 0
	t.ResultsSettle = 0
	t.ProductsSettle = 0
	t.AddressSettle = 0
	return t
}

// Capabilities is the shared behavior every page exposes.
type Capabilities interface {
	Navigate(url string) error
	Click(selector string) error
	Fill(selector, value string) error
	Hover(selector string) error
	Text(selector string) (string, error)
	WaitFor(selector string, state browser.State, timeout time.Duration) error
	IsVisible(selector string) bool
}

// Driver implements Capabilities over a browser.Surface.
type Driver struct {
	surface  browser.Surface
	rec      evidence.Recorder
	logger   *slog.Logger
	timeouts Timeouts
	sleep    func(time.Duration)
}

// NewDriver wires a surface to an evidence recorder and a logger.
// A nil logger discards output.
func NewDriver(surface browser.Surface, rec evidence.Recorder, logger *slog.Logger, timeouts Timeouts) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if rec == nil {
		rec = evidence.NewMemory()
	}
	return &Driver{
		surface:  surface,
		rec:      rec,
		logger:   logger,
		timeouts: timeouts,
		sleep:    time.Sleep,
	}
}

// Surface returns the underlying automation surface.
func (d *Driver) Surface() browser.Surface {
	return d.surface
}

// Timeouts returns the driver's wait budgets.
func (d *Driver) Timeouts() Timeouts {
	return d.timeouts
}

func (d *Driver) with(page string) *Driver {
	c := *d
	c.logger = d.logger.With("page", page)
	return &c
}

func (d *Driver) settle(dur time.Duration) {
	if dur > 0 {
		d.sleep(dur)
	}
}

// Navigate loads url and clears any popups covering the page.
func (d *Driver) Navigate(url string) error {
	return d.rec.Step("Navigating to "+url, func() error {
		if err := d.surface.Goto(url, d.timeouts.PageLoad); err != nil {
			if browser.IsTimeout(err) {
				d.logger.Error("navigation timeout", "url", url, "error", err)
			} else {
				d.logger.Error("navigation failed", "url", url, "error", err)
			}
			return err
		}
		d.logger.Info("navigated", "url", url)
		d.SetupPage()
		return nil
	})
}

// Click waits for selector to be visible and clicks it.
func (d *Driver) Click(selector string) error {
	return d.rec.Step("Clicking element: "+selector, func() error {
		if err := d.surface.WaitFor(selector, browser.StateVisible, d.timeouts.ElementWait); err != nil {
			d.logger.Error("click failed", "selector", selector, "error", err)
			return err
		}
		if err := d.surface.Click(selector, d.timeouts.ElementWait); err != nil {
			d.logger.Error("click failed", "selector", selector, "error", err)
			return err
		}
		d.logger.Info("clicked", "selector", selector)
		return nil
	})
}

// Fill waits for selector to be visible and replaces its value.
func (d *Driver) Fill(selector, value string) error {
	return d.rec.Step("Filling "+selector+" with '"+value+"'", func() error {
		if err := d.surface.WaitFor(selector, browser.StateVisible, d.timeouts.ElementWait); err != nil {
			d.logger.Error("fill failed", "selector", selector, "error", err)
			return err
		}
		if err := d.surface.Fill(selector, value, d.timeouts.ElementWait); err != nil {
			d.logger.Error("fill failed", "selector", selector, "error", err)
			return err
		}
		d.logger.Info("filled", "selector", selector, "value", value)
		return nil
	})
}

// Text waits for selector to be visible and returns its inner text.
func (d *Driver) Text(selector string) (string, error) {
	var text string
	err := d.rec.Step("Getting text from "+selector, func() error {
		if err := d.surface.WaitFor(selector, browser.StateVisible, d.timeouts.ElementWait); err != nil {
			d.logger.Error("get text failed", "selector", selector, "error", err)
			return err
		}
		t, err := d.surface.Text(selector, d.timeouts.ElementWait)
		if err != nil {
			d.logger.Error("get text failed", "selector", selector, "error", err)
			return err
		}
		text = t
		d.logger.Info("read text", "selector", selector, "text", text)
		return nil
	})
	return text, err
}

// SelectOption waits for a <select> and picks the option with label.
func (d *Driver) SelectOption(selector, label string) error {
	return d.rec.Step("Selecting '"+label+"' in "+selector, func() error {
		if err := d.surface.WaitFor(selector, browser.StateVisible, d.timeouts.ElementWait); err != nil {
			d.logger.Error("select failed", "selector", selector, "label", label, "error", err)
			return err
		}
		if err := d.surface.SelectOption(selector, label, d.timeouts.ElementWait); err != nil {
			d.logger.Error("select failed", "selector", selector, "label", label, "error", err)
			return err
		}
		d.logger.Info("selected option", "selector", selector, "label", label)
		return nil
	})
}

// Attribute returns the named attribute of the first match.
func (d *Driver) Attribute(selector, name string) (string, error) {
	v, err := d.surface.Attribute(selector, name, d.timeouts.ElementWait)
	if err != nil {
		d.logger.Error("get attribute failed", "selector", selector, "attribute", name, "error", err)
		return "", err
	}
	return v, nil
}

// IsVisible reports visibility; a failing probe counts as not visible.
func (d *Driver) IsVisible(selector string) bool {
	visible, err := d.surface.IsVisible(selector)
	if err != nil {
		d.logger.Warn("element not visible", "selector", selector, "error", err)
		return false
	}
	return visible
}

// WaitFor blocks until selector reaches state.
func (d *Driver) WaitFor(selector string, state browser.State, timeout time.Duration) error {
	return d.rec.Step("Waiting for element: "+selector+" to be "+string(state), func() error {
		if err := d.surface.WaitFor(selector, state, timeout); err != nil {
			d.logger.Error("wait failed", "selector", selector, "state", state, "error", err)
			return err
		}
		d.logger.Info("element reached state", "selector", selector, "state", state)
		return nil
	})
}

// Hover waits for selector to be visible and hovers over it.
func (d *Driver) Hover(selector string) error {
	return d.rec.Step("Hovering over element: "+selector, func() error {
		if err := d.surface.WaitFor(selector, browser.StateVisible, d.timeouts.ElementWait); err != nil {
			d.logger.Error("hover failed", "selector", selector, "error", err)
			return err
		}
		if err := d.surface.Hover(selector, d.timeouts.ElementWait); err != nil {
			d.logger.Error("hover failed", "selector", selector, "error", err)
			return err
		}
		d.logger.Info("hovered", "selector", selector)
		return nil
	})
}

// PressKey sends a key press to selector once it is attached.
func (d *Driver) PressKey(selector, key string) error {
	return d.rec.Step("Pressing '"+key+"' on "+selector, func() error {
		if err := d.surface.WaitFor(selector, browser.StateAttached, d.timeouts.Menu); err != nil {
			d.logger.Error("key press failed", "selector", selector, "key", key, "error", err)
			return err
		}
		if err := d.surface.Press(selector, key, d.timeouts.Menu); err != nil {
			d.logger.Error("key press failed", "selector", selector, "key", key, "error", err)
			return err
		}
		d.logger.Info("pressed key", "selector", selector, "key", key)
		return nil
	})
}

// ScrollIntoView scrolls selector into the viewport.
func (d *Driver) ScrollIntoView(selector string) error {
	return d.rec.Step("Scrolling "+selector+" into view", func() error {
		if err := d.surface.WaitFor(selector, browser.StateVisible, d.timeouts.ElementWait); err != nil {
			d.logger.Error("scroll into view failed", "selector", selector, "error", err)
			return err
		}
		if err := d.surface.ScrollIntoView(selector, d.timeouts.ElementWait); err != nil {
			d.logger.Error("scroll into view failed", "selector", selector, "error", err)
			return err
		}
		return nil
	})
}

// Count returns the number of elements matching selector.
func (d *Driver) Count(selector string) (int, error) {
	n, err := d.surface.Count(selector)
	if err != nil {
		d.logger.Error("count failed", "selector", selector, "error", err)
		return 0, err
	}
	d.logger.Info("counted elements", "selector", selector, "count", n)
	return n, nil
}

// WaitForURLContains blocks until the page URL contains fragment.
func (d *Driver) WaitForURLContains(fragment string, timeout time.Duration) error {
	return d.rec.Step("Waiting for URL to contain '"+fragment+"'", func() error {
		if err := d.surface.WaitForURL("**"+fragment+"**", timeout); err != nil {
			d.logger.Error("url wait failed", "fragment", fragment, "error", err)
			return err
		}
		d.logger.Info("url matched", "fragment", fragment)
		return nil
	})
}

// TakeScreenshot captures the full page and attaches it as name.
func (d *Driver) TakeScreenshot(name string) error {
	return d.rec.Step("Taking screenshot: "+name, func() error {
		data, err := d.surface.Screenshot(true)
		if err != nil {
			d.logger.Error("screenshot failed", "name", name, "error", err)
			return err
		}
		d.rec.Attach(name, evidence.MediaPNG, data)
		d.logger.Info("screenshot captured", "name", name)
		return nil
	})
}

// HandleConsentPopup dismisses the cookie consent dialog when present.
func (d *Driver) HandleConsentPopup() {
	if err := d.surface.ClickRole("button", ConsentButton, d.timeouts.Popup); err != nil {
		d.logger.Debug("no consent popup appeared", "error", err)
		return
	}
	d.logger.Info("consent popup dismissed")
}

// DismissModals closes an ad or modal dialog when present.
func (d *Driver) DismissModals() {
	if err := d.surface.ClickRole("button", CloseButton, d.timeouts.Popup); err != nil {
		d.logger.Debug("no ad or modal to dismiss", "error", err)
		return
	}
	d.logger.Info("ad or modal dismissed")
}

// SetupPage clears popups right after navigation.
func (d *Driver) SetupPage() {
	d.HandleConsentPopup()
	d.DismissModals()
}

// WaitForLoader waits for the storefront loading mask to disappear.
// A mask that lingers is logged, not failed.
func (d *Driver) WaitForLoader() {
	d.logger.Debug("waiting for loader to disappear")
	if err := d.surface.WaitFor(LoadingMask, browser.StateHidden, d.timeouts.Loader); err != nil {
		d.logger.Warn("loader may not have disappeared in time", "error", err)
		return
	}
	d.logger.Debug("loader disappeared")
}
