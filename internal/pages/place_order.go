package pages

import (
	"strconv"
	"strings"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
)

// PlaceOrder is the review step's place-order control and the success page
// it leads to.
type PlaceOrder struct {
	*Driver
}

// NewPlaceOrder returns the place-order page over d.
func NewPlaceOrder(d *Driver) *PlaceOrder {
	return &PlaceOrder{Driver: d.with("place_order")}
}

// PlaceAndCapture places the order and returns the confirmation number.
// Every failure is logged and attached as evidence, and reported as
// ("", false); the caller decides whether that fails the scenario.
func (p *PlaceOrder) PlaceAndCapture() (string, bool) {
	var number string
	err := p.rec.Step("Placing the order and capturing the confirmation number", func() error {
		n, err := p.place()
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if err != nil {
		p.logger.Error("failed to place order or retrieve confirmation", "error", err)
		p.rec.Attach("Order Placement Error", evidence.MediaText, []byte(err.Error()))
		return "", false
	}
	return number, true
}

func (p *PlaceOrder) place() (string, error) {
	err := p.rec.Step("Clicking the 'Place Order' button", func() error {
		if err := p.surface.Click(PlaceOrderButton, p.timeouts.ElementWait); err != nil {
			return err
		}
		p.logger.Info("clicked place order")
		return nil
	})
	if err != nil {
		return "", err
	}

	err = p.rec.Step("Waiting for success page to load", func() error {
		if err := p.surface.WaitForURL(SuccessURLPattern, p.timeouts.Success); err != nil {
			return err
		}
		p.logger.Info("redirected to order success page")
		return nil
	})
	if err != nil {
		return "", err
	}

	err = p.rec.Step("Verifying thank-you message", func() error {
		msg, err := p.readText(ThankYouMessage)
		if err != nil {
			return err
		}
		if !strings.Contains(msg, ThankYouPhrase) {
			return &browser.AssertionError{
				Check:    "thank-you message",
				Expected: strconv.Quote(ThankYouPhrase),
				Actual:   strconv.Quote(msg),
			}
		}
		p.logger.Info("confirmation message", "message", msg)
		return nil
	})
	if err != nil {
		return "", err
	}

	var number string
	err = p.rec.Step("Extracting order number", func() error {
		text, err := p.readText(OrderNumber)
		if err != nil {
			return err
		}
		number = strings.TrimSpace(text)
		if number == "" {
			return &browser.AssertionError{Check: "order number", Expected: "non-empty text", Actual: `""`}
		}
		p.logger.Info("order number", "order_number", number)
		p.rec.Attach("Order Number", evidence.MediaText, []byte(number))
		return nil
	})
	return number, err
}

func (p *PlaceOrder) readText(selector string) (string, error) {
	if err := p.surface.WaitFor(selector, browser.StateVisible, p.timeouts.ElementWait); err != nil {
		return "", err
	}
	return p.surface.Text(selector, p.timeouts.ElementWait)
}
