package pages

import (
	"log/slog"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
)

// Set holds one scenario's page objects. All of them share a single page
// and evidence recorder.
type Set struct {
	Base       *Driver
	Home       *Home
	Product    *Product
	Checkout   *Checkout
	PlaceOrder *PlaceOrder
}

var (
	_ Capabilities = (*Driver)(nil)
	_ Capabilities = (*Home)(nil)
	_ Capabilities = (*Product)(nil)
	_ Capabilities = (*Checkout)(nil)
	_ Capabilities = (*PlaceOrder)(nil)
)

// NewSet builds the page objects for one scenario over surface.
func NewSet(surface browser.Surface, rec evidence.Recorder, logger *slog.Logger, timeouts Timeouts) *Set {
	d := NewDriver(surface, rec, logger, timeouts)
	return &Set{
		Base:       d,
		Home:       NewHome(d),
		Product:    NewProduct(d),
		Checkout:   NewCheckout(d),
		PlaceOrder: NewPlaceOrder(d),
	}
}
