package testutil

import (
	"github.com/roach88/storefront-e2e/internal/pages"
)

// Happy-path storefront content served by NewStorefront.
const (
	StoreProduct     = "Cassius Sparring Tank"
	StoreOrderNumber = "000012345"
	StoreSubtotal    = "$64.00"
	StoreDiscount    = "-$12.80"
	StoreShipping    = "$10.00"
	StoreGrandTotal  = "$61.20"
)

// StoreShippingMethods are the rows NewStorefront offers at checkout.
var StoreShippingMethods = []pages.ShippingMethod{
	{Title: "Flat Rate", Price: "$10.00", Value: "flatrate_flatrate"},
	{Title: "Best Way", Price: "$5.00", Value: "tablerate_bestway"},
}

// NewStorefront returns a FakeSurface scripted so the whole checkout flow
// succeeds: a product to add, two shipping methods, consistent totals and
// an order confirmation.
func NewStorefront() *FakeSurface {
	f := NewFakeSurface()
	f.Roles["button "+pages.ConsentButton] = true

	f.Counts[pages.ProductLinks] = 12
	f.Texts[pages.ProductName] = StoreProduct
	f.Texts[pages.SuccessMessage] = "You added " + StoreProduct + " to your shopping cart."

	SetShippingMethods(f, StoreShippingMethods)

	f.Texts[pages.SubtotalPrice] = StoreSubtotal
	f.Texts[pages.DiscountPrice] = StoreDiscount
	f.Texts[pages.ShippingPrice] = StoreShipping
	f.Texts[pages.GrandTotalPrice] = StoreGrandTotal

	f.Texts[pages.ThankYouMessage] = pages.ThankYouPhrase
	f.Texts[pages.OrderNumber] = StoreOrderNumber
	return f
}

// SetShippingMethods scripts the shipping method table with methods.
func SetShippingMethods(f *FakeSurface, methods []pages.ShippingMethod) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Counts[pages.ShippingMethodRows] = len(methods)
	for i, m := range methods {
		f.Texts[pages.ShippingRowTitle(i)] = m.Title
		f.Texts[pages.ShippingRowPrice(i)] = m.Price
		f.Attributes[pages.ShippingRowRadio(i)+"@value"] = m.Value
	}
}

// SetTotals scripts the four order totals.
func SetTotals(f *FakeSurface, subtotal, discount, shipping, total string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Texts[pages.SubtotalPrice] = subtotal
	f.Texts[pages.DiscountPrice] = discount
	f.Texts[pages.ShippingPrice] = shipping
	f.Texts[pages.GrandTotalPrice] = total
}
