package pages

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
)

// TotalTolerance is the largest accepted gap between the displayed grand
// total and the recomputed one.
const TotalTolerance = 0.01

// Address is the shipping and contact data typed into checkout.
type Address struct {
	Email     string
	FirstName string
	LastName  string
	Street    string
	City      string
	ZipCode   string
	Country   string
	Phone     string
}

// ShippingMethod is one row of the shipping method table.
type ShippingMethod struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Value string `json:"value"`
}

// DiscountVerification holds the parsed order totals after a coupon.
type DiscountVerification struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Shipping      float64 `json:"shipping"`
	Total         float64 `json:"total"`
	ExpectedTotal float64 `json:"expected_total"`
}

// Summary renders the totals the way the discount evidence shows them.
func (v *DiscountVerification) Summary() string {
	return fmt.Sprintf("Subtotal: $%.2f\nDiscount: -$%.2f\nShipping: $%.2f\nTotal: $%.2f",
		v.Subtotal, v.Discount, v.Shipping, v.Total)
}

// Round2 rounds to cents.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// VerifyTotals computes the expected total and checks the displayed total
// against it.
func VerifyTotals(subtotal, discount, shipping, total float64) (*DiscountVerification, error) {
	v := &DiscountVerification{
		Subtotal:      subtotal,
		Discount:      discount,
		Shipping:      shipping,
		Total:         total,
		ExpectedTotal: Round2(subtotal - discount + shipping),
	}
	if math.Abs(v.Total-v.ExpectedTotal) >= TotalTolerance {
		return v, &browser.AssertionError{
			Check:    "grand total",
			Expected: fmt.Sprintf("$%.2f", v.ExpectedTotal),
			Actual:   "$" + strconv.FormatFloat(v.Total, 'f', -1, 64),
		}
	}
	return v, nil
}

// ParseAmount converts a displayed price such as "-$1,012.80" to a number.
// Currency symbol, sign markers, thousands separators and whitespace are
// stripped.
func ParseAmount(text string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '-', '+', ',', ' ', '\t', '\n', '\r', '\u00a0':
			return -1
		}
		return r
	}, text)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount %q: %w", text, err)
	}
	return v, nil
}

// Checkout covers the shipping and review/payment steps.
type Checkout struct {
	*Driver
}

// NewCheckout returns the checkout page over d.
func NewCheckout(d *Driver) *Checkout {
	return &Checkout{Driver: d.with("checkout")}
}

// FillShippingAddress selects the country first, since the form re-renders
// the postcode and telephone fields for it, then fills every field.
func (c *Checkout) FillShippingAddress(a Address) error {
	return c.rec.Step("Filling shipping address", func() error {
		if err := c.fillAddress(a); err != nil {
			c.logger.Error("failed to fill shipping address", "error", err)
			return err
		}
		c.logger.Info("shipping address filled")
		c.settle(c.timeouts.AddressSettle)
		return nil
	})
}

func (c *Checkout) fillAddress(a Address) error {
	if err := c.surface.SelectOption(CountrySelect, a.Country, c.timeouts.ElementWait); err != nil {
		return err
	}
	c.logger.Info("country selected", "country", a.Country)

	for _, sel := range []string{PostcodeInput, TelephoneInput} {
		if err := c.surface.WaitFor(sel, browser.StateVisible, c.timeouts.ElementWait); err != nil {
			return err
		}
	}

	fields := []struct{ selector, value string }{
		{EmailInput, a.Email},
		{FirstNameInput, a.FirstName},
		{LastNameInput, a.LastName},
		{StreetInput, a.Street},
		{CityInput, a.City},
		{PostcodeInput, a.ZipCode},
		{TelephoneInput, a.Phone},
	}
	for _, f := range fields {
		if err := c.surface.Fill(f.selector, f.value, c.timeouts.ElementWait); err != nil {
			return err
		}
	}
	return nil
}

// ShippingMethods lists the offered shipping methods and picks the first
// when there is a choice. Discovery failures are logged and recorded on the
// step, then yield an empty list rather than an error.
func (c *Checkout) ShippingMethods() []ShippingMethod {
	var methods []ShippingMethod
	_ = c.rec.Step("Fetching and selecting available shipping methods", func() error {
		m, err := c.shippingMethods()
		if err != nil {
			c.logger.Error("failed to get or select shipping methods", "error", err)
			return err
		}
		methods = m
		return nil
	})
	if methods == nil {
		methods = []ShippingMethod{}
	}
	return methods
}

func (c *Checkout) shippingMethods() ([]ShippingMethod, error) {
	c.WaitForLoader()
	if err := c.surface.WaitFor(ShippingMethodRows, browser.StateAttached, c.timeouts.ElementWait); err != nil {
		return nil, err
	}
	n, err := c.surface.Count(ShippingMethodRows)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		c.logger.Warn("no shipping methods found")
		return []ShippingMethod{}, nil
	}

	methods := make([]ShippingMethod, 0, n)
	for i := 0; i < n; i++ {
		title, err := c.surface.Text(ShippingRowTitle(i), c.timeouts.ElementWait)
		if err != nil {
			return nil, err
		}
		price, err := c.surface.Text(ShippingRowPrice(i), c.timeouts.ElementWait)
		if err != nil {
			return nil, err
		}
		value, err := c.surface.Attribute(ShippingRowRadio(i), "value", c.timeouts.ElementWait)
		if err != nil {
			return nil, err
		}
		methods = append(methods, ShippingMethod{
			Title: strings.TrimSpace(title),
			Price: strings.TrimSpace(price),
			Value: value,
		})
	}
	c.logger.Info("found shipping methods", "count", len(methods))

	if n > 1 {
		if err := c.surface.Click(ShippingRowRadio(0), c.timeouts.ElementWait); err != nil {
			return nil, err
		}
		c.logger.Info("selected the first shipping method", "method", methods[0].Title)
	}
	return methods, nil
}

// Next advances from shipping to the review and payment step.
func (c *Checkout) Next() error {
	return c.rec.Step("Clicking 'Next' to proceed to payment", func() error {
		c.WaitForLoader()
		if err := c.surface.WaitFor(NextButton, browser.StateVisible, c.timeouts.ElementWait); err != nil {
			c.logger.Error("failed to click next", "error", err)
			return err
		}
		if err := c.surface.Click(NextButton, c.timeouts.ElementWait); err != nil {
			c.logger.Error("failed to click next", "error", err)
			return err
		}
		c.logger.Info("next button clicked")

		if err := c.surface.WaitFor(LoadingMask, browser.StateVisible, c.timeouts.LoaderAppear); err != nil {
			c.logger.Debug("loader did not appear after next", "error", err)
		}
		c.WaitForLoader()
		return nil
	})
}

// ApplyAndVerifyDiscount applies code and verifies the recomputed grand
// total. An empty code verifies the totals as shown, with no discount
// applied.
func (c *Checkout) ApplyAndVerifyDiscount(code string) (*DiscountVerification, error) {
	var result *DiscountVerification
	err := c.rec.Step("Applying and verifying discount code: "+code, func() error {
		v, err := c.applyDiscount(strings.TrimSpace(code))
		if err != nil {
			c.logger.Error("error verifying discount", "code", code, "error", err)
			c.rec.Attach("Discount Error", evidence.MediaText, []byte(err.Error()))
			return err
		}
		c.logger.Info("discount verified", "discount", v.Discount, "total", v.Total)
		result = v
		return nil
	})
	return result, err
}

func (c *Checkout) applyDiscount(code string) (*DiscountVerification, error) {
	if code != "" {
		if err := c.surface.Click(DiscountToggle, c.timeouts.ElementWait); err != nil {
			return nil, err
		}
		if err := c.surface.WaitFor(DiscountInput, browser.StateVisible, c.timeouts.ElementWait); err != nil {
			return nil, err
		}
		if err := c.surface.Fill(DiscountInput, code, c.timeouts.ElementWait); err != nil {
			return nil, err
		}
		if err := c.surface.Click(ApplyDiscount, c.timeouts.ElementWait); err != nil {
			return nil, err
		}
		if err := c.surface.WaitFor(TotalsDiscountRow, browser.StateVisible, c.timeouts.DiscountRow); err != nil {
			return nil, err
		}
	} else {
		c.logger.Info("no discount code, verifying totals as shown")
	}
	c.WaitForLoader()

	subtotal, err := c.amount(SubtotalPrice)
	if err != nil {
		return nil, err
	}
	var discount float64
	if code != "" || c.IsVisible(DiscountPrice) {
		if discount, err = c.amount(DiscountPrice); err != nil {
			return nil, err
		}
	}
	shipping, err := c.amount(ShippingPrice)
	if err != nil {
		return nil, err
	}
	total, err := c.amount(GrandTotalPrice)
	if err != nil {
		return nil, err
	}
	return VerifyTotals(subtotal, discount, shipping, total)
}

func (c *Checkout) amount(selector string) (float64, error) {
	text, err := c.surface.Text(selector, c.timeouts.ElementWait)
	if err != nil {
		return 0, err
	}
	return ParseAmount(text)
}
