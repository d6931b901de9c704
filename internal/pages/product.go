package pages

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
)

// Filter is one layered-navigation selection. An empty Value means the
// filter is not applied.
type Filter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product covers the category listing and the product detail page.
type Product struct {
	*Driver
}

// NewProduct returns the product page over d.
func NewProduct(d *Driver) *Product {
	return &Product{Driver: d.with("product")}
}

// FilterOptionSelector returns the selector for value within the named
// filter. Color and size filters use swatches; anything else matches text.
func FilterOptionSelector(name, value string) string {
	switch {
	case foldEqual(strings.TrimSpace(name), "color"):
		return browser.First(ColorSwatchFilter(value))
	case foldEqual(strings.TrimSpace(name), "size"):
		return browser.First(SizeSwatchFilter(value))
	default:
		return browser.First(TextFilterOption(name, value))
	}
}

// ApplyFilters applies each filter in order, skipping blank values.
func (p *Product) ApplyFilters(filters []Filter) error {
	return p.rec.Step("Applying product filters", func() error {
		p.WaitForLoader()
		for _, f := range filters {
			value := strings.TrimSpace(f.Value)
			if value == "" {
				p.logger.Warn("skipping filter with blank value", "filter", f.Name)
				continue
			}
			if err := p.applyFilter(f.Name, value); err != nil {
				p.logger.Error("failed to apply filters", "filter", f.Name, "value", value, "error", err)
				return err
			}
		}
		return nil
	})
}

func (p *Product) applyFilter(name, value string) error {
	p.settle(p.timeouts.FilterSettle)
	p.logger.Info("applying filter", "filter", name, "value", value)

	section := FilterSectionFor(name)
	if err := p.surface.ScrollIntoView(section, p.timeouts.ElementWait); err != nil {
		return err
	}
	if err := p.surface.Click(browser.Within(section, FilterTitle), p.timeouts.ElementWait); err != nil {
		return err
	}

	option := FilterOptionSelector(name, value)
	if err := p.surface.WaitFor(option, browser.StateVisible, p.timeouts.ElementWait); err != nil {
		return err
	}
	if err := p.surface.ScrollIntoView(option, p.timeouts.ElementWait); err != nil {
		return err
	}
	if err := p.surface.Click(option, p.timeouts.ElementWait); err != nil {
		return err
	}

	p.logger.Info("filter applied", "filter", name, "value", value)
	p.settle(p.timeouts.ResultsSettle)
	return nil
}

// ClickFirstVisibleProduct opens the first product in the listing. An empty
// listing is logged and left alone.
func (p *Product) ClickFirstVisibleProduct() error {
	return p.rec.Step("Clicking first visible product", func() error {
		p.settle(p.timeouts.ProductsSettle)
		n, err := p.surface.Count(ProductLinks)
		if err != nil {
			p.logger.Error("failed to click first visible product", "error", err)
			return err
		}
		if n == 0 {
			p.logger.Warn("no products found after applying filters")
			return nil
		}
		first := browser.First(ProductLinks)
		if err := p.surface.WaitFor(first, browser.StateVisible, p.timeouts.ElementWait); err != nil {
			p.logger.Error("failed to click first visible product", "error", err)
			return err
		}
		if err := p.surface.ScrollIntoView(first, p.timeouts.ElementWait); err != nil {
			p.logger.Error("failed to click first visible product", "error", err)
			return err
		}
		if err := p.surface.Click(first, p.timeouts.ElementWait); err != nil {
			p.logger.Error("failed to click first visible product", "error", err)
			return err
		}
		p.logger.Info("clicked first visible product", "products", n)
		return nil
	})
}

// SelectSize picks a size swatch on the product detail page.
func (p *Product) SelectSize(size string) error {
	return p.rec.Step("Selecting size: "+size, func() error {
		if err := p.surface.Click(SizeOption(size), p.timeouts.ElementWait); err != nil {
			p.logger.Error("failed to select size", "size", size, "error", err)
			return err
		}
		p.logger.Info("size selected", "size", size)
		return nil
	})
}

// SelectColor picks a color swatch on the product detail page.
func (p *Product) SelectColor(color string) error {
	return p.rec.Step("Selecting color: "+color, func() error {
		if err := p.surface.Click(ColorOption(color), p.timeouts.ElementWait); err != nil {
			p.logger.Error("failed to select color", "color", color, "error", err)
			return err
		}
		p.logger.Info("color selected", "color", color)
		return nil
	})
}

// SetQuantity types qty into the quantity box.
func (p *Product) SetQuantity(qty int) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Message: fmt.Sprintf("must be positive, got %d", qty)}
	}
	return p.rec.Step(fmt.Sprintf("Setting quantity to %d", qty), func() error {
		if err := p.surface.Fill(QuantityInput, strconv.Itoa(qty), p.timeouts.ElementWait); err != nil {
			p.logger.Error("failed to set quantity", "quantity", qty, "error", err)
			return err
		}
		p.logger.Info("quantity set", "quantity", qty)
		return nil
	})
}

// CustomizeSelection applies size, color and quantity, each only when set.
// A zero quantity keeps the storefront default.
func (p *Product) CustomizeSelection(size, color string, qty int) error {
	return p.rec.Step("Customize product: size, color, quantity", func() error {
		if size = strings.TrimSpace(size); size != "" {
			if err := p.SelectSize(size); err != nil {
				return err
			}
		}
		if color = strings.TrimSpace(color); color != "" {
			if err := p.SelectColor(color); err != nil {
				return err
			}
		}
		if qty != 0 {
			return p.SetQuantity(qty)
		}
		return nil
	})
}

// ExpectedCartMessage is the confirmation shown after adding name to the cart.
func ExpectedCartMessage(name string) string {
	return "You added " + name + " to your shopping cart"
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	c := cases.Fold()
	return strings.Contains(c.String(s), c.String(substr))
}

// AddToCartAndVerify adds the open product to the cart and checks the
// confirmation names it. It returns the product name.
func (p *Product) AddToCartAndVerify() (string, error) {
	var name string
	err := p.rec.Step("Adding product to cart and verifying success message", func() error {
		var actual string
		err := p.addToCart(&name, &actual)
		if err != nil {
			p.logger.Error("add to cart or verification failed", "error", err)
			p.rec.Attach("Actual Success Message", evidence.MediaText, []byte(actual))
		}
		return err
	})
	return name, err
}

func (p *Product) addToCart(name, actual *string) error {
	if err := p.surface.WaitFor(ProductName, browser.StateVisible, p.timeouts.ElementWait); err != nil {
		return err
	}
	text, err := p.surface.Text(ProductName, p.timeouts.ElementWait)
	if err != nil {
		return err
	}
	*name = strings.TrimSpace(text)
	p.logger.Info("stored product name", "product", *name)

	if err := p.surface.Click(AddToCartButton, p.timeouts.ElementWait); err != nil {
		return err
	}
	p.logger.Info("add to cart clicked")

	if err := p.surface.WaitFor(SuccessMessage, browser.StateVisible, p.timeouts.ElementWait); err != nil {
		return err
	}
	msg, err := p.surface.Text(SuccessMessage, p.timeouts.ElementWait)
	if err != nil {
		return err
	}
	*actual = strings.TrimSpace(msg)

	expected := ExpectedCartMessage(*name)
	p.logger.Info("comparing success message", "expected", expected, "actual", *actual)
	if !containsFold(*actual, expected) {
		return &browser.AssertionError{
			Check:    "cart success message",
			Expected: strconv.Quote(expected),
			Actual:   strconv.Quote(*actual),
		}
	}
	p.logger.Info("success message verified")
	return nil
}

// OpenMiniCart opens the header mini cart.
func (p *Product) OpenMiniCart() error {
	return p.rec.Step("Opening mini cart", func() error {
		return p.Click(MiniCartIcon)
	})
}

// ProceedToCheckout clicks the mini cart's checkout button.
func (p *Product) ProceedToCheckout() error {
	return p.rec.Step("Clicking 'Proceed to Checkout'", func() error {
		return p.Click(CheckoutButton)
	})
}
