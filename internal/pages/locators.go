package pages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/storefront-e2e/internal/browser"
)

// Shared page chrome.
const (
	LoadingMask   = ".loading-mask"
	ConsentButton = "Consent"
	CloseButton   = "Close"
)

// Home page and top navigation.
const (
	NavigationMenu = "nav.navigation"
	sidebarList    = "#narrow-by-list2"
)

// NavMenuItem matches a top-navigation entry by its label.
func NavMenuItem(label string) string {
	return "text=" + label
}

// MenTopLevel matches the exact-text top-level entry inside the nav bar.
func MenTopLevel(label string) string {
	return browser.First(browser.Within(NavigationMenu, browser.ExactText(label)))
}

// SubcategoryLink matches any link whose text contains label.
func SubcategoryLink(label string) string {
	return fmt.Sprintf("//a[contains(text(),%s)]", xpathLiteral(label))
}

// SidebarFilter matches a category link in the layered-navigation sidebar.
func SidebarFilter(label string) string {
	return sidebarList + " a" + hasText(label)
}

// Product listing and product detail page.
const (
	ProductName      = "h1.page-title span.base"
	AddToCartButton  = "button#product-addtocart-button"
	SuccessMessage   = "div.message-success"
	MiniCartIcon     = "a.action.showcart"
	CheckoutButton   = "button#top-cart-btn-checkout"
	QuantityInput    = "input#qty"
	ProductLinks     = "li.product-item a.product-item-link"
	FilterSection    = "div.filter-options-item"
	FilterTitle      = "div.filter-options-title"
	swatchColorClass = "div.swatch-option.color"
	swatchTextClass  = "div.swatch-option.text"
)

// FilterSectionFor matches the first layered-navigation section titled name.
func FilterSectionFor(name string) string {
	return browser.First(FilterSection + hasText(name))
}

// ColorSwatchFilter matches a color swatch in the layered navigation.
func ColorSwatchFilter(value string) string {
	return "a[aria-label=" + strconv.Quote(value) + "] " + swatchColorClass
}

// SizeSwatchFilter matches a size swatch in the layered navigation.
func SizeSwatchFilter(value string) string {
	return "a[aria-label=" + strconv.Quote(value) + "] " + swatchTextClass
}

// TextFilterOption matches a plain text option inside the named section.
func TextFilterOption(name, value string) string {
	return FilterSection + hasText(name) + " a" + hasText(value)
}

// SizeOption matches a size swatch on the product detail page.
func SizeOption(size string) string {
	return swatchTextClass + "[option-label=" + strconv.Quote(size) + "]"
}

// ColorOption matches a color swatch on the product detail page.
func ColorOption(color string) string {
	return swatchColorClass + "[option-label=" + strconv.Quote(color) + "]"
}

// Checkout shipping and payment steps.
const (
	CountrySelect      = "select[name='country_id']"
	PostcodeInput      = "input[name='postcode']"
	TelephoneInput     = "input[name='telephone']"
	EmailInput         = "div.control._with-tooltip input#customer-email"
	FirstNameInput     = "input[name='firstname']"
	LastNameInput      = "input[name='lastname']"
	StreetInput        = "input[name='street[0]']"
	CityInput          = "input[name='city']"
	ShippingMethodRows = "table.table-checkout-shipping-method tbody tr"
	ShippingMethodName = "td.col.col-carrier"
	ShippingMethodCost = "td.col.col-price >> span.price"
	ShippingMethodPick = "input[type='radio']"
	NextButton         = "button[data-role='opc-continue']"
	DiscountToggle     = "span#block-discount-heading"
	DiscountInput      = "input#discount-code"
	ApplyDiscount      = "button.action.action-apply"
	TotalsDiscountRow  = "tr.totals.discount"
	SubtotalPrice      = "tr.totals.sub span.price"
	DiscountPrice      = "tr.totals.discount span.price"
	ShippingPrice      = "tr.totals.shipping.excl span.price"
	GrandTotalPrice    = "tr.grand.totals span.price"
)

// ShippingRowTitle, ShippingRowPrice and ShippingRowRadio address cells of
// the i-th shipping method row.
func ShippingRowTitle(i int) string {
	return browser.Within(browser.Nth(ShippingMethodRows, i), ShippingMethodName)
}

func ShippingRowPrice(i int) string {
	return browser.First(browser.Within(browser.Nth(ShippingMethodRows, i), ShippingMethodCost))
}

func ShippingRowRadio(i int) string {
	return browser.Within(browser.Nth(ShippingMethodRows, i), ShippingMethodPick)
}

// Order review and success pages.
const (
	PlaceOrderButton  = "button.action.primary.checkout[title='Place Order']"
	SuccessURLPattern = "**/checkout/onepage/success/**"
	ThankYouMessage   = "h1.page-title span.base[data-ui-id='page-title-wrapper']"
	OrderNumber       = "div.checkout-success p span"
	ThankYouPhrase    = "Thank you for your purchase!"
)

func hasText(label string) string {
	return ":has-text(" + strconv.Quote(label) + ")"
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	switch {
	case !strings.ContainsRune(s, '\''):
		return "'" + s + "'"
	case !strings.ContainsRune(s, '"'):
		return `"` + s + `"`
	default:
		parts := strings.Split(s, "'")
		for i, p := range parts {
			parts[i] = "'" + p + "'"
		}
		return "concat(" + strings.Join(parts, `, "'", `) + ")"
	}
}
