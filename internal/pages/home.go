package pages

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/storefront-e2e/internal/browser"
)

// menLabel selects the alternate top-navigation traversal.
const menLabel = "men"

// foldEqual compares labels caselessly. A Caser is stateful, so each call
// gets its own.
func foldEqual(a, b string) bool {
	c := cases.Fold()
	return c.String(a) == c.String(b)
}

// Home is the storefront landing page and its category menu.
type Home struct {
	*Driver
}

// NewHome returns the home page over d.
func NewHome(d *Driver) *Home {
	return &Home{Driver: d.with("home")}
}

// CleanPath trims every label and drops the blank ones, keeping order.
func CleanPath(path []string) []string {
	out := make([]string, 0, len(path))
	for _, label := range path {
		if label = strings.TrimSpace(label); label != "" {
			out = append(out, label)
		}
	}
	return out
}

// IsMenPath reports whether a cleaned path uses the alternate traversal.
func IsMenPath(cleaned []string) bool {
	return len(cleaned) > 0 && foldEqual(cleaned[0], menLabel)
}

// NavigateToCategory walks the category menu along path.
//
// The generic traversal hovers every label but the last and clicks the last.
// A path starting with "men" (any case) clicks the top-level entry, then the
// optional subcategory link, then the optional sidebar filter.
func (h *Home) NavigateToCategory(path []string) error {
	cleaned := CleanPath(path)
	if len(cleaned) == 0 {
		return &ValidationError{Field: "category path", Message: "path is empty after removing blank labels"}
	}

	return h.rec.Step("Navigating through menu path: "+strings.Join(cleaned, " > "), func() error {
		if IsMenPath(cleaned) {
			return h.navigateMen(cleaned)
		}

		last := len(cleaned) - 1
		for i, label := range cleaned {
			selector := NavMenuItem(label)
			if err := h.surface.WaitFor(selector, browser.StateVisible, h.timeouts.Menu); err != nil {
				h.logger.Error("navigation failed", "label", label, "error", err)
				return err
			}
			if i < last {
				if err := h.surface.Hover(selector, h.timeouts.Menu); err != nil {
					h.logger.Error("navigation failed", "label", label, "error", err)
					return err
				}
				h.logger.Info("hovered menu", "label", label)
				continue
			}
			if err := h.surface.Click(selector, h.timeouts.Menu); err != nil {
				h.logger.Error("navigation failed", "label", label, "error", err)
				return err
			}
			h.logger.Info("clicked menu item", "label", label)
		}
		return nil
	})
}

func (h *Home) navigateMen(cleaned []string) error {
	if err := h.clickWithin("top nav menu item", MenTopLevel(cleaned[0]), cleaned[0]); err != nil {
		return err
	}
	if len(cleaned) > 1 {
		if err := h.clickWithin("subcategory link", SubcategoryLink(cleaned[1]), cleaned[1]); err != nil {
			return err
		}
	}
	if len(cleaned) > 2 {
		return h.rec.Step("Clicking sidebar filter category: "+cleaned[2], func() error {
			return h.clickWithin("sidebar filter category", SidebarFilter(cleaned[2]), cleaned[2])
		})
	}
	return nil
}

func (h *Home) clickWithin(what, selector, label string) error {
	if err := h.surface.WaitFor(selector, browser.StateVisible, h.timeouts.Menu); err != nil {
		h.logger.Error("failed to click "+what, "label", label, "error", err)
		return err
	}
	if err := h.surface.Click(selector, h.timeouts.Menu); err != nil {
		h.logger.Error("failed to click "+what, "label", label, "error", err)
		return err
	}
	h.logger.Info("clicked "+what, "label", label)
	return nil
}
