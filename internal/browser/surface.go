package browser

import (
	"fmt"
	"strconv"
	"time"
)

// State is the condition an element must reach before a wait succeeds.
type State string

const (
	StateVisible  State = "visible"
	StateHidden   State = "hidden"
	StateAttached State = "attached"
	StateDetached State = "detached"
)

// Surface is the automation capability consumed by page objects.
//
// Every blocking call takes an explicit timeout. A zero timeout means the
// surface default (the browser context default timeout for Playwright).
type Surface interface {
	// Goto loads url in the page and waits for the load event.
	Goto(url string, timeout time.Duration) error

	// WaitFor blocks until the first element matching selector reaches state.
	WaitFor(selector string, state State, timeout time.Duration) error

	Click(selector string, timeout time.Duration) error
	Fill(selector, value string, timeout time.Duration) error
	Hover(selector string, timeout time.Duration) error
	Press(selector, key string, timeout time.Duration) error
	ScrollIntoView(selector string, timeout time.Duration) error

	// SelectOption picks the <option> with the given visible label.
	SelectOption(selector, label string, timeout time.Duration) error

	// ClickRole clicks the element with the given ARIA role and exact
	// accessible name.
	ClickRole(role, name string, timeout time.Duration) error

	// Text returns the rendered inner text of the first match.
	Text(selector string, timeout time.Duration) (string, error)

	// Attribute returns an attribute of the first match.
	Attribute(selector, name string, timeout time.Duration) (string, error)

	// Count returns the number of elements currently matching selector.
	Count(selector string) (int, error)

	// IsVisible reports whether the first match is visible right now.
	IsVisible(selector string) (bool, error)

	// WaitForURL blocks until the page URL matches a glob pattern.
	WaitForURL(pattern string, timeout time.Duration) error

	// Screenshot captures the page as PNG bytes.
	Screenshot(fullPage bool) ([]byte, error)

	URL() string
	Close() error
}

// Nth selects the i-th (zero-based) match of selector.
func Nth(selector string, i int) string {
	return fmt.Sprintf("%s >> nth=%d", selector, i)
}

// First selects the first match of selector.
func First(selector string) string {
	return Nth(selector, 0)
}

// Within scopes child to the elements matched by parent.
func Within(parent, child string) string {
	return parent + " >> " + child
}

// ExactText selects elements whose full text equals label.
func ExactText(label string) string {
	return "text=" + strconv.Quote(label)
}
