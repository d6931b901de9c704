package testutil

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roach88/storefront-e2e/internal/browser"
)

// Call is one interaction recorded by FakeSurface.
type Call struct {
	Op       string
	Selector string
	Value    string
}

// String renders the call as "op selector" or "op selector = value".
func (c Call) String() string {
	if c.Value == "" {
		return c.Op + " " + c.Selector
	}
	return c.Op + " " + c.Selector + " = " + c.Value
}

// PNG is the screenshot payload every FakeSurface returns.
var PNG = []byte("\x89PNG\r\n\x1a\nfake")

// FakeSurface is a scripted browser.Surface.
//
// Every selector exists and is visible unless listed in Missing. Waits on a
// missing selector fail with KindNotFound, as the playwright adapter reports
// a timeout against zero matches; script a Timeout through Fail instead. Failures
// are keyed by "op selector" first and by bare selector second, so a test
// can fail one operation or every operation on an element. Ops are the
// Surface method names in snake case: goto, wait_for, click, fill, hover,
// press, scroll, select, click_role, text, attribute, count, is_visible,
// wait_for_url, screenshot.
type FakeSurface struct {
	mu sync.Mutex

	Texts      map[string]string // selector -> inner text
	Attributes map[string]string // selector + "@" + name -> value
	Counts     map[string]int    // selector -> match count; default 1
	Missing    map[string]bool   // selectors with no match
	Failures   map[string]error  // "op selector" or selector -> error
	Roles      map[string]bool   // role + " " + name -> present

	Calls      []Call
	CurrentURL string
	Closed     bool
}

var _ browser.Surface = (*FakeSurface)(nil)

// NewFakeSurface returns an empty scripted surface.
func NewFakeSurface() *FakeSurface {
	return &FakeSurface{
		Texts:      make(map[string]string),
		Attributes: make(map[string]string),
		Counts:     make(map[string]int),
		Missing:    make(map[string]bool),
		Failures:   make(map[string]error),
		Roles:      make(map[string]bool),
	}
}

// Fail makes op on selector return err. An empty op fails every operation
// on selector.
func (f *FakeSurface) Fail(op, selector string, err error) *FakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	if op == "" {
		f.Failures[selector] = err
	} else {
		f.Failures[op+" "+selector] = err
	}
	return f
}

// Remove marks selector as absent from the page.
func (f *FakeSurface) Remove(selector string) *FakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Missing[selector] = true
	return f
}

// Ops returns the recorded calls rendered with Call.String.
func (f *FakeSurface) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// CallsOf returns the recorded calls for op, in order.
func (f *FakeSurface) CallsOf(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Selectors returns the selectors passed to op, in order.
func (f *FakeSurface) Selectors(op string) []string {
	var out []string
	for _, c := range f.CallsOf(op) {
		out = append(out, c.Selector)
	}
	return out
}

// Reset clears recorded calls, keeping the script.
func (f *FakeSurface) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

func (f *FakeSurface) record(op, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: op, Selector: selector, Value: value})
	if err, ok := f.Failures[op+" "+selector]; ok {
		return err
	}
	if err, ok := f.Failures[selector]; ok {
		return err
	}
	return nil
}

func (f *FakeSurface) missing(selector string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Missing[selector]
}

// Timeout builds the error a surface returns when a wait runs out.
func Timeout(op, selector string) error {
	return &browser.Error{Op: op, Selector: selector, Kind: browser.KindTimeout, Err: errors.New("timeout exceeded")}
}

// NotFound builds the error a surface returns for an absent element.
func NotFound(op, selector string) error {
	return &browser.Error{Op: op, Selector: selector, Kind: browser.KindNotFound, Err: errors.New("no element matches selector")}
}

func (f *FakeSurface) act(op, selector, value string) error {
	if err := f.record(op, selector, value); err != nil {
		return err
	}
	if f.missing(selector) {
		return NotFound(op, selector)
	}
	return nil
}

func (f *FakeSurface) Goto(url string, _ time.Duration) error {
	if err := f.record("goto", url, ""); err != nil {
		return err
	}
	f.mu.Lock()
	f.CurrentURL = url
	f.mu.Unlock()
	return nil
}

func (f *FakeSurface) WaitFor(selector string, state browser.State, _ time.Duration) error {
	if err := f.record("wait_for", selector, string(state)); err != nil {
		return err
	}
	absent := f.missing(selector)
	switch state {
	case browser.StateHidden, browser.StateDetached:
		return nil
	default:
		if absent {
			return NotFound("wait_for", selector)
		}
		return nil
	}
}

func (f *FakeSurface) Click(selector string, _ time.Duration) error {
	return f.act("click", selector, "")
}

func (f *FakeSurface) Fill(selector, value string, _ time.Duration) error {
	return f.act("fill", selector, value)
}

func (f *FakeSurface) Hover(selector string, _ time.Duration) error {
	return f.act("hover", selector, "")
}

func (f *FakeSurface) Press(selector, key string, _ time.Duration) error {
	return f.act("press", selector, key)
}

func (f *FakeSurface) ScrollIntoView(selector string, _ time.Duration) error {
	return f.act("scroll", selector, "")
}

func (f *FakeSurface) SelectOption(selector, label string, _ time.Duration) error {
	return f.act("select", selector, label)
}

func (f *FakeSurface) ClickRole(role, name string, _ time.Duration) error {
	key := role + " " + name
	if err := f.record("click_role", key, ""); err != nil {
		return err
	}
	f.mu.Lock()
	present := f.Roles[key]
	f.mu.Unlock()
	if !present {
		return NotFound("click_role", key)
	}
	return nil
}

func (f *FakeSurface) Text(selector string, _ time.Duration) (string, error) {
	if err := f.act("text", selector, ""); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Texts[selector], nil
}

func (f *FakeSurface) Attribute(selector, name string, _ time.Duration) (string, error) {
	if err := f.act("attribute", selector, name); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Attributes[selector+"@"+name], nil
}

func (f *FakeSurface) Count(selector string) (int, error) {
	if err := f.record("count", selector, ""); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Missing[selector] {
		return 0, nil
	}
	if n, ok := f.Counts[selector]; ok {
		return n, nil
	}
	return 1, nil
}

func (f *FakeSurface) IsVisible(selector string) (bool, error) {
	if err := f.record("is_visible", selector, ""); err != nil {
		return false, err
	}
	return !f.missing(selector), nil
}

func (f *FakeSurface) WaitForURL(pattern string, _ time.Duration) error {
	if err := f.record("wait_for_url", pattern, ""); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrentURL = strings.Trim(pattern, "*")
	return nil
}

func (f *FakeSurface) Screenshot(fullPage bool) ([]byte, error) {
	if err := f.record("screenshot", "page", fmt.Sprintf("full_page=%t", fullPage)); err != nil {
		return nil, err
	}
	return append([]byte(nil), PNG...), nil
}

func (f *FakeSurface) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CurrentURL
}

func (f *FakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
