package browser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultBlockedHosts lists URL fragments whose requests are aborted so ads
// and trackers cannot cover the storefront UI.
var DefaultBlockedHosts = []string{"ads", "doubleclick.net", "googlesyndication"}

// LaunchOptions configures the browser session shared by a run.
type LaunchOptions struct {
	Browser        string // chromium, chrome, firefox or webkit
	Headless       bool
	DefaultTimeout time.Duration
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	BlockedHosts   []string

	// Install downloads the browser binaries before launching.
	Install bool

	Logger *slog.Logger
}

// Session owns one Playwright driver, one browser and one browser context.
// Pages handed out by NewPage share the context and must not be used
// concurrently by more than one scenario.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	logger  *slog.Logger
}

// Launch starts Playwright and opens a configured browser context.
//
// The context uses a 1920x1080 viewport and en-US locale unless overridden,
// aborts requests to blocked hosts, and starts with no cookies or
// permissions.
func Launch(opts LaunchOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	name := normalizeBrowser(opts.Browser)

	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{name}}); err != nil {
			return nil, fmt.Errorf("failed to install %s: %w", name, err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch name {
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		bt = pw.Chromium
	}

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", name, err)
	}

	width, height := opts.ViewportWidth, opts.ViewportHeight
	if width == 0 || height == 0 {
		width, height = 1920, 1080
	}
	locale := opts.Locale
	if locale == "" {
		locale = "en-US"
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: width, Height: height},
		Locale:   playwright.String(locale),
	})
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	blocked := opts.BlockedHosts
	if blocked == nil {
		blocked = DefaultBlockedHosts
	}
	if len(blocked) > 0 {
		err = bctx.Route("**/*", func(route playwright.Route) {
			if isBlocked(route.Request().URL(), blocked) {
				_ = route.Abort()
				return
			}
			_ = route.Continue()
		})
		if err != nil {
			_ = bctx.Close()
			_ = b.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to install request filter: %w", err)
		}
	}

	if err := bctx.ClearCookies(); err != nil {
		logger.Warn("failed to clear cookies", "error", err)
	}
	if err := bctx.ClearPermissions(); err != nil {
		logger.Warn("failed to clear permissions", "error", err)
	}
	if opts.DefaultTimeout > 0 {
		bctx.SetDefaultTimeout(ms(opts.DefaultTimeout))
	}

	logger.Info("browser session started", "browser", name, "headless", opts.Headless)

	return &Session{pw: pw, browser: b, context: bctx, logger: logger}, nil
}

// NewPage opens a fresh page in the session's context.
func (s *Session) NewPage() (Surface, error) {
	p, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &Page{page: p}, nil
}

// Close tears down the context, the browser and the driver, in that order.
func (s *Session) Close() error {
	var errs []error
	if err := s.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	s.logger.Info("browser session closed")
	return errors.Join(errs...)
}

func normalizeBrowser(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "firefox":
		return "firefox"
	case "webkit", "safari":
		return "webkit"
	default:
		return "chromium"
	}
}

func isBlocked(url string, hosts []string) bool {
	for _, h := range hosts {
		if h != "" && strings.Contains(url, h) {
			return true
		}
	}
	return false
}

// Page adapts a playwright.Page to Surface.
type Page struct {
	page playwright.Page
}

// NewPlaywrightPage wraps an existing Playwright page.
func NewPlaywrightPage(p playwright.Page) *Page {
	return &Page{page: p}
}

func (p *Page) locator(selector string) playwright.Locator {
	return p.page.Locator(selector).First()
}

// fail converts a Playwright error into *Error. Timeouts against a selector
// with zero matches are reported as KindNotFound.
func (p *Page) fail(op, selector string, err error) error {
	kind := KindInteraction
	if errors.Is(err, playwright.ErrTimeout) {
		kind = KindTimeout
		if selector != "" && !strings.HasPrefix(op, "goto") && !strings.HasPrefix(op, "wait_for_url") {
			if n, cerr := p.page.Locator(selector).Count(); cerr == nil && n == 0 {
				kind = KindNotFound
			}
		}
	}
	return &Error{Op: op, Selector: selector, Kind: kind, Err: err}
}

func (p *Page) Goto(url string, timeout time.Duration) error {
	opts := playwright.PageGotoOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if _, err := p.page.Goto(url, opts); err != nil {
		return p.fail("goto", url, err)
	}
	return nil
}

func (p *Page) WaitFor(selector string, state State, timeout time.Duration) error {
	st := playwright.WaitForSelectorState(string(state))
	opts := playwright.LocatorWaitForOptions{State: &st}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.locator(selector).WaitFor(opts); err != nil {
		return p.fail("wait_for_"+string(state), selector, err)
	}
	return nil
}

func (p *Page) Click(selector string, timeout time.Duration) error {
	opts := playwright.LocatorClickOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.locator(selector).Click(opts); err != nil {
		return p.fail("click", selector, err)
	}
	return nil
}

func (p *Page) Fill(selector, value string, timeout time.Duration) error {
	opts := playwright.LocatorFillOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.locator(selector).Fill(value, opts); err != nil {
		return p.fail("fill", selector, err)
	}
	return nil
}

func (p *Page) Hover(selector string, timeout time.Duration) error {
	opts := playwright.LocatorHoverOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.locator(selector).Hover(opts); err != nil {
		return p.fail("hover", selector, err)
	}
	return nil
}

func (p *Page) Press(selector, key string, timeout time.Duration) error {
	opts := playwright.LocatorPressOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.locator(selector).Press(key, opts); err != nil {
		return p.fail("press", selector, err)
	}
	return nil
}

func (p *Page) ScrollIntoView(selector string, timeout time.Duration) error {
	opts := playwright.LocatorScrollIntoViewIfNeededOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.locator(selector).ScrollIntoViewIfNeeded(opts); err != nil {
		return p.fail("scroll_into_view", selector, err)
	}
	return nil
}

func (p *Page) SelectOption(selector, label string, timeout time.Duration) error {
	labels := []string{label}
	opts := playwright.LocatorSelectOptionOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if _, err := p.locator(selector).SelectOption(playwright.SelectOptionValues{Labels: &labels}, opts); err != nil {
		return p.fail("select_option", selector, err)
	}
	return nil
}

func (p *Page) ClickRole(role, name string, timeout time.Duration) error {
	loc := p.page.GetByRole(playwright.AriaRole(role), playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(true),
	})
	opts := playwright.LocatorClickOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := loc.First().Click(opts); err != nil {
		kind := KindInteraction
		if errors.Is(err, playwright.ErrTimeout) {
			kind = KindTimeout
			if n, cerr := loc.Count(); cerr == nil && n == 0 {
				kind = KindNotFound
			}
		}
		return &Error{Op: "click_role", Selector: fmt.Sprintf("role=%s[name=%q]", role, name), Kind: kind, Err: err}
	}
	return nil
}

func (p *Page) Text(selector string, timeout time.Duration) (string, error) {
	opts := playwright.LocatorInnerTextOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	text, err := p.locator(selector).InnerText(opts)
	if err != nil {
		return "", p.fail("text", selector, err)
	}
	return text, nil
}

func (p *Page) Attribute(selector, name string, timeout time.Duration) (string, error) {
	opts := playwright.LocatorGetAttributeOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	value, err := p.locator(selector).GetAttribute(name, opts)
	if err != nil {
		return "", p.fail("attribute", selector, err)
	}
	return value, nil
}

func (p *Page) Count(selector string) (int, error) {
	n, err := p.page.Locator(selector).Count()
	if err != nil {
		return 0, p.fail("count", selector, err)
	}
	return n, nil
}

func (p *Page) IsVisible(selector string) (bool, error) {
	visible, err := p.locator(selector).IsVisible()
	if err != nil {
		return false, p.fail("is_visible", selector, err)
	}
	return visible, nil
}

func (p *Page) WaitForURL(pattern string, timeout time.Duration) error {
	opts := playwright.PageWaitForURLOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(ms(timeout))
	}
	if err := p.page.WaitForURL(pattern, opts); err != nil {
		return p.fail("wait_for_url", pattern, err)
	}
	return nil
}

func (p *Page) Screenshot(fullPage bool) ([]byte, error) {
	data, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return nil, p.fail("screenshot", "", err)
	}
	return data, nil
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Close() error {
	return p.page.Close()
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
