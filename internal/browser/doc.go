// Package browser defines the automation surface the page objects drive and
// provides a Playwright-backed implementation of it.
//
// # Surface
//
// Surface is a capability interface: navigate, wait for a selector to reach a
// state, click, fill, hover, select, read text and attributes, count matches,
// wait for a URL and capture screenshots. Page objects never talk to
// Playwright directly, so tests can substitute a scripted surface.
//
// # Selectors
//
// Selectors are Playwright selector strings. Chained lookups use the ">>"
// combinator, built with the helpers in this package:
//
//	browser.Nth("table tbody tr", 2)               // table tbody tr >> nth=2
//	browser.Within(browser.Nth(rows, 0), "input")  // ... >> nth=0 >> input
//
// # Errors
//
// Every failing surface call returns *Error carrying the operation, the
// selector and a Kind (timeout, not-found, interaction). Content mismatches
// detected by page objects are reported as *AssertionError. Callers branch
// with IsTimeout, IsNotFound and IsAssertion instead of matching message text.
package browser
