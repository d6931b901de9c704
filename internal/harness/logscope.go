package harness

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
)

// ErrorScreenshot names the attachment captured for error-level records.
const ErrorScreenshot = "Error Screenshot"

// LogScope is the logging scope of one scenario. It forwards every record
// to an inner handler and, while open, captures a page screenshot into the
// evidence recorder for records at slog.LevelError or above.
//
// Handlers derived with WithAttrs or WithGroup share the scope, so closing
// it stops screenshot capture for all of them.
type LogScope struct {
	inner slog.Handler
	state *scopeState
}

type scopeState struct {
	mu      sync.Mutex
	surface browser.Surface
	rec     evidence.Recorder
	closed  bool
	shots   int
}

// OpenLogScope binds a scope to the scenario page and recorder.
func OpenLogScope(inner slog.Handler, surface browser.Surface, rec evidence.Recorder) *LogScope {
	return &LogScope{
		inner: inner,
		state: &scopeState{surface: surface, rec: rec},
	}
}

// Enabled implements slog.Handler. Error records are always handled while
// the scope is open, even when the inner handler would drop them.
func (l *LogScope) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelError && l.open() {
		return true
	}
	return l.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (l *LogScope) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		l.capture()
	}
	if !l.inner.Enabled(ctx, r.Level) {
		return nil
	}
	return l.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (l *LogScope) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogScope{inner: l.inner.WithAttrs(attrs), state: l.state}
}

// WithGroup implements slog.Handler.
func (l *LogScope) WithGroup(name string) slog.Handler {
	return &LogScope{inner: l.inner.WithGroup(name), state: l.state}
}

// Close detaches the scope from the page. Records are still forwarded.
// Close is idempotent.
func (l *LogScope) Close() {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.closed = true
	l.state.surface = nil
	l.state.rec = nil
}

// Screenshots returns how many error screenshots the scope attached.
func (l *LogScope) Screenshots() int {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.shots
}

func (l *LogScope) open() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return !l.state.closed
}

// capture takes a screenshot when the scope is open. A failed screenshot
// is dropped; logging it here would recurse.
func (l *LogScope) capture() {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if l.state.closed || l.state.surface == nil {
		return
	}
	data, err := l.state.surface.Screenshot(false)
	if err != nil {
		return
	}
	l.state.rec.Attach(ErrorScreenshot, evidence.MediaPNG, data)
	l.state.shots++
}
