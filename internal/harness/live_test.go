//go:build e2e

package harness_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/config"
	"github.com/roach88/storefront-e2e/internal/harness"
	"github.com/roach88/storefront-e2e/internal/pages"
)

// TestLive_Checkout drives the Men tee scenario against a real storefront.
// Run with: STOREFRONT_BASE_URL=https://... go test -tags e2e ./internal/harness
func TestLive_Checkout(t *testing.T) {
	baseURL := os.Getenv(config.EnvBaseURL)
	if baseURL == "" {
		t.Skipf("%s not set", config.EnvBaseURL)
	}

	session, err := browser.Launch(browser.LaunchOptions{
		Browser:        "chromium",
		Headless:       true,
		DefaultTimeout: 30 * time.Second,
		BlockedHosts:   browser.DefaultBlockedHosts,
		Install:        true,
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	page, err := session.NewPage()
	require.NoError(t, err)
	defer page.Close()

	opts := harness.Options{
		BaseURL:        baseURL,
		Timeouts:       pages.DefaultTimeouts(),
		ScreenshotsDir: t.TempDir(),
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	r := harness.Run(context.Background(), menTee(), customer(), page, nil, opts)

	t.Log(string(r.Trace()))
	require.True(t, r.Pass, "failed at %s (%s): %s", r.FailedAt, r.ErrorKind, r.Error)
	require.NotEmpty(t, r.OrderNumber)
}
