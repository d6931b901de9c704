package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storefront-e2e/internal/browser"
)

func TestFakeSurface_MissingVersusTimeout(t *testing.T) {
	f := NewFakeSurface()
	f.Remove("#gone")
	f.Fail("wait_for", "#slow", Timeout("wait_for", "#slow"))

	tests := []struct {
		name     string
		selector string
		state    browser.State
		want     browser.Kind
	}{
		{"visible wait on missing element", "#gone", browser.StateVisible, browser.KindNotFound},
		{"attached wait on missing element", "#gone", browser.StateAttached, browser.KindNotFound},
		{"scripted timeout", "#slow", browser.StateVisible, browser.KindTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.WaitFor(tt.selector, tt.state, 0)
			assert.Equal(t, tt.want, browser.KindOf(err))
		})
	}

	assert.NoError(t, f.WaitFor("#gone", browser.StateHidden, 0))
	assert.NoError(t, f.WaitFor("#here", browser.StateVisible, 0))
	assert.True(t, browser.IsNotFound(f.ClickRole("button", "Absent", 0)))
}
