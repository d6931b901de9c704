package pages_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront-e2e/internal/pages"
	"github.com/roach88/storefront-e2e/internal/testutil"
)

func TestPlaceAndCapture_ReturnsOrderNumber(t *testing.T) {
	f := testutil.NewStorefront()
	f.Texts[pages.OrderNumber] = "  000012345 \n"
	set, mem := newSet(f)

	number, ok := set.PlaceOrder.PlaceAndCapture()
	require.True(t, ok)
	assert.Equal(t, testutil.StoreOrderNumber, number)

	assert.Equal(t, []string{pages.PlaceOrderButton}, f.Selectors("click"))
	assert.Equal(t, []string{pages.SuccessURLPattern}, f.Selectors("wait_for_url"))

	a, found := mem.Attachment("Order Number")
	require.True(t, found)
	assert.Equal(t, testutil.StoreOrderNumber, string(a.Data))

	require.Len(t, mem.Steps, 1)
	var names []string
	for _, s := range mem.Steps[0].Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Clicking the 'Place Order' button",
		"Waiting for success page to load",
		"Verifying thank-you message",
		"Extracting order number",
	}, names)
}

func TestPlaceAndCapture_FailuresDowngrade(t *testing.T) {
	tests := []struct {
		name   string
		script func(f *testutil.FakeSurface)
	}{
		{
			name: "place order button missing",
			script: func(f *testutil.FakeSurface) {
				f.Remove(pages.PlaceOrderButton)
			},
		},
		{
			name: "no redirect to success page",
			script: func(f *testutil.FakeSurface) {
				f.Fail("wait_for_url", pages.SuccessURLPattern, testutil.Timeout("wait_for_url", pages.SuccessURLPattern))
			},
		},
		{
			name: "wrong confirmation text",
			script: func(f *testutil.FakeSurface) {
				f.Texts[pages.ThankYouMessage] = "Something went wrong"
			},
		},
		{
			name: "empty order number",
			script: func(f *testutil.FakeSurface) {
				f.Texts[pages.OrderNumber] = "   "
			},
		},
		{
			name: "order number unreadable",
			script: func(f *testutil.FakeSurface) {
				f.Fail("text", pages.OrderNumber, errors.New("target closed"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewStorefront()
			tt.script(f)
			set, mem := newSet(f)

			number, ok := set.PlaceOrder.PlaceAndCapture()
			assert.False(t, ok)
			assert.Empty(t, number)

			a, found := mem.Attachment("Order Placement Error")
			require.True(t, found)
			assert.NotEmpty(t, a.Data)
		})
	}
}
