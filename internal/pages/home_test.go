package pages_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/evidence"
	"github.com/roach88/storefront-e2e/internal/pages"
	"github.com/roach88/storefront-e2e/internal/testutil"
)

func newSet(f *testutil.FakeSurface) (*pages.Set, *evidence.Memory) {
	mem := evidence.NewMemory()
	return pages.NewSet(f, mem, nil, pages.DefaultTimeouts().WithoutSettle()), mem
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"all labels", []string{"Women", "Tops", "Jackets"}, []string{"Women", "Tops", "Jackets"}},
		{"trims", []string{"  Gear ", "Bags"}, []string{"Gear", "Bags"}},
		{"drops blanks in the middle", []string{"Women", "", "Jackets"}, []string{"Women", "Jackets"}},
		{"drops whitespace-only", []string{"Gear", "   ", "\t"}, []string{"Gear"}},
		{"all blank", []string{"", " "}, []string{}},
		{"nil", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pages.CleanPath(tt.in))
		})
	}
}

func TestNavigateToCategory_HoversThenClicksLast(t *testing.T) {
	f := testutil.NewStorefront()
	set, _ := newSet(f)

	require.NoError(t, set.Home.NavigateToCategory([]string{"Women", "", "Tops", "Jackets"}))

	assert.Equal(t, []string{pages.NavMenuItem("Women"), pages.NavMenuItem("Tops")}, f.Selectors("hover"))
	assert.Equal(t, []string{pages.NavMenuItem("Jackets")}, f.Selectors("click"))
}

func TestNavigateToCategory_SingleLabelClicks(t *testing.T) {
	f := testutil.NewStorefront()
	set, _ := newSet(f)

	require.NoError(t, set.Home.NavigateToCategory([]string{"Gear"}))

	assert.Empty(t, f.Selectors("hover"))
	assert.Equal(t, []string{pages.NavMenuItem("Gear")}, f.Selectors("click"))
}

func TestNavigateToCategory_MenUsesAlternateTraversal(t *testing.T) {
	tests := []struct {
		name  string
		path  []string
		click []string
	}{
		{
			name:  "top level only",
			path:  []string{"Men"},
			click: []string{pages.MenTopLevel("Men")},
		},
		{
			name:  "with subcategory",
			path:  []string{"MEN", "Tops"},
			click: []string{pages.MenTopLevel("MEN"), pages.SubcategoryLink("Tops")},
		},
		{
			name: "with sidebar filter",
			path: []string{"men", "Tops", "T-Shirts"},
			click: []string{
				pages.MenTopLevel("men"),
				pages.SubcategoryLink("Tops"),
				pages.SidebarFilter("T-Shirts"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewStorefront()
			set, _ := newSet(f)

			require.NoError(t, set.Home.NavigateToCategory(tt.path))
			assert.Empty(t, f.Selectors("hover"))
			assert.Equal(t, tt.click, f.Selectors("click"))
		})
	}
}

func TestNavigateToCategory_EmptyPathIsValidationError(t *testing.T) {
	f := testutil.NewStorefront()
	set, _ := newSet(f)

	err := set.Home.NavigateToCategory([]string{"", "  "})
	var verr *pages.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category path", verr.Field)
	assert.Empty(t, f.Calls, "no interaction for an empty path")
}

func TestNavigateToCategory_MissingMenuItem(t *testing.T) {
	f := testutil.NewStorefront()
	f.Remove(pages.NavMenuItem("Gear"))
	set, _ := newSet(f)

	err := set.Home.NavigateToCategory([]string{"Gear", "Bags"})
	require.Error(t, err)
	assert.True(t, browser.IsNotFound(err))
	assert.Empty(t, f.Selectors("hover"))
}

func TestNavigateToCategory_SubcategoryFailurePropagates(t *testing.T) {
	f := testutil.NewStorefront()
	boom := errors.New("detached")
	f.Fail("click", pages.SubcategoryLink("Tops"), boom)
	set, _ := newSet(f)

	err := set.Home.NavigateToCategory([]string{"Men", "Tops", "T-Shirts"})
	require.ErrorIs(t, err, boom)
	assert.NotContains(t, f.Selectors("click"), pages.SidebarFilter("T-Shirts"))
}

func TestNavigateToCategory_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	labels := gen.OneConstOf("Women", "Gear", "Tops", "Bottoms", "Jackets", "Bags", "men", "MEN", "Men", "", "  ")
	pathGen := gen.SliceOfN(3, labels, reflect.TypeOf(""))

	properties.Property("visits the non-blank labels in order", prop.ForAll(
		func(raw []string, n int) bool {
			if n > len(raw) {
				n = len(raw)
			}
			path := raw[:n]
			cleaned := pages.CleanPath(path)
			if len(cleaned) == 0 {
				return true
			}

			f := testutil.NewStorefront()
			set, _ := newSet(f)
			if err := set.Home.NavigateToCategory(path); err != nil {
				return false
			}

			hovers, clicks := f.Selectors("hover"), f.Selectors("click")
			if strings.EqualFold(cleaned[0], "men") {
				if len(hovers) != 0 || len(clicks) != len(cleaned) {
					return false
				}
				return clicks[0] == pages.MenTopLevel(cleaned[0])
			}

			if len(hovers) != len(cleaned)-1 || len(clicks) != 1 {
				return false
			}
			for i, label := range cleaned[:len(cleaned)-1] {
				if hovers[i] != pages.NavMenuItem(label) {
					return false
				}
			}
			return clicks[0] == pages.NavMenuItem(cleaned[len(cleaned)-1])
		},
		pathGen,
		gen.IntRange(1, 3),
	))

	properties.TestingRun(t)
}

func TestDriver_NavigateDismissesPopups(t *testing.T) {
	f := testutil.NewStorefront()
	set, mem := newSet(f)

	require.NoError(t, set.Base.Navigate("https://shop.example/"))

	assert.Equal(t, "https://shop.example/", f.URL())
	assert.Equal(t, []string{"button Consent", "button Close"}, f.Selectors("click_role"))
	assert.Equal(t, []string{"Navigating to https://shop.example/"}, mem.StepNames())
}

func TestDriver_NavigateFailure(t *testing.T) {
	f := testutil.NewStorefront()
	f.Fail("goto", "https://shop.example/", testutil.Timeout("goto", ""))
	set, _ := newSet(f)

	err := set.Base.Navigate("https://shop.example/")
	require.Error(t, err)
	assert.Equal(t, browser.KindTimeout, browser.KindOf(err))
	assert.Empty(t, f.Selectors("click_role"), "no popup handling after a failed load")
}

func TestDriver_IsVisibleSwallowsErrors(t *testing.T) {
	f := testutil.NewStorefront()
	f.Fail("is_visible", "#broken", errors.New("frame detached"))
	f.Remove("#gone")
	set, _ := newSet(f)

	assert.True(t, set.Base.IsVisible("#present"))
	assert.False(t, set.Base.IsVisible("#gone"))
	assert.False(t, set.Base.IsVisible("#broken"))
}

func TestDriver_TakeScreenshotAttachesPNG(t *testing.T) {
	f := testutil.NewStorefront()
	set, mem := newSet(f)

	require.NoError(t, set.Base.TakeScreenshot("cart"))

	a, ok := mem.Attachment("cart")
	require.True(t, ok)
	assert.Equal(t, evidence.MediaPNG, a.MediaType)
	assert.Equal(t, testutil.PNG, a.Data)
}

func TestDriver_WaitForLoaderIsAdvisory(t *testing.T) {
	f := testutil.NewStorefront()
	f.Fail("wait_for", pages.LoadingMask, testutil.Timeout("wait_for", pages.LoadingMask))
	set, _ := newSet(f)

	set.Base.WaitForLoader()
	assert.Len(t, f.CallsOf("wait_for"), 1)
}

func TestDriver_ClickWaitsForVisibility(t *testing.T) {
	f := testutil.NewStorefront()
	f.Remove("#missing")
	set, _ := newSet(f)

	require.NoError(t, set.Base.Click("#ok"))
	assert.Equal(t, []string{"wait_for #ok = visible", "click #ok"}, f.Ops())

	f.Reset()
	err := set.Base.Click("#missing")
	assert.True(t, browser.IsNotFound(err))
	assert.Empty(t, f.Selectors("click"))

	f.Reset()
	f.Fail("wait_for", "#covered", testutil.Timeout("wait_for", "#covered"))
	err = set.Base.Click("#covered")
	assert.True(t, browser.IsTimeout(err), "present but never visible")
	assert.Empty(t, f.Selectors("click"))
}

func TestDriver_PressKeyAndFill(t *testing.T) {
	f := testutil.NewStorefront()
	set, _ := newSet(f)

	require.NoError(t, set.Base.Fill("#q", "tank"))
	require.NoError(t, set.Base.PressKey("#q", "Enter"))

	assert.Equal(t, []testutil.Call{{Op: "fill", Selector: "#q", Value: "tank"}}, f.CallsOf("fill"))
	assert.Equal(t, []testutil.Call{{Op: "press", Selector: "#q", Value: "Enter"}}, f.CallsOf("press"))
}
