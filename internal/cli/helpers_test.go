package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/storefront-e2e/internal/browser"
	"github.com/roach88/storefront-e2e/internal/config"
	"github.com/roach88/storefront-e2e/internal/dataset"
	"github.com/roach88/storefront-e2e/internal/testutil"
)

// workspace is a temporary project layout: settings, workbook and report
// locations all under one directory.
type workspace struct {
	dir        string
	configPath string
	dataFile   string
	resultsDir string
	shotsDir   string
	historyDB  string
}

const settingsTemplate = `environment:
  browser: chromium
  platform: Linux
  tested_by: CI
  headless: true

urls:
  base_url: https://shop.example.com/

credentials: {}

timeouts:
  page_load: 30000
  element_wait: 10000

reporting:
  results_dir: %s
  screenshots_dir: %s
  history_db: %s
  data_file: %s

executor:
  name: ci
  type: github
`

var orderHeader = []any{
	"Scenario", "Category", "SubCategory1", "SubCategory2",
	"Size", "Color", "Pattern", "Climate", "Style", "Quantity", "DiscountCode",
}

func menTeeRow(name string) []any {
	return []any{name, "Men", "Tops", "Tees", "M", "Blue", nil, nil, nil, 2, "SAVE10"}
}

// newWorkspace writes settings and a workbook holding the given order rows.
func newWorkspace(t *testing.T, orders ...[]any) *workspace {
	t.Helper()
	for _, key := range []string{config.EnvBaseURL, config.EnvBrowser, config.EnvHeadless} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	ws := &workspace{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		dataFile:   filepath.Join(dir, "test_data.xlsx"),
		resultsDir: filepath.Join(dir, "report", "allure"),
		shotsDir:   filepath.Join(dir, "report", "screenshots"),
		historyDB:  filepath.Join(dir, "report", "history.db"),
	}
	settings := fmt.Sprintf(settingsTemplate, ws.resultsDir, ws.shotsDir, ws.historyDB, ws.dataFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(ws.historyDB), 0755))
	require.NoError(t, os.WriteFile(ws.configPath, []byte(settings), 0644))
	writeWorkbook(t, ws.dataFile, orders)
	return ws
}

func writeWorkbook(t *testing.T, path string, orders [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", dataset.OrdersSheet))
	require.NoError(t, f.SetSheetRow(dataset.OrdersSheet, "A1", &orderHeader))
	for i, row := range orders {
		require.NoError(t, f.SetSheetRow(dataset.OrdersSheet, fmt.Sprintf("A%d", i+2), &row))
	}

	_, err := f.NewSheet(dataset.CustomersSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(dataset.CustomersSheet, "A1", &[]any{
		"email", "first_name", "last_name", "street", "city", "zip_code", "country", "phone",
	}))
	require.NoError(t, f.SetSheetRow(dataset.CustomersSheet, "A2", &[]any{
		"jane@example.com", "Jane", "Doe", "1 Main St", "Springfield", 12345, "United States", 5551234567,
	}))
	require.NoError(t, f.SaveAs(path))
}

func (ws *workspace) rootOptions(format string) *RootOptions {
	return &RootOptions{
		Format:  format,
		Config:  ws.configPath,
		EnvFile: filepath.Join(ws.dir, "missing.env"),
	}
}

// fakeSession hands out scripted storefronts, keyed by page order.
type fakeSession struct {
	launched browser.LaunchOptions
	scripts  map[int]func(*testutil.FakeSurface)
	pages    []*testutil.FakeSurface
	closed   bool
}

func (s *fakeSession) NewPage() (browser.Surface, error) {
	f := testutil.NewStorefront()
	if script, ok := s.scripts[len(s.pages)]; ok {
		script(f)
	}
	s.pages = append(s.pages, f)
	return f, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSession) launcher() Launcher {
	return func(opts browser.LaunchOptions) (Session, error) {
		s.launched = opts
		return s, nil
	}
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func fixedClock() func() time.Time {
	return testutil.NewDeterministicClock().Now
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
