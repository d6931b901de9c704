package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront-e2e/internal/dataset"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func badQuantityRow(name string) []any {
	row := menTeeRow(name)
	row[9] = "lots"
	return row
}

func TestValidate_Valid(t *testing.T) {
	ws := newWorkspace(t, menTeeRow("Men tee"), menTeeRow("Men tank"))

	stdout, _, err := execute(t, NewValidateCommand(ws.rootOptions("text")))

	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Settings valid: "+ws.configPath)
	assert.Contains(t, stdout, "✓ Workbook valid: "+ws.dataFile+" (2 scenario(s))")
}

func TestValidate_ValidJSON(t *testing.T) {
	ws := newWorkspace(t, menTeeRow("Men tee"))

	stdout, _, err := execute(t, NewValidateCommand(ws.rootOptions("json")))
	require.NoError(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, ws.dataFile, resp.Data.DataFile)
	assert.Equal(t, 1, resp.Data.Scenarios)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidate_SchemaErrorNamesRow(t *testing.T) {
	ws := newWorkspace(t, menTeeRow("Men tee"), badQuantityRow("Men tank"))

	stdout, _, err := execute(t, NewValidateCommand(ws.rootOptions("text")))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, "Order_Details row 3")
	assert.Contains(t, stdout, "E_SCHEMA: ")
	assert.NotContains(t, stdout, "Workbook valid")
}

func TestValidate_SchemaErrorJSON(t *testing.T) {
	ws := newWorkspace(t, badQuantityRow("Men tee"))

	stdout, _, err := execute(t, NewValidateCommand(ws.rootOptions("json")))
	require.Error(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SCHEMA", resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)

	issue := resp.Data.Errors[0]
	assert.Equal(t, dataset.OrdersSheet, issue.Sheet)
	assert.Equal(t, 2, issue.Row)
	assert.Equal(t, "Quantity", issue.Column)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, ws *workspace) *RootOptions
		args  []string
		codes []string
	}{
		{
			name: "missing settings skips the workbook",
			setup: func(_ *testing.T, ws *workspace) *RootOptions {
				opts := ws.rootOptions("json")
				opts.Config = filepath.Join(ws.dir, "nope.yaml")
				return opts
			},
			codes: []string{"E_CONFIG_READ"},
		},
		{
			name: "missing settings with explicit workbook",
			setup: func(_ *testing.T, ws *workspace) *RootOptions {
				opts := ws.rootOptions("json")
				opts.Config = filepath.Join(ws.dir, "nope.yaml")
				return opts
			},
			args:  []string{"--data", "missing.xlsx"},
			codes: []string{"E_CONFIG_READ", "E_MISSING_FILE"},
		},
		{
			name: "duplicate scenario names",
			setup: func(t *testing.T, ws *workspace) *RootOptions {
				writeWorkbook(t, ws.dataFile, [][]any{menTeeRow("A"), menTeeRow("A")})
				return ws.rootOptions("json")
			},
			codes: []string{ErrCodeDuplicateScenario},
		},
		{
			name:  "bad filter pattern",
			setup: func(_ *testing.T, ws *workspace) *RootOptions { return ws.rootOptions("json") },
			args:  []string{"--filter", "[Men"},
			codes: []string{ErrCodeGeneric},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t, menTeeRow("Men tee"))

			stdout, _, err := execute(t, NewValidateCommand(tt.setup(t, ws)), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp validateResponse
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			var codes []string
			for _, issue := range resp.Data.Errors {
				codes = append(codes, issue.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidate_DuplicatesAllowedWithSuffix(t *testing.T) {
	ws := newWorkspace(t, menTeeRow("A"), menTeeRow("A"))

	stdout, _, err := execute(t, NewValidateCommand(ws.rootOptions("text")), "--duplicates", "suffix")

	require.NoError(t, err)
	assert.Contains(t, stdout, "(2 scenario(s))")
}

func TestValidate_VerboseLogsToStderr(t *testing.T) {
	ws := newWorkspace(t, menTeeRow("Men tee"))
	opts := ws.rootOptions("json")
	opts.Verbose = true

	stdout, stderr, err := execute(t, NewValidateCommand(opts))

	require.NoError(t, err)
	assert.Contains(t, stderr, "Checked settings "+ws.configPath)
	assert.Contains(t, stderr, "Checked workbook "+ws.dataFile)
	assert.NotContains(t, stdout, "Checked")
}
