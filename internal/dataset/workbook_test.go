package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var orderHeader = []string{
	"Scenario", "Category", "SubCategory1", "SubCategory2",
	"Size", "Color", "Pattern", "Climate", "Style", "Quantity", "DiscountCode",
}

var customerHeader = []string{
	"email", "first_name", "last_name", "street", "city", "zip_code", "country", "phone",
}

var customerRow = []string{
	"jane@example.com", "Jane", "Doe", "1 Main St", "Springfield", "12345", "United States", "5551234567",
}

func TestOrders_DropsEmptyRowsKeepsOrder(t *testing.T) {
	wb := NewWorkbook(map[string][][]string{
		OrdersSheet: {
			orderHeader,
			{"Men tee", "Men", "Tops", "Tees", "M", "Blue", "", "", "", "2", "SAVE10"},
			{},
			{"", "  ", ""},
			{"Gear bag", "Gear", "Bags"},
		},
	})

	orders, err := wb.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, OrderRow{
		Row:          2,
		Scenario:     "Men tee",
		Category:     "Men",
		SubCategory1: "Tops",
		SubCategory2: "Tees",
		Size:         "M",
		Color:        "Blue",
		Quantity:     2,
		DiscountCode: "SAVE10",
	}, orders[0])
	assert.Equal(t, "Gear bag", orders[1].Scenario)
	assert.Equal(t, 5, orders[1].Row)
	assert.Zero(t, orders[1].Quantity)
}

func TestOrders_HeaderMatchingIgnoresCaseAndOrder(t *testing.T) {
	wb := NewWorkbook(map[string][][]string{
		OrdersSheet: {
			{" quantity ", "CATEGORY", "scenario"},
			{"3", "Women", "Women jacket"},
		},
	})

	orders, err := wb.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Women jacket", orders[0].Scenario)
	assert.Equal(t, "Women", orders[0].Category)
	assert.Equal(t, 3, orders[0].Quantity)
}

func TestOrders_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]string
		row    int
		column string
	}{
		{
			name:   "missing required column",
			rows:   [][]string{{"Category", "Size"}, {"Men", "M"}},
			row:    1,
			column: "Scenario",
		},
		{
			name:   "empty required value",
			rows:   [][]string{{"Scenario", "Category"}, {"ok", "Men"}, {"", "Gear"}},
			row:    3,
			column: "Scenario",
		},
		{
			name:   "quantity not a number",
			rows:   [][]string{{"Scenario", "Category", "Quantity"}, {"a", "Men", "two"}},
			row:    2,
			column: "Quantity",
		},
		{
			name:   "quantity not positive",
			rows:   [][]string{{"Scenario", "Category", "Quantity"}, {"a", "Men", "0"}},
			row:    2,
			column: "Quantity",
		},
		{
			name:   "quantity fractional",
			rows:   [][]string{{"Scenario", "Category", "Quantity"}, {"a", "Men", "1.5"}},
			row:    2,
			column: "Quantity",
		},
		{
			name: "no header",
			rows: [][]string{},
			row:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWorkbook(map[string][][]string{OrdersSheet: tt.rows})

			_, err := wb.Orders()
			require.Error(t, err)
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, OrdersSheet, se.Sheet)
			assert.Equal(t, tt.row, se.Row)
			assert.Equal(t, tt.column, se.Column)
			assert.True(t, IsSchemaError(err))
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"2", 2, true},
		{"2.0", 2, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"2.5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCount(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingSheets(t *testing.T) {
	wb := NewWorkbook(map[string][][]string{"Other": {{"a"}}})

	_, err := wb.Orders()
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeMissingTable, ce.Code)
	assert.Equal(t, OrdersSheet, ce.Sheet)

	_, err = wb.Customer()
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeMissingTable, ce.Code)
	assert.Equal(t, CustomersSheet, ce.Sheet)
}

func TestCustomer_FirstNonEmptyRow(t *testing.T) {
	second := append([]string(nil), customerRow...)
	second[0] = "second@example.com"
	wb := NewWorkbook(map[string][][]string{
		CustomersSheet: {customerHeader, {}, customerRow, second},
	})

	c, err := wb.Customer()
	require.NoError(t, err)
	assert.Equal(t, Customer{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Street:    "1 Main St",
		City:      "Springfield",
		ZipCode:   "12345",
		Country:   "United States",
		Phone:     "5551234567",
	}, c)
}

func TestCustomer_NoRows(t *testing.T) {
	wb := NewWorkbook(map[string][][]string{CustomersSheet: {customerHeader}})

	_, err := wb.Customer()
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeEmptyTable, ce.Code)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.xlsx"))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeMissingFile, ce.Code)
	assert.True(t, IsConfigError(err))
}

func TestOpen_RealWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_data.xlsx")
	writeWorkbook(t, path)

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, wb.Path())
	assert.Equal(t, []string{CustomersSheet, OrdersSheet}, wb.Sheets())

	orders, err := wb.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Men T-shirt", orders[0].Scenario)
	assert.Equal(t, 2, orders[0].Quantity)
	assert.Equal(t, "Women jacket", orders[1].Scenario)
	assert.Equal(t, 4, orders[1].Row)

	c, err := wb.Customer()
	require.NoError(t, err)
	assert.Equal(t, "5551234567", c.Phone, "numeric phone cell keeps its display text")
	assert.Equal(t, "12345", c.ZipCode)
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", OrdersSheet))
	require.NoError(t, f.SetSheetRow(OrdersSheet, "A1", &orderHeader))
	require.NoError(t, f.SetSheetRow(OrdersSheet, "A2", &[]interface{}{
		"Men T-shirt", "Men", "Tops", "Tees", "M", "Blue", nil, nil, nil, 2, "SAVE10",
	}))
	require.NoError(t, f.SetSheetRow(OrdersSheet, "A4", &[]interface{}{
		"Women jacket", "Women", "Tops", "Jackets", "S", "Red", nil, nil, nil, 1, nil,
	}))

	_, err := f.NewSheet(CustomersSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(CustomersSheet, "A1", &customerHeader))
	require.NoError(t, f.SetSheetRow(CustomersSheet, "A2", &[]interface{}{
		"jane@example.com", "Jane", "Doe", "1 Main St", "Springfield", 12345, "United States", 5551234567,
	}))

	require.NoError(t, f.SaveAs(path))
}
