package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ColumnKind is the type a column's cells must parse as.
type ColumnKind int

const (
	// Text cells are taken as displayed, trimmed.
	Text ColumnKind = iota
	// Int cells must hold a positive whole number when non-empty.
	Int
)

// Column declares one column of a sheet.
type Column struct {
	Name string
	Kind ColumnKind

	// Required columns must appear in the header and hold a value in every
	// non-empty row.
	Required bool
}

// Schema declares the columns of a named sheet.
type Schema struct {
	Sheet   string
	Columns []Column
}

// Sheet names in the test data workbook.
const (
	OrdersSheet    = "Order_Details"
	CustomersSheet = "Customer_Details"
)

// OrderSchema is the shape of the orders sheet.
var OrderSchema = Schema{
	Sheet: OrdersSheet,
	Columns: []Column{
		{Name: "Scenario", Required: true},
		{Name: "Category", Required: true},
		{Name: "SubCategory1"},
		{Name: "SubCategory2"},
		{Name: "Size"},
		{Name: "Color"},
		{Name: "Pattern"},
		{Name: "Climate"},
		{Name: "Style"},
		{Name: "Quantity", Kind: Int},
		{Name: "DiscountCode"},
	},
}

// CustomerSchema is the shape of the customer sheet.
var CustomerSchema = Schema{
	Sheet: CustomersSheet,
	Columns: []Column{
		{Name: "email", Required: true},
		{Name: "first_name", Required: true},
		{Name: "last_name", Required: true},
		{Name: "street", Required: true},
		{Name: "city", Required: true},
		{Name: "zip_code", Required: true},
		{Name: "country", Required: true},
		{Name: "phone", Required: true},
	},
}

// Record is one validated data row keyed by declared column name.
type Record struct {
	Row    int
	Values map[string]string
}

// Get returns the trimmed cell for column, or "".
func (r Record) Get(column string) string {
	return r.Values[column]
}

// Int returns the parsed value of an Int column, or 0 when the cell is empty.
// The cell has already been validated.
func (r Record) Int(column string) int {
	n, _ := parseCount(r.Values[column])
	return n
}

// headerKey normalizes a header cell for matching: trimmed and case-folded.
func headerKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// apply validates rows against s. rows[0] is the header. Fully empty rows
// are dropped.
func (s Schema) apply(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Sheet: s.Sheet, Row: 1, Message: "sheet has no header row"}
	}

	index := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		key := headerKey(cell)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	positions := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		pos, ok := index[headerKey(col.Name)]
		if !ok {
			if col.Required {
				return nil, &SchemaError{Sheet: s.Sheet, Row: 1, Column: col.Name, Message: "required column missing from header"}
			}
			pos = -1
		}
		positions[i] = pos
	}

	var records []Record
	for r, row := range rows[1:] {
		rowNum := r + 2
		if isBlank(row) {
			continue
		}
		rec := Record{Row: rowNum, Values: make(map[string]string, len(s.Columns))}
		for i, col := range s.Columns {
			var cell string
			if p := positions[i]; p >= 0 && p < len(row) {
				cell = strings.TrimSpace(row[p])
			}
			if cell == "" {
				if col.Required {
					return nil, &SchemaError{Sheet: s.Sheet, Row: rowNum, Column: col.Name, Message: "required value is empty"}
				}
				continue
			}
			if col.Kind == Int {
				if _, err := parseCount(cell); err != nil {
					return nil, &SchemaError{Sheet: s.Sheet, Row: rowNum, Column: col.Name, Message: err.Error()}
				}
			}
			rec.Values[col.Name] = cell
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCount parses a positive whole number. Spreadsheet tools sometimes
// render integers as "2.0", which is accepted.
func parseCount(cell string) (int, error) {
	if cell == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		f, ferr := strconv.ParseFloat(cell, 64)
		if ferr != nil || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, fmt.Errorf("value %q is not a whole number", cell)
		}
		n = int(f)
	}
	if n <= 0 {
		return 0, fmt.Errorf("value %q must be positive", cell)
	}
	return n, nil
}
