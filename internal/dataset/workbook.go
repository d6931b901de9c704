// Package dataset reads the scenario workbook.
//
// The workbook is an xlsx file with an orders sheet (one row per checkout
// scenario) and a customer sheet (contact and address data, first row
// used). Each sheet has a declared schema that is checked when the sheet is
// read, so shape problems fail the run up front instead of surfacing as a
// broken scenario later.
package dataset

import (
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
)

// OrderRow is one row of the orders sheet.
type OrderRow struct {
	Row          int
	Scenario     string
	Category     string
	SubCategory1 string
	SubCategory2 string
	Size         string
	Color        string
	Pattern      string
	Climate      string
	Style        string
	Quantity     int // 0 when the cell is empty
	DiscountCode string
}

// Customer is the shipping and contact profile shared by every scenario.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Workbook is an in-memory copy of every sheet of a workbook file.
type Workbook struct {
	path   string
	sheets map[string][][]string
}

// Open reads every sheet of the xlsx file at path. The file is read once
// and closed before Open returns.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		code := ErrCodeUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeMissingFile
		}
		return nil, &ConfigError{Code: code, Path: path, Message: "workbook not found: " + path, Err: err}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ConfigError{Code: ErrCodeUnreadable, Path: path, Message: "failed to open workbook", Err: err}
	}
	defer f.Close()

	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, &ConfigError{Code: ErrCodeUnreadable, Path: path, Sheet: name, Message: "failed to read sheet", Err: err}
		}
		sheets[name] = rows
	}
	return &Workbook{path: path, sheets: sheets}, nil
}

// NewWorkbook builds a workbook from rows already in memory. The first row
// of each sheet is its header.
func NewWorkbook(sheets map[string][][]string) *Workbook {
	return &Workbook{path: "memory", sheets: sheets}
}

// Path returns where the workbook was read from.
func (w *Workbook) Path() string {
	return w.path
}

// Sheets returns the sheet names present in the workbook.
func (w *Workbook) Sheets() []string {
	names := make([]string, 0, len(w.sheets))
	for name := range w.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the non-empty rows of the sheet named by schema, validated
// against it.
func (w *Workbook) Table(schema Schema) ([]Record, error) {
	rows, ok := w.sheets[schema.Sheet]
	if !ok {
		return nil, &ConfigError{
			Code:    ErrCodeMissingTable,
			Path:    w.path,
			Sheet:   schema.Sheet,
			Message: "missing '" + schema.Sheet + "' sheet in workbook",
		}
	}
	return schema.apply(rows)
}

// Orders returns every non-empty row of the orders sheet, in sheet order.
func (w *Workbook) Orders() ([]OrderRow, error) {
	records, err := w.Table(OrderSchema)
	if err != nil {
		return nil, err
	}
	orders := make([]OrderRow, 0, len(records))
	for _, r := range records {
		orders = append(orders, OrderRow{
			Row:          r.Row,
			Scenario:     r.Get("Scenario"),
			Category:     r.Get("Category"),
			SubCategory1: r.Get("SubCategory1"),
			SubCategory2: r.Get("SubCategory2"),
			Size:         r.Get("Size"),
			Color:        r.Get("Color"),
			Pattern:      r.Get("Pattern"),
			Climate:      r.Get("Climate"),
			Style:        r.Get("Style"),
			Quantity:     r.Int("Quantity"),
			DiscountCode: r.Get("DiscountCode"),
		})
	}
	return orders, nil
}

// Customer returns the first non-empty row of the customer sheet.
func (w *Workbook) Customer() (Customer, error) {
	records, err := w.Table(CustomerSchema)
	if err != nil {
		return Customer{}, err
	}
	if len(records) == 0 {
		return Customer{}, &ConfigError{
			Code:    ErrCodeEmptyTable,
			Path:    w.path,
			Sheet:   CustomersSheet,
			Message: "customer sheet has no data rows",
		}
	}
	r := records[0]
	return Customer{
		Email:     r.Get("email"),
		FirstName: r.Get("first_name"),
		LastName:  r.Get("last_name"),
		Street:    r.Get("street"),
		City:      r.Get("city"),
		ZipCode:   r.Get("zip_code"),
		Country:   r.Get("country"),
		Phone:     r.Get("phone"),
	}, nil
}
