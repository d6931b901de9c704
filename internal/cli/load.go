package cli

import (
	"fmt"

	"github.com/roach88/storefront-e2e/internal/catalog"
	"github.com/roach88/storefront-e2e/internal/config"
	"github.com/roach88/storefront-e2e/internal/dataset"
)

// CatalogOptions select which scenarios of the workbook are used.
type CatalogOptions struct {
	DataFile   string // overrides reporting.data_file
	Filter     string // glob on scenario names
	Duplicates string // duplicate name policy: reject | suffix
}

// Inputs is everything a run reads before the first scenario starts.
type Inputs struct {
	Settings  *config.Settings
	DataFile  string
	Scenarios []catalog.OrderScenario
	Customer  dataset.Customer
	Total     int // scenarios in the workbook before filtering
}

// loadSettings seeds the environment from the .env file and loads the
// settings document.
func loadSettings(opts *RootOptions) (*config.Settings, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}
	return config.Load(opts.Config)
}

// loadInputs loads settings, the workbook and the catalog. Every error is
// fatal to the run and maps to ExitCommandError.
func loadInputs(opts *RootOptions, copts CatalogOptions) (*Inputs, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	dataFile := copts.DataFile
	if dataFile == "" {
		dataFile = settings.Reporting.DataFile
	}

	scenarios, total, customer, err := loadCatalog(dataFile, copts)
	if err != nil {
		return nil, err
	}
	return &Inputs{
		Settings:  settings,
		DataFile:  dataFile,
		Scenarios: scenarios,
		Customer:  customer,
		Total:     total,
	}, nil
}

func loadCatalog(path string, copts CatalogOptions) ([]catalog.OrderScenario, int, dataset.Customer, error) {
	policy, err := catalog.ParsePolicy(copts.Duplicates)
	if err != nil {
		return nil, 0, dataset.Customer{}, err
	}

	wb, err := dataset.Open(path)
	if err != nil {
		return nil, 0, dataset.Customer{}, err
	}
	rows, err := wb.Orders()
	if err != nil {
		return nil, 0, dataset.Customer{}, err
	}
	customer, err := wb.Customer()
	if err != nil {
		return nil, 0, dataset.Customer{}, err
	}

	all, err := catalog.Build(rows, policy)
	if err != nil {
		return nil, 0, dataset.Customer{}, err
	}
	selected, err := catalog.Filter(all, copts.Filter)
	if err != nil {
		return nil, 0, dataset.Customer{}, fmt.Errorf("--filter: %w", err)
	}
	return selected, len(all), customer, nil
}
