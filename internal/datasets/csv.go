package datasets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads the byproducts and companies CSV files and builds a store.
// Either file failing to parse fails the whole load.
func LoadCSV(byproductsPath, companiesPath string, opts Options) (*Store, error) {
	var byproducts []ByproductEntry
	err := readCSV(byproductsPath, byproductColumns, func(get cellFunc, _ int) error {
		byproducts = append(byproducts, buildByproduct(get))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load byproducts: %w", err)
	}

	var companies []CompanyRecord
	err = readCSV(companiesPath, companyColumns, func(get cellFunc, row int) error {
		c, err := buildCompany(get, row)
		if err != nil {
			return err
		}
		companies = append(companies, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}

	return NewStore("csv", byproducts, companies, opts)
}

// readCSV streams a headed CSV file, calling fn once per data row with a
// lookup keyed by header name. Rows are numbered from 1 after the header.
func readCSV(path string, required []string, fn func(get cellFunc, row int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w", path, ErrNoRows)
		}
		return fmt.Errorf("read header of %s: %w", path, err)
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		colIdx[strings.TrimSpace(col)] = i
	}
	if err := requireColumns(path, colIdx, required); err != nil {
		return err
	}

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rows++

		get := func(col string) (string, bool) {
			i, ok := colIdx[col]
			if !ok || i >= len(record) {
				return "", false
			}
			return record[i], true
		}
		if err := fn(get, rows); err != nil {
			return err
		}
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoRows)
	}
	return nil
}
