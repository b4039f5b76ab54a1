package datasets

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names shared by the CSV files and the SQLite tables
const (
	ColCrop          = "Crop"
	ColUsefulDomains = "Useful Domains"

	ColCompanyName    = "CompanyName"
	ColDistrict       = "District"
	ColClassification = "CompanyIndustrialClassification"
	ColAddress        = "Registered_Office_Address"
	ColStatus         = "CompanyStatus"
	ColDistance       = "Distance"
	ColRating         = "StarRating"
)

var (
	byproductColumns = []string{ColCrop, ColUsefulDomains}
	companyColumns   = []string{ColCompanyName, ColDistrict, ColClassification, ColAddress}
	optionalColumns  = []string{ColStatus, ColDistance, ColRating}
)

// cellFunc returns a cell value and whether it is present (column exists and
// the value is not null)
type cellFunc func(col string) (string, bool)

func requireColumns(table string, have map[string]int, cols []string) error {
	for _, col := range cols {
		if _, ok := have[col]; !ok {
			return fmt.Errorf("%s: %w %q", table, ErrMissingColumn, col)
		}
	}
	return nil
}

func buildByproduct(get cellFunc) ByproductEntry {
	crop, _ := get(ColCrop)
	raw, _ := get(ColUsefulDomains)
	return ByproductEntry{
		Crop:          strings.TrimSpace(crop),
		UsefulDomains: ParseDomains(raw),
	}
}

func buildCompany(get cellFunc, row int) (CompanyRecord, error) {
	name, _ := get(ColCompanyName)
	district, _ := get(ColDistrict)
	classification, _ := get(ColClassification)
	address, _ := get(ColAddress)

	c := CompanyRecord{
		Name:                     name,
		District:                 district,
		IndustrialClassification: strings.TrimSpace(classification),
		Address:                  address,
	}

	if v, ok := get(ColStatus); ok && strings.TrimSpace(v) != "" {
		status := strings.TrimSpace(v)
		c.Status = &status
	}

	var err error
	if c.Distance, err = optionalFloat(get, ColDistance); err != nil {
		return c, fmt.Errorf("companies row %d: %w", row, err)
	}
	if c.Rating, err = optionalFloat(get, ColRating); err != nil {
		return c, fmt.Errorf("companies row %d: %w", row, err)
	}
	return c, nil
}

func optionalFloat(get cellFunc, col string) (*float64, error) {
	v, ok := get(col)
	if !ok {
		return nil, nil
	}
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: invalid number %q", col, v)
	}
	return &f, nil
}
