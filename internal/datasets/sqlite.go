package datasets

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kartoza/byproduct-exchange/internal/logging"
)

// SQLite table names
const (
	TableByproducts = "byproducts"
	TableCompanies  = "companies"
)

// LoadSQLite reads both tables from a SQLite database opened read-only.
// Tables use the same column names as the CSV files; rows are read in
// rowid order so results match the CSV row order. The connection is closed
// once the snapshot is built.
func LoadSQLite(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	byproducts, err := loadByproductsTable(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load byproducts: %w", err)
	}
	companies, err := loadCompaniesTable(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}

	logging.Debug().
		Str("path", path).
		Int("byproducts", len(byproducts)).
		Int("companies", len(companies)).
		Msg("Loaded SQLite datasets")

	return NewStore("sqlite", byproducts, companies, opts)
}

// tableColumns reads the column names of a table, returning a name->position map
func tableColumns(db *sql.DB, table string) (map[string]int, error) {
	var count int
	err := db.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&count)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]int)
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = cid
	}
	return cols, rows.Err()
}

// selectRows selects the given columns that exist in table and calls fn per
// row. Missing optional columns and NULL cells read as absent.
func selectRows(db *sql.DB, table string, required, optional []string, fn func(get cellFunc, row int) error) error {
	have, err := tableColumns(db, table)
	if err != nil {
		return err
	}
	if err := requireColumns(table, have, required); err != nil {
		return err
	}

	selected := append([]string{}, required...)
	for _, col := range optional {
		if _, ok := have[col]; ok {
			selected = append(selected, col)
		}
	}

	quoted := make([]string, len(selected))
	for i, col := range selected {
		quoted[i] = quoteIdent(col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(quoted, ", "), quoteIdent(table))

	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	values := make([]sql.NullString, len(selected))
	dest := make([]interface{}, len(selected))
	for i := range values {
		dest[i] = &values[i]
	}
	index := make(map[string]int, len(selected))
	for i, col := range selected {
		index[col] = i
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan %s row %d: %w", table, n+1, err)
		}
		n++
		get := func(col string) (string, bool) {
			i, ok := index[col]
			if !ok || !values[i].Valid {
				return "", false
			}
			return values[i].String, true
		}
		if err := fn(get, n); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", table, ErrNoRows)
	}
	return nil
}

func loadByproductsTable(db *sql.DB) ([]ByproductEntry, error) {
	var out []ByproductEntry
	err := selectRows(db, TableByproducts, byproductColumns, nil, func(get cellFunc, _ int) error {
		out = append(out, buildByproduct(get))
		return nil
	})
	return out, err
}

func loadCompaniesTable(db *sql.DB) ([]CompanyRecord, error) {
	var out []CompanyRecord
	err := selectRows(db, TableCompanies, companyColumns, optionalColumns, func(get cellFunc, row int) error {
		c, err := buildCompany(get, row)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
