package datasets

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kartoza/byproduct-exchange/internal/config"
	"github.com/kartoza/byproduct-exchange/internal/logging"
)

// Load builds the store from the configured source. The returned store is
// complete; on error no store is returned.
func Load(data config.DataConfig, matching config.MatchingConfig) (*Store, error) {
	opts := Options{CaseInsensitiveDomains: matching.CaseInsensitiveDomains}
	start := time.Now()

	var (
		store *Store
		err   error
	)
	switch data.Source {
	case "csv":
		store, err = LoadCSV(
			resolve(data.Dir, data.ByproductsFile),
			resolve(data.Dir, data.CompaniesFile),
			opts,
		)
	case "sqlite":
		store, err = LoadSQLite(data.SQLitePath, opts)
	default:
		return nil, fmt.Errorf("unknown data source %q", data.Source)
	}
	if err != nil {
		return nil, err
	}

	stats := store.Stats()
	logging.Info().
		Str("source", stats.Source).
		Int("byproducts", stats.Byproducts).
		Int("companies", stats.Companies).
		Int("districts", stats.Districts).
		Dur("elapsed", time.Since(start)).
		Msg("Datasets loaded")
	return store, nil
}

// resolve joins relative file names onto dir
func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
