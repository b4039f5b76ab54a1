package datasets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kartoza/byproduct-exchange/internal/logging"
)

var (
	// ErrMissingColumn is returned when a required column is absent from a source table
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyDomains is returned when a crop row lists no usable domain
	ErrEmptyDomains = errors.New("crop has no useful domains")
	// ErrNoRows is returned when a source table holds no data rows
	ErrNoRows = errors.New("table has no data rows")
)

// DomainSet is the set of industrial classifications a crop's by-products can feed
type DomainSet map[string]struct{}

// ParseDomains splits a comma-separated domain list, trimming each token and
// dropping empty ones
func ParseDomains(raw string) DomainSet {
	set := DomainSet{}
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			set[token] = struct{}{}
		}
	}
	return set
}

// Contains reports membership. With foldCase the comparison ignores case.
func (d DomainSet) Contains(domain string, foldCase bool) bool {
	if _, ok := d[domain]; ok {
		return true
	}
	if !foldCase {
		return false
	}
	for member := range d {
		if strings.EqualFold(member, domain) {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexical order
func (d DomainSet) Sorted() []string {
	out := make([]string, 0, len(d))
	for member := range d {
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}

// ByproductEntry maps a crop to the domains that can use its by-products
type ByproductEntry struct {
	Crop          string
	UsefulDomains DomainSet
}

// CompanyRecord is one row of the company registry. Optional fields are nil
// when the column is missing or the cell is empty.
type CompanyRecord struct {
	Name                     string
	District                 string
	IndustrialClassification string
	Address                  string
	Status                   *string
	Distance                 *float64
	Rating                   *float64
}

// Options tune how the store matches companies
type Options struct {
	CaseInsensitiveDomains bool
}

// Store is an immutable snapshot of both tables. It has no mutation API and
// is safe for concurrent use without locking.
type Store struct {
	byproducts map[string]ByproductEntry
	companies  []CompanyRecord
	byDistrict map[string][]int
	source     string
	opts       Options
}

// NewStore indexes the given rows. Crops are keyed case-insensitively and the
// first row wins on duplicates. Companies keep their input order.
func NewStore(source string, byproducts []ByproductEntry, companies []CompanyRecord, opts Options) (*Store, error) {
	if len(byproducts) == 0 {
		return nil, fmt.Errorf("byproducts: %w", ErrNoRows)
	}

	s := &Store{
		byproducts: make(map[string]ByproductEntry, len(byproducts)),
		companies:  companies,
		byDistrict: make(map[string][]int),
		source:     source,
		opts:       opts,
	}

	for _, entry := range byproducts {
		if len(entry.UsefulDomains) == 0 {
			return nil, fmt.Errorf("byproducts: crop %q: %w", entry.Crop, ErrEmptyDomains)
		}
		key := normalizeKey(entry.Crop)
		if _, exists := s.byproducts[key]; exists {
			logging.Warn().Str("crop", entry.Crop).Msg("duplicate crop row ignored")
			continue
		}
		s.byproducts[key] = entry
	}

	for i, c := range companies {
		key := normalizeKey(c.District)
		s.byDistrict[key] = append(s.byDistrict[key], i)
	}

	return s, nil
}

// FindByproduct looks a crop up ignoring case and surrounding whitespace
func (s *Store) FindByproduct(crop string) (ByproductEntry, bool) {
	entry, ok := s.byproducts[normalizeKey(crop)]
	return entry, ok
}

// QueryCompanies returns companies in the district whose industrial
// classification is one of domains, in dataset order
func (s *Store) QueryCompanies(district string, domains DomainSet) []CompanyRecord {
	var out []CompanyRecord
	for _, i := range s.byDistrict[normalizeKey(district)] {
		c := s.companies[i]
		if domains.Contains(c.IndustrialClassification, s.opts.CaseInsensitiveDomains) {
			out = append(out, c)
		}
	}
	return out
}

// Stats describes a loaded store
type Stats struct {
	Source     string `json:"source"`
	Byproducts int    `json:"byproducts"`
	Companies  int    `json:"companies"`
	Districts  int    `json:"districts"`
}

// Stats returns row counts for the loaded tables
func (s *Store) Stats() Stats {
	return Stats{
		Source:     s.source,
		Byproducts: len(s.byproducts),
		Companies:  len(s.companies),
		Districts:  len(s.byDistrict),
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
