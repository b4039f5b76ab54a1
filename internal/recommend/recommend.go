// Package recommend matches a crop's by-products to companies in a district.
package recommend

import (
	"fmt"
	"strings"

	"github.com/kartoza/byproduct-exchange/internal/datasets"
	"github.com/kartoza/byproduct-exchange/internal/models"
)

const (
	// MaxResults caps the number of companies returned per request
	MaxResults = 10

	DefaultStatus   = "Unknown"
	DefaultDistance = 80.0
	DefaultRating   = 4.5
)

// Catalog is the read side of the dataset store
type Catalog interface {
	FindByproduct(crop string) (datasets.ByproductEntry, bool)
	QueryCompanies(district string, domains datasets.DomainSet) []datasets.CompanyRecord
}

// CropNotFoundError is returned when the crop has no by-product entry
type CropNotFoundError struct {
	Crop string
}

func (e *CropNotFoundError) Error() string {
	return fmt.Sprintf("No data available for crop: %s", e.Crop)
}

// Result holds the normalized request and up to MaxResults recommendations
type Result struct {
	Crop            string
	District        string
	Recommendations []models.Recommendation
}

// Empty reports whether no company matched
func (r *Result) Empty() bool {
	return len(r.Recommendations) == 0
}

// Message is the notice returned when no company matched
func (r *Result) Message() string {
	return fmt.Sprintf("No companies found in district %s for crop %s by-products", r.District, r.Crop)
}

// Service answers recommendation requests against a catalog
type Service struct {
	catalog Catalog
}

// NewService creates a Service reading from catalog
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Recommend looks up the crop's useful domains and returns the first
// MaxResults companies in the district classified under one of them, in
// catalog order. Crop and district are lowercased and trimmed first; the
// normalized values are echoed in notices and errors.
func (s *Service) Recommend(req models.RecommendationRequest) (*Result, error) {
	crop := normalize(req.CropName)
	district := normalize(req.District)

	entry, ok := s.catalog.FindByproduct(crop)
	if !ok {
		return nil, &CropNotFoundError{Crop: crop}
	}

	matches := s.catalog.QueryCompanies(district, entry.UsefulDomains)
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}

	result := &Result{
		Crop:            crop,
		District:        district,
		Recommendations: make([]models.Recommendation, 0, len(matches)),
	}
	for _, c := range matches {
		result.Recommendations = append(result.Recommendations, toRecommendation(c))
	}
	return result, nil
}

func toRecommendation(c datasets.CompanyRecord) models.Recommendation {
	rec := models.Recommendation{
		CompanyName: c.Name,
		Address:     c.Address,
		Status:      DefaultStatus,
		Domain:      c.IndustrialClassification,
		Distance:    DefaultDistance,
		Rating:      DefaultRating,
	}
	if c.Status != nil {
		rec.Status = *c.Status
	}
	if c.Distance != nil {
		rec.Distance = *c.Distance
	}
	if c.Rating != nil {
		rec.Rating = *c.Rating
	}
	return rec
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
