package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartoza/byproduct-exchange/internal/config"
	"github.com/kartoza/byproduct-exchange/internal/datasets"
	"github.com/kartoza/byproduct-exchange/internal/metrics"
	"github.com/kartoza/byproduct-exchange/internal/models"
)

func ptr[T any](v T) *T { return &v }

func newTestStore(t *testing.T) *datasets.Store {
	t.Helper()

	byproducts := []datasets.ByproductEntry{
		{Crop: "Rice", UsefulDomains: datasets.ParseDomains("Textiles, Paper")},
		{Crop: "Wheat", UsefulDomains: datasets.ParseDomains("Food Processing")},
		{Crop: "Sugarcane", UsefulDomains: datasets.ParseDomains("Energy")},
	}
	companies := []datasets.CompanyRecord{
		{Name: "Thanjavur Weaves", District: "Thanjavur", IndustrialClassification: "Textiles",
			Address: "12 Mill Road", Status: ptr("Active"), Distance: ptr(12.5), Rating: ptr(4.1)},
		{Name: "Delta Looms", District: "Thanjavur", IndustrialClassification: "Textiles",
			Address: "3 Temple St"},
		{Name: "Cauvery Chemicals", District: "Thanjavur", IndustrialClassification: "Chemicals",
			Address: "9 Canal Rd"},
	}
	for i := 1; i <= 12; i++ {
		companies = append(companies, datasets.CompanyRecord{
			Name:                     fmt.Sprintf("Pune Energy %02d", i),
			District:                 "Pune",
			IndustrialClassification: "Energy",
			Address:                  "Ring Road",
		})
	}

	store, err := datasets.NewStore("test", byproducts, companies, datasets.Options{})
	require.NoError(t, err)
	return store
}

func newTestHandler(t *testing.T) (*Handler, *mux.Router) {
	t.Helper()
	cfg := config.Config{Version: "test"}
	handler := NewHandler(newTestStore(t), metrics.New(), cfg)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return handler, r
}

func postRecommendations(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	json.NewDecoder(w.Body).Decode(&response)

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestInfoEndpoint(t *testing.T) {
	_, r := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/info", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var info models.InfoResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, "test", info.Source)
	assert.Equal(t, 3, info.Byproducts)
	assert.Equal(t, 15, info.Companies)
	assert.Equal(t, 2, info.Districts)
}

func TestRecommendationsFound(t *testing.T) {
	_, r := newTestHandler(t)

	w := postRecommendations(r, `{"crop_name": "Rice", "district": "Thanjavur"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	expected := `{"recommendations":[
		{"company_name":"Thanjavur Weaves","address":"12 Mill Road","status":"Active","domain":"Textiles","distance":12.5,"rating":4.1},
		{"company_name":"Delta Looms","address":"3 Temple St","status":"Unknown","domain":"Textiles","distance":80,"rating":4.5}
	]}`
	assert.JSONEq(t, expected, w.Body.String())
}

func TestRecommendationsCapped(t *testing.T) {
	_, r := newTestHandler(t)

	w := postRecommendations(r, `{"crop_name": "sugarcane", "district": "PUNE"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RecommendationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recommendations, 10)
	assert.Equal(t, "Pune Energy 01", resp.Recommendations[0].CompanyName)
	assert.Equal(t, "Pune Energy 10", resp.Recommendations[9].CompanyName)
}

func TestRecommendationsNoCompanies(t *testing.T) {
	_, r := newTestHandler(t)

	w := postRecommendations(r, `{"crop_name": "Wheat", "district": "Atlantis"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "No companies found in district atlantis for crop wheat by-products"}`, w.Body.String())
}

func TestRecommendationsUnknownCrop(t *testing.T) {
	_, r := newTestHandler(t)

	w := postRecommendations(r, `{"crop_name": "Quinoa", "district": "Pune"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error": "No data available for crop: quinoa"}`, w.Body.String())
}

func TestRecommendationsDeterministic(t *testing.T) {
	_, r := newTestHandler(t)

	body := `{"crop_name": " RICE ", "district": "thanjavur "}`
	first := postRecommendations(r, body)
	second := postRecommendations(r, body)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRecommendationsInvalidBody(t *testing.T) {
	_, r := newTestHandler(t)

	w := postRecommendations(r, `{"crop_name": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "invalid request body"}`, w.Body.String())
}

func TestRecommendationsMissingFields(t *testing.T) {
	_, r := newTestHandler(t)

	w := postRecommendations(r, `{"crop_name": "   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error": "crop_name is required; district is required"}`, w.Body.String())
}

func TestRecommendationsWrongMethod(t *testing.T) {
	_, r := newTestHandler(t)

	req := httptest.NewRequest("GET", "/recommendations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRecommendationsWithoutStore(t *testing.T) {
	handler := NewHandler(nil, nil, config.Config{})
	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	w := postRecommendations(r, `{"crop_name": "Rice", "district": "Pune"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecommendationOutcomeMetrics(t *testing.T) {
	handler, r := newTestHandler(t)

	postRecommendations(r, `{"crop_name": "Rice", "district": "Thanjavur"}`)
	postRecommendations(r, `{"crop_name": "Quinoa", "district": "Pune"}`)
	postRecommendations(r, `{"crop_name": "Wheat", "district": "Atlantis"}`)
	postRecommendations(r, `not json`)

	m := handler.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeCropNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeInvalid)))
}
