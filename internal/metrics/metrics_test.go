package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRecommendation(t *testing.T) {
	m := New()

	m.ObserveRecommendation(OutcomeFound, 3)
	m.ObserveRecommendation(OutcomeFound, 10)
	m.ObserveRecommendation(OutcomeCropNotFound, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(OutcomeCropNotFound)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Recommendations.WithLabelValues(OutcomeEmpty)))
}

func TestSetDatasetRows(t *testing.T) {
	m := New()
	m.SetDatasetRows(28, 1500)

	assert.Equal(t, 28.0, testutil.ToFloat64(m.DatasetRows.WithLabelValues("byproducts")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.DatasetRows.WithLabelValues("companies")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.SetDatasetRows(1, 2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	assert.Equal(t, 200, w.Code)
	assert.True(t, strings.Contains(body, `byproduct_dataset_rows{table="companies"} 2`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
