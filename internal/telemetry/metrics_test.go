package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestMetrics_Recorder(t *testing.T) {
	m := New()

	m.ObservePrediction(prediction.LabelChurn, 3*time.Millisecond)
	m.ObservePrediction(prediction.LabelChurn, 4*time.Millisecond)
	m.ObservePrediction(prediction.LabelStay, time.Millisecond)
	m.ObserveFailure(prediction.FailureClassifier)
	m.ObserveSubstitution("gender")
	m.ObserveSubstitution("gender")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("CHURN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("STAY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("classifier")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.substitutions.WithLabelValues("gender")))

	hist := findFamily(t, m, "churnguard_prediction_duration_seconds")
	require.Len(t, hist.GetMetric(), 1)
	assert.Equal(t, uint64(3), hist.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestMetrics_ModelInfo(t *testing.T) {
	m := New()
	m.SetModelInfo("LogisticRegression", "v1")
	m.SetModelInfo("LogisticRegression", "v2")

	fam := findFamily(t, m, "churnguard_model_info")
	require.Len(t, fam.GetMetric(), 1)
	labels := map[string]string{}
	for _, l := range fam.GetMetric()[0].GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, "v2", labels["version"])
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/healthz", "/healthz", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `churnguard_http_requests_total{method="GET",route="/healthz",status="200"} 2`)
	assert.Contains(t, string(body), "go_goroutines")
}
