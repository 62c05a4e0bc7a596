package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strrl/sleepq/internal/app"
	"github.com/strrl/sleepq/internal/config"
	"github.com/strrl/sleepq/internal/observability"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.DatasetPath = filepath.Join("..", "..", "sleep_data.csv")

	a, err := app.New(context.Background(), cfg, observability.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	return a
}

func setupRouter(a *app.App) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(a)
}

func postForm(r http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func defaultForm() url.Values {
	return url.Values{
		"age":             {"25"},
		"screen_time_hrs": {"4.5"},
		"caffeine_mg":     {"100"},
		"exercise_min":    {"30"},
		"hour":            {"10"},
		"period":          {"PM"},
	}
}

func TestDashboard_RendersDefaults(t *testing.T) {
	r := setupRouter(newTestApp(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Predict Sleep Quality")
	assert.Contains(t, body, `name="age" min="18" max="60" step="1" value="25"`)
	assert.Contains(t, body, `name="hour" min="1" max="12" step="0.5" value="10"`)
	assert.Contains(t, body, `<option value="PM" selected>PM</option>`)
	assert.NotContains(t, body, "sleep quality!")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestPredictForm_RendersVerdictAndChart(t *testing.T) {
	r := setupRouter(newTestApp(t))

	w := postForm(r, defaultForm())

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Regexp(t, `(Good|Poor) sleep quality!`, body)
	assert.Contains(t, body, "Bedtime 22:00")
	assert.Contains(t, body, "Sleep Quality by Bedtime")
	assert.Contains(t, body, `<div class="trend-chart"><svg`)
	assert.Contains(t, body, "Your bedtime")
}

func TestPredictForm_KeepsAMSelection(t *testing.T) {
	r := setupRouter(newTestApp(t))

	form := defaultForm()
	form.Set("hour", "12")
	form.Set("period", "AM")
	w := postForm(r, form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bedtime 00:00")
	assert.Contains(t, w.Body.String(), `<option value="AM" selected>AM</option>`)
}

func TestPredictForm_InvalidInput(t *testing.T) {
	a := newTestApp(t)
	r := setupRouter(a)

	form := defaultForm()
	form.Set("hour", "13")
	w := postForm(r, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Hour must be at most 12")
	assert.NotContains(t, w.Body.String(), "sleep quality!")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.ErrorsTotal.WithLabelValues("invalid_input")))
}

func TestPredictForm_NonNumericField(t *testing.T) {
	r := setupRouter(newTestApp(t))

	form := defaultForm()
	form.Set("age", "old")
	w := postForm(r, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid input")
}

func TestPredictForm_ChartErrorStillShowsVerdict(t *testing.T) {
	a := newTestApp(t)
	a.Trend = nil
	a.TrendErr = errors.New("trend query failed")
	r := setupRouter(a)

	w := postForm(r, defaultForm())

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Regexp(t, `(Good|Poor) sleep quality!`, body)
	assert.Contains(t, body, "error generating visualization: trend query failed")
	assert.NotContains(t, body, "<svg")
}

func TestPredictAPI(t *testing.T) {
	a := newTestApp(t)
	r := setupRouter(a)

	w := postJSON(r, `{"age":25,"screen_time_hrs":4.5,"caffeine_mg":100,"exercise_min":30,"hour":10,"period":"PM"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	expected, err := a.Model.Predict([]float64{25, 4.5, 100, 30, 22})
	require.NoError(t, err)

	assert.Equal(t, 22.0, resp.Bedtime)
	assert.Equal(t, "22:00", resp.Clock)
	assert.Equal(t, expected, resp.Label)
	assert.NotNil(t, resp.Advisories)
	assert.Equal(t, w.Header().Get(requestIDHeader), resp.RequestID)
	if resp.Label == 1 {
		assert.Equal(t, "good", string(resp.Verdict))
		assert.Empty(t, resp.Advisories)
	} else {
		assert.Equal(t, "poor", string(resp.Verdict))
	}
}

func TestPredictAPI_EchoesRequestID(t *testing.T) {
	r := setupRouter(newTestApp(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict",
		bytes.NewBufferString(`{"age":30,"screen_time_hrs":1,"caffeine_mg":0,"exercise_min":60,"hour":9.5,"period":"pm"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)
	assert.Contains(t, w.Body.String(), `"bedtime":21.5`)
}

func TestPredictAPI_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"bad period", `{"age":25,"screen_time_hrs":4.5,"caffeine_mg":100,"exercise_min":30,"hour":10,"period":"XM"}`, "Period must be AM or PM"},
		{"missing period", `{"age":25,"screen_time_hrs":4.5,"caffeine_mg":100,"exercise_min":30,"hour":10}`, "Period must be AM or PM"},
		{"hour step", `{"age":25,"screen_time_hrs":4.5,"caffeine_mg":100,"exercise_min":30,"hour":10.25,"period":"PM"}`, "Hour must be a multiple of 0.5"},
		{"malformed", `{"age":`, "invalid input"},
	}

	r := setupRouter(newTestApp(t))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(r, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.message)
		})
	}
}

func TestPredictAPI_ModelUnavailable(t *testing.T) {
	a := &app.App{Metrics: observability.New(prometheus.NewRegistry())}
	r := setupRouter(a)

	w := postJSON(r, `{"age":25,"screen_time_hrs":4.5,"caffeine_mg":100,"exercise_min":30,"hour":10,"period":"PM"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "model unavailable")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.ErrorsTotal.WithLabelValues("model_unavailable")))
}

func TestTrend(t *testing.T) {
	a := newTestApp(t)
	r := setupRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trend", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Points []struct {
			Bedtime     float64 `json:"bedtime"`
			MeanQuality float64 `json:"mean_quality"`
			Count       int     `json:"count"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Points, len(a.Trend))
}

func TestModelInfo(t *testing.T) {
	r := setupRouter(newTestApp(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/model", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp modelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Stats.TotalRecords)
	assert.Equal(t, 40, resp.Stats.TestRecords)
	assert.Equal(t, 200, resp.Summary.Records)
}

func TestHealthAndMetrics(t *testing.T) {
	r := setupRouter(newTestApp(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
