package server

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strrl/sleepq/internal/advisor"
	"github.com/strrl/sleepq/internal/app"
	"github.com/strrl/sleepq/internal/bedtime"
	"github.com/strrl/sleepq/internal/chart"
	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/pipeline"
)

type dashboardView struct {
	Input      advisor.Input
	Submitted  bool
	Bedtime    string
	Result     advisor.Result
	Good       bool
	Error      string
	Chart      template.HTML
	ChartError string
	Summary    dataset.Summary
}

type predictResponse struct {
	RequestID  string          `json:"request_id"`
	Bedtime    float64         `json:"bedtime"`
	Clock      string          `json:"clock"`
	Label      int             `json:"label"`
	Verdict    advisor.Verdict `json:"verdict"`
	Advisories []string        `json:"advisories"`
}

type modelResponse struct {
	Dataset string          `json:"dataset"`
	Summary dataset.Summary `json:"summary"`
	Stats   pipeline.Stats  `json:"stats"`
	BuiltAt string          `json:"built_at"`
}

// Dashboard renders the empty form with default slider positions.
func Dashboard(c *gin.Context) {
	a := AppInstance(c)
	view := dashboardView{Input: advisor.DefaultInput()}
	if a != nil {
		view.Summary = a.Summary
	}
	c.HTML(http.StatusOK, "dashboard.html", view)
}

// PredictForm handles the dashboard form submission.
func PredictForm(c *gin.Context) {
	a := AppInstance(c)
	view := dashboardView{Input: advisor.DefaultInput(), Submitted: true}

	if err := c.ShouldBind(&view.Input); err != nil {
		view.Error = advisor.ErrInvalidInput.Error() + ": " + err.Error()
		countError(a, "invalid_input")
		c.HTML(http.StatusBadRequest, "dashboard.html", view)
		return
	}

	if a == nil {
		view.Error = advisor.ErrModelUnavailable.Error()
		c.HTML(http.StatusServiceUnavailable, "dashboard.html", view)
		return
	}
	view.Summary = a.Summary

	features, result, err := a.Predict(c.Request.Context(), view.Input)
	if err != nil {
		code, kind := classify(err)
		countError(a, kind)
		view.Error = err.Error()
		c.HTML(code, "dashboard.html", view)
		return
	}

	view.Result = result
	view.Good = result.Verdict == advisor.VerdictGood
	view.Bedtime = bedtime.Format(features.Bedtime)
	view.Chart, view.ChartError = trendChart(a, features.Bedtime)
	if view.ChartError != "" {
		countError(a, "render")
	}

	c.HTML(http.StatusOK, "dashboard.html", view)
}

func trendChart(a *app.App, marker float64) (template.HTML, string) {
	if a.TrendErr != nil {
		return "", (&chart.RenderError{Reason: a.TrendErr.Error()}).Error()
	}
	svg, err := chart.Render(a.Trend, marker, chart.DefaultOptions())
	if err != nil {
		slog.Warn("chart render failed", "error", err)
		return "", err.Error()
	}
	// Labels are escaped by chart.Render.
	return template.HTML(svg), ""
}

// PredictAPI is the JSON counterpart of PredictForm.
func PredictAPI(c *gin.Context) {
	a := AppInstance(c)

	var in advisor.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		countError(a, "invalid_input")
		RespondError(c, advisor.ErrInvalidInput.Error()+": "+err.Error(), http.StatusBadRequest)
		return
	}
	if a == nil {
		RespondError(c, advisor.ErrModelUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}

	features, result, err := a.Predict(c.Request.Context(), in)
	if err != nil {
		code, kind := classify(err)
		countError(a, kind)
		RespondError(c, err.Error(), code)
		return
	}

	RespondSuccess(c, predictResponse{
		RequestID:  c.GetString(requestIDKey),
		Bedtime:    features.Bedtime,
		Clock:      bedtime.Format(features.Bedtime),
		Label:      result.Label,
		Verdict:    result.Verdict,
		Advisories: result.Advisories,
	})
}

// Trend returns the mean quality per bedtime.
func Trend(c *gin.Context) {
	a := AppInstance(c)
	if a == nil {
		RespondError(c, advisor.ErrModelUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	if a.TrendErr != nil {
		countError(a, "internal")
		RespondError(c, a.TrendErr.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"points": a.Trend})
}

func ModelInfo(c *gin.Context) {
	a := AppInstance(c)
	if a == nil {
		RespondError(c, advisor.ErrModelUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	RespondSuccess(c, modelResponse{
		Dataset: a.Config.DatasetPath,
		Summary: a.Summary,
		Stats:   a.Stats,
		BuiltAt: a.BuiltAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

func Health(c *gin.Context) {
	status := "ok"
	if AppInstance(c) == nil {
		status = "no model"
	}
	RespondSuccess(c, gin.H{"status": status})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, advisor.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, advisor.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "model_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func countError(a *app.App, kind string) {
	if a == nil || a.Metrics == nil {
		return
	}
	a.Metrics.ErrorsTotal.WithLabelValues(kind).Inc()
}
