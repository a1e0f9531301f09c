package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/classify"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/nlp"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/testutil"
	"github.com/Veraticus/pennywise/internal/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, bootstrap bool) *Server {
	t.Helper()

	dir := t.TempDir()

	artifacts, err := classify.NewArtifactStore(filepath.Join(dir, "models"))
	require.NoError(t, err)
	classifier, err := classify.NewClassifier(artifacts, nlp.NewNormalizer(), slog.Default())
	require.NoError(t, err)

	store := testutil.SetupCorrectionsDB(t)

	tr := trainer.New(classifier, store, trainer.NewHistoryStore(filepath.Join(dir, "history.json")), slog.Default())

	e := engine.New(classifier, store, tr, service.DetectorOptions{
		Now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}, engine.Options{Logger: slog.Default()})
	if bootstrap {
		_, err := e.Bootstrap(context.Background(), nil)
		require.NoError(t, err)
	}

	return New(e, ":0", false, slog.Default())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCategorizeEndpoint(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/categorize", map[string]any{
		"description": "Coffee at Starbucks",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pred model.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.Equal(t, "Food & Dining", pred.Category)
	assert.Greater(t, pred.Confidence, 0.0)
}

func TestCategorizeEndpointBadBody(t *testing.T) {
	s := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categorize", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrectionEndpointLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/corrections", map[string]any{
		"description":        "ACME WIDGETS LLC",
		"predicted_category": "Shopping",
		"correct_category":   "Business Services",
		"confidence":         0.35,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved correctionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Greater(t, saved.ID, int64(0))
	assert.False(t, saved.IsApplied)
	require.NotNil(t, saved.Confidence)
	assert.InDelta(t, 0.35, *saved.Confidence, 1e-9)

	// The override now wins at categorize time.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/categorize", map[string]any{
		"description": "ACME WIDGETS LLC",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pred model.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.Equal(t, "Business Services", pred.Category)
	assert.Equal(t, model.SourceCorrection, pred.Source)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/corrections/recent?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var recent []correctionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, "ACME WIDGETS LLC", recent[0].Description)
	require.NotNil(t, recent[0].Confidence)
	assert.InDelta(t, 0.35, *recent[0].Confidence, 1e-9)
}

func TestCorrectionEndpointValidation(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/corrections", map[string]any{
		"description": "MISSING CATEGORY",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/corrections", map[string]any{
		"description":      "BAD CATEGORY",
		"correct_category": "Nonsense",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/corrections", map[string]any{
		"description":      "BAD CONFIDENCE",
		"correct_category": "Shopping",
		"confidence":       1.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrainEndpointNoCorrections(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/retrain", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRetrainEndpoint(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/corrections", map[string]any{
		"description":      "ACME ROCK CLIMBING",
		"correct_category": "Personal Care",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/retrain", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result trainer.RetrainResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CorrectionsApplied)
	assert.Equal(t, 2, result.NewVersion)
}

func TestDetectRecurringEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	var txns []model.Transaction
	for i := 5; i >= 1; i-- {
		txns = append(txns, model.Transaction{
			Description: "Netflix.com",
			Amount:      12.99,
			Date:        now.AddDate(0, 0, -30*i),
		})
	}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/recurring/detect", map[string]any{
		"transactions": txns,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.RecurringReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Patterns, 1)
	assert.Equal(t, model.IntervalMonthly, report.Patterns[0].Interval)
	assert.Equal(t, 1, report.TotalSubscriptions)
}

func TestDetectRecurringEndpointOptions(t *testing.T) {
	s := newTestServer(t, false)

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	var txns []model.Transaction
	for i := 5; i >= 1; i-- {
		txns = append(txns, model.Transaction{
			Description: "Netflix.com",
			Amount:      12.99,
			Date:        now.AddDate(0, 0, -30*i),
		})
	}

	// Per-request occurrence floor above the series length yields no patterns.
	rec := doJSON(t, s, http.MethodPost, "/api/v1/recurring/detect", map[string]any{
		"transactions":    txns,
		"min_occurrences": 6,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.RecurringReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Empty(t, report.Patterns)

	// A short lookback window drops most of the series.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/recurring/detect", map[string]any{
		"transactions": txns,
		"window_days":  45,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Empty(t, report.Patterns)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/recurring/detect", map[string]any{
		"transactions": txns,
		"window_days":  -1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/model", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info engine.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.IsTrained)
	assert.Equal(t, 1, info.Version)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/model/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history trainer.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, []int{1}, history.Versions)
}

func TestCategoriesEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp categoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Detailed)
	assert.Contains(t, resp.Categories, "Food & Dining")
	assert.Len(t, resp.Categories, 16)
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t, true)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.CorrectionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Total)
}
