// Package server exposes the categorization engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/gorilla/mux"
)

// Server is the HTTP front end over the engine.
type Server struct {
	engine   *engine.Engine
	logger   *slog.Logger
	http     *http.Server
	detailed bool
}

// New creates a Server listening on addr.
func New(e *engine.Engine, addr string, detailed bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:   e,
		logger:   logger,
		detailed: detailed,
	}

	router := mux.NewRouter()
	router.Use(s.requestLogger)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/categorize", s.handleCategorize).Methods(http.MethodPost)
	api.HandleFunc("/corrections", s.handleCorrect).Methods(http.MethodPost)
	api.HandleFunc("/corrections/recent", s.handleRecentCorrections).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/retrain", s.handleRetrain).Methods(http.MethodPost)
	api.HandleFunc("/recurring/detect", s.handleDetectRecurring).Methods(http.MethodPost)
	api.HandleFunc("/model", s.handleModelInfo).Methods(http.MethodGet)
	api.HandleFunc("/model/history", s.handleTrainingHistory).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// ListenAndServe runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return <-errCh
	}
}

// Handler returns the configured HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps sentinel errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidTrainingData),
		errors.Is(err, common.ErrInsufficientDescription):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNoCorrectionsAvailable):
		status = http.StatusConflict
	case errors.Is(err, common.ErrModelNotTrained):
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

type categorizeRequest struct {
	Amount      *float64 `json:"amount,omitempty"`
	Description string   `json:"description"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	pred, err := s.engine.Categorize(r.Context(), req.Description, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pred)
}

type correctionRequest struct {
	Amount            *float64 `json:"amount,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	Description       string   `json:"description"`
	PredictedCategory string   `json:"predicted_category"`
	CorrectCategory   string   `json:"correct_category"`
	TransactionRef    string   `json:"transaction_ref,omitempty"`
	UserID            int64    `json:"user_id,omitempty"`
}

type correctionResponse struct {
	CreatedAt       time.Time `json:"created_at"`
	Confidence      *float64  `json:"confidence,omitempty"`
	Description     string    `json:"description"`
	CorrectCategory string    `json:"correct_category"`
	ID              int64     `json:"id"`
	ModelVersion    int       `json:"model_version"`
	IsApplied       bool      `json:"is_applied"`
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Description == "" || req.CorrectCategory == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "description and correct_category are required"})
		return
	}

	saved, err := s.engine.Correct(r.Context(), engine.CorrectionRequest{
		Description:       req.Description,
		Amount:            req.Amount,
		Confidence:        req.Confidence,
		PredictedCategory: req.PredictedCategory,
		CorrectCategory:   req.CorrectCategory,
		TransactionRef:    req.TransactionRef,
		UserID:            req.UserID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, correctionResponse{
		ID:              saved.ID,
		Description:     saved.Description,
		CorrectCategory: saved.CorrectCategory,
		Confidence:      saved.Confidence,
		ModelVersion:    saved.ModelVersionAtCreation,
		IsApplied:       saved.IsApplied,
		CreatedAt:       saved.CreatedAt,
	})
}

func (s *Server) handleRecentCorrections(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	corrections, err := s.engine.RecentCorrections(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]correctionResponse, 0, len(corrections))
	for _, c := range corrections {
		out = append(out, correctionResponse{
			ID:              c.ID,
			Description:     c.Description,
			CorrectCategory: c.CorrectCategory,
			Confidence:      c.Confidence,
			ModelVersion:    c.ModelVersionAtCreation,
			IsApplied:       c.IsApplied,
			CreatedAt:       c.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.CorrectionStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type retrainRequest struct {
	MaxCorrections int `json:"max_corrections,omitempty"`
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	var req retrainRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	result, err := s.engine.Retrain(r.Context(), req.MaxCorrections, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type detectRequest struct {
	Transactions   []model.Transaction `json:"transactions"`
	MinOccurrences int                 `json:"min_occurrences,omitempty"`
	WindowDays     int                 `json:"window_days,omitempty"`
	AmountVariance float64             `json:"amount_variance,omitempty"`
}

func (s *Server) handleDetectRecurring(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.MinOccurrences < 0 || req.WindowDays < 0 || req.AmountVariance < 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "detection options must be positive"})
		return
	}

	report, err := s.engine.DetectRecurring(r.Context(), req.Transactions, service.DetectorOptions{
		MinOccurrences: req.MinOccurrences,
		WindowDays:     req.WindowDays,
		AmountVariance: req.AmountVariance,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.ModelInfo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTrainingHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.engine.TrainingHistory(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Detailed   bool     `json:"detailed"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: model.ActiveCategories(s.detailed),
		Detailed:   s.detailed,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
