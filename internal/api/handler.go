package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/kartoza/byproduct-exchange/internal/config"
	"github.com/kartoza/byproduct-exchange/internal/datasets"
	"github.com/kartoza/byproduct-exchange/internal/logging"
	"github.com/kartoza/byproduct-exchange/internal/metrics"
	"github.com/kartoza/byproduct-exchange/internal/models"
	"github.com/kartoza/byproduct-exchange/internal/recommend"
	"github.com/kartoza/byproduct-exchange/internal/validation"
)

// maxBodyBytes bounds the recommendation request body
const maxBodyBytes = 1 << 20

// Handler provides HTTP API endpoints
type Handler struct {
	store   *datasets.Store
	service *recommend.Service
	metrics *metrics.Metrics
	cfg     config.Config
}

// NewHandler creates a new API handler. m may be nil.
func NewHandler(store *datasets.Store, m *metrics.Metrics, cfg config.Config) *Handler {
	return &Handler{
		store:   store,
		service: recommend.NewService(store),
		metrics: m,
		cfg:     cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/recommendations", h.handleRecommendations).Methods("POST")

	// Health and info
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/health", h.handleHealth).Methods("GET")
	apiRouter.HandleFunc("/info", h.handleInfo).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Error encoding response")
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := models.InfoResponse{Version: h.cfg.Version}
	if h.store != nil {
		stats := h.store.Stats()
		info.Source = stats.Source
		info.Byproducts = stats.Byproducts
		info.Companies = stats.Companies
		info.Districts = stats.Districts
	}
	respondJSON(w, http.StatusOK, info)
}

// handleRecommendations answers POST /recommendations. Unknown crops and
// empty matches are reported in a 200 body; only malformed requests get an
// error status.
func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())

	var req models.RecommendationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("rejecting undecodable body")
		h.observe(metrics.OutcomeInvalid, 0)
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.CropName = strings.TrimSpace(req.CropName)
	req.District = strings.TrimSpace(req.District)
	if err := validation.ValidateStruct(&req); err != nil {
		h.observe(metrics.OutcomeInvalid, 0)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "datasets not loaded")
		return
	}

	result, err := h.service.Recommend(req)
	var notFound *recommend.CropNotFoundError
	switch {
	case errors.As(err, &notFound):
		log.Info().Str("crop", notFound.Crop).Msg("crop not found")
		h.observe(metrics.OutcomeCropNotFound, 0)
		respondJSON(w, http.StatusOK, models.ErrorResponse{Error: err.Error()})
	case err != nil:
		log.Error().Err(err).Msg("recommendation failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	case result.Empty():
		log.Info().Str("crop", result.Crop).Str("district", result.District).Msg("no matching companies")
		h.observe(metrics.OutcomeEmpty, 0)
		respondJSON(w, http.StatusOK, models.MessageResponse{Message: result.Message()})
	default:
		log.Info().
			Str("crop", result.Crop).
			Str("district", result.District).
			Int("results", len(result.Recommendations)).
			Msg("recommendations served")
		h.observe(metrics.OutcomeFound, len(result.Recommendations))
		respondJSON(w, http.StatusOK, models.RecommendationsResponse{Recommendations: result.Recommendations})
	}
}

func (h *Handler) observe(outcome string, size int) {
	if h.metrics != nil {
		h.metrics.ObserveRecommendation(outcome, size)
	}
}
