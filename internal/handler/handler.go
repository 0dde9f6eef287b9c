// Package handler contains the HTTP handlers for the location API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fieldtrack/fieldtrack/internal/config"
	"github.com/fieldtrack/fieldtrack/internal/database"
	"github.com/fieldtrack/fieldtrack/internal/events"
	"github.com/fieldtrack/fieldtrack/internal/logger"
	"github.com/fieldtrack/fieldtrack/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	ingestion *service.IngestionService
	query     *service.QueryService
	hub       *events.Hub
	log       *logger.Logger
}

// New creates a new Handler.
func New(cfg *config.Config, db *database.DB, ingestion *service.IngestionService, query *service.QueryService, hub *events.Hub, log *logger.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		db:        db,
		ingestion: ingestion,
		query:     query,
		hub:       hub,
		log:       log,
	}
}

// successResponse is the envelope for all successful API responses.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// errorResponse is the envelope for all failed API responses. Internal
// detail is logged, never echoed to the caller.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON helper to write JSON responses
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Success writes a success envelope around data.
func (h *Handler) Success(w http.ResponseWriter, message string, data any) {
	h.JSON(w, http.StatusOK, successResponse{Success: true, Message: message, Data: data})
}

// Error helper to write error responses
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, errorResponse{Success: false, Error: message})
}

// DecodeJSON helper to decode request body
func (h *Handler) DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
