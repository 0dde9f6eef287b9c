package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fieldtrack/fieldtrack/internal/service"
	"github.com/fieldtrack/fieldtrack/internal/store"
)

// SubmitLocation accepts one position report from a device.
func (h *Handler) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	var req service.Report
	if err := h.DecodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateReport(req); msg != "" {
		h.Error(w, http.StatusBadRequest, msg)
		return
	}

	loc, err := h.ingestion.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("failed to record location", "employee_id", req.EmployeeID, "error", err)
		h.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.Success(w, "Location updated", loc)
}

// validateReport checks the report's shape before it reaches the store.
// Returns a user-facing message, or "" when the report is acceptable.
func validateReport(req service.Report) string {
	switch {
	case req.EmployeeID < 1:
		return "employee_id must be a positive integer"
	case req.Latitude < -90 || req.Latitude > 90:
		return "latitude must be between -90 and 90"
	case req.Longitude < -180 || req.Longitude > 180:
		return "longitude must be between -180 and 180"
	case !req.GPSStatus.Valid():
		return `gps_status must be "on" or "off"`
	}
	return ""
}

// ListLocations returns every employee's latest known position.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.query.ListCurrent(r.Context())
	if err != nil {
		h.log.Error("failed to list locations", "error", err)
		h.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.Success(w, "", locations)
}

// LocationHistory returns an employee's past reports, newest first.
func (h *Handler) LocationHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil || employeeID < 1 {
		h.Error(w, http.StatusBadRequest, "employee_id must be a positive integer")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		// A malformed limit falls back to the default rather than failing
		// the whole query.
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	records, err := h.query.History(r.Context(), employeeID, limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("failed to load history", "employee_id", employeeID, "error", err)
		h.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.Success(w, "", records)
}
