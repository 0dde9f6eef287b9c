package handler

import "net/http"

// Health reports whether the service can reach its database.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.db.Ping(); err != nil {
		h.log.Error("health check failed", "error", err)
		h.JSON(w, http.StatusInternalServerError, map[string]string{"status": "db_error"})
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
