package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sensor-dashboard/services"
	"sensor-dashboard/utils"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// RecentValues is satisfied by *services.PostgresSink.
type RecentValues interface {
	Recent(ctx context.Context, field string, limit int) ([]float64, error)
}

// HistoryHandler serves the long history kept in Postgres, beyond the
// rolling window.
type HistoryHandler struct {
	store RecentValues
}

// NewHistoryHandler accepts a nil store when Postgres is not configured;
// every request then answers 503.
func NewHistoryHandler(store RecentValues) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// GetHistory answers /api/history/{field}?limit=N with the stored values,
// oldest first, and their trend when there are enough of them.
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	field := mux.Vars(r)["field"]

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	values, err := h.store.Recent(r.Context(), field, limit)
	if err != nil {
		utils.Error("history %s: %v", field, err)
		writeError(w, http.StatusBadGateway, "history store unavailable")
		return
	}

	resp := map[string]interface{}{
		"field":     field,
		"count":     len(values),
		"values":    values,
		"available": false,
	}
	if line, err := services.FitTrend(values); err == nil {
		resp["available"] = true
		resp["trend"] = line
		resp["fitted"] = line.Points(len(values))
	} else {
		resp["reason"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

var _ RecentValues = (*services.PostgresSink)(nil)
