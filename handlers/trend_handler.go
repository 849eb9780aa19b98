package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"sensor-dashboard/services"
)

type TrendHandler struct {
	buffer *services.RollingBuffer
}

func NewTrendHandler(buffer *services.RollingBuffer) *TrendHandler {
	return &TrendHandler{buffer: buffer}
}

// GetTrend always answers 200. During warm-up the body says
// "available": false with the reason.
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	writeJSON(w, http.StatusOK, services.DescribeTrend(field, h.buffer.Snapshot()))
}
