package handlers

import (
	"net/http"
	"strings"

	"sensor-dashboard/services"
	"sensor-dashboard/utils"
)

type ReadingsHandler struct {
	buffer  *services.RollingBuffer
	sampler *services.Sampler
}

func NewReadingsHandler(buffer *services.RollingBuffer, sampler *services.Sampler) *ReadingsHandler {
	return &ReadingsHandler{
		buffer:  buffer,
		sampler: sampler,
	}
}

func (h *ReadingsHandler) GetReadings(w http.ResponseWriter, r *http.Request) {
	snapshot := h.buffer.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"capacity": h.buffer.Capacity(),
		"length":   len(snapshot),
		"readings": snapshot,
	})
}

func (h *ReadingsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	latest, ok := h.buffer.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no readings recorded yet")
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// GetTable answers ?fields=temperature,humidity; without fields every field
// seen in the window becomes a column.
func (h *ReadingsHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	var fields []string
	for _, f := range strings.Split(r.URL.Query().Get("fields"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	writeJSON(w, http.StatusOK, h.buffer.AsTable(fields...))
}

// Sample records one reading immediately, outside the regular cadence.
func (h *ReadingsHandler) Sample(w http.ResponseWriter, r *http.Request) {
	update, err := h.sampler.Tick(r.Context())
	if err != nil {
		utils.Error("manual sample failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, update)
}
