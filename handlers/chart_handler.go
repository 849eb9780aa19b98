package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sensor-dashboard/charts"
	"sensor-dashboard/models"
	"sensor-dashboard/services"
	"sensor-dashboard/utils"
)

type ChartHandler struct {
	buffer *services.RollingBuffer
	units  map[string]string
}

func NewChartHandler(buffer *services.RollingBuffer, fields []models.FieldSpec) *ChartHandler {
	units := make(map[string]string, len(fields))
	for _, f := range fields {
		units[f.Name] = f.Unit
	}
	return &ChartHandler{buffer: buffer, units: units}
}

// GetChart renders /api/charts/{field}.png. The trend overlay is on unless
// ?trend=false.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]

	showTrend := true
	if v := r.URL.Query().Get("trend"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "trend must be true or false")
			return
		}
		showTrend = b
	}

	var buf bytes.Buffer
	err := charts.RenderLine(&buf, field, h.buffer.Snapshot(), charts.Options{
		Unit:      h.units[field],
		ShowTrend: showTrend,
	})
	if errors.Is(err, charts.ErrNoData) {
		writeError(w, http.StatusNotFound, "no data for "+field)
		return
	}
	if err != nil {
		utils.Error("chart %s: %v", field, err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
