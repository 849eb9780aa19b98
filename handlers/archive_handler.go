package handlers

import (
	"net/http"
	"strconv"
	"time"

	"sensor-dashboard/services"
	"sensor-dashboard/utils"
)

const defaultArchiveLimit = 100

type ArchiveHandler struct {
	archive *services.ArchiveService
	now     func() time.Time
}

// NewArchiveHandler accepts a nil archive when object storage is not
// configured; every request then answers 503.
func NewArchiveHandler(archive *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive, now: time.Now}
}

// ListArchive answers ?day=YYYY-MM-DD (default today) and ?limit=N.
func (h *ArchiveHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	day := r.URL.Query().Get("day")
	if day == "" {
		day = h.now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	limit := defaultArchiveLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	readings, err := h.archive.List(r.Context(), day, limit)
	if err != nil {
		utils.Error("archive list %s: %v", day, err)
		writeError(w, http.StatusBadGateway, "archive unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":      day,
		"count":    len(readings),
		"readings": readings,
	})
}
