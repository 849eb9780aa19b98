package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

// Pinger is satisfied by *redis.Client.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthHandler struct {
	redis       Pinger
	environment string
}

// NewHealthHandler accepts a nil redis when the history cache is disabled.
func NewHealthHandler(redis Pinger, environment string) *HealthHandler {
	return &HealthHandler{redis: redis, environment: environment}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	redisStatus := "disabled"
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		redisStatus = "healthy"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now(),
		"redis":       redisStatus,
		"environment": h.environment,
	})
}
