package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/pkg/database"
	"github.com/wonny/hunter/pkg/redis"
)

// DBChecker reports database health; *database.DB implements it
type DBChecker interface {
	HealthCheck(ctx context.Context) *database.HealthStatus
}

// RedisChecker reports Redis health; *redis.Client implements it
type RedisChecker interface {
	HealthCheck(ctx context.Context) *redis.HealthStatus
}

// HealthHandler reports service health
type HealthHandler struct {
	service string
	store   *cache.Store
	db      DBChecker
	redis   RedisChecker
	started time.Time
}

// NewHealthHandler creates a health handler. store may be nil.
func NewHealthHandler(service string, store *cache.Store) *HealthHandler {
	return &HealthHandler{
		service: service,
		store:   store,
		started: time.Now(),
	}
}

// WithDatabase adds the database section to /health
func (h *HealthHandler) WithDatabase(db DBChecker) *HealthHandler {
	h.db = db
	return h
}

// WithRedis adds the redis section to /health
func (h *HealthHandler) WithRedis(r RedisChecker) *HealthHandler {
	h.redis = r
	return h
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": h.service,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK

	if h.store != nil {
		body["cache"] = h.store.Stats()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	degrade := func(section string, healthy bool, detail interface{}) {
		body[section] = detail
		if !healthy {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if h.db != nil {
		s := h.db.HealthCheck(ctx)
		degrade("database", s.Healthy, s)
	}
	if h.redis != nil {
		s := h.redis.HealthCheck(ctx)
		degrade("redis", s.Healthy, s)
	}

	respondJSON(w, status, body)
}
