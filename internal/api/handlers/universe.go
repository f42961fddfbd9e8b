package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/hunter/internal/universe"
	"github.com/wonny/hunter/pkg/logger"
)

// UniverseResolver resolves categories; *universe.Resolver implements it
type UniverseResolver interface {
	Supports(category string) bool
	Resolve(ctx context.Context, category string) universe.Result
}

// UniverseHandler handles universe endpoints
type UniverseHandler struct {
	resolver UniverseResolver
	logger   *logger.Logger
}

// NewUniverseHandler creates a new universe handler
func NewUniverseHandler(resolver UniverseResolver, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{
		resolver: resolver,
		logger:   log,
	}
}

// Categories lists the supported categories
// GET /api/universe
func (h *UniverseHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": universe.Categories(),
	})
}

// Resolve returns the symbols of one category
// GET /api/universe/{category}
func (h *UniverseHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	if !h.resolver.Supports(category) {
		respondError(w, http.StatusNotFound, "Unknown category: "+category)
		return
	}

	respondJSON(w, http.StatusOK, h.resolver.Resolve(r.Context(), category))
}
