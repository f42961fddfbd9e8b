package universe

import (
	"context"
	"sort"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/provider"
	"github.com/wonny/hunter/pkg/logger"
)

// SourceStatic marks a result served from the curated fallback list
const SourceStatic = "static"

// Result is a resolved symbol list for one category
type Result struct {
	Category string   `json:"category"`
	Symbols  []string `json:"symbols"`
	Source   string   `json:"source"`
	Degraded bool     `json:"degraded"`
	Reason   string   `json:"reason,omitempty"`
}

// cached is what the store keeps for a category
type cached struct {
	Symbols []string `json:"symbols"`
	Source  string   `json:"source"`
}

// Resolver turns a named category into symbols
// ⭐ SSOT: 유니버스 구성은 Resolver에서만 (실패 시 static fallback + degraded)
type Resolver struct {
	chain  *provider.Chain[[]string]
	store  *cache.Store
	logger *logger.Logger
}

// NewResolver creates a resolver over the universe chain
func NewResolver(chain *provider.Chain[[]string], store *cache.Store, log *logger.Logger) *Resolver {
	return &Resolver{
		chain:  chain,
		store:  store,
		logger: log.ForModule("universe"),
	}
}

// Supports reports whether the category is known
func (r *Resolver) Supports(category string) bool {
	_, ok := fallbacks[category]
	return ok
}

// Categories lists every supported category in name order
func Categories() []string {
	out := make([]string, 0, len(fallbacks))
	for c := range fallbacks {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Resolve never fails: on provider outage it returns the static list with Degraded set.
// Fallback results are not cached, so the next call retries the providers.
func (r *Resolver) Resolve(ctx context.Context, category string) Result {
	fallback, known := Fallback(category)
	if !known {
		return Result{Category: category, Degraded: true, Reason: "unknown category"}
	}

	key := cache.Key(contracts.KindUniverse, category)
	got, err := cache.GetOrFetch(ctx, r.store, contracts.KindUniverse, key, func(ctx context.Context) (cached, error) {
		symbols, used, err := r.chain.Fetch(ctx, provider.Request{Subject: category})
		return cached{Symbols: symbols, Source: used}, err
	})
	if err == nil && len(got.Symbols) > 0 {
		return Result{Category: category, Symbols: got.Symbols, Source: got.Source}
	}

	reason := "no provider returned constituents"
	if err != nil {
		reason = err.Error()
	}
	r.logger.WithFields(map[string]interface{}{
		"category": category,
		"reason":   reason,
		"count":    len(fallback),
	}).Warn("Universe providers failed, using static list")

	return Result{
		Category: category,
		Symbols:  fallback,
		Source:   SourceStatic,
		Degraded: true,
		Reason:   reason,
	}
}
