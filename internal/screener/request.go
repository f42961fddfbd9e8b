package screener

import (
	"math"
	"strings"
	"time"

	"github.com/wonny/hunter/internal/contracts"
)

// MaxConcurrency bounds the worker pool of one scan
const MaxConcurrency = 64

// ScanRequest selects what to scan and how. Zero values take the screener defaults.
type ScanRequest struct {
	Category     string
	Symbols      []string
	Weights      *contracts.Weights
	Concurrency  int
	MinThreshold *float64 // nil keeps the default; 0 disables the filter
	MaxSymbols   int
	Lookback     string
	Deadline     time.Duration

	// OnProgress is called after every symbol with (completed, total)
	OnProgress func(completed, total int)
}

// Defaults fill unset request fields
type Defaults struct {
	Weights      contracts.Weights
	Concurrency  int
	MinThreshold float64
	MaxSymbols   int
	Lookback     contracts.Lookback
	Deadline     time.Duration
}

// plan is a validated request with defaults applied
type plan struct {
	category     string
	symbols      []string
	weights      contracts.Weights
	concurrency  int
	minThreshold float64
	maxSymbols   int
	lookback     contracts.Lookback
	deadline     time.Duration
	onProgress   func(completed, total int)
}

// resolvePlan validates req. supports reports whether a category is known.
func resolvePlan(req ScanRequest, def Defaults, supports func(string) bool) (plan, error) {
	p := plan{
		category:     strings.TrimSpace(req.Category),
		weights:      def.Weights,
		concurrency:  def.Concurrency,
		minThreshold: def.MinThreshold,
		maxSymbols:   def.MaxSymbols,
		lookback:     def.Lookback,
		deadline:     def.Deadline,
		onProgress:   req.OnProgress,
	}

	if req.Weights != nil {
		p.weights = *req.Weights
	}
	if err := p.weights.Validate(); err != nil {
		return plan{}, configErr("weights", "%s", err.Error())
	}

	switch {
	case req.Concurrency < 0 || req.Concurrency > MaxConcurrency:
		return plan{}, configErr("concurrency", "must be in [1, %d], got %d", MaxConcurrency, req.Concurrency)
	case req.Concurrency > 0:
		p.concurrency = req.Concurrency
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}

	if t := req.MinThreshold; t != nil {
		if math.IsNaN(*t) || *t < 0 || *t > 100 {
			return plan{}, configErr("min_threshold", "must be in [0, 100], got %.2f", *t)
		}
		p.minThreshold = *t
	}

	if req.MaxSymbols < 0 {
		return plan{}, configErr("max_symbols", "must not be negative")
	}
	if req.MaxSymbols > 0 {
		p.maxSymbols = req.MaxSymbols
	}

	if req.Lookback != "" {
		lb, err := contracts.ParseLookback(req.Lookback)
		if err != nil {
			return plan{}, configErr("lookback", "%s", err.Error())
		}
		p.lookback = lb
	}
	if p.lookback == "" {
		p.lookback = contracts.Lookback2Y
	}

	if req.Deadline < 0 {
		return plan{}, configErr("deadline", "must not be negative")
	}
	if req.Deadline > 0 {
		p.deadline = req.Deadline
	}

	symbols := normalizeSymbols(req.Symbols)
	switch {
	case p.category != "" && len(req.Symbols) > 0:
		return plan{}, configErr("universe", "give either a category or symbols, not both")
	case p.category != "":
		if !supports(p.category) {
			return plan{}, configErr("category", "unknown category %q", p.category)
		}
	case len(symbols) == 0:
		return plan{}, configErr("symbols", "symbol list is empty")
	}
	p.symbols = symbols

	return p, nil
}

// normalizeSymbols trims, upper-cases and de-duplicates, keeping first occurrence order
func normalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// capSymbols keeps the first limit symbols (all when limit <= 0)
func capSymbols(symbols []string, limit int) []string {
	if limit <= 0 || len(symbols) <= limit {
		return symbols
	}
	return symbols[:limit]
}
