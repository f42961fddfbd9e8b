package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/provider"
	"github.com/wonny/hunter/internal/workpool"
	"github.com/wonny/hunter/pkg/logger"
)

// Chains groups the provider chain of every per-symbol data kind
type Chains struct {
	Prices     *provider.Chain[*contracts.PriceSeries]
	Profiles   *provider.Chain[*contracts.CompanyProfile]
	Statements *provider.Chain[*contracts.FinancialStatement]
}

// Options tunes one scan
type Options struct {
	Concurrency int
	Lookback    contracts.Lookback
	OnProgress  func(completed, total int)
	Progress    *workpool.Progress
}

// Drop is a symbol excluded from the scan because it has no price history
type Drop struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Result is everything one scan fetched
type Result struct {
	Bundles   []contracts.Bundle
	Dropped   []Drop
	Completed int
	Total     int
	Truncated bool
}

// sourced is the cached form of a chain result
type sourced[T any] struct {
	Value    T      `json:"value"`
	Provider string `json:"provider"`
}

// Dispatcher fetches bundles for many symbols with bounded concurrency
// ⭐ SSOT: 심볼별 데이터 수집은 Dispatcher에서만 (cache → provider chain)
type Dispatcher struct {
	chains Chains
	store  *cache.Store
	logger *logger.Logger
}

// New creates a dispatcher
func New(chains Chains, store *cache.Store, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		chains: chains,
		store:  store,
		logger: log.ForModule("dispatcher"),
	}
}

// Scan fetches a bundle per symbol. Symbols without price history are dropped;
// missing profile or statements leave those fields nil. When ctx ends the
// bundles fetched so far are returned with Truncated set.
func (d *Dispatcher) Scan(ctx context.Context, symbols []string, opts Options) Result {
	d.logger.WithFields(map[string]interface{}{
		"symbols":     len(symbols),
		"concurrency": opts.Concurrency,
		"lookback":    string(opts.Lookback),
	}).Info("Starting fetch")

	run := workpool.Run(ctx, symbols, workpool.Options{
		Workers:    opts.Concurrency,
		OnProgress: opts.OnProgress,
		Progress:   opts.Progress,
	}, func(ctx context.Context, symbol string) (contracts.Bundle, error) {
		return d.FetchOne(ctx, symbol, opts.Lookback)
	})

	res := Result{
		Bundles:   run.Values,
		Completed: run.Completed,
		Total:     run.Total,
		Truncated: run.Truncated,
	}
	for _, f := range run.Failures {
		res.Dropped = append(res.Dropped, Drop{Symbol: f.Item, Reason: f.Err.Error()})
	}

	d.logger.WithFields(map[string]interface{}{
		"fetched":   len(res.Bundles),
		"dropped":   len(res.Dropped),
		"completed": res.Completed,
		"truncated": res.Truncated,
	}).Info("Fetch completed")

	return res
}

// FetchOne fetches one symbol. Only the price series is required.
func (d *Dispatcher) FetchOne(ctx context.Context, symbol string, lookback contracts.Lookback) (contracts.Bundle, error) {
	symbol = strings.TrimSpace(symbol)
	bundle := contracts.Bundle{Symbol: symbol, Sources: make(map[contracts.DataKind]string)}

	prices, used, err := d.Prices(ctx, symbol, lookback)
	if err != nil {
		return bundle, fmt.Errorf("price history: %w", err)
	}
	bundle.Prices = prices
	bundle.Sources[contracts.KindPrice] = used

	if d.chains.Profiles != nil {
		profile, used, err := fetchCached(ctx, d.store, d.chains.Profiles, contracts.KindProfile,
			provider.Request{Subject: symbol})
		if err == nil {
			bundle.Profile = profile
			bundle.Sources[contracts.KindProfile] = used
		} else {
			d.logger.WithError(err).WithSymbol(symbol).Debug("Profile unavailable")
		}
	}

	if d.chains.Statements != nil {
		statement, used, err := fetchCached(ctx, d.store, d.chains.Statements, contracts.KindStatement,
			provider.Request{Subject: symbol})
		if err == nil {
			bundle.Statement = statement
			bundle.Sources[contracts.KindStatement] = used
		} else {
			d.logger.WithError(err).WithSymbol(symbol).Debug("Statements unavailable")
		}
	}

	return bundle, nil
}

// Prices fetches a cached price series (the market regime uses this for the index)
func (d *Dispatcher) Prices(ctx context.Context, symbol string, lookback contracts.Lookback) (*contracts.PriceSeries, string, error) {
	return fetchCached(ctx, d.store, d.chains.Prices, contracts.KindPrice,
		provider.Request{Subject: symbol, Lookback: lookback})
}

func fetchCached[T any](ctx context.Context, store *cache.Store, chain *provider.Chain[T], kind contracts.DataKind, req provider.Request) (T, string, error) {
	var params []string
	if req.Lookback != "" {
		params = append(params, string(req.Lookback))
	}
	key := cache.Key(kind, req.Subject, params...)

	got, err := cache.GetOrFetch(ctx, store, kind, key, func(ctx context.Context) (sourced[T], error) {
		value, used, err := chain.Fetch(ctx, req)
		return sourced[T]{Value: value, Provider: used}, err
	})
	return got.Value, got.Provider, err
}
