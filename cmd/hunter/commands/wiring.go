package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/dispatcher"
	"github.com/wonny/hunter/internal/external/alphavantage"
	"github.com/wonny/hunter/internal/external/fmp"
	"github.com/wonny/hunter/internal/external/nse"
	"github.com/wonny/hunter/internal/external/stooq"
	"github.com/wonny/hunter/internal/external/wikipedia"
	"github.com/wonny/hunter/internal/external/yahoo"
	"github.com/wonny/hunter/internal/market_regime"
	"github.com/wonny/hunter/internal/provider"
	"github.com/wonny/hunter/internal/screener"
	"github.com/wonny/hunter/internal/strategyconfig"
	"github.com/wonny/hunter/internal/universe"
	"github.com/wonny/hunter/pkg/config"
	"github.com/wonny/hunter/pkg/database"
	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
	"github.com/wonny/hunter/pkg/redis"
)

// app holds every wired component of one CLI invocation
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	strategy   *strategyconfig.Config
	store      *cache.Store
	dispatcher *dispatcher.Dispatcher
	universe   *universe.Resolver
	regime     *market_regime.Detector
	screener   *screener.Screener

	// optional
	db    *database.DB
	redis *redis.Client
}

// newApp wires config → clients → chains → cache → screener
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg: cfg,
		log: logger.New(cfg, os.Stderr), // stdout carries tables and --json

	}

	strategy, err := strategyconfig.LoadOrDefault(cfg.Scan.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	a.strategy = strategy
	for _, w := range strategyconfig.Warn(strategy) {
		a.log.WithField("code", w.Code).Warn(w.Message)
	}

	defaults, err := scanDefaults(cfg.Scan)
	if err != nil {
		return nil, err
	}

	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}

	backend, err := a.cacheBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = cache.NewStore(backend, cache.TTLsFromConfig(cfg.Cache), a.log)

	chains, universeChain := a.chains()
	a.dispatcher = dispatcher.New(chains, a.store, a.log)
	a.universe = universe.NewResolver(universeChain, a.store, a.log)
	a.regime = market_regime.NewDetector(cfg.Scan.MarketIndex, a.dispatcher, a.store, strategy.Scoring.Overall, a.log)

	a.screener, err = screener.New(screener.Deps{
		Fetcher:  a.dispatcher,
		Universe: a.universe,
		Regime:   a.regime,
	}, strategy, defaults, a.log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.log.WithFields(map[string]interface{}{
		"env":       cfg.Env,
		"cache":     cfg.Cache.Backend,
		"strategy":  strategy.Meta.StrategyID,
		"index":     a.regime.Index(),
		"price":     chains.Prices.Names(),
		"universe":  universeChain.Names(),
		"statement": chains.Statements.Names(),
	}).Debug("Application wired")

	return a, nil
}

// Close releases database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// connect opens the optional Redis and Postgres connections
func (a *app) connect(ctx context.Context) error {
	if a.cfg.Redis.Enabled {
		client, err := redis.New(ctx, a.cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
	}

	if a.cfg.Database.URL != "" {
		db, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
	}

	return nil
}

func (a *app) cacheBackend(ctx context.Context) (cache.Backend, error) {
	switch a.cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisBackend(redis.NewCache(a.redis)), nil
	case "postgres":
		backend, err := cache.NewPostgresBackend(ctx, a.db)
		if err != nil {
			return nil, fmt.Errorf("prepare cache table: %w", err)
		}
		return backend, nil
	default:
		return cache.NewMemoryBackend(), nil
	}
}

// httpClient builds the paced client of one provider
func (a *app) httpClient(name string, rps float64) *httputil.Client {
	c := httputil.New(name, a.log).
		WithTimeout(a.cfg.Providers.Timeout).
		WithRPS(rps)

	if a.cfg.Providers.SharedRateLimit && a.redis != nil {
		if window, ok := redis.ForProvider(name); ok {
			c = c.WithRateLimiter(redis.NewRateLimiter(a.redis), window)
		}
	}
	return c
}

// chains builds the provider chains in priority order:
// price yahoo → stooq → fmp, profile yahoo → fmp → alphavantage,
// statements fmp → yahoo → alphavantage, universe nse → fmp → wikipedia.
// Providers without an API key are left out.
func (a *app) chains() (dispatcher.Chains, *provider.Chain[[]string]) {
	pc := a.cfg.Providers

	yh := yahoo.NewClient(a.httpClient(yahoo.ProviderName, pc.YahooRPS), a.log)
	sq := stooq.NewClient(a.httpClient(stooq.ProviderName, pc.StooqRPS), a.log, "")
	ns := nse.NewClient(a.httpClient(nse.ProviderName, 0), a.log, "")
	wk := wikipedia.NewClient(a.httpClient(wikipedia.ProviderName, 0), a.log, "")

	prices := []provider.Member[*contracts.PriceSeries]{
		provider.PriceMember(yahoo.ProviderName, yh),
		provider.PriceMember(stooq.ProviderName, sq),
	}
	profiles := []provider.Member[*contracts.CompanyProfile]{
		provider.ProfileMember(yahoo.ProviderName, yh),
	}
	var statements []provider.Member[*contracts.FinancialStatement]
	lists := []provider.Member[[]string]{
		provider.UniverseMember(nse.ProviderName, ns),
	}

	if pc.FMPAPIKey != "" {
		fm := fmp.NewClient(a.httpClient(fmp.ProviderName, pc.FMPRPS), a.log, pc.FMPAPIKey, pc.FMPBaseURL)
		prices = append(prices, provider.PriceMember(fmp.ProviderName, fm))
		profiles = append(profiles, provider.ProfileMember(fmp.ProviderName, fm))
		statements = append(statements, provider.StatementMember(fmp.ProviderName, fm))
		lists = append(lists, provider.UniverseMember(fmp.ProviderName, fm))
	} else {
		a.log.Warn("FMP_API_KEY not set: FMP left out of every chain")
	}

	statements = append(statements, provider.StatementMember(yahoo.ProviderName, yh))
	lists = append(lists, provider.UniverseMember(wikipedia.ProviderName, wk))

	if pc.AlphaVantageAPIKey != "" {
		av := alphavantage.NewClient(a.httpClient(alphavantage.ProviderName, pc.AlphaVantageRPS), a.log, pc.AlphaVantageAPIKey, pc.AlphaVantageBaseURL)
		profiles = append(profiles, provider.ProfileMember(alphavantage.ProviderName, av))
		statements = append(statements, provider.StatementMember(alphavantage.ProviderName, av))
	}

	return dispatcher.Chains{
			Prices:     provider.NewChain(contracts.KindPrice, pc.Timeout, a.log, prices...),
			Profiles:   provider.NewChain(contracts.KindProfile, pc.Timeout, a.log, profiles...),
			Statements: provider.NewChain(contracts.KindStatement, pc.Timeout, a.log, statements...),
		},
		provider.NewChain(contracts.KindUniverse, pc.Timeout, a.log, lists...)
}

// scanDefaults converts SCAN_* settings. Empty weights leave the strategy weights in charge.
func scanDefaults(sc config.ScanConfig) (screener.Defaults, error) {
	lookback, err := contracts.ParseLookback(sc.Lookback)
	if err != nil {
		return screener.Defaults{}, fmt.Errorf("SCAN_LOOKBACK: %w", err)
	}

	d := screener.Defaults{
		Concurrency:  sc.Concurrency,
		MinThreshold: sc.MinProbability,
		MaxSymbols:   sc.MaxSymbols,
		Lookback:     lookback,
		Deadline:     sc.Deadline,
	}

	if sc.Weights != "" {
		w, err := contracts.ParseWeights(sc.Weights)
		if err != nil {
			return screener.Defaults{}, fmt.Errorf("SCAN_WEIGHTS: %w", err)
		}
		d.Weights = w
	}

	return d, nil
}
