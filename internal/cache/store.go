package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/pkg/config"
	"github.com/wonny/hunter/pkg/logger"
)

// Entry is one stored payload. Entries are superseded, never mutated.
type Entry struct {
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Backend persists entries. Expiry is decided by the Store, not the backend.
type Backend interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, entry Entry, ttl time.Duration) error
}

// Pruner is implemented by backends that need explicit cleanup of expired entries
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int, error)
}

// TTLs maps a data kind to how long its payloads stay fresh
type TTLs map[contracts.DataKind]time.Duration

// DefaultTTLs returns the default freshness table
func DefaultTTLs() TTLs {
	return TTLs{
		contracts.KindPrice:     time.Hour,
		contracts.KindProfile:   12 * time.Hour,
		contracts.KindStatement: 72 * time.Hour,
		contracts.KindUniverse:  72 * time.Hour,
		contracts.KindRegime:    time.Hour,
	}
}

// TTLsFromConfig builds the table from CACHE_*_TTL settings
func TTLsFromConfig(cfg config.CacheConfig) TTLs {
	return TTLs{
		contracts.KindPrice:     cfg.PriceTTL,
		contracts.KindProfile:   cfg.ProfileTTL,
		contracts.KindStatement: cfg.StatementTTL,
		contracts.KindUniverse:  cfg.UniverseTTL,
		contracts.KindRegime:    cfg.RegimeTTL,
	}
}

// Stats counts store activity since creation
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	FetchErrors int64 `json:"fetch_errors"`
}

// Store is the process-wide time-keyed memoization layer.
// Concurrent misses on one key may both fetch; the last write wins.
// ⭐ SSOT: 외부 데이터 캐싱은 이 Store를 통해서만
type Store struct {
	backend Backend
	ttls    TTLs
	now     func() time.Time
	logger  *logger.Logger

	hits        atomic.Int64
	misses      atomic.Int64
	fetchErrors atomic.Int64
}

// Option customizes a Store
type Option func(*Store)

// WithClock injects the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store over a backend
func NewStore(backend Backend, ttls TTLs, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttls:    ttls,
		now:     time.Now,
		logger:  log.ForModule("cache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the freshness window of a data kind (0 means never cached)
func (s *Store) TTL(kind contracts.DataKind) time.Duration {
	return s.ttls[kind]
}

// Stats returns a snapshot of the counters
func (s *Store) Stats() Stats {
	return Stats{
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		FetchErrors: s.fetchErrors.Load(),
	}
}

// Prune removes expired entries when the backend supports it
func (s *Store) Prune(ctx context.Context) (int, error) {
	p, ok := s.backend.(Pruner)
	if !ok {
		return 0, nil
	}
	return p.Prune(ctx, s.now())
}

// Key builds "op:symbol:params" keys
func Key(kind contracts.DataKind, symbol string, params ...string) string {
	parts := append([]string{string(kind), strings.ToUpper(symbol)}, params...)
	return strings.Join(parts, ":")
}

// GetOrFetch returns the cached payload for key if fresh, otherwise calls fetch
// and stores the result for ttl(kind). Errors are returned as-is and never cached.
// Both paths decode from the stored JSON, so hits and misses return equal values.
func GetOrFetch[T any](ctx context.Context, s *Store, kind contracts.DataKind, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var out T

	entry, found, err := s.backend.Load(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Cache load failed, fetching")
	}
	if found && s.now().Before(entry.ExpiresAt) {
		if err := json.Unmarshal(entry.Payload, &out); err == nil {
			s.hits.Add(1)
			return out, nil
		}
		s.logger.WithField("key", key).Warn("Cache payload undecodable, fetching")
	}

	s.misses.Add(1)
	value, err := fetch(ctx)
	if err != nil {
		s.fetchErrors.Add(1)
		return out, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("encode %s: %w", key, err)
	}

	ttl := s.ttls[kind]
	if ttl > 0 {
		saveErr := s.backend.Save(ctx, Entry{
			Key:       key,
			Payload:   payload,
			ExpiresAt: s.now().Add(ttl),
		}, ttl)
		if saveErr != nil {
			s.logger.WithError(saveErr).WithField("key", key).Warn("Cache save failed")
		}
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}
