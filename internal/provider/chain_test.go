package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/pkg/logger"
)

type stubPrices struct {
	series *contracts.PriceSeries
	err    error
	delay  time.Duration
	calls  int
}

func (s *stubPrices) History(ctx context.Context, symbol string, lookback contracts.Lookback) (*contracts.PriceSeries, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.series, s.err
}

func series(symbol string, closes ...float64) *contracts.PriceSeries {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &contracts.PriceSeries{Symbol: symbol}
	for i, c := range closes {
		s.Bars = append(s.Bars, contracts.PriceBar{Date: day.AddDate(0, 0, i), Close: c})
	}
	return s
}

func TestChain_FirstSuccessWins(t *testing.T) {
	primary := &stubPrices{series: series("AAPL", 1, 2)}
	secondary := &stubPrices{series: series("AAPL", 3)}

	chain := NewChain(contracts.KindPrice, time.Second, logger.Nop(),
		PriceMember("yahoo", primary),
		PriceMember("stooq", secondary),
	)

	got, used, err := chain.Fetch(context.Background(), Request{Subject: "AAPL", Lookback: contracts.Lookback2Y})
	require.NoError(t, err)
	assert.Equal(t, "yahoo", used)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, 0, secondary.calls)
}

func TestChain_AdvancesOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		primary *stubPrices
	}{
		{"error", &stubPrices{err: errors.New("HTTP 500")}},
		{"empty payload", &stubPrices{series: &contracts.PriceSeries{Symbol: "AAPL"}}},
		{"nil payload", &stubPrices{}},
		{"out of order", &stubPrices{series: &contracts.PriceSeries{Symbol: "AAPL", Bars: []contracts.PriceBar{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		}}}},
		{"timeout", &stubPrices{series: series("AAPL", 1), delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &stubPrices{series: series("AAPL", 9)}
			chain := NewChain(contracts.KindPrice, 50*time.Millisecond, logger.Nop(),
				PriceMember("yahoo", tt.primary),
				PriceMember("stooq", fallback),
			)

			got, used, err := chain.Fetch(context.Background(), Request{Subject: "AAPL"})
			require.NoError(t, err)
			assert.Equal(t, "stooq", used)
			assert.Equal(t, 9.0, got.Bars[0].Close)
			assert.Equal(t, 1, tt.primary.calls, "no inline retry")
		})
	}
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(contracts.KindPrice, time.Second, logger.Nop(),
		PriceMember("yahoo", &stubPrices{err: errors.New("429")}),
		PriceMember("stooq", &stubPrices{err: errors.New("no data")}),
	)

	_, used, err := chain.Fetch(context.Background(), Request{Subject: "ZZZZ"})
	require.Error(t, err)
	assert.Empty(t, used)
	assert.True(t, IsDataUnavailable(err))

	var du *DataUnavailableError
	require.ErrorAs(t, err, &du)
	require.Len(t, du.Attempts, 2)
	assert.Equal(t, "yahoo", du.Attempts[0].Provider)
	assert.Equal(t, "stooq", du.Attempts[1].Provider)
	assert.Contains(t, err.Error(), "yahoo, stooq")
}

func TestChain_NoMembers(t *testing.T) {
	chain := NewChain[*contracts.CompanyProfile](contracts.KindProfile, time.Second, logger.Nop())

	_, _, err := chain.Fetch(context.Background(), Request{Subject: "AAPL"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestChain_CancelledContext(t *testing.T) {
	primary := &stubPrices{series: series("AAPL", 1)}
	chain := NewChain(contracts.KindPrice, time.Second, logger.Nop(), PriceMember("yahoo", primary))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := chain.Fetch(ctx, Request{Subject: "AAPL"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, primary.calls)
}

type stubProfiles struct {
	profile *contracts.CompanyProfile
}

func (s stubProfiles) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	return s.profile, nil
}

func TestProfileMember_EmptyProfileAdvances(t *testing.T) {
	chain := NewChain(contracts.KindProfile, time.Second, logger.Nop(),
		ProfileMember("yahoo", stubProfiles{profile: &contracts.CompanyProfile{Symbol: "AAPL"}}),
		ProfileMember("fmp", stubProfiles{profile: &contracts.CompanyProfile{Symbol: "AAPL", ROE: null.FloatFrom(0.3)}}),
	)

	got, used, err := chain.Fetch(context.Background(), Request{Subject: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "fmp", used)
	assert.InDelta(t, 0.3, got.ROE.Float64, 1e-9)
}

type stubUniverse struct {
	categories map[string][]string
	calls      int
}

func (s *stubUniverse) List(ctx context.Context, category string) ([]string, error) {
	s.calls++
	return s.categories[category], nil
}

func (s *stubUniverse) Supports(category string) bool {
	_, ok := s.categories[category]
	return ok
}

func TestUniverseMember_SkipsUnsupportedCategories(t *testing.T) {
	nse := &stubUniverse{categories: map[string][]string{"nifty-midcap-150": {"A.NS"}}}
	wiki := &stubUniverse{categories: map[string][]string{"sp500": {"AAPL", "MSFT"}}}

	chain := NewChain(contracts.KindUniverse, time.Second, logger.Nop(),
		UniverseMember("nse", nse),
		UniverseMember("wikipedia", wiki),
	)

	assert.True(t, chain.Supports("sp500"))
	assert.False(t, chain.Supports("ftse-100"))

	got, used, err := chain.Fetch(context.Background(), Request{Subject: "sp500"})
	require.NoError(t, err)
	assert.Equal(t, "wikipedia", used)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	assert.Equal(t, 0, nse.calls)
	assert.Equal(t, []string{"nse", "wikipedia"}, chain.Names())
}
