package scoring

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/internal/contracts"
)

// risingSeries builds n bars of 100*1.003^i
func risingSeries(n int) *contracts.PriceSeries {
	return seriesFrom(n, func(i int) float64 { return 100 * math.Pow(1.003, float64(i)) })
}

// fallingSeries builds an accelerating decline (300 - 0.002*i^2), so the MACD
// line keeps falling away from its signal
func fallingSeries(n int) *contracts.PriceSeries {
	return seriesFrom(n, func(i int) float64 { return 300 - 0.002*float64(i*i) })
}

// reversalSeries trends for trend bars at slope, then runs back the other way for turn bars
func reversalSeries(trend, turn int, start, slope float64) *contracts.PriceSeries {
	return seriesFrom(trend+turn, func(i int) float64 {
		if i < trend {
			return start + slope*float64(i)
		}
		peak := start + slope*float64(trend-1)
		return peak - slope*float64(i-trend+1)
	})
}

func seriesFrom(n int, price func(i int) float64) *contracts.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.PriceBar, n)
	for i := range bars {
		c := price(i)
		bars[i] = contracts.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return &contracts.PriceSeries{Symbol: "TEST", Bars: bars}
}

func healthyProfile() *contracts.CompanyProfile {
	return &contracts.CompanyProfile{
		Symbol:            "TEST",
		Name:              null.StringFrom("Test Corp"),
		Sector:            null.StringFrom("Technology"),
		MarketCap:         null.FloatFrom(5e10),
		TrailingPE:        null.FloatFrom(18),
		ROE:               null.FloatFrom(0.25),
		ROA:               null.FloatFrom(0.12),
		ProfitMargin:      null.FloatFrom(0.20),
		RevenueGrowth:     null.FloatFrom(0.18),
		EarningsGrowth:    null.FloatFrom(0.22),
		DebtToEquity:      null.FloatFrom(0.2),
		Beta:              null.FloatFrom(1.1),
		AverageVolume:     null.FloatFrom(2_500_000),
		OperatingCashFlow: null.FloatFrom(4e9),
	}
}

func healthyStatement() *contracts.FinancialStatement {
	return &contracts.FinancialStatement{
		Symbol:             "TEST",
		TotalDebt:          null.FloatFrom(2e9),
		TotalEquity:        null.FloatFrom(1e10),
		FixedAssets:        null.FloatFrom(4e9),
		CurrentAssets:      null.FloatFrom(6e9),
		CurrentLiabilities: null.FloatFrom(3e9),
		OperatingCashFlow:  null.FloatFrom(4e9),
	}
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	require.NoError(t, th.Validate())

	assert.Equal(t, 40.0, th.Technical.Points.Max())
	assert.Equal(t, 30.0, th.Fundamental.Points.Max())
	assert.Equal(t, 30.0, th.Risk.Points.Max())
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"ma order", func(th *Thresholds) { th.Technical.MAMedium = 300 }},
		{"history shorter than long ma", func(th *Thresholds) { th.Technical.MinHistory = 100 }},
		{"macd fast >= slow", func(th *Thresholds) { th.Technical.MACDFast = 30 }},
		{"momentum bars", func(th *Thresholds) { th.Technical.MomentumBars = 0 }},
		{"pe max", func(th *Thresholds) { th.Fundamental.PEMax = 0 }},
		{"market cap band", func(th *Thresholds) { th.Fundamental.MarketCapMax = 1 }},
		{"zero risk points", func(th *Thresholds) { th.Risk.Points = RiskPoints{} }},
		{"floor above ceiling", func(th *Thresholds) { th.Overall.Floor = 98 }},
		{"dampener above one", func(th *Thresholds) { th.Overall.BearishDampener = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			assert.Error(t, th.Validate())
		})
	}
}

func TestTechnical_InsufficientHistory(t *testing.T) {
	th := DefaultThresholds().Technical

	for _, n := range []int{0, 1, 50, 199} {
		sub := Technical(risingSeries(n), th)
		assert.Equal(t, 0.0, sub.Score, "n=%d", n)
		assert.Equal(t, []string{ReasonInsufficientHistory}, sub.Reasons, "n=%d", n)
		assert.Equal(t, 40.0, sub.Max)
	}

	sub := Technical(nil, th)
	assert.Equal(t, []string{ReasonInsufficientHistory}, sub.Reasons)
}

func TestTechnical_RisingTrend(t *testing.T) {
	sub := Technical(risingSeries(250), DefaultThresholds().Technical)

	assert.Equal(t, 40.0, sub.Score)
	assert.Empty(t, sub.Reasons)
}

func TestTechnical_FallingTrend(t *testing.T) {
	sub := Technical(fallingSeries(250), DefaultThresholds().Technical)

	assert.Equal(t, 0.0, sub.Score)
	assert.Len(t, sub.Reasons, 6)
	assert.Contains(t, sub.Reasons, "price below 50-day MA")
	assert.Contains(t, sub.Reasons, "MACD below signal line")
}

func TestTechnical_MACDCrossover(t *testing.T) {
	th := DefaultThresholds().Technical

	tests := []struct {
		name       string
		series     *contracts.PriceSeries
		lineAbove  bool
		wantReason bool
	}{
		{"rally rolls over", reversalSeries(220, 30, 100, 0.5), false, true},
		{"selloff turns up", reversalSeries(220, 30, 250, -0.5), true, false},
		{"accelerating rise", seriesFrom(250, func(i int) float64 { return 100 + 0.002*float64(i*i) }), true, false},
		{"accelerating fall", fallingSeries(250), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, signal, ok := lastMACD(tt.series.Closes(), th.MACDFast, th.MACDSlow, th.MACDSignal)
			require.True(t, ok)
			assert.Equal(t, tt.lineAbove, line > signal, "line=%.4f signal=%.4f", line, signal)

			sub := Technical(tt.series, th)
			if tt.wantReason {
				assert.Contains(t, sub.Reasons, "MACD below signal line")
			} else {
				assert.NotContains(t, sub.Reasons, "MACD below signal line")
			}
		})
	}
}

func TestTechnical_Deterministic(t *testing.T) {
	th := DefaultThresholds().Technical
	series := seriesFrom(260, func(i int) float64 { return 100 + 10*math.Sin(float64(i)/7) })

	first := Technical(series, th)
	for range 5 {
		assert.Equal(t, first, Technical(series, th))
	}
}

func TestFundamental(t *testing.T) {
	th := DefaultThresholds().Fundamental

	t.Run("nil profile", func(t *testing.T) {
		sub := Fundamental(nil, th)
		assert.Equal(t, 0.0, sub.Score)
		assert.Equal(t, []string{ReasonFundamentalsUnavailable}, sub.Reasons)
	})

	t.Run("healthy", func(t *testing.T) {
		sub := Fundamental(healthyProfile(), th)
		assert.Equal(t, 30.0, sub.Score)
		assert.Empty(t, sub.Reasons)
	})

	t.Run("unknown is not zero", func(t *testing.T) {
		sub := Fundamental(&contracts.CompanyProfile{Symbol: "X"}, th)
		assert.Equal(t, 0.0, sub.Score)
		assert.Contains(t, sub.Reasons, "ROE unknown")
		assert.Contains(t, sub.Reasons, "P/E unknown")
		assert.Contains(t, sub.Reasons, "market cap unknown")
	})

	tests := []struct {
		name   string
		mutate func(*contracts.CompanyProfile)
		lost   float64
		reason string
	}{
		{"low roe", func(p *contracts.CompanyProfile) { p.ROE = null.FloatFrom(0.15) }, 6, "ROE 15.0% not above 15.0%"},
		{"negative pe", func(p *contracts.CompanyProfile) { p.TrailingPE = null.FloatFrom(-3) }, 5, "P/E -3.0 outside (0, 40)"},
		{"expensive pe", func(p *contracts.CompanyProfile) { p.TrailingPE = null.FloatFrom(55) }, 5, "P/E 55.0 outside (0, 40)"},
		{"mega cap", func(p *contracts.CompanyProfile) { p.MarketCap = null.FloatFrom(3e12) }, 3, "market cap 3.0T outside 10.0B-200.0B"},
		{"slow revenue", func(p *contracts.CompanyProfile) { p.RevenueGrowth = null.FloatFrom(0.02) }, 5, "revenue growth 2.0% not above 10.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthyProfile()
			tt.mutate(p)
			sub := Fundamental(p, th)
			assert.Equal(t, 30.0-tt.lost, sub.Score)
			assert.Equal(t, []string{tt.reason}, sub.Reasons)
		})
	}
}

func TestRisk(t *testing.T) {
	th := DefaultThresholds().Risk

	t.Run("both nil", func(t *testing.T) {
		sub := Risk(nil, nil, th)
		assert.Equal(t, 0.0, sub.Score)
		assert.Equal(t, []string{ReasonFinancialsUnavailable}, sub.Reasons)
	})

	t.Run("healthy", func(t *testing.T) {
		sub := Risk(healthyProfile(), healthyStatement(), th)
		assert.Equal(t, 30.0, sub.Score)
		assert.Empty(t, sub.Reasons)
	})

	t.Run("profile only", func(t *testing.T) {
		sub := Risk(healthyProfile(), nil, th)
		// equity vs fixed assets and current ratio need a statement
		assert.Equal(t, 21.0, sub.Score)
		assert.Equal(t, []string{"equity vs fixed assets unknown", "current ratio unknown"}, sub.Reasons)
	})

	t.Run("statement only", func(t *testing.T) {
		sub := Risk(nil, healthyStatement(), th)
		// D/E from statement (0.2), OCF, equity > fixed, current ratio 2.0
		assert.Equal(t, 22.0, sub.Score)
		assert.Equal(t, []string{"beta unknown", "average volume unknown"}, sub.Reasons)
	})

	t.Run("statement cash flow wins", func(t *testing.T) {
		p := healthyProfile()
		p.OperatingCashFlow = null.FloatFrom(1e9)
		s := healthyStatement()
		s.OperatingCashFlow = null.FloatFrom(-5e8)

		sub := Risk(p, s, th)
		assert.Equal(t, 24.0, sub.Score)
		assert.Equal(t, []string{"operating cash flow -500.0M not above 0"}, sub.Reasons)
	})

	t.Run("leveraged", func(t *testing.T) {
		p := healthyProfile()
		p.DebtToEquity = null.FloatFrom(1.8)

		sub := Risk(p, healthyStatement(), th)
		assert.Equal(t, 23.0, sub.Score)
		assert.Equal(t, []string{"debt/equity 1.80 not below 1.00"}, sub.Reasons)
	})
}

func TestOverall_Bounds(t *testing.T) {
	th := DefaultThresholds().Overall
	zero := contracts.SubScore{Max: 40}
	full := contracts.SubScore{Score: 40, Max: 40}

	steps := []float64{0, 0.1, 0.25, 0.5, 0.75, 1}
	for _, wt := range steps {
		for _, wf := range steps {
			for _, wr := range steps {
				w := contracts.Weights{Technical: wt, Fundamental: wf, Risk: wr}
				if w.Validate() != nil {
					continue
				}
				for _, d := range []float64{1, th.BearishDampener} {
					lo := Overall(zero, zero, zero, w, d, th)
					hi := Overall(full, full, full, w, d, th)
					assert.Equal(t, th.Floor, lo)
					assert.GreaterOrEqual(t, hi, th.Floor)
					assert.LessOrEqual(t, hi, th.Ceiling)
				}
			}
		}
	}
}

func TestOverall_Normalizes(t *testing.T) {
	th := DefaultThresholds().Overall
	tech := contracts.SubScore{Score: 40, Max: 40}
	fund := contracts.SubScore{Score: 15, Max: 30}
	risk := contracts.SubScore{Score: 0, Max: 30}

	assert.InDelta(t, 50.0, Overall(tech, fund, risk, contracts.DefaultWeights(), 1, th), 1e-9)
	// scaling weights does not change the result
	half := contracts.Weights{Technical: 0.5, Fundamental: 0.5, Risk: 0.5}
	assert.InDelta(t, 50.0, Overall(tech, fund, risk, half, 1, th), 1e-9)
	// technical only
	assert.Equal(t, 97.0, Overall(tech, fund, risk, contracts.Weights{Technical: 1}, 1, th))
	// bearish dampener
	assert.InDelta(t, 42.5, Overall(tech, fund, risk, contracts.DefaultWeights(), 0.85, th), 1e-9)
	// all-zero weights fall to the floor
	assert.Equal(t, th.Floor, Overall(tech, fund, risk, contracts.Weights{}, 1, th))
}

func TestDampener(t *testing.T) {
	th := DefaultThresholds().Overall
	assert.Equal(t, 1.0, Dampener(false, th))
	assert.Equal(t, 0.85, Dampener(true, th))
}

func TestEngine_ScenarioA(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	b := contracts.Bundle{
		Symbol:    "RISE",
		Prices:    risingSeries(250),
		Profile:   healthyProfile(),
		Statement: healthyStatement(),
		Sources:   map[contracts.DataKind]string{contracts.KindPrice: "yahoo"},
	}

	rec := e.Score(b, contracts.DefaultWeights(), 1)

	assert.Greater(t, rec.Overall, 75.0)
	assert.Empty(t, rec.Reasons)
	assert.Equal(t, "RISE", rec.Symbol)
	assert.Equal(t, 1.0, rec.Dampener)
	assert.Equal(t, "yahoo", rec.Sources[contracts.KindPrice])

	require.True(t, rec.Snapshot.LastClose.Valid)
	assert.InDelta(t, 100*math.Pow(1.003, 249), rec.Snapshot.LastClose.Float64, 1e-6)
	assert.True(t, rec.Snapshot.RSI14.Valid)
	assert.InDelta(t, 0.25, rec.Snapshot.ROE.Float64, 1e-9)
	assert.Equal(t, "Test Corp", rec.Snapshot.Name.String)
}

// only the four values a healthy compounder is usually described by
func TestEngine_ScenarioA_NamedValuesOnly(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	b := contracts.Bundle{
		Symbol: "RISE",
		Prices: risingSeries(250),
		Profile: &contracts.CompanyProfile{
			Symbol:        "RISE",
			ROE:           null.FloatFrom(0.25),
			DebtToEquity:  null.FloatFrom(0.2),
			RevenueGrowth: null.FloatFrom(0.18),
			TrailingPE:    null.FloatFrom(18),
		},
	}

	rec := e.Score(b, contracts.DefaultWeights(), 1)

	assert.Equal(t, 40.0, rec.Technical.Score)
	assert.Equal(t, 16.0, rec.Fundamental.Score)
	assert.Equal(t, 7.0, rec.Risk.Score)
	assert.InDelta(t, 58.9, rec.Overall, 0.1)

	for _, r := range rec.Reasons {
		for _, named := range []string{"ROE", "revenue growth", "P/E", "debt/equity"} {
			assert.False(t, strings.HasPrefix(r, named), "named criterion failed: %s", r)
		}
	}
}

func TestEngine_ScenarioB(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	b := contracts.Bundle{Symbol: "BARE", Prices: risingSeries(250)}

	rec := e.Score(b, contracts.DefaultWeights(), 1)

	assert.Equal(t, 40.0, rec.Technical.Score)
	assert.Equal(t, 0.0, rec.Fundamental.Score)
	assert.Equal(t, 0.0, rec.Risk.Score)
	assert.Equal(t, []string{ReasonFundamentalsUnavailable}, rec.Fundamental.Reasons)
	assert.Equal(t, []string{ReasonFinancialsUnavailable}, rec.Risk.Reasons)
	assert.InDelta(t, 100.0/3, rec.Overall, 1e-9)
	assert.False(t, rec.Snapshot.MarketCap.Valid)
}

func TestEngine_NoData(t *testing.T) {
	e := NewEngine(DefaultThresholds())

	var rec contracts.ScoreRecord
	require.NotPanics(t, func() {
		rec = e.Score(contracts.Bundle{Symbol: "X"}, contracts.DefaultWeights(), 1)
	})

	assert.Equal(t, []string{ReasonInsufficientHistory}, rec.Technical.Reasons)
	assert.Equal(t, []string{ReasonFundamentalsUnavailable}, rec.Fundamental.Reasons)
	assert.Equal(t, []string{ReasonFinancialsUnavailable}, rec.Risk.Reasons)
	assert.Equal(t, DefaultThresholds().Overall.Floor, rec.Overall)
	assert.False(t, rec.Snapshot.LastClose.Valid)
	assert.False(t, rec.Snapshot.RSI14.Valid)
}

func TestEngine_SnapshotDebtToEquityFromStatement(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	b := contracts.Bundle{Symbol: "X", Prices: risingSeries(10), Statement: healthyStatement()}

	rec := e.Score(b, contracts.DefaultWeights(), 1)

	require.True(t, rec.Snapshot.DebtToEquity.Valid)
	assert.InDelta(t, 0.2, rec.Snapshot.DebtToEquity.Float64, 1e-9)
	assert.False(t, rec.Snapshot.Return1M.Valid)
}
