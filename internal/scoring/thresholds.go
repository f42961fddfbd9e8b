package scoring

import (
	"fmt"
	"math"
)

// Thresholds holds every scoring constant. Ratios are fractions (0.15 = 15%).
// ⭐ SSOT: 채점 기준값은 여기서만 정의 (YAML로 override 가능)
type Thresholds struct {
	Technical   TechnicalThresholds   `yaml:"technical" json:"technical"`
	Fundamental FundamentalThresholds `yaml:"fundamental" json:"fundamental"`
	Risk        RiskThresholds        `yaml:"risk" json:"risk"`
	Overall     OverallThresholds     `yaml:"overall" json:"overall"`
}

// TechnicalThresholds configures the trend checks
type TechnicalThresholds struct {
	MinHistory   int     `yaml:"min_history" json:"min_history"`
	MAShort      int     `yaml:"ma_short" json:"ma_short"`
	MAMedium     int     `yaml:"ma_medium" json:"ma_medium"`
	MALong       int     `yaml:"ma_long" json:"ma_long"`
	RSIPeriod    int     `yaml:"rsi_period" json:"rsi_period"`
	RSIMin       float64 `yaml:"rsi_min" json:"rsi_min"`
	MACDFast     int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow     int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal   int     `yaml:"macd_signal" json:"macd_signal"`
	MomentumBars int     `yaml:"momentum_bars" json:"momentum_bars"`
	MomentumMin  float64 `yaml:"momentum_min" json:"momentum_min"`

	Points TechnicalPoints `yaml:"points" json:"points"`
}

// TechnicalPoints awarded per met criterion
type TechnicalPoints struct {
	AboveShortMA float64 `yaml:"above_short_ma" json:"above_short_ma"`
	ShortOverMid float64 `yaml:"short_over_medium" json:"short_over_medium"`
	MidOverLong  float64 `yaml:"medium_over_long" json:"medium_over_long"`
	RSI          float64 `yaml:"rsi" json:"rsi"`
	MACD         float64 `yaml:"macd" json:"macd"`
	Momentum     float64 `yaml:"momentum" json:"momentum"`
}

// FundamentalThresholds configures the quality and valuation checks
type FundamentalThresholds struct {
	ROEMin            float64 `yaml:"roe_min" json:"roe_min"`
	RevenueGrowthMin  float64 `yaml:"revenue_growth_min" json:"revenue_growth_min"`
	ProfitMarginMin   float64 `yaml:"profit_margin_min" json:"profit_margin_min"`
	PEMax             float64 `yaml:"pe_max" json:"pe_max"`
	ROAMin            float64 `yaml:"roa_min" json:"roa_min"`
	EarningsGrowthMin float64 `yaml:"earnings_growth_min" json:"earnings_growth_min"`
	MarketCapMin      float64 `yaml:"market_cap_min" json:"market_cap_min"`
	MarketCapMax      float64 `yaml:"market_cap_max" json:"market_cap_max"`

	Points FundamentalPoints `yaml:"points" json:"points"`
}

// FundamentalPoints awarded per met criterion
type FundamentalPoints struct {
	ROE            float64 `yaml:"roe" json:"roe"`
	RevenueGrowth  float64 `yaml:"revenue_growth" json:"revenue_growth"`
	ProfitMargin   float64 `yaml:"profit_margin" json:"profit_margin"`
	PE             float64 `yaml:"pe" json:"pe"`
	ROA            float64 `yaml:"roa" json:"roa"`
	EarningsGrowth float64 `yaml:"earnings_growth" json:"earnings_growth"`
	MarketCap      float64 `yaml:"market_cap" json:"market_cap"`
}

// RiskThresholds configures the balance sheet and liquidity checks
type RiskThresholds struct {
	DebtToEquityMax  float64 `yaml:"debt_to_equity_max" json:"debt_to_equity_max"`
	BetaMax          float64 `yaml:"beta_max" json:"beta_max"`
	AverageVolumeMin float64 `yaml:"average_volume_min" json:"average_volume_min"`
	CurrentRatioMin  float64 `yaml:"current_ratio_min" json:"current_ratio_min"`

	Points RiskPoints `yaml:"points" json:"points"`
}

// RiskPoints awarded per met criterion
type RiskPoints struct {
	DebtToEquity      float64 `yaml:"debt_to_equity" json:"debt_to_equity"`
	Beta              float64 `yaml:"beta" json:"beta"`
	OperatingCashFlow float64 `yaml:"operating_cash_flow" json:"operating_cash_flow"`
	AverageVolume     float64 `yaml:"average_volume" json:"average_volume"`
	EquityOverFixed   float64 `yaml:"equity_over_fixed_assets" json:"equity_over_fixed_assets"`
	CurrentRatio      float64 `yaml:"current_ratio" json:"current_ratio"`
}

// OverallThresholds bounds the blended probability
type OverallThresholds struct {
	Floor           float64 `yaml:"floor" json:"floor"`
	Ceiling         float64 `yaml:"ceiling" json:"ceiling"`
	BearishDampener float64 `yaml:"bearish_dampener" json:"bearish_dampener"`
	RegimeMAPeriod  int     `yaml:"regime_ma_period" json:"regime_ma_period"`
}

// DefaultThresholds returns the stock screening rules
func DefaultThresholds() Thresholds {
	return Thresholds{
		Technical: TechnicalThresholds{
			MinHistory:   200,
			MAShort:      50,
			MAMedium:     150,
			MALong:       200,
			RSIPeriod:    14,
			RSIMin:       50,
			MACDFast:     12,
			MACDSlow:     26,
			MACDSignal:   9,
			MomentumBars: 21,
			MomentumMin:  0.02,
			Points: TechnicalPoints{
				AboveShortMA: 8,
				ShortOverMid: 6,
				MidOverLong:  6,
				RSI:          6,
				MACD:         7,
				Momentum:     7,
			},
		},
		Fundamental: FundamentalThresholds{
			ROEMin:            0.15,
			RevenueGrowthMin:  0.10,
			ProfitMarginMin:   0.10,
			PEMax:             40,
			ROAMin:            0.05,
			EarningsGrowthMin: 0.10,
			MarketCapMin:      1e10,
			MarketCapMax:      2e11,
			Points: FundamentalPoints{
				ROE:            6,
				RevenueGrowth:  5,
				ProfitMargin:   4,
				PE:             5,
				ROA:            4,
				EarningsGrowth: 3,
				MarketCap:      3,
			},
		},
		Risk: RiskThresholds{
			DebtToEquityMax:  1.0,
			BetaMax:          1.5,
			AverageVolumeMin: 100_000,
			CurrentRatioMin:  1.2,
			Points: RiskPoints{
				DebtToEquity:      7,
				Beta:              4,
				OperatingCashFlow: 6,
				AverageVolume:     4,
				EquityOverFixed:   4,
				CurrentRatio:      5,
			},
		},
		Overall: OverallThresholds{
			Floor:           5,
			Ceiling:         97,
			BearishDampener: 0.85,
			RegimeMAPeriod:  200,
		},
	}
}

// Max returns the technical cap
func (p TechnicalPoints) Max() float64 {
	return p.AboveShortMA + p.ShortOverMid + p.MidOverLong + p.RSI + p.MACD + p.Momentum
}

// Max returns the fundamental cap
func (p FundamentalPoints) Max() float64 {
	return p.ROE + p.RevenueGrowth + p.ProfitMargin + p.PE + p.ROA + p.EarningsGrowth + p.MarketCap
}

// Max returns the risk cap
func (p RiskPoints) Max() float64 {
	return p.DebtToEquity + p.Beta + p.OperatingCashFlow + p.AverageVolume + p.EquityOverFixed + p.CurrentRatio
}

// Validate checks internal consistency
func (t Thresholds) Validate() error {
	tech := t.Technical
	if tech.MAShort <= 0 || tech.MAShort >= tech.MAMedium || tech.MAMedium >= tech.MALong {
		return fmt.Errorf("technical: want 0 < ma_short < ma_medium < ma_long, got %d/%d/%d",
			tech.MAShort, tech.MAMedium, tech.MALong)
	}
	if tech.MinHistory < tech.MALong {
		return fmt.Errorf("technical.min_history %d must cover ma_long %d", tech.MinHistory, tech.MALong)
	}
	if tech.RSIPeriod <= 1 || tech.MACDFast <= 0 || tech.MACDFast >= tech.MACDSlow || tech.MACDSignal <= 0 {
		return fmt.Errorf("technical: invalid rsi/macd periods")
	}
	if tech.MomentumBars <= 0 || tech.MomentumBars >= tech.MinHistory {
		return fmt.Errorf("technical.momentum_bars must be in (0, min_history)")
	}

	if t.Fundamental.PEMax <= 0 {
		return fmt.Errorf("fundamental.pe_max must be > 0")
	}
	if t.Fundamental.MarketCapMin < 0 || t.Fundamental.MarketCapMax <= t.Fundamental.MarketCapMin {
		return fmt.Errorf("fundamental: market_cap_min must be below market_cap_max")
	}

	for name, capPoints := range map[string]float64{
		"technical":   tech.Points.Max(),
		"fundamental": t.Fundamental.Points.Max(),
		"risk":        t.Risk.Points.Max(),
	} {
		if capPoints <= 0 || math.IsNaN(capPoints) {
			return fmt.Errorf("%s points must sum to a positive cap", name)
		}
	}

	o := t.Overall
	if o.Floor < 0 || o.Ceiling > 100 || o.Floor >= o.Ceiling {
		return fmt.Errorf("overall: want 0 <= floor < ceiling <= 100, got %.1f/%.1f", o.Floor, o.Ceiling)
	}
	if o.BearishDampener <= 0 || o.BearishDampener > 1 {
		return fmt.Errorf("overall.bearish_dampener must be in (0, 1]")
	}
	if o.RegimeMAPeriod <= 0 {
		return fmt.Errorf("overall.regime_ma_period must be > 0")
	}
	return nil
}
