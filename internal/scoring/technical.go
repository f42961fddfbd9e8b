package scoring

import (
	"fmt"

	"github.com/wonny/hunter/internal/contracts"
)

// ReasonInsufficientHistory is the only reason given for a series shorter than MinHistory
const ReasonInsufficientHistory = "insufficient history"

// Technical scores trend strength from daily closes
func Technical(series *contracts.PriceSeries, th TechnicalThresholds) contracts.SubScore {
	pts := th.Points
	sub := contracts.SubScore{Max: pts.Max()}

	if series.Len() < th.MinHistory {
		sub.Reasons = []string{ReasonInsufficientHistory}
		return sub
	}

	closes := series.Closes()
	lastClose := closes[len(closes)-1]

	short, okShort := lastSMA(closes, th.MAShort)
	medium, okMedium := lastSMA(closes, th.MAMedium)
	long, okLong := lastSMA(closes, th.MALong)

	award := func(met bool, points float64, reason string) {
		if met {
			sub.Score += points
			return
		}
		sub.Reasons = append(sub.Reasons, reason)
	}

	award(okShort && lastClose > short, pts.AboveShortMA,
		fmt.Sprintf("price below %d-day MA", th.MAShort))
	award(okShort && okMedium && short > medium, pts.ShortOverMid,
		fmt.Sprintf("%d-day MA below %d-day MA", th.MAShort, th.MAMedium))
	award(okMedium && okLong && medium > long, pts.MidOverLong,
		fmt.Sprintf("%d-day MA below %d-day MA", th.MAMedium, th.MALong))

	if rsi, ok := lastRSI(closes, th.RSIPeriod); ok {
		award(rsi > th.RSIMin, pts.RSI, fmt.Sprintf("RSI(%d) %.1f not above %.0f", th.RSIPeriod, rsi, th.RSIMin))
	} else {
		award(false, pts.RSI, fmt.Sprintf("RSI(%d) unavailable", th.RSIPeriod))
	}

	if line, signal, ok := lastMACD(closes, th.MACDFast, th.MACDSlow, th.MACDSignal); ok {
		award(line > signal, pts.MACD, "MACD below signal line")
	} else {
		award(false, pts.MACD, "MACD unavailable")
	}

	if ret, ok := periodReturn(closes, th.MomentumBars); ok {
		award(ret > th.MomentumMin, pts.Momentum,
			fmt.Sprintf("%d-bar return %.1f%% not above %.1f%%", th.MomentumBars, ret*100, th.MomentumMin*100))
	} else {
		award(false, pts.Momentum, fmt.Sprintf("%d-bar return unavailable", th.MomentumBars))
	}

	return sub
}
