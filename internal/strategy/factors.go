package strategy

import (
	"math"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// Factor names, in the order they are summed.
const (
	FactorRSIBalance  = "rsi_balance"
	FactorMACDHist    = "macd_hist"
	FactorEMATrend    = "ema_trend"
	FactorBBPos       = "bb_pos"
	FactorRet1        = "ret_1d"
	FactorRet5        = "ret_5d"
	FactorRiskPenalty = "risk_penalty"
)

// Weights are the fixed fusion weights of the composite score.
var Weights = map[string]float64{
	FactorRSIBalance:  1.0,
	FactorMACDHist:    1.2,
	FactorEMATrend:    1.2,
	FactorBBPos:       0.6,
	FactorRet1:        0.8,
	FactorRet5:        1.0,
	FactorRiskPenalty: 1.0,
}

// factorOrder fixes the summation order so the score is bit-for-bit reproducible.
var factorOrder = []string{
	FactorRSIBalance, FactorMACDHist, FactorEMATrend, FactorBBPos,
	FactorRet1, FactorRet5, FactorRiskPenalty,
}

// snapshot is the last value of every indicator the factors read.
type snapshot struct {
	close   float64
	rsi     float64
	hist    float64
	ema20   float64
	ema50   float64
	bbUpper float64
	bbLower float64
	atr     float64
	ret1    float64
	ret5    float64
}

func factor(name string, raw float64) model.FactorScore {
	w := Weights[name]
	return model.FactorScore{Name: name, RawScore: raw, Weight: w, Weighted: raw * w}
}

// scoreRSIBalance peaks at RSI 50 and decays linearly toward 0 and 100.
func scoreRSIBalance(s snapshot) model.FactorScore {
	return factor(FactorRSIBalance, (50-math.Abs(50-s.rsi))/50)
}

// scoreMACDHist squashes the histogram.
func scoreMACDHist(s snapshot) model.FactorScore {
	return factor(FactorMACDHist, math.Tanh(s.hist*10))
}

// scoreEMATrend squashes the EMA20/EMA50 spread relative to price.
func scoreEMATrend(s snapshot) model.FactorScore {
	spread := (s.ema20 - s.ema50) / (s.close + calculator.Epsilon)
	return factor(FactorEMATrend, math.Tanh(spread*200))
}

// scoreBBPosition centers the position inside the Bollinger band on zero.
func scoreBBPosition(s snapshot) model.FactorScore {
	pos := calculator.Position(s.close, s.bbUpper, s.bbLower)
	return factor(FactorBBPos, (pos-0.5)*2)
}

func scoreReturn1(s snapshot) model.FactorScore {
	return factor(FactorRet1, math.Tanh(s.ret1*10))
}

func scoreReturn5(s snapshot) model.FactorScore {
	return factor(FactorRet5, math.Tanh(s.ret5*5))
}

// scoreRiskPenalty subtracts more as ATR grows relative to price.
func scoreRiskPenalty(s snapshot) model.FactorScore {
	risk := s.atr / (s.close + calculator.Epsilon)
	return factor(FactorRiskPenalty, -math.Tanh(risk*10))
}

var factorFuncs = map[string]func(snapshot) model.FactorScore{
	FactorRSIBalance:  scoreRSIBalance,
	FactorMACDHist:    scoreMACDHist,
	FactorEMATrend:    scoreEMATrend,
	FactorBBPos:       scoreBBPosition,
	FactorRet1:        scoreReturn1,
	FactorRet5:        scoreReturn5,
	FactorRiskPenalty: scoreRiskPenalty,
}
