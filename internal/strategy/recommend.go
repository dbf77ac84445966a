package strategy

import (
	"fmt"
	"math"

	"StockPulse/internal/model"
)

// Thresholds maps a composite score to a recommendation. Scores strictly above
// Buy are Buy, strictly below Sell are Sell, anything else Hold.
type Thresholds struct {
	Buy  float64
	Sell float64
}

// DefaultThresholds are the stock ±1.2 cut-offs.
var DefaultThresholds = Thresholds{Buy: 1.2, Sell: -1.2}

// Validate checks that both thresholds are finite and Buy lies strictly above Sell.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Buy) || math.IsInf(t.Buy, 0) || math.IsNaN(t.Sell) || math.IsInf(t.Sell, 0) {
		return fmt.Errorf("thresholds must be finite, got buy %v sell %v", t.Buy, t.Sell)
	}
	if t.Buy <= t.Sell {
		return fmt.Errorf("buy threshold %.3f must exceed sell threshold %.3f", t.Buy, t.Sell)
	}
	return nil
}

// MapRecommendation maps a score to Buy, Hold or Sell.
func (t Thresholds) MapRecommendation(score float64) model.Recommendation {
	switch {
	case score > t.Buy:
		return model.RecommendBuy
	case score < t.Sell:
		return model.RecommendSell
	default:
		return model.RecommendHold
	}
}

// MapRecommendation maps a score using DefaultThresholds.
func MapRecommendation(score float64) model.Recommendation {
	return DefaultThresholds.MapRecommendation(score)
}
