package model

// Trend is the three-way trend label.
type Trend string

const (
	TrendUp       Trend = "Up"
	TrendDown     Trend = "Down"
	TrendSideways Trend = "Sideways"
)

// Recommendation is the three-way action derived from a composite score.
type Recommendation string

const (
	RecommendBuy  Recommendation = "Buy"
	RecommendHold Recommendation = "Hold"
	RecommendSell Recommendation = "Sell"
)

// FactorScore represents a single normalized sub-signal and its weighted contribution.
type FactorScore struct {
	Name     string  `json:"name"`
	RawScore float64 `json:"value"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// CompositeSignal is the output of the composite scorer.
type CompositeSignal struct {
	Factors         []FactorScore
	Score           float64
	RSI14           float64
	EMA20AboveEMA50 bool
}

// Factor returns the named factor, or false if absent.
func (c *CompositeSignal) Factor(name string) (FactorScore, bool) {
	for _, f := range c.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return FactorScore{}, false
}

// TradeSignal is the final output of the strategy engine for one series.
type TradeSignal struct {
	Composite      CompositeSignal
	Trend          Trend
	Recommendation Recommendation
	LastClose      float64
}

// RankedResult is one entry of a ranking.
type RankedResult struct {
	Symbol          string         `json:"symbol"`
	Score           float64        `json:"score"`
	Recommendation  Recommendation `json:"recommendation"`
	Trend           Trend          `json:"trend"`
	LastClose       float64        `json:"lastClose"`
	RSI14           float64        `json:"rsi14"`
	EMA20AboveEMA50 bool           `json:"ema20_gt_ema50"`
}

// SkippedSymbol records why a symbol was left out of a ranking.
type SkippedSymbol struct {
	Symbol string
	Err    error
}

// Ranking holds the ranked results, descending by score, and the symbols that were skipped.
// Skipped symbols never appear in the ranked list.
type Ranking struct {
	Ranked  []RankedResult
	Skipped []SkippedSymbol
}

// SparkPoint is one point of the close-price sparkline.
type SparkPoint struct {
	T string  `json:"t"`
	C float64 `json:"c"`
}

// AnalysisIndicators carries the raw indicator values reported with an analysis.
type AnalysisIndicators struct {
	RSI14           float64 `json:"rsi14"`
	EMA20AboveEMA50 bool    `json:"ema20_gt_ema50"`
}

// Analysis is the single-symbol result served by /analyze.
type Analysis struct {
	Symbol         string             `json:"symbol"`
	Period         string             `json:"period"`
	Interval       string             `json:"interval"`
	LastClose      float64            `json:"lastClose"`
	Trend          Trend              `json:"trend"`
	Score          float64            `json:"score"`
	Recommendation Recommendation     `json:"recommendation"`
	Indicators     AnalysisIndicators `json:"indicators"`
	Components     []FactorScore      `json:"components"`
	Sparkline      []SparkPoint       `json:"sparkline"`
}
