package recorder

import (
	"time"

	"StockPulse/internal/model"
)

// RankingRun is one executed ranking batch.
type RankingRun struct {
	ID       string
	Trigger  string // "API", "CRON", "TELEGRAM", "STARTUP"
	Period   string
	Interval string
	Ranking  *model.Ranking
}

// AnalysisRecord is a stored single-symbol analysis.
type AnalysisRecord struct {
	Timestamp       time.Time            `json:"timestamp"`
	Symbol          string               `json:"symbol"`
	Period          string               `json:"period"`
	Interval        string               `json:"interval"`
	LastClose       float64              `json:"lastClose"`
	Trend           model.Trend          `json:"trend"`
	Score           float64              `json:"score"`
	Recommendation  model.Recommendation `json:"recommendation"`
	RSI14           float64              `json:"rsi14"`
	EMA20AboveEMA50 bool                 `json:"ema20_gt_ema50"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) error
	RecordRanking(run *RankingRun) error
	RecentAnalyses(symbol string, limit int) ([]AnalysisRecord, error)
	Close() error
}
