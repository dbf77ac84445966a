// Package analyzer ties data collection to the scoring engine. It serves
// single-symbol analyses and batch rankings, and records both.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"StockPulse/internal/calculator"
	"StockPulse/internal/chart"
	"StockPulse/internal/collector"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
	"StockPulse/internal/strategy"
	"StockPulse/internal/tracing"
)

// SparklineLen is the number of trailing closes returned with an analysis.
const SparklineLen = 60

// Analyzer serves analyses and rankings.
type Analyzer struct {
	Collector  *collector.Collector
	Thresholds strategy.Thresholds
	Recorder   recorder.Recorder
	Metrics    *metrics.Metrics
}

// New creates an Analyzer. A nil recorder is replaced by a no-op one.
func New(col *collector.Collector, th strategy.Thresholds, rec recorder.Recorder, m *metrics.Metrics) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{Collector: col, Thresholds: th, Recorder: rec, Metrics: m}
}

func (a *Analyzer) collect(ctx context.Context, symbol, period, interval string) (model.BarSeries, error) {
	ctx, span := tracing.StartSpan(ctx, "collector.Collect")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	start := time.Now()
	series, err := a.Collector.Collect(ctx, symbol, period, interval)
	a.Metrics.ObserveFetch(a.Collector.Fetcher.Name(), start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
	}
	return series, err
}

// Analyze scores one symbol. Fewer than 60 bars is reported as
// strategy.ErrInsufficientData, fetch failures as collector.ErrUpstream.
func (a *Analyzer) Analyze(ctx context.Context, symbol, period, interval string) (*model.Analysis, error) {
	ctx, span := tracing.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.String("period", period),
		attribute.String("interval", interval),
	)

	series, err := a.collect(ctx, symbol, period, interval)
	if err != nil {
		a.Metrics.ObserveAnalysis(skipReason(err))
		return nil, err
	}

	start := time.Now()
	sig, err := strategy.Evaluate(series, a.Thresholds)
	a.Metrics.ObserveScore(start)
	if err != nil {
		a.Metrics.ObserveAnalysis(skipReason(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}

	analysis := &model.Analysis{
		Symbol:         symbol,
		Period:         period,
		Interval:       interval,
		LastClose:      sig.LastClose,
		Trend:          sig.Trend,
		Score:          sig.Composite.Score,
		Recommendation: sig.Recommendation,
		Indicators: model.AnalysisIndicators{
			RSI14:           sig.Composite.RSI14,
			EMA20AboveEMA50: sig.Composite.EMA20AboveEMA50,
		},
		Components: sig.Composite.Factors,
		Sparkline:  Sparkline(series.Bars, SparklineLen),
	}
	a.Metrics.ObserveAnalysis("ok")
	span.SetAttributes(attribute.Float64("score", analysis.Score))

	if err := a.Recorder.RecordAnalysis(analysis); err != nil {
		slog.Error("record analysis failed", "symbol", symbol, "error", err)
	}
	return analysis, nil
}

// Rank fetches and scores every symbol in order and returns them sorted by
// score. Symbols that cannot be fetched or scored are skipped, never reported
// as an error; only a cancelled ctx aborts the batch.
func (a *Analyzer) Rank(ctx context.Context, symbols []string, period, interval, trigger string) (*model.Ranking, error) {
	ctx, span := tracing.StartSpan(ctx, "analyzer.Rank")
	defer span.End()
	span.SetAttributes(attribute.Int("symbols", len(symbols)))

	batch := make([]model.BarSeries, 0, len(symbols))
	var fetchSkips []model.SkippedSymbol
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := a.collect(ctx, sym, period, interval)
		if err != nil {
			fetchSkips = append(fetchSkips, model.SkippedSymbol{Symbol: sym, Err: err})
			continue
		}
		batch = append(batch, series)
	}

	start := time.Now()
	ranking := strategy.Rank(batch, a.Thresholds)
	a.Metrics.ObserveScore(start)
	ranking.Skipped = append(fetchSkips, ranking.Skipped...)

	reasons := make(map[string]int)
	for _, s := range ranking.Skipped {
		reasons[skipReason(s.Err)]++
		slog.Debug("symbol skipped from ranking", "symbol", s.Symbol, "error", s.Err)
	}
	a.Metrics.ObserveRanking(len(ranking.Ranked), reasons)
	span.SetAttributes(attribute.Int("ranked", len(ranking.Ranked)))

	run := &recorder.RankingRun{
		ID:       uuid.NewString(),
		Trigger:  trigger,
		Period:   period,
		Interval: interval,
		Ranking:  ranking,
	}
	if err := a.Recorder.RecordRanking(run); err != nil {
		slog.Error("record ranking failed", "run_id", run.ID, "error", err)
	}
	slog.Info("ranking complete", "run_id", run.ID, "trigger", trigger,
		"ranked", len(ranking.Ranked), "skipped", len(ranking.Skipped))
	return ranking, nil
}

// Chart renders the price and indicator chart of one symbol as HTML.
func (a *Analyzer) Chart(ctx context.Context, symbol, period, interval string, w io.Writer) error {
	series, err := a.collect(ctx, symbol, period, interval)
	if err != nil {
		return err
	}
	if err := strategy.ValidateBars(series.Bars); err != nil {
		return err
	}
	set, err := calculator.ComputeIndicators(series.Bars)
	if err != nil {
		return fmt.Errorf("%w: %v", strategy.ErrComputation, err)
	}
	return chart.Render(w, series, set)
}

// History returns recorded analyses of symbol, newest first.
func (a *Analyzer) History(symbol string, limit int) ([]recorder.AnalysisRecord, error) {
	return a.Recorder.RecentAnalyses(symbol, limit)
}

// Sparkline returns the last n closes as {t, c} points.
func Sparkline(bars []model.OHLCV, n int) []model.SparkPoint {
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	out := make([]model.SparkPoint, len(bars))
	for i, b := range bars {
		out[i] = model.SparkPoint{T: b.Time.Format(time.RFC3339), C: b.Close}
	}
	return out
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, collector.ErrUpstream):
		return "fetch"
	case errors.Is(err, strategy.ErrInsufficientData):
		return "insufficient_data"
	default:
		return "computation"
	}
}
