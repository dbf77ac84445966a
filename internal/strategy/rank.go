package strategy

import (
	"fmt"
	"sort"

	"StockPulse/internal/model"
)

// Rank scores every series and returns the successful results sorted by score,
// descending. Ties keep input order.
//
// A series that is too short or fails to score is skipped: it never appears in
// Ranked, only in Skipped with its error. A batch where every symbol fails
// yields an empty ranking, not an error.
func Rank(batch []model.BarSeries, th Thresholds) *model.Ranking {
	r := &model.Ranking{Ranked: make([]model.RankedResult, 0, len(batch))}
	for _, series := range batch {
		res, err := rankOne(series, th)
		if err != nil {
			r.Skipped = append(r.Skipped, model.SkippedSymbol{Symbol: series.Symbol, Err: err})
			continue
		}
		r.Ranked = append(r.Ranked, *res)
	}
	sortRanked(r.Ranked)
	return r
}

// rankOne isolates a single symbol so a panic in one never aborts the batch.
func rankOne(series model.BarSeries, th Thresholds) (res *model.RankedResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrComputation, p)
		}
	}()
	sig, err := Evaluate(series, th)
	if err != nil {
		return nil, err
	}
	return &model.RankedResult{
		Symbol:          series.Symbol,
		Score:           sig.Composite.Score,
		Recommendation:  sig.Recommendation,
		Trend:           sig.Trend,
		LastClose:       sig.LastClose,
		RSI14:           sig.Composite.RSI14,
		EMA20AboveEMA50: sig.Composite.EMA20AboveEMA50,
	}, nil
}

func sortRanked(results []model.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}
