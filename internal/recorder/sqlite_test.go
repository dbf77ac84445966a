package recorder

import (
	"path/filepath"
	"testing"

	"StockPulse/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_AnalysisRoundTrip(t *testing.T) {
	r := newTestRecorder(t)
	for _, score := range []float64{0.4, 1.7} {
		a := &model.Analysis{
			Symbol: "INFY.NS", Period: "5d", Interval: "15m",
			LastClose: 1512.5, Trend: model.TrendUp, Score: score,
			Recommendation: model.RecommendHold,
			Indicators:     model.AnalysisIndicators{RSI14: 58.2, EMA20AboveEMA50: true},
			Components:     []model.FactorScore{{Name: "rsi_balance", RawScore: 0.8, Weight: 1, Weighted: 0.8}},
		}
		if err := r.RecordAnalysis(a); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := r.RecentAnalyses("INFY.NS", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Score != 1.7 {
		t.Errorf("expected newest first, got score %v", got[0].Score)
	}
	if !got[0].EMA20AboveEMA50 || got[0].Trend != model.TrendUp || got[0].RSI14 != 58.2 {
		t.Errorf("fields not preserved: %+v", got[0])
	}

	if other, _ := r.RecentAnalyses("TCS.NS", 10); len(other) != 0 {
		t.Errorf("expected no records for other symbol, got %d", len(other))
	}
}

func TestSQLiteRecorder_RecordRanking(t *testing.T) {
	r := newTestRecorder(t)
	run := &RankingRun{
		ID: "run-1", Trigger: "API", Period: "5d", Interval: "15m",
		Ranking: &model.Ranking{
			Ranked: []model.RankedResult{
				{Symbol: "C", Score: 1.5, Recommendation: model.RecommendBuy, Trend: model.TrendUp},
				{Symbol: "A", Score: 0.8, Recommendation: model.RecommendHold, Trend: model.TrendSideways},
			},
			Skipped: []model.SkippedSymbol{{Symbol: "B"}},
		},
	}
	if err := r.RecordRanking(run); err != nil {
		t.Fatal(err)
	}

	var first string
	if err := r.db.QueryRow(`SELECT symbol FROM rankings WHERE run_id = ? AND rank = 1`, "run-1").Scan(&first); err != nil {
		t.Fatal(err)
	}
	if first != "C" {
		t.Errorf("rank 1 = %s, want C", first)
	}
	var skipped string
	var count int
	if err := r.db.QueryRow(`SELECT ranked_count, skipped_symbols FROM ranking_runs WHERE run_id = ?`, "run-1").Scan(&count, &skipped); err != nil {
		t.Fatal(err)
	}
	if count != 2 || skipped != "B" {
		t.Errorf("run row = (%d, %q), want (2, \"B\")", count, skipped)
	}

	if err := r.RecordRanking(run); err == nil {
		t.Error("expected duplicate run id to fail")
	}
}
