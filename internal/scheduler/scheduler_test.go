package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"StockPulse/internal/analyzer"
	"StockPulse/internal/collector"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
	"StockPulse/internal/strategy"
)

type captureNotifier struct {
	sent []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.sent = append(c.sent, text)
	return nil
}

func newTestScheduler(watchlist []string) (*Scheduler, *captureNotifier) {
	f := &collector.MockFetcher{
		Price: 100,
		Bars:  map[string][]model.OHLCV{"TINY": collector.GenerateMockBars(100, 5)},
		Err:   map[string]error{"DOWN": errors.New("unreachable")},
	}
	a := analyzer.New(collector.NewCollector(f), strategy.DefaultThresholds,
		recorder.NewNoopRecorder(), metrics.NewMetrics())
	n := &captureNotifier{}
	return NewScheduler(context.Background(), a, n, watchlist, "5d", "15m"), n
}

func TestHandleCommand(t *testing.T) {
	s, n := newTestScheduler([]string{"AAPL", "DOWN"})

	tests := []struct {
		command string
		want    string
	}{
		{"/rank", "StockPulse ranking"},
		{"/analyze aapl", "<b>AAPL</b>"},
		{"/analyze DOWN", "❌ DOWN"},
		{"/analyze TINY", "not enough data"},
		{"/analyze", "Usage"},
		{"/analyze A<B", "❌ invalid symbol &#34;A&lt;B&#34;"},
		{"/analyze NIFTY.50<", "&lt;"},
		{"hello", "Commands:"},
		{"", "Commands:"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			if got := s.HandleCommand(context.Background(), tt.command); !strings.Contains(got, tt.want) {
				t.Errorf("HandleCommand(%q) = %q, want substring %q", tt.command, got, tt.want)
			}
		})
	}
	if len(n.sent) != 0 {
		t.Errorf("command replies must not be pushed as notifications, got %d", len(n.sent))
	}
}

func TestHandleCommand_RepliesAreHTMLSafe(t *testing.T) {
	s, _ := newTestScheduler(nil)
	f := s.Analyzer.Collector.Fetcher.(*collector.MockFetcher)
	f.Err["BAD"] = errors.New("upstream said <html>oops</html>")

	for _, cmd := range []string{"/analyze A<B", "/analyze BAD", "/analyze x&y"} {
		reply := s.HandleCommand(context.Background(), cmd)
		if strings.ContainsAny(strings.TrimPrefix(reply, "❌ "), "<>") {
			t.Errorf("HandleCommand(%q) reply not escaped: %q", cmd, reply)
		}
	}
}

func TestRankTask_Notifies(t *testing.T) {
	s, n := newTestScheduler([]string{"AAPL", "DOWN"})
	s.RunRankNow()
	if len(n.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(n.sent))
	}
	if !strings.Contains(n.sent[0], "AAPL") || !strings.Contains(n.sent[0], "skipped: DOWN") {
		t.Errorf("report = %q", n.sent[0])
	}
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"})
	if err := s.RegisterAll("0 */15 9-16 * * 1-5"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}

	empty, _ := newTestScheduler(nil)
	if err := empty.RegisterAll("0 * * * * *"); err != nil || len(empty.Cron.Entries()) != 0 {
		t.Errorf("empty watchlist should register nothing, err=%v", err)
	}
}

func TestNilNotifier(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"})
	s.Notifier = nil
	s.RunRankNow()
}
