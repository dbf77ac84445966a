package scheduler

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"StockPulse/internal/analyzer"
	"StockPulse/internal/api"
	"StockPulse/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Notifier delivers reports with retries.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Trigger sources recorded with each ranking run.
const (
	TriggerCron     = "CRON"
	TriggerTelegram = "TELEGRAM"
	TriggerStartup  = "STARTUP"
)

// Scheduler runs the watchlist ranking on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  *analyzer.Analyzer
	Notifier  Notifier // nil disables reports
	Watchlist []string
	Period    string
	Interval  string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a *analyzer.Analyzer, n Notifier, watchlist []string, period, interval string) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Analyzer:  a,
		Notifier:  n,
		Watchlist: watchlist,
		Period:    period,
		Interval:  interval,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist ranking task.
func (s *Scheduler) RegisterAll(rankCron string) error {
	if len(s.Watchlist) == 0 {
		slog.Info("empty watchlist, ranking task not scheduled")
		return nil
	}
	if _, err := s.Cron.AddFunc(rankCron, func() { s.rankTask(TriggerCron) }); err != nil {
		return fmt.Errorf("register rank task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunRankNow ranks the watchlist immediately (for RUN_ON_START).
func (s *Scheduler) RunRankNow() {
	s.rankTask(TriggerStartup)
}

func (s *Scheduler) rankTask(trigger string) string {
	slog.Info("running rank task", "trigger", trigger, "symbols", len(s.Watchlist))
	ranking, err := s.Analyzer.Rank(s.Ctx, s.Watchlist, s.Period, s.Interval, trigger)
	if err != nil {
		slog.Error("rank task failed", "error", err)
		msg := "❌ ranking failed: " + html.EscapeString(err.Error())
		if trigger != TriggerTelegram {
			s.trySend(msg)
		}
		return msg
	}
	report := notifier.FormatRanking(ranking, s.Period, s.Interval, time.Now())
	if trigger != TriggerTelegram {
		s.trySend(report)
	}
	return report
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch strings.ToLower(fields[0]) {
	case "/rank":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return s.rankTask(TriggerTelegram)
	case "/analyze":
		if len(fields) < 2 {
			return "Usage: /analyze SYMBOL"
		}
		symbol, err := api.GetValidator().ValidateSymbol(strings.ToUpper(fields[1]))
		if err != nil {
			return "❌ " + html.EscapeString(err.Error())
		}
		a, err := s.Analyzer.Analyze(s.Ctx, symbol, s.Period, s.Interval)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
		}
		return notifier.FormatAnalysis(a)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		slog.Error("send notification failed", "error", err)
	}
}
