package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"StockPulse/internal/analyzer"
	"StockPulse/internal/api"
	"StockPulse/internal/collector"
	"StockPulse/internal/config"
	"StockPulse/internal/logger"
	"StockPulse/internal/metrics"
	"StockPulse/internal/notifier"
	"StockPulse/internal/recorder"
	"StockPulse/internal/scheduler"
	"StockPulse/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("StockPulse exited", "error", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a shutdown signal.
func run() error {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("load .env failed", "error", err)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(api.ServiceName, cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log.Info("StockPulse starting", "addr", cfg.Server.Addr, "provider", cfg.DataSource.Provider)

	if err := tracing.Init(api.ServiceName, api.ServiceVersion, cfg.Tracing.Enabled); err != nil {
		log.Warn("init tracing failed, continuing without spans", "error", err)
	}

	fetcher, closeFetcher := newFetcher(cfg)
	defer closeFetcher()
	log.Info("data source ready", "fetcher", fetcher.Name())

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", "error", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	th := cfg.Thresholds()
	m := metrics.NewMetrics()
	svc := analyzer.New(collector.NewCollector(fetcher), th, rec, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notify scheduler.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notify = tn
	}

	sched := scheduler.NewScheduler(ctx, svc, notify, cfg.Schedule.Watchlist,
		cfg.DataSource.Period, cfg.DataSource.Interval)
	if err := sched.RegisterAll(cfg.Schedule.RankCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if cfg.Schedule.RunOnStart && len(cfg.Schedule.Watchlist) > 0 {
		log.Info("RUN_ON_START enabled, ranking watchlist now")
		go sched.RunRankNow()
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewAPIHandler(svc, log, m).WithDefaults(cfg.DataSource.Period, cfg.DataSource.Interval)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Info("StockPulse is running", "addr", cfg.Server.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	cancel()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", "error", err)
	}
	log.Info("StockPulse stopped")
	return runErr
}

func newFetcher(cfg *config.Config) (collector.Fetcher, func()) {
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}

	if cfg.Cache.RedisAddr == "" {
		return fetcher, func() {}
	}
	cached := collector.NewCachedFetcher(fetcher, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.TTL)
	return cached, func() {
		if err := cached.Close(); err != nil {
			slog.Warn("close redis client", "error", err)
		}
	}
}
