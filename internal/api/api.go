package api

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
)

// The package is split by concern:
// - api.go: handler dependencies and routing (this file)
// - handler.go: HTTP request handlers and error mapping
// - middleware.go: request id, logging, CORS
// - validator.go: request validation

const (
	DefaultTimeout      = 60 * time.Second
	DefaultPeriod       = "5d"
	DefaultInterval     = "15m"
	ServiceVersion      = "1.0.0"
	ServiceName         = "stockpulse"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
	TriggerAPI          = "API"
)

// AnalysisService is what the HTTP layer needs from the analyzer.
type AnalysisService interface {
	Analyze(ctx context.Context, symbol, period, interval string) (*model.Analysis, error)
	Rank(ctx context.Context, symbols []string, period, interval, trigger string) (*model.Ranking, error)
	Chart(ctx context.Context, symbol, period, interval string, w io.Writer) error
	History(symbol string, limit int) ([]recorder.AnalysisRecord, error)
}

// APIHandler handles HTTP requests using Gin framework
type APIHandler struct {
	service         AnalysisService
	validator       *Validator
	logger          *slog.Logger
	metrics         *metrics.Metrics
	defaultPeriod   string
	defaultInterval string
}

// NewAPIHandler creates a new API handler. m may be nil, in which case
// /metrics is not served.
func NewAPIHandler(service AnalysisService, logger *slog.Logger, m *metrics.Metrics) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		service:         service,
		validator:       GetValidator(),
		logger:          logger,
		metrics:         m,
		defaultPeriod:   DefaultPeriod,
		defaultInterval: DefaultInterval,
	}
}

// WithDefaults overrides the period and interval used when a request omits them.
func (h *APIHandler) WithDefaults(period, interval string) *APIHandler {
	if period != "" {
		h.defaultPeriod = period
	}
	if interval != "" {
		h.defaultInterval = interval
	}
	return h
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(requestLogMiddleware(h.logger, h.metrics))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/analyze", h.Analyze)
	router.POST("/rank", h.Rank)
	router.GET("/chart", h.Chart)
	router.GET("/history", h.History)
	router.GET("/health", h.HealthCheck)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	return router
}
