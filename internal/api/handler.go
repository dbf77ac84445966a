package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"StockPulse/internal/collector"
	"StockPulse/internal/model"
	"StockPulse/internal/strategy"
)

// RankRequest is the body of POST /rank.
type RankRequest struct {
	Symbols  []string `json:"symbols"`
	Period   string   `json:"period"`
	Interval string   `json:"interval"`
}

// RankResponse is the body returned by POST /rank.
type RankResponse struct {
	Ranked []model.RankedResult `json:"ranked"`
}

// Analyze handles GET /analyze requests
func (h *APIHandler) Analyze(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	symbol, period, interval, err := h.validator.ValidateAnalyzeRequest(
		c.Query("symbol"),
		c.DefaultQuery("period", h.defaultPeriod),
		c.DefaultQuery("interval", h.defaultInterval),
	)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	analysis, err := h.service.Analyze(ctx, symbol, period, interval)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Rank handles POST /rank requests
func (h *APIHandler) Rank(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, errors.New("request body must be JSON with a symbols list"))
		return
	}
	if req.Period == "" {
		req.Period = h.defaultPeriod
	}
	if req.Interval == "" {
		req.Interval = h.defaultInterval
	}
	symbols, period, interval, err := h.validator.ValidateRankRequest(req.Symbols, req.Period, req.Interval)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	ranking, err := h.service.Rank(ctx, symbols, period, interval, TriggerAPI)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	for _, s := range ranking.Skipped {
		h.logger.Warn("symbol skipped",
			slog.String("request_id", c.GetString(RequestIDContextKey)),
			slog.String("symbol", s.Symbol),
			slog.String("error", s.Err.Error()),
		)
	}
	ranked := ranking.Ranked
	if ranked == nil {
		ranked = []model.RankedResult{}
	}
	c.JSON(http.StatusOK, RankResponse{Ranked: ranked})
}

// Chart handles GET /chart requests
func (h *APIHandler) Chart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	symbol, period, interval, err := h.validator.ValidateAnalyzeRequest(
		c.Query("symbol"),
		c.DefaultQuery("period", h.defaultPeriod),
		c.DefaultQuery("interval", h.defaultInterval),
	)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Chart(ctx, symbol, period, interval, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// History handles GET /history requests
func (h *APIHandler) History(c *gin.Context) {
	symbol, limit, err := h.validator.ValidateHistoryRequest(c.Query("symbol"), c.Query("limit"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	records, err := h.service.History(symbol, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "history": records})
}

// HealthCheck handles GET /health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleServiceError maps domain errors onto HTTP statuses.
func (h *APIHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, strategy.ErrInsufficientData):
		h.handleError(c, err, http.StatusBadRequest, strategy.ErrInsufficientData.Error())
	case errors.Is(err, collector.ErrUpstream):
		h.handleError(c, err, http.StatusBadGateway, "upstream data source unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		h.handleError(c, err, http.StatusGatewayTimeout, "request timed out")
	default:
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
	}
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := c.GetString(RequestIDContextKey)
	if requestID == "" {
		requestID = "unknown"
	}

	h.logger.Error("API error",
		slog.String("request_id", requestID),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

// handleValidationError handles validation errors specifically
func (h *APIHandler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}
