package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/collector"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
	"StockPulse/internal/strategy"
)

// MockAnalysisService implements AnalysisService for testing
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, symbol, period, interval string) (*model.Analysis, error) {
	args := m.Called(ctx, symbol, period, interval)
	a, _ := args.Get(0).(*model.Analysis)
	return a, args.Error(1)
}

func (m *MockAnalysisService) Rank(ctx context.Context, symbols []string, period, interval, trigger string) (*model.Ranking, error) {
	args := m.Called(ctx, symbols, period, interval, trigger)
	r, _ := args.Get(0).(*model.Ranking)
	return r, args.Error(1)
}

func (m *MockAnalysisService) Chart(ctx context.Context, symbol, period, interval string, w io.Writer) error {
	args := m.Called(ctx, symbol, period, interval, w)
	if args.Error(0) == nil {
		io.WriteString(w, "<html>chart</html>")
	}
	return args.Error(0)
}

func (m *MockAnalysisService) History(symbol string, limit int) ([]recorder.AnalysisRecord, error) {
	args := m.Called(symbol, limit)
	recs, _ := args.Get(0).([]recorder.AnalysisRecord)
	return recs, args.Error(1)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func setupRouter(svc AnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewAPIHandler(svc, setupTestLogger(), metrics.NewMetrics()).SetupRoutes()
}

func doRequest(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestNewAPIHandler_NilLogger(t *testing.T) {
	h := NewAPIHandler(&MockAnalysisService{}, nil, nil)
	assert.Equal(t, slog.Default(), h.logger)
	assert.Equal(t, DefaultPeriod, h.defaultPeriod)

	h.WithDefaults("1mo", "")
	assert.Equal(t, "1mo", h.defaultPeriod)
	assert.Equal(t, DefaultInterval, h.defaultInterval)
}

func TestAnalyze_Success(t *testing.T) {
	svc := &MockAnalysisService{}
	analysis := &model.Analysis{
		Symbol:         "AAPL",
		Period:         "5d",
		Interval:       "15m",
		LastClose:      190.5,
		Trend:          model.TrendUp,
		Score:          1.4,
		Recommendation: model.RecommendBuy,
		Indicators:     model.AnalysisIndicators{RSI14: 62.3, EMA20AboveEMA50: true},
		Components:     []model.FactorScore{{Name: "macd_hist", RawScore: 0.4, Weight: 1.2, Weighted: 0.48}},
		Sparkline:      []model.SparkPoint{{T: "2024-03-01T15:45:00Z", C: 190.5}},
	}
	svc.On("Analyze", mock.Anything, "AAPL", "5d", "15m").Return(analysis, nil)

	w := doRequest(setupRouter(svc), http.MethodGet, "/analyze?symbol=AAPL", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeaderKey))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body["symbol"])
	assert.Equal(t, "Buy", body["recommendation"])
	assert.Equal(t, "Up", body["trend"])
	assert.Equal(t, 190.5, body["lastClose"])
	indicators := body["indicators"].(map[string]any)
	assert.Equal(t, true, indicators["ema20_gt_ema50"])
	components := body["components"].([]any)
	assert.Equal(t, "macd_hist", components[0].(map[string]any)["name"])
	spark := body["sparkline"].([]any)
	assert.Equal(t, "2024-03-01T15:45:00Z", spark[0].(map[string]any)["t"])
	svc.AssertExpectations(t)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"insufficient data", fmt.Errorf("analyze X: %w", strategy.ErrInsufficientData), http.StatusBadRequest, "not enough data"},
		{"upstream", fmt.Errorf("%w: yahoo X: timeout", collector.ErrUpstream), http.StatusBadGateway, "upstream data source unavailable"},
		{"computation", fmt.Errorf("%w: non-finite score", strategy.ErrComputation), http.StatusInternalServerError, "Internal server error"},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAnalysisService{}
			svc.On("Analyze", mock.Anything, "MSFT", "1mo", "1d").Return(nil, tt.err)

			w := doRequest(setupRouter(svc), http.MethodGet, "/analyze?symbol=MSFT&period=1mo&interval=1d", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeError(t, w))
		})
	}
}

func TestAnalyze_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing symbol", "/analyze"},
		{"symbol with space", "/analyze?symbol=NIFTY%2050"},
		{"symbol too long", "/analyze?symbol=" + strings.Repeat("A", 21)},
		{"bad period", "/analyze?symbol=AAPL&period=7d"},
		{"bad interval", "/analyze?symbol=AAPL&interval=4h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAnalysisService{}
			w := doRequest(setupRouter(svc), http.MethodGet, tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyze_IndexSymbols(t *testing.T) {
	for _, sym := range []string{"^GSPC", "ES=F", "BRK-B", "BRK.B", "RELIANCE.NS"} {
		svc := &MockAnalysisService{}
		svc.On("Analyze", mock.Anything, sym, "5d", "15m").Return(&model.Analysis{Symbol: sym}, nil)
		req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
		q := req.URL.Query()
		q.Set("symbol", sym)
		req.URL.RawQuery = q.Encode()
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, sym)
	}
}

func TestRank_Success(t *testing.T) {
	svc := &MockAnalysisService{}
	ranking := &model.Ranking{
		Ranked: []model.RankedResult{
			{Symbol: "C", Score: 1.5, Recommendation: model.RecommendBuy, Trend: model.TrendUp},
			{Symbol: "A", Score: 0.8, Recommendation: model.RecommendHold, Trend: model.TrendSideways},
		},
		Skipped: []model.SkippedSymbol{{Symbol: "B", Err: strategy.ErrInsufficientData}},
	}
	svc.On("Rank", mock.Anything, []string{"A", "B", "C"}, "5d", "15m", TriggerAPI).Return(ranking, nil)

	w := doRequest(setupRouter(svc), http.MethodPost, "/rank", `{"symbols":["A","B","C"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Ranked []map[string]any `json:"ranked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Ranked, 2)
	assert.Equal(t, "C", body.Ranked[0]["symbol"])
	assert.Equal(t, "A", body.Ranked[1]["symbol"])
	assert.NotContains(t, w.Body.String(), `"B"`)
	svc.AssertExpectations(t)
}

func TestRank_EmptyResultIsArray(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("Rank", mock.Anything, []string{"X"}, "5d", "15m", TriggerAPI).Return(&model.Ranking{}, nil)

	w := doRequest(setupRouter(svc), http.MethodPost, "/rank", `{"symbols":["X"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ranked":[]}`, w.Body.String())
}

func TestRank_Validation(t *testing.T) {
	many := make([]string, MaxRankSymbols+1)
	for i := range many {
		many[i] = fmt.Sprintf("%q", fmt.Sprintf("S%d", i))
	}
	tests := []struct {
		name string
		body string
	}{
		{"empty list", `{"symbols":[]}`},
		{"missing list", `{}`},
		{"not json", `symbols=AAPL`},
		{"bad symbol", `{"symbols":["AAPL","NIFTY 50"]}`},
		{"bad period", `{"symbols":["AAPL"],"period":"3w"}`},
		{"too many", `{"symbols":[` + strings.Join(many, ",") + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAnalysisService{}
			w := doRequest(setupRouter(svc), http.MethodPost, "/rank", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeError(t, w))
			svc.AssertNotCalled(t, "Rank", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChart(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("Chart", mock.Anything, "AAPL", "5d", "15m", mock.Anything).Return(nil)

	w := doRequest(setupRouter(svc), http.MethodGet, "/chart?symbol=AAPL", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "chart")
}

func TestChart_Upstream(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("Chart", mock.Anything, "AAPL", "5d", "15m", mock.Anything).Return(collector.ErrUpstream)

	w := doRequest(setupRouter(svc), http.MethodGet, "/chart?symbol=AAPL", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHistory(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("History", "AAPL", 5).Return([]recorder.AnalysisRecord{{Symbol: "AAPL", Score: 0.3}}, nil)

	w := doRequest(setupRouter(svc), http.MethodGet, "/history?symbol=AAPL&limit=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"score":0.3`)

	w = doRequest(setupRouter(svc), http.MethodGet, "/history?symbol=AAPL&limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(&MockAnalysisService{})

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ServiceName)

	w = doRequest(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stockpulse_http_requests_total")
}

func TestMiddleware_RequestIDAndCORS(t *testing.T) {
	router := setupRouter(&MockAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeaderKey))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(router, http.MethodOptions, "/rank", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
