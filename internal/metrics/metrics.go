package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the scoring service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal  *prometheus.CounterVec // labels: result
	RankRunsTotal  prometheus.Counter
	RankedSymbols  prometheus.Counter
	SkippedSymbols *prometheus.CounterVec // labels: reason
	FetchDur       *prometheus.HistogramVec
	ScoreDur       prometheus.Histogram
	HTTPRequests   *prometheus.CounterVec // labels: route, status
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_analyses_total",
			Help: "Single-symbol analyses by result",
		}, []string{"result"}),
		RankRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockpulse_rank_runs_total",
			Help: "Ranking batches executed",
		}),
		RankedSymbols: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockpulse_ranked_symbols_total",
			Help: "Symbols that made it into a ranking",
		}),
		SkippedSymbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_skipped_symbols_total",
			Help: "Symbols skipped during ranking, by reason",
		}, []string{"reason"}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockpulse_fetch_duration_seconds",
			Help:    "Bar fetch latency by data source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		ScoreDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockpulse_score_duration_seconds",
			Help:    "Indicator and composite score compute latency per series",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
	}
	m.registry.MustRegister(
		m.AnalysesTotal, m.RankRunsTotal, m.RankedSymbols, m.SkippedSymbols,
		m.FetchDur, m.ScoreDur, m.HTTPRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAnalysis(result string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRanking(ranked int, skipped map[string]int) {
	if m == nil {
		return
	}
	m.RankRunsTotal.Inc()
	m.RankedSymbols.Add(float64(ranked))
	for reason, n := range skipped {
		m.SkippedSymbols.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) ObserveFetch(source string, start time.Time) {
	if m == nil {
		return
	}
	m.FetchDur.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveScore(start time.Time) {
	if m == nil {
		return
	}
	m.ScoreDur.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTP(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}
