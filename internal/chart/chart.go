// Package chart renders the candlestick and indicator chart served by /chart.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// missing is how ECharts expects a gap in a line series.
const missing = "-"

const (
	width  = "1280px"
	height = "640px"
)

// Build assembles a candlestick chart of series with EMA20, EMA50 and the
// Bollinger bands overlaid.
func Build(series model.BarSeries, set *calculator.IndicatorSet) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  width,
			Height: height,
			Theme:  types.ThemeInfographic,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    series.Symbol,
			Subtitle: fmt.Sprintf("%s @ %s", series.Period, series.Interval),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: true,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
			Type:       "inside",
		}))

	x := make([]string, len(series.Bars))
	candles := make([]opts.KlineData, len(series.Bars))
	for i, b := range series.Bars {
		x[i] = b.Time.Format("01-02 15:04")
		candles[i] = opts.KlineData{Value: []float64{b.Open, b.Close, b.Low, b.High}}
	}
	kline.SetXAxis(x).AddSeries("Price", candles)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  width,
			Height: height,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: true,
		}),
	)
	line.SetXAxis(x).
		AddSeries("EMA20", lineData(set.EMA20)).
		AddSeries("EMA50", lineData(set.EMA50)).
		AddSeries("Bollinger (upper)", lineData(set.Bollinger.Upper)).
		AddSeries("Bollinger (lower)", lineData(set.Bollinger.Lower))
	kline.Overlap(line)
	return kline
}

// Render writes the chart page to w.
func Render(w io.Writer, series model.BarSeries, set *calculator.IndicatorSet) error {
	return Build(series, set).Render(w)
}

func lineData(s calculator.Series) []opts.LineData {
	out := make([]opts.LineData, s.Len())
	for i := range out {
		if v, ok := s.At(i); ok {
			out[i] = opts.LineData{Value: v}
		} else {
			out[i] = opts.LineData{Value: missing, SymbolSize: 0}
		}
	}
	return out
}
