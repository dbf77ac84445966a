package chart

import (
	"bytes"
	"strings"
	"testing"

	"StockPulse/internal/calculator"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
)

func TestRender_WritesHTML(t *testing.T) {
	bars := collector.GenerateMockBars(100, 80)
	set, err := calculator.ComputeIndicators(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	series := model.BarSeries{Symbol: "AAPL", Period: "5d", Interval: "15m", Bars: bars}

	var buf bytes.Buffer
	if err := Render(&buf, series, set); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "AAPL", "EMA20", "Bollinger (upper)"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart html missing %q", want)
		}
	}
}

func TestLineData_MarksWarmup(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	sma, err := calculator.SMA(closes, 3)
	if err != nil {
		t.Fatal(err)
	}
	data := lineData(sma)
	if len(data) != 5 {
		t.Fatalf("len = %d, want 5", len(data))
	}
	for i := 0; i < 2; i++ {
		if data[i].Value != missing {
			t.Errorf("data[%d] = %v, want gap", i, data[i].Value)
		}
	}
	if data[2].Value != 2.0 {
		t.Errorf("data[2] = %v, want 2", data[2].Value)
	}
}
