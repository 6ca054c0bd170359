package indicator

import (
	"math"
	"testing"
	"time"

	"momentum-ai/internal/market"
)

func TestSeriesHelpers(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	if got := Last(values); got != 5 {
		t.Errorf("Last = %f, want 5", got)
	}
	if got := Prev(values); got != 4 {
		t.Errorf("Prev = %f, want 4", got)
	}
	if !math.IsNaN(Last(nil)) {
		t.Errorf("Last(nil) should be NaN")
	}
	if !math.IsNaN(Prev([]float64{1})) {
		t.Errorf("Prev of single element should be NaN")
	}

	tail := SliceTail(values, 2)
	if len(tail) != 2 || tail[0] != 4 || tail[1] != 5 {
		t.Errorf("SliceTail = %v, want [4 5]", tail)
	}
	if got := SliceTail(values, 10); len(got) != len(values) {
		t.Errorf("SliceTail beyond length should return all values, got %v", got)
	}
	if got := SliceTail(values, 0); got != nil {
		t.Errorf("SliceTail with n=0 should return nil, got %v", got)
	}

	if got := SafeDivide(10, 4); got != 2.5 {
		t.Errorf("SafeDivide = %f, want 2.5", got)
	}
	if got := SafeDivide(10, 0); got != 0 {
		t.Errorf("SafeDivide by zero should return 0, got %f", got)
	}
}

func makeCandles(n int) []market.Candle {
	candles := make([]market.Candle, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		price += float64(i%5) - 2
		candles[i] = market.Candle{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000 + float64(i*10),
		}
	}
	return candles
}

func TestCalculatorCompute(t *testing.T) {
	calc := NewCalculator()
	candles := makeCandles(60)

	snapshot, err := calc.Compute(market.Timeframe15m, candles)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if snapshot.Timeframe != market.Timeframe15m {
		t.Errorf("unexpected timeframe: %s", snapshot.Timeframe)
	}
	if snapshot.Close != candles[len(candles)-1].Close {
		t.Errorf("Close = %f, want %f", snapshot.Close, candles[len(candles)-1].Close)
	}
	if snapshot.PreviousClose != candles[len(candles)-2].Close {
		t.Errorf("PreviousClose = %f, want %f", snapshot.PreviousClose, candles[len(candles)-2].Close)
	}
	if snapshot.VWAP <= 0 {
		t.Errorf("expected positive VWAP, got %f", snapshot.VWAP)
	}
	if snapshot.Volume.Current != candles[len(candles)-1].Volume {
		t.Errorf("Volume.Current = %f, want %f", snapshot.Volume.Current, candles[len(candles)-1].Volume)
	}
	if snapshot.Volume.Average20 <= 0 || snapshot.Volume.Ratio <= 0 {
		t.Errorf("unexpected volume stats: %+v", snapshot.Volume)
	}
	if snapshot.RecentHigh20 < snapshot.Close {
		t.Errorf("RecentHigh20 %f should be at least last close %f", snapshot.RecentHigh20, snapshot.Close)
	}
	if math.IsNaN(snapshot.EMA9) || math.IsNaN(snapshot.RSI14) {
		t.Errorf("expected indicators computed for 60 candles, got EMA9=%f RSI14=%f", snapshot.EMA9, snapshot.RSI14)
	}
}

func TestCalculatorCompute_EmptyInput(t *testing.T) {
	calc := NewCalculator()
	if _, err := calc.Compute(market.Timeframe15m, nil); err == nil {
		t.Fatalf("expected error for empty candles")
	}
}

func TestCalculatorCompute_CachesByLatestCandle(t *testing.T) {
	calc := NewCalculator()
	candles := makeCandles(60)

	first, err := calc.Compute(market.Timeframe15m, candles)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	second, err := calc.Compute(market.Timeframe15m, candles)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if first != second {
		t.Errorf("expected cached snapshot for identical input")
	}
}
