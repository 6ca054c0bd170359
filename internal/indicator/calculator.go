package indicator

import (
	"fmt"
	"sync"

	talib "github.com/markcheno/go-talib"

	"momentum-ai/internal/market"
)

// MACDResult 保存 MACD 关键值。
type MACDResult struct {
	Value         float64 `json:"value"`
	Signal        float64 `json:"signal"`
	Histogram     float64 `json:"histogram"`
	PrevHistogram float64 `json:"prev_histogram"`
}

// ATRResult 保存 ATR 指标。
type ATRResult struct {
	Absolute float64 `json:"absolute"`
	Relative float64 `json:"relative"`
}

// VolumeResult 保存成交量相关统计，Ratio 用于识别放量突破。
type VolumeResult struct {
	Current   float64 `json:"current"`
	Average20 float64 `json:"average_20"`
	Ratio     float64 `json:"ratio"`
}

// Snapshot 为一次动量指标计算的汇总，直接进入决策源的市场上下文。
type Snapshot struct {
	Timeframe     string       `json:"timeframe"`
	EMA9          float64      `json:"ema_9"`
	EMA21         float64      `json:"ema_21"`
	RSI14         float64      `json:"rsi_14"`
	MACD          MACDResult   `json:"macd"`
	ATR           ATRResult    `json:"atr"`
	Volume        VolumeResult `json:"volume"`
	VWAP          float64      `json:"vwap"`
	Close         float64      `json:"close"`
	PreviousClose float64      `json:"previous_close"`
	RecentHigh20  float64      `json:"recent_high_20"`
}

type cacheEntry struct {
	key      string
	snapshot Snapshot
}

// Calculator 提供技术指标计算并带有简单缓存。
type Calculator struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCalculator 创建 Calculator。
func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[string]cacheEntry),
	}
}

// Compute 依据给定K线计算动量指标组合。
func (c *Calculator) Compute(timeframe string, candles []market.Candle) (Snapshot, error) {
	if len(candles) == 0 {
		return Snapshot{}, fmt.Errorf("计算指标失败: 输入K线为空")
	}

	series := NewSeries(candles)
	cacheKey := fmt.Sprintf("%s:%d:%d", timeframe, series.Len(), series.Timestamps[len(series.Timestamps)-1].Unix())

	c.mu.Lock()
	if entry, ok := c.cache[timeframe]; ok && entry.key == cacheKey {
		c.mu.Unlock()
		return entry.snapshot, nil
	}
	c.mu.Unlock()

	snapshot := c.calculate(timeframe, series)

	c.mu.Lock()
	c.cache[timeframe] = cacheEntry{key: cacheKey, snapshot: snapshot}
	c.mu.Unlock()

	return snapshot, nil
}

func (c *Calculator) calculate(timeframe string, series Series) Snapshot {
	closePrices := series.Close
	highs := series.High
	lows := series.Low
	volumes := series.Volume

	ema9 := talib.Ema(closePrices, 9)
	ema21 := talib.Ema(closePrices, 21)
	macd, macdSignal, macdHist := talib.Macd(closePrices, 12, 26, 9)
	rsi := talib.Rsi(closePrices, 14)
	atr := talib.Atr(highs, lows, closePrices, 14)

	volumeAvg20 := average(SliceTail(volumes, 20))
	volumeCurrent := Last(volumes)

	lastClose := Last(closePrices)
	atrAbs := Last(atr)

	return Snapshot{
		Timeframe: timeframe,
		EMA9:      Last(ema9),
		EMA21:     Last(ema21),
		RSI14:     Last(rsi),
		MACD: MACDResult{
			Value:         Last(macd),
			Signal:        Last(macdSignal),
			Histogram:     Last(macdHist),
			PrevHistogram: Prev(macdHist),
		},
		ATR: ATRResult{
			Absolute: atrAbs,
			Relative: SafeDivide(atrAbs, lastClose),
		},
		Volume: VolumeResult{
			Current:   volumeCurrent,
			Average20: volumeAvg20,
			Ratio:     SafeDivide(volumeCurrent, volumeAvg20),
		},
		VWAP:          vwap(series, 20),
		Close:         lastClose,
		PreviousClose: Prev(closePrices),
		RecentHigh20:  maxOf(SliceTail(highs, 20)),
	}
}

// vwap 对末尾 n 根K线按典型价加权计算成交量加权均价。
func vwap(series Series, n int) float64 {
	highs := SliceTail(series.High, n)
	lows := SliceTail(series.Low, n)
	closes := SliceTail(series.Close, n)
	volumes := SliceTail(series.Volume, n)

	var weighted, totalVolume float64
	for i := range closes {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		weighted += typical * volumes[i]
		totalVolume += volumes[i]
	}

	return SafeDivide(weighted, totalVolume)
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
