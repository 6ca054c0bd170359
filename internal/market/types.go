package market

import "time"

const (
	// Timeframe15m 为动量决策主周期。
	Timeframe15m = "15m"
	// Timeframe1h 为趋势确认周期。
	Timeframe1h = "1h"
)

// Candle 代表单根K线。
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// OrderBookLevel 表示盘口档位。
type OrderBookLevel struct {
	Price  float64
	Amount float64
}

// OrderBookSnapshot 为订单簿快照。
type OrderBookSnapshot struct {
	Symbol    string
	Bids      []OrderBookLevel
	Asks      []OrderBookLevel
	Timestamp time.Time
	Nonce     int64
}

// Snapshot 聚合两个时间框架及盘口数据，作为决策源的市场上下文。
type Snapshot struct {
	Symbol      string
	Candles15M  []Candle
	Candles1H   []Candle
	OrderBook   OrderBookSnapshot
	RetrievedAt time.Time
}

// SnapshotRequest 控制一次快照采集的参数。
type SnapshotRequest struct {
	Limit15M       int
	Limit1H        int
	OrderBookDepth int
}

// DefaultSnapshotRequest 返回默认快照参数。
func DefaultSnapshotRequest() SnapshotRequest {
	return SnapshotRequest{
		Limit15M:       200,
		Limit1H:        100,
		OrderBookDepth: 50,
	}
}

// LastClose 返回快照中最新的收盘价，取不到时返回0。
func (s Snapshot) LastClose() float64 {
	if len(s.Candles15M) > 0 {
		return s.Candles15M[len(s.Candles15M)-1].Close
	}
	if len(s.Candles1H) > 0 {
		return s.Candles1H[len(s.Candles1H)-1].Close
	}
	return 0
}
