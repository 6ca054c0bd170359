package intent

// Action 表示决策源给出的操作方向。
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// RawDecision 为决策源返回的原始交易建议，字段可能缺失或非法。
type RawDecision struct {
	Action   string  `json:"action"`
	Symbol   string  `json:"symbol"`
	Leverage int     `json:"leverage"`
	SizePct  float64 `json:"size_pct"`
	Reason   string  `json:"reason"`
}

// Intent 为规范化后的交易意图，只有 BUY/SELL 会进入执行引擎。
type Intent struct {
	Action   Action
	Symbol   string
	Leverage int
	SizePct  float64
	Reason   string
}

// IsBuy 返回意图方向是否为做多。
func (i Intent) IsBuy() bool {
	return i.Action == ActionBuy
}

// Rejection 记录单条被拒绝建议的诊断信息。
type Rejection struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}
