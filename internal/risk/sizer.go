package risk

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Instrument 描述单个标的的下单约束。
type Instrument struct {
	Symbol       string
	MinSize      float64
	SizeDecimals int32
}

// DefaultInstrument 为未在配置表中的标的提供保守缺省约束。
func DefaultInstrument(symbol string) Instrument {
	return Instrument{
		Symbol:       symbol,
		MinSize:      0.001,
		SizeDecimals: 6,
	}
}

// OrderPlan 为一次意图的具体下单尺寸推导结果，仅在单次批次内存活。
type OrderPlan struct {
	Symbol            string
	NotionalRequested float64
	NotionalCapped    float64
	SizeInUnits       float64
}

// Sizer 将占净值比例的意图转换为风险封顶后的下单数量。
// 三层独立约束：比例上限在规范化阶段保证，绝对名义上限与最小交易单位在此应用。
type Sizer struct {
	maxNotional float64
	instruments map[string]Instrument
}

// NewSizer 创建 Sizer。maxNotional 为单笔绝对名义上限（USDC），
// 与账户规模无关，用于兜底拦截尺寸计算错误。
func NewSizer(maxNotional float64, instruments []Instrument) *Sizer {
	table := make(map[string]Instrument, len(instruments))
	for _, inst := range instruments {
		table[strings.ToUpper(strings.TrimSpace(inst.Symbol))] = inst
	}
	return &Sizer{
		maxNotional: maxNotional,
		instruments: table,
	}
}

// Instrument 返回标的的下单约束，未配置时使用缺省值。
func (s *Sizer) Instrument(symbol string) Instrument {
	if inst, ok := s.instruments[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return inst
	}
	return DefaultInstrument(symbol)
}

// Plan 依据当前净值与参考价推导下单数量。
// 返回非空 skip 原因表示计划被丢弃（例如低于最小交易单位），这不是失败。
func (s *Sizer) Plan(symbol string, sizePct, equity, price float64) (OrderPlan, string) {
	plan := OrderPlan{Symbol: symbol}

	if equity <= 0 {
		return plan, "账户净值不可用"
	}
	if price <= 0 {
		return plan, "参考价不可用"
	}

	plan.NotionalRequested = equity * sizePct
	plan.NotionalCapped = plan.NotionalRequested
	if s.maxNotional > 0 && plan.NotionalCapped > s.maxNotional {
		plan.NotionalCapped = s.maxNotional
	}

	inst := s.Instrument(symbol)
	size := decimal.NewFromFloat(plan.NotionalCapped).
		Div(decimal.NewFromFloat(price)).
		RoundDown(inst.SizeDecimals)
	plan.SizeInUnits = size.InexactFloat64()

	if plan.SizeInUnits < inst.MinSize {
		return plan, fmt.Sprintf("下单数量 %v 低于最小交易单位 %v", plan.SizeInUnits, inst.MinSize)
	}

	return plan, ""
}
