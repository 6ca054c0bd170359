package intent

import (
	"fmt"
	"strings"
)

// Options 控制规范化时的缺省值与上限。
type Options struct {
	DefaultSizePct  float64
	DefaultLeverage int
	MaxLeverage     int
}

// 已知的计价货币后缀，规范化时剥离。顺序从长到短，避免 -USD 抢先截断 -USDT。
var quoteSuffixes = []string{"-USDC", "-USDT", "-USD", "/USDC", "/USDT", "/USD", "USDC", "USDT"}

// Normalize 将原始建议列表转换为规范化意图，并返回逐条拒绝诊断。
// 每条建议独立校验：单条畸形数据不会中止整个批次；HOLD 被静默过滤。
func Normalize(raw []RawDecision, opts Options) ([]Intent, []Rejection) {
	intents := make([]Intent, 0, len(raw))
	rejections := make([]Rejection, 0)

	for i, entry := range raw {
		action := Action(strings.ToUpper(strings.TrimSpace(entry.Action)))

		switch action {
		case ActionHold:
			continue
		case ActionBuy, ActionSell:
		default:
			rejections = append(rejections, Rejection{
				Index:  i,
				Symbol: entry.Symbol,
				Reason: fmt.Sprintf("action 取值非法: %q", entry.Action),
			})
			continue
		}

		symbol := NormalizeSymbol(entry.Symbol)
		if symbol == "" {
			rejections = append(rejections, Rejection{
				Index:  i,
				Symbol: entry.Symbol,
				Reason: fmt.Sprintf("symbol 规范化后为空: %q", entry.Symbol),
			})
			continue
		}

		sizePct := entry.SizePct
		if sizePct == 0 {
			sizePct = opts.DefaultSizePct
		}
		if sizePct <= 0 || sizePct > 1 {
			rejections = append(rejections, Rejection{
				Index:  i,
				Symbol: symbol,
				Reason: fmt.Sprintf("size_pct 必须位于(0,1]，当前为 %f", entry.SizePct),
			})
			continue
		}

		leverage := entry.Leverage
		if leverage == 0 {
			leverage = opts.DefaultLeverage
		}
		if leverage < 1 {
			rejections = append(rejections, Rejection{
				Index:  i,
				Symbol: symbol,
				Reason: fmt.Sprintf("leverage 必须不小于1，当前为 %d", entry.Leverage),
			})
			continue
		}
		if opts.MaxLeverage > 0 && leverage > opts.MaxLeverage {
			rejections = append(rejections, Rejection{
				Index:  i,
				Symbol: symbol,
				Reason: fmt.Sprintf("leverage %d 超过上限 %d", entry.Leverage, opts.MaxLeverage),
			})
			continue
		}

		intents = append(intents, Intent{
			Action:   action,
			Symbol:   symbol,
			Leverage: leverage,
			SizePct:  sizePct,
			Reason:   strings.TrimSpace(entry.Reason),
		})
	}

	return intents, rejections
}

// NormalizeSymbol 去除计价货币后缀并统一为大写币种代码，如 "PEPE-USD" -> "PEPE"。
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}

	// ccxt 合约符号可能带结算后缀，如 BTC/USDC:USDC，先截掉冒号之后的部分。
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	for _, suffix := range quoteSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}

	return strings.Trim(s, "-/ ")
}
