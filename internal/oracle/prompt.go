package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"momentum-ai/internal/indicator"
)

const decisionTemplate = `
你是一个专业的加密货币动量交易员，目标是在严格风控下捕捉15分钟周期的高胜率动量行情。

交易纪律：
1. 只做15分钟周期的动量交易：EMA9/EMA21 金叉、RSI14 > 55（最好 > 60）、MACD 柱状图上升且在零轴上方、成交量显著放大、价格突破近期高点或 VWAP；
2. 至少 2-3 个信号共振才算有效设置，否则一律 HOLD；
3. 杠杆最大 10 倍，单笔仓位不超过净值的 20%；
4. 优先做多，只有极端清晰的下行设置才考虑 SELL；
5. 没有优势时耐心等待，宁可空仓也不做低质量交易。

账户状态：
- 当前净值: {{ printf "%.2f" .Account.Equity }} USDC

各资产最新指标：
{{ .FeaturesJSON }}

请严格输出唯一的 JSON 对象，不要输出任何其他内容：
{
  "reasoning": "逐步分析各资产的动量信号与结论",
  "trade_decisions": [
    {
      "action": "BUY" | "SELL" | "HOLD",
      "symbol": "BTC",
      "leverage": 5,
      "size_pct": 0.05,
      "reason": "简短清晰的依据"
    }
  ]
}

注意事项：
- 每个资产一条决策；全部观望时 trade_decisions 可为空数组。
- size_pct 为净值占比，取值范围 (0, 1]，请勿超过 0.2。
- leverage 为整数且不超过 10。
`

var tmpl = template.Must(template.New("decision").Parse(decisionTemplate))

// AssetInput 为单个资产进入提示词的市场上下文。
type AssetInput struct {
	Symbol      string              `json:"symbol"`
	Snapshot15M indicator.Snapshot  `json:"snapshot_15m"`
	Snapshot1H  *indicator.Snapshot `json:"snapshot_1h,omitempty"`
}

// AccountSnapshot 为提示词中的账户状态。
type AccountSnapshot struct {
	Equity float64 `json:"equity"`
}

type promptContext struct {
	Account      AccountSnapshot
	FeaturesJSON string
}

// BuildPrompt 将市场特征与账户信息渲染成提示词字符串。
func BuildPrompt(inputs []AssetInput, account AccountSnapshot) (string, error) {
	featuresJSON, err := json.MarshalIndent(inputs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化市场特征失败: %w", err)
	}

	ctx := promptContext{
		Account:      account,
		FeaturesJSON: string(featuresJSON),
	}

	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("渲染提示词失败: %w", err)
	}

	return buf.String(), nil
}
