package exchange

import "context"

// OrderResult 为一次市价单提交的结果回显。
type OrderResult struct {
	OrderID string
	Status  string
	Raw     string
}

// Filled 返回交易所是否给出了成交确认标识。
func (r OrderResult) Filled() bool {
	return r.OrderID != ""
}

// Exchange 抽象执行引擎依赖的交易所能力。具体接线（密钥、网络选择）
// 在进程边界完成一次，核心逻辑只面向该接口。
// 数据暂不可得（无价格/无余额）以零值加 nil error 表达，错误保留给真正的调用失败。
type Exchange interface {
	// GetMidPrice 返回标的的中间价，取不到时返回0。
	GetMidPrice(ctx context.Context, symbol string) (float64, error)

	// GetAccountEquity 返回账户净值（USDC），取不到时返回0。
	GetAccountEquity(ctx context.Context) (float64, error)

	// SetLeverage 设置标的杠杆，幂等。
	SetLeverage(ctx context.Context, symbol string, leverage int) error

	// PlaceMarketOrder 以给定滑点容忍度提交市价单。调用方保证不重试。
	PlaceMarketOrder(ctx context.Context, symbol string, isBuy bool, size, slippage float64) (OrderResult, error)
}
