package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"momentum-ai/internal/config"
)

// Hyperliquid 基于 ccxt 实现 Exchange 能力。
type Hyperliquid struct {
	cfg    config.ExchangeConfig
	logger *zap.Logger
	ex     *ccxt.Hyperliquid
}

var _ Exchange = (*Hyperliquid)(nil)

// NewHyperliquid 在进程边界构造执行端客户端。网络选择非法属于配置错误，
// 在任何交易所调用之前立即失败。
func NewHyperliquid(cfg config.ExchangeConfig, logger *zap.Logger) (*Hyperliquid, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	network := strings.ToLower(strings.TrimSpace(cfg.Network))
	if network != config.NetworkMainnet && network != config.NetworkTestnet {
		return nil, fmt.Errorf("exchange.network 只允许 mainnet 或 testnet，当前为 %q", cfg.Network)
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
	}
	if cfg.Wallet != "" {
		userConfig["walletAddress"] = cfg.Wallet
	}
	if cfg.PrivateKey != "" {
		userConfig["privateKey"] = cfg.PrivateKey
	}

	client := ccxt.NewHyperliquid(userConfig)
	if network == config.NetworkTestnet {
		client.SetSandboxMode(true)
	}

	return &Hyperliquid{
		cfg:    cfg,
		logger: logger,
		ex:     client,
	}, nil
}

// GetMidPrice 以盘口最优买卖价的中点作为参考价。
func (h *Hyperliquid) GetMidPrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	book, err := h.ex.FetchOrderBook(
		h.marketSymbol(symbol),
		ccxt.WithFetchOrderBookLimit(5),
	)
	if err != nil {
		return 0, fmt.Errorf("获取盘口失败 (%s): %w", symbol, err)
	}

	var bid, ask float64
	if len(book.Bids) > 0 && len(book.Bids[0]) >= 1 {
		bid = book.Bids[0][0]
	}
	if len(book.Asks) > 0 && len(book.Asks[0]) >= 1 {
		ask = book.Asks[0][0]
	}

	switch {
	case bid > 0 && ask > 0:
		return (bid + ask) / 2, nil
	case bid > 0:
		return bid, nil
	case ask > 0:
		return ask, nil
	default:
		return 0, nil
	}
}

// GetAccountEquity 读取账户净值，优先取 USDC/USD 余额，
// 兜底解析 Hyperliquid 的 marginSummary.accountValue。
func (h *Hyperliquid) GetAccountEquity(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	balances, err := h.ex.FetchBalance()
	if err != nil {
		return 0, fmt.Errorf("获取账户余额失败: %w", err)
	}

	if balances.Total != nil {
		for _, code := range []string{"USDC", "USD", "USDT"} {
			if total, ok := balances.Total[code]; ok && total != nil && *total > 0 {
				return *total, nil
			}
		}
	}

	if balances.Info != nil {
		if summary, ok := balances.Info["marginSummary"].(map[string]interface{}); ok {
			if v := parseNumeric(summary["accountValue"]); v > 0 {
				return v, nil
			}
		}
	}

	return 0, nil
}

// SetLeverage 设置标的杠杆。同一批次内由引擎保证每个标的只调用一次。
func (h *Hyperliquid) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := h.ex.SetLeverage(
		int64(leverage),
		ccxt.WithSetLeverageSymbol(h.marketSymbol(symbol)),
	)
	if err != nil {
		return fmt.Errorf("设置杠杆失败 (%s %dx): %w", symbol, leverage, err)
	}

	h.logger.Debug("杠杆设置完成",
		zap.String("symbol", symbol),
		zap.Int("leverage", leverage),
	)
	return nil
}

// PlaceMarketOrder 提交市价单，slippage 为最大可接受的价格偏移比例。
// 不做任何自动重试：市价单重试可能造成重复成交。
func (h *Hyperliquid) PlaceMarketOrder(ctx context.Context, symbol string, isBuy bool, size, slippage float64) (OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return OrderResult{}, err
	}

	side := "sell"
	if isBuy {
		side = "buy"
	}

	params := map[string]interface{}{}
	if slippage > 0 {
		params["slippage"] = strconv.FormatFloat(slippage, 'f', 6, 64)
	}

	var opts []ccxt.CreateMarketOrderOptions
	if len(params) > 0 {
		opts = append(opts, ccxt.WithCreateMarketOrderParams(params))
	}

	order, err := h.ex.CreateMarketOrder(h.marketSymbol(symbol), side, size, opts...)
	if err != nil {
		return OrderResult{}, fmt.Errorf("市价单提交失败 (%s %s %.8f): %w", symbol, side, size, err)
	}

	result := OrderResult{Raw: rawOrderInfo(order)}
	if order.Id != nil {
		result.OrderID = *order.Id
	}
	if order.Status != nil {
		result.Status = *order.Status
	}

	return result, nil
}

// Hyperliquid 永续合约在 ccxt 中以 USDC 结算符号表示。
func (h *Hyperliquid) marketSymbol(symbol string) string {
	return fmt.Sprintf("%s/USDC:USDC", strings.ToUpper(strings.TrimSpace(symbol)))
}

func rawOrderInfo(order ccxt.Order) string {
	if order.Info == nil {
		return ""
	}
	payload, err := json.Marshal(order.Info)
	if err != nil {
		return fmt.Sprintf("%v", order.Info)
	}
	return string(payload)
}

func parseNumeric(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
