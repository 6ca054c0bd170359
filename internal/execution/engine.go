package execution

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"momentum-ai/internal/exchange"
	"momentum-ai/internal/intent"
	"momentum-ai/internal/risk"
)

// Options 控制执行行为。Simulation 为默认安全模式：计算并回显将要发生的
// 操作，但不触碰任何交易所调用。
type Options struct {
	Simulation bool
	Slippage   float64
}

// Engine 逐条消费规范化意图，查询实时账户与行情状态，推导风险封顶的
// 下单数量并提交市价单。意图按输入顺序串行处理：每条意图的提交（无论
// 成败）完成后才进入下一条的尺寸计算，净值在每条意图前重新读取，避免
// 同批多标的重复占用资金。
type Engine struct {
	ex     exchange.Exchange
	sizer  *risk.Sizer
	opts   Options
	logger *zap.Logger
}

// NewEngine 创建执行引擎。交易所能力由外部注入，引擎不拥有连接。
func NewEngine(ex exchange.Exchange, sizer *risk.Sizer, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ex:     ex,
		sizer:  sizer,
		opts:   opts,
		logger: logger,
	}
}

// ExecuteBatch 为每条意图产出一个结果，顺序与输入一致。
// 单条意图的任何失败都被限制在该条边界内，绝不中止批次。
func (e *Engine) ExecuteBatch(ctx context.Context, intents []intent.Intent) BatchResult {
	result := BatchResult{
		Outcomes:  make([]Outcome, 0, len(intents)),
		StartedAt: time.Now().UTC(),
	}

	// 同一批次内杠杆设置幂等：每个标的只调用一次。
	leverageSet := make(map[string]bool, len(intents))

	for _, it := range intents {
		outcome := e.executeOne(ctx, it, leverageSet)
		result.Outcomes = append(result.Outcomes, outcome)

		e.logger.Info("意图处理完成",
			zap.String("symbol", outcome.Symbol),
			zap.String("action", string(outcome.Action)),
			zap.String("status", string(outcome.Status)),
			zap.String("detail", outcome.Detail),
		)
	}

	result.CompletedAt = time.Now().UTC()
	return result
}

// executeOne 处理单条意图。意图边界即故障边界：所有错误与 panic 都在
// 此转换为 FAILED 结果。
func (e *Engine) executeOne(ctx context.Context, it intent.Intent, leverageSet map[string]bool) (outcome Outcome) {
	outcome = Outcome{
		Symbol: it.Symbol,
		Action: it.Action,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = StatusFailed
			outcome.Detail = fmt.Sprintf("执行过程发生panic: %v", r)
		}
	}()

	if e.opts.Simulation {
		outcome.Status = StatusSimulated
		outcome.Detail = fmt.Sprintf("模拟订单: %s %s 杠杆%dx 仓位%.2f%% 滑点%.2f%%",
			it.Action, it.Symbol, it.Leverage, it.SizePct*100, e.opts.Slippage*100)
		return outcome
	}

	if !leverageSet[it.Symbol] {
		if err := e.ex.SetLeverage(ctx, it.Symbol, it.Leverage); err != nil {
			outcome.Status = StatusFailed
			outcome.Detail = fmt.Sprintf("设置杠杆失败: %v", err)
			return outcome
		}
		leverageSet[it.Symbol] = true
	}

	price, err := e.ex.GetMidPrice(ctx, it.Symbol)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Detail = fmt.Sprintf("获取参考价失败: %v", err)
		return outcome
	}
	if price <= 0 {
		outcome.Status = StatusSkipped
		outcome.Detail = "无可用参考价"
		return outcome
	}

	// 净值按条重读：前一条意图的成交会改变可用资金。
	equity, err := e.ex.GetAccountEquity(ctx)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Detail = fmt.Sprintf("获取账户净值失败: %v", err)
		return outcome
	}
	if equity <= 0 {
		outcome.Status = StatusSkipped
		outcome.Detail = "无可用余额"
		return outcome
	}

	plan, skip := e.sizer.Plan(it.Symbol, it.SizePct, equity, price)
	if skip != "" {
		outcome.Status = StatusSkipped
		outcome.Detail = skip
		return outcome
	}

	e.logger.Debug("下单计划",
		zap.String("symbol", it.Symbol),
		zap.Float64("notional_requested", plan.NotionalRequested),
		zap.Float64("notional_capped", plan.NotionalCapped),
		zap.Float64("size", plan.SizeInUnits),
		zap.Float64("price", price),
	)

	// 单次提交，不重试：市价单重试可能造成重复成交，坏于一次明确的失败。
	res, err := e.ex.PlaceMarketOrder(ctx, it.Symbol, it.IsBuy(), plan.SizeInUnits, e.opts.Slippage)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Detail = fmt.Sprintf("市价单提交失败: %v", err)
		return outcome
	}

	if !res.Filled() {
		outcome.Status = StatusFailed
		outcome.Detail = fmt.Sprintf("下单响应缺少成交标识: %s", res.Raw)
		return outcome
	}

	outcome.Status = StatusFilled
	outcome.Detail = fmt.Sprintf("已提交 %s %s 数量%v 名义%.2f 订单号%s",
		it.Action, it.Symbol, plan.SizeInUnits, plan.NotionalCapped, res.OrderID)
	return outcome
}
