package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"momentum-ai/internal/config"
	"momentum-ai/internal/exchange"
	"momentum-ai/internal/execution"
	"momentum-ai/internal/indicator"
	"momentum-ai/internal/intent"
	"momentum-ai/internal/market"
	"momentum-ai/internal/monitor"
	"momentum-ai/internal/oracle"
	"momentum-ai/internal/risk"
	"momentum-ai/internal/store"
)

type assetPipeline struct {
	assetKey     string
	marketSymbol string
	market       *market.Service
	calculator   *indicator.Calculator
}

// orchestrator 串联行情、指标、决策源、规范化与执行引擎。
// 配置错误（无效网络、缺失密钥）在此一次性失败，任何交易所变更调用之前。
type orchestrator struct {
	assets   []assetPipeline
	oracle   *oracle.Client
	ex       exchange.Exchange
	engine   *execution.Engine
	monitor  *monitor.Service
	normOpts intent.Options
	logger   *zap.Logger
}

func newOrchestrator(cfg *config.Config, logger *zap.Logger, store *store.Store) (*orchestrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	oracleClient, err := oracle.NewClient(cfg.Oracle, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化决策源客户端失败: %w", err)
	}

	ex, err := exchange.NewHyperliquid(cfg.Exchange, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化执行端客户端失败: %w", err)
	}

	monitorSvc, err := monitor.NewService(store, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化监控服务失败: %w", err)
	}

	instruments := make([]risk.Instrument, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		instruments = append(instruments, risk.Instrument{
			Symbol:       inst.Symbol,
			MinSize:      inst.MinSize,
			SizeDecimals: int32(inst.SizeDecimals),
		})
	}
	sizer := risk.NewSizer(cfg.Execution.MaxNotional, instruments)

	engine := execution.NewEngine(ex, sizer, execution.Options{
		Simulation: cfg.Execution.Simulation,
		Slippage:   cfg.Execution.Slippage,
	}, logger)

	if cfg.Execution.Simulation {
		logger.Info("执行引擎处于模拟模式，不会产生任何交易所变更调用")
	}

	assets := make([]assetPipeline, 0, len(cfg.Market.Markets))
	for _, marketSymbol := range cfg.Market.Markets {
		client, err := market.NewClient(cfg.Market, marketSymbol, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化行情客户端失败 (%s): %w", marketSymbol, err)
		}

		assets = append(assets, assetPipeline{
			assetKey:     intent.NormalizeSymbol(marketSymbol),
			marketSymbol: marketSymbol,
			market:       market.NewService(client, logger),
			calculator:   indicator.NewCalculator(),
		})
	}

	return &orchestrator{
		assets:  assets,
		oracle:  oracleClient,
		ex:      ex,
		engine:  engine,
		monitor: monitorSvc,
		normOpts: intent.Options{
			DefaultSizePct:  cfg.Execution.DefaultSizePct,
			DefaultLeverage: cfg.Execution.DefaultLeverage,
			MaxLeverage:     cfg.Execution.MaxLeverage,
		},
		logger: logger,
	}, nil
}

func (o *orchestrator) Monitor() *monitor.Service {
	return o.monitor
}

// Tick 执行一轮完整的决策与执行流程。
func (o *orchestrator) Tick(ctx context.Context) error {
	inputs := make([]oracle.AssetInput, 0, len(o.assets))

	for i := range o.assets {
		asset := &o.assets[i]

		snapshot, err := asset.market.GetSnapshot(ctx, market.DefaultSnapshotRequest())
		if err != nil {
			o.monitor.RecordError(ctx, "拉取市场数据失败", err, map[string]interface{}{"symbol": asset.marketSymbol})
			o.logger.Warn("拉取市场数据失败，跳过该资产",
				zap.String("symbol", asset.marketSymbol),
				zap.Error(err),
			)
			continue
		}

		snap15m, err := asset.calculator.Compute(market.Timeframe15m, snapshot.Candles15M)
		if err != nil {
			o.monitor.RecordError(ctx, "指标计算失败", err, map[string]interface{}{"symbol": asset.marketSymbol})
			continue
		}
		o.monitor.RecordMarketSnapshot(ctx, asset.assetKey, snap15m)

		input := oracle.AssetInput{
			Symbol:      asset.assetKey,
			Snapshot15M: snap15m,
		}
		if snap1h, err := asset.calculator.Compute(market.Timeframe1h, snapshot.Candles1H); err == nil {
			input.Snapshot1H = &snap1h
		}

		inputs = append(inputs, input)
	}

	if len(inputs) == 0 {
		return fmt.Errorf("本轮没有任何资产获得有效市场数据")
	}

	// 净值读取仅用于提示词上下文，失败不阻断决策。
	account := oracle.AccountSnapshot{}
	if equity, err := o.ex.GetAccountEquity(ctx); err == nil {
		account.Equity = equity
	} else {
		o.logger.Warn("读取账户净值失败，提示词中按0处理", zap.Error(err))
	}

	batch, err := o.oracle.Consult(ctx, inputs, account)
	if err != nil {
		o.monitor.RecordError(ctx, "决策咨询失败", err, nil)
		return err
	}
	o.monitor.RecordOracleBatch(ctx, batch)

	if batch.Diagnostic != "" {
		o.logger.Warn("决策批次携带诊断信息", zap.String("diagnostic", batch.Diagnostic))
	}

	intents, rejections := intent.Normalize(batch.Decisions, o.normOpts)
	o.monitor.RecordRejections(ctx, rejections)
	for _, r := range rejections {
		o.logger.Warn("交易建议被拒绝",
			zap.Int("index", r.Index),
			zap.String("symbol", r.Symbol),
			zap.String("reason", r.Reason),
		)
	}

	if len(intents) == 0 {
		o.logger.Info("本轮无可执行意图",
			zap.Int("raw_count", len(batch.Decisions)),
			zap.Int("rejected", len(rejections)),
		)
		return nil
	}

	result := o.engine.ExecuteBatch(ctx, intents)
	o.monitor.RecordBatchResult(ctx, result)

	counts := result.Counts()
	o.logger.Info("批次执行完成",
		zap.Int("intents", len(intents)),
		zap.Int("filled", counts[execution.StatusFilled]),
		zap.Int("skipped", counts[execution.StatusSkipped]),
		zap.Int("failed", counts[execution.StatusFailed]),
		zap.Int("simulated", counts[execution.StatusSimulated]),
	)

	return nil
}
