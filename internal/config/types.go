package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	// NetworkMainnet 表示 Hyperliquid 主网。
	NetworkMainnet = "mainnet"
	// NetworkTestnet 表示 Hyperliquid 测试网。
	NetworkTestnet = "testnet"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App         AppConfig          `mapstructure:"app"`
	Market      MarketConfig       `mapstructure:"market"`
	Exchange    ExchangeConfig     `mapstructure:"exchange"`
	Oracle      OracleConfig       `mapstructure:"oracle"`
	Execution   ExecutionConfig    `mapstructure:"execution"`
	Instruments []InstrumentConfig `mapstructure:"instruments"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Logging     LoggingConfig      `mapstructure:"logging"`
	Scheduler   SchedulerConfig    `mapstructure:"scheduler"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	MonitorPort int    `mapstructure:"monitor_port"`
}

// MarketConfig 描述行情数据源（ccxt）连接信息。
type MarketConfig struct {
	Name    string      `mapstructure:"name"`
	Markets []string    `mapstructure:"markets"`
	Retry   RetryConfig `mapstructure:"retry"`
}

// RetryConfig 统一控制行情拉取的重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// ExchangeConfig 描述执行端（Hyperliquid）配置。
// Network 只允许 mainnet / testnet，其余取值视为配置错误而非静默回退。
type ExchangeConfig struct {
	Network    string `mapstructure:"network"`
	Wallet     string `mapstructure:"wallet_address"`
	PrivateKey string `mapstructure:"private_key"`
}

// OracleConfig 描述决策源（OpenAI 兼容接口）调用参数。
type OracleConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExecutionConfig 控制下单行为。Simulation 默认开启，必须显式关闭才会真实下单。
type ExecutionConfig struct {
	Simulation      bool    `mapstructure:"simulation"`
	Slippage        float64 `mapstructure:"slippage"`
	MaxNotional     float64 `mapstructure:"max_notional"`
	DefaultSizePct  float64 `mapstructure:"default_size_pct"`
	DefaultLeverage int     `mapstructure:"default_leverage"`
	MaxLeverage     int     `mapstructure:"max_leverage"`
}

// InstrumentConfig 描述单个交易标的的下单约束。
type InstrumentConfig struct {
	Symbol       string  `mapstructure:"symbol"`
	MinSize      float64 `mapstructure:"min_size"`
	SizeDecimals int     `mapstructure:"size_decimals"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// SchedulerConfig 控制主循环节奏。
type SchedulerConfig struct {
	LoopInterval time.Duration `mapstructure:"loop_interval"`
}

// Validate 对配置进行基本校验。配置错误属于批次级失败，在任何交易所调用之前一次性报告。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Market.Name == "" {
		err = multierr.Append(err, errors.New("market.name 不能为空"))
	}
	if len(c.Market.Markets) == 0 {
		err = multierr.Append(err, errors.New("market.markets 至少包含一个标的"))
	}
	if c.Market.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("market.retry.max_attempts 必须大于0"))
	}
	if c.Market.Retry.MinDelay <= 0 || c.Market.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("market.retry.delay 必须为正"))
	}
	if c.Market.Retry.MinDelay > c.Market.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("market.retry.min_delay 不能大于 max_delay"))
	}

	network := strings.ToLower(strings.TrimSpace(c.Exchange.Network))
	if network != NetworkMainnet && network != NetworkTestnet {
		err = multierr.Append(err, fmt.Errorf("exchange.network 只允许 mainnet 或 testnet，当前为 %q", c.Exchange.Network))
	}
	if !c.Execution.Simulation {
		if c.Exchange.Wallet == "" || c.Exchange.PrivateKey == "" {
			err = multierr.Append(err, errors.New("真实下单模式需要配置 exchange.wallet_address 与 exchange.private_key"))
		}
	}

	if c.Oracle.APIKey == "" {
		err = multierr.Append(err, errors.New("oracle.api_key 不能为空"))
	}
	if c.Oracle.Model == "" {
		err = multierr.Append(err, errors.New("oracle.model 不能为空"))
	}
	if c.Oracle.Timeout <= 0 {
		err = multierr.Append(err, errors.New("oracle.timeout 必须大于0"))
	}

	if c.Execution.Slippage < 0 || c.Execution.Slippage > 0.2 {
		err = multierr.Append(err, errors.New("execution.slippage 应位于[0,0.2]"))
	}
	if c.Execution.MaxNotional <= 0 {
		err = multierr.Append(err, errors.New("execution.max_notional 必须大于0"))
	}
	if c.Execution.DefaultSizePct <= 0 || c.Execution.DefaultSizePct > 1 {
		err = multierr.Append(err, errors.New("execution.default_size_pct 必须位于(0,1]"))
	}
	if c.Execution.DefaultLeverage < 1 {
		err = multierr.Append(err, errors.New("execution.default_leverage 必须不小于1"))
	}
	if c.Execution.MaxLeverage < c.Execution.DefaultLeverage {
		err = multierr.Append(err, errors.New("execution.max_leverage 不能小于 default_leverage"))
	}

	for i, inst := range c.Instruments {
		if strings.TrimSpace(inst.Symbol) == "" {
			err = multierr.Append(err, fmt.Errorf("instruments[%d].symbol 不能为空", i))
		}
		if inst.MinSize <= 0 {
			err = multierr.Append(err, fmt.Errorf("instruments[%d].min_size 必须大于0", i))
		}
		if inst.SizeDecimals < 0 || inst.SizeDecimals > 10 {
			err = multierr.Append(err, fmt.Errorf("instruments[%d].size_decimals 必须位于[0,10]", i))
		}
	}

	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}

	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if c.Scheduler.LoopInterval <= 0 {
		err = multierr.Append(err, errors.New("scheduler.loop_interval 必须大于0"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}

// IsTestnet 返回执行端是否运行在测试网。
func (c ExchangeConfig) IsTestnet() bool {
	return strings.ToLower(strings.TrimSpace(c.Network)) == NetworkTestnet
}
