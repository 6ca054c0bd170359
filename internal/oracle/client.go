package oracle

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"momentum-ai/internal/config"
)

// Client 封装对决策源（OpenAI 兼容接口）的调用。
type Client struct {
	cfg    config.OracleConfig
	logger *zap.Logger
	sdk    *openai.Client
}

// NewClient 使用给定配置创建决策源客户端。
func NewClient(cfg config.OracleConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("oracle api_key 不能为空")
	}
	if cfg.Model == "" {
		return nil, errors.New("oracle model 不能为空")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sdkCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkCfg.BaseURL = cfg.BaseURL
	}
	sdkCfg.HTTPClient = &http.Client{
		Timeout: cfg.Timeout + 5*time.Second,
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		sdk:    openai.NewClientWithConfig(sdkCfg),
	}, nil
}

// Consult 根据市场上下文获取一批交易建议。
// 传输层错误向调用方返回；模型输出畸形则降级为空批次并携带诊断，不视为错误。
func (c *Client) Consult(ctx context.Context, inputs []AssetInput, account AccountSnapshot) (Batch, error) {
	prompt, err := BuildPrompt(inputs, account)
	if err != nil {
		return Batch{}, err
	}

	response, err := c.sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.4,
	})
	if err != nil {
		c.logger.Error("调用决策源失败", zap.Error(err))
		return Batch{}, err
	}

	if len(response.Choices) == 0 {
		return Batch{
			Decisions:  nil,
			Diagnostic: "决策源返回结果为空",
		}, nil
	}

	rawContent := strings.TrimSpace(response.Choices[0].Message.Content)
	batch := ParseBatch(rawContent)

	if batch.Diagnostic != "" {
		c.logger.Warn("决策源输出畸形，按空批次处理",
			zap.String("diagnostic", batch.Diagnostic),
		)
		return batch, nil
	}

	c.logger.Info("决策批次生成成功",
		zap.Int("decision_count", len(batch.Decisions)),
	)

	return batch, nil
}
