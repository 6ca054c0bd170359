package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"momentum-ai/internal/intent"
)

// Batch 表示一次决策咨询的结果。要么是合法的建议列表，要么是空列表
// 加上保留原始内容的 Diagnostic，绝不会出现字段残缺的中间态。
type Batch struct {
	Reasoning  string               `json:"reasoning"`
	Decisions  []intent.RawDecision `json:"trade_decisions"`
	Diagnostic string               `json:"diagnostic,omitempty"`
}

// Empty 返回批次是否不包含任何建议。
func (b Batch) Empty() bool {
	return len(b.Decisions) == 0
}

// ParseBatch 从模型输出中提取并解析决策JSON。
// 任何畸形输出都被降级为空批次并在 Diagnostic 中保留原文，不会向调用方抛出致命错误。
func ParseBatch(content string) Batch {
	payload, err := extractJSON(content)
	if err != nil {
		return Batch{
			Decisions:  []intent.RawDecision{},
			Diagnostic: fmt.Sprintf("模型输出未找到有效JSON: %s", truncate(content, 200)),
		}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return Batch{
			Decisions:  []intent.RawDecision{},
			Diagnostic: fmt.Sprintf("解析决策JSON失败: %v; 原文: %s", err, truncate(content, 200)),
		}
	}

	if _, ok := probe["trade_decisions"]; !ok {
		return Batch{
			Decisions:  []intent.RawDecision{},
			Diagnostic: fmt.Sprintf("模型输出缺少 trade_decisions 字段: %s", truncate(content, 200)),
		}
	}

	var batch Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return Batch{
			Decisions:  []intent.RawDecision{},
			Diagnostic: fmt.Sprintf("解析决策列表失败: %v; 原文: %s", err, truncate(content, 200)),
		}
	}

	if batch.Decisions == nil {
		batch.Decisions = []intent.RawDecision{}
	}

	return batch
}

func extractJSON(content string) ([]byte, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found")
	}

	return []byte(content[start : end+1]), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
