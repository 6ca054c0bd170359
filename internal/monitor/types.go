package monitor

import (
	"encoding/json"
	"time"

	"momentum-ai/internal/execution"
	"momentum-ai/internal/indicator"
	"momentum-ai/internal/intent"
	"momentum-ai/internal/oracle"
)

// EventType 表示监控事件类型。
type EventType string

const (
	EventMarketSnapshot EventType = "market_snapshot"
	EventOracleBatch    EventType = "oracle_batch"
	EventRejection      EventType = "rejection"
	EventBatchResult    EventType = "batch_result"
	EventError          EventType = "error"
)

// Event 为持久化的监控记录。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MarketSnapshotPayload 记录单个资产的指标快照。
type MarketSnapshotPayload struct {
	Symbol   string             `json:"symbol"`
	Snapshot indicator.Snapshot `json:"snapshot"`
}

// OracleBatchPayload 记录一次决策咨询的完整结果（含诊断）。
type OracleBatchPayload struct {
	Batch oracle.Batch `json:"batch"`
}

// RejectionPayload 记录规范化阶段的拒绝诊断。
type RejectionPayload struct {
	Rejections []intent.Rejection `json:"rejections"`
}

// BatchResultPayload 记录一个批次的逐条执行结果。
type BatchResultPayload struct {
	Result execution.BatchResult `json:"result"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// RawEvent 为查询时返回的事件，Payload 保持原始JSON。
type RawEvent struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
