package execution

import (
	"time"

	"momentum-ai/internal/intent"
)

// Status 表示单条意图的执行结局。
type Status string

const (
	StatusFilled    Status = "FILLED"
	StatusSkipped   Status = "SKIPPED"
	StatusFailed    Status = "FAILED"
	StatusSimulated Status = "SIMULATED"
)

// Outcome 为单条意图的结构化执行结果。
type Outcome struct {
	Symbol string        `json:"symbol"`
	Action intent.Action `json:"action"`
	Status Status        `json:"status"`
	Detail string        `json:"detail"`
}

// BatchResult 汇总一个批次的全部结果，顺序与输入意图一致。
type BatchResult struct {
	Outcomes    []Outcome `json:"outcomes"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Counts 按状态统计结果数量。
func (r BatchResult) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}
