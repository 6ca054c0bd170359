package oracle

import (
	"strings"
	"testing"
)

func TestParseBatch_ValidWithSurroundingProse(t *testing.T) {
	content := "好的，以下是我的分析结果：\n" +
		`{"reasoning":"BTC动量强劲","trade_decisions":[{"action":"BUY","symbol":"BTC","leverage":5,"size_pct":0.1,"reason":"金叉放量"}]}` +
		"\n请注意风险。"

	batch := ParseBatch(content)
	if batch.Diagnostic != "" {
		t.Fatalf("unexpected diagnostic: %s", batch.Diagnostic)
	}
	if len(batch.Decisions) != 1 {
		t.Fatalf("expected one decision, got %d", len(batch.Decisions))
	}

	d := batch.Decisions[0]
	if d.Action != "BUY" || d.Symbol != "BTC" || d.Leverage != 5 || d.SizePct != 0.1 {
		t.Errorf("unexpected decision: %+v", d)
	}
	if batch.Reasoning != "BTC动量强劲" {
		t.Errorf("unexpected reasoning: %s", batch.Reasoning)
	}
}

func TestParseBatch_EmptyDecisionListIsValid(t *testing.T) {
	batch := ParseBatch(`{"reasoning":"全部观望","trade_decisions":[]}`)
	if batch.Diagnostic != "" {
		t.Fatalf("unexpected diagnostic: %s", batch.Diagnostic)
	}
	if !batch.Empty() {
		t.Errorf("expected empty batch")
	}
}

func TestParseBatch_NoJSONObject(t *testing.T) {
	batch := ParseBatch("市场数据不足，我无法给出决策。")
	if !batch.Empty() {
		t.Fatalf("expected empty batch, got %d decisions", len(batch.Decisions))
	}
	if batch.Diagnostic == "" {
		t.Fatalf("expected diagnostic for missing JSON")
	}
	if batch.Decisions == nil {
		t.Errorf("expected non-nil empty decision list")
	}
}

func TestParseBatch_MalformedJSON(t *testing.T) {
	batch := ParseBatch(`{"reasoning": "未闭合`)
	if !batch.Empty() || batch.Diagnostic == "" {
		t.Fatalf("expected degraded empty batch with diagnostic, got %+v", batch)
	}
}

func TestParseBatch_MissingTradeDecisionsKey(t *testing.T) {
	batch := ParseBatch(`{"reasoning":"看多BTC","decisions":[]}`)
	if !batch.Empty() {
		t.Fatalf("expected empty batch, got %d decisions", len(batch.Decisions))
	}
	if !strings.Contains(batch.Diagnostic, "trade_decisions") {
		t.Errorf("expected diagnostic naming the missing field, got %s", batch.Diagnostic)
	}
}

func TestParseBatch_TruncatesLongDiagnostic(t *testing.T) {
	content := strings.Repeat("无效输出", 200)
	batch := ParseBatch(content)
	if batch.Diagnostic == "" {
		t.Fatalf("expected diagnostic")
	}
	if len(batch.Diagnostic) > 300 {
		t.Errorf("expected truncated diagnostic, got %d bytes", len(batch.Diagnostic))
	}
}

func TestBuildPrompt_ContainsFeaturesAndEquity(t *testing.T) {
	inputs := []AssetInput{
		{Symbol: "BTC"},
	}

	prompt, err := BuildPrompt(inputs, AccountSnapshot{Equity: 1234.5})
	if err != nil {
		t.Fatalf("BuildPrompt returned error: %v", err)
	}
	if !strings.Contains(prompt, `"symbol": "BTC"`) {
		t.Errorf("expected prompt to embed asset features")
	}
	if !strings.Contains(prompt, "1234.50") {
		t.Errorf("expected prompt to embed account equity")
	}
	if !strings.Contains(prompt, "trade_decisions") {
		t.Errorf("expected prompt to describe output schema")
	}
}
