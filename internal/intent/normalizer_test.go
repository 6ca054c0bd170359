package intent

import (
	"strings"
	"testing"
)

func defaultOptions() Options {
	return Options{
		DefaultSizePct:  0.05,
		DefaultLeverage: 5,
		MaxLeverage:     10,
	}
}

func TestNormalize_DropsHoldSilently(t *testing.T) {
	raw := []RawDecision{
		{Action: "HOLD", Symbol: "BTC"},
		{Action: "hold", Symbol: "ETH"},
	}

	intents, rejections := Normalize(raw, defaultOptions())
	if len(intents) != 0 {
		t.Fatalf("expected no intents, got %d", len(intents))
	}
	if len(rejections) != 0 {
		t.Fatalf("expected HOLD to be dropped without rejection, got %d", len(rejections))
	}
}

func TestNormalize_RejectsInvalidAction(t *testing.T) {
	raw := []RawDecision{
		{Action: "LONG", Symbol: "BTC", Leverage: 5, SizePct: 0.05},
	}

	intents, rejections := Normalize(raw, defaultOptions())
	if len(intents) != 0 {
		t.Fatalf("expected no intents, got %d", len(intents))
	}
	if len(rejections) != 1 {
		t.Fatalf("expected one rejection, got %d", len(rejections))
	}
	if !strings.Contains(rejections[0].Reason, "action") {
		t.Errorf("unexpected rejection reason: %s", rejections[0].Reason)
	}
}

func TestNormalize_AppliesDefaults(t *testing.T) {
	raw := []RawDecision{
		{Action: "BUY", Symbol: "BTC"},
	}

	intents, rejections := Normalize(raw, defaultOptions())
	if len(rejections) != 0 {
		t.Fatalf("unexpected rejections: %+v", rejections)
	}
	if len(intents) != 1 {
		t.Fatalf("expected one intent, got %d", len(intents))
	}

	it := intents[0]
	if it.SizePct != 0.05 {
		t.Errorf("expected default size_pct 0.05, got %f", it.SizePct)
	}
	if it.Leverage != 5 {
		t.Errorf("expected default leverage 5, got %d", it.Leverage)
	}
	if !it.IsBuy() {
		t.Errorf("expected buy intent")
	}
}

func TestNormalize_BoundsChecks(t *testing.T) {
	cases := []struct {
		name   string
		raw    RawDecision
		reason string
	}{
		{"size_pct above one", RawDecision{Action: "BUY", Symbol: "BTC", Leverage: 5, SizePct: 1.5}, "size_pct"},
		{"size_pct negative", RawDecision{Action: "SELL", Symbol: "BTC", Leverage: 5, SizePct: -0.1}, "size_pct"},
		{"leverage negative", RawDecision{Action: "BUY", Symbol: "BTC", Leverage: -2, SizePct: 0.05}, "leverage"},
		{"leverage above max", RawDecision{Action: "BUY", Symbol: "BTC", Leverage: 25, SizePct: 0.05}, "leverage"},
		{"empty symbol", RawDecision{Action: "BUY", Symbol: "  ", Leverage: 5, SizePct: 0.05}, "symbol"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intents, rejections := Normalize([]RawDecision{tc.raw}, defaultOptions())
			if len(intents) != 0 {
				t.Fatalf("expected rejection, got intent %+v", intents[0])
			}
			if len(rejections) != 1 {
				t.Fatalf("expected one rejection, got %d", len(rejections))
			}
			if !strings.Contains(rejections[0].Reason, tc.reason) {
				t.Errorf("expected reason mentioning %q, got %s", tc.reason, rejections[0].Reason)
			}
		})
	}
}

func TestNormalize_ContinuesAfterRejection(t *testing.T) {
	raw := []RawDecision{
		{Action: "BUY", Symbol: "BTC", Leverage: 99, SizePct: 0.05},
		{Action: "SELL", Symbol: "ETH-USD", Leverage: 3, SizePct: 0.1},
	}

	intents, rejections := Normalize(raw, defaultOptions())
	if len(rejections) != 1 {
		t.Fatalf("expected one rejection, got %d", len(rejections))
	}
	if rejections[0].Index != 0 {
		t.Errorf("expected rejection index 0, got %d", rejections[0].Index)
	}
	if len(intents) != 1 {
		t.Fatalf("expected one surviving intent, got %d", len(intents))
	}
	if intents[0].Symbol != "ETH" {
		t.Errorf("expected normalized symbol ETH, got %s", intents[0].Symbol)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"BTC", "BTC"},
		{"btc", "BTC"},
		{" PEPE-USD ", "PEPE"},
		{"ETH-USDC", "ETH"},
		{"SOLUSDT", "SOL"},
		{"BTC/USDC:USDC", "BTC"},
		{"BTC/USDT:USDT", "BTC"},
		{"DOGE/USD", "DOGE"},
		{"USDC", "USDC"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeSymbol(tc.input); got != tc.expected {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
