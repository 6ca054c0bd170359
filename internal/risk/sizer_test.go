package risk

import (
	"math"
	"strings"
	"testing"
)

func TestPlan_AppliesNotionalCap(t *testing.T) {
	sizer := NewSizer(10, nil)

	// 1000 * 0.05 = 50，封顶到 10；10 / 2000 = 0.005，高于缺省最小单位。
	plan, skip := sizer.Plan("ETH", 0.05, 1000, 2000)
	if skip != "" {
		t.Fatalf("unexpected skip: %s", skip)
	}

	if diff := math.Abs(plan.NotionalRequested - 50); diff > 1e-9 {
		t.Errorf("expected requested notional 50, got %f", plan.NotionalRequested)
	}
	if diff := math.Abs(plan.NotionalCapped - 10); diff > 1e-9 {
		t.Errorf("expected capped notional 10, got %f", plan.NotionalCapped)
	}
	if diff := math.Abs(plan.SizeInUnits - 0.005); diff > 1e-9 {
		t.Errorf("expected size 0.005, got %f", plan.SizeInUnits)
	}
}

func TestPlan_NoCapWhenBelowLimit(t *testing.T) {
	sizer := NewSizer(200, nil)

	plan, skip := sizer.Plan("BTC", 0.02, 5000, 50000)
	if skip != "" {
		t.Fatalf("unexpected skip: %s", skip)
	}

	if diff := math.Abs(plan.NotionalRequested - 100); diff > 1e-9 {
		t.Errorf("expected requested notional 100, got %f", plan.NotionalRequested)
	}
	if plan.NotionalCapped != plan.NotionalRequested {
		t.Errorf("expected no cap, got capped=%f requested=%f", plan.NotionalCapped, plan.NotionalRequested)
	}
	if diff := math.Abs(plan.SizeInUnits - 0.002); diff > 1e-9 {
		t.Errorf("expected size 0.002, got %f", plan.SizeInUnits)
	}
}

func TestPlan_RoundsDownToInstrumentDecimals(t *testing.T) {
	sizer := NewSizer(1000, []Instrument{
		{Symbol: "BTC", MinSize: 0.0001, SizeDecimals: 3},
	})

	// 100 / 30000 = 0.003333...，向下取整到3位小数应为 0.003。
	plan, skip := sizer.Plan("BTC", 0.1, 1000, 30000)
	if skip != "" {
		t.Fatalf("unexpected skip: %s", skip)
	}
	if diff := math.Abs(plan.SizeInUnits - 0.003); diff > 1e-9 {
		t.Errorf("expected size rounded down to 0.003, got %f", plan.SizeInUnits)
	}
}

func TestPlan_SkipsBelowMinSize(t *testing.T) {
	sizer := NewSizer(200, []Instrument{
		{Symbol: "BTC", MinSize: 0.01, SizeDecimals: 4},
	})

	plan, skip := sizer.Plan("BTC", 0.01, 1000, 50000)
	if skip == "" {
		t.Fatalf("expected skip for size below minimum, got plan %+v", plan)
	}
	if !strings.Contains(skip, "最小交易单位") {
		t.Errorf("unexpected skip reason: %s", skip)
	}
	if plan.SizeInUnits >= 0.01 {
		t.Errorf("expected computed size below min, got %f", plan.SizeInUnits)
	}
}

func TestPlan_RejectsUnusableInputs(t *testing.T) {
	sizer := NewSizer(200, nil)

	if _, skip := sizer.Plan("BTC", 0.05, 0, 50000); skip == "" {
		t.Errorf("expected skip for zero equity")
	}
	if _, skip := sizer.Plan("BTC", 0.05, 1000, 0); skip == "" {
		t.Errorf("expected skip for zero price")
	}
}

func TestInstrument_FallsBackToDefault(t *testing.T) {
	sizer := NewSizer(200, []Instrument{
		{Symbol: "BTC", MinSize: 0.0001, SizeDecimals: 5},
	})

	if inst := sizer.Instrument("btc"); inst.SizeDecimals != 5 {
		t.Errorf("expected configured instrument via case-insensitive lookup, got %+v", inst)
	}

	inst := sizer.Instrument("DOGE")
	if inst.MinSize != 0.001 || inst.SizeDecimals != 6 {
		t.Errorf("expected default instrument for unknown symbol, got %+v", inst)
	}
}
