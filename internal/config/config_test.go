package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultsToSafeSimulation(t *testing.T) {
	path := writeConfigFile(t, `
oracle:
  api_key: test-key
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.Execution.Simulation {
		t.Errorf("simulation must default to enabled")
	}
	if cfg.Exchange.Network != NetworkTestnet {
		t.Errorf("network must default to testnet, got %s", cfg.Exchange.Network)
	}
	if cfg.Execution.MaxNotional <= 0 {
		t.Errorf("expected positive default max_notional, got %f", cfg.Execution.MaxNotional)
	}
	if cfg.Execution.DefaultSizePct <= 0 || cfg.Execution.DefaultSizePct > 1 {
		t.Errorf("unexpected default size_pct: %f", cfg.Execution.DefaultSizePct)
	}
	if cfg.Scheduler.LoopInterval <= 0 {
		t.Errorf("expected positive default loop interval, got %v", cfg.Scheduler.LoopInterval)
	}
}

func TestLoad_RejectsUnknownNetwork(t *testing.T) {
	path := writeConfigFile(t, `
oracle:
  api_key: test-key
exchange:
  network: prod
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for unknown network")
	}
	if !strings.Contains(err.Error(), "exchange.network") {
		t.Errorf("expected network validation error, got %v", err)
	}
}

func TestLoad_RequiresCredentialsForLiveTrading(t *testing.T) {
	path := writeConfigFile(t, `
oracle:
  api_key: test-key
execution:
  simulation: false
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for live mode without credentials")
	}
	if !strings.Contains(err.Error(), "wallet_address") {
		t.Errorf("expected credential validation error, got %v", err)
	}
}

func TestLoad_AcceptsLiveTradingWithCredentials(t *testing.T) {
	path := writeConfigFile(t, `
oracle:
  api_key: test-key
exchange:
  network: mainnet
  wallet_address: "0xabc"
  private_key: "0xdef"
execution:
  simulation: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Execution.Simulation {
		t.Errorf("expected simulation disabled")
	}
	if cfg.Exchange.IsTestnet() {
		t.Errorf("expected mainnet")
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation failure for empty config")
	}

	msg := err.Error()
	for _, fragment := range []string{"app.environment", "exchange.network", "oracle.api_key"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("expected aggregated error to mention %s, got %s", fragment, msg)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
