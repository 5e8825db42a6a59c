package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  user: bridge
  password: secret
indexer:
  base_url: https://indexer.example.com
bridge:
  poll_interval: 2s
chains:
  - chain_id: 1
    rpc_url: https://mainnet.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected database host db.internal, got %q", cfg.Database.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Bridge.PollInterval != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %s", cfg.Bridge.PollInterval)
	}
	if cfg.Bridge.ActivityPageSize != 20 {
		t.Errorf("expected default activity page size 20, got %d", cfg.Bridge.ActivityPageSize)
	}
	if len(cfg.Chains) != 1 || cfg.Chains[0].ChainID != 1 || cfg.Chains[0].RPCURL != "https://mainnet.example.com" {
		t.Errorf("unexpected chain overrides: %+v", cfg.Chains)
	}
	if !cfg.Monitoring.Enabled {
		t.Error("expected monitoring enabled by default")
	}
}

func TestLoad_MissingIndexerURL(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing indexer.base_url")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "bridge",
		Password: "pw",
		Database: "zchain_bridge",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=bridge password=pw dbname=zchain_bridge sslmode=disable"
	if got := cfg.GetConnectionString(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
