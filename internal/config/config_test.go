package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"pushLaunch/internal/xerror"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FeeTier != 3000 || cfg.DeadlineMinutes != 20 || cfg.ApprovalPolicy != "max" {
		t.Fatalf("swap defaults mismatch: %+v", cfg)
	}
	if cfg.ConfirmTimeout != 3*time.Minute || cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("duration defaults mismatch: %+v", cfg)
	}
	if cfg.Router != DefaultRouter || cfg.Factory != DefaultFactory {
		t.Fatalf("address defaults mismatch: %+v", cfg)
	}
	if cfg.CacheBackend != CacheFile || cfg.CacheNamespace != "swapper" || cfg.HistoryBatchSize != 2000 {
		t.Fatalf("cache defaults mismatch: %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swapper.yaml")
	content := "rpc: http://file\nfee-tier: 500\ncache-backend: redis\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SWAPPER_DEADLINE_MINUTES", "5")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	if err := flags.Parse([]string{"--rpc", "http://flag"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "http://flag" {
		t.Fatalf("flag should win, got %q", cfg.RPCURL)
	}
	if cfg.FeeTier != 500 || cfg.CacheBackend != CacheRedis {
		t.Fatalf("file values mismatch: %+v", cfg)
	}
	if cfg.DeadlineMinutes != 5 {
		t.Fatalf("env value mismatch: %d", cfg.DeadlineMinutes)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func validConfig() Config {
	return Config{
		RPCURL:          "http://localhost:8545",
		Factory:         DefaultFactory,
		Quoter:          DefaultQuoter,
		Router:          DefaultRouter,
		DeadlineMinutes: 20,
		ApprovalPolicy:  "max",
		CacheBackend:    CacheMemory,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"rpc":      func(c *Config) { c.RPCURL = " " },
		"factory":  func(c *Config) { c.Factory = "0x123" },
		"router":   func(c *Config) { c.Router = "" },
		"deadline": func(c *Config) { c.DeadlineMinutes = 0 },
		"policy":   func(c *Config) { c.ApprovalPolicy = "unlimited" },
		"backend":  func(c *Config) { c.CacheBackend = "s3" },
		"pg":       func(c *Config) { c.CacheBackend = CachePostgres },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); xerror.KindOf(err) != xerror.InvalidInput {
			t.Fatalf("%s: expected input error, got %v", name, err)
		}
	}
}
