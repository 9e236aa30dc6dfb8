package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := LoadConfigFrom(writeConfig(t, "server:\n  port: \"9090\"\n"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %s", cfg.Server.Port)
	}
	if cfg.Pipeline.Strategy != "balanced" || cfg.Pipeline.Concurrency != 5 {
		t.Errorf("pipeline defaults = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.SiblingDiscount != 0.95 || cfg.Pipeline.PatternTrustThreshold != 0.7 {
		t.Errorf("pattern defaults = %+v", cfg.Pipeline)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.BaseDelayMs != 1000 || cfg.Retry.MaxDelayMs != 10000 {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
	if cfg.LLM.Models.Cheap == "" || cfg.LLM.Models.Premium == "" {
		t.Errorf("model defaults missing: %+v", cfg.LLM.Models)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	content := `
pipeline:
  strategy: aggressive
  concurrency: 2
  fail_fast: true
llm:
  openai:
    api_key: sk-from-file
  pricing:
    cheap-model: 0.001
scheduler:
  enabled: true
  tasks:
    - name: inbox
      cron: "*/30 * * * *"
      path: /data/inbox
      recursive: true
      enabled: true
`
	cfg, err := LoadConfigFrom(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}

	if cfg.Pipeline.Strategy != "aggressive" || !cfg.Pipeline.FailFast || cfg.Pipeline.Concurrency != 2 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-from-env" {
		t.Errorf("OPENAI_API_KEY should win, got %s", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.LLM.Pricing["cheap-model"] != 0.001 {
		t.Errorf("pricing = %v", cfg.LLM.Pricing)
	}
	if len(cfg.Scheduler.Tasks) != 1 || !cfg.Scheduler.Tasks[0].Recursive {
		t.Errorf("tasks = %+v", cfg.Scheduler.Tasks)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Pipeline: PipelineConfig{Strategy: "balanced", Concurrency: 5, SiblingDiscount: 0.95, PatternTrustThreshold: 0.7},
			Retry:    RetryConfig{MaxRetries: 3, BaseDelayMs: 1000, MaxDelayMs: 10000},
			Cache:    CacheConfig{Enabled: true, Capacity: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"合法配置", func(c *Config) {}, ""},
		{"未知策略", func(c *Config) { c.Pipeline.Strategy = "yolo" }, "unknown pipeline strategy"},
		{"阈值越界", func(c *Config) { c.Pipeline.MetadataThreshold = 1.5 }, "metadata_threshold"},
		{"折扣为0", func(c *Config) { c.Pipeline.SiblingDiscount = 0 }, "sibling_discount"},
		{"并发为0", func(c *Config) { c.Pipeline.Concurrency = 0 }, "concurrency"},
		{"最大延迟小于基础延迟", func(c *Config) { c.Retry.MaxDelayMs = 10 }, "retry delays"},
		{"telegram缺少token", func(c *Config) { c.Telegram.Enabled = true }, "bot_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
