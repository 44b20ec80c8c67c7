package main

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.DataFile != "data/employees.json" {
		t.Fatalf("unexpected data file: %s", cfg.DataFile)
	}
	if cfg.EmbedModel != "nomic-embed-text" {
		t.Fatalf("unexpected model: %s", cfg.EmbedModel)
	}
	if cfg.NATSURL != "" {
		t.Fatalf("NATS should be disabled by default, got %s", cfg.NATSURL)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DATA_FILE", "/tmp/other.json")
	if cfg := loadConfig(); cfg.DataFile != "/tmp/other.json" {
		t.Fatalf("expected env override, got %s", cfg.DataFile)
	}
}
