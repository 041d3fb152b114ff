package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Database.PoolSize != 5 {
		t.Errorf("expected PoolSize=5, got %d", cfg.Database.PoolSize)
	}
	if cfg.Search.FieldWeights.Summary != 1.5 {
		t.Errorf("expected Summary weight=1.5, got %v", cfg.Search.FieldWeights.Summary)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(tmpDir, "mcp_server.db")
	cfg.Search.FieldWeights.EndpointPath = 2.5

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("expected Path=%s, got %s", cfg.Database.Path, loaded.Database.Path)
	}
	if loaded.Search.FieldWeights.EndpointPath != 2.5 {
		t.Errorf("expected EndpointPath weight=2.5, got %v", loaded.Search.FieldWeights.EndpointPath)
	}
}

func TestConfigMissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file should succeed with defaults: %v", err)
	}
	if cfg.Server.MaxConnections != 100 {
		t.Errorf("expected default MaxConnections=100, got %d", cfg.Server.MaxConnections)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("SWAGGER_MCP_DB_PATH", "/tmp/override.db")
	t.Setenv("SWAGGER_MCP_LOG_LEVEL", "DEBUG")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("expected env override of database.path, got %s", cfg.Database.Path)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected env override of logging.level, got %s", cfg.Logging.Level)
	}
}

func TestValidateRejectsOutOfRangeFieldWeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.FieldWeights.Tags = 5.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range field weight")
	}
}

func TestValidateRejectsBadLoggingLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "VERBOSE"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid logging level")
	}
}

func TestValidateRejectsOutOfRangePoolSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.PoolSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for pool_size below minimum")
	}
}
