package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/artvault/pkg/configs"
)

// TestInitConfigDefaults 测试没有配置文件时回退到默认值.
func TestInitConfigDefaults(t *testing.T) {
	if err := configs.InitConfig(t.TempDir()); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg := configs.GetConfig()

	if cfg.Vault.Root != configs.DefaultVaultRoot {
		t.Errorf("Expected default vault root, got %q", cfg.Vault.Root)
	}

	if cfg.Vault.UploadLimitBytes != configs.DefaultUploadLimitBytes {
		t.Errorf("Expected default upload limit, got %d", cfg.Vault.UploadLimitBytes)
	}

	if cfg.Vault.MaxListCount != configs.DefaultMaxListCount {
		t.Errorf("Expected default max list count, got %d", cfg.Vault.MaxListCount)
	}

	if cfg.Server.Port != configs.DefaultPort {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}

	if got := cfg.Vault.GetSweepGrace(); got != time.Duration(configs.DefaultSweepGraceHours)*time.Hour {
		t.Errorf("Expected default sweep grace, got %v", got)
	}

	if got := cfg.Server.GetShutdownTimeout(); got != time.Duration(configs.DefaultShutdownTimeout)*time.Second {
		t.Errorf("Expected default shutdown timeout, got %v", got)
	}

	if cfg.Auth.DevAllowQuery {
		t.Error("Expected query identity fallback disabled by default")
	}
}

// TestInitConfigFile 测试从 yaml 配置文件加载并覆盖默认值.
func TestInitConfigFile(t *testing.T) {
	dir := t.TempDir()

	content := []byte(`
server:
  port: 9999
  reload_config: false
vault:
  root: /srv/vault
  upload_limit_bytes: 1048576
  sweep_enabled: false
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("write config file failed: %v", err)
	}

	if err := configs.InitConfig(dir); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg := configs.GetConfig()

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from file, got %d", cfg.Server.Port)
	}

	if cfg.Vault.Root != "/srv/vault" {
		t.Errorf("Expected vault root from file, got %q", cfg.Vault.Root)
	}

	if cfg.Vault.UploadLimitBytes != 1048576 {
		t.Errorf("Expected upload limit from file, got %d", cfg.Vault.UploadLimitBytes)
	}

	if cfg.Vault.SweepEnabled {
		t.Error("Expected sweep disabled from file")
	}

	// 未覆盖的键保持默认
	if cfg.Vault.MaxListCount != configs.DefaultMaxListCount {
		t.Errorf("Expected untouched key to keep default, got %d", cfg.Vault.MaxListCount)
	}
}
