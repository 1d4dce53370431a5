package jobs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/internal/jobs"
	"github.com/yeisme/artvault/pkg/internal/storage"
	dbc "github.com/yeisme/artvault/pkg/internal/storage/db"
	vaultc "github.com/yeisme/artvault/pkg/internal/storage/vault"
)

func newTestManager(t *testing.T) *storage.Manager {
	t.Helper()

	gdb, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "meta.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}

	if err := gdb.AutoMigrate(&model.Artifact{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	v, err := vaultc.New(&configs.VaultConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("vault.New failed: %v", err)
	}

	return &storage.Manager{
		DB:    &dbc.Client{DB: gdb},
		Vault: v,
	}
}

// seedFile 在指定目录落一个修改时间在过去的文件.
func seedFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("bytes"), 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	return path
}

// TestSweeperRemovesOrphans 测试清扫只删无记录的过期文件，有记录的文件不受影响.
func TestSweeperRemovesOrphans(t *testing.T) {
	mgr := newTestManager(t)
	owner := "alice@example.com"

	if err := mgr.Vault.EnsureOwnerDirs(owner); err != nil {
		t.Fatalf("EnsureOwnerDirs failed: %v", err)
	}

	uploadsDir, _ := mgr.Vault.UploadsDir(owner)
	thumbsDir, _ := mgr.Vault.ThumbnailsDir(owner)

	kept := seedFile(t, uploadsDir, "keptfile")
	orphanUpload := seedFile(t, uploadsDir, "orphanupload")
	orphanThumb := seedFile(t, thumbsDir, "orphanthumb")

	if err := mgr.DB.Create(&model.Artifact{
		OwnerID:      owner,
		FileName:     "keptfile",
		CreationTime: time.Now().UTC(),
	}).Error; err != nil {
		t.Fatalf("create record failed: %v", err)
	}

	sw := jobs.NewSweeper(mgr, 24*time.Hour)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if !mgr.Vault.Exists(kept) {
		t.Error("Expected file with record to survive the sweep")
	}

	if mgr.Vault.Exists(orphanUpload) {
		t.Error("Expected orphan upload to be removed")
	}

	if mgr.Vault.Exists(orphanThumb) {
		t.Error("Expected orphan thumbnail to be removed")
	}
}

// TestSweeperHonorsGrace 测试宽限期内的文件即使无记录也不会被删.
func TestSweeperHonorsGrace(t *testing.T) {
	mgr := newTestManager(t)
	owner := "bob@example.com"

	if err := mgr.Vault.EnsureOwnerDirs(owner); err != nil {
		t.Fatalf("EnsureOwnerDirs failed: %v", err)
	}

	uploadsDir, _ := mgr.Vault.UploadsDir(owner)

	// 新鲜文件：修改时间就是现在，处于宽限期内
	fresh := filepath.Join(uploadsDir, "freshfile")
	if err := os.WriteFile(fresh, []byte("bytes"), 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}

	sw := jobs.NewSweeper(mgr, 24*time.Hour)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if !mgr.Vault.Exists(fresh) {
		t.Error("Expected fresh orphan to survive within grace window")
	}
}

// TestSweeperEmptyVault 测试空仓库清扫不报错.
func TestSweeperEmptyVault(t *testing.T) {
	mgr := newTestManager(t)

	sw := jobs.NewSweeper(mgr, time.Hour)
	if err := sw.Run(context.Background()); err != nil {
		t.Errorf("Expected empty sweep to succeed, got %v", err)
	}
}
