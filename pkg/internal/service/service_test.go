package service

import (
	"bytes"
	"mime/multipart"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
	dbc "github.com/yeisme/artvault/pkg/internal/storage/db"
	vaultc "github.com/yeisme/artvault/pkg/internal/storage/vault"
)

// newTestService 构建接入独立临时存储的服务实例.
// 数据库用纯 Go sqlite 驱动落在临时目录，vault 根目录同样临时.
func newTestService(t *testing.T) *ArtifactService {
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

	// 测试共享全局配置，逐项设回默认，避免用例间互相干扰
	cfg := configs.GetConfig()
	cfg.Vault.UploadLimitBytes = configs.DefaultUploadLimitBytes
	cfg.Vault.MaxListCount = configs.DefaultMaxListCount

	return &ArtifactService{
		db:    &dbc.Client{DB: gdb},
		vault: v,
	}
}

// formPart 多部分请求体中的一项.
type formPart struct {
	field    string
	fileName string
	value    string
}

// multipartBody 构造 multipart 请求体，返回 Content-Type 和字节流.
func multipartBody(t *testing.T, parts []formPart) (string, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.fileName != "" {
			fw, err := w.CreateFormFile(p.field, p.fileName)
			if err != nil {
				t.Fatalf("CreateFormFile failed: %v", err)
			}

			if _, err := fw.Write([]byte(p.value)); err != nil {
				t.Fatalf("write file part failed: %v", err)
			}

			continue
		}

		if err := w.WriteField(p.field, p.value); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}

	return w.FormDataContentType(), &buf
}

// countRecords 返回所有者在元数据库中的记录数.
func countRecords(t *testing.T, s *ArtifactService, owner string) int64 {
	t.Helper()

	var n int64
	if err := s.db.Model(&model.Artifact{}).Where("owner_id = ?", owner).Count(&n).Error; err != nil {
		t.Fatalf("count records failed: %v", err)
	}

	return n
}

// countUploads 返回所有者 uploads 目录下的文件数.
func countUploads(t *testing.T, s *ArtifactService, owner string) int {
	t.Helper()

	dir, err := s.vault.UploadsDir(owner)
	if err != nil {
		t.Fatalf("UploadsDir failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("glob uploads failed: %v", err)
	}

	return len(matches)
}
