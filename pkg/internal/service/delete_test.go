package service

import (
	"context"
	"errors"
	"os"
	"testing"
)

// TestDelete 测试删除后记录与文件俱亡.
func TestDelete(t *testing.T) {
	s := newTestService(t)
	owner := "alice@example.com"

	a := seedArtifact(t, s, owner, "payload", nil)

	thumbPath, _ := s.vault.ThumbnailPath(owner, a.FileName)
	if err := os.WriteFile(thumbPath, []byte("thumb"), 0o644); err != nil {
		t.Fatalf("write thumbnail failed: %v", err)
	}

	if err := s.Delete(context.Background(), owner, a.ArtifactID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := countRecords(t, s, owner); got != 0 {
		t.Errorf("Expected record deleted, got %d remaining", got)
	}

	uploadPath, _ := s.vault.UploadPath(owner, a.FileName)
	if s.vault.Exists(uploadPath) {
		t.Error("Expected upload file removed")
	}

	if s.vault.Exists(thumbPath) {
		t.Error("Expected thumbnail file removed")
	}

	// 重复删除同一制品报不存在
	if err := s.Delete(context.Background(), owner, a.ArtifactID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

// TestDeleteSucceedsWithoutFiles 测试文件早已缺失时删除整体仍然成功.
func TestDeleteSucceedsWithoutFiles(t *testing.T) {
	s := newTestService(t)
	owner := "bob@example.com"

	a := seedArtifact(t, s, owner, "x", nil)

	uploadPath, _ := s.vault.UploadPath(owner, a.FileName)
	if err := os.Remove(uploadPath); err != nil {
		t.Fatalf("remove backing file failed: %v", err)
	}

	if err := s.Delete(context.Background(), owner, a.ArtifactID); err != nil {
		t.Fatalf("Expected delete to succeed despite missing files, got %v", err)
	}

	if got := countRecords(t, s, owner); got != 0 {
		t.Errorf("Expected record deleted, got %d remaining", got)
	}
}

// TestDeleteNotFound 测试未知制品与跨所有者删除均报不存在.
func TestDeleteNotFound(t *testing.T) {
	s := newTestService(t)
	owner := "carol@example.com"

	a := seedArtifact(t, s, owner, "x", nil)

	if err := s.Delete(context.Background(), owner, "bad-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for malformed id, got %v", err)
	}

	if err := s.Delete(context.Background(), "mallory@example.com", a.ArtifactID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign owner, got %v", err)
	}

	// 他人的记录与文件原封不动
	if got := countRecords(t, s, owner); got != 1 {
		t.Errorf("Expected victim record untouched, got %d", got)
	}
}
