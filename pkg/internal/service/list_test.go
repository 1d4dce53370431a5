package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
)

// seedMany 按给定间隔落 n 条记录，创建时间递增.
func seedMany(t *testing.T, s *ArtifactService, owner string, n int) {
	t.Helper()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range n {
		a := &model.Artifact{
			OwnerID:      owner,
			FileName:     fmt.Sprintf("stored%02d", i),
			DisplayName:  fmt.Sprintf("item %02d", i),
			CreationTime: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.db.Create(a).Error; err != nil {
			t.Fatalf("create record failed: %v", err)
		}
	}
}

// TestListOrdering 测试按创建时间升序与分页窗口.
func TestListOrdering(t *testing.T) {
	s := newTestService(t)
	owner := "alice@example.com"

	seedMany(t, s, owner, 5)

	items, err := s.List(context.Background(), owner, 1, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	if items[0].DisplayName != "item 01" || items[1].DisplayName != "item 02" {
		t.Errorf("Expected window [item 01, item 02], got [%s, %s]",
			items[0].DisplayName, items[1].DisplayName)
	}
}

// TestListIsolation 测试列表只见自己所有者的制品.
func TestListIsolation(t *testing.T) {
	s := newTestService(t)

	seedMany(t, s, "alice@example.com", 3)
	seedMany(t, s, "bob@example.com", 2)

	items, err := s.List(context.Background(), "bob@example.com", 0, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(items) != 2 {
		t.Errorf("Expected 2 items for bob, got %d", len(items))
	}

	for _, a := range items {
		if a.OwnerID != "bob@example.com" {
			t.Errorf("Expected only bob's artifacts, got owner %s", a.OwnerID)
		}
	}
}

// TestListNegativeBounds 测试负数分页参数被拒绝.
func TestListNegativeBounds(t *testing.T) {
	s := newTestService(t)

	if _, err := s.List(context.Background(), "alice@example.com", -1, 10); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Expected ErrInvalidPage for negative offset, got %v", err)
	}

	if _, err := s.List(context.Background(), "alice@example.com", 0, -1); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Expected ErrInvalidPage for negative count, got %v", err)
	}
}

// TestListClampsCount 测试 count 超过配置上限时收紧到上限.
func TestListClampsCount(t *testing.T) {
	s := newTestService(t)
	owner := "carol@example.com"

	configs.GetConfig().Vault.MaxListCount = 2

	seedMany(t, s, owner, 5)

	items, err := s.List(context.Background(), owner, 0, 100)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(items) != 2 {
		t.Errorf("Expected count clamped to 2, got %d items", len(items))
	}
}

// TestListEmpty 测试无记录时返回空列表而不是错误.
func TestListEmpty(t *testing.T) {
	s := newTestService(t)

	items, err := s.List(context.Background(), "nobody@example.com", 0, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(items) != 0 {
		t.Errorf("Expected empty list, got %d items", len(items))
	}
}
