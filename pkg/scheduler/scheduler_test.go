package scheduler_test

import (
	"context"
	"testing"

	"github.com/yeisme/artvault/pkg/scheduler"
)

// TestAddCron 测试任务注册、状态快照与重名拒绝.
func TestAddCron(t *testing.T) {
	s, err := scheduler.New()
	if err != nil {
		t.Fatalf("scheduler.New failed: %v", err)
	}

	defer func() {
		if err := s.Stop(); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	}()

	ctx := context.Background()

	task := func(ctx context.Context) error { return nil }

	if err := s.AddCron(ctx, "nightly", "0 3 * * *", task); err != nil {
		t.Fatalf("AddCron failed: %v", err)
	}

	if err := s.AddCron(ctx, "nightly", "0 4 * * *", task); err == nil {
		t.Error("Expected error for duplicate job name, got nil")
	}

	infos := s.GetJobInfos()
	if len(infos) != 1 {
		t.Fatalf("Expected 1 job info, got %d", len(infos))
	}

	if infos[0].Name != "nightly" || infos[0].CronExpr != "0 3 * * *" {
		t.Errorf("Unexpected job info %+v", infos[0])
	}

	if infos[0].Status != scheduler.StatusScheduled {
		t.Errorf("Expected scheduled status, got %s", infos[0].Status)
	}
}

// TestAddCronRejectsBadExpr 测试非法 cron 表达式报错.
func TestAddCronRejectsBadExpr(t *testing.T) {
	s, err := scheduler.New()
	if err != nil {
		t.Fatalf("scheduler.New failed: %v", err)
	}

	defer s.Stop()

	err = s.AddCron(context.Background(), "broken", "not a cron expr",
		func(ctx context.Context) error { return nil })
	if err == nil {
		t.Error("Expected error for invalid cron expression, got nil")
	}
}

// TestRunNowUnknownJob 测试触发未知任务报错.
func TestRunNowUnknownJob(t *testing.T) {
	s, err := scheduler.New()
	if err != nil {
		t.Fatalf("scheduler.New failed: %v", err)
	}

	defer s.Stop()

	if err := s.RunNow("missing"); err == nil {
		t.Error("Expected error for unknown job, got nil")
	}
}
