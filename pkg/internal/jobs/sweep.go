// Package jobs 实现后台维护任务.目前只有孤儿文件清扫：
// 摄取回滚或删除遗留的无记录文件会被定期移除，记录永远不会被清扫触碰.
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/internal/storage"
	dbc "github.com/yeisme/artvault/pkg/internal/storage/db"
	vaultc "github.com/yeisme/artvault/pkg/internal/storage/vault"
	"github.com/yeisme/artvault/pkg/log"
	"github.com/yeisme/artvault/pkg/metrics"
	"github.com/yeisme/artvault/pkg/scheduler"
)

// SweepJobName 清扫任务在调度器中的名称.
const SweepJobName = "orphan-sweep"

// sweepConcurrency 并行处理的所有者子树数量上限.
const sweepConcurrency = 4

// Sweeper 扫描仓库中的所有者子树，删除早于宽限期且无对应记录的文件.
// 宽限期保护进行中的摄取：文件先落盘，记录最后提交.
type Sweeper struct {
	db     *dbc.Client
	vault  *vaultc.Vault
	grace  time.Duration
	logger zerolog.Logger
}

// NewSweeper 创建清扫器.
func NewSweeper(mgr *storage.Manager, grace time.Duration) *Sweeper {
	return &Sweeper{
		db:     mgr.GetDBClient(),
		vault:  mgr.GetVault(),
		grace:  grace,
		logger: log.Component("jobs.sweep"),
	}
}

// Run 执行一轮清扫.所有者子树并行处理，单个子树内顺序执行.
func (s *Sweeper) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-s.grace)

	entries, err := os.ReadDir(s.vault.Root())
	if err != nil {
		return fmt.Errorf("read vault root: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		owner := e.Name()

		g.Go(func() error {
			return s.sweepOwner(ctx, owner, cutoff)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info().Time("cutoff", cutoff).Msg("sweep round finished")

	return nil
}

// sweepOwner 清扫单个所有者的 uploads 与 thumbnails 目录.
func (s *Sweeper) sweepOwner(ctx context.Context, owner string, cutoff time.Time) error {
	for _, dirFn := range []func(string) (string, error){s.vault.UploadsDir, s.vault.ThumbnailsDir} {
		dir, err := dirFn(owner)
		if err != nil {
			// 根目录下的异常目录名不是清扫的问题，跳过即可
			s.logger.Warn().Err(err).Str("owner", owner).Msg("skip owner dir")

			return nil
		}

		if err := s.sweepDir(ctx, owner, dir, cutoff); err != nil {
			return err
		}
	}

	return nil
}

func (s *Sweeper) sweepDir(ctx context.Context, owner, dir string, cutoff time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		name := e.Name()

		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Artifact{}).
			Where("owner_id = ? AND file_name = ?", owner, name).
			Count(&count).Error; err != nil {
			return fmt.Errorf("lookup record for %s/%s: %w", owner, name, err)
		}

		if count > 0 {
			continue
		}

		path := filepath.Join(dir, name)
		if err := s.vault.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("remove orphan file")

			continue
		}

		metrics.OrphanFilesSwept.Inc()
		s.logger.Info().Str("owner", owner).Str("file", name).Msg("orphan file removed")
	}

	return nil
}

// RegisterSweep 按配置把清扫任务注册到调度器.未启用时不注册.
func RegisterSweep(ctx context.Context, sched *scheduler.Scheduler, mgr *storage.Manager) error {
	cfg := configs.GetConfig().Vault
	if !cfg.SweepEnabled {
		return nil
	}

	sw := NewSweeper(mgr, cfg.GetSweepGrace())

	return sched.AddCron(ctx, SweepJobName, cfg.SweepCron, sw.Run)
}
