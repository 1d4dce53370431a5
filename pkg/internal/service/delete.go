package service

import (
	"context"
	"fmt"

	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/log"
	"github.com/yeisme/artvault/pkg/metrics"
)

// Delete 删除制品：先在事务里删除元数据记录并提交，提交成功后再
// 尽力删除缩略图与原始文件.顺序不可颠倒——记录先没，留下的文件只是
// 无法通过正常检索触达的垃圾；反过来会留下指向空文件的记录，
// 而检索层不会替消失的文件自动过期记录.
//
// 文件删除失败只记日志不报错：记录已经没了，对调用方整体仍是成功.
// 事务失败时文件一个都不碰，记录仍在，调用方可安全重试.
func (s *ArtifactService) Delete(ctx context.Context, owner, id string) error {
	a, err := s.find(ctx, owner, id)
	if err != nil {
		return err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	if err := tx.Where("owner_id = ? AND artifact_id = ?", a.OwnerID, a.ArtifactID).
		Delete(&model.Artifact{}).Error; err != nil {
		tx.Rollback()

		return fmt.Errorf("delete artifact record %s: %w", id, err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()

		return fmt.Errorf("commit delete %s: %w", id, err)
	}

	metrics.ArtifactDeletions.Inc()

	l := log.Component("delete")

	if path, err := s.vault.ThumbnailPath(a.OwnerID, a.FileName); err == nil {
		if rmErr := s.vault.Remove(path); rmErr != nil {
			l.Warn().Err(rmErr).Str("path", path).Msg("thumbnail removal failed, file orphaned")
		}
	}

	if path, err := s.vault.UploadPath(a.OwnerID, a.FileName); err == nil {
		if rmErr := s.vault.Remove(path); rmErr != nil {
			l.Warn().Err(rmErr).Str("path", path).Msg("upload removal failed, file orphaned")
		}
	}

	return nil
}
