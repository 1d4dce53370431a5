package service

import (
	"context"
	"fmt"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
)

// List 按创建时间升序返回所有者的制品，skip/take 分页.
// 负数越界直接拒绝；count 超过配置上限时收紧到上限.
func (s *ArtifactService) List(ctx context.Context, owner string, offset, count int) ([]model.Artifact, error) {
	if offset < 0 || count < 0 {
		return nil, ErrInvalidPage
	}

	if maxCount := configs.GetConfig().Vault.MaxListCount; count > maxCount {
		count = maxCount
	}

	var items []model.Artifact

	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("creation_time ASC").
		Offset(offset).
		Limit(count).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	return items, nil
}
