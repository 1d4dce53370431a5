package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeisme/artvault/pkg/internal/model"
)

// fallbackContentType 无法推断时的通用二进制类型.
const fallbackContentType = "application/octet-stream"

// ResolvedArtifact 检索结果：后备文件路径与响应元数据.
type ResolvedArtifact struct {
	Path         string
	ContentType  string
	DownloadName string
	LastModified time.Time
}

// find 按 (owner, artifact_id) 查找元数据记录.
// id 解析失败与记录不存在同样返回 ErrNotFound，不向调用方区分.
func (s *ArtifactService) find(ctx context.Context, owner, id string) (*model.Artifact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var a model.Artifact

	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND artifact_id = ?", owner, id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("lookup artifact %s: %w", id, err)
	}

	return &a, nil
}

// ResolveUpload 解析制品原始内容的后备文件.
// 记录存在而文件缺失时同样报告不存在：缺文件的记录绝不当成功返回.
func (s *ArtifactService) ResolveUpload(ctx context.Context, owner, id string) (*ResolvedArtifact, error) {
	a, err := s.find(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	path, err := s.vault.UploadPath(a.OwnerID, a.FileName)
	if err != nil {
		return nil, err
	}

	if !s.vault.Exists(path) {
		return nil, ErrNotFound
	}

	return s.resolved(a, path), nil
}

// ResolveThumbnail 解析缩略图文件，缺失时回退到原始内容；两者皆无返回不存在.
func (s *ArtifactService) ResolveThumbnail(ctx context.Context, owner, id string) (*ResolvedArtifact, error) {
	a, err := s.find(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	thumbPath, err := s.vault.ThumbnailPath(a.OwnerID, a.FileName)
	if err != nil {
		return nil, err
	}

	if s.vault.Exists(thumbPath) {
		return s.resolved(a, thumbPath), nil
	}

	uploadPath, err := s.vault.UploadPath(a.OwnerID, a.FileName)
	if err != nil {
		return nil, err
	}

	if s.vault.Exists(uploadPath) {
		return s.resolved(a, uploadPath), nil
	}

	return nil, ErrNotFound
}

func (s *ArtifactService) resolved(a *model.Artifact, path string) *ResolvedArtifact {
	return &ResolvedArtifact{
		Path:         path,
		ContentType:  resolveContentType(a),
		DownloadName: a.DownloadName(),
		LastModified: a.CreationTime,
	}
}

// resolveContentType 计算响应内容类型：记录声明的类型优先；
// 否则按展示名（其次提交文件名）的扩展名推断；都不行时退回通用二进制.
// 存储文件名是随机的，从不参与推断.
func resolveContentType(a *model.Artifact) string {
	if a.ContentType != "" {
		return a.ContentType
	}

	source := a.DisplayName
	if source == "" {
		source = a.FormFileName
	}

	if ext := filepath.Ext(source); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}

	return fallbackContentType
}
