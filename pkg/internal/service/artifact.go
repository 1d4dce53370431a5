// Package service 实现制品业务逻辑：摄取、检索、删除与列表.
//
// 文件系统与元数据数据库无法在同一个事务里提交，这里的一致性策略是
// 固定顺序：创建时元数据最后提交，删除时元数据最先删除；
// "记录不存在"永远是权威结论.文件侧的残留只可能是不可达的孤儿文件，
// 由清扫任务兜底回收.
package service

import (
	"context"
	"errors"

	ctxPkg "github.com/yeisme/artvault/pkg/context"
	"github.com/yeisme/artvault/pkg/internal/storage/db"
	"github.com/yeisme/artvault/pkg/internal/storage/vault"
)

var (
	// ErrNotFound 记录不存在、制品 id 非法或后备文件缺失.
	// 三者对调用方统一表现为"不存在"，避免跨所有者泄露存在性.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidInput 表单字段校验失败等客户端输入错误.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPage 分页参数越界.
	ErrInvalidPage = errors.New("invalid pagination bounds")
)

// ArtifactService 制品服务.
type ArtifactService struct {
	db    *db.Client
	vault *vault.Vault
}

// NewArtifactService 从上下文获取存储客户端构建服务实例.
func NewArtifactService(ctx context.Context) *ArtifactService {
	return &ArtifactService{
		db:    ctxPkg.GetDBClient(ctx),
		vault: ctxPkg.GetVault(ctx),
	}
}
