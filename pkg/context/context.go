// Package context 拓展上下文功能，将存储管理器集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/yeisme/artvault/pkg/internal/storage"
	dbc "github.com/yeisme/artvault/pkg/internal/storage/db"
	vaultc "github.com/yeisme/artvault/pkg/internal/storage/vault"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetVault 从 context 中获取文件仓库客户端.
func GetVault(ctx context.Context) *vaultc.Vault {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetVault()
	}

	return nil
}
