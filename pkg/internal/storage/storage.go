// Package storage 聚合存储资源：元数据数据库与制品文件仓库.
//
// Example:
//
// 初始化
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//
// 获取存储客户端
//
//	dbClient := mgr.GetDBClient()
//	vault := mgr.GetVault()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/artvault/pkg/configs"
	dbc "github.com/yeisme/artvault/pkg/internal/storage/db"
	vaultc "github.com/yeisme/artvault/pkg/internal/storage/vault"
	nlog "github.com/yeisme/artvault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB    *dbc.Client
	Vault *vaultc.Vault
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx, &cfg.DB)
		if e != nil {
			err = e

			return
		}

		m.DB = dbi

		// Vault
		vi, e := vaultc.New(&cfg.Vault)
		if e != nil {
			err = e

			return
		}

		m.Vault = vi

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetVault 获取文件仓库客户端.
func (m *Manager) GetVault() *vaultc.Vault {
	return m.Vault
}
