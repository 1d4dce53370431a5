// Package configs 管理应用程序配置，包括文件仓库（vault）的配置信息.
// Vault 配置描述制品文件的磁盘布局与上传限制.
package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultVaultRoot             = "data/vault"    // 文件仓库根目录
	DefaultUploadLimitBytes      = 4 << 30         // 单次上传请求体上限（4 GiB）
	DefaultMaxListCount          = 200             // 列表单页最大条数
	DefaultListCount             = 50              // 列表默认条数
	DefaultThumbnailCacheSeconds = 60 * 60 * 24 * 7 // 缩略图缓存时长（7 天）
	DefaultSweepEnabled          = true            // 是否启用孤儿文件清扫任务
	DefaultSweepGraceHours       = 24              // 清扫宽限期，早于该时间且无记录的文件才会被删除
	DefaultSweepCron             = "0 3 * * *"     // 清扫任务 cron 表达式（每日 03:00）
)

// VaultConfig 文件仓库配置.
type VaultConfig struct {
	Root                  string `mapstructure:"root"                    rule:"required"`
	UploadLimitBytes      int64  `mapstructure:"upload_limit_bytes"      rule:"min=1"`
	MaxListCount          int    `mapstructure:"max_list_count"          rule:"min=1"`
	ThumbnailCacheSeconds int    `mapstructure:"thumbnail_cache_seconds" rule:"min=0"`
	SweepEnabled          bool   `mapstructure:"sweep_enabled"`
	SweepGraceHours       int    `mapstructure:"sweep_grace_hours"       rule:"min=1"`
	SweepCron             string `mapstructure:"sweep_cron"              rule:"required"`
}

// GetSweepGrace 返回清扫宽限期作为 time.Duration.
func (c *VaultConfig) GetSweepGrace() time.Duration {
	return time.Duration(c.SweepGraceHours) * time.Hour
}

// setDefaults 设置文件仓库配置的默认值.
func (c *VaultConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("vault.root", DefaultVaultRoot)
	v.SetDefault("vault.upload_limit_bytes", DefaultUploadLimitBytes)
	v.SetDefault("vault.max_list_count", DefaultMaxListCount)
	v.SetDefault("vault.thumbnail_cache_seconds", DefaultThumbnailCacheSeconds)
	v.SetDefault("vault.sweep_enabled", DefaultSweepEnabled)
	v.SetDefault("vault.sweep_grace_hours", DefaultSweepGraceHours)
	v.SetDefault("vault.sweep_cron", DefaultSweepCron)
}
