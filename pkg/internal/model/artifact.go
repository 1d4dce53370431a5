// Package model 定义持久化模型.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Artifact 制品元数据模型，(OwnerID, ArtifactID) 复合主键.
// 元数据记录是制品存在性与归属的唯一权威来源；磁盘文件本身不算数.
type Artifact struct {
	// OwnerID 所有者标识，与制品 ID 一起构成复合主键
	OwnerID string `gorm:"primaryKey;size:255;index:idx_owner_stored,unique" json:"owner_id"`
	// ArtifactID 由仓库在插入时生成的 UUID
	ArtifactID string `gorm:"primaryKey;size:36" json:"artifact_id"`
	// FileName 分配器生成的存储文件名，在所有者子树内唯一且永不复用
	FileName string `gorm:"size:64;index:idx_owner_stored,unique" json:"file_name"`
	// FormFileName 客户端提交的原始文件名，不可信，仅用于展示
	FormFileName string `gorm:"size:512" json:"form_file_name"`
	// DisplayName 用户提供的展示名，可为空
	DisplayName string `gorm:"size:512" json:"display_name"`
	// Description 描述，可为空
	Description string `gorm:"type:text" json:"description"`
	// ContentType 上传时声明的内容类型，可为空
	ContentType string `gorm:"size:255" json:"content_type"`
	// CreationTime 摄取开始时间
	CreationTime time.Time `gorm:"index" json:"creation_time"`
}

// TableName 指定表名.
func (Artifact) TableName() string {
	return "artifacts"
}

// BeforeCreate 在插入前生成制品 ID.
func (a *Artifact) BeforeCreate(_ *gorm.DB) error {
	if a.ArtifactID == "" {
		a.ArtifactID = uuid.NewString()
	}

	return nil
}

// DownloadName 返回下载时对外展示的名字：展示名、提交文件名、存储文件名中第一个非空者.
func (a *Artifact) DownloadName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}

	if a.FormFileName != "" {
		return a.FormFileName
	}

	return a.FileName
}
