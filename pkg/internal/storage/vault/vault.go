// Package vault 实现制品文件仓库：单一根目录下按所有者划分子树，
// uploads 存放原始内容，thumbnails 存放可选的缩略图（同名，允许缺失）.
//
// 磁盘布局:
//
//	<root>/<owner-id>/uploads/<stored-name>
//	<root>/<owner-id>/thumbnails/<stored-name>
//
// vault 只拥有文件生命周期；存在性与归属由元数据仓库裁决，
// 两者的一致性由摄取/删除协调器负责维护.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeisme/artvault/pkg/configs"
)

const (
	// UploadsDirName 原始内容子目录名.
	UploadsDirName = "uploads"
	// ThumbnailsDirName 缩略图子目录名.
	ThumbnailsDirName = "thumbnails"

	dirPerm = 0o755
)

// ErrInvalidComponent 路径分量含分隔符或相对引用时返回，防止目录穿越.
var ErrInvalidComponent = errors.New("invalid path component")

// Vault 文件仓库客户端.
type Vault struct {
	root string
}

// New 创建文件仓库客户端并确保根目录存在.
func New(cfg *configs.VaultConfig) (*Vault, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create vault root: %w", err)
	}

	return &Vault{root: root}, nil
}

// Root 返回仓库根目录.
func (v *Vault) Root() string {
	return v.root
}

// checkComponent 校验单个路径分量，拒绝空值、分隔符与相对引用.
func checkComponent(s string) error {
	if s == "" || s == "." || s == ".." {
		return ErrInvalidComponent
	}

	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "\x00") {
		return ErrInvalidComponent
	}

	return nil
}

// OwnerDir 返回所有者子树根目录.
func (v *Vault) OwnerDir(owner string) (string, error) {
	if err := checkComponent(owner); err != nil {
		return "", fmt.Errorf("owner %q: %w", owner, err)
	}

	return filepath.Join(v.root, owner), nil
}

// UploadsDir 返回所有者的 uploads 目录.
func (v *Vault) UploadsDir(owner string) (string, error) {
	dir, err := v.OwnerDir(owner)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, UploadsDirName), nil
}

// ThumbnailsDir 返回所有者的 thumbnails 目录.
func (v *Vault) ThumbnailsDir(owner string) (string, error) {
	dir, err := v.OwnerDir(owner)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, ThumbnailsDirName), nil
}

// EnsureOwnerDirs 确保所有者的 uploads 与 thumbnails 目录存在.
func (v *Vault) EnsureOwnerDirs(owner string) error {
	for _, f := range []func(string) (string, error){v.UploadsDir, v.ThumbnailsDir} {
		dir, err := f(owner)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create owner dir: %w", err)
		}
	}

	return nil
}

// UploadPath 返回原始内容文件路径.
func (v *Vault) UploadPath(owner, name string) (string, error) {
	dir, err := v.UploadsDir(owner)
	if err != nil {
		return "", err
	}

	if err := checkComponent(name); err != nil {
		return "", fmt.Errorf("stored name %q: %w", name, err)
	}

	return filepath.Join(dir, name), nil
}

// ThumbnailPath 返回缩略图文件路径.
func (v *Vault) ThumbnailPath(owner, name string) (string, error) {
	dir, err := v.ThumbnailsDir(owner)
	if err != nil {
		return "", err
	}

	if err := checkComponent(name); err != nil {
		return "", fmt.Errorf("stored name %q: %w", name, err)
	}

	return filepath.Join(dir, name), nil
}

// CreateUpload 以独占方式创建原始内容文件；目标已存在时失败.
// 独占创建是整个写入路径唯一需要的互斥原语：名字由分配器保证无碰撞.
func (v *Vault) CreateUpload(owner, name string) (*os.File, error) {
	path, err := v.UploadPath(owner, name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload %s: %w", name, err)
	}

	return f, nil
}

// Remove 删除文件；文件不存在不视为错误.
func (v *Vault) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}

// Exists 判断文件是否存在（目录不算）.
func (v *Vault) Exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
