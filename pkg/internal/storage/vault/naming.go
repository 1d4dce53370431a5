package vault

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid"
)

// maxAllocateAttempts ULID 碰撞概率接近于零，多次连续碰撞意味着仓库内部故障
// （比如时钟或熵源异常），按内部错误处理而不是无限重试.
const maxAllocateAttempts = 16

// ErrAllocateExhausted 连续分配尝试均发生碰撞时返回.
var ErrAllocateExhausted = errors.New("stored name allocation exhausted retries")

// AllocateName 在目录内分配一个不冲突的存储文件名.
// 名字从不取自用户输入；调用方负责真正创建文件（独占语义兜底）.
func (v *Vault) AllocateName(dir string) (string, error) {
	for range maxAllocateAttempts {
		name := newStoredName()

		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}

		if err != nil {
			return "", fmt.Errorf("probe stored name: %w", err)
		}
		// 已存在，重试
	}

	return "", ErrAllocateExhausted
}

// newStoredName 生成随机存储文件名：小写 ULID，时间前缀让目录按创建序排列.
func newStoredName() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), crand.Reader)

	return strings.ToLower(id.String())
}
