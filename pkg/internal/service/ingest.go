package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/internal/mpart"
	"github.com/yeisme/artvault/pkg/log"
	"github.com/yeisme/artvault/pkg/metrics"
	"github.com/yeisme/artvault/pkg/rule"
)

// emptyFieldSentinel 某些前端把空表单值序列化为字面量 "undefined"，收到时折叠为空串.
const emptyFieldSentinel = "undefined"

// 表单字段约束；超出按客户端输入错误处理.
const (
	maxDisplayNameLen = 512
	maxDescriptionLen = 4096
)

// IngestResult 摄取结果：已提交的制品记录与累积的表单字段.
type IngestResult struct {
	Artifacts []model.Artifact
	Fields    map[string]string
}

// Ingest 驱动整条上传摄取流水线：
// 在读取第一个 part 之前打开数据库事务，流式写入文件 part、
// 累积表单字段 part，全部 part 就绪并校验通过后插入记录并提交.
// 提交是最后一步，因此提交成功后不存在需要补偿的失败路径；
// 之前任何一步失败都走回滚协议：回滚事务、按账本删除已落盘文件、重抛原始错误.
func (s *ArtifactService) Ingest(ctx context.Context, owner string, body io.Reader, contentType string) (*IngestResult, error) {
	l := log.Component("ingest")

	boundary, err := mpart.Boundary(contentType)
	if err != nil {
		return nil, err
	}

	if err := s.vault.EnsureOwnerDirs(owner); err != nil {
		return nil, err
	}

	uploadsDir, err := s.vault.UploadsDir(owner)
	if err != nil {
		return nil, err
	}

	limit := configs.GetConfig().Vault.UploadLimitBytes
	reader := mpart.NewReader(body, boundary, limit)
	start := time.Now().UTC()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	var (
		ledger  []string // 回滚账本：本次请求已创建的文件路径
		staged  []model.Artifact
		fields  = map[string]string{}
		written int64
	)

	// fail 执行回滚协议并原样返回触发失败的错误.
	// 账本删除逐文件尽力而为：单个文件删不掉不阻止其余文件的删除，也不掩盖原始错误.
	fail := func(cause error) error {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			l.Error().Err(rbErr).Msg("transaction rollback failed")
		}

		for _, path := range ledger {
			if rmErr := s.vault.Remove(path); rmErr != nil {
				l.Warn().Err(rmErr).Str("path", path).Msg("rollback ledger cleanup failed")
			}
		}

		metrics.IngestRollbacks.Inc()

		if reader.Exceeded() {
			return mpart.ErrTooLarge
		}

		return cause
	}

	for {
		part, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fail(err)
		}

		if part.IsFile() {
			record, n, err := s.ingestFilePart(owner, uploadsDir, part, start, &ledger)
			if err != nil {
				return nil, fail(err)
			}

			written += n

			staged = append(staged, *record)

			continue
		}

		if err := accumulateField(fields, part); err != nil {
			return nil, fail(err)
		}
	}

	// 校验累积状态；失败是客户端错误，不是服务器故障
	if err := validateFields(fields); err != nil {
		return nil, fail(fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	applyFields(staged, fields)

	if len(staged) > 0 {
		if err := tx.Create(&staged).Error; err != nil {
			return nil, fail(fmt.Errorf("insert artifact records: %w", err))
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fail(fmt.Errorf("commit transaction: %w", err))
	}

	// 提交成功后文件即是权威状态，账本作废
	metrics.ArtifactUploads.Add(float64(len(staged)))
	metrics.ArtifactUploadBytes.Add(float64(written))

	l.Info().
		Str("owner", owner).
		Int("artifacts", len(staged)).
		Int64("bytes", written).
		Msg("ingest committed")

	return &IngestResult{Artifacts: staged, Fields: fields}, nil
}

// ingestFilePart 为单个文件 part 分配存储名、独占创建目标文件并流式写入.
// 创建成功即刻记入账本，写入失败时账本保证文件会被回滚删除.
func (s *ArtifactService) ingestFilePart(owner, uploadsDir string, part *mpart.Part,
	start time.Time, ledger *[]string,
) (*model.Artifact, int64, error) {
	name, err := s.vault.AllocateName(uploadsDir)
	if err != nil {
		return nil, 0, err
	}

	dst, err := s.vault.CreateUpload(owner, name)
	if err != nil {
		return nil, 0, err
	}

	*ledger = append(*ledger, dst.Name())

	n, copyErr := io.Copy(dst, part.Body)

	closeErr := dst.Close()
	if copyErr != nil {
		return nil, n, fmt.Errorf("write upload %s: %w", name, copyErr)
	}

	if closeErr != nil {
		return nil, n, fmt.Errorf("close upload %s: %w", name, closeErr)
	}

	return &model.Artifact{
		OwnerID:      owner,
		FileName:     name,
		FormFileName: part.FileName,
		ContentType:  part.ContentType,
		CreationTime: start,
	}, n, nil
}

// accumulateField 解码表单字段 part 并累积进字段表.
// 同名字段重复出现时先到者胜：后续出现通常是客户端的杂散提交.
func accumulateField(fields map[string]string, part *mpart.Part) error {
	raw, err := io.ReadAll(part.Body)
	if err != nil {
		return fmt.Errorf("read form field %s: %w", part.FieldName, err)
	}

	value := string(raw)
	if strings.EqualFold(value, emptyFieldSentinel) {
		value = ""
	}

	if _, ok := fields[part.FieldName]; !ok {
		fields[part.FieldName] = value
	}

	return nil
}

// validateFields 校验累积的表单字段.
func validateFields(fields map[string]string) error {
	if err := rule.ValidateVar(fields["display_name"], fmt.Sprintf("notctl,max=%d", maxDisplayNameLen)); err != nil {
		return errors.New("display_name invalid")
	}

	if err := rule.ValidateVar(fields["description"], fmt.Sprintf("max=%d", maxDescriptionLen)); err != nil {
		return errors.New("description too long")
	}

	return nil
}

// applyFields 将已知表单字段套用到本次暂存的所有记录上.
func applyFields(staged []model.Artifact, fields map[string]string) {
	for i := range staged {
		staged[i].DisplayName = fields["display_name"]
		staged[i].Description = fields["description"]
	}
}
