// Package mpart 将 multipart 请求体解码为惰性、只进的 part 序列.
//
// 序列单趟消费：每个 part 的 Body 只在取下一个 part 之前有效，不可回读、
// 不可 seek；整个请求体从不整体缓冲到内存，任意大的上传只占用常数内存.
// 总字节预算在底层流上强制执行，超限让流失败而不是静默截断，
// 且与格式错误使用可区分的哨兵错误.
package mpart

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

var (
	// ErrTooLarge 请求体超出配置的总字节预算.
	ErrTooLarge = errors.New("multipart body exceeds size limit")
	// ErrMalformed 分隔符或 part 头无法解析.
	ErrMalformed = errors.New("malformed multipart body")
)

// Boundary 从请求的 Content-Type 头中提取 multipart 分隔符.
func Boundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: parse content type: %v", ErrMalformed, err)
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", fmt.Errorf("%w: not a multipart content type: %s", ErrMalformed, mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", fmt.Errorf("%w: missing boundary", ErrMalformed)
	}

	return boundary, nil
}

// Part 序列中的一个成员：文件 part（FileName 非空）或表单字段 part.
type Part struct {
	// FieldName content-disposition 中的字段名
	FieldName string
	// FileName 客户端提交的文件名；非空表示文件 part
	FileName string
	// ContentType 该 part 声明的内容类型，可为空
	ContentType string
	// Body 只进的内容流，取下一个 part 后失效
	Body io.Reader
}

// IsFile 判断是否为文件 part：以 content-disposition 携带 filename 为准.
func (p *Part) IsFile() bool {
	return p.FileName != ""
}

// Reader 惰性解码 multipart 流.
type Reader struct {
	mr     *multipart.Reader
	budget *budgetReader
}

// NewReader 创建解码器；limit 是整个请求体（含分隔符与头）的总字节预算.
func NewReader(body io.Reader, boundary string, limit int64) *Reader {
	budget := &budgetReader{r: body, remaining: limit}

	return &Reader{
		mr:     multipart.NewReader(budget, boundary),
		budget: budget,
	}
}

// Next 返回序列中的下一个 part；序列结束返回 io.EOF.
// 调用 Next 会先丢弃上一个 part 未消费的剩余内容.
func (r *Reader) Next() (*Part, error) {
	p, err := r.mr.NextPart()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		if r.budget.exceeded || errors.Is(err, ErrTooLarge) {
			return nil, ErrTooLarge
		}

		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	field := p.FormName()
	file := p.FileName()

	if field == "" && file == "" {
		return nil, fmt.Errorf("%w: part without usable content-disposition", ErrMalformed)
	}

	return &Part{
		FieldName:   field,
		FileName:    file,
		ContentType: p.Header.Get("Content-Type"),
		Body:        p,
	}, nil
}

// Exceeded 报告字节预算是否已被击穿；用于对 part 内容读取中途
// 冒出的错误做超限/故障分类.
func (r *Reader) Exceeded() bool {
	return r.budget.exceeded
}

// budgetReader 对底层流施加总字节预算.
// 允许读满 remaining+1 字节来区分"恰好等于上限"与"超过上限".
type budgetReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (b *budgetReader) Read(p []byte) (int, error) {
	if b.exceeded {
		return 0, ErrTooLarge
	}

	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}

	n, err := b.r.Read(p)
	b.remaining -= int64(n)

	if b.remaining < 0 {
		b.exceeded = true

		return n, ErrTooLarge
	}

	return n, err
}
