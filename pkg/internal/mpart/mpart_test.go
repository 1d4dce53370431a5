package mpart_test

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/yeisme/artvault/pkg/internal/mpart"
)

// buildBody 构造一个包含文件与表单字段 part 的 multipart 请求体.
func buildBody(t *testing.T, parts []testPart) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.fileName != "" {
			fw, err := w.CreateFormFile(p.field, p.fileName)
			if err != nil {
				t.Fatalf("CreateFormFile failed: %v", err)
			}

			if _, err := fw.Write([]byte(p.value)); err != nil {
				t.Fatalf("write file part failed: %v", err)
			}

			continue
		}

		if err := w.WriteField(p.field, p.value); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}

	return w.Boundary(), buf.Bytes()
}

type testPart struct {
	field    string
	fileName string
	value    string
}

// TestBoundary 测试从 Content-Type 中提取分隔符.
func TestBoundary(t *testing.T) {
	b, err := mpart.Boundary(`multipart/form-data; boundary="abc123"`)
	if err != nil {
		t.Fatalf("Expected no error for valid content type, got %v", err)
	}

	if b != "abc123" {
		t.Errorf("Expected boundary abc123, got %q", b)
	}

	if _, err := mpart.Boundary("application/json"); !errors.Is(err, mpart.ErrMalformed) {
		t.Errorf("Expected ErrMalformed for non-multipart type, got %v", err)
	}

	if _, err := mpart.Boundary("multipart/form-data"); !errors.Is(err, mpart.ErrMalformed) {
		t.Errorf("Expected ErrMalformed for missing boundary, got %v", err)
	}

	if _, err := mpart.Boundary(""); !errors.Is(err, mpart.ErrMalformed) {
		t.Errorf("Expected ErrMalformed for empty content type, got %v", err)
	}
}

// TestReaderSequence 测试按序读取文件与表单字段 part.
func TestReaderSequence(t *testing.T) {
	boundary, body := buildBody(t, []testPart{
		{field: "file", fileName: "photo.png", value: "binary-bytes"},
		{field: "display_name", value: "My Photo"},
		{field: "file", fileName: "doc.pdf", value: "pdf-bytes"},
	})

	r := mpart.NewReader(bytes.NewReader(body), boundary, int64(len(body)))

	p1, err := r.Next()
	if err != nil {
		t.Fatalf("Next() first part failed: %v", err)
	}

	if !p1.IsFile() || p1.FileName != "photo.png" {
		t.Errorf("Expected first part to be file photo.png, got %+v", p1)
	}

	content, err := io.ReadAll(p1.Body)
	if err != nil || string(content) != "binary-bytes" {
		t.Errorf("Expected file content binary-bytes, got %q (err %v)", content, err)
	}

	p2, err := r.Next()
	if err != nil {
		t.Fatalf("Next() second part failed: %v", err)
	}

	if p2.IsFile() || p2.FieldName != "display_name" {
		t.Errorf("Expected second part to be field display_name, got %+v", p2)
	}

	value, err := io.ReadAll(p2.Body)
	if err != nil || string(value) != "My Photo" {
		t.Errorf("Expected field value My Photo, got %q (err %v)", value, err)
	}

	p3, err := r.Next()
	if err != nil {
		t.Fatalf("Next() third part failed: %v", err)
	}

	if !p3.IsFile() || p3.FileName != "doc.pdf" {
		t.Errorf("Expected third part to be file doc.pdf, got %+v", p3)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF at end of sequence, got %v", err)
	}

	if r.Exceeded() {
		t.Error("Expected budget not exceeded for body within limit")
	}
}

// TestReaderSkipsUnreadBody 测试取下一个 part 时自动丢弃上一个 part 的剩余内容.
func TestReaderSkipsUnreadBody(t *testing.T) {
	boundary, body := buildBody(t, []testPart{
		{field: "file", fileName: "a.bin", value: strings.Repeat("x", 512)},
		{field: "description", value: "after"},
	})

	r := mpart.NewReader(bytes.NewReader(body), boundary, int64(len(body)))

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() first part failed: %v", err)
	}

	// 不读第一个 part 的内容，直接取第二个
	p2, err := r.Next()
	if err != nil {
		t.Fatalf("Next() second part failed: %v", err)
	}

	if p2.FieldName != "description" {
		t.Errorf("Expected field description, got %q", p2.FieldName)
	}
}

// TestReaderExactLimit 测试恰好等于预算的请求体不报错.
func TestReaderExactLimit(t *testing.T) {
	boundary, body := buildBody(t, []testPart{
		{field: "file", fileName: "a.bin", value: "payload"},
	})

	r := mpart.NewReader(bytes.NewReader(body), boundary, int64(len(body)))

	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			t.Fatalf("Next() failed at exact limit: %v", err)
		}

		if _, err := io.Copy(io.Discard, p.Body); err != nil {
			t.Fatalf("reading part at exact limit failed: %v", err)
		}
	}

	if r.Exceeded() {
		t.Error("Expected budget not exceeded when body equals limit")
	}
}

// TestReaderOverLimit 测试超出预算时返回 ErrTooLarge 而不是格式错误.
func TestReaderOverLimit(t *testing.T) {
	boundary, body := buildBody(t, []testPart{
		{field: "file", fileName: "big.bin", value: strings.Repeat("z", 4096)},
	})

	r := mpart.NewReader(bytes.NewReader(body), boundary, 64)

	var sawTooLarge bool

	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if !errors.Is(err, mpart.ErrTooLarge) {
				t.Fatalf("Expected ErrTooLarge, got %v", err)
			}

			sawTooLarge = true

			break
		}

		if _, err := io.Copy(io.Discard, p.Body); err != nil {
			if !errors.Is(err, mpart.ErrTooLarge) {
				t.Fatalf("Expected ErrTooLarge from part body, got %v", err)
			}

			sawTooLarge = true

			break
		}
	}

	if !sawTooLarge {
		t.Error("Expected ErrTooLarge for body over limit")
	}

	if !r.Exceeded() {
		t.Error("Expected Exceeded() to report true after budget breach")
	}
}

// TestReaderMalformed 测试无法解析的请求体返回 ErrMalformed.
func TestReaderMalformed(t *testing.T) {
	garbage := "this is not a multipart body at all"

	r := mpart.NewReader(strings.NewReader(garbage), "bound", int64(len(garbage)))

	_, err := r.Next()
	if !errors.Is(err, mpart.ErrMalformed) {
		t.Errorf("Expected ErrMalformed for garbage body, got %v", err)
	}
}

// TestReaderPartWithoutDisposition 测试缺少可用 content-disposition 的 part 被拒绝.
func TestReaderPartWithoutDisposition(t *testing.T) {
	body := "--bound\r\nContent-Type: text/plain\r\n\r\nhello\r\n--bound--\r\n"

	r := mpart.NewReader(strings.NewReader(body), "bound", int64(len(body)))

	_, err := r.Next()
	if !errors.Is(err, mpart.ErrMalformed) {
		t.Errorf("Expected ErrMalformed for part without disposition, got %v", err)
	}
}
