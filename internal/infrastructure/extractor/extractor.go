package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/easayliu/smart-rename/internal/application/contracts"
)

const (
	DefaultMaxTextBytes  = 4096
	DefaultMaxImageBytes = 512 * 1024

	MethodTextHead = "text-head"
	MethodImageRaw = "image-raw"
)

// ErrTooLarge 图片超过可发送的上限
var ErrTooLarge = errors.New("content too large")

// textMIMEs 不以 text/ 开头但按文本处理的类型
var textMIMEs = map[string]struct{}{
	"application/json":       {},
	"application/xml":        {},
	"application/javascript": {},
	"application/x-sh":       {},
	"application/x-yaml":     {},
	"application/toml":       {},
	"application/x-subrip":   {},
}

// Extractor 默认内容提取器
// 文本类文件读取开头若干字节，图片在上限以内原样返回，其他格式不支持
type Extractor struct {
	maxTextBytes  int
	maxImageBytes int
}

// New 创建提取器，上限<=0时使用默认值
func New(maxTextBytes, maxImageBytes int) *Extractor {
	if maxTextBytes <= 0 {
		maxTextBytes = DefaultMaxTextBytes
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Extractor{maxTextBytes: maxTextBytes, maxImageBytes: maxImageBytes}
}

var _ contracts.ContentExtractor = (*Extractor)(nil)

// Extract 实现 contracts.ContentExtractor
func (e *Extractor) Extract(ctx context.Context, path string, formatHint string) (contracts.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return contracts.Extraction{}, err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return contracts.Extraction{}, fmt.Errorf("detect mime type: %w", err)
	}
	mime := mtype.String()
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])

	switch {
	case isText(mtype, base):
		text, err := readHead(path, e.maxTextBytes)
		if err != nil {
			return contracts.Extraction{}, err
		}
		return contracts.Extraction{Text: text, MIMEType: base, Method: MethodTextHead}, nil

	case strings.HasPrefix(base, "image/"):
		data, err := readImage(path, e.maxImageBytes)
		if err != nil {
			return contracts.Extraction{}, err
		}
		return contracts.Extraction{Image: data, MIMEType: base, Method: MethodImageRaw}, nil
	}

	return contracts.Extraction{}, fmt.Errorf("%w: %s (%s)", contracts.ErrUnsupportedFormat, base, formatHint)
}

func isText(mtype *mimetype.MIME, base string) bool {
	if strings.HasPrefix(base, "text/") {
		return true
	}
	if _, ok := textMIMEs[base]; ok {
		return true
	}
	for m := mtype.Parent(); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// readHead 读取前 limit 字节，去掉末尾被截断的UTF-8字符
func readHead(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, int64(limit)))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	for i := 0; i < utf8.UTFMax && len(buf) > 0 && !utf8.Valid(buf); i++ {
		buf = buf[:len(buf)-1]
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(buf), "")), nil
}

func readImage(path string, limit int) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > int64(limit) {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
