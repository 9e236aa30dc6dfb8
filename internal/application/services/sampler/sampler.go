package sampler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/prompt"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
	"github.com/easayliu/smart-rename/pkg/logger"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

const (
	DefaultMaxTextBytes  = 4096
	DefaultMaxImageBytes = 512 * 1024

	MethodMetadataOnly = "metadata-only"
)

// Config 采样上限
type Config struct {
	MaxTextBytes  int
	MaxImageBytes int
}

// Sampler 把提取结果约束为有界样本，任何提取失败都降级为仅元数据样本
type Sampler struct {
	extractor contracts.ContentExtractor
	cfg       Config
}

// New 创建采样器，extractor 为nil时总是返回仅元数据样本
func New(extractor contracts.ContentExtractor, cfg Config) *Sampler {
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = DefaultMaxTextBytes
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	return &Sampler{extractor: extractor, cfg: cfg}
}

// Sample 为文件生成内容样本
// 图片仅在服务支持视觉输入且未超过两侧上限时保留
func (s *Sampler) Sample(ctx context.Context, desc naming.FileDescriptor, caps llm.Capabilities) naming.ContentSample {
	if s.extractor == nil {
		return MetadataSample(desc)
	}

	ext, err := s.extractor.Extract(ctx, desc.Path, desc.Ext())
	if err != nil {
		level := logger.Warn
		if errors.Is(err, contracts.ErrUnsupportedFormat) || errors.Is(err, context.Canceled) {
			level = logger.Debug
		}
		level("Content extraction failed, using metadata only", "path", desc.Path, "error", err)
		return MetadataSample(desc)
	}

	if len(ext.Image) > 0 {
		if !caps.Vision || len(ext.Image) > s.imageLimit(caps) {
			logger.Debug("Image not sent to provider", "path", desc.Path, "bytes", len(ext.Image), "vision", caps.Vision)
			return MetadataSample(desc)
		}
		return naming.ContentSample{
			Kind:            naming.SampleImage,
			Image:           ext.Image,
			MIMEType:        ext.MIMEType,
			EstimatedTokens: prompt.ImageTokenEstimate,
			Method:          ext.Method,
		}
	}

	text := strings.TrimSpace(truncateBytes(ext.Text, s.cfg.MaxTextBytes))
	if text == "" {
		return MetadataSample(desc)
	}
	return naming.ContentSample{
		Kind:            naming.SampleText,
		Text:            text,
		MIMEType:        ext.MIMEType,
		EstimatedTokens: prompt.EstimateTokens(text),
		Method:          ext.Method,
	}
}

func (s *Sampler) imageLimit(caps llm.Capabilities) int {
	if caps.MaxImageBytes > 0 && caps.MaxImageBytes < s.cfg.MaxImageBytes {
		return caps.MaxImageBytes
	}
	return s.cfg.MaxImageBytes
}

// MetadataSample 仅由文件元数据组成的样本
func MetadataSample(desc naming.FileDescriptor) naming.ContentSample {
	parts := []string{
		"name: " + desc.Name(),
		"size: " + strutil.FormatFileSize(desc.Size),
	}
	if !desc.ModTime.IsZero() {
		parts = append(parts, "modified: "+desc.ModTime.Format("2006-01-02 15:04"))
	}
	if desc.EXIF.HasCaptureTime() {
		parts = append(parts, "captured: "+desc.EXIF.CaptureTime.Format("2006-01-02 15:04"))
	}
	if camera := desc.EXIF.Camera(); camera != "" {
		parts = append(parts, "camera: "+camera)
	}
	if desc.EXIF != nil && desc.EXIF.HasGPS {
		parts = append(parts, fmt.Sprintf("gps: %.4f,%.4f", desc.EXIF.Latitude, desc.EXIF.Longitude))
	}
	text := strings.Join(parts, "\n")
	return naming.ContentSample{
		Kind:            naming.SampleMetadata,
		Text:            text,
		EstimatedTokens: prompt.EstimateTokens(text),
		Method:          MethodMetadataOnly,
	}
}

// truncateBytes 按字节上限截断，不拆分UTF-8字符
func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
