package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	fileutil "github.com/easayliu/smart-rename/pkg/utils/file"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// 各档位内容截断长度（字符数）
const (
	UltraMinimalContentLimit = 30
	MinimalContentLimit      = 100
	StandardContentLimit     = 500

	// ShortContentThreshold 短文档走 ultra-minimal
	ShortContentThreshold = 200
	// LongContentThreshold 长内容走 standard
	LongContentThreshold = 1000

	// ImageTokenEstimate 每张图片按低分辨率估算的token数
	ImageTokenEstimate = 85

	maxSiblingsInPrompt = 10
)

// ErrUnknownMode 未注册的提示词档位
var ErrUnknownMode = errors.New("unknown prompt mode")

// MetadataField 提示词中的元数据条目，按给定顺序渲染
type MetadataField struct {
	Key   string
	Value string
}

// Context 构建提示词所需的文件上下文
type Context struct {
	FileName  string
	TypeClass string
	Content   string
	Hints     []string
	Metadata  []MetadataField
	Images    []naming.ImageAttachment
}

// templateData 模板渲染数据，Content 已按档位截断
type templateData struct {
	Context
	Content   string
	Pattern   string
	Siblings  []string
	MoreCount int
}

type modeTemplates struct {
	system *template.Template
	user   *template.Template
	limit  int
	images bool
}

// Builder 分档位的提示词构建器
type Builder struct {
	modes map[naming.PromptMode]modeTemplates
}

// NewBuilder 创建提示词构建器并注册默认模板
func NewBuilder() *Builder {
	b := &Builder{modes: make(map[naming.PromptMode]modeTemplates)}
	b.mustRegister(naming.PromptUltraMinimal, ultraMinimalSystem, ultraMinimalUser, UltraMinimalContentLimit, false)
	b.mustRegister(naming.PromptMinimal, minimalSystem, minimalUser, MinimalContentLimit, true)
	b.mustRegister(naming.PromptStandard, standardSystem, standardUser, StandardContentLimit, true)
	b.mustRegister(naming.PromptBatchPattern, batchPatternSystem, batchPatternUser, MinimalContentLimit, true)
	return b
}

// Register 注册或覆盖某个档位的模板
func (b *Builder) Register(mode naming.PromptMode, system, user string, contentLimit int, images bool) error {
	sys, err := template.New(string(mode) + "_system").Parse(system)
	if err != nil {
		return fmt.Errorf("parse system template: %w", err)
	}
	usr, err := template.New(string(mode) + "_user").Parse(user)
	if err != nil {
		return fmt.Errorf("parse user template: %w", err)
	}
	b.modes[mode] = modeTemplates{system: sys, user: usr, limit: contentLimit, images: images}
	return nil
}

func (b *Builder) mustRegister(mode naming.PromptMode, system, user string, limit int, images bool) {
	if err := b.Register(mode, system, user, limit, images); err != nil {
		panic(err)
	}
}

// Build 按档位构建提示词
func (b *Builder) Build(ctx Context, mode naming.PromptMode) (naming.PromptSpec, error) {
	return b.render(mode, templateData{Context: ctx})
}

// BuildBatchPattern 构建"一个代表文件 + 模板描述"的批量提示词
// 用于模板不可信时，让模型一次性确认整组的命名方式
func (b *Builder) BuildBatchPattern(rep Context, pattern string, siblings []string) (naming.PromptSpec, error) {
	data := templateData{Context: rep, Pattern: pattern}
	if len(siblings) > maxSiblingsInPrompt {
		data.Siblings = siblings[:maxSiblingsInPrompt]
		data.MoreCount = len(siblings) - maxSiblingsInPrompt
	} else {
		data.Siblings = siblings
	}
	return b.render(naming.PromptBatchPattern, data)
}

func (b *Builder) render(mode naming.PromptMode, data templateData) (naming.PromptSpec, error) {
	tmpl, ok := b.modes[mode]
	if !ok {
		return naming.PromptSpec{}, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	data.Content = strings.TrimSpace(strutil.Truncate(data.Context.Content, tmpl.limit))

	var sys, usr bytes.Buffer
	if err := tmpl.system.Execute(&sys, data); err != nil {
		return naming.PromptSpec{}, fmt.Errorf("execute system template: %w", err)
	}
	if err := tmpl.user.Execute(&usr, data); err != nil {
		return naming.PromptSpec{}, fmt.Errorf("execute user template: %w", err)
	}

	spec := naming.PromptSpec{
		System: strings.TrimSpace(sys.String()),
		User:   strings.TrimSpace(usr.String()),
		Mode:   mode,
	}
	if tmpl.images && len(data.Images) > 0 {
		spec.Images = data.Images
	}
	spec.EstimatedTokens = EstimateTokens(spec.System+spec.User) + len(spec.Images)*ImageTokenEstimate
	return spec, nil
}

// RecommendMode 建议的提示词档位，仅供参考，调用方可覆盖
//   - 短文档 -> ultra-minimal
//   - 视频或长内容 -> standard
//   - 其他 -> minimal
func RecommendMode(typeClass string, contentLen int) naming.PromptMode {
	switch {
	case typeClass == string(fileutil.ClassDocument) && contentLen < ShortContentThreshold:
		return naming.PromptUltraMinimal
	case typeClass == string(fileutil.ClassVideo) || contentLen > LongContentThreshold:
		return naming.PromptStandard
	default:
		return naming.PromptMinimal
	}
}

// EstimateTokens 按 ceil(字符数/4) 估算token数
// 这是近似值，不等于服务商的计费数
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + 3) / 4
}
