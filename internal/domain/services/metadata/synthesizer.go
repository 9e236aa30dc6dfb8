package metadata

import (
	"strings"
	"time"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/pkg/utils"
	fileutil "github.com/easayliu/smart-rename/pkg/utils/file"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// FallbackName 无法生成任何名字时使用
const FallbackName = "file"

// typeHints 没有描述词时追加的类型提示
var typeHints = map[fileutil.TypeClass]string{
	fileutil.ClassImage:    "photo",
	fileutil.ClassVideo:    "video",
	fileutil.ClassAudio:    "audio",
	fileutil.ClassDocument: "document",
	fileutil.ClassArchive:  "archive",
	fileutil.ClassCode:     "code",
}

// Synthesize 仅根据元数据生成建议名（不含扩展名）
func Synthesize(desc naming.FileDescriptor) string {
	stem := desc.Stem()
	if strutil.ScreenshotPattern.MatchString(stem) {
		return screenshotName(desc, stem)
	}

	date := namingDate(desc, stem)
	tokens := strutil.DescriptiveTokens(stem)
	if len(tokens) == 0 && desc.EXIF != nil && desc.EXIF.Description != "" {
		tokens = strutil.DescriptiveTokens(desc.EXIF.Description)
	}

	if date.IsZero() {
		if len(tokens) > 0 {
			return joinName(tokens, strutil.TrailingSequence(stem))
		}
		return fallbackName(stem)
	}

	parts := []string{utils.FormatNameDate(date)}
	if len(tokens) > 0 {
		parts = append(parts, tokens...)
	} else if hint, ok := typeHints[fileutil.ClassOf(desc.Path)]; ok {
		parts = append(parts, hint)
	}
	return joinName(parts, strutil.TrailingSequence(stem))
}

func screenshotName(desc naming.FileDescriptor, stem string) string {
	date, ok := utils.ParseNameDate(stem)
	if !ok {
		date = desc.BestTime()
	}

	name := "screenshot"
	if !date.IsZero() {
		name += "_" + utils.FormatNameDate(date)
	}
	if clock, ok := utils.ParseNameClock(stem); ok {
		name += "_" + clock.String()
	}
	return name
}

// namingDate 优先EXIF拍摄时间，其次文件名中的日期，最后修改时间
func namingDate(desc naming.FileDescriptor, stem string) time.Time {
	if desc.EXIF.HasCaptureTime() {
		return *desc.EXIF.CaptureTime
	}
	if d, ok := utils.ParseNameDate(stem); ok {
		return d
	}
	return desc.ModTime
}

func joinName(parts []string, sequence string) string {
	if sequence != "" {
		parts = append(parts, sequence)
	}
	name := strutil.SanitizeName(strings.Join(parts, "_"))
	if name == "" {
		return FallbackName
	}
	return name
}

func fallbackName(stem string) string {
	if cleaned := strutil.SanitizeName(stem); cleaned != "" {
		return cleaned
	}
	return FallbackName
}
