package grouping

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/easayliu/smart-rename/pkg/utils"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// 模板占位符
const (
	PlaceholderNumber = "[n]"
	PlaceholderDate   = "[date]"
)

// ExtractPattern 从代表文件的建议名中提取模板
//   - 末尾 >=3 位数字替换为 [n]
//   - 否则文件名中的 YYYY[-_]?MM[-_]?DD 替换为 [date]
//   - 否则追加 _[n]
func ExtractPattern(name string) string {
	if loc := strutil.TrailingDigitsPattern.FindStringIndex(name); loc != nil {
		return name[:loc[0]] + PlaceholderNumber
	}
	if loc := strutil.PatternDatePattern.FindStringIndex(name); loc != nil {
		return name[:loc[0]] + PlaceholderDate + name[loc[1]:]
	}
	return name + "_" + PlaceholderNumber
}

// ApplyPattern 为第 siblingIndex 个兄弟文件生成名字
// [n] 替换为 siblingIndex+2（代表文件占用 001），至少3位补零
// [date] 优先使用兄弟文件自身文件名里的日期，否则使用当前日期
func (g *Grouper) ApplyPattern(pattern string, siblingIndex int, originalName string) string {
	result := pattern
	if strings.Contains(result, PlaceholderNumber) {
		result = strings.Replace(result, PlaceholderNumber, fmt.Sprintf("%03d", siblingIndex+2), 1)
	}
	if strings.Contains(result, PlaceholderDate) {
		result = strings.Replace(result, PlaceholderDate, g.siblingDate(originalName), 1)
	}
	return result
}

func (g *Grouper) siblingDate(originalName string) string {
	stem := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	if d, ok := utils.ParseDateWith(strutil.PatternDatePattern, stem); ok {
		return utils.FormatNameDate(d)
	}
	return utils.FormatNameDate(g.now())
}

// Describe 模板的自然语言描述，用于批量模板提示词
func Describe(pattern string) string {
	var parts []string
	if strings.Contains(pattern, PlaceholderNumber) {
		parts = append(parts, PlaceholderNumber+" is a zero-padded sequence number")
	}
	if strings.Contains(pattern, PlaceholderDate) {
		parts = append(parts, PlaceholderDate+" is a YYYY_MM_DD date")
	}
	if len(parts) == 0 {
		return pattern
	}
	return pattern + " (" + strings.Join(parts, "; ") + ")"
}
