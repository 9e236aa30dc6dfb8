package strutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength 生成文件名的最大字符数（不含扩展名）
const MaxNameLength = 80

// FoldAccents 去掉变音符号：Café -> Cafe
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// SanitizeName 规范化为 snake_case 文件名
// 只保留字母和数字，其他字符折叠为单个下划线，结果小写并截断到 MaxNameLength
func SanitizeName(name string) string {
	if name == "" {
		return ""
	}

	cleaned := FoldAccents(strings.TrimSpace(name))
	cleaned = CamelBoundaryPattern.ReplaceAllString(cleaned, "${1}_${2}")
	cleaned = strings.ToLower(cleaned)
	cleaned = NonWordPattern.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")

	return truncateAtSeparator(cleaned, MaxNameLength)
}

// Tokenize 把文件名拆成小写单词
func Tokenize(name string) []string {
	cleaned := SanitizeName(name)
	if cleaned == "" {
		return nil
	}
	return strings.Split(cleaned, "_")
}

// DescriptiveTokens 提取有描述意义的单词
// 去掉日期、时间、长数字串、相机前缀、常见无意义词和单字符
func DescriptiveTokens(stem string) []string {
	stripped := DatePattern.ReplaceAllString(stem, " ")
	stripped = ScreenshotPattern.ReplaceAllString(stripped, " ")

	var tokens []string
	for _, tok := range Tokenize(stripped) {
		if !isDescriptive(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isDescriptive(tok string) bool {
	if len([]rune(tok)) < 2 && !containsHan(tok) {
		return false
	}
	if isAllDigits(tok) {
		return false
	}
	if DigitRunPattern.MatchString(tok) && strings.Trim(tok, "0123456789") == "" {
		return false
	}
	if _, ok := CameraPrefixes[tok]; ok {
		return false
	}
	if _, ok := GenericWords[tok]; ok {
		return false
	}
	return true
}

// TrailingSequence 提取文件名末尾的序号，日期的一部分不算
func TrailingSequence(stem string) string {
	m := SequencePattern.FindStringSubmatchIndex(stem)
	if m == nil {
		return ""
	}
	start, end := m[2], m[3]
	for _, loc := range DatePattern.FindAllStringIndex(stem, -1) {
		if start < loc[1] && end > loc[0] {
			return ""
		}
	}
	return stem[start:end]
}

func truncateAtSeparator(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	cut := string(r[:max])
	if idx := strings.LastIndex(cut, "_"); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.Trim(cut, "_")
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
