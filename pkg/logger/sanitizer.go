package logger

import (
	"regexp"
	"strings"
)

// sensitiveKeys 需要脱敏的字段关键字（子串匹配，大小写不敏感）
var sensitiveKeys = []string{
	"token",
	"password",
	"passwd",
	"pwd",
	"secret",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"auth",
}

// counterKeyMarkers 计数类字段（如tokens_used、token_count）不是凭据，保持原值
var counterKeyMarkers = []string{
	"tokens",
	"token_count",
	"token_estimate",
	"tokencount",
	"tokenestimate",
}

// stringPatterns 消息正文中的敏感片段
var stringPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer ***TOKEN***"},
	{regexp.MustCompile(`\bsk-[A-Za-z0-9\-_]{8,}`), "sk-***"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*[A-Za-z0-9\-_]+`), "${1}=***"},
	{regexp.MustCompile(`(?i)(token)\s*[:=]\s*[A-Za-z0-9\-._~+/]+`), "${1}=***"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*[^\s,}\]"']+`), "${1}=***"},
}

// MaskToken 脱敏token字符串
// 规则:
//   - 空字符串返回空
//   - 长度<8: 返回 "***"
//   - 长度>=8: 保留前4后4,中间用星号替换
func MaskToken(token string) string {
	if token == "" {
		return ""
	}

	length := len(token)
	if length < 8 {
		return "***"
	}

	return token[:4] + strings.Repeat("*", length-8) + token[length-4:]
}

// sanitizeValue 根据键名判断是否需要脱敏
func sanitizeValue(key string, value interface{}) interface{} {
	if !IsSensitiveKey(key) {
		return value
	}
	if strVal, ok := value.(string); ok {
		return MaskToken(strVal)
	}
	return "***MASKED***"
}

// SanitizeArgs 批量脱敏slog日志参数
// slog使用键值对格式: key1, value1, key2, value2, ...
func SanitizeArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	for i := 0; i < len(args); i += 2 {
		result[i] = args[i]
		if i+1 >= len(args) {
			break
		}
		if key, ok := args[i].(string); ok {
			result[i+1] = sanitizeValue(key, args[i+1])
		} else {
			result[i+1] = args[i+1]
		}
	}
	return result
}

// SanitizeString 脱敏字符串中可能包含的敏感信息
// 用于脱敏完整的字符串内容，例如provider返回的错误正文
func SanitizeString(s string) string {
	if s == "" {
		return s
	}
	result := s
	for _, p := range stringPatterns {
		result = p.re.ReplaceAllString(result, p.replacement)
	}
	return result
}

// IsSensitiveKey 判断键名是否为敏感字段
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, marker := range counterKeyMarkers {
		if strings.Contains(keyLower, marker) {
			return false
		}
	}
	for _, sk := range sensitiveKeys {
		if strings.Contains(keyLower, sk) {
			return true
		}
	}
	return false
}
