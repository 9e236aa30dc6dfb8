package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON 响应中找不到JSON对象
var ErrNoJSON = errors.New("no json object in response")

// DecodeJSON 解析模型返回的JSON，容忍代码块标记和前后说明文字
func DecodeJSON(content string, target any) error {
	cleaned := cleanJSONContent(content)
	if cleaned == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(cleaned[start:end+1]), target)
}

// cleanJSONContent 清理JSON内容中的代码块标记
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}

	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}
