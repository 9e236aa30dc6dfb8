package pipeline

import (
	"errors"
	"strings"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// FallbackTextConfidence 模型未返回JSON时，按首行文本取名的置信度
const FallbackTextConfidence = 0.6

var errEmptyName = errors.New("model returned an empty name")

// modelAnswer 模型返回的JSON
type modelAnswer struct {
	Name       string   `json:"name"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Pattern    string   `json:"pattern,omitempty"`
}

// parseAnswer 解析模型输出，名称经过清洗并去掉扩展名
// 缺少 confidence 字段时按0处理
func parseAnswer(text, ext string) (naming.ConfidenceScore, error) {
	var answer modelAnswer
	if err := llm.DecodeJSON(text, &answer); err != nil {
		return naming.ConfidenceScore{}, err
	}

	name := cleanModelName(answer.Name, ext)
	if name == "" {
		return naming.ConfidenceScore{}, errEmptyName
	}
	confidence := 0.0
	if answer.Confidence != nil {
		confidence = *answer.Confidence
	}
	return naming.NewConfidenceScore(confidence, strings.TrimSpace(answer.Reasoning), name), nil
}

// fallbackAnswer 非JSON输出取首个非空行
func fallbackAnswer(text, ext string) (naming.ConfidenceScore, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`\"'")
		if line == "" {
			continue
		}
		name := cleanModelName(line, ext)
		if name == "" {
			return naming.ConfidenceScore{}, false
		}
		return naming.NewConfidenceScore(FallbackTextConfidence, "model returned plain text", name), true
	}
	return naming.ConfidenceScore{}, false
}

func cleanModelName(name, ext string) string {
	name = strings.TrimSpace(name)
	if ext != "" && strings.HasSuffix(strings.ToLower(name), ext) {
		name = name[:len(name)-len(ext)]
	}
	return strutil.SanitizeName(name)
}
