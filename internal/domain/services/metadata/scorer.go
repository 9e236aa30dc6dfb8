package metadata

import (
	"fmt"
	"strings"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/pkg/utils"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// 规则得分，按优先级排列
const (
	ScoreScreenshot    = 0.95
	ScoreGPSAndDate    = 0.90
	ScoreDateAndTokens = 0.80
	ScoreDateOnly      = 0.65
	ScoreTokensAndDate = 0.60
	ScoreTokensOnly    = 0.50
	ScoreInsufficient  = 0.30
)

// Signals 从文件描述中提取的命名线索
type Signals struct {
	Screenshot  bool
	NameDate    bool
	CaptureDate bool
	GPS         bool
	Tokens      []string
}

// Scorer 只依赖文件系统和EXIF信息的置信度评分器，不访问网络
type Scorer struct{}

// NewScorer 创建评分器
func NewScorer() *Scorer {
	return &Scorer{}
}

// Signals 提取命名线索
func (s *Scorer) Signals(desc naming.FileDescriptor) Signals {
	stem := desc.Stem()
	_, hasNameDate := utils.ParseNameDate(stem)
	return Signals{
		Screenshot:  strutil.ScreenshotPattern.MatchString(stem),
		NameDate:    hasNameDate,
		CaptureDate: desc.EXIF.HasCaptureTime(),
		GPS:         desc.EXIF != nil && desc.EXIF.HasGPS,
		Tokens:      strutil.DescriptiveTokens(stem),
	}
}

// Score 按优先级规则评分，首个命中的规则生效
// 建议名总是会生成，是否采用由调用方根据阈值决定
func (s *Scorer) Score(desc naming.FileDescriptor) naming.ConfidenceScore {
	sig := s.Signals(desc)
	value, reasoning := evaluate(sig)
	return naming.NewConfidenceScore(value, reasoning, Synthesize(desc))
}

func evaluate(sig Signals) (float64, string) {
	hasTokens := len(sig.Tokens) > 0

	switch {
	case sig.Screenshot && sig.NameDate:
		return ScoreScreenshot, "screenshot name with embedded date"
	case sig.GPS && sig.CaptureDate:
		return ScoreGPSAndDate, "EXIF GPS location and capture date"
	case sig.CaptureDate && hasTokens:
		return ScoreDateAndTokens, fmt.Sprintf("EXIF capture date and descriptive name (%s)", strings.Join(sig.Tokens, ", "))
	case sig.CaptureDate:
		return ScoreDateOnly, "EXIF capture date only"
	case hasTokens && sig.NameDate:
		return ScoreTokensAndDate, fmt.Sprintf("descriptive name (%s) with date", strings.Join(sig.Tokens, ", "))
	case hasTokens:
		return ScoreTokensOnly, fmt.Sprintf("descriptive name (%s)", strings.Join(sig.Tokens, ", "))
	default:
		return ScoreInsufficient, "insufficient metadata"
	}
}
