package naming

// Stage 流水线阶段
type Stage string

const (
	StageMetadata Stage = "metadata"
	StageCheap    Stage = "cheap"
	StagePremium  Stage = "premium"
	StagePattern  Stage = "pattern"
)

// StageUsage 单个阶段的token用量
type StageUsage struct {
	Stage            Stage  `json:"stage"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Result 单个文件的命名结果
type Result struct {
	OriginalPath  string       `json:"original_path"`
	SuggestedName string       `json:"suggested_name,omitempty"` // 不含扩展名，空表示无建议
	Extension     string       `json:"extension,omitempty"`
	Confidence    float64      `json:"confidence"`
	Stage         Stage        `json:"stage,omitempty"`
	TokensUsed    int          `json:"tokens_used"`
	Cost          float64      `json:"cost"`
	Reasoning     string       `json:"reasoning,omitempty"`
	Usage         []StageUsage `json:"usage,omitempty"`
	Error         string       `json:"error,omitempty"`
	GroupID       string       `json:"group_id,omitempty"`
}

// Succeeded 是否得到了可用的建议名
func (r *Result) Succeeded() bool {
	return r != nil && r.Error == "" && r.SuggestedName != ""
}

// SuggestedFileName 建议名 + 原扩展名，供调用方执行重命名
func (r *Result) SuggestedFileName() string {
	if r == nil || r.SuggestedName == "" {
		return ""
	}
	return r.SuggestedName + r.Extension
}

// AddUsage 追加阶段用量并累计token
func (r *Result) AddUsage(u StageUsage) {
	r.Usage = append(r.Usage, u)
	r.TokensUsed += u.TotalTokens
}

// Clone 深拷贝，缓存读写都经过它
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Usage != nil {
		cp.Usage = make([]StageUsage, len(r.Usage))
		copy(cp.Usage, r.Usage)
	}
	return &cp
}
