package naming

// PromptMode 提示词档位
type PromptMode string

const (
	PromptUltraMinimal PromptMode = "ultra-minimal"
	PromptMinimal      PromptMode = "minimal"
	PromptStandard     PromptMode = "standard"
	PromptBatchPattern PromptMode = "batch-pattern"
)

// ImageAttachment 随提示词发送的图片
type ImageAttachment struct {
	MIMEType string
	Data     []byte
}

// PromptSpec 构造完成的提示词
type PromptSpec struct {
	System          string            `json:"system"`
	User            string            `json:"user"`
	EstimatedTokens int               `json:"estimated_tokens"`
	Mode            PromptMode        `json:"mode"`
	Images          []ImageAttachment `json:"-"`
}
