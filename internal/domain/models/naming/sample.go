package naming

// SampleKind 内容样本类型
type SampleKind string

const (
	SampleText     SampleKind = "text"
	SampleImage    SampleKind = "image"
	SampleMetadata SampleKind = "metadata"
)

// ContentSample 发送给模型的有界内容样本
type ContentSample struct {
	Kind            SampleKind `json:"kind"`
	Text            string     `json:"text,omitempty"`
	Image           []byte     `json:"-"`
	MIMEType        string     `json:"mime_type,omitempty"`
	EstimatedTokens int        `json:"estimated_tokens"`
	Method          string     `json:"method"` // 提取方式标签，如 "text-head"、"thumbnail"、"metadata-only"
}

// HasImage 样本是否携带图片
func (s ContentSample) HasImage() bool {
	return s.Kind == SampleImage && len(s.Image) > 0
}
