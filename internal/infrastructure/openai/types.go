package openai

// ChatRequest Chat请求
type ChatRequest struct {
	Model          string          `json:"model"`                     // 模型名称
	Messages       []ChatMessage   `json:"messages"`                  // 消息列表
	Temperature    float32         `json:"temperature,omitempty"`     // 温度参数 (0-2)
	MaxTokens      int             `json:"max_tokens,omitempty"`      // 最大Token数
	TopP           float32         `json:"top_p,omitempty"`           // 核采样参数
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"` // 响应格式（JSON mode）
}

// ResponseFormat 响应格式配置
type ResponseFormat struct {
	Type string `json:"type"` // 类型: text 或 json_object
}

// ChatMessage 聊天消息
// Content 为纯文本字符串或 []ContentPart（携带图片时）
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart 多模态消息片段
type ContentPart struct {
	Type     string    `json:"type"` // text 或 image_url
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL 图片地址，可以是 data URL
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"` // low / high / auto
}

// ChatResponse Chat响应
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// ChatChoice 选择项
type ChatChoice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"` // stop, length, content_filter
}

// ResponseMessage 助手回复
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Refusal string `json:"refusal,omitempty"`
}

// Usage Token使用情况
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}
