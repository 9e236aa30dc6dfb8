package llm

import "context"

// DisabledService LLM关闭时使用，所有调用直接返回 ErrDisabled
type DisabledService struct{}

// NewDisabledService 创建禁用的服务
func NewDisabledService() *DisabledService {
	return &DisabledService{}
}

func (s *DisabledService) Generate(ctx context.Context, req Request) (*Response, error) {
	return nil, ErrDisabled
}

func (s *DisabledService) Capabilities() Capabilities {
	return Capabilities{Provider: "disabled"}
}
