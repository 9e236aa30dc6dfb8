package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/easayliu/smart-rename/internal/application/services/invoker"
	"github.com/easayliu/smart-rename/internal/application/services/prompt"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
	"github.com/easayliu/smart-rename/pkg/logger"
	fileutil "github.com/easayliu/smart-rename/pkg/utils/file"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// run 单文件状态机：metadata -> cheap（可选）-> premium，首个满足条件的阶段即返回
func (p *Pipeline) run(ctx context.Context, desc naming.FileDescriptor) *naming.Result {
	result := &naming.Result{OriginalPath: desc.Path, Extension: desc.Ext()}
	if err := ctx.Err(); err != nil {
		return canceledResult(desc, err)
	}

	// 1. 元数据
	score := p.scorer.Score(desc)
	if p.cfg.Strategy.MetadataEnabled && score.Meets(p.cfg.Strategy.MetadataThreshold) {
		applyScore(result, score, naming.StageMetadata)
		return result
	}

	sample := p.sampler.Sample(ctx, desc, p.caps)
	pctx := p.promptContext(desc, sample, score)

	// 2. 低价模型
	if p.cfg.Strategy.CheapEnabled {
		answer, accepted, err := p.cheapStage(ctx, desc, pctx, len(sample.Text), result)
		if err != nil {
			result.Error = err.Error()
			result.Cost = CostOf(result.Usage, p.cfg.Pricing)
			return result
		}
		if accepted {
			applyScore(result, answer, naming.StageCheap)
			result.Cost = CostOf(result.Usage, p.cfg.Pricing)
			return result
		}
	}

	// 3. 高价模型，兜底阶段
	answer, err := p.premiumStage(ctx, desc, pctx, result)
	if err != nil {
		result.Error = err.Error()
	} else {
		applyScore(result, answer, naming.StagePremium)
	}
	result.Cost = CostOf(result.Usage, p.cfg.Pricing)
	return result
}

// cheapStage 返回 accepted=false 表示升级到高价模型
// 只有鉴权失败和取消是终止错误
func (p *Pipeline) cheapStage(ctx context.Context, desc naming.FileDescriptor, pctx prompt.Context, contentLen int, result *naming.Result) (naming.ConfidenceScore, bool, error) {
	mode := cheapMode(recommendMode(pctx.TypeClass, contentLen))

	spec, err := p.builder.Build(pctx, mode)
	if err != nil {
		logger.Warn("Build cheap prompt failed, escalating", "path", desc.Path, "error", err)
		return naming.ConfidenceScore{}, false, nil
	}

	resp, err := p.invoke(ctx, naming.StageCheap, p.cfg.CheapModel, spec, result)
	if err != nil {
		if errors.Is(err, invoker.ErrAuthFailure) || errors.Is(err, invoker.ErrCanceled) || ctx.Err() != nil {
			return naming.ConfidenceScore{}, false, err
		}
		logger.Warn("Cheap model failed, escalating", "path", desc.Path, "error", err)
		return naming.ConfidenceScore{}, false, nil
	}

	answer, err := parseAnswer(resp.Text, desc.Ext())
	if err != nil {
		logger.Debug("Cheap model answer unusable, escalating", "path", desc.Path, "error", err)
		return naming.ConfidenceScore{}, false, nil
	}
	if !answer.Meets(p.cfg.Strategy.CheapThreshold) {
		logger.Debug("Cheap model confidence too low, escalating",
			"path", desc.Path,
			"confidence", answer.Value,
			"threshold", p.cfg.Strategy.CheapThreshold)
		return answer, false, nil
	}
	return answer, true, nil
}

// premiumStage 高价模型的结果无论置信度都会被采用
func (p *Pipeline) premiumStage(ctx context.Context, desc naming.FileDescriptor, pctx prompt.Context, result *naming.Result) (naming.ConfidenceScore, error) {
	spec, err := p.builder.Build(pctx, naming.PromptStandard)
	if err != nil {
		return naming.ConfidenceScore{}, fmt.Errorf("build premium prompt: %w", err)
	}

	resp, err := p.invoke(ctx, naming.StagePremium, p.cfg.PremiumModel, spec, result)
	if err != nil {
		return naming.ConfidenceScore{}, err
	}

	answer, err := parseAnswer(resp.Text, desc.Ext())
	if err == nil {
		return answer, nil
	}
	if fallback, ok := fallbackAnswer(resp.Text, desc.Ext()); ok {
		logger.Debug("Premium answer was not JSON, using first line", "path", desc.Path)
		return fallback, nil
	}
	return naming.ConfidenceScore{}, fmt.Errorf("premium model returned no usable name: %w", err)
}

// invoke 调用生成服务并记录阶段用量
// 服务未返回用量时按提示词和输出长度估算
func (p *Pipeline) invoke(ctx context.Context, stage naming.Stage, model string, spec naming.PromptSpec, result *naming.Result) (*llm.Response, error) {
	req := llm.Request{
		Model:       model,
		System:      spec.System,
		User:        spec.User,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		JSON:        p.caps.JSONMode,
	}
	if p.caps.Vision {
		for _, img := range spec.Images {
			req.Images = append(req.Images, llm.Image{MIMEType: img.MIMEType, Data: img.Data})
		}
	}

	resp, err := p.gen.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	usage := naming.StageUsage{
		Stage:            stage,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.PromptTokens = spec.EstimatedTokens
		usage.CompletionTokens = prompt.EstimateTokens(resp.Text)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	result.AddUsage(usage)
	return resp, nil
}

// promptContext 组装提示词上下文，元数据阶段的猜测作为提示
func (p *Pipeline) promptContext(desc naming.FileDescriptor, sample naming.ContentSample, score naming.ConfidenceScore) prompt.Context {
	pctx := prompt.Context{
		FileName:  desc.Name(),
		TypeClass: string(fileutil.ClassOf(desc.Name())),
		Metadata: []prompt.MetadataField{
			{Key: "size", Value: strutil.FormatFileSize(desc.Size)},
		},
	}
	if sample.Kind != naming.SampleMetadata {
		pctx.Content = sample.Text
	}
	if sample.HasImage() {
		pctx.Images = []naming.ImageAttachment{{MIMEType: sample.MIMEType, Data: sample.Image}}
	}
	if score.SuggestedName != "" {
		pctx.Hints = append(pctx.Hints, "metadata guess "+score.SuggestedName)
	}

	if !desc.ModTime.IsZero() {
		pctx.Metadata = append(pctx.Metadata, prompt.MetadataField{Key: "modified", Value: desc.ModTime.Format("2006-01-02")})
	}
	if desc.EXIF.HasCaptureTime() {
		pctx.Metadata = append(pctx.Metadata, prompt.MetadataField{Key: "captured", Value: desc.EXIF.CaptureTime.Format("2006-01-02 15:04")})
	}
	if camera := desc.EXIF.Camera(); camera != "" {
		pctx.Metadata = append(pctx.Metadata, prompt.MetadataField{Key: "camera", Value: camera})
	}
	if desc.EXIF != nil && desc.EXIF.Description != "" {
		pctx.Metadata = append(pctx.Metadata, prompt.MetadataField{Key: "description", Value: desc.EXIF.Description})
	}
	return pctx
}

func recommendMode(typeClass string, contentLen int) naming.PromptMode {
	return prompt.RecommendMode(typeClass, contentLen)
}

// cheapMode 低价模型不使用 standard 档位
func cheapMode(mode naming.PromptMode) naming.PromptMode {
	if mode == naming.PromptStandard {
		return naming.PromptMinimal
	}
	return mode
}

func applyScore(result *naming.Result, score naming.ConfidenceScore, stage naming.Stage) {
	result.SuggestedName = score.SuggestedName
	result.Confidence = score.Value
	result.Reasoning = score.Reasoning
	result.Stage = stage
}
