package pipeline

import (
	"context"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/domain/services/grouping"
)

// FileEstimate 单个文件的离线预估，只计算提示词token
type FileEstimate struct {
	Path               string            `json:"path"`
	MetadataName       string            `json:"metadata_name,omitempty"`
	MetadataConfidence float64           `json:"metadata_confidence"`
	MetadataSufficient bool              `json:"metadata_sufficient"`
	RecommendedMode    naming.PromptMode `json:"recommended_mode"`
	CheapTokens        int               `json:"cheap_tokens"`
	PremiumTokens      int               `json:"premium_tokens"`
}

// WorstCaseTokens 元数据不足且低价模型未通过时的提示词token
func (f FileEstimate) WorstCaseTokens() int {
	if f.MetadataSufficient {
		return 0
	}
	return f.CheapTokens + f.PremiumTokens
}

// GroupEstimate 一个分组的预估
type GroupEstimate struct {
	GroupID            string         `json:"group_id"`
	Pattern            string         `json:"pattern,omitempty"`
	Representative     FileEstimate   `json:"representative"`
	Siblings           []FileEstimate `json:"siblings,omitempty"`
	BatchPatternTokens int            `json:"batch_pattern_tokens,omitempty"`
}

// BatchEstimate 整批预估
//   - BestCaseTokens: 只有代表文件调用模型（模板全部可信）
//   - WorstCaseTokens: 每个文件都走到高价模型
type BatchEstimate struct {
	Files           int             `json:"files"`
	MetadataOnly    int             `json:"metadata_only"`
	Groups          []GroupEstimate `json:"groups"`
	BestCaseTokens  int             `json:"best_case_tokens"`
	WorstCaseTokens int             `json:"worst_case_tokens"`
	WorstCaseCost   float64         `json:"worst_case_cost"`
}

// Estimate 离线预估批处理开销，不调用任何服务商
func (p *Pipeline) Estimate(ctx context.Context, files []naming.FileDescriptor) BatchEstimate {
	est := BatchEstimate{Files: len(files)}
	if len(files) == 0 {
		return est
	}

	var cheapTokens, premiumTokens int
	account := func(f FileEstimate) {
		if f.MetadataSufficient {
			est.MetadataOnly++
			return
		}
		cheapTokens += f.CheapTokens
		premiumTokens += f.PremiumTokens
	}

	for _, group := range p.grouper.Group(files) {
		rep := p.estimateFile(ctx, group.Representative)
		account(rep)
		est.BestCaseTokens += rep.WorstCaseTokens()

		g := GroupEstimate{GroupID: group.ID, Representative: rep}
		if group.HasSiblings() {
			// 模板来自代表文件的名字，这里用元数据建议名预估
			g.Pattern = grouping.ExtractPattern(rep.MetadataName)
			names := make([]string, 0, len(group.Siblings))
			for _, s := range group.Siblings {
				sib := p.estimateFile(ctx, s)
				account(sib)
				g.Siblings = append(g.Siblings, sib)
				names = append(names, s.Name())
			}

			sample := p.sampler.Sample(ctx, group.Representative, p.caps)
			pctx := p.promptContext(group.Representative, sample, p.scorer.Score(group.Representative))
			if spec, err := p.builder.BuildBatchPattern(pctx, g.Pattern, names); err == nil {
				g.BatchPatternTokens = spec.EstimatedTokens
			}
		}
		est.Groups = append(est.Groups, g)
	}

	est.WorstCaseTokens = cheapTokens + premiumTokens
	est.WorstCaseCost = float64(cheapTokens)*p.cfg.Pricing[p.cfg.CheapModel]/1000 +
		float64(premiumTokens)*p.cfg.Pricing[p.cfg.PremiumModel]/1000
	return est
}

func (p *Pipeline) estimateFile(ctx context.Context, desc naming.FileDescriptor) FileEstimate {
	score := p.scorer.Score(desc)
	f := FileEstimate{
		Path:               desc.Path,
		MetadataName:       score.SuggestedName,
		MetadataConfidence: score.Value,
		MetadataSufficient: p.cfg.Strategy.MetadataEnabled && score.Meets(p.cfg.Strategy.MetadataThreshold),
	}

	sample := p.sampler.Sample(ctx, desc, p.caps)
	pctx := p.promptContext(desc, sample, score)
	f.RecommendedMode = recommendMode(pctx.TypeClass, len(sample.Text))

	if p.cfg.Strategy.CheapEnabled {
		if spec, err := p.builder.Build(pctx, cheapMode(f.RecommendedMode)); err == nil {
			f.CheapTokens = spec.EstimatedTokens
		}
	}
	if spec, err := p.builder.Build(pctx, naming.PromptStandard); err == nil {
		f.PremiumTokens = spec.EstimatedTokens
	}
	return f
}
