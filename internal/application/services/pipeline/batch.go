package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/easayliu/smart-rename/internal/application/services/events"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/domain/services/grouping"
	"github.com/easayliu/smart-rename/pkg/logger"
)

type (
	sourceKey struct{}
	pathKey   struct{}
)

// WithSource 标记批处理来源（api、scheduler、cli），随完成事件发布
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok {
		return s
	}
	return "api"
}

// WithScanPath 标记批处理对应的扫描目录
func WithScanPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey{}, path)
}

func scanPathFrom(ctx context.Context) string {
	s, _ := ctx.Value(pathKey{}).(string)
	return s
}

// ProcessBatch 批量处理
//  1. 分组，每组代表文件走完整流水线（并发受限）
//  2. 代表结果可信时，同组其他文件按模板命名，不消耗token
//  3. 否则其他文件各自走完整流水线
//
// 返回值与输入一一对应，保持输入顺序
func (p *Pipeline) ProcessBatch(ctx context.Context, files []naming.FileDescriptor) []*naming.Result {
	start := time.Now()
	results := make([]*naming.Result, len(files))
	if len(files) == 0 {
		return results
	}

	batchCtx, cancelBatch := context.WithCancel(ctx)
	defer cancelBatch()

	groups := p.grouper.Group(files)
	positions := indexGroups(files, groups)

	logger.Info("Batch started", "files", len(files), "groups", len(groups), "strategy", p.cfg.Strategy.Name)

	// 代表文件
	var reps errgroup.Group
	reps.SetLimit(p.cfg.Concurrency)
	for gi, group := range groups {
		idx := positions[gi][0]
		reps.Go(func() error {
			r := p.processInBatch(batchCtx, group.Representative, cancelBatch)
			if group.HasSiblings() {
				r.GroupID = group.ID
			}
			results[idx] = r
			return nil
		})
	}
	_ = reps.Wait()

	// 其他文件
	var siblings errgroup.Group
	siblings.SetLimit(p.cfg.Concurrency)
	for gi, group := range groups {
		if !group.HasSiblings() {
			continue
		}

		rep := results[positions[gi][0]]
		pattern := ""
		if rep.Succeeded() && grouping.Trusted(rep.Confidence, p.cfg.PatternTrustThreshold) {
			pattern = grouping.ExtractPattern(rep.SuggestedName)
		}
		// 元数据命名的模板没有序号位时，兄弟文件套用后会重名，改为各自走完整流水线
		if pattern != "" && rep.Stage == naming.StageMetadata && !strings.Contains(pattern, grouping.PlaceholderNumber) {
			logger.Debug("Metadata pattern has no sequence, processing siblings individually",
				"group", group.ID,
				"pattern", grouping.Describe(pattern),
				"siblings", len(group.Siblings))
			pattern = ""
		} else if pattern != "" {
			logger.Debug("Group pattern trusted",
				"group", group.ID,
				"pattern", grouping.Describe(pattern),
				"siblings", len(group.Siblings))
		} else {
			logger.Debug("Group pattern untrusted, processing siblings individually",
				"group", group.ID,
				"confidence", rep.Confidence,
				"siblings", len(group.Siblings))
		}

		for si, sib := range group.Siblings {
			idx := positions[gi][si+1]
			if pattern != "" {
				results[idx] = p.patternResult(batchCtx, group.ID, rep, pattern, si, sib)
				continue
			}
			siblings.Go(func() error {
				r := p.processInBatch(batchCtx, sib, cancelBatch)
				r.GroupID = group.ID
				results[idx] = r
				return nil
			})
		}
	}
	_ = siblings.Wait()

	for i, r := range results {
		if r == nil {
			results[i] = &naming.Result{
				OriginalPath: files[i].Path,
				Extension:    files[i].Ext(),
				Error:        "file was not processed",
			}
		}
	}

	p.publishBatch(ctx, results, time.Since(start))
	return results
}

// processInBatch fail_fast 时首个终止错误取消整批
func (p *Pipeline) processInBatch(ctx context.Context, desc naming.FileDescriptor, cancelBatch context.CancelFunc) *naming.Result {
	if err := ctx.Err(); err != nil {
		return canceledResult(desc, err)
	}

	fileCtx, done := p.tracker.track(ctx, desc.Path)
	r := p.process(fileCtx, desc)
	done()

	if p.cfg.FailFast && r.Error != "" && ctx.Err() == nil {
		logger.Warn("Fail fast: canceling remaining files", "path", desc.Path, "error", r.Error)
		cancelBatch()
	}
	return r
}

// patternResult 按代表文件的命名模板生成兄弟文件的结果
func (p *Pipeline) patternResult(ctx context.Context, groupID string, rep *naming.Result, pattern string, siblingIndex int, desc naming.FileDescriptor) *naming.Result {
	if err := ctx.Err(); err != nil {
		r := canceledResult(desc, err)
		r.GroupID = groupID
		return r
	}
	return &naming.Result{
		OriginalPath:  desc.Path,
		SuggestedName: p.grouper.ApplyPattern(pattern, siblingIndex, desc.Name()),
		Extension:     desc.Ext(),
		Confidence:    naming.ClampConfidence(rep.Confidence * p.cfg.SiblingDiscount),
		Stage:         naming.StagePattern,
		Reasoning:     fmt.Sprintf("pattern %s from %s", pattern, filepath.Base(rep.OriginalPath)),
		GroupID:       groupID,
	}
}

func (p *Pipeline) publishBatch(ctx context.Context, results []*naming.Result, elapsed time.Duration) {
	stats := p.GetStats(results)
	logger.Info("Batch completed",
		"files", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"pattern_applied", stats.ByStage[naming.StagePattern],
		"tokens_used", stats.TotalTokens,
		"cost", fmt.Sprintf("%.6f", stats.TotalCost),
		"duration", elapsed)

	p.bus.Publish(events.Event{
		Type:     events.BatchCompleted,
		Duration: elapsed,
		Fields: map[string]any{
			"source":          sourceFrom(ctx),
			"path":            scanPathFrom(ctx),
			"total":           stats.Total,
			"succeeded":       stats.Succeeded,
			"failed":          stats.Failed,
			"pattern_applied": stats.ByStage[naming.StagePattern],
			"total_tokens":    stats.TotalTokens,
			"total_cost":      stats.TotalCost,
		},
	})
}

// indexGroups 把分组结果映射回输入下标
// 返回值与 groups 对应：[0] 为代表文件下标，其后依次为兄弟文件下标
func indexGroups(files []naming.FileDescriptor, groups []naming.FileGroup) [][]int {
	queues := make(map[string][]int, len(files))
	for i, f := range files {
		k := identity(f)
		queues[k] = append(queues[k], i)
	}
	pop := func(f naming.FileDescriptor) int {
		k := identity(f)
		q := queues[k]
		if len(q) == 0 {
			return -1
		}
		queues[k] = q[1:]
		return q[0]
	}

	positions := make([][]int, len(groups))
	for gi, g := range groups {
		idx := make([]int, 0, g.Size())
		idx = append(idx, pop(g.Representative))
		for _, s := range g.Siblings {
			idx = append(idx, pop(s))
		}
		positions[gi] = idx
	}
	return positions
}

func identity(f naming.FileDescriptor) string {
	return f.Path + "\x00" + strconv.FormatInt(f.Size, 10) + "\x00" + strconv.FormatInt(f.ModTime.UnixNano(), 10)
}
