package grouping

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/pkg/utils"
	fileutil "github.com/easayliu/smart-rename/pkg/utils/file"
)

const (
	mb = int64(1024 * 1024)

	// DefaultTrustThreshold 代表文件置信度达到该值才复用模板
	DefaultTrustThreshold = 0.7
)

// Grouper 批量文件粗粒度分桶
type Grouper struct {
	now   func() time.Time
	newID func() string
}

// Option Grouper配置项
type Option func(*Grouper)

// WithClock 注入时钟，ApplyPattern 在文件名没有日期时使用
func WithClock(now func() time.Time) Option {
	return func(g *Grouper) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDGenerator 注入分组ID生成器
func WithIDGenerator(fn func() string) Option {
	return func(g *Grouper) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// NewGrouper 创建分组器
func NewGrouper(opts ...Option) *Grouper {
	g := &Grouper{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Group 按 (类型, 大小区间, 目录, 修改日期) 分桶
// 每个桶第一个出现的文件为代表文件，分组顺序和组内顺序都保持输入顺序
func (g *Grouper) Group(files []naming.FileDescriptor) []naming.FileGroup {
	groups := make([]naming.FileGroup, 0)
	index := make(map[string]int)

	for _, f := range files {
		key := BucketKey(f)
		if i, ok := index[key]; ok {
			grp := &groups[i]
			grp.Siblings = append(grp.Siblings, f)
			extendDateRange(&grp.Bucket, f.ModTime)
			continue
		}

		index[key] = len(groups)
		groups = append(groups, naming.FileGroup{
			ID:             g.newID(),
			Representative: f,
			Bucket: naming.Bucket{
				TypeClass: string(fileutil.ClassOf(f.Path)),
				SizeRange: SizeRange(f.Size),
				Directory: f.Dir(),
				DateFrom:  f.ModTime,
				DateTo:    f.ModTime,
			},
		})
	}

	return groups
}

// BucketKey 分桶键
func BucketKey(f naming.FileDescriptor) string {
	return strings.Join([]string{
		string(fileutil.ClassOf(f.Path)),
		SizeRange(f.Size),
		f.Dir(),
		utils.DayKey(f.ModTime),
	}, "|")
}

// SizeRange 大小区间：<1MB、<10MB、<100MB、>=100MB
func SizeRange(size int64) string {
	switch {
	case size < mb:
		return "<1MB"
	case size < 10*mb:
		return "<10MB"
	case size < 100*mb:
		return "<100MB"
	default:
		return ">=100MB"
	}
}

// Trusted 代表文件置信度是否足以让兄弟文件直接套用模板
func Trusted(repConfidence, threshold float64) bool {
	return repConfidence >= threshold
}

func extendDateRange(b *naming.Bucket, t time.Time) {
	if t.IsZero() {
		return
	}
	if b.DateFrom.IsZero() || t.Before(b.DateFrom) {
		b.DateFrom = t
	}
	if t.After(b.DateTo) {
		b.DateTo = t
	}
}
