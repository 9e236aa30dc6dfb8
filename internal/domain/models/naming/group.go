package naming

import "time"

// Bucket 分组桶信息
type Bucket struct {
	TypeClass string    `json:"type_class"`
	SizeRange string    `json:"size_range"`
	Directory string    `json:"directory"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
}

// FileGroup 一次批处理内的文件分组
// 每组恰好一个代表文件，Pattern 至多包含一个 [n] 和一个 [date]
type FileGroup struct {
	ID             string           `json:"id"`
	Representative FileDescriptor   `json:"representative"`
	Siblings       []FileDescriptor `json:"siblings"`
	Pattern        string           `json:"pattern,omitempty"`
	Bucket         Bucket           `json:"bucket"`
}

// Size 组内文件总数
func (g FileGroup) Size() int {
	return 1 + len(g.Siblings)
}

// HasSiblings 是否存在兄弟文件
func (g FileGroup) HasSiblings() bool {
	return len(g.Siblings) > 0
}
