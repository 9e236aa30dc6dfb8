package pipeline

import (
	"context"
	"fmt"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

// DescriptorSource 根据路径读取文件描述
type DescriptorSource interface {
	Read(path string) (naming.FileDescriptor, error)
}

// ProcessPaths 读取路径后批量处理
// 无法读取的文件直接得到失败结果，不进入流水线；返回值与 paths 一一对应
func ProcessPaths(ctx context.Context, svc contracts.NamingService, src DescriptorSource, paths []string) []*naming.Result {
	results := make([]*naming.Result, len(paths))
	descs := make([]naming.FileDescriptor, 0, len(paths))
	slots := make([]int, 0, len(paths))

	for i, path := range paths {
		desc, err := src.Read(path)
		if err != nil {
			results[i] = &naming.Result{
				OriginalPath: path,
				Error:        fmt.Sprintf("cannot read file: %v", err),
			}
			continue
		}
		descs = append(descs, desc)
		slots = append(slots, i)
	}

	if len(descs) == 0 {
		return results
	}
	for j, r := range svc.ProcessBatch(ctx, descs) {
		results[slots[j]] = r
	}
	return results
}
