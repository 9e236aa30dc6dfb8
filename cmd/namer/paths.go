package main

import (
	"context"
	"fmt"
	"os"

	"github.com/easayliu/smart-rename/internal/infrastructure/filesystem"
)

// expandPaths 目录展开为其中的文件，文件原样保留
// 不存在的路径原样保留，由流水线报告为失败结果
func expandPaths(ctx context.Context, scanner *filesystem.Scanner, args []string, recursive bool) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := scanner.Scan(ctx, arg, recursive)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	return paths, nil
}
