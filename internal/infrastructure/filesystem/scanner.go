package filesystem

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/pkg/logger"
)

// Scanner 列出目录下的普通文件
type Scanner struct {
	validator *PathValidator
	reader    *DescriptorReader
}

func NewScanner(validator *PathValidator, reader *DescriptorReader) *Scanner {
	if validator == nil {
		validator = NewPathValidator()
	}
	if reader == nil {
		reader = NewDescriptorReader()
	}
	return &Scanner{validator: validator, reader: reader}
}

// Scan 返回 root 下的文件描述，按路径字典序
// 跳过隐藏文件和隐藏目录；单个文件读取失败只记录日志
func (s *Scanner) Scan(ctx context.Context, root string, recursive bool) ([]naming.FileDescriptor, error) {
	if err := s.validator.ValidateDir(root); err != nil {
		return nil, err
	}
	root = filepath.Clean(root)

	var files []naming.FileDescriptor
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Walk error", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path == root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		desc, err := s.reader.Read(path)
		if err != nil {
			logger.Warn("Read file descriptor failed", "path", path, "error", err)
			return nil
		}
		files = append(files, desc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Directory scanned", "root", root, "recursive", recursive, "files", len(files))
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
