package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultMaxPathLength 保守的路径长度上限，兼容大多数系统
const DefaultMaxPathLength = 1024

// PathValidator 扫描根目录的安全性和有效性校验
type PathValidator struct {
	maxPathLength int
	allowedRoots  []string
}

// PathValidationError 路径验证错误
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("路径验证失败: %s - %s", e.Path, e.Reason)
}

// NewPathValidator 创建校验器，allowedRoots 为空时不限制根目录
func NewPathValidator(allowedRoots ...string) *PathValidator {
	roots := make([]string, 0, len(allowedRoots))
	for _, r := range allowedRoots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		roots = append(roots, filepath.Clean(r))
	}
	return &PathValidator{maxPathLength: DefaultMaxPathLength, allowedRoots: roots}
}

// Validate 验证路径格式
func (v *PathValidator) Validate(path string) error {
	if path == "" {
		return &PathValidationError{Path: path, Reason: "路径为空"}
	}

	// 1. 长度
	if len(path) > v.maxPathLength {
		return &PathValidationError{
			Path:   path,
			Reason: fmt.Sprintf("路径长度超过限制 (%d > %d)", len(path), v.maxPathLength),
		}
	}

	// 2. 目录遍历
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return &PathValidationError{Path: path, Reason: "路径包含潜在的目录遍历攻击 (..)"}
		}
	}

	// 3. 控制字符和零宽字符
	for _, r := range path {
		if unicode.Is(unicode.Cc, r) {
			return &PathValidationError{Path: path, Reason: fmt.Sprintf("路径包含控制字符: U+%04X", r)}
		}
		if isZeroWidthChar(r) {
			return &PathValidationError{Path: path, Reason: fmt.Sprintf("路径包含零宽字符: U+%04X", r)}
		}
	}

	// 4. 允许的根目录
	if len(v.allowedRoots) > 0 && !v.underAllowedRoot(filepath.Clean(path)) {
		return &PathValidationError{Path: path, Reason: "路径不在允许的目录内"}
	}

	return nil
}

// ValidateDir 验证路径格式并确认是已存在的目录
func (v *PathValidator) ValidateDir(path string) error {
	if err := v.Validate(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return &PathValidationError{Path: path, Reason: fmt.Sprintf("无法访问: %v", err)}
	}
	if !info.IsDir() {
		return &PathValidationError{Path: path, Reason: "不是目录"}
	}
	return nil
}

func (v *PathValidator) underAllowedRoot(path string) bool {
	for _, root := range v.allowedRoots {
		if path == root {
			return true
		}
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// isZeroWidthChar 检查是否为零宽字符
func isZeroWidthChar(r rune) bool {
	switch r {
	case '\u200B', // 零宽空格
		'\u200C', // 零宽非连接符
		'\u200D', // 零宽连接符
		'\u200E', // 左到右标记
		'\u200F', // 右到左标记
		'\uFEFF': // BOM
		return true
	}
	return false
}
