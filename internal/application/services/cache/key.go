package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"
	"strings"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

// Key 由路径、大小、修改时间和规范化后的选项计算缓存键
// 选项按键名排序，顺序不同的同一组选项得到相同的键
func Key(desc naming.FileDescriptor, opts map[string]string) string {
	hasher := sha256.New()

	writeComponent(hasher, desc.Path)
	writeComponent(hasher, strconv.FormatInt(desc.Size, 10))
	writeComponent(hasher, strconv.FormatInt(desc.ModTime.UnixNano(), 10))

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeComponent(hasher, strings.ToLower(strings.TrimSpace(k)))
		writeComponent(hasher, strings.TrimSpace(opts[k]))
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

func writeComponent(h hash.Hash, value string) {
	h.Write([]byte(value))
	h.Write([]byte{0})
}
