package fileutil

import (
	"path/filepath"
	"strings"
)

// TypeClass 文件大类，分组和提示词档位都依赖它
type TypeClass string

const (
	ClassImage    TypeClass = "image"
	ClassVideo    TypeClass = "video"
	ClassAudio    TypeClass = "audio"
	ClassDocument TypeClass = "document"
	ClassArchive  TypeClass = "archive"
	ClassCode     TypeClass = "code"
	ClassOther    TypeClass = "other"
)

// 默认支持的视频扩展名列表
var DefaultVideoExtensions = []string{
	"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm",
	"m4v", "mpg", "mpeg", "3gp", "rmvb", "ts", "m2ts",
}

var classByExtension = buildClassIndex(map[TypeClass][]string{
	ClassImage:    {"jpg", "jpeg", "png", "gif", "bmp", "webp", "tif", "tiff", "heic", "heif", "raw", "cr2", "nef", "arw", "dng", "svg"},
	ClassVideo:    DefaultVideoExtensions,
	ClassAudio:    {"mp3", "wav", "flac", "aac", "m4a", "ogg", "opus", "wma"},
	ClassDocument: {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "ods", "rtf", "txt", "md", "csv", "epub", "pages", "numbers", "key"},
	ClassArchive:  {"zip", "rar", "7z", "tar", "gz", "bz2", "xz", "tgz", "dmg", "iso"},
	ClassCode:     {"go", "py", "js", "ts", "java", "c", "cpp", "h", "rs", "rb", "php", "sh", "json", "yaml", "yml", "toml", "xml", "html", "css", "sql"},
})

func buildClassIndex(classes map[TypeClass][]string) map[string]TypeClass {
	index := make(map[string]TypeClass)
	for class, exts := range classes {
		for _, ext := range exts {
			// ts 同时是视频和代码扩展名，以视频为准
			if existing, ok := index[ext]; ok && existing == ClassVideo {
				continue
			}
			index[ext] = class
		}
	}
	return index
}

// ClassOf 根据扩展名判断文件大类
func ClassOf(filename string) TypeClass {
	ext := ExtractExtension(filename)
	if ext == "" {
		return ClassOther
	}
	if class, ok := classByExtension[ext]; ok {
		return class
	}
	return ClassOther
}

// ExtractExtension 从文件名中提取扩展名（不带点号，小写）
// 例如：
//
//	"video.mp4" -> "mp4"
//	"movie.MKV" -> "mkv"
//	"/path/to/file.AVI" -> "avi"
func ExtractExtension(filename string) string {
	if filename == "" {
		return ""
	}
	ext := filepath.Ext(filename)
	if len(ext) <= 1 {
		return ""
	}
	return strings.ToLower(ext[1:])
}
