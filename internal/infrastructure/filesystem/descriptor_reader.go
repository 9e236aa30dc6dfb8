package filesystem

import (
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/pkg/logger"
)

// exifExtensions 尝试解析EXIF的扩展名
var exifExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".tif":  {},
	".tiff": {},
	".dng":  {},
}

// DescriptorReader 读取文件描述：os.Stat + 图片EXIF
// EXIF缺失或损坏时 EXIF 字段为nil，不视为错误
type DescriptorReader struct{}

func NewDescriptorReader() *DescriptorReader {
	return &DescriptorReader{}
}

// Read 读取单个文件的描述
func (r *DescriptorReader) Read(path string) (naming.FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return naming.FileDescriptor{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return naming.FileDescriptor{}, fmt.Errorf("%s is a directory", path)
	}

	desc := naming.NewFileDescriptor(path, info.Size(), info.ModTime())
	if _, ok := exifExtensions[desc.Ext()]; ok {
		desc.EXIF = readEXIF(path)
	}
	return desc, nil
}

// readEXIF 解析EXIF，任何失败都返回nil
func readEXIF(path string) *naming.EXIF {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		logger.Debug("No EXIF data", "path", path, "error", err)
		return nil
	}

	meta := &naming.EXIF{}
	if t, err := x.DateTime(); err == nil && !t.IsZero() {
		meta.CaptureTime = &t
	}
	if lat, long, err := x.LatLong(); err == nil {
		meta.HasGPS = true
		meta.Latitude = lat
		meta.Longitude = long
	}
	meta.CameraMake = tagString(x, exif.Make)
	meta.CameraModel = tagString(x, exif.Model)
	meta.Description = tagString(x, exif.ImageDescription)

	if meta.CaptureTime == nil && !meta.HasGPS && meta.Camera() == "" && meta.Description == "" {
		return nil
	}
	return meta
}

func tagString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
