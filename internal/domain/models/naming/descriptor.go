package naming

import (
	"path/filepath"
	"strings"
	"time"
)

// EXIF 图片内嵌的拍摄信息，缺失字段保持零值
type EXIF struct {
	CaptureTime *time.Time `json:"capture_time,omitempty"` // 拍摄时间
	HasGPS      bool       `json:"has_gps"`                // 是否包含GPS坐标
	Latitude    float64    `json:"latitude,omitempty"`
	Longitude   float64    `json:"longitude,omitempty"`
	CameraMake  string     `json:"camera_make,omitempty"`
	CameraModel string     `json:"camera_model,omitempty"`
	Description string     `json:"description,omitempty"` // ImageDescription
}

// HasCaptureTime 是否带有拍摄时间
func (e *EXIF) HasCaptureTime() bool {
	return e != nil && e.CaptureTime != nil && !e.CaptureTime.IsZero()
}

// Camera 相机描述（厂商 + 型号）
func (e *EXIF) Camera() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(e.CameraMake) + " " + strings.TrimSpace(e.CameraModel))
}

// FileDescriptor 单次调用内的文件描述，不做持久化
type FileDescriptor struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time"`
	CreateTime time.Time `json:"create_time,omitempty"`
	Extension  string    `json:"extension"` // 小写，带点号，如 ".jpg"
	EXIF       *EXIF     `json:"exif,omitempty"`
}

// NewFileDescriptor 根据路径、大小和修改时间构造描述
func NewFileDescriptor(path string, size int64, modTime time.Time) FileDescriptor {
	return FileDescriptor{
		Path:      path,
		Size:      size,
		ModTime:   modTime,
		Extension: strings.ToLower(filepath.Ext(path)),
	}
}

// Name 文件名（含扩展名）
func (d FileDescriptor) Name() string {
	return filepath.Base(d.Path)
}

// Stem 不含扩展名的文件名
func (d FileDescriptor) Stem() string {
	name := d.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Dir 所在目录
func (d FileDescriptor) Dir() string {
	return filepath.Dir(d.Path)
}

// Ext 扩展名，Extension为空时从路径推导
func (d FileDescriptor) Ext() string {
	if d.Extension != "" {
		return d.Extension
	}
	return strings.ToLower(filepath.Ext(d.Path))
}

// BestTime 优先使用EXIF拍摄时间，其次修改时间
func (d FileDescriptor) BestTime() time.Time {
	if d.EXIF.HasCaptureTime() {
		return *d.EXIF.CaptureTime
	}
	return d.ModTime
}
