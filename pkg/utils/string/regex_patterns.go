package strutil

import "regexp"

// 预编译的正则表达式模式，避免重复编译提升性能

var (
	// 日期模式：2024-01-15、2024_01_15、2024.01.15、20240115
	DatePattern = regexp.MustCompile(`((?:19|20)\d{2})[-_.]?(0[1-9]|1[0-2])[-_.]?(0[1-9]|[12]\d|3[01])`)

	// 分组模板使用的日期模式，只认 - 和 _ 分隔
	PatternDatePattern = regexp.MustCompile(`((?:19|20)\d{2})[-_]?(0[1-9]|1[0-2])[-_]?(0[1-9]|[12]\d|3[01])`)

	// 时间模式：2.30.45 PM、14-30-45、143045
	TimePattern = regexp.MustCompile(`(?i)(?:^|[^0-9])(\d{1,2})[.:_-]?(\d{2})[.:_-]?(\d{2})(?:[\s_.-]*(am|pm))?`)

	// 截图文件名
	ScreenshotPattern = regexp.MustCompile(`(?i)(screen[\s_-]?shot|screen[\s_-]?capture|截屏|截图|屏幕截图)`)

	// 末尾的长数字串（>=3位），用于分组模板
	TrailingDigitsPattern = regexp.MustCompile(`(\d{3,})$`)

	// 末尾序号（最多4位）：IMG_0042、beach-03、report (2)
	SequencePattern = regexp.MustCompile(`(?:^|[_\-\s(])(\d{1,4})\)?$`)

	// 长数字串
	DigitRunPattern = regexp.MustCompile(`\d{3,}`)

	// 非字母数字字符
	NonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	// 驼峰分隔：beachSunset -> beach Sunset
	CamelBoundaryPattern = regexp.MustCompile(`(\p{Ll})(\p{Lu})`)

	// 空白符
	WhitespacePattern = regexp.MustCompile(`\s+`)
)

// CameraPrefixes 相机/手机默认文件名前缀
var CameraPrefixes = map[string]struct{}{
	"img":   {},
	"dsc":   {},
	"dscn":  {},
	"dscf":  {},
	"pxl":   {},
	"mvimg": {},
	"vid":   {},
	"gopr":  {},
	"dji":   {},
	"pano":  {},
	"burst": {},
}

// GenericWords 不携带描述信息的常见词
var GenericWords = map[string]struct{}{
	"file":     {},
	"new":      {},
	"copy":     {},
	"untitled": {},
	"document": {},
	"image":    {},
	"photo":    {},
	"video":    {},
	"final":    {},
	"scan":     {},
	"download": {},
	"export":   {},
	"at":       {},
	"the":      {},
	"and":      {},
	"of":       {},
	"am":       {},
	"pm":       {},
}
