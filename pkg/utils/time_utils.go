package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

// NameDateLayout 生成文件名中的日期格式
const NameDateLayout = "2006_01_02"

// ClockTime 文件名中解析出的时分秒（24小时制）
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// String 格式化为 HH_MM_SS
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d_%02d_%02d", c.Hour, c.Minute, c.Second)
}

// ParseNameDate 从文件名中解析日期（2024-01-15、2024_01_15、20240115 等）
func ParseNameDate(name string) (time.Time, bool) {
	return ParseDateWith(strutil.DatePattern, name)
}

// ParseDateWith 使用指定正则解析日期，正则需包含年、月、日三个分组
func ParseDateWith(re *regexp.Regexp, name string) (time.Time, bool) {
	for _, m := range re.FindAllStringSubmatch(name, -1) {
		if len(m) < 4 {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
		// 2月31日之类的日期会被time.Date进位，视为无效
		if t.Day() != day || int(t.Month()) != month {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseNameClock 解析日期之后出现的时间，12小时制（AM/PM）转换为24小时制
func ParseNameClock(name string) (ClockTime, bool) {
	rest := name
	if loc := strutil.DatePattern.FindStringIndex(name); loc != nil {
		rest = name[loc[1]:]
	}

	m := strutil.TimePattern.FindStringSubmatch(rest)
	if m == nil {
		return ClockTime{}, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])

	switch strings.ToLower(m[4]) {
	case "am":
		if hour < 1 || hour > 12 {
			return ClockTime{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return ClockTime{}, false
		}
		if hour != 12 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 || second > 59 {
		return ClockTime{}, false
	}
	return ClockTime{Hour: hour, Minute: minute, Second: second}, true
}

// FormatNameDate 格式化为 YYYY_MM_DD
func FormatNameDate(t time.Time) string {
	return t.Format(NameDateLayout)
}

// DayKey 同一天的文件得到相同的key
func DayKey(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

// FormatDuration 格式化持续时间为可读字符串
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1f秒", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.0f分钟", d.Minutes())
	}
	return fmt.Sprintf("%.1f小时", d.Hours())
}
