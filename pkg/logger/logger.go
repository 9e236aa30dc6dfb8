package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options 日志初始化选项
type Options struct {
	Level     string // debug, info, warn, error
	Output    string // console, file, both
	Format    string // text, json
	FilePath  string // Output包含file时必填
	Colorize  bool   // 控制台输出是否着色（仅text格式）
	AddSource bool   // 是否记录调用位置

	Writer io.Writer // 非空时忽略Output，直接写入（CLI写stderr）
}

var (
	defaultLogger *slog.Logger
	levelVar      = new(slog.LevelVar)
	mu            sync.Mutex
	logFile       *os.File
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// Init 初始化全局日志
func Init(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	writer, err := buildWriter(opts)
	if err != nil {
		return err
	}

	levelVar.Set(level)
	handlerOpts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		if opts.Colorize && opts.Output != "file" && opts.Writer == nil {
			handlerOpts.ReplaceAttr = colorizeLevel
		}
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	return nil
}

// SetLevel 动态调整日志级别
func SetLevel(level string) error {
	parsed, err := parseLevel(level)
	if err != nil {
		return err
	}
	levelVar.Set(parsed)
	return nil
}

// Close 关闭日志文件（如果有）
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Get 返回底层slog.Logger，供需要*slog.Logger的组件使用
func Get() *slog.Logger {
	return current()
}

func Debug(msg string, args ...any) {
	current().Debug(msg, SanitizeArgs(args...)...)
}

func Info(msg string, args ...any) {
	current().Info(msg, SanitizeArgs(args...)...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, SanitizeArgs(args...)...)
}

func Error(msg string, args ...any) {
	current().Error(msg, SanitizeArgs(args...)...)
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		levelVar.Set(slog.LevelInfo)
		defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))
	}
	return defaultLogger
}

func buildWriter(opts Options) (io.Writer, error) {
	if opts.Writer != nil {
		return opts.Writer, nil
	}
	output := strings.ToLower(strings.TrimSpace(opts.Output))
	if output == "" {
		output = "console"
	}

	switch output {
	case "console":
		return os.Stdout, nil
	case "file", "both":
		file, err := openLogFile(opts.FilePath)
		if err != nil {
			return nil, err
		}
		if output == "both" {
			return io.MultiWriter(os.Stdout, file), nil
		}
		return file, nil
	default:
		return nil, fmt.Errorf("unknown log output: %s", opts.Output)
	}
}

func openLogFile(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("log file path is required for file output")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	return file, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// colorizeLevel 给控制台输出的level字段着色
func colorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	color := colorBlue
	switch {
	case level >= slog.LevelError:
		color = colorRed
	case level >= slog.LevelWarn:
		color = colorYellow
	case level < slog.LevelInfo:
		color = colorGray
	}
	return slog.String(a.Key, color+level.String()+colorReset)
}
