package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config 日志配置
// 与config.LogConfig字段一一对应，避免pkg依赖internal
type Config struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 按配置创建logrus日志实例
func New(cfg Config) (*logrus.Logger, error) {
	l := logrus.New()
	if err := apply(l, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

// Init 配置全局标准日志(logrus.StandardLogger)
// 中间件、response包等没有注入日志实例的地方直接使用logrus包级函数
func Init(cfg Config) (*logrus.Logger, error) {
	l := logrus.StandardLogger()
	if err := apply(l, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

func apply(l *logrus.Logger, cfg Config) error {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	out, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	l.SetOutput(out)
	l.SetReportCaller(cfg.EnableCaller)
	return nil
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, nil
}
