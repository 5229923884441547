// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stdout":
			output = os.Stdout
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stderr
				}
			} else {
				output = os.Stderr
			}
		default:
			output = os.Stderr
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// AssignerLogger 分配引擎专用日志器
type AssignerLogger struct {
	base *zerolog.Logger
}

// NewAssignerLogger 创建分配引擎日志器
func NewAssignerLogger() *AssignerLogger {
	l := Get().With().Str("component", "assigner").Logger()
	return &AssignerLogger{base: &l}
}

// StartRun 记录一次分配运行开始
func (l *AssignerLogger) StartRun(runID string, nurses, patients int) {
	l.base.Info().
		Str("run_id", runID).
		Int("nurses", nurses).
		Int("patients", patients).
		Msg("开始患者分配")
}

// DeadlineReached 记录求解超出时间预算
func (l *AssignerLogger) DeadlineReached(runID string, elapsed time.Duration, nodes int64) {
	l.base.Warn().
		Str("run_id", runID).
		Dur("elapsed", elapsed).
		Int64("nodes", nodes).
		Msg("达到时间预算，返回当前最优解")
}

// NewIncumbent 记录发现更优解
func (l *AssignerLogger) NewIncumbent(runID string, assigned int, cost float64) {
	l.base.Debug().
		Str("run_id", runID).
		Int("assigned", assigned).
		Float64("cost", cost).
		Msg("发现更优解")
}

// RunComplete 记录分配运行完成
func (l *AssignerLogger) RunComplete(runID string, duration time.Duration, status string, score float64) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Str("status", status).
		Float64("score", score).
		Msg("患者分配完成")
}
