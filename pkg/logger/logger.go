// Package logger 提供统一的日志框架
package logger

import (
	"context"
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
		Output:     "stdout",
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
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
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
	// 未显式初始化时使用默认配置
	Init(DefaultConfig())
	return &logger
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	batchIDKey   ctxKey = "batch_id"
)

// ContextWithRequestID 在上下文中写入请求ID
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithBatchID 在上下文中写入批次ID
func ContextWithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey, id)
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	// 添加批次ID
	if batchID, ok := ctx.Value(batchIDKey).(string); ok {
		l = l.With().Str("batch_id", batchID).Logger()
	}

	return &l
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

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields 添加多个字段
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// EngineLogger 评估引擎专用日志器
type EngineLogger struct {
	base *zerolog.Logger
}

// NewEngineLogger 创建评估引擎日志器，base 为空时使用全局日志器
func NewEngineLogger(base *zerolog.Logger, component string) *EngineLogger {
	if base == nil {
		base = Get()
	}
	l := base.With().Str("component", component).Logger()
	return &EngineLogger{base: &l}
}

// Logger 返回底层日志器
func (l *EngineLogger) Logger() *zerolog.Logger {
	return l.base
}

// RuleError 记录规则内部错误（该规则按放行处理）
func (l *EngineLogger) RuleError(ruleID, ruleName string, err error) {
	l.base.Warn().
		Err(err).
		Str("rule_id", ruleID).
		Str("rule_name", ruleName).
		Msg("规则评估出错，按放行处理")
}

// RuleFailed 记录规则未通过
func (l *EngineLogger) RuleFailed(ruleID, ruleName string, blocking bool, reason string) {
	l.base.Debug().
		Str("rule_id", ruleID).
		Str("rule_name", ruleName).
		Bool("blocking", blocking).
		Str("reason", reason).
		Msg("规则未通过")
}

// FactorFallback 记录工时系数缺失，使用默认值
func (l *EngineLogger) FactorFallback(factorType, factorValue, workType string, fallback float64) {
	l.base.Debug().
		Str("factor_type", factorType).
		Str("factor_value", factorValue).
		Str("work_type", workType).
		Float64("fallback", fallback).
		Msg("工时系数缺失，使用默认值")
}

// FactorLookupError 记录工时系数查询失败
func (l *EngineLogger) FactorLookupError(factorType, factorValue string, err error) {
	l.base.Warn().
		Err(err).
		Str("factor_type", factorType).
		Str("factor_value", factorValue).
		Msg("工时系数查询失败，使用默认值")
}

// EvaluationComplete 记录单个维修厂评估完成
func (l *EngineLogger) EvaluationComplete(carNumber, shopCode string, passed bool, failures int, duration time.Duration) {
	l.base.Debug().
		Str("car_number", carNumber).
		Str("shop_code", shopCode).
		Bool("passed", passed).
		Int("failed_rules", failures).
		Dur("duration", duration).
		Msg("维修厂资格评估完成")
}

// BatchComplete 记录批量评估完成
func (l *EngineLogger) BatchComplete(carNumber string, shops, eligible int, duration time.Duration) {
	l.base.Info().
		Str("car_number", carNumber).
		Int("shops", shops).
		Int("eligible", eligible).
		Dur("duration", duration).
		Msg("批量选厂评估完成")
}
