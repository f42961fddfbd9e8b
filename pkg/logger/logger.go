package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/hunter/pkg/config"
)

// Service is stamped on every log line so shared log sinks can tell hunter apart
const Service = "hunter"

// Field keys used across the screener pipeline.
// ⭐ SSOT: 로그 필드 이름은 여기서만 정의
const (
	FieldModule   = "module"
	FieldProvider = "provider"
	FieldSymbol   = "symbol"
	FieldScan     = "scan_id"
	FieldJob      = "job"
)

// Logger wraps zerolog with the field vocabulary of the screener
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger writing to w.
// The CLI passes os.Stderr so result tables on stdout stay clean.
func New(cfg *config.Config, w io.Writer) *Logger {
	output := w
	if isConsole(cfg.LogFormat) {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			// 콘솔에서는 service/env 생략
			FieldsExclude: []string{"service", "env"},
		}
	}

	zlog := zerolog.New(output).
		Level(parseLogLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", Service).
		Str("env", cfg.Env).
		Logger()

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything (tests, library defaults)
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func isConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console", "pretty", "text":
		return true
	}
	return false
}

// parseLogLevel maps LOG_LEVEL to a zerolog level; unknown values fall back to info
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zlog.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// DebugEnabled reports whether debug lines would be written.
// Hot paths use it to skip building field maps.
func (l *Logger) DebugEnabled() bool {
	return l.zlog.GetLevel() <= zerolog.DebugLevel
}

// WithField returns a child logger with one extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithFields returns a child logger with several extra fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(fields).Logger()}
}

// WithError returns a child logger carrying err
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// ForModule tags every line with the owning component (dispatcher, yahoo, scheduler ...)
func (l *Logger) ForModule(name string) *Logger {
	return &Logger{zlog: l.zlog.With().Str(FieldModule, name).Logger()}
}

// WithProvider tags lines with a data provider name
func (l *Logger) WithProvider(name string) *Logger {
	return &Logger{zlog: l.zlog.With().Str(FieldProvider, name).Logger()}
}

// WithSymbol tags lines with a ticker
func (l *Logger) WithSymbol(symbol string) *Logger {
	return &Logger{zlog: l.zlog.With().Str(FieldSymbol, strings.ToUpper(symbol)).Logger()}
}

// WithScan tags lines with a scan report ID
func (l *Logger) WithScan(id string) *Logger {
	return &Logger{zlog: l.zlog.With().Str(FieldScan, id).Logger()}
}

// WithJob tags lines with a scheduler job name
func (l *Logger) WithJob(name string) *Logger {
	return &Logger{zlog: l.zlog.With().Str(FieldJob, name).Logger()}
}
