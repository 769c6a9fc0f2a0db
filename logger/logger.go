package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger is a zerolog logger bound to a service name. It is immutable:
// the With* methods return derived loggers.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New creates a logger writing to the output named in cfg.
func New(cfg *Config, service string) *Logger {
	return NewWithWriter(cfg, service, output(cfg.Output))
}

// NewWithWriter creates a logger writing to w. Tests use it to capture
// lines.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" || cfg.Format == "pretty" {
		w = consoleWriter(w, cfg.NoColor)
	}
	zc := zerolog.New(w).Level(level).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	if service != "" {
		zc = zc.Str(FieldService, service)
	}
	return &Logger{zl: zc.Logger(), service: service}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithContext returns a logger carrying the trace and span ids of the
// OpenTelemetry span in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.derive(l.zl.With().
		Str(FieldTraceID, sc.TraceID().String()).
		Str(FieldSpanID, sc.SpanID().String()))
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields))
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{zl: zc.Logger(), service: l.service}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

// emit is a no-op for events below the logger level, where e is nil.
func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}

var global atomic.Pointer[Logger]

// Init builds the process-wide logger from cfg. It also replaces zerolog's
// global logger so libraries logging through zerolog/log share the output.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	l := New(&cfg, cfg.ServiceName)
	SetGlobal(l)
	log.Logger = l.zl
}

// SetGlobal replaces the process-wide logger.
func SetGlobal(l *Logger) { global.Store(l) }

// Global returns the process-wide logger. Before Init it is a console
// logger at info level on stdout.
func Global() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	cfg := Config{}
	cfg.ApplyDefaults()
	global.CompareAndSwap(nil, New(&cfg, ""))
	return global.Load()
}

func Debug(msg string, fields ...map[string]interface{}) { Global().Debug(msg, fields...) }

func Info(msg string, fields ...map[string]interface{}) { Global().Info(msg, fields...) }

func Warn(msg string, fields ...map[string]interface{}) { Global().Warn(msg, fields...) }

func Error(msg string, fields ...map[string]interface{}) { Global().Error(msg, fields...) }

func output(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

var levelColors = map[string]int{
	"DBG": 36,
	"INF": 32,
	"WRN": 33,
	"ERR": 31,
	"FTL": 35,
	"PNC": 35,
}

// consoleWriter renders "15:04:05 INF message key=value" lines, with the
// level colored unless noColor is set.
func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			lvl, _ := i.(string)
			tag := strings.ToUpper(abbrev(lvl))
			if c, ok := levelColors[tag]; ok && !noColor {
				return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, tag)
			}
			return tag
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
	}
}

func abbrev(level string) string {
	switch level {
	case "debug":
		return "dbg"
	case "info":
		return "inf"
	case "warn":
		return "wrn"
	case "error":
		return "err"
	case "fatal":
		return "ftl"
	case "panic":
		return "pnc"
	case "trace":
		return "trc"
	default:
		return level
	}
}
