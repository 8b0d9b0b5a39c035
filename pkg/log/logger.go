package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	cgerrors "github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/rs/zerolog"
)

// Options configures the zerolog backend.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// JSON selects line-delimited JSON output instead of the console writer.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// zerologLogger implements Logger on top of zerolog.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

func (l *zerologLogger) Debug(msg string, fields ...any) { emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ctx = ctx.Object(key, v)
		case error:
			ctx = ctx.AnErr(key, v)
		case string:
			ctx = ctx.Str(key, v)
		default:
			ctx = ctx.Interface(key, v)
		}
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	zlvl := toZerologLevel(level)
	return zlvl >= l.zl.GetLevel() && zlvl >= zerolog.GlobalLevel()
}

// emit writes fields onto a zerolog event. A leading error value is
// attached with its stack trace, the rest is read as key/value pairs.
func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	i := 0
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.Stack().Err(err)
			i = 1
		}
	}
	for ; i+1 < len(fields); i += 2 {
		appendField(e, fmt.Sprint(fields[i]), fields[i+1])
	}
	if i < len(fields) {
		e.Interface("!BADKEY", fields[i])
	}
	e.Msg(msg)
}

func appendField(e *zerolog.Event, key string, value any) {
	switch v := value.(type) {
	case zerolog.LogObjectMarshaler:
		e.Object(key, v)
	case error:
		e.AnErr(key, v)
	case string:
		e.Str(key, v)
	case int:
		e.Int(key, v)
	case int64:
		e.Int64(key, v)
	case float64:
		e.Float64(key, v)
	case bool:
		e.Bool(key, v)
	case time.Duration:
		e.Dur(key, v)
	case fmt.Stringer:
		e.Stringer(key, v)
	default:
		e.Interface(key, v)
	}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider implements LoggerProvider.
type ZerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider builds a provider from Options.
func NewZerologProvider(opts Options) (*ZerologProvider, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	base := zerolog.New(out).With().Timestamp().Logger().Level(toZerologLevel(level))
	return &ZerologProvider{base: base}, nil
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return NewZerologLogger(p.base)
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.base.Level(toZerologLevel(level))
}

// warn is installed as the pkg/errors warning sink.
func (p *ZerologProvider) warn(w error) {
	p.mu.RLock()
	base := p.base
	p.mu.RUnlock()

	e := base.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		e = e.EmbedObject(m)
	}
	e.Msg(w.Error())
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = mustDefaultProvider()
)

func mustDefaultProvider() LoggerProvider {
	p, err := NewZerologProvider(Options{Level: "info"})
	if err != nil {
		panic(err)
	}
	return p
}

// SetupLogger configures the process-wide logger: zerolog backend, stack
// traces from cockroachdb/errors, and routing of errors.Warn into the log.
func SetupLogger(opts Options) (LoggerProvider, error) {
	p, err := NewZerologProvider(opts)
	if err != nil {
		return nil, err
	}
	zerolog.ErrorStackMarshaler = marshalStack
	zerolog.ErrorStackFieldName = StacktraceKey
	cgerrors.SetZerologWarnFunc(p.warn)
	SetProvider(p)
	return p, nil
}

// SetProvider replaces the process-wide provider (tests use a TestLoggerProvider).
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns the process-wide logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}
