package log

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

var (
	providerMu sync.RWMutex
	root       = zerolog.New(os.Stderr).With().Timestamp().Logger()
	minLevel   = LevelInfo
)

func init() {
	// Route library warnings (ConvergenceWarning etc.) through zerolog.
	sgerrors.SetZerologWarnFunc(func(warning error) {
		GetLoggerWithName("warnings").Warn(warning.Error(), "warning", warning)
	})
}

// SetOutput replaces the root logger's writer. Primarily used by the CLI to
// direct logs to stderr with console formatting, and by tests to capture
// output.
func SetOutput(l zerolog.Logger) {
	providerMu.Lock()
	defer providerMu.Unlock()
	root = l
}

// SetLevel sets the minimum level emitted by loggers from this provider.
func SetLevel(level Level) {
	providerMu.Lock()
	defer providerMu.Unlock()
	minLevel = level
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// Level. Unknown names default to info.
func ParseLevel(name string) Level {
	switch name {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// GetLogger returns the default zerolog-backed logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return &zerologLogger{logger: root}
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return &zerologLogger{logger: root.With().Str("logger", name).Logger()}
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	if !z.Enabled(context.Background(), LevelDebug) {
		return
	}
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	if !z.Enabled(context.Background(), LevelInfo) {
		return
	}
	z.emit(z.logger.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	if !z.Enabled(context.Background(), LevelWarn) {
		return
	}
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	if !z.Enabled(context.Background(), LevelError) {
		return
	}
	z.emit(z.logger.Error(), msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return level >= minLevel
}

// emit writes one event, expanding key/value pairs and attaching stack
// traces carried by cockroachdb/errors values.
func (z *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		value := fields[i+1]

		switch v := value.(type) {
		case error:
			event = event.AnErr(key, v)
			if trace := extractStacktrace(v); trace != "" {
				event = event.Str("stacktrace", trace)
			}
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
