package xlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	errUnknownEncoder = errors.New("[XLogger] unknown encoder")
	errUnknownWriter  = errors.New("[XLogger] unknown writer")
)

// xLogger is the wrapper logger of Uber zap logger.
type xLogger struct {
	logger              atomic.Pointer[zap.Logger]
	core                XLogCore
	ctxFields           map[string]string // read only after constructed
	dynamicLevelEnabler zap.AtomicLevel
	closers             []io.Closer // the files opened by this logger
	closeLock           sync.Mutex
}

func (l *xLogger) zap() *zap.Logger                   { return l.logger.Load() }
func (l *xLogger) timeEncoder() zapcore.TimeEncoder   { return l.core.timeEncoder() }
func (l *xLogger) levelEncoder() zapcore.LevelEncoder { return l.core.levelEncoder() }
func (l *xLogger) writeSyncer() zapcore.WriteSyncer   { return l.core.writeSyncer() }
func (l *xLogger) levelEnabler() zapcore.LevelEnabler { return l.dynamicLevelEnabler }
func (l *xLogger) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return l.core.outEncoder()
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *xLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

// Close releases the files opened by the logger. The other writers
// are not owned by it and are left to Sync. A component logger shares
// its parent's files and closes nothing.
func (l *xLogger) Close() error {
	l.closeLock.Lock()
	defer l.closeLock.Unlock()

	var merr error
	for _, c := range l.closers {
		merr = multierr.Append(merr, c.Close())
	}
	l.closers = nil
	return merr
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) ErrorStack(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	var es infra.ErrorStack
	if errors.As(err, &es) {
		newFields = append(newFields, zap.Inline(es))
	} else if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Debug(msg, newFields...)
}

func (l *xLogger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Info(msg, newFields...)
}

func (l *xLogger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Warn(msg, newFields...)
}

func (l *xLogger) ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) Logf(lvl zapcore.Level, format string, args ...any) {
	l.logger.Load().Log(lvl, fmt.Sprintf(format, args...))
}

// newComponentXLogger shares the parent's core, level and writer,
// but drops the caller key, because the caller of a component
// logger is always the component adapter itself.
func newComponentXLogger(parent XLogger, name string) *xLogger {
	p := parent
	l := &xLogger{}
	if xl, ok := parent.(*xLogger); ok {
		l.core = xl.core
		l.ctxFields = xl.ctxFields
		l.dynamicLevelEnabler = xl.dynamicLevelEnabler
	} else {
		// Another XLogger implementation, e.g. one embedding an XLogger.
		l.core = &consoleCore{
			lvlEnabler: p.levelEnabler(),
			lvlEnc:     p.levelEncoder(),
			tsEnc:      p.timeEncoder(),
			ws:         p.writeSyncer(),
			enc:        p.outEncoder(),
			core:       p.zap().Core(),
		}
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(p.zap().Level())
	}
	l.logger.Store(p.zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			cfg := componentEncoderConfig(p.levelEncoder(), p.timeEncoder())
			cfg.CallerKey = coreKeyIgnored
			return zapcore.NewCore(p.outEncoder()(cfg), p.writeSyncer(), p.levelEnabler())
		})),
	)
	return l
}

type loggerCfg struct {
	ctxFields   map[string]string
	encoderType *logEncoderType
	writerType  *logOutWriterType
	ws          zapcore.WriteSyncer
	files       []string
	lvlEncoder  zapcore.LevelEncoder
	tsEncoder   zapcore.TimeEncoder
	level       *zapcore.Level
	name        string
}

func (cfg *loggerCfg) apply(l *xLogger) {
	encoder := JSON
	if cfg.encoderType != nil {
		encoder = *cfg.encoderType
	}

	if cfg.level != nil {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(getLogLevelOrDefault(os.Getenv("XLOG_LVL")))
	}

	l.ctxFields = cfg.ctxFields

	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}

	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}

	if cfg.ws == nil {
		writer := StdOut
		if cfg.writerType != nil {
			writer = *cfg.writerType
		}
		cfg.ws = getOutWriterByType(writer)
	}
	if len(cfg.files) > 0 {
		syncers := make([]zapcore.WriteSyncer, 0, len(cfg.files)+1)
		syncers = append(syncers, cfg.ws)
		for _, pathToLog := range cfg.files {
			fl := newFileLog(pathToLog)
			syncers = append(syncers, fl)
			l.closers = append(l.closers, fl)
		}
		cfg.ws = zapcore.NewMultiWriteSyncer(syncers...)
	}

	l.core = newConsoleCore(
		l.dynamicLevelEnabler,
		encoder,
		cfg.ws,
		cfg.lvlEncoder,
		cfg.tsEncoder,
	)
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	xl := &xLogger{}
	cfg.apply(xl)

	// Disable zap logger error stack.
	l := zap.New(
		xl.core,
		zap.AddCallerSkip(1), // Skip the xLogger wrapper frame.
		zap.AddCaller(),
	)
	if len(cfg.name) > 0 {
		l = l.Named(cfg.name)
	}
	xl.logger.Store(l)
	return xl
}

func WithXLoggerName(name string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.name = strings.TrimSpace(name)
		return nil
	}
}

func WithXLoggerWriter(writer logOutWriterType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if writer >= _writerMax {
			return infra.WrapErrorStack(errUnknownWriter, fmt.Sprintf("writer type %d", writer))
		}
		cfg.writerType = &writer
		return nil
	}
}

// WithXLoggerFile copies the logs into the file, appending to it
// if it exists.
func WithXLoggerFile(pathToLog string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if len(strings.TrimSpace(pathToLog)) == 0 {
			return nil
		}
		cfg.files = append(cfg.files, pathToLog)
		return nil
	}
}

// WithXLoggerWriteSyncer overrides the writer type with a custom
// destination, e.g. a command's output stream or a test buffer.
func WithXLoggerWriteSyncer(ws zapcore.WriteSyncer) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if ws == nil {
			return infra.WrapErrorStack(errUnknownWriter, "nil write syncer")
		}
		cfg.ws = ws
		return nil
	}
}

func WithXLoggerEncoder(logEnc logEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return infra.WrapErrorStack(errUnknownEncoder, fmt.Sprintf("encoder type %d", logEnc))
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl logLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

// WithXLoggerLevelName accepts the level name from flags or env,
// unknown names fall back to DEBUG.
func WithXLoggerLevelName(lvl string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := getLogLevelOrDefault(lvl)
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

func WithXLoggerContextFieldExtract(field string, mapTo ...string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if len(field) == 0 {
			return nil
		}
		if cfg.ctxFields == nil {
			cfg.ctxFields = make(map[string]string, 8)
		}
		if len(mapTo) == 0 || mapTo[0] == ContextKeyMapToItself {
			mapTo = []string{field}
		}
		cfg.ctxFields[field] = mapTo[0]
		return nil
	}
}

func getLogLevelOrDefault(level string) zapcore.Level {
	if len(strings.TrimSpace(level)) == 0 {
		return zapcore.DebugLevel
	}

	switch strings.ToUpper(level) {
	case LogLevelInfo.String():
		return zapcore.InfoLevel
	case LogLevelWarn.String():
		return zapcore.WarnLevel
	case LogLevelError.String():
		return zapcore.ErrorLevel
	case LogLevelDebug.String():
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

type ctxKey string

// ContextKey converts the extracted field name into a context key.
// A plain string key is also accepted for compatibility.
func ContextKey(field string) any {
	return ctxKey(field)
}

func extractFieldsFromContext(ctx context.Context, targets map[string]string) []zap.Field {
	if ctx == nil || len(targets) == 0 {
		return []zap.Field{}
	}

	keys := lo.Keys(targets)
	sort.StringSlice(keys).Sort()
	newFields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		v := ctx.Value(ctxKey(key))
		if v == nil {
			v = ctx.Value(key)
		}
		mapTo := targets[key]
		if v == nil && mapTo != ContextKeyMapToOmitempty {
			newFields = append(newFields, zap.String(mapTo, "nil"))
		} else if v != nil && mapTo != ContextKeyMapToOmitempty {
			newFields = append(newFields, zap.Any(mapTo, v))
		}
	}
	return newFields
}
