// Package logger wraps log/slog behind a small context-first interface with a
// process-wide instance.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Logger is the logging surface used across the module.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	// Fatal logs at error level and exits the process.
	Fatal(ctx context.Context, msg string, fields ...Field)

	// Named returns a child whose entries carry logger=<parent>.<name>.
	Named(name string) Logger
}

type slogLogger struct {
	h    slog.Handler
	name string
}

func (l *slogLogger) Named(name string) Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &slogLogger{h: l.h, name: full}
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

// emit builds the record itself so the source points at the caller of the
// level method rather than at this package.
func (l *slogLogger) emit(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.h.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // Callers, emit, level method
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if l.name != "" {
		r.AddAttrs(slog.String("logger", l.name))
	}
	r.AddAttrs(attrs(fields)...)
	_ = l.h.Handle(ctx, r)
}

var (
	global atomic.Pointer[slogLogger]
	level  slog.LevelVar
)

// Option configures Init.
type Option func(*options)

type options struct {
	format string
	out    io.Writer
}

// WithFormat selects the handler: "json" or "text" (default).
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = strings.ToLower(strings.TrimSpace(format))
	}
}

// WithOutput redirects log output.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// Init installs the process-wide logger at info level.
func Init(opts ...Option) error {
	o := options{format: "text", out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	ho := &slog.HandlerOptions{Level: &level, AddSource: true, ReplaceAttr: shortSource}
	var h slog.Handler
	switch o.format {
	case "", "text":
		h = slog.NewTextHandler(o.out, ho)
	case "json":
		h = slog.NewJSONHandler(o.out, ho)
	default:
		return fmt.Errorf("unknown log format %q", o.format)
	}
	level.Set(slog.LevelInfo)
	global.Store(&slogLogger{h: h})
	return nil
}

var workDir, _ = os.Getwd()

// shortSource renders the source attribute as path:line relative to the
// working directory.
func shortSource(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey || len(groups) > 0 {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}
	file := src.File
	if rel, err := filepath.Rel(workDir, file); err == nil && !strings.HasPrefix(rel, "..") {
		file = rel
	} else {
		file = filepath.Base(file)
	}
	return slog.String(slog.SourceKey, file+":"+strconv.Itoa(src.Line))
}

// Nop returns a logger that drops every entry.
func Nop() Logger {
	return &slogLogger{h: slog.DiscardHandler}
}

// Get returns the process-wide logger and panics before Init.
func Get() Logger {
	l := global.Load()
	if l == nil {
		panic("logger: Get called before Init")
	}
	return l
}

// GetOrNop is Get for library code that may run without Init.
func GetOrNop() Logger {
	if l := global.Load(); l != nil {
		return l
	}
	return Nop()
}

// Named is shorthand for Get().Named(name).
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync exists for call sites written against buffered loggers; slog handlers
// write through.
func Sync() error { return nil }

// SetLevelString sets the minimum level from debug, info, warn/warning or
// error, ignoring case.
func SetLevelString(s string) error {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		l = slog.LevelDebug
	case "", "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", s)
	}
	level.Set(l)
	return nil
}
