// Package logger пишет одновременно в консоль и в файл запуска.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const Name = "trading_bot"

// Logger владеет файлом лога; создаётся один раз в main и передаётся явно.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
	Path string
}

// New создаёт logs/trading_bot_YYYYMMDD_HHMMSS.log и дублирует записи в console.
func New(dir, level string, console io.Writer, now time.Time) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", Name, now.Format("20060102_150405")))
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 3,
	}

	mw := io.MultiWriter(console, file)
	return &Logger{
		Logger: slog.New(NewHandler(mw, Name, ParseLevel(level))),
		file:   file,
		Path:   path,
	}, nil
}

func (l *Logger) Close() error {
	return l.file.Close()
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Handler формат строки: "2006-01-02 15:04:05,000 - name - LEVEL - message k=v".
type Handler struct {
	mu    *sync.Mutex
	w     io.Writer
	name  string
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func NewHandler(w io.Writer, name string, level slog.Leveler) *Handler {
	return &Handler{mu: &sync.Mutex{}, w: w, name: name, level: level}
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, ",%03d - %s - %s - %s", ts.Nanosecond()/int(time.Millisecond), h.name, levelName(r.Level), r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}

// levelName пишет WARNING, не WARN.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = joinKey(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix, ga)
		}
		return
	}
	key := joinKey(group, a.Key)
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	fmt.Fprintf(b, " %s=%s", key, val)
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
