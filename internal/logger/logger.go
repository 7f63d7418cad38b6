package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeTrade  LogType = "TRD"
	TypeDB     LogType = "DB"
	TypeHTTP   LogType = "HTTP"
	TypeSystem LogType = "SYS"
	TypeError  LogType = "ERR"
)

const (
	FormatColor = "color"
	FormatJSON  = "json"
	FormatText  = "text"
)

// Config selects the default handler
type Config struct {
	Level     slog.Level `toml:"level" env:"LEVEL"`
	Format    string     `toml:"format" env:"FORMAT"`
	AddSource bool       `toml:"add_source" env:"ADD_SOURCE"`
	Prefix    string     `toml:"prefix" env:"PREFIX"`
}

func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: FormatColor,
		Prefix: "GoHYE-Trades",
	}
}

func (c Config) Validate() error {
	switch c.Format {
	case FormatColor, FormatJSON, FormatText:
		return nil
	default:
		return fmt.Errorf("log.format must be one of %s, %s, %s; got %q", FormatColor, FormatJSON, FormatText, c.Format)
	}
}

// Setup installs the configured handler as the slog default
func Setup(cfg Config) *slog.Logger {
	l := slog.New(NewHandlerFor(cfg, os.Stdout))
	slog.SetDefault(l)
	return l
}

// NewHandlerFor builds the handler named by cfg.Format writing to w
func NewHandlerFor(cfg Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	switch cfg.Format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatText:
		return slog.NewTextHandler(w, opts)
	default:
		return NewHandler(cfg.Prefix, w, opts)
	}
}

// CustomHandler is the coloured console handler
type CustomHandler struct {
	prefix string
	opts   *slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func NewHandler(prefix string, out io.Writer, opts *slog.HandlerOptions) *CustomHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	return &CustomHandler{
		prefix: prefix,
		opts:   opts,
		out:    out,
		mu:     &sync.Mutex{},
		attrs:  make([]slog.Attr, 0),
		groups: make([]string, 0),
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	timestamp := r.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	attrs := h.recordAttrs(r)
	logType := logTypeOf(attrs)

	message := r.Message
	if r.Level >= slog.LevelError {
		if location := errorLocation(attrs, r); location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		}
		if details, ok := attrs["error"]; ok {
			message = fmt.Sprintf("%s: %v", message, details)
		}
	}
	if took, ok := attrs["took"]; ok {
		message = fmt.Sprintf("%s (took %v)", message, took)
	}

	var b strings.Builder
	for _, attr := range h.attrs {
		if !isInternalAttr(attr.Key) {
			fmt.Fprintf(&b, " %s=%v", h.qualify(attr.Key), attr.Value)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if !isInternalAttr(a.Key) {
			fmt.Fprintf(&b, " %s=%v", h.qualify(a.Key), a.Value)
		}
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[%s] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		h.prefix,
		timestamp.Format("15:04:05"),
		levelColor,
		levelText,
		colorWhite,
		logType,
		message,
		b.String(),
		colorReset,
	)
	return err
}

func (h *CustomHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func (h *CustomHandler) recordAttrs(r slog.Record) map[string]slog.Value {
	attrs := make(map[string]slog.Value, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return attrs
}

func logTypeOf(attrs map[string]slog.Value) LogType {
	v, ok := attrs["type"]
	if !ok {
		return TypeSystem
	}
	switch v.String() {
	case "trade":
		return TypeTrade
	case "db":
		return TypeDB
	case "http":
		return TypeHTTP
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "error", "error_location", "took":
		return true
	}
	return false
}

func errorLocation(attrs map[string]slog.Value, r slog.Record) string {
	if v, ok := attrs["error_location"]; ok {
		return v.String()
	}
	if r.PC == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
