// Package logger builds the process-wide slog logger. Text output goes
// through charmbracelet/log for humans; JSON output is a minimal flat
// format for ingestion: level, ts, component, msg, and a fields object.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"

	"factlens/pkg/config"
)

const (
	defaultFormat = "text"
	defaultLevel  = "info"
)

// componentKey is the attribute promoted out of the fields object so log
// pipelines can route on it. Every package attaches it via log.With.
const componentKey = "component"

// LogEntry is the shape of one JSON log line.
type LogEntry struct {
	Level     string         `json:"level"`
	Timestamp string         `json:"ts"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"msg"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg config.LoggingConfig, writer io.Writer) (*slog.Logger, error) {
	cfg, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	level, err := levelFromName(cfg.Level)
	if err != nil {
		return nil, err
	}

	if cfg.Format == "json" {
		return slog.New(&jsonHandler{
			level:  level,
			writer: writer,
			mu:     &sync.Mutex{},
		}), nil
	}

	pretty := charmLog.NewWithOptions(writer, charmLog.Options{
		Level:           charmLevel(level),
		ReportTimestamp: true,
		ReportCaller:    cfg.AddSource,
		Formatter:       charmLog.TextFormatter,
	})
	return slog.New(pretty), nil
}

// resolve layers FACTLENS_LOG_* environment variables over the file config
// and fills defaults, so the rest of the package sees one settled config.
func resolve(cfg config.LoggingConfig) (config.LoggingConfig, error) {
	if value := strings.TrimSpace(os.Getenv("FACTLENS_LOG_FORMAT")); value != "" {
		cfg.Format = value
	}
	if value := strings.TrimSpace(os.Getenv("FACTLENS_LOG_LEVEL")); value != "" {
		cfg.Level = value
	}
	if value := strings.TrimSpace(os.Getenv("FACTLENS_LOG_ADD_SOURCE")); value != "" {
		cfg.AddSource = parseBool(value)
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		return cfg, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	cfg.Level = strings.ToLower(strings.TrimSpace(cfg.Level))
	if cfg.Level == "" {
		cfg.Level = defaultLevel
	}

	return cfg, nil
}

func levelFromName(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", name)
	}
}

func charmLevel(level slog.Level) charmLog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmLog.DebugLevel
	case level <= slog.LevelInfo:
		return charmLog.InfoLevel
	case level <= slog.LevelWarn:
		return charmLog.WarnLevel
	default:
		return charmLog.ErrorLevel
	}
}

func parseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// jsonHandler emits one LogEntry per record. The logging in this codebase
// is flat key-value pairs, so grouped attributes are flattened into
// dot-joined field keys rather than nested objects.
type jsonHandler struct {
	level     slog.Level
	writer    io.Writer
	mu        *sync.Mutex
	component string
	preset    []slog.Attr
	keyPrefix string
}

func (h *jsonHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *jsonHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	entry := LogEntry{
		Level:     strings.ToLower(record.Level.String()),
		Timestamp: timestamp.UTC().Format(time.RFC3339Nano),
		Component: h.component,
		Message:   record.Message,
	}

	fields := make(map[string]any)
	for _, attr := range h.preset {
		h.applyAttr(fields, &entry, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.applyAttr(fields, &entry, attr)
		return true
	})
	if len(fields) > 0 {
		entry.Fields = fields
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(append(line, '\n'))
	return err
}

func (h *jsonHandler) applyAttr(fields map[string]any, entry *LogEntry, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := h.keyPrefix + attr.Key
	if key == componentKey {
		if value, ok := attr.Value.Any().(string); ok {
			entry.Component = value
			return
		}
	}

	fields[key] = fieldValue(attr.Value)
}

// fieldValue flattens a slog value into something json.Marshal renders
// usefully. Errors are logged as attribute values throughout the codebase
// and would otherwise marshal to empty objects.
func fieldValue(value slog.Value) any {
	switch value.Kind() {
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindGroup:
		group := value.Group()
		result := make(map[string]any, len(group))
		for _, item := range group {
			result[item.Key] = fieldValue(item.Value.Resolve())
		}
		return result
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return err.Error()
		}
		return value.Any()
	default:
		return value.Any()
	}
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append(append([]slog.Attr{}, h.preset...), attrs...)

	// Hoist the component attribute eagerly so child handlers report it
	// even when later records carry no attrs of their own.
	kept := next.preset[:0]
	for _, attr := range next.preset {
		if h.keyPrefix == "" && attr.Key == componentKey {
			if value, ok := attr.Value.Resolve().Any().(string); ok {
				next.component = value
				continue
			}
		}
		kept = append(kept, attr)
	}
	next.preset = kept

	return &next
}

func (h *jsonHandler) WithGroup(name string) slog.Handler {
	if strings.TrimSpace(name) == "" {
		return h
	}

	next := *h
	next.keyPrefix = h.keyPrefix + name + "."
	return &next
}
