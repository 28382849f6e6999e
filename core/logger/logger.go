package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/filestore-bot/core/buildinfo"
	coreconfig "github.com/m3rciful/filestore-bot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdown   bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger; prefer the context-aware helpers for request scoped events.
	L *slog.Logger

	// DB logs database-related events.
	DB *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// SEED logs settings seeding.
	SEED *slog.Logger
	// SVCSettings logs settings store reads and writes.
	SVCSettings *slog.Logger
	// SVCMenu logs admin menu actions.
	SVCMenu *slog.Logger
	// SVCPrompt logs prompt session lifecycle events.
	SVCPrompt *slog.Logger
	// SVCGenerator logs file link generation.
	SVCGenerator *slog.Logger
)

func init() {
	// Discard until InitLogger runs so package loggers are usable from tests.
	L = slog.New(slog.NewTextHandler(io.Discard, nil))
	wireComponents()
}

// options is the logging configuration after defaults are applied.
type options struct {
	format     logFormat
	order      []string
	level      slog.Level
	profile    string
	sampleKeep int
	sampleOf   int
	file       string
}

func resolveOptions(cfg *coreconfig.Config) options {
	o := options{
		format:     formatJSON,
		order:      defaultKeyOrder,
		level:      slog.LevelInfo,
		profile:    "prod",
		sampleKeep: 1,
		sampleOf:   50,
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}

	switch normalizeLevel(strings.TrimSpace(lc.Level)) {
	case LevelDebug:
		o.level = slog.LevelDebug
	case LevelWarn:
		o.level = slog.LevelWarn
	case LevelError, LevelFatal:
		o.level = slog.LevelError
	}

	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			o.order = order
		}
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		if keep, of, ok := parseRatioSpec(spec); ok {
			o.sampleKeep, o.sampleOf = keep, of
		}
	}

	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		o.file = filepath.Join(dir, name)
	}
	return o
}

// InitLogger configures the global structured logger. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		o := resolveOptions(cfg)
		levelVar.Set(o.level)
		debugSampler.Set(o.sampleKeep, o.sampleOf)
		traceOverride = isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))

		outputs := []io.Writer{os.Stdout}
		if o.file != "" {
			f, err := openLogFile(o.file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			} else {
				outputs = append(outputs, f)
				logClosers = append(logClosers, f)
			}
		}
		logWriter = newAsyncWriter(outputs, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   o.format,
			keyOrder: append([]string(nil), o.order...),
		}))
		slog.SetDefault(L)
		wireComponents()
		logStartup(cfg, o)
	})
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func wireComponents() {
	DB = L.With("component", "db")
	TG = L.With("component", "tg")
	MIG = L.With("component", "db.migrate")
	TWire = L.With("component", "tg.wire")
	SEED = L.With("component", "settings.seed")
	SVCSettings = L.With("component", "service.settings")
	SVCMenu = L.With("component", "service.menu")
	SVCPrompt = L.With("component", "service.prompt")
	SVCGenerator = L.With("component", "service.generator")
}

func logStartup(cfg *coreconfig.Config, o options) {
	attrs := []slog.Attr{
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", o.profile),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("mode", cfg.Telegram.RunMode),
			slog.Bool("metrics", strings.TrimSpace(cfg.Metrics.Listen) != ""),
			slog.Bool("sentry", strings.TrimSpace(cfg.Sentry.DSN) != ""),
		)
	}
	L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdown {
		return nil
	}
	shutdown = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Flush(), logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Background returns a bare context for events that are not tied to an update.
func Background() context.Context {
	return context.Background()
}

// LogEvent writes an event record through logg, or the logger carried by ctx.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to the named component.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs one event for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// logged. TRACE=1 lets every event through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
