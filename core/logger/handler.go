package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as flat kv or JSON lines with a stable
// key order and the event schema enforced.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}

	asJSON := h.cfg.format == formatJSON
	rec := make(record, 16)
	ts := r.Time.UTC()
	rec["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	rec["level"] = r.Level.String()
	if asJSON {
		rec["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		rec.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.add(prefix, a)
		return true
	})
	addContextFields(ctx, rec)

	if rid := rec.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if asJSON {
				rec.setDefault("rid_full", rid)
			}
			rec["rid"] = compact
		}
	}
	if rec.str("event") == "" {
		rec["event"] = r.Message
		if r.Message == "" {
			rec["event"] = "unknown"
		}
	}
	if rec.str("component") == "" {
		rec["component"] = "app"
	}
	rec.normalize()

	var (
		line []byte
		err  error
	)
	if asJSON {
		line, err = rec.encodeJSON(h.cfg.keyOrder)
	} else {
		line = rec.encodeKV(h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// record is a log line under construction, keyed by flattened attribute name.
type record map[string]any

func (rec record) str(key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (rec record) setDefault(key string, val any) {
	if _, ok := rec[key]; !ok {
		rec[key] = val
	}
}

// add flattens groups into dotted keys.
func (rec record) add(prefix string, a slog.Attr) {
	key := a.Key
	switch {
	case key == "":
		key = prefix
	case prefix != "":
		key = prefix + "." + key
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			rec.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := normalizeValue(key, v); ok {
		rec[k] = val
	}
}

// normalize enforces the enumerated fields and drops empty values. Unknown
// cache and outcome values are removed rather than logged.
func (rec record) normalize() {
	rec["level"] = normalizeLevel(rec.str("level"))
	if s := rec.str("status"); s != "" {
		rec["status"], _ = normalizeStatus(s)
	}
	for key, norm := range map[string]func(string) (string, bool){
		"cache":   normalizeCache,
		"outcome": normalizeOutcome,
	} {
		if _, present := rec[key]; !present {
			continue
		}
		if v, ok := norm(rec.str(key)); ok {
			rec[key] = v
		} else {
			delete(rec, key)
		}
	}
	for k, v := range rec {
		switch x := v.(type) {
		case nil:
			delete(rec, k)
		case string:
			if x == "" {
				delete(rec, k)
			}
		case fmt.Stringer:
			if x.String() == "" {
				delete(rec, k)
			}
		}
	}
}

// normalizeValue converts v to a JSON friendly value. Durations become whole
// milliseconds under a key ending in _ms.
func normalizeValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}

	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func msKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}
