// Package settings persists the bot's runtime configuration: feature flags,
// id lists, texts and the database channel override.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"
)

const component = "service.settings"

// Value is the raw state of a setting as last read from the backend.
type Value struct {
	// Set is false when nothing was written and the default applies.
	Set   bool
	Raw   string
	Items []int64
}

// Options configure a Store.
type Options struct {
	StartText string
	ForceText string
	// DatabaseChatID is used when no override is stored.
	DatabaseChatID int64
	CacheSize      int
	CacheTTL       time.Duration
}

// Store is a typed, cached facade over a Backend. Every mutation invalidates
// only the key it touched.
type Store struct {
	backend Backend
	defs    map[Name]Definition
	cache   *expirable.LRU[Name, Value]
	dbChat  int64

	// gen counts invalidations per key; a read only fills the cache when no
	// invalidation happened while it was in flight.
	mu  sync.Mutex
	gen map[Name]uint64
}

// NewStore builds a store over b.
func NewStore(b Backend, opts Options) *Store {
	size := opts.CacheSize
	if size <= 0 {
		size = 64
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{
		backend: b,
		defs:    Definitions(opts.StartText, opts.ForceText),
		cache:   expirable.NewLRU[Name, Value](size, nil, ttl),
		dbChat:  opts.DatabaseChatID,
		gen:     make(map[Name]uint64),
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Definition returns the declaration of name.
func (s *Store) Definition(name Name) (Definition, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// Get returns the raw value of name, reading through the cache.
func (s *Store) Get(ctx context.Context, name Name) (Value, error) {
	def, ok := s.defs[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	if v, ok := s.cache.Get(name); ok {
		metrics.SettingsCache.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.SettingsCache.WithLabelValues("miss").Inc()

	s.mu.Lock()
	gen := s.gen[name]
	s.mu.Unlock()

	var v Value
	if def.Kind == KindList {
		items, err := s.backend.ListItems(ctx, string(name))
		if err != nil {
			return Value{}, err
		}
		v = Value{Set: len(items) > 0, Items: items}
	} else {
		raw, set, err := s.backend.GetValue(ctx, string(name))
		if err != nil {
			return Value{}, err
		}
		v = Value{Set: set, Raw: raw}
	}
	s.fill(ctx, name, gen, v)
	logger.Debug(ctx, component, "settings.read",
		slog.String("setting", string(name)),
		slog.String("cache", "miss"),
	)
	return v, nil
}

// Invalidate drops the cached value of name so the next read hits the backend.
func (s *Store) Invalidate(name Name) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[name]++
	s.cache.Remove(name)
}

// fill caches v unless name was invalidated after gen was taken.
func (s *Store) fill(ctx context.Context, name Name, gen uint64, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[name] != gen {
		logger.Debug(ctx, component, "settings.read",
			slog.String("status", "skip"),
			slog.String("setting", string(name)),
			slog.String("cause", "invalidated"),
		)
		return
	}
	s.cache.Add(name, v)
}

func (s *Store) def(name Name, kind Kind) (Definition, error) {
	d, ok := s.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	if d.Kind != kind {
		return Definition{}, fmt.Errorf("%w: %s is a %s, not a %s", ErrKindMismatch, name, d.Kind, kind)
	}
	return d, nil
}

// Flag returns a boolean setting or its default.
func (s *Store) Flag(ctx context.Context, name Name) (bool, error) {
	d, err := s.def(name, KindFlag)
	if err != nil {
		return false, err
	}
	v, err := s.Get(ctx, name)
	if err != nil {
		return false, err
	}
	raw := d.Default
	if v.Set {
		raw = v.Raw
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("flag %s: %w", name, err)
	}
	return b, nil
}

// SetFlag writes a boolean setting.
func (s *Store) SetFlag(ctx context.Context, name Name, value bool) error {
	if _, err := s.def(name, KindFlag); err != nil {
		return err
	}
	return s.write(ctx, name, strconv.FormatBool(value))
}

// ToggleFlag re-reads the flag from the backend, writes its negation and returns the new value.
func (s *Store) ToggleFlag(ctx context.Context, name Name) (bool, error) {
	s.Invalidate(name)
	cur, err := s.Flag(ctx, name)
	if err != nil {
		return false, err
	}
	if err := s.SetFlag(ctx, name, !cur); err != nil {
		return cur, err
	}
	return !cur, nil
}

// List returns the ids of a list setting in insertion order.
func (s *Store) List(ctx context.Context, name Name) ([]int64, error) {
	if _, err := s.def(name, KindList); err != nil {
		return nil, err
	}
	v, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.Items), nil
}

// Contains re-reads the list from the backend and reports whether id is present.
func (s *Store) Contains(ctx context.Context, name Name, id int64) (bool, error) {
	s.Invalidate(name)
	items, err := s.List(ctx, name)
	if err != nil {
		return false, err
	}
	return slices.Contains(items, id), nil
}

// AddToList appends id. It returns ErrDuplicateEntry when id is already present.
func (s *Store) AddToList(ctx context.Context, name Name, id int64) error {
	if _, err := s.def(name, KindList); err != nil {
		return err
	}
	added, err := s.backend.AddItem(ctx, string(name), id)
	s.Invalidate(name)
	if err != nil {
		return err
	}
	if !added {
		return ErrDuplicateEntry
	}
	s.logWrite(ctx, name, "add")
	return nil
}

// RemoveFromList deletes id. It returns ErrNotFound when id is absent.
func (s *Store) RemoveFromList(ctx context.Context, name Name, id int64) error {
	if _, err := s.def(name, KindList); err != nil {
		return err
	}
	removed, err := s.backend.RemoveItem(ctx, string(name), id)
	s.Invalidate(name)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.logWrite(ctx, name, "remove")
	return nil
}

// Text returns a text setting. ok is false when neither a value nor a default exists.
func (s *Store) Text(ctx context.Context, name Name) (string, bool, error) {
	d, err := s.def(name, KindText)
	if err != nil {
		return "", false, err
	}
	v, err := s.Get(ctx, name)
	if err != nil {
		return "", false, err
	}
	if v.Set {
		return v.Raw, true, nil
	}
	return d.Default, d.Default != "", nil
}

// SetText writes a text setting.
func (s *Store) SetText(ctx context.Context, name Name, value string) error {
	if _, err := s.def(name, KindText); err != nil {
		return err
	}
	return s.write(ctx, name, value)
}

// DeleteText removes a text setting so its default applies again.
func (s *Store) DeleteText(ctx context.Context, name Name) error {
	if _, err := s.def(name, KindText); err != nil {
		return err
	}
	return s.Delete(ctx, name)
}

// Int returns an integer setting. ok is false when it was never written.
func (s *Store) Int(ctx context.Context, name Name) (int64, bool, error) {
	d, err := s.def(name, KindInt)
	if err != nil {
		return 0, false, err
	}
	v, err := s.Get(ctx, name)
	if err != nil {
		return 0, false, err
	}
	raw := d.Default
	if v.Set {
		raw = v.Raw
	}
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("int %s: %w", name, err)
	}
	return n, true, nil
}

// SetInt writes an integer setting.
func (s *Store) SetInt(ctx context.Context, name Name, value int64) error {
	if _, err := s.def(name, KindInt); err != nil {
		return err
	}
	return s.write(ctx, name, strconv.FormatInt(value, 10))
}

// Delete reverts a scalar setting to its default.
func (s *Store) Delete(ctx context.Context, name Name) error {
	d, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	if d.Kind == KindList {
		return fmt.Errorf("%w: %s is a list", ErrKindMismatch, name)
	}
	err := s.backend.DeleteValue(ctx, string(name))
	s.Invalidate(name)
	if err != nil {
		return err
	}
	s.logWrite(ctx, name, "delete")
	return nil
}

// ActiveDatabaseChat returns the override when set, otherwise the configured chat.
func (s *Store) ActiveDatabaseChat(ctx context.Context) (int64, error) {
	id, ok, err := s.Int(ctx, DatabaseChatIDOverride)
	if err != nil {
		return 0, err
	}
	if ok && id != 0 {
		return id, nil
	}
	return s.dbChat, nil
}

// DefaultDatabaseChat returns the configured chat regardless of overrides.
func (s *Store) DefaultDatabaseChat() int64 {
	return s.dbChat
}

func (s *Store) write(ctx context.Context, name Name, raw string) error {
	err := s.backend.SetValue(ctx, string(name), raw)
	s.Invalidate(name)
	if err != nil {
		return err
	}
	s.logWrite(ctx, name, "set")
	return nil
}

func (s *Store) logWrite(ctx context.Context, name Name, op string) {
	logger.Info(ctx, component, "settings.write",
		slog.String("setting", string(name)),
		slog.String("action", op),
		slog.String("status", "ok"),
	)
}
