package settings

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/filestore-bot/core/database"
	"github.com/m3rciful/filestore-bot/migrations"
)

func newSQLiteBackend(t *testing.T) *SQLBackend {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "settings.db")}
	require.NoError(t, coredatabase.RunMigrations(cfg, migrations.FS))
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLBackend(db)
}

func newRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	prefix := "filestore-test:" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":"
	b, err := NewRedisBackend(context.Background(), RedisOptions{Addr: addr, Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := b.rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			_ = b.rdb.Del(ctx, keys...).Err()
		}
		_ = b.Close()
	})
	return b
}

func backends(t *testing.T) map[string]func(*testing.T) Backend {
	return map[string]func(*testing.T) Backend{
		"memory": func(*testing.T) Backend { return NewMemoryBackend() },
		"sqlite": func(t *testing.T) Backend { return newSQLiteBackend(t) },
		"redis":  func(t *testing.T) Backend { return newRedisBackend(t) },
	}
}

func TestBackendValues(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := mk(t)
			ctx := context.Background()

			_, ok, err := b.GetValue(ctx, "start_text")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, b.SetValue(ctx, "start_text", "hi"))
			require.NoError(t, b.SetValue(ctx, "start_text", "hello"))
			v, ok, err := b.GetValue(ctx, "start_text")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "hello", v)

			require.NoError(t, b.DeleteValue(ctx, "start_text"))
			require.NoError(t, b.DeleteValue(ctx, "start_text"))
			_, ok, err = b.GetValue(ctx, "start_text")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBackendLists(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := mk(t)
			ctx := context.Background()

			items, err := b.ListItems(ctx, "admins")
			require.NoError(t, err)
			assert.Empty(t, items)

			for _, id := range []int64{333, 111, 222} {
				added, err := b.AddItem(ctx, "admins", id)
				require.NoError(t, err)
				assert.True(t, added)
			}
			added, err := b.AddItem(ctx, "admins", 111)
			require.NoError(t, err)
			assert.False(t, added, "duplicates are rejected by the backend")

			items, err = b.ListItems(ctx, "admins")
			require.NoError(t, err)
			assert.Equal(t, []int64{333, 111, 222}, items)

			removed, err := b.RemoveItem(ctx, "admins", 111)
			require.NoError(t, err)
			assert.True(t, removed)
			removed, err = b.RemoveItem(ctx, "admins", 111)
			require.NoError(t, err)
			assert.False(t, removed)

			other, err := b.ListItems(ctx, "fsub_chats")
			require.NoError(t, err)
			assert.Empty(t, other, "lists are independent")
		})
	}
}

func TestBackendConcurrentAddsStayUnique(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := mk(t)
			ctx := context.Background()
			var wg sync.WaitGroup
			var mu sync.Mutex
			wins := 0
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					added, err := b.AddItem(ctx, "fsub_chats", -1001)
					assert.NoError(t, err)
					if added {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, wins)
			items, err := b.ListItems(ctx, "fsub_chats")
			require.NoError(t, err)
			assert.Equal(t, []int64{-1001}, items)
		})
	}
}
