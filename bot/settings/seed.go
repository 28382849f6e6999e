package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/filestore-bot/core/bootstrap"
	"github.com/m3rciful/filestore-bot/core/logger"
)

// ListSeeder adds ids to list settings, skipping ids already present. The
// storage passed to Seed must be a *Store.
func ListSeeder(lists map[Name][]int64) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		store, ok := storage.(*Store)
		if !ok {
			return fmt.Errorf("settings seeder: unexpected storage %T", storage)
		}
		for name, ids := range lists {
			added := 0
			for _, id := range ids {
				err := store.AddToList(ctx, name, id)
				switch {
				case err == nil:
					added++
				case errors.Is(err, ErrDuplicateEntry):
				default:
					return fmt.Errorf("seed %s: %w", name, err)
				}
			}
			logger.SEED.Info("list seeded",
				slog.String("event", "seed"),
				slog.String("setting", string(name)),
				slog.Int("added", added),
				slog.Int("total", len(ids)),
			)
		}
		return nil
	})
}
