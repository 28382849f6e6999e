package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/filestore-bot/core/logger"
)

// Storage represents shared infrastructure passed to seeders.
type Storage interface{}

// Seeder loads reference data into a storage implementation.
type Seeder interface {
	Seed(ctx context.Context, storage Storage) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, storage Storage) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, storage Storage) error {
	return f(ctx, storage)
}

// RunSeeders executes seeders in order and stops at the first failure.
func RunSeeders(ctx context.Context, storage Storage, seeders ...Seeder) error {
	start := time.Now()
	ran := 0
	for i, s := range seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx, storage); err != nil {
			logger.SEED.Error("seed failed",
				slog.String("event", "seed"),
				slog.Int("index", i),
				slog.String("err", err.Error()),
			)
			return fmt.Errorf("bootstrap: seeder %d: %w", i, err)
		}
		ran++
	}
	logger.SEED.Info("seed summary",
		slog.String("event", "summary"),
		slog.Int("seeders", ran),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
