package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/filestore-bot/core/config"
	coredatabase "github.com/m3rciful/filestore-bot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSkipDatabase(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:       &coreconfig.Config{},
		SkipDatabase: true,
		LoggerInit:   noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, connected)
	assert.NoError(t, res.Close())
}

func TestRunPropagatesConnectError(t *testing.T) {
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return nil, errors.New("refused")
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestRunAppliesMigrations(t *testing.T) {
	var got fs.FS
	src := fstest.MapFS{"000001_x.up.sql": &fstest.MapFile{Data: []byte("SELECT 1;")}}
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Migrations: src,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return sqlx.NewDb(nil, "sqlite"), nil
		},
		Migrate: func(_ coredatabase.Config, m fs.FS) error {
			got = m
			return nil
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, res.DB)
	assert.Equal(t, src, got)
}

func TestRunSeedersStopsOnError(t *testing.T) {
	var calls []int
	seed := func(n int, err error) Seeder {
		return SeederFunc(func(context.Context, Storage) error {
			calls = append(calls, n)
			return err
		})
	}
	err := RunSeeders(context.Background(), nil, seed(1, nil), nil, seed(2, errors.New("boom")), seed(3, nil))
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, calls)
}
