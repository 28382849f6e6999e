package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	pg := Config{Host: "db", Name: "bot", User: "u", Password: "p", Port: "5432"}
	require.NoError(t, pg.Normalize())
	assert.Equal(t, DriverPostgres, pg.Driver)
	assert.Equal(t, "disable", pg.SSLMode)
	assert.Equal(t, 4, pg.MaxConnections)
	assert.Equal(t, "postgres", pg.DriverName())
	assert.Equal(t, "postgres://u:p@db:5432/bot?sslmode=disable", pg.MigrateURL())

	lite := Config{Driver: "SQLite", Path: "/data/bot.db", MaxConnections: 8}
	require.NoError(t, lite.Normalize())
	assert.Equal(t, 1, lite.MaxConnections)
	assert.Equal(t, "sqlite:///data/bot.db", lite.MigrateURL())
	assert.Contains(t, lite.DSN(), "file:/data/bot.db?")

	assert.Error(t, (&Config{}).Normalize())
	assert.Error(t, (&Config{Driver: "sqlite"}).Normalize())
	assert.Error(t, (&Config{Driver: "mysql"}).Normalize())
}

func TestSQLiteConnectAndMigrate(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")}
	src := fstest.MapFS{
		"000001_items.up.sql":   &fstest.MapFile{Data: []byte("CREATE TABLE items (id BIGINT PRIMARY KEY);")},
		"000001_items.down.sql": &fstest.MapFile{Data: []byte("DROP TABLE items;")},
	}

	require.NoError(t, RunMigrations(cfg, src))
	// Second run is a no-op.
	require.NoError(t, RunMigrations(cfg, src))

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("INSERT INTO items (id) VALUES (1)")
	require.NoError(t, err)
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM items"))
	assert.Equal(t, 1, n)
}

func TestMigrationFileHelpers(t *testing.T) {
	src := fstest.MapFS{
		"000002_b.up.sql":   &fstest.MapFile{},
		"000001_a.up.sql":   &fstest.MapFile{},
		"000001_a.down.sql": &fstest.MapFile{},
	}
	files := listMigrationFiles(src)
	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, files)
	assert.Equal(t, 1, countApplied(files, 1, 2))
	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, selectApplied(files, 0, 2))
}
