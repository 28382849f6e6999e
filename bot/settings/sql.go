package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores settings in the bot_settings and bot_setting_items tables.
// Queries are written with '?' and rebound for the connected driver.
type SQLBackend struct {
	db *sqlx.DB
}

// NewSQLBackend wraps an open connection. The caller owns db.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) GetValue(ctx context.Context, name string) (string, bool, error) {
	var v string
	err := b.db.GetContext(ctx, &v, b.db.Rebind(`SELECT value FROM bot_settings WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select setting %s: %w", name, err)
	}
	return v, true, nil
}

func (b *SQLBackend) SetValue(ctx context.Context, name, value string) error {
	q := b.db.Rebind(`
		INSERT INTO bot_settings (name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
	if _, err := b.db.ExecContext(ctx, q, name, value); err != nil {
		return fmt.Errorf("upsert setting %s: %w", name, err)
	}
	return nil
}

func (b *SQLBackend) DeleteValue(ctx context.Context, name string) error {
	if _, err := b.db.ExecContext(ctx, b.db.Rebind(`DELETE FROM bot_settings WHERE name = ?`), name); err != nil {
		return fmt.Errorf("delete setting %s: %w", name, err)
	}
	return nil
}

func (b *SQLBackend) ListItems(ctx context.Context, name string) ([]int64, error) {
	var ids []int64
	q := b.db.Rebind(`SELECT item_id FROM bot_setting_items WHERE name = ? ORDER BY position, item_id`)
	if err := b.db.SelectContext(ctx, &ids, q, name); err != nil {
		return nil, fmt.Errorf("select items %s: %w", name, err)
	}
	return ids, nil
}

func (b *SQLBackend) AddItem(ctx context.Context, name string, id int64) (bool, error) {
	q := b.db.Rebind(`
		INSERT INTO bot_setting_items (name, item_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM bot_setting_items WHERE name = ?))
		ON CONFLICT (name, item_id) DO NOTHING`)
	res, err := b.db.ExecContext(ctx, q, name, id, name)
	if err != nil {
		return false, fmt.Errorf("insert item %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert item %s: %w", name, err)
	}
	return n > 0, nil
}

func (b *SQLBackend) RemoveItem(ctx context.Context, name string, id int64) (bool, error) {
	q := b.db.Rebind(`DELETE FROM bot_setting_items WHERE name = ? AND item_id = ?`)
	res, err := b.db.ExecContext(ctx, q, name, id)
	if err != nil {
		return false, fmt.Errorf("delete item %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item %s: %w", name, err)
	}
	return n > 0, nil
}

// Close is a no-op; the connection belongs to the bootstrap result.
func (b *SQLBackend) Close() error { return nil }
