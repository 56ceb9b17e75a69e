package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CartStorage хранит снимки корзины в таблице cart_snapshots.
// Каждая запись выполняется одним upsert строки.
type CartStorage struct {
	store *Store
}

// NewCartStorage создаёт хранилище снимков поверх открытого Store.
func NewCartStorage(store *Store) *CartStorage {
	return &CartStorage{store: store}
}

// Get возвращает payload снимка или domain.ErrStorageKeyNotFound.
func (r *CartStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	var payload []byte
	err := r.store.db.QueryRowContext(queryCtx, `
		SELECT payload
		FROM cart_snapshots
		WHERE key = $1
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStorageKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cart snapshot %q: %w", key, err)
	}
	return payload, nil
}

// Put записывает снимок и увеличивает его версию.
func (r *CartStorage) Put(ctx context.Context, key string, data []byte) error {
	if err := r.ready(); err != nil {
		return err
	}

	execCtx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	_, err := r.store.db.ExecContext(execCtx, `
		INSERT INTO cart_snapshots (key, payload, version, updated_at)
		VALUES ($1, $2::jsonb, 1, NOW())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload,
		    version = cart_snapshots.version + 1,
		    updated_at = NOW()
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("upsert cart snapshot %q: %w", key, err)
	}
	return nil
}

// Delete удаляет снимок; отсутствие строки ошибкой не считается.
func (r *CartStorage) Delete(ctx context.Context, key string) error {
	if err := r.ready(); err != nil {
		return err
	}

	execCtx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	if _, err := r.store.db.ExecContext(execCtx, `DELETE FROM cart_snapshots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete cart snapshot %q: %w", key, err)
	}
	return nil
}

// Revision возвращает число перезаписей снимка.
func (r *CartStorage) Revision(ctx context.Context, key string) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	var version int64
	err := r.store.db.QueryRowContext(queryCtx, `SELECT version FROM cart_snapshots WHERE key = $1`, key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrStorageKeyNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("select cart snapshot version %q: %w", key, err)
	}
	return version, nil
}

// Ping проверяет доступность базы.
func (r *CartStorage) Ping(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.store.Ping(ctx)
}

func (r *CartStorage) ready() error {
	if r == nil || r.store == nil || r.store.db == nil {
		return fmt.Errorf("postgres cart storage is not initialized")
	}
	return nil
}

var _ domain.CartStorage = (*CartStorage)(nil)
