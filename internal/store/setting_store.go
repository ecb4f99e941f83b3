package store

import (
	"context"

	"remittance/internal/models"
)

const receiptCounterKey = "receiptCounter"

type SettingStore struct {
	db DB
}

func NewSettingStore(db DB) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) List(ctx context.Context) ([]models.Setting, error) {
	settings := []models.Setting{}
	err := s.db.SelectContext(ctx, &settings, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	return settings, err
}

// Get reads through q, which may be the pool or an open transaction.
func (s *SettingStore) Get(ctx context.Context, q Getter, key string) (models.Setting, error) {
	var setting models.Setting
	err := q.GetContext(ctx, &setting, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key)
	return setting, notFound(err)
}

// Ensure inserts value when key is absent and returns the stored row either way.
func (s *SettingStore) Ensure(ctx context.Context, tx Getter, key string, value string) (models.Setting, error) {
	var setting models.Setting
	err := tx.GetContext(ctx, &setting, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		RETURNING key, value, updated_at
	`, key, value)
	return setting, err
}

func (s *SettingStore) Upsert(ctx context.Context, tx Getter, key string, value string) (models.Setting, error) {
	var setting models.Setting
	err := tx.GetContext(ctx, &setting, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`, key, value)
	return setting, err
}

// NextReceiptCounter increments the receipt counter and returns the new value.
// The upsert row-locks the counter until tx ends, so concurrent callers never share a value.
func (s *SettingStore) NextReceiptCounter(ctx context.Context, tx Getter) (int64, error) {
	var counter int64
	err := tx.GetContext(ctx, &counter, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, '1'::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = to_jsonb(COALESCE((settings.value #>> '{}')::bigint, 0) + 1), updated_at = NOW()
		RETURNING (value #>> '{}')::bigint
	`, receiptCounterKey)
	return counter, err
}
