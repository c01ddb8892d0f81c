package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"payout-sync/internal/models"
)

const (
	keyAccessToken     = "access_token"
	keyIntervalMinutes = "update_interval_minutes"
)

const settingsSchema = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SettingsStore is a small key-value table for the handful of durable
// settings the sync core needs across restarts.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(d *DB) *SettingsStore {
	return &SettingsStore{db: d}
}

func (s *SettingsStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, settingsSchema)
	return err
}

func (s *SettingsStore) set(ctx context.Context, key, value string) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}

func (s *SettingsStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SettingsStore) delete(ctx context.Context, key string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	return err
}

// SaveAccessToken persists the credential. Empty is a valid value and
// means unauthenticated.
func (s *SettingsStore) SaveAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAccessToken, token)
}

func (s *SettingsStore) LoadAccessToken(ctx context.Context) (string, error) {
	value, _, err := s.get(ctx, keyAccessToken)
	return value, err
}

// SaveInterval stores the cadence as minutes; manual removes the row so
// absence and manual stay the same thing.
func (s *SettingsStore) SaveInterval(ctx context.Context, iv models.UpdateInterval) error {
	if iv.IsManual() {
		return s.delete(ctx, keyIntervalMinutes)
	}
	return s.set(ctx, keyIntervalMinutes, strconv.FormatInt(iv.Minutes, 10))
}

func (s *SettingsStore) LoadInterval(ctx context.Context) (models.UpdateInterval, error) {
	value, ok, err := s.get(ctx, keyIntervalMinutes)
	if err != nil {
		return models.IntervalManual, err
	}
	if !ok {
		return models.IntervalManual, nil
	}
	minutes, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// corrupt row degrades to manual instead of failing startup
		return models.IntervalManual, nil
	}
	return models.IntervalFromMinutes(&minutes), nil
}
