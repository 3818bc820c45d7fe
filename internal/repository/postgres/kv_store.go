package postgres

import (
	"context"
	"database/sql"
	"f2fit/gym-manager/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type kvRow struct {
	Value   string `db:"value"`
	Version int64  `db:"version"`
}

type kvStore struct {
	db *sqlx.DB
}

// NewKVStore implements repository.KVStore with version compare-and-swap updates.
func NewKVStore(db *sqlx.DB) repository.KVStore {
	return &kvStore{db: db}
}

func (s *kvStore) find(ctx context.Context, key string) (*kvRow, error) {
	var row kvRow
	err := s.db.GetContext(ctx, &row, `SELECT value, version FROM kv_entries WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", key)
	}
	return &row, nil
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	row, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	return []byte(row.Value), nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, version = kv_entries.version + 1, updated_at = now()`,
		key, string(value))
	return errors.Wrapf(err, "upsert %s", key)
}

func (s *kvStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ANY($1)`, pq.Array(keys))
	return errors.Wrap(err, "delete keys")
}

func (s *kvStore) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	for attempt := 0; attempt < repository.MaxUpdateAttempts; attempt++ {
		row, err := s.find(ctx, key)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		var (
			next []byte
			res  sql.Result
		)
		if row == nil {
			if next, err = fn(nil, false); err != nil {
				return err
			}
			res, err = s.db.ExecContext(ctx,
				`INSERT INTO kv_entries (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
				key, string(next))
		} else {
			if next, err = fn([]byte(row.Value), true); err != nil {
				return err
			}
			res, err = s.db.ExecContext(ctx,
				`UPDATE kv_entries SET value = $1, version = version + 1, updated_at = now() WHERE key = $2 AND version = $3`,
				string(next), key, row.Version)
		}
		if err != nil {
			return errors.Wrapf(err, "write %s", key)
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "rows affected")
		} else if n == 1 {
			return nil
		}
	}
	return repository.ErrConflict
}
