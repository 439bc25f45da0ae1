package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetUnit returns the cached unit for path and optionsKey, or nil when
// nothing is cached.
func (s *SQLiteStore) GetUnit(ctx context.Context, path, optionsKey string) (*Unit, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	u := &Unit{Path: path, OptionsKey: optionsKey}
	var helpers, diagnostics string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash, lua, helpers, diagnostics, updated_at
		 FROM units WHERE path = ? AND options_key = ?`,
		path, optionsKey,
	).Scan(&u.ContentHash, &u.Lua, &helpers, &diagnostics, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	if err := json.Unmarshal([]byte(helpers), &u.Helpers); err != nil {
		return nil, fmt.Errorf("failed to decode helpers of %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(diagnostics), &u.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics of %s: %w", path, err)
	}
	return u, nil
}

// PutUnit inserts or replaces the cached unit for its path and options key.
func (s *SQLiteStore) PutUnit(ctx context.Context, u *Unit) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	helpers, err := json.Marshal(nonNil(u.Helpers))
	if err != nil {
		return fmt.Errorf("failed to encode helpers: %w", err)
	}
	diagnostics, err := json.Marshal(nonNil(u.Diagnostics))
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO units (path, options_key, content_hash, lua, helpers, diagnostics, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (path, options_key) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   lua = excluded.lua,
		   helpers = excluded.helpers,
		   diagnostics = excluded.diagnostics,
		   updated_at = excluded.updated_at`,
		u.Path, u.OptionsKey, u.ContentHash, u.Lua, string(helpers), string(diagnostics), u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put unit %s: %w", u.Path, err)
	}
	return nil
}

// ClearUnits removes every cached unit and returns how many were removed.
func (s *SQLiteStore) ClearUnits(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM units`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear units: %w", err)
	}
	return res.RowsAffected()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
