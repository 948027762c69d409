package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

const getActiveKeymap = `SELECT layout, variant FROM active_keymap WHERE session = ?`

const setActiveKeymap = `INSERT INTO active_keymap (session, layout, variant) VALUES (?, ?, ?)
ON CONFLICT (session) DO UPDATE SET layout = excluded.layout, variant = excluded.variant, updated_at = CURRENT_TIMESTAMP`

type activeKeymap struct {
	Layout  string
	Variant string
}

type queries struct {
	db *sql.DB
}

func (q *queries) getActiveKeymap(ctx context.Context, session string) (activeKeymap, bool, error) {
	var row activeKeymap
	err := q.db.QueryRowContext(ctx, getActiveKeymap, session).Scan(&row.Layout, &row.Variant)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return activeKeymap{}, false, nil
	case err != nil:
		return activeKeymap{}, false, err
	}
	return row, true, nil
}

func (q *queries) setActiveKeymap(ctx context.Context, session string, row activeKeymap) error {
	_, err := q.db.ExecContext(ctx, setActiveKeymap, session, row.Layout, row.Variant)
	return err
}
