package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"codeberg.org/miketth/vrboard/pkg/keymapstore/sqlite/migrations"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type KeymapStore struct {
	db      *sql.DB
	querier *queries
}

func NewKeymapStore(filename string, log *zap.SugaredLogger) (*KeymapStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &KeymapStore{
		db:      db,
		querier: &queries{db: db},
	}, nil
}

func (s *KeymapStore) Close() error {
	return s.db.Close()
}

func (s *KeymapStore) GetActiveKeymap(session string) (keymap.Keymap, bool, error) {
	row, ok, err := s.querier.getActiveKeymap(context.Background(), session)
	if err != nil {
		return keymap.Keymap{}, false, fmt.Errorf("sqlite select: %w", err)
	}
	if !ok {
		return keymap.Keymap{}, false, nil
	}

	return keymap.Keymap{Layout: row.Layout, Variant: row.Variant}, true, nil
}

func (s *KeymapStore) SetActiveKeymap(session string, km keymap.Keymap) error {
	if err := s.querier.setActiveKeymap(context.Background(), session, activeKeymap{
		Layout:  km.Layout,
		Variant: km.Variant,
	}); err != nil {
		return fmt.Errorf("sqlite upsert: %w", err)
	}

	return nil
}
