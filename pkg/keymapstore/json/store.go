package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"codeberg.org/miketth/vrboard/pkg/keymap"
)

type record struct {
	Layout  string `json:"layout"`
	Variant string `json:"variant,omitempty"`
}

type KeymapStore struct {
	keymaps map[string]record
	file    *os.File
	lock    sync.Mutex
	dirty   bool
}

func NewKeymapStore(filename string) (*KeymapStore, error) {
	fileExists := true
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &KeymapStore{
		keymaps: make(map[string]record),
		file:    file,
		dirty:   true,
	}

	if fileExists {
		err = store.load()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}

		store.dirty = false
	}

	return store, nil
}

func (s *KeymapStore) Close() error {
	return s.file.Close()
}

func (s *KeymapStore) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	stat, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if stat.Size() == 0 {
		return nil
	}

	err = json.NewDecoder(s.file).Decode(&s.keymaps)
	if err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// Save writes the keymaps to disk if they changed since the last save.
func (s *KeymapStore) Save() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	err = json.NewEncoder(s.file).Encode(s.keymaps)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

// SaveLooper saves every interval until ctx ends, then saves once more.
func (s *KeymapStore) SaveLooper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := s.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			return ctx.Err()
		case <-ticker.C:
			err := s.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
}

func (s *KeymapStore) GetActiveKeymap(session string) (keymap.Keymap, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	r, ok := s.keymaps[session]
	if !ok {
		return keymap.Keymap{}, false, nil
	}
	return keymap.Keymap{Layout: r.Layout, Variant: r.Variant}, true, nil
}

func (s *KeymapStore) SetActiveKeymap(session string, km keymap.Keymap) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	r := record{Layout: km.Layout, Variant: km.Variant}
	if s.keymaps[session] == r {
		return nil
	}
	s.keymaps[session] = r
	s.dirty = true
	return nil
}
