package memory

import (
	"sync"

	"codeberg.org/miketth/vrboard/pkg/keymap"
)

type KeymapStore struct {
	keymaps map[string]keymap.Keymap
	lock    sync.Mutex
}

func NewKeymapStore() *KeymapStore {
	return &KeymapStore{
		keymaps: make(map[string]keymap.Keymap),
	}
}

func (s *KeymapStore) GetActiveKeymap(session string) (keymap.Keymap, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	km, ok := s.keymaps[session]
	return km, ok, nil
}

func (s *KeymapStore) SetActiveKeymap(session string, km keymap.Keymap) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.keymaps[session] = km
	return nil
}
