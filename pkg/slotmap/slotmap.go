package slotmap

// Key identifies a value in a SlotMap. The zero Key never resolves.
type Key struct {
	idx     uint32
	version uint32
}

func (k Key) IsNull() bool {
	return k.version == 0
}

type slot[V any] struct {
	value   V
	version uint32
	used    bool
}

// SlotMap is an arena whose keys stay valid until the value is removed,
// regardless of other insertions. Freed slots are reused with a new version,
// so stale keys never alias a later value.
type SlotMap[V any] struct {
	slots []slot[V]
	free  []uint32
	len   int
}

func (m *SlotMap[V]) Insert(value V) Key {
	m.len++

	if n := len(m.free); n > 0 {
		idx := m.free[n-1]
		m.free = m.free[:n-1]

		s := &m.slots[idx]
		s.value = value
		s.used = true
		return Key{idx: idx, version: s.version}
	}

	m.slots = append(m.slots, slot[V]{value: value, version: 1, used: true})
	return Key{idx: uint32(len(m.slots) - 1), version: 1}
}

func (m *SlotMap[V]) Get(k Key) (V, bool) {
	if !m.Contains(k) {
		var zero V
		return zero, false
	}
	return m.slots[k.idx].value, true
}

func (m *SlotMap[V]) Contains(k Key) bool {
	if k.IsNull() || int(k.idx) >= len(m.slots) {
		return false
	}
	s := m.slots[k.idx]
	return s.used && s.version == k.version
}

func (m *SlotMap[V]) Remove(k Key) (V, bool) {
	var zero V
	if !m.Contains(k) {
		return zero, false
	}

	s := &m.slots[k.idx]
	value := s.value
	s.value = zero
	s.used = false
	s.version++
	if s.version == 0 {
		// version 0 is the null key
		s.version = 1
	}
	m.free = append(m.free, k.idx)
	m.len--
	return value, true
}

func (m *SlotMap[V]) Len() int {
	return m.len
}
