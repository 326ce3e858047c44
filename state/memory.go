package state

// Memory is an in-process Store.
//
// Values are copied on the way in and out, so callers cannot alias the
// store's internal buffers.
type Memory struct {
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: map[string][]byte{}}
}

func (m *Memory) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.entries[key] = v
	return nil
}

func (m *Memory) Has(key string) bool {
	if key == "" {
		return false
	}
	_, ok := m.entries[key]
	return ok
}
