package state

import "errors"

// Fallback provides deterministic, ordered read fallback across multiple
// stores.
//
// Read order is the slice order in Stores; callers MUST supply a fixed order.
// Writes go only to the first store.
type Fallback struct {
	Stores []Store
}

func (f Fallback) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	for _, s := range f.Stores {
		v, err := s.Get(key)
		if err == nil {
			return v, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (f Fallback) Set(key string, value []byte) error {
	if len(f.Stores) == 0 {
		return errors.New("state: Fallback has no stores")
	}
	return f.Stores[0].Set(key, value)
}

func (f Fallback) Has(key string) bool {
	for _, s := range f.Stores {
		if s.Has(key) {
			return true
		}
	}
	return false
}
