package state

import "sort"

// Buffered stages writes over a base Store until Commit.
//
// Reads see staged writes first, then fall through to the base, so code
// running inside an invocation observes its own effects. Nothing reaches the
// base until Commit; discarding the Buffered discards the writes. This is the
// mechanism behind the all-or-nothing rule: the host commits only on the
// non-faulting success path.
type Buffered struct {
	base    Store
	pending map[string][]byte
}

func NewBuffered(base Store) *Buffered {
	return &Buffered{base: base, pending: map[string][]byte{}}
}

func (b *Buffered) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if v, ok := b.pending[key]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return b.base.Get(key)
}

func (b *Buffered) Set(key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	v := make([]byte, len(value))
	copy(v, value)
	b.pending[key] = v
	return nil
}

func (b *Buffered) Has(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := b.pending[key]; ok {
		return true
	}
	return b.base.Has(key)
}

// Len reports the number of staged writes.
func (b *Buffered) Len() int { return len(b.pending) }

// Commit applies staged writes to the base in sorted key order.
//
// Key order is fixed to keep the write sequence deterministic; map iteration
// order would make replay and failure injection nondeterministic.
func (b *Buffered) Commit() error {
	keys := make([]string, 0, len(b.pending))
	for k := range b.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := b.base.Set(k, b.pending[k]); err != nil {
			return err
		}
	}
	b.pending = map[string][]byte{}
	return nil
}

// Discard drops all staged writes.
func (b *Buffered) Discard() {
	b.pending = map[string][]byte{}
}
