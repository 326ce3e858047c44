package state

// Prefixed namespaces a Store under a fixed key prefix.
//
// Each account instance gets its own Prefixed view of the host store, so one
// instance's entries can never collide with another's.
type Prefixed struct {
	Base   Store
	Prefix string
}

func NewPrefixed(base Store, prefix string) Prefixed {
	return Prefixed{Base: base, Prefix: prefix}
}

func (p Prefixed) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	return p.Base.Get(p.Prefix + key)
}

func (p Prefixed) Set(key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	return p.Base.Set(p.Prefix+key, value)
}

func (p Prefixed) Has(key string) bool {
	if key == "" {
		return false
	}
	return p.Base.Has(p.Prefix + key)
}
