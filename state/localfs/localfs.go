// Package localfs implements a file-backed state.Store.
package localfs

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"signet.sh/signet/state"
)

// Store is a local filesystem-backed instance store.
//
// Each key maps to one file; the key is hex-encoded so arbitrary key bytes
// never reach the filesystem namespace. Writes go through a temp file and
// rename, so a crashed Set never leaves a torn value behind. This
// implementation is offline and deterministic: it never uses the network and
// never depends on wall-clock time.
type Store struct {
	root string
}

// New constructs a filesystem store rooted at root. The directory will be created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, state.ErrInvalidKey
	}
	b, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, state.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Store) Set(key string, value []byte) error {
	if key == "" {
		return state.ErrInvalidKey
	}
	path := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".set-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Store) Has(key string) bool {
	if key == "" {
		return false
	}
	_, err := os.Stat(s.pathFor(key))
	return err == nil
}

func (s *Store) pathFor(key string) string {
	enc := hex.EncodeToString([]byte(key))
	if len(enc) < 2 {
		return filepath.Join(s.root, enc+".bin")
	}
	return filepath.Join(s.root, enc[:2], enc+".bin")
}
