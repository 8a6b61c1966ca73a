package store

import (
	"sync"

	"github.com/tidwall/btree"
)

// MemoryStore is an in-memory Store backed by a copy-on-write B-tree. Update
// transactions mutate a cheap copy of the tree and publish it on commit, so a
// failed operation leaves the store untouched. Used by tests and by the
// ":memory:" data-dir option.
type MemoryStore struct {
	mu   sync.RWMutex
	tree *btree.Map[string, []byte]
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{tree: new(btree.Map[string, []byte])}
}

func (s *MemoryStore) View(fn func(Txn) error) error {
	s.mu.RLock()
	snapshot := s.tree
	s.mu.RUnlock()
	return fn(&memoryTxn{tree: snapshot})
}

func (s *MemoryStore) Update(fn func(Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.tree.Copy()
	if err := fn(&memoryTxn{tree: working}); err != nil {
		return err
	}
	s.tree = working
	return nil
}

func (s *MemoryStore) Close() error { return nil }

type memoryTxn struct {
	tree *btree.Map[string, []byte]
}

func (t *memoryTxn) Get(key []byte) ([]byte, error) {
	val, ok := t.tree.Get(string(key))
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (t *memoryTxn) Set(key, val []byte) error {
	stored := make([]byte, len(val))
	copy(stored, val)
	t.tree.Set(string(key), stored)
	return nil
}

func (t *memoryTxn) Delete(key []byte) error {
	t.tree.Delete(string(key))
	return nil
}

func (t *memoryTxn) IteratePrefix(prefix, seek []byte, fn func(key, val []byte) (bool, error)) error {
	start := string(prefix)
	if seek != nil {
		start = string(seek)
	}
	var iterErr error
	t.tree.Ascend(start, func(key string, val []byte) bool {
		if len(key) < len(prefix) || key[:len(prefix)] != string(prefix) {
			return false
		}
		cont, err := fn([]byte(key), val)
		if err != nil {
			iterErr = err
			return false
		}
		return cont
	})
	return iterErr
}
