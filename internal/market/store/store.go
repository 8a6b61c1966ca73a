// Package store provides ordered-key storage with atomic read-modify-write
// transactions. Every marketplace operation runs inside a single Update
// transaction, so an error anywhere in the operation discards all of its
// writes.
package store

import "errors"

// ErrKeyNotFound is returned by Txn.Get for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// Store is the persistence contract the marketplace components depend on.
type Store interface {
	// View runs fn in a read-only transaction.
	View(fn func(Txn) error) error
	// Update runs fn in a read-write transaction. The transaction commits
	// only when fn returns nil; any error discards every write.
	Update(fn func(Txn) error) error
	Close() error
}

// Txn exposes the operations available inside a transaction. Iteration is in
// ascending byte order of keys.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, val []byte) error
	Delete(key []byte) error
	// IteratePrefix walks keys beginning with prefix, starting at seek when
	// non-nil (seek must itself carry the prefix). fn returning false stops
	// the walk early.
	IteratePrefix(prefix, seek []byte, fn func(key, val []byte) (bool, error)) error
}
