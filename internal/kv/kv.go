package kv

import "errors"

// ErrCapacityExceeded is returned by Set when the store's byte quota would be
// exceeded. Callers decide whether to evict and retry or drop the write.
var ErrCapacityExceeded = errors.New("kv: capacity exceeded")

// Store is a flat key/value byte store. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set stores the value, replacing any previous one.
	Set(key string, value []byte) error
	// Remove deletes the key. Removing a missing key is not an error.
	Remove(key string) error
	// Keys lists all stored keys in unspecified order.
	Keys() ([]string, error)
	Close() error
}
