// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store wraps a local embedded goleveldb database with the
// namespaced key layout §6 describes: per-slot entries keyed by
// (launcher, nonce, value_hash), secondary indexes by epoch_start and
// puzzle_hash, the singleton-coin index, and per-registry configuration.
// Grounded on tolelom-tolchain/storage's direct use of goleveldb for
// exactly this kind of local chain-adjacent index.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned when a lookup finds no value at the requested
// key.
var ErrNotFound = errors.New("store: not found")

// DB wraps a goleveldb handle with namespace-prefixed helper methods.
type DB struct {
	db *leveldb.DB
}

// Open opens (or creates) a store at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Get returns the value for key, or ErrNotFound.
func (d *DB) Get(key []byte) ([]byte, error) {
	val, err := d.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return val, err
}

// Put writes key/value.
func (d *DB) Put(key, value []byte) error {
	return d.db.Put(key, value, nil)
}

// Delete removes key, a no-op if it isn't present.
func (d *DB) Delete(key []byte) error {
	return d.db.Delete(key, nil)
}

// Iterator yields keys under a namespace prefix in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// NewIterator returns an iterator over every key sharing prefix.
func (d *DB) NewIterator(prefix []byte) Iterator {
	return d.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// slotKey builds the "slot:{launcher}:{nonce}:{value_hash}" namespace key
// §6 specifies.
func slotKey(launcherID [32]byte, nonce uint8, valueHash [32]byte) []byte {
	key := make([]byte, 0, 5+32+1+1+32)
	key = append(key, "slot:"...)
	key = append(key, launcherID[:]...)
	key = append(key, ':')
	key = append(key, nonce)
	key = append(key, ':')
	key = append(key, valueHash[:]...)
	return key
}

// PutSlot persists a slot's raw encoded value under its primary namespace
// key.
func (d *DB) PutSlot(launcherID [32]byte, nonce uint8, valueHash [32]byte, encoded []byte) error {
	return d.Put(slotKey(launcherID, nonce, valueHash), encoded)
}

// GetSlot retrieves a slot's raw encoded value.
func (d *DB) GetSlot(launcherID [32]byte, nonce uint8, valueHash [32]byte) ([]byte, error) {
	return d.Get(slotKey(launcherID, nonce, valueHash))
}

// DeleteSlot removes a slot's entry once it is spent.
func (d *DB) DeleteSlot(launcherID [32]byte, nonce uint8, valueHash [32]byte) error {
	return d.Delete(slotKey(launcherID, nonce, valueHash))
}

// secondaryKey builds a "{indexName}:{secondaryKey}:{primaryKey}" namespace
// key for one of the secondary indexes §6 names (by epoch_start, by
// puzzle_hash, by expiration).
func secondaryKey(indexName string, secondaryKey [32]byte, primaryKey [32]byte) []byte {
	key := make([]byte, 0, len(indexName)+1+32+1+32)
	key = append(key, indexName...)
	key = append(key, ':')
	key = append(key, secondaryKey[:]...)
	key = append(key, ':')
	key = append(key, primaryKey[:]...)
	return key
}

// PutSecondary records that primaryKey is reachable via a secondary index
// entry. The value stored is the primary key itself, so an iterator over
// the secondary namespace recovers the full set of matching primary keys
// without reading the slot's value.
func (d *DB) PutSecondary(indexName string, secondaryKeyVal, primaryKey [32]byte) error {
	return d.Put(secondaryKey(indexName, secondaryKeyVal, primaryKey), primaryKey[:])
}

// IterateSecondary returns every primary key recorded under a secondary
// index value.
func (d *DB) IterateSecondary(indexName string, secondaryKeyVal [32]byte) ([][32]byte, error) {
	prefix := make([]byte, 0, len(indexName)+1+32+1)
	prefix = append(prefix, indexName...)
	prefix = append(prefix, ':')
	prefix = append(prefix, secondaryKeyVal[:]...)
	prefix = append(prefix, ':')

	it := d.NewIterator(prefix)
	defer it.Release()

	var out [][32]byte
	for it.Next() {
		var pk [32]byte
		copy(pk[:], it.Value())
		out = append(out, pk)
	}
	return out, it.Error()
}

// SingletonCoinKey builds the singleton coin namespace key for a launcher
// ID.
func SingletonCoinKey(launcherID [32]byte) []byte {
	key := make([]byte, 0, 10+32)
	key = append(key, "singleton:"...)
	key = append(key, launcherID[:]...)
	return key
}

// RegistryConfigKey builds the per-registry configuration namespace key
// for a launcher ID.
func RegistryConfigKey(launcherID [32]byte) []byte {
	key := make([]byte, 0, 7+32)
	key = append(key, "config:"...)
	key = append(key, launcherID[:]...)
	return key
}

// uint64Key renders v as a big-endian 8-byte key component so
// lexicographic byte order matches numeric order — needed for range scans
// over an ordered secondary index such as "by expiration" or "by
// epoch_start".
func uint64Key(v uint64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b
}

// OrderedIndexKey builds a "{indexName}:{orderedValue}:{primaryKey}"
// namespace key whose ordering matches the numeric order of value, for
// indexes like xchandles' by-expiration table or rewarddist's by-epoch
// table where a consumer needs "everything before/after X", not just an
// exact-match lookup.
func OrderedIndexKey(indexName string, value uint64, primaryKey [32]byte) []byte {
	ordered := uint64Key(value)
	key := make([]byte, 0, len(indexName)+1+8+1+32)
	key = append(key, indexName...)
	key = append(key, ':')
	key = append(key, ordered[:]...)
	key = append(key, ':')
	key = append(key, primaryKey[:]...)
	return key
}

// OrderedIndexPrefix builds the "{indexName}:" prefix shared by every
// OrderedIndexKey of one index. Paired with NewIterator it walks the whole
// index in numeric order; callers stop at their own upper bound, since
// goleveldb's prefix iterator does not support open ranges directly.
func OrderedIndexPrefix(indexName string) []byte {
	prefix := make([]byte, 0, len(indexName)+1)
	prefix = append(prefix, indexName...)
	prefix = append(prefix, ':')
	return prefix
}
