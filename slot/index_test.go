// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) [32]byte {
	var k [32]byte
	k[31] = b
	return k
}

func TestOrderedIndexInsertBetweenSentinels(t *testing.T) {
	idx := NewOrderedIndex[string]("min", "max")

	err := idx.Put(key(5), MinValueBytes, MaxValueBytes, &Slot[string]{Value: "five"})
	require.NoError(t, err)
	require.NoError(t, idx.CheckWellFormed())

	left, right, err := idx.Neighbors(key(5))
	require.NoError(t, err)
	assert.Equal(t, MinValueBytes, left)
	assert.Equal(t, MaxValueBytes, right)

	minLeft, minRight, err := idx.Neighbors(MinValueBytes)
	require.NoError(t, err)
	assert.Equal(t, MinValueBytes, minLeft)
	assert.Equal(t, key(5), minRight)
}

func TestOrderedIndexRejectsDuplicateKey(t *testing.T) {
	idx := NewOrderedIndex[string]("min", "max")
	require.NoError(t, idx.Put(key(5), MinValueBytes, MaxValueBytes, &Slot[string]{Value: "five"}))

	err := idx.Put(key(5), MinValueBytes, MaxValueBytes, &Slot[string]{Value: "five-again"})
	assert.ErrorIs(t, err, ErrSlotAlreadyExists)
}

func TestOrderedIndexRejectsOutOfOrderInsert(t *testing.T) {
	idx := NewOrderedIndex[string]("min", "max")
	require.NoError(t, idx.Put(key(5), MinValueBytes, MaxValueBytes, &Slot[string]{Value: "five"}))

	// key(3) is not between key(5) and MaxValueBytes.
	err := idx.Put(key(3), key(5), MaxValueBytes, &Slot[string]{Value: "three"})
	assert.Error(t, err)
}

func TestOrderedIndexRemoveSplicesNeighbors(t *testing.T) {
	idx := NewOrderedIndex[string]("min", "max")
	require.NoError(t, idx.Put(key(5), MinValueBytes, MaxValueBytes, &Slot[string]{Value: "five"}))
	require.NoError(t, idx.Put(key(3), MinValueBytes, key(5), &Slot[string]{Value: "three"}))
	require.NoError(t, idx.CheckWellFormed())

	require.NoError(t, idx.Remove(key(3)))
	require.NoError(t, idx.CheckWellFormed())

	left, _, err := idx.Neighbors(key(5))
	require.NoError(t, err)
	assert.Equal(t, MinValueBytes, left)
}

func TestOrderedIndexCannotRemoveSentinel(t *testing.T) {
	idx := NewOrderedIndex[string]("min", "max")
	assert.Error(t, idx.Remove(MinValueBytes))
}

func TestKeyedIndexSecondaryLookup(t *testing.T) {
	idx := NewIndex[int]()
	s := &Slot[int]{ValueHash: key(9), Value: 100}
	require.NoError(t, idx.Put(key(9), [32]byte{}, [32]byte{}, s))
	idx.PutSecondary("epoch_start", key(1), s)

	found := idx.LookupSecondary("epoch_start", key(1))
	require.Len(t, found, 1)
	assert.Equal(t, 100, found[0].Value)

	assert.Empty(t, idx.LookupSecondary("epoch_start", key(2)))
}
