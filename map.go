// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashmap is a separately chained hash map with live views and
// removal-capable cursors.
//
// # Layout
//
// A Map is an array of bucket heads whose length is always a power of two,
// plus a count of live entries. Each bucket head is the first node of a
// singly linked chain of the nodes whose key hashes to that bucket, i.e. a
// node with hash h lives in bucket h&(capacity-1). New nodes are prepended,
// so chains carry no order. An empty map holds no array at all; the array is
// allocated on the first insert and released again by Clear.
//
// # Resizing
//
// The map is checked for resizing exactly once after each insert of a new
// key and once after each removal:
//
//	grow:   capacity 0 -> 16, or size >= 2*capacity -> 2*capacity
//	shrink: size <= capacity/3 -> capacity/2
//
// A resize allocates a new array and rehomes every node by its cached hash.
// Shrinking is single-step: removing the last entry of a large map halves
// the array once rather than releasing it, and the map only converges toward
// its minimal size through further removals. This bounds the cost of any
// single operation to one reallocation.
//
// # Views and cursors
//
// Entries, Keys and Values return views over the map that share its
// storage. A view's Cursor walks the buckets in array order and can remove
// the entry it last returned in O(1). Cursors are not snapshots and do not
// detect concurrent modification: mutating the map through anything other
// than the cursor's own Remove while the cursor is in use produces
// unspecified (but memory-safe) iteration results.
//
// # Keys
//
// Keys are hashed and compared by a Hasher. Maps created with New use the
// runtime's hash for comparable keys and treat the zero value of K as the
// nil key; NewWithHasher accepts any key type. The nil key always lives in
// bucket 0, and at most one entry can be keyed by it.
package hashmap

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Map is an unordered map from keys to values with Put, Get, Remove and
// cursor-based traversal. By default a Map[K,V] created with New uses the
// same hash function as Go's builtin map[K]V, though a different hash
// function can be specified using the WithHash or WithHasher options.
//
// A Map is NOT goroutine-safe.
type Map[K, V any] struct {
	hasher Hasher[K]
	// isNil reports whether a key is the nil key. It is nil when the hasher
	// designates no nil key.
	isNil      func(key K) bool
	valueEqual func(a, b V) bool
	factory    NodeFactory[K, V]
	allocator  Allocator[K, V]
	logger     *zap.Logger
	// buckets is nil when the map is unallocated. Otherwise len(buckets) is
	// a power of two and is used as a mask to compute h%len(buckets).
	buckets []Node[K, V]
	// The number of reachable nodes.
	size int
}

// New constructs a new Map with the specified initial capacity, rounded up
// to a power of two. If initialCapacity is 0 the map will start out with no
// backing array and will allocate one on the first insert.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	return newMap[K, V](initialCapacity, makeComparableHasher[K](), options)
}

// NewWithHasher constructs a new Map whose keys are hashed and compared by
// hasher. It is the constructor for key types that are not comparable or
// whose notion of equality differs from ==.
func NewWithHasher[K, V any](
	initialCapacity int, hasher Hasher[K], options ...option[K, V],
) *Map[K, V] {
	return newMap[K, V](initialCapacity, hasher, options)
}

func newMap[K, V any](initialCapacity int, hasher Hasher[K], options []option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		valueEqual: defaultValueEqual[V],
		factory:    newNode[K, V],
		allocator:  defaultAllocator[K, V]{},
		logger:     zap.NewNop(),
	}
	m.setHasher(hasher)

	for _, op := range options {
		op.apply(m)
	}

	if initialCapacity > 0 {
		m.resize(initialCapacity)
	}
	m.checkInvariants()
	return m
}

func (m *Map[K, V]) setHasher(hasher Hasher[K]) {
	m.hasher = hasher
	m.isNil = nil
	if nk, ok := hasher.(nilKeyer[K]); ok {
		m.isNil = nk.IsNil
	}
}

// hashKey returns the hash of key, which is 0 for the nil key.
func (m *Map[K, V]) hashKey(key K) uint64 {
	if m.isNil != nil && m.isNil(key) {
		return 0
	}
	return m.hasher.Hash(key)
}

func (m *Map[K, V]) keysEqual(a, b K) bool {
	if m.isNil != nil {
		an, bn := m.isNil(a), m.isNil(b)
		if an || bn {
			return an && bn
		}
	}
	return m.hasher.Equal(a, b)
}

// bucketIndex returns the bucket for hash value h. The map must be
// allocated.
func (m *Map[K, V]) bucketIndex(h uint64) int {
	return int(h & uint64(len(m.buckets)-1))
}

// find returns the node holding key, or nil.
func (m *Map[K, V]) find(key K) Node[K, V] {
	if m.buckets == nil {
		return nil
	}
	return m.findHashed(key, m.hashKey(key))
}

func (m *Map[K, V]) findHashed(key K, h uint64) Node[K, V] {
	if m.buckets == nil {
		return nil
	}
	for n := m.buckets[m.bucketIndex(h)]; n != nil; n = n.Next() {
		if n.Hash() == h && m.keysEqual(key, n.Key()) {
			return n
		}
	}
	return nil
}

// Put inserts an entry into the map, overwriting the value of an existing
// entry with the same key. It returns the previous value and replaced=true
// if the key was already present. Overwriting keeps the existing node, so
// entries previously returned by a cursor observe the new value.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool) {
	h := m.hashKey(key)
	if n := m.findHashed(key, h); n != nil {
		prev = n.Value()
		n.SetValue(value)
		return prev, true
	}

	// The node is built before any state changes so that a panicking factory
	// leaves the map untouched. The growth check runs before linking because
	// an unallocated map has no bucket to link into yet.
	n := m.factory(key, value, h, nil)
	m.size++
	m.maybeGrow()
	i := m.bucketIndex(h)
	n.SetNext(m.buckets[i])
	m.buckets[i] = n
	m.checkInvariants()
	return prev, false
}

// Get retrieves the value from the map for the specified key, return ok=false
// if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if n := m.find(key); n != nil {
		return n.Value(), true
	}
	return value, false
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) bool {
	return m.find(key) != nil
}

// ContainsValue reports whether any entry holds a value equal to value. It
// visits every entry.
func (m *Map[K, V]) ContainsValue(value V) bool {
	for _, head := range m.buckets {
		for n := head; n != nil; n = n.Next() {
			if m.valueEqual(value, n.Value()) {
				return true
			}
		}
	}
	return false
}

// Remove deletes the entry for key and returns its value. It is a noop
// returning ok=false to remove a non-existent key.
func (m *Map[K, V]) Remove(key K) (value V, ok bool) {
	if m.buckets == nil {
		return value, false
	}
	h := m.hashKey(key)
	i := m.bucketIndex(h)
	var prev Node[K, V]
	for n := m.buckets[i]; n != nil; prev, n = n, n.Next() {
		if n.Hash() == h && m.keysEqual(key, n.Key()) {
			m.unlink(i, prev, n)
			m.maybeShrink()
			m.checkInvariants()
			return n.Value(), true
		}
	}
	return value, false
}

// removeNode removes target from the map by identity rather than by key. It
// is used by variants that hold a node whose key may no longer be usable,
// such as a weak key that has been collected. It reports whether target was
// found. Nodes must be pointers for identity comparison to be meaningful.
func (m *Map[K, V]) removeNode(target Node[K, V]) bool {
	if m.buckets == nil {
		return false
	}
	i := m.bucketIndex(target.Hash())
	var prev Node[K, V]
	for n := m.buckets[i]; n != nil; prev, n = n, n.Next() {
		if n == target {
			m.unlink(i, prev, n)
			m.maybeShrink()
			m.checkInvariants()
			return true
		}
	}
	return false
}

// unlink removes n from bucket i given its predecessor within the chain, or
// nil if n is the bucket head.
func (m *Map[K, V]) unlink(i int, prev, n Node[K, V]) {
	if prev == nil {
		m.buckets[i] = n.Next()
	} else {
		prev.SetNext(n.Next())
	}
	n.SetNext(nil)
	m.size--
}

// Clear deletes all entries from the map and releases the backing array,
// returning the map to its unallocated state.
func (m *Map[K, V]) Clear() {
	if m.buckets != nil {
		clear(m.buckets)
		m.allocator.Free(m.buckets)
	}
	m.buckets = nil
	m.size = 0
	m.checkInvariants()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.size
}

// All returns an iterator over the map's entries. The map must not be
// mutated during iteration: Put and Remove may reallocate the backing array
// and rehome every node, after which the traversal can skip or repeat
// entries. Use a Cursor to remove entries while traversing.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(key K, value V) bool) {
		c := newCursor(m)
		for c.HasNext() {
			e, _ := c.Next()
			if !yield(e.Key(), e.Value()) {
				return
			}
		}
	}
}

// capacity returns the length of the backing array.
func (m *Map[K, V]) capacity() int {
	return len(m.buckets)
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if err := m.validate(); err != nil {
			panic(err)
		}
	}
}

// validate verifies the structural invariants of the map.
func (m *Map[K, V]) validate() error {
	if m.buckets == nil {
		if m.size != 0 {
			return errors.AssertionFailedf("unallocated map has size %d", m.size)
		}
		return nil
	}
	capacity := len(m.buckets)
	if capacity&(capacity-1) != 0 {
		return errors.AssertionFailedf("capacity %d is not a power of two", capacity)
	}
	var count int
	for i, head := range m.buckets {
		for n := head; n != nil; n = n.Next() {
			if j := m.bucketIndex(n.Hash()); j != i {
				return errors.AssertionFailedf("node %v found in bucket %d, belongs in %d\n%s",
					n.Key(), i, j, m.debugString())
			}
			count++
		}
	}
	if count != m.size {
		return errors.AssertionFailedf("found %d reachable nodes, but size is %d\n%s",
			count, m.size, m.debugString())
	}
	return nil
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  size=%d\n", len(m.buckets), m.size)
	for i, head := range m.buckets {
		if head == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for n := head; n != nil; n = n.Next() {
			fmt.Fprintf(&buf, " %v [h=%016x]", n.Key(), n.Hash())
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
