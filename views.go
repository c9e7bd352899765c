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

package hashmap

import (
	"iter"

	"github.com/cockroachdb/errors"
)

// EntryView is the set of entries of a Map. It holds no state of its own:
// every method reads or modifies the map directly.
type EntryView[K, V any] struct {
	m *Map[K, V]
}

// Entries returns a view of the map's entries.
func (m *Map[K, V]) Entries() EntryView[K, V] {
	return EntryView[K, V]{m}
}

// Len returns the number of entries in the map.
func (v EntryView[K, V]) Len() int { return v.m.Len() }

// Clear deletes all entries from the map.
func (v EntryView[K, V]) Clear() { v.m.Clear() }

// Contains reports whether the map holds e's key mapped to a value equal to
// e's value.
func (v EntryView[K, V]) Contains(e Entry[K, V]) bool {
	n := v.m.find(e.Key())
	return n != nil && v.m.valueEqual(e.Value(), n.Value())
}

// Add puts e into the map and reports whether its key was already mapped.
func (v EntryView[K, V]) Add(e Entry[K, V]) bool {
	_, replaced := v.m.Put(e.Key(), e.Value())
	return replaced
}

// Remove deletes the entry for e's key and reports whether there was one.
func (v EntryView[K, V]) Remove(e Entry[K, V]) bool {
	_, ok := v.m.Remove(e.Key())
	return ok
}

// Cursor returns a new cursor positioned before the first entry.
func (v EntryView[K, V]) Cursor() *Cursor[K, V] {
	return newCursor(v.m)
}

// All returns an iterator over the map's entries.
func (v EntryView[K, V]) All() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		c := newCursor(v.m)
		for c.HasNext() {
			e, _ := c.Next()
			if !yield(e) {
				return
			}
		}
	}
}

// KeyView is the set of keys of a Map.
type KeyView[K, V any] struct {
	m *Map[K, V]
}

// Keys returns a view of the map's keys.
func (m *Map[K, V]) Keys() KeyView[K, V] {
	return KeyView[K, V]{m}
}

// Len returns the number of keys in the map.
func (v KeyView[K, V]) Len() int { return v.m.Len() }

// Clear deletes all entries from the map.
func (v KeyView[K, V]) Clear() { v.m.Clear() }

// Contains reports whether key is present in the map.
func (v KeyView[K, V]) Contains(key K) bool {
	return v.m.ContainsKey(key)
}

// Add maps key to the zero value of V and reports whether key was already
// mapped. An existing mapping is overwritten.
func (v KeyView[K, V]) Add(key K) bool {
	var zero V
	_, replaced := v.m.Put(key, zero)
	return replaced
}

// Remove deletes the entry for key and reports whether there was one.
func (v KeyView[K, V]) Remove(key K) bool {
	_, ok := v.m.Remove(key)
	return ok
}

// Cursor returns a new cursor positioned before the first key.
func (v KeyView[K, V]) Cursor() *KeyCursor[K, V] {
	return &KeyCursor[K, V]{entries: newCursor(v.m)}
}

// All returns an iterator over the map's keys.
func (v KeyView[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		c := newCursor(v.m)
		for c.HasNext() {
			e, _ := c.Next()
			if !yield(e.Key()) {
				return
			}
		}
	}
}

// ValueView is the collection of values of a Map. Values are not unique, so
// the view cannot add or remove by value.
type ValueView[K, V any] struct {
	m *Map[K, V]
}

// Values returns a view of the map's values.
func (m *Map[K, V]) Values() ValueView[K, V] {
	return ValueView[K, V]{m}
}

// Len returns the number of values in the map.
func (v ValueView[K, V]) Len() int { return v.m.Len() }

// Clear deletes all entries from the map.
func (v ValueView[K, V]) Clear() { v.m.Clear() }

// Contains reports whether any entry holds a value equal to value.
func (v ValueView[K, V]) Contains(value V) bool {
	return v.m.ContainsValue(value)
}

// Add always returns ErrUnsupported.
func (v ValueView[K, V]) Add(value V) error {
	return errors.Wrapf(ErrUnsupported, "add %v to value view", value)
}

// Remove always returns ErrUnsupported.
func (v ValueView[K, V]) Remove(value V) error {
	return errors.Wrapf(ErrUnsupported, "remove %v from value view", value)
}

// Cursor returns a new cursor positioned before the first value.
func (v ValueView[K, V]) Cursor() *ValueCursor[K, V] {
	return &ValueCursor[K, V]{entries: newCursor(v.m)}
}

// All returns an iterator over the map's values.
func (v ValueView[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		c := newCursor(v.m)
		for c.HasNext() {
			e, _ := c.Next()
			if !yield(e.Value()) {
				return
			}
		}
	}
}
