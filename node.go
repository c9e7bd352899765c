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

// Entry is a key/value pair. Entries returned by a Cursor are the map's own
// nodes: they reflect later updates to the value of the same key until the
// entry is removed.
type Entry[K, V any] interface {
	Key() K
	Value() V
}

// Node is the unit of storage in a Map. Every node is owned by exactly one
// bucket chain. Implementations other than the default are supplied through
// WithNodeFactory and must return from Hash the value passed to the factory
// for the node's entire lifetime: the map relies on it to relocate a node
// during resize and to find it again in removeNode, which may happen after
// the key itself is no longer reachable.
type Node[K, V any] interface {
	Entry[K, V]
	SetValue(value V)
	Hash() uint64
	Next() Node[K, V]
	SetNext(next Node[K, V])
}

// NodeFactory constructs a node holding key and value whose key hashes to
// hash. The map passes a nil next and links the node into its bucket with
// SetNext once the factory has returned.
type NodeFactory[K, V any] func(key K, value V, hash uint64, next Node[K, V]) Node[K, V]

type node[K, V any] struct {
	key   K
	value V
	hash  uint64
	next  Node[K, V]
}

func newNode[K, V any](key K, value V, hash uint64, next Node[K, V]) Node[K, V] {
	return &node[K, V]{key: key, value: value, hash: hash, next: next}
}

func (n *node[K, V]) Key() K                  { return n.key }
func (n *node[K, V]) Value() V                { return n.value }
func (n *node[K, V]) SetValue(value V)        { n.value = value }
func (n *node[K, V]) Hash() uint64            { return n.hash }
func (n *node[K, V]) Next() Node[K, V]        { return n.next }
func (n *node[K, V]) SetNext(next Node[K, V]) { n.next = next }

type pair[K, V any] struct {
	key   K
	value V
}

func (p pair[K, V]) Key() K   { return p.key }
func (p pair[K, V]) Value() V { return p.value }

// MakeEntry returns a free-standing Entry for use with EntryView.
func MakeEntry[K, V any](key K, value V) Entry[K, V] {
	return pair[K, V]{key: key, value: value}
}
