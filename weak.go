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
	"runtime"
	"sync"
	"weak"

	"go.uber.org/zap"
)

// WeakMap is a Map keyed by pointers that does not keep the pointed-to
// objects alive. Once the garbage collector reclaims a key, its entry is
// removed at the start of the next operation on the map.
//
// Values are held strongly. A value that references its own key keeps the
// entry alive forever.
//
// Like Map, a WeakMap is NOT goroutine-safe. The runtime reports reclaimed
// keys from its own goroutine; those reports are queued and applied by the
// goroutine using the map.
type WeakMap[T, V any] struct {
	m     *Map[weak.Pointer[T], V]
	queue *reapQueue[T, V]
}

type weakNode[T, V any] struct {
	node[weak.Pointer[T], V]
	cleanup    runtime.Cleanup
	registered bool
}

func (n *weakNode[T, V]) stop() {
	if n.registered {
		n.cleanup.Stop()
		n.registered = false
	}
}

// reapQueue collects the nodes whose keys have been reclaimed.
type reapQueue[T, V any] struct {
	mu    sync.Mutex
	nodes []*weakNode[T, V]
}

func (q *reapQueue[T, V]) push(n *weakNode[T, V]) {
	q.mu.Lock()
	q.nodes = append(q.nodes, n)
	q.mu.Unlock()
}

func (q *reapQueue[T, V]) take() []*weakNode[T, V] {
	q.mu.Lock()
	defer q.mu.Unlock()
	nodes := q.nodes
	q.nodes = nil
	return nodes
}

func (q *reapQueue[T, V]) newNode(
	key weak.Pointer[T], value V, hash uint64, next Node[weak.Pointer[T], V],
) Node[weak.Pointer[T], V] {
	n := &weakNode[T, V]{
		node: node[weak.Pointer[T], V]{key: key, value: value, hash: hash, next: next},
	}
	if p := key.Value(); p != nil {
		n.cleanup = runtime.AddCleanup(p, q.push, n)
		n.registered = true
	}
	return n
}

// NewWeak constructs a new WeakMap with the specified initial capacity.
func NewWeak[T, V any](initialCapacity int, options ...option[weak.Pointer[T], V]) *WeakMap[T, V] {
	q := &reapQueue[T, V]{}
	options = append(options[:len(options):len(options)],
		WithNodeFactory[weak.Pointer[T], V](q.newNode))
	return &WeakMap[T, V]{
		m:     New[weak.Pointer[T], V](initialCapacity, options...),
		queue: q,
	}
}

// reap removes the entries whose keys have been reclaimed.
func (w *WeakMap[T, V]) reap() {
	for _, n := range w.queue.take() {
		n.registered = false
		if w.m.removeNode(n) {
			if ce := w.m.logger.Check(zap.DebugLevel, "hashmap reaped weak entry"); ce != nil {
				ce.Write(zap.Uint64("hash", n.Hash()), zap.Int("size", w.m.size))
			}
		}
	}
}

// Put maps key to value, returning the previous value and replaced=true if
// key was already present.
func (w *WeakMap[T, V]) Put(key *T, value V) (prev V, replaced bool) {
	w.reap()
	return w.m.Put(weak.Make(key), value)
}

// Get retrieves the value for key.
func (w *WeakMap[T, V]) Get(key *T) (value V, ok bool) {
	w.reap()
	return w.m.Get(weak.Make(key))
}

// Remove deletes the entry for key and returns its value.
func (w *WeakMap[T, V]) Remove(key *T) (value V, ok bool) {
	w.reap()
	n := w.m.find(weak.Make(key))
	if n == nil {
		return value, false
	}
	n.(*weakNode[T, V]).stop()
	w.m.removeNode(n)
	return n.Value(), true
}

// Len returns the number of entries whose keys have not been reclaimed, or
// whose reclamation has not yet been observed.
func (w *WeakMap[T, V]) Len() int {
	w.reap()
	return w.m.Len()
}

// Clear deletes all entries.
func (w *WeakMap[T, V]) Clear() {
	for _, head := range w.m.buckets {
		for n := head; n != nil; n = n.Next() {
			n.(*weakNode[T, V]).stop()
		}
	}
	w.m.Clear()
	w.queue.take()
}

// All returns an iterator over the entries whose keys are still reachable.
func (w *WeakMap[T, V]) All() iter.Seq2[*T, V] {
	return func(yield func(key *T, value V) bool) {
		w.reap()
		for k, v := range w.m.All() {
			if p := k.Value(); p != nil && !yield(p, v) {
				return
			}
		}
	}
}
