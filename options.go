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

import "go.uber.org/zap"

// option provide an interface to do work on Map while it is being created.
type option[K, V any] interface {
	apply(m *Map[K, V])
}

type hasherOption[K, V any] struct {
	hasher Hasher[K]
}

func (op hasherOption[K, V]) apply(m *Map[K, V]) {
	m.setHasher(op.hasher)
}

// WithHasher is an option to specify the hash function and key equality to
// use for a Map[K,V].
func WithHasher[K, V any](hasher Hasher[K]) option[K, V] {
	return hasherOption[K, V]{hasher}
}

// WithHash is an option to specify the hash function to use for a Map[K,V]
// with comparable keys. Keys are still compared with ==.
func WithHash[K comparable, V any](hash func(key K) uint64) option[K, V] {
	return hasherOption[K, V]{funcHasher[K]{hash}}
}

type valueEqualOption[K, V any] struct {
	equal func(a, b V) bool
}

func (op valueEqualOption[K, V]) apply(m *Map[K, V]) {
	m.valueEqual = op.equal
}

// WithValueEqual is an option to specify the predicate used by
// ContainsValue, ValueView.Contains and EntryView.Contains. The default is
// reflect.DeepEqual.
func WithValueEqual[K, V any](equal func(a, b V) bool) option[K, V] {
	return valueEqualOption[K, V]{equal}
}

type nodeFactoryOption[K, V any] struct {
	factory NodeFactory[K, V]
}

func (op nodeFactoryOption[K, V]) apply(m *Map[K, V]) {
	m.factory = op.factory
}

// WithNodeFactory is an option to specify how nodes are constructed. It is
// the extension point for variants that need extra per-entry state or
// teardown, such as weakly held keys.
func WithNodeFactory[K, V any](factory NodeFactory[K, V]) option[K, V] {
	return nodeFactoryOption[K, V]{factory}
}

// Allocator specifies an interface for allocating and releasing the bucket
// arrays used by a Map. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
type Allocator[K, V any] interface {
	// Alloc should return a slice equivalent to make([]Node[K,V], n).
	Alloc(n int) []Node[K, V]

	// Free can optionally release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by Alloc. The slice
	// no longer references any live node when Free is called.
	Free(v []Node[K, V])
}

type defaultAllocator[K, V any] struct{}

func (defaultAllocator[K, V]) Alloc(n int) []Node[K, V] {
	return make([]Node[K, V], n)
}

func (defaultAllocator[K, V]) Free(v []Node[K, V]) {
}

type allocatorOption[K, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *Map[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[K,V].
func WithAllocator[K, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}

type loggerOption[K, V any] struct {
	logger *zap.Logger
}

func (op loggerOption[K, V]) apply(m *Map[K, V]) {
	m.logger = op.logger
}

// WithLogger is an option to specify the logger a Map[K,V] reports
// reallocations to. Messages are emitted at debug level. The default logger
// discards everything.
func WithLogger[K, V any](logger *zap.Logger) option[K, V] {
	return loggerOption[K, V]{logger}
}
