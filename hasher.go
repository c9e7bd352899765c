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
	"hash/maphash"
	"reflect"
)

// A Hasher defines a hash function and an equivalence relation over keys of
// type K. Equal keys must hash identically.
//
// A Hasher may additionally implement
//
//	IsNil(key K) bool
//
// to designate the map's nil key. A nil key always hashes to 0 and is equal
// only to another nil key; Hash and Equal are never called with it.
type Hasher[K any] interface {
	Hash(key K) uint64
	Equal(a, b K) bool
}

type nilKeyer[K any] interface {
	IsNil(key K) bool
}

// comparableHasher is the default Hasher for comparable keys. It hashes
// with the same algorithm the runtime uses for map[K]V.
type comparableHasher[K comparable] struct {
	seed maphash.Seed
}

func makeComparableHasher[K comparable]() comparableHasher[K] {
	return comparableHasher[K]{seed: maphash.MakeSeed()}
}

func (h comparableHasher[K]) Hash(key K) uint64 {
	return maphash.Comparable(h.seed, key)
}

func (comparableHasher[K]) Equal(a, b K) bool {
	return a == b
}

func (comparableHasher[K]) IsNil(key K) bool {
	var zero K
	return key == zero
}

// funcHasher adapts a bare hash function to a Hasher using == for equality.
type funcHasher[K comparable] struct {
	hash func(key K) uint64
}

func (h funcHasher[K]) Hash(key K) uint64 { return h.hash(key) }
func (funcHasher[K]) Equal(a, b K) bool   { return a == b }
func (funcHasher[K]) IsNil(key K) bool {
	var zero K
	return key == zero
}

// defaultValueEqual compares values the way ContainsValue does unless
// WithValueEqual overrides it. reflect.DeepEqual tolerates value types that
// are not comparable (slices, maps), where == on an interface would panic.
func defaultValueEqual[V any](a, b V) bool {
	return reflect.DeepEqual(a, b)
}
