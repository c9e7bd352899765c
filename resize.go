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
	"math/bits"

	"go.uber.org/zap"
)

const (
	// initialAllocCapacity is the capacity of the first array allocated for
	// an unallocated map.
	initialAllocCapacity = 16
	// maxLoad is the average chain length at which the array doubles.
	maxLoad = 2
	// minLoadDivisor: the array halves once size <= capacity/minLoadDivisor.
	minLoadDivisor = 3
)

// growTarget returns the capacity a map should be reallocated to after an
// insert brought it to size entries, and whether a reallocation is needed.
func growTarget(capacity, size int) (int, bool) {
	switch {
	case capacity == 0:
		return initialAllocCapacity, true
	case size >= capacity*maxLoad:
		return capacity * 2, true
	}
	return capacity, false
}

// shrinkTarget returns the capacity a map should be reallocated to after a
// removal brought it to size entries, and whether a reallocation is needed.
// A target of 0 means the array is released.
func shrinkTarget(capacity, size int) (int, bool) {
	if capacity == 0 || size > capacity/minLoadDivisor {
		return capacity, false
	}
	if capacity <= 2 {
		return 0, true
	}
	return capacity / 2, true
}

// maxCapacity is the largest power of two representable as an int.
const maxCapacity = 1 << (bits.UintSize - 2)

// nextPowerOfTwo returns the smallest power of two >= n. Values of n <= 1
// return 1 and values above maxCapacity are clamped to it.
func nextPowerOfTwo(n int) int {
	switch {
	case n <= 1:
		return 1
	case n >= maxCapacity:
		return maxCapacity
	}
	return 1 << bits.Len(uint(n-1))
}

func (m *Map[K, V]) maybeGrow() {
	if target, ok := growTarget(len(m.buckets), m.size); ok {
		m.resize(target)
	}
}

func (m *Map[K, V]) maybeShrink() {
	if target, ok := shrinkTarget(len(m.buckets), m.size); ok {
		m.resize(target)
	}
}

// resize reallocates the backing array to hold capacity buckets, rounded up
// to a power of two, and moves every node to the bucket its hash selects
// under the new capacity. A capacity of 0 releases the array, which is only
// valid when the map is empty. Resizing to the current capacity is a noop.
//
// Nodes are rehomed by prepending, so chain order is not preserved.
func (m *Map[K, V]) resize(capacity int) {
	if capacity > 0 {
		capacity = nextPowerOfTwo(capacity)
	}
	oldCapacity := len(m.buckets)
	if capacity == oldCapacity {
		return
	}

	var newBuckets []Node[K, V]
	if capacity > 0 {
		newBuckets = m.allocator.Alloc(capacity)
	}
	mask := uint64(capacity - 1)
	for i, head := range m.buckets {
		var next Node[K, V]
		for n := head; n != nil; n = next {
			next = n.Next()
			j := n.Hash() & mask
			n.SetNext(newBuckets[j])
			newBuckets[j] = n
		}
		m.buckets[i] = nil
	}

	if m.buckets != nil {
		m.allocator.Free(m.buckets)
	}
	m.buckets = newBuckets

	if ce := m.logger.Check(zap.DebugLevel, "hashmap resized"); ce != nil {
		ce.Write(
			zap.Int("from", oldCapacity),
			zap.Int("to", capacity),
			zap.Int("size", m.size),
		)
	}
}
