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
	"fmt"
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// hashOptions returns hash functions that produce long chains (constant),
// a few medium chains (mod4) and mostly singleton chains (identity).
func hashOptions() map[string]func(int) uint64 {
	return map[string]func(int) uint64{
		"identity": func(k int) uint64 { return uint64(k) },
		"mod4":     func(k int) uint64 { return uint64(k % 4) },
		"constant": func(int) uint64 { return 5 },
	}
}

func TestCursorEmpty(t *testing.T) {
	for _, m := range []*Map[int, int]{New[int, int](0), New[int, int](64)} {
		c := m.Entries().Cursor()
		require.False(t, c.HasNext())
		_, err := c.Next()
		require.True(t, errors.Is(err, ErrNoMoreElements))
		require.True(t, errors.Is(c.Remove(), ErrInvalidCursorState))
	}
}

func TestCursorVisitsAll(t *testing.T) {
	for name, hash := range hashOptions() {
		t.Run(name, func(t *testing.T) {
			m := New[int, int](0, WithHash[int, int](hash))
			for i := 0; i < 100; i++ {
				m.Put(i, -i)
			}

			seen := make(map[int]int)
			c := m.Entries().Cursor()
			for c.HasNext() {
				// HasNext is idempotent.
				require.True(t, c.HasNext())
				e, err := c.Next()
				require.NoError(t, err)
				seen[e.Key()]++
				require.Equal(t, -e.Key(), e.Value())
			}
			require.Len(t, seen, 100)
			for k, n := range seen {
				require.Equal(t, 1, n, "key %d", k)
			}
			_, err := c.Next()
			require.True(t, errors.Is(err, ErrNoMoreElements))
		})
	}
}

func TestCursorRemove(t *testing.T) {
	type removePolicy struct {
		name   string
		remove func(i, key int) bool
	}
	policies := []removePolicy{
		{"all", func(i, key int) bool { return true }},
		{"none", func(i, key int) bool { return false }},
		{"even-keys", func(i, key int) bool { return key%2 == 0 }},
		{"every-third-visit", func(i, key int) bool { return i%3 == 0 }},
		{"first-visit", func(i, key int) bool { return i == 0 }},
	}

	for hashName, hash := range hashOptions() {
		for _, p := range policies {
			t.Run(fmt.Sprintf("%s/%s", hashName, p.name), func(t *testing.T) {
				const count = 100
				m := New[int, int](0, WithHash[int, int](hash))
				for i := 0; i < count; i++ {
					m.Put(i, i)
				}
				capacity := m.capacity()

				var visited, removed []int
				c := m.Entries().Cursor()
				for i := 0; c.HasNext(); i++ {
					e, err := c.Next()
					require.NoError(t, err)
					visited = append(visited, e.Key())
					if p.remove(i, e.Key()) {
						k := e.Key()
						before := m.Len()
						require.NoError(t, c.Remove())
						require.Equal(t, before-1, m.Len())
						require.False(t, m.ContainsKey(k))
						removed = append(removed, k)

						require.True(t, errors.Is(c.Remove(), ErrInvalidCursorState))
						// No reallocation while the traversal is in progress.
						require.Equal(t, capacity, m.capacity())
					}
					require.NoError(t, m.validate())
				}

				sort.Ints(visited)
				expected := make([]int, count)
				for i := range expected {
					expected[i] = i
				}
				require.Equal(t, expected, visited)

				require.Equal(t, count-len(removed), m.Len())
				for _, k := range removed {
					require.False(t, m.ContainsKey(k))
				}
				require.NoError(t, m.validate())
			})
		}
	}
}

func TestCursorDeferredShrink(t *testing.T) {
	m := New[int, int](0)
	for i := 0; i < 100; i++ {
		m.Put(i, i)
	}
	require.Equal(t, 64, m.capacity())

	c := m.Entries().Cursor()
	for i := 0; i < 90; i++ {
		_, err := c.Next()
		require.NoError(t, err)
		require.NoError(t, c.Remove())
	}
	require.Equal(t, 10, m.Len())
	require.Equal(t, 64, m.capacity())

	for c.HasNext() {
		_, err := c.Next()
		require.NoError(t, err)
	}
	// Ninety deferred checks, applied against the final size of 10, halve
	// the array until 10 > capacity/3.
	require.Equal(t, 16, m.capacity())
	require.NoError(t, m.validate())
	for k := range m.All() {
		require.GreaterOrEqual(t, k, 0)
	}
	require.Equal(t, 10, len(toBuiltinMap(m)))

	// Exhausted cursors do not apply the checks twice.
	require.False(t, c.HasNext())
	require.Equal(t, 16, m.capacity())
}

func TestCursorAbandonedShrinksGradually(t *testing.T) {
	m := New[int, int](0)
	for i := 0; i < 100; i++ {
		m.Put(i, i)
	}
	require.Equal(t, 64, m.capacity())

	c := m.Entries().Cursor()
	for i := 0; i < 99; i++ {
		_, err := c.Next()
		require.NoError(t, err)
		require.NoError(t, c.Remove())
	}
	// The cursor is abandoned before exhaustion, so its checks never run.
	require.Equal(t, 1, m.Len())
	require.Equal(t, 64, m.capacity())

	// Each later removal halves the array once rather than restoring the
	// size the resize policy would have reached. A single entry keeps the
	// array at 2.
	for _, expected := range []int{32, 16, 8, 4, 2, 2} {
		m.Put(1000, 1000)
		_, ok := m.Remove(1000)
		require.True(t, ok)
		require.Equal(t, expected, m.capacity())
		require.Equal(t, 1, m.Len())
		require.NoError(t, m.validate())
	}
}

func TestCursorEntryReflectsUpdates(t *testing.T) {
	m := New[string, int](0)
	m.Put("a", 1)
	c := m.Entries().Cursor()
	e, err := c.Next()
	require.NoError(t, err)
	m.Put("a", 2)
	require.Equal(t, 2, e.Value())
}

func TestKeyAndValueCursors(t *testing.T) {
	m := New[int, string](0)
	for i := 0; i < 10; i++ {
		m.Put(i, fmt.Sprint(i))
	}

	kc := m.Keys().Cursor()
	var keys []int
	for kc.HasNext() {
		k, err := kc.Next()
		require.NoError(t, err)
		keys = append(keys, k)
		if k < 5 {
			require.NoError(t, kc.Remove())
		}
	}
	sort.Ints(keys)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, keys)
	require.Equal(t, 5, m.Len())
	_, err := kc.Next()
	require.True(t, errors.Is(err, ErrNoMoreElements))

	vc := m.Values().Cursor()
	var values []string
	for vc.HasNext() {
		v, err := vc.Next()
		require.NoError(t, err)
		values = append(values, v)
		if v == "9" {
			require.NoError(t, vc.Remove())
			require.True(t, errors.Is(vc.Remove(), ErrInvalidCursorState))
		}
	}
	sort.Strings(values)
	require.Equal(t, []string{"5", "6", "7", "8", "9"}, values)
	require.Equal(t, 4, m.Len())
	require.False(t, m.ContainsKey(9))
	_, err = vc.Next()
	require.True(t, errors.Is(err, ErrNoMoreElements))
}

// TestKeyCursorRemoveAfterFirst removes the first key of {1,2,3} through a
// key cursor and checks that the traversal yields the other two.
func TestKeyCursorRemoveAfterFirst(t *testing.T) {
	m := New[int, int](0)
	for _, k := range []int{1, 2, 3} {
		m.Put(k, k)
	}

	c := m.Keys().Cursor()
	first, err := c.Next()
	require.NoError(t, err)
	require.NoError(t, c.Remove())

	var rest []int
	for c.HasNext() {
		k, err := c.Next()
		require.NoError(t, err)
		rest = append(rest, k)
	}
	require.Len(t, rest, 2)
	require.NotContains(t, rest, first)
	require.ElementsMatch(t, []int{1, 2, 3}, append(rest, first))
	require.Equal(t, 2, m.Len())
}

func TestMultipleCursors(t *testing.T) {
	m := New[int, int](0)
	for i := 0; i < 20; i++ {
		m.Put(i, i)
	}
	c1 := m.Entries().Cursor()
	c2 := m.Keys().Cursor()
	n1, n2 := 0, 0
	for c1.HasNext() || c2.HasNext() {
		if c1.HasNext() {
			_, err := c1.Next()
			require.NoError(t, err)
			n1++
		}
		if c2.HasNext() {
			_, err := c2.Next()
			require.NoError(t, err)
			n2++
		}
	}
	require.Equal(t, 20, n1)
	require.Equal(t, 20, n2)
}
