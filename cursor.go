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

// Cursor is a single pass traversal over the entries of a Map that can
// remove the entry it returned last. Buckets are visited in array order and
// each chain from its head.
//
// A Cursor keeps three nodes: the lookahead (the next entry to return,
// resolved by HasNext), the current entry (the last one returned by Next)
// and the current entry's predecessor in its chain. Tracking the predecessor
// as the cursor descends a chain makes Remove O(1).
//
// Removals through the cursor do not reallocate the map while the traversal
// is in progress, since rehoming nodes would reorder the buckets still to be
// visited. The resize checks they owe run when HasNext first reports the end
// of the traversal. A cursor abandoned before that leaves the map larger
// than the resize policy would. Later removals on the map shrink it one
// halving at a time, so it converges only gradually.
//
// Modifying the map other than through the cursor's own Remove while the
// cursor is in use has unspecified effects on the traversal.
type Cursor[K, V any] struct {
	m *Map[K, V]
	// scanned is the index of the last bucket examined. The lookahead, when
	// present, lives in this bucket.
	scanned   int
	lookahead Node[K, V]
	// lookaheadIsHead is set when lookahead was loaded from a bucket head
	// rather than reached by following the current entry's chain.
	lookaheadIsHead bool
	// current is nil before the first Next and after Remove.
	current Node[K, V]
	// bucket is the bucket of current.
	bucket int
	// prev is the node linked in front of current, or nil if current is the
	// head of its bucket.
	prev Node[K, V]
	// pendingShrinks counts the removals whose resize check has not run.
	pendingShrinks int
}

func newCursor[K, V any](m *Map[K, V]) *Cursor[K, V] {
	return &Cursor[K, V]{m: m, scanned: -1}
}

// HasNext reports whether Next will return an entry. It is idempotent:
// repeated calls without an intervening Next do not skip entries.
func (c *Cursor[K, V]) HasNext() bool {
	if c.lookahead != nil {
		return true
	}
	for c.scanned+1 < len(c.m.buckets) {
		c.scanned++
		if head := c.m.buckets[c.scanned]; head != nil {
			c.lookahead = head
			c.lookaheadIsHead = true
			return true
		}
	}
	c.finish()
	return false
}

// Next returns the next entry, or ErrNoMoreElements if the traversal is
// complete.
func (c *Cursor[K, V]) Next() (Entry[K, V], error) {
	if !c.HasNext() {
		return nil, ErrNoMoreElements
	}
	switch {
	case c.lookaheadIsHead:
		c.prev = nil
	case c.current != nil:
		c.prev = c.current
	default:
		// The previous entry was removed, so its predecessor now precedes
		// the lookahead.
	}
	c.current = c.lookahead
	c.bucket = c.scanned
	c.lookahead = c.current.Next()
	c.lookaheadIsHead = false
	return c.current, nil
}

// Remove deletes the entry most recently returned by Next from the map. It
// returns ErrInvalidCursorState if Next has not been called or the entry
// has already been removed.
func (c *Cursor[K, V]) Remove() error {
	if c.current == nil {
		return ErrInvalidCursorState
	}
	c.m.unlink(c.bucket, c.prev, c.current)
	c.current = nil
	c.pendingShrinks++
	c.m.checkInvariants()
	return nil
}

// finish runs the resize checks deferred by Remove.
func (c *Cursor[K, V]) finish() {
	for ; c.pendingShrinks > 0; c.pendingShrinks-- {
		c.m.maybeShrink()
	}
	c.m.checkInvariants()
}

// KeyCursor is a Cursor over the keys of a Map.
type KeyCursor[K, V any] struct {
	entries *Cursor[K, V]
}

// HasNext reports whether Next will return a key.
func (c *KeyCursor[K, V]) HasNext() bool {
	return c.entries.HasNext()
}

// Next returns the next key, or ErrNoMoreElements.
func (c *KeyCursor[K, V]) Next() (key K, _ error) {
	e, err := c.entries.Next()
	if err != nil {
		return key, err
	}
	return e.Key(), nil
}

// Remove deletes the entry of the key most recently returned by Next.
func (c *KeyCursor[K, V]) Remove() error {
	return c.entries.Remove()
}

// ValueCursor is a Cursor over the values of a Map.
type ValueCursor[K, V any] struct {
	entries *Cursor[K, V]
}

// HasNext reports whether Next will return a value.
func (c *ValueCursor[K, V]) HasNext() bool {
	return c.entries.HasNext()
}

// Next returns the next value, or ErrNoMoreElements.
func (c *ValueCursor[K, V]) Next() (value V, _ error) {
	e, err := c.entries.Next()
	if err != nil {
		return value, err
	}
	return e.Value(), nil
}

// Remove deletes the entry of the value most recently returned by Next.
func (c *ValueCursor[K, V]) Remove() error {
	return c.entries.Remove()
}
