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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/thepudds/fzgen/fuzzer"
)

type fuzzOp struct {
	Kind  uint8
	Key   uint8
	Value int
}

// FuzzOps applies a fuzzer-chosen sequence of operations to a Map and to a
// builtin map and compares them after every step. Keys are drawn from a
// small space and hashed weakly so that chains and reallocations are
// frequent.
func FuzzOps(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15})
	f.Add([]byte("put put put remove cursor clear put"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var ops []fuzzOp
		fz := fuzzer.NewFuzzer(data)
		fz.Fill(&ops)

		m := New[uint8, int](0, WithHash[uint8, int](func(k uint8) uint64 {
			return uint64(k % 7)
		}))
		e := make(map[uint8]int)

		for _, op := range ops {
			switch op.Kind % 6 {
			case 0, 1:
				prev, replaced := m.Put(op.Key, op.Value)
				want, ok := e[op.Key]
				if replaced != ok || prev != want {
					t.Fatalf("Put(%d) = %d, %t; want %d, %t", op.Key, prev, replaced, want, ok)
				}
				e[op.Key] = op.Value
			case 2:
				v, ok := m.Remove(op.Key)
				want, wantOk := e[op.Key]
				if ok != wantOk || v != want {
					t.Fatalf("Remove(%d) = %d, %t; want %d, %t", op.Key, v, ok, want, wantOk)
				}
				delete(e, op.Key)
			case 3:
				v, ok := m.Get(op.Key)
				want, wantOk := e[op.Key]
				if ok != wantOk || v != want {
					t.Fatalf("Get(%d) = %d, %t; want %d, %t", op.Key, v, ok, want, wantOk)
				}
			case 4:
				// Remove every key congruent to op.Key mod 3 through a cursor.
				c := m.Keys().Cursor()
				for c.HasNext() {
					k, err := c.Next()
					if err != nil {
						t.Fatal(err)
					}
					if k%3 == op.Key%3 {
						if err := c.Remove(); err != nil {
							t.Fatal(err)
						}
						delete(e, k)
					}
				}
			case 5:
				if op.Value%8 == 0 {
					m.Clear()
					clear(e)
				}
			}

			if m.Len() != len(e) {
				t.Fatalf("Len() = %d, want %d", m.Len(), len(e))
			}
			if err := m.validate(); err != nil {
				t.Fatal(err)
			}
		}

		if diff := cmp.Diff(e, toBuiltinMap(m)); diff != "" {
			t.Fatalf("contents mismatch (-want +got):\n%s", diff)
		}
	})
}
