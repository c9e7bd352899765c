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

import "github.com/cockroachdb/errors"

var (
	// ErrNoMoreElements is returned by Next when the cursor is exhausted.
	ErrNoMoreElements = errors.New("hashmap: no more elements")

	// ErrInvalidCursorState is returned by Remove when the cursor has no
	// current entry: Next has not been called, or the entry it returned has
	// already been removed.
	ErrInvalidCursorState = errors.New("hashmap: invalid cursor state")

	// ErrUnsupported is returned by ValueView.Add and ValueView.Remove.
	ErrUnsupported = errors.New("hashmap: unsupported operation")
)
