// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "sort"

// insertionEntry is one point in the piecewise map between pre-insert and
// post-insert byte offsets: at offset (in the new stream), delta bytes
// have been inserted before it, cumulatively.
type insertionEntry struct {
	offset int
	delta  int
}

// insertionMap is the ordered piece table described in the design notes:
// the single source of truth the fixup pass consults to translate an
// old-stream offset into its new-stream counterpart. It always starts
// with (0, 0) and is sorted by offset.
type insertionMap struct {
	entries []insertionEntry
}

func newInsertionMap() *insertionMap {
	return &insertionMap{entries: []insertionEntry{{offset: 0, delta: 0}}}
}

// record appends a new insertion point. Per the spec, the opcode pass
// only ever appends — entries arrive in increasing offset order during
// that pass.
func (m *insertionMap) record(offset, delta int) {
	m.entries = append(m.entries, insertionEntry{offset: offset, delta: delta})
}

// delta returns the cumulative number of bytes inserted at or before x,
// found via a rightmost binary search (the last entry whose offset is
// <= x).
func (m *insertionMap) delta(x int) int {
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].offset > x
	})
	if i == 0 {
		return 0
	}
	return m.entries[i-1].delta
}

// shiftFrom shifts every entry whose offset is >= p forward by n bytes,
// used when the extended-argument splitter inserts a new EXTENDED_ARG
// instruction at offset p: every later insertion point moves down the
// stream by n, but the cumulative delta values recorded at those points
// don't change (the quantity being tracked — bytes inserted upstream of
// that point — didn't itself grow from this particular shift).
func (m *insertionMap) shiftFrom(p, n int) {
	for i := range m.entries {
		if m.entries[i].offset >= p {
			m.entries[i].offset += n
		}
	}
}
