// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "github.com/pycdown/pycdown/marshalformat"

// getOrAddName returns the index of name within names, appending it if
// absent. Equality is by value, and existing indices never change —
// required for the table-monotonicity property.
func getOrAddName(names *[]string, name string) int {
	for i, n := range *names {
		if n == name {
			return i
		}
	}
	*names = append(*names, name)
	return len(*names) - 1
}

// getOrAddConst returns the index of a constant equal to val within
// consts, appending it if absent. Code-object constants are never passed
// here — they're compared and deduplicated nowhere in this design, since
// the constants pre-pass already gives every nested code object a stable
// slot before the opcode pass runs.
func getOrAddConst(consts *[]marshalformat.Const, val marshalformat.Const) int {
	for i, c := range *consts {
		if constEqual(c, val) {
			return i
		}
	}
	*consts = append(*consts, val)
	return len(*consts) - 1
}

func constEqual(a, b marshalformat.Const) bool {
	switch av := a.(type) {
	case marshalformat.ConstStr:
		bv, ok := b.(marshalformat.ConstStr)
		return ok && av == bv
	case marshalformat.ConstInt:
		bv, ok := b.(marshalformat.ConstInt)
		return ok && av == bv
	case marshalformat.ConstBool:
		bv, ok := b.(marshalformat.ConstBool)
		return ok && av == bv
	case marshalformat.ConstNone:
		_, ok := b.(marshalformat.ConstNone)
		return ok
	case marshalformat.ConstBytes:
		bv, ok := b.(marshalformat.ConstBytes)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		// Tuples and nested code objects are never interned by this
		// rewriter (LIST_EXTEND's synthesized string constant is the
		// only caller, and it always passes a ConstStr).
		return false
	}
}
