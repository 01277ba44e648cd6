// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "fmt"

// UnimplementedOpcode is returned when the opcode pass encounters a
// 3.9-only opcode it has no rewrite rule for (SET_UPDATE,
// JUMP_IF_NOT_EXC_MATCH). Both would require design work analogous to
// LIST_EXTEND and RERAISE; the spec marks them explicitly unimplemented
// rather than guessing at a translation.
type UnimplementedOpcode struct {
	Opcode       byte
	OpName       string
	Offset       int
	QualifiedName string
}

func (e UnimplementedOpcode) Error() string {
	return fmt.Sprintf("rewrite: unimplemented opcode %s (%d) at offset %d in %s",
		e.OpName, e.Opcode, e.Offset, e.QualifiedName)
}

// IndexOverflow is returned when a rewrite needs to reference a names or
// consts index beyond 255 for an opcode this design never precedes with
// EXTENDED_ARG (LOAD_ASSERTION_ERROR's LOAD_GLOBAL replacement, and the
// LOAD_NAME/LOAD_CONST pair of LIST_EXTEND's replacement).
type IndexOverflow struct {
	OpName        string
	Index         int
	QualifiedName string
}

func (e IndexOverflow) Error() string {
	return fmt.Sprintf("rewrite: index %d for %s overflows one byte in %s", e.Index, e.OpName, e.QualifiedName)
}

// InternalInvariant is returned when a condition the rewriter depends on
// does not hold — bytecode of odd length, a LIST_EXTEND or RERAISE operand
// or LIST_EXTEND preceding shape with no supported rewrite, or a jump
// target that doesn't land on an even offset after fixup. These
// indicate either malformed input or a gap in the pattern rules, not a
// recoverable condition.
type InternalInvariant struct {
	Reason        string
	QualifiedName string
}

func (e InternalInvariant) Error() string {
	return fmt.Sprintf("rewrite: internal invariant violated in %s: %s", e.QualifiedName, e.Reason)
}
