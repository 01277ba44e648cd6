// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rewrite implements the opcode-level translation of a 3.9 code
// object into a 3.8-compatible one: replacing 3.9-only instructions,
// recomputing jump targets, and inserting EXTENDED_ARG prefixes where an
// operand grows past one byte. It is a pure function of its input — no
// I/O, no package-level state — so a caller can run it over every code
// object in a module, or a test can run it over a single hand-built one.
package rewrite

import "github.com/pycdown/pycdown/marshalformat"

// Code returns a new code object implementing the 3.8-compatible
// equivalent of code, recursing into nested code-object constants first so
// every constant table keeps stable indices by the time the enclosing
// code's own instructions are rewritten. code itself is never modified.
func Code(code *marshalformat.Code) (*marshalformat.Code, error) {
	out := deepCopyCode(code)

	for i, c := range out.Consts {
		nested, ok := c.(*marshalformat.Code)
		if !ok {
			continue
		}
		rewritten, err := Code(nested)
		if err != nil {
			return nil, err
		}
		out.Consts[i] = rewritten
	}

	draft, im, err := opcodePass(out, out.Name)
	if err != nil {
		return nil, err
	}
	final, err := fixupPass(draft, im, out.Name)
	if err != nil {
		return nil, err
	}
	if len(final)%2 != 0 {
		return nil, InternalInvariant{Reason: "rewritten bytecode has odd length", QualifiedName: out.Name}
	}

	out.Bytecode = final
	return out, nil
}
