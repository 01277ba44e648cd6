// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"fmt"

	"github.com/pycdown/pycdown/opcodes"
)

// fixupPass recomputes every jump operand in draft against im, the
// insertion map built by the opcode pass, and splits any operand that no
// longer fits in a byte into an EXTENDED_ARG prefix.
//
// extendedAccum mirrors the interpreter's own handling of EXTENDED_ARG: it
// accumulates the high bits of a multi-byte operand across consecutive
// EXTENDED_ARG instructions in the *input* stream and resets to 0 after
// every instruction that isn't EXTENDED_ARG. The full pre-fixup operand for
// the instruction at offset i is (extendedAccum << 8) | arg.
func fixupPass(draft []byte, im *insertionMap, qualifiedName string) ([]byte, error) {
	if len(draft)%2 != 0 {
		return nil, InternalInvariant{Reason: "draft bytecode has odd length", QualifiedName: qualifiedName}
	}

	out := make([]byte, 0, len(draft))
	extendedAccum := 0

	for i := 0; i < len(draft); i += 2 {
		op, arg := draft[i], draft[i+1]

		if op == opcodes.ExtendedArg.Code {
			out = append(out, op, arg)
			extendedAccum = (extendedAccum << 8) | int(arg)
			continue
		}

		full := (extendedAccum << 8) | int(arg)
		newFull := full

		switch {
		case opcodes.IsAbsJump(op):
			newFull = full + im.delta(full)
		case opcodes.IsRelJump(op):
			target := i + full + 2
			newFull = full + im.delta(target) - im.delta(i)
		}
		if (opcodes.IsAbsJump(op) || opcodes.IsRelJump(op)) && newFull%2 != 0 {
			return nil, InternalInvariant{
				Reason:        fmt.Sprintf("jump at offset %d has odd operand %d after fixup", i, newFull),
				QualifiedName: qualifiedName,
			}
		}

		writeOffset := len(out)
		out = append(out, op, byte(newFull))

		if newFull >= 256 {
			if extendedAccum != 0 {
				// An EXTENDED_ARG already precedes this instruction in the
				// output; rewrite its operand in place rather than
				// inserting a second prefix.
				out[writeOffset-1] = byte(newFull >> 8)
			} else {
				extArgOperand := byte((newFull >> 8) - 1)
				out = spliceBytesAt(out, writeOffset, []byte{opcodes.ExtendedArg.Code, extArgOperand})
				im.shiftFrom(writeOffset, 2)
			}
		}

		extendedAccum = 0
	}

	return out, nil
}

func spliceBytesAt(buf []byte, pos int, ins []byte) []byte {
	out := make([]byte, 0, len(buf)+len(ins))
	out = append(out, buf[:pos]...)
	out = append(out, ins...)
	out = append(out, buf[pos:]...)
	return out
}
