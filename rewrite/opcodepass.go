// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pycdown/pycdown/marshalformat"
	"github.com/pycdown/pycdown/opcodes"
)

// opcodePass walks code's bytecode instruction by instruction, replacing
// every 3.9-only opcode with its 3.8 equivalent, and returns the draft
// stream plus the insertion map recording every point the stream grew.
// code.Names and code.Consts are appended to in place as rewrites need new
// entries; nothing is ever removed from either table.
func opcodePass(code *marshalformat.Code, qualifiedName string) ([]byte, *insertionMap, error) {
	raw := code.Bytecode
	if len(raw)%2 != 0 {
		return nil, nil, InternalInvariant{Reason: "bytecode has odd length", QualifiedName: qualifiedName}
	}

	draft := make([]byte, 0, len(raw))
	im := newInsertionMap()

	for i := 0; i < len(raw); i += 2 {
		op, arg := raw[i], raw[i+1]

		switch op {
		case opcodes.LoadAssertionError.Code:
			idx := getOrAddName(&code.Names, "AssertionError")
			if idx > 255 {
				return nil, nil, IndexOverflow{OpName: opcodes.LoadAssertionError.Name, Index: idx, QualifiedName: qualifiedName}
			}
			draft = append(draft, opcodes.LoadGlobal.Code, byte(idx))

		case opcodes.IsOp.Code:
			cmp := opcodes.CompareIs
			if arg != 0 {
				cmp = opcodes.CompareIsNot
			}
			draft = append(draft, opcodes.CompareOp.Code, byte(cmp))

		case opcodes.ContainsOp.Code:
			cmp := opcodes.CompareIn
			if arg != 0 {
				cmp = opcodes.CompareNotIn
			}
			draft = append(draft, opcodes.CompareOp.Code, byte(cmp))

		case opcodes.ListExtend.Code:
			if arg != 1 {
				return nil, nil, InternalInvariant{
					Reason:        fmt.Sprintf("LIST_EXTEND with operand %d has no supported rewrite (only operand 1 does)", arg),
					QualifiedName: qualifiedName,
				}
			}
			rewritten, err := rewriteListExtend(draft, code, qualifiedName)
			if err != nil {
				return nil, nil, err
			}
			draft = rewritten

		case opcodes.ReRaise.Code:
			if arg != 0 {
				return nil, nil, InternalInvariant{
					Reason:        fmt.Sprintf("RERAISE with operand %d has no supported rewrite (only operand 0 does)", arg),
					QualifiedName: qualifiedName,
				}
			}
			draft = rewriteReraise(draft, im, qualifiedName)

		case opcodes.SetUpdate.Code:
			return nil, nil, UnimplementedOpcode{Opcode: op, OpName: opcodes.SetUpdate.Name, Offset: i, QualifiedName: qualifiedName}

		case opcodes.JumpIfNotExcMatch.Code:
			return nil, nil, UnimplementedOpcode{Opcode: op, OpName: opcodes.JumpIfNotExcMatch.Name, Offset: i, QualifiedName: qualifiedName}

		default:
			draft = append(draft, op, arg)
		}
	}

	return draft, im, nil
}

// rewriteListExtend handles the one LIST_EXTEND shape this tool supports:
// a constant-folded list display, compiled as LOAD_CONST <tuple>;
// BUILD_LIST 0; LIST_EXTEND 1. 3.8 has no LIST_EXTEND, so instead of
// decomposing the tuple into individual LOAD_CONST/BUILD_LIST instructions,
// this reconstructs the list at runtime from its textual form: LOAD_NAME
// eval; LOAD_CONST "<list literal>"; CALL_FUNCTION 1. Three instructions
// replace three instructions (the two already drafted plus the LIST_EXTEND
// itself, which is never copied through), so the stream doesn't grow.
func rewriteListExtend(draft []byte, code *marshalformat.Code, qualifiedName string) ([]byte, error) {
	if len(draft) < 4 {
		return nil, InternalInvariant{Reason: "LIST_EXTEND has no preceding LOAD_CONST/BUILD_LIST pair", QualifiedName: qualifiedName}
	}

	loadConstOp, constIdx := draft[len(draft)-4], draft[len(draft)-3]
	buildListOp, buildListArg := draft[len(draft)-2], draft[len(draft)-1]
	if loadConstOp != opcodes.LoadConst.Code || buildListOp != opcodes.BuildList.Code || buildListArg != 0 {
		return nil, InternalInvariant{Reason: "LIST_EXTEND preceding instructions are not LOAD_CONST/BUILD_LIST 0", QualifiedName: qualifiedName}
	}
	if int(constIdx) >= len(code.Consts) {
		return nil, InternalInvariant{Reason: "LIST_EXTEND's LOAD_CONST index is out of range", QualifiedName: qualifiedName}
	}
	tuple, ok := code.Consts[constIdx].(marshalformat.ConstTuple)
	if !ok {
		return nil, InternalInvariant{Reason: "LIST_EXTEND's constant is not a tuple", QualifiedName: qualifiedName}
	}

	evalIdx := getOrAddName(&code.Names, "eval")
	if evalIdx > 255 {
		return nil, IndexOverflow{OpName: "LOAD_NAME(eval)", Index: evalIdx, QualifiedName: qualifiedName}
	}
	literalIdx := getOrAddConst(&code.Consts, marshalformat.ConstStr(pyListLiteral(tuple)))
	if literalIdx > 255 {
		return nil, IndexOverflow{OpName: "LOAD_CONST(list literal)", Index: literalIdx, QualifiedName: qualifiedName}
	}

	draft = draft[:len(draft)-4]
	draft = append(draft,
		opcodes.LoadName.Code, byte(evalIdx),
		opcodes.LoadConst.Code, byte(literalIdx),
		opcodes.CallFunction.Code, 1,
	)
	return draft, nil
}

// pyListLiteral renders a constant tuple as Python source text for a list
// display, the form LIST_EXTEND's eval-based replacement expects.
func pyListLiteral(t marshalformat.ConstTuple) string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = pyRepr(c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyRepr(c marshalformat.Const) string {
	switch v := c.(type) {
	case marshalformat.ConstNone:
		return "None"
	case marshalformat.ConstBool:
		if v {
			return "True"
		}
		return "False"
	case marshalformat.ConstInt:
		return strconv.FormatInt(int64(v), 10)
	case marshalformat.ConstStr:
		return strconv.Quote(string(v))
	case marshalformat.ConstBytes:
		return fmt.Sprintf("b%s", strconv.Quote(string(v)))
	case marshalformat.ConstTuple:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = pyRepr(item)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		// A nested code object reaching here would mean a constant-folded
		// list display contained a code object, which CPython never emits.
		return "None"
	}
}

// rewriteReraise implements the RERAISE 0 -> [JUMP_FORWARD 2, END_FINALLY 0]
// translation. 3.8 has no RERAISE; the draft's tail is pattern-matched
// against the except-block epilogue shapes this tool recognizes, looking
// back at most 4 already-emitted instructions for a POP_EXCEPT. Growth is
// recorded in im whenever the sequence is spliced in rather than merely
// appended in place of the single END_FINALLY fallback.
func rewriteReraise(draft []byte, im *insertionMap, qualifiedName string) []byte {
	const maxLookback = 4 // instructions, i.e. 8 bytes — see design notes
	n := len(draft)
	avail := n / 2
	if avail > maxLookback {
		avail = maxLookback
	}

	type instr struct{ op, arg byte }
	tail := make([]instr, avail)
	for i := 0; i < avail; i++ {
		off := n - (avail-i)*2
		tail[i] = instr{draft[off], draft[off+1]}
	}

	popIdx := -1
	for i, ins := range tail {
		if ins.op == opcodes.PopExcept.Code {
			popIdx = i
			break
		}
	}

	appendEndFinally := func() []byte {
		return append(draft, opcodes.EndFinally.Code, 0)
	}

	if popIdx == -1 {
		// Otherwise: no recognizable POP_EXCEPT in range.
		return appendEndFinally()
	}

	k := len(tail) - popIdx - 1 // instructions strictly after POP_EXCEPT, within the window
	seq := []byte{opcodes.JumpForward.Code, 2, opcodes.EndFinally.Code, 0}

	switch {
	case k == 3 || k == 4:
		// Splice right after the single instruction following POP_EXCEPT,
		// before the final 2 (k==3) or 3 (k==4) instructions. With a
		// 4-instruction window k is at most 3, so the k==4 branch is never
		// taken: a POP_EXCEPT followed by four instructions lies outside
		// the window and gets the bare END_FINALLY fallback.
		spliceAt := n - (k-1)*2
		return spliceAndRecord(draft, spliceAt, seq, im)

	case k == 2 && tail[popIdx+2].op == opcodes.JumpForward.Code && tail[popIdx+2].arg == 2:
		// The epilogue already ends in JUMP_FORWARD 2; only the
		// END_FINALLY is missing, and appending it keeps the stream
		// length in lockstep with the input (RERAISE's own 2 bytes are
		// never copied through, so this costs nothing extra).
		return appendEndFinally()

	case k == 1:
		// Splice immediately after POP_EXCEPT itself, before the final
		// instruction.
		spliceAt := n - 1*2
		return spliceAndRecord(draft, spliceAt, seq, im)

	default:
		return appendEndFinally()
	}
}

// spliceAndRecord inserts seq into draft at pos and records the growth in
// im, using the cumulative delta of the prior entry as the base (entries
// are appended in increasing offset order during the opcode pass). Growth
// is measured against the RERAISE instruction being translated, whose own
// 2 bytes are never copied into draft — so len(seq) overstates the actual
// growth by those 2 bytes.
func spliceAndRecord(draft []byte, pos int, seq []byte, im *insertionMap) []byte {
	out := make([]byte, 0, len(draft)+len(seq))
	out = append(out, draft[:pos]...)
	out = append(out, seq...)
	out = append(out, draft[pos:]...)

	prev := im.entries[len(im.entries)-1]
	im.record(pos+len(seq), prev.delta+(len(seq)-2))
	return out
}
