// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opcodes holds the byte values and classification flags for the
// instruction set of both the source (3.9) and target (3.8) interpreter
// releases this tool bridges. Only the opcodes the rewriter or fixup pass
// actually inspects by name are given symbolic constants; everything else
// passes through the rewriter as an opaque (op, arg) pair.
package opcodes

// Op describes one bytecode instruction: its numeric value, its name for
// diagnostics, and how the fixup pass should treat its operand.
type Op struct {
	Code byte
	Name string

	// AbsJump and RelJump classify how the fixup pass should reinterpret
	// this opcode's operand; at most one is ever true.
	AbsJump bool
	RelJump bool
}

var byCode = map[byte]*Op{}

func newOp(code byte, name string) *Op {
	op := &Op{Code: code, Name: name}
	byCode[code] = op
	return op
}

func newJump(code byte, name string, absolute bool) *Op {
	op := newOp(code, name)
	if absolute {
		op.AbsJump = true
	} else {
		op.RelJump = true
	}
	return op
}

// New looks up an opcode by its numeric value. ok is false for any byte
// value this package has no symbolic name for (still a legal instruction
// — most of the instruction set passes through the rewriter unexamined).
func New(code byte) (op Op, ok bool) {
	p, found := byCode[code]
	if !found {
		return Op{Code: code}, false
	}
	return *p, true
}

// The 3.9-only opcodes the rewriter replaces or rejects.
var (
	LoadAssertionError   = newOp(74, "LOAD_ASSERTION_ERROR")
	ReRaise              = newOp(48, "RERAISE")
	IsOp                 = newOp(117, "IS_OP")
	ContainsOp           = newOp(118, "CONTAINS_OP")
	JumpIfNotExcMatch    = newJump(121, "JUMP_IF_NOT_EXC_MATCH", true)
	ListExtend           = newOp(162, "LIST_EXTEND")
	SetUpdate            = newOp(163, "SET_UPDATE")
)

// Opcodes common to both releases that the rewriter emits, consults for
// pattern matching, or that the fixup pass must classify as jumps.
var (
	PopTop        = newOp(1, "POP_TOP")
	DupTop        = newOp(4, "DUP_TOP")
	PopExcept     = newOp(89, "POP_EXCEPT")
	EndFinally    = newOp(88, "END_FINALLY")
	LoadConst     = newOp(100, "LOAD_CONST")
	LoadName      = newOp(101, "LOAD_NAME")
	BuildTuple    = newOp(102, "BUILD_TUPLE")
	BuildList     = newOp(103, "BUILD_LIST")
	LoadGlobal    = newOp(116, "LOAD_GLOBAL")
	CompareOp     = newOp(107, "COMPARE_OP")
	CallFunction  = newOp(131, "CALL_FUNCTION")
	ExtendedArg   = newOp(144, "EXTENDED_ARG")

	JumpForward       = newJump(110, "JUMP_FORWARD", false)
	JumpAbsolute      = newJump(113, "JUMP_ABSOLUTE", true)
	PopJumpIfFalse    = newJump(114, "POP_JUMP_IF_FALSE", true)
	PopJumpIfTrue     = newJump(115, "POP_JUMP_IF_TRUE", true)
	JumpIfFalseOrPop  = newJump(111, "JUMP_IF_FALSE_OR_POP", true)
	JumpIfTrueOrPop   = newJump(112, "JUMP_IF_TRUE_OR_POP", true)
	SetupFinally      = newJump(122, "SETUP_FINALLY", false)
	ForIter           = newJump(93, "FOR_ITER", false)
	SetupWith         = newJump(143, "SETUP_WITH", false)
)

// Compare-operator codes used by the IS_OP/CONTAINS_OP -> COMPARE_OP
// rewrite (§4.2 of the spec).
const (
	CompareIn    = 6
	CompareNotIn = 7
	CompareIs    = 8
	CompareIsNot = 9
)

// IsAbsJump reports whether op is classified as an absolute jump by the
// fixup pass.
func IsAbsJump(op byte) bool {
	p, ok := byCode[op]
	return ok && p.AbsJump
}

// IsRelJump reports whether op is classified as a relative jump by the
// fixup pass.
func IsRelJump(op byte) bool {
	p, ok := byCode[op]
	return ok && p.RelJump
}
