// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"reflect"
	"testing"

	"github.com/pycdown/pycdown/marshalformat"
	"github.com/pycdown/pycdown/opcodes"
)

func codeOf(bytecode []byte, names []string, consts []marshalformat.Const) *marshalformat.Code {
	return &marshalformat.Code{
		Bytecode: bytecode,
		Names:    names,
		Consts:   consts,
		Name:     "<test>",
	}
}

func TestOpcodePassLoadAssertionError(t *testing.T) {
	code := codeOf([]byte{opcodes.LoadAssertionError.Code, 0}, nil, nil)
	draft, _, err := opcodePass(code, code.Name)
	if err != nil {
		t.Fatalf("opcodePass: %v", err)
	}
	want := []byte{opcodes.LoadGlobal.Code, 0}
	if !reflect.DeepEqual(draft, want) {
		t.Errorf("draft = % x, want % x", draft, want)
	}
	if got, want := code.Names, []string{"AssertionError"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestOpcodePassIsOp(t *testing.T) {
	cases := []struct {
		arg  byte
		want byte
	}{
		{0, opcodes.CompareIs},
		{1, opcodes.CompareIsNot},
	}
	for _, c := range cases {
		code := codeOf([]byte{opcodes.IsOp.Code, c.arg}, nil, nil)
		draft, _, err := opcodePass(code, code.Name)
		if err != nil {
			t.Fatalf("opcodePass: %v", err)
		}
		want := []byte{opcodes.CompareOp.Code, c.want}
		if !reflect.DeepEqual(draft, want) {
			t.Errorf("arg %d: draft = % x, want % x", c.arg, draft, want)
		}
	}
}

func TestOpcodePassContainsOp(t *testing.T) {
	cases := []struct {
		arg  byte
		want byte
	}{
		{0, opcodes.CompareIn},
		{1, opcodes.CompareNotIn},
	}
	for _, c := range cases {
		code := codeOf([]byte{opcodes.ContainsOp.Code, c.arg}, nil, nil)
		draft, _, err := opcodePass(code, code.Name)
		if err != nil {
			t.Fatalf("opcodePass: %v", err)
		}
		want := []byte{opcodes.CompareOp.Code, c.want}
		if !reflect.DeepEqual(draft, want) {
			t.Errorf("arg %d: draft = % x, want % x", c.arg, draft, want)
		}
	}
}

func TestOpcodePassListExtend(t *testing.T) {
	consts := []marshalformat.Const{
		marshalformat.ConstTuple{marshalformat.ConstInt(1), marshalformat.ConstInt(2)},
	}
	code := codeOf([]byte{
		opcodes.LoadConst.Code, 0,
		opcodes.BuildList.Code, 0,
		opcodes.ListExtend.Code, 1,
	}, nil, consts)

	draft, _, err := opcodePass(code, code.Name)
	if err != nil {
		t.Fatalf("opcodePass: %v", err)
	}
	if len(draft) != 6 {
		t.Fatalf("draft length = %d, want 6 (net zero growth)", len(draft))
	}
	if draft[0] != opcodes.LoadName.Code || draft[2] != opcodes.LoadConst.Code || draft[4] != opcodes.CallFunction.Code || draft[5] != 1 {
		t.Errorf("draft = % x, want LOAD_NAME,LOAD_CONST,CALL_FUNCTION 1", draft)
	}
	evalIdx := draft[1]
	if code.Names[evalIdx] != "eval" {
		t.Errorf("Names[%d] = %q, want eval", evalIdx, code.Names[evalIdx])
	}
	litIdx := draft[3]
	lit, ok := code.Consts[litIdx].(marshalformat.ConstStr)
	if !ok {
		t.Fatalf("Consts[%d] is not a ConstStr", litIdx)
	}
	if string(lit) != "[1, 2]" {
		t.Errorf("list literal = %q, want [1, 2]", lit)
	}
}

func TestOpcodePassListExtendBadOperand(t *testing.T) {
	code := codeOf([]byte{
		opcodes.LoadConst.Code, 0,
		opcodes.BuildList.Code, 0,
		opcodes.ListExtend.Code, 2,
	}, nil, []marshalformat.Const{marshalformat.ConstTuple{}})
	if _, _, err := opcodePass(code, code.Name); err == nil {
		t.Fatal("expected an error for LIST_EXTEND with operand != 1")
	}
}

func TestOpcodePassUnimplemented(t *testing.T) {
	cases := []byte{opcodes.SetUpdate.Code, opcodes.JumpIfNotExcMatch.Code}
	for _, op := range cases {
		code := codeOf([]byte{op, 0}, nil, nil)
		_, _, err := opcodePass(code, code.Name)
		if _, ok := err.(UnimplementedOpcode); !ok {
			t.Errorf("op %d: err = %v, want UnimplementedOpcode", op, err)
		}
	}
}

func TestOpcodePassPassthrough(t *testing.T) {
	code := codeOf([]byte{opcodes.LoadConst.Code, 3, opcodes.PopTop.Code, 0}, nil, nil)
	draft, _, err := opcodePass(code, code.Name)
	if err != nil {
		t.Fatalf("opcodePass: %v", err)
	}
	if !reflect.DeepEqual(draft, code.Bytecode) {
		t.Errorf("draft = % x, want unchanged % x", draft, code.Bytecode)
	}
}

// TestOpcodePassReraiseDefault covers RERAISE with no POP_EXCEPT anywhere
// in range: the fallback emits a bare END_FINALLY with no stream growth.
func TestOpcodePassReraiseDefault(t *testing.T) {
	code := codeOf([]byte{opcodes.PopTop.Code, 0, opcodes.ReRaise.Code, 0}, nil, nil)
	draft, im, err := opcodePass(code, code.Name)
	if err != nil {
		t.Fatalf("opcodePass: %v", err)
	}
	want := []byte{opcodes.PopTop.Code, 0, opcodes.EndFinally.Code, 0}
	if !reflect.DeepEqual(draft, want) {
		t.Errorf("draft = % x, want % x", draft, want)
	}
	if len(im.entries) != 1 {
		t.Errorf("expected no insertion map growth, got %d entries", len(im.entries))
	}
}

// TestOpcodePassReraiseJumpForwardTail covers the already-terminated
// epilogue shape: POP_EXCEPT, X, JUMP_FORWARD 2, RERAISE 0 — only an
// END_FINALLY needs appending.
func TestOpcodePassReraiseJumpForwardTail(t *testing.T) {
	code := codeOf([]byte{
		opcodes.PopExcept.Code, 0,
		opcodes.PopTop.Code, 0,
		opcodes.JumpForward.Code, 2,
		opcodes.ReRaise.Code, 0,
	}, nil, nil)
	draft, im, err := opcodePass(code, code.Name)
	if err != nil {
		t.Fatalf("opcodePass: %v", err)
	}
	want := []byte{
		opcodes.PopExcept.Code, 0,
		opcodes.PopTop.Code, 0,
		opcodes.JumpForward.Code, 2,
		opcodes.EndFinally.Code, 0,
	}
	if !reflect.DeepEqual(draft, want) {
		t.Errorf("draft = % x, want % x", draft, want)
	}
	if len(im.entries) != 1 {
		t.Errorf("expected no insertion map growth, got %d entries", len(im.entries))
	}
}

// TestOpcodePassReraiseSplice covers the k==1 splice shape, which grows
// the stream by 2 bytes and records an insertion.
func TestOpcodePassReraiseSplice(t *testing.T) {
	// k == 1: POP_EXCEPT, Y, RERAISE 0 -> POP_EXCEPT, <seq>, Y
	code := codeOf([]byte{
		opcodes.PopExcept.Code, 0,
		opcodes.PopTop.Code, 0,
		opcodes.ReRaise.Code, 0,
	}, nil, nil)
	draft, im, err := opcodePass(code, code.Name)
	if err != nil {
		t.Fatalf("opcodePass: %v", err)
	}
	want := []byte{
		opcodes.PopExcept.Code, 0,
		opcodes.JumpForward.Code, 2,
		opcodes.EndFinally.Code, 0,
		opcodes.PopTop.Code, 0,
	}
	if !reflect.DeepEqual(draft, want) {
		t.Errorf("draft = % x, want % x", draft, want)
	}
	if len(im.entries) != 2 {
		t.Fatalf("expected one recorded insertion, got %d entries", len(im.entries))
	}
	if im.entries[1].delta != 2 {
		t.Errorf("recorded delta = %d, want 2", im.entries[1].delta)
	}
}
