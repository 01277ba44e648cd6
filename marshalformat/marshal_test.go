// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package marshalformat

import (
	"bytes"
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, v Const) Const {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTripScalars(t *testing.T) {
	cases := []Const{
		ConstNone{},
		ConstBool(true),
		ConstBool(false),
		ConstInt(0),
		ConstInt(-1),
		ConstInt(1 << 40),
		ConstStr("hello"),
		ConstBytes([]byte{1, 2, 3}),
	}
	for _, c := range cases {
		got := roundTrip(t, c)
		if !reflect.DeepEqual(got, c) {
			t.Errorf("round trip of %#v produced %#v", c, got)
		}
	}
}

func TestRoundTripTuple(t *testing.T) {
	in := ConstTuple{ConstInt(1), ConstStr("x"), ConstTuple{ConstNone{}}}
	got := roundTrip(t, in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip of tuple produced %#v", got)
	}
}

func TestRoundTripCode(t *testing.T) {
	in := &Code{
		ArgCount:    1,
		NLocals:     2,
		StackSize:   3,
		Flags:       0x43,
		Bytecode:    []byte{100, 0, 83, 0},
		Consts:      []Const{ConstNone{}},
		Names:       []string{"foo"},
		VarNames:    []string{"x"},
		Filename:    "t.py",
		Name:        "<module>",
		FirstLineNo: 1,
		LineNoTable: []byte{0, 1},
	}

	var buf bytes.Buffer
	if err := EncodeCode(&buf, in); err != nil {
		t.Fatalf("EncodeCode: %v", err)
	}

	tag, err := readU8(&buf)
	if err != nil || tag != typeCode {
		t.Fatalf("leading tag = %q, %v; want typeCode", tag, err)
	}
	out, err := DecodeCode(&buf)
	if err != nil {
		t.Fatalf("DecodeCode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip produced %#v, want %#v", out, in)
	}
}

func TestDecodeUnsupportedTag(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte{'?'})); err == nil {
		t.Fatal("expected an error for an unknown type tag")
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte{typeInt, 1, 2})); err == nil {
		t.Fatal("expected an error for a truncated int")
	}
}
