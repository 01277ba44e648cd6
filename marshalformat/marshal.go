// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package marshalformat implements a purpose-built reader and writer for
// the subset of the host language's "marshal" wire format that a compiled
// code object (and its constant tree) can contain. There is no
// general-purpose Go library for this format, so unlike the rest of this
// module's dependency stack this package is hand-rolled: it mirrors the
// teacher lineage's own leb128/read.go style of direct, allocation-light
// binary decoding rather than reaching for reflection or a generic codec.
//
// Only the type tags a compiler actually emits for module-level code are
// supported: None, booleans, small and arbitrary-precision integers,
// byte strings, short and long unicode strings, small and large tuples,
// and nested code objects. Reference/intern tables, frozensets, floats
// and complex numbers are out of scope; Decode returns ErrUnsupportedType
// for anything else.
package marshalformat

import "errors"

// Type tags, matching the host interpreter's own marshal.c constants.
const (
	typeNull       = '0'
	typeNone       = 'N'
	typeFalse      = 'F'
	typeTrue       = 'T'
	typeInt        = 'i' // 4-byte little-endian signed int32
	typeLong       = 'l' // arbitrary precision, base-2^15 digits
	typeString     = 's' // 4-byte length + raw bytes
	typeUnicode    = 'u' // 4-byte length + utf-8 bytes
	typeShortASCII = 'z' // 1-byte length + ascii bytes
	typeTuple      = '(' // 4-byte count + items
	typeSmallTuple = ')' // 1-byte count + items
	typeCode       = 'c' // code object record
)

// ErrUnsupportedType is returned when a marshal stream contains a type tag
// this package does not implement (no live interpreter produces the
// omitted tags for a module-level code object's constant tree).
var ErrUnsupportedType = errors.New("marshalformat: unsupported type tag")

// ErrTruncated is returned when the stream ends in the middle of a value.
var ErrTruncated = errors.New("marshalformat: truncated stream")

// Const is any value that can appear in a code object's Consts table.
type Const interface {
	isConst()
}

// ConstNone is the host language's None singleton.
type ConstNone struct{}

// ConstBool is a boolean constant.
type ConstBool bool

// ConstInt is an integer constant, signed and arbitrary precision in the
// source format but represented here as an int64 (sufficient for every
// constant a compiler emits for loop bounds, small literals, and flags;
// genuinely huge integer literals are out of scope, see ErrUnsupportedType).
type ConstInt int64

// ConstBytes is a raw byte-string constant (the host language's "bytes").
type ConstBytes []byte

// ConstStr is a text-string constant (the host language's "str").
type ConstStr string

// ConstTuple is an ordered, immutable sequence of constants.
type ConstTuple []Const

func (ConstNone) isConst()  {}
func (ConstBool) isConst()  {}
func (ConstInt) isConst()   {}
func (ConstBytes) isConst() {}
func (ConstStr) isConst()   {}
func (ConstTuple) isConst() {}
func (*Code) isConst()      {}

// Code mirrors the fields of the target interpreter's compiled code
// object record, in the order the marshal format stores them. The
// rewriter reads or writes Bytecode, Consts and Names; every other field
// is threaded through unchanged.
type Code struct {
	ArgCount        int32
	PosOnlyArgCount int32
	KwOnlyArgCount  int32
	NLocals         int32
	StackSize       int32
	Flags           int32

	Bytecode []byte
	Consts   []Const
	Names    []string
	VarNames []string
	FreeVars []string
	CellVars []string

	Filename     string
	Name         string
	FirstLineNo  int32
	LineNoTable  []byte
}
