// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package marshalformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Decode reads one marshaled value from r. For this tool's purposes the
// top-level value is always a *Code, but Decode is written generically
// over Const so that nested tuples and code constants reuse the same
// recursive descent.
func Decode(r io.Reader) (Const, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return nil, fmt.Errorf("marshalformat: reading type tag: %w", wrapEOF(err))
	}

	switch tagBuf[0] {
	case typeNull:
		return nil, nil
	case typeNone:
		return ConstNone{}, nil
	case typeFalse:
		return ConstBool(false), nil
	case typeTrue:
		return ConstBool(true), nil
	case typeInt:
		return decodeInt(r)
	case typeLong:
		return decodeLong(r)
	case typeString:
		return decodeBytes(r)
	case typeUnicode:
		return decodeUnicode(r)
	case typeShortASCII:
		return decodeShortASCII(r)
	case typeTuple:
		return decodeTuple(r)
	case typeSmallTuple:
		return decodeSmallTuple(r)
	case typeCode:
		return DecodeCode(r)
	default:
		return nil, fmt.Errorf("%w: tag %q", ErrUnsupportedType, tagBuf[0])
	}
}

func wrapEOF(err error) error {
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return ErrTruncated
	}
	return err
}

func readU8(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapEOF(err)
	}
	return b[0], nil
}

func readI32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapEOF(err)
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapEOF(err)
	}
	return buf, nil
}

func decodeInt(r io.Reader) (Const, error) {
	v, err := readI32(r)
	if err != nil {
		return nil, err
	}
	return ConstInt(v), nil
}

// decodeLong reads the host interpreter's arbitrary-precision integer
// encoding: a signed digit count followed by that many base-2^15 digits,
// least significant first. Values that don't fit in an int64 are rejected
// rather than silently truncated.
func decodeLong(r io.Reader) (Const, error) {
	n, err := readI32(r)
	if err != nil {
		return nil, err
	}
	negative := n < 0
	count := int(n)
	if negative {
		count = -count
	}

	var mag uint64
	for i := 0; i < count; i++ {
		var digitBuf [2]byte
		if _, err := io.ReadFull(r, digitBuf[:]); err != nil {
			return nil, wrapEOF(err)
		}
		digit := uint64(binary.LittleEndian.Uint16(digitBuf[:]))
		shift := uint(15 * i)
		if shift >= 64 || digit>>(64-shift) != 0 {
			return nil, fmt.Errorf("%w: long integer constant too large", ErrUnsupportedType)
		}
		mag |= digit << shift
	}
	limit := uint64(1<<63 - 1)
	if negative {
		limit++
	}
	if mag > limit {
		return nil, fmt.Errorf("%w: long integer constant too large", ErrUnsupportedType)
	}
	value := int64(mag)
	if negative {
		value = -value
	}
	return ConstInt(value), nil
}

func decodeBytes(r io.Reader) (Const, error) {
	n, err := readI32(r)
	if err != nil {
		return nil, err
	}
	b, err := readBytes(r, int(n))
	if err != nil {
		return nil, err
	}
	return ConstBytes(b), nil
}

func decodeUnicode(r io.Reader) (Const, error) {
	n, err := readI32(r)
	if err != nil {
		return nil, err
	}
	b, err := readBytes(r, int(n))
	if err != nil {
		return nil, err
	}
	return ConstStr(b), nil
}

func decodeShortASCII(r io.Reader) (Const, error) {
	n, err := readU8(r)
	if err != nil {
		return nil, err
	}
	b, err := readBytes(r, int(n))
	if err != nil {
		return nil, err
	}
	return ConstStr(b), nil
}

func decodeTupleItems(r io.Reader, count int) (ConstTuple, error) {
	items := make(ConstTuple, count)
	for i := 0; i < count; i++ {
		v, err := Decode(r)
		if err != nil {
			return nil, fmt.Errorf("marshalformat: tuple item %d: %w", i, err)
		}
		items[i] = v
	}
	return items, nil
}

func decodeTuple(r io.Reader) (Const, error) {
	n, err := readI32(r)
	if err != nil {
		return nil, err
	}
	return decodeTupleItems(r, int(n))
}

func decodeSmallTuple(r io.Reader) (Const, error) {
	n, err := readU8(r)
	if err != nil {
		return nil, err
	}
	return decodeTupleItems(r, int(n))
}

// decodeStringList reads a tuple of short strings into a []string, used
// for Names, VarNames, FreeVars and CellVars.
func decodeStringList(r io.Reader) ([]string, error) {
	v, err := Decode(r)
	if err != nil {
		return nil, err
	}
	tuple, ok := v.(ConstTuple)
	if !ok {
		return nil, fmt.Errorf("marshalformat: expected tuple of names, got %T", v)
	}
	if len(tuple) == 0 {
		return nil, nil
	}
	out := make([]string, len(tuple))
	for i, item := range tuple {
		s, ok := item.(ConstStr)
		if !ok {
			return nil, fmt.Errorf("marshalformat: expected string in name tuple, got %T", item)
		}
		out[i] = string(s)
	}
	return out, nil
}

func decodeString(r io.Reader) (string, error) {
	v, err := Decode(r)
	if err != nil {
		return "", err
	}
	s, ok := v.(ConstStr)
	if !ok {
		return "", fmt.Errorf("marshalformat: expected string, got %T", v)
	}
	return string(s), nil
}

func decodeRawBytes(r io.Reader) ([]byte, error) {
	v, err := Decode(r)
	if err != nil {
		return nil, err
	}
	b, ok := v.(ConstBytes)
	if !ok {
		return nil, fmt.Errorf("marshalformat: expected bytes, got %T", v)
	}
	return []byte(b), nil
}

// DecodeCode reads a code object record. The leading type tag ('c') has
// already been consumed by the caller (Decode).
func DecodeCode(r io.Reader) (*Code, error) {
	c := &Code{}

	fields := []struct {
		name string
		dst  *int32
	}{
		{"argcount", &c.ArgCount},
		{"posonlyargcount", &c.PosOnlyArgCount},
		{"kwonlyargcount", &c.KwOnlyArgCount},
		{"nlocals", &c.NLocals},
		{"stacksize", &c.StackSize},
		{"flags", &c.Flags},
	}
	for _, f := range fields {
		v, err := readI32(r)
		if err != nil {
			return nil, fmt.Errorf("marshalformat: code.%s: %w", f.name, err)
		}
		*f.dst = v
	}

	code, err := decodeRawBytes(r)
	if err != nil {
		return nil, fmt.Errorf("marshalformat: code.code: %w", err)
	}
	c.Bytecode = code

	constsVal, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("marshalformat: code.consts: %w", err)
	}
	consts, ok := constsVal.(ConstTuple)
	if !ok {
		return nil, fmt.Errorf("marshalformat: code.consts: expected tuple, got %T", constsVal)
	}
	c.Consts = []Const(consts)

	if c.Names, err = decodeStringList(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.names: %w", err)
	}
	if c.VarNames, err = decodeStringList(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.varnames: %w", err)
	}
	if c.FreeVars, err = decodeStringList(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.freevars: %w", err)
	}
	if c.CellVars, err = decodeStringList(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.cellvars: %w", err)
	}
	if c.Filename, err = decodeString(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.filename: %w", err)
	}
	if c.Name, err = decodeString(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.name: %w", err)
	}
	if c.FirstLineNo, err = readI32(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.firstlineno: %w", err)
	}
	if c.LineNoTable, err = decodeRawBytes(r); err != nil {
		return nil, fmt.Errorf("marshalformat: code.lnotab: %w", err)
	}

	return c, nil
}
