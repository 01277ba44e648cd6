// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package marshalformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encode writes one marshaled value to w. Mirrors Decode's tag set; a
// Const produced by this package round-trips through Encode/Decode
// unchanged.
func Encode(w io.Writer, v Const) error {
	switch val := v.(type) {
	case nil:
		return writeByte(w, typeNull)
	case ConstNone:
		return writeByte(w, typeNone)
	case ConstBool:
		if val {
			return writeByte(w, typeTrue)
		}
		return writeByte(w, typeFalse)
	case ConstInt:
		return encodeInt(w, int64(val))
	case ConstBytes:
		return encodeBytes(w, []byte(val))
	case ConstStr:
		return encodeString(w, string(val))
	case ConstTuple:
		return encodeTuple(w, val)
	case *Code:
		return EncodeCode(w, val)
	default:
		return fmt.Errorf("%w: go type %T", ErrUnsupportedType, v)
	}
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func writeI32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

// encodeInt always uses the variable-length TYPE_LONG form rather than
// TYPE_INT so that every value, regardless of magnitude, survives an
// Encode/Decode round trip without a separate small-int fast path. This
// costs a few extra bytes for tiny constants but keeps this package's
// encoder-decoder pair simple and symmetric.
func encodeInt(w io.Writer, v int64) error {
	if err := writeByte(w, typeLong); err != nil {
		return err
	}
	if v == 0 {
		return writeI32(w, 0)
	}

	negative := v < 0
	mag := uint64(v)
	if negative {
		mag = uint64(-v)
	}

	var digits []uint16
	for mag != 0 {
		digits = append(digits, uint16(mag&0x7fff))
		mag >>= 15
	}

	count := int32(len(digits))
	if negative {
		count = -count
	}
	if err := writeI32(w, count); err != nil {
		return err
	}
	for _, d := range digits {
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], d)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func encodeBytes(w io.Writer, b []byte) error {
	if err := writeByte(w, typeString); err != nil {
		return err
	}
	if err := writeI32(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func encodeString(w io.Writer, s string) error {
	if err := writeByte(w, typeUnicode); err != nil {
		return err
	}
	if err := writeI32(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func encodeTuple(w io.Writer, items ConstTuple) error {
	if err := writeByte(w, typeTuple); err != nil {
		return err
	}
	if err := writeI32(w, int32(len(items))); err != nil {
		return err
	}
	for i, item := range items {
		if err := Encode(w, item); err != nil {
			return fmt.Errorf("marshalformat: tuple item %d: %w", i, err)
		}
	}
	return nil
}

func encodeStringList(w io.Writer, names []string) error {
	items := make(ConstTuple, len(names))
	for i, n := range names {
		items[i] = ConstStr(n)
	}
	return encodeTuple(w, items)
}

// EncodeCode writes a code object record, including its own leading
// type tag.
func EncodeCode(w io.Writer, c *Code) error {
	if err := writeByte(w, typeCode); err != nil {
		return err
	}

	fields := []int32{
		c.ArgCount,
		c.PosOnlyArgCount,
		c.KwOnlyArgCount,
		c.NLocals,
		c.StackSize,
		c.Flags,
	}
	for _, f := range fields {
		if err := writeI32(w, f); err != nil {
			return err
		}
	}

	if err := encodeBytes(w, c.Bytecode); err != nil {
		return fmt.Errorf("marshalformat: code.code: %w", err)
	}
	if err := encodeTuple(w, c.Consts); err != nil {
		return fmt.Errorf("marshalformat: code.consts: %w", err)
	}
	if err := encodeStringList(w, c.Names); err != nil {
		return fmt.Errorf("marshalformat: code.names: %w", err)
	}
	if err := encodeStringList(w, c.VarNames); err != nil {
		return fmt.Errorf("marshalformat: code.varnames: %w", err)
	}
	if err := encodeStringList(w, c.FreeVars); err != nil {
		return fmt.Errorf("marshalformat: code.freevars: %w", err)
	}
	if err := encodeStringList(w, c.CellVars); err != nil {
		return fmt.Errorf("marshalformat: code.cellvars: %w", err)
	}
	if err := encodeString(w, c.Filename); err != nil {
		return fmt.Errorf("marshalformat: code.filename: %w", err)
	}
	if err := encodeString(w, c.Name); err != nil {
		return fmt.Errorf("marshalformat: code.name: %w", err)
	}
	if err := writeI32(w, c.FirstLineNo); err != nil {
		return fmt.Errorf("marshalformat: code.firstlineno: %w", err)
	}
	if err := encodeBytes(w, c.LineNoTable); err != nil {
		return fmt.Errorf("marshalformat: code.lnotab: %w", err)
	}
	return nil
}
