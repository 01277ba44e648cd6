// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pycdown/pycdown/marshalformat"
)

func TestWriterEmitsMagic38AndTimestamp(t *testing.T) {
	code := &marshalformat.Code{
		Bytecode: []byte{83, 0},
		Consts:   []marshalformat.Const{marshalformat.ConstNone{}},
		Name:     "<module>",
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Timestamp = 42
	if err := w.Write(code); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.Bytes()
	if len(out) < headerSize {
		t.Fatalf("output shorter than a header: %d bytes", len(out))
	}
	var magic [4]byte
	copy(magic[:], out[:4])
	if magic != Magic38 {
		t.Errorf("magic = % x, want 3.8 magic % x", magic, Magic38)
	}
	if ts := binary.LittleEndian.Uint32(out[8:12]); ts != 42 {
		t.Errorf("Timestamp = %d, want 42", ts)
	}

	r := bytes.NewReader(out[headerSize:])
	v, err := marshalformat.Decode(r)
	if err != nil {
		t.Fatalf("decoding written body: %v", err)
	}
	got, ok := v.(*marshalformat.Code)
	if !ok {
		t.Fatalf("decoded value is %T, not *Code", v)
	}
	if got.Name != code.Name {
		t.Errorf("Name = %q, want %q", got.Name, code.Name)
	}
}
