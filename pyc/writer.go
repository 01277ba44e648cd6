// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

import (
	"bufio"
	"encoding/binary"
	"io"
	"time"

	"github.com/pycdown/pycdown/marshalformat"
)

// Writer writes a rewritten code object out as a 3.8-compatible pyc file:
// the 3.8 magic, a timestamp-based (not hash-based) bit field, a
// timestamp, a zero source size, and the marshaled code object.
type Writer struct {
	w         *bufio.Writer
	Timestamp uint32 // zero means "use the current time" at Write time
}

// NewWriter wraps w for writing a single pyc file.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits the full pyc file for code: header followed by the marshaled
// code object.
func (wr *Writer) Write(code *marshalformat.Code) error {
	if _, err := wr.w.Write(Magic38[:]); err != nil {
		return err
	}
	if err := binary.Write(wr.w, binary.LittleEndian, uint32(0)); err != nil { // timestamp-based header
		return err
	}

	ts := wr.Timestamp
	if ts == 0 {
		ts = uint32(time.Now().Unix())
	}
	if err := binary.Write(wr.w, binary.LittleEndian, ts); err != nil {
		return err
	}
	if err := binary.Write(wr.w, binary.LittleEndian, uint32(0)); err != nil { // source size, unknown
		return err
	}

	if err := marshalformat.EncodeCode(wr.w, code); err != nil {
		return err
	}
	return wr.w.Flush()
}
