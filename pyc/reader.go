// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pycdown/pycdown/marshalformat"
)

// mmapThreshold is the file size above which Reader maps the input
// instead of buffering it. Compiled module files are usually small, but a
// bundle of many modules concatenated for a batch run can be large enough
// that avoiding a full read-into-memory copy matters.
const mmapThreshold = 4 << 20 // 4 MiB

// Header is the fixed-size prelude of a pyc file.
type Header struct {
	Magic     [4]byte
	BitField  uint32
	Timestamp uint32
	SourceSize uint32
}

// Reader reads and validates a Python 3.9 compiled file.
type Reader struct {
	filename string
	data     []byte
	m        mmap.MMap // non-nil only when the input was memory-mapped
}

// Open opens filename, validates its header identifies a 3.9 bytecode
// file, and returns a Reader positioned to decode the code object that
// follows. Large files are memory-mapped; small ones are read in full.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	r := &Reader{filename: filename}
	if info.Size() >= mmapThreshold {
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("pyc: %s: mmap: %w", filename, err)
		}
		logger.Printf("%s: mapped %d bytes", filename, len(m))
		r.m = m
		r.data = m
	} else {
		data, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		logger.Printf("%s: read %d bytes", filename, len(data))
		r.data = data
	}

	if err := r.validateHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) validateHeader() error {
	if len(r.data) < headerSize {
		return fmt.Errorf("%w: %s is %d bytes, shorter than a pyc header", ErrMalformedInput, r.filename, len(r.data))
	}
	var magic [4]byte
	copy(magic[:], r.data[:4])
	if magic == Magic39 {
		return nil
	}
	for _, known := range knownMagics {
		if magic == known {
			return fmt.Errorf("%w: %s has magic % x, not the 3.9 magic % x", ErrUnsupportedVersion, r.filename, magic, Magic39)
		}
	}
	return fmt.Errorf("%w: %s has magic % x, not a recognized pyc magic", ErrMalformedInput, r.filename, magic)
}

// Header returns the file's parsed fixed-size prelude.
func (r *Reader) Header() Header {
	return Header{
		Magic:      [4]byte{r.data[0], r.data[1], r.data[2], r.data[3]},
		BitField:   binary.LittleEndian.Uint32(r.data[4:8]),
		Timestamp:  binary.LittleEndian.Uint32(r.data[8:12]),
		SourceSize: binary.LittleEndian.Uint32(r.data[12:16]),
	}
}

// Code decodes and returns the module's top-level code object.
func (r *Reader) Code() (*marshalformat.Code, error) {
	body := bytes.NewReader(r.data[headerSize:])
	v, err := marshalformat.Decode(body)
	if err != nil {
		return nil, wrapMarshalErr(r.filename, err)
	}
	code, ok := v.(*marshalformat.Code)
	if !ok {
		return nil, wrapMarshalErr(r.filename, fmt.Errorf("top-level value is %T, not a code object", v))
	}
	return code, nil
}

// Close releases any memory mapping held by the Reader. It is a no-op for
// a Reader backed by a plain in-memory read.
func (r *Reader) Close() error {
	if r.m != nil {
		err := r.m.Unmap()
		r.m = nil
		return err
	}
	return nil
}
