// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

// Magic numbers for the bytecode releases this tool recognizes, each
// followed by the fixed `\r\n` that every pyc magic carries. Only 3.9 is
// accepted as input and only 3.8 is ever written, but 3.7 and 3.10 are
// listed too so a recognized-but-unsupported interpreter version can be
// told apart from a file whose first 4 bytes aren't a pyc magic at all.
var (
	Magic37  = [4]byte{0x42, 0x0d, 0x0d, 0x0a}
	Magic38  = [4]byte{0x55, 0x0d, 0x0d, 0x0a}
	Magic39  = [4]byte{0x61, 0x0d, 0x0d, 0x0a}
	Magic310 = [4]byte{0x6f, 0x0d, 0x0d, 0x0a}
)

// knownMagics is every magic this package can identify as belonging to
// some CPython release, whether or not that release is supported as
// input. Used only to distinguish ErrUnsupportedVersion (a real, other
// interpreter version) from ErrMalformedInput (not a pyc file at all).
var knownMagics = [][4]byte{Magic37, Magic38, Magic39, Magic310}

// headerSize is the length, in bytes, of a pyc file's fixed-size prelude
// for the 3.7+ header layout: 4-byte magic, 4-byte bit field (0 selects a
// timestamp-based header over a hash-based one), 4-byte timestamp, 4-byte
// source size.
const headerSize = 16
