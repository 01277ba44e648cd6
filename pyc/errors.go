// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion is returned when a file's magic number identifies
// it as a real CPython bytecode release, just not the 3.9 this tool reads.
var ErrUnsupportedVersion = errors.New("pyc: input is not a Python 3.9 compiled file")

// ErrMalformedInput is returned when a file is too short to carry a
// header, its magic number matches no known CPython release at all, or
// the marshal stream it wraps doesn't parse.
var ErrMalformedInput = errors.New("pyc: malformed pyc file")

// wrapMarshalErr gives a marshal-layer error file-level context and marks
// it as ErrMalformedInput, without losing the ability to match it with
// errors.Is against the underlying marshal sentinel as well.
func wrapMarshalErr(filename string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformedInput, filename, err)
}
