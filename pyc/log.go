// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyc

import (
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates the package logger's output. It mirrors the
// teacher lineage's wasm package: off by default, enabled by the CLI's -v
// flag before any Reader or Writer is constructed.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "pyc: ", log.Lshortfile)
}

// SetDebugMode toggles PrintDebugInfo and re-homes the package logger's
// output accordingly. Called once from cmd/pycdown before any file I/O.
func SetDebugMode(enabled bool) {
	PrintDebugInfo = enabled
	w := ioutil.Discard
	if enabled {
		w = os.Stderr
	}
	logger.SetOutput(w)
}
