// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"log"
	"os"

	"github.com/pycdown/pycdown/pyc"
	"github.com/pycdown/pycdown/rewrite"
)

func main() {
	log.SetPrefix("pycdown: ")
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "enable/disable verbose mode")

	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	pyc.SetDebugMode(*verbose)

	run(flag.Arg(0), flag.Arg(1))
}

func run(inPath, outPath string) {
	r, err := pyc.Open(inPath)
	if err != nil {
		log.Fatalf("could not read %s: %v", inPath, err)
	}
	defer r.Close()

	code, err := r.Code()
	if err != nil {
		log.Fatalf("could not decode %s: %v", inPath, err)
	}

	downgraded, err := rewrite.Code(code)
	if err != nil {
		log.Fatalf("could not downgrade %s: %v", inPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	if err := pyc.NewWriter(out).Write(downgraded); err != nil {
		log.Fatalf("could not write %s: %v", outPath, err)
	}
}
