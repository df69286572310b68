// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dta-cfg displays the acquisition setup stored in the header
// of AEwin DTA files.
package main // import "github.com/go-lpc/aewin/cmd/dta-cfg"

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/aewin/dta"
	"github.com/go-lpc/aewin/internal/dump"
)

var (
	msg = log.New(os.Stderr, "dta-cfg: ", 0)
)

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	var (
		fset = flag.NewFlagSet("dta-cfg", flag.ExitOnError)
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: dta-cfg FILE1 [FILE2 [FILE3 ...]]

ex:
 $> dta-cfg ./testdata/run_1.DTA
 === DTA configuration ===
 Product:      AEwin for PCI2 v4.20
 [...]

`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		msg.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		msg.Fatalf("missing input DTA file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname)
		if err != nil {
			msg.Fatalf("could not display configuration of %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	cfg, err := dta.ReadConfig(fname)
	if err != nil {
		return fmt.Errorf("could not read configuration: %w", err)
	}

	fmt.Fprintf(wbuf, "file: %s\n", fname)
	dump.Config(wbuf, cfg)
	return nil
}
