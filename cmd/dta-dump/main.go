// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dta-dump decodes and displays the events of AEwin DTA files.
//
// All the files are decoded as a single acquisition session: the
// acquisition setup is read from the header of the first file, the
// following files are continuations of the first one.
//
// Usage: dta-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> dta-dump ./testdata/run_1.DTA ./testdata/run_2.DTA
//	=== DTA configuration ===
//	Product:      AEwin for PCI2 v4.20
//	Comment:      bending test #3
//	Test start:   2021-03-04 09:30:15
//	Hit chars:    RISE,COUN,ENER,DURATION,AMP
//	[...]
//	# hit         SSSSSSSS.mmmuuun, CH, RISE, COUN, ENER, DURATION, AMP
//	hit         0.0012400 1 12 3 1 104 48
//	hit         0.0301350 2 8 1 0 22 41
//	[...]
package main // import "github.com/go-lpc/aewin/cmd/dta-dump"

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-lpc/aewin/dta"
	"github.com/go-lpc/aewin/internal/dump"
	"github.com/sbinet/pmon"
)

const usage = `dta-dump decodes and displays the events of AEwin DTA files.

Usage: dta-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> dta-dump ./testdata/run_1.DTA ./testdata/run_2.DTA
 === DTA configuration ===
 Product:      AEwin for PCI2 v4.20
 Comment:      bending test #3
 Test start:   2021-03-04 09:30:15
 Hit chars:    RISE,COUN,ENER,DURATION,AMP
 [...]
 # hit         SSSSSSSS.mmmuuun, CH, RISE, COUN, ENER, DURATION, AMP
 hit         0.0012400 1 12 3 1 104 48
 hit         0.0301350 2 8 1 0 22 41
 [...]

Options:
`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("dta-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("dta-dump", flag.ExitOnError)

		wfm     = fset.Bool("wfm", false, "display waveform samples")
		skipWfm = fset.Bool("skip-wfm", false, "do not decode waveforms")
		td      = fset.Bool("td", false, "decode time-driven data")
		useMmap = fset.Bool("mmap", false, "read files through a memory mapping")
		verbose = fset.Bool("v", false, "enable verbose mode")
		doMon   = fset.Bool("pmon", false, "enable pmon monitoring")
		doFreq  = fset.Duration("freq", 1*time.Second, "pmon frequency")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input DTA file")
	}

	if *doMon {
		err := monitor(os.Stderr, *doFreq)
		if err != nil {
			log.Fatalf("could not start monitoring: %+v", err)
		}
	}

	opts := dta.Options{
		SkipWaveforms:     *skipWfm,
		IncludeTimeDriven: *td,
		Mmap:              *useMmap,
	}
	if *verbose {
		opts.Log = log.New(os.Stderr, "dta: ", 0)
	}

	err = process(w, fset.Args(), opts, *wfm)
	if err != nil {
		log.Fatalf("could not dump files: %+v", err)
	}
}

// monitor starts monitoring the resources used by the current process.
func monitor(w io.Writer, freq time.Duration) error {
	pid := os.Getpid()
	p, err := pmon.Monitor(pid)
	if err != nil {
		return fmt.Errorf("could not monitor pid=%d: %w", pid, err)
	}
	p.W = w
	p.Freq = freq

	go func() {
		err := p.Run()
		if err != nil {
			log.Printf("could not run pmon: %+v", err)
		}
	}()
	return nil
}

func process(w io.Writer, fnames []string, opts dta.Options, samples bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	ses, err := dta.Open(fnames, opts)
	if err != nil {
		return fmt.Errorf("could not open session: %w", err)
	}
	defer ses.Close()

	dump.Config(wbuf, ses.Config())

	// a header is written again when the columns of a kind change,
	// e.g. once the hit parametric order gets fixed.
	hdrs := make(map[dta.EventKind]string)
loop:
	for {
		evt, err := ses.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode event: %w", err)
		}
		kind := evt.Kind()
		cols := strings.Join(dump.Columns(kind, ses.Config(), ses.Schema()), ", ")
		if hdr, ok := hdrs[kind]; !ok || hdr != cols {
			hdrs[kind] = cols
			dump.Header(wbuf, kind, ses.Config(), ses.Schema())
		}
		dump.Event(wbuf, evt)
		if wfm, ok := evt.(*dta.Waveform); ok && samples {
			dump.Samples(wbuf, wfm)
		}
	}

	fmt.Fprintf(wbuf, "=== DTA statistics ===\n")
	dump.Stats(wbuf, ses.Stats())

	err = ses.Close()
	if err != nil {
		return fmt.Errorf("could not close session: %w", err)
	}
	return nil
}
