// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dta-shell is an interactive inspector of AEwin DTA sessions.
//
// Usage: dta-shell [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> dta-shell ./testdata/run_1.DTA
//	dta> next 2
//	hit         0.0012400 1 12 3 1 104 48
//	hit         0.0301350 2 8 1 0 22 41
//	dta> stats
//	[...]
//	dta> quit
package main // import "github.com/go-lpc/aewin/cmd/dta-shell"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-lpc/aewin/dta"
	"github.com/go-lpc/aewin/internal/dump"
	"github.com/peterh/liner"
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	log.SetPrefix("dta-shell: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("dta-shell", flag.ExitOnError)

		td      = fset.Bool("td", false, "decode time-driven data")
		skipWfm = fset.Bool("skip-wfm", false, "do not decode waveforms")
		useMmap = fset.Bool("mmap", false, "read files through a memory mapping")
		hist    = fset.String("history", "", "path to a file holding the commands history")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: dta-shell [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

ex:
 $> dta-shell ./testdata/run_1.DTA
 dta> next 2
 dta> quit

options:
`)
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

	ses, err := dta.Open(fset.Args(), dta.Options{
		SkipWaveforms:     *skipWfm,
		IncludeTimeDriven: *td,
		Mmap:              *useMmap,
	})
	if err != nil {
		log.Fatalf("could not open session: %+v", err)
	}
	defer ses.Close()

	err = run(newShell(os.Stdout, ses), *hist)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(sh *shell, hist string) error {
	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				log.Printf("could not save history: %+v", err)
				return
			}
			defer f.Close()
			_, _ = ln.WriteHistory(f)
		}()
	}

	for {
		line, err := ln.Prompt("dta> ")
		switch {
		case err == nil:
			// ok.
		case errors.Is(err, io.EOF), errors.Is(err, liner.ErrPromptAborted):
			return nil
		default:
			return fmt.Errorf("could not read command: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		quit, err := sh.exec(line)
		if err != nil {
			fmt.Fprintf(sh.w, "error: %+v\n", err)
		}
		if quit {
			return nil
		}
	}
}

type command struct {
	help string
	run  func(sh *shell, args []string) (bool, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"next":   {"next [N]: display the next N events (default: 1)", (*shell).next},
		"wfm":    {"wfm: display the samples of the last waveform", (*shell).wfm},
		"config": {"config: display the acquisition setup", (*shell).config},
		"schema": {"schema: display the discovered columns", (*shell).schema},
		"stats":  {"stats: display the decoding counters", (*shell).stats},
		"help":   {"help: display this help", (*shell).help},
		"quit":   {"quit: exit the shell", (*shell).quit},
	}
}

func complete(line string) []string {
	var o []string
	for name := range commands {
		if strings.HasPrefix(name, line) {
			o = append(o, name)
		}
	}
	sort.Strings(o)
	return o
}

type shell struct {
	w    io.Writer
	ses  *dta.Session
	last *dta.Waveform // last decoded waveform
	eof  bool
}

func newShell(w io.Writer, ses *dta.Session) *shell {
	return &shell{w: w, ses: ses}
}

// exec executes a command line.
// exec reports whether the shell should exit.
func (sh *shell) exec(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	name := args[0]
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (try \"help\")", args[0])
	}
	return cmd.run(sh, args[1:])
}

func (sh *shell) next(args []string) (bool, error) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return false, fmt.Errorf("invalid number of events %q", args[0])
		}
		n = v
	}

	if sh.eof {
		fmt.Fprintf(sh.w, "end of session\n")
		return false, nil
	}

	for i := 0; i < n; i++ {
		evt, err := sh.ses.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				sh.eof = true
				fmt.Fprintf(sh.w, "end of session\n")
				return false, nil
			}
			return false, fmt.Errorf("could not decode event: %w", err)
		}
		if wfm, ok := evt.(*dta.Waveform); ok {
			sh.last = wfm
		}
		dump.Event(sh.w, evt)
	}
	return false, nil
}

func (sh *shell) wfm(args []string) (bool, error) {
	if sh.last == nil {
		return false, fmt.Errorf("no waveform decoded yet")
	}
	dump.Event(sh.w, sh.last)
	dump.Samples(sh.w, sh.last)
	return false, nil
}

func (sh *shell) config(args []string) (bool, error) {
	dump.Config(sh.w, sh.ses.Config())
	return false, nil
}

func (sh *shell) schema(args []string) (bool, error) {
	var (
		cfg = sh.ses.Config()
		sch = sh.ses.Schema()
	)
	for _, kind := range []dta.EventKind{dta.HitEvent, dta.TimeDrivenEvent, dta.WaveformEvent} {
		dump.Header(sh.w, kind, cfg, sch)
	}
	fmt.Fprintf(sh.w, "hit params:  %s\n", order(sch.HitParams.Fixed(), sch.HitParams.Keys()))
	fmt.Fprintf(sh.w, "td params:   %s\n", order(sch.TDParams.Fixed(), sch.TDParams.Keys()))
	fmt.Fprintf(sh.w, "td channels: %s\n", order(sch.TDChannels.Fixed(), sch.TDChannels.Keys()))
	return false, nil
}

func order(fixed bool, keys []uint8) string {
	if !fixed {
		return "undiscovered"
	}
	return fmt.Sprintf("%v", keys)
}

func (sh *shell) stats(args []string) (bool, error) {
	dump.Stats(sh.w, sh.ses.Stats())
	return false, nil
}

func (sh *shell) help(args []string) (bool, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sh.w, "  %s\n", commands[name].help)
	}
	return false, nil
}

func (sh *shell) quit(args []string) (bool, error) {
	return true, nil
}
