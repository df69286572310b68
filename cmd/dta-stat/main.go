// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dta-stat summarizes the content of AEwin DTA acquisition sessions.
//
// Sessions are given either as a list of files on the command line, each
// file being its own session, or through a YAML manifest:
//
//	jobs: 4
//	metrics: ./dta.prom
//	sessions:
//	  - name: bending-3
//	    files: [run_1.DTA, run_2.DTA]
//	    time_driven: true
//	  - files: [calib.DTA]
//	    skip_waveforms: true
//
// Independent sessions are decoded concurrently.
package main // import "github.com/go-lpc/aewin/cmd/dta-stat"

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-lpc/aewin/dta"
	"github.com/go-lpc/aewin/internal/metrics"
	"golang.org/x/sync/errgroup"
)

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("dta-stat: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("dta-stat", flag.ExitOnError)

		jobs = fset.Int("j", 0, "number of sessions decoded concurrently (default: from manifest, or 1)")
		td   = fset.Bool("td", false, "decode time-driven data")
		mani = fset.String("manifest", "", "path to a YAML manifest of sessions")
		prom = fset.String("metrics", "", "path to a prometheus text file to write")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: dta-stat [OPTIONS] [FILE1 [FILE2 [FILE3 ...]]]

ex:
 $> dta-stat -j 4 ./run_1.DTA ./run_2.DTA
 $> dta-stat -manifest ./sessions.yaml -metrics ./dta.prom

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	m, err := manifest(*mani, fset.Args(), *td)
	if err != nil {
		fset.Usage()
		log.Fatalf("could not build sessions: %+v", err)
	}
	if *jobs > 0 {
		m.Jobs = *jobs
	}
	if *prom != "" {
		m.Metrics = *prom
	}

	err = run(w, m)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

// manifest returns the sessions to process, either from the named
// manifest file or with one session per file.
func manifest(fname string, files []string, td bool) (*Manifest, error) {
	switch {
	case fname != "" && len(files) > 0:
		return nil, fmt.Errorf("manifest and input files are mutually exclusive")
	case fname != "":
		return Load(fname)
	case len(files) == 0:
		return nil, fmt.Errorf("missing input DTA file")
	}

	m := &Manifest{Jobs: 1}
	for _, f := range files {
		m.Sessions = append(m.Sessions, Session{
			Name:       filepath.Base(f),
			Files:      []string{f},
			TimeDriven: td,
		})
	}
	err := m.validate()
	if err != nil {
		return nil, err
	}
	return m, nil
}

type result struct {
	name    string
	stats   dta.Stats
	elapsed time.Duration
	err     error
}

func run(w io.Writer, m *Manifest) error {
	var (
		grp  errgroup.Group
		res  = make([]result, len(m.Sessions))
		prom *metrics.Metrics
	)
	if m.Metrics != "" {
		prom = metrics.New()
	}

	grp.SetLimit(m.Jobs)
	for i, s := range m.Sessions {
		grp.Go(func() error {
			start := time.Now()
			st, err := stat(s)
			res[i] = result{
				name:    s.Name,
				stats:   st,
				elapsed: time.Since(start),
				err:     err,
			}
			if err != nil {
				return fmt.Errorf("could not process session %q: %w", s.Name, err)
			}
			return nil
		})
	}
	err := grp.Wait()

	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	fmt.Fprintf(wbuf, "%-24s %5s %10s %12s %10s %10s %10s %8s %s\n",
		"session", "files", "frames", "bytes", "hits", "td", "wfms", "unknown", "status",
	)
	for _, r := range res {
		status := "ok"
		if r.err != nil {
			status = "error"
		}
		fmt.Fprintf(wbuf, "%-24s %5d %10d %12d %10d %10d %10d %8d %s\n",
			r.name, r.stats.Files, r.stats.Frames, r.stats.Bytes,
			r.stats.Hits, r.stats.TimeDriven, r.stats.Waveforms, r.stats.Unknown,
			status,
		)
		if prom == nil {
			continue
		}
		switch r.err {
		case nil:
			prom.Observe(r.name, r.stats, r.elapsed)
		default:
			prom.Fail(r.name)
		}
	}

	if prom != nil {
		werr := prom.WriteFile(m.Metrics)
		if werr != nil && err == nil {
			err = fmt.Errorf("could not write metrics: %w", werr)
		}
	}
	return err
}

// stat decodes all the events of a session and returns its statistics.
func stat(s Session) (dta.Stats, error) {
	ses, err := dta.Open(s.Files, dta.Options{
		SkipWaveforms:     s.SkipWaveforms,
		IncludeTimeDriven: s.TimeDriven,
	})
	if err != nil {
		return dta.Stats{}, err
	}
	defer ses.Close()

	for {
		_, err := ses.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return ses.Stats(), err
		}
	}
	return ses.Stats(), ses.Close()
}
