// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"bufio"
	"io"
	"log"
	"os"

	"github.com/go-lpc/aewin/internal/mmap"
	"golang.org/x/xerrors"
)

// Session decodes the events of a logical acquisition stored in one or
// more files.
//
// The configuration is read from the header of the first file only.
// The following files are decoded as continuations of the first one,
// with the same Config and Schema: they are expected to have been
// recorded with the same acquisition setup, and this is not checked.
//
// Files are opened when reached and closed once exhausted.
type Session struct {
	paths []string
	opts  Options
	msg   *log.Logger

	cfg   *Config
	sch   Schema
	stats Stats

	cur int // index of the file being decoded
	src io.Closer
	dec *Decoder
	err error
}

// Open opens a decoding session over the named files, reading the
// acquisition setup from the header of the first file.
func Open(paths []string, opts Options) (*Session, error) {
	if len(paths) == 0 {
		return nil, xerrors.New("dta: no input file")
	}

	ses := &Session{
		paths: append([]string(nil), paths...),
		opts:  opts,
		msg:   opts.logger(),
	}

	src, err := openSource(paths[0], opts.Mmap)
	if err != nil {
		return nil, err
	}
	ses.stats.Files++

	fr := newFrameReader(src, &ses.stats)
	cfg, err := decodeConfig(fr, ses.msg)
	if err != nil {
		_ = src.Close()
		return nil, xerrors.Errorf("dta: could not read configuration from %q: %w", paths[0], err)
	}

	ses.cfg = cfg
	ses.src = src
	ses.dec = newDecoder(fr, cfg, &ses.sch, opts, ses.msg)
	return ses, nil
}

// Config returns the acquisition setup of the session.
func (ses *Session) Config() *Config { return ses.cfg }

// Schema returns a snapshot of the orderings discovered so far.
func (ses *Session) Schema() Schema { return ses.sch.clone() }

// Stats returns the decoding counters of the session.
func (ses *Session) Stats() Stats { return ses.stats }

// Next returns the next event of the session.
// Next returns io.EOF once all files have been decoded.
func (ses *Session) Next() (Event, error) {
	if ses.err != nil {
		return nil, ses.err
	}

	for {
		if ses.dec == nil {
			err := ses.open(ses.cur + 1)
			if err != nil {
				ses.err = err
				return nil, err
			}
		}

		evt, err := ses.dec.Next()
		switch {
		case err == nil:
			return evt, nil
		case xerrors.Is(err, io.EOF):
			err = ses.closeFile()
			if err != nil {
				ses.err = xerrors.Errorf("dta: could not close %q: %w", ses.paths[ses.cur], err)
				return nil, ses.err
			}
		default:
			_ = ses.closeFile()
			ses.err = xerrors.Errorf("dta: could not decode %q: %w", ses.paths[ses.cur], err)
			return nil, ses.err
		}
	}
}

// open opens the i-th file as a continuation of the session.
func (ses *Session) open(i int) error {
	if i >= len(ses.paths) {
		return io.EOF
	}
	src, err := openSource(ses.paths[i], ses.opts.Mmap)
	if err != nil {
		return err
	}
	ses.stats.Files++
	ses.cur = i
	ses.src = src
	ses.dec = newDecoder(newFrameReader(src, &ses.stats), ses.cfg, &ses.sch, ses.opts, ses.msg)
	return nil
}

func (ses *Session) closeFile() error {
	ses.dec = nil
	if ses.src == nil {
		return nil
	}
	err := ses.src.Close()
	ses.src = nil
	return err
}

// Close releases the file currently opened by the session.
// Close may be called before the session is exhausted.
func (ses *Session) Close() error {
	err := ses.closeFile()
	if ses.err == nil {
		ses.err = xerrors.Errorf("dta: session closed: %w", os.ErrClosed)
	}
	return err
}

type source struct {
	io.Reader
	io.Closer
}

func openSource(fname string, useMmap bool) (source, error) {
	if useMmap {
		h, err := mmap.Open(fname)
		if err != nil {
			return source{}, xerrors.Errorf("dta: could not mmap %q: %w", fname, err)
		}
		return source{
			Reader: io.NewSectionReader(h, 0, int64(h.Len())),
			Closer: h,
		}, nil
	}

	f, err := os.Open(fname)
	if err != nil {
		return source{}, xerrors.Errorf("dta: could not open %q: %w", fname, err)
	}
	return source{Reader: bufio.NewReader(f), Closer: f}, nil
}

// Records holds all the events of a session.
type Records struct {
	Config     *Config
	Schema     Schema
	Stats      Stats
	Hits       []*Hit
	TimeDriven []*TimeDriven
	Waveforms  []*Waveform
}

// ReadAll decodes all the events of the session stored in the named files.
func ReadAll(paths []string, opts Options) (*Records, error) {
	ses, err := Open(paths, opts)
	if err != nil {
		return nil, err
	}
	defer ses.Close()

	recs := &Records{Config: ses.Config()}
	for {
		evt, err := ses.Next()
		if err != nil {
			if xerrors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch evt := evt.(type) {
		case *Hit:
			recs.Hits = append(recs.Hits, evt)
		case *TimeDriven:
			recs.TimeDriven = append(recs.TimeDriven, evt)
		case *Waveform:
			recs.Waveforms = append(recs.Waveforms, evt)
		}
	}
	recs.Schema = ses.Schema()
	recs.Stats = ses.Stats()
	return recs, nil
}
