// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dta decodes AEwin DTA acoustic-emission data files.
//
// A DTA file is a stream of length-prefixed messages.
// The first messages of a file describe the acquisition setup
// (characteristics recorded for each hit, gains, waveform hardware, ...)
// and are decoded into a Config.
// The following messages are hits, time-driven samples and waveforms,
// whose layout depends on that Config.
//
// Sessions spanning several files are decoded with Open:
//
//	ses, err := dta.Open([]string{"run.DTA", "run__1.DTA"}, dta.Options{})
//	if err != nil {
//		return err
//	}
//	defer ses.Close()
//
//	for {
//		evt, err := ses.Next()
//		if err != nil {
//			if errors.Is(err, io.EOF) {
//				break
//			}
//			return err
//		}
//		switch evt := evt.(type) {
//		case *dta.Hit:
//			// ...
//		case *dta.Waveform:
//			// ...
//		}
//	}
package dta // import "github.com/go-lpc/aewin/dta"

import (
	"io"
	"log"

	"golang.org/x/xerrors"
)

var (
	// ErrTruncated is returned when the stream ends, or a message ends,
	// before the bytes it declares have been read.
	ErrTruncated = xerrors.New("dta: truncated stream")

	// ErrMalformedTimestamp is returned when the test start time of
	// a file header can not be parsed.
	ErrMalformedTimestamp = xerrors.New("dta: malformed timestamp")
)

// message identifiers.
const (
	msgHit        = 1
	msgTimeDriven = 2
	msgUserForced = 3
	msgComment    = 7
	msgContinued  = 8
	msgProduct    = 41
	msgSetup      = 42
	msgTestStart  = 99
	msgPartial    = 109
	msgResume     = 128
	msgStop       = 129
	msgPause      = 130
	msgWaveform   = 173
)

// sub-message identifiers of the hardware setup message.
const (
	subEventDef   = 5
	subDemandDef  = 6
	subThreshold  = 22
	subGain       = 23
	subHDT        = 24
	subHLT        = 25
	subPDT        = 26
	subSampling   = 27
	subDemandRate = 102
	subPartial    = 109
	subWaveform   = 173

	subWaveformHW = 42 // nested under subWaveform
)

// isData returns whether id starts the data part of a stream.
func isData(id uint8) bool {
	switch id {
	case msgHit, msgTimeDriven, msgUserForced, msgWaveform:
		return true
	}
	return false
}

// Options controls how a stream is decoded.
type Options struct {
	SkipWaveforms     bool // do not produce waveform events
	IncludeTimeDriven bool // produce time-driven and user-forced events
	Mmap              bool // read files through a read-only memory mapping

	// Log receives informational messages and warnings about
	// unknown messages. A nil Log discards them.
	Log *log.Logger
}

func (opts Options) logger() *log.Logger {
	if opts.Log != nil {
		return opts.Log
	}
	return log.New(io.Discard, "dta: ", 0)
}

// Stats holds counters about a decoding session.
type Stats struct {
	Files  int   // number of files opened
	Frames int64 // number of frames read
	Bytes  int64 // number of bytes read

	Hits       int64
	TimeDriven int64
	Waveforms  int64

	Skipped       int64 // data frames consumed without producing an event
	Unknown       int64 // messages and sub-messages with an unknown identifier
	Continuations int64 // continued-file markers
	Controls      int64 // resume, stop and pause markers
}
