// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dump displays DTA configurations and events as text.
package dump // import "github.com/go-lpc/aewin/internal/dump"

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-lpc/aewin/dta"
)

// Config writes the acquisition setup cfg to w.
func Config(w io.Writer, cfg *dta.Config) {
	start := "-"
	if !cfg.TestStart.IsZero() {
		start = cfg.TestStart.Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(w, "=== DTA configuration ===\n")
	fmt.Fprintf(w, "Product:      %s\n", cfg.Product)
	fmt.Fprintf(w, "Comment:      %s\n", cfg.Comment)
	fmt.Fprintf(w, "Test start:   %s\n", start)
	fmt.Fprintf(w, "Hit chars:    %s\n", names(cfg.Characteristics))
	fmt.Fprintf(w, "Demand chars: %s\n", names(cfg.DemandCharacteristics))
	fmt.Fprintf(w, "Demand PIDs:  %v\n", cfg.DemandParams)
	fmt.Fprintf(w, "PP segments:  %d\n", cfg.PartialPowerSegments)
	fmt.Fprintf(w, "Sampling:     %v\n", cfg.SamplingInterval)
	fmt.Fprintf(w, "Demand rate:  %v\n", cfg.DemandRate)

	chans := channels(cfg)
	fmt.Fprintf(w, "Channels:     %d\n", len(chans))
	for _, ch := range chans {
		var (
			hw, ok = cfg.Hardware[ch]
			srate  = "-"
			tdly   = "-"
		)
		if ok {
			srate = strconv.Itoa(hw.SampleRate)
			tdly = strconv.Itoa(hw.TriggerDelay)
		}
		fmt.Fprintf(w,
			"  ch=%3d gain=%s thr=%s hdt=%s hlt=%s pdt=%s srate=%s tdly=%s\n",
			ch,
			opt(cfg.Gain, ch), opt(cfg.Threshold, ch),
			opt(cfg.HDT, ch), opt(cfg.HLT, ch), opt(cfg.PDT, ch),
			srate, tdly,
		)
	}
}

func names(ids []uint8) string {
	o := make([]string, len(ids))
	for i, id := range ids {
		o[i] = dta.CharName(id)
	}
	return strings.Join(o, ",")
}

func opt(m map[uint8]int, ch uint8) string {
	v, ok := m[ch]
	if !ok {
		return "-"
	}
	return strconv.Itoa(v)
}

// channels returns the sorted list of channels with any setting.
func channels(cfg *dta.Config) []uint8 {
	set := make(map[uint8]struct{})
	for _, m := range []map[uint8]int{cfg.Gain, cfg.Threshold, cfg.HDT, cfg.HLT, cfg.PDT} {
		for ch := range m {
			set[ch] = struct{}{}
		}
	}
	for ch := range cfg.Hardware {
		set[ch] = struct{}{}
	}
	o := make([]uint8, 0, len(set))
	for ch := range set {
		o = append(o, ch)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}

// Columns returns the column names of events of the provided kind.
func Columns(kind dta.EventKind, cfg *dta.Config, sch dta.Schema) []string {
	switch kind {
	case dta.HitEvent:
		return sch.HitColumns(cfg)
	case dta.TimeDrivenEvent:
		return sch.TimeDrivenColumns()
	case dta.WaveformEvent:
		return dta.WaveformColumns
	}
	return nil
}

// Header writes the column names of events of the provided kind.
func Header(w io.Writer, kind dta.EventKind, cfg *dta.Config, sch dta.Schema) {
	fmt.Fprintf(w, "# %-11s %s\n", kind, strings.Join(Columns(kind, cfg, sch), ", "))
}

// Row formats the values of an event, with its time in seconds
// down to the 100ns.
func Row(evt dta.Event) string {
	vs := evt.Row()
	o := make([]string, len(vs))
	for i, v := range vs {
		switch i {
		case 0:
			o[i] = strconv.FormatFloat(v.Float(), 'f', 7, 64)
		default:
			o[i] = v.String()
		}
	}
	return strings.Join(o, " ")
}

// Event writes an event on a single line.
func Event(w io.Writer, evt dta.Event) {
	fmt.Fprintf(w, "%-11s %s\n", evt.Kind(), Row(evt))
}

// Samples writes the calibrated samples of a waveform, one per line.
func Samples(w io.Writer, wfm *dta.Waveform) {
	ts := dta.TimeAxis(wfm)
	for i, v := range wfm.Samples {
		switch {
		case ts != nil:
			fmt.Fprintf(w, "  t=%+10.3fus v=%+.6e\n", ts[i], v)
		default:
			fmt.Fprintf(w, "  i=%6d v=%+.6e\n", i, v)
		}
	}
}

// Stats writes the decoding counters st.
func Stats(w io.Writer, st dta.Stats) {
	fmt.Fprintf(w, "Files:         % 10d\n", st.Files)
	fmt.Fprintf(w, "Frames:        % 10d\n", st.Frames)
	fmt.Fprintf(w, "Bytes:         % 10d\n", st.Bytes)
	fmt.Fprintf(w, "Hits:          % 10d\n", st.Hits)
	fmt.Fprintf(w, "Time-driven:   % 10d\n", st.TimeDriven)
	fmt.Fprintf(w, "Waveforms:     % 10d\n", st.Waveforms)
	fmt.Fprintf(w, "Skipped:       % 10d\n", st.Skipped)
	fmt.Fprintf(w, "Unknown:       % 10d\n", st.Unknown)
	fmt.Fprintf(w, "Continuations: % 10d\n", st.Continuations)
	fmt.Fprintf(w, "Controls:      % 10d\n", st.Controls)
}
