// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-lpc/aewin/dta"
	"github.com/go-lpc/aewin/internal/dtagen"
)

func genFile(t *testing.T, fname string, f func(enc *dtagen.Encoder)) string {
	t.Helper()
	var buf bytes.Buffer
	enc := dtagen.NewEncoder(&buf)
	f(enc)
	if err := enc.Err(); err != nil {
		t.Fatalf("could not generate %q: %+v", fname, err)
	}
	err := os.WriteFile(fname, buf.Bytes(), 0644)
	if err != nil {
		t.Fatalf("could not write %q: %+v", fname, err)
	}
	return fname
}

func TestProcess(t *testing.T) {
	tmp := t.TempDir()
	var (
		f1 = genFile(t, filepath.Join(tmp, "run_1.dta"), func(enc *dtagen.Encoder) {
			enc.Product("AEwin")
			enc.Setup(
				dtagen.EventDef(6),
				dtagen.DemandDef([]uint8{6}, []uint8{1}),
				dtagen.Gain(1, 40),
				dtagen.WaveformHW(1, 1000, 0),
			)
			enc.Hit(4, 1, []byte{200})
			enc.Waveform(8, 1, 42)
			enc.TimeDriven(2, 10, []dtagen.Param{{ID: 1, Value: 5}}, dtagen.Channel{ID: 1, Features: []byte{7}})
		})
		f2 = genFile(t, filepath.Join(tmp, "run_2.dta"), func(enc *dtagen.Encoder) {
			enc.Hit(12, 2, []byte{100})
		})
	)

	for _, tc := range []struct {
		name    string
		fnames  []string
		opts    dta.Options
		samples bool
		want    []string
		err     error
	}{
		{
			name:   "default",
			fnames: []string{f1, f2},
			want: []string{
				"=== DTA configuration ===\n",
				"Product:      AEwin\n",
				"# hit         SSSSSSSS.mmmuuun, CH, AMP\n",
				"hit         0.0000010 1 200\n",
				"# waveform    SSSSSSSS.mmmuuun, CH, SRATE, TDLY, WAVEFORM\n",
				"waveform    0.0000020 1 1000000 0 [1 samples]\n",
				"hit         0.0000030 2 100\n",
				"=== DTA statistics ===\n",
				"Files:                  2\n",
				"Hits:                   2\n",
				"Skipped:                1\n",
			},
		},
		{
			name:    "samples",
			fnames:  []string{f1},
			opts:    dta.Options{IncludeTimeDriven: true, Mmap: true},
			samples: true,
			want: []string{
				"  t=    +0.000us v=+1.281738e-04\n",
				"# time_driven SSSSSSSS.mmmuuun, PID_1, CID1_AMP\n",
				"time_driven 0.0000025 5 7\n",
			},
		},
		{
			name:   "missing",
			fnames: []string{filepath.Join(tmp, "missing.dta")},
			err:    os.ErrNotExist,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := new(strings.Builder)
			err := process(out, tc.fnames, tc.opts, tc.samples)
			switch {
			case tc.err != nil:
				if !errors.Is(err, tc.err) {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v\n", err, tc.err)
				}
				return
			case err != nil:
				t.Fatalf("could not dta-dump: %+v", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(out.String(), want) {
					t.Fatalf("missing %q in dta-dump output:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestDump(t *testing.T) {
	fname := genFile(t, filepath.Join(t.TempDir(), "run.dta"), func(enc *dtagen.Encoder) {
		enc.Setup(dtagen.EventDef(6))
		enc.Hit(4, 1, []byte{200})
	})

	xmain(io.Discard, []string{"-v", "-skip-wfm", fname})
}

func TestProcessHeaderChange(t *testing.T) {
	fname := genFile(t, filepath.Join(t.TempDir(), "run.dta"), func(enc *dtagen.Encoder) {
		enc.Setup(dtagen.EventDef(6))
		enc.Hit(4, 1, []byte{10})
		enc.Hit(8, 1, []byte{11}, dtagen.Param{ID: 3, Value: 100})
		enc.Hit(12, 2, []byte{12})
	})

	out := new(strings.Builder)
	err := process(out, []string{fname}, dta.Options{}, false)
	if err != nil {
		t.Fatalf("could not dta-dump: %+v", err)
	}

	want := strings.Join([]string{
		"# hit         SSSSSSSS.mmmuuun, CH, AMP",
		"hit         0.0000010 1 10",
		"# hit         SSSSSSSS.mmmuuun, CH, AMP, PARAM_3",
		"hit         0.0000020 1 11 100",
		"hit         0.0000030 2 12 NA",
		"=== DTA statistics ===",
	}, "\n")
	if !strings.Contains(out.String(), want) {
		t.Fatalf("invalid dta-dump output:\ngot:\n%s\nwant:\n%s", out.String(), want)
	}
}
