// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dump

import (
	"strings"
	"testing"
	"time"

	"github.com/go-lpc/aewin/dta"
)

func TestConfig(t *testing.T) {
	cfg := &dta.Config{
		Product:          "AEwin",
		Comment:          "test",
		TestStart:        time.Date(2021, time.March, 4, 9, 30, 15, 0, time.UTC),
		Characteristics:  []uint8{6, 17},
		Gain:             map[uint8]int{1: 40, 2: 20},
		Threshold:        map[uint8]int{1: 45},
		SamplingInterval: time.Second,
		Hardware:         map[uint8]dta.Hardware{1: {SampleRate: 5000000, TriggerDelay: -256}},
	}

	want := strings.Join([]string{
		"=== DTA configuration ===",
		"Product:      AEwin",
		"Comment:      test",
		"Test start:   2021-03-04 09:30:15",
		"Hit chars:    AMP,RMS",
		"Demand chars: ",
		"Demand PIDs:  []",
		"PP segments:  0",
		"Sampling:     1s",
		"Demand rate:  0s",
		"Channels:     2",
		"  ch=  1 gain=40 thr=45 hdt=- hlt=- pdt=- srate=5000000 tdly=-256",
		"  ch=  2 gain=20 thr=- hdt=- hlt=- pdt=- srate=- tdly=-",
		"",
	}, "\n")

	out := new(strings.Builder)
	Config(out, cfg)
	if got := out.String(); got != want {
		t.Fatalf("invalid config dump:\ngot:\n%s\nwant:\n%s\n", got, want)
	}
}

func TestEvent(t *testing.T) {
	cfg := &dta.Config{Characteristics: []uint8{6, 17}}
	for _, tc := range []struct {
		name string
		evt  dta.Event
		want string
	}{
		{
			name: "hit",
			evt: &dta.Hit{
				RTOT:    1.5,
				Channel: 1,
				Values:  []dta.Value{dta.IntValue(200), dta.FloatValue(0.5)},
				Params:  []dta.Value{{}},
			},
			want: "hit         1.5000000 1 200 0.5 NA\n",
		},
		{
			name: "time-driven",
			evt: &dta.TimeDriven{
				ID:       2,
				RTOT:     0.25,
				Params:   []dta.Value{dta.IntValue(3)},
				Features: []dta.Value{dta.IntValue(4), dta.BytesValue([]byte{1, 2})},
			},
			want: "time_driven 0.2500000 3 4 0102\n",
		},
		{
			name: "waveform",
			evt: &dta.Waveform{
				RTOT:         12.0000001,
				Channel:      2,
				SampleRate:   1000000,
				TriggerDelay: -1,
				Samples:      []float64{0.5, -0.25},
			},
			want: "waveform    12.0000001 2 1000000 -1 [2 samples]\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := new(strings.Builder)
			Event(out, tc.evt)
			if got, want := out.String(), tc.want; got != want {
				t.Fatalf("invalid event dump:\ngot= %q\nwant=%q", got, want)
			}
		})
	}

	out := new(strings.Builder)
	Header(out, dta.HitEvent, cfg, dta.Schema{})
	if got, want := out.String(), "# hit         SSSSSSSS.mmmuuun, CH, AMP, RMS\n"; got != want {
		t.Fatalf("invalid header:\ngot= %q\nwant=%q", got, want)
	}
	if got := Columns(dta.EventKind(0), cfg, dta.Schema{}); got != nil {
		t.Fatalf("invalid columns: %q", got)
	}
}

func TestSamples(t *testing.T) {
	for _, tc := range []struct {
		name string
		wfm  dta.Waveform
		want string
	}{
		{
			name: "time-axis",
			wfm: dta.Waveform{
				SampleRate:   1000000,
				TriggerDelay: -1,
				Samples:      []float64{0.5, -0.25},
			},
			want: "  t=    -1.000us v=+5.000000e-01\n  t=    +0.000us v=-2.500000e-01\n",
		},
		{
			name: "no-rate",
			wfm:  dta.Waveform{Samples: []float64{0.5}},
			want: "  i=     0 v=+5.000000e-01\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := new(strings.Builder)
			Samples(out, &tc.wfm)
			if got, want := out.String(), tc.want; got != want {
				t.Fatalf("invalid samples:\ngot= %q\nwant=%q", got, want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	out := new(strings.Builder)
	Stats(out, dta.Stats{Files: 2, Hits: 42})
	for _, want := range []string{
		"Files:                  2\n",
		"Hits:                  42\n",
		"Controls:               0\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, out.String())
		}
	}
}
