// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"math"
	"reflect"
	"testing"
)

func TestAmplitudeScale(t *testing.T) {
	for _, tc := range []struct {
		gain float64
		raw  int16
		want float64
	}{
		{gain: 0, raw: 32767, want: 9.99969482421875},
		{gain: 0, raw: -32768, want: -10},
		{gain: 20, raw: 32767, want: 0.999969482421875},
		{gain: 40, raw: 16384, want: 0.05},
	} {
		t.Run("", func(t *testing.T) {
			got := Calibrate([]int16{tc.raw}, tc.gain)[0]
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("invalid sample: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestTimeAxis(t *testing.T) {
	for _, tc := range []struct {
		name string
		wfm  Waveform
		want []float64
	}{
		{
			name: "no rate",
			wfm:  Waveform{Raw: []int16{1, 2}},
		},
		{
			name: "raw",
			wfm:  Waveform{SampleRate: 2000000, TriggerDelay: 0, Raw: []int16{1, 2, 3}},
			want: []float64{0, 0.5, 1},
		},
		{
			name: "pre-trigger",
			wfm:  Waveform{SampleRate: 1000000, TriggerDelay: -1, Samples: []float64{1, 2}},
			want: []float64{-1, 0},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := TimeAxis(&tc.wfm)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid time axis: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestOrder(t *testing.T) {
	var o Order[uint8]
	if o.Fixed() || o.Keys() != nil {
		t.Fatalf("order should be undiscovered")
	}

	o.fix(nil)
	if !o.Fixed() {
		t.Fatalf("order should be fixed")
	}
	if got := o.Keys(); got == nil || len(got) != 0 {
		t.Fatalf("invalid keys: %v", got)
	}

	o.fix([]uint8{1, 2})
	if got := o.Keys(); len(got) != 0 {
		t.Fatalf("fixed order should not change: %v", got)
	}

	var p Order[string]
	p.fix([]string{"AMP", "RMS"})
	keys := p.Keys()
	keys[0] = "XXX"
	if got, want := p.Keys(), []string{"AMP", "RMS"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys should be a copy: got=%q, want=%q", got, want)
	}
}

func TestSchemaClone(t *testing.T) {
	var sch Schema
	sch.HitParams.fix([]uint8{3})
	snap := sch.clone()
	sch.TDParams.fix([]uint8{1})

	if !snap.HitParams.Fixed() || snap.TDParams.Fixed() {
		t.Fatalf("invalid snapshot: %+v", snap)
	}
	if got, want := snap.HitParams.Keys(), []uint8{3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid snapshot keys: got=%v, want=%v", got, want)
	}
}

func TestEventKind(t *testing.T) {
	for _, tc := range []struct {
		kind EventKind
		want string
	}{
		{HitEvent, "hit"},
		{TimeDrivenEvent, "time_driven"},
		{WaveformEvent, "waveform"},
		{EventKind(0), "unknown"},
	} {
		if got := tc.kind.String(); got != tc.want {
			t.Fatalf("invalid kind name: got=%q, want=%q", got, tc.want)
		}
	}
}

func TestSchemaValue(t *testing.T) {
	var sch Schema
	sch.HitParams.fix([]uint8{2, 1})
	sch.TDParams.fix([]uint8{5})
	sch.TDChannels.fix([]uint8{1})
	sch.TDFeatures.fix([]string{"AMP"})

	cfg := &Config{Characteristics: []uint8{6}}
	if !sch.clone().HitParams.Fixed() {
		t.Fatalf("hit params should be fixed")
	}
	if got, want := sch.clone().TDParams.Keys(), []uint8{5}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid td params: got=%v, want=%v", got, want)
	}
	if got, want := sch.clone().HitColumns(cfg), []string{ColRTOT, ColChan, "AMP", "PARAM_2", "PARAM_1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid hit columns: got=%q, want=%q", got, want)
	}
	if got, want := sch.clone().TimeDrivenColumns(), []string{ColRTOT, "PID_5", "CID1_AMP"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid td columns: got=%q, want=%q", got, want)
	}
}
