// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

// EventKind is the kind of an Event.
type EventKind uint8

const (
	HitEvent EventKind = iota + 1
	TimeDrivenEvent
	WaveformEvent
)

func (k EventKind) String() string {
	switch k {
	case HitEvent:
		return "hit"
	case TimeDrivenEvent:
		return "time_driven"
	case WaveformEvent:
		return "waveform"
	}
	return "unknown"
}

// Event is a record decoded from the data part of a DTA stream.
// Concrete events are *Hit, *TimeDriven and *Waveform.
type Event interface {
	Kind() EventKind
	// Time returns the offset from the start of the test, in seconds.
	Time() float64
	// Row returns the event laid out as a table row.
	Row() []Value
}

// Hit is an acoustic hit.
type Hit struct {
	RTOT    float64
	Channel uint8
	Values  []Value // characteristics, in Config.Characteristics order
	Params  []Value // parametric values, in Schema.HitParams order
}

func (*Hit) Kind() EventKind { return HitEvent }
func (h *Hit) Time() float64 { return h.RTOT }

// Row returns [RTOT, CH, characteristics..., parametrics...].
func (h *Hit) Row() []Value {
	o := make([]Value, 0, 2+len(h.Values)+len(h.Params))
	o = append(o, FloatValue(h.RTOT), IntValue(int64(h.Channel)))
	o = append(o, h.Values...)
	o = append(o, h.Params...)
	return o
}

// TimeDriven is a time-driven or user-forced sample.
type TimeDriven struct {
	ID       uint8 // 2 for time-driven data, 3 for user-forced samples
	RTOT     float64
	Params   []Value // parametric values, in Schema.TDParams order
	Features []Value // for each of Schema.TDChannels, each of Schema.TDFeatures
}

func (*TimeDriven) Kind() EventKind  { return TimeDrivenEvent }
func (td *TimeDriven) Time() float64 { return td.RTOT }

// UserForced returns whether the sample was forced by the user.
func (td *TimeDriven) UserForced() bool { return td.ID == msgUserForced }

// Row returns [RTOT, parametrics..., features...].
func (td *TimeDriven) Row() []Value {
	o := make([]Value, 0, 1+len(td.Params)+len(td.Features))
	o = append(o, FloatValue(td.RTOT))
	o = append(o, td.Params...)
	o = append(o, td.Features...)
	return o
}

// Waveform is a digitized AE waveform.
type Waveform struct {
	RTOT         float64
	Channel      uint8
	SampleRate   int       // in Hz
	TriggerDelay int       // in samples
	Raw          []int16   // raw ADC samples
	Samples      []float64 // calibrated samples, in V
}

func (*Waveform) Kind() EventKind { return WaveformEvent }
func (w *Waveform) Time() float64 { return w.RTOT }

// Row returns [RTOT, CH, SRATE, TDLY, samples].
func (w *Waveform) Row() []Value {
	return []Value{
		FloatValue(w.RTOT),
		IntValue(int64(w.Channel)),
		IntValue(int64(w.SampleRate)),
		IntValue(int64(w.TriggerDelay)),
		FloatsValue(w.Samples),
	}
}

var (
	_ Event = (*Hit)(nil)
	_ Event = (*TimeDriven)(nil)
	_ Event = (*Waveform)(nil)
)
