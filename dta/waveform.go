// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"math"
)

const (
	maxInput  = 10.0    // full-scale input, in V
	maxCounts = 32768.0 // full-scale ADC counts
)

// AmplitudeScale returns the factor converting raw ADC counts into volts,
// for a channel with the provided gain (in dB).
func AmplitudeScale(gain float64) float64 {
	g := math.Pow(10, gain/20)
	return maxInput / (g * maxCounts)
}

// Calibrate converts raw ADC counts into volts.
func Calibrate(raw []int16, gain float64) []float64 {
	var (
		scale = AmplitudeScale(gain)
		o     = make([]float64, len(raw))
	)
	for i, v := range raw {
		o[i] = scale * float64(v)
	}
	return o
}

// TimeAxis returns the time of each sample of the waveform, in µs,
// relative to the trigger.
// TimeAxis returns nil if the sampling rate of the waveform is unknown.
func TimeAxis(w *Waveform) []float64 {
	if w.SampleRate <= 0 {
		return nil
	}
	n := len(w.Samples)
	if n == 0 {
		n = len(w.Raw)
	}
	var (
		rate = float64(w.SampleRate)
		dly  = float64(w.TriggerDelay)
		o    = make([]float64, n)
	)
	for i := range o {
		o[i] = 1e6 * (float64(i) + dly) / rate
	}
	return o
}
