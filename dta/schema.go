// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"fmt"
	"sort"
)

type orderState uint8

const (
	undiscovered orderState = iota
	fixed
)

// Order is a field ordering discovered from the first record exhibiting it.
// An Order starts undiscovered; once fixed it never changes.
type Order[T comparable] struct {
	state orderState
	keys  []T
}

// Fixed returns whether the order has been discovered.
func (o Order[T]) Fixed() bool { return o.state == fixed }

// Keys returns a copy of the discovered order, or nil if the order is
// still undiscovered.
func (o Order[T]) Keys() []T {
	if o.state != fixed {
		return nil
	}
	return append([]T{}, o.keys...)
}

// fix sets the order if it is still undiscovered.
func (o *Order[T]) fix(keys []T) {
	if o.state == fixed {
		return
	}
	o.keys = append([]T{}, keys...)
	o.state = fixed
}

// Schema holds the field orderings that are not declared in a DTA header
// but inferred from the data stream.
//
// HitParams is fixed by the first hit carrying parametric values.
// TDParams and TDChannels are fixed by the first time-driven record,
// TDFeatures by the first time-driven record with channel data.
type Schema struct {
	HitParams  Order[uint8]  // parametric IDs of hits
	TDParams   Order[uint8]  // parametric IDs of time-driven records
	TDChannels Order[uint8]  // sorted channel IDs of time-driven records
	TDFeatures Order[string] // feature names of time-driven records
}

func (sch *Schema) clone() Schema {
	o := Schema{
		HitParams:  Order[uint8]{state: sch.HitParams.state, keys: sch.HitParams.Keys()},
		TDParams:   Order[uint8]{state: sch.TDParams.state, keys: sch.TDParams.Keys()},
		TDChannels: Order[uint8]{state: sch.TDChannels.state, keys: sch.TDChannels.Keys()},
		TDFeatures: Order[string]{state: sch.TDFeatures.state, keys: sch.TDFeatures.Keys()},
	}
	return o
}

// Column names shared by all record kinds.
const (
	ColRTOT = "SSSSSSSS.mmmuuun"
	ColChan = "CH"
)

// WaveformColumns are the column names of waveform records.
var WaveformColumns = []string{ColRTOT, ColChan, "SRATE", "TDLY", "WAVEFORM"}

// HitColumns returns the column names of hit records.
func (sch Schema) HitColumns(cfg *Config) []string {
	o := []string{ColRTOT, ColChan}
	for _, id := range cfg.Characteristics {
		o = append(o, CharName(id))
	}
	for _, pid := range sch.HitParams.keys {
		o = append(o, fmt.Sprintf("PARAM_%d", pid))
	}
	return o
}

// TimeDrivenColumns returns the column names of time-driven records.
func (sch Schema) TimeDrivenColumns() []string {
	o := []string{ColRTOT}
	for _, pid := range sch.TDParams.keys {
		o = append(o, fmt.Sprintf("PID_%d", pid))
	}
	for _, cid := range sch.TDChannels.keys {
		for _, key := range sch.TDFeatures.keys {
			o = append(o, fmt.Sprintf("CID%d_%s", cid, key))
		}
	}
	return o
}

// params holds parametric values in their order of appearance.
// A repeated ID keeps its first position and its last value.
type params struct {
	ids  []uint8
	vals map[uint8]uint16
}

func (ps *params) set(id uint8, v uint16) {
	if ps.vals == nil {
		ps.vals = make(map[uint8]uint16)
	}
	if _, dup := ps.vals[id]; !dup {
		ps.ids = append(ps.ids, id)
	}
	ps.vals[id] = v
}

// values returns one value per id of order, missing when absent.
func (ps *params) values(order []uint8) []Value {
	o := make([]Value, len(order))
	for i, id := range order {
		v, ok := ps.vals[id]
		if !ok {
			continue
		}
		o[i] = IntValue(int64(v))
	}
	return o
}

// features is a decoded time-driven feature vector.
type features struct {
	keys []string
	vals map[string]Value
}

func (fs *features) set(k string, v Value) {
	if fs.vals == nil {
		fs.vals = make(map[string]Value)
	}
	if _, dup := fs.vals[k]; !dup {
		fs.keys = append(fs.keys, k)
	}
	fs.vals[k] = v
}

func sortedIDs(ids []uint8) []uint8 {
	o := append([]uint8{}, ids...)
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}
