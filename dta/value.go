// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the kind of a decoded Value.
type Kind uint8

const (
	Missing Kind = iota // no value was recorded
	Int                 // integer value
	Float               // floating point value
	Bytes               // raw byte sequence
	Floats              // sequence of floating point values
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bytes:
		return "bytes"
	case Floats:
		return "floats"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a decoded field of an event.
// The zero Value is a missing value.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    []byte
	fs   []float64
}

// IntValue returns an integer value.
func IntValue(v int64) Value { return Value{kind: Int, i: v} }

// FloatValue returns a floating point value.
func FloatValue(v float64) Value { return Value{kind: Float, f: v} }

// BytesValue returns a value holding a copy of p.
func BytesValue(p []byte) Value {
	b := make([]byte, len(p))
	copy(b, p)
	return Value{kind: Bytes, b: b}
}

// FloatsValue returns a value holding the sequence vs.
func FloatsValue(vs []float64) Value { return Value{kind: Floats, fs: vs} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsMissing() bool   { return v.kind == Missing }
func (v Value) Bytes() []byte     { return v.b }
func (v Value) Floats() []float64 { return v.fs }

// Int returns the value as an integer. Floating point values are truncated.
func (v Value) Int() int64 {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return int64(v.f)
	}
	return 0
}

// Float returns the value as a floating point number.
// Missing and non-numeric values are returned as NaN.
func (v Value) Float() float64 {
	switch v.kind {
	case Int:
		return float64(v.i)
	case Float:
		return v.f
	}
	return math.NaN()
}

func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Bytes:
		return fmt.Sprintf("%x", v.b)
	case Floats:
		return fmt.Sprintf("[%d samples]", len(v.fs))
	}
	return "NA"
}
