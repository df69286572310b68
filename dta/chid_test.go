// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-lpc/aewin/internal/dtagen"
)

func TestCharacteristic(t *testing.T) {
	for _, tc := range []struct {
		id   uint8
		name string
		size int
		raw  []byte
		want Value
	}{
		{id: 1, name: "RISE", size: 2, raw: dtagen.U16(42), want: IntValue(42)},
		{id: 5, name: "DURATION", size: 4, raw: dtagen.I32(-3), want: IntValue(-3)},
		{id: 6, name: "AMP", size: 1, raw: []byte{200}, want: IntValue(200)},
		{id: 17, name: "RMS", size: 2, raw: dtagen.U16(5000), want: FloatValue(1)},
		{id: 20, name: "SIG STRENGTH", size: 4, raw: dtagen.I32(100), want: FloatValue(305)},
		{id: 21, name: "ABS-ENERGY", size: 4, raw: dtagen.F32(1), want: FloatValue(9.31e-4)},
		{id: 22, name: "PARTIAL POWER", size: 3, raw: []byte{1, 2, 3}, want: BytesValue([]byte{1, 2, 3})},
		{id: 31, name: "UNKNOWN", size: 2, raw: dtagen.U16(7), want: IntValue(7)},
		{id: 99, name: "CHID_99", size: 0, raw: nil, want: BytesValue(nil)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := Characteristic(tc.id)
			if got, want := c.Name, tc.name; got != want {
				t.Fatalf("invalid name: got=%q, want=%q", got, want)
			}
			if got, want := CharName(tc.id), tc.name; got != want {
				t.Fatalf("invalid char-name: got=%q, want=%q", got, want)
			}
			if got, want := c.Size(3), tc.size; got != want {
				t.Fatalf("invalid size: got=%d, want=%d", got, want)
			}

			got := c.Decode(tc.raw)
			if got.Kind() != tc.want.Kind() {
				t.Fatalf("invalid kind: got=%v, want=%v", got.Kind(), tc.want.Kind())
			}
			switch got.Kind() {
			case Int:
				if got.Int() != tc.want.Int() {
					t.Fatalf("invalid value: got=%v, want=%v", got, tc.want)
				}
			case Float:
				if math.Abs(got.Float()-tc.want.Float()) > 1e-12 {
					t.Fatalf("invalid value: got=%v, want=%v", got, tc.want)
				}
			case Bytes:
				if !bytes.Equal(got.Bytes(), tc.want.Bytes()) {
					t.Fatalf("invalid value: got=%v, want=%v", got, tc.want)
				}
			}
		})
	}
}

func TestCharacteristicKnown(t *testing.T) {
	if _, ok := Characteristic(6); !ok {
		t.Fatalf("AMP should be a known characteristic")
	}
	if _, ok := Characteristic(7); ok {
		t.Fatalf("CHID 7 should be an unknown characteristic")
	}
}

func TestCharacteristicShort(t *testing.T) {
	c, _ := Characteristic(5)
	if got := c.Decode([]byte{1, 2}); !got.IsMissing() {
		t.Fatalf("short value should be missing: got=%v", got)
	}
}

func TestValue(t *testing.T) {
	for _, tc := range []struct {
		v    Value
		kind Kind
		str  string
	}{
		{v: Value{}, kind: Missing, str: "NA"},
		{v: IntValue(-2), kind: Int, str: "-2"},
		{v: FloatValue(0.5), kind: Float, str: "0.5"},
		{v: BytesValue([]byte{0xca, 0xfe}), kind: Bytes, str: "cafe"},
		{v: FloatsValue([]float64{1, 2, 3}), kind: Floats, str: "[3 samples]"},
	} {
		t.Run(tc.str, func(t *testing.T) {
			if got, want := tc.v.Kind(), tc.kind; got != want {
				t.Fatalf("invalid kind: got=%v, want=%v", got, want)
			}
			if got, want := tc.v.String(), tc.str; got != want {
				t.Fatalf("invalid string: got=%q, want=%q", got, want)
			}
		})
	}

	if v := (Value{}); !math.IsNaN(v.Float()) {
		t.Fatalf("missing value should be NaN")
	}

	raw := []byte{1, 2}
	v := BytesValue(raw)
	raw[0] = 42
	if got, want := v.Bytes(), []byte{1, 2}; !bytes.Equal(got, want) {
		t.Fatalf("bytes value should hold a copy: got=%x, want=%x", got, want)
	}
}
