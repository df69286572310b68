// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Char describes an AE characteristic: its identifier (CHID), its name,
// its width on the wire and how its raw bytes are decoded.
type Char struct {
	ID    uint8
	Name  string
	Width int // width in bytes, unused for variable-width characteristics

	variable bool
	decode   func(p []byte) Value
}

const chidPartialPower = 22

var chars = map[uint8]Char{
	1:  {ID: 1, Name: "RISE", Width: 2, decode: decodeU16},
	2:  {ID: 2, Name: "PCNTS", Width: 2, decode: decodeU16},
	3:  {ID: 3, Name: "COUN", Width: 2, decode: decodeU16},
	4:  {ID: 4, Name: "ENER", Width: 2, decode: decodeU16},
	5:  {ID: 5, Name: "DURATION", Width: 4, decode: decodeI32},
	6:  {ID: 6, Name: "AMP", Width: 1, decode: decodeU8},
	8:  {ID: 8, Name: "ASL", Width: 1, decode: decodeU8},
	10: {ID: 10, Name: "THR", Width: 1, decode: decodeU8},
	13: {ID: 13, Name: "A-FRQ", Width: 2, decode: decodeU16},
	17: {ID: 17, Name: "RMS", Width: 2, decode: decodeRMS},
	18: {ID: 18, Name: "R-FRQ", Width: 2, decode: decodeU16},
	19: {ID: 19, Name: "I-FRQ", Width: 2, decode: decodeU16},
	20: {ID: 20, Name: "SIG STRENGTH", Width: 4, decode: decodeSigStrength},
	21: {ID: 21, Name: "ABS-ENERGY", Width: 4, decode: decodeAbsEnergy},
	22: {ID: 22, Name: "PARTIAL POWER", variable: true, decode: decodeBytes},
	23: {ID: 23, Name: "FRQ-C", Width: 2, decode: decodeU16},
	24: {ID: 24, Name: "P-FRQ", Width: 2, decode: decodeU16},
	31: {ID: 31, Name: "UNKNOWN", Width: 2, decode: decodeU16},
}

// Characteristic returns the description of the characteristic id.
// Unknown identifiers are described by a zero-width characteristic
// named CHID_<id>.
func Characteristic(id uint8) (Char, bool) {
	c, ok := chars[id]
	if !ok {
		return Char{ID: id, Name: fmt.Sprintf("CHID_%d", id), decode: decodeBytes}, false
	}
	return c, true
}

// CharName returns the name of the characteristic id.
func CharName(id uint8) string {
	c, _ := Characteristic(id)
	return c.Name
}

// Size returns the number of bytes the characteristic occupies,
// given the number of partial power segments of the acquisition setup.
func (c Char) Size(segments int) int {
	if c.variable {
		return segments
	}
	return c.Width
}

// Decode decodes the raw bytes of the characteristic.
// Decode returns a missing value if p is too short.
func (c Char) Decode(p []byte) Value {
	if !c.variable && len(p) < c.Width {
		return Value{}
	}
	if c.decode == nil {
		return decodeBytes(p)
	}
	return c.decode(p)
}

func decodeU8(p []byte) Value  { return IntValue(int64(p[0])) }
func decodeU16(p []byte) Value { return IntValue(int64(binary.LittleEndian.Uint16(p))) }
func decodeI32(p []byte) Value { return IntValue(int64(int32(binary.LittleEndian.Uint32(p)))) }

func decodeRMS(p []byte) Value {
	return FloatValue(float64(binary.LittleEndian.Uint16(p)) / 5000.0)
}

func decodeSigStrength(p []byte) Value {
	return FloatValue(float64(int32(binary.LittleEndian.Uint32(p))) * 3.05)
}

func decodeAbsEnergy(p []byte) Value {
	v := math.Float32frombits(binary.LittleEndian.Uint32(p))
	return FloatValue(float64(v) * 9.31e-4)
}

func decodeBytes(p []byte) Value { return BytesValue(p) }
