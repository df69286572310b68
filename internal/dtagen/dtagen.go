// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dtagen generates synthetic DTA streams.
package dtagen // import "github.com/go-lpc/aewin/internal/dtagen"

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Encoder writes DTA messages to an underlying writer.
type Encoder struct {
	w   io.Writer
	err error
	buf bytes.Buffer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first error encountered while writing.
func (enc *Encoder) Err() error { return enc.err }

// Raw writes p as is.
func (enc *Encoder) Raw(p []byte) *Encoder {
	if enc.err != nil {
		return enc
	}
	_, enc.err = enc.w.Write(p)
	return enc
}

// Frame writes a message with the provided identifier and payload.
// Messages with an identifier in [40, 49] must hold their sub-identifier
// as the first byte of payload.
func (enc *Encoder) Frame(id uint8, payload ...[]byte) *Encoder {
	enc.buf.Reset()
	enc.buf.WriteByte(id)
	for _, p := range payload {
		enc.buf.Write(p)
	}
	if enc.buf.Len() > math.MaxUint16 {
		if enc.err == nil {
			enc.err = fmt.Errorf("dtagen: message %d too long (%d bytes)", id, enc.buf.Len())
		}
		return enc
	}
	enc.Raw(U16(uint16(enc.buf.Len())))
	return enc.Raw(enc.buf.Bytes())
}

// Comment writes a user comment message.
func (enc *Encoder) Comment(txt string) *Encoder {
	return enc.Frame(7, []byte(txt), []byte{0})
}

// Product writes a product definition message.
func (enc *Encoder) Product(name string) *Encoder {
	return enc.Frame(41, []byte{0}, U16(0x0101), []byte(name), []byte("\r\n\x00"))
}

// TestStart writes a test start time message.
func (enc *Encoder) TestStart(t time.Time) *Encoder {
	return enc.Frame(99, []byte(t.Format("Mon Jan _2 15:04:05 2006")+"\n\x00"))
}

// Setup writes a hardware setup message holding the provided sub-messages.
func (enc *Encoder) Setup(subs ...[]byte) *Encoder {
	payload := [][]byte{{0}, U16(0x0100)}
	payload = append(payload, subs...)
	return enc.Frame(42, payload...)
}

// PartialPower writes a partial power setup message.
func (enc *Encoder) PartialPower(segments uint16) *Encoder {
	return enc.Frame(109, []byte{1}, U16(segments), []byte{0, 0})
}

// Continued writes a continued-file marker, embedding the already encoded
// messages of inner.
func (enc *Encoder) Continued(inner []byte) *Encoder {
	return enc.Frame(8, make([]byte, 8), inner)
}

// Hit writes a hit message.
// values are the encoded characteristics of the hit.
func (enc *Encoder) Hit(counts uint64, ch uint8, values []byte, params ...Param) *Encoder {
	payload := [][]byte{Counts(counts), {ch}, values}
	for _, p := range params {
		payload = append(payload, []byte{p.ID}, U16(p.Value))
	}
	if len(params) > 0 {
		payload = append(payload, []byte{0xca, 0xfe})
	}
	return enc.Frame(1, payload...)
}

// TimeDriven writes a time-driven (id=2) or user-forced (id=3) sample.
func (enc *Encoder) TimeDriven(id uint8, counts uint64, params []Param, chans ...Channel) *Encoder {
	payload := [][]byte{Counts(counts)}
	for _, p := range params {
		payload = append(payload, []byte{p.ID}, U16(p.Value))
	}
	for _, c := range chans {
		payload = append(payload, []byte{c.ID}, c.Features)
	}
	return enc.Frame(id, payload...)
}

// Control writes a test resume (128), stop (129) or pause (130) message.
func (enc *Encoder) Control(id uint8, counts uint64) *Encoder {
	return enc.Frame(id, Counts(counts), []byte{0})
}

// Waveform writes a waveform message.
func (enc *Encoder) Waveform(counts uint64, ch uint8, samples ...int16) *Encoder {
	payload := [][]byte{{1}, Counts(counts), {ch}, {0}}
	for _, v := range samples {
		payload = append(payload, U16(uint16(v)))
	}
	return enc.Frame(173, payload...)
}

// Param is a parametric (PID, value) pair.
type Param struct {
	ID    uint8
	Value uint16
}

// Channel is the feature vector of a channel, in time-driven data.
type Channel struct {
	ID       uint8
	Features []byte
}

// Sub returns an encoded hardware setup sub-message.
func Sub(id uint8, body ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(id)
	for _, p := range body {
		buf.Write(p)
	}
	return append(U16(uint16(buf.Len())), buf.Bytes()...)
}

// EventDef returns the sub-message defining the characteristics of hits.
func EventDef(chids ...uint8) []byte {
	return Sub(5, []byte{uint8(len(chids))}, chids)
}

// DemandDef returns the sub-message defining time-driven data.
func DemandDef(chids, pids []uint8) []byte {
	return Sub(6, []byte{uint8(len(chids))}, chids, []byte{uint8(len(pids))}, pids)
}

func Threshold(ch, v uint8) []byte  { return Sub(22, []byte{ch, v, 0}) }
func Gain(ch, v uint8) []byte       { return Sub(23, []byte{ch, v}) }
func HDT(ch uint8, v uint16) []byte { return Sub(24, []byte{ch}, U16(v)) }
func HLT(ch uint8, v uint16) []byte { return Sub(25, []byte{ch}, U16(v)) }
func PDT(ch uint8, v uint16) []byte { return Sub(26, []byte{ch}, U16(v)) }

// SamplingInterval returns the sampling interval sub-message (in ms).
func SamplingInterval(ms uint16) []byte { return Sub(27, U16(ms)) }

// DemandRate returns the demand rate sub-message (in ms).
func DemandRate(ms uint16) []byte { return Sub(102, U16(ms)) }

// PartialPowerSub returns the partial power setup sub-message.
func PartialPowerSub(segments uint16) []byte { return Sub(109, []byte{1}, U16(segments)) }

// WaveformHW returns the waveform hardware sub-message of a channel.
// srate is in kHz.
func WaveformHW(ch uint8, srate uint16, tdly int16) []byte {
	return Sub(173,
		[]byte{42},        // nested sub-id
		[]byte{1, 0},      // version
		[]byte{2},         // ADT
		[]byte{1, 0},      // sets
		U16(26),           // sub-length
		[]byte{ch},        // channel
		U16(15),           // HLK
		U16(0),            // hits
		U16(srate),        // SRATE
		U16(0),            // TMODE
		U16(0),            // TSRC
		U16(uint16(tdly)), // TDLY
		U16(10),           // MXIN
		U16(40),           // THRD
	)
}

// Counts returns the 6-byte encoding of a time counter (in units of 0.25µs).
func Counts(v uint64) []byte {
	p := make([]byte, 6)
	binary.LittleEndian.PutUint32(p[0:4], uint32(v))
	binary.LittleEndian.PutUint16(p[4:6], uint16(v>>32))
	return p
}

func U8(v uint8) []byte { return []byte{v} }

func U16(v uint16) []byte {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, v)
	return p
}

func I32(v int32) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, uint32(v))
	return p
}

func F32(v float32) []byte {
	return I32(int32(math.Float32bits(v)))
}

// Cat concatenates byte slices.
func Cat(ps ...[]byte) []byte {
	var o []byte
	for _, p := range ps {
		o = append(o, p...)
	}
	return o
}
