// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"
)

// Frame is the header of a message.
type Frame struct {
	Len   uint16 // declared length, counting the bytes after the length field
	ID    uint8  // message identifier
	SubID uint8  // only meaningful when HasSubID reports true
	Size  int    // bytes of payload left after the identifier(s)
}

// HasSubID returns whether the frame carries a sub-identifier.
func (f Frame) HasSubID() bool {
	return hasSubID(f.ID)
}

func hasSubID(id uint8) bool {
	return 40 <= id && id <= 49
}

// frameReader reads frames from an underlying byte stream.
// It owns no semantics: callers consume exactly Size bytes of
// each frame through payload, skip or skipN.
type frameReader struct {
	r   io.Reader
	buf []byte

	back bool  // whether last should be returned by the next call to next
	last Frame // last frame header read

	st *Stats
}

func newFrameReader(r io.Reader, st *Stats) *frameReader {
	if st == nil {
		st = new(Stats)
	}
	return &frameReader{
		r:   r,
		buf: make([]byte, 512),
		st:  st,
	}
}

// next reads the header of the next frame.
// next returns io.EOF when fewer than 2 bytes are left in the stream.
func (fr *frameReader) next() (Frame, error) {
	if fr.back {
		fr.back = false
		return fr.last, nil
	}

	n, err := io.ReadFull(fr.r, fr.buf[:2])
	fr.st.Bytes += int64(n)
	if err != nil {
		if xerrors.Is(err, io.EOF) || xerrors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, xerrors.Errorf("dta: could not read frame length: %w", err)
	}

	f := Frame{Len: binary.LittleEndian.Uint16(fr.buf[:2])}
	f.Size = int(f.Len)

	if f.Size < 1 {
		return f, xerrors.Errorf("dta: frame too short for its identifier (len=%d): %w", f.Len, ErrTruncated)
	}
	err = fr.read(fr.buf[:1])
	if err != nil {
		return f, xerrors.Errorf("dta: could not read frame identifier: %w", err)
	}
	f.ID = fr.buf[0]
	f.Size--

	if hasSubID(f.ID) {
		if f.Size < 1 {
			return f, xerrors.Errorf("dta: frame %d too short for its sub-identifier: %w", f.ID, ErrTruncated)
		}
		err = fr.read(fr.buf[:1])
		if err != nil {
			return f, xerrors.Errorf("dta: could not read frame %d sub-identifier: %w", f.ID, err)
		}
		f.SubID = fr.buf[0]
		f.Size--
	}

	fr.st.Frames++
	fr.last = f
	return f, nil
}

// unread pushes back the last frame header so that it is returned
// again by the next call to next.
// The payload of that frame must not have been consumed.
func (fr *frameReader) unread(f Frame) {
	fr.last = f
	fr.back = true
}

// payload reads the whole payload of f.
// The returned slice is only valid until the next read.
func (fr *frameReader) payload(f Frame) ([]byte, error) {
	if cap(fr.buf) < f.Size {
		fr.buf = make([]byte, f.Size)
	}
	p := fr.buf[:f.Size]
	err := fr.read(p)
	if err != nil {
		return nil, xerrors.Errorf("dta: could not read payload of frame %d (size=%d): %w", f.ID, f.Size, err)
	}
	return p, nil
}

// skip discards the payload of f.
func (fr *frameReader) skip(f Frame) error {
	err := fr.skipN(f.Size)
	if err != nil {
		return xerrors.Errorf("dta: could not skip payload of frame %d (size=%d): %w", f.ID, f.Size, err)
	}
	return nil
}

func (fr *frameReader) skipN(n int) error {
	if n <= 0 {
		return nil
	}
	m, err := io.CopyN(io.Discard, fr.r, int64(n))
	fr.st.Bytes += m
	if err != nil {
		if xerrors.Is(err, io.EOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

func (fr *frameReader) read(p []byte) error {
	n, err := io.ReadFull(fr.r, p)
	fr.st.Bytes += int64(n)
	if err != nil {
		if xerrors.Is(err, io.EOF) || xerrors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

// span is a bounded little-endian cursor over the payload of a frame.
// Reading past its end sets a sticky ErrTruncated error.
type span struct {
	p   []byte
	err error
}

func (s *span) len() int { return len(s.p) }

func (s *span) next(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 || n > len(s.p) {
		s.err = ErrTruncated
		s.p = nil
		return nil
	}
	v := s.p[:n:n]
	s.p = s.p[n:]
	return v
}

func (s *span) skip(n int) { _ = s.next(n) }

func (s *span) rest() []byte { return s.next(len(s.p)) }

func (s *span) u8() uint8 {
	p := s.next(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (s *span) u16() uint16 {
	p := s.next(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

func (s *span) i16() int16 {
	return int16(s.u16())
}

func (s *span) rtot() float64 {
	p := s.next(6)
	if p == nil {
		return math.NaN()
	}
	return rtotFrom(p)
}

// rtotFrom decodes a 6-byte time counter, in units of 0.25µs, into seconds.
func rtotFrom(p []byte) float64 {
	var (
		lo = uint64(binary.LittleEndian.Uint32(p[0:4]))
		hi = uint64(binary.LittleEndian.Uint16(p[4:6]))
	)
	return float64(lo+hi<<32) / 4e6
}

// ascii decodes p as ASCII text, replacing any non-ASCII byte
// with the Unicode replacement character.
func ascii(p []byte) string {
	o := make([]rune, len(p))
	for i, c := range p {
		switch {
		case c < 0x80:
			o[i] = rune(c)
		default:
			o[i] = '\uFFFD'
		}
	}
	return string(o)
}
