// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"bufio"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// Hardware holds the waveform acquisition parameters of a channel.
type Hardware struct {
	SampleRate   int // sampling rate, in Hz
	TriggerDelay int // pre-trigger delay, in samples
}

// Config is the acquisition setup decoded from the header of a DTA file.
//
// A Config is built once per session and is only read afterwards:
// decoders never modify it, and neither should their users.
type Config struct {
	Product   string    // product name and version
	Comment   string    // user comment or test label
	TestStart time.Time // zero if the header holds no test start time

	Characteristics       []uint8 // CHIDs recorded for each hit
	DemandCharacteristics []uint8 // CHIDs recorded for each channel of time-driven data
	DemandParams          []uint8 // parametric IDs recorded with time-driven data

	Gain      map[uint8]int // channel -> gain, in dB
	Threshold map[uint8]int // channel -> threshold, in dB
	HDT       map[uint8]int // channel -> hit definition time, in µs
	HLT       map[uint8]int // channel -> hit lockout time, in µs
	PDT       map[uint8]int // channel -> peak definition time, in µs

	SamplingInterval time.Duration // zero if not set
	DemandRate       time.Duration // zero if not set

	PartialPowerSegments int

	Hardware map[uint8]Hardware // channel -> waveform hardware
}

func newConfig() *Config {
	return &Config{
		Gain:      make(map[uint8]int),
		Threshold: make(map[uint8]int),
		HDT:       make(map[uint8]int),
		HLT:       make(map[uint8]int),
		PDT:       make(map[uint8]int),
		Hardware:  make(map[uint8]Hardware),
	}
}

// Timestamp returns the absolute time of an offset (in seconds) from the
// start of the test.
func (cfg *Config) Timestamp(rtot float64) time.Time {
	return cfg.TestStart.Add(time.Duration(rtot * float64(time.Second)))
}

// Channels returns the sorted list of channels with a waveform hardware setup.
func (cfg *Config) Channels() []uint8 {
	o := make([]uint8, 0, len(cfg.Hardware))
	for ch := range cfg.Hardware {
		o = append(o, ch)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}

// featureSize returns the size of a time-driven feature vector.
func (cfg *Config) featureSize() int {
	n := 0
	for _, id := range cfg.DemandCharacteristics {
		c, _ := Characteristic(id)
		n += c.Size(cfg.PartialPowerSegments)
	}
	return n
}

// testStartLayout is the layout of the test start time message,
// as produced by C's asctime.
const testStartLayout = "Mon Jan _2 15:04:05 2006"

// ReadConfig reads the acquisition setup from the header of the named file.
func ReadConfig(fname string) (*Config, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, xerrors.Errorf("dta: could not open %q: %w", fname, err)
	}
	defer f.Close()

	cfg, err := DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return nil, xerrors.Errorf("dta: could not read configuration from %q: %w", fname, err)
	}
	return cfg, nil
}

// DecodeConfig decodes the acquisition setup from the header of a stream.
// DecodeConfig stops after having read the header of the first data message.
func DecodeConfig(r io.Reader) (*Config, error) {
	fr := newFrameReader(r, nil)
	return decodeConfig(fr, nil)
}

type cfgDecoder struct {
	fr  *frameReader
	cfg *Config
	msg *log.Logger
}

type cfgHandler func(dec *cfgDecoder, f Frame) error

var cfgHandlers = map[uint8]cfgHandler{
	msgComment:   (*cfgDecoder).comment,
	msgContinued: (*cfgDecoder).continued,
	msgProduct:   (*cfgDecoder).product,
	msgSetup:     (*cfgDecoder).setup,
	msgTestStart: (*cfgDecoder).testStart,
	msgPartial:   (*cfgDecoder).partialPower,
}

// decodeConfig reads frames until the first data message, which is pushed
// back into fr.
func decodeConfig(fr *frameReader, msg *log.Logger) (*Config, error) {
	if msg == nil {
		msg = Options{}.logger()
	}
	dec := cfgDecoder{
		fr:  fr,
		cfg: newConfig(),
		msg: msg,
	}

	for {
		f, err := dec.fr.next()
		if err != nil {
			if xerrors.Is(err, io.EOF) {
				return dec.cfg, nil
			}
			return nil, err
		}

		if isData(f.ID) {
			dec.fr.unread(f)
			return dec.cfg, nil
		}

		h, ok := cfgHandlers[f.ID]
		if !ok {
			h = (*cfgDecoder).unknown
		}
		err = h(&dec, f)
		if err != nil {
			return nil, err
		}
	}
}

func (dec *cfgDecoder) span(f Frame) (span, error) {
	p, err := dec.fr.payload(f)
	if err != nil {
		return span{}, err
	}
	return span{p: p}, nil
}

func (dec *cfgDecoder) unknown(f Frame) error {
	dec.msg.Printf("message %d not implemented (size=%d)", f.ID, f.Size)
	dec.fr.st.Unknown++
	return dec.fr.skip(f)
}

func (dec *cfgDecoder) comment(f Frame) error {
	s, err := dec.span(f)
	if err != nil {
		return err
	}
	dec.cfg.Comment = strings.Trim(ascii(s.rest()), "\x00")
	dec.msg.Printf("user comment: %q", dec.cfg.Comment)
	return nil
}

// continued handles a continued-file marker: the time of continuation is
// skipped and the rest of the message is read as a sequence of messages.
func (dec *cfgDecoder) continued(f Frame) error {
	dec.fr.st.Continuations++
	err := dec.fr.skipN(8)
	if err != nil {
		return xerrors.Errorf("dta: could not read continuation time: %w", err)
	}
	return nil
}

func (dec *cfgDecoder) product(f Frame) error {
	s, err := dec.span(f)
	if err != nil {
		return err
	}
	s.skip(2) // version
	if s.err != nil {
		return xerrors.Errorf("dta: could not read product definition: %w", s.err)
	}
	name := s.rest()
	if len(name) < 3 {
		name = nil
	} else {
		name = name[:len(name)-3]
	}
	dec.cfg.Product = ascii(name)
	dec.msg.Printf("product: %q", dec.cfg.Product)
	return nil
}

func (dec *cfgDecoder) testStart(f Frame) error {
	s, err := dec.span(f)
	if err != nil {
		return err
	}
	txt := strings.TrimSpace(strings.Trim(ascii(s.rest()), "\x00"))
	t, err := time.ParseInLocation(testStartLayout, txt, time.Local)
	if err != nil {
		return xerrors.Errorf("dta: could not parse test start time %q (%v): %w", txt, err, ErrMalformedTimestamp)
	}
	dec.cfg.TestStart = t
	dec.msg.Printf("test start: %v", t)
	return nil
}

func (dec *cfgDecoder) partialPower(f Frame) error {
	s, err := dec.span(f)
	if err != nil {
		return err
	}
	dec.partialPowerFrom(&s)
	if s.err != nil {
		return xerrors.Errorf("dta: could not read partial power setup: %w", s.err)
	}
	return nil
}

func (dec *cfgDecoder) partialPowerFrom(s *span) {
	s.skip(1) // segment type
	n := s.u16()
	if s.err == nil {
		dec.cfg.PartialPowerSegments = int(n)
	}
}

type subHandler func(dec *cfgDecoder, s *span)

var subHandlers = map[uint8]subHandler{
	subEventDef:   (*cfgDecoder).eventDef,
	subDemandDef:  (*cfgDecoder).demandDef,
	subThreshold:  (*cfgDecoder).threshold,
	subGain:       (*cfgDecoder).gain,
	subHDT:        (*cfgDecoder).hdt,
	subHLT:        (*cfgDecoder).hlt,
	subPDT:        (*cfgDecoder).pdt,
	subSampling:   (*cfgDecoder).sampling,
	subDemandRate: (*cfgDecoder).demandRate,
	subPartial:    (*cfgDecoder).partialPowerFrom,
	subWaveform:   (*cfgDecoder).waveformHW,
}

// setup decodes the hardware setup message: a version, followed by
// sub-messages, each with its own length and identifier.
func (dec *cfgDecoder) setup(f Frame) error {
	s, err := dec.span(f)
	if err != nil {
		return err
	}
	s.skip(2) // version

	// trailing bytes too short for a sub-message header are discarded.
	for s.err == nil && s.len() >= 3 {
		n := int(s.u16())
		sub := span{p: s.next(n)}
		if s.err != nil {
			return xerrors.Errorf("dta: sub-message too long (lsub=%d, left=%d): %w", n, s.len(), s.err)
		}
		id := sub.u8()
		if sub.err != nil {
			return xerrors.Errorf("dta: could not read sub-message identifier: %w", sub.err)
		}

		h, ok := subHandlers[id]
		if !ok {
			h = unknownSub(id)
		}
		h(dec, &sub)
		if sub.err != nil {
			return xerrors.Errorf("dta: could not decode hardware setup sub-message %d: %w", id, sub.err)
		}
	}
	if s.err != nil {
		return xerrors.Errorf("dta: could not decode hardware setup: %w", s.err)
	}
	return nil
}

func unknownSub(id uint8) subHandler {
	return func(dec *cfgDecoder, s *span) {
		dec.msg.Printf("sub-message %d not implemented (size=%d)", id, s.len())
		dec.fr.st.Unknown++
	}
}

func (dec *cfgDecoder) eventDef(s *span) {
	n := int(s.u8())
	dec.cfg.Characteristics = append([]uint8(nil), s.next(n)...)
	dec.msg.Printf("event data set: %v", dec.cfg.Characteristics)
}

func (dec *cfgDecoder) demandDef(s *span) {
	n := int(s.u8())
	dec.cfg.DemandCharacteristics = append([]uint8(nil), s.next(n)...)
	n = int(s.u8())
	dec.cfg.DemandParams = append([]uint8(nil), s.next(n)...)
	dec.msg.Printf("demand data set: chids=%v pids=%v", dec.cfg.DemandCharacteristics, dec.cfg.DemandParams)
}

func (dec *cfgDecoder) threshold(s *span) {
	var (
		ch = s.u8()
		v  = s.u8()
	)
	s.skip(1) // flags
	if s.err == nil {
		dec.cfg.Threshold[ch] = int(v)
	}
}

func (dec *cfgDecoder) gain(s *span) {
	var (
		ch = s.u8()
		v  = s.u8()
	)
	if s.err == nil {
		dec.cfg.Gain[ch] = int(v)
	}
}

// chanU16 reads a channel and its 16-bit setting.
func chanU16(s *span) (uint8, int, bool) {
	var (
		ch = s.u8()
		v  = s.u16()
	)
	return ch, int(v), s.err == nil
}

func (dec *cfgDecoder) hdt(s *span) {
	if ch, v, ok := chanU16(s); ok {
		dec.cfg.HDT[ch] = 2 * v // steps of 2µs
	}
}

func (dec *cfgDecoder) hlt(s *span) {
	if ch, v, ok := chanU16(s); ok {
		dec.cfg.HLT[ch] = 2 * v // steps of 2µs
	}
}

func (dec *cfgDecoder) pdt(s *span) {
	if ch, v, ok := chanU16(s); ok {
		dec.cfg.PDT[ch] = v
	}
}

func (dec *cfgDecoder) sampling(s *span) {
	v := s.u16()
	dec.cfg.SamplingInterval = time.Duration(v) * time.Millisecond
}

func (dec *cfgDecoder) demandRate(s *span) {
	v := s.u16()
	dec.cfg.DemandRate = time.Duration(v) * time.Millisecond
}

// waveformHW decodes the per-channel waveform hardware block.
func (dec *cfgDecoder) waveformHW(s *span) {
	id := s.u8()
	if s.err != nil {
		return
	}
	if id != subWaveformHW {
		dec.msg.Printf("sub-message %d/%d not implemented (size=%d)", subWaveform, id, s.len())
		dec.fr.st.Unknown++
		return
	}

	s.skip(2) // version
	s.skip(1) // ADT
	s.skip(2) // sets
	s.skip(2) // sub-length
	ch := s.u8()
	s.skip(2) // HLK
	s.skip(2) // hits
	srate := s.u16()
	s.skip(2) // TMODE
	s.skip(2) // TSRC
	tdly := s.i16()
	s.skip(2) // MXIN
	s.skip(2) // THRD
	if s.err != nil {
		return
	}

	dec.cfg.Hardware[ch] = Hardware{
		SampleRate:   1000 * int(srate),
		TriggerDelay: int(tdly),
	}
	dec.msg.Printf("waveform hardware: ch=%d srate=%d tdly=%d", ch, 1000*int(srate), tdly)
}
