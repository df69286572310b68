// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dta

import (
	"encoding/binary"
	"io"
	"log"

	"golang.org/x/xerrors"
)

// Decoder decodes events from the data part of a DTA stream.
//
// A Decoder is a forward-only iterator: Next returns io.EOF once the
// stream is exhausted, and any decoding error is returned again by all
// subsequent calls.
type Decoder struct {
	fr   *frameReader
	cfg  *Config
	sch  *Schema
	opts Options
	msg  *log.Logger

	fvlen int // size of a time-driven feature vector
	err   error
}

// NewDecoder reads the header of the stream r and returns a decoder
// for the events that follow it.
func NewDecoder(r io.Reader, opts Options) (*Decoder, error) {
	var (
		msg = opts.logger()
		fr  = newFrameReader(r, nil)
	)
	cfg, err := decodeConfig(fr, msg)
	if err != nil {
		return nil, xerrors.Errorf("dta: could not decode header: %w", err)
	}
	return newDecoder(fr, cfg, new(Schema), opts, msg), nil
}

func newDecoder(fr *frameReader, cfg *Config, sch *Schema, opts Options, msg *log.Logger) *Decoder {
	return &Decoder{
		fr:    fr,
		cfg:   cfg,
		sch:   sch,
		opts:  opts,
		msg:   msg,
		fvlen: cfg.featureSize(),
	}
}

// Config returns the acquisition setup of the stream.
func (dec *Decoder) Config() *Config { return dec.cfg }

// Schema returns a snapshot of the orderings discovered so far.
func (dec *Decoder) Schema() Schema { return dec.sch.clone() }

// Stats returns the decoding counters.
func (dec *Decoder) Stats() Stats { return *dec.fr.st }

type dataHandler func(dec *Decoder, f Frame) (Event, error)

var dataHandlers = map[uint8]dataHandler{
	msgHit:        (*Decoder).hit,
	msgTimeDriven: (*Decoder).timeDriven,
	msgUserForced: (*Decoder).timeDriven,
	msgContinued:  (*Decoder).continued,
	msgResume:     (*Decoder).control,
	msgStop:       (*Decoder).control,
	msgPause:      (*Decoder).control,
	msgWaveform:   (*Decoder).waveform,
}

// Next returns the next event of the stream.
func (dec *Decoder) Next() (Event, error) {
	if dec.err != nil {
		return nil, dec.err
	}

	for {
		f, err := dec.fr.next()
		if err != nil {
			dec.err = err
			return nil, err
		}

		h, ok := dataHandlers[f.ID]
		if !ok {
			h = (*Decoder).unknown
		}
		evt, err := h(dec, f)
		if err != nil {
			dec.err = err
			return nil, err
		}
		if evt != nil {
			return evt, nil
		}
	}
}

func (dec *Decoder) span(f Frame) (span, error) {
	p, err := dec.fr.payload(f)
	if err != nil {
		return span{}, err
	}
	return span{p: p}, nil
}

func (dec *Decoder) unknown(f Frame) (Event, error) {
	dec.msg.Printf("message %d not implemented (size=%d)", f.ID, f.Size)
	dec.fr.st.Unknown++
	return nil, dec.fr.skip(f)
}

func (dec *Decoder) skip(f Frame) (Event, error) {
	dec.fr.st.Skipped++
	return nil, dec.fr.skip(f)
}

// continued handles a continued-file marker: the time of continuation is
// skipped and the rest of the message is read as a sequence of messages.
func (dec *Decoder) continued(f Frame) (Event, error) {
	dec.msg.Printf("continued file")
	dec.fr.st.Continuations++
	err := dec.fr.skipN(8)
	if err != nil {
		return nil, xerrors.Errorf("dta: could not read continuation time: %w", err)
	}
	return nil, nil
}

func (dec *Decoder) control(f Frame) (Event, error) {
	s, err := dec.span(f)
	if err != nil {
		return nil, err
	}
	rtot := s.rtot()
	if s.err != nil {
		return nil, xerrors.Errorf("dta: could not decode test control message %d: %w", f.ID, s.err)
	}
	dec.fr.st.Controls++

	switch f.ID {
	case msgResume:
		dec.msg.Printf("%.7f resume test or start of test", rtot)
	case msgStop:
		dec.msg.Printf("%.7f stop the test", rtot)
	case msgPause:
		dec.msg.Printf("%.7f pause the test", rtot)
	}
	return nil, nil
}

// hit decodes an AE hit: time, channel, the characteristics declared in
// the header and trailing parametric (PID, value) pairs.
func (dec *Decoder) hit(f Frame) (Event, error) {
	s, err := dec.span(f)
	if err != nil {
		return nil, err
	}

	hit := &Hit{
		RTOT:    s.rtot(),
		Channel: s.u8(),
		Values:  make([]Value, 0, len(dec.cfg.Characteristics)),
	}
	for _, id := range dec.cfg.Characteristics {
		c, _ := Characteristic(id)
		hit.Values = append(hit.Values, c.Decode(s.next(c.Size(dec.cfg.PartialPowerSegments))))
	}

	// parametric pairs are followed by an undocumented 2-byte trailer.
	var ps params
	for s.err == nil && s.len() >= 5 {
		var (
			pid = s.u8()
			val = s.u16()
		)
		ps.set(pid, val)
	}
	if s.err != nil {
		return nil, xerrors.Errorf("dta: could not decode hit: %w", s.err)
	}

	if len(ps.ids) > 0 {
		dec.sch.HitParams.fix(ps.ids)
	}
	hit.Params = ps.values(dec.sch.HitParams.keys)

	dec.fr.st.Hits++
	return hit, nil
}

// timeDriven decodes a time-driven or user-forced sample: time, parametric
// (PID, value) pairs and one feature vector per channel.
func (dec *Decoder) timeDriven(f Frame) (Event, error) {
	if !dec.opts.IncludeTimeDriven {
		return dec.skip(f)
	}

	s, err := dec.span(f)
	if err != nil {
		return nil, err
	}

	td := &TimeDriven{
		ID:   f.ID,
		RTOT: s.rtot(),
	}

	var ps params
	for range dec.cfg.DemandParams {
		if s.err != nil || s.len() < 3 {
			break
		}
		var (
			pid = s.u8()
			val = s.u16()
		)
		ps.set(pid, val)
	}

	var (
		cids  []uint8 // in order of appearance
		chans = make(map[uint8]features)
	)
	for s.err == nil && dec.fvlen > 0 && s.len() >= 1+dec.fvlen {
		cid := s.u8()
		fv := dec.features(s.next(dec.fvlen))
		if _, dup := chans[cid]; !dup {
			cids = append(cids, cid)
		}
		chans[cid] = fv
	}
	if s.err != nil {
		return nil, xerrors.Errorf("dta: could not decode time-driven data: %w", s.err)
	}

	dec.sch.TDParams.fix(ps.ids)
	dec.sch.TDChannels.fix(sortedIDs(cids))
	if len(cids) > 0 {
		dec.sch.TDFeatures.fix(chans[cids[0]].keys)
	}

	td.Params = ps.values(dec.sch.TDParams.keys)
	td.Features = make([]Value, 0, len(dec.sch.TDChannels.keys)*len(dec.sch.TDFeatures.keys))
	for _, cid := range dec.sch.TDChannels.keys {
		fv := chans[cid]
		for _, key := range dec.sch.TDFeatures.keys {
			td.Features = append(td.Features, fv.vals[key])
		}
	}

	dec.fr.st.TimeDriven++
	return td, nil
}

// features decodes a time-driven feature vector.
func (dec *Decoder) features(p []byte) features {
	var (
		fv  features
		beg = 0
	)
	for _, id := range dec.cfg.DemandCharacteristics {
		c, _ := Characteristic(id)
		end := beg + c.Size(dec.cfg.PartialPowerSegments)
		fv.set(c.Name, c.Decode(p[beg:end]))
		beg = end
	}
	return fv
}

// waveform decodes a digitized AE waveform.
func (dec *Decoder) waveform(f Frame) (Event, error) {
	if dec.opts.SkipWaveforms {
		return dec.skip(f)
	}

	s, err := dec.span(f)
	if err != nil {
		return nil, err
	}

	s.skip(1) // sub-id
	wfm := &Waveform{
		RTOT:    s.rtot(),
		Channel: s.u8(),
	}
	s.skip(1) // ALB
	raw := s.next(2 * (s.len() / 2))
	if s.err != nil {
		return nil, xerrors.Errorf("dta: could not decode waveform: %w", s.err)
	}

	gain, ok := dec.cfg.Gain[wfm.Channel]
	if !ok {
		dec.msg.Printf("no gain for channel %d, assuming 0 dB", wfm.Channel)
	}
	hw, ok := dec.cfg.Hardware[wfm.Channel]
	if !ok {
		dec.msg.Printf("no waveform hardware setup for channel %d", wfm.Channel)
	}
	wfm.SampleRate = hw.SampleRate
	wfm.TriggerDelay = hw.TriggerDelay

	wfm.Raw = make([]int16, len(raw)/2)
	for i := range wfm.Raw {
		wfm.Raw[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	wfm.Samples = Calibrate(wfm.Raw, float64(gain))

	dec.fr.st.Waveforms++
	return wfm, nil
}
