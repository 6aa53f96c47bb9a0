// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package download

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/mp4"
)

// TrackInfo is what an init segment tells about its track.
type TrackInfo struct {
	Timescale   uint32
	SampleEntry string
	Language    string
	Width       uint16
	Height      uint16
	SampleRate  uint16
	// EncryptionScheme is set for encv/enca sample entries.
	EncryptionScheme string
}

// InspectInit decodes a single-track init segment.
func InspectInit(data []byte) (TrackInfo, error) {
	var ti TrackInfo
	sr := bits.NewFixedSliceReader(data)
	f, err := mp4.DecodeFileSR(sr)
	if err != nil {
		return ti, fmt.Errorf("decode init segment: %w", err)
	}
	if f.Init == nil || f.Init.Moov == nil || f.Init.Moov.Trak == nil {
		return ti, fmt.Errorf("no init segment with track")
	}
	trak := f.Init.Moov.Trak
	if trak.Mdia == nil || trak.Mdia.Mdhd == nil {
		return ti, fmt.Errorf("no mdia or mdhd box in track")
	}
	ti.Timescale = trak.Mdia.Mdhd.Timescale
	ti.Language = trak.Mdia.Mdhd.GetLanguage()
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ti, fmt.Errorf("no minf, stbl, or stsd box in track")
	}
	stsd := trak.Mdia.Minf.Stbl.Stsd
	if len(stsd.Children) == 0 {
		return ti, fmt.Errorf("empty stsd box")
	}
	ti.SampleEntry = stsd.Children[0].Type()
	switch box := stsd.Children[0].(type) {
	case *mp4.VisualSampleEntryBox:
		ti.Width, ti.Height = box.Width, box.Height
		if box.Type() == "encv" && box.Sinf != nil && box.Sinf.Schm != nil {
			ti.EncryptionScheme = box.Sinf.Schm.SchemeType
		}
	case *mp4.AudioSampleEntryBox:
		ti.SampleRate = box.SampleRate
		if box.Type() == "enca" && box.Sinf != nil && box.Sinf.Schm != nil {
			ti.EncryptionScheme = box.Sinf.Schm.SchemeType
		}
	}
	return ti, nil
}
