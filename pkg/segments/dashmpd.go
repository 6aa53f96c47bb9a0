// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"fmt"
	"strconv"
	"strings"

	m "github.com/Eyevinn/dash-mpd/mpd"
)

// ReadPresentation parses MPD data. location is the URL the MPD was retrieved from.
func ReadPresentation(data []byte, location string) (*Presentation, error) {
	mpd, err := m.ReadFromString(string(data))
	if err != nil {
		return nil, fmt.Errorf("read mpd: %w", err)
	}
	return NewPresentation(mpd, location)
}

// ReadPresentationFile parses an MPD file. location is the URL the MPD was retrieved from.
func ReadPresentationFile(path, location string) (*Presentation, error) {
	mpd, err := m.ReadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mpd: %w", err)
	}
	return NewPresentation(mpd, location)
}

// NewPresentation makes a read-only view of a static MPD.
func NewPresentation(mpd *m.MPD, location string) (*Presentation, error) {
	if mpd.Type != nil && *mpd.Type == "dynamic" {
		return nil, fmt.Errorf("dynamic MPD not supported")
	}
	p := &Presentation{
		Location: location,
		BaseURLs: baseURLs(mpd.BaseURL, LevelMPD),
	}
	for _, mp := range mpd.Periods {
		p.Periods = append(p.Periods, newPeriod(mp))
	}
	return p, nil
}

func newPeriod(mp *m.Period) *Period {
	period := &Period{
		ID:         mp.Id,
		BaseURLs:   baseURLs(mp.BaseURLs, LevelPeriod),
		Addressing: schemes(mp.SegmentList, mp.SegmentTemplate, mp.SegmentBase),
	}
	for i, mas := range mp.AdaptationSets {
		as := &AdaptationSet{
			ID:                 strconv.Itoa(i),
			ContentType:        string(mas.ContentType),
			RepresentationBase: representationBase(&mas.RepresentationBaseType),
			BaseURLs:           baseURLs(mas.BaseURLs, LevelAdaptationSet),
			Addressing:         schemes(mas.SegmentList, mas.SegmentTemplate, mas.SegmentBase),
		}
		for _, mr := range mas.Representations {
			as.Representations = append(as.Representations, newRepresentation(mr))
		}
		period.AdaptationSets = append(period.AdaptationSets, as)
	}
	return period
}

func newRepresentation(mr *m.RepresentationType) *Representation {
	rep := &Representation{
		ID:                 mr.Id,
		Bandwidth:          uint64(mr.Bandwidth),
		RepresentationBase: representationBase(&mr.RepresentationBaseType),
		BaseURLs:           baseURLs(mr.BaseURLs, LevelRepresentation),
		Addressing:         schemes(mr.SegmentList, mr.SegmentTemplate, mr.SegmentBase),
	}
	for _, sr := range mr.SubRepresentations {
		rep.SubRepresentations = append(rep.SubRepresentations,
			SubRepresentation{RepresentationBase: representationBase(&sr.RepresentationBaseType)})
	}
	return rep
}

func representationBase(rb *m.RepresentationBaseType) RepresentationBase {
	return RepresentationBase{
		Width:             rb.Width,
		Height:            rb.Height,
		FrameRate:         string(rb.FrameRate),
		AudioSamplingRate: audioSamplingRate(rb.AudioSamplingRate),
		MimeType:          rb.MimeType,
		Codecs:            splitList(rb.Codecs, ","),
		Profiles:          splitList(string(rb.Profiles), ","),
	}
}

func audioSamplingRate(v *m.UIntVectorType) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func baseURLs(urls []*m.BaseURLType, level Level) []BaseURL {
	out := make([]BaseURL, 0, len(urls))
	for _, u := range urls {
		out = append(out, BaseURL{Value: strings.TrimSpace(string(u.Value)), Level: level})
	}
	return out
}

func schemes(sl *m.SegmentListType, st *m.SegmentTemplateType, sb *m.SegmentBaseType) Schemes {
	var s Schemes
	if sl != nil {
		s.List = Some(segmentList(sl))
	}
	if st != nil {
		s.Template = Some(segmentTemplate(st))
	}
	if sb != nil {
		s.Base = Some(segmentBase(sb))
	}
	return s
}

func urlRef(u *m.URLType) Optional[URLRef] {
	if u == nil {
		return None[URLRef]()
	}
	return Some(URLRef{SourceURL: string(u.SourceURL), Range: u.Range})
}

// optionalURI treats an address as declared if it has a URI or a byte range.
func optionalURI(uri, byteRange string) Optional[string] {
	if uri == "" && byteRange == "" {
		return None[string]()
	}
	return Some(uri)
}

func optionalString(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

func segmentList(sl *m.SegmentListType) SegmentList {
	l := SegmentList{
		Init:               urlRef(sl.Initialization),
		BitstreamSwitching: urlRef(sl.BitstreamSwitching),
	}
	for _, su := range sl.SegmentURL {
		mediaRange, indexRange := string(su.MediaRange), string(su.IndexRange)
		l.URLs = append(l.URLs, SegmentURL{
			Media:      optionalURI(string(su.Media), mediaRange),
			MediaRange: mediaRange,
			Index:      optionalURI(string(su.Index), indexRange),
			IndexRange: indexRange,
		})
	}
	return l
}

func segmentTemplate(st *m.SegmentTemplateType) SegmentTemplate {
	t := SegmentTemplate{
		Media:                     st.Media,
		Index:                     optionalString(st.Index),
		InitPattern:               optionalString(st.Initialization),
		Init:                      urlRef(st.SegmentBaseType.Initialization),
		BitstreamSwitchingPattern: optionalString(st.BitstreamSwitching),
		BitstreamSwitching:        urlRef(st.MultipleSegmentBaseType.BitstreamSwitching),
		StartNumber:               1,
	}
	if st.StartNumber != nil {
		t.StartNumber = uint64(*st.StartNumber)
	}
	if st.SegmentTimeline != nil {
		runs := make([]TimelineRun, 0, len(st.SegmentTimeline.S))
		for _, s := range st.SegmentTimeline.S {
			run := TimelineRun{Duration: s.D, Repeat: s.R}
			if s.T != nil {
				run.Start = Some(*s.T)
			}
			runs = append(runs, run)
		}
		t.Timeline = Some(runs)
	}
	return t
}

func segmentBase(sb *m.SegmentBaseType) SegmentBase {
	return SegmentBase{
		Init:                urlRef(sb.Initialization),
		RepresentationIndex: urlRef(sb.RepresentationIndex),
		IndexRange:          sb.IndexRange,
	}
}
