// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import "strings"

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet is true if a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value if present, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// Level is the MPD nesting level an element is declared at.
type Level int

const (
	LevelNone Level = iota
	LevelMPD
	LevelPeriod
	LevelAdaptationSet
	LevelRepresentation
)

func (l Level) String() string {
	switch l {
	case LevelMPD:
		return "MPD"
	case LevelPeriod:
		return "Period"
	case LevelAdaptationSet:
		return "AdaptationSet"
	case LevelRepresentation:
		return "Representation"
	default:
		return "none"
	}
}

// BaseURL is a BaseURL element value and the level it was declared at.
type BaseURL struct {
	Value string
	Level Level
}

// TimelineRun is one S element of a SegmentTimeline.
type TimelineRun struct {
	Start    Optional[uint64]
	Duration uint64
	Repeat   int
}

// URLRef is a URLType element such as Initialization or RepresentationIndex.
// An empty SourceURL refers to the representation media URL.
type URLRef struct {
	SourceURL string
	Range     string
}

// SegmentURL is one SegmentURL entry of a SegmentList.
type SegmentURL struct {
	Media      Optional[string]
	MediaRange string
	Index      Optional[string]
	IndexRange string
}

// SchemeKind tells which addressing scheme governs segment generation.
type SchemeKind int

const (
	SchemeNone SchemeKind = iota
	SchemeList
	SchemeTemplate
	SchemeBase
	SchemeDirect
)

func (k SchemeKind) String() string {
	switch k {
	case SchemeList:
		return "SegmentList"
	case SchemeTemplate:
		return "SegmentTemplate"
	case SchemeBase:
		return "SegmentBase"
	case SchemeDirect:
		return "BaseURL"
	default:
		return "none"
	}
}

// AddressingScheme is one of SegmentList, SegmentTemplate, SegmentBase or DirectURLs.
type AddressingScheme interface {
	Kind() SchemeKind
}

// SegmentList is an explicit list of segment URLs.
type SegmentList struct {
	Init               Optional[URLRef]
	BitstreamSwitching Optional[URLRef]
	URLs               []SegmentURL
}

func (SegmentList) Kind() SchemeKind { return SchemeList }

// SegmentTemplate generates segment URLs from $Identifier$ patterns.
type SegmentTemplate struct {
	Media                     string
	Index                     Optional[string]
	InitPattern               Optional[string]
	Init                      Optional[URLRef]
	BitstreamSwitchingPattern Optional[string]
	BitstreamSwitching        Optional[URLRef]
	Timeline                  Optional[[]TimelineRun]
	StartNumber               uint64
}

func (SegmentTemplate) Kind() SchemeKind { return SchemeTemplate }

// SegmentBase describes a single-segment representation addressed by byte ranges.
type SegmentBase struct {
	Init                Optional[URLRef]
	RepresentationIndex Optional[URLRef]
	IndexRange          string
}

func (SegmentBase) Kind() SchemeKind { return SchemeBase }

// DirectURLs uses the representation's BaseURLs as complete media segment references.
type DirectURLs struct{}

func (DirectURLs) Kind() SchemeKind { return SchemeDirect }

// Schemes are the addressing elements declared on one node.
// A well-formed node declares at most one of them.
type Schemes struct {
	List     Optional[SegmentList]
	Template Optional[SegmentTemplate]
	Base     Optional[SegmentBase]
}

// Node is a Period, AdaptationSet or Representation that may declare an addressing scheme.
type Node interface {
	NodeLevel() Level
	AddressingSchemes() Schemes
}

// RepresentationBase holds the attributes shared by Representation and SubRepresentation.
type RepresentationBase struct {
	Width             uint32
	Height            uint32
	FrameRate         string
	AudioSamplingRate string
	MimeType          string
	Codecs            []string
	Profiles          []string
}

// Presentation is a read-only view of a parsed static MPD.
type Presentation struct {
	Location string // where the MPD was retrieved from
	BaseURLs []BaseURL
	Periods  []*Period
}

// Period is a read-only view of an MPD Period.
type Period struct {
	ID             string
	BaseURLs       []BaseURL
	Addressing     Schemes
	AdaptationSets []*AdaptationSet
}

func (p *Period) NodeLevel() Level           { return LevelPeriod }
func (p *Period) AddressingSchemes() Schemes { return p.Addressing }

// AdaptationSet is a read-only view of an MPD AdaptationSet.
type AdaptationSet struct {
	ID          string
	ContentType string
	RepresentationBase
	BaseURLs        []BaseURL
	Addressing      Schemes
	Representations []*Representation
}

func (a *AdaptationSet) NodeLevel() Level           { return LevelAdaptationSet }
func (a *AdaptationSet) AddressingSchemes() Schemes { return a.Addressing }

// ContainsMimeType is true if the adaptation set MIME type, or that of any of
// its representations, contains s.
func (a *AdaptationSet) ContainsMimeType(s string) bool {
	if a.MimeType != "" && strings.Contains(a.MimeType, s) {
		return true
	}
	for _, rep := range a.Representations {
		if rep.MimeType != "" && strings.Contains(rep.MimeType, s) {
			return true
		}
	}
	return false
}

// Representation is a read-only view of an MPD Representation.
type Representation struct {
	ID        string
	Bandwidth uint64
	RepresentationBase
	BaseURLs           []BaseURL
	Addressing         Schemes
	SubRepresentations []SubRepresentation
}

func (r *Representation) NodeLevel() Level           { return LevelRepresentation }
func (r *Representation) AddressingSchemes() Schemes { return r.Addressing }

// SubRepresentation carries metadata only. It has no addressing or BaseURLs.
type SubRepresentation struct {
	RepresentationBase
}

// Find returns the period, adaptation set and representation with the given indices and id.
func (p *Presentation) Find(periodIdx, asIdx int, repID string) (*Period, *AdaptationSet, *Representation, bool) {
	if periodIdx < 0 || periodIdx >= len(p.Periods) {
		return nil, nil, nil, false
	}
	period := p.Periods[periodIdx]
	if asIdx < 0 || asIdx >= len(period.AdaptationSets) {
		return nil, nil, nil, false
	}
	as := period.AdaptationSets[asIdx]
	for _, rep := range as.Representations {
		if rep.ID == repID {
			return period, as, rep, true
		}
	}
	return nil, nil, nil, false
}
