// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func media(u string) SegmentDescriptor { return SegmentDescriptor{Role: RoleMedia, URL: u} }
func index(u string) SegmentDescriptor { return SegmentDescriptor{Role: RoleIndex, URL: u} }
func initSeg(u string) SegmentDescriptor {
	return SegmentDescriptor{Role: RoleInitialization, URL: u}
}

func withRange(d SegmentDescriptor, offset, length uint64) SegmentDescriptor {
	d.ByteRange = Some(ByteRange{Offset: offset, Length: length})
	return d
}

// single builds a presentation with one period, adaptation set and representation.
func single(location string, rep *Representation) (*Presentation, *Period, *AdaptationSet) {
	as := &AdaptationSet{ID: "0", Representations: []*Representation{rep}}
	period := &Period{AdaptationSets: []*AdaptationSet{as}}
	return &Presentation{Location: location, Periods: []*Period{period}}, period, as
}

// cmpDescriptors compares descriptor sequences including unexported Optional fields.
var cmpDescriptors = cmp.AllowUnexported(Optional[ByteRange]{})

func requireSegments(t *testing.T, want, got []SegmentDescriptor) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpDescriptors); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSegmentList(t *testing.T) {
	rep := &Representation{ID: "a1", Addressing: Schemes{List: Some(SegmentList{
		URLs: []SegmentURL{
			{Media: Some("seg1.m4s")},
			{Media: Some("seg2.m4s"), Index: Some("seg2.sidx")},
		},
	})}}
	p, period, as := single("http://ex.com/content/manifest.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, SchemeList, res.Scheme)
	require.Equal(t, LevelRepresentation, res.Owner)
	requireSegments(t, []SegmentDescriptor{
		media("http://ex.com/content/seg1.m4s"),
		index("http://ex.com/content/seg2.sidx"),
		media("http://ex.com/content/seg2.m4s"),
	}, res.Segments)
	require.Empty(t, res.Warnings)
}

func TestResolveSegmentListHeaders(t *testing.T) {
	rep := &Representation{ID: "a1", BaseURLs: bu(LevelRepresentation, "audio/")}
	as := &AdaptationSet{
		Addressing: Schemes{List: Some(SegmentList{
			Init:               Some(URLRef{SourceURL: "init.mp4"}),
			BitstreamSwitching: Some(URLRef{SourceURL: "bss.mp4"}),
			URLs: []SegmentURL{
				{},
				{Media: Some(""), MediaRange: "100-199"},
				{Media: Some("http://other.com/abs.m4s")},
				{Media: Some("bad.m4s"), MediaRange: "200-100"},
			},
		})},
		Representations: []*Representation{rep},
	}
	period := &Period{AdaptationSets: []*AdaptationSet{as}}
	p := &Presentation{Location: "http://ex.com/m.mpd", Periods: []*Period{period}}
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, LevelAdaptationSet, res.Owner)
	requireSegments(t, []SegmentDescriptor{
		initSeg("http://ex.com/audio/init.mp4"),
		{Role: RoleBitstreamSwitching, URL: "http://ex.com/audio/bss.mp4"},
		withRange(media("http://ex.com/audio/"), 100, 100),
		media("http://other.com/abs.m4s"),
	}, res.Segments)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, RoleMedia, res.Warnings[0].Role)
	require.Equal(t, 3, res.Warnings[0].Position)
}

func TestResolveTemplateWithTimeline(t *testing.T) {
	rep := &Representation{ID: "v1", Bandwidth: 500000}
	as := &AdaptationSet{
		Addressing: Schemes{Template: Some(SegmentTemplate{
			Media:       "$RepresentationID$/t$Time$-$Number$.m4s",
			InitPattern: Some("$RepresentationID$/init-$Bandwidth$.mp4"),
			Timeline:    Some([]TimelineRun{{Start: Some[uint64](0), Duration: 4, Repeat: 2}}),
			StartNumber: 1,
		})},
		Representations: []*Representation{rep},
	}
	period := &Period{AdaptationSets: []*AdaptationSet{as}}
	p := &Presentation{Location: "https://cdn.ex.com/a/stream.mpd", Periods: []*Period{period}}
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, SchemeTemplate, res.Scheme)
	requireSegments(t, []SegmentDescriptor{
		initSeg("https://cdn.ex.com/a/v1/init-500000.mp4"),
		media("https://cdn.ex.com/a/v1/t0-1.m4s"),
		media("https://cdn.ex.com/a/v1/t4-2.m4s"),
		media("https://cdn.ex.com/a/v1/t8-3.m4s"),
	}, res.Segments)
}

func TestResolveTemplateIndexAndExplicitInit(t *testing.T) {
	rep := &Representation{ID: "v1"}
	tmpl := SegmentTemplate{
		Media:                     "$Time$.m4s",
		Index:                     Some("$Time$.sidx"),
		Init:                      Some(URLRef{SourceURL: "explicit-init.mp4", Range: "0-99"}),
		InitPattern:               Some("ignored.mp4"),
		BitstreamSwitchingPattern: Some("$RepresentationID$-bss.mp4"),
		Timeline:                  Some([]TimelineRun{{Duration: 10, Repeat: 1}}),
		StartNumber:               1,
	}
	period := &Period{Addressing: Schemes{Template: Some(tmpl)}}
	as := &AdaptationSet{Representations: []*Representation{rep}}
	period.AdaptationSets = []*AdaptationSet{as}
	p := &Presentation{BaseURLs: bu(LevelMPD, "http://ex.com/base/"), Periods: []*Period{period}}
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, LevelPeriod, res.Owner)
	requireSegments(t, []SegmentDescriptor{
		withRange(initSeg("http://ex.com/base/explicit-init.mp4"), 0, 100),
		{Role: RoleBitstreamSwitching, URL: "http://ex.com/base/v1-bss.mp4"},
		index("http://ex.com/base/0.sidx"),
		media("http://ex.com/base/0.m4s"),
		index("http://ex.com/base/10.sidx"),
		media("http://ex.com/base/10.m4s"),
	}, res.Segments)
}

func TestResolveTemplateWithoutTimeline(t *testing.T) {
	rep := &Representation{ID: "v1"}
	rep.Addressing = Schemes{Template: Some(SegmentTemplate{
		Media:       "seg-$Number%03d$.m4s",
		InitPattern: Some("init.mp4"),
		StartNumber: 5,
	})}
	p, period, as := single("http://ex.com/vod/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	requireSegments(t, []SegmentDescriptor{
		initSeg("http://ex.com/vod/init.mp4"),
		media("http://ex.com/vod/seg-005.m4s"),
	}, res.Segments)
}

func TestResolveTemplateEmptyTimeline(t *testing.T) {
	rep := &Representation{ID: "v1"}
	rep.Addressing = Schemes{Template: Some(SegmentTemplate{
		Media:       "$Time$.m4s",
		InitPattern: Some("init.mp4"),
		Timeline:    Some([]TimelineRun{}),
	})}
	p, period, as := single("http://ex.com/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	requireSegments(t, []SegmentDescriptor{initSeg("http://ex.com/init.mp4")}, res.Segments)
	require.Empty(t, res.Warnings)
}

func TestResolveTemplatePatternFailures(t *testing.T) {
	rep := &Representation{ID: "v1"}
	rep.Addressing = Schemes{Template: Some(SegmentTemplate{
		Media:       "$Time$.m4s",
		InitPattern: Some("$Time$-init.mp4"),
	})}
	p, period, as := single("http://ex.com/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Empty(t, res.Segments)
	require.Len(t, res.Warnings, 2)
	require.Equal(t, RoleInitialization, res.Warnings[0].Role)
	require.Equal(t, RoleMedia, res.Warnings[1].Role)
	for _, w := range res.Warnings {
		require.True(t, errors.Is(w.Err, ErrPatternSubstitution))
	}
}

func TestResolveSegmentBase(t *testing.T) {
	rep := &Representation{
		ID:       "1",
		BaseURLs: bu(LevelRepresentation, "video.mp4"),
		Addressing: Schemes{Base: Some(SegmentBase{
			Init:       Some(URLRef{Range: "0-799"}),
			IndexRange: "800-1999",
		})},
	}
	p, period, as := single("http://ex.com/dir/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, SchemeBase, res.Scheme)
	requireSegments(t, []SegmentDescriptor{
		withRange(initSeg("http://ex.com/dir/video.mp4"), 0, 800),
		withRange(index("http://ex.com/dir/video.mp4"), 800, 1200),
		media("http://ex.com/dir/video.mp4"),
	}, res.Segments)
}

func TestResolveSegmentBaseRepresentationIndex(t *testing.T) {
	rep := &Representation{
		ID:       "1",
		BaseURLs: bu(LevelRepresentation, "video.mp4"),
		Addressing: Schemes{Base: Some(SegmentBase{
			RepresentationIndex: Some(URLRef{SourceURL: "video.sidx"}),
			IndexRange:          "800-1999",
		})},
	}
	p, period, as := single("http://ex.com/dir/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	requireSegments(t, []SegmentDescriptor{
		index("http://ex.com/dir/video.sidx"),
		media("http://ex.com/dir/video.mp4"),
	}, res.Segments)
}

func TestResolveBaseURLFallback(t *testing.T) {
	rep := &Representation{ID: "2", BaseURLs: bu(LevelRepresentation, "http://mirror1.com/a.mp4", "b.mp4")}
	p, period, as := single("http://ex.com/dir/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, SchemeDirect, res.Scheme)
	requireSegments(t, []SegmentDescriptor{
		media("http://mirror1.com/a.mp4"),
		media("http://ex.com/dir/b.mp4"),
	}, res.Segments)
}

func TestResolveNothing(t *testing.T) {
	rep := &Representation{ID: "meta"}
	p, period, as := single("http://ex.com/x.mpd", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	require.Equal(t, SchemeNone, res.Scheme)
	require.Empty(t, res.Segments)
}

func TestResolveUnresolvableBaseURL(t *testing.T) {
	rep := &Representation{ID: "v1"}
	rep.Addressing = Schemes{Template: Some(SegmentTemplate{Media: "$Number$.m4s", StartNumber: 1})}
	p, period, as := single("", rep)
	_, err := Resolve(p, period, as, rep)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnresolvableBaseURL))
	var rErr *ResolveError
	require.True(t, errors.As(err, &rErr))
	require.Equal(t, "v1", rErr.RepresentationID)
}

func TestResolveRelativeOnlyBase(t *testing.T) {
	cases := []struct {
		desc       string
		location   string
		addressing Schemes
	}{
		{"list", "", Schemes{List: Some(SegmentList{URLs: []SegmentURL{{Media: Some("s.m4s")}}})}},
		{"template", "", Schemes{Template: Some(SegmentTemplate{Media: "$Number$.m4s", StartNumber: 1})}},
		{"direct", "", Schemes{}},
		{"relative location", "content/manifest.mpd",
			Schemes{List: Some(SegmentList{URLs: []SegmentURL{{Media: Some("s.m4s")}}})}},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			rep := &Representation{ID: "v1", BaseURLs: []BaseURL{{Value: "rel/", Level: LevelRepresentation}},
				Addressing: c.addressing}
			p, period, as := single(c.location, rep)
			res, err := Resolve(p, period, as, rep)
			require.ErrorIs(t, err, ErrUnresolvableBaseURL)
			require.Nil(t, res)
		})
	}
}

func TestResolveAbsoluteWithoutBase(t *testing.T) {
	rep := &Representation{ID: "v1", Addressing: Schemes{List: Some(SegmentList{
		URLs: []SegmentURL{{Media: Some("https://ex.com/s1.m4s")}},
	})}}
	p, period, as := single("", rep)
	res, err := Resolve(p, period, as, rep)
	require.NoError(t, err)
	requireSegments(t, []SegmentDescriptor{media("https://ex.com/s1.m4s")}, res.Segments)
}

func TestResolveIsIdempotent(t *testing.T) {
	p, err := ReadPresentationFile("testdata/timeline.mpd", "http://origin.example.com/x/timeline.mpd")
	require.NoError(t, err)
	for _, as := range p.Periods[0].AdaptationSets {
		for _, rep := range as.Representations {
			first, err := Resolve(p, p.Periods[0], as, rep)
			require.NoError(t, err)
			second, err := Resolve(p, p.Periods[0], as, rep)
			require.NoError(t, err)
			requireSegments(t, first.Segments, second.Segments)
		}
	}
}

func TestParseByteRange(t *testing.T) {
	br, err := ParseByteRange("100-199")
	require.NoError(t, err)
	require.Equal(t, ByteRange{Offset: 100, Length: 100}, br)
	require.Equal(t, "bytes=100-199", br.HeaderValue())
	for _, bad := range []string{"", "100", "a-b", "10-", "20-10"} {
		_, err := ParseByteRange(bad)
		require.Error(t, err, bad)
	}
}
