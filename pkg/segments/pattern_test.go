// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	full := templateVars{repID: "v1", bandwidth: 500000, number: Some[uint64](7), time: Some[uint64](4000)}
	cases := []struct {
		pattern string
		vars    templateVars
		want    string
	}{
		{"$RepresentationID$/init.mp4", full, "v1/init.mp4"},
		{"$RepresentationID$_$Bandwidth$/$Time$.m4s", full, "v1_500000/4000.m4s"},
		{"seg-$Number%05d$.m4s", full, "seg-00007.m4s"},
		{"seg-$Number%d$.m4s", full, "seg-7.m4s"},
		{"t$Time%08d$.m4s", full, "t00004000.m4s"},
		{"price$$tag-$Number$", full, "price$tag-7"},
		{"plain.mp4", templateVars{}, "plain.mp4"},
	}
	for _, c := range cases {
		got, err := substitute(c.pattern, c.vars)
		require.NoError(t, err, c.pattern)
		require.Equal(t, c.want, got)
	}
}

func TestSubstituteFailures(t *testing.T) {
	initVars := templateVars{repID: "v1", bandwidth: 1000}
	cases := []struct {
		desc    string
		pattern string
		vars    templateVars
		ident   string
	}{
		{"empty", "", initVars, ""},
		{"unterminated", "seg-$Number.m4s", initVars, ""},
		{"unknown identifier", "$SubNumber$.m4s", initVars, "SubNumber"},
		{"time not available", "$Time$.mp4", initVars, "Time"},
		{"number not available", "$Number$.mp4", initVars, "Number"},
		{"missing id", "$RepresentationID$.mp4", templateVars{}, "RepresentationID"},
		{"format on id", "$RepresentationID%02d$.mp4", initVars, "RepresentationID%02d"},
		{"bad format", "$Bandwidth%x$.mp4", initVars, "Bandwidth%x"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := substitute(c.pattern, c.vars)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrPatternSubstitution))
			var pErr *PatternError
			require.True(t, errors.As(err, &pErr))
			require.Equal(t, c.ident, pErr.Identifier)
			require.Equal(t, c.pattern, pErr.Pattern)
		})
	}
}
