// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dash-Industry-Forum/dashfetcher/pkg/segments"
	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/stretchr/testify/require"
)

func wvttInit(t *testing.T, lang string, timescale uint32) []byte {
	t.Helper()
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "wvtt", lang)
	require.NoError(t, init.Moov.Trak.SetWvttDescriptor("WEBVTT"))
	sw := bits.NewFixedSliceWriter(int(init.Size()))
	require.NoError(t, init.EncodeSW(sw))
	return sw.Bytes()
}

func TestInspectInit(t *testing.T) {
	ti, err := InspectInit(wvttInit(t, "swe", 1000))
	require.NoError(t, err)
	require.Equal(t, uint32(1000), ti.Timescale)
	require.Equal(t, "wvtt", ti.SampleEntry)
	require.Equal(t, "swe", ti.Language)
	require.Empty(t, ti.EncryptionScheme)

	_, err = InspectInit([]byte("not an mp4 file"))
	require.Error(t, err)
}

func TestDownloadInspectsInit(t *testing.T) {
	data := wvttInit(t, "eng", 1000)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "init.mp4", time.Time{}, bytes.NewReader(data))
	}))
	defer ts.Close()
	d := NewHTTPDownloader(t.TempDir(), ts.URL+"/", WithInspect(true))
	r := d.Download(context.Background(), segments.SegmentDescriptor{
		Role: segments.RoleInitialization, URL: ts.URL + "/sub/init.mp4"})
	require.NoError(t, r.Err)
	require.NotNil(t, r.Track)
	require.Equal(t, "wvtt", r.Track.SampleEntry)

	r = d.Download(context.Background(), segments.SegmentDescriptor{
		Role: segments.RoleMedia, URL: ts.URL + "/sub/1.m4s"})
	require.NoError(t, r.Err)
	require.Nil(t, r.Track)
}
