// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Dash-Industry-Forum/dashfetcher/internal"
	"github.com/Dash-Industry-Forum/dashfetcher/pkg/download"
	"github.com/Dash-Industry-Forum/dashfetcher/pkg/segments"
)

// Options select the MPD and what is printed for it.
type Options struct {
	MPD      string
	MimeType string
	Segments bool
}

// ReadMPD reads an MPD from a URL or a local file.
// For a local file, the location is taken from mpdlist.json if recorded.
func ReadMPD(ctx context.Context, client *http.Client, src string) (*segments.Presentation, error) {
	if !segments.IsAbsoluteURL(src) {
		dir, name := filepath.Split(src)
		if dir == "" {
			dir = "."
		}
		md := internal.ReadMPDData(os.DirFS(dir), name)
		return segments.ReadPresentationFile(src, md.OrigURI)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: could not read %s. Code %d", download.ErrHTTPStatus, src, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return segments.ReadPresentation(data, src)
}

// Print lists the representations of the first period in adaptation sets matching o.MimeType.
func Print(w io.Writer, p *segments.Presentation, o *Options) {
	fmt.Fprintln(w, o.MPD)
	if len(p.Periods) == 0 {
		return
	}
	period := p.Periods[0]
	for i, as := range period.AdaptationSets {
		if !as.ContainsMimeType(o.MimeType) {
			continue
		}
		fmt.Fprintf(w, "Adaptation set %d\n", i)
		for _, rep := range as.Representations {
			width, height := rep.Width, rep.Height
			if width == 0 && height == 0 {
				width, height = as.Width, as.Height
			}
			fmt.Fprintf(w, "%s %d bps %dx%d\n", rep.ID, rep.Bandwidth, width, height)
			if o.Segments {
				printSegments(w, p, period, as, rep)
			}
		}
	}
}

func printSegments(w io.Writer, p *segments.Presentation, period *segments.Period,
	as *segments.AdaptationSet, rep *segments.Representation) {
	res, err := segments.Resolve(p, period, as, rep)
	if err != nil {
		fmt.Fprintf(w, "  error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  %s (%s): %d segments, %d skipped\n", res.Scheme, res.Owner,
		len(res.Segments), len(res.Warnings))
	for _, d := range res.Segments {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
