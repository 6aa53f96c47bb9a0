// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Dash-Industry-Forum/dashfetcher/internal"
	"github.com/Dash-Industry-Forum/dashfetcher/pkg/download"
	"github.com/Dash-Industry-Forum/dashfetcher/pkg/segments"
)

type counts struct {
	nrDownloaded int
	nrExisting   int
	nrErrors     int
}

func (c counts) total() int {
	return c.nrDownloaded + c.nrExisting + c.nrErrors
}

// tally counts terminal transfer states from all workers.
type tally struct {
	mu  sync.Mutex
	cnt counts
}

func (t *tally) Done(r download.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case r.Skipped:
		t.cnt.nrExisting++
	case r.State == download.StateCompleted:
		t.cnt.nrDownloaded++
	default:
		t.cnt.nrErrors++
	}
}

func (t *tally) snapshot() counts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cnt
}

// job is the resolved segment list of one representation.
type job struct {
	name string
	res  *segments.Result
}

// Fetch downloads (or lists with DryRun) the segments of the selected representations.
func Fetch(ctx context.Context, o *Options, stdout io.Writer) error {
	_, err := fetch(ctx, o, stdout)
	return err
}

// fetch returns the transfer counts of the segments. The MPD is not counted.
func fetch(ctx context.Context, o *Options, stdout io.Writer) (counts, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.Timeout)*time.Second)
		defer cancel()
	}
	if err := os.MkdirAll(o.OutDir, 0755); err != nil {
		return counts{}, fmt.Errorf("createDir: %w", err)
	}
	mpdPath, location, err := fetchMPD(ctx, o)
	if err != nil {
		return counts{}, err
	}
	pres, err := segments.ReadPresentationFile(mpdPath, location)
	if err != nil {
		return counts{}, err
	}
	jobs, nrResolveErrors, err := resolveAll(pres, o)
	if err != nil {
		return counts{}, err
	}
	if o.DryRun {
		printJobs(stdout, jobs)
		return counts{}, resolveErr(nrResolveErrors)
	}

	reg := prometheus.NewRegistry()
	metrics := download.NewMetrics(reg)
	if o.MetricsAddr != "" {
		srv, err := startMetricsServer(o.MetricsAddr, reg)
		if err != nil {
			return counts{}, err
		}
		defer shutdown(srv)
	}
	t := &tally{}
	dl := download.NewHTTPDownloader(o.OutDir, download.BaseDir(location),
		download.WithForce(o.Force),
		download.WithInspect(o.Inspect),
		download.WithObservers(t, metrics))
	var progressOut io.Writer
	if o.Progress {
		progressOut = os.Stderr
	}
	downloadAll(ctx, dl, jobs, o.Workers, download.NewProgress(ctx, progressOut))

	cnt := t.snapshot()
	slog.Info("download results", "nrFiles", cnt.total(),
		"nrExisting", cnt.nrExisting,
		"nrDownloaded", cnt.nrDownloaded,
		"nrErrors", cnt.nrErrors)
	if err := ctx.Err(); err != nil {
		return cnt, err
	}
	if cnt.nrErrors > 0 {
		return cnt, fmt.Errorf("%d transfers failed", cnt.nrErrors)
	}
	return cnt, resolveErr(nrResolveErrors)
}

func resolveErr(nr int) error {
	if nr > 0 {
		return fmt.Errorf("%d representations could not be resolved", nr)
	}
	return nil
}

// fetchMPD returns the local MPD path and the URL it was retrieved from.
func fetchMPD(ctx context.Context, o *Options) (mpdPath, location string, err error) {
	if !segments.IsAbsoluteURL(o.MPD) {
		mpdPath, err = filepath.Abs(o.MPD)
		if err != nil {
			return "", "", err
		}
		dir, name := filepath.Split(mpdPath)
		md := internal.ReadMPDData(os.DirFS(dir), name)
		if md.OrigURI == "" {
			slog.Warn("no original URL recorded for MPD. Relative URLs cannot be resolved",
				"path", mpdPath, "list", internal.MPDListFile)
		}
		return mpdPath, md.OrigURI, nil
	}
	u, err := url.Parse(o.MPD)
	if err != nil {
		return "", "", fmt.Errorf("parse MPD URL: %w", err)
	}
	mpdName := path.Base(u.Path)
	if mpdName == "/" || mpdName == "." {
		return "", "", fmt.Errorf("no MPD name in %s", o.MPD)
	}
	dl := download.NewHTTPDownloader(o.OutDir, download.BaseDir(o.MPD), download.WithForce(o.Force))
	r := dl.Download(ctx, segments.SegmentDescriptor{Role: segments.RoleMedia, URL: o.MPD})
	if r.Err != nil {
		return "", "", fmt.Errorf("download %s: %w", o.MPD, r.Err)
	}
	if !r.Skipped {
		if err := internal.WriteMPDData(filepath.Dir(r.Path), filepath.Base(r.Path), o.MPD); err != nil {
			slog.Warn("could not write mpdlist file", "error", err)
		}
	}
	return r.Path, o.MPD, nil
}

// resolveAll resolves the representations selected by o.
func resolveAll(pres *segments.Presentation, o *Options) (jobs []job, nrErrors int, err error) {
	if o.Period >= len(pres.Periods) {
		return nil, 0, fmt.Errorf("period %d not in MPD with %d periods", o.Period, len(pres.Periods))
	}
	ids := o.RepIDs()
	for pi, period := range pres.Periods {
		if o.Period >= 0 && pi != o.Period {
			continue
		}
		for ai, as := range period.AdaptationSets {
			if o.MimeType != "" && !as.ContainsMimeType(o.MimeType) {
				continue
			}
			for _, rep := range as.Representations {
				if ids != nil && !slices.Contains(ids, rep.ID) {
					continue
				}
				name := fmt.Sprintf("%d/%d/%s", pi, ai, rep.ID)
				res, err := segments.Resolve(pres, period, as, rep)
				if err != nil {
					slog.Error("resolve representation", "rep", name, "err", err)
					nrErrors++
					continue
				}
				for _, w := range res.Warnings {
					slog.Warn("segment skipped", "rep", name, "role", w.Role.String(),
						"position", w.Position, "err", w.Err)
				}
				if res.Scheme == segments.SchemeNone {
					slog.Warn("no addressing for representation", "rep", name)
					continue
				}
				slog.Debug("resolved", "rep", name, "scheme", res.Scheme.String(),
					"owner", res.Owner.String(), "nrSegments", len(res.Segments))
				jobs = append(jobs, job{name: name, res: res})
			}
		}
	}
	if len(jobs) == 0 && nrErrors == 0 {
		return nil, 0, fmt.Errorf("no representation matches the selection")
	}
	return jobs, nrErrors, nil
}

func printJobs(w io.Writer, jobs []job) {
	for _, j := range jobs {
		fmt.Fprintf(w, "# %s %s (%s)\n", j.name, j.res.Scheme, j.res.Owner)
		for _, d := range j.res.Segments {
			fmt.Fprintln(w, d.String())
		}
	}
}

// downloadAll runs at most workers transfers in parallel.
// A failed transfer does not stop the others.
func downloadAll(ctx context.Context, dl download.Downloader, jobs []job, workers int, progress *download.Progress) {
	var g errgroup.Group
	g.SetLimit(workers)
	for _, j := range jobs {
		if len(j.res.Segments) == 0 {
			continue
		}
		bar := progress.AddBar(j.name, len(j.res.Segments))
		for _, d := range j.res.Segments {
			g.Go(func() error {
				r := dl.Download(ctx, d)
				bar.Done(r)
				if r.Err != nil {
					slog.Warn("download segment", "rep", j.name, "url", d.URL, "err", r.Err)
				}
				if r.Track != nil {
					slog.Info("init segment", "rep", j.name, "sampleEntry", r.Track.SampleEntry,
						"timescale", r.Track.Timescale, "lang", r.Track.Language,
						"encryption", r.Track.EncryptionScheme)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	progress.Wait()
}

// AutoDir adds part of MPD URL to outDir, trying to remove matching parts.
func AutoDir(rawMPDurl, outDir string) (string, error) {
	u, err := url.Parse(rawMPDurl)
	if err != nil {
		return "", err
	}

	uParts := strings.Split(u.Path, "/")
	if len(uParts) < 2 {
		return outDir, nil
	}
	uBaseParts := uParts[1 : len(uParts)-1]
	outParts := strings.Split(outDir, "/")

	// Move uBaseParts to the left and find match as far to the left as possible
	maxOutEnd := len(outParts) - 1
	minOutEnd := max(1, maxOutEnd-len(uBaseParts)+1)
	bestOutEnd := -1
	for outStart := maxOutEnd; outStart >= minOutEnd; outStart-- {
		match := true
		outRange := maxOutEnd + 1 - outStart
		if outRange > len(uBaseParts) {
			break
		}
		for i := range outRange {
			if outParts[outStart+i] != uBaseParts[i] {
				match = false
				break
			}
		}
		if match {
			bestOutEnd = outStart
		}
	}
	if bestOutEnd >= 0 {
		outParts = outParts[:bestOutEnd]
	}
	outPath := path.Join(strings.Join(outParts, "/"), strings.Join(uBaseParts, "/"))
	return outPath, nil
}
