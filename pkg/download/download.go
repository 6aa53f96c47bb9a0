// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package download fetches resolved DASH segments over HTTP and stores them on disk.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dash-Industry-Forum/dashfetcher/pkg/segments"
)

// ErrHTTPStatus is returned for responses with status code 400 or above.
var ErrHTTPStatus = errors.New("bad HTTP status")

// State is the terminal state of a transfer.
type State int

const (
	StateCompleted State = iota
	StateAborted
)

func (s State) String() string {
	if s == StateCompleted {
		return "completed"
	}
	return "aborted"
}

// Report describes the outcome of one segment transfer.
type Report struct {
	Descriptor segments.SegmentDescriptor
	Path       string
	State      State
	Skipped    bool // file already existed
	Bytes      int64
	Duration   time.Duration
	StatusCode int
	Header     http.Header
	Track      *TrackInfo // set for inspected init segments
	Err        error
}

// Downloader transfers one segment.
type Downloader interface {
	Download(ctx context.Context, d segments.SegmentDescriptor) Report
}

// Observer is notified when a transfer reaches its terminal state.
type Observer interface {
	Done(r Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r Report)

func (f ObserverFunc) Done(r Report) { f(r) }

// HTTPDownloader stores segments below OutDir.
//
// Segments below RootURL (normally the MPD directory) keep their relative path.
// Others are stored under their host name.
type HTTPDownloader struct {
	Client    *http.Client
	OutDir    string
	RootURL   string
	Force     bool
	Inspect   bool
	observers []Observer
}

// Option configures an HTTPDownloader.
type Option func(*HTTPDownloader)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(h *HTTPDownloader) { h.Client = c }
}

// WithForce overwrites existing files.
func WithForce(force bool) Option {
	return func(h *HTTPDownloader) { h.Force = force }
}

// WithInspect decodes downloaded init segments and reports track information.
func WithInspect(inspect bool) Option {
	return func(h *HTTPDownloader) { h.Inspect = inspect }
}

// WithObservers adds observers called after each transfer.
func WithObservers(obs ...Observer) Option {
	return func(h *HTTPDownloader) { h.observers = append(h.observers, obs...) }
}

// NewHTTPDownloader returns a downloader storing files below outDir.
func NewHTTPDownloader(outDir, rootURL string, opts ...Option) *HTTPDownloader {
	h := &HTTPDownloader{
		Client:  http.DefaultClient,
		OutDir:  outDir,
		RootURL: rootURL,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Download fetches d and notifies all observers.
func (h *HTTPDownloader) Download(ctx context.Context, d segments.SegmentDescriptor) Report {
	r := h.download(ctx, d)
	for _, o := range h.observers {
		o.Done(r)
	}
	return r
}

func (h *HTTPDownloader) download(ctx context.Context, d segments.SegmentDescriptor) Report {
	start := time.Now()
	r := Report{Descriptor: d, State: StateAborted}
	outPath, err := h.OutputPath(d)
	if err != nil {
		r.Err = err
		return r
	}
	r.Path = outPath
	if fileExists(outPath) && !h.Force {
		slog.Info("file already exists. Skipping", "path", outPath, "url", d.URL)
		r.State = StateCompleted
		r.Skipped = true
		return r
	}
	slog.Debug("downloading", "url", d.URL, "role", d.Role.String(), "path", outPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		r.Err = err
		return r
	}
	if br, ok := d.ByteRange.Get(); ok {
		req.Header.Set("Range", br.HeaderValue())
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		r.Err = err
		r.Duration = time.Since(start)
		return r
	}
	defer resp.Body.Close()
	r.StatusCode = resp.StatusCode
	r.Header = resp.Header.Clone()
	if resp.StatusCode >= 400 {
		r.Err = fmt.Errorf("%w: could not read %s. Code %d", ErrHTTPStatus, d.URL, resp.StatusCode)
		r.Duration = time.Since(start)
		return r
	}
	var data []byte
	r.Bytes, data, err = writeFile(outPath, resp.Body, h.Inspect && d.Role == segments.RoleInitialization)
	r.Duration = time.Since(start)
	if err != nil {
		r.Err = err
		return r
	}
	r.State = StateCompleted
	if data != nil {
		ti, err := InspectInit(data)
		if err != nil {
			slog.Warn("could not inspect init segment", "path", outPath, "err", err)
		} else {
			r.Track = &ti
		}
	}
	slog.Debug("stored", "path", outPath, "bytes", r.Bytes)
	return r
}

// writeFile stores body at outPath via a temporary file. If keep is set, the data is returned.
func writeFile(outPath string, body io.Reader, keep bool) (int64, []byte, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, nil, err
	}
	tmpPath := outPath + ".part"
	ofh, err := os.Create(tmpPath)
	if err != nil {
		return 0, nil, err
	}
	var buf *bytes.Buffer
	w := io.Writer(ofh)
	if keep {
		buf = &bytes.Buffer{}
		w = io.MultiWriter(ofh, buf)
	}
	n, err := io.Copy(w, body)
	closeErr := ofh.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, nil, err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return n, nil, err
	}
	if buf != nil {
		return n, buf.Bytes(), nil
	}
	return n, nil, nil
}

// OutputPath returns where a segment is stored.
func (h *HTTPDownloader) OutputPath(d segments.SegmentDescriptor) (string, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("parse segment URL: %w", err)
	}
	rel := strings.TrimPrefix(u.Path, "/")
	if h.RootURL != "" && strings.HasPrefix(d.URL, h.RootURL) {
		rel = strings.TrimPrefix(d.URL, h.RootURL)
		if idx := strings.IndexAny(rel, "?#"); idx >= 0 {
			rel = rel[:idx]
		}
	} else if u.Host != "" {
		rel = path.Join(u.Host, rel)
	}
	rel = path.Clean("/" + rel)[1:]
	if rel == "" || strings.HasSuffix(d.URL, "/") {
		rel = path.Join(rel, "index")
	}
	if br, ok := d.ByteRange.Get(); ok {
		rel = fmt.Sprintf("%s_%d-%d", rel, br.Offset, br.Offset+br.Length-1)
	}
	return filepath.Join(h.OutDir, filepath.FromSlash(rel)), nil
}

func fileExists(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return true
}

// BaseDir returns the URL up to and including the last slash.
func BaseDir(u string) string {
	idx := strings.LastIndex(u, "/")
	if idx == -1 {
		return ""
	}
	return u[:idx+1]
}
