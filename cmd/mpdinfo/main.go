// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/Dash-Industry-Forum/dashfetcher/cmd/mpdinfo/app"
	"github.com/Dash-Industry-Forum/dashfetcher/internal"
	"github.com/Dash-Industry-Forum/dashfetcher/pkg/logging"
)

var usg = `%s prints the representations of the first period of a static MPD.

Only adaptation sets with a MIME type containing --mimetype are listed.
With --segments, the resolved segment addresses are listed as well.

Run as %s [options] mpd
`

func parseOptions() *app.Options {
	parts := strings.Split(os.Args[0], "/")
	name := parts[len(parts)-1]
	o := app.Options{}
	flag.StringVarP(&o.MimeType, "mimetype", "m", "video", "MIME type substring of adaptation sets to list")
	flag.BoolVarP(&o.Segments, "segments", "s", false, "list resolved segments")
	version := flag.BoolP("version", "v", false, "print version and date")
	flag.CommandLine.SortFlags = false
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, usg, name, name)
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		internal.PrintVersion(os.Stdout, name)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	o.MPD = flag.Arg(0)
	return &o
}

func main() {
	os.Exit(run())
}

func run() int {
	o := parseOptions()
	if err := logging.InitSlog("WARN", logging.LogText); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p, err := app.ReadMPD(ctx, http.DefaultClient, o.MPD)
	if err != nil {
		slog.Error("Failed to read MPD", "mpd", o.MPD, "err", err)
		return 1
	}
	app.Print(os.Stdout, p, o)
	return 0
}
