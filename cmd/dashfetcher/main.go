// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dash-Industry-Forum/dashfetcher/cmd/dashfetcher/app"
	"github.com/Dash-Industry-Forum/dashfetcher/internal"
	"github.com/Dash-Industry-Forum/dashfetcher/pkg/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	o, err := app.LoadConfig(os.Args, cwd, os.Stderr)
	if err != nil {
		if errors.Is(err, app.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	if o.Version {
		internal.PrintVersion(os.Stdout, "dashfetcher")
		return 0
	}
	if err := logging.InitSlog(o.LogLevel, o.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	if o.Auto {
		o.OutDir, err = app.AutoDir(o.MPD, o.OutDir)
		if err != nil {
			slog.Error("auto output dir", "err", err)
			return 1
		}
		slog.Info("automatic output dir for MPD", "outdir", o.OutDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Fetch(ctx, o, os.Stdout); err != nil {
		slog.Error("fetch", "err", err)
		return 1
	}
	return 0
}
