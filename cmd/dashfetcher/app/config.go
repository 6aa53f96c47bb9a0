// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/pflag"

	"github.com/Dash-Industry-Forum/dashfetcher/pkg/logging"
)

const envPrefix = "DASHFETCHER_"

// ErrHelp is returned when help was requested on the command line.
var ErrHelp = pflag.ErrHelp

var usg = `%s downloads a static DASH asset and stores the MPD and all segments in an output directory.

The MPD argument is either a URL or an MPD stored by an earlier run. For a stored MPD,
the original URL is looked up in the mpdlist.json file next to it.
The -o/--outdir option provides a directory for storing the downloaded MPD and segments.
The -a/--auto option adds output subdirectories from the URL removing common prefix parts.
Options can also be set in a JSON file (--cfg) or as %sOPTION environment variables.

Run as %s [options] mpd
`

type Options struct {
	MPD         string `json:"mpd"`
	OutDir      string `json:"outdir"`
	Auto        bool   `json:"auto"`
	Force       bool   `json:"force"`
	DryRun      bool   `json:"dryrun"`
	Period      int    `json:"period"`
	MimeType    string `json:"mimetype"`
	Rep         string `json:"rep"`
	Workers     int    `json:"workers"`
	Timeout     int    `json:"timeout"`
	Inspect     bool   `json:"inspect"`
	Progress    bool   `json:"progress"`
	MetricsAddr string `json:"metricsaddr"`
	LogFormat   string `json:"logformat"`
	LogLevel    string `json:"loglevel"`
	Version     bool   `json:"version"`
}

var DefaultOptions = Options{
	OutDir:    ".",
	Period:    -1,
	Workers:   4,
	Timeout:   0,
	LogFormat: logging.LogText,
	LogLevel:  "info",
}

// RepIDs returns the selected representation ids. Nil means all.
func (o *Options) RepIDs() []string {
	if o.Rep == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(o.Rep, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// LoadConfig loads defaults, config file, command line, and finally applies environment variables.
//
// A relative outdir is made absolute with respect to cwd.
func LoadConfig(args []string, cwd string, stderr io.Writer) (*Options, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultOptions, "json"), nil); err != nil {
		return nil, err
	}
	parts := strings.Split(args[0], "/")
	name := parts[len(parts)-1]

	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.SetOutput(stderr)
	f.SortFlags = false
	f.Usage = func() {
		fmt.Fprintf(stderr, usg, name, envPrefix, name)
		fmt.Fprintln(stderr)
		f.PrintDefaults()
	}
	cfgFile := f.String("cfg", "", "path to a JSON config file")
	f.StringP("outdir", "o", k.String("outdir"), "output directory")
	f.BoolP("auto", "a", k.Bool("auto"), "automatically add output directory parts from URL")
	f.BoolP("force", "f", k.Bool("force"), "force overwrite of existing files")
	f.BoolP("dryrun", "n", k.Bool("dryrun"), "print segment descriptors instead of downloading")
	f.Int("period", k.Int("period"), "period index to fetch (-1 for all)")
	f.String("mimetype", k.String("mimetype"), "only adaptation sets whose MIME type contains this")
	f.String("rep", k.String("rep"), "comma-separated representation ids (default all)")
	f.IntP("workers", "w", k.Int("workers"), "number of parallel downloads")
	f.Int("timeout", k.Int("timeout"), "max time for the whole run in seconds (0 is no limit)")
	f.Bool("inspect", k.Bool("inspect"), "decode init segments and log track information")
	f.BoolP("progress", "p", k.Bool("progress"), "show progress bars")
	f.String("metricsaddr", k.String("metricsaddr"), "address for /metrics and /loglevel (empty is off)")
	lf := strings.Join(logging.LogFormats, ", ")
	f.String("logformat", k.String("logformat"), fmt.Sprintf("log format [%s]", lf))
	ll := strings.Join(logging.LogLevels, ", ")
	f.String("loglevel", k.String("loglevel"), fmt.Sprintf("log level [%s]", ll))
	f.BoolP("version", "v", k.Bool("version"), "print version and date")
	if err := f.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("command line parse: %w", err)
	}

	if *cfgFile != "" {
		cf := file.Provider(*cfgFile)
		if err := k.Load(cf, json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Possibly override config file with commandline parameters
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("parsing cli: %w", err)
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	overrides := map[string]any{}
	if f.NArg() > 0 {
		overrides["mpd"] = f.Arg(0)
	}
	if outDir := k.String("outdir"); !filepath.IsAbs(outDir) {
		overrides["outdir"] = filepath.Join(cwd, outDir)
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, err
		}
	}

	var o Options
	if err := k.Unmarshal("", &o); err != nil {
		return nil, err
	}
	if o.Version {
		return &o, nil
	}
	if f.NArg() > 1 || o.MPD == "" {
		f.Usage()
		return nil, fmt.Errorf("need exactly one MPD argument")
	}
	if o.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", o.Workers)
	}
	return &o, nil
}
