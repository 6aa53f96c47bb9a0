// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package logging

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const logLevelPath = "/loglevel"

// MountLogLevel adds GET and POST /loglevel to r.
//
// The level is changed with a form value, e.g. curl -d level=debug <server>/loglevel
func MountLogLevel(r chi.Router) {
	r.Get(logLevelPath, logLevelGet)
	r.Post(logLevelPath, logLevelSet)
}

func logLevelGet(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintln(w, LogLevel())
}

func logLevelSet(w http.ResponseWriter, r *http.Request) {
	prev := LogLevel()
	if err := r.ParseMultipartForm(1 << 10); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Incorrect form data", http.StatusBadRequest)
		return
	}
	level := r.FormValue("level")
	if level == "" {
		http.Error(w, "missing level", http.StatusBadRequest)
		return
	}
	if err := SetLogLevel(level); err != nil {
		http.Error(w, fmt.Sprintf("Incorrect log level %q", level), http.StatusBadRequest)
		return
	}
	if prev != LogLevel() {
		logLevelChanged(prev)
	}
	fmt.Fprintf(w, "%s -> %s\n", prev, LogLevel())
}
