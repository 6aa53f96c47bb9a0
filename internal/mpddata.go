// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package internal

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

const (
	MPDListFile = "mpdlist.json"
)

// MPDData stores mpd name to original URI relation.
type MPDData struct {
	Name    string `json:"name"`
	OrigURI string `json:"originURI"`
}

// WriteMPDData records where the MPD stored as name in dirPath was fetched from.
// An existing entry for name is replaced.
func WriteMPDData(dirPath string, name, uri string) error {
	filePath := filepath.Join(dirPath, MPDListFile)
	var mpds []MPDData
	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &mpds); err != nil {
			return err
		}
	case !os.IsNotExist(err):
		return err
	}
	replaced := false
	for i := range mpds {
		if mpds[i].Name == name {
			mpds[i].OrigURI = uri
			replaced = true
		}
	}
	if !replaced {
		mpds = append(mpds, MPDData{name, uri})
	}
	outData, err := json.MarshalIndent(mpds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, outData, 0644)
}

// ReadMPDData for MPD from file on disk.
// OrigURI is empty if there is no record.
func ReadMPDData(vodFS fs.FS, mpdPath string) MPDData {
	assetPath, mpdName := path.Split(mpdPath)
	if assetPath != "" {
		assetPath = assetPath[:len(assetPath)-1]
	}
	md := MPDData{Name: mpdName}
	mpdListPath := path.Join(assetPath, MPDListFile)
	data, err := fs.ReadFile(vodFS, mpdListPath)
	if err != nil {
		return md
	}
	var mds []MPDData
	err = json.Unmarshal(data, &mds)
	if err != nil {
		return md
	}
	for _, m := range mds {
		if m.Name == mpdName {
			return m
		}
	}
	return md
}
