// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"fmt"
	"net/url"
	"strings"
)

// IsAbsoluteURL reports if s starts with "http:" or "https:".
// Other schemes are treated as relative references.
func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http:") || strings.HasPrefix(s, "https:")
}

// BaseURLChain returns the base URL candidates for an adaptation set, outermost first.
//
// The first BaseURL at MPD, Period and AdaptationSet level is collected.
// The MPD retrieval location is prepended if the result is empty or does not
// start with an absolute URL. Representation BaseURLs are not part of the chain.
func BaseURLChain(p *Presentation, period *Period, as *AdaptationSet) []string {
	var levels [][]BaseURL
	if p != nil {
		levels = append(levels, p.BaseURLs)
	}
	if period != nil {
		levels = append(levels, period.BaseURLs)
	}
	if as != nil {
		levels = append(levels, as.BaseURLs)
	}
	chain := make([]string, 0, len(levels)+1)
	for _, urls := range levels {
		if len(urls) > 0 {
			chain = append(chain, urls[0].Value)
		}
	}
	if len(chain) == 0 || !IsAbsoluteURL(chain[0]) {
		location := ""
		if p != nil {
			location = p.Location
		}
		chain = append([]string{location}, chain...)
	}
	return chain
}

// MergeURLs folds base URL strings left to right using RFC 3986 reference resolution.
//
// Empty strings are skipped and the first non-empty string is used verbatim.
// An absolute entry replaces everything before it. If all entries are empty,
// the empty string is returned.
func MergeURLs(parts ...string) (string, error) {
	acc := ""
	for _, part := range parts {
		switch {
		case part == "":
			continue
		case acc == "", IsAbsoluteURL(part):
			acc = part
		default:
			base, err := url.Parse(acc)
			if err != nil {
				return "", fmt.Errorf("parse base %q: %w", acc, err)
			}
			ref, err := url.Parse(part)
			if err != nil {
				return "", fmt.Errorf("parse reference %q: %w", part, err)
			}
			acc = base.ResolveReference(ref).String()
		}
	}
	return acc, nil
}
