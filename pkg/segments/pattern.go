// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"fmt"
	"regexp"
	"strings"
)

var formatTagRE = regexp.MustCompile(`^%0?[0-9]*d$`)

// templateVars are the values available to a SegmentTemplate pattern.
// Number and Time are only set for media and index segments.
type templateVars struct {
	repID     string
	bandwidth uint64
	number    Optional[uint64]
	time      Optional[uint64]
}

// substitute expands $RepresentationID$, $Bandwidth$, $Number$, $Time$ and $$ in pattern.
// Numeric identifiers may carry a printf width tag, e.g. $Number%05d$.
func substitute(pattern string, v templateVars) (string, error) {
	if pattern == "" {
		return "", &PatternError{Pattern: pattern, Reason: "empty pattern"}
	}
	var b strings.Builder
	rest := pattern
	for {
		start := strings.IndexByte(rest, '$')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start+1:]
		end := strings.IndexByte(rest, '$')
		if end < 0 {
			return "", &PatternError{Pattern: pattern, Reason: "unterminated identifier"}
		}
		token := rest[:end]
		rest = rest[end+1:]
		if token == "" {
			b.WriteByte('$')
			continue
		}
		val, err := identifierValue(pattern, token, v)
		if err != nil {
			return "", err
		}
		b.WriteString(val)
	}
	return b.String(), nil
}

func identifierValue(pattern, token string, v templateVars) (string, error) {
	name, format, hasFormat := strings.Cut(token, "%")
	format = "%" + format
	if hasFormat && !formatTagRE.MatchString(format) {
		return "", &PatternError{Pattern: pattern, Identifier: token, Reason: "bad format tag"}
	}
	if !hasFormat {
		format = "%d"
	}
	var val Optional[uint64]
	switch name {
	case "RepresentationID":
		if hasFormat {
			return "", &PatternError{Pattern: pattern, Identifier: token, Reason: "format tag not allowed"}
		}
		if v.repID == "" {
			return "", &PatternError{Pattern: pattern, Identifier: name, Reason: "representation has no id"}
		}
		return v.repID, nil
	case "Bandwidth":
		val = Some(v.bandwidth)
	case "Number":
		val = v.number
	case "Time":
		val = v.time
	default:
		return "", &PatternError{Pattern: pattern, Identifier: token, Reason: "unknown identifier"}
	}
	n, ok := val.Get()
	if !ok {
		return "", &PatternError{Pattern: pattern, Identifier: name, Reason: "no value in this context"}
	}
	return fmt.Sprintf(format, n), nil
}
