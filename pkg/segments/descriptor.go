// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the purpose of a segment.
type Role int

const (
	RoleInitialization Role = iota
	RoleBitstreamSwitching
	RoleMedia
	RoleIndex
)

func (r Role) String() string {
	switch r {
	case RoleInitialization:
		return "init"
	case RoleBitstreamSwitching:
		return "bitstreamSwitching"
	case RoleMedia:
		return "media"
	case RoleIndex:
		return "index"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ByteRange is a byte range within a resource.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// HeaderValue returns the value for an HTTP Range header.
func (b ByteRange) HeaderValue() string {
	return fmt.Sprintf("bytes=%d-%d", b.Offset, b.Offset+b.Length-1)
}

// ParseByteRange parses a DASH byte range "first-last" (both inclusive).
func ParseByteRange(s string) (ByteRange, error) {
	first, last, ok := strings.Cut(s, "-")
	if !ok {
		return ByteRange{}, fmt.Errorf("byte range %q: missing '-'", s)
	}
	start, err := strconv.ParseUint(first, 10, 64)
	if err != nil {
		return ByteRange{}, fmt.Errorf("byte range %q: %w", s, err)
	}
	end, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return ByteRange{}, fmt.Errorf("byte range %q: %w", s, err)
	}
	if end < start {
		return ByteRange{}, fmt.Errorf("byte range %q: end before start", s)
	}
	return ByteRange{Offset: start, Length: end - start + 1}, nil
}

// SegmentDescriptor is one resolved segment to fetch.
type SegmentDescriptor struct {
	Role      Role
	URL       string
	ByteRange Optional[ByteRange]
}

func (d SegmentDescriptor) String() string {
	if br, ok := d.ByteRange.Get(); ok {
		return fmt.Sprintf("%s %s [%s]", d.Role, d.URL, br.HeaderValue())
	}
	return fmt.Sprintf("%s %s", d.Role, d.URL)
}

// Warning is a segment that was skipped during enumeration.
type Warning struct {
	Role     Role
	Position int // index of the segment within its scheme, -1 for init and bitstream switching
	Err      error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s segment %d skipped: %v", w.Role, w.Position, w.Err)
}

// Result is the outcome of resolving one representation.
type Result struct {
	Scheme   SchemeKind
	Owner    Level
	Segments []SegmentDescriptor
	Warnings []Warning
}
