// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvableBaseURL is returned when a segment address is relative and
	// every base URL candidate is empty.
	ErrUnresolvableBaseURL = errors.New("unresolvable base URL")
	// ErrPatternSubstitution is the cause of all per-segment template failures.
	ErrPatternSubstitution = errors.New("pattern substitution failed")
)

// PatternError describes why a SegmentTemplate pattern could not be expanded.
type PatternError struct {
	Pattern    string
	Identifier string
	Reason     string
}

func (e *PatternError) Error() string {
	if e.Identifier == "" {
		return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Reason)
	}
	return fmt.Sprintf("pattern %q: $%s$: %s", e.Pattern, e.Identifier, e.Reason)
}

func (e *PatternError) Unwrap() error {
	return ErrPatternSubstitution
}

// ResolveError is a resolution failure for a whole representation.
type ResolveError struct {
	RepresentationID string
	Err              error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("representation %q: %v", e.RepresentationID, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
