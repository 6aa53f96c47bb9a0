// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"iter"
	"slices"
)

// StartTimes iterates over the segment start times of a SegmentTimeline.
//
// A run without explicit start continues where the previous run ended.
// A run with Repeat r yields r+1 start times. Negative repeat counts (open-ended
// runs) are not supported and yield a single segment.
func StartTimes(runs []TimelineRun) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		var t uint64
		for _, run := range runs {
			if start, ok := run.Start.Get(); ok {
				t = start
			}
			for range max(run.Repeat, 0) + 1 {
				if !yield(t) {
					return
				}
				t += run.Duration
			}
		}
	}
}

// ExpandTimeline returns all segment start times of a SegmentTimeline.
func ExpandTimeline(runs []TimelineRun) []uint64 {
	return slices.Collect(StartTimes(runs))
}
