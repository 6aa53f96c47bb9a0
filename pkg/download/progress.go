// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package download

import (
	"context"
	"io"

	"github.com/vbauerster/mpb/v6"
	"github.com/vbauerster/mpb/v6/decor"
)

const nameWidth = 20

// Progress shows one bar per representation.
type Progress struct {
	p *mpb.Progress
}

// NewProgress renders bars to w. A nil w discards the output.
func NewProgress(ctx context.Context, w io.Writer) *Progress {
	return &Progress{
		p: mpb.NewWithContext(ctx,
			mpb.WithWidth(64),
			mpb.WithOutput(w),
		),
	}
}

// Bar counts finished transfers of one representation.
type Bar struct {
	b *mpb.Bar
}

// AddBar adds a bar for total segments.
func (p *Progress) AddBar(name string, total int) *Bar {
	b := p.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(left(name, nameWidth), decor.WC{W: nameWidth + 1, C: decor.DidentRight}),
			decor.CountersNoUnit(" %3d/%3d", decor.WC{W: 5 + 1, C: decor.DidentRight}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(), "done"),
		),
	)
	return &Bar{b: b}
}

// Done implements Observer.
func (b *Bar) Done(r Report) {
	b.b.Increment()
}

// Wait blocks until all bars are complete or aborted.
func (p *Progress) Wait() {
	p.p.Wait()
}

func left(s string, l int) string {
	r := []rune(s)
	if len(r) <= l {
		return s
	}
	return string(r[:l-1]) + "…"
}
