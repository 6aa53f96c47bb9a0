// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/purell"
)

const normalizeFlags = purell.FlagsSafe

// Resolve returns the ordered segments to fetch for one representation.
//
// A representation without any addressing gives an empty result and no error.
// Segments that cannot be expanded are skipped and reported as warnings.
// A *ResolveError wrapping ErrUnresolvableBaseURL is returned if a relative
// segment address has no base URL to be resolved against.
func Resolve(p *Presentation, period *Period, as *AdaptationSet, rep *Representation) (*Result, error) {
	if rep == nil {
		return nil, errors.New("no representation")
	}
	sel, ok := SelectScheme(rep, as, period)
	if !ok {
		return &Result{Scheme: SchemeNone, Owner: LevelNone}, nil
	}
	chainBase, err := MergeURLs(BaseURLChain(p, period, as)...)
	if err != nil {
		return nil, &ResolveError{RepresentationID: rep.ID, Err: err}
	}
	e := enumerator{
		rep:       rep,
		chainBase: chainBase,
		res:       &Result{Scheme: sel.Scheme.Kind(), Owner: sel.Owner},
	}
	e.repBase = chainBase
	if len(rep.BaseURLs) > 0 {
		e.repBase, err = MergeURLs(chainBase, rep.BaseURLs[0].Value)
		if err != nil {
			return nil, &ResolveError{RepresentationID: rep.ID, Err: err}
		}
	}
	switch s := sel.Scheme.(type) {
	case SegmentList:
		err = e.list(s)
	case SegmentTemplate:
		err = e.template(s)
	case SegmentBase:
		err = e.base(s)
	case DirectURLs:
		err = e.direct()
	default:
		err = fmt.Errorf("unknown addressing scheme %T", s)
	}
	if err != nil {
		return nil, &ResolveError{RepresentationID: rep.ID, Err: err}
	}
	return e.res, nil
}

type enumerator struct {
	rep       *Representation
	chainBase string // merged MPD, Period and AdaptationSet base
	repBase   string // chainBase merged with the first Representation BaseURL
	res       *Result
}

// add appends a descriptor for ref resolved against base.
// Only an unresolvable base URL is returned as error. Other problems become warnings.
func (e *enumerator) add(role Role, pos int, base, ref, byteRange string) error {
	u, err := resolveRef(base, ref)
	if err != nil {
		return err
	}
	d := SegmentDescriptor{Role: role, URL: u}
	if byteRange != "" {
		br, err := ParseByteRange(byteRange)
		if err != nil {
			e.warn(role, pos, err)
			return nil
		}
		d.ByteRange = Some(br)
	}
	e.res.Segments = append(e.res.Segments, d)
	return nil
}

func (e *enumerator) warn(role Role, pos int, err error) {
	e.res.Warnings = append(e.res.Warnings, Warning{Role: role, Position: pos, Err: err})
}

func (e *enumerator) addRef(role Role, pos int, ref URLRef) error {
	return e.add(role, pos, e.repBase, ref.SourceURL, ref.Range)
}

func (e *enumerator) list(s SegmentList) error {
	if init, ok := s.Init.Get(); ok {
		if err := e.addRef(RoleInitialization, -1, init); err != nil {
			return err
		}
	}
	if bss, ok := s.BitstreamSwitching.Get(); ok {
		if err := e.addRef(RoleBitstreamSwitching, -1, bss); err != nil {
			return err
		}
	}
	for i, su := range s.URLs {
		if idx, ok := su.Index.Get(); ok {
			if err := e.add(RoleIndex, i, e.repBase, idx, su.IndexRange); err != nil {
				return err
			}
		}
		if media, ok := su.Media.Get(); ok {
			if err := e.add(RoleMedia, i, e.repBase, media, su.MediaRange); err != nil {
				return err
			}
		}
	}
	return nil
}

// fromPattern expands pattern and adds the result, or records a warning.
func (e *enumerator) fromPattern(role Role, pos int, pattern string, v templateVars) error {
	ref, err := substitute(pattern, v)
	if err != nil {
		e.warn(role, pos, err)
		return nil
	}
	return e.add(role, pos, e.repBase, ref, "")
}

func (e *enumerator) template(s SegmentTemplate) error {
	vars := templateVars{repID: e.rep.ID, bandwidth: e.rep.Bandwidth}
	headers := []struct {
		role    Role
		ref     Optional[URLRef]
		pattern Optional[string]
	}{
		{RoleInitialization, s.Init, s.InitPattern},
		{RoleBitstreamSwitching, s.BitstreamSwitching, s.BitstreamSwitchingPattern},
	}
	for _, h := range headers {
		if ref, ok := h.ref.Get(); ok {
			if err := e.addRef(h.role, -1, ref); err != nil {
				return err
			}
			continue
		}
		if pattern, ok := h.pattern.Get(); ok {
			if err := e.fromPattern(h.role, -1, pattern, vars); err != nil {
				return err
			}
		}
	}

	runs, hasTimeline := s.Timeline.Get()
	if !hasTimeline {
		// No segment count is derived from durations. Only the startNumber segment is listed.
		v := vars
		v.number = Some(s.StartNumber)
		return e.templateSegment(s, 0, v)
	}
	pos := 0
	for t := range StartTimes(runs) {
		v := vars
		v.time = Some(t)
		v.number = Some(s.StartNumber + uint64(pos))
		if err := e.templateSegment(s, pos, v); err != nil {
			return err
		}
		pos++
	}
	return nil
}

func (e *enumerator) templateSegment(s SegmentTemplate, pos int, v templateVars) error {
	if index, ok := s.Index.Get(); ok {
		if err := e.fromPattern(RoleIndex, pos, index, v); err != nil {
			return err
		}
	}
	return e.fromPattern(RoleMedia, pos, s.Media, v)
}

func (e *enumerator) base(s SegmentBase) error {
	if init, ok := s.Init.Get(); ok {
		if err := e.addRef(RoleInitialization, -1, init); err != nil {
			return err
		}
	}
	switch idx, ok := s.RepresentationIndex.Get(); {
	case ok:
		if err := e.addRef(RoleIndex, -1, idx); err != nil {
			return err
		}
	case s.IndexRange != "":
		if err := e.add(RoleIndex, -1, e.repBase, "", s.IndexRange); err != nil {
			return err
		}
	}
	return e.direct()
}

func isAbsoluteBase(base string) bool {
	if base == "" {
		return false
	}
	u, err := url.Parse(base)
	return err == nil && u.IsAbs()
}

func (e *enumerator) direct() error {
	for i, bu := range e.rep.BaseURLs {
		if err := e.add(RoleMedia, i, e.chainBase, bu.Value, ""); err != nil {
			return err
		}
	}
	return nil
}

// resolveRef resolves ref against base and normalizes the result.
// A relative ref needs an absolute base.
func resolveRef(base, ref string) (string, error) {
	if !IsAbsoluteURL(ref) && !isAbsoluteBase(base) {
		return "", ErrUnresolvableBaseURL
	}
	u, err := MergeURLs(base, ref)
	if err != nil {
		return "", err
	}
	n, err := purell.NormalizeURLString(u, normalizeFlags)
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", u, err)
	}
	return n, nil
}
