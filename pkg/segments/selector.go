// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package segments

// Selection is the addressing scheme chosen for a representation and the level it was found at.
type Selection struct {
	Scheme AddressingScheme
	Owner  Level
}

type schemePicker struct {
	kind SchemeKind
	pick func(Schemes) (AddressingScheme, bool)
}

// schemeOrder is the order in which scheme kinds are tried on one node.
var schemeOrder = []schemePicker{
	{SchemeList, func(s Schemes) (AddressingScheme, bool) {
		l, ok := s.List.Get()
		return l, ok
	}},
	{SchemeTemplate, func(s Schemes) (AddressingScheme, bool) {
		t, ok := s.Template.Get()
		return t, ok
	}},
	{SchemeBase, func(s Schemes) (AddressingScheme, bool) {
		b, ok := s.Base.Get()
		return b, ok
	}},
}

type selectionRule struct {
	level Level
	kind  SchemeKind
	match func(rep *Representation, as *AdaptationSet, period *Period) (AddressingScheme, bool)
}

// precedence lists the selection rules in priority order. First match wins.
var precedence = buildPrecedence()

func buildPrecedence() []selectionRule {
	nodes := []struct {
		level Level
		node  func(*Representation, *AdaptationSet, *Period) Node
	}{
		{LevelRepresentation, func(r *Representation, _ *AdaptationSet, _ *Period) Node {
			if r == nil {
				return nil
			}
			return r
		}},
		{LevelAdaptationSet, func(_ *Representation, a *AdaptationSet, _ *Period) Node {
			if a == nil {
				return nil
			}
			return a
		}},
		{LevelPeriod, func(_ *Representation, _ *AdaptationSet, p *Period) Node {
			if p == nil {
				return nil
			}
			return p
		}},
	}
	rules := make([]selectionRule, 0, len(nodes)*len(schemeOrder)+1)
	for _, n := range nodes {
		for _, sp := range schemeOrder {
			getNode, pick := n.node, sp.pick
			rules = append(rules, selectionRule{
				level: n.level,
				kind:  sp.kind,
				match: func(r *Representation, a *AdaptationSet, p *Period) (AddressingScheme, bool) {
					node := getNode(r, a, p)
					if node == nil {
						return nil, false
					}
					return pick(node.AddressingSchemes())
				},
			})
		}
	}
	rules = append(rules, selectionRule{
		level: LevelRepresentation,
		kind:  SchemeDirect,
		match: func(r *Representation, _ *AdaptationSet, _ *Period) (AddressingScheme, bool) {
			if r == nil || len(r.BaseURLs) == 0 {
				return nil, false
			}
			return DirectURLs{}, true
		},
	})
	return rules
}

// SelectScheme picks the addressing scheme governing a representation.
//
// Representation, AdaptationSet and Period are searched in that order, and on
// each level SegmentList, SegmentTemplate and SegmentBase in that order.
// If nothing is declared but the representation has BaseURLs, these are used
// directly as media segments. ok is false if no scheme applies.
func SelectScheme(rep *Representation, as *AdaptationSet, period *Period) (sel Selection, ok bool) {
	for _, rule := range precedence {
		if scheme, found := rule.match(rep, as, period); found {
			return Selection{Scheme: scheme, Owner: rule.level}, true
		}
	}
	return Selection{}, false
}
