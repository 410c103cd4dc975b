// Package aspect implements the synastry aspect-matrix engine: the canonical
// aspect rule table, the shortest-arc separation geometry, and two matrix
// builders (a scalar reference implementation and an array-batched one) that
// are contractually required to produce identical results.
package aspect

import (
	"strconv"

	"github.com/cosmichub/synastry/pkg/errors"
)

// Name identifies a named aspect.
type Name string

const (
	Conjunction Name = "conjunction"
	SemiSextile Name = "semi-sextile"
	Sextile     Name = "sextile"
	Square      Name = "square"
	Trine       Name = "trine"
	Quincunx    Name = "quincunx"
	Opposition  Name = "opposition"
)

// String returns the string representation of the aspect name.
func (n Name) String() string {
	return string(n)
}

// Kind classifies an aspect as harmonious, challenging, or neutral.
// It is a pure function of the aspect name.
type Kind string

const (
	Harmonious  Kind = "harmonious"
	Challenging Kind = "challenging"
	Neutral     Kind = "neutral"
)

// KindOf returns the Kind for a named aspect.  Conjunction, trine, and
// sextile are harmonious; square, opposition, and quincunx are challenging;
// semi-sextile is neutral.  Unknown names map to Neutral.
func KindOf(n Name) Kind {
	switch n {
	case Conjunction, Trine, Sextile:
		return Harmonious
	case Square, Opposition, Quincunx:
		return Challenging
	default:
		return Neutral
	}
}

// Rule pairs an aspect with its exact angle and maximum orb tolerance.
type Rule struct {
	Name   Name
	Angle  float64
	MaxOrb float64
}

// RuleSet is an ordered aspect rule table.  Declaration order is load-bearing:
// the builders scan rules in table order and use that order as the tie-break
// when two rules could both match, so two RuleSets with the same rules in a
// different order are different configurations.
type RuleSet struct {
	rules []Rule
}

// DefaultRuleSet returns the canonical 7-aspect synastry table.  This is the
// single rule table used across the whole system (natal aspect callers that
// want wider conjunction/opposition orbs construct a variant through
// NewRuleSet rather than maintaining a second table).
func DefaultRuleSet() RuleSet {
	return RuleSet{rules: []Rule{
		{Conjunction, 0, 10},
		{SemiSextile, 30, 2},
		{Sextile, 60, 6},
		{Square, 90, 8},
		{Trine, 120, 8},
		{Quincunx, 150, 3},
		{Opposition, 180, 10},
	}}
}

// NewRuleSet constructs a validated RuleSet from the given rules, preserving
// their order.  Angles must lie in [0, 180] and orbs must be positive.
func NewRuleSet(rules []Rule) (RuleSet, error) {
	if len(rules) == 0 {
		return RuleSet{}, errors.New(errors.ErrCodeSynastryBadRuleSet, "rule set is empty")
	}
	seen := make(map[Name]bool, len(rules))
	for _, r := range rules {
		if r.Angle < 0 || r.Angle > 180 {
			return RuleSet{}, errors.New(errors.ErrCodeSynastryBadRuleSet,
				"aspect angle out of range [0, 180]").
				WithDetail(string(r.Name) + "=" + strconv.FormatFloat(r.Angle, 'g', -1, 64))
		}
		if r.MaxOrb <= 0 {
			return RuleSet{}, errors.New(errors.ErrCodeSynastryBadRuleSet,
				"aspect orb must be positive").WithDetail(string(r.Name))
		}
		if seen[r.Name] {
			return RuleSet{}, errors.New(errors.ErrCodeSynastryBadRuleSet,
				"duplicate aspect name").WithDetail(string(r.Name))
		}
		seen[r.Name] = true
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return RuleSet{rules: out}, nil
}

// Rules returns the rules in table order.  The returned slice is a copy.
func (rs RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules in the set.
func (rs RuleSet) Len() int {
	return len(rs.rules)
}

// MaxOrbFor returns the orb tolerance for the named aspect, or false when the
// set has no rule for it.
func (rs RuleSet) MaxOrbFor(n Name) (float64, bool) {
	for _, r := range rs.rules {
		if r.Name == n {
			return r.MaxOrb, true
		}
	}
	return 0, false
}
