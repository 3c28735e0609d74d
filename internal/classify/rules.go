package classify

import "fmt"

// Rule maps a finger-state pattern to a gesture label. Pattern is five
// characters covering thumb, index, middle, ring, pinky in that order:
// '1' requires the finger extended, '0' requires it flexed, 'x' matches
// either. Rules are evaluated in order and the first match wins, so broader
// patterns must come before narrower overlapping ones.
type Rule struct {
	Pattern string
	Label   string
}

// builtinRules is the canonical single-hand decision table. It is a flat
// ordered list rather than a tree so individual rules stay auditable and
// user rules can be appended without restructuring.
//
// The pointing rule requires the thumb flexed with only the index extended;
// the peace sign leaves the thumb unconstrained.
var builtinRules = []Rule{
	{Pattern: "11111", Label: LabelOpenHand},
	{Pattern: "10000", Label: LabelThumbsUp},
	{Pattern: "01000", Label: LabelNo},
	{Pattern: "00000", Label: LabelFist},
	{Pattern: "x1100", Label: LabelPeace},
}

// ValidatePattern reports whether p is a well-formed five-character rule
// pattern.
func ValidatePattern(p string) error {
	if len(p) != 5 {
		return fmt.Errorf("pattern %q: want 5 characters, got %d", p, len(p))
	}
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '0', '1', 'x':
		default:
			return fmt.Errorf("pattern %q: invalid character %q at position %d", p, p[i], i)
		}
	}
	return nil
}

// matchPattern reports whether the finger state satisfies the pattern.
// Malformed patterns never match.
func matchPattern(state FingerState, pattern string) bool {
	if len(pattern) != 5 {
		return false
	}

	fingers := [5]bool{state.Thumb, state.Index, state.Middle, state.Ring, state.Pinky}
	for i, extended := range fingers {
		switch pattern[i] {
		case '1':
			if !extended {
				return false
			}
		case '0':
			if extended {
				return false
			}
		case 'x':
		default:
			return false
		}
	}

	return true
}

// classifyState runs the ordered rule list over a finger state. Built-in
// rules are tried first, then any user-defined rules, then the Unknown
// fallback.
func classifyState(state FingerState, userRules []Rule) string {
	for _, r := range builtinRules {
		if matchPattern(state, r.Pattern) {
			return r.Label
		}
	}
	for _, r := range userRules {
		if matchPattern(state, r.Pattern) {
			return r.Label
		}
	}
	return LabelUnknown
}
