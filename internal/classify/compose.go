package classify

// pairKey is an unordered pair of single-hand labels.
type pairKey struct {
	a, b string
}

// orderedPair canonicalizes a label pair so lookup is symmetric: composing
// (A, B) and (B, A) always hit the same table entry.
func orderedPair(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// twoHandTable maps canonical label pairs to composite gestures.
var twoHandTable = map[pairKey]string{
	orderedPair(LabelOpenHand, LabelOpenHand): LabelAllDone,
	orderedPair(LabelFist, LabelFist):         LabelMore,
	orderedPair(LabelThumbsUp, LabelThumbsUp): LabelHelp,
}

// ComposeTwoHands combines the labels of two simultaneous hands into a
// composite gesture. Pairs outside the table compose to
// LabelUnknownTwoHand.
func ComposeTwoHands(a, b string) string {
	if label, ok := twoHandTable[orderedPair(a, b)]; ok {
		return label
	}
	return LabelUnknownTwoHand
}
