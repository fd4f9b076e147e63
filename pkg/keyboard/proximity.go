package keyboard

import (
	"math"
	"unicode"
)

// ProximityType classifies how a lexicon letter relates to a touch point.
type ProximityType int

const (
	// MatchChar is the key the point actually landed on.
	MatchChar ProximityType = iota
	// ProximityChar is a neighboring key within the search radius.
	ProximityChar
	// AdditionalProximityChar is an off-layout variant of a nearby key
	// (accented letters).
	AdditionalProximityChar
	// SubstitutionChar is a key elsewhere on the layout; costs a full edit.
	SubstitutionChar
	// UnrelatedChar is a code point with no key at all; the hypothesis is
	// dropped.
	UnrelatedChar
)

// Candidate is one nearby key for a touch point with its spatial cost
// contribution. NormalizedSquaredDistance is the squared center distance
// divided by the squared key width, so 0 means dead center.
type Candidate struct {
	CodePoint                 rune
	NormalizedSquaredDistance float32
}

// PointState is the candidate set of one touch point. It is computed once
// during session setup and queried repeatedly during traversal.
type PointState struct {
	Primary           rune
	Candidates        []Candidate
	HasSpaceProximity bool
	used              bool
}

// IsUsed reports whether this state was initialized from a real touch point.
func (ps *PointState) IsUsed() bool {
	return ps.used
}

// NormalizedDistanceFor returns the normalized (linear) distance from the
// touch point to the given key, and whether the key is in the candidate set.
func (ps *PointState) NormalizedDistanceFor(cp rune) (float32, bool) {
	folded := unicode.ToLower(cp)
	for _, c := range ps.Candidates {
		if c.CodePoint == folded {
			return float32(math.Sqrt(float64(c.NormalizedSquaredDistance))), true
		}
	}
	return 0, false
}

// StateFor computes the candidate set for one touch point. A negative x/y
// pair means the host only knows the typed code point; the key center is
// used as the touch position. A zero or negative code point means the host
// only knows coordinates (the usual soft keyboard case).
func (l *Layout) StateFor(codePoint rune, x, y int) PointState {
	folded := unicode.ToLower(codePoint)
	if x < 0 || y < 0 {
		if kx, ky, ok := l.KeyCenter(folded); ok {
			x, y = kx, ky
		} else {
			return PointState{Primary: folded, used: folded > 0}
		}
	}

	primary := folded
	if _, onLayout := l.keys[primary]; !onLayout || primary <= 0 {
		primary = l.NearestKey(x, y)
	}

	keyWidthSq := float32(l.mostCommonKeyWidth * l.mostCommonKeyWidth)
	radiusSq := l.searchRadius * l.searchRadius

	st := PointState{Primary: primary, used: true}
	for _, k := range l.letters {
		d := squaredDistance(x, y, k.X, k.Y)
		if d > radiusSq && k.CodePoint != primary {
			continue
		}
		st.Candidates = append(st.Candidates, Candidate{
			CodePoint:                 k.CodePoint,
			NormalizedSquaredDistance: float32(d) / keyWidthSq,
		})
	}
	sortCandidates(st.Candidates, primary)

	st.HasSpaceProximity = l.spaceDistance(x, y) <= l.searchRadius
	return st
}

// ProximityTypeFor classifies a lexicon code point against this point.
func (l *Layout) ProximityTypeFor(ps *PointState, cp rune) ProximityType {
	folded := unicode.ToLower(cp)
	if folded == ps.Primary {
		return MatchChar
	}
	for _, c := range ps.Candidates {
		if c.CodePoint == folded {
			return ProximityChar
		}
		if l.isAdditionalVariant(c.CodePoint, folded) {
			return AdditionalProximityChar
		}
	}
	if _, onLayout := l.keys[folded]; onLayout {
		return SubstitutionChar
	}
	if l.isAdditionalVariant(l.BaseKeyFor(folded), folded) {
		return SubstitutionChar
	}
	return UnrelatedChar
}

// sortCandidates orders by distance with the primary key pinned first.
// Insertion sort; candidate sets are tiny.
func sortCandidates(cs []Candidate, primary rune) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && less(cs[j], cs[j-1], primary); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func less(a, b Candidate, primary rune) bool {
	if a.CodePoint == primary {
		return true
	}
	if b.CodePoint == primary {
		return false
	}
	if a.NormalizedSquaredDistance != b.NormalizedSquaredDistance {
		return a.NormalizedSquaredDistance < b.NormalizedSquaredDistance
	}
	return a.CodePoint < b.CodePoint
}
