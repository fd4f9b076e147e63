package decoder

import (
	"github.com/bastiangx/keyserve/pkg/lexicon"
)

// Scoring parameters for tap typing. Distances are in key widths scaled by
// the length weight, so a touch one full key away from the intended center
// costs distanceWeightLength. The edit operator costs are calibrated
// against that scale; changing one side without the other shifts where the
// beam stops considering corrections.
const (
	distanceWeightLength   float32 = 0.1524
	distanceWeightLanguage float32 = 0.124

	proximityCost           float32 = 0.0694
	additionalProximityCost float32 = 0.380
	substitutionCost        float32 = 0.363

	omissionCost          float32 = 0.458
	omissionCostSameChar  float32 = 0.291
	omissionCostFirstChar float32 = 0.512

	insertionCost          float32 = 0.730
	insertionCostSameChar  float32 = 0.706
	insertionCostFirstChar float32 = 0.786

	transpositionCost     float32 = 0.516
	spaceSubstitutionCost float32 = 0.239
	costNewWord           float32 = 0.024
	costLookahead         float32 = 0.092

	hasProximityTerminalCost      float32 = 0.126
	hasEditCorrectionTerminalCost float32 = 0.148
	hasMultiWordTerminalCost      float32 = 0.142

	// Edits stop being considered for hypotheses that already drifted this
	// far per consumed point, or that spent the operator budget.
	normalizedSpatialThresholdForEdits float32 = 0.45
	maxEditCorrectionCount                     = 3

	// Two taps on the same key at least this far apart in time are taken
	// as a deliberate doubled letter rather than one long press.
	strongDoubleLetterTimeMillis = 200
)

// TypingWeighting assigns costs for tap-typing input.
type TypingWeighting struct{}

// NewTypingWeighting returns the typing cost table.
func NewTypingWeighting() *TypingWeighting {
	return &TypingWeighting{}
}

func (w *TypingWeighting) NeedsToNormalizeCompoundDistance() bool { return true }

// MatchedCost charges the spatial drift of the consumed touch point and
// raises double-letter evidence when the same key explains two consecutive
// letters.
func (w *TypingWeighting) MatchedCost(s *Session, n *DicNode) float32 {
	pointIndex := n.InputIndex()
	st := s.PointState(pointIndex)
	if st == nil {
		return MaxWeight
	}
	cost := float32(0)
	distance, ok := st.NormalizedDistanceFor(n.NodeCodePoint())
	if ok {
		cost = distance * distanceWeightLength
	}
	if n.NodeCodePoint() != st.Primary {
		cost += proximityCost
	}

	if n.PrevCodePoint() == n.NodeCodePoint() && pointIndex > 0 &&
		s.Primary(pointIndex) == s.Primary(pointIndex-1) {
		level := ADoubleLetter
		if s.timeBetween(pointIndex-1, pointIndex) >= strongDoubleLetterTimeMillis {
			level = AStrongDoubleLetter
		}
		n.Scoring().SetDoubleLetterLevel(level)
	}
	return cost
}

func (w *TypingWeighting) CompletionCost(s *Session, n *DicNode) float32 {
	return costLookahead
}

func (w *TypingWeighting) AdditionalProximityCost(s *Session, parent, child *DicNode) float32 {
	return additionalProximityCost
}

func (w *TypingWeighting) SubstitutionCost(s *Session, parent, child *DicNode) float32 {
	return substitutionCost
}

// OmissionCost charges for the skipped trie letter; skipping a repeat of
// the previous letter is cheaper, skipping the first letter dearer.
func (w *TypingWeighting) OmissionCost(s *Session, parent, child *DicNode) float32 {
	switch {
	case parent.CurrentWordLen() <= 1:
		return omissionCostFirstChar
	case parent.NodeCodePoint() == parent.PrevCodePoint():
		return omissionCostSameChar
	default:
		return omissionCost
	}
}

// InsertionCost charges for skipping the touch point at the parent's input
// index and matching the child letter against the following point.
func (w *TypingWeighting) InsertionCost(s *Session, parent, child *DicNode) float32 {
	skipIndex := parent.InputIndex()
	base := insertionCost
	switch {
	case parent.CurrentWordLen() == 0:
		base = insertionCostFirstChar
	case s.Primary(skipIndex) == s.Primary(skipIndex+1):
		base = insertionCostSameChar
	}
	cost := base
	if st := s.PointState(skipIndex + 1); st != nil {
		if distance, ok := st.NormalizedDistanceFor(child.NodeCodePoint()); ok {
			cost += distance * distanceWeightLength
		}
	}
	return cost
}

// TranspositionCost charges once, on the second-level child, for matching
// two letters against their touch points in swapped order.
func (w *TypingWeighting) TranspositionCost(s *Session, parent, child *DicNode) float32 {
	pointIndex := parent.InputIndex()
	cost := transpositionCost
	if st := s.PointState(pointIndex + 1); st != nil {
		if distance, ok := st.NormalizedDistanceFor(parent.NodeCodePoint()); ok {
			cost += distance * distanceWeightLength
		}
	}
	if st := s.PointState(pointIndex); st != nil {
		if distance, ok := st.NormalizedDistanceFor(child.NodeCodePoint()); ok {
			cost += distance * distanceWeightLength
		}
	}
	return cost
}

func (w *TypingWeighting) SpaceSubstitutionCost(s *Session, n *DicNode) float32 {
	return spaceSubstitutionCost
}

func (w *TypingWeighting) NewWordCost(s *Session, n *DicNode) float32 {
	return costNewWord
}

// NewWordLanguageCost charges the language model for the word being
// completed when the chain grows: its bigram with the previous chain word
// when one is recorded, its unigram otherwise.
func (w *TypingWeighting) NewWordLanguageCost(s *Session, parent, child *DicNode) float32 {
	return languageImprobability(s, parent.PrevWordPos(), parent.Pos(), parent.Probability())
}

// TerminalSpatialCost surcharges candidates that needed corrections, so a
// clean alternative of equal distance outranks them.
func (w *TypingWeighting) TerminalSpatialCost(s *Session, n *DicNode) float32 {
	cost := float32(0)
	if n.Scoring().EditCorrectionCount() > 0 {
		cost += hasEditCorrectionTerminalCost
	}
	if n.Scoring().ProximityCorrectionCount() > 0 {
		cost += hasProximityTerminalCost
	}
	if n.HasMultipleWords() {
		cost += hasMultiWordTerminalCost
	}
	return cost
}

func (w *TypingWeighting) TerminalLanguageCost(s *Session, n *DicNode) float32 {
	return languageImprobability(s, n.PrevWordPos(), n.Pos(), n.Probability())
}

func (w *TypingWeighting) IsProximityDicNode(s *Session, n *DicNode) bool {
	st := s.PointState(n.InputIndex())
	return st != nil && n.NodeCodePoint() != st.Primary
}

// languageImprobability converts a 0..255 probability into a distance
// increment, preferring the bigram when the chain provides one.
func languageImprobability(s *Session, prevPos, pos int32, unigram int) float32 {
	prob := unigram
	if bigram, ok := s.BigramProbability(prevPos, pos); ok {
		prob = bigram
	}
	if prob > lexicon.MaxProbability {
		prob = lexicon.MaxProbability
	}
	improbability := float32(lexicon.MaxProbability-prob) / float32(lexicon.MaxProbability)
	return improbability * distanceWeightLanguage
}

var _ Weighting = (*TypingWeighting)(nil)
