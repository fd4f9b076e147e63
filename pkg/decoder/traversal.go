package decoder

import (
	"github.com/bastiangx/keyserve/pkg/keyboard"
)

// Traversal is the policy bundle steering the search: cache sizes, which
// error corrections are allowed for a given hypothesis, when frontiers are
// snapshotted for continuous search, and how lexicon letters are classified
// against touch points. The driver holds one as an explicit value so tests
// can inject alternatives.
type Traversal interface {
	MaxCacheSize(inputSize int) int
	MaxPointerCount() int
	DefaultExpandDicNodeSize() int
	MaxSpatialDistance() float32

	AllowPartialCommit() bool
	AllowsErrorCorrections(n *DicNode) bool
	SameAsTyped(s *Session, n *DicNode) bool
	NeedsToTraverseAllUserInput() bool

	ShouldDepthLevelCache(s *Session) bool
	ShouldNodeLevelCache(s *Session, n *DicNode) bool
	CanDoLookAheadCorrection(s *Session, n *DicNode) bool

	IsSpaceSubstitutionTerminal(s *Session, n *DicNode) bool
	IsSpaceOmissionTerminal(s *Session, n *DicNode) bool
	IsGoodToTraverseNextWord(s *Session, n *DicNode) bool

	IsOmission(s *Session, parent, child *DicNode) bool
	IsPossibleOmissionChildNode(s *Session, parent, child *DicNode) bool
	GetProximityType(s *Session, parent, child *DicNode) keyboard.ProximityType
}

// TypingOptions are the tunable switches of the typing policy.
type TypingOptions struct {
	AllowPartialCommit       bool
	CorrectOmission          bool
	CorrectSpaceSubstitution bool
	CorrectSpaceOmission     bool

	// MaxCacheSize bounds active + next-active; small inputs use a reduced
	// cache since their beam cannot meaningfully branch.
	MaxCacheSize          int
	SingleCharCacheSize   int
	MinProbabilityForNext int
}

// DefaultTypingOptions returns the shipped typing policy switches.
func DefaultTypingOptions() TypingOptions {
	return TypingOptions{
		AllowPartialCommit:       false,
		CorrectOmission:          true,
		CorrectSpaceSubstitution: true,
		CorrectSpaceOmission:     true,
		MaxCacheSize:             170,
		SingleCharCacheSize:      20,
		MinProbabilityForNext:    40,
	}
}

// TypingTraversal is the tap-typing traversal policy.
type TypingTraversal struct {
	opts TypingOptions
}

// NewTypingTraversal builds the typing policy with the given switches.
func NewTypingTraversal(opts TypingOptions) *TypingTraversal {
	return &TypingTraversal{opts: opts}
}

func (t *TypingTraversal) MaxCacheSize(inputSize int) int {
	if inputSize <= 1 {
		return t.opts.SingleCharCacheSize
	}
	return t.opts.MaxCacheSize
}

func (t *TypingTraversal) MaxPointerCount() int { return 1 }

func (t *TypingTraversal) DefaultExpandDicNodeSize() int { return 32 }

func (t *TypingTraversal) MaxSpatialDistance() float32 { return 1.0 }

func (t *TypingTraversal) AllowPartialCommit() bool { return t.opts.AllowPartialCommit }

// AllowsErrorCorrections gates the expensive operators: hypotheses that
// already drifted too far spatially, or that spent the edit budget, only
// continue on exact matches.
func (t *TypingTraversal) AllowsErrorCorrections(n *DicNode) bool {
	if n.Scoring().EditCorrectionCount() >= maxEditCorrectionCount {
		return false
	}
	divisor := n.InputIndex()
	if divisor < 1 {
		divisor = 1
	}
	normalizedSpatial := n.Scoring().SpatialDistance() / float32(divisor)
	return normalizedSpatial < normalizedSpatialThresholdForEdits
}

func (t *TypingTraversal) SameAsTyped(s *Session, n *DicNode) bool {
	if n.CurrentWordLen() != s.InputSize() || n.HasMultipleWords() {
		return false
	}
	for i := 0; i < s.InputSize(); i++ {
		if n.output[int(n.wordStart)+i] != s.Primary(i) {
			return false
		}
	}
	return true
}

func (t *TypingTraversal) NeedsToTraverseAllUserInput() bool { return true }

// ShouldDepthLevelCache snapshots the frontier right before the final touch
// point is consumed, so a follow-up call extending the input by one point
// can resume there.
func (t *TypingTraversal) ShouldDepthLevelCache(s *Session) bool {
	return s.GetDicTraverseCache().InputIndex() == s.InputSize()-1
}

func (t *TypingTraversal) ShouldNodeLevelCache(s *Session, n *DicNode) bool { return false }

func (t *TypingTraversal) CanDoLookAheadCorrection(s *Session, n *DicNode) bool {
	return n.CanDoLookAheadCorrection(s.InputSize())
}

// IsSpaceSubstitutionTerminal spots "hevis" style input: the hypothesis is
// at an end-of-word and the current touch point lies within space-bar
// proximity, so the point may have been a mistyped space.
func (t *TypingTraversal) IsSpaceSubstitutionTerminal(s *Session, n *DicNode) bool {
	if !t.opts.CorrectSpaceSubstitution || !n.IsTerminalWordNode() {
		return false
	}
	if n.IsCompletion(s.InputSize()) {
		return false
	}
	st := s.PointState(n.InputIndex())
	return st != nil && st.HasSpaceProximity
}

// IsSpaceOmissionTerminal spots "heis" style input: an end-of-word with
// input left over and no space typed at all.
func (t *TypingTraversal) IsSpaceOmissionTerminal(s *Session, n *DicNode) bool {
	return t.opts.CorrectSpaceOmission && n.IsTerminalWordNode() && !n.IsCompletion(s.InputSize())
}

// IsGoodToTraverseNextWord keeps multi-word spawning to words that are
// frequent enough to plausibly start a compound, and bounds the chain.
func (t *TypingTraversal) IsGoodToTraverseNextWord(s *Session, n *DicNode) bool {
	if n.Probability() < t.opts.MinProbabilityForNext {
		return false
	}
	if n.PrevWordsCount() >= MaxSpaceIndices {
		return false
	}
	return !s.Lexicon().IsBlacklistedOrNotAWord(n.AttributesPos())
}

// IsOmission considers skipping a trie letter when it cannot explain the
// current touch point anyway. Apostrophe children only ever survive through
// this path, at zero cost.
func (t *TypingTraversal) IsOmission(s *Session, parent, child *DicNode) bool {
	if !t.opts.CorrectOmission {
		return false
	}
	switch t.GetProximityType(s, parent, child) {
	case keyboard.SubstitutionChar, keyboard.UnrelatedChar:
		return true
	}
	return false
}

// IsPossibleOmissionChildNode limits omissions to the plausible ones: the
// letter after the skip has to line up with the current touch point, or the
// beam floods with skip hypotheses.
func (t *TypingTraversal) IsPossibleOmissionChildNode(s *Session, parent, child *DicNode) bool {
	switch t.GetProximityType(s, parent, child) {
	case keyboard.MatchChar, keyboard.ProximityChar:
		return true
	}
	return false
}

// GetProximityType classifies the child letter against the touch point the
// parent is about to consume.
func (t *TypingTraversal) GetProximityType(s *Session, parent, child *DicNode) keyboard.ProximityType {
	st := s.PointState(parent.InputIndex())
	if st == nil {
		return keyboard.UnrelatedChar
	}
	return s.Proximity().ProximityTypeFor(st, child.NodeCodePoint())
}

var _ Traversal = (*TypingTraversal)(nil)
