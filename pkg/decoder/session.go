package decoder

import (
	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
)

// Session is the persistent traverse state for one input stream: the touch
// points of the current decode call, their proximity states, the frontier
// cache, and the previous-word context for bigram scoring. A session is
// single-owner; it may be reused across sequential decode calls, which is
// what enables continuous search, but must not be entered re-entrantly.
type Session struct {
	lexicon   *lexicon.Lexicon
	proximity *keyboard.Layout
	cache     *DicNodesCache

	inputSize   int
	xs, ys      []int
	times       []int
	pointerIDs  []int
	pointStates []keyboard.PointState
	primaries   []rune

	prevPrimaries  []rune
	prevGeneration uint64

	prevWordPos        int32
	bigramCache        map[int64]int
	partiallyCommitted bool
	continuousPossible bool

	maxSpatialDistance float32
	maxPointerCount    int
}

// NewSession creates a session bound to a lexicon.
func NewSession(lx *lexicon.Lexicon) *Session {
	return &Session{
		lexicon:     lx,
		cache:       NewDicNodesCache(),
		prevWordPos: lexicon.RootPos,
		bigramCache: make(map[int64]int),
	}
}

// Setup prepares the session for one decode call: input buffers are copied,
// per-point proximity states are computed, and continuity with the previous
// call is detected before the stored input is replaced.
func (s *Session) Setup(proximity *keyboard.Layout, codePoints []rune, inputSize int,
	xs, ys, times, pointerIDs []int, maxSpatialDistance float32, maxPointerCount int) {
	s.proximity = proximity
	s.maxSpatialDistance = maxSpatialDistance
	s.maxPointerCount = maxPointerCount
	s.inputSize = inputSize

	s.xs = append(s.xs[:0], xs[:inputSize]...)
	s.ys = append(s.ys[:0], ys[:inputSize]...)
	s.times = append(s.times[:0], times[:inputSize]...)
	s.pointerIDs = append(s.pointerIDs[:0], pointerIDs[:inputSize]...)

	s.pointStates = s.pointStates[:0]
	s.primaries = s.primaries[:0]
	for i := 0; i < inputSize; i++ {
		var cp rune
		if i < len(codePoints) {
			cp = codePoints[i]
		}
		st := proximity.StateFor(cp, xs[i], ys[i])
		s.pointStates = append(s.pointStates, st)
		s.primaries = append(s.primaries, st.Primary)
	}

	s.continuousPossible = s.detectContinuity()
	s.prevPrimaries = append(s.prevPrimaries[:0], s.primaries...)
	s.prevGeneration = s.lexicon.Generation()

	s.partiallyCommitted = false
	clear(s.bigramCache)
}

// detectContinuity checks that the stored previous input is a strict prefix
// of the new one and the lexicon has not changed underneath the snapshot.
func (s *Session) detectContinuity() bool {
	if len(s.prevPrimaries) == 0 || len(s.prevPrimaries) >= s.inputSize {
		return false
	}
	if s.prevGeneration != s.lexicon.Generation() {
		return false
	}
	for i, cp := range s.prevPrimaries {
		if s.primaries[i] != cp {
			return false
		}
	}
	return true
}

// IsContinuousSuggestionPossible reports whether the frontier snapshot from
// the previous call may be reused for this input.
func (s *Session) IsContinuousSuggestionPossible() bool {
	return s.continuousPossible
}

// ResetCache clears the frontiers and installs fresh capacities.
func (s *Session) ResetCache(maxCacheSize, maxResults int) {
	s.cache.Reset(maxCacheSize, maxResults)
}

// GetDicTraverseCache exposes the frontier cache.
func (s *Session) GetDicTraverseCache() *DicNodesCache {
	return s.cache
}

// Lexicon returns the dictionary handle.
func (s *Session) Lexicon() *lexicon.Lexicon {
	return s.lexicon
}

// Proximity returns the keyboard model of the current call.
func (s *Session) Proximity() *keyboard.Layout {
	return s.proximity
}

// InputSize returns the touch point count of the current call.
func (s *Session) InputSize() int {
	return s.inputSize
}

// PointState returns the proximity state of one input position.
func (s *Session) PointState(i int) *keyboard.PointState {
	if i < 0 || i >= len(s.pointStates) {
		return nil
	}
	return &s.pointStates[i]
}

// Primary returns the primary code point of one input position.
func (s *Session) Primary(i int) rune {
	if i < 0 || i >= len(s.primaries) {
		return 0
	}
	return s.primaries[i]
}

// timeBetween returns elapsed milliseconds between two touch points.
func (s *Session) timeBetween(i, j int) int {
	if i < 0 || j < 0 || i >= len(s.times) || j >= len(s.times) {
		return 0
	}
	return s.times[j] - s.times[i]
}

// PrevWordPos returns the lexicon position of the preceding word, or
// lexicon.RootPos when there is none.
func (s *Session) PrevWordPos() int32 {
	return s.prevWordPos
}

// SetPrevWordPos installs the preceding-word context for bigram scoring.
func (s *Session) SetPrevWordPos(pos int32) {
	s.prevWordPos = pos
	clear(s.bigramCache)
}

// SetPrevWord resolves a word to its lexicon position and installs it as
// the preceding-word context; unknown words clear the context.
func (s *Session) SetPrevWord(word string) {
	if pos, ok := s.lexicon.WordPos(word); ok {
		s.SetPrevWordPos(pos)
		return
	}
	s.SetPrevWordPos(lexicon.RootPos)
}

// SetPartiallyCommitted marks that a commit point consumed the leading
// words of the hypothesis space.
func (s *Session) SetPartiallyCommitted() {
	s.partiallyCommitted = true
}

// IsPartiallyCommitted reports the partial-commit state of this call.
func (s *Session) IsPartiallyCommitted() bool {
	return s.partiallyCommitted
}

// BigramProbability memoizes bigram lookups for the hot terminal path.
func (s *Session) BigramProbability(prevPos, pos int32) (int, bool) {
	if prevPos == lexicon.RootPos || pos == lexicon.RootPos {
		return 0, false
	}
	key := int64(prevPos)<<32 | int64(uint32(pos))
	if prob, ok := s.bigramCache[key]; ok {
		if prob < 0 {
			return 0, false
		}
		return prob, true
	}
	prob, ok := s.lexicon.BigramProbability(prevPos, pos)
	if !ok {
		s.bigramCache[key] = -1
		return 0, false
	}
	s.bigramCache[key] = prob
	return prob, true
}
