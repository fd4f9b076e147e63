package decoder

import (
	"github.com/bastiangx/keyserve/pkg/lexicon"
)

// DicNode is one partial hypothesis of the beam: a cursor into the lexicon
// trie, the code points emitted so far, the consumed-input cursor, and the
// accumulated scoring state. Nodes are plain values; pushing one into a
// queue copies the whole body, which is the ownership model the frontier
// relies on.
type DicNode struct {
	pos           int32 // current trie position, lexicon.RootPos at a word start
	prevWordPos   int32 // terminal position of the previous word in the chain
	attributesPos int32 // terminal position for shortcut/blacklist lookup

	probability    int
	isTerminalNode bool
	hasChildren    bool

	output    [MaxWordLength]rune
	outputLen int16
	wordStart int16 // where the in-progress word begins in output

	spaceIndices  [MaxSpaceIndices]int16 // input indices where words ended
	prevWordCount int8
	inputIndex    int16
	isCached      bool

	scoring ScoringState
}

// Scoring exposes the cost accumulator for weighting updates.
func (n *DicNode) Scoring() *ScoringState {
	return &n.scoring
}

// InitAsRoot seeds a fresh hypothesis at the trie root.
func (n *DicNode) InitAsRoot(prevWordPos int32) {
	*n = DicNode{
		pos:           lexicon.RootPos,
		prevWordPos:   prevWordPos,
		attributesPos: lexicon.RootPos,
	}
}

// InitAsRootWithPreviousWord starts the next word of a multi-word
// hypothesis: the completed word becomes the previous word, a space is
// appended to the output, and scoring carries over.
func (n *DicNode) InitAsRootWithPreviousWord(prev *DicNode) {
	*n = *prev
	n.pos = lexicon.RootPos
	n.prevWordPos = prev.pos
	n.attributesPos = lexicon.RootPos
	n.probability = 0
	n.isTerminalNode = false
	n.hasChildren = true
	n.isCached = false
	if n.outputLen < MaxWordLength {
		n.output[n.outputLen] = ' '
		n.outputLen++
	}
	if n.prevWordCount < MaxSpaceIndices {
		n.spaceIndices[n.prevWordCount] = prev.inputIndex
	}
	n.prevWordCount++
	n.wordStart = n.outputLen
}

// InitByCopy duplicates a hypothesis.
func (n *DicNode) InitByCopy(src *DicNode) {
	*n = *src
}

// InitAsChild descends one trie edge from parent.
func (n *DicNode) InitAsChild(parent *DicNode, childPos int32, lx *lexicon.Lexicon) {
	*n = *parent
	n.pos = childPos
	n.attributesPos = childPos
	n.probability = lx.Probability(childPos)
	n.isTerminalNode = lx.IsTerminal(childPos)
	n.hasChildren = lx.HasChildren(childPos)
	n.isCached = false
	if n.outputLen < MaxWordLength {
		n.output[n.outputLen] = lx.CodePoint(childPos)
		n.outputLen++
	}
}

// Pos returns the trie position.
func (n *DicNode) Pos() int32 { return n.pos }

// PrevWordPos returns the previous-word terminal position of the chain.
func (n *DicNode) PrevWordPos() int32 { return n.prevWordPos }

// AttributesPos returns the position used for shortcut/blacklist lookup.
func (n *DicNode) AttributesPos() int32 { return n.attributesPos }

// Probability returns the unigram probability at the current trie node.
func (n *DicNode) Probability() int { return n.probability }

// IsTerminalWordNode reports whether the cursor sits on an end-of-word.
func (n *DicNode) IsTerminalWordNode() bool { return n.isTerminalNode }

// HasChildren reports whether the trie descent can continue.
func (n *DicNode) HasChildren() bool { return n.hasChildren }

// InputIndex returns the number of consumed touch points.
func (n *DicNode) InputIndex() int { return int(n.inputIndex) }

// ForwardInputIndex advances the consumed-input cursor.
func (n *DicNode) ForwardInputIndex(count int) {
	n.inputIndex += int16(count)
}

// IsCompletion reports whether the input is exhausted while the trie
// descent continues.
func (n *DicNode) IsCompletion(inputSize int) bool {
	return int(n.inputIndex) >= inputSize
}

// CanDoLookAheadCorrection reports whether at least two touch points remain,
// which insertion and transposition need.
func (n *DicNode) CanDoLookAheadCorrection(inputSize int) bool {
	return int(n.inputIndex) < inputSize-1
}

// IsTotalInputSizeExceedingLimit reports a pathological hypothesis whose
// output no longer fits a result slot.
func (n *DicNode) IsTotalInputSizeExceedingLimit() bool {
	return int(n.outputLen) >= MaxWordLength-1
}

// NodeCodePoint returns the letter emitted by the current trie node, or 0
// at a word start.
func (n *DicNode) NodeCodePoint() rune {
	if n.outputLen == n.wordStart {
		return 0
	}
	return n.output[n.outputLen-1]
}

// PrevCodePoint returns the letter before the current one inside the
// in-progress word, or 0 at the first letter.
func (n *DicNode) PrevCodePoint() rune {
	if n.outputLen-n.wordStart < 2 {
		return 0
	}
	return n.output[n.outputLen-2]
}

// HasMultipleWords reports whether the chain holds completed words.
func (n *DicNode) HasMultipleWords() bool { return n.prevWordCount > 0 }

// PrevWordsCount returns the number of completed words in the chain.
func (n *DicNode) PrevWordsCount() int { return int(n.prevWordCount) }

// CurrentWordLen returns the length of the in-progress word.
func (n *DicNode) CurrentWordLen() int { return int(n.outputLen - n.wordStart) }

// IsZeroCostOmission reports whether the just-skipped letter is an
// intentional omission (apostrophes are typed rarely but meant).
func (n *DicNode) IsZeroCostOmission() bool {
	return n.NodeCodePoint() == '\''
}

// SetCached marks the node as snapshotted into the continue buffer.
func (n *DicNode) SetCached() { n.isCached = true }

// IsCached reports whether the node is part of a continuous-search snapshot.
func (n *DicNode) IsCached() bool { return n.isCached }

// ShouldBeFilteredBySafetyNetForBigram drops multi-word chains whose last
// word is a single letter; bigram scores make those look deceptively cheap.
func (n *DicNode) ShouldBeFilteredBySafetyNetForBigram() bool {
	return n.HasMultipleWords() && n.CurrentWordLen() < 2
}

// CompoundDistance applies the language weight to the accumulated state.
func (n *DicNode) CompoundDistance(languageWeight float32) float32 {
	return n.scoring.CompoundDistance(languageWeight)
}

// OutputResult writes the hypothesis code points into a result slot and
// returns the length. The slot is zero-terminated when space remains.
func (n *DicNode) OutputResult(out []int32) int {
	length := int(n.outputLen)
	if length > len(out) {
		length = len(out)
	}
	for i := 0; i < length; i++ {
		out[i] = int32(n.output[i])
	}
	if length < len(out) {
		out[length] = 0
	}
	return length
}

// OutputSpacePositionsResult writes the input indices at which chain words
// ended; unused slots get -1.
func (n *DicNode) OutputSpacePositionsResult(spaceIndices []int) {
	for i := range spaceIndices {
		spaceIndices[i] = -1
	}
	count := int(n.prevWordCount)
	if count > MaxSpaceIndices {
		count = MaxSpaceIndices
	}
	for i := 0; i < count && i < len(spaceIndices); i++ {
		spaceIndices[i] = int(n.spaceIndices[i])
	}
}

// Word returns the full output as a string; diagnostics only.
func (n *DicNode) Word() string {
	return string(n.output[:n.outputLen])
}

// DicNodeVector is a reusable scratch list of child hypotheses.
type DicNodeVector struct {
	nodes []DicNode
}

// NewDicNodeVector pre-sizes the scratch list.
func NewDicNodeVector(capacity int) *DicNodeVector {
	return &DicNodeVector{nodes: make([]DicNode, 0, capacity)}
}

// Clear empties the list, keeping capacity.
func (v *DicNodeVector) Clear() {
	v.nodes = v.nodes[:0]
}

// Size returns the element count.
func (v *DicNodeVector) Size() int {
	return len(v.nodes)
}

// At returns a pointer into the list; valid until the next PushChild.
func (v *DicNodeVector) At(i int) *DicNode {
	return &v.nodes[i]
}

// PushChild appends a child hypothesis of parent.
func (v *DicNodeVector) PushChild(parent *DicNode, childPos int32, lx *lexicon.Lexicon) {
	v.nodes = append(v.nodes, DicNode{})
	v.nodes[len(v.nodes)-1].InitAsChild(parent, childPos, lx)
}
