/*
Package decoder implements the input-to-word beam search over a lexicon
trie.

Given the touch points of a soft keyboard and a lexicon with unigram and
bigram scores, the decoder expands a frontier of partial hypotheses (dic
nodes) across the trie, applying error-correction operators (omission,
insertion, transposition, substitution, space handling) with costs from a
weighting table, and emits a ranked list of candidate words or multi-word
sequences. Queue ordering uses the normalized compound distance, spatial
plus language cost divided by consumed input, which keeps hypotheses of
different depths comparable.

The driver is deliberately policy-free: traversal rules, the weighting
table and the scoring model are injected values, with tap-typing
implementations shipped in this package.
*/
package decoder

import (
	"sort"

	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
)

// TouchPoint is one input event as hosts deliver it.
type TouchPoint struct {
	X, Y      int
	Time      int
	PointerID int
	CodePoint rune
}

// Suggestion is a decoded candidate for host surfaces that prefer strings
// over the flat output buffers.
type Suggestion struct {
	Word  string
	Score int
	Kind  int
}

// Suggest drives the beam search. One Suggest value is reusable across
// sessions and decode calls; it holds no per-call state.
type Suggest struct {
	traversal Traversal
	scoring   Scoring
	weighting Weighting

	correctTransposition bool
	correctInsertion     bool
}

// NewSuggest builds a driver from explicit policies.
func NewSuggest(t Traversal, sc Scoring, w Weighting) *Suggest {
	return &Suggest{
		traversal:            t,
		scoring:              sc,
		weighting:            w,
		correctTransposition: true,
		correctInsertion:     true,
	}
}

// NewTypingSuggest builds the driver with the shipped tap-typing policies.
func NewTypingSuggest(opts TypingOptions) *Suggest {
	return NewSuggest(NewTypingTraversal(opts), NewTypingScoring(), NewTypingWeighting())
}

// GetSuggestions decodes one input and writes the ranked results into the
// caller-provided flat buffers: outWords holds MaxResults slots of
// MaxWordLength code points each, frequencies and outputTypes one entry per
// slot, spaceIndices the word boundaries of the top slot under partial
// commit. Returns the number of suggestions written. The decoder never
// fails; degraded input yields fewer or zero suggestions.
func (sg *Suggest) GetSuggestions(s *Session, proximity *keyboard.Layout,
	xs, ys, times, pointerIDs []int, codePoints []rune, inputSize, commitPoint int,
	outWords []int32, frequencies []int, spaceIndices []int, outputTypes []int) int {
	if inputSize <= 0 || inputSize > len(xs) || inputSize > len(ys) {
		return 0
	}
	if len(outWords) < MaxResults*MaxWordLength || len(frequencies) < MaxResults ||
		len(outputTypes) < MaxResults {
		return 0
	}
	s.Setup(proximity, codePoints, inputSize, xs, ys, times, pointerIDs,
		sg.traversal.MaxSpatialDistance(), sg.traversal.MaxPointerCount())

	if !sg.initializeSearch(s, commitPoint) {
		return 0
	}

	// Keep expanding search dic nodes until all have terminated.
	cache := s.GetDicTraverseCache()
	for cache.ActiveSize() > 0 {
		sg.expandCurrentDicNodes(s)
		cache.AdvanceActiveDicNodes()
		cache.AdvanceInputIndex(inputSize)
	}
	return sg.outputSuggestions(s, frequencies, outWords, spaceIndices, outputTypes)
}

// DecodeWords is the string-typed convenience wrapper used by the CLI and
// IPC surfaces.
func (sg *Suggest) DecodeWords(s *Session, proximity *keyboard.Layout,
	points []TouchPoint, commitPoint int) []Suggestion {
	inputSize := len(points)
	xs := make([]int, inputSize)
	ys := make([]int, inputSize)
	times := make([]int, inputSize)
	pointerIDs := make([]int, inputSize)
	codePoints := make([]rune, inputSize)
	for i, p := range points {
		xs[i], ys[i], times[i], pointerIDs[i], codePoints[i] = p.X, p.Y, p.Time, p.PointerID, p.CodePoint
	}

	outWords := make([]int32, MaxResults*MaxWordLength)
	frequencies := make([]int, MaxResults)
	spaceIndices := make([]int, MaxSpaceIndices)
	outputTypes := make([]int, MaxResults)

	count := sg.GetSuggestions(s, proximity, xs, ys, times, pointerIDs, codePoints,
		inputSize, commitPoint, outWords, frequencies, spaceIndices, outputTypes)

	results := make([]Suggestion, 0, count)
	for k := 0; k < count; k++ {
		start := k * MaxWordLength
		var runes []rune
		for _, cp := range outWords[start : start+MaxWordLength] {
			if cp == 0 {
				break
			}
			runes = append(runes, rune(cp))
		}
		results = append(results, Suggestion{
			Word:  string(runes),
			Score: frequencies[k],
			Kind:  outputTypes[k],
		})
	}
	return results
}

// initializeSearch seeds the frontier at the trie root, or resumes from the
// previous call's snapshot when the new input strictly extends it.
func (sg *Suggest) initializeSearch(s *Session, commitPoint int) bool {
	st := s.PointState(0)
	if st == nil || !st.IsUsed() {
		return false
	}
	if !sg.traversal.AllowPartialCommit() {
		commitPoint = 0
	}
	cache := s.GetDicTraverseCache()

	if s.InputSize() > MinContinuousSuggestionInputSize && s.IsContinuousSuggestionPossible() {
		if commitPoint == 0 {
			// Continue suggestion.
			cache.ContinueSearch()
		} else {
			// Continue suggestion after partial commit.
			if top := cache.SetCommitPoint(commitPoint); top != nil {
				s.SetPrevWordPos(top.PrevWordPos())
			}
			cache.ContinueSearch()
			s.SetPartiallyCommitted()
		}
		return true
	}

	// Restart recognition at the root.
	s.ResetCache(sg.traversal.MaxCacheSize(s.InputSize()), MaxResults)
	var root DicNode
	root.InitAsRoot(s.PrevWordPos())
	cache.CopyPushActive(&root)
	return true
}

// expandCurrentDicNodes drains the active frontier, generating successors
// through the trie children and the error-correction operators.
func (sg *Suggest) expandCurrentDicNodes(s *Session) {
	inputSize := s.InputSize()
	cache := s.GetDicTraverseCache()
	childDicNodes := NewDicNodeVector(sg.traversal.DefaultExpandDicNodeSize())
	var dicNode, omissionDicNode DicNode

	shouldDepthLevelCache := sg.traversal.ShouldDepthLevelCache(s)
	if shouldDepthLevelCache {
		cache.UpdateLastCachedInputIndex()
	}

	for cache.PopActive(&dicNode) {
		if dicNode.IsTotalInputSizeExceedingLimit() {
			return
		}
		childDicNodes.Clear()
		point0Index := dicNode.InputIndex()
		canDoLookAheadCorrection := sg.traversal.CanDoLookAheadCorrection(s, &dicNode)
		isLookAheadCorrection := canDoLookAheadCorrection &&
			cache.IsLookAheadCorrectionInputIndex(point0Index)
		isCompletion := dicNode.IsCompletion(inputSize)

		if shouldDepthLevelCache || sg.traversal.ShouldNodeLevelCache(s, &dicNode) {
			cache.CopyPushContinue(&dicNode)
			dicNode.SetCached()
		}

		if isLookAheadCorrection {
			// Deferred nodes that have not consumed the latest touch point
			// yet; insertion and transposition need that point untouched.
			if sg.correctTransposition {
				sg.processDicNodeAsTransposition(s, &dicNode)
			}
			if sg.correctInsertion {
				sg.processDicNodeAsInsertion(s, &dicNode)
			}
			continue
		}

		allowsErrorCorrections := sg.traversal.AllowsErrorCorrections(&dicNode)

		// Space substitution spawns the next word (e.g., hevis => he is).
		if allowsErrorCorrections && sg.traversal.IsSpaceSubstitutionTerminal(s, &dicNode) {
			sg.createNextWordDicNode(s, &dicNode, true)
		}

		getAllChildDicNodes(&dicNode, s.Lexicon(), childDicNodes)
		for i := 0; i < childDicNodes.Size(); i++ {
			childDicNode := childDicNodes.At(i)
			if isCompletion {
				// The lexicon letter is past the typed input.
				sg.processDicNodeAsMatch(s, childDicNode)
				continue
			}
			if allowsErrorCorrections && sg.traversal.IsOmission(s, &dicNode, childDicNode) {
				omissionDicNode.InitByCopy(childDicNode)
				sg.processDicNodeAsOmission(s, &omissionDicNode)
			}
			switch sg.traversal.GetProximityType(s, &dicNode, childDicNode) {
			case keyboard.MatchChar, keyboard.ProximityChar:
				sg.processDicNodeAsMatch(s, childDicNode)
			case keyboard.AdditionalProximityChar:
				if allowsErrorCorrections {
					sg.processDicNodeAsAdditionalProximityChar(s, &dicNode, childDicNode)
				}
			case keyboard.SubstitutionChar:
				if allowsErrorCorrections {
					sg.processDicNodeAsSubstitution(s, &dicNode, childDicNode)
				}
			case keyboard.UnrelatedChar:
				// Just drop this node and do nothing.
			}
		}

		// Keep the node at its input index as a look-ahead anchor for the
		// next step.
		if allowsErrorCorrections && canDoLookAheadCorrection {
			cache.CopyPushNextActive(&dicNode)
		}
	}
}

// processTerminalDicNode collects a completed word candidate, charging the
// terminal weighting on a copy so the live node keeps descending.
func (sg *Suggest) processTerminalDicNode(s *Session, dicNode *DicNode) {
	if dicNode.Scoring().CompoundDistance(1) >= MaxWeight {
		return
	}
	if !dicNode.IsTerminalWordNode() {
		return
	}
	if sg.traversal.NeedsToTraverseAllUserInput() && dicNode.InputIndex() < s.InputSize() {
		return
	}
	if dicNode.ShouldBeFilteredBySafetyNetForBigram() {
		return
	}
	var terminal DicNode
	terminal.InitByCopy(dicNode)
	AddCostAndForwardInputIndex(sg.weighting, CTTerminal, s, nil, &terminal)
	s.GetDicTraverseCache().CopyPushTerminal(&terminal)
}

// processExpandedDicNode routes a freshly weighted child: collect it as a
// terminal if it completes a word, spawn a space-omission continuation, and
// schedule further descent.
func (sg *Suggest) processExpandedDicNode(s *Session, dicNode *DicNode) {
	sg.processTerminalDicNode(s, dicNode)
	if dicNode.Scoring().CompoundDistance(1) < MaxWeight {
		if sg.traversal.IsSpaceOmissionTerminal(s, dicNode) {
			sg.createNextWordDicNode(s, dicNode, false)
		}
		allowsLookAhead := !(dicNode.HasMultipleWords() && dicNode.IsCompletion(s.InputSize()))
		if dicNode.HasChildren() && allowsLookAhead {
			s.GetDicTraverseCache().CopyPushNextActive(dicNode)
		}
	}
}

func (sg *Suggest) processDicNodeAsMatch(s *Session, childDicNode *DicNode) {
	sg.weightChildNode(s, childDicNode)
	sg.processExpandedDicNode(s, childDicNode)
}

func (sg *Suggest) processDicNodeAsAdditionalProximityChar(s *Session, dicNode, childDicNode *DicNode) {
	AddCostAndForwardInputIndex(sg.weighting, CTAdditionalProximity, s, dicNode, childDicNode)
	sg.processExpandedDicNode(s, childDicNode)
}

func (sg *Suggest) processDicNodeAsSubstitution(s *Session, dicNode, childDicNode *DicNode) {
	AddCostAndForwardInputIndex(sg.weighting, CTSubstitution, s, dicNode, childDicNode)
	sg.processExpandedDicNode(s, childDicNode)
}

// processDicNodeAsOmission skips the current trie letter (e.g., ths =>
// this) and considers matches for all possible next letters. The next
// letter must line up with the current touch point or the beam floods with
// skip hypotheses; apostrophes pass at zero cost.
func (sg *Suggest) processDicNodeAsOmission(s *Session, dicNode *DicNode) {
	isZeroCostOmission := dicNode.IsZeroCostOmission()
	childDicNodes := NewDicNodeVector(sg.traversal.DefaultExpandDicNodeSize())
	getAllChildDicNodes(dicNode, s.Lexicon(), childDicNodes)

	for i := 0; i < childDicNodes.Size(); i++ {
		childDicNode := childDicNodes.At(i)
		if !isZeroCostOmission {
			AddCostAndForwardInputIndex(sg.weighting, CTOmission, s, dicNode, childDicNode)
		}
		sg.weightChildNode(s, childDicNode)

		if !sg.traversal.IsPossibleOmissionChildNode(s, dicNode, childDicNode) {
			continue
		}
		sg.processExpandedDicNode(s, childDicNode)
	}
}

// processDicNodeAsInsertion skips the current touch point (e.g., thiis =>
// this) and matches the child letter against the following point.
func (sg *Suggest) processDicNodeAsInsertion(s *Session, dicNode *DicNode) {
	pointIndex := dicNode.InputIndex()
	childDicNodes := NewDicNodeVector(sg.traversal.DefaultExpandDicNodeSize())
	getProximityChildDicNodes(dicNode, s, pointIndex+1, true, childDicNodes)
	for i := 0; i < childDicNodes.Size(); i++ {
		childDicNode := childDicNodes.At(i)
		AddCostAndForwardInputIndex(sg.weighting, CTInsertion, s, dicNode, childDicNode)
		sg.processExpandedDicNode(s, childDicNode)
	}
}

// processDicNodeAsTransposition swaps the next two touch points (e.g., thsi
// => this): the first-level child matches the later point, its children the
// earlier one.
func (sg *Suggest) processDicNodeAsTransposition(s *Session, dicNode *DicNode) {
	pointIndex := dicNode.InputIndex()
	childDicNodes1 := NewDicNodeVector(sg.traversal.DefaultExpandDicNodeSize())
	getProximityChildDicNodes(dicNode, s, pointIndex+1, false, childDicNodes1)
	for i := 0; i < childDicNodes1.Size(); i++ {
		firstChild := childDicNodes1.At(i)
		if !firstChild.HasChildren() {
			continue
		}
		childDicNodes2 := NewDicNodeVector(sg.traversal.DefaultExpandDicNodeSize())
		getProximityChildDicNodes(firstChild, s, pointIndex, false, childDicNodes2)
		for j := 0; j < childDicNodes2.Size(); j++ {
			childDicNode2 := childDicNodes2.At(j)
			AddCostAndForwardInputIndex(sg.weighting, CTTransposition, s, firstChild, childDicNode2)
			sg.processExpandedDicNode(s, childDicNode2)
		}
	}
}

// weightChildNode aligns the child to the touch point it consumes, or
// charges the completion cost once the input is exhausted.
func (sg *Suggest) weightChildNode(s *Session, dicNode *DicNode) {
	if dicNode.IsCompletion(s.InputSize()) {
		AddCostAndForwardInputIndex(sg.weighting, CTCompletion, s, nil, dicNode)
	} else {
		AddCostAndForwardInputIndex(sg.weighting, CTMatch, s, nil, dicNode)
	}
}

// createNextWordDicNode spawns the next word of a multi-word hypothesis at
// the trie root, folding the ending word's language score in. A space
// substitution additionally consumes the mistyped space point.
func (sg *Suggest) createNextWordDicNode(s *Session, dicNode *DicNode, spaceSubstitution bool) {
	if !sg.traversal.IsGoodToTraverseNextWord(s, dicNode) {
		return
	}
	var newDicNode DicNode
	newDicNode.InitAsRootWithPreviousWord(dicNode)
	AddCostAndForwardInputIndex(sg.weighting, CTNewWord, s, dicNode, &newDicNode)
	if spaceSubstitution {
		AddCostAndForwardInputIndex(sg.weighting, CTSpaceSubstitution, s, nil, &newDicNode)
	}
	s.GetDicTraverseCache().CopyPushNextActive(&newDicNode)
}

// outputSuggestions drains the terminal queue into the output buffers in
// final-score order.
func (sg *Suggest) outputSuggestions(s *Session, frequencies []int,
	outputCodePoints []int32, spaceIndices []int, outputTypes []int) int {
	cache := s.GetDicTraverseCache()
	terminalSize := cache.TerminalSize()
	if terminalSize > MaxResults {
		terminalSize = MaxResults
	}
	terminals := make([]DicNode, terminalSize)
	for index := 0; index < terminalSize; index++ {
		cache.PopTerminal(&terminals[index])
	}

	languageWeight := sg.scoring.AdjustedLanguageWeight(s, terminals)

	outputWordIndex := 0
	// Insert the most probable word at index 0 as long as there is at
	// least one terminal.
	hasMostProbableString := terminalSize > 0 && sg.scoring.MostProbableString(
		s, terminals, languageWeight,
		outputCodePoints[:MaxWordLength], &outputTypes[0], &frequencies[0])
	if hasMostProbableString {
		outputWordIndex++
	}

	doubleLetterTerminalIndex, doubleLetterLevel := sg.scoring.SearchWordWithDoubleLetter(terminals)

	// First pass: score every terminal, then emit in non-increasing
	// final-score order (drain order only approximates it once the language
	// weight or a double-letter demotion kicks in).
	type scoredTerminal struct {
		index      int
		finalScore int
		isValid    bool
	}
	scored := make([]scoredTerminal, 0, terminalSize)
	maxScore := 0
	for terminalIndex := 0; terminalIndex < terminalSize; terminalIndex++ {
		terminalDicNode := &terminals[terminalIndex]
		doubleLetterCost := sg.scoring.DoubleLetterDemotionDistanceCost(
			terminalIndex, doubleLetterTerminalIndex, doubleLetterLevel)
		compoundDistance := terminalDicNode.CompoundDistance(languageWeight) + doubleLetterCost

		// Entries with no probability, blacklisted ones and non-words are
		// withheld; their shortcuts still go out.
		isValidWord := terminalDicNode.Probability() > 0 &&
			!s.Lexicon().IsBlacklistedOrNotAWord(terminalDicNode.AttributesPos())

		// Force autocorrection for obvious long multi-word suggestions.
		isForceCommitMultiWords := sg.traversal.AllowPartialCommit() &&
			(s.IsPartiallyCommitted() ||
				(s.InputSize() >= MinLenForMultiWordAutocorrect && terminalDicNode.HasMultipleWords()))

		finalScore := sg.scoring.CalculateFinalScore(compoundDistance, s.InputSize(),
			isForceCommitMultiWords || (isValidWord && sg.scoring.DoesAutoCorrectValidWord()))
		if finalScore > maxScore {
			maxScore = finalScore
		}
		scored = append(scored, scoredTerminal{terminalIndex, finalScore, isValidWord})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].finalScore > scored[j].finalScore
	})

	for _, st := range scored {
		if outputWordIndex >= MaxResults {
			break
		}
		terminalDicNode := &terminals[st.index]
		attributesPos := terminalDicNode.AttributesPos()

		if sg.traversal.AllowPartialCommit() && st.isValid && outputWordIndex == 0 {
			terminalDicNode.OutputSpacePositionsResult(spaceIndices)
		}

		if st.isValid {
			outputTypes[outputWordIndex] = KindCorrection
			frequencies[outputWordIndex] = st.finalScore
			start := outputWordIndex * MaxWordLength
			terminalDicNode.OutputResult(outputCodePoints[start : start+MaxWordLength])
			outputWordIndex++
		}

		sameAsTyped := sg.traversal.SameAsTyped(s, terminalDicNode)
		outputWordIndex = outputShortcuts(s.Lexicon(), attributesPos, outputWordIndex,
			st.finalScore, outputCodePoints, frequencies, outputTypes, sameAsTyped)
	}

	if hasMostProbableString {
		sg.scoring.SafetyNetForMostProbableString(maxScore, &frequencies[0])
	}
	return outputWordIndex
}

// outputShortcuts appends the shortcut targets of a terminal. A whitelist
// shortcut of the word typed exactly outranks the base word so the host
// applies the expansion.
func outputShortcuts(lx *lexicon.Lexicon, attributesPos int32, outputWordIndex, finalScore int,
	outputCodePoints []int32, frequencies []int, outputTypes []int, sameAsTyped bool) int {
	for _, shortcut := range lx.Shortcuts(attributesPos) {
		if outputWordIndex >= MaxResults {
			break
		}
		kind := KindShortcut
		score := finalScore - 1
		if shortcut.Whitelist {
			kind = KindWhitelist
			if sameAsTyped {
				score = finalScore + 1
			}
		}
		if score < 0 {
			score = 0
		}
		outputTypes[outputWordIndex] = kind
		frequencies[outputWordIndex] = score
		start := outputWordIndex * MaxWordLength
		slot := outputCodePoints[start : start+MaxWordLength]
		length := 0
		for _, cp := range shortcut.Target {
			if length >= MaxWordLength {
				break
			}
			slot[length] = int32(cp)
			length++
		}
		if length < MaxWordLength {
			slot[length] = 0
		}
		outputWordIndex++
	}
	return outputWordIndex
}

// getAllChildDicNodes fetches every trie child of the node.
func getAllChildDicNodes(n *DicNode, lx *lexicon.Lexicon, out *DicNodeVector) {
	for _, childPos := range lx.Children(n.Pos()) {
		out.PushChild(n, childPos, lx)
	}
}

// getProximityChildDicNodes fetches the children whose letter lies within
// proximity of the given touch point. excludeSameChar drops the child
// repeating the node's own letter, which insertion handles via the match
// path instead.
func getProximityChildDicNodes(n *DicNode, s *Session, pointIndex int,
	excludeSameChar bool, out *DicNodeVector) {
	st := s.PointState(pointIndex)
	if st == nil {
		return
	}
	lx := s.Lexicon()
	for _, childPos := range lx.Children(n.Pos()) {
		cp := lx.CodePoint(childPos)
		if excludeSameChar && cp == n.NodeCodePoint() {
			continue
		}
		switch s.Proximity().ProximityTypeFor(st, cp) {
		case keyboard.MatchChar, keyboard.ProximityChar:
			out.PushChild(n, childPos, lx)
		}
	}
}
