package decoder

// DicNodesCache is the frontier of the beam search: the hypotheses to
// expand at the current input step, the ones scheduled for the next step,
// the completed word candidates, and the continue buffer that continuous
// search restarts from. Exactly one session owns a cache.
type DicNodesCache struct {
	active     *dicNodePriorityQueue
	nextActive *dicNodePriorityQueue
	terminals  *dicNodePriorityQueue
	cached     *dicNodePriorityQueue

	inputIndex           int
	lastCachedInputIndex int
}

// NewDicNodesCache returns an empty cache; Reset sizes the queues.
func NewDicNodesCache() *DicNodesCache {
	return &DicNodesCache{
		active:     newDicNodePriorityQueue(0),
		nextActive: newDicNodePriorityQueue(0),
		terminals:  newDicNodePriorityQueue(0),
		cached:     newDicNodePriorityQueue(LookaheadDicNodesCacheSize),
	}
}

// Reset clears all frontiers and installs the capacities for this decode.
func (c *DicNodesCache) Reset(maxActiveSize, maxTerminalSize int) {
	c.active = newDicNodePriorityQueue(maxActiveSize)
	c.nextActive = newDicNodePriorityQueue(maxActiveSize)
	c.terminals = newDicNodePriorityQueue(maxTerminalSize)
	c.cached = newDicNodePriorityQueue(LookaheadDicNodesCacheSize)
	c.inputIndex = 0
	c.lastCachedInputIndex = 0
}

// CopyPushActive copies a node into the current-step frontier.
func (c *DicNodesCache) CopyPushActive(n *DicNode) bool {
	return c.active.CopyPush(n)
}

// CopyPushNextActive copies a node into the next-step frontier.
func (c *DicNodesCache) CopyPushNextActive(n *DicNode) bool {
	return c.nextActive.CopyPush(n)
}

// CopyPushTerminal copies a completed word candidate.
func (c *DicNodesCache) CopyPushTerminal(n *DicNode) bool {
	return c.terminals.CopyPush(n)
}

// CopyPushContinue snapshots a node for continuous-search reuse.
func (c *DicNodesCache) CopyPushContinue(n *DicNode) bool {
	return c.cached.CopyPush(n)
}

// PopActive extracts the best node to expand.
func (c *DicNodesCache) PopActive(out *DicNode) bool {
	return c.active.PopBest(out)
}

// PopTerminal extracts the best completed candidate.
func (c *DicNodesCache) PopTerminal(out *DicNode) bool {
	return c.terminals.PopBest(out)
}

// ActiveSize returns the current-step frontier size.
func (c *DicNodesCache) ActiveSize() int { return c.active.Size() }

// TerminalSize returns the number of collected candidates.
func (c *DicNodesCache) TerminalSize() int { return c.terminals.Size() }

// AdvanceActiveDicNodes promotes the next-step frontier to current.
func (c *DicNodesCache) AdvanceActiveDicNodes() {
	c.active, c.nextActive = c.nextActive, c.active
	c.nextActive.Clear()
}

// AdvanceInputIndex records that one input step has been consumed; the
// index saturates at the input size so completion steps do not move it.
func (c *DicNodesCache) AdvanceInputIndex(inputSize int) {
	if c.inputIndex < inputSize {
		c.inputIndex++
	}
}

// InputIndex returns the number of consumed input steps.
func (c *DicNodesCache) InputIndex() int { return c.inputIndex }

// IsLookAheadCorrectionInputIndex reports whether i is the most recent
// input index; only nodes still sitting there may try insertion or
// transposition.
func (c *DicNodesCache) IsLookAheadCorrectionInputIndex(i int) bool {
	return i == c.inputIndex-1
}

// UpdateLastCachedInputIndex marks the current frontier as the restart
// point for continuous search and starts a fresh snapshot.
func (c *DicNodesCache) UpdateLastCachedInputIndex() {
	c.lastCachedInputIndex = c.inputIndex
	c.cached.Clear()
}

// ContinueSearch restores the active frontier from the snapshot taken at
// UpdateLastCachedInputIndex. Callers must have verified continuity via the
// session; terminals from the earlier decode are discarded.
func (c *DicNodesCache) ContinueSearch() {
	c.active.Clear()
	c.nextActive.Clear()
	c.terminals.Clear()
	var n DicNode
	for c.cached.PopBest(&n) {
		c.active.CopyPush(&n)
	}
	c.inputIndex = c.lastCachedInputIndex
}

// SetCommitPoint prunes snapshot hypotheses consumed at or before the
// commit point and returns the best survivor, whose previous-word position
// seeds the committed continuation. Returns nil when nothing survives.
func (c *DicNodesCache) SetCommitPoint(commitPoint int) *DicNode {
	c.cached.retain(func(n *DicNode) bool {
		return n.InputIndex() > commitPoint
	})
	return c.cached.PeekBest()
}
