/*
Package lexicon implements the in-memory trie dictionary consumed by the
decoder.

Nodes live in a flat arena and are addressed by position, so a traversal
hypothesis can carry a node position and a previous-word position as plain
integers. Terminals carry a unigram probability on the 0..255 scale plus
attribute flags (blacklisted, not-a-word) and optional shortcut targets.
Bigrams are keyed by the terminal positions of both words.

A patricia trie indexes full words back to their terminal positions; the
decoder uses it to seed the previous-word position for bigram scoring.
*/
package lexicon

import (
	"github.com/tchap/go-patricia/v2/patricia"
)

// RootPos addresses the (virtual) root of the trie.
const RootPos int32 = -1

// MaxProbability is the top of the unigram/bigram probability scale.
const MaxProbability = 255

// Shortcut maps a terminal to an additional suggested string.
type Shortcut struct {
	Target      string
	Probability int
	Whitelist   bool
}

type node struct {
	codePoint   rune
	parent      int32
	children    []int32
	probability int
	terminal    bool
	blacklisted bool
	notAWord    bool
}

// Lexicon is the dictionary. It is immutable during decoding; mutations go
// through the builder methods and bump the generation counter so sessions
// can detect that continuous-search snapshots are stale.
type Lexicon struct {
	nodes      []node
	root       []int32
	words      *patricia.Trie
	bigrams    map[int64]int
	shortcuts  map[int32][]Shortcut
	generation uint64
}

// New returns an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		words:     patricia.NewTrie(),
		bigrams:   make(map[int64]int),
		shortcuts: make(map[int32][]Shortcut),
	}
}

// AddWord inserts a word with a unigram probability (clamped to 1..255).
// Adding an existing word updates its probability.
func (lx *Lexicon) AddWord(word string, probability int) {
	if word == "" {
		return
	}
	if probability < 1 {
		probability = 1
	}
	if probability > MaxProbability {
		probability = MaxProbability
	}

	pos := RootPos
	for _, cp := range word {
		pos = lx.childOrNew(pos, cp)
	}
	n := &lx.nodes[pos]
	n.terminal = true
	n.probability = probability
	lx.words.Set(patricia.Prefix(word), pos)
	lx.generation++
}

// AddBigram records a bigram probability for prev followed by next. Both
// words must already be in the lexicon.
func (lx *Lexicon) AddBigram(prev, next string, probability int) bool {
	prevPos, ok := lx.WordPos(prev)
	if !ok {
		return false
	}
	nextPos, ok := lx.WordPos(next)
	if !ok {
		return false
	}
	if probability > MaxProbability {
		probability = MaxProbability
	}
	lx.bigrams[bigramKey(prevPos, nextPos)] = probability
	lx.generation++
	return true
}

// AddShortcut attaches a shortcut target to an existing word.
func (lx *Lexicon) AddShortcut(word, target string, probability int, whitelist bool) bool {
	pos, ok := lx.WordPos(word)
	if !ok {
		return false
	}
	lx.shortcuts[pos] = append(lx.shortcuts[pos], Shortcut{
		Target:      target,
		Probability: probability,
		Whitelist:   whitelist,
	})
	lx.generation++
	return true
}

// SetBlacklisted marks a word as blacklisted; it is never suggested but its
// shortcuts still are.
func (lx *Lexicon) SetBlacklisted(word string, blacklisted bool) bool {
	return lx.setFlag(word, func(n *node) { n.blacklisted = blacklisted })
}

// SetNotAWord marks a terminal that exists only to carry shortcuts.
func (lx *Lexicon) SetNotAWord(word string, notAWord bool) bool {
	return lx.setFlag(word, func(n *node) { n.notAWord = notAWord })
}

func (lx *Lexicon) setFlag(word string, apply func(*node)) bool {
	pos, ok := lx.WordPos(word)
	if !ok {
		return false
	}
	apply(&lx.nodes[pos])
	lx.generation++
	return true
}

func (lx *Lexicon) childOrNew(parent int32, cp rune) int32 {
	for _, c := range lx.childrenOf(parent) {
		if lx.nodes[c].codePoint == cp {
			return c
		}
	}
	pos := int32(len(lx.nodes))
	lx.nodes = append(lx.nodes, node{codePoint: cp, parent: parent})
	if parent == RootPos {
		lx.root = append(lx.root, pos)
	} else {
		lx.nodes[parent].children = append(lx.nodes[parent].children, pos)
	}
	return pos
}

func (lx *Lexicon) childrenOf(pos int32) []int32 {
	if pos == RootPos {
		return lx.root
	}
	return lx.nodes[pos].children
}

// Children returns the child positions of a node (RootPos for the root).
// The returned slice is owned by the lexicon; callers must not mutate it.
func (lx *Lexicon) Children(pos int32) []int32 {
	return lx.childrenOf(pos)
}

// CodePoint returns the letter stored at a position.
func (lx *Lexicon) CodePoint(pos int32) rune {
	return lx.nodes[pos].codePoint
}

// IsTerminal reports whether the position ends a word.
func (lx *Lexicon) IsTerminal(pos int32) bool {
	return pos != RootPos && lx.nodes[pos].terminal
}

// HasChildren reports whether the position has any descent left.
func (lx *Lexicon) HasChildren(pos int32) bool {
	return len(lx.childrenOf(pos)) > 0
}

// Probability returns the unigram probability at a terminal, 0 otherwise.
func (lx *Lexicon) Probability(pos int32) int {
	if pos == RootPos || !lx.nodes[pos].terminal {
		return 0
	}
	return lx.nodes[pos].probability
}

// BigramProbability returns the bigram probability for the word at pos
// following the word at prevPos. ok is false when no bigram is recorded.
func (lx *Lexicon) BigramProbability(prevPos, pos int32) (prob int, ok bool) {
	if prevPos == RootPos || pos == RootPos {
		return 0, false
	}
	prob, ok = lx.bigrams[bigramKey(prevPos, pos)]
	return prob, ok
}

// Shortcuts returns the shortcut list attached to a terminal, if any.
func (lx *Lexicon) Shortcuts(pos int32) []Shortcut {
	return lx.shortcuts[pos]
}

// IsBlacklistedOrNotAWord reports whether a terminal must be withheld from
// the suggestion list (its shortcuts are still emitted).
func (lx *Lexicon) IsBlacklistedOrNotAWord(pos int32) bool {
	if pos == RootPos {
		return false
	}
	n := &lx.nodes[pos]
	return n.blacklisted || n.notAWord
}

// WordPos resolves a full word to its terminal position.
func (lx *Lexicon) WordPos(word string) (int32, bool) {
	item := lx.words.Get(patricia.Prefix(word))
	if item == nil {
		return RootPos, false
	}
	return item.(int32), true
}

// WordAt reconstructs the word ending at a terminal position by walking the
// parent chain. Intended for diagnostics and host surfaces, not the decode
// hot path.
func (lx *Lexicon) WordAt(pos int32) string {
	if pos == RootPos {
		return ""
	}
	var reversed []rune
	for p := pos; p != RootPos; p = lx.nodes[p].parent {
		reversed = append(reversed, lx.nodes[p].codePoint)
	}
	runes := make([]rune, len(reversed))
	for i, cp := range reversed {
		runes[len(reversed)-1-i] = cp
	}
	return string(runes)
}

// WordCount returns the number of terminals.
func (lx *Lexicon) WordCount() int {
	count := 0
	for i := range lx.nodes {
		if lx.nodes[i].terminal {
			count++
		}
	}
	return count
}

// Generation identifies the mutation state of the lexicon. Sessions compare
// generations to decide whether a continuous-search snapshot is still valid.
func (lx *Lexicon) Generation() uint64 {
	return lx.generation
}

func bigramKey(prevPos, pos int32) int64 {
	return int64(prevPos)<<32 | int64(uint32(pos))
}
