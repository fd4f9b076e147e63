package decoder

import (
	"testing"

	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
)

func TestForwardInputCountPerKind(t *testing.T) {
	cases := []struct {
		name string
		ct   CorrectionType
		want int
	}{
		{"match", CTMatch, 1},
		{"additional proximity", CTAdditionalProximity, 1},
		{"substitution", CTSubstitution, 1},
		{"space substitution", CTSpaceSubstitution, 1},
		{"insertion skips and consumes", CTInsertion, 2},
		{"transposition second child", CTTransposition, 2},
		{"omission", CTOmission, 0},
		{"completion", CTCompletion, 0},
		{"new word", CTNewWord, 0},
		{"terminal", CTTerminal, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := forwardInputCount(tc.ct); got != tc.want {
				t.Errorf("forwardInputCount(%v) = %d, want %d", tc.ct, got, tc.want)
			}
		})
	}
}

func TestEditCorrectionKinds(t *testing.T) {
	edits := []CorrectionType{CTOmission, CTInsertion, CTTransposition, CTSubstitution, CTAdditionalProximity}
	for _, ct := range edits {
		if !isEditCorrection(ct) {
			t.Errorf("%v must count as an edit correction", ct)
		}
	}
	nonEdits := []CorrectionType{CTMatch, CTCompletion, CTNewWord, CTTerminal, CTSpaceSubstitution}
	for _, ct := range nonEdits {
		if isEditCorrection(ct) {
			t.Errorf("%v must not count as an edit correction", ct)
		}
	}
}

func weightingSession(t *testing.T, word string) (*Session, *lexicon.Lexicon) {
	t.Helper()
	lx := lexicon.New()
	lx.AddWord("ab", 120)
	layout := keyboard.Qwerty()
	s := NewSession(lx)

	var xs, ys, times, ids []int
	var cps []rune
	for i, cp := range word {
		x, y, ok := layout.KeyCenter(cp)
		if !ok {
			t.Fatalf("no key for %q", cp)
		}
		xs, ys = append(xs, x), append(ys, y)
		times, ids = append(times, i*120), append(ids, 0)
		cps = append(cps, cp)
	}
	s.Setup(layout, cps, len(word), xs, ys, times, ids, 1, 1)
	return s, lx
}

func TestMatchAdvancesChildByOne(t *testing.T) {
	s, lx := weightingSession(t, "ab")
	w := NewTypingWeighting()

	var root DicNode
	root.InitAsRoot(lexicon.RootPos)
	vec := NewDicNodeVector(4)
	getAllChildDicNodes(&root, lx, vec)
	if vec.Size() != 1 {
		t.Fatalf("expected one root child, got %d", vec.Size())
	}
	child := vec.At(0)

	AddCostAndForwardInputIndex(w, CTMatch, s, &root, child)
	if child.InputIndex() != root.InputIndex()+1 {
		t.Errorf("match child input index = %d, want parent+1", child.InputIndex())
	}
	if child.Scoring().SpatialDistance() < 0 {
		t.Error("spatial distance must stay non-negative")
	}
	if child.Scoring().EditCorrectionCount() != 0 {
		t.Error("an exact match is not an edit correction")
	}
}

func TestSubstitutionCountsAsEdit(t *testing.T) {
	s, lx := weightingSession(t, "ab")
	w := NewTypingWeighting()

	var root DicNode
	root.InitAsRoot(lexicon.RootPos)
	vec := NewDicNodeVector(4)
	getAllChildDicNodes(&root, lx, vec)
	child := vec.At(0)

	AddCostAndForwardInputIndex(w, CTSubstitution, s, &root, child)
	if child.Scoring().EditCorrectionCount() != 1 {
		t.Errorf("edit count = %d, want 1", child.Scoring().EditCorrectionCount())
	}
	if child.InputIndex() != 1 {
		t.Errorf("substitution child input index = %d, want 1", child.InputIndex())
	}
}

func TestEditBudgetPrunes(t *testing.T) {
	s, lx := weightingSession(t, "ab")
	w := NewTypingWeighting()

	var root DicNode
	root.InitAsRoot(lexicon.RootPos)
	vec := NewDicNodeVector(4)
	getAllChildDicNodes(&root, lx, vec)
	child := vec.At(0)

	for i := 0; i <= maxEditCorrectionCount; i++ {
		AddCostAndForwardInputIndex(w, CTOmission, s, &root, child)
	}
	if child.Scoring().CompoundDistance(1) < MaxWeight {
		t.Error("exceeding the edit budget must prune the hypothesis")
	}
}

func TestProximityMatchCountsProximityCorrection(t *testing.T) {
	// Typing 'a' while descending the 's' edge: s is adjacent to a, so the
	// match path applies with a proximity surcharge.
	lx := lexicon.New()
	lx.AddWord("s", 120)
	layout := keyboard.Qwerty()
	s := NewSession(lx)
	x, y, _ := layout.KeyCenter('a')
	s.Setup(layout, []rune{'a'}, 1, []int{x}, []int{y}, []int{0}, []int{0}, 1, 1)

	var root DicNode
	root.InitAsRoot(lexicon.RootPos)
	vec := NewDicNodeVector(4)
	getAllChildDicNodes(&root, lx, vec)
	child := vec.At(0)

	w := NewTypingWeighting()
	AddCostAndForwardInputIndex(w, CTMatch, s, &root, child)
	if child.Scoring().ProximityCorrectionCount() != 1 {
		t.Errorf("proximity count = %d, want 1", child.Scoring().ProximityCorrectionCount())
	}
	if child.Scoring().SpatialDistance() <= 0 {
		t.Error("a near miss must cost spatial distance")
	}
}
