package decoder

import (
	"reflect"
	"strings"
	"testing"

	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
)

// Tests drive the full beam search over a tiny lexicon on a QWERTY layout,
// with touch points synthesized at key centers.

func testLexicon() *lexicon.Lexicon {
	lx := lexicon.New()
	lx.AddWord("this", 210)
	lx.AddWord("these", 180)
	lx.AddWord("is", 220)
	lx.AddWord("he", 200)
	return lx
}

func typePoints(t *testing.T, layout *keyboard.Layout, word string) []TouchPoint {
	t.Helper()
	var points []TouchPoint
	for i, cp := range strings.ToLower(word) {
		x, y, ok := layout.KeyCenter(cp)
		if !ok {
			t.Fatalf("no key for %q on layout", cp)
		}
		points = append(points, TouchPoint{X: x, Y: y, Time: i * 120, CodePoint: cp})
	}
	return points
}

func decodeWord(t *testing.T, word string) []Suggestion {
	t.Helper()
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(testLexicon())
	return sg.DecodeWords(session, layout, typePoints(t, layout, word), 0)
}

func hasWord(suggestions []Suggestion, word string) bool {
	for _, s := range suggestions {
		if s.Word == word {
			return true
		}
	}
	return false
}

func TestExactInput(t *testing.T) {
	suggestions := decodeWord(t, "this")
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions for exact input")
	}
	if suggestions[0].Word != "this" {
		t.Errorf("expected 'this' at index 0, got %q", suggestions[0].Word)
	}
	if suggestions[0].Kind != KindCorrection {
		t.Errorf("expected kind CORRECTION, got %d", suggestions[0].Kind)
	}
	if suggestions[0].Score <= AutocorrectScoreThreshold {
		t.Errorf("exact match score %d should exceed the autocorrect threshold", suggestions[0].Score)
	}
}

func TestInsertionCorrection(t *testing.T) {
	// thiis => this, skipping the duplicated touch point
	suggestions := decodeWord(t, "thiis")
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if suggestions[0].Word != "this" {
		t.Errorf("expected 'this' at index 0, got %q", suggestions[0].Word)
	}
}

func TestTranspositionCorrection(t *testing.T) {
	// thsi => this, swapping the last two touch points
	suggestions := decodeWord(t, "thsi")
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if suggestions[0].Word != "this" {
		t.Errorf("expected 'this' at index 0, got %q", suggestions[0].Word)
	}
}

func TestOmissionCorrection(t *testing.T) {
	// ths => this, skipping the lexicon letter i
	suggestions := decodeWord(t, "ths")
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if suggestions[0].Word != "this" {
		t.Errorf("expected 'this' at index 0, got %q", suggestions[0].Word)
	}
}

func TestSpaceSubstitution(t *testing.T) {
	// hevis => "he is": the v tap sits in space-bar proximity
	suggestions := decodeWord(t, "hevis")
	if !hasWord(suggestions, "he is") {
		t.Fatalf("expected multi-word 'he is' in %v", suggestions)
	}
	// At input length 5 the multi-word result must not be force-committed;
	// the regular (non-synthetic) emission stays below the threshold.
	regular := -1
	for _, s := range suggestions {
		if s.Word == "he is" && (regular < 0 || s.Score < regular) {
			regular = s.Score
		}
	}
	if regular > AutocorrectScoreThreshold {
		t.Errorf("multi-word at short input must not be promoted, score %d", regular)
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(testLexicon())
	points := typePoints(t, layout, "this")

	first := sg.DecodeWords(session, layout, points, 0)
	second := sg.DecodeWords(session, layout, points, 0)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated decode differs:\n first: %v\nsecond: %v", first, second)
	}
}

func TestContinuousSearchMatchesFullRestart(t *testing.T) {
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())

	// One session decodes the prefix then its extension, taking the
	// continuous-search path on the second call.
	continued := NewSession(testLexicon())
	sg.DecodeWords(continued, layout, typePoints(t, layout, "thi"), 0)
	extended := sg.DecodeWords(continued, layout, typePoints(t, layout, "this"), 0)
	if !continued.IsContinuousSuggestionPossible() {
		t.Fatal("extension of the previous input should allow continuous search")
	}

	// A fresh session decodes the extension from scratch.
	fresh := NewSession(testLexicon())
	restarted := sg.DecodeWords(fresh, layout, typePoints(t, layout, "this"), 0)

	if !reflect.DeepEqual(extended, restarted) {
		t.Errorf("continuous search diverged from full restart:\ncontinued: %v\nrestarted: %v",
			extended, restarted)
	}
}

func TestShortInputTakesRestartPath(t *testing.T) {
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(testLexicon())

	sg.DecodeWords(session, layout, typePoints(t, layout, "t"), 0)
	continued := sg.DecodeWords(session, layout, typePoints(t, layout, "th"), 0)

	fresh := NewSession(testLexicon())
	restarted := sg.DecodeWords(fresh, layout, typePoints(t, layout, "th"), 0)
	if !reflect.DeepEqual(continued, restarted) {
		t.Errorf("short input must decode like a full restart:\ncontinued: %v\nrestarted: %v",
			continued, restarted)
	}
}

func TestEmptyInput(t *testing.T) {
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(testLexicon())
	if got := sg.DecodeWords(session, layout, nil, 0); len(got) != 0 {
		t.Errorf("empty input must yield no suggestions, got %v", got)
	}
}

func TestSingleWordLexicon(t *testing.T) {
	lx := lexicon.New()
	lx.AddWord("this", 200)
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(lx)

	suggestions := sg.DecodeWords(session, layout, typePoints(t, layout, "this"), 0)
	if len(suggestions) == 0 {
		t.Fatal("expected the single word back")
	}
	if suggestions[0].Word != "this" || suggestions[0].Kind != KindCorrection {
		t.Errorf("got %+v at index 0", suggestions[0])
	}
}

func TestMultiWordForceCommit(t *testing.T) {
	lx := lexicon.New()
	lx.AddWord("information", 220)
	lx.AddWord("overload", 200)
	lx.AddBigram("information", "overload", 240)

	opts := DefaultTypingOptions()
	opts.AllowPartialCommit = true
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(opts)
	session := NewSession(lx)

	// 19 letters, no space typed: the space-omission path has to recover
	// the compound, and at this length it must be promoted.
	suggestions := sg.DecodeWords(session, layout, typePoints(t, layout, "informationoverload"), 0)
	found := false
	for _, s := range suggestions {
		if s.Word == "information overload" {
			found = true
			if s.Score <= AutocorrectScoreThreshold {
				t.Errorf("long multi-word suggestion must be force-committed, score %d", s.Score)
			}
		}
	}
	if !found {
		t.Fatalf("expected 'information overload' in %v", suggestions)
	}
}

func TestCommitPointMarksSessionPartiallyCommitted(t *testing.T) {
	lx := testLexicon()
	opts := DefaultTypingOptions()
	opts.AllowPartialCommit = true
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(opts)
	session := NewSession(lx)

	sg.DecodeWords(session, layout, typePoints(t, layout, "thi"), 0)
	sg.DecodeWords(session, layout, typePoints(t, layout, "this"), 1)
	if !session.IsPartiallyCommitted() {
		t.Error("a positive commit point under partial commit must mark the session")
	}
}

func TestUnusedProximityStateYieldsNothing(t *testing.T) {
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(testLexicon())

	// A code point with no key and no coordinates leaves the first
	// proximity state unused.
	points := []TouchPoint{{X: -1, Y: -1, CodePoint: 0}}
	if got := sg.DecodeWords(session, layout, points, 0); len(got) != 0 {
		t.Errorf("unused proximity state must yield no suggestions, got %v", got)
	}
}

func TestOutputRespectsMaxResults(t *testing.T) {
	suggestions := decodeWord(t, "this")
	if len(suggestions) > MaxResults {
		t.Errorf("got %d suggestions, cap is %d", len(suggestions), MaxResults)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i-1].Kind == KindCorrection && suggestions[i].Kind == KindCorrection &&
			suggestions[i-1].Score < suggestions[i].Score {
			t.Errorf("corrections out of score order at %d: %d < %d",
				i, suggestions[i-1].Score, suggestions[i].Score)
		}
	}
}

func TestShortcutEmission(t *testing.T) {
	lx := testLexicon()
	lx.AddWord("ill", 150)
	lx.AddShortcut("ill", "I'll", 200, false)

	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(lx)
	suggestions := sg.DecodeWords(session, layout, typePoints(t, layout, "ill"), 0)

	foundShortcut := false
	for _, s := range suggestions {
		if s.Word == "I'll" && s.Kind == KindShortcut {
			foundShortcut = true
		}
	}
	if !foundShortcut {
		t.Errorf("expected shortcut I'll alongside ill, got %v", suggestions)
	}
}

func BenchmarkDecodeExact(b *testing.B) {
	layout := keyboard.Qwerty()
	sg := NewTypingSuggest(DefaultTypingOptions())
	session := NewSession(testLexicon())
	var points []TouchPoint
	for i, cp := range "this" {
		x, y, _ := layout.KeyCenter(cp)
		points = append(points, TouchPoint{X: x, Y: y, Time: i * 120, CodePoint: cp})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sg.DecodeWords(session, layout, points, 0)
	}
}
