package keyboard

import (
	"testing"
)

func TestNearestKey(t *testing.T) {
	l := Qwerty()
	cases := []struct {
		cp rune
	}{
		{'q'}, {'t'}, {'p'}, {'a'}, {'h'}, {'m'},
	}
	for _, tc := range cases {
		x, y, ok := l.KeyCenter(tc.cp)
		if !ok {
			t.Fatalf("no key center for %q", tc.cp)
		}
		if got := l.NearestKey(x, y); got != tc.cp {
			t.Errorf("NearestKey(center of %q) = %q", tc.cp, got)
		}
	}
}

func TestStateForPrimaryAndNeighbors(t *testing.T) {
	l := Qwerty()
	x, y, _ := l.KeyCenter('g')
	st := l.StateFor('g', x, y)

	if !st.IsUsed() {
		t.Fatal("state from a real tap must be used")
	}
	if st.Primary != 'g' {
		t.Errorf("primary = %q, want g", st.Primary)
	}
	if len(st.Candidates) == 0 || st.Candidates[0].CodePoint != 'g' {
		t.Fatal("primary key must lead the candidate list")
	}
	if st.Candidates[0].NormalizedSquaredDistance != 0 {
		t.Errorf("dead-center tap distance = %v, want 0", st.Candidates[0].NormalizedSquaredDistance)
	}

	wantNeighbors := []rune{'f', 'h'}
	for _, nb := range wantNeighbors {
		found := false
		for _, c := range st.Candidates {
			if c.CodePoint == nb {
				found = true
				if c.NormalizedSquaredDistance <= 0 {
					t.Errorf("neighbor %q distance = %v, want > 0", nb, c.NormalizedSquaredDistance)
				}
			}
		}
		if !found {
			t.Errorf("neighbor %q missing from candidates of g", nb)
		}
	}
}

func TestStateForCodePointOnly(t *testing.T) {
	l := Qwerty()
	st := l.StateFor('k', -1, -1)
	if !st.IsUsed() || st.Primary != 'k' {
		t.Errorf("code-point-only state = %+v", st)
	}
}

func TestStateForUnknownCodePoint(t *testing.T) {
	l := Qwerty()
	st := l.StateFor(0, -1, -1)
	if st.IsUsed() {
		t.Error("no coordinates and no code point must leave the state unused")
	}
}

func TestProximityTypeClassification(t *testing.T) {
	l := Qwerty()
	x, y, _ := l.KeyCenter('s')
	st := l.StateFor('s', x, y)

	cases := []struct {
		name string
		cp   rune
		want ProximityType
	}{
		{"same key", 's', MatchChar},
		{"adjacent key", 'a', ProximityChar},
		{"adjacent above", 'e', ProximityChar},
		{"accent of adjacent key", 'é', AdditionalProximityChar},
		{"distant key", 'p', SubstitutionChar},
		{"apostrophe off layout", '\'', UnrelatedChar},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.ProximityTypeFor(&st, tc.cp); got != tc.want {
				t.Errorf("ProximityTypeFor(s-tap, %q) = %v, want %v", tc.cp, got, tc.want)
			}
		})
	}
}

func TestSpaceProximityOnBottomRow(t *testing.T) {
	l := Qwerty()

	x, y, _ := l.KeyCenter('v')
	if st := l.StateFor('v', x, y); !st.HasSpaceProximity {
		t.Error("bottom-row v must be within space-bar proximity")
	}

	x, y, _ = l.KeyCenter('h')
	if st := l.StateFor('h', x, y); st.HasSpaceProximity {
		t.Error("home-row h must not be within space-bar proximity")
	}
}

func TestNormalizedDistanceFor(t *testing.T) {
	l := Qwerty()
	x, y, _ := l.KeyCenter('d')
	st := l.StateFor('d', x, y)

	if d, ok := st.NormalizedDistanceFor('d'); !ok || d != 0 {
		t.Errorf("distance to own key = %v/%v, want 0/true", d, ok)
	}
	if d, ok := st.NormalizedDistanceFor('f'); !ok || d <= 0 {
		t.Errorf("distance to neighbor f = %v/%v, want positive", d, ok)
	}
	if _, ok := st.NormalizedDistanceFor('p'); ok {
		t.Error("distant key must not be in the candidate set")
	}
}
