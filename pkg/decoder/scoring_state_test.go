package decoder

import (
	"testing"
)

func TestAddCostAccumulates(t *testing.T) {
	var s ScoringState
	s.AddCost(0.5, 0.2, false, 1, false, false)
	s.AddCost(0.25, 0.1, false, 2, true, true)

	if got := s.SpatialDistance(); got != 0.75 {
		t.Errorf("spatial = %v, want 0.75", got)
	}
	if got := s.LanguageDistance(); got < 0.299 || got > 0.301 {
		t.Errorf("language = %v, want 0.3", got)
	}
	if s.EditCorrectionCount() != 1 || s.ProximityCorrectionCount() != 1 {
		t.Errorf("counters = %d/%d, want 1/1", s.EditCorrectionCount(), s.ProximityCorrectionCount())
	}
	if got := s.NormalizedCompoundDistance(); got != s.SpatialDistance()+s.LanguageDistance() {
		t.Errorf("non-normalized distance = %v, want plain sum", got)
	}
}

func TestAddCostNormalization(t *testing.T) {
	cases := []struct {
		name            string
		totalInputIndex int
		wantDivisor     float32
	}{
		{"zero index clamps to one", 0, 1},
		{"regular index", 4, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s ScoringState
			s.AddCost(0.6, 0.2, true, tc.totalInputIndex, false, false)
			want := (0.6 + 0.2) / tc.wantDivisor
			if got := s.NormalizedCompoundDistance(); got < want-1e-6 || got > want+1e-6 {
				t.Errorf("normalized = %v, want %v", got, want)
			}
		})
	}
}

func TestNegativeDistancesNeverAccumulate(t *testing.T) {
	var s ScoringState
	s.AddCost(0.1, 0.05, true, 1, false, false)
	s.AddRawLength(0.3)
	if s.SpatialDistance() < 0 || s.LanguageDistance() < 0 || s.RawLength() < 0 {
		t.Error("distances must stay non-negative")
	}
}

func TestPrunePushesPastCeiling(t *testing.T) {
	var s ScoringState
	s.AddCost(0.1, 0.1, true, 2, false, false)
	s.Prune()
	if s.CompoundDistance(1) < MaxWeight {
		t.Errorf("pruned compound distance %v below ceiling", s.CompoundDistance(1))
	}
	if s.NormalizedCompoundDistance() < MaxWeight {
		t.Errorf("pruned normalized distance %v below ceiling", s.NormalizedCompoundDistance())
	}
}

func TestDoubleLetterLevelMonotone(t *testing.T) {
	cases := []struct {
		name string
		from DoubleLetterLevel
		set  DoubleLetterLevel
		want DoubleLetterLevel
	}{
		{"none stays none", NotADoubleLetter, NotADoubleLetter, NotADoubleLetter},
		{"none to weak", NotADoubleLetter, ADoubleLetter, ADoubleLetter},
		{"none to strong", NotADoubleLetter, AStrongDoubleLetter, AStrongDoubleLetter},
		{"weak to strong", ADoubleLetter, AStrongDoubleLetter, AStrongDoubleLetter},
		{"strong keeps strong on weak", AStrongDoubleLetter, ADoubleLetter, AStrongDoubleLetter},
		{"strong keeps strong on none", AStrongDoubleLetter, NotADoubleLetter, AStrongDoubleLetter},
		{"weak keeps weak on none", ADoubleLetter, NotADoubleLetter, ADoubleLetter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s ScoringState
			s.SetDoubleLetterLevel(tc.from)
			s.SetDoubleLetterLevel(tc.set)
			if got := s.DoubleLetterLevel(); got != tc.want {
				t.Errorf("level = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTotalPrevWordsLanguageCost(t *testing.T) {
	var s ScoringState
	s.AddCost(0, 0.2, true, 1, false, false)
	s.AddCost(0.5, 0, true, 2, false, false)
	s.AddCost(0, 0.1, true, 3, false, false)
	want := float32(0.2 + 0.1)
	if got := s.TotalPrevWordsLanguageCost(); got < want-1e-6 || got > want+1e-6 {
		t.Errorf("prev words language cost = %v, want %v", got, want)
	}
}
