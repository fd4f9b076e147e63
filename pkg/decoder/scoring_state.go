package decoder

// DoubleLetterLevel describes the evidence that a key was held long enough
// to mean a doubled letter. Transitions are monotone toward strong.
type DoubleLetterLevel int

const (
	NotADoubleLetter DoubleLetterLevel = iota
	ADoubleLetter
	AStrongDoubleLetter
)

// ScoringState is the per-hypothesis cost accumulator. It is a plain value;
// shallow copies are intentional and safe, which is what makes the
// deep-copy push of a whole DicNode cheap.
type ScoringState struct {
	doubleLetterLevel DoubleLetterLevel

	editCorrectionCount      int16
	proximityCorrectionCount int16

	normalizedCompoundDistance float32
	spatialDistance            float32
	languageDistance           float32
	totalPrevWordsLanguageCost float32
	rawLength                  float32
}

// AddCost accumulates one weighting event. totalInputIndex is the number of
// input points the hypothesis has consumed after the event; it is the
// normalization divisor that keeps beams of different depths comparable.
func (s *ScoringState) AddCost(spatialCost, languageCost float32, doNormalization bool,
	totalInputIndex int, isEditCorrection, isProximityCorrection bool) {
	s.addDistance(spatialCost, languageCost, doNormalization, totalInputIndex)
	if isEditCorrection {
		s.editCorrectionCount++
	}
	if isProximityCorrection {
		s.proximityCorrectionCount++
	}
	if languageCost > 0 {
		s.totalPrevWordsLanguageCost += languageCost
	}
}

func (s *ScoringState) addDistance(spatialDistance, languageDistance float32,
	doNormalization bool, totalInputIndex int) {
	s.spatialDistance += spatialDistance
	s.languageDistance += languageDistance
	if !doNormalization {
		s.normalizedCompoundDistance = s.spatialDistance + s.languageDistance
	} else {
		divisor := totalInputIndex
		if divisor < 1 {
			divisor = 1
		}
		s.normalizedCompoundDistance = (s.spatialDistance + s.languageDistance) / float32(divisor)
	}
}

// AddRawLength accumulates raw spatial path length.
func (s *ScoringState) AddRawLength(rawLength float32) {
	s.rawLength += rawLength
}

// Prune pushes the hypothesis past the weighting ceiling so it is dropped
// by every downstream size/terminal check.
func (s *ScoringState) Prune() {
	s.spatialDistance = MaxWeight
	s.normalizedCompoundDistance = MaxWeight
}

// CompoundDistance is spatial + languageWeight x language, the final
// ranking key.
func (s *ScoringState) CompoundDistance(languageWeight float32) float32 {
	return s.spatialDistance + s.languageDistance*languageWeight
}

// NormalizedCompoundDistance is the queue ordering key.
func (s *ScoringState) NormalizedCompoundDistance() float32 {
	return s.normalizedCompoundDistance
}

// SpatialDistance returns the accumulated spatial cost.
func (s *ScoringState) SpatialDistance() float32 {
	return s.spatialDistance
}

// LanguageDistance returns the accumulated language cost.
func (s *ScoringState) LanguageDistance() float32 {
	return s.languageDistance
}

// EditCorrectionCount returns how many edit operators were applied.
func (s *ScoringState) EditCorrectionCount() int {
	return int(s.editCorrectionCount)
}

// ProximityCorrectionCount returns how many near-miss matches were taken.
func (s *ScoringState) ProximityCorrectionCount() int {
	return int(s.proximityCorrectionCount)
}

// RawLength returns the accumulated raw spatial path length.
func (s *ScoringState) RawLength() float32 {
	return s.rawLength
}

// TotalPrevWordsLanguageCost returns the language cost attributed to
// completed words of the hypothesis chain.
func (s *ScoringState) TotalPrevWordsLanguageCost() float32 {
	return s.totalPrevWordsLanguageCost
}

// DoubleLetterLevel returns the current double-letter evidence.
func (s *ScoringState) DoubleLetterLevel() DoubleLetterLevel {
	return s.doubleLetterLevel
}

// SetDoubleLetterLevel raises the double-letter evidence. Weak evidence
// never downgrades strong; none never overrides anything.
func (s *ScoringState) SetDoubleLetterLevel(level DoubleLetterLevel) {
	switch level {
	case NotADoubleLetter:
	case ADoubleLetter:
		if s.doubleLetterLevel != AStrongDoubleLetter {
			s.doubleLetterLevel = level
		}
	case AStrongDoubleLetter:
		s.doubleLetterLevel = level
	}
}
