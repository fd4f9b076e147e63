package decoder

// Final-score scale. A suggestion's integer score is the normalized
// compound distance mapped onto this scale; scores above the autocorrect
// threshold tell the host to replace the typed text outright.
const (
	outputScoreScale          = 1000000
	AutocorrectScoreThreshold = 850000

	// mostProbableDominanceMargin is how much worse (in normalized
	// compound distance) the runner-up must be before the best candidate
	// counts as the single dominant interpretation.
	mostProbableDominanceMargin float32 = 0.12

	doubleLetterDemotionDistance float32 = 0.25

	// distanceToScoreScale steepens the distance-to-score mapping so that
	// only near-exact interpretations clear the autocorrect threshold on
	// their own; corrected and multi-word candidates need promotion.
	distanceToScoreScale float32 = 2.5
)

// Scoring turns collected terminals into final ranked scores and decides
// autocorrect promotion. Like the traversal policy it is injected into the
// driver so tests can swap it.
type Scoring interface {
	AdjustedLanguageWeight(s *Session, terminals []DicNode) float32
	DoesAutoCorrectValidWord() bool
	CalculateFinalScore(compoundDistance float32, inputSize int, forceCommit bool) int
	MostProbableString(s *Session, terminals []DicNode, languageWeight float32,
		outWords []int32, outType *int, outFreq *int) bool
	SearchWordWithDoubleLetter(terminals []DicNode) (index int, level DoubleLetterLevel)
	DoubleLetterDemotionDistanceCost(terminalIndex, doubleLetterIndex int, level DoubleLetterLevel) float32
	SafetyNetForMostProbableString(maxScore int, outFreq *int)
}

// TypingScoring is the tap-typing scoring model.
type TypingScoring struct{}

// NewTypingScoring returns the typing scoring model.
func NewTypingScoring() *TypingScoring {
	return &TypingScoring{}
}

// AdjustedLanguageWeight down-weights the language distance when the
// spatial share of the top candidates dominates, which means the input
// signal itself is discriminative enough.
func (sc *TypingScoring) AdjustedLanguageWeight(s *Session, terminals []DicNode) float32 {
	if len(terminals) == 0 {
		return 1
	}
	var spatial, language float32
	for i := range terminals {
		spatial += terminals[i].Scoring().SpatialDistance()
		language += terminals[i].Scoring().LanguageDistance()
	}
	total := spatial + language
	if total <= 0 {
		return 1
	}
	ratio := spatial / total
	if ratio <= AutocorrectLanguageFeatureThreshold {
		return 1
	}
	weight := 1 - (ratio - AutocorrectLanguageFeatureThreshold)
	if weight < 0.5 {
		weight = 0.5
	}
	return weight
}

func (sc *TypingScoring) DoesAutoCorrectValidWord() bool { return false }

// CalculateFinalScore maps the normalized compound distance onto the
// integer output scale; forced commits are promoted past the autocorrect
// threshold.
func (sc *TypingScoring) CalculateFinalScore(compoundDistance float32, inputSize int, forceCommit bool) int {
	divisor := inputSize
	if divisor < 1 {
		divisor = 1
	}
	normalized := compoundDistance / float32(divisor)
	score := int((1 - normalized*distanceToScoreScale) * outputScoreScale)
	if score < 0 {
		score = 0
	}
	if forceCommit {
		score += outputScoreScale
	}
	return score
}

// MostProbableString reports a single dominant candidate, writing it to the
// index-0 output slot with a synthetic top-of-list score.
func (sc *TypingScoring) MostProbableString(s *Session, terminals []DicNode, languageWeight float32,
	outWords []int32, outType *int, outFreq *int) bool {
	if len(terminals) == 0 {
		return false
	}
	inputSize := s.InputSize()
	best, second := -1, -1
	var bestDist, secondDist float32
	for i := range terminals {
		d := normalizedWeightedDistance(&terminals[i], languageWeight, inputSize)
		switch {
		case best < 0 || d < bestDist:
			second, secondDist = best, bestDist
			best, bestDist = i, d
		case second < 0 || d < secondDist:
			second, secondDist = i, d
		}
	}
	if bestDist >= AutocorrectClassificationThreshold {
		return false
	}
	if second >= 0 && secondDist-bestDist < mostProbableDominanceMargin {
		return false
	}
	terminals[best].OutputResult(outWords)
	*outType = KindCorrection
	*outFreq = sc.CalculateFinalScore(terminals[best].CompoundDistance(languageWeight), inputSize, true)
	return true
}

// SearchWordWithDoubleLetter finds the terminal carrying the strongest
// double-letter evidence; ties go to the better-ranked terminal.
func (sc *TypingScoring) SearchWordWithDoubleLetter(terminals []DicNode) (int, DoubleLetterLevel) {
	index := -1
	level := NotADoubleLetter
	for i := range terminals {
		l := terminals[i].Scoring().DoubleLetterLevel()
		if l > level {
			index, level = i, l
		}
	}
	return index, level
}

// DoubleLetterDemotionDistanceCost demotes the competing single-letter
// interpretations once the doubled-letter reading is strongly evidenced.
func (sc *TypingScoring) DoubleLetterDemotionDistanceCost(terminalIndex, doubleLetterIndex int,
	level DoubleLetterLevel) float32 {
	if doubleLetterIndex < 0 || level != AStrongDoubleLetter {
		return 0
	}
	if terminalIndex == doubleLetterIndex {
		return 0
	}
	return doubleLetterDemotionDistance
}

// SafetyNetForMostProbableString keeps a most-probable string that ranked
// below a regular result from autocorrecting.
func (sc *TypingScoring) SafetyNetForMostProbableString(maxScore int, outFreq *int) {
	if *outFreq >= maxScore {
		return
	}
	if *outFreq > AutocorrectScoreThreshold-1 {
		*outFreq = AutocorrectScoreThreshold - 1
	}
}

func normalizedWeightedDistance(n *DicNode, languageWeight float32, inputSize int) float32 {
	divisor := inputSize
	if divisor < 1 {
		divisor = 1
	}
	return n.CompoundDistance(languageWeight) / float32(divisor)
}

var _ Scoring = (*TypingScoring)(nil)
