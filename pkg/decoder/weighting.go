package decoder

// CorrectionType tags one weighting event: which operator produced a child
// and therefore which cost entry and input-index delta apply.
type CorrectionType int

const (
	CTMatch CorrectionType = iota
	CTCompletion
	CTAdditionalProximity
	CTSubstitution
	CTOmission
	CTInsertion
	CTTransposition
	CTSpaceSubstitution
	CTSpaceOmission
	CTNewWord
	CTTerminal
)

// Weighting assigns spatial and language cost increments per event kind.
// Implementations see the session for proximity state and bigram lookups
// but never touch the frontier.
type Weighting interface {
	MatchedCost(s *Session, n *DicNode) float32
	CompletionCost(s *Session, n *DicNode) float32
	AdditionalProximityCost(s *Session, parent, child *DicNode) float32
	SubstitutionCost(s *Session, parent, child *DicNode) float32
	OmissionCost(s *Session, parent, child *DicNode) float32
	InsertionCost(s *Session, parent, child *DicNode) float32
	TranspositionCost(s *Session, parent, child *DicNode) float32
	SpaceSubstitutionCost(s *Session, n *DicNode) float32
	NewWordCost(s *Session, n *DicNode) float32
	NewWordLanguageCost(s *Session, parent, child *DicNode) float32
	TerminalSpatialCost(s *Session, n *DicNode) float32
	TerminalLanguageCost(s *Session, n *DicNode) float32
	IsProximityDicNode(s *Session, n *DicNode) bool
	NeedsToNormalizeCompoundDistance() bool
}

// AddCostAndForwardInputIndex is the single choke point every expanded
// child passes through: it derives the spatial and language increments for
// the event kind, advances the child's input cursor by the kind's delta,
// folds the cost into the scoring state, and prunes hypotheses that blew
// the edit budget.
func AddCostAndForwardInputIndex(w Weighting, ct CorrectionType, s *Session, parent, child *DicNode) {
	spatialCost := getSpatialCost(w, ct, s, parent, child)
	languageCost := getLanguageCost(w, ct, s, parent, child)
	isEdit := isEditCorrection(ct)
	isProximity := ct == CTMatch && w.IsProximityDicNode(s, child)

	child.ForwardInputIndex(forwardInputCount(ct))
	child.Scoring().AddCost(spatialCost, languageCost, w.NeedsToNormalizeCompoundDistance(),
		child.InputIndex(), isEdit, isProximity)

	if child.Scoring().EditCorrectionCount() > maxEditCorrectionCount {
		child.Scoring().Prune()
	}
}

func getSpatialCost(w Weighting, ct CorrectionType, s *Session, parent, child *DicNode) float32 {
	switch ct {
	case CTMatch:
		return w.MatchedCost(s, child)
	case CTCompletion:
		return w.CompletionCost(s, child)
	case CTAdditionalProximity:
		return w.AdditionalProximityCost(s, parent, child)
	case CTSubstitution:
		return w.SubstitutionCost(s, parent, child)
	case CTOmission:
		return w.OmissionCost(s, parent, child)
	case CTInsertion:
		return w.InsertionCost(s, parent, child)
	case CTTransposition:
		return w.TranspositionCost(s, parent, child)
	case CTSpaceSubstitution:
		return w.SpaceSubstitutionCost(s, child)
	case CTNewWord:
		return w.NewWordCost(s, child)
	case CTTerminal:
		return w.TerminalSpatialCost(s, child)
	default:
		return 0
	}
}

func getLanguageCost(w Weighting, ct CorrectionType, s *Session, parent, child *DicNode) float32 {
	switch ct {
	case CTNewWord:
		return w.NewWordLanguageCost(s, parent, child)
	case CTTerminal:
		return w.TerminalLanguageCost(s, child)
	default:
		return 0
	}
}

// forwardInputCount is the kind's input-index delta. Insertion forwards two
// points (the skipped duplicate and the consumed one); the transposition
// delta lands on the second-level child so the pair nets one point per
// emitted letter.
func forwardInputCount(ct CorrectionType) int {
	switch ct {
	case CTMatch, CTAdditionalProximity, CTSubstitution, CTSpaceSubstitution:
		return 1
	case CTInsertion, CTTransposition:
		return 2
	default:
		// omission, completion, new word, space omission, terminal
		return 0
	}
}

func isEditCorrection(ct CorrectionType) bool {
	switch ct {
	case CTOmission, CTInsertion, CTTransposition, CTSubstitution, CTAdditionalProximity:
		return true
	}
	return false
}
