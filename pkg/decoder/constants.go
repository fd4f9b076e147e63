package decoder

// Output and cache capacities.
const (
	// MaxWordLength bounds the code points of one suggestion, including
	// spaces between the words of a multi-word hypothesis.
	MaxWordLength = 48
	// MaxResults is the number of output slots; the terminal queue never
	// holds more candidates than this.
	MaxResults = 18
	// MaxSpaceIndices bounds the word boundaries a multi-word hypothesis
	// can carry, and therefore the space_indices output array.
	MaxSpaceIndices = 5
)

// Search policy constants. These are fixed at compile time; the tunable
// knobs live on the policy options instead.
const (
	// LookaheadDicNodesCacheSize is the capacity of the continue buffer
	// used for continuous-search reuse.
	LookaheadDicNodesCacheSize = 25
	// MinLenForMultiWordAutocorrect is the input length from which an
	// obvious multi-word suggestion is force-committed.
	MinLenForMultiWordAutocorrect = 16
	// MinContinuousSuggestionInputSize is the input size the previous
	// frontier may be reused above; inputs of this size or smaller always
	// take a full restart.
	MinContinuousSuggestionInputSize = 2

	// AutocorrectClassificationThreshold is the normalized compound
	// distance below which a candidate counts as clearly dominant.
	AutocorrectClassificationThreshold = 0.33
	// AutocorrectLanguageFeatureThreshold is the spatial share above which
	// the language distance gets down-weighted during final ranking.
	AutocorrectLanguageFeatureThreshold = 0.60
)

// MaxWeight is the pruning ceiling for compound distances. A node whose
// distance reaches it is never expanded or emitted.
const MaxWeight float32 = 1e5

// Suggestion kinds, written to the output types array.
const (
	KindCorrection = 1
	KindShortcut   = 2
	KindWhitelist  = 3
	KindPrediction = 4
)
