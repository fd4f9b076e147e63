/*
Package keyboard models the virtual keyboard geometry consumed by the decoder.

A Layout places keys on a pixel grid and answers spatial queries: which key
is nearest to a touch point, which keys sit close enough to count as
proximity candidates, and how far (normalized) a touch point landed from a
given key. The decoder never looks at raw coordinates itself; it consumes
the per-point PointState computed here.
*/
package keyboard

import (
	"math"
	"unicode"
)

// KeyCodeSpace is the code point used for the space bar in proximity queries.
const KeyCodeSpace = ' '

// Key is a single key with its center position and size in layout pixels.
type Key struct {
	CodePoint rune
	X         int // center x
	Y         int // center y
	Width     int
	Height    int
}

// Layout is an immutable keyboard geometry shared by all decode sessions.
type Layout struct {
	keys               map[rune]Key
	letters            []Key
	space              Key
	mostCommonKeyWidth int
	keyHeight          int
	searchRadius       float64
	additional         map[rune][]rune
}

var qwertyRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

// row x offsets in key widths, matching the usual stagger
var qwertyOffsets = []float64{0, 0.5, 1.5}

// additionalProximity maps a base key to code points that are not on the
// layout but should still be treated as near-matches (accented variants).
var additionalProximity = map[rune][]rune{
	'a': {'à', 'á', 'â', 'ã', 'ä', 'å'},
	'c': {'ç'},
	'e': {'è', 'é', 'ê', 'ë'},
	'i': {'ì', 'í', 'î', 'ï'},
	'n': {'ñ'},
	'o': {'ò', 'ó', 'ô', 'õ', 'ö'},
	'u': {'ù', 'ú', 'û', 'ü'},
	'y': {'ý', 'ÿ'},
}

// Qwerty builds the standard three-row QWERTY layout with a space bar row.
// Key width 60 and height 80 mirror common phone portrait metrics; only the
// ratios matter for scoring since all distances are normalized by key width.
func Qwerty() *Layout {
	const keyWidth = 60
	const keyHeight = 80

	l := &Layout{
		keys:               make(map[rune]Key),
		mostCommonKeyWidth: keyWidth,
		keyHeight:          keyHeight,
		searchRadius:       1.5 * keyWidth,
		additional:         additionalProximity,
	}

	for row, letters := range qwertyRows {
		offset := qwertyOffsets[row]
		for col, cp := range letters {
			k := Key{
				CodePoint: cp,
				X:         int((float64(col) + offset + 0.5) * keyWidth),
				Y:         row*keyHeight + keyHeight/2,
				Width:     keyWidth,
				Height:    keyHeight,
			}
			l.keys[cp] = k
			l.letters = append(l.letters, k)
		}
	}

	// Space bar spans the x..n columns below the bottom letter row.
	l.space = Key{
		CodePoint: KeyCodeSpace,
		X:         5 * keyWidth,
		Y:         3*keyHeight + keyHeight/2,
		Width:     5 * keyWidth,
		Height:    keyHeight,
	}
	l.keys[KeyCodeSpace] = l.space
	return l
}

// MostCommonKeyWidth returns the width used to normalize spatial distances.
func (l *Layout) MostCommonKeyWidth() int {
	return l.mostCommonKeyWidth
}

// MaxPointerCount reports how many concurrent pointers the model tracks.
// Typing input is single pointer.
func (l *Layout) MaxPointerCount() int {
	return 1
}

// HasKey reports whether the code point exists on the layout (letters and
// space; case folded).
func (l *Layout) HasKey(cp rune) bool {
	_, ok := l.keys[unicode.ToLower(cp)]
	return ok
}

// KeyCenter returns the center coordinates for a code point.
func (l *Layout) KeyCenter(cp rune) (x, y int, ok bool) {
	k, found := l.keys[unicode.ToLower(cp)]
	if !found {
		return 0, 0, false
	}
	return k.X, k.Y, true
}

// NearestKey returns the letter key whose center is closest to the point.
func (l *Layout) NearestKey(x, y int) rune {
	best := rune(0)
	bestDist := math.MaxFloat64
	for _, k := range l.letters {
		d := squaredDistance(x, y, k.X, k.Y)
		if d < bestDist {
			bestDist = d
			best = k.CodePoint
		}
	}
	return best
}

// BaseKeyFor resolves an additional-proximity variant (an accented code
// point) back to its base key, or returns the rune unchanged.
func (l *Layout) BaseKeyFor(cp rune) rune {
	folded := unicode.ToLower(cp)
	if _, ok := l.keys[folded]; ok {
		return folded
	}
	for base, variants := range l.additional {
		for _, v := range variants {
			if v == folded {
				return base
			}
		}
	}
	return folded
}

// isAdditionalVariant reports whether cp is an off-layout variant of base.
func (l *Layout) isAdditionalVariant(base, cp rune) bool {
	for _, v := range l.additional[base] {
		if v == cp {
			return true
		}
	}
	return false
}

func squaredDistance(x0, y0, x1, y1 int) float64 {
	dx := float64(x0 - x1)
	dy := float64(y0 - y1)
	return dx*dx + dy*dy
}

// spaceDistance returns the distance from a point to the space bar rect,
// measured to the nearest edge since the bar is much wider than a key.
func (l *Layout) spaceDistance(x, y int) float64 {
	halfW := float64(l.space.Width) / 2
	halfH := float64(l.space.Height) / 2
	dx := math.Max(0, math.Abs(float64(x-l.space.X))-halfW)
	dy := math.Max(0, math.Abs(float64(y-l.space.Y))-halfH)
	return math.Sqrt(dx*dx + dy*dy)
}
