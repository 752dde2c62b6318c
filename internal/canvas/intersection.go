package canvas

// direction is a bit set of the directions lines extend from a cell.
type direction uint8

const (
	dirUp direction = 1 << iota
	dirDown
	dirLeft
	dirRight
)

// runeType is the shape of the glyph a cell resolves to.
type runeType int

const (
	runeNone runeType = iota
	runeHLine
	runeVLine
	runeULCorner // right + down
	runeURCorner // left + down
	runeLLCorner // up + right
	runeLRCorner // up + left
	runeLeftTee  // up + down + right
	runeRightTee // up + down + left
	runeTopTee   // left + right + down
	runeBottomTee
	runeCross
)

// shapes maps every direction set to its glyph shape.
var shapes = [16]runeType{
	0:                                    runeNone,
	dirUp:                                runeVLine,
	dirDown:                              runeVLine,
	dirUp | dirDown:                      runeVLine,
	dirLeft:                              runeHLine,
	dirRight:                             runeHLine,
	dirLeft | dirRight:                   runeHLine,
	dirDown | dirRight:                   runeULCorner,
	dirDown | dirLeft:                    runeURCorner,
	dirUp | dirRight:                     runeLLCorner,
	dirUp | dirLeft:                      runeLRCorner,
	dirUp | dirDown | dirRight:           runeLeftTee,
	dirUp | dirDown | dirLeft:            runeRightTee,
	dirLeft | dirRight | dirDown:         runeTopTee,
	dirLeft | dirRight | dirUp:           runeBottomTee,
	dirUp | dirDown | dirLeft | dirRight: runeCross,
}

// intersection records one line touching a cell.
type intersection struct {
	dirs direction
	line *StraightLine
}

// resolveRune picks the glyph for the lines touching a single cell.
// intersects must be in line declaration order.
func resolveRune(intersects []intersection) (rune, bool) {
	var dirs direction
	for _, in := range intersects {
		dirs |= in.dirs
	}

	shape := shapes[dirs]
	switch shape {
	case runeNone:
		return 0, false
	case runeHLine:
		return barGlyphs[barStyle(intersects)][0], true
	case runeVLine:
		return barGlyphs[barStyle(intersects)][1], true
	}

	if r, ok := roundedCorners[shape]; ok && useRounded(intersects) {
		return r, true
	}

	h, v := resolveWeights(intersects)
	return junctionGlyphs[shape][h][v], true
}

// barStyle returns the first declared non-rounded style, or Single when
// every line is rounded.
func barStyle(intersects []intersection) LineStyle {
	for _, in := range intersects {
		if in.line.Style != LineRounded {
			return in.line.Style
		}
	}
	return LineSingle
}

// useRounded reports whether a corner should use the rounded glyph: every
// line is Rounded and at least one has a visible run.
func useRounded(intersects []intersection) bool {
	visible := false
	for _, in := range intersects {
		if in.line.Style != LineRounded {
			return false
		}
		if in.line.Length != 0 {
			visible = true
		}
	}
	return visible
}

// resolveWeights computes the horizontal and vertical axis weights.
// Double dominates heavy on an axis; when either axis is double, heavy on
// the other axis is demoted to light since no mixed glyph exists.
func resolveWeights(intersects []intersection) (h, v weight) {
	for _, in := range intersects {
		w := weightLight
		switch {
		case in.line.Style == LineDouble:
			w = weightDouble
		case in.line.Style.isHeavy():
			w = weightHeavy
		}
		if in.line.Orientation == Horizontal {
			h = max(h, w)
		} else {
			v = max(v, w)
		}
	}
	if h == weightDouble && v == weightHeavy {
		v = weightLight
	}
	if v == weightDouble && h == weightHeavy {
		h = weightLight
	}
	return h, v
}
