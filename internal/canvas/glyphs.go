package canvas

// weight is the visual thickness of one axis at a junction.
type weight int

const (
	weightLight weight = iota
	weightHeavy
	weightDouble
)

// barGlyphs maps a line style to its horizontal and vertical bar glyphs.
var barGlyphs = [...][2]rune{
	LineNone:        {' ', ' '},
	LineSingle:      {'─', '│'},
	LineDouble:      {'═', '║'},
	LineHeavy:       {'━', '┃'},
	LineRounded:     {'─', '│'},
	LineDashed:      {'╌', '╎'},
	LineDotted:      {'┄', '┆'},
	LineHeavyDashed: {'╍', '╏'},
	LineHeavyDotted: {'┅', '┇'},
}

// junctionGlyphs is indexed by [runeType][horizontal weight][vertical weight].
// Unicode has no glyphs mixing heavy and double; those slots are never read
// because resolveWeights demotes heavy to light whenever double is present.
var junctionGlyphs = [...][3][3]rune{
	runeULCorner: {
		weightLight:  {'┌', '┎', '╓'},
		weightHeavy:  {'┍', '┏', 0},
		weightDouble: {'╒', 0, '╔'},
	},
	runeURCorner: {
		weightLight:  {'┐', '┒', '╖'},
		weightHeavy:  {'┑', '┓', 0},
		weightDouble: {'╕', 0, '╗'},
	},
	runeLLCorner: {
		weightLight:  {'└', '┖', '╙'},
		weightHeavy:  {'┕', '┗', 0},
		weightDouble: {'╘', 0, '╚'},
	},
	runeLRCorner: {
		weightLight:  {'┘', '┚', '╜'},
		weightHeavy:  {'┙', '┛', 0},
		weightDouble: {'╛', 0, '╝'},
	},
	runeLeftTee: {
		weightLight:  {'├', '┠', '╟'},
		weightHeavy:  {'┝', '┣', 0},
		weightDouble: {'╞', 0, '╠'},
	},
	runeRightTee: {
		weightLight:  {'┤', '┨', '╢'},
		weightHeavy:  {'┥', '┫', 0},
		weightDouble: {'╡', 0, '╣'},
	},
	runeTopTee: {
		weightLight:  {'┬', '┰', '╥'},
		weightHeavy:  {'┯', '┳', 0},
		weightDouble: {'╤', 0, '╦'},
	},
	runeBottomTee: {
		weightLight:  {'┴', '┸', '╨'},
		weightHeavy:  {'┷', '┻', 0},
		weightDouble: {'╧', 0, '╩'},
	},
	runeCross: {
		weightLight:  {'┼', '╂', '╫'},
		weightHeavy:  {'┿', '╋', 0},
		weightDouble: {'╪', 0, '╬'},
	},
}

// roundedCorners holds the rounded variant of each light corner.
var roundedCorners = map[runeType]rune{
	runeULCorner: '╭',
	runeURCorner: '╮',
	runeLLCorner: '╰',
	runeLRCorner: '╯',
}
