package normalize

import (
	"strings"

	"cssnorm/css/values"
)

// Defaults for width, style and color slots of border and outline.
var wscDefaults = [3]string{"medium", "none", "currentcolor"}

var wscSuffixes = [3]string{"width", "style", "color"}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// outline-style does not accept "hidden" but has "auto".
var outlineStyles = map[string]bool{
	"none": true, "auto": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var lineWidths = map[string]bool{"thin": true, "medium": true, "thick": true}

// wsc is a classified width/style/color value. Empty slot was not present.
type wsc struct {
	slots     [3]string
	tokens    int
	collision bool // same slot classified twice
	invalid   bool // CSS-wide keyword mixed with other components
}

func isLineWidth(token string) bool {
	return values.IsLength(token) || lineWidths[strings.ToLower(token)] || values.IsMathFunction(token)
}

// parseWsc classifies every component of value into exactly one of width,
// style or color: line widths and lengths are widths, keywords from styles
// are styles and everything else is a color. Later component of the same
// class overwrites earlier one and the collision is recorded.
func parseWsc(value string, styles map[string]bool) wsc {
	var res wsc
	for _, token := range values.Split(value) {
		res.tokens++

		slot := 2
		switch {
		case values.IsGlobalKeyword(token):
			res.invalid = true
			continue
		case isLineWidth(token):
			slot = 0
		case styles[strings.ToLower(token)]:
			slot = 1
		}

		if res.slots[slot] != "" {
			res.collision = true
		}
		res.slots[slot] = token
	}
	return res
}

// isValidWsc reports whether value had at least one component and no two
// components competed for the same slot.
func isValidWsc(v wsc) bool {
	return v.tokens > 0 && !v.collision && !v.invalid
}

// filled returns slots with defaults substituted for missing ones.
func (v wsc) filled() [3]string {
	out := v.slots
	for i := range out {
		if out[i] == "" {
			out[i] = wscDefaults[i]
		}
	}
	return out
}
