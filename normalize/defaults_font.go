package normalize

import (
	"strings"

	"cssnorm/css/values"
)

const (
	fontStyle = iota
	fontVariant
	fontWeight
	fontStretch
	fontSize
	fontLineHeight
	fontFamily
)

var fontSizeKeywords = []string{
	"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large",
	"smaller", "larger",
}

var fontWeights = []string{
	"bold", "bolder", "lighter",
	"100", "200", "300", "400", "500", "600", "700", "800", "900",
}

var fontStretches = []string{
	"ultra-condensed", "extra-condensed", "condensed", "semi-condensed",
	"semi-expanded", "expanded", "extra-expanded", "ultra-expanded",
}

var systemFonts = []string{"caption", "icon", "menu", "message-box", "small-caption", "status-bar"}

func isFontSize(token string) bool {
	return values.IsLengthOrPercentage(token) || values.IsMathFunction(token) || oneOf(token, fontSizeKeywords...)
}

// joinSlashes glues "/" separated size and line height into a single
// component: "12px / 1.5", "12px /1.5" and "12px/ 1.5" become "12px/1.5".
func joinSlashes(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	glue := false
	for _, t := range tokens {
		switch {
		case glue && len(out) > 0:
			out[len(out)-1] += t
		case strings.HasPrefix(t, "/") && len(out) > 0:
			out[len(out)-1] += t
		default:
			out = append(out, t)
		}
		glue = strings.HasSuffix(t, "/")
	}
	return out
}

// splitSize separates "size/line-height" component.
func splitSize(token string) (size, lineHeight string, ok bool) {
	size, lineHeight, _ = strings.Cut(token, "/")
	if !isFontSize(size) {
		return "", "", false
	}
	return size, lineHeight, true
}

// classifyFont scans components from the right: everything after the font
// size is the family, components before the size are style, variant, weight
// and stretch in any order. Values without a size (system fonts) are not
// classified.
func classifyFont(tokens []string) ([]string, bool) {
	tokens = joinSlashes(tokens)
	if len(tokens) == 1 && oneOf(tokens[0], systemFonts...) {
		return nil, false
	}

	slots := make([]string, 7)

	// family
	i := len(tokens) - 1
	for ; i >= 0; i-- {
		if size, lh, ok := splitSize(tokens[i]); ok {
			slots[fontSize], slots[fontLineHeight] = size, lh
			break
		}
	}
	if i < 0 {
		return nil, false
	}
	if i+1 < len(tokens) {
		slots[fontFamily] = strings.Join(tokens[i+1:], " ")
	}

	assign := func(slot int, t string) bool {
		if slots[slot] != "" {
			return false
		}
		slots[slot] = t
		return true
	}

	// prefix
	for j := i - 1; j >= 0; j-- {
		t := tokens[j]
		var ok bool
		switch {
		case strings.EqualFold(t, "normal"):
			// any of the four, all default to normal
			ok = true
		case oneOf(t, "italic", "oblique"):
			ok = assign(fontStyle, t)
		case values.IsAngle(t) && j > 0 && strings.EqualFold(tokens[j-1], "oblique"):
			ok = assign(fontStyle, tokens[j-1]+" "+t)
			j--
		case oneOf(t, "small-caps"):
			ok = assign(fontVariant, t)
		case oneOf(t, fontWeights...):
			ok = assign(fontWeight, t)
		case oneOf(t, fontStretches...):
			ok = assign(fontStretch, t)
		}
		if !ok {
			return nil, false
		}
	}
	return slots, true
}

// formatFont serializes font shorthand in its canonical order with line
// height attached to size.
func formatFont(slots []string) string {
	return strings.Join([]string{
		slots[fontStyle],
		slots[fontVariant],
		slots[fontWeight],
		slots[fontStretch],
		slots[fontSize] + "/" + slots[fontLineHeight],
		slots[fontFamily],
	}, " ")
}
