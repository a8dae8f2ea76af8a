package normalize

import (
	"strings"

	"cssnorm/css/values"
)

// classifyBoxShadow handles a single shadow. First four lengths are offsets,
// blur and spread in this order, "inset" is a flag and anything else is the
// color.
func classifyBoxShadow(tokens []string) ([]string, bool) {
	slots := make([]string, 6)
	lengths := 0

	for _, t := range tokens {
		lower := strings.ToLower(t)
		switch {
		case lower == "none":
			return nil, false
		case lower == "inset":
			if slots[5] != "" {
				return nil, false
			}
			slots[5] = t
		case values.IsLengthOrPercentage(t) || values.IsMathFunction(t):
			if lengths == 4 {
				return nil, false
			}
			slots[lengths] = t
			lengths++
		default:
			slots[4] = t
		}
	}
	return slots, true
}

// classifyFlex resolves grow, shrink and basis. Single keywords none and auto
// have fixed expansions, a single integer is grow, otherwise numbers fill grow
// then shrink and a unitless zero after both factors is the basis.
func classifyFlex(tokens []string) ([]string, bool) {
	if len(tokens) == 1 {
		switch strings.ToLower(tokens[0]) {
		case "none":
			return []string{"0", "0", "auto"}, true
		case "auto":
			return []string{"1", "1", "auto"}, true
		}
		if values.IsInteger(tokens[0]) {
			// grow alone, shrink and basis take defaults
			return []string{tokens[0], "", ""}, true
		}
	}
	if len(tokens) > 3 {
		return nil, false
	}

	slots := make([]string, 3)
	factors := 0
	for _, t := range tokens {
		switch {
		case values.IsNumber(t) && factors < 2:
			slots[factors] = t
			factors++
		case isFlexBasis(t) || isBareZero(t):
			if slots[2] != "" {
				return nil, false
			}
			slots[2] = t
		default:
			return nil, false
		}
	}
	return slots, true
}

func isFlexBasis(token string) bool {
	if values.IsDimension(token) || values.IsMathFunction(token) {
		return true
	}
	if oneOf(token, "auto", "content", "min-content", "max-content", "fit-content") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(token), "fit-content(")
}

// classifyGap resolves row and column gaps, single value is used for both.
func classifyGap(tokens []string) ([]string, bool) {
	switch len(tokens) {
	case 1:
		return []string{tokens[0], tokens[0]}, true
	case 2:
		return []string{tokens[0], tokens[1]}, true
	}
	return nil, false
}

// classifyOutline resolves width, style and color the same way border sides
// are classified.
func classifyOutline(tokens []string) ([]string, bool) {
	v := parseWsc(strings.Join(tokens, " "), outlineStyles)
	if !isValidWsc(v) {
		return nil, false
	}
	return v.slots[:], true
}

var listStylePositions = []string{"inside", "outside"}

var imageFunctions = []string{
	"url(", "image(", "image-set(", "-webkit-image-set(", "cross-fade(", "element(",
	"linear-gradient(", "radial-gradient(", "conic-gradient(",
	"repeating-linear-gradient(", "repeating-radial-gradient(", "repeating-conic-gradient(",
}

func isImage(token string) bool {
	lower := strings.ToLower(token)
	for _, fn := range imageFunctions {
		if strings.HasPrefix(lower, fn) {
			return true
		}
	}
	return false
}

// isListStyleType accepts predefined and author defined counter style names,
// strings and symbols() function.
func isListStyleType(token string) bool {
	if token == "" {
		return false
	}
	if token[0] == '"' || token[0] == '\'' {
		return true
	}
	if strings.HasPrefix(strings.ToLower(token), "symbols(") {
		return true
	}
	if strings.ContainsAny(token, "()") {
		return false
	}
	c := token[0]
	return c == '-' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

const (
	listType = iota
	listPosition
	listImage
)

// classifyListStyle resolves type, position and image. Keyword none may stand
// for type or image, it goes to the one not otherwise specified, type first.
func classifyListStyle(tokens []string) ([]string, bool) {
	slots := make([]string, 3)
	nones := 0

	assign := func(i int, t string) bool {
		if slots[i] != "" {
			return false
		}
		slots[i] = t
		return true
	}

	for _, t := range tokens {
		var ok bool
		switch {
		case strings.EqualFold(t, "none"):
			nones++
			continue
		case isImage(t):
			ok = assign(listImage, t)
		case oneOf(t, listStylePositions...):
			ok = assign(listPosition, t)
		case isListStyleType(t):
			ok = assign(listType, t)
		}
		if !ok {
			return nil, false
		}
	}

	if slots[listType] == "" && nones > 0 {
		slots[listType] = "none"
		nones--
	}
	if slots[listImage] == "" && nones > 0 {
		slots[listImage] = "none"
		nones--
	}
	if nones > 0 {
		return nil, false
	}
	return slots, true
}
