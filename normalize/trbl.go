package normalize

import (
	"cssnorm/css/values"
)

var trblSides = [4]string{"top", "right", "bottom", "left"}

// parseTrbl expands 1 to 4 space separated components into top, right,
// bottom and left following the box shorthand rule:
//
//	a       -> a a a a
//	a b     -> a b a b
//	a b c   -> a b c b
//	a b c d -> a b c d
//
// Any other number of components is not a box value.
func parseTrbl(value string) ([4]string, bool) {
	parts := values.Split(value)
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return [4]string{}, false
}
