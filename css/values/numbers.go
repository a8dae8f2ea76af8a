package values

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Number is a numeric token split into its number text and unit.
type Number struct {
	Text  string  // numeric part as written, e.g. "-0.5"
	Value float64 // parsed numeric part
	Unit  string  // unit as written ("px", "%", "" for bare numbers)
}

// IsZero reports whether the numeric part is exactly zero.
func (n Number) IsZero() bool {
	return n.Value == 0
}

// ParseNumber recognizes tokens which are a single CSS number, percentage or
// dimension, e.g. "0", "1.5em", "-2px", "50%".
func ParseNumber(token string) (Number, bool) {
	if token == "" {
		return Number{}, false
	}

	l := css.NewLexer(parse.NewInputString(token))
	tt, data := l.Next()
	switch tt {
	case css.NumberToken, css.PercentageToken, css.DimensionToken:
	default:
		return Number{}, false
	}
	if len(data) != len(token) {
		return Number{}, false
	}

	end := numericPrefix(token)
	if end == 0 {
		return Number{}, false
	}
	v, err := strconv.ParseFloat(token[:end], 64)
	if err != nil {
		return Number{}, false
	}
	return Number{Text: token[:end], Value: v, Unit: token[end:]}, true
}

// numericPrefix returns the length of the leading <number> production of s.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	// exponent only when followed by digits, otherwise "e" starts a unit (em, ex)
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Type is the physical dimension a unit belongs to.
type Type int

const (
	Unknown Type = iota
	Length
	Time
	Angle
	Frequency
	Resolution
	Percentage
)

func (t Type) String() string {
	switch t {
	case Length:
		return "length"
	case Time:
		return "time"
	case Angle:
		return "angle"
	case Frequency:
		return "frequency"
	case Resolution:
		return "resolution"
	case Percentage:
		return "percentage"
	default:
		return "unknown"
	}
}

var unitTypes = map[string]Type{
	// absolute and font relative lengths
	"px": Length, "cm": Length, "mm": Length, "q": Length, "in": Length, "pt": Length, "pc": Length,
	"em": Length, "rem": Length, "ex": Length, "rex": Length, "ch": Length, "rch": Length,
	"cap": Length, "rcap": Length, "ic": Length, "ric": Length, "lh": Length, "rlh": Length,
	// viewport and container lengths
	"vw": Length, "vh": Length, "vi": Length, "vb": Length, "vmin": Length, "vmax": Length,
	"svw": Length, "svh": Length, "lvw": Length, "lvh": Length, "dvw": Length, "dvh": Length,
	"cqw": Length, "cqh": Length, "cqi": Length, "cqb": Length, "cqmin": Length, "cqmax": Length,

	"s": Time, "ms": Time,

	"deg": Angle, "grad": Angle, "rad": Angle, "turn": Angle,

	"hz": Frequency, "khz": Frequency,

	"dpi": Resolution, "dpcm": Resolution, "dppx": Resolution, "x": Resolution,

	"%": Percentage,
}

// UnitType classifies a unit, case-insensitively.
func UnitType(unit string) Type {
	return unitTypes[strings.ToLower(unit)]
}

// IsLength reports whether token is a length or a unitless zero.
func IsLength(token string) bool {
	n, ok := ParseNumber(token)
	if !ok {
		return false
	}
	if n.Unit == "" {
		return n.IsZero()
	}
	return UnitType(n.Unit) == Length
}

// IsLengthOrPercentage reports whether token is a length, a percentage or a
// unitless zero.
func IsLengthOrPercentage(token string) bool {
	n, ok := ParseNumber(token)
	if !ok {
		return false
	}
	if n.Unit == "" {
		return n.IsZero()
	}
	t := UnitType(n.Unit)
	return t == Length || t == Percentage
}

// IsDimension reports whether token is a number carrying any unit, including
// percentages.
func IsDimension(token string) bool {
	n, ok := ParseNumber(token)
	return ok && n.Unit != ""
}

// IsTime reports whether token is a number with a time unit.
func IsTime(token string) bool {
	n, ok := ParseNumber(token)
	return ok && UnitType(n.Unit) == Time
}

// IsAngle reports whether token is a number with an angle unit.
func IsAngle(token string) bool {
	n, ok := ParseNumber(token)
	return ok && UnitType(n.Unit) == Angle
}

// IsNumber reports whether token is a bare number without a unit.
func IsNumber(token string) bool {
	n, ok := ParseNumber(token)
	return ok && n.Unit == ""
}

// IsInteger reports whether token is a bare integer, e.g. "3" or "-1".
func IsInteger(token string) bool {
	n, ok := ParseNumber(token)
	return ok && n.Unit == "" && !strings.ContainsAny(n.Text, ".eE")
}

var mathFunctions = []string{"calc(", "min(", "max(", "clamp("}

// IsMathFunction reports whether token is a calc(), min(), max() or clamp()
// expression.
func IsMathFunction(token string) bool {
	t := strings.ToLower(token)
	for _, prefix := range mathFunctions {
		if strings.HasPrefix(t, prefix) || strings.HasPrefix(t, "-webkit-"+prefix) || strings.HasPrefix(t, "-moz-"+prefix) {
			return true
		}
	}
	return false
}

// HasVar reports whether value references a custom property.
func HasVar(value string) bool {
	return strings.Contains(strings.ToLower(value), "var(")
}

var globalKeywords = map[string]struct{}{
	"inherit": {},
	"initial": {},
	"unset":   {},
	"revert":  {},
}

// IsGlobalKeyword reports whether value is one of the CSS-wide keywords,
// case-insensitively.
func IsGlobalKeyword(value string) bool {
	_, ok := globalKeywords[strings.ToLower(strings.TrimSpace(value))]
	return ok
}
