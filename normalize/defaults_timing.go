package normalize

import (
	"strings"

	"cssnorm/css/values"
)

var timingKeywords = []string{"ease", "linear", "ease-in", "ease-out", "ease-in-out", "step-start", "step-end"}

var timingFunctions = []string{"cubic-bezier(", "steps(", "linear("}

func isTimingFunction(token string) bool {
	if oneOf(token, timingKeywords...) {
		return true
	}
	lower := strings.ToLower(token)
	for _, fn := range timingFunctions {
		if strings.HasPrefix(lower, fn) {
			return true
		}
	}
	return false
}

// timeSlots assigns time components: first one is duration, second is delay.
type timeSlots struct {
	seen int
}

// next returns slot index for the next time component or false when both
// duration and delay are already taken.
func (ts *timeSlots) next(duration, delay int) (int, bool) {
	ts.seen++
	switch ts.seen {
	case 1:
		return duration, true
	case 2:
		return delay, true
	}
	return 0, false
}

const (
	animName = iota
	animDuration
	animTiming
	animDelay
	animIterations
	animDirection
	animFillMode
	animPlayState
)

// classifyAnimation handles a single animation layer. Unitless numbers are
// iteration counts, any component not matching other slots is the name.
func classifyAnimation(tokens []string) ([]string, bool) {
	slots := make([]string, 8)
	var times timeSlots

	for _, t := range tokens {
		lower := strings.ToLower(t)
		switch {
		case lower == "none":
			// name unless it is already known, then fill mode
			if slots[animName] == "" {
				slots[animName] = t
			} else {
				slots[animFillMode] = t
			}
		case values.IsTime(t):
			i, ok := times.next(animDuration, animDelay)
			if !ok {
				return nil, false
			}
			slots[i] = t
		case isTimingFunction(t):
			slots[animTiming] = t
		case lower == "infinite" || values.IsNumber(t):
			if slots[animIterations] != "" {
				return nil, false
			}
			slots[animIterations] = t
		case oneOf(lower, "normal", "reverse", "alternate", "alternate-reverse"):
			slots[animDirection] = t
		case oneOf(lower, "forwards", "backwards", "both"):
			slots[animFillMode] = t
		case oneOf(lower, "running", "paused"):
			slots[animPlayState] = t
		default:
			slots[animName] = t
		}
	}
	return slots, true
}

const (
	transProperty = iota
	transDuration
	transTiming
	transDelay
)

// classifyTransition handles a single transition layer. Unitless zero is
// taken for a time since property names are identifiers.
func classifyTransition(tokens []string) ([]string, bool) {
	slots := make([]string, 4)
	var times timeSlots

	for _, t := range tokens {
		switch {
		case values.IsTime(t) || isBareZero(t):
			i, ok := times.next(transDuration, transDelay)
			if !ok {
				return nil, false
			}
			slots[i] = t
		case isTimingFunction(t):
			slots[transTiming] = t
		default:
			slots[transProperty] = t
		}
	}
	return slots, true
}

func isBareZero(token string) bool {
	n, ok := values.ParseNumber(token)
	return ok && n.Unit == "" && n.IsZero()
}
