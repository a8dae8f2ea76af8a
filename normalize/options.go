package normalize

import (
	"slices"
	"strings"

	"cssnorm/css"
	"cssnorm/css/values"
)

// Options configures a pass.
type Options struct {
	// Ignore lists properties the pass must not touch, case-insensitive.
	Ignore []string
}

type ignoreSet map[string]struct{}

func newIgnoreSet(names []string) ignoreSet {
	set := make(ignoreSet, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s ignoreSet) has(prop string) bool {
	_, ok := s[strings.ToLower(prop)]
	return ok
}

// names returns sorted ignored properties, for logging.
func (s ignoreSet) names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// eligible reports whether a pass may look at declaration at all. Custom
// properties, CSS-wide keywords, browser hacks and ignored properties are
// passed through by every pass.
func (s ignoreSet) eligible(d *css.Declaration) bool {
	switch {
	case d == nil || strings.TrimSpace(d.Value) == "":
		return false
	case d.Custom || css.IsCustomProperty(d.Property):
		return false
	case values.IsGlobalKeyword(d.Value):
		return false
	case css.IsHack(d):
		return false
	case s.has(d.Property):
		return false
	}
	return true
}
