package normalize

import (
	"strings"

	"go.uber.org/zap"

	"cssnorm/css"
	"cssnorm/css/values"
)

// shorthand describes how omitted components of a shorthand are restored.
type shorthand struct {
	slots    []string
	defaults []string
	// layered shorthands are comma separated lists of independent layers
	layered bool
	// classify maps components of a single layer onto slots. Unresolved slot
	// is left empty. When ok is false the value is left untouched.
	classify func(tokens []string) (slots []string, ok bool)
	// format serializes filled slots of a single layer, by default non-empty
	// slots are joined with spaces
	format func(slots []string) string
}

// shorthands is the registry of supported families keyed by property name.
var shorthands = map[string]*shorthand{
	"animation": {
		slots:    []string{"name", "duration", "timing-function", "delay", "iteration-count", "direction", "fill-mode", "play-state"},
		defaults: []string{"none", "0s", "ease", "0s", "1", "normal", "none", "running"},
		layered:  true,
		classify: classifyAnimation,
	},
	"transition": {
		slots:    []string{"property", "duration", "timing-function", "delay"},
		defaults: []string{"all", "0s", "ease", "0s"},
		layered:  true,
		classify: classifyTransition,
	},
	"box-shadow": {
		slots:    []string{"offset-x", "offset-y", "blur-radius", "spread-radius", "color", "inset"},
		defaults: []string{"0", "0", "0", "0", "currentcolor", ""},
		layered:  true,
		classify: classifyBoxShadow,
	},
	"flex": {
		slots:    []string{"grow", "shrink", "basis"},
		defaults: []string{"0", "1", "0%"},
		classify: classifyFlex,
	},
	"gap": {
		slots:    []string{"row-gap", "column-gap"},
		defaults: []string{"normal", "normal"},
		classify: classifyGap,
	},
	"list-style": {
		slots:    []string{"type", "position", "image"},
		defaults: []string{"disc", "outside", "none"},
		classify: classifyListStyle,
	},
	"font": {
		slots:    []string{"style", "variant", "weight", "stretch", "size", "line-height", "family"},
		defaults: []string{"normal", "normal", "normal", "normal", "medium", "normal", "sans-serif"},
		classify: classifyFont,
		format:   formatFont,
	},
	"outline": {
		slots:    []string{"width", "style", "color"},
		defaults: []string{"medium", "none", "currentcolor"},
		classify: classifyOutline,
	},
}

// Shorthands returns names of properties Defaulter knows about.
func Shorthands() []string {
	out := make([]string, 0, len(shorthands))
	for name := range shorthands {
		out = append(out, name)
	}
	return out
}

// Defaulter spells out every component of multi-value shorthands, using
// initial values for the omitted ones.
type Defaulter struct {
	ignore ignoreSet
	log    *zap.Logger
}

// NewDefaulter creates defaults pass.
func NewDefaulter(opts Options, log *zap.Logger) *Defaulter {
	if log == nil {
		log = zap.NewNop()
	}
	df := &Defaulter{ignore: newIgnoreSet(opts.Ignore), log: log.Named("defaults")}
	if len(df.ignore) > 0 {
		df.log.Debug("Ignoring properties", zap.Strings("properties", df.ignore.names()))
	}
	return df
}

// Name returns pass name.
func (*Defaulter) Name() string { return "defaults" }

// Apply fills shorthands in every declaration block of the stylesheet.
func (df *Defaulter) Apply(sheet *css.Stylesheet) Stats {
	var stats Stats
	sheet.WalkBlocks(func(b *css.Block) {
		for _, d := range b.Declarations() {
			stats.Visited++
			res := df.Default(d)
			before := d.Value
			if res.apply(b, d) {
				stats.Transformed++
				stats.Produced += len(res.Declarations())
				df.log.Debug("Defaults added", zap.String("property", d.Property), zap.String("from", before), zap.String("to", d.Value))
			}
		}
	})
	return stats
}

// Default returns declaration with all shorthand components present. The
// value is unchanged when the property is not a known shorthand or its value
// cannot be classified.
func (df *Defaulter) Default(d *css.Declaration) Result {
	if !df.ignore.eligible(d) || values.HasVar(d.Value) {
		return Unchanged()
	}
	sh, ok := shorthands[d.Property]
	if !ok {
		return Unchanged()
	}

	layers := []string{strings.TrimSpace(d.Value)}
	if sh.layered {
		layers = values.SplitComma(d.Value)
	}
	if len(layers) == 0 {
		return Unchanged()
	}

	out := make([]string, 0, len(layers))
	for _, layer := range layers {
		s, ok := sh.fill(layer)
		if !ok {
			return Unchanged()
		}
		out = append(out, s)
	}

	value := strings.Join(out, ", ")
	if value == d.Value {
		return Unchanged()
	}
	return Transformed(Decl{Property: d.Property, Value: value})
}

// fill classifies a single layer and serializes it with defaults applied.
func (sh *shorthand) fill(layer string) (string, bool) {
	tokens := values.Split(layer)
	if len(tokens) == 0 {
		return "", false
	}
	slots, ok := sh.classify(tokens)
	if !ok || len(slots) != len(sh.slots) {
		return "", false
	}
	for i := range slots {
		if slots[i] == "" {
			slots[i] = sh.defaults[i]
		}
	}
	if sh.format != nil {
		return sh.format(slots), true
	}
	return joinNonEmpty(slots), true
}

func joinNonEmpty(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func oneOf(token string, set ...string) bool {
	for _, s := range set {
		if strings.EqualFold(token, s) {
			return true
		}
	}
	return false
}
