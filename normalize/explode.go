package normalize

import (
	"strings"

	"go.uber.org/zap"

	"cssnorm/css"
	"cssnorm/css/values"
)

// Explode replaces box model, multi-column and border shorthands with their
// longhands. Longhands are inserted at the position of the shorthand so the
// cascade order inside a rule is preserved.
type Explode struct {
	ignore ignoreSet
	log    *zap.Logger
}

// NewExplode creates explode pass.
func NewExplode(opts Options, log *zap.Logger) *Explode {
	if log == nil {
		log = zap.NewNop()
	}
	return &Explode{ignore: newIgnoreSet(opts.Ignore), log: log.Named("explode")}
}

// Name returns pass name.
func (*Explode) Name() string { return "explode" }

// explodeStages are applied to every rule in order, each stage over the
// declarations present when it starts.
var explodeStages = [...]func(prop string) bool{
	func(prop string) bool { return prop == "margin" },
	func(prop string) bool { return prop == "padding" },
	func(prop string) bool { return prop == "columns" },
	func(prop string) bool { return strings.HasPrefix(prop, "border") },
}

// Apply explodes shorthands in every qualified rule of the stylesheet.
func (e *Explode) Apply(sheet *css.Stylesheet) Stats {
	var stats Stats
	sheet.WalkRules(func(r *css.Rule) {
		stats.add(e.ApplyBlock(r.Block))
	})
	return stats
}

// ApplyBlock explodes shorthands of a single declaration block. Declarations
// inserted by a stage are never examined again.
func (e *Explode) ApplyBlock(block *css.Block) Stats {
	var stats Stats
	for _, matches := range explodeStages {
		for _, d := range block.Declarations() {
			if block.Index(d) < 0 || !matches(d.Property) {
				continue
			}
			stats.Visited++
			res := e.ExplodeDeclaration(d)
			if res.apply(block, d) {
				stats.Transformed++
				stats.Produced += len(res.Declarations())
				e.log.Debug("Shorthand exploded", zap.String("property", d.Property), zap.String("value", d.Value), zap.Int("longhands", len(res.Declarations())))
			}
		}
	}
	return stats
}

// ExplodeDeclaration returns longhands for a single shorthand declaration.
// Border shorthands are exploded one level at a time: border produces
// border-top and friends, border-top produces border-top-width and friends.
func (e *Explode) ExplodeDeclaration(d *css.Declaration) Result {
	if !e.ignore.eligible(d) || values.HasVar(d.Value) {
		return Unchanged()
	}

	switch prop := d.Property; prop {
	case "margin", "padding":
		return explodeBox(prop, d.Value)
	case "columns":
		return explodeColumns(d.Value)
	default:
		return explodeBorder(prop, d.Value)
	}
}

// explodeBox expands margin and padding into four sides.
func explodeBox(prop, value string) Result {
	sides, ok := parseTrbl(value)
	if !ok {
		return Unchanged()
	}
	out := make([]Decl, 0, len(sides))
	for i, side := range trblSides {
		out = append(out, Decl{Property: prop + "-" + side, Value: sides[i]})
	}
	return Transformed(out...)
}

// explodeColumns routes components of columns into column-width and
// column-count. Dimensions are widths, other non-auto components are counts
// and auto takes the first slot still free. Missing slot becomes auto.
func explodeColumns(value string) Result {
	parts := values.Split(value)
	if len(parts) == 0 || len(parts) > 2 {
		return Unchanged()
	}
	if len(parts) == 1 {
		parts = append(parts, "auto")
	}

	var width, count string
	var autos int
	for _, p := range parts {
		switch {
		case strings.EqualFold(p, "auto"):
			autos++
			continue
		case values.IsDimension(p) || values.IsMathFunction(p):
			if width != "" {
				return Unchanged()
			}
			width = p
		default:
			if count != "" {
				return Unchanged()
			}
			count = p
		}
	}
	for ; autos > 0; autos-- {
		if width == "" {
			width = "auto"
		} else {
			count = "auto"
		}
	}

	return Transformed(
		Decl{Property: "column-width", Value: width},
		Decl{Property: "column-count", Value: count},
	)
}

// explodeBorder performs a single step of border cascade.
func explodeBorder(prop, value string) Result {
	if prop == "border" {
		if !isValidWsc(parseWsc(value, borderStyles)) {
			return Unchanged()
		}
		out := make([]Decl, 0, len(trblSides))
		for _, side := range trblSides {
			out = append(out, Decl{Property: "border-" + side, Value: value})
		}
		return Transformed(out...)
	}

	side, rest, _ := strings.Cut(strings.TrimPrefix(prop, "border-"), "-")

	// border-top -> border-top-width, border-top-style, border-top-color
	if isSide(side) && rest == "" {
		v := parseWsc(value, borderStyles)
		if !isValidWsc(v) {
			return Unchanged()
		}
		filled := v.filled()
		out := make([]Decl, 0, len(wscSuffixes))
		for i, suffix := range wscSuffixes {
			out = append(out, Decl{Property: prop + "-" + suffix, Value: filled[i]})
		}
		return Transformed(out...)
	}

	// border-width -> border-top-width, border-right-width...
	if rest == "" && isWscSuffix(side) {
		sides, ok := parseTrbl(value)
		if !ok {
			return Unchanged()
		}
		out := make([]Decl, 0, len(trblSides))
		for i, s := range trblSides {
			out = append(out, Decl{Property: "border-" + s + "-" + side, Value: sides[i]})
		}
		return Transformed(out...)
	}

	return Unchanged()
}

func isSide(s string) bool {
	for _, side := range trblSides {
		if s == side {
			return true
		}
	}
	return false
}

func isWscSuffix(s string) bool {
	for _, suffix := range wscSuffixes {
		if s == suffix {
			return true
		}
	}
	return false
}
