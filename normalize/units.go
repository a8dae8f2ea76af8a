package normalize

import (
	"strings"

	"go.uber.org/zap"

	"cssnorm/css"
	"cssnorm/css/values"
)

// canonicalUnits are appended to bare zeros of the category.
var canonicalUnits = map[values.Type]string{
	values.Length:     "px",
	values.Time:       "s",
	values.Angle:      "deg",
	values.Frequency:  "Hz",
	values.Resolution: "dppx",
}

// propertyUnits maps properties to the dimension of their numeric values.
// values.Unknown marks properties where unitless numbers are meaningful.
var propertyUnits = map[string]values.Type{
	// box model
	"width": values.Length, "height": values.Length,
	"min-width": values.Length, "max-width": values.Length,
	"min-height": values.Length, "max-height": values.Length,
	"block-size": values.Length, "inline-size": values.Length,
	"min-block-size": values.Length, "max-block-size": values.Length,
	"min-inline-size": values.Length, "max-inline-size": values.Length,
	"margin": values.Length, "margin-top": values.Length, "margin-right": values.Length,
	"margin-bottom": values.Length, "margin-left": values.Length,
	"margin-block": values.Length, "margin-inline": values.Length,
	"padding": values.Length, "padding-top": values.Length, "padding-right": values.Length,
	"padding-bottom": values.Length, "padding-left": values.Length,
	"padding-block": values.Length, "padding-inline": values.Length,

	// borders and outlines
	"border": values.Length, "border-top": values.Length, "border-right": values.Length,
	"border-bottom": values.Length, "border-left": values.Length,
	"border-width": values.Length, "border-top-width": values.Length, "border-right-width": values.Length,
	"border-bottom-width": values.Length, "border-left-width": values.Length,
	"border-radius": values.Length, "border-top-left-radius": values.Length, "border-top-right-radius": values.Length,
	"border-bottom-left-radius": values.Length, "border-bottom-right-radius": values.Length,
	"border-spacing": values.Length,
	"outline": values.Length, "outline-width": values.Length, "outline-offset": values.Length,
	"column-rule-width": values.Length,

	// positioning
	"top": values.Length, "right": values.Length, "bottom": values.Length, "left": values.Length,
	"inset": values.Length,

	// text
	"font-size": values.Length, "text-indent": values.Length, "text-shadow": values.Length,
	"letter-spacing": values.Length, "word-spacing": values.Length,
	"box-shadow": values.Length,

	// layout
	"column-width": values.Length, "column-gap": values.Length, "row-gap": values.Length, "gap": values.Length,
	"grid-column-gap": values.Length, "grid-row-gap": values.Length,
	"grid-template-columns": values.Length, "grid-template-rows": values.Length,
	"grid-auto-columns": values.Length, "grid-auto-rows": values.Length,
	"flex-basis": values.Length,

	// backgrounds, masks, shapes
	"background-size": values.Length, "background-position": values.Length,
	"background-position-x": values.Length, "background-position-y": values.Length,
	"object-position": values.Length, "mask-position": values.Length, "mask-size": values.Length,
	"mask-border-width": values.Length, "clip-path": values.Length,
	"offset-distance": values.Length, "offset-path": values.Length,

	// transforms
	"transform": values.Angle, "rotate": values.Angle, "offset-rotate": values.Angle,
	"transform-origin": values.Length, "perspective-origin": values.Length, "perspective": values.Length,

	// svg
	"stroke-width": values.Length, "stroke-dasharray": values.Length, "stroke-dashoffset": values.Length,

	// timing
	"transition": values.Time, "transition-duration": values.Time, "transition-delay": values.Time,
	"animation-duration": values.Time, "animation-delay": values.Time,

	// aural
	"azimuth": values.Angle, "elevation": values.Angle, "pitch": values.Frequency,

	"image-resolution": values.Resolution,

	// unitless numbers are valid here
	"line-height": values.Unknown, "font-weight": values.Unknown, "font-size-adjust": values.Unknown,
	"vertical-align": values.Unknown, "opacity": values.Unknown, "z-index": values.Unknown,
	"order": values.Unknown, "flex": values.Unknown, "flex-grow": values.Unknown, "flex-shrink": values.Unknown,
	"counter-increment": values.Unknown, "counter-reset": values.Unknown,
	"orphans": values.Unknown, "widows": values.Unknown,
	"fill-opacity": values.Unknown, "flood-opacity": values.Unknown, "stop-opacity": values.Unknown,
	"stroke-opacity": values.Unknown, "shape-image-threshold": values.Unknown,
	"column-count": values.Unknown, "animation-iteration-count": values.Unknown,
	// unitless zero in animation is the iteration count
	"animation": values.Unknown,
}

// PropertyCategory returns the dimension of numeric values of the property,
// values.Unknown when bare numbers must be left alone.
func PropertyCategory(prop string) values.Type {
	return propertyUnits[strings.ToLower(prop)]
}

// opaqueFunctions are never looked into.
var opaqueFunctions = map[string]bool{
	"calc": true, "-webkit-calc": true, "-moz-calc": true,
	"min": true, "max": true, "clamp": true, "var": true,
}

var unitlessFunctions = map[string]bool{
	"rgb": true, "rgba": true, "hsl": true, "hsla": true, "hwb": true,
	"lab": true, "lch": true, "oklab": true, "oklch": true, "color": true, "color-mix": true,
	"cubic-bezier": true, "steps": true, "linear": true,
	"matrix": true, "matrix3d": true,
}

// functionCategory returns dimension of bare numbers inside function
// arguments, inherited from the property unless the function defines its own.
func functionCategory(name string, inherited values.Type) values.Type {
	switch {
	case unitlessFunctions[name], strings.HasPrefix(name, "scale"):
		return values.Unknown
	case strings.HasPrefix(name, "translate"), name == "perspective":
		return values.Length
	case strings.HasPrefix(name, "rotate"), strings.HasPrefix(name, "skew"):
		return values.Angle
	}
	return inherited
}

// UnitInjector appends canonical units to bare zero numbers in values of
// properties which expect a dimension.
type UnitInjector struct {
	ignore ignoreSet
	log    *zap.Logger
}

// NewUnitInjector creates units pass.
func NewUnitInjector(opts Options, log *zap.Logger) *UnitInjector {
	if log == nil {
		log = zap.NewNop()
	}
	u := &UnitInjector{ignore: newIgnoreSet(opts.Ignore), log: log.Named("units")}
	if len(u.ignore) > 0 {
		u.log.Debug("Ignoring properties", zap.Strings("properties", u.ignore.names()))
	}
	return u
}

// Name returns pass name.
func (*UnitInjector) Name() string { return "units" }

// Apply injects units in every declaration block of the stylesheet.
func (u *UnitInjector) Apply(sheet *css.Stylesheet) Stats {
	var stats Stats
	sheet.WalkBlocks(func(b *css.Block) {
		for _, d := range b.Declarations() {
			stats.Visited++
			res := u.Inject(d)
			before := d.Value
			if res.apply(b, d) {
				stats.Transformed++
				stats.Produced++
				u.log.Debug("Units added", zap.String("property", d.Property), zap.String("from", before), zap.String("to", d.Value))
			}
		}
	})
	return stats
}

// Inject returns declaration with units added to bare zeros. Arguments of
// calc(), min(), max(), clamp() and var() are kept as written.
func (u *UnitInjector) Inject(d *css.Declaration) Result {
	if !u.ignore.eligible(d) {
		return Unchanged()
	}
	category := PropertyCategory(d.Property)
	if category == values.Unknown {
		return Unchanged()
	}

	nodes := values.Parse(d.Value)
	inject := u.inject
	if d.Property == "rotate" && len(values.Split(d.Value)) == 4 {
		// x y z axis followed by angle
		inject = u.injectLast
	}
	if !inject(d.Property, nodes, category) {
		return Unchanged()
	}
	return Transformed(Decl{Property: d.Property, Value: nodes.String()})
}

func (u *UnitInjector) inject(prop string, nodes values.Nodes, category values.Type) bool {
	changed := false
	for _, n := range nodes {
		switch n.Type {
		case values.Word:
			num, ok := values.ParseNumber(n.Value)
			if !ok {
				continue
			}
			if num.Unit == "" {
				if num.IsZero() {
					n.Value += canonicalUnits[category]
					changed = true
				}
				continue
			}
			if t := values.UnitType(num.Unit); t != category && t != values.Percentage {
				u.log.Debug("Unit does not match property, left as is",
					zap.String("property", prop), zap.String("token", n.Value), zap.Stringer("expected", category))
			}
		case values.Function:
			name := strings.ToLower(n.Value)
			if opaqueFunctions[name] {
				continue
			}
			if name == "rotate3d" {
				changed = u.injectLast(prop, n.Nodes, values.Angle) || changed
				continue
			}
			if fc := functionCategory(name, category); fc != values.Unknown {
				changed = u.inject(prop, n.Nodes, fc) || changed
			}
		}
	}
	return changed
}

// injectLast adds unit to the last component only, leading components are
// unitless axis coordinates.
func (u *UnitInjector) injectLast(prop string, nodes values.Nodes, category values.Type) bool {
	for i := len(nodes) - 1; i >= 0; i-- {
		switch nodes[i].Type {
		case values.Space, values.Div, values.Comment:
			continue
		case values.Word:
			return u.inject(prop, nodes[i:i+1], category)
		}
		return false
	}
	return false
}
