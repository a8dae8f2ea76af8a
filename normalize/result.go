// Package normalize rewrites stylesheet declarations into a canonical form:
// shorthands are exploded into longhands, omitted shorthand components are
// filled with their initial values and bare zero numbers get units.
//
// Every pass works declaration by declaration and fails open: a value which
// cannot be classified with confidence is left exactly as it was.
package normalize

import (
	"cssnorm/css"
)

// Decl is a property/value pair produced by a pass. Importance is inherited
// from the source declaration when the pair is applied.
type Decl struct {
	Property string
	Value    string
}

// Result is an outcome of a pass over a single declaration: either the
// declaration stays untouched or it is replaced with Declarations in order.
type Result struct {
	decls   []Decl
	changed bool
}

// Unchanged reports that source declaration must be left as is.
func Unchanged() Result {
	return Result{}
}

// Transformed reports that source declaration must be replaced by decls.
func Transformed(decls ...Decl) Result {
	return Result{decls: decls, changed: true}
}

// Changed reports whether the declaration was transformed.
func (r Result) Changed() bool {
	return r.changed
}

// Declarations returns replacement declarations, nil when unchanged.
func (r Result) Declarations() []Decl {
	return r.decls
}

// apply replaces d in block with result declarations cloned from d.
func (r Result) apply(block *css.Block, d *css.Declaration) bool {
	if !r.changed {
		return false
	}
	// single declaration with the same property is rewritten in place
	if len(r.decls) == 1 && r.decls[0].Property == d.Property {
		d.Value = r.decls[0].Value
		return true
	}
	clones := make([]*css.Declaration, 0, len(r.decls))
	for _, nd := range r.decls {
		clones = append(clones, d.Clone(nd.Property, nd.Value))
	}
	return block.Replace(d, clones...)
}

// Stats counts what a pass did to a stylesheet.
type Stats struct {
	Visited     int // declarations examined
	Transformed int // declarations replaced or rewritten
	Produced    int // declarations produced by replacements
}

func (s *Stats) add(o Stats) {
	s.Visited += o.Visited
	s.Transformed += o.Transformed
	s.Produced += o.Produced
}
