package css

import (
	"cssnorm/css/values"
	"cssnorm/utils/debug"
)

// Dump renders stylesheet structure as indented text tree. Regular declaration
// values are shown split into value nodes.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter("")
	tw.Line(0, "stylesheet (%d declarations)", s.Declarations())
	if s.Charset != "" {
		tw.Field(1, "charset", s.Charset)
	}
	dumpNodes(tw, s.Nodes, 1)
	for _, w := range s.Warnings {
		tw.Field(1, "warning", w)
	}
	return tw.String()
}

func dumpNodes(tw *debug.TreeWriter, nodes []Node, depth int) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Rule:
			tw.Line(depth, "rule")
			tw.Field(depth+1, "selector", n.Selector)
			dumpBlock(tw, n.Block, depth+1)
		case *AtRule:
			tw.Line(depth, "at-rule %s", n.Name)
			if n.Prelude != "" {
				tw.Field(depth+1, "prelude", n.Prelude)
			}
			if n.Block != nil {
				dumpBlock(tw, n.Block, depth+1)
			}
			dumpNodes(tw, n.Nodes, depth+1)
			if n.Body != "" {
				tw.Field(depth+1, "body", n.Body)
			}
		case *Comment:
			tw.Field(depth, "comment", n.Text)
		}
	}
}

func dumpBlock(tw *debug.TreeWriter, b *Block, depth int) {
	tw.Line(depth, "block (%d)", b.Len())
	for _, text := range b.commentsAfter(nil) {
		tw.Field(depth+1, "comment", text)
	}
	for _, d := range b.Declarations() {
		dumpDeclaration(tw, d, depth+1)
		for _, text := range b.commentsAfter(d) {
			tw.Field(depth+1, "comment", text)
		}
	}
}

func dumpDeclaration(tw *debug.TreeWriter, d *Declaration, depth int) {
	flags := ""
	if d.Important {
		flags = " !important"
	}
	if d.Custom {
		tw.Line(depth, "custom %s%s", d.Property, flags)
		tw.Field(depth+1, "value", d.Value)
		return
	}
	tw.Line(depth, "declaration %s%s", d.Property, flags)
	dumpValue(tw, values.Parse(d.Value), depth+1)
}

func dumpValue(tw *debug.TreeWriter, ns values.Nodes, depth int) {
	for _, n := range ns {
		switch n.Type {
		case values.Space:
		case values.Function:
			if n.Closed {
				tw.Line(depth, "function %s()", n.Value)
			} else {
				tw.Line(depth, "function %s( unclosed", n.Value)
			}
			dumpValue(tw, n.Nodes, depth+1)
		default:
			tw.Field(depth, n.Type.String(), n.Value)
		}
	}
}
