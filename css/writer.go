package css

import (
	"fmt"
	"io"
	"strings"
)

// DefaultIndent is used by WriteTo for every nesting level.
const DefaultIndent = "  "

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Declarations keep their block order.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	return s.Write(w, DefaultIndent)
}

// Write writes the stylesheet to w using indent for every nesting level.
func (s *Stylesheet) Write(w io.Writer, indent string) (int64, error) {
	sw := &sheetWriter{w: w, indent: indent}
	if s.Charset != "" {
		sw.printf("@charset \"%s\";\n", s.Charset)
	}
	sw.nodes(s.Nodes, 0)
	return sw.total, sw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns the CSS text of the block declarations, one per line.
func (b *Block) String() string {
	var sb strings.Builder
	sw := &sheetWriter{w: &sb, indent: DefaultIndent}
	sw.block(b, 0)
	return sb.String()
}

// sheetWriter remembers first error and stops writing after it.
type sheetWriter struct {
	w      io.Writer
	indent string
	total  int64
	err    error
}

func (sw *sheetWriter) printf(format string, args ...any) {
	if sw.err != nil {
		return
	}
	n, err := fmt.Fprintf(sw.w, format, args...)
	sw.total += int64(n)
	sw.err = err
}

func (sw *sheetWriter) pad(level int) string {
	return strings.Repeat(sw.indent, level)
}

func (sw *sheetWriter) nodes(nodes []Node, level int) {
	for i, n := range nodes {
		switch n := n.(type) {
		case *Comment:
			sw.printf("%s%s\n", sw.pad(level), n.Text)
		case *Rule:
			sw.printf("%s%s {\n", sw.pad(level), n.Selector)
			sw.block(n.Block, level+1)
			sw.printf("%s}\n", sw.pad(level))
		case *AtRule:
			sw.atRule(n, level)
		}

		// blank line between top-level items (except after last)
		if level == 0 && i < len(nodes)-1 {
			if _, ok := n.(*Comment); !ok {
				sw.printf("\n")
			}
		}
	}
}

func (sw *sheetWriter) atRule(at *AtRule, level int) {
	head := at.Name
	if at.Prelude != "" {
		head += " " + at.Prelude
	}
	if !at.HasBody {
		sw.printf("%s%s;\n", sw.pad(level), head)
		return
	}

	sw.printf("%s%s {\n", sw.pad(level), head)
	switch {
	case at.Block != nil:
		sw.block(at.Block, level+1)
		sw.nodes(at.Nodes, level+1)
	case at.Body != "":
		sw.printf("%s%s\n", sw.pad(level+1), at.Body)
	default:
		sw.nodes(at.Nodes, level+1)
	}
	sw.printf("%s}\n", sw.pad(level))
}

func (sw *sheetWriter) block(b *Block, level int) {
	if b == nil {
		return
	}
	for _, text := range b.commentsAfter(nil) {
		sw.printf("%s%s\n", sw.pad(level), text)
	}
	for _, d := range b.decls {
		sw.printf("%s%s;\n", sw.pad(level), d.String())
		for _, text := range b.commentsAfter(d) {
			sw.printf("%s%s\n", sw.pad(level), text)
		}
	}
}
