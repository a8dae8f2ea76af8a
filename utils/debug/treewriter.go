// Package debug formats nested structures as indented text for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultIndent = "  "

// TreeWriter accumulates indented lines, one per tree node.
type TreeWriter struct {
	sb     strings.Builder
	indent string
}

// NewTreeWriter returns writer using indent for every depth level, two spaces
// when indent is empty.
func NewTreeWriter(indent string) *TreeWriter {
	if indent == "" {
		indent = defaultIndent
	}
	return &TreeWriter{indent: indent}
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

// Len returns number of bytes written so far.
func (tw *TreeWriter) Len() int {
	return tw.sb.Len()
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

// Field writes "label: value" line at depth with value quoted, so that
// whitespace and control characters stay visible.
func (tw *TreeWriter) Field(depth int, label, value string) {
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	tw.sb.WriteString(strconv.Quote(value))
	tw.sb.WriteByte('\n')
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.sb.WriteString(tw.indent)
	}
}
