// Package values tokenizes CSS property values into a lossless node tree and
// provides the small classification helpers shorthand grammars are built on.
package values

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// NodeType is the kind of a value node.
type NodeType int

const (
	Word     NodeType = iota // ident, number, dimension, hash, url(...) etc.
	String                   // quoted string including quotes
	Function                 // name( ... ) or bare ( ... ) when Name is empty
	Div                      // ',' '/' or ':' separator
	Space                    // whitespace run
	Comment                  // /* ... */
)

var nodeTypeNames = [...]string{"word", "string", "function", "div", "space", "comment"}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "unknown"
	}
	return nodeTypeNames[t]
}

// Node is a single element of a parsed value.
type Node struct {
	Type   NodeType
	Value  string // raw text; function name (without parenthesis) for Function
	Nodes  Nodes  // function arguments
	Closed bool   // function had closing parenthesis in the source
}

// Nodes is a sequence of sibling value nodes.
type Nodes []*Node

// String returns the CSS text of the node.
func (n *Node) String() string {
	if n.Type != Function {
		return n.Value
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n.Type != Function {
		sb.WriteString(n.Value)
		return
	}
	sb.WriteString(n.Value)
	sb.WriteByte('(')
	for _, c := range n.Nodes {
		c.write(sb)
	}
	if n.Closed {
		sb.WriteByte(')')
	}
}

// String returns the CSS text of the node sequence. Parse followed by String
// reproduces the input exactly.
func (ns Nodes) String() string {
	var sb strings.Builder
	for _, n := range ns {
		n.write(&sb)
	}
	return sb.String()
}

// Walk calls fn for every node in depth-first order. When fn returns false for
// a function node its arguments are not visited.
func Walk(ns Nodes, fn func(*Node) bool) {
	for _, n := range ns {
		if fn(n) && n.Type == Function {
			Walk(n.Nodes, fn)
		}
	}
}

// Parse splits value into a node tree using the CSS tokenizer. Adjacent tokens
// which are not separated by whitespace, a divider or parenthesis are joined
// into a single Word.
func Parse(value string) Nodes {
	var (
		root  Nodes
		stack []*Node
		word  strings.Builder
		inWrd bool
	)

	appendNode := func(n *Node) {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.Nodes = append(top.Nodes, n)
			return
		}
		root = append(root, n)
	}
	flush := func() {
		if inWrd {
			appendNode(&Node{Type: Word, Value: word.String()})
			word.Reset()
			inWrd = false
		}
	}

	l := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			break
		}
		text := string(data)

		switch tt {
		case css.WhitespaceToken:
			flush()
			appendNode(&Node{Type: Space, Value: text})
		case css.CommentToken:
			flush()
			appendNode(&Node{Type: Comment, Value: text})
		case css.CommaToken, css.ColonToken:
			flush()
			appendNode(&Node{Type: Div, Value: text})
		case css.StringToken, css.BadStringToken:
			flush()
			appendNode(&Node{Type: String, Value: text})
		case css.FunctionToken, css.LeftParenthesisToken:
			flush()
			fn := &Node{Type: Function, Value: strings.TrimSuffix(text, "(")}
			appendNode(fn)
			stack = append(stack, fn)
		case css.RightParenthesisToken:
			flush()
			if len(stack) == 0 {
				// unbalanced, keep it as text
				word.WriteString(text)
				inWrd = true
				continue
			}
			stack[len(stack)-1].Closed = true
			stack = stack[:len(stack)-1]
		case css.DelimToken:
			if text == "/" {
				flush()
				appendNode(&Node{Type: Div, Value: text})
				continue
			}
			word.WriteString(text)
			inWrd = true
		default:
			word.WriteString(text)
			inWrd = true
		}
	}
	flush()
	return root
}

// Split returns top-level space separated components of value. Whitespace
// inside functions and strings does not split.
func Split(value string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, n := range Parse(value) {
		switch n.Type {
		case Space, Comment:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteString(n.String())
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// SplitComma returns top-level comma separated layers of value, each trimmed.
// Empty layers are dropped.
func SplitComma(value string) []string {
	var (
		out []string
		cur strings.Builder
	)
	add := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, n := range Parse(value) {
		if n.Type == Div && n.Value == "," {
			add()
			continue
		}
		cur.WriteString(n.String())
	}
	add()
	return out
}
