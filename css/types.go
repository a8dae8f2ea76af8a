package css

import (
	"slices"
	"strings"
)

// Declaration is a single "property: value" pair of a declaration block.
type Declaration struct {
	Property  string // lowercase for regular properties, as written for custom ones
	Value     string // raw value without !important
	Important bool
	Custom    bool // custom property (--name)
}

// NewDeclaration creates declaration detecting custom properties and
// normalizing regular property names to lowercase.
func NewDeclaration(prop, value string, important bool) *Declaration {
	d := &Declaration{Property: prop, Value: value, Important: important}
	if IsCustomProperty(prop) {
		d.Custom = true
	} else {
		d.Property = strings.ToLower(prop)
	}
	return d
}

// Clone returns a copy of the declaration with property and value replaced.
// Importance is preserved.
func (d *Declaration) Clone(prop, value string) *Declaration {
	return &Declaration{
		Property:  prop,
		Value:     value,
		Important: d.Important,
		Custom:    IsCustomProperty(prop),
	}
}

// String returns CSS text of the declaration without trailing semicolon.
func (d *Declaration) String() string {
	s := d.Property + ":"
	if d.Value != "" {
		s += " " + d.Value
	}
	if d.Important {
		s += " !important"
	}
	return s
}

// IsCustomProperty reports whether name denotes a custom property.
func IsCustomProperty(name string) bool {
	return strings.HasPrefix(name, "--")
}

// Block is an ordered list of declarations owned by a rule or an at-rule.
// Comments found between declarations are kept attached to the declaration
// preceding them and follow it through Replace and Remove.
type Block struct {
	decls    []*Declaration
	comments []blockComment
}

// blockComment is placed after declaration, at the block start when after is
// nil.
type blockComment struct {
	after *Declaration
	text  string
}

// NewBlock creates block holding decls in the given order.
func NewBlock(decls ...*Declaration) *Block {
	return &Block{decls: slices.Clone(decls)}
}

// Declarations returns a snapshot of the declarations in source order.
// Mutating the block does not affect the returned slice.
func (b *Block) Declarations() []*Declaration {
	return slices.Clone(b.decls)
}

// Len returns number of declarations in the block.
func (b *Block) Len() int {
	return len(b.decls)
}

// Index returns position of ref in the block or -1.
func (b *Block) Index(ref *Declaration) int {
	return slices.Index(b.decls, ref)
}

// Append adds decls at the end of the block.
func (b *Block) Append(decls ...*Declaration) {
	b.decls = append(b.decls, decls...)
}

// AppendComment adds comment text (including delimiters) after the current
// last declaration.
func (b *Block) AppendComment(text string) {
	var after *Declaration
	if len(b.decls) > 0 {
		after = b.decls[len(b.decls)-1]
	}
	b.comments = append(b.comments, blockComment{after: after, text: text})
}

// Comments returns number of comments in the block.
func (b *Block) Comments() int {
	return len(b.comments)
}

// commentsAfter returns comments placed after d, or at the block start for
// nil d.
func (b *Block) commentsAfter(d *Declaration) []string {
	var texts []string
	for _, c := range b.comments {
		if c.after == d {
			texts = append(texts, c.text)
		}
	}
	return texts
}

func (b *Block) reattach(from, to *Declaration) {
	for i := range b.comments {
		if b.comments[i].after == from {
			b.comments[i].after = to
		}
	}
}

func (b *Block) previous(i int) *Declaration {
	if i > 0 {
		return b.decls[i-1]
	}
	return nil
}

// InsertBefore inserts decls immediately before ref keeping their order.
// It returns false when ref does not belong to the block.
func (b *Block) InsertBefore(ref *Declaration, decls ...*Declaration) bool {
	i := b.Index(ref)
	if i < 0 {
		return false
	}
	b.decls = slices.Insert(b.decls, i, decls...)
	return true
}

// InsertAfter inserts decls immediately after ref keeping their order.
// It returns false when ref does not belong to the block.
func (b *Block) InsertAfter(ref *Declaration, decls ...*Declaration) bool {
	i := b.Index(ref)
	if i < 0 {
		return false
	}
	b.decls = slices.Insert(b.decls, i+1, decls...)
	return true
}

// Remove deletes ref from the block.
func (b *Block) Remove(ref *Declaration) bool {
	i := b.Index(ref)
	if i < 0 {
		return false
	}
	b.reattach(ref, b.previous(i))
	b.decls = slices.Delete(b.decls, i, i+1)
	return true
}

// Replace substitutes ref with decls at the same position.
func (b *Block) Replace(ref *Declaration, decls ...*Declaration) bool {
	i := b.Index(ref)
	if i < 0 {
		return false
	}
	if len(decls) > 0 {
		b.reattach(ref, decls[len(decls)-1])
	} else {
		b.reattach(ref, b.previous(i))
	}
	b.decls = slices.Replace(b.decls, i, i+1, decls...)
	return true
}

// Get returns the last declaration for the property (the one which wins in
// the cascade) or nil.
func (b *Block) Get(prop string) *Declaration {
	for i := len(b.decls) - 1; i >= 0; i-- {
		if b.decls[i].Property == prop {
			return b.decls[i]
		}
	}
	return nil
}

// Node is a top-level or nested item of a stylesheet: *Rule, *AtRule or
// *Comment.
type Node interface {
	node()
}

// Rule is a qualified rule: selector with declaration block.
type Rule struct {
	Selector string
	Block    *Block
}

// AtRule is an at-rule. Statement at-rules (@import) have neither Block nor
// Nodes. Grouping rules (@media, @supports, @keyframes...) keep nested Nodes,
// descriptor rules (@font-face, @page) keep Block. Unknown at-rules with a
// body keep it verbatim in Body.
type AtRule struct {
	Name    string // including '@', lowercase
	Prelude string
	Block   *Block
	Nodes   []Node
	Body    string
	HasBody bool
}

// Comment is a top-level comment, kept verbatim including delimiters.
type Comment struct {
	Text string
}

func (*Rule) node()    {}
func (*AtRule) node()  {}
func (*Comment) node() {}

// Stylesheet is a parsed CSS stylesheet.
type Stylesheet struct {
	Charset  string   // value of @charset rule if present
	Nodes    []Node   // top-level items in source order
	Warnings []string // problems encountered while parsing
}

// WalkRules calls fn for every qualified rule in source order, descending
// into grouping at-rules.
func (s *Stylesheet) WalkRules(fn func(*Rule)) {
	walkNodes(s.Nodes, func(n Node) {
		if r, ok := n.(*Rule); ok {
			fn(r)
		}
	})
}

// WalkBlocks calls fn for every declaration block in source order: rule
// blocks as well as descriptor blocks of at-rules like @font-face.
func (s *Stylesheet) WalkBlocks(fn func(*Block)) {
	walkNodes(s.Nodes, func(n Node) {
		switch n := n.(type) {
		case *Rule:
			fn(n.Block)
		case *AtRule:
			if n.Block != nil {
				fn(n.Block)
			}
		}
	})
}

func walkNodes(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		if at, ok := n.(*AtRule); ok {
			walkNodes(at.Nodes, fn)
		}
	}
}

// Declarations returns the total number of declarations in the stylesheet.
func (s *Stylesheet) Declarations() int {
	total := 0
	s.WalkBlocks(func(b *Block) {
		total += b.Len()
	})
	return total
}
