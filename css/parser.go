package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into an ordered tree of rules and
// declarations.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Parsing never fails: malformed
// input is recovered from the way browsers do it and every problem is
// recorded in Stylesheet.Warnings.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	src := ""
	if len(source) > 0 {
		src = source[0]
	}
	if src != "" {
		p.log.Debug("Parsing CSS", zap.String("source", src), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	sheet.Nodes = p.parseRuleList(parser, sheet, false)

	if len(sheet.Warnings) > 0 {
		p.log.Debug("CSS parsed with warnings", zap.String("source", src), zap.Int("warnings", len(sheet.Warnings)))
	}
	return sheet
}

// failed handles ErrorGrammar. It returns true when input is exhausted,
// otherwise the parse error is recorded and parsing continues.
func (p *Parser) failed(parser *css.Parser, sheet *Stylesheet) bool {
	if !parser.HasParseError() {
		return true
	}
	msg := parser.Err().Error()
	sheet.Warnings = append(sheet.Warnings, msg)
	p.log.Debug("CSS parse error", zap.String("error", msg))
	return false
}

// parseRuleList collects rules until end of input or, when nested, until the
// end of the enclosing at-rule.
func (p *Parser) parseRuleList(parser *css.Parser, sheet *Stylesheet, nested bool) []Node {
	var nodes []Node
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if p.failed(parser, sheet) {
				return nodes
			}

		case css.EndAtRuleGrammar:
			if nested {
				return nodes
			}

		case css.CommentGrammar:
			nodes = append(nodes, &Comment{Text: string(data)})

		case css.AtRuleGrammar:
			name := string(data)
			prelude := joinPrelude(parser.Values())
			if name == "@charset" && !nested && len(nodes) == 0 && sheet.Charset == "" {
				sheet.Charset = unquote(prelude)
				continue
			}
			nodes = append(nodes, &AtRule{Name: name, Prelude: prelude})

		case css.BeginAtRuleGrammar:
			nodes = append(nodes, p.parseAtRule(parser, sheet, string(data)))

		case css.BeginRulesetGrammar:
			nodes = append(nodes, &Rule{
				Selector: joinSelector(parser.Values()),
				Block:    p.parseDeclarations(parser, sheet, css.EndRulesetGrammar, nil),
			})

		case css.EndRulesetGrammar:
			// stray closing brace after recovery

		case css.TokenGrammar:
			// <!-- and --> at top level
		}
	}
}

// parseAtRule reads at-rule prelude and body. Body kind is determined the
// same way tokenizer does it: descriptor list, rule list or raw tokens.
func (p *Parser) parseAtRule(parser *css.Parser, sheet *Stylesheet, name string) *AtRule {
	at := &AtRule{Name: name, Prelude: joinPrelude(parser.Values()), HasBody: true}

	switch atRuleKind(name) {
	case bodyDeclarations:
		at.Block = p.parseDeclarations(parser, sheet, css.EndAtRuleGrammar, &at.Nodes)
	case bodyRules:
		at.Nodes = p.parseRuleList(parser, sheet, true)
	default:
		at.Body = p.parseRawBody(parser, sheet)
	}
	p.log.Debug("Parsed at-rule", zap.String("rule", name), zap.String("prelude", at.Prelude))
	return at
}

func (p *Parser) parseRawBody(parser *css.Parser, sheet *Stylesheet) string {
	var sb strings.Builder
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.failed(parser, sheet) {
				return strings.TrimSpace(sb.String())
			}
		case css.EndAtRuleGrammar:
			return strings.TrimSpace(sb.String())
		default:
			sb.Write(data)
		}
	}
}

// parseDeclarations parses declarations until end grammar. At-rules found
// inside the block (@page margin boxes) are appended to nested when it is not
// nil and dropped with a warning otherwise.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet, end css.GrammarType, nested *[]Node) *Block {
	block := NewBlock()

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if p.failed(parser, sheet) {
				return block
			}

		case end:
			return block

		case css.DeclarationGrammar:
			tokens, important := splitImportant(parser.Values())
			value := joinTokens(tokens)
			if value == "" {
				p.log.Debug("Empty declaration value", zap.String("property", string(data)))
			}
			block.Append(&Declaration{Property: string(data), Value: value, Important: important})

		case css.CustomPropertyGrammar:
			var raw string
			if vals := parser.Values(); len(vals) > 0 {
				raw = string(vals[0].Data)
			}
			value, important := cutImportant(strings.TrimSpace(raw))
			block.Append(&Declaration{Property: string(data), Value: value, Important: important, Custom: true})

		case css.CommentGrammar:
			block.AppendComment(string(data))

		case css.AtRuleGrammar:
			at := &AtRule{Name: string(data), Prelude: joinPrelude(parser.Values())}
			p.addNested(sheet, nested, at)

		case css.BeginAtRuleGrammar:
			at := p.parseAtRule(parser, sheet, string(data))
			p.addNested(sheet, nested, at)
		}
	}
}

func (p *Parser) addNested(sheet *Stylesheet, nested *[]Node, at *AtRule) {
	if nested == nil {
		sheet.Warnings = append(sheet.Warnings, "at-rule inside declaration block dropped: "+at.Name)
		p.log.Debug("Dropping nested at-rule", zap.String("rule", at.Name))
		return
	}
	*nested = append(*nested, at)
}

type bodyKind int

const (
	bodyRaw bodyKind = iota
	bodyDeclarations
	bodyRules
)

func atRuleKind(name string) bodyKind {
	n := strings.TrimPrefix(name, "@")
	if strings.HasPrefix(n, "-") {
		if i := strings.IndexByte(n[1:], '-'); i != -1 {
			n = n[i+2:]
		}
	}
	switch n {
	case "font-face", "page":
		return bodyDeclarations
	case "document", "keyframes", "layer", "media", "supports":
		return bodyRules
	default:
		return bodyRaw
	}
}

// splitImportant removes trailing "!important" from value tokens.
func splitImportant(tokens []css.Token) ([]css.Token, bool) {
	n := len(tokens)
	for n > 0 && tokens[n-1].TokenType == css.WhitespaceToken {
		n--
	}
	if n < 2 || tokens[n-1].TokenType != css.IdentToken || !strings.EqualFold(string(tokens[n-1].Data), "important") {
		return tokens, false
	}
	i := n - 2
	for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
		i--
	}
	if i < 0 || tokens[i].TokenType != css.DelimToken || string(tokens[i].Data) != "!" {
		return tokens, false
	}
	return tokens[:i], true
}

// cutImportant removes trailing "!important" from raw text.
func cutImportant(s string) (string, bool) {
	const kw = "important"
	if len(s) < len(kw) || !strings.EqualFold(s[len(s)-len(kw):], kw) {
		return s, false
	}
	rest := strings.TrimRight(s[:len(s)-len(kw)], " \t\r\n\f")
	if !strings.HasSuffix(rest, "!") {
		return s, false
	}
	return strings.TrimSpace(rest[:len(rest)-1]), true
}

// joinTokens builds text from parser tokens. The parser drops whitespace
// after commas, a single space is put back there.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		sb.Write(t.Data)
		if t.TokenType == css.CommaToken && i+1 < len(tokens) && tokens[i+1].TokenType != css.WhitespaceToken {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

// joinPrelude builds at-rule prelude text. Besides commas the parser drops
// whitespace after colons, inside parentheses (media features, supports
// conditions) a single space is put back there.
func joinPrelude(tokens []css.Token) string {
	var (
		sb    strings.Builder
		level int
	)
	for i, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken:
			level++
		case css.RightParenthesisToken:
			level--
		}
		sb.Write(t.Data)
		next := i+1 < len(tokens) && tokens[i+1].TokenType != css.WhitespaceToken
		if next && (t.TokenType == css.CommaToken || (t.TokenType == css.ColonToken && level > 0)) {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

// joinSelector builds selector text putting spaces back around top-level
// combinators and after commas.
func joinSelector(tokens []css.Token) string {
	var (
		sb    strings.Builder
		level int
		space bool
	)
	for i, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			level++
		case css.RightParenthesisToken, css.RightBracketToken:
			level--
		}
		combinator := level == 0 && t.TokenType == css.DelimToken && len(t.Data) == 1 && strings.IndexByte(">+~", t.Data[0]) >= 0
		if combinator && sb.Len() > 0 && !space {
			sb.WriteByte(' ')
		}
		sb.Write(t.Data)
		space = t.TokenType == css.WhitespaceToken
		if (combinator || t.TokenType == css.CommaToken) && i+1 < len(tokens) && tokens[i+1].TokenType != css.WhitespaceToken {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// DetectCharset returns encoding label from a leading @charset rule. Only the
// exact byte form allowed by CSS syntax is recognized.
func DetectCharset(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	const prefix = `@charset "`
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return ""
	}
	rest := data[len(prefix):]
	end := bytes.Index(rest, []byte(`";`))
	if end <= 0 || end > 64 {
		return ""
	}
	return string(rest[:end])
}
