package internal

import (
	"sort"

	"go.uber.org/zap"
)

// Parser builds an AST from a token stream.
// Sections are matched with an explicit stack, so a section may contain a nested
// section of the same name and {{@else}} belongs to the innermost open section.
// Tags that cannot be matched (stray closes, stray elses, sections never closed)
// are kept as literal text.
type Parser struct {
	tokens   []Token
	source   string
	pos      int
	logger   *zap.Logger
	literals []LiteralTag
}

// sectionFrame tracks a section that has been opened but not yet closed
type sectionFrame struct {
	node     *SectionNode
	openTok  Token
	elseTok  Token
	inElse   bool
	children []Node
	elseKids []Node
}

// append adds n to the branch currently being filled
func (f *sectionFrame) append(n Node) {
	if f.inElse {
		f.elseKids = append(f.elseKids, n)
		return
	}
	f.children = append(f.children, n)
}

// NewParser creates a new parser for the given tokens
func NewParser(tokens []Token, logger *zap.Logger) *Parser {
	return NewParserWithSource(tokens, "", logger)
}

// NewParserWithSource creates a parser that keeps the source for raw body extraction
func NewParserWithSource(tokens []Token, source string, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldTokens, len(tokens)))
	return &Parser{
		tokens: tokens,
		source: source,
		logger: logger,
	}
}

// Parse consumes the tokens and returns the root of the AST
func (p *Parser) Parse() (*RootNode, error) {
	p.logger.Debug(LogMsgParserStart)

	var (
		root  []Node
		stack []*sectionFrame
	)

	emit := func(n Node) {
		if len(stack) == 0 {
			root = append(root, n)
			return
		}
		stack[len(stack)-1].append(n)
	}

	for ; p.pos < len(p.tokens); p.pos++ {
		tok := p.tokens[p.pos]
		switch tok.Type {
		case TokenTypeEOF:
			p.pos = len(p.tokens)

		case TokenTypeText:
			emit(NewTextNode(tok.Value, tok.Position))

		case TokenTypeVariable:
			emit(NewVariableNode(tok.Value, tok.Raw, tok.Position))

		case TokenTypePartial:
			emit(NewPartialNode(tok.Value, tok.Raw, tok.Position))

		case TokenTypeSectionOpen:
			stack = append(stack, &sectionFrame{
				node:    NewSectionNode(tok.Value, tok.Position, tok.End),
				openTok: tok,
			})

		case TokenTypeElse:
			if len(stack) == 0 {
				p.literal(tok, LiteralReasonStrayElse)
				emit(NewTextNode(tok.Raw, tok.Position))
				continue
			}
			if stack[len(stack)-1].inElse {
				p.literal(tok, LiteralReasonDuplicateElse)
				emit(NewTextNode(tok.Raw, tok.Position))
				continue
			}
			top := stack[len(stack)-1]
			top.inElse = true
			top.elseTok = tok

		case TokenTypeSectionClose:
			idx := findOpenSection(stack, tok.Value)
			if idx < 0 {
				p.literal(tok, LiteralReasonStrayClose)
				emit(NewTextNode(tok.Raw, tok.Position))
				continue
			}
			// Sections opened after the matching one were never closed.
			for len(stack)-1 > idx {
				unclosed := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				p.literal(unclosed.openTok, LiteralReasonUnclosed)
				for _, n := range flattenFrame(unclosed) {
					stack[len(stack)-1].append(n)
				}
			}
			frame := stack[idx]
			stack = stack[:idx]
			frame.node.Main = frame.children
			frame.node.Else = frame.elseKids
			frame.node.HasElse = frame.inElse
			frame.node.BodyEnd = tok.Position.Offset
			emit(frame.node)
		}
	}

	for len(stack) > 0 {
		unclosed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.literal(unclosed.openTok, LiteralReasonUnclosed)
		for _, n := range flattenFrame(unclosed) {
			emit(n)
		}
	}

	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, len(root)))
	sort.SliceStable(p.literals, func(i, j int) bool {
		return p.literals[i].Position.Offset < p.literals[j].Position.Offset
	})
	return &RootNode{Children: root, Source: p.source, Literals: p.literals}, nil
}

// literal records a tag that stays as text
func (p *Parser) literal(tok Token, reason string) {
	p.logger.Debug(LogMsgLiteralTag, zap.String(LogFieldTag, tok.Raw), zap.String(LogFieldReason, reason))
	p.literals = append(p.literals, LiteralTag{
		Raw:      tok.Raw,
		Name:     tok.Value,
		Reason:   reason,
		Position: tok.Position,
	})
}

// Reasons a tag is kept as literal text
const (
	LiteralReasonStrayElse     = "else outside a section"
	LiteralReasonDuplicateElse = "second else in one section"
	LiteralReasonStrayClose    = "close without a matching open"
	LiteralReasonUnclosed      = "section never closed"
)

// findOpenSection returns the stack index of the innermost open section with the given name
func findOpenSection(stack []*sectionFrame, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].node.Name == name {
			return i
		}
	}
	return -1
}

// flattenFrame turns an unclosed section back into literal tags around its content
func flattenFrame(f *sectionFrame) []Node {
	nodes := make([]Node, 0, len(f.children)+len(f.elseKids)+2)
	nodes = append(nodes, NewTextNode(f.openTok.Raw, f.openTok.Position))
	nodes = append(nodes, f.children...)
	if f.inElse {
		nodes = append(nodes, NewTextNode(f.elseTok.Raw, f.elseTok.Position))
		nodes = append(nodes, f.elseKids...)
	}
	return nodes
}

// Parse tokenizes and parses source with the given delimiters
func Parse(source string, config LexerConfig, logger *zap.Logger) (*RootNode, error) {
	tokens, err := NewLexerWithConfig(source, config, logger).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParserWithSource(tokens, source, logger).Parse()
}
