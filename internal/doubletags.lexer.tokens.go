package internal

import "fmt"

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token represents a lexical token produced by the lexer.
// For tags, Value holds the trimmed content without its sigil and Raw holds the
// tag exactly as written, delimiters included.
type Token struct {
	Type     TokenType
	Value    string
	Raw      string
	Position Position
	End      int // Byte offset just past the token
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	if t.Value == "" {
		return fmt.Sprintf("Token{%s @ %s}", t.Type, t.Position)
	}
	return fmt.Sprintf("Token{%s: %q @ %s}", t.Type, t.Value, t.Position)
}

// IsEOF returns true if this is an end-of-file token
func (t Token) IsEOF() bool {
	return t.Type == TokenTypeEOF
}

// IsText returns true if this is a text token
func (t Token) IsText() bool {
	return t.Type == TokenTypeText
}

// IsTag returns true for every token produced from a delimited tag
func (t Token) IsTag() bool {
	switch t.Type {
	case TokenTypeVariable, TokenTypePartial, TokenTypeSectionOpen, TokenTypeSectionClose, TokenTypeElse:
		return true
	default:
		return false
	}
}

// NewTextToken creates a text token with the given content
func NewTextToken(content string, pos Position) Token {
	return Token{
		Type:     TokenTypeText,
		Value:    content,
		Raw:      content,
		Position: pos,
		End:      pos.Offset + len(content),
	}
}

// NewTagToken creates a tag token of the given type
func NewTagToken(tokenType TokenType, value, raw string, pos Position) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Raw:      raw,
		Position: pos,
		End:      pos.Offset + len(raw),
	}
}

// NewEOFToken creates an EOF token at the given position
func NewEOFToken(pos Position) Token {
	return Token{
		Type:     TokenTypeEOF,
		Position: pos,
		End:      pos.Offset,
	}
}
