package internal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Node is the interface all AST nodes implement
type Node interface {
	// Type returns the node type identifier
	Type() NodeType
	// Pos returns the source position of this node
	Pos() Position
	// String returns a human-readable representation
	String() string
}

// RootNode is the top-level container for an AST.
// Literals lists the tags the parser could not match and kept as text.
type RootNode struct {
	Children []Node
	Source   string
	Literals []LiteralTag
}

// LiteralTag is a well-formed tag the parser kept as literal text
type LiteralTag struct {
	Raw      string
	Name     string
	Reason   string
	Position Position
}

// Type returns NodeTypeRoot
func (n *RootNode) Type() NodeType {
	return NodeTypeRoot
}

// Pos returns a zero position (root has no specific position)
func (n *RootNode) Pos() Position {
	return Position{Offset: 0, Line: 1, Column: 1}
}

// String returns a string representation of the root node
func (n *RootNode) String() string {
	var sb strings.Builder
	sb.WriteString("RootNode{\n")
	for i, child := range n.Children {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i, child.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// TextNode represents literal text content
type TextNode struct {
	pos     Position
	Content string
}

// Type returns NodeTypeText
func (n *TextNode) Type() NodeType {
	return NodeTypeText
}

// Pos returns the source position
func (n *TextNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *TextNode) String() string {
	return fmt.Sprintf("TextNode{%q @ %s}", truncateForDisplay(n.Content), n.pos)
}

// NewTextNode creates a new text node
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{
		pos:     pos,
		Content: content,
	}
}

// Stage is one pipeline step: a function name and its literal string arguments
type Stage struct {
	Name string
	Args []string
}

// VariableNode is an interpolation tag: a lookup path followed by pipeline stages
type VariableNode struct {
	pos    Position
	Path   string
	Stages []Stage
	Raw    string
}

// Type returns NodeTypeVariable
func (n *VariableNode) Type() NodeType {
	return NodeTypeVariable
}

// Pos returns the source position
func (n *VariableNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *VariableNode) String() string {
	return fmt.Sprintf("VariableNode{%s, stages=%d @ %s}", n.Path, len(n.Stages), n.pos)
}

// NewVariableNode parses a variable expression such as "name | fn a b | fn2"
func NewVariableNode(expr, raw string, pos Position) *VariableNode {
	parts := strings.Split(expr, PipeSeparator)
	node := &VariableNode{
		pos:  pos,
		Path: strings.TrimSpace(parts[0]),
		Raw:  raw,
	}
	for _, part := range parts[1:] {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			node.Stages = append(node.Stages, Stage{})
			continue
		}
		node.Stages = append(node.Stages, Stage{Name: fields[0], Args: fields[1:]})
	}
	return node
}

// PartialNode references a registered partial by name
type PartialNode struct {
	pos  Position
	Name string
	Raw  string
}

// Type returns NodeTypePartial
func (n *PartialNode) Type() NodeType {
	return NodeTypePartial
}

// Pos returns the source position
func (n *PartialNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *PartialNode) String() string {
	return fmt.Sprintf("PartialNode{%s @ %s}", n.Name, n.pos)
}

// NewPartialNode creates a new partial node
func NewPartialNode(name, raw string, pos Position) *PartialNode {
	return &PartialNode{
		pos:  pos,
		Name: name,
		Raw:  raw,
	}
}

// SectionNode is a {{#name}}...{{/name}} block with an optional else branch.
// BodyStart and BodyEnd delimit the raw body (else branch included) in the
// source the node was parsed from.
type SectionNode struct {
	pos       Position
	Name      string
	Main      []Node
	Else      []Node
	HasElse   bool
	BodyStart int
	BodyEnd   int
}

// Type returns NodeTypeSection
func (n *SectionNode) Type() NodeType {
	return NodeTypeSection
}

// Pos returns the source position
func (n *SectionNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *SectionNode) String() string {
	return fmt.Sprintf("SectionNode{%s, main=%d, else=%d, hasElse=%t @ %s}",
		n.Name, len(n.Main), len(n.Else), n.HasElse, n.pos)
}

// Body returns the raw body text of the section within source
func (n *SectionNode) Body(source string) string {
	if n.BodyStart < 0 || n.BodyEnd > len(source) || n.BodyStart > n.BodyEnd {
		return ""
	}
	return source[n.BodyStart:n.BodyEnd]
}

// NewSectionNode creates a new, still empty, section node
func NewSectionNode(name string, pos Position, bodyStart int) *SectionNode {
	return &SectionNode{
		pos:       pos,
		Name:      name,
		BodyStart: bodyStart,
		BodyEnd:   bodyStart,
	}
}

// truncateForDisplay shortens long text for debug output, cutting on a rune boundary.
func truncateForDisplay(s string) string {
	if len(s) <= MaxStringDisplayLength {
		return s
	}
	cut := TruncatedStringLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationSuffix
}
