package internal

// TokenType represents the type of a lexical token
type TokenType string

// Token type constants
const (
	TokenTypeText         TokenType = "TEXT"
	TokenTypeVariable     TokenType = "VARIABLE"
	TokenTypePartial      TokenType = "PARTIAL"
	TokenTypeSectionOpen  TokenType = "SECTION_OPEN"
	TokenTypeSectionClose TokenType = "SECTION_CLOSE"
	TokenTypeElse         TokenType = "ELSE"
	TokenTypeEOF          TokenType = "EOF"
)

// NodeType identifies AST node types
type NodeType int

// Node type constants
const (
	NodeTypeRoot NodeType = iota
	NodeTypeText
	NodeTypeVariable
	NodeTypePartial
	NodeTypeSection
)

// Node type string names for debugging
const (
	NodeTypeNameRoot     = "ROOT"
	NodeTypeNameText     = "TEXT"
	NodeTypeNameVariable = "VARIABLE"
	NodeTypeNamePartial  = "PARTIAL"
	NodeTypeNameSection  = "SECTION"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeRoot:
		return NodeTypeNameRoot
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeVariable:
		return NodeTypeNameVariable
	case NodeTypePartial:
		return NodeTypeNamePartial
	case NodeTypeSection:
		return NodeTypeNameSection
	default:
		return NodeTypeNameRoot
	}
}

// Character constants
const (
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
)

// Tag sigils
const (
	SigilSection      = "#"
	SigilSectionClose = "/"
	SigilPartial      = ">"
	MarkerElse        = "@else"
)

// Default delimiters
const (
	StrOpenDelim  = "{{"
	StrCloseDelim = "}}"
)

// Expression syntax
const (
	PipeSeparator = "|"
	PathSeparator = "."
	PathSelf      = "."
	SeqSeparator  = ","
)

// Log message constants
const (
	LogMsgLexerCreated    = "lexer created"
	LogMsgTokenizerStart  = "starting tokenization"
	LogMsgTokenizerEnd    = "tokenization complete"
	LogMsgParserCreated   = "parser created"
	LogMsgParserStart     = "starting parse"
	LogMsgParserEnd       = "parse complete"
	LogMsgLiteralTag      = "tag kept as literal text"
	LogMsgExecutorCreated = "executor created"
	LogMsgExecutorStart   = "starting render"
	LogMsgExecutorEnd     = "render complete"
	LogMsgCacheHit        = "render cache hit"
	LogMsgSectionEval     = "evaluating section"
	LogMsgPartialExpand   = "expanding partial"
	LogMsgPartialNotFound = "partial not found - keeping tag"
	LogMsgFuncNotFound    = "pipeline function not found"
	LogMsgRecoveredPanic  = "recovered panic during render"
	LogMsgExtractStart    = "extracting section"
	LogMsgExtractNotFound = "section not found"
)

// Log field names
const (
	LogFieldSource  = "source_length"
	LogFieldTokens  = "token_count"
	LogFieldNodes   = "node_count"
	LogFieldTag     = "tag"
	LogFieldSection = "section"
	LogFieldPartial = "partial"
	LogFieldFunc    = "func"
	LogFieldDepth   = "depth"
	LogFieldKind    = "kind"
	LogFieldItems   = "items"
	LogFieldPath    = "path"
	LogFieldLine    = "line"
	LogFieldColumn  = "column"
	LogFieldPanic   = "panic"
	LogFieldReason  = "reason"
)

// Display limits for debug strings
const (
	MaxStringDisplayLength = 50
	TruncatedStringLength  = 47
	TruncationSuffix       = "..."
)

// Error format strings
const (
	ErrFmtWithPosition       = "%s at %s"
	ErrFmtWithTagAndPosition = "%s [%s] at %s"
	ErrFmtWithCause          = "%s: %v"
)

// String value constants for conversions
const (
	StringValueTrue  = "true"
	StringValueFalse = "false"
	StringValueEmpty = ""
)

// Numeric constants for conversions
const (
	FloatFormatFlag   = 'f'
	FloatPrecisionAll = -1
	FloatBitSize32    = 32
	FloatBitSize64    = 64
	IntBase10         = 10
)

// Default configuration values
const (
	DefaultMaxDepth = 1000
)
