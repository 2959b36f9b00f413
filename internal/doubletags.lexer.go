package internal

import (
	"strings"

	"go.uber.org/zap"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	OpenDelim  string // Opening delimiter (default: "{{")
	CloseDelim string // Closing delimiter (default: "}}")
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		OpenDelim:  StrOpenDelim,
		CloseDelim: StrCloseDelim,
	}
}

// Validate reports whether both delimiters are usable
func (c LexerConfig) Validate() error {
	if c.OpenDelim == "" || c.CloseDelim == "" {
		return &LexerError{Message: ErrMsgEmptyDelimiter}
	}
	return nil
}

// Lexer tokenizes template source into a token stream.
// A Lexer is single-use: build a new one for every source.
type Lexer struct {
	source string
	config LexerConfig
	pos    int // Current byte position
	line   int // Current line (1-indexed)
	column int // Current column (1-indexed)
	logger *zap.Logger

	text      strings.Builder
	textStart Position
}

// NewLexer creates a new lexer with default configuration
func NewLexer(source string, logger *zap.Logger) *Lexer {
	return NewLexerWithConfig(source, DefaultLexerConfig(), logger)
}

// NewLexerWithConfig creates a lexer with custom configuration
func NewLexerWithConfig(source string, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		config: config,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns a token stream.
// Malformed tags never fail: they become part of the surrounding text.
func (l *Lexer) Tokenize() ([]Token, error) {
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	l.logger.Debug(LogMsgTokenizerStart)

	var tokens []Token
	for !l.isAtEnd() {
		if !l.matchStr(l.config.OpenDelim) {
			l.consumeText(1)
			continue
		}

		tok, ok := l.scanTag()
		if !ok {
			// Not a tag here; the open delimiter's first byte is text and
			// scanning resumes right after it.
			l.consumeText(1)
			continue
		}

		tokens = l.flushText(tokens)
		tokens = append(tokens, tok)
		l.advanceN(len(tok.Raw))
	}

	tokens = l.flushText(tokens)
	tokens = append(tokens, NewEOFToken(l.currentPosition()))
	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// scanTag tries to read a complete tag at the current position without consuming it.
func (l *Lexer) scanTag() (Token, bool) {
	start := l.pos
	contentStart := start + len(l.config.OpenDelim)
	closeIdx := strings.Index(l.source[contentStart:], l.config.CloseDelim)
	if closeIdx < 0 {
		return Token{}, false
	}

	// A tag never spans another open delimiter, so a later tag such as a
	// section close is not swallowed by an unterminated one.
	inner := l.source[contentStart : contentStart+closeIdx]
	if strings.Contains(inner, l.config.OpenDelim) {
		return Token{}, false
	}

	content := strings.TrimSpace(inner)
	if content == "" || strings.ContainsRune(content, CharNewline) {
		l.logger.Debug(LogMsgLiteralTag, zap.Int(LogFieldLine, l.line), zap.Int(LogFieldColumn, l.column))
		return Token{}, false
	}

	raw := l.source[start : contentStart+closeIdx+len(l.config.CloseDelim)]
	pos := l.currentPosition()

	switch {
	case strings.HasPrefix(content, SigilSection):
		name := strings.TrimSpace(content[len(SigilSection):])
		if name == "" {
			return Token{}, false
		}
		return NewTagToken(TokenTypeSectionOpen, name, raw, pos), true
	case strings.HasPrefix(content, SigilSectionClose):
		name := strings.TrimSpace(content[len(SigilSectionClose):])
		if name == "" {
			return Token{}, false
		}
		return NewTagToken(TokenTypeSectionClose, name, raw, pos), true
	case content == MarkerElse:
		return NewTagToken(TokenTypeElse, content, raw, pos), true
	case strings.HasPrefix(content, SigilPartial):
		return NewTagToken(TokenTypePartial, strings.TrimSpace(content[len(SigilPartial):]), raw, pos), true
	default:
		return NewTagToken(TokenTypeVariable, content, raw, pos), true
	}
}

// consumeText moves n bytes into the pending text token
func (l *Lexer) consumeText(n int) {
	if l.text.Len() == 0 {
		l.textStart = l.currentPosition()
	}
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.text.WriteByte(l.advance())
	}
}

// flushText emits the pending text token, if any
func (l *Lexer) flushText(tokens []Token) []Token {
	if l.text.Len() == 0 {
		return tokens
	}
	tokens = append(tokens, NewTextToken(l.text.String(), l.textStart))
	l.text.Reset()
	return tokens
}

// Helper methods

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceN advances by n characters
func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}

// LexerError represents a lexer error with position
type LexerError struct {
	Message  string
	Position Position
}

func (e *LexerError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// Error message constants for lexer
const (
	ErrMsgEmptyDelimiter = "delimiters cannot be empty"
)
