// Package parser implements the declaration-level parser for PHP-style
// source files. It recognizes namespaces, class/interface/enum headers and
// method signatures; method bodies are skipped by brace matching and are
// never evaluated.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

// TokenType identifies a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdentifier
	TokenVariable // $name
	TokenNumber
	TokenString
	TokenDocComment // /** ... */
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenSemi
	TokenQuestion
	TokenPipe
	TokenAmp
	TokenBackslash
	TokenAssign
	TokenEllipsis
	TokenMinus
	TokenOther
)

// Position is a source location (1-based line and column).
type Position struct {
	Offset int
	Line   int
	Column int
}

// Token is a lexer token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// ---------------------------------------------------------------------------
// Lexer
// ---------------------------------------------------------------------------

// Lexer tokenizes the declaration surface of a PHP-style source file.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a lexer for the given input. A leading `<?php` opening
// tag is consumed if present.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	if strings.HasPrefix(input, "<?php") {
		for i := 0; i < len("<?php"); i++ {
			l.readChar()
		}
	}
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size

	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}

	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}

	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}

	case l.ch == ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}

	case l.ch == ':':
		l.readChar()
		return Token{Type: TokenColon, Literal: ":", Pos: pos}

	case l.ch == ';':
		l.readChar()
		return Token{Type: TokenSemi, Literal: ";", Pos: pos}

	case l.ch == '?':
		l.readChar()
		return Token{Type: TokenQuestion, Literal: "?", Pos: pos}

	case l.ch == '|':
		l.readChar()
		return Token{Type: TokenPipe, Literal: "|", Pos: pos}

	case l.ch == '&':
		l.readChar()
		return Token{Type: TokenAmp, Literal: "&", Pos: pos}

	case l.ch == '\\':
		l.readChar()
		return Token{Type: TokenBackslash, Literal: "\\", Pos: pos}

	case l.ch == '=':
		l.readChar()
		return Token{Type: TokenAssign, Literal: "=", Pos: pos}

	case l.ch == '-':
		l.readChar()
		return Token{Type: TokenMinus, Literal: "-", Pos: pos}

	case l.ch == '.' && strings.HasPrefix(l.input[l.pos:], "..."):
		l.readChar()
		l.readChar()
		l.readChar()
		return Token{Type: TokenEllipsis, Literal: "...", Pos: pos}

	case l.ch == '/' && strings.HasPrefix(l.input[l.pos:], "/**"):
		return l.readDocComment(pos)

	case l.ch == '$':
		return l.readVariable(pos)

	case l.ch == '\'' || l.ch == '"':
		return l.readString(pos)

	case unicode.IsDigit(l.ch):
		return l.readNumber(pos)

	case isIdentStart(l.ch):
		return l.readIdentifier(pos)

	default:
		ch := string(l.ch)
		l.readChar()
		return Token{Type: TokenOther, Literal: ch, Pos: pos}
	}
}

// skipTrivia skips whitespace and non-doc comments. Doc comments (/** */)
// are preserved as tokens and returned by NextToken.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()

		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}

		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}

		case l.ch == '/' && l.peekChar() == '*':
			// Doc comment? Leave it for NextToken to capture.
			if strings.HasPrefix(l.input[l.pos:], "/**") {
				return
			}
			l.readChar() // /
			l.readChar() // *
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}

		default:
			return
		}
	}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenIdentifier, Literal: l.input[start:l.pos], Pos: pos}
}

// readVariable reads $name.
func (l *Lexer) readVariable(pos Position) Token {
	l.readChar() // consume $
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenVariable, Literal: l.input[start:l.pos], Pos: pos}
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	for unicode.IsDigit(l.ch) || l.ch == '.' || l.ch == '_' ||
		l.ch == 'x' || l.ch == 'X' || (l.ch >= 'a' && l.ch <= 'f') || (l.ch >= 'A' && l.ch <= 'F') {
		l.readChar()
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
}

// readString reads a single- or double-quoted string literal. The literal
// includes the quotes; escapes are carried through verbatim.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	start := l.pos
	l.readChar()
	for l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == quote {
			l.readChar()
			break
		}
		l.readChar()
	}
	return Token{Type: TokenString, Literal: l.input[start:l.pos], Pos: pos}
}

// readDocComment captures a /** ... */ block verbatim.
func (l *Lexer) readDocComment(pos Position) Token {
	start := l.pos
	l.readChar() // /
	l.readChar() // *
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	return Token{Type: TokenDocComment, Literal: l.input[start:l.pos], Pos: pos}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
