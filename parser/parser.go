package parser

import (
	"fmt"
	"strings"

	"github.com/A-jay98/parser-reflection/ast"
)

// ---------------------------------------------------------------------------
// File: result of parsing one source file
// ---------------------------------------------------------------------------

// File holds the declarations parsed from one source file.
type File struct {
	Path      string
	Namespace string
	Decls     []*ast.ClassLikeDecl
}

// Decl returns the declaration with the given short name, or nil.
func (f *File) Decl(name string) *ast.ClassLikeDecl {
	for _, d := range f.Decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// ParseError is a parse failure with its source position.
type ParseError struct {
	Path    string
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: %s:%d:%d: %s", e.Path, e.Pos.Line, e.Pos.Column, e.Message)
}

// builtinTypes are the reserved type keywords that lex as builtin type
// nodes in type position (case-insensitive).
var builtinTypes = map[string]bool{
	"array": true, "bool": true, "callable": true, "false": true,
	"float": true, "int": true, "iterable": true, "mixed": true,
	"never": true, "null": true, "object": true, "string": true,
	"true": true, "void": true,
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser parses the declaration surface of one source file.
type Parser struct {
	path   string
	lexer  *Lexer
	tok    Token // current token
	peeked *Token
}

// NewParser creates a parser for the given source text.
func NewParser(path, src string) *Parser {
	p := &Parser{path: path, lexer: NewLexer(src)}
	p.next()
	return p
}

// ParseFile parses one source file's declarations.
func ParseFile(path, src string) (*File, error) {
	return NewParser(path, src).Parse()
}

func (p *Parser) next() {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.lexer.NextToken()
}

func (p *Parser) peek() Token {
	if p.peeked == nil {
		t := p.lexer.NextToken()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Path: p.path, Pos: p.tok.Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if p.tok.Type != t {
		return Token{}, p.errorf("expected %s, found %q", what, p.tok.Literal)
	}
	tok := p.tok
	p.next()
	return tok, nil
}

// isKeyword reports whether the current token is the given identifier
// keyword (case-insensitive, as in the parsed language).
func (p *Parser) isKeyword(kw string) bool {
	return p.tok.Type == TokenIdentifier && strings.EqualFold(p.tok.Literal, kw)
}

// ---------------------------------------------------------------------------
// File-level parsing
// ---------------------------------------------------------------------------

// Parse parses the whole file.
func (p *Parser) Parse() (*File, error) {
	f := &File{Path: p.path}
	var pendingDoc string

	for p.tok.Type != TokenEOF {
		switch {
		case p.tok.Type == TokenDocComment:
			pendingDoc = p.tok.Literal
			p.next()

		case p.isKeyword("namespace"):
			p.next()
			ns, err := p.parseQualifiedName()
			if err != nil {
				return nil, err
			}
			f.Namespace = ns
			if p.tok.Type == TokenSemi {
				p.next()
			}

		case p.isKeyword("use"):
			// Import aliases belong to the file-level symbol table, which
			// is outside this parser's scope. Skip to the semicolon.
			for p.tok.Type != TokenSemi && p.tok.Type != TokenEOF {
				p.next()
			}
			if p.tok.Type == TokenSemi {
				p.next()
			}

		case p.isKeyword("final") || p.isKeyword("abstract") ||
			p.isKeyword("class") || p.isKeyword("interface") || p.isKeyword("enum"):
			decl, err := p.parseClassLike(f.Namespace, pendingDoc)
			if err != nil {
				return nil, err
			}
			pendingDoc = ""
			f.Decls = append(f.Decls, decl)

		default:
			// Top-level statements are not declarations; skip.
			p.next()
		}
	}
	return f, nil
}

// parseQualifiedName parses Name(\Name)* and returns the joined form.
func (p *Parser) parseQualifiedName() (string, error) {
	tok, err := p.expect(TokenIdentifier, "name")
	if err != nil {
		return "", err
	}
	parts := []string{tok.Literal}
	for p.tok.Type == TokenBackslash {
		p.next()
		tok, err = p.expect(TokenIdentifier, "name segment")
		if err != nil {
			return "", err
		}
		parts = append(parts, tok.Literal)
	}
	return strings.Join(parts, "\\"), nil
}

// ---------------------------------------------------------------------------
// Class-like declarations
// ---------------------------------------------------------------------------

// parseClassLike parses a class, interface, or enum declaration.
func (p *Parser) parseClassLike(namespace, doc string) (*ast.ClassLikeDecl, error) {
	startLine := p.tok.Pos.Line

	// Class-level final/abstract do not affect method reflection; consume.
	for p.isKeyword("final") || p.isKeyword("abstract") {
		p.next()
	}

	var kind ast.ClassKind
	switch {
	case p.isKeyword("class"):
		kind = ast.KindClass
	case p.isKeyword("interface"):
		kind = ast.KindInterface
	case p.isKeyword("enum"):
		kind = ast.KindEnum
	default:
		return nil, p.errorf("expected class, interface or enum, found %q", p.tok.Literal)
	}
	p.next()

	nameTok, err := p.expect(TokenIdentifier, "declaration name")
	if err != nil {
		return nil, err
	}

	decl := &ast.ClassLikeDecl{
		Kind:      kind,
		Name:      nameTok.Literal,
		Namespace: namespace,
		DocText:   doc,
	}

	// Enum backing type: `enum Suit: string`.
	if kind == ast.KindEnum && p.tok.Type == TokenColon {
		p.next()
		backTok, err := p.expect(TokenIdentifier, "enum backing type")
		if err != nil {
			return nil, err
		}
		decl.BackingType = strings.ToLower(backTok.Literal)
	}

	// extends Parent (interfaces may extend several; only the first is the
	// prototype chain parent).
	if p.isKeyword("extends") {
		p.next()
		parent, err := p.parsePossiblyAbsoluteName()
		if err != nil {
			return nil, err
		}
		decl.Parent = parent
		for p.tok.Type == TokenComma {
			p.next()
			if _, err := p.parsePossiblyAbsoluteName(); err != nil {
				return nil, err
			}
		}
	}

	// implements list carries no method declarations; skip to the body.
	if p.isKeyword("implements") {
		for p.tok.Type != TokenLBrace && p.tok.Type != TokenEOF {
			p.next()
		}
	}

	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	endLine, err := p.parseClassBody(decl)
	if err != nil {
		return nil, err
	}

	decl.SpanVal = ast.Span{File: p.path, StartLine: startLine, EndLine: endLine}
	return decl, nil
}

// parsePossiblyAbsoluteName parses a name with an optional leading
// separator; the result never carries the separator.
func (p *Parser) parsePossiblyAbsoluteName() (string, error) {
	if p.tok.Type == TokenBackslash {
		p.next()
	}
	return p.parseQualifiedName()
}

// parseClassBody parses members until the closing brace. Returns the line
// of the closing brace.
func (p *Parser) parseClassBody(decl *ast.ClassLikeDecl) (int, error) {
	var pendingDoc string

	for {
		switch {
		case p.tok.Type == TokenEOF:
			return 0, p.errorf("unexpected end of file in %s body", decl.Kind)

		case p.tok.Type == TokenRBrace:
			line := p.tok.Pos.Line
			p.next()
			return line, nil

		case p.tok.Type == TokenDocComment:
			pendingDoc = p.tok.Literal
			p.next()

		case p.isKeyword("case"):
			// Enum cases are constants; constant reflection is out of scope.
			p.skipToSemi()
			pendingDoc = ""

		case p.isKeyword("const"):
			p.skipToSemi()
			pendingDoc = ""

		case p.isMemberStart():
			m, err := p.parseMethod(pendingDoc)
			if err != nil {
				return 0, err
			}
			pendingDoc = ""
			if m != nil {
				decl.Members = append(decl.Members, m)
			}

		default:
			// Property declarations and anything else at member level.
			p.skipToSemi()
			pendingDoc = ""
		}
	}
}

// isMemberStart reports whether the current token can begin a method
// declaration (a modifier keyword or `function`).
func (p *Parser) isMemberStart() bool {
	for _, kw := range []string{"public", "protected", "private", "static", "abstract", "final", "function"} {
		if p.isKeyword(kw) {
			return true
		}
	}
	return false
}

// skipToSemi consumes tokens through the next semicolon.
func (p *Parser) skipToSemi() {
	for p.tok.Type != TokenSemi && p.tok.Type != TokenEOF {
		p.next()
	}
	if p.tok.Type == TokenSemi {
		p.next()
	}
}

// ---------------------------------------------------------------------------
// Methods
// ---------------------------------------------------------------------------

// parseMethod parses one member starting at a modifier or `function`.
// Returns nil (and no error) for modified members that turn out to be
// properties rather than methods.
func (p *Parser) parseMethod(doc string) (*ast.MethodDecl, error) {
	startLine := p.tok.Pos.Line

	var mods ast.Modifiers
	for more := true; more; {
		switch {
		case p.isKeyword("public"):
			mods |= ast.ModPublic
		case p.isKeyword("protected"):
			mods |= ast.ModProtected
		case p.isKeyword("private"):
			mods |= ast.ModPrivate
		case p.isKeyword("static"):
			mods |= ast.ModStatic
		case p.isKeyword("abstract"):
			mods |= ast.ModAbstract
		case p.isKeyword("final"):
			mods |= ast.ModFinal
		default:
			more = false
		}
		if more {
			p.next()
		}
	}

	if !p.isKeyword("function") {
		// A modified property; skip it.
		p.skipToSemi()
		return nil, nil
	}
	p.next()

	// Implicit visibility is public.
	if mods&ast.VisibilityMask == 0 {
		mods |= ast.ModPublic
	}

	nameTok, err := p.expect(TokenIdentifier, "method name")
	if err != nil {
		return nil, err
	}

	m := &ast.MethodDecl{
		Name:    nameTok.Literal,
		Mods:    mods,
		DocText: doc,
	}

	if _, err := p.expect(TokenLParen, "'('"); err != nil {
		return nil, err
	}
	if err := p.parseParams(m); err != nil {
		return nil, err
	}

	if p.tok.Type == TokenColon {
		p.next()
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		m.ReturnType = ret
	}

	endLine := p.tok.Pos.Line
	switch p.tok.Type {
	case TokenSemi:
		// Abstract or interface method without a body.
		p.next()
	case TokenLBrace:
		var err error
		endLine, err = p.skipBody()
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf("expected method body or ';', found %q", p.tok.Literal)
	}

	m.SpanVal = ast.Span{File: p.path, StartLine: startLine, EndLine: endLine}
	return m, nil
}

// parseParams parses the parameter list up to and including ')'.
func (p *Parser) parseParams(m *ast.MethodDecl) error {
	if p.tok.Type == TokenRParen {
		p.next()
		return nil
	}
	for {
		param, err := p.parseParam()
		if err != nil {
			return err
		}
		m.Params = append(m.Params, param)

		if p.tok.Type == TokenComma {
			p.next()
			if p.tok.Type == TokenRParen { // trailing comma
				break
			}
			continue
		}
		break
	}
	_, err := p.expect(TokenRParen, "')'")
	return err
}

// parseParam parses one parameter: [type] [&] [...] $name [= default].
func (p *Parser) parseParam() (*ast.ParamDecl, error) {
	startLine := p.tok.Pos.Line
	param := &ast.ParamDecl{}

	if p.tok.Type == TokenIdentifier || p.tok.Type == TokenQuestion || p.tok.Type == TokenBackslash {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		param.Type = typ
	}
	if p.tok.Type == TokenAmp {
		param.ByRef = true
		p.next()
	}
	if p.tok.Type == TokenEllipsis {
		param.Variadic = true
		p.next()
	}

	nameTok, err := p.expect(TokenVariable, "parameter name")
	if err != nil {
		return nil, err
	}
	param.Name = nameTok.Literal

	if p.tok.Type == TokenAssign {
		p.next()
		param.HasDefault = true
		param.Default = p.collectDefault()
	}

	param.SpanVal = ast.Span{File: p.path, StartLine: startLine, EndLine: startLine}
	return param, nil
}

// collectDefault captures the default expression's source text up to the
// next top-level ',' or ')'.
func (p *Parser) collectDefault() string {
	var sb strings.Builder
	depth := 0
	for p.tok.Type != TokenEOF {
		if depth == 0 && (p.tok.Type == TokenComma || p.tok.Type == TokenRParen) {
			break
		}
		switch p.tok.Type {
		case TokenLParen, TokenLBracket:
			depth++
		case TokenRParen, TokenRBracket:
			depth--
		}
		sb.WriteString(p.tok.Literal)
		p.next()
	}
	return sb.String()
}

// skipBody consumes a brace-balanced method body. Returns the line of the
// closing brace.
func (p *Parser) skipBody() (int, error) {
	if p.tok.Type != TokenLBrace {
		return 0, p.errorf("expected '{', found %q", p.tok.Literal)
	}
	depth := 0
	for p.tok.Type != TokenEOF {
		switch p.tok.Type {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
			if depth == 0 {
				line := p.tok.Pos.Line
				p.next()
				return line, nil
			}
		}
		p.next()
	}
	return 0, p.errorf("unexpected end of file in method body")
}

// ---------------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------------

// parseType parses a type expression: atom, ?atom, union, or intersection.
func (p *Parser) parseType() (ast.TypeExpr, error) {
	if p.tok.Type == TokenQuestion {
		pos := p.tok.Pos
		p.next()
		inner, err := p.parseTypeAtom()
		if err != nil {
			return nil, err
		}
		return &ast.NullableType{
			SpanVal: ast.Span{File: p.path, StartLine: pos.Line, EndLine: pos.Line},
			Inner:   inner,
		}, nil
	}

	first, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}

	switch p.tok.Type {
	case TokenPipe:
		members := []ast.TypeExpr{first}
		for p.tok.Type == TokenPipe {
			p.next()
			m, err := p.parseTypeAtom()
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return &ast.UnionType{SpanVal: first.Span(), Members: members}, nil

	case TokenAmp:
		// `&` before a variable is by-reference, not an intersection.
		if p.peek().Type == TokenVariable || p.peek().Type == TokenEllipsis {
			return first, nil
		}
		members := []ast.TypeExpr{first}
		for p.tok.Type == TokenAmp && p.peek().Type != TokenVariable && p.peek().Type != TokenEllipsis {
			p.next()
			m, err := p.parseTypeAtom()
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return &ast.IntersectionType{SpanVal: first.Span(), Members: members}, nil
	}
	return first, nil
}

// parseTypeAtom parses a single named type: builtin keyword, relative name,
// or fully-qualified name.
func (p *Parser) parseTypeAtom() (ast.TypeExpr, error) {
	pos := p.tok.Pos
	span := ast.Span{File: p.path, StartLine: pos.Line, EndLine: pos.Line}

	if p.tok.Type == TokenBackslash {
		p.next()
		parts, err := p.parseNameParts()
		if err != nil {
			return nil, err
		}
		return &ast.FullyQualifiedType{SpanVal: span, Parts: parts}, nil
	}

	parts, err := p.parseNameParts()
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 && builtinTypes[strings.ToLower(parts[0])] {
		return &ast.BuiltinType{SpanVal: span, Name: strings.ToLower(parts[0])}, nil
	}
	return &ast.NameType{SpanVal: span, Parts: parts}, nil
}

// parseNameParts parses Name(\Name)* as segments.
func (p *Parser) parseNameParts() ([]string, error) {
	tok, err := p.expect(TokenIdentifier, "type name")
	if err != nil {
		return nil, err
	}
	parts := []string{tok.Literal}
	for p.tok.Type == TokenBackslash {
		p.next()
		tok, err = p.expect(TokenIdentifier, "type name segment")
		if err != nil {
			return nil, err
		}
		parts = append(parts, tok.Literal)
	}
	return parts, nil
}
