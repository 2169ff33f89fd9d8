// Package ast defines the declaration-level AST for PHP-style source files:
// class-like declarations, their method members, parameters, and the closed
// set of type-expression nodes. Nodes are immutable once parsed and may be
// shared read-only by any number of reflectors.
package ast

// ---------------------------------------------------------------------------
// Source positions
// ---------------------------------------------------------------------------

// Span records where a declaration appears in source. A zero Span means the
// declaration was synthesized and has no user-authored location.
type Span struct {
	File      string
	StartLine int
	EndLine   int
}

// IsZero reports whether the span carries no source location.
func (s Span) IsZero() bool {
	return s.File == "" && s.StartLine == 0 && s.EndLine == 0
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// ---------------------------------------------------------------------------
// Modifier flags
// ---------------------------------------------------------------------------

// Modifiers is the bitmask of method modifier keywords. The bit values match
// the host runtime's method-modifier constants so reflection consumers can
// decompose the mask the same way.
type Modifiers uint32

const (
	ModPublic    Modifiers = 1 << 0
	ModProtected Modifiers = 1 << 1
	ModPrivate   Modifiers = 1 << 2
	ModStatic    Modifiers = 1 << 4
	ModFinal     Modifiers = 1 << 5
	ModAbstract  Modifiers = 1 << 6
)

// VisibilityMask selects the visibility bits of a modifier mask.
const VisibilityMask = ModPublic | ModProtected | ModPrivate

// ---------------------------------------------------------------------------
// Class-like declarations
// ---------------------------------------------------------------------------

// ClassKind discriminates class-like declarations.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
)

func (k ClassKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	default:
		return "class"
	}
}

// ClassLikeDecl is a class, interface, or enum declaration.
type ClassLikeDecl struct {
	SpanVal     Span
	Kind        ClassKind
	Name        string // short name, without namespace
	Namespace   string // enclosing namespace, "" at file scope
	Parent      string // fully-qualified parent class name, "" if none
	BackingType string // enum backing scalar ("int" or "string"), "" if none
	DocText     string
	Members     []*MethodDecl // declaration order
}

func (d *ClassLikeDecl) Span() Span { return d.SpanVal }
func (d *ClassLikeDecl) node()      {}

// FullName returns the namespace-qualified declaration name.
func (d *ClassLikeDecl) FullName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "\\" + d.Name
}

// ---------------------------------------------------------------------------
// Method declarations
// ---------------------------------------------------------------------------

// MethodDecl is a single method member. Parsed instances are owned by the
// provider's cache; synthesized instances carry a zero Span.
type MethodDecl struct {
	SpanVal    Span
	Name       string
	Mods       Modifiers
	Params     []*ParamDecl
	ReturnType TypeExpr // nil when the declaration has no return type
	DocText    string
}

func (d *MethodDecl) Span() Span { return d.SpanVal }
func (d *MethodDecl) node()      {}

func (d *MethodDecl) IsPublic() bool    { return d.Mods&ModPublic != 0 }
func (d *MethodDecl) IsProtected() bool { return d.Mods&ModProtected != 0 }
func (d *MethodDecl) IsPrivate() bool   { return d.Mods&ModPrivate != 0 }
func (d *MethodDecl) IsStatic() bool    { return d.Mods&ModStatic != 0 }
func (d *MethodDecl) IsFinal() bool     { return d.Mods&ModFinal != 0 }
func (d *MethodDecl) IsAbstract() bool  { return d.Mods&ModAbstract != 0 }

// ParamDecl is a single method parameter.
type ParamDecl struct {
	SpanVal    Span
	Name       string // without the leading $
	Type       TypeExpr
	ByRef      bool
	Variadic   bool
	HasDefault bool
	Default    string // source text of the default expression
}

func (d *ParamDecl) Span() Span { return d.SpanVal }
func (d *ParamDecl) node()      {}

// ---------------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------------

// TypeExpr is the sealed interface over type-expression node kinds. The
// marker keeps the set closed so the resolver can match it exhaustively.
type TypeExpr interface {
	Node
	typeExpr()
}

// BuiltinType is a reserved scalar/special type keyword (int, string, bool,
// float, array, object, mixed, void, never, null, false, true, callable,
// iterable).
type BuiltinType struct {
	SpanVal Span
	Name    string // lowercased keyword
}

func (t *BuiltinType) Span() Span { return t.SpanVal }
func (t *BuiltinType) node()      {}
func (t *BuiltinType) typeExpr()  {}

// NameType is an unqualified or relatively-qualified class name, resolved
// against the declaring file's namespace scope.
type NameType struct {
	SpanVal Span
	Parts   []string // name segments, at least one
}

func (t *NameType) Span() Span { return t.SpanVal }
func (t *NameType) node()      {}
func (t *NameType) typeExpr()  {}

// Name returns the separator-joined source spelling.
func (t *NameType) Name() string { return joinParts(t.Parts) }

// FullyQualifiedType is an absolute class name (leading separator in source).
type FullyQualifiedType struct {
	SpanVal Span
	Parts   []string
}

func (t *FullyQualifiedType) Span() Span { return t.SpanVal }
func (t *FullyQualifiedType) node()      {}
func (t *FullyQualifiedType) typeExpr()  {}

// Name returns the absolute name without the leading separator.
func (t *FullyQualifiedType) Name() string { return joinParts(t.Parts) }

// NullableType wraps a type that may also be null (?T in source).
type NullableType struct {
	SpanVal Span
	Inner   TypeExpr
}

func (t *NullableType) Span() Span { return t.SpanVal }
func (t *NullableType) node()      {}
func (t *NullableType) typeExpr()  {}

// UnionType is an ordered union of member types (A|B|C).
type UnionType struct {
	SpanVal Span
	Members []TypeExpr
}

func (t *UnionType) Span() Span { return t.SpanVal }
func (t *UnionType) node()      {}
func (t *UnionType) typeExpr()  {}

// IntersectionType is an ordered intersection of named types (A&B).
type IntersectionType struct {
	SpanVal Span
	Members []TypeExpr
}

func (t *IntersectionType) Span() Span { return t.SpanVal }
func (t *IntersectionType) node()      {}
func (t *IntersectionType) typeExpr()  {}

// TypeString returns the source spelling of a type expression. Used for
// textual dumps and structural digests; resolution semantics live in the
// reflection package.
func TypeString(t TypeExpr) string {
	switch t := t.(type) {
	case *BuiltinType:
		return t.Name
	case *NameType:
		return t.Name()
	case *FullyQualifiedType:
		return "\\" + t.Name()
	case *NullableType:
		return "?" + TypeString(t.Inner)
	case *UnionType:
		return joinTypeList(t.Members, "|")
	case *IntersectionType:
		return joinTypeList(t.Members, "&")
	default:
		return ""
	}
}

func joinTypeList(members []TypeExpr, sep string) string {
	out := ""
	for i, m := range members {
		if i > 0 {
			out += sep
		}
		out += TypeString(m)
	}
	return out
}

func joinParts(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	n := len(parts) - 1
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '\\')
		}
		b = append(b, p...)
	}
	return string(b)
}
