package reflection

import (
	"fmt"
	"strings"

	"github.com/A-jay98/parser-reflection/ast"
)

// ---------------------------------------------------------------------------
// ParameterReflector
// ---------------------------------------------------------------------------

// ParameterReflector exposes one method parameter. Position is the
// zero-based index within the declaring method's parameter list.
type ParameterReflector struct {
	decl     *ast.ParamDecl
	position int
	resolver *TypeResolver // may be nil when no resolution context applies
}

// NewParameterReflector wraps a parameter declaration.
func NewParameterReflector(decl *ast.ParamDecl, position int, resolver *TypeResolver) *ParameterReflector {
	return &ParameterReflector{decl: decl, position: position, resolver: resolver}
}

// Name returns the parameter name without the leading sigil.
func (p *ParameterReflector) Name() string { return p.decl.Name }

// Position returns the zero-based parameter index.
func (p *ParameterReflector) Position() int { return p.position }

// HasType reports whether the parameter carries a type expression.
func (p *ParameterReflector) HasType() bool { return p.decl.Type != nil }

// Type resolves the parameter's type expression.
func (p *ParameterReflector) Type() (TypeDescriptor, error) {
	if p.decl.Type == nil {
		return TypeDescriptor{}, fmt.Errorf("reflection: parameter $%s has no type", p.decl.Name)
	}
	if p.resolver == nil {
		return TypeDescriptor{}, fmt.Errorf("%w: parameter $%s resolved with no context", ErrUnresolvableClass, p.decl.Name)
	}
	return p.resolver.Resolve(p.decl.Type)
}

// IsOptional reports whether the parameter may be omitted at a call site.
// Variadic parameters are always optional.
func (p *ParameterReflector) IsOptional() bool {
	return p.decl.HasDefault || p.decl.Variadic
}

// IsVariadic reports whether the parameter collects trailing arguments.
func (p *ParameterReflector) IsVariadic() bool { return p.decl.Variadic }

// IsPassedByReference reports whether the parameter binds by reference.
func (p *ParameterReflector) IsPassedByReference() bool { return p.decl.ByRef }

// HasDefault reports whether the parameter declares a default value.
func (p *ParameterReflector) HasDefault() bool { return p.decl.HasDefault }

// DefaultValueText returns the default expression's source text.
func (p *ParameterReflector) DefaultValueText() string { return p.decl.Default }

// String returns the single-line textual dump of the parameter.
func (p *ParameterReflector) String() string {
	kind := "required"
	if p.IsOptional() {
		kind = "optional"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Parameter #%d [ <%s> ", p.position, kind)
	if p.decl.Type != nil {
		sb.WriteString(ast.TypeString(p.decl.Type))
		sb.WriteByte(' ')
	}
	if p.decl.ByRef {
		sb.WriteByte('&')
	}
	if p.decl.Variadic {
		sb.WriteString("...")
	}
	sb.WriteByte('$')
	sb.WriteString(p.decl.Name)
	if p.decl.HasDefault {
		sb.WriteString(" = ")
		sb.WriteString(p.decl.Default)
	}
	sb.WriteString(" ]")
	return sb.String()
}
