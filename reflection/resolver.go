package reflection

import (
	"fmt"
	"strings"

	"github.com/A-jay98/parser-reflection/ast"
	"github.com/A-jay98/parser-reflection/native"
	"github.com/A-jay98/parser-reflection/provider"
)

// ---------------------------------------------------------------------------
// Resolution contexts
// ---------------------------------------------------------------------------

// FileBound is implemented by resolution contexts that know the source file
// (and namespace) their names appear in. Required for relative names.
type FileBound interface {
	FileName() string
	NamespaceName() string
}

// ClassBound is implemented by resolution contexts with a declaring class.
// Required for self- and parent-references outside a class descriptor.
type ClassBound interface {
	DeclaringClass() (*ClassDescriptor, error)
}

// ---------------------------------------------------------------------------
// TypeResolver
// ---------------------------------------------------------------------------

// TypeResolver converts type-expression subtrees into TypeDescriptors and
// maps contextual class names onto class-like descriptors. Resolution is
// pure: the same input always yields an equal descriptor and never executes
// reflected code.
type TypeResolver struct {
	prov *provider.Provider
	reg  *native.Registry // may be nil
	ctx  interface{}      // resolution context; nil for none

	// Explicit traversal stack for diagnostics. The root node is pushed
	// first and retained for the duration of the resolve call.
	stack []ast.TypeExpr
}

// NewTypeResolver creates a resolver. reg may be nil when no loaded
// implementations exist; ctx may be nil when no context applies.
func NewTypeResolver(prov *provider.Provider, reg *native.Registry, ctx interface{}) *TypeResolver {
	return &TypeResolver{prov: prov, reg: reg, ctx: ctx}
}

// Depth returns the current traversal depth. Zero outside a resolve call.
func (r *TypeResolver) Depth() int {
	return len(r.stack)
}

// Resolve converts a type-expression subtree into a fresh TypeDescriptor.
// Failures abort the whole call with no partial result.
func (r *TypeResolver) Resolve(t ast.TypeExpr) (TypeDescriptor, error) {
	r.stack = r.stack[:0]
	r.stack = append(r.stack, t) // root stays on the stack
	return r.resolveNode(t)
}

// resolveNode dispatches over the closed set of type-expression kinds.
func (r *TypeResolver) resolveNode(t ast.TypeExpr) (TypeDescriptor, error) {
	switch t := t.(type) {
	case *ast.BuiltinType:
		return Named(t.Name, strings.EqualFold(t.Name, "null"), true), nil

	case *ast.NameType:
		return Named(t.Name(), false, false), nil

	case *ast.FullyQualifiedType:
		// Already absolute; taken verbatim.
		return Named(t.Name(), false, false), nil

	case *ast.NullableType:
		inner, err := r.resolveChild(t.Inner)
		if err != nil {
			return TypeDescriptor{}, err
		}
		if inner.Kind != TypeNamed {
			return TypeDescriptor{}, fmt.Errorf("%w: nullable over non-named type %q", ErrUnresolvableNode, inner)
		}
		return Named(inner.Name, true, inner.Builtin), nil

	case *ast.UnionType:
		members := make([]TypeDescriptor, 0, len(t.Members))
		for _, m := range t.Members {
			d, err := r.resolveChild(m)
			if err != nil {
				return TypeDescriptor{}, err
			}
			members = append(members, d)
		}
		// Declaration order preserved, no deduplication.
		return TypeDescriptor{Kind: TypeUnion, Members: members}, nil

	case *ast.IntersectionType:
		members := make([]TypeDescriptor, 0, len(t.Members))
		for _, m := range t.Members {
			d, err := r.resolveChild(m)
			if err != nil {
				return TypeDescriptor{}, err
			}
			if d.Kind != TypeNamed {
				return TypeDescriptor{}, fmt.Errorf("%w: intersection member %q is not a named type", ErrUnresolvableNode, d)
			}
			members = append(members, d)
		}
		return TypeDescriptor{Kind: TypeIntersection, Members: members}, nil

	default:
		return TypeDescriptor{}, fmt.Errorf("%w: %T at depth %d", ErrUnresolvableNode, t, len(r.stack))
	}
}

// resolveChild resolves a nested node, tracking it on the traversal stack.
func (r *TypeResolver) resolveChild(t ast.TypeExpr) (TypeDescriptor, error) {
	r.stack = append(r.stack, t)
	d, err := r.resolveNode(t)
	r.stack = r.stack[:len(r.stack)-1]
	return d, err
}

// ---------------------------------------------------------------------------
// Contextual class resolution
// ---------------------------------------------------------------------------

// ResolveClass maps a class name appearing in a type position onto a
// class-like descriptor, applying the contextual rules for absolute names,
// self- and parent-references, and namespace-relative names.
func (r *TypeResolver) ResolveClass(name string) (ClassLike, error) {
	switch {
	case strings.HasPrefix(name, "\\"):
		return r.resolveAbsolute(strings.TrimPrefix(name, "\\"))

	case strings.EqualFold(name, "self") || strings.EqualFold(name, "static"):
		return r.selfClass()

	case strings.EqualFold(name, "parent"):
		self, err := r.selfClass()
		if err != nil {
			return nil, err
		}
		parent, err := self.ParentClass()
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: %q has no parent class", ErrUnresolvableClass, self.Name())
		}
		return parent, nil

	default:
		return r.resolveRelative(name)
	}
}

// resolveAbsolute resolves a fully-qualified name. Internal types that are
// already loaded resolve to their native descriptor directly, without
// parsing; everything else is reflected from source.
func (r *TypeResolver) resolveAbsolute(name string) (ClassLike, error) {
	if r.reg != nil {
		if entry, ok := r.reg.Lookup(name); ok && entry.Builtin {
			return NewNativeClass(r.reg, entry), nil
		}
	}
	return NewClassDescriptor(r.prov, r.reg, name)
}

// selfClass applies the self-reference rule: a class-like context resolves
// to itself; otherwise the context's declaring class.
func (r *TypeResolver) selfClass() (*ClassDescriptor, error) {
	if cd, ok := r.ctx.(*ClassDescriptor); ok {
		return cd, nil
	}
	if cb, ok := r.ctx.(ClassBound); ok {
		return cb.DeclaringClass()
	}
	return nil, fmt.Errorf("%w: self-reference with no class-like context", ErrUnresolvableClass)
}

// resolveRelative resolves any other name against the file-level namespace
// scope, which requires the context to expose a source file path.
func (r *TypeResolver) resolveRelative(name string) (ClassLike, error) {
	fb, ok := r.ctx.(FileBound)
	if !ok || fb.FileName() == "" {
		return nil, fmt.Errorf("%w: relative name %q with no file context", ErrUnresolvableClass, name)
	}

	sym, ok, err := r.prov.Locator().GetClass(name, fb.FileName(), fb.NamespaceName())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q not found in namespace %q", ErrUnresolvableClass, name, fb.NamespaceName())
	}
	return NewClassDescriptor(r.prov, r.reg, sym.Name)
}
