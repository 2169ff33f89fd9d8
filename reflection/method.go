package reflection

import (
	"fmt"
	"strings"
	"sync"

	"github.com/A-jay98/parser-reflection/ast"
	"github.com/A-jay98/parser-reflection/native"
	"github.com/A-jay98/parser-reflection/provider"
)

// ---------------------------------------------------------------------------
// MethodReflector
// ---------------------------------------------------------------------------

// MethodReflector exposes one method member of a class-like declaration.
// Everything structural is answered from the parsed subtree; the invocation
// family binds to a loaded implementation lazily, at most once.
type MethodReflector struct {
	className string
	decl      *ast.MethodDecl
	class     *ClassDescriptor // declaring class, may be nil until asked for
	prov      *provider.Provider
	reg       *native.Registry

	accessible bool

	bindOnce sync.Once
	bound    *native.Method
	bindErr  error
}

// NewMethodReflector wraps a method declaration belonging to the named
// class. class may be nil; it is resolved on demand.
func NewMethodReflector(prov *provider.Provider, reg *native.Registry, className string, decl *ast.MethodDecl, class *ClassDescriptor) *MethodReflector {
	return &MethodReflector{
		className: className,
		decl:      decl,
		class:     class,
		prov:      prov,
		reg:       reg,
	}
}

// Name returns the declared method name.
func (m *MethodReflector) Name() string { return m.decl.Name }

// Decl returns the backing declaration subtree.
func (m *MethodReflector) Decl() *ast.MethodDecl { return m.decl }

// DeclaringClass returns the descriptor of the class the method belongs to.
func (m *MethodReflector) DeclaringClass() (*ClassDescriptor, error) {
	if m.class != nil {
		return m.class, nil
	}
	cd, err := NewClassDescriptor(m.prov, m.reg, m.className)
	if err != nil {
		return nil, err
	}
	m.class = cd
	return cd, nil
}

// DeclaringClassName returns the fully-qualified name of the declaring class.
func (m *MethodReflector) DeclaringClassName() string { return m.className }

// FileName returns the declaring source file, "" for synthesized methods.
func (m *MethodReflector) FileName() string { return m.decl.SpanVal.File }

// StartLine returns the first source line of the declaration.
func (m *MethodReflector) StartLine() int { return m.decl.SpanVal.StartLine }

// EndLine returns the last source line of the declaration.
func (m *MethodReflector) EndLine() int { return m.decl.SpanVal.EndLine }

// IsSynthetic reports whether the method was synthesized rather than
// declared in source.
func (m *MethodReflector) IsSynthetic() bool { return m.decl.SpanVal.IsZero() }

// DocComment returns the attached doc comment, "" if none.
func (m *MethodReflector) DocComment() string { return m.decl.DocText }

// Modifiers returns the effective modifier mask. Methods declared on an
// interface are abstract whether or not the keyword appears.
func (m *MethodReflector) Modifiers() ast.Modifiers {
	mods := m.decl.Mods
	if cd, err := m.DeclaringClass(); err == nil && cd.IsInterface() {
		mods |= ast.ModAbstract
	}
	return mods
}

func (m *MethodReflector) IsPublic() bool    { return m.Modifiers()&ast.ModPublic != 0 }
func (m *MethodReflector) IsProtected() bool { return m.Modifiers()&ast.ModProtected != 0 }
func (m *MethodReflector) IsPrivate() bool   { return m.Modifiers()&ast.ModPrivate != 0 }
func (m *MethodReflector) IsStatic() bool    { return m.Modifiers()&ast.ModStatic != 0 }
func (m *MethodReflector) IsFinal() bool     { return m.Modifiers()&ast.ModFinal != 0 }
func (m *MethodReflector) IsAbstract() bool  { return m.Modifiers()&ast.ModAbstract != 0 }

// IsConstructor reports whether the method is the class constructor.
// The comparison is case-insensitive, as the runtime's is.
func (m *MethodReflector) IsConstructor() bool {
	return strings.EqualFold(m.decl.Name, "__construct")
}

// IsDestructor reports whether the method is the class destructor.
func (m *MethodReflector) IsDestructor() bool {
	return strings.EqualFold(m.decl.Name, "__destruct")
}

// Parameters returns reflectors for the declared parameters, in order.
func (m *MethodReflector) Parameters() []*ParameterReflector {
	resolver := NewTypeResolver(m.prov, m.reg, m.class)
	out := make([]*ParameterReflector, len(m.decl.Params))
	for i, p := range m.decl.Params {
		out[i] = NewParameterReflector(p, i, resolver)
	}
	return out
}

// HasReturnType reports whether the method declares a return type.
func (m *MethodReflector) HasReturnType() bool { return m.decl.ReturnType != nil }

// ReturnType resolves the declared return type.
func (m *MethodReflector) ReturnType() (TypeDescriptor, error) {
	if m.decl.ReturnType == nil {
		return TypeDescriptor{}, fmt.Errorf("reflection: method %s::%s has no return type", m.className, m.decl.Name)
	}
	return NewTypeResolver(m.prov, m.reg, m.class).Resolve(m.decl.ReturnType)
}

// Prototype returns the nearest ancestor declaration of a same-named
// method. ErrNoPrototype when no ancestor declares one.
func (m *MethodReflector) Prototype() (*MethodReflector, error) {
	cd, err := m.DeclaringClass()
	if err != nil {
		return nil, err
	}
	parent, err := cd.ParentClass()
	if err != nil {
		return nil, err
	}
	for parent != nil {
		for _, pm := range parent.Methods() {
			if pm.Name() == m.decl.Name {
				return pm, nil
			}
		}
		parent, err = parent.ParentClass()
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s::%s", ErrNoPrototype, m.className, m.decl.Name)
}

// ---------------------------------------------------------------------------
// Invocation family
// ---------------------------------------------------------------------------

// SetAccessible lifts the visibility check on the invocation family. Like
// the rest of the family it binds the loaded implementation first, so an
// unbindable reflector fails here rather than later.
func (m *MethodReflector) SetAccessible(accessible bool) error {
	if _, err := m.bind(); err != nil {
		return err
	}
	m.accessible = accessible
	return nil
}

// bind resolves the loaded implementation at most once. Structural use of
// the reflector never triggers this.
func (m *MethodReflector) bind() (*native.Method, error) {
	m.bindOnce.Do(func() {
		if m.reg == nil {
			m.bindErr = fmt.Errorf("%w: %s::%s", ErrUnsupportedOperation, m.className, m.decl.Name)
			return
		}
		bound, err := m.reg.Bind(m.className, m.decl.Name)
		if err != nil {
			m.bindErr = fmt.Errorf("%w: %s::%s: %v", ErrUnsupportedOperation, m.className, m.decl.Name, err)
			return
		}
		m.bound = bound
	})
	return m.bound, m.bindErr
}

// Invoke executes the method against its loaded implementation. Non-public
// methods require SetAccessible(true) first.
func (m *MethodReflector) Invoke(args ...interface{}) (interface{}, error) {
	if (m.IsPrivate() || m.IsProtected()) && !m.accessible {
		return nil, fmt.Errorf("reflection: cannot invoke non-public method %s::%s", m.className, m.decl.Name)
	}
	bound, err := m.bind()
	if err != nil {
		return nil, err
	}
	return bound.Invoke(args...)
}

// InvokeArgs is Invoke with the arguments as a slice.
func (m *MethodReflector) InvokeArgs(args []interface{}) (interface{}, error) {
	return m.Invoke(args...)
}

// Closure returns the method as a callable bound to its loaded
// implementation. Visibility is not checked here; the closure is already an
// explicit capability grant.
func (m *MethodReflector) Closure() (func(args ...interface{}) (interface{}, error), error) {
	bound, err := m.bind()
	if err != nil {
		return nil, err
	}
	return bound.Closure(), nil
}

// ---------------------------------------------------------------------------
// Textual dump
// ---------------------------------------------------------------------------

// ToDisplayString renders the method in the runtime's export format.
func (m *MethodReflector) ToDisplayString() string {
	doc := ""
	if m.decl.DocText != "" {
		doc = m.decl.DocText + "\n"
	}

	prototypeSeg := ""
	if proto, err := m.Prototype(); err == nil {
		prototypeSeg = fmt.Sprintf(", overwrites %s, prototype %s", proto.DeclaringClassName(), proto.DeclaringClassName())
	}

	ctorSeg, dtorSeg := "", ""
	if m.IsConstructor() {
		ctorSeg = ", ctor"
	}
	if m.IsDestructor() {
		dtorSeg = ", dtor"
	}

	finalSeg, staticSeg, abstractSeg := "", "", ""
	if m.IsFinal() {
		finalSeg = " final"
	}
	if m.IsStatic() {
		staticSeg = " static"
	}
	if m.IsAbstract() {
		abstractSeg = " abstract"
	}

	visibility := "public"
	switch {
	case m.IsPrivate():
		visibility = "private"
	case m.IsProtected():
		visibility = "protected"
	}

	paramsBlock := ""
	if params := m.Parameters(); len(params) > 0 {
		var lines strings.Builder
		for _, p := range params {
			lines.WriteString("\n    ")
			lines.WriteString(p.String())
		}
		paramsBlock = fmt.Sprintf("\n\n  - Parameters [%d] {%s\n  }", len(params), lines.String())
	}

	returnBlock := ""
	if m.decl.ReturnType != nil {
		returnBlock = fmt.Sprintf("\n  - Return [ %s ]", ast.TypeString(m.decl.ReturnType))
	}

	return fmt.Sprintf(
		"%sMethod [ <user%s%s%s>%s%s%s %s method %s ] {\n  @@ %s %d - %d%s%s\n}\n",
		doc,
		prototypeSeg,
		ctorSeg,
		dtorSeg,
		finalSeg,
		staticSeg,
		abstractSeg,
		visibility,
		m.decl.Name,
		m.decl.SpanVal.File,
		m.decl.SpanVal.StartLine,
		m.decl.SpanVal.EndLine,
		paramsBlock,
		returnBlock,
	)
}

// ---------------------------------------------------------------------------
// Member collection
// ---------------------------------------------------------------------------

// CollectFromClassLikeDeclaration builds reflectors for a declaration's
// method members. Declaration order is preserved; a later member with the
// same name replaces the earlier one in place. Enum declarations get their
// synthesized members appended, unless a declared member shadows one.
func CollectFromClassLikeDeclaration(prov *provider.Provider, reg *native.Registry, decl *ast.ClassLikeDecl, class *ClassDescriptor) []*MethodReflector {
	className := decl.FullName()
	byName := make(map[string]int, len(decl.Members))
	out := make([]*MethodReflector, 0, len(decl.Members))

	add := func(md *ast.MethodDecl) {
		m := NewMethodReflector(prov, reg, className, md, class)
		if i, ok := byName[md.Name]; ok {
			out[i] = m
			return
		}
		byName[md.Name] = len(out)
		out = append(out, m)
	}

	for _, md := range decl.Members {
		add(md)
	}
	for _, md := range BuildEnumMethods(decl) {
		if _, exists := byName[md.Name]; !exists {
			add(md)
		}
	}
	return out
}
