package reflection

import (
	"fmt"
	"sync"

	"github.com/A-jay98/parser-reflection/ast"
	"github.com/A-jay98/parser-reflection/native"
	"github.com/A-jay98/parser-reflection/provider"
)

// ---------------------------------------------------------------------------
// ClassLike: capability interface over class-like descriptors
// ---------------------------------------------------------------------------

// ClassLike is the minimal capability shared by AST-backed and native
// class descriptors.
type ClassLike interface {
	Name() string
	IsInterface() bool
}

// ---------------------------------------------------------------------------
// ClassDescriptor: AST-backed class-like descriptor
// ---------------------------------------------------------------------------

// ClassDescriptor navigates one parsed class-like declaration: its methods,
// parent chain, and resolution context. Method reflection only; properties,
// constants and interface lists are out of scope here.
type ClassDescriptor struct {
	name string
	decl *ast.ClassLikeDecl
	prov *provider.Provider
	reg  *native.Registry

	parentOnce sync.Once
	parent     *ClassDescriptor
	parentErr  error
}

// NewClassDescriptor parses (or fetches from cache) the named declaration
// and wraps it.
func NewClassDescriptor(prov *provider.Provider, reg *native.Registry, name string) (*ClassDescriptor, error) {
	decl, err := prov.Parse(name)
	if err != nil {
		return nil, err
	}
	return &ClassDescriptor{name: name, decl: decl, prov: prov, reg: reg}, nil
}

// Name returns the fully-qualified class name.
func (c *ClassDescriptor) Name() string { return c.name }

// Decl returns the backing declaration subtree.
func (c *ClassDescriptor) Decl() *ast.ClassLikeDecl { return c.decl }

// IsInterface reports whether the declaration is an interface.
func (c *ClassDescriptor) IsInterface() bool { return c.decl.Kind == ast.KindInterface }

// IsEnum reports whether the declaration is an enumerated type.
func (c *ClassDescriptor) IsEnum() bool { return c.decl.Kind == ast.KindEnum }

// FileName returns the declaring file path. Implements FileBound.
func (c *ClassDescriptor) FileName() string {
	file, _ := c.prov.Attributes().Get(c.decl, ast.AttrFileName)
	return file
}

// NamespaceName returns the declaring namespace. Implements FileBound.
func (c *ClassDescriptor) NamespaceName() string {
	ns, _ := c.prov.Attributes().Get(c.decl, ast.AttrNamespace)
	return ns
}

// ParentClass returns the parent class descriptor, or nil when the
// declaration has no parent. The result is computed once.
func (c *ClassDescriptor) ParentClass() (*ClassDescriptor, error) {
	c.parentOnce.Do(func() {
		if c.decl.Parent == "" {
			return
		}
		// Try the declaring namespace first, then the spelling as given.
		if sym, ok, err := c.prov.Locator().GetClass(c.decl.Parent, c.FileName(), c.NamespaceName()); err == nil && ok {
			c.parent, c.parentErr = NewClassDescriptor(c.prov, c.reg, sym.Name)
			return
		}
		c.parent, c.parentErr = NewClassDescriptor(c.prov, c.reg, c.decl.Parent)
	})
	return c.parent, c.parentErr
}

// Methods returns reflectors for the declaration's own methods, declared
// plus synthesized, in declaration order.
func (c *ClassDescriptor) Methods() []*MethodReflector {
	return CollectFromClassLikeDeclaration(c.prov, c.reg, c.decl, c)
}

// Method returns the named method, searching this declaration first and
// then the ancestor chain.
func (c *ClassDescriptor) Method(name string) (*MethodReflector, error) {
	for current := c; current != nil; {
		for _, m := range current.Methods() {
			if m.Name() == name {
				return m, nil
			}
		}
		parent, err := current.ParentClass()
		if err != nil {
			return nil, err
		}
		current = parent
	}
	return nil, fmt.Errorf("reflection: class %q has no method %q", c.name, name)
}

// HasMethod reports whether the named method exists on this declaration or
// any ancestor.
func (c *ClassDescriptor) HasMethod(name string) bool {
	m, err := c.Method(name)
	return err == nil && m != nil
}

// ---------------------------------------------------------------------------
// NativeClass: descriptor over a loaded internal type
// ---------------------------------------------------------------------------

// NativeClass describes a class that exists as a loaded implementation in
// the native registry rather than as parsed source.
type NativeClass struct {
	reg   *native.Registry
	entry native.Entry
}

// NewNativeClass wraps a registry entry.
func NewNativeClass(reg *native.Registry, entry native.Entry) *NativeClass {
	return &NativeClass{reg: reg, entry: entry}
}

// Name returns the registered class name.
func (n *NativeClass) Name() string { return n.entry.Name }

// IsInterface always reports false: loaded implementations are concrete.
func (n *NativeClass) IsInterface() bool { return false }

// MethodNames enumerates the loaded implementation's methods.
func (n *NativeClass) MethodNames() []string {
	return n.reg.MethodNames(n.entry.Name)
}
