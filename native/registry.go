// Package native is the bridge to the host runtime's reflective facility.
// Reflected classes normally exist only as parsed source; when one has an
// actual loaded Go implementation registered here, invocation-family
// operations can bind to it and execute for real.
package native

import (
	"fmt"
	"reflect"
	"sync"
)

// Entry is a registered runtime implementation of a class.
type Entry struct {
	Name    string
	Value   reflect.Value // the registered implementation
	Builtin bool          // true for internal (non-user-authored) types
}

// Registry maps class names to loaded implementations. Thread-safe; last
// registration for a name wins, matching how a runtime reloads a class.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a loaded implementation under a class name.
func (r *Registry) Register(name string, impl interface{}) {
	r.register(name, impl, false)
}

// RegisterBuiltin adds an internal (non-user-authored) implementation. The
// type resolver may resolve fully-qualified names to these directly,
// without parsing.
func (r *Registry) RegisterBuiltin(name string, impl interface{}) {
	r.register(name, impl, true)
}

func (r *Registry) register(name string, impl interface{}, builtin bool) {
	r.mu.Lock()
	r.entries[name] = Entry{
		Name:    name,
		Value:   reflect.ValueOf(impl),
		Builtin: builtin,
	}
	r.mu.Unlock()
}

// Lookup returns the entry for a class name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// IsBuiltin reports whether a class name is registered as internal.
func (r *Registry) IsBuiltin(name string) bool {
	e, ok := r.Lookup(name)
	return ok && e.Builtin
}

// MethodNames returns the method names of a registered implementation.
func (r *Registry) MethodNames(name string) []string {
	e, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	t := e.Value.Type()
	names := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		names = append(names, t.Method(i).Name)
	}
	return names
}

// ---------------------------------------------------------------------------
// Bound methods
// ---------------------------------------------------------------------------

// Method is an invocable handle bound to a loaded implementation.
type Method struct {
	ClassName  string
	MethodName string
	fn         reflect.Value
}

// Bind resolves a class and method name to an invocable handle. The method
// name is matched exactly first, then with an upper-cased first letter so
// source-level names map onto exported Go methods.
func (r *Registry) Bind(className, methodName string) (*Method, error) {
	e, ok := r.Lookup(className)
	if !ok {
		return nil, fmt.Errorf("native: class %q is not loaded", className)
	}

	fn := e.Value.MethodByName(methodName)
	if !fn.IsValid() {
		fn = e.Value.MethodByName(exported(methodName))
	}
	if !fn.IsValid() {
		return nil, fmt.Errorf("native: method %s::%s is not loaded", className, methodName)
	}

	return &Method{
		ClassName:  className,
		MethodName: methodName,
		fn:         fn,
	}, nil
}

// Invoke calls the bound method with the given arguments. Panics from the
// callee are surfaced as errors; reflection conversion failures as well.
func (m *Method) Invoke(args ...interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("native: invoke %s::%s: %v", m.ClassName, m.MethodName, r)
		}
	}()

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(m.fn.Type().In(i))
		} else {
			in[i] = reflect.ValueOf(a)
		}
	}

	out := m.fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		results := make([]interface{}, len(out))
		for i, v := range out {
			results[i] = v.Interface()
		}
		return results, nil
	}
}

// Closure returns the bound method as a callable value.
func (m *Method) Closure() func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		return m.Invoke(args...)
	}
}

// exported upper-cases the first byte of an ASCII identifier.
func exported(name string) string {
	if name == "" || (name[0] >= 'A' && name[0] <= 'Z') {
		return name
	}
	if name[0] >= 'a' && name[0] <= 'z' {
		return string(name[0]-'a'+'A') + name[1:]
	}
	return name
}
