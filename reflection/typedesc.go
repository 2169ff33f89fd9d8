// Package reflection derives structural metadata about class-like
// declarations straight from their parsed ASTs. The surface mirrors the
// runtime's native method-reflection facility; actual execution capability
// is bridged in lazily through the native registry, and only for the
// invocation family.
package reflection

import "strings"

// ---------------------------------------------------------------------------
// TypeDescriptor: resolved type expressions
// ---------------------------------------------------------------------------

// TypeKind discriminates TypeDescriptor variants.
type TypeKind int

const (
	TypeNamed TypeKind = iota
	TypeUnion
	TypeIntersection
)

// TypeDescriptor is the canonical result of resolving a type expression.
// It is a terminal value: produced fresh per resolution call and never
// mutated or retained by the resolver.
//
// Named descriptors use Name/AllowsNull/Builtin; Union and Intersection use
// Members, in declaration order with no deduplication.
type TypeDescriptor struct {
	Kind       TypeKind
	Name       string
	AllowsNull bool
	Builtin    bool
	Members    []TypeDescriptor
}

// Named constructs a Named descriptor.
func Named(name string, allowsNull, builtin bool) TypeDescriptor {
	return TypeDescriptor{Kind: TypeNamed, Name: name, AllowsNull: allowsNull, Builtin: builtin}
}

// Equal reports structural equality.
func (t TypeDescriptor) Equal(o TypeDescriptor) bool {
	if t.Kind != o.Kind || t.Name != o.Name || t.AllowsNull != o.AllowsNull || t.Builtin != o.Builtin {
		return false
	}
	if len(t.Members) != len(o.Members) {
		return false
	}
	for i := range t.Members {
		if !t.Members[i].Equal(o.Members[i]) {
			return false
		}
	}
	return true
}

// String returns the display form used in textual dumps: `?name` for a
// nullable named type, members joined with `|` or `&` otherwise.
func (t TypeDescriptor) String() string {
	switch t.Kind {
	case TypeUnion:
		return t.joinMembers("|")
	case TypeIntersection:
		return t.joinMembers("&")
	default:
		if t.AllowsNull && !strings.EqualFold(t.Name, "null") {
			return "?" + t.Name
		}
		return t.Name
	}
}

func (t TypeDescriptor) joinMembers(sep string) string {
	var sb strings.Builder
	for i, m := range t.Members {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}
