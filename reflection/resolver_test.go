package reflection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/A-jay98/parser-reflection/ast"
	"github.com/A-jay98/parser-reflection/locator"
	"github.com/A-jay98/parser-reflection/native"
	"github.com/A-jay98/parser-reflection/provider"
)

const fixtureSource = `<?php
namespace App;

class Vehicle
{
    /** Starts the engine. */
    public function start(): bool {}

    protected function wheels(): int {}
}

class Car extends Vehicle
{
    public function __construct(int $seats = 4) {}

    final public function start(): bool {}

    private function secret(?string $code = null): int|string {}

    public static function fleet(Vehicle ...$members): array {}
}

interface Drivable
{
    public function drive(float $km): void;
}

enum Suit: string
{
    case Hearts = 'H';

    public function color(): string {}
}

enum Direction
{
    case North;
}

class Dup
{
    public function twice(): int {}

    public function other(): void {}

    public function twice(): string {}
}
`

func newTestContext(t *testing.T) (*provider.Provider, *native.Registry) {
	t.Helper()
	dir := t.TempDir()
	manifest := `[project]
name = "fixtures"
namespace = "App"
`
	if err := os.WriteFile(filepath.Join(dir, "reflection.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "Fixtures.php"), []byte(fixtureSource), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := locator.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return provider.New(locator.NewLocator(m)), native.NewRegistry()
}

func classOf(t *testing.T, p *provider.Provider, reg *native.Registry, name string) *ClassDescriptor {
	t.Helper()
	cd, err := NewClassDescriptor(p, reg, name)
	if err != nil {
		t.Fatalf("NewClassDescriptor(%q): %v", name, err)
	}
	return cd
}

func TestResolveBuiltin(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	d, err := r.Resolve(&ast.BuiltinType{Name: "int"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Named("int", false, true)
	if !d.Equal(want) {
		t.Errorf("descriptor = %+v, want %+v", d, want)
	}

	d, err = r.Resolve(&ast.BuiltinType{Name: "null"})
	if err != nil {
		t.Fatalf("Resolve null: %v", err)
	}
	if !d.AllowsNull {
		t.Error("null should allow null")
	}
}

func TestResolveNullableClassName(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	d, err := r.Resolve(&ast.NullableType{
		Inner: &ast.NameType{Parts: []string{"Foo"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !d.Equal(Named("Foo", true, false)) {
		t.Errorf("descriptor = %+v", d)
	}
	if d.String() != "?Foo" {
		t.Errorf("display = %q", d.String())
	}
}

func TestResolveUnionPreservesOrderAndDuplicates(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	d, err := r.Resolve(&ast.UnionType{Members: []ast.TypeExpr{
		&ast.BuiltinType{Name: "int"},
		&ast.BuiltinType{Name: "string"},
		&ast.BuiltinType{Name: "int"},
	}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != TypeUnion || len(d.Members) != 3 {
		t.Fatalf("descriptor = %+v", d)
	}
	if d.String() != "int|string|int" {
		t.Errorf("display = %q", d.String())
	}
}

func TestResolveIntersection(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	d, err := r.Resolve(&ast.IntersectionType{Members: []ast.TypeExpr{
		&ast.NameType{Parts: []string{"Countable"}},
		&ast.NameType{Parts: []string{"Traversable"}},
	}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.String() != "Countable&Traversable" {
		t.Errorf("display = %q", d.String())
	}
}

func TestResolveNullableOverUnionFails(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	_, err := r.Resolve(&ast.NullableType{
		Inner: &ast.UnionType{Members: []ast.TypeExpr{
			&ast.BuiltinType{Name: "int"},
			&ast.BuiltinType{Name: "string"},
		}},
	})
	if !errors.Is(err, ErrUnresolvableNode) {
		t.Errorf("err = %v, want ErrUnresolvableNode", err)
	}
}

func TestResolveIsPure(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)
	expr := &ast.UnionType{Members: []ast.TypeExpr{
		&ast.BuiltinType{Name: "int"},
		&ast.NullableType{Inner: &ast.NameType{Parts: []string{"Foo"}}},
	}}

	first, err := r.Resolve(expr)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(expr)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if !first.Equal(second) {
		t.Error("repeated resolution should yield equal descriptors")
	}
	if r.Depth() != 1 {
		t.Errorf("depth after resolve = %d, want 1 (root retained)", r.Depth())
	}
}

func TestResolveClassAbsolute(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	cl, err := r.ResolveClass("\\App\\Vehicle")
	if err != nil {
		t.Fatalf("ResolveClass: %v", err)
	}
	if cl.Name() != "App\\Vehicle" || cl.IsInterface() {
		t.Errorf("class = %q, interface = %v", cl.Name(), cl.IsInterface())
	}
}

func TestResolveClassSelfAndParent(t *testing.T) {
	p, reg := newTestContext(t)
	car := classOf(t, p, reg, "App\\Car")
	r := NewTypeResolver(p, reg, car)

	self, err := r.ResolveClass("self")
	if err != nil || self.Name() != "App\\Car" {
		t.Errorf("self = %v, %v", self, err)
	}

	parent, err := r.ResolveClass("parent")
	if err != nil || parent.Name() != "App\\Vehicle" {
		t.Errorf("parent = %v, %v", parent, err)
	}

	vehicle := classOf(t, p, reg, "App\\Vehicle")
	_, err = NewTypeResolver(p, reg, vehicle).ResolveClass("parent")
	if !errors.Is(err, ErrUnresolvableClass) {
		t.Errorf("rootless parent err = %v, want ErrUnresolvableClass", err)
	}
}

func TestResolveClassRelative(t *testing.T) {
	p, reg := newTestContext(t)
	car := classOf(t, p, reg, "App\\Car")
	r := NewTypeResolver(p, reg, car)

	cl, err := r.ResolveClass("Drivable")
	if err != nil {
		t.Fatalf("ResolveClass: %v", err)
	}
	if cl.Name() != "App\\Drivable" || !cl.IsInterface() {
		t.Errorf("class = %q, interface = %v", cl.Name(), cl.IsInterface())
	}
}

func TestResolveClassRelativeWithoutContext(t *testing.T) {
	p, reg := newTestContext(t)
	r := NewTypeResolver(p, reg, nil)

	_, err := r.ResolveClass("Drivable")
	if !errors.Is(err, ErrUnresolvableClass) {
		t.Errorf("err = %v, want ErrUnresolvableClass", err)
	}
}

func TestResolveClassNativeBuiltin(t *testing.T) {
	p, reg := newTestContext(t)
	reg.RegisterBuiltin("ArrayObject", struct{}{})
	r := NewTypeResolver(p, reg, nil)

	cl, err := r.ResolveClass("\\ArrayObject")
	if err != nil {
		t.Fatalf("ResolveClass: %v", err)
	}
	if _, ok := cl.(*NativeClass); !ok {
		t.Errorf("class = %T, want *NativeClass", cl)
	}
}
