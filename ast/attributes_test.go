package ast

import (
	"sync"
	"testing"
)

func TestAttributesFirstWins(t *testing.T) {
	attrs := NewAttributes()
	decl := &ClassLikeDecl{Name: "Foo"}

	if !attrs.Set(decl, AttrFileName, "/src/Foo.php") {
		t.Fatal("first Set should store the fact")
	}
	if attrs.Set(decl, AttrFileName, "/elsewhere/Foo.php") {
		t.Error("second Set for the same key should be a no-op")
	}

	v, ok := attrs.Get(decl, AttrFileName)
	if !ok || v != "/src/Foo.php" {
		t.Errorf("Get = %q, %v; want first value", v, ok)
	}
}

func TestAttributesPropagate(t *testing.T) {
	attrs := NewAttributes()
	m := &MethodDecl{Name: "bar"}
	decl := &ClassLikeDecl{Name: "Foo", Members: []*MethodDecl{m}}

	attrs.Set(decl, AttrFileName, "/src/Foo.php")
	attrs.Set(decl, AttrNamespace, "App")
	attrs.Set(m, AttrNamespace, "Kept") // member fact must survive

	attrs.Propagate(decl)

	if v, _ := attrs.Get(m, AttrFileName); v != "/src/Foo.php" {
		t.Errorf("member file = %q, want propagated path", v)
	}
	if v, _ := attrs.Get(m, AttrNamespace); v != "Kept" {
		t.Errorf("member namespace = %q, existing fact should win", v)
	}
}

func TestAttributesConcurrentWriters(t *testing.T) {
	attrs := NewAttributes()
	decl := &ClassLikeDecl{Name: "Foo"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			attrs.Set(decl, AttrFileName, "/src/Foo.php")
		}(i)
	}
	wg.Wait()

	if v, ok := attrs.Get(decl, AttrFileName); !ok || v != "/src/Foo.php" {
		t.Errorf("fact after racing writers = %q, %v", v, ok)
	}
}

func TestSpanIsZero(t *testing.T) {
	if !(Span{}).IsZero() {
		t.Error("zero span should report IsZero")
	}
	if (Span{File: "a.php", StartLine: 1, EndLine: 2}).IsZero() {
		t.Error("populated span should not report IsZero")
	}
}

func TestFullName(t *testing.T) {
	d := &ClassLikeDecl{Name: "Foo", Namespace: "App\\Model"}
	if got := d.FullName(); got != "App\\Model\\Foo" {
		t.Errorf("FullName = %q", got)
	}
	d.Namespace = ""
	if got := d.FullName(); got != "Foo" {
		t.Errorf("FullName without namespace = %q", got)
	}
}
