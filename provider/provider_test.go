package provider

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/A-jay98/parser-reflection/ast"
	"github.com/A-jay98/parser-reflection/locator"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "reflection.toml", `[project]
name = "demo"
namespace = "App"
`)
	writeFile(t, dir, "src/Shapes.php", `<?php
namespace App;

class Circle extends Shape
{
    public function area(): float {}
}

class Shape
{
    public function area(): float {}
}
`)
	m, err := locator.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return New(locator.NewLocator(m))
}

func TestParseCachesSubtree(t *testing.T) {
	p := newTestProvider(t)

	first, err := p.Parse("App\\Circle")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := p.Parse("App\\Circle")
	if err != nil {
		t.Fatalf("Parse again: %v", err)
	}
	if first != second {
		t.Error("repeated Parse should return the same shared subtree")
	}
}

func TestParseCachesSiblingDeclarations(t *testing.T) {
	p := newTestProvider(t)

	if _, err := p.Parse("App\\Circle"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Shape lives in the same file and was cached along the way.
	if _, ok := p.Cached("App\\Shape"); !ok {
		t.Error("sibling declaration should be cached")
	}
}

func TestParseStampsAttributes(t *testing.T) {
	p := newTestProvider(t)

	decl, err := p.Parse("App\\Circle")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	file, ok := p.Attributes().Get(decl, ast.AttrFileName)
	if !ok || filepath.Base(file) != "Shapes.php" {
		t.Errorf("declaration file attr = %q, %v", file, ok)
	}
	ns, _ := p.Attributes().Get(decl, ast.AttrNamespace)
	if ns != "App" {
		t.Errorf("namespace attr = %q", ns)
	}

	// Facts propagate to member nodes.
	if len(decl.Members) == 0 {
		t.Fatal("Circle should have members")
	}
	mfile, ok := p.Attributes().Get(decl.Members[0], ast.AttrFileName)
	if !ok || mfile != file {
		t.Errorf("member file attr = %q, %v", mfile, ok)
	}
}

func TestParseUnknownClass(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.Parse("App\\Nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHashMethodStructural(t *testing.T) {
	a := &ast.MethodDecl{
		Name: "area",
		Mods: ast.ModPublic,
		ReturnType: &ast.BuiltinType{Name: "float"},
		SpanVal: ast.Span{File: "/a.php", StartLine: 3, EndLine: 5},
	}
	b := &ast.MethodDecl{
		Name: "area",
		Mods: ast.ModPublic,
		ReturnType: &ast.BuiltinType{Name: "float"},
		SpanVal: ast.Span{File: "/b.php", StartLine: 30, EndLine: 50},
	}
	if HashMethod(a) != HashMethod(b) {
		t.Error("spans should not affect the structural hash")
	}

	b.Mods |= ast.ModStatic
	if HashMethod(a) == HashMethod(b) {
		t.Error("modifier change should alter the hash")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := newTestProvider(t)
	if _, err := p.Parse("App\\Circle"); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	snap := p.Snapshot()
	if snap.Session != p.Session() {
		t.Errorf("snapshot session = %q", snap.Session)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(snap.Entries))
	}
	// Deterministic order.
	if snap.Entries[0].Name != "App\\Circle" || snap.Entries[1].Name != "App\\Shape" {
		t.Errorf("entry order = %q, %q", snap.Entries[0].Name, snap.Entries[1].Name)
	}

	data, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	back, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if len(back.Entries) != 2 || back.Entries[0].Hash != snap.Entries[0].Hash {
		t.Error("snapshot did not round-trip")
	}

	again, err := MarshalSnapshot(p.Snapshot())
	if err != nil {
		t.Fatalf("MarshalSnapshot again: %v", err)
	}
	if string(again) != string(data) {
		t.Error("canonical encoding should be byte-stable")
	}
}

func TestSnapshotDiff(t *testing.T) {
	a := &Snapshot{Entries: []SnapshotEntry{
		{Name: "App\\Circle", Hash: [32]byte{1}},
		{Name: "App\\Shape", Hash: [32]byte{2}},
	}}
	b := &Snapshot{Entries: []SnapshotEntry{
		{Name: "App\\Circle", Hash: [32]byte{9}},
		{Name: "App\\Square", Hash: [32]byte{3}},
	}}

	changed := Diff(a, b)
	want := []string{"App\\Circle", "App\\Shape", "App\\Square"}
	if len(changed) != len(want) {
		t.Fatalf("changed = %v", changed)
	}
	for i := range want {
		if changed[i] != want[i] {
			t.Errorf("changed[%d] = %q, want %q", i, changed[i], want[i])
		}
	}
}

func TestWriteAndReadSnapshot(t *testing.T) {
	p := newTestProvider(t)
	if _, err := p.Parse("App\\Shape"); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cache.cbor")
	if err := p.WriteSnapshot(path); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(snap.Entries) == 0 {
		t.Error("snapshot should have entries")
	}
}
