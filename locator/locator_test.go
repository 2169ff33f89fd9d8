package locator

import (
	"os"
	"path/filepath"
	"testing"
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

func newTestProject(t *testing.T) (*Manifest, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "reflection.toml", `
[project]
name = "demo"
namespace = "App"

[source]
dirs = ["src"]
`)
	writeFile(t, dir, "src/User.php", `<?php
namespace App;

class User extends Base
{
    public function name(): string {}
}
`)
	writeFile(t, dir, "src/Base.php", `<?php
namespace App;

class Base
{
    public function name(): string {}
}
`)
	writeFile(t, dir, "src/Suit.php", `<?php
namespace App;

enum Suit: string
{
    case Hearts;
}
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m, dir
}

func TestManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reflection.toml", `[project]
name = "x"
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("default dirs = %v", m.Source.Dirs)
	}
	if len(m.Source.Extensions) != 1 || m.Source.Extensions[0] != ".php" {
		t.Errorf("default extensions = %v", m.Source.Extensions)
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	m, dir := newTestProject(t)
	_ = m

	nested := filepath.Join(dir, "src")
	found, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if found == nil || found.Dir != dir {
		t.Errorf("FindAndLoad dir = %v, want %s", found, dir)
	}
}

func TestLocate(t *testing.T) {
	m, _ := newTestProject(t)
	l := NewLocator(m)

	s, ok, err := l.Locate("App\\User")
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if s.Kind != "class" || s.Namespace != "App" {
		t.Errorf("symbol = %+v", s)
	}
	if filepath.Base(s.File) != "User.php" {
		t.Errorf("file = %q", s.File)
	}

	// Leading separator is tolerated.
	if _, ok, _ := l.Locate("\\App\\Suit"); !ok {
		t.Error("absolute spelling should locate App\\Suit")
	}

	if _, ok, _ := l.Locate("App\\Missing"); ok {
		t.Error("unknown class should not be located")
	}
}

func TestGetClassRelative(t *testing.T) {
	m, _ := newTestProject(t)
	l := NewLocator(m)

	s, ok, err := l.GetClass("Base", "/any/file.php", "App")
	if err != nil || !ok {
		t.Fatalf("GetClass: ok=%v err=%v", ok, err)
	}
	if s.Name != "App\\Base" {
		t.Errorf("resolved = %q", s.Name)
	}

	if _, ok, _ := l.GetClass("Base", "/any/file.php", "Other"); ok {
		t.Error("Base should not resolve in namespace Other")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.db")

	in := []Symbol{
		{Name: "App\\User", File: "/src/User.php", Namespace: "App", Kind: "class"},
		{Name: "App\\Suit", File: "/src/Suit.php", Namespace: "App", Kind: "enum"},
	}
	if err := storeIndex(path, in); err != nil {
		t.Fatalf("storeIndex: %v", err)
	}

	out, err := loadIndex(path)
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d symbols, want 2", len(out))
	}
	byName := map[string]Symbol{}
	for _, s := range out {
		byName[s.Name] = s
	}
	if byName["App\\Suit"].Kind != "enum" {
		t.Errorf("Suit kind = %q", byName["App\\Suit"].Kind)
	}
}

func TestScanWritesIndex(t *testing.T) {
	m, dir := newTestProject(t)
	m.Index.Path = "symbols.db"
	l := NewLocator(m)

	if err := l.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if l.Len() != 3 {
		t.Errorf("symbol count = %d, want 3", l.Len())
	}

	syms, err := loadIndex(filepath.Join(dir, "symbols.db"))
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	if len(syms) != 3 {
		t.Errorf("persisted %d symbols, want 3", len(syms))
	}
}
