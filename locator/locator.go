package locator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/A-jay98/parser-reflection/parser"
)

// ---------------------------------------------------------------------------
// Locator: class name → source file
// ---------------------------------------------------------------------------

// Symbol records where a class-like declaration lives.
type Symbol struct {
	Name      string // fully-qualified class name
	File      string // absolute source file path
	Namespace string // namespace the declaration appears in
	Kind      string // "class", "interface", or "enum"
}

// Locator maps fully-qualified class names to source files by scanning the
// manifest's source directories. The symbol table is built once on first
// use; duplicate declarations keep the first file found (walk order is
// lexical, so the result is deterministic).
type Locator struct {
	manifest *Manifest

	scanOnce sync.Once
	scanErr  error

	mu      sync.RWMutex
	symbols map[string]Symbol
}

// NewLocator creates a locator for the given manifest.
func NewLocator(m *Manifest) *Locator {
	return &Locator{
		manifest: m,
		symbols:  make(map[string]Symbol),
	}
}

// ensureScanned populates the symbol table, preferring the persistent index
// when one is configured and non-empty.
func (l *Locator) ensureScanned() error {
	l.scanOnce.Do(func() {
		if path := l.manifest.IndexPath(); path != "" {
			if syms, err := loadIndex(path); err == nil && len(syms) > 0 {
				l.mu.Lock()
				for _, s := range syms {
					if _, ok := l.symbols[s.Name]; !ok {
						l.symbols[s.Name] = s
					}
				}
				l.mu.Unlock()
				return
			}
		}
		l.scanErr = l.Scan()
	})
	return l.scanErr
}

// Scan walks the configured source directories and records every class-like
// declaration found. When a persistent index is configured, the result is
// written through to it.
func (l *Locator) Scan() error {
	found := make(map[string]Symbol)

	for _, dir := range l.manifest.SourceDirPaths() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !l.hasSourceExtension(path) {
				return nil
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			f, err := parser.ParseFile(path, string(src))
			if err != nil {
				// A file that fails to parse hides only its own symbols.
				return nil
			}
			for _, decl := range f.Decls {
				name := decl.FullName()
				if _, ok := found[name]; ok {
					continue
				}
				found[name] = Symbol{
					Name:      name,
					File:      path,
					Namespace: f.Namespace,
					Kind:      decl.Kind.String(),
				}
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("locator: scan %s: %w", dir, err)
		}
	}

	l.mu.Lock()
	for name, s := range found {
		if _, ok := l.symbols[name]; !ok {
			l.symbols[name] = s
		}
	}
	l.mu.Unlock()

	if path := l.manifest.IndexPath(); path != "" {
		if err := storeIndex(path, l.Symbols()); err != nil {
			return fmt.Errorf("locator: persist index: %w", err)
		}
	}
	return nil
}

func (l *Locator) hasSourceExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range l.manifest.Source.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Locate returns the symbol for a fully-qualified class name.
func (l *Locator) Locate(fqcn string) (Symbol, bool, error) {
	if err := l.ensureScanned(); err != nil {
		return Symbol{}, false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.symbols[strings.TrimPrefix(fqcn, "\\")]
	return s, ok, nil
}

// GetClass resolves a relative class name appearing in a file against that
// file's namespace scope: first as namespace\name, then as a global name.
func (l *Locator) GetClass(relativeName, filePath, namespaceName string) (Symbol, bool, error) {
	if err := l.ensureScanned(); err != nil {
		return Symbol{}, false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if namespaceName != "" {
		if s, ok := l.symbols[namespaceName+"\\"+relativeName]; ok {
			return s, true, nil
		}
	}
	s, ok := l.symbols[relativeName]
	return s, ok, nil
}

// Symbols returns all known symbols.
func (l *Locator) Symbols() []Symbol {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Symbol, 0, len(l.symbols))
	for _, s := range l.symbols {
		out = append(out, s)
	}
	return out
}

// Len returns the number of known symbols.
func (l *Locator) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.symbols)
}
