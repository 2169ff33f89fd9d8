// Package provider parses named class-like declarations on demand and owns
// the process-wide parse cache. The cache is an explicit handle passed to
// consumers, never ambient global state: populate-once, append-only,
// first-wins, never invalidated.
package provider

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/A-jay98/parser-reflection/ast"
	"github.com/A-jay98/parser-reflection/locator"
	"github.com/A-jay98/parser-reflection/parser"

	_ "github.com/tliron/commonlog/simple"
)

// ErrNotFound reports that no source file declares the requested class.
var ErrNotFound = errors.New("provider: class not found")

// Provider is the AST provider: it locates, parses, and caches class-like
// declarations by fully-qualified name.
type Provider struct {
	locator *locator.Locator
	attrs   *ast.Attributes
	log     commonlog.Logger
	session string

	mu    sync.RWMutex
	cache map[string]*ast.ClassLikeDecl
}

// New creates a provider over the given locator.
func New(l *locator.Locator) *Provider {
	return &Provider{
		locator: l,
		attrs:   ast.NewAttributes(),
		log:     commonlog.GetLogger("parser-reflection.provider"),
		session: uuid.NewString(),
		cache:   make(map[string]*ast.ClassLikeDecl),
	}
}

// Session returns the provider's session id, used to correlate log lines
// and snapshots.
func (p *Provider) Session() string {
	return p.session
}

// Attributes returns the out-of-band fact table for nodes this provider
// has parsed.
func (p *Provider) Attributes() *ast.Attributes {
	return p.attrs
}

// Locator returns the locator backing this provider.
func (p *Provider) Locator() *locator.Locator {
	return p.locator
}

// Parse returns the declaration subtree for a fully-qualified class name.
// Results are cached for the provider's lifetime; parsing the same name
// twice returns the same shared immutable subtree.
func (p *Provider) Parse(targetName string) (*ast.ClassLikeDecl, error) {
	p.mu.RLock()
	decl, ok := p.cache[targetName]
	p.mu.RUnlock()
	if ok {
		return decl, nil
	}

	sym, ok, err := p.locator.Locate(targetName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, targetName)
	}

	src, err := os.ReadFile(sym.File)
	if err != nil {
		return nil, fmt.Errorf("provider: read %s: %w", sym.File, err)
	}
	file, err := parser.ParseFile(sym.File, string(src))
	if err != nil {
		return nil, err
	}

	var wanted *ast.ClassLikeDecl
	for _, d := range file.Decls {
		p.attrs.Set(d, ast.AttrFileName, sym.File)
		p.attrs.Set(d, ast.AttrNamespace, file.Namespace)
		p.attrs.Propagate(d)
		if d.FullName() == targetName {
			wanted = d
		}
	}
	if wanted == nil {
		return nil, fmt.Errorf("%w: %q not declared in %s", ErrNotFound, targetName, sym.File)
	}

	p.mu.Lock()
	// First-wins: a declaration parsed by a racing caller stays canonical.
	for _, d := range file.Decls {
		if _, ok := p.cache[d.FullName()]; !ok {
			p.cache[d.FullName()] = d
		}
	}
	wanted = p.cache[targetName]
	p.mu.Unlock()

	p.log.Infof("session %s: parsed %s from %s", p.session, targetName, sym.File)
	return wanted, nil
}

// Cached returns the cached declaration for a name without parsing.
func (p *Provider) Cached(targetName string) (*ast.ClassLikeDecl, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.cache[targetName]
	return d, ok
}

// CachedNames returns the names of all cached declarations.
func (p *Provider) CachedNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.cache))
	for name := range p.cache {
		names = append(names, name)
	}
	return names
}
