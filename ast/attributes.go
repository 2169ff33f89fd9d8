package ast

import "sync"

// ---------------------------------------------------------------------------
// Attributes: out-of-band facts attached to nodes
// ---------------------------------------------------------------------------

// Well-known attribute keys.
const (
	AttrFileName  = "fileName"  // absolute path of the originating file
	AttrNamespace = "namespace" // namespace the declaration was parsed in
)

// Attributes attaches auxiliary facts (file path, namespace) to shared AST
// nodes without mutating them. The table is append-only and idempotent:
// the first write for a (node, key) pair wins and later writes are no-ops,
// so racing writers converge on one value. Safe for concurrent readers.
type Attributes struct {
	mu    sync.RWMutex
	facts map[Node]map[string]string
}

// NewAttributes creates an empty attribute table.
func NewAttributes() *Attributes {
	return &Attributes{
		facts: make(map[Node]map[string]string),
	}
}

// Set records a fact for a node. Returns true if the fact was stored, false
// if a value for this key already existed (first-wins).
func (a *Attributes) Set(n Node, key, value string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := a.facts[n]
	if m == nil {
		m = make(map[string]string)
		a.facts[n] = m
	}
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = value
	return true
}

// Get returns the fact for a node, or "" and false if absent.
func (a *Attributes) Get(n Node, key string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.facts[n][key]
	return v, ok
}

// Propagate copies a class-like declaration's facts down to its member
// nodes. Existing member facts are kept (first-wins).
func (a *Attributes) Propagate(decl *ClassLikeDecl) {
	a.mu.Lock()
	parent := a.facts[decl]
	for _, m := range decl.Members {
		for key, value := range parent {
			mm := a.facts[m]
			if mm == nil {
				mm = make(map[string]string)
				a.facts[m] = mm
			}
			if _, ok := mm[key]; !ok {
				mm[key] = value
			}
		}
	}
	a.mu.Unlock()
}
