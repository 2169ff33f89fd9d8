package provider

import (
	"fmt"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/A-jay98/parser-reflection/ast"
)

// ---------------------------------------------------------------------------
// Snapshot: persisted digest index of parsed declarations
// ---------------------------------------------------------------------------

// cborEncMode uses canonical options so the same cache state always encodes
// to the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("provider: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a digest index of everything a provider has parsed. It records
// structural hashes, not ASTs: consumers use it to detect declaration drift
// between runs, not to skip parsing.
type Snapshot struct {
	Session string          `cbor:"session"`
	Entries []SnapshotEntry `cbor:"entries"`
}

// SnapshotEntry describes one cached declaration.
type SnapshotEntry struct {
	Name    string   `cbor:"name"`
	File    string   `cbor:"file"`
	Kind    string   `cbor:"kind"`
	Methods int      `cbor:"methods"`
	Hash    [32]byte `cbor:"hash"`
}

// Snapshot captures the provider's current cache as a digest index, sorted
// by name for deterministic encoding.
func (p *Provider) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := &Snapshot{Session: p.session}
	for name, decl := range p.cache {
		file, _ := p.attrs.Get(decl, ast.AttrFileName)
		s.Entries = append(s.Entries, SnapshotEntry{
			Name:    name,
			File:    file,
			Kind:    decl.Kind.String(),
			Methods: len(decl.Members),
			Hash:    HashDecl(decl),
		})
	}
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Name < s.Entries[j].Name
	})
	return s
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("provider: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// WriteSnapshot persists the provider's snapshot to a file.
func (p *Provider) WriteSnapshot(path string) error {
	data, err := MarshalSnapshot(p.Snapshot())
	if err != nil {
		return fmt.Errorf("provider: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("provider: write snapshot %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot loads a snapshot from a file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("provider: read snapshot %s: %w", path, err)
	}
	return UnmarshalSnapshot(data)
}

// Diff returns the names whose hashes differ between two snapshots, plus
// names present in only one of them.
func Diff(a, b *Snapshot) []string {
	byName := make(map[string][32]byte, len(a.Entries))
	for _, e := range a.Entries {
		byName[e.Name] = e.Hash
	}

	var changed []string
	seen := make(map[string]bool, len(b.Entries))
	for _, e := range b.Entries {
		seen[e.Name] = true
		if h, ok := byName[e.Name]; !ok || h != e.Hash {
			changed = append(changed, e.Name)
		}
	}
	for _, e := range a.Entries {
		if !seen[e.Name] {
			changed = append(changed, e.Name)
		}
	}
	sort.Strings(changed)
	return changed
}
