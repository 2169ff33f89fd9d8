package provider

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/A-jay98/parser-reflection/ast"
)

// ---------------------------------------------------------------------------
// Structural digests
// ---------------------------------------------------------------------------

// HashMethod computes the SHA-256 of a method declaration's structural
// fields: name, modifiers, parameters (name, type spelling, optionality),
// and return type spelling. Source spans are excluded so synthesized and
// relocated declarations with the same shape hash identically.
func HashMethod(m *ast.MethodDecl) [32]byte {
	var buf []byte

	writeString := func(s string) {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, s...)
	}

	// Tag byte for method hash format
	buf = append(buf, 0x02)
	writeString(m.Name)

	var modBuf [4]byte
	binary.BigEndian.PutUint32(modBuf[:], uint32(m.Mods))
	buf = append(buf, modBuf[:]...)

	var nBuf [4]byte
	binary.BigEndian.PutUint32(nBuf[:], uint32(len(m.Params)))
	buf = append(buf, nBuf[:]...)
	for _, param := range m.Params {
		writeString(param.Name)
		writeString(ast.TypeString(param.Type))
		flags := byte(0)
		if param.ByRef {
			flags |= 1
		}
		if param.Variadic {
			flags |= 2
		}
		if param.HasDefault {
			flags |= 4
		}
		buf = append(buf, flags)
		writeString(param.Default)
	}

	writeString(ast.TypeString(m.ReturnType))
	return sha256.Sum256(buf)
}

// HashDecl computes the SHA-256 of a class-like declaration: kind, name,
// namespace, parent, enum backing type, and sorted method hashes.
func HashDecl(d *ast.ClassLikeDecl) [32]byte {
	methodHashes := make([][32]byte, 0, len(d.Members))
	for _, m := range d.Members {
		methodHashes = append(methodHashes, HashMethod(m))
	}
	sort.Slice(methodHashes, func(i, j int) bool {
		for k := 0; k < 32; k++ {
			if methodHashes[i][k] != methodHashes[j][k] {
				return methodHashes[i][k] < methodHashes[j][k]
			}
		}
		return false
	})

	var buf []byte

	writeString := func(s string) {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, s...)
	}

	// Tag byte for declaration hash format
	buf = append(buf, 0x01)
	buf = append(buf, byte(d.Kind))
	writeString(d.Name)
	writeString(d.Namespace)
	writeString(d.Parent)
	writeString(d.BackingType)

	var nBuf [4]byte
	binary.BigEndian.PutUint32(nBuf[:], uint32(len(methodHashes)))
	buf = append(buf, nBuf[:]...)
	for _, h := range methodHashes {
		buf = append(buf, h[:]...)
	}

	return sha256.Sum256(buf)
}
