package reflection

import (
	"strings"

	"github.com/A-jay98/parser-reflection/ast"
)

// ---------------------------------------------------------------------------
// Synthetic enum members
// ---------------------------------------------------------------------------

// BuildEnumMethods synthesizes the implicit static members of an enum
// declaration: cases for every enum, plus from and tryFrom for backed
// enums. Synthesized declarations carry a zero span.
func BuildEnumMethods(decl *ast.ClassLikeDecl) []*ast.MethodDecl {
	if decl.Kind != ast.KindEnum {
		return nil
	}

	methods := []*ast.MethodDecl{
		{
			Name:       "cases",
			Mods:       ast.ModPublic | ast.ModStatic,
			ReturnType: &ast.BuiltinType{Name: "array"},
		},
	}
	if decl.BackingType == "" {
		return methods
	}

	selfParts := strings.Split(decl.FullName(), "\\")
	self := func() *ast.FullyQualifiedType {
		return &ast.FullyQualifiedType{Parts: selfParts}
	}
	valueParam := func() *ast.ParamDecl {
		return &ast.ParamDecl{
			Name: "value",
			Type: &ast.UnionType{Members: []ast.TypeExpr{
				&ast.BuiltinType{Name: "string"},
				&ast.BuiltinType{Name: "int"},
			}},
		}
	}

	methods = append(methods,
		&ast.MethodDecl{
			Name:       "from",
			Mods:       ast.ModPublic | ast.ModStatic,
			Params:     []*ast.ParamDecl{valueParam()},
			ReturnType: self(),
		},
		&ast.MethodDecl{
			Name:       "tryFrom",
			Mods:       ast.ModPublic | ast.ModStatic,
			Params:     []*ast.ParamDecl{valueParam()},
			ReturnType: &ast.NullableType{Inner: self()},
		},
	)
	return methods
}
