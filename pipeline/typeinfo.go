package pipeline

import (
	"github.com/pontaoski/brace/ast"
)

// TypeInfo lists the signatures a program declares.
type TypeInfo struct {
	Functions map[string]string `yaml:"functions"`
	Structs   map[string]string `yaml:"structs"`
}

func GetTypeInfo(prog *ast.Program) TypeInfo {
	t := TypeInfo{
		Functions: map[string]string{},
		Structs:   map[string]string{},
	}
	for _, fn := range prog.Funcs() {
		t.Functions[fn.Ident.Name] = fn.String()
	}
	for _, st := range prog.Structs() {
		t.Structs[st.Ident.Name] = st.String()
	}
	return t
}
