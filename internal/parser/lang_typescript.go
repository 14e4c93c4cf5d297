package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

type TypeScriptAdapter struct {
	parser  *sitter.Parser
	extract jsLikeExtract
}

func NewTypeScriptAdapter() *TypeScriptAdapter {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &TypeScriptAdapter{parser: p, extract: jsLikeExtract{isTypeScript: true}}
}

func (a *TypeScriptAdapter) Language() string { return "typescript" }

func (a *TypeScriptAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
	tree, err := a.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "tree-sitter parse failed", Err: err}
	}
	defer tree.Close()

	rec := &StructuralRecord{Language: a.Language(), File: path}
	rec.Errors = collectErrors(tree.RootNode(), path)
	rec.ErrorCount = len(rec.Errors)
	a.extract.walk(tree.RootNode(), content, rec, 0)
	return rec, nil
}
