package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

type JavaScriptAdapter struct {
	parser  *sitter.Parser
	extract jsLikeExtract
}

func NewJavaScriptAdapter() *JavaScriptAdapter {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &JavaScriptAdapter{parser: p}
}

func (a *JavaScriptAdapter) Language() string { return "javascript" }

func (a *JavaScriptAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
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
