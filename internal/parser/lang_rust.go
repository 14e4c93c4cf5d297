package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

type RustAdapter struct{ parser *sitter.Parser }

func NewRustAdapter() *RustAdapter {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &RustAdapter{parser: p}
}

func (a *RustAdapter) Language() string { return "rust" }

func (a *RustAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
	tree, err := a.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "tree-sitter parse failed", Err: err}
	}
	defer tree.Close()

	rec := &StructuralRecord{Language: a.Language(), File: path}
	rec.Errors = collectErrors(tree.RootNode(), path)
	rec.ErrorCount = len(rec.Errors)
	a.walk(tree.RootNode(), content, rec, "", 0)
	return rec, nil
}

func (a *RustAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string, depth int) {
	if node == nil || depth > MaxASTDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "struct_item", "enum_item", "trait_item":
			a.parseTypeItem(child, content, rec)
		case "impl_item":
			name := ""
			if t := child.ChildByFieldName("type"); t != nil {
				name = t.Content(content)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				a.walk(body, content, rec, name, depth+1)
			}
			continue
		case "function_item":
			a.parseFunction(child, content, rec, enclosing)
		case "use_declaration":
			rec.Imports = append(rec.Imports, ImportDescriptor{
				File: rec.File, Line: line1(child.StartPoint()),
				Source: strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(child.Content(content)), "use "), ";"),
			})
		case "call_expression":
			a.parseCall(child, content, rec)
		}
		a.walk(child, content, rec, enclosing, depth+1)
	}
}

func (a *RustAdapter) parseTypeItem(node *sitter.Node, content []byte, rec *StructuralRecord) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	kind := map[string]string{"struct_item": "struct", "enum_item": "enum", "trait_item": "trait"}[node.Type()]
	rec.Types = append(rec.Types, TypeDescriptor{
		Name: nameNode.Content(content), Kind: kind, File: rec.File,
		StartLine: line1(node.StartPoint()), EndLine: line1(node.EndPoint()),
		Exported: strings.HasPrefix(strings.TrimSpace(node.Content(content)), "pub"),
	})
}

func (a *RustAdapter) parseFunction(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(content)
	params := ""
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = p.Content(content)
	}
	ret := ""
	if r := node.ChildByFieldName("return_type"); r != nil {
		ret = r.Content(content)
	}
	qualified := ""
	if enclosing != "" {
		qualified = enclosing + "." + name
	}
	rec.Functions = append(rec.Functions, FunctionDescriptor{
		Name: name, QualifiedName: qualified, File: rec.File,
		StartLine: line1(node.StartPoint()), EndLine: line1(node.EndPoint()),
		Params: splitParams(params), ReturnType: ret,
		Exported:    strings.HasPrefix(strings.TrimSpace(node.Content(content)), "pub"),
		Async:       strings.Contains(node.Content(content), "async fn"),
		BodyFP:      bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP: signatureFingerprint(name, params, ret),
	})
}

func (a *RustAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}
	var callee, receiver string
	switch funcNode.Type() {
	case "identifier":
		callee = funcNode.Content(content)
	case "field_expression":
		if v := funcNode.ChildByFieldName("value"); v != nil {
			receiver = v.Content(content)
		}
		if f := funcNode.ChildByFieldName("field"); f != nil {
			callee = f.Content(content)
		}
	case "scoped_identifier":
		callee = funcNode.Content(content)
	default:
		return
	}
	if callee == "" {
		return
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: callee, Receiver: receiver, File: rec.File, Line: line1(node.StartPoint()),
	})
}
