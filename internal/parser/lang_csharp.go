package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

type CSharpAdapter struct{ parser *sitter.Parser }

func NewCSharpAdapter() *CSharpAdapter {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &CSharpAdapter{parser: p}
}

func (a *CSharpAdapter) Language() string { return "csharp" }

func (a *CSharpAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
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

func (a *CSharpAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string, depth int) {
	if node == nil || depth > MaxASTDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class_declaration", "interface_declaration":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = n.Content(content)
			}
			kind := "class"
			if child.Type() == "interface_declaration" {
				kind = "interface"
			}
			rec.Types = append(rec.Types, TypeDescriptor{
				Name: name, Kind: kind, File: rec.File,
				StartLine: line1(child.StartPoint()), EndLine: line1(child.EndPoint()),
				Exported: strings.Contains(child.Content(content), "public"),
			})
			if body := child.ChildByFieldName("body"); body != nil {
				a.walk(body, content, rec, name, depth+1)
			}
			continue
		case "method_declaration", "constructor_declaration":
			a.parseMethod(child, content, rec, enclosing)
			continue
		case "using_directive":
			rec.Imports = append(rec.Imports, ImportDescriptor{
				File: rec.File, Line: line1(child.StartPoint()),
				Source: strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(child.Content(content)), "using "), ";"),
			})
		case "invocation_expression":
			a.parseCall(child, content, rec)
		}
		a.walk(child, content, rec, enclosing, depth+1)
	}
}

func (a *CSharpAdapter) parseMethod(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string) {
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
	if r := node.ChildByFieldName("type"); r != nil {
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
		Exported:    strings.Contains(node.Content(content), "public"),
		BodyFP:      bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP: signatureFingerprint(name, params, ret),
	})
}

func (a *CSharpAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}
	var callee, receiver string
	if funcNode.Type() == "member_access_expression" {
		if e := funcNode.ChildByFieldName("expression"); e != nil {
			receiver = e.Content(content)
		}
		if n := funcNode.ChildByFieldName("name"); n != nil {
			callee = n.Content(content)
		}
	} else {
		callee = funcNode.Content(content)
	}
	if callee == "" {
		return
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: callee, Receiver: receiver, File: rec.File, Line: line1(node.StartPoint()),
	})
}
