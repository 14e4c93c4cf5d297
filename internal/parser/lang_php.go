package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

type PHPAdapter struct{ parser *sitter.Parser }

func NewPHPAdapter() *PHPAdapter {
	p := sitter.NewParser()
	p.SetLanguage(php.GetLanguage())
	return &PHPAdapter{parser: p}
}

func (a *PHPAdapter) Language() string { return "php" }

func (a *PHPAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
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

func (a *PHPAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string, depth int) {
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
				StartLine: line1(child.StartPoint()), EndLine: line1(child.EndPoint()), Exported: true,
			})
			if body := child.ChildByFieldName("body"); body != nil {
				a.walk(body, content, rec, name, depth+1)
			}
			continue
		case "function_definition", "method_declaration":
			a.parseFunction(child, content, rec, enclosing)
			continue
		case "namespace_use_declaration":
			rec.Imports = append(rec.Imports, ImportDescriptor{
				File: rec.File, Line: line1(child.StartPoint()), Source: strings.TrimSpace(child.Content(content)),
			})
		case "function_call_expression", "member_call_expression":
			a.parseCall(child, content, rec)
		}
		a.walk(child, content, rec, enclosing, depth+1)
	}
}

func (a *PHPAdapter) parseFunction(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(content)
	params := ""
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = p.Content(content)
	}
	qualified := ""
	if enclosing != "" {
		qualified = enclosing + "." + name
	}
	rec.Functions = append(rec.Functions, FunctionDescriptor{
		Name: name, QualifiedName: qualified, File: rec.File,
		StartLine: line1(node.StartPoint()), EndLine: line1(node.EndPoint()),
		Params:      splitParams(params),
		Exported:    !strings.Contains(node.Content(content), "private"),
		BodyFP:      bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP: signatureFingerprint(name, params, ""),
	})
}

func (a *PHPAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	var callee, receiver string
	if node.Type() == "member_call_expression" {
		if n := node.ChildByFieldName("name"); n != nil {
			callee = n.Content(content)
		}
		if o := node.ChildByFieldName("object"); o != nil {
			receiver = o.Content(content)
		}
	} else {
		if f := node.ChildByFieldName("function"); f != nil {
			callee = f.Content(content)
		}
	}
	if callee == "" {
		return
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: callee, Receiver: receiver, File: rec.File, Line: line1(node.StartPoint()),
	})
}
