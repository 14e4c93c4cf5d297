package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"
)

type KotlinAdapter struct{ parser *sitter.Parser }

func NewKotlinAdapter() *KotlinAdapter {
	p := sitter.NewParser()
	p.SetLanguage(kotlin.GetLanguage())
	return &KotlinAdapter{parser: p}
}

func (a *KotlinAdapter) Language() string { return "kotlin" }

func (a *KotlinAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
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

func (a *KotlinAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string, depth int) {
	if node == nil || depth > MaxASTDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class_declaration":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = n.Content(content)
			}
			rec.Types = append(rec.Types, TypeDescriptor{
				Name: name, Kind: "class", File: rec.File,
				StartLine: line1(child.StartPoint()), EndLine: line1(child.EndPoint()),
				Exported: !strings.Contains(child.Content(content), "private"),
			})
			if body := child.ChildByFieldName("body"); body != nil {
				a.walk(body, content, rec, name, depth+1)
			}
			continue
		case "function_declaration":
			a.parseFunction(child, content, rec, enclosing)
			continue
		case "import":
			rec.Imports = append(rec.Imports, ImportDescriptor{
				File: rec.File, Line: line1(child.StartPoint()), Source: strings.TrimSpace(child.Content(content)),
			})
		case "call_expression":
			a.parseCall(child, content, rec)
		}
		a.walk(child, content, rec, enclosing, depth+1)
	}
}

func (a *KotlinAdapter) parseFunction(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string) {
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
		Exported:    !strings.Contains(node.Content(content), "private"),
		BodyFP:      bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP: signatureFingerprint(name, params, ret),
	})
}

func (a *KotlinAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	calleeNode := node.ChildByFieldName("function")
	if calleeNode == nil {
		return
	}
	var callee, receiver string
	if calleeNode.Type() == "navigation_expression" {
		if s := calleeNode.Child(0); s != nil {
			receiver = s.Content(content)
		}
		if last := calleeNode.Child(int(calleeNode.ChildCount()) - 1); last != nil {
			callee = last.Content(content)
		}
	} else {
		callee = calleeNode.Content(content)
	}
	if callee == "" {
		return
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: callee, Receiver: receiver, File: rec.File, Line: line1(node.StartPoint()),
	})
}
