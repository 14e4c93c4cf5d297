package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

type JavaAdapter struct{ parser *sitter.Parser }

func NewJavaAdapter() *JavaAdapter {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &JavaAdapter{parser: p}
}

func (a *JavaAdapter) Language() string { return "java" }

func (a *JavaAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
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

func (a *JavaAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string, depth int) {
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
			a.parseType(child, content, rec)
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = n.Content(content)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				a.walk(body, content, rec, name, depth+1)
			}
			continue
		case "method_declaration", "constructor_declaration":
			a.parseMethod(child, content, rec, enclosing)
			continue
		case "import_declaration":
			a.parseImport(child, content, rec)
		case "method_invocation":
			a.parseCall(child, content, rec)
		}
		a.walk(child, content, rec, enclosing, depth+1)
	}
}

func (a *JavaAdapter) parseType(node *sitter.Node, content []byte, rec *StructuralRecord) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	kind := "class"
	if node.Type() == "interface_declaration" {
		kind = "interface"
	}
	rec.Types = append(rec.Types, TypeDescriptor{
		Name:      nameNode.Content(content),
		Kind:      kind,
		File:      rec.File,
		StartLine: line1(node.StartPoint()),
		EndLine:   line1(node.EndPoint()),
		Exported:  hasModifier(node, content, "public"),
	})
}

func (a *JavaAdapter) parseMethod(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string) {
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
		Name:          name,
		QualifiedName: qualified,
		File:          rec.File,
		StartLine:     line1(node.StartPoint()),
		EndLine:       line1(node.EndPoint()),
		Params:        splitParams(params),
		ReturnType:    ret,
		Exported:      hasModifier(node, content, "public"),
		Abstract:      hasModifier(node, content, "abstract"),
		BodyFP:        bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP:   signatureFingerprint(name, params, ret),
	})
}

func hasModifier(node *sitter.Node, content []byte, mod string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && c.Type() == "modifiers" {
			return strings.Contains(c.Content(content), mod)
		}
	}
	return false
}

func (a *JavaAdapter) parseImport(node *sitter.Node, content []byte, rec *StructuralRecord) {
	rec.Imports = append(rec.Imports, ImportDescriptor{
		File:   rec.File,
		Line:   line1(node.StartPoint()),
		Source: strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(node.Content(content)), "import "), ";"),
	})
}

func (a *JavaAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	receiver := ""
	if obj := node.ChildByFieldName("object"); obj != nil {
		receiver = obj.Content(content)
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: nameNode.Content(content),
		Receiver:   receiver,
		File:       rec.File,
		Line:       line1(node.StartPoint()),
	})
}
