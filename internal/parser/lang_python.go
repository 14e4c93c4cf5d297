package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type PythonAdapter struct{ parser *sitter.Parser }

func NewPythonAdapter() *PythonAdapter {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonAdapter{parser: p}
}

func (a *PythonAdapter) Language() string { return "python" }

func (a *PythonAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
	tree, err := a.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "tree-sitter parse failed", Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	rec := &StructuralRecord{Language: a.Language(), File: path}
	rec.Errors = collectErrors(root, path)
	rec.ErrorCount = len(rec.Errors)

	a.walkSymbols(root, content, rec, 0, "")
	a.walkRelationships(root, content, rec)
	return rec, nil
}

func (a *PythonAdapter) walkSymbols(node *sitter.Node, content []byte, rec *StructuralRecord, depth int, enclosingClass string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			a.parseFunctionDef(child, content, rec, enclosingClass)
			continue // don't re-descend into the function's own statements for top-level symbols
		case "class_definition":
			a.parseClassDef(child, content, rec)
			continue
		case "decorated_definition":
			a.parseDecorated(child, content, rec, enclosingClass)
			continue
		}
		a.walkSymbols(child, content, rec, depth+1, enclosingClass)
	}
}

func (a *PythonAdapter) parseFunctionDef(node *sitter.Node, content []byte, rec *StructuralRecord, enclosingClass string) {
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
	if enclosingClass != "" {
		qualified = enclosingClass + "." + name
	}
	rec.Functions = append(rec.Functions, FunctionDescriptor{
		Name:          name,
		QualifiedName: qualified,
		File:          rec.File,
		StartLine:     line1(node.StartPoint()),
		EndLine:       line1(node.EndPoint()),
		Params:        splitParams(params),
		ReturnType:    ret,
		Async:         strings.HasPrefix(node.Content(content), "async "),
		Exported:      !strings.HasPrefix(name, "_"),
		BodyFP:        bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP:   signatureFingerprint(name, params, ret),
	})
}

func (a *PythonAdapter) parseClassDef(node *sitter.Node, content []byte, rec *StructuralRecord) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(content)
	rec.Types = append(rec.Types, TypeDescriptor{
		Name:      name,
		Kind:      "class",
		File:      rec.File,
		StartLine: line1(node.StartPoint()),
		EndLine:   line1(node.EndPoint()),
		Exported:  !strings.HasPrefix(name, "_"),
	})
	if body := node.ChildByFieldName("body"); body != nil {
		a.walkSymbols(body, content, rec, 1, name)
	}
}

func (a *PythonAdapter) parseDecorated(node *sitter.Node, content []byte, rec *StructuralRecord, enclosingClass string) {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "decorator":
			decorators = append(decorators, strings.TrimPrefix(strings.TrimSpace(child.Content(content)), "@"))
		case "function_definition":
			before := len(rec.Functions)
			a.parseFunctionDef(child, content, rec, enclosingClass)
			a.attachDecorators(rec, before, decorators, child)
		case "class_definition":
			a.parseClassDef(child, content, rec)
		}
	}
}

func (a *PythonAdapter) attachDecorators(rec *StructuralRecord, fnIndex int, names []string, node *sitter.Node) {
	if fnIndex >= len(rec.Functions) {
		return
	}
	for _, n := range names {
		rec.Functions[fnIndex].Decorators = append(rec.Functions[fnIndex].Decorators, DecoratorDescriptor{
			Name: n,
			File: rec.File,
			Line: line1(node.StartPoint()),
		})
	}
}

func (a *PythonAdapter) walkRelationships(node *sitter.Node, content []byte, rec *StructuralRecord) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_statement", "import_from_statement":
			a.parseImport(child, content, rec)
		case "call":
			a.parseCall(child, content, rec)
		}
		a.walkRelationships(child, content, rec)
	}
}

func (a *PythonAdapter) parseImport(node *sitter.Node, content []byte, rec *StructuralRecord) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "dotted_name" || child.Type() == "relative_import" {
			rec.Imports = append(rec.Imports, ImportDescriptor{
				File:   rec.File,
				Line:   line1(node.StartPoint()),
				Source: child.Content(content),
			})
		}
		if child.Type() == "aliased_import" {
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode != nil {
				imp := ImportDescriptor{File: rec.File, Line: line1(node.StartPoint()), Source: nameNode.Content(content)}
				if aliasNode != nil {
					imp.Alias = aliasNode.Content(content)
				}
				rec.Imports = append(rec.Imports, imp)
			}
		}
	}
}

func (a *PythonAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}
	var callee, receiver string
	switch funcNode.Type() {
	case "identifier":
		callee = funcNode.Content(content)
	case "attribute":
		object := funcNode.ChildByFieldName("object")
		attr := funcNode.ChildByFieldName("attribute")
		if attr != nil {
			callee = attr.Content(content)
		}
		if object != nil {
			receiver = object.Content(content)
		}
	default:
		return
	}
	if callee == "" {
		return
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: callee,
		Receiver:   receiver,
		File:       rec.File,
		Line:       line1(node.StartPoint()),
	})
}
