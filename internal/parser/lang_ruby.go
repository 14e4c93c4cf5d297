package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

type RubyAdapter struct{ parser *sitter.Parser }

func NewRubyAdapter() *RubyAdapter {
	p := sitter.NewParser()
	p.SetLanguage(ruby.GetLanguage())
	return &RubyAdapter{parser: p}
}

func (a *RubyAdapter) Language() string { return "ruby" }

func (a *RubyAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
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

func (a *RubyAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string, depth int) {
	if node == nil || depth > MaxASTDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class", "module":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = n.Content(content)
			}
			rec.Types = append(rec.Types, TypeDescriptor{
				Name: name, Kind: child.Type(), File: rec.File,
				StartLine: line1(child.StartPoint()), EndLine: line1(child.EndPoint()),
				Exported: true,
			})
			a.walk(child, content, rec, name, depth+1)
			continue
		case "method", "singleton_method":
			a.parseMethod(child, content, rec, enclosing)
		case "call":
			a.parseCall(child, content, rec)
		}
		a.walk(child, content, rec, enclosing, depth+1)
	}
}

func (a *RubyAdapter) parseMethod(node *sitter.Node, content []byte, rec *StructuralRecord, enclosing string) {
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
		Exported:    !strings.HasSuffix(name, "!") && !strings.HasPrefix(name, "_"),
		BodyFP:      bodyFingerprint(node, content),
		SignatureFP: signatureFingerprint(name, params, ""),
	})
}

func (a *RubyAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	methodNode := node.ChildByFieldName("method")
	if methodNode == nil {
		return
	}
	receiver := ""
	if r := node.ChildByFieldName("receiver"); r != nil {
		receiver = r.Content(content)
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: methodNode.Content(content), Receiver: receiver, File: rec.File, Line: line1(node.StartPoint()),
	})
}
