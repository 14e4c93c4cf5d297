package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// jsLikeExtract holds the extraction logic shared by the JavaScript and
// TypeScript adapters, which differ only in grammar and in TypeScript's
// additional interface declarations; type aliases and enums are not
// extracted.
type jsLikeExtract struct {
	isTypeScript bool
}

func (e jsLikeExtract) walk(node *sitter.Node, content []byte, rec *StructuralRecord, depth int) {
	if node == nil || depth > MaxASTDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration", "generator_function_declaration":
			e.parseFunction(child, content, rec, "")
		case "class_declaration":
			e.parseClass(child, content, rec)
		case "lexical_declaration", "variable_declaration":
			e.parseVarDecl(child, content, rec)
		case "import_statement":
			e.parseImport(child, content, rec)
		case "export_statement":
			e.parseExport(child, content, rec)
		case "call_expression":
			e.parseCall(child, content, rec)
		case "interface_declaration":
			if e.isTypeScript {
				e.parseInterface(child, content, rec)
			}
		case "string", "template_string":
			rec.Literals = append(rec.Literals, LiteralDescriptor{
				File: rec.File, Line: line1(child.StartPoint()), Value: child.Content(content), Kind: "string",
			})
		case "number":
			rec.Literals = append(rec.Literals, LiteralDescriptor{
				File: rec.File, Line: line1(child.StartPoint()), Value: child.Content(content), Kind: "numeric",
			})
		}
		e.walk(child, content, rec, depth+1)
	}
}

func (e jsLikeExtract) parseFunction(node *sitter.Node, content []byte, rec *StructuralRecord, qualifier string) {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(content)
	}
	params := ""
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = p.Content(content)
	}
	ret := ""
	if r := node.ChildByFieldName("return_type"); r != nil {
		ret = r.Content(content)
	}
	qualified := ""
	if qualifier != "" && name != "" {
		qualified = qualifier + "." + name
	}
	async := strings.HasPrefix(strings.TrimSpace(node.Content(content)), "async")
	generator := node.Type() == "generator_function_declaration"
	rec.Functions = append(rec.Functions, FunctionDescriptor{
		Name:          name,
		QualifiedName: qualified,
		File:          rec.File,
		StartLine:     line1(node.StartPoint()),
		EndLine:       line1(node.EndPoint()),
		Params:        splitParams(params),
		ReturnType:    ret,
		Async:         async,
		Generator:     generator,
		Exported:      true, // export-ness is recorded on the wrapping export_statement, see parseExport
		BodyFP:        bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP:   signatureFingerprint(name, params, ret),
	})
}

func (e jsLikeExtract) parseClass(node *sitter.Node, content []byte, rec *StructuralRecord) {
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
		Exported:  true,
	})
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		if member.Type() == "method_definition" {
			e.parseFunction(member, content, rec, name)
		}
	}
}

func (e jsLikeExtract) parseInterface(node *sitter.Node, content []byte, rec *StructuralRecord) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	rec.Types = append(rec.Types, TypeDescriptor{
		Name:      nameNode.Content(content),
		Kind:      "interface",
		File:      rec.File,
		StartLine: line1(node.StartPoint()),
		EndLine:   line1(node.EndPoint()),
		Exported:  true,
	})
}

func (e jsLikeExtract) parseVarDecl(node *sitter.Node, content []byte, rec *StructuralRecord) {
	for i := 0; i < int(node.ChildCount()); i++ {
		declarator := node.Child(i)
		if declarator == nil || declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		valueNode := declarator.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}
		if valueNode != nil && (valueNode.Type() == "arrow_function" || valueNode.Type() == "function") {
			params := ""
			if p := valueNode.ChildByFieldName("parameters"); p != nil {
				params = p.Content(content)
			}
			name := nameNode.Content(content)
			rec.Functions = append(rec.Functions, FunctionDescriptor{
				Name:        name,
				File:        rec.File,
				StartLine:   line1(declarator.StartPoint()),
				EndLine:     line1(declarator.EndPoint()),
				Params:      splitParams(params),
				Async:       strings.HasPrefix(strings.TrimSpace(valueNode.Content(content)), "async"),
				Exported:    true,
				BodyFP:      bodyFingerprint(valueNode.ChildByFieldName("body"), content),
				SignatureFP: signatureFingerprint(name, params, ""),
			})
		}
	}
}

func (e jsLikeExtract) parseImport(node *sitter.Node, content []byte, rec *StructuralRecord) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	rec.Imports = append(rec.Imports, ImportDescriptor{
		File:   rec.File,
		Line:   line1(node.StartPoint()),
		Source: strings.Trim(sourceNode.Content(content), "'\""),
	})
}

func (e jsLikeExtract) parseExport(node *sitter.Node, content []byte, rec *StructuralRecord) {
	rec.Exports = append(rec.Exports, ExportDescriptor{
		File: rec.File,
		Line: line1(node.StartPoint()),
		Name: strings.TrimSpace(node.Content(content)),
	})
	// The outer walk already recurses into this node's children, so the
	// function/class declaration it wraps is still picked up normally.
}

func (e jsLikeExtract) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}
	var callee, receiver string
	switch funcNode.Type() {
	case "identifier":
		callee = funcNode.Content(content)
	case "member_expression":
		object := funcNode.ChildByFieldName("object")
		property := funcNode.ChildByFieldName("property")
		if property != nil {
			callee = property.Content(content)
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
