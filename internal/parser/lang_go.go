package parser

import (
	"context"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

type GoAdapter struct{ parser *sitter.Parser }

func NewGoAdapter() *GoAdapter {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoAdapter{parser: p}
}

func (a *GoAdapter) Language() string { return "go" }

func (a *GoAdapter) Parse(content []byte, path string) (*StructuralRecord, error) {
	tree, err := a.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "tree-sitter parse failed", Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	rec := &StructuralRecord{Language: a.Language(), File: path}
	rec.Errors = collectErrors(root, path)
	rec.ErrorCount = len(rec.Errors)

	a.walk(root, content, rec, 0)
	return rec, nil
}

func (a *GoAdapter) walk(node *sitter.Node, content []byte, rec *StructuralRecord, depth int) {
	if node == nil || depth > MaxASTDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration":
			a.parseFunc(child, content, rec, "")
		case "method_declaration":
			a.parseMethod(child, content, rec)
		case "type_declaration":
			a.parseTypeDecl(child, content, rec)
		case "import_declaration":
			a.parseImports(child, content, rec)
		case "call_expression":
			a.parseCall(child, content, rec)
		case "interpreted_string_literal", "raw_string_literal":
			rec.Literals = append(rec.Literals, LiteralDescriptor{
				File: rec.File, Line: line1(child.StartPoint()), Value: child.Content(content), Kind: "string",
			})
		case "int_literal", "float_literal":
			rec.Literals = append(rec.Literals, LiteralDescriptor{
				File: rec.File, Line: line1(child.StartPoint()), Value: child.Content(content), Kind: "numeric",
			})
		}
		a.walk(child, content, rec, depth+1)
	}
}

func (a *GoAdapter) parseFunc(node *sitter.Node, content []byte, rec *StructuralRecord, receiver string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(content)
	params, ret := a.signatureParts(node, content)
	qualified := ""
	if receiver != "" {
		qualified = receiver + "." + name
	}
	rec.Functions = append(rec.Functions, FunctionDescriptor{
		Name:          name,
		QualifiedName: qualified,
		File:          rec.File,
		StartLine:     line1(node.StartPoint()),
		EndLine:       line1(node.EndPoint()),
		Params:        splitParams(params),
		ReturnType:    ret,
		Exported:      isExportedGo(name),
		BodyFP:        bodyFingerprint(node.ChildByFieldName("body"), content),
		SignatureFP:   signatureFingerprint(name, params, ret),
	})
}

func (a *GoAdapter) parseMethod(node *sitter.Node, content []byte, rec *StructuralRecord) {
	receiver := ""
	if r := node.ChildByFieldName("receiver"); r != nil {
		receiver = receiverTypeName(r, content)
	}
	a.parseFunc(node, content, rec, receiver)
}

func receiverTypeName(receiverNode *sitter.Node, content []byte) string {
	text := receiverNode.Content(content)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	t := fields[len(fields)-1]
	return strings.TrimPrefix(t, "*")
}

func (a *GoAdapter) signatureParts(node *sitter.Node, content []byte) (params, ret string) {
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = p.Content(content)
	}
	if r := node.ChildByFieldName("result"); r != nil {
		ret = r.Content(content)
	}
	return
}

func (a *GoAdapter) parseTypeDecl(node *sitter.Node, content []byte, rec *StructuralRecord) {
	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(content)
		kind := "struct"
		if typeNode != nil && typeNode.Type() == "interface_type" {
			kind = "interface"
		}
		rec.Types = append(rec.Types, TypeDescriptor{
			Name:      name,
			Kind:      kind,
			File:      rec.File,
			StartLine: line1(spec.StartPoint()),
			EndLine:   line1(spec.EndPoint()),
			Exported:  isExportedGo(name),
		})
	}
}

func (a *GoAdapter) parseImports(node *sitter.Node, content []byte, rec *StructuralRecord) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch c.Type() {
			case "import_spec_list":
				walk(c)
			case "import_spec":
				pathNode := c.ChildByFieldName("path")
				if pathNode != nil {
					rec.Imports = append(rec.Imports, ImportDescriptor{
						File:   rec.File,
						Line:   line1(c.StartPoint()),
						Source: strings.Trim(pathNode.Content(content), "\""),
					})
				}
			case "interpreted_string_literal":
				rec.Imports = append(rec.Imports, ImportDescriptor{
					File:   rec.File,
					Line:   line1(c.StartPoint()),
					Source: strings.Trim(c.Content(content), "\""),
				})
			}
		}
	}
	walk(node)
}

func (a *GoAdapter) parseCall(node *sitter.Node, content []byte, rec *StructuralRecord) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}
	var callee, receiver string
	switch funcNode.Type() {
	case "identifier":
		callee = funcNode.Content(content)
	case "selector_expression":
		operand := funcNode.ChildByFieldName("operand")
		field := funcNode.ChildByFieldName("field")
		if field != nil {
			callee = field.Content(content)
		}
		if operand != nil {
			receiver = operand.Content(content)
		}
	default:
		return
	}
	if callee == "" {
		return
	}
	argCount := 0
	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.ChildCount()); i++ {
			t := args.Child(i).Type()
			if t != "(" && t != ")" && t != "," {
				argCount++
			}
		}
	}
	rec.CallSites = append(rec.CallSites, CallSiteDescriptor{
		CalleeName: callee,
		Receiver:   receiver,
		File:       rec.File,
		Line:       line1(node.StartPoint()),
		ArgCount:   argCount,
	})
}

func splitParams(paramList string) []string {
	paramList = strings.TrimPrefix(paramList, "(")
	paramList = strings.TrimSuffix(paramList, ")")
	paramList = strings.TrimSpace(paramList)
	if paramList == "" {
		return nil
	}
	parts := strings.Split(paramList, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func isExportedGo(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}
