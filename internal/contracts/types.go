// Package contracts discovers and verifies the implicit API contract
// between backend endpoint handlers and the frontend calls that
// consume them (spec §4.11, SPEC_FULL §3.3). A Contract pairs one
// backend route with the frontend call sites that exercise it and
// tracks the shape mismatches between what the backend returns and
// what the frontend expects.
package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaType is the JSON-Schema-like primitive kind a TypeSchema node
// describes.
type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaNumber  SchemaType = "number"
	SchemaInteger SchemaType = "integer"
	SchemaBoolean SchemaType = "boolean"
	SchemaNull    SchemaType = "null"
	SchemaAny     SchemaType = "any"
	SchemaUnknown SchemaType = "unknown"
)

// MismatchType classifies how a backend field and a frontend-expected
// field disagree.
type MismatchType string

const (
	MismatchMissingInFrontend  MismatchType = "missing_in_frontend"
	MismatchMissingInBackend   MismatchType = "missing_in_backend"
	MismatchTypeMismatch       MismatchType = "type_mismatch"
	MismatchOptionalityMismatch MismatchType = "optionality_mismatch"
	MismatchNullabilityMismatch MismatchType = "nullability_mismatch"
)

// MismatchSeverity ranks a FieldMismatch independently of the
// enforcement package's Severity, since a contract mismatch is a
// structural finding rather than a pattern-outlier violation.
type MismatchSeverity string

const (
	MismatchError   MismatchSeverity = "error"
	MismatchWarning MismatchSeverity = "warning"
	MismatchInfo    MismatchSeverity = "info"
)

// TypeSchema is a minimal JSON-Schema-shaped description of a request
// or response body, built from a language's static type information
// (Go struct tags, TypeScript interfaces, OpenAPI components, ...).
type TypeSchema struct {
	Type       SchemaType             `json:"type"`
	Properties map[string]*TypeSchema `json:"properties,omitempty"`
	Items      *TypeSchema            `json:"items,omitempty"`
	Required   []string               `json:"required,omitempty"`
	Nullable   bool                   `json:"nullable,omitempty"`
	Enum       []string               `json:"enum,omitempty"`
	Format     string                 `json:"format,omitempty"`
	Ref        string                 `json:"ref,omitempty"`
}

// NewObjectSchema returns an empty object schema ready for AddProperty.
func NewObjectSchema() *TypeSchema {
	return &TypeSchema{Type: SchemaObject, Properties: make(map[string]*TypeSchema)}
}

// NewArraySchema returns an array schema whose elements match items.
func NewArraySchema(items *TypeSchema) *TypeSchema {
	return &TypeSchema{Type: SchemaArray, Items: items}
}

// NewPrimitiveSchema returns a leaf schema of the given primitive type.
func NewPrimitiveSchema(t SchemaType) *TypeSchema {
	return &TypeSchema{Type: t}
}

// AddProperty registers a field on an object schema, marking it
// required unless optional is true.
func (s *TypeSchema) AddProperty(name string, schema *TypeSchema, optional bool) {
	if s.Properties == nil {
		s.Properties = make(map[string]*TypeSchema)
	}
	s.Properties[name] = schema
	if !optional {
		s.Required = append(s.Required, name)
	}
}

// IsRequired reports whether name is in the schema's required list.
func (s *TypeSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func (s *TypeSchema) String() string {
	if s == nil {
		return "unknown"
	}
	switch s.Type {
	case SchemaArray:
		return fmt.Sprintf("%s[]", s.Items.String())
	case SchemaObject:
		return "object"
	default:
		if s.Format != "" {
			return fmt.Sprintf("%s(%s)", s.Type, s.Format)
		}
		return string(s.Type)
	}
}

// FieldMismatch is one disagreement found between a backend-provided
// field and a frontend-expected field during Compare.
type FieldMismatch struct {
	ID           string
	FieldPath    string
	Type         MismatchType
	Severity     MismatchSeverity
	Description  string
	BackendType  string
	FrontendType string
}

// Compare recursively diffs s (the backend/provider schema) against
// other (the frontend/consumer schema), returning every FieldMismatch
// found under path. Compare is intentionally conservative: SchemaAny
// on either side is treated as compatible and does not recurse, and a
// bare type mismatch at a node short-circuits that branch rather than
// producing nested noise.
func (s *TypeSchema) Compare(other *TypeSchema, path string) []FieldMismatch {
	var mismatches []FieldMismatch
	if s == nil || other == nil {
		return mismatches
	}
	if s.Type == SchemaAny || other.Type == SchemaAny {
		return mismatches
	}

	if !isTypeCompatible(s.Type, other.Type) {
		mismatches = append(mismatches, FieldMismatch{
			ID:           GenerateID("mis"),
			FieldPath:    pathOrRoot(path),
			Type:         MismatchTypeMismatch,
			Severity:     MismatchError,
			Description:  fmt.Sprintf("expected %s, got %s", other.Type, s.Type),
			BackendType:  string(s.Type),
			FrontendType: string(other.Type),
		})
		return mismatches
	}

	if s.Nullable != other.Nullable {
		sev := MismatchWarning
		desc := "backend allows null but frontend does not expect it"
		if other.Nullable && !s.Nullable {
			desc = "frontend expects null but backend never sends it"
		}
		mismatches = append(mismatches, FieldMismatch{
			ID:          GenerateID("mis"),
			FieldPath:   pathOrRoot(path),
			Type:        MismatchNullabilityMismatch,
			Severity:    sev,
			Description: desc,
		})
	}

	switch s.Type {
	case SchemaObject:
		mismatches = append(mismatches, compareObjectProperties(s, other, path)...)
	case SchemaArray:
		mismatches = append(mismatches, s.Items.Compare(other.Items, path+"[]")...)
	}

	return mismatches
}

func compareObjectProperties(backend, frontend *TypeSchema, path string) []FieldMismatch {
	var mismatches []FieldMismatch

	for name, beField := range backend.Properties {
		fieldPath := joinPath(path, name)
		feField, ok := frontend.Properties[name]
		if !ok {
			if backend.IsRequired(name) {
				mismatches = append(mismatches, FieldMismatch{
					ID:          GenerateID("mis"),
					FieldPath:   fieldPath,
					Type:        MismatchMissingInFrontend,
					Severity:    MismatchWarning,
					Description: "backend field not consumed by frontend",
					BackendType: beField.String(),
				})
			}
			continue
		}

		beRequired := backend.IsRequired(name)
		feRequired := frontend.IsRequired(name)
		if beRequired != feRequired {
			mismatches = append(mismatches, FieldMismatch{
				ID:          GenerateID("mis"),
				FieldPath:   fieldPath,
				Type:        MismatchOptionalityMismatch,
				Severity:    MismatchWarning,
				Description: fmt.Sprintf("backend required=%v, frontend required=%v", beRequired, feRequired),
			})
		}

		mismatches = append(mismatches, beField.Compare(feField, fieldPath)...)
	}

	for name, feField := range frontend.Properties {
		if _, ok := backend.Properties[name]; !ok && frontend.IsRequired(name) {
			mismatches = append(mismatches, FieldMismatch{
				ID:           GenerateID("mis"),
				FieldPath:    joinPath(path, name),
				Type:         MismatchMissingInBackend,
				Severity:     MismatchError,
				Description:  "frontend expects a field the backend never sends",
				FrontendType: feField.String(),
			})
		}
	}

	return mismatches
}

func isTypeCompatible(a, b SchemaType) bool {
	if a == b {
		return true
	}
	numeric := map[SchemaType]bool{SchemaNumber: true, SchemaInteger: true}
	return numeric[a] && numeric[b]
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func pathOrRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

// Clone deep-copies the schema tree.
func (s *TypeSchema) Clone() *TypeSchema {
	if s == nil {
		return nil
	}
	clone := &TypeSchema{
		Type:     s.Type,
		Nullable: s.Nullable,
		Format:   s.Format,
		Ref:      s.Ref,
		Enum:     append([]string(nil), s.Enum...),
		Required: append([]string(nil), s.Required...),
	}
	if s.Items != nil {
		clone.Items = s.Items.Clone()
	}
	if s.Properties != nil {
		clone.Properties = make(map[string]*TypeSchema, len(s.Properties))
		for k, v := range s.Properties {
			clone.Properties[k] = v.Clone()
		}
	}
	return clone
}

// typeSchemaAlias avoids infinite recursion in MarshalJSON/UnmarshalJSON.
type typeSchemaAlias TypeSchema

func (s *TypeSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal((*typeSchemaAlias)(s))
}

func (s *TypeSchema) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, (*typeSchemaAlias)(s))
}

// GoTypeToSchema converts a Go type's textual form, as recorded by
// parser.FunctionDescriptor.ReturnType or a struct field type, into a
// TypeSchema. It recognizes pointers (nullable), slices, maps, and the
// handful of stdlib types (time.Time, uuid.UUID) the pack's extractors
// surface as backend field types.
func GoTypeToSchema(goType string) *TypeSchema {
	goType = strings.TrimSpace(goType)

	if strings.HasPrefix(goType, "*") {
		inner := GoTypeToSchema(goType[1:])
		inner.Nullable = true
		return inner
	}
	if strings.HasPrefix(goType, "[]") {
		return NewArraySchema(GoTypeToSchema(goType[2:]))
	}
	if strings.HasPrefix(goType, "map[") {
		return NewObjectSchema()
	}

	switch goType {
	case "string":
		return NewPrimitiveSchema(SchemaString)
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64":
		return NewPrimitiveSchema(SchemaInteger)
	case "float32", "float64":
		return NewPrimitiveSchema(SchemaNumber)
	case "bool":
		return NewPrimitiveSchema(SchemaBoolean)
	case "time.Time":
		return &TypeSchema{Type: SchemaString, Format: "date-time"}
	case "uuid.UUID":
		return &TypeSchema{Type: SchemaString, Format: "uuid"}
	case "":
		return NewPrimitiveSchema(SchemaAny)
	default:
		if strings.HasPrefix(goType, "struct") || isCapitalized(goType) {
			return NewObjectSchema()
		}
		return NewPrimitiveSchema(SchemaUnknown)
	}
}

// TSTypeToSchema converts a TypeScript type's textual form into a
// TypeSchema, recognizing array sugar, nullable unions, and the
// primitive TS types the frontend extractors surface.
func TSTypeToSchema(tsType string) *TypeSchema {
	tsType = strings.TrimSpace(tsType)

	if strings.HasSuffix(tsType, "[]") {
		return NewArraySchema(TSTypeToSchema(strings.TrimSuffix(tsType, "[]")))
	}
	if strings.HasPrefix(tsType, "Array<") && strings.HasSuffix(tsType, ">") {
		return NewArraySchema(TSTypeToSchema(tsType[len("Array<") : len(tsType)-1]))
	}

	if strings.Contains(tsType, "|") {
		parts := strings.Split(tsType, "|")
		nullable := false
		var rest []string
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "null" || p == "undefined" {
				nullable = true
				continue
			}
			rest = append(rest, p)
		}
		if len(rest) == 1 {
			schema := TSTypeToSchema(rest[0])
			schema.Nullable = nullable
			return schema
		}
		return &TypeSchema{Type: SchemaUnknown, Nullable: nullable}
	}

	switch tsType {
	case "string":
		return NewPrimitiveSchema(SchemaString)
	case "number":
		return NewPrimitiveSchema(SchemaNumber)
	case "boolean":
		return NewPrimitiveSchema(SchemaBoolean)
	case "any", "unknown":
		return NewPrimitiveSchema(SchemaAny)
	case "Date":
		return &TypeSchema{Type: SchemaString, Format: "date-time"}
	case "":
		return NewPrimitiveSchema(SchemaAny)
	default:
		return NewObjectSchema()
	}
}

func isCapitalized(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}
