package contracts

import "fmt"

// BreakingChangeType classifies one kind of API-shape regression found
// between two snapshots of the same contract set.
type BreakingChangeType string

const (
	ChangeEndpointRemoved    BreakingChangeType = "endpoint_removed"
	ChangeFieldRemoved       BreakingChangeType = "field_removed"
	ChangeTypeChanged        BreakingChangeType = "type_changed"
	ChangeOptionalToRequired BreakingChangeType = "optional_to_required"
	ChangeRequiredAdded      BreakingChangeType = "required_field_added"
)

// BreakingChange is one regression detected by ClassifyBreakingChanges.
type BreakingChange struct {
	ChangeType BreakingChangeType
	Endpoint   string
	Field      string // empty for endpoint-level changes
	Severity   MismatchSeverity
	Message    string
}

// ClassifyBreakingChanges diffs two audits of the same contract set
// (keyed by method+endpoint) and reports every endpoint removal,
// response-field removal, response-field type change, newly-required
// response field, and newly-required request field — the same five
// change classes original_source's breaking-change classifier flags,
// adapted here to run over this package's own Contract/TypeSchema
// shapes rather than the Rust crate's Endpoint/FieldSpec.
func ClassifyBreakingChanges(previous, current []*Contract) []BreakingChange {
	var changes []BreakingChange

	oldByKey := make(map[string]*Contract, len(previous))
	for _, c := range previous {
		oldByKey[c.Method+":"+c.Endpoint] = c
	}
	newByKey := make(map[string]*Contract, len(current))
	for _, c := range current {
		newByKey[c.Method+":"+c.Endpoint] = c
	}

	for key, oldContract := range oldByKey {
		if _, ok := newByKey[key]; !ok {
			changes = append(changes, BreakingChange{
				ChangeType: ChangeEndpointRemoved,
				Endpoint:   oldContract.Endpoint,
				Severity:   MismatchError,
				Message:    fmt.Sprintf("%s %s was removed", oldContract.Method, oldContract.Endpoint),
			})
		}
	}

	for key, newContract := range newByKey {
		oldContract, ok := oldByKey[key]
		if !ok {
			continue
		}
		changes = append(changes, compareResponseSchemas(oldContract, newContract)...)
		changes = append(changes, compareRequestSchemas(oldContract, newContract)...)
	}

	return changes
}

func compareResponseSchemas(oldContract, newContract *Contract) []BreakingChange {
	oldSchema, newSchema := oldContract.Backend.ResponseSchema, newContract.Backend.ResponseSchema
	if oldSchema == nil || newSchema == nil || oldSchema.Type != SchemaObject || newSchema.Type != SchemaObject {
		return nil
	}

	var changes []BreakingChange
	for name, oldField := range oldSchema.Properties {
		newField, ok := newSchema.Properties[name]
		if !ok {
			changes = append(changes, BreakingChange{
				ChangeType: ChangeFieldRemoved,
				Endpoint:   newContract.Endpoint,
				Field:      name,
				Severity:   MismatchError,
				Message:    fmt.Sprintf("field %q removed from response", name),
			})
			continue
		}

		if oldField.Type != newField.Type {
			changes = append(changes, BreakingChange{
				ChangeType: ChangeTypeChanged,
				Endpoint:   newContract.Endpoint,
				Field:      name,
				Severity:   MismatchError,
				Message:    fmt.Sprintf("field %q type changed from %s to %s", name, oldField.Type, newField.Type),
			})
		}

		if !oldSchema.IsRequired(name) && newSchema.IsRequired(name) {
			changes = append(changes, BreakingChange{
				ChangeType: ChangeOptionalToRequired,
				Endpoint:   newContract.Endpoint,
				Field:      name,
				Severity:   MismatchError,
				Message:    fmt.Sprintf("field %q changed from optional to required in response", name),
			})
		}
	}
	return changes
}

func compareRequestSchemas(oldContract, newContract *Contract) []BreakingChange {
	oldSchema, newSchema := oldContract.Backend.RequestSchema, newContract.Backend.RequestSchema
	if newSchema == nil || newSchema.Type != SchemaObject {
		return nil
	}

	var changes []BreakingChange
	for name := range newSchema.Properties {
		if !newSchema.IsRequired(name) {
			continue
		}
		if oldSchema != nil && oldSchema.Properties != nil {
			if _, existed := oldSchema.Properties[name]; existed {
				continue
			}
		}
		changes = append(changes, BreakingChange{
			ChangeType: ChangeRequiredAdded,
			Endpoint:   newContract.Endpoint,
			Field:      name,
			Severity:   MismatchWarning,
			Message:    fmt.Sprintf("new required field %q added to request", name),
		})
	}
	return changes
}
