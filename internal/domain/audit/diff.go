package audit

import (
	"reflect"

	"github.com/condoflow/condoflow/internal/types"
)

// volatileFields are bookkeeping fields excluded from update diffs; a change
// touching only these is not a mutation worth recording.
var volatileFields = map[string]struct{}{
	"updated_at": {},
	"updated_by": {},
}

// redactedFields is the fixed deny-list of sensitive field names stripped
// from snapshots before persistence, regardless of action type.
var redactedFields = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"token":         {},
	"secret":        {},
	"api_key":       {},
	"credentials":   {},
}

// BuildChanges derives the field changes for an action from before/after
// snapshots:
//   - created/restored: only After, from the after snapshot
//   - deleted: only Before, from the last known state
//   - updated: {Before, After} pairs for changed fields only, volatile
//     bookkeeping fields excluded
//
// Denied field names are stripped in every case. An updated action with no
// net changes yields an empty map.
func BuildChanges(action types.AuditAction, before, after map[string]any) FieldChanges {
	changes := make(FieldChanges)

	switch action {
	case types.AuditActionCreated, types.AuditActionRestored:
		for field, value := range after {
			if isDenied(field) {
				continue
			}
			changes[field] = FieldChange{After: value}
		}

	case types.AuditActionDeleted:
		for field, value := range before {
			if isDenied(field) {
				continue
			}
			changes[field] = FieldChange{Before: value}
		}

	case types.AuditActionUpdated:
		for field, afterValue := range after {
			if isDenied(field) || isVolatile(field) {
				continue
			}
			beforeValue, existed := before[field]
			if existed && reflect.DeepEqual(beforeValue, afterValue) {
				continue
			}
			changes[field] = FieldChange{Before: beforeValue, After: afterValue}
		}
		// fields removed by the update
		for field, beforeValue := range before {
			if isDenied(field) || isVolatile(field) {
				continue
			}
			if _, stillThere := after[field]; !stillThere {
				changes[field] = FieldChange{Before: beforeValue}
			}
		}
	}

	return changes
}

func isDenied(field string) bool {
	_, ok := redactedFields[field]
	return ok
}

func isVolatile(field string) bool {
	_, ok := volatileFields[field]
	return ok
}
