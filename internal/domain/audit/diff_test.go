package audit

import (
	"testing"

	"github.com/condoflow/condoflow/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildChangesCreated(t *testing.T) {
	after := map[string]any{
		"name":   "Monthly maintenance",
		"amount": "150.00",
	}

	changes := BuildChanges(types.AuditActionCreated, nil, after)

	assert.Len(t, changes, 2)
	assert.Equal(t, FieldChange{After: "Monthly maintenance"}, changes["name"])
	assert.Equal(t, FieldChange{After: "150.00"}, changes["amount"])
	assert.Nil(t, changes["name"].Before)
}

func TestBuildChangesDeleted(t *testing.T) {
	before := map[string]any{
		"name": "Parking",
	}

	changes := BuildChanges(types.AuditActionDeleted, before, nil)

	assert.Len(t, changes, 1)
	assert.Equal(t, FieldChange{Before: "Parking"}, changes["name"])
}

func TestBuildChangesUpdatedSingleField(t *testing.T) {
	before := map[string]any{
		"name":         "Alice",
		"phone_number": "555-0100",
		"updated_at":   "2024-01-01T00:00:00Z",
	}
	after := map[string]any{
		"name":         "Alice",
		"phone_number": "555-0199",
		"updated_at":   "2024-02-01T00:00:00Z",
	}

	changes := BuildChanges(types.AuditActionUpdated, before, after)

	// only the phone number changed; the unchanged name and the volatile
	// updated_at are both absent
	assert.Len(t, changes, 1)
	assert.Equal(t, FieldChange{Before: "555-0100", After: "555-0199"}, changes["phone_number"])
}

func TestBuildChangesUpdatedNoNetChange(t *testing.T) {
	before := map[string]any{
		"name":       "Alice",
		"updated_at": "2024-01-01T00:00:00Z",
		"updated_by": "user_1",
	}
	after := map[string]any{
		"name":       "Alice",
		"updated_at": "2024-02-01T00:00:00Z",
		"updated_by": "user_2",
	}

	changes := BuildChanges(types.AuditActionUpdated, before, after)
	assert.Empty(t, changes)
}

func TestBuildChangesUpdatedRemovedField(t *testing.T) {
	before := map[string]any{
		"terminated_at": "2024-06-01T00:00:00Z",
	}
	after := map[string]any{}

	changes := BuildChanges(types.AuditActionUpdated, before, after)

	assert.Len(t, changes, 1)
	assert.Equal(t, FieldChange{Before: "2024-06-01T00:00:00Z"}, changes["terminated_at"])
}

func TestBuildChangesRedaction(t *testing.T) {
	after := map[string]any{
		"name":          "Alice",
		"password":      "hunter2",
		"password_hash": "abc",
		"token":         "tok_123",
		"secret":        "s3cret",
		"api_key":       "key_123",
		"credentials":   "creds",
	}

	changes := BuildChanges(types.AuditActionCreated, nil, after)

	assert.Len(t, changes, 1)
	assert.Contains(t, changes, "name")
	assert.NotContains(t, changes, "password")
	assert.NotContains(t, changes, "token")
	assert.NotContains(t, changes, "api_key")
}

func TestBuildChangesRedactionOnUpdate(t *testing.T) {
	before := map[string]any{"password": "old", "name": "a"}
	after := map[string]any{"password": "new", "name": "b"}

	changes := BuildChanges(types.AuditActionUpdated, before, after)

	assert.Len(t, changes, 1)
	assert.Contains(t, changes, "name")
}
