package types

// Status is a type for the lifecycle status of a persisted resource.
// This is used to soft-delete rows and to exclude them from queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}
