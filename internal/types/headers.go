package types

// HTTP headers used to thread request identity into the context
const (
	HeaderRequestID = "X-Request-ID"
	HeaderOrgID     = "X-Org-ID"
	HeaderActorID   = "X-Actor-ID"
)
