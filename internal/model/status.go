package model

// Module request status constants.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Tenant subscription status as exposed to API clients.
const (
	SubscriptionActive = "active"
	SubscriptionPaused = "paused"
)

// Decision actions accepted by the module request workflow.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)
