package ledger

import "time"

// Audit actions produced by ledger mutations.
const (
	ActionGrant      = "permission.grant"
	ActionRevoke     = "permission.revoke"
	ActionReset      = "permission.reset"
	ActionRoleChange = "user.role_change"
)

// Entity names referenced by audit records.
const (
	EntityUserPermissions = "user_permissions"
	EntityUser            = "users"
)

// GrantRevokeRecord is the audit view of one explicit permission mutation.
type GrantRevokeRecord struct {
	UserID     int64     `json:"user_id"`
	Permission string    `json:"permission"`
	Action     string    `json:"action"`
	Reason     string    `json:"reason"`
	ActorID    int64     `json:"actor_id"`
	At         time.Time `json:"at"`
}
