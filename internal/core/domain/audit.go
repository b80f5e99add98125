package domain

import "time"

// Audit actions recorded for role and invite mutations.
const (
	AuditRoleChanged   = "role_changed"
	AuditInviteClaimed = "invite_claimed"
	AuditInviteRevoked = "invite_revoked"
)

// AuditEvent is an append-only record of a privileged mutation.
type AuditEvent struct {
	ID         string            `json:"id" bson:"_id,omitempty"`
	Action     string            `json:"action" bson:"action"`
	ActorUID   string            `json:"actor_uid" bson:"actor_uid"`
	SubjectUID string            `json:"subject_uid" bson:"subject_uid"`
	Detail     map[string]string `json:"detail,omitempty" bson:"detail,omitempty"`
	Timestamp  time.Time         `json:"timestamp" bson:"timestamp"`
}
