// Package metrics defines and registers all custom Prometheus metrics for
// the HabitDesk API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered via promauto at package load; no explicit
// registration call is needed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "habitdesk"

// ── Invite metrics ────────────────────────────────────────────────────────────

// InviteClaimsTotal counts invite claim attempts.
// Label:
//   - result: "success", "not_found", "used", "revoked", "email_mismatch", "error"
var InviteClaimsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invite_claims_total",
		Help:      "Total number of therapist invite claim attempts, by result.",
	},
	[]string{"result"},
)

// InvitesCreatedTotal counts invites created by admins.
var InvitesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_created_total",
		Help:      "Total number of therapist invites created.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RoleChangesTotal counts admin role mutations.
// Label:
//   - role: the role assigned ("admin", "therapist", "patient")
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of role changes applied by admins, by target role.",
	},
	[]string{"role"},
)

// SessionsRevokedTotal counts claims-epoch bumps, each of which invalidates
// every outstanding token for one user.
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of per-user session revocations (claims epoch bumps).",
	},
)

// TokensRejectedTotal counts tokens refused by the auth middleware.
// Label:
//   - reason: "invalid", "expired", "stale_epoch"
var TokensRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_rejected_total",
		Help:      "Total number of bearer tokens rejected by the auth middleware, by reason.",
	},
	[]string{"reason"},
)

// ── Template metrics ──────────────────────────────────────────────────────────

// TemplatesCreatedTotal counts template creations.
// Labels:
//   - kind: "task" or "program"
//   - therapist_type: the sub-type the template is scoped to
var TemplatesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "templates_created_total",
		Help:      "Total number of templates created, by kind and therapist type.",
	},
	[]string{"kind", "therapist_type"},
)

// ProgramsAssignedTotal counts program assignments to patients.
var ProgramsAssignedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "programs_assigned_total",
		Help:      "Total number of programs assigned to patients.",
	},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteErrorsTotal counts audit events that failed to persist.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit events that failed to persist.",
	},
)
