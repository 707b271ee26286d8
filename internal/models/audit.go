package models

import "time"

// Audit actions recorded on workflow instances. Step and approval decisions
// are derived from the action or decision name, e.g. STEP_COMPLETE.
const (
	AuditActionWorkflowStarted   = "WORKFLOW_STARTED"
	AuditActionApprovalRequested = "APPROVAL_REQUESTED"
	auditStepPrefix              = "STEP_"
	auditApprovalPrefix          = "APPROVAL_"
)

// AuditEntry is one immutable record of the append-only instance ledger.
type AuditEntry struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	Timestamp   time.Time `json:"timestamp"`
	Details     string    `json:"details"`
}
