package dto

import "github.com/noah-isme/edu-workflow-api/internal/models"

// StartWorkflowRequest instantiates a template.
type StartWorkflowRequest struct {
	TemplateID    string  `json:"templateId" validate:"required"`
	Title         string  `json:"title"`
	RelatedCourse *string `json:"relatedCourse,omitempty"`
}

// ProcessStepRequest submits the outcome of a step. An empty Comments
// string adds no comment.
type ProcessStepRequest struct {
	Action    models.StepAction `json:"action" validate:"required,oneof=complete reject request_changes"`
	Comments  string            `json:"comments,omitempty"`
	Documents []string          `json:"documents,omitempty"`
}

// RequestApprovalRequest names the user asked to approve.
type RequestApprovalRequest struct {
	ApproverID string `json:"approverId" validate:"required"`
}

// ProcessApprovalRequest records an approver's decision.
type ProcessApprovalRequest struct {
	Decision models.ApprovalStatus `json:"decision" validate:"required,oneof=approved rejected"`
	Comments string                `json:"comments,omitempty"`
}

// ApprovalResult returns the decided approval with its owning instance.
type ApprovalResult struct {
	Approval models.Approval         `json:"approval"`
	Instance models.WorkflowInstance `json:"instance"`
}

// ExportResult is a rendered audit trail export.
type ExportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Payload     []byte `json:"payload"`
}
