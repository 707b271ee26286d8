package models

import (
	"strings"
	"time"
)

// StepStatus describes the state of a step definition.
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "not_started"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusRejected   StepStatus = "rejected"
)

// InstanceStatus captures the lifecycle of a running workflow. Rejected is
// written when a step is rejected and is kept as a first-class value.
type InstanceStatus string

const (
	InstanceStatusActive    InstanceStatus = "active"
	InstanceStatusCompleted InstanceStatus = "completed"
	InstanceStatusCancelled InstanceStatus = "cancelled"
	InstanceStatusRejected  InstanceStatus = "rejected"
)

// StepAction is the outcome submitted when processing a step.
type StepAction string

const (
	StepActionComplete       StepAction = "complete"
	StepActionReject         StepAction = "reject"
	StepActionRequestChanges StepAction = "request_changes"
)

// ResultingStatus maps a step action onto the instance status it produces.
func (a StepAction) ResultingStatus() InstanceStatus {
	switch a {
	case StepActionComplete:
		return InstanceStatusCompleted
	case StepActionReject:
		return InstanceStatusRejected
	default:
		return InstanceStatusActive
	}
}

// AuditAction returns the audit tag for the action, e.g. STEP_REQUEST_CHANGES.
func (a StepAction) AuditAction() string {
	return auditStepPrefix + strings.ToUpper(string(a))
}

// ApprovalStatus tracks an approval request.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// AuditAction returns the audit tag for a decision, e.g. APPROVAL_APPROVED.
func (s ApprovalStatus) AuditAction() string {
	return auditApprovalPrefix + strings.ToUpper(string(s))
}

// NotificationType enumerates delivery channels.
type NotificationType string

const (
	NotificationTypeEmail NotificationType = "email"
	NotificationTypeInApp NotificationType = "in_app"
)

// NotificationTrigger enumerates events a notification is bound to.
type NotificationTrigger string

const (
	NotificationTriggerStepComplete        NotificationTrigger = "step_complete"
	NotificationTriggerApprovalNeeded      NotificationTrigger = "approval_needed"
	NotificationTriggerDeadlineApproaching NotificationTrigger = "deadline_approaching"
)

// NotificationSetting is stored configuration; nothing dispatches it.
type NotificationSetting struct {
	Type    NotificationType    `json:"type" validate:"required,oneof=email in_app"`
	Trigger NotificationTrigger `json:"trigger" validate:"required,oneof=step_complete approval_needed deadline_approaching"`
	Roles   []Role              `json:"roles" validate:"dive,role"`
}

// WorkflowStep is a step definition embedded in a template. DependsOnSteps
// is recorded only.
type WorkflowStep struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name" validate:"required"`
	Description        string     `json:"description"`
	AssignedRoles      []Role     `json:"assignedRoles" validate:"dive,role"`
	RequiredDocuments  []string   `json:"requiredDocuments"`
	Status             StepStatus `json:"status"`
	CompletionCriteria string     `json:"completionCriteria"`
	DependsOnSteps     []string   `json:"dependsOnSteps"`
}

// WorkflowTemplate is a reusable process definition. Step order defines the
// default progression.
type WorkflowTemplate struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	Description          string                `json:"description"`
	CreatedBy            string                `json:"createdBy"`
	CreatedDate          time.Time             `json:"createdDate"`
	Steps                []WorkflowStep        `json:"steps"`
	RequiredApprovals    []string              `json:"requiredApprovals"`
	TimelineInDays       int                   `json:"timelineInDays"`
	NotificationSettings []NotificationSetting `json:"notificationSettings"`
}

// Approval is a sign-off requested on an instance.
type Approval struct {
	ID            string         `json:"id"`
	RequestedBy   string         `json:"requestedBy"`
	RequestedFrom string         `json:"requestedFrom"`
	Status        ApprovalStatus `json:"status"`
	Comments      string         `json:"comments"`
	Date          time.Time      `json:"date"`
}

// Comment is free text attached to an instance.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowInstance is one execution of a template. TemplateID is a weak
// reference: template changes are never reflected here after start.
type WorkflowInstance struct {
	ID                  string         `json:"id"`
	TemplateID          string         `json:"templateId"`
	Title               string         `json:"title"`
	InitiatedBy         string         `json:"initiatedBy"`
	InitiatedDate       time.Time      `json:"initiatedDate"`
	DueDate             time.Time      `json:"dueDate"`
	CurrentStep         string         `json:"currentStep"`
	CompletedSteps      []string       `json:"completedSteps"`
	Status              InstanceStatus `json:"status"`
	AssociatedDocuments []string       `json:"associatedDocuments"`
	Approvals           []Approval     `json:"approvals"`
	Comments            []Comment      `json:"comments"`
	RelatedCourse       *string        `json:"relatedCourse,omitempty"`
	AuditTrail          []AuditEntry   `json:"auditTrail"`
}

// ApprovalIndex returns the position of the approval with the given id, or -1.
func (w *WorkflowInstance) ApprovalIndex(approvalID string) int {
	for i := range w.Approvals {
		if w.Approvals[i].ID == approvalID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the step.
func (s WorkflowStep) Clone() WorkflowStep {
	s.AssignedRoles = cloneSlice(s.AssignedRoles)
	s.RequiredDocuments = cloneSlice(s.RequiredDocuments)
	s.DependsOnSteps = cloneSlice(s.DependsOnSteps)
	return s
}

// Clone returns a deep copy of the template.
func (t WorkflowTemplate) Clone() WorkflowTemplate {
	if t.Steps != nil {
		steps := make([]WorkflowStep, len(t.Steps))
		for i, step := range t.Steps {
			steps[i] = step.Clone()
		}
		t.Steps = steps
	}
	t.RequiredApprovals = cloneSlice(t.RequiredApprovals)
	if t.NotificationSettings != nil {
		settings := make([]NotificationSetting, len(t.NotificationSettings))
		for i, setting := range t.NotificationSettings {
			setting.Roles = cloneSlice(setting.Roles)
			settings[i] = setting
		}
		t.NotificationSettings = settings
	}
	return t
}

// Clone returns a deep copy of the instance.
func (w WorkflowInstance) Clone() WorkflowInstance {
	w.CompletedSteps = cloneSlice(w.CompletedSteps)
	w.AssociatedDocuments = cloneSlice(w.AssociatedDocuments)
	w.Approvals = cloneSlice(w.Approvals)
	w.Comments = cloneSlice(w.Comments)
	w.AuditTrail = cloneSlice(w.AuditTrail)
	if w.RelatedCourse != nil {
		course := *w.RelatedCourse
		w.RelatedCourse = &course
	}
	return w
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
