package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-workflow-api/internal/dto"
	"github.com/noah-isme/edu-workflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-workflow-api/pkg/errors"
	"github.com/noah-isme/edu-workflow-api/pkg/idgen"
)

const day = 24 * time.Hour

type workflowStore interface {
	Snapshot() models.WorkflowState
	Update(fn func(state *models.WorkflowState) error) error
}

// WorkflowEventRecorder receives one call per applied workflow transition.
type WorkflowEventRecorder interface {
	RecordWorkflowEvent(action string)
}

// WorkflowService exposes template, instance, approval and session operations
// over a single workflow store. Every mutation is applied atomically.
type WorkflowService struct {
	store     workflowStore
	validator *validator.Validate
	logger    *zap.Logger
	recorder  WorkflowEventRecorder
	newID     idgen.Generator
	now       func() time.Time
}

// WorkflowServiceOption configures the service.
type WorkflowServiceOption func(*WorkflowService)

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen idgen.Generator) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEventRecorder attaches a recorder for applied transitions.
func WithEventRecorder(recorder WorkflowEventRecorder) WorkflowServiceOption {
	return func(s *WorkflowService) {
		s.recorder = recorder
	}
}

// NewValidator returns a validator carrying the workflow tag rules.
func NewValidator() (*validator.Validate, error) {
	validate := validator.New()
	if err := validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("register role validation: %w", err)
	}
	return validate, nil
}

// NewWorkflowService constructs the service with defaults. A supplied
// validator must already carry the rules registered by NewValidator.
func NewWorkflowService(store workflowStore, validate *validator.Validate, logger *zap.Logger, opts ...WorkflowServiceOption) (*WorkflowService, error) {
	if validate == nil {
		v, err := NewValidator()
		if err != nil {
			return nil, err
		}
		validate = v
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &WorkflowService{
		store:     store,
		validator: validate,
		logger:    logger,
		newID:     idgen.New,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// CreateTemplate stores a new template authored by the session user.
func (s *WorkflowService) CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest) (*models.WorkflowTemplate, error) {
	var created models.WorkflowTemplate
	err := s.store.Update(func(state *models.WorkflowState) error {
		if state.CurrentUser == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to create a template")
		}
		if err := s.validate(req, "invalid template payload"); err != nil {
			return err
		}
		created = models.WorkflowTemplate{
			ID:                   s.newID(),
			Name:                 req.Name,
			Description:          req.Description,
			CreatedBy:            state.CurrentUser.ID,
			CreatedDate:          s.now(),
			Steps:                normalizeSteps(req.Steps),
			RequiredApprovals:    nonNil(req.RequiredApprovals),
			TimelineInDays:       req.TimelineInDays,
			NotificationSettings: nonNil(req.NotificationSettings),
		}
		state.Templates = append(state.Templates, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("template created", zap.String("template_id", created.ID), zap.String("created_by", created.CreatedBy), zap.Int("steps", len(created.Steps)))
	s.record("TEMPLATE_CREATED")
	out := created.Clone()
	return &out, nil
}

// UpdateTemplate applies the present patch fields to an existing template.
func (s *WorkflowService) UpdateTemplate(ctx context.Context, id string, patch dto.TemplatePatch) (*models.WorkflowTemplate, error) {
	var updated models.WorkflowTemplate
	err := s.store.Update(func(state *models.WorkflowState) error {
		if state.CurrentUser == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to update a template")
		}
		if err := s.validate(patch, "invalid template patch"); err != nil {
			return err
		}
		idx := state.TemplateIndex(id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		if patch.Steps != nil {
			steps := normalizeSteps(*patch.Steps)
			patch.Steps = &steps
		}
		patch.Apply(&state.Templates[idx])
		updated = state.Templates[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("template updated", zap.String("template_id", id))
	s.record("TEMPLATE_UPDATED")
	out := updated.Clone()
	return &out, nil
}

// DeleteTemplate removes a template. Unknown ids are ignored and instances
// started from the template keep their reference.
func (s *WorkflowService) DeleteTemplate(ctx context.Context, id string) error {
	removed := false
	err := s.store.Update(func(state *models.WorkflowState) error {
		if state.CurrentUser == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to delete a template")
		}
		kept := state.Templates[:0]
		for _, t := range state.Templates {
			if t.ID == id {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		state.Templates = kept
		return nil
	})
	if err != nil {
		return err
	}
	if removed {
		s.logger.Info("template deleted", zap.String("template_id", id))
		s.record("TEMPLATE_DELETED")
	}
	return nil
}

// ListTemplates returns templates in insertion order.
func (s *WorkflowService) ListTemplates(ctx context.Context) []models.WorkflowTemplate {
	return s.store.Snapshot().Templates
}

// GetTemplate returns a single template.
func (s *WorkflowService) GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	state := s.store.Snapshot()
	idx := state.TemplateIndex(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
	}
	return &state.Templates[idx], nil
}

// StartWorkflow instantiates a template. The template must have at least one step.
func (s *WorkflowService) StartWorkflow(ctx context.Context, req dto.StartWorkflowRequest) (*models.WorkflowInstance, error) {
	var started models.WorkflowInstance
	err := s.store.Update(func(state *models.WorkflowState) error {
		user := state.CurrentUser
		if user == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to start a workflow")
		}
		if err := s.validate(req, "invalid workflow start payload"); err != nil {
			return err
		}
		idx := state.TemplateIndex(req.TemplateID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		template := state.Templates[idx]
		if len(template.Steps) == 0 {
			return appErrors.Clone(appErrors.ErrPreconditionViolation, fmt.Sprintf("template %q has no steps", template.ID))
		}
		now := s.now()
		var course *string
		if req.RelatedCourse != nil {
			c := *req.RelatedCourse
			course = &c
		}
		started = models.WorkflowInstance{
			ID:                  s.newID(),
			TemplateID:          template.ID,
			Title:               req.Title,
			InitiatedBy:         user.ID,
			InitiatedDate:       now,
			DueDate:             now.Add(time.Duration(template.TimelineInDays) * day),
			CurrentStep:         template.Steps[0].ID,
			CompletedSteps:      []string{},
			Status:              models.InstanceStatusActive,
			AssociatedDocuments: []string{},
			Approvals:           []models.Approval{},
			Comments:            []models.Comment{},
			RelatedCourse:       course,
			AuditTrail: []models.AuditEntry{
				s.auditEntry(models.AuditActionWorkflowStarted, user.ID, now,
					fmt.Sprintf("Workflow %q started from template %q", req.Title, template.Name)),
			},
		}
		state.Instances = append(state.Instances, started)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("workflow started",
		zap.String("instance_id", started.ID),
		zap.String("template_id", started.TemplateID),
		zap.String("initiated_by", started.InitiatedBy),
		zap.Time("due_date", started.DueDate),
	)
	s.record(models.AuditActionWorkflowStarted)
	out := started.Clone()
	return &out, nil
}

// ProcessStep records the outcome of a step on an instance.
//
// The step id is not checked against the template, completing a step twice
// records it twice, and CurrentStep stays on the first step.
// TODO: derive CurrentStep from CompletedSteps and the template step order
// once product confirms advancement belongs in the core.
func (s *WorkflowService) ProcessStep(ctx context.Context, instanceID, stepID string, req dto.ProcessStepRequest) (*models.WorkflowInstance, error) {
	var processed models.WorkflowInstance
	err := s.store.Update(func(state *models.WorkflowState) error {
		user := state.CurrentUser
		if user == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to process a step")
		}
		if err := s.validate(req, "invalid step action"); err != nil {
			return err
		}
		idx := state.InstanceIndex(instanceID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "instance not found")
		}
		now := s.now()
		inst := &state.Instances[idx]
		inst.Status = req.Action.ResultingStatus()
		if req.Action == models.StepActionComplete {
			inst.CompletedSteps = append(inst.CompletedSteps, stepID)
		}
		if req.Comments != "" {
			inst.Comments = append(inst.Comments, models.Comment{
				ID:        s.newID(),
				UserID:    user.ID,
				Content:   req.Comments,
				Timestamp: now,
			})
		}
		inst.AssociatedDocuments = append(inst.AssociatedDocuments, req.Documents...)
		inst.AuditTrail = append(inst.AuditTrail, s.auditEntry(req.Action.AuditAction(), user.ID, now,
			fmt.Sprintf("Step %q %s", stepID, req.Action)))
		processed = *inst
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("workflow step processed",
		zap.String("instance_id", instanceID),
		zap.String("step_id", stepID),
		zap.String("action", string(req.Action)),
		zap.String("status", string(processed.Status)),
	)
	s.record(req.Action.AuditAction())
	out := processed.Clone()
	return &out, nil
}

// RequestApproval attaches a pending approval addressed to approverID.
func (s *WorkflowService) RequestApproval(ctx context.Context, instanceID, approverID string) (*models.Approval, error) {
	var approval models.Approval
	err := s.store.Update(func(state *models.WorkflowState) error {
		user := state.CurrentUser
		if user == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to request approval")
		}
		if err := s.validator.Var(approverID, "required"); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "approverId is required")
		}
		idx := state.InstanceIndex(instanceID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "instance not found")
		}
		now := s.now()
		approval = models.Approval{
			ID:            s.newID(),
			RequestedBy:   user.ID,
			RequestedFrom: approverID,
			Status:        models.ApprovalStatusPending,
			Date:          now,
		}
		inst := &state.Instances[idx]
		inst.Approvals = append(inst.Approvals, approval)
		inst.AuditTrail = append(inst.AuditTrail, s.auditEntry(models.AuditActionApprovalRequested, user.ID, now,
			fmt.Sprintf("Approval requested from user %s", approverID)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("approval requested",
		zap.String("instance_id", instanceID),
		zap.String("approval_id", approval.ID),
		zap.String("requested_from", approverID),
	)
	s.record(models.AuditActionApprovalRequested)
	return &approval, nil
}

// ProcessApproval records a decision on the first instance, in insertion
// order, that holds the approval.
func (s *WorkflowService) ProcessApproval(ctx context.Context, approvalID string, req dto.ProcessApprovalRequest) (*dto.ApprovalResult, error) {
	var result dto.ApprovalResult
	err := s.store.Update(func(state *models.WorkflowState) error {
		user := state.CurrentUser
		if user == nil {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "user must be logged in to process approval")
		}
		if err := s.validate(req, "invalid approval decision"); err != nil {
			return err
		}
		for i := range state.Instances {
			inst := &state.Instances[i]
			pos := inst.ApprovalIndex(approvalID)
			if pos < 0 {
				continue
			}
			now := s.now()
			approval := &inst.Approvals[pos]
			approval.Status = req.Decision
			approval.Comments = req.Comments
			approval.Date = now
			inst.AuditTrail = append(inst.AuditTrail, s.auditEntry(req.Decision.AuditAction(), user.ID, now,
				fmt.Sprintf("Approval %s by %s", req.Decision, user.ID)))
			result = dto.ApprovalResult{Approval: *approval, Instance: inst.Clone()}
			return nil
		}
		return appErrors.Clone(appErrors.ErrNotFound, "approval not found")
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("approval processed",
		zap.String("approval_id", approvalID),
		zap.String("instance_id", result.Instance.ID),
		zap.String("decision", string(req.Decision)),
	)
	s.record(req.Decision.AuditAction())
	return &result, nil
}

// ListInstances returns instances in start order.
func (s *WorkflowService) ListInstances(ctx context.Context) []models.WorkflowInstance {
	return s.store.Snapshot().Instances
}

// GetInstance returns a single instance.
func (s *WorkflowService) GetInstance(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	state := s.store.Snapshot()
	idx := state.InstanceIndex(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instance not found")
	}
	return &state.Instances[idx], nil
}

// SetCurrentUser replaces the session user; nil logs out. No credential
// check is performed.
func (s *WorkflowService) SetCurrentUser(ctx context.Context, user *models.User) {
	var next *models.User
	if user != nil {
		u := *user
		next = &u
	}
	_ = s.store.Update(func(state *models.WorkflowState) error {
		state.CurrentUser = next
		return nil
	})
	if next == nil {
		s.logger.Info("session cleared")
		return
	}
	s.logger.Info("session user set", zap.String("user_id", next.ID), zap.String("role", string(next.Role)))
}

// CurrentUser returns the session user, or nil.
func (s *WorkflowService) CurrentUser(ctx context.Context) *models.User {
	return s.store.Snapshot().CurrentUser
}

// HasPermission reports whether the session user may act at the required role level.
func (s *WorkflowService) HasPermission(ctx context.Context, required models.Role) bool {
	return models.HasPermission(s.CurrentUser(ctx), required)
}

func (s *WorkflowService) validate(payload any, message string) error {
	if err := s.validator.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

func (s *WorkflowService) auditEntry(action, userID string, at time.Time, details string) models.AuditEntry {
	return models.AuditEntry{
		ID:          s.newID(),
		Action:      action,
		PerformedBy: userID,
		Timestamp:   at,
		Details:     details,
	}
}

func (s *WorkflowService) record(action string) {
	if s.recorder != nil {
		s.recorder.RecordWorkflowEvent(action)
	}
}

// normalizeSteps fills designer defaults: missing ids become step-<n> and
// every definition starts not_started.
func normalizeSteps(steps []models.WorkflowStep) []models.WorkflowStep {
	out := make([]models.WorkflowStep, len(steps))
	for i, step := range steps {
		step = step.Clone()
		if step.ID == "" {
			step.ID = fmt.Sprintf("step-%d", i+1)
		}
		step.Status = models.StepStatusNotStarted
		step.AssignedRoles = nonNil(step.AssignedRoles)
		step.RequiredDocuments = nonNil(step.RequiredDocuments)
		step.DependsOnSteps = nonNil(step.DependsOnSteps)
		out[i] = step
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
