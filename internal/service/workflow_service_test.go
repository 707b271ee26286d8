package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-workflow-api/internal/dto"
	"github.com/noah-isme/edu-workflow-api/internal/models"
	"github.com/noah-isme/edu-workflow-api/internal/repository"
	appErrors "github.com/noah-isme/edu-workflow-api/pkg/errors"
	"github.com/noah-isme/edu-workflow-api/pkg/idgen"
)

var (
	adminUser   = models.User{ID: "admin-1", Name: "Senior Administrator", Role: models.RoleAdmin, AccessLevel: 5}
	studentUser = models.User{ID: "student-1", Name: "John Smith", Role: models.RoleStudent, AccessLevel: 1}
	baseTime    = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

type recorderStub struct {
	actions []string
}

func (r *recorderStub) RecordWorkflowEvent(action string) {
	r.actions = append(r.actions, action)
}

// tickingClock advances one minute per call so timestamps are distinct.
func tickingClock() func() time.Time {
	current := baseTime
	return func() time.Time {
		now := current
		current = current.Add(time.Minute)
		return now
	}
}

func newWorkflowServiceForTest(t *testing.T, opts ...WorkflowServiceOption) (*WorkflowService, *repository.WorkflowStore) {
	t.Helper()
	store := repository.NewWorkflowStore()
	defaults := []WorkflowServiceOption{WithIDGenerator(idgen.Sequence("id")), WithClock(tickingClock())}
	svc, err := NewWorkflowService(store, nil, zap.NewNop(), append(defaults, opts...)...)
	require.NoError(t, err)
	return svc, store
}

func twoStepTemplate(timeline int) dto.CreateTemplateRequest {
	return dto.CreateTemplateRequest{
		Name:           "Course Creation Workflow",
		Description:    "Standard process for creating and approving new courses",
		TimelineInDays: timeline,
		Steps: []models.WorkflowStep{
			{ID: "step1", Name: "Course Proposal", AssignedRoles: []models.Role{models.RoleInstructor}, RequiredDocuments: []string{"course-outline"}},
			{ID: "step2", Name: "Department Review", AssignedRoles: []models.Role{models.RoleAdmin}, DependsOnSteps: []string{"step1"}},
		},
		RequiredApprovals: []string{"department-head"},
	}
}

func loggedInWithTemplate(t *testing.T, svc *WorkflowService) *models.WorkflowTemplate {
	t.Helper()
	ctx := context.Background()
	svc.SetCurrentUser(ctx, &adminUser)
	tpl, err := svc.CreateTemplate(ctx, twoStepTemplate(14))
	require.NoError(t, err)
	return tpl
}

func TestCreateTemplateStampsAuthor(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	tpl := loggedInWithTemplate(t, svc)

	assert.Equal(t, adminUser.ID, tpl.CreatedBy)
	assert.Equal(t, baseTime, tpl.CreatedDate)
	assert.NotEmpty(t, tpl.ID)

	snap := store.Snapshot()
	require.Len(t, snap.Templates, 1)
	assert.Equal(t, tpl.ID, snap.Templates[0].ID)
	for _, step := range snap.Templates[0].Steps {
		assert.Equal(t, models.StepStatusNotStarted, step.Status)
	}
}

func TestCreateTemplateRequiresUser(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)

	_, err := svc.CreateTemplate(context.Background(), twoStepTemplate(14))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
	assert.Empty(t, store.Snapshot().Templates)
}

func TestCreateTemplateAllowsDuplicateNames(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	first := loggedInWithTemplate(t, svc)
	second, err := svc.CreateTemplate(ctx, twoStepTemplate(14))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	list := svc.ListTemplates(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestCreateTemplateDesignerDefaults(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	svc.SetCurrentUser(ctx, &adminUser)

	tpl, err := svc.CreateTemplate(ctx, dto.CreateTemplateRequest{
		Name:           "Student Registration Process",
		TimelineInDays: 30,
		Steps: []models.WorkflowStep{
			{Name: "Application Submission", Status: models.StepStatusCompleted},
			{Name: "Application Review"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "step-1", tpl.Steps[0].ID)
	assert.Equal(t, "step-2", tpl.Steps[1].ID)
	assert.Equal(t, models.StepStatusNotStarted, tpl.Steps[0].Status)
	assert.NotNil(t, tpl.RequiredApprovals)
	assert.NotNil(t, tpl.NotificationSettings)
}

func TestCreateTemplateValidation(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	svc.SetCurrentUser(ctx, &adminUser)

	req := twoStepTemplate(0)
	_, err := svc.CreateTemplate(ctx, req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	req = twoStepTemplate(14)
	req.Steps[0].AssignedRoles = []models.Role{"registrar"}
	_, err = svc.CreateTemplate(ctx, req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	req = twoStepTemplate(14)
	req.NotificationSettings = []models.NotificationSetting{{Type: "sms", Trigger: models.NotificationTriggerApprovalNeeded}}
	_, err = svc.CreateTemplate(ctx, req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUpdateTemplatePatchesPresentFields(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)

	name := "Renamed"
	steps := []models.WorkflowStep{{ID: "only", Name: "Only step"}}
	updated, err := svc.UpdateTemplate(ctx, tpl.ID, dto.TemplatePatch{Name: &name, Steps: &steps})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Steps, 1)
	assert.Equal(t, "only", updated.Steps[0].ID)
	assert.Equal(t, tpl.Description, updated.Description)
	assert.Equal(t, tpl.TimelineInDays, updated.TimelineInDays)
	assert.Equal(t, tpl.CreatedBy, updated.CreatedBy)

	stored, err := svc.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateTemplateNormalizesPatchedSteps(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)

	steps := []models.WorkflowStep{
		{Name: "No id", Status: models.StepStatusCompleted},
		{ID: "kept", Name: "Second", Status: models.StepStatusInProgress},
	}
	updated, err := svc.UpdateTemplate(ctx, tpl.ID, dto.TemplatePatch{Steps: &steps})
	require.NoError(t, err)

	require.Len(t, updated.Steps, 2)
	assert.Equal(t, "step-1", updated.Steps[0].ID)
	assert.Equal(t, "kept", updated.Steps[1].ID)
	for _, step := range updated.Steps {
		assert.Equal(t, models.StepStatusNotStarted, step.Status)
		assert.NotNil(t, step.AssignedRoles)
	}
	assert.Empty(t, steps[0].ID)
	assert.Equal(t, models.StepStatusCompleted, steps[0].Status)

	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)
	assert.Equal(t, "step-1", inst.CurrentStep)
}

func TestUpdateTemplateErrors(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	name := "x"

	_, err := svc.UpdateTemplate(ctx, "missing", dto.TemplatePatch{Name: &name})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	svc.SetCurrentUser(ctx, nil)
	_, err = svc.UpdateTemplate(ctx, tpl.ID, dto.TemplatePatch{Name: &name})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
	assert.Equal(t, tpl.Name, store.Snapshot().Templates[0].Name)
}

func TestDeleteTemplate(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	before := store.Snapshot().Templates

	require.NoError(t, svc.DeleteTemplate(ctx, "does-not-exist"))
	assert.Equal(t, before, store.Snapshot().Templates)

	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTemplate(ctx, tpl.ID))
	assert.Empty(t, store.Snapshot().Templates)

	orphan, err := svc.GetInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, orphan.TemplateID)

	svc.SetCurrentUser(ctx, nil)
	assert.True(t, errors.Is(svc.DeleteTemplate(ctx, "x"), appErrors.ErrUnauthenticated))
}

func TestStartWorkflow(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	course := "CS-101"

	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "New course", RelatedCourse: &course})
	require.NoError(t, err)

	assert.Equal(t, tpl.Steps[0].ID, inst.CurrentStep)
	assert.Equal(t, inst.InitiatedDate.Add(14*24*time.Hour), inst.DueDate)
	assert.Equal(t, adminUser.ID, inst.InitiatedBy)
	assert.Equal(t, models.InstanceStatusActive, inst.Status)
	assert.Equal(t, "CS-101", *inst.RelatedCourse)
	assert.Empty(t, inst.CompletedSteps)
	assert.NotNil(t, inst.CompletedSteps)
	assert.Empty(t, inst.Approvals)
	assert.Empty(t, inst.Comments)
	assert.Empty(t, inst.AssociatedDocuments)
	require.Len(t, inst.AuditTrail, 1)
	assert.Equal(t, models.AuditActionWorkflowStarted, inst.AuditTrail[0].Action)
	assert.Equal(t, `Workflow "New course" started from template "Course Creation Workflow"`, inst.AuditTrail[0].Details)
	assert.Len(t, store.Snapshot().Instances, 1)
}

func TestStartWorkflowErrors(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()

	_, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: "x", Title: "t"})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	tpl := loggedInWithTemplate(t, svc)
	_, err = svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: "missing", Title: "t"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	empty := []models.WorkflowStep{}
	_, err = svc.UpdateTemplate(ctx, tpl.ID, dto.TemplatePatch{Steps: &empty})
	require.NoError(t, err)
	_, err = svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "t"})
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionViolation))
	assert.Empty(t, store.Snapshot().Instances)
}

func TestStartWorkflowAcceptsEmptyTitle(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)

	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	assert.Empty(t, inst.Title)
}

func TestSessionCheckedBeforePayload(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)
	svc.SetCurrentUser(ctx, nil)
	before := store.Snapshot()

	_, err = svc.CreateTemplate(ctx, dto.CreateTemplateRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	zero := 0
	_, err = svc.UpdateTemplate(ctx, tpl.ID, dto.TemplatePatch{TimelineInDays: &zero})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	_, err = svc.StartWorkflow(ctx, dto.StartWorkflowRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	_, err = svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: "skip"})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	_, err = svc.RequestApproval(ctx, inst.ID, "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	_, err = svc.ProcessApproval(ctx, "missing", dto.ProcessApprovalRequest{Decision: models.ApprovalStatusPending})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	assert.Equal(t, before, store.Snapshot())
}

func TestNewValidatorRegistersRoleRule(t *testing.T) {
	validate, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, validate.Var(string(models.RoleStakeholder), "role"))
	assert.Error(t, validate.Var("registrar", "role"))
}

func TestNewWorkflowServiceUsesSuppliedValidator(t *testing.T) {
	validate, err := NewValidator()
	require.NoError(t, err)

	svc, err := NewWorkflowService(repository.NewWorkflowStore(), validate, nil)
	require.NoError(t, err)
	assert.Same(t, validate, svc.validator)
}

func TestProcessStepComplete(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	out, err := svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{
		Action: models.StepActionComplete, Comments: "looks good", Documents: []string{"doc1"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusCompleted, out.Status)
	assert.Equal(t, []string{"step1"}, out.CompletedSteps)
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "looks good", out.Comments[0].Content)
	assert.Equal(t, adminUser.ID, out.Comments[0].UserID)
	assert.Equal(t, []string{"doc1"}, out.AssociatedDocuments)
	require.Len(t, out.AuditTrail, 2)
	assert.Equal(t, "STEP_COMPLETE", out.AuditTrail[1].Action)
	assert.Equal(t, `Step "step1" complete`, out.AuditTrail[1].Details)
}

func TestProcessStepDuplicateCompleteAppendsTwice(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	complete := dto.ProcessStepRequest{Action: models.StepActionComplete}
	_, err = svc.ProcessStep(ctx, inst.ID, "step1", complete)
	require.NoError(t, err)
	out, err := svc.ProcessStep(ctx, inst.ID, "step1", complete)
	require.NoError(t, err)

	assert.Equal(t, []string{"step1", "step1"}, out.CompletedSteps)
}

func TestProcessStepDoesNotAdvanceCurrentStep(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	for _, step := range []string{"step1", "step2", "not-in-template"} {
		_, err = svc.ProcessStep(ctx, inst.ID, step, dto.ProcessStepRequest{Action: models.StepActionComplete})
		require.NoError(t, err)
	}
	out, err := svc.GetInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "step1", out.CurrentStep)
	assert.Equal(t, []string{"step1", "step2", "not-in-template"}, out.CompletedSteps)
}

func TestProcessStepStatusTransitions(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	out, err := svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: models.StepActionReject})
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusRejected, out.Status)
	assert.Empty(t, out.CompletedSteps)
	assert.Empty(t, out.Comments)

	out, err = svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: models.StepActionRequestChanges, Documents: []string{"a", "a"}})
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusActive, out.Status)
	assert.Equal(t, []string{"a", "a"}, out.AssociatedDocuments)
	assert.Equal(t, "STEP_REQUEST_CHANGES", out.AuditTrail[len(out.AuditTrail)-1].Action)
}

func TestProcessStepErrors(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)
	before := store.Snapshot()

	_, err = svc.ProcessStep(ctx, "missing", "step1", dto.ProcessStepRequest{Action: models.StepActionComplete})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: "skip"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	svc.SetCurrentUser(ctx, nil)
	_, err = svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: models.StepActionComplete})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))

	assert.Equal(t, before.Instances, store.Snapshot().Instances)
}

func TestRequestAndProcessApproval(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	approval, err := svc.RequestApproval(ctx, inst.ID, "stakeholder-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusPending, approval.Status)
	assert.Equal(t, adminUser.ID, approval.RequestedBy)
	assert.Equal(t, "stakeholder-1", approval.RequestedFrom)
	assert.Empty(t, approval.Comments)

	stored, err := svc.GetInstance(ctx, inst.ID)
	require.NoError(t, err)
	require.Len(t, stored.Approvals, 1)
	assert.Equal(t, "APPROVAL_REQUESTED", stored.AuditTrail[1].Action)
	assert.Equal(t, "Approval requested from user stakeholder-1", stored.AuditTrail[1].Details)

	result, err := svc.ProcessApproval(ctx, approval.ID, dto.ProcessApprovalRequest{Decision: models.ApprovalStatusApproved, Comments: "ship it"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, result.Approval.Status)
	assert.Equal(t, "ship it", result.Approval.Comments)
	assert.True(t, result.Approval.Date.After(approval.Date))
	assert.Equal(t, inst.ID, result.Instance.ID)
	assert.Equal(t, result.Approval, result.Instance.Approvals[0])
	last := result.Instance.AuditTrail[len(result.Instance.AuditTrail)-1]
	assert.Equal(t, "APPROVAL_APPROVED", last.Action)
	assert.Equal(t, "Approval approved by admin-1", last.Details)
}

func TestRequestApprovalUnknownInstance(t *testing.T) {
	svc, store := newWorkflowServiceForTest(t)
	ctx := context.Background()
	loggedInWithTemplate(t, svc)

	_, err := svc.RequestApproval(ctx, "missing", "stakeholder-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, store.Snapshot().Instances)

	svc.SetCurrentUser(ctx, nil)
	_, err = svc.RequestApproval(ctx, "missing", "stakeholder-1")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
}

func TestProcessApprovalFindsApprovalBeyondFirstInstance(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: title})
		require.NoError(t, err)
		ids = append(ids, inst.ID)
	}
	_, err := svc.RequestApproval(ctx, ids[0], "u1")
	require.NoError(t, err)
	target, err := svc.RequestApproval(ctx, ids[2], "u2")
	require.NoError(t, err)

	result, err := svc.ProcessApproval(ctx, target.ID, dto.ProcessApprovalRequest{Decision: models.ApprovalStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, ids[2], result.Instance.ID)
	assert.Equal(t, models.ApprovalStatusRejected, result.Approval.Status)
	assert.Equal(t, "", result.Approval.Comments)

	first, err := svc.GetInstance(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusPending, first.Approvals[0].Status)
	assert.Len(t, first.AuditTrail, 2)
}

func TestProcessApprovalErrors(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	loggedInWithTemplate(t, svc)

	_, err := svc.ProcessApproval(ctx, "missing", dto.ProcessApprovalRequest{Decision: models.ApprovalStatusApproved})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.ProcessApproval(ctx, "missing", dto.ProcessApprovalRequest{Decision: models.ApprovalStatusPending})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	svc.SetCurrentUser(ctx, nil)
	_, err = svc.ProcessApproval(ctx, "missing", dto.ProcessApprovalRequest{Decision: models.ApprovalStatusApproved})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
}

func TestHasPermission(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()

	assert.False(t, svc.HasPermission(ctx, models.RoleStudent))

	for _, role := range []models.Role{models.RoleAdmin, models.RoleInstructor, models.RoleStudent, models.RoleStakeholder} {
		svc.SetCurrentUser(ctx, &models.User{ID: "u", Role: role})
		assert.True(t, svc.HasPermission(ctx, models.RoleStudent), "role %s", role)
	}

	svc.SetCurrentUser(ctx, &studentUser)
	assert.False(t, svc.HasPermission(ctx, models.RoleInstructor))
	assert.False(t, svc.HasPermission(ctx, models.Role("registrar")))

	svc.SetCurrentUser(ctx, &adminUser)
	assert.True(t, svc.HasPermission(ctx, models.Role("registrar")))

	svc.SetCurrentUser(ctx, nil)
	assert.Nil(t, svc.CurrentUser(ctx))
	assert.False(t, svc.HasPermission(ctx, models.RoleStudent))
}

func TestSetCurrentUserCopiesValue(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	user := studentUser
	svc.SetCurrentUser(ctx, &user)
	user.Role = models.RoleAdmin

	assert.Equal(t, models.RoleStudent, svc.CurrentUser(ctx).Role)
}

func TestAuditTrailIsAppendOnly(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)
	inst, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "CS-101"})
	require.NoError(t, err)

	approval, err := svc.RequestApproval(ctx, inst.ID, "u1")
	require.NoError(t, err)

	mutations := []func() error{
		func() error {
			_, err := svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: models.StepActionRequestChanges, Comments: "fix"})
			return err
		},
		func() error {
			_, err := svc.RequestApproval(ctx, inst.ID, "u2")
			return err
		},
		func() error {
			_, err := svc.ProcessApproval(ctx, approval.ID, dto.ProcessApprovalRequest{Decision: models.ApprovalStatusApproved})
			return err
		},
		func() error {
			_, err := svc.ProcessStep(ctx, inst.ID, "step1", dto.ProcessStepRequest{Action: models.StepActionComplete})
			return err
		},
	}

	for _, mutate := range mutations {
		before, err := svc.GetInstance(ctx, inst.ID)
		require.NoError(t, err)
		require.NoError(t, mutate())
		after, err := svc.GetInstance(ctx, inst.ID)
		require.NoError(t, err)

		require.Len(t, after.AuditTrail, len(before.AuditTrail)+1)
		assert.Equal(t, before.AuditTrail, after.AuditTrail[:len(before.AuditTrail)])
	}
}

func TestEventRecorderSeesAppliedTransitions(t *testing.T) {
	recorder := &recorderStub{}
	svc, _ := newWorkflowServiceForTest(t, WithEventRecorder(recorder))
	ctx := context.Background()
	tpl := loggedInWithTemplate(t, svc)

	_, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: "missing", Title: "x"})
	require.Error(t, err)
	_, err = svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"TEMPLATE_CREATED", "WORKFLOW_STARTED"}, recorder.actions)
}

func TestEndToEndScenario(t *testing.T) {
	svc, _ := newWorkflowServiceForTest(t)
	ctx := context.Background()
	svc.SetCurrentUser(ctx, &adminUser)

	tpl, err := svc.CreateTemplate(ctx, twoStepTemplate(14))
	require.NoError(t, err)
	require.Len(t, tpl.Steps, 2)

	w, err := svc.StartWorkflow(ctx, dto.StartWorkflowRequest{TemplateID: tpl.ID, Title: "Intro to Biology"})
	require.NoError(t, err)

	w, err = svc.ProcessStep(ctx, w.ID, "step1", dto.ProcessStepRequest{
		Action:    models.StepActionComplete,
		Comments:  "looks good",
		Documents: []string{"doc1"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.InstanceStatusCompleted, w.Status)
	assert.Equal(t, []string{"step1"}, w.CompletedSteps)
	assert.Len(t, w.Comments, 1)
	assert.Equal(t, []string{"doc1"}, w.AssociatedDocuments)
	assert.Len(t, w.AuditTrail, 2)
}
