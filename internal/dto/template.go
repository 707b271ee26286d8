package dto

import "github.com/noah-isme/edu-workflow-api/internal/models"

// CreateTemplateRequest carries a new template definition. Identity and
// authorship fields are assigned by the service.
type CreateTemplateRequest struct {
	Name                 string                       `json:"name" validate:"required"`
	Description          string                       `json:"description"`
	Steps                []models.WorkflowStep        `json:"steps" validate:"dive"`
	RequiredApprovals    []string                     `json:"requiredApprovals"`
	TimelineInDays       int                          `json:"timelineInDays" validate:"gt=0"`
	NotificationSettings []models.NotificationSetting `json:"notificationSettings" validate:"dive"`
}

// TemplatePatch lists the template fields to replace. Nil fields are left
// untouched; non-nil slices replace the stored slice entirely.
type TemplatePatch struct {
	Name                 *string                       `json:"name,omitempty" validate:"omitempty,min=1"`
	Description          *string                       `json:"description,omitempty"`
	Steps                *[]models.WorkflowStep        `json:"steps,omitempty" validate:"omitempty,dive"`
	RequiredApprovals    *[]string                     `json:"requiredApprovals,omitempty"`
	TimelineInDays       *int                          `json:"timelineInDays,omitempty" validate:"omitempty,gt=0"`
	NotificationSettings *[]models.NotificationSetting `json:"notificationSettings,omitempty" validate:"omitempty,dive"`
}

// Apply writes the present fields onto t.
func (p TemplatePatch) Apply(t *models.WorkflowTemplate) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Steps != nil {
		t.Steps = append([]models.WorkflowStep{}, *p.Steps...)
	}
	if p.RequiredApprovals != nil {
		t.RequiredApprovals = append([]string{}, *p.RequiredApprovals...)
	}
	if p.TimelineInDays != nil {
		t.TimelineInDays = *p.TimelineInDays
	}
	if p.NotificationSettings != nil {
		t.NotificationSettings = append([]models.NotificationSetting{}, *p.NotificationSettings...)
	}
}
