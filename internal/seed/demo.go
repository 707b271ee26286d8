// Package seed holds the demo directory and starter templates loaded when
// SEED_DEMO_DATA is enabled.
package seed

import (
	"time"

	"github.com/noah-isme/edu-workflow-api/internal/models"
)

// Users returns the demo user directory.
func Users() []models.User {
	return []models.User{
		{ID: "admin-1", Name: "Senior Administrator", Email: "senior.admin@dna-edu.com", Role: models.RoleAdmin, Department: "Administration", AccessLevel: 5},
		{ID: "admin-2", Name: "Junior Administrator", Email: "junior.admin@dna-edu.com", Role: models.RoleAdmin, Department: "Administration", AccessLevel: 3},
		{ID: "student-1", Name: "John Smith", Email: "john.smith@student.dna-edu.com", Role: models.RoleStudent, Department: "Computer Science", AccessLevel: 1},
		{ID: "student-2", Name: "Emma Johnson", Email: "emma.johnson@student.dna-edu.com", Role: models.RoleStudent, Department: "Biology", AccessLevel: 1},
		{ID: "student-3", Name: "Michael Chen", Email: "michael.chen@student.dna-edu.com", Role: models.RoleStudent, Department: "Physics", AccessLevel: 1},
		{ID: "student-4", Name: "Sarah Williams", Email: "sarah.williams@student.dna-edu.com", Role: models.RoleStudent, Department: "Mathematics", AccessLevel: 1},
		{ID: "student-5", Name: "David Rodriguez", Email: "david.rodriguez@student.dna-edu.com", Role: models.RoleStudent, Department: "Chemistry", AccessLevel: 1},
	}
}

// Templates returns the starter templates.
func Templates() []models.WorkflowTemplate {
	return []models.WorkflowTemplate{
		{
			ID:             "template-1",
			Name:           "Course Creation Workflow",
			Description:    "Standard process for creating and approving new courses",
			CreatedBy:      "admin-1",
			CreatedDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			TimelineInDays: 30,
			Steps: []models.WorkflowStep{
				step("step-1", "Course Proposal", "Initial course proposal submission", "All required documents uploaded",
					[]models.Role{models.RoleInstructor}, []string{"course-outline", "learning-objectives"}),
				step("step-2", "Department Review", "Review by department head", "Department head approval",
					[]models.Role{models.RoleAdmin}, nil, "step-1"),
				step("step-3", "Curriculum Committee Review", "Final review and approval", "Committee approval",
					[]models.Role{models.RoleStakeholder}, nil, "step-2"),
			},
			RequiredApprovals: []string{"department-head", "committee-chair"},
			NotificationSettings: []models.NotificationSetting{
				{Type: models.NotificationTypeEmail, Trigger: models.NotificationTriggerStepComplete, Roles: []models.Role{models.RoleAdmin, models.RoleInstructor}},
			},
		},
		{
			ID:             "template-2",
			Name:           "Student Registration Process",
			Description:    "Workflow for student application and enrollment",
			CreatedBy:      "admin-2",
			CreatedDate:    time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			TimelineInDays: 14,
			Steps: []models.WorkflowStep{
				step("step-1", "Application Submission", "Student submits application", "All documents submitted",
					[]models.Role{models.RoleStudent}, []string{"application-form", "transcripts"}),
				step("step-2", "Application Review", "Review of student application", "Application reviewed",
					[]models.Role{models.RoleAdmin}, nil, "step-1"),
			},
			RequiredApprovals: []string{"registrar"},
			NotificationSettings: []models.NotificationSetting{
				{Type: models.NotificationTypeEmail, Trigger: models.NotificationTriggerApprovalNeeded, Roles: []models.Role{models.RoleAdmin}},
			},
		},
	}
}

func step(id, name, description, criteria string, roles []models.Role, docs []string, dependsOn ...string) models.WorkflowStep {
	if docs == nil {
		docs = []string{}
	}
	if dependsOn == nil {
		dependsOn = []string{}
	}
	return models.WorkflowStep{
		ID:                 id,
		Name:               name,
		Description:        description,
		AssignedRoles:      roles,
		RequiredDocuments:  docs,
		Status:             models.StepStatusNotStarted,
		CompletionCriteria: criteria,
		DependsOnSteps:     dependsOn,
	}
}
