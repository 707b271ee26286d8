package dto

import "github.com/noah-isme/edu-workflow-api/internal/models"

// SetSessionRequest selects a directory user as the session user.
type SetSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// PermissionResponse reports the outcome of a permission lookup.
type PermissionResponse struct {
	Role    models.Role `json:"role"`
	Granted bool        `json:"granted"`
}
