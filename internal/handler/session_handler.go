package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-workflow-api/internal/dto"
	"github.com/noah-isme/edu-workflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-workflow-api/pkg/errors"
	"github.com/noah-isme/edu-workflow-api/pkg/response"
)

type sessionService interface {
	CurrentUser(ctx context.Context) *models.User
	SetCurrentUser(ctx context.Context, user *models.User)
	HasPermission(ctx context.Context, required models.Role) bool
}

type userDirectory interface {
	List() []models.User
	FindByID(id string) (*models.User, bool)
}

// SessionHandler manages the process-wide session user.
type SessionHandler struct {
	service sessionService
	users   userDirectory
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service sessionService, users userDirectory) *SessionHandler {
	return &SessionHandler{service: service, users: users}
}

// Current godoc
// @Summary Show the session user
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	user := h.service.CurrentUser(c.Request.Context())
	if user == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Set godoc
// @Summary Select the session user
// @Description No credential check is made; any directory user may be selected.
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.SetSessionRequest true "User selection"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session [put]
func (h *SessionHandler) Set(c *gin.Context) {
	var req dto.SetSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	user, ok := h.users.FindByID(req.UserID)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "user not found"))
		return
	}
	h.service.SetCurrentUser(c.Request.Context(), user)
	response.JSON(c, http.StatusOK, user)
}

// Clear godoc
// @Summary Log out the session user
// @Tags Session
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Clear(c *gin.Context) {
	h.service.SetCurrentUser(c.Request.Context(), nil)
	response.NoContent(c)
}

// Permission godoc
// @Summary Check the session user against a role level
// @Tags Session
// @Produce json
// @Param role path string true "Required role"
// @Success 200 {object} response.Envelope
// @Router /session/permissions/{role} [get]
func (h *SessionHandler) Permission(c *gin.Context) {
	role := models.Role(c.Param("role"))
	response.JSON(c, http.StatusOK, dto.PermissionResponse{
		Role:    role,
		Granted: h.service.HasPermission(c.Request.Context(), role),
	})
}

// Users godoc
// @Summary List directory users
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *SessionHandler) Users(c *gin.Context) {
	users := h.users.List()
	response.JSON(c, http.StatusOK, users, map[string]interface{}{"total": len(users)})
}
