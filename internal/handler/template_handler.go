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

type templateService interface {
	ListTemplates(ctx context.Context) []models.WorkflowTemplate
	GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest) (*models.WorkflowTemplate, error)
	UpdateTemplate(ctx context.Context, id string, patch dto.TemplatePatch) (*models.WorkflowTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// TemplateHandler exposes workflow template endpoints.
type TemplateHandler struct {
	service templateService
}

// NewTemplateHandler builds a new handler.
func NewTemplateHandler(service templateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// List godoc
// @Summary List workflow templates
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	items := h.service.ListTemplates(c.Request.Context())
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Get a workflow template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	item, err := h.service.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create godoc
// @Summary Create a workflow template
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body dto.CreateTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	item, err := h.service.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Patch a workflow template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.TemplatePatch true "Fields to replace"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [patch]
func (h *TemplateHandler) Update(c *gin.Context) {
	var patch dto.TemplatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template patch"))
		return
	}
	item, err := h.service.UpdateTemplate(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a workflow template
// @Description Unknown ids are accepted; instances keep their template reference.
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
