package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-workflow-api/internal/dto"
	"github.com/noah-isme/edu-workflow-api/internal/models"
	"github.com/noah-isme/edu-workflow-api/internal/service"
	appErrors "github.com/noah-isme/edu-workflow-api/pkg/errors"
	"github.com/noah-isme/edu-workflow-api/pkg/response"
)

type instanceService interface {
	ListInstances(ctx context.Context) []models.WorkflowInstance
	GetInstance(ctx context.Context, id string) (*models.WorkflowInstance, error)
	StartWorkflow(ctx context.Context, req dto.StartWorkflowRequest) (*models.WorkflowInstance, error)
	ProcessStep(ctx context.Context, instanceID, stepID string, req dto.ProcessStepRequest) (*models.WorkflowInstance, error)
	RequestApproval(ctx context.Context, instanceID, approverID string) (*models.Approval, error)
	ProcessApproval(ctx context.Context, approvalID string, req dto.ProcessApprovalRequest) (*dto.ApprovalResult, error)
}

type auditExporter interface {
	Export(ctx context.Context, instanceID string, format service.ExportFormat) (*dto.ExportResult, error)
}

// InstanceHandler exposes workflow instance, step and approval endpoints.
type InstanceHandler struct {
	service  instanceService
	exporter auditExporter
}

// NewInstanceHandler builds a new handler. exporter may be nil, in which case
// audit exports are unavailable.
func NewInstanceHandler(service instanceService, exporter auditExporter) *InstanceHandler {
	return &InstanceHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List workflow instances
// @Tags Instances
// @Produce json
// @Param status query string false "Filter by instance status"
// @Success 200 {object} response.Envelope
// @Router /instances [get]
func (h *InstanceHandler) List(c *gin.Context) {
	items := h.service.ListInstances(c.Request.Context())
	if status := c.Query("status"); status != "" {
		filtered := make([]models.WorkflowInstance, 0, len(items))
		for _, inst := range items {
			if string(inst.Status) == status {
				filtered = append(filtered, inst)
			}
		}
		items = filtered
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Get a workflow instance
// @Tags Instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instances/{id} [get]
func (h *InstanceHandler) Get(c *gin.Context) {
	item, err := h.service.GetInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Start godoc
// @Summary Start a workflow from a template
// @Tags Instances
// @Accept json
// @Produce json
// @Param payload body dto.StartWorkflowRequest true "Start payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /instances [post]
func (h *InstanceHandler) Start(c *gin.Context) {
	var req dto.StartWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid workflow payload"))
		return
	}
	item, err := h.service.StartWorkflow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ProcessStep godoc
// @Summary Record a step outcome
// @Tags Instances
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param stepId path string true "Step ID"
// @Param payload body dto.ProcessStepRequest true "Step action"
// @Success 200 {object} response.Envelope
// @Router /instances/{id}/steps/{stepId} [post]
func (h *InstanceHandler) ProcessStep(c *gin.Context) {
	var req dto.ProcessStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid step payload"))
		return
	}
	item, err := h.service.ProcessStep(c.Request.Context(), c.Param("id"), c.Param("stepId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// RequestApproval godoc
// @Summary Request an approval on an instance
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param payload body dto.RequestApprovalRequest true "Approver"
// @Success 201 {object} response.Envelope
// @Router /instances/{id}/approvals [post]
func (h *InstanceHandler) RequestApproval(c *gin.Context) {
	var req dto.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval request"))
		return
	}
	approval, err := h.service.RequestApproval(c.Request.Context(), c.Param("id"), req.ApproverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, approval)
}

// DecideApproval godoc
// @Summary Approve or reject a pending approval
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path string true "Approval ID"
// @Param payload body dto.ProcessApprovalRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /approvals/{id}/decision [post]
func (h *InstanceHandler) DecideApproval(c *gin.Context) {
	var req dto.ProcessApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval decision"))
		return
	}
	result, err := h.service.ProcessApproval(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ExportAudit godoc
// @Summary Download an instance audit trail
// @Tags Instances
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Instance ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /instances/{id}/audit/export [get]
func (h *InstanceHandler) ExportAudit(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.New("EXPORT_UNAVAILABLE", http.StatusServiceUnavailable, "audit export is not configured"))
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), c.Param("id"), service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
