package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/profitum/dossier-engine/internal/application/service"
	appwf "github.com/profitum/dossier-engine/internal/application/workflow"
	"github.com/profitum/dossier-engine/internal/domain/workflow"
	"github.com/profitum/dossier-engine/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	dossierService    service.DossierService
	assignmentService service.AssignmentService
	reportService     service.ReportService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	dossierService service.DossierService,
	assignmentService service.AssignmentService,
	reportService service.ReportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		dossierService:    dossierService,
		assignmentService: assignmentService,
		reportService:     reportService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a stable machine-readable code alongside the message
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreateDossierRequest represents the dossier creation body
type CreateDossierRequest struct {
	ClientID      string  `json:"client_id" binding:"required"`
	ProduitID     string  `json:"produit_id" binding:"required"`
	MontantEstime float64 `json:"montant_estime"`
}

// TransitionRequest represents the transition body
type TransitionRequest struct {
	Role    string                 `json:"role" binding:"required"`
	Target  string                 `json:"target" binding:"required"`
	Payload appwf.TransitionPayload `json:"payload"`
}

// ExpertRequest represents an assignment action body
type ExpertRequest struct {
	ExpertID string `json:"expert_id" binding:"required"`
}

// AttachDocumentRequest links a storage reference to a requested slot
type AttachDocumentRequest struct {
	DocumentRefID string `json:"document_ref_id" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateDossier handles POST /api/dossiers
func (h *Handlers) CreateDossier(c *gin.Context) {
	var req CreateDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if err := utils.ValidateIdentifier("client_id", req.ClientID); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if err := utils.ValidateIdentifier("produit_id", req.ProduitID); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if err := utils.ValidateAmount(req.MontantEstime); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	d, err := h.dossierService.CreateDossier(c.Request.Context(), req.ClientID, req.ProduitID, req.MontantEstime)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    d,
	})
}

// GetDossier handles GET /api/dossiers/:id
func (h *Handlers) GetDossier(c *gin.Context) {
	d, err := h.dossierService.GetDossier(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    d,
	})
}

// GetStatusView handles GET /api/dossiers/:id/view?role=
func (h *Handlers) GetStatusView(c *gin.Context) {
	role := workflow.Role(c.Query("role"))
	if !role.IsValid() {
		h.badRequest(c, "unknown role")
		return
	}

	view, err := h.dossierService.GetStatusView(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// GetHistory handles GET /api/dossiers/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	records, err := h.dossierService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// SignCharte handles POST /api/dossiers/:id/charte
func (h *Handlers) SignCharte(c *gin.Context) {
	if err := h.dossierService.SignCharte(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RequestTransition handles POST /api/dossiers/:id/transitions
func (h *Handlers) RequestTransition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	req.Payload.Message = utils.SanitizeString(req.Payload.Message)
	req.Payload.AuditSummary = utils.SanitizeString(req.Payload.AuditSummary)
	for i, finding := range req.Payload.AuditFindings {
		req.Payload.AuditFindings[i] = utils.SanitizeString(finding)
	}

	view, err := h.dossierService.RequestTransition(
		c.Request.Context(),
		c.Param("id"),
		workflow.Role(req.Role),
		workflow.Status(req.Target),
		req.Payload,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// AttachDocument handles POST /api/dossiers/:id/documents/:doc_id/attach
func (h *Handlers) AttachDocument(c *gin.Context) {
	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	err := h.dossierService.AttachRequestedDocument(
		c.Request.Context(), c.Param("id"), c.Param("doc_id"), req.DocumentRefID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ProposeExpert handles POST /api/dossiers/:id/expert/propose
func (h *Handlers) ProposeExpert(c *gin.Context) {
	var req ExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	view, err := h.assignmentService.ProposeExpert(c.Request.Context(), c.Param("id"), req.ExpertID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// AcceptAssignment handles POST /api/dossiers/:id/expert/accept
func (h *Handlers) AcceptAssignment(c *gin.Context) {
	var req ExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	view, err := h.assignmentService.AcceptAssignment(c.Request.Context(), c.Param("id"), req.ExpertID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// DeclineAssignment handles POST /api/dossiers/:id/expert/decline
func (h *Handlers) DeclineAssignment(c *gin.Context) {
	var req ExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	view, err := h.assignmentService.DeclineAssignment(c.Request.Context(), c.Param("id"), req.ExpertID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// GenerateReport handles POST /api/dossiers/:id/report
func (h *Handlers) GenerateReport(c *gin.Context) {
	path, err := h.reportService.GenerateAuditReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"report_path": path},
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   &ErrorBody{Code: "bad_request", Message: msg},
	})
}

// writeError maps service errors to HTTP status codes and stable error codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	var reqErr *workflow.RequirementsError

	switch {
	case errors.Is(err, service.ErrDossierNotFound):
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   &ErrorBody{Code: "not_found", Message: err.Error()},
		})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   &ErrorBody{Code: "incomplete_requirements", Message: err.Error(), Missing: reqErr.Missing},
		})
	case errors.Is(err, workflow.ErrIncompleteRequirements):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   &ErrorBody{Code: "incomplete_requirements", Message: err.Error()},
		})
	case errors.Is(err, workflow.ErrConcurrentModification):
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   &ErrorBody{Code: "concurrent_modification", Message: err.Error()},
		})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   &ErrorBody{Code: "invalid_transition", Message: err.Error()},
		})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   &ErrorBody{Code: "internal", Message: "internal error"},
		})
	}
}
