package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/service/dashboard"
)

// DashboardHandler exposes the AQL audit dashboard over HTTP.
type DashboardHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(ctrl *dashboard.Controller, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{ctrl: ctrl, logger: logger}
}

// ListWorkOrders loads and returns the work order table for the given search
// term, bypassing the debouncer (this is the manual refresh path).
func (h *DashboardHandler) ListWorkOrders(c *gin.Context) {
	snapshot, err := h.ctrl.LoadWorkOrders(c.Request.Context(), c.Query("search"))
	if err != nil {
		// The snapshot already carries the error placeholder.
		c.JSON(http.StatusBadGateway, snapshot)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search schedules a debounced reload; the table refreshes once the input has
// been quiet for the configured window.
func (h *DashboardHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid search payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.ctrl.Search(req.Query)
	c.Status(http.StatusAccepted)
}

// Snapshot returns the currently published table state without triggering a load.
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

// ListUsers returns the cached inspector roster.
func (h *DashboardHandler) ListUsers(c *gin.Context) {
	users, err := h.ctrl.LoadUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading users", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

type submitAuditRequest struct {
	WorkOrder   string `json:"work_order" binding:"required"`
	AuditResult string `json:"audit_result"`
	InspectedBy string `json:"inspected_by"`
}

// SubmitAudit records the row's local selections and submits the decision.
func (h *DashboardHandler) SubmitAudit(c *gin.Context) {
	var req submitAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid audit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.AuditResult != "" {
		if err := h.ctrl.SetAuditResult(req.WorkOrder, req.AuditResult); err != nil {
			h.respondSubmitError(c, err)
			return
		}
	}
	if req.InspectedBy != "" {
		if err := h.ctrl.SetInspector(req.WorkOrder, req.InspectedBy); err != nil {
			h.respondSubmitError(c, err)
			return
		}
	}

	result, err := h.ctrl.SubmitAudit(c.Request.Context(), req.WorkOrder)
	if err != nil {
		h.respondSubmitError(c, err)
		return
	}

	if !result.Success() {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blankAuditRequest struct {
	WorkOrder string `json:"work_order" binding:"required"`
}

// CreateBlankAudit creates an empty audit document for a chosen work order.
func (h *DashboardHandler) CreateBlankAudit(c *gin.Context) {
	var req blankAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid blank audit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	name, err := h.ctrl.CreateBlankAudit(c.Request.Context(), req.WorkOrder)
	if err != nil {
		if errors.Is(err, dashboard.ErrWorkOrderRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"warning": err.Error()})
			return
		}
		h.logger.Error("failed creating blank audit", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create audit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"name": name})
}

func (h *DashboardHandler) respondSubmitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrAuditResultRequired),
		errors.Is(err, dashboard.ErrInvalidAuditResult):
		c.JSON(http.StatusBadRequest, gin.H{"warning": err.Error()})
	case errors.Is(err, dashboard.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"warning": err.Error()})
	case errors.Is(err, dashboard.ErrUnknownWorkOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed submitting audit", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to submit audit"})
	}
}
