package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/domain/models"
	"github.com/cognitionx/trackerx/internal/hierarchy"
	"github.com/cognitionx/trackerx/internal/service/cancellation"
)

// OrderHandler exposes the tracking order hierarchy engine and the
// cancellation flow over HTTP.
type OrderHandler struct {
	engine *hierarchy.Engine
	cancel *cancellation.Service
	logger *zap.Logger
}

// NewOrderHandler constructs the HTTP handler adapter.
func NewOrderHandler(engine *hierarchy.Engine, cancel *cancellation.Service, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{engine: engine, cancel: cancel, logger: logger}
}

type optionsRequest struct {
	Order     models.TrackingOrder `json:"order" binding:"required"`
	EditedRow string               `json:"edited_row"`
}

// ComponentOptions recomputes the per-row dropdown choices for a posted
// component list. Called after any add, rename, or removal.
func (h *OrderHandler) ComponentOptions(c *gin.Context) {
	var req optionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid options payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opts := h.engine.OnComponentNameChanged(&req.Order, req.EditedRow)
	c.JSON(http.StatusOK, gin.H{
		"parent_options":        opts.Parent,
		"operation_map_options": opts.OperationMap,
	})
}

// ValidateOrder checks that the posted order forms a well-formed component
// forest and that its bundle configuration adds up.
func (h *OrderHandler) ValidateOrder(c *gin.Context) {
	var order models.TrackingOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		h.logger.Warn("invalid order payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	hierarchy.NormalizeSingleUnit(&order)
	if err := hierarchy.ValidateOrder(&order); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "order": order})
}

type parentCheckRequest struct {
	Order  models.TrackingOrder `json:"order" binding:"required"`
	RowID  string               `json:"row_id" binding:"required"`
	Parent string               `json:"parent"`
}

// CheckParent decides whether a proposed parent assignment is legal, walking
// the ancestry to reject cycles before the selection is persisted.
func (h *OrderHandler) CheckParent(c *gin.Context) {
	var req parentCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid parent check payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := hierarchy.CheckParentAssignment(&req.Order, req.RowID, req.Parent); err != nil {
		c.JSON(http.StatusOK, gin.H{"allowed": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowed": true})
}

// ReferencePlaceholder returns the hint text for the reference order number input.
func (h *OrderHandler) ReferencePlaceholder(c *gin.Context) {
	t := models.ReferenceOrderType(c.Query("type"))
	c.JSON(http.StatusOK, gin.H{"placeholder": hierarchy.ReferenceNumberPlaceholder(t)})
}

type cancelRequest struct {
	BundleID  string `json:"bundle_id" binding:"required"`
	Doctype   string `json:"doctype" binding:"required"`
	Confirmed bool   `json:"confirmed"`
}

// CancelOrder runs the confirm-then-cancel flow. The first call may come back
// with needs_confirmation and the server's message; the caller repeats the
// request with confirmed=true to proceed. Declining performs no mutation.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	name := c.Param("name")

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid cancel payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var pendingMessage string
	confirm := func(message string) bool {
		pendingMessage = message
		return req.Confirmed
	}

	outcome, err := h.cancel.Cancel(c.Request.Context(), req.BundleID, req.Doctype, name, confirm)
	if err != nil {
		h.logger.Error("cancellation failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to cancel document"})
		return
	}

	if outcome == cancellation.OutcomeDeclined {
		c.JSON(http.StatusOK, gin.H{
			"outcome":            string(outcome),
			"needs_confirmation": true,
			"message":            pendingMessage,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": string(outcome)})
}
