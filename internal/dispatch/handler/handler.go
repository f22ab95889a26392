// Package handler exposes the dispatch service over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"onepath_dispatch_backend/internal/dispatch/service"
	"onepath_dispatch_backend/internal/dispatch/transport"
	"onepath_dispatch_backend/platform/httpkit"
	"onepath_dispatch_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the dispatch module.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new dispatch handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the dispatch routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.SubmitRequest)
	rg.POST("/:id/followups", h.SubmitFollowup)
	rg.GET("/:id/status", h.GetStatus)
	rg.DELETE("/:id", h.ClearSession)
}

// SubmitRequest handles POST /api/v1/dispatch/requests
func (h *Handler) SubmitRequest(c *gin.Context) {
	var req transport.SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.SubmitRequest(c.Request.Context(), req.Text, req.Metadata)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromResponse(resp))
}

// SubmitFollowup handles POST /api/v1/dispatch/requests/:id/followups
func (h *Handler) SubmitFollowup(c *gin.Context) {
	var req transport.SubmitFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.SubmitFollowup(c.Request.Context(), c.Param("id"), req.Text)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromResponse(resp))
}

// GetStatus handles GET /api/v1/dispatch/requests/:id/status
func (h *Handler) GetStatus(c *gin.Context) {
	report, err := h.svc.GetStatus(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromStatusReport(report))
}

// ClearSession handles DELETE /api/v1/dispatch/requests/:id
func (h *Handler) ClearSession(c *gin.Context) {
	requestID := c.Param("id")
	cleared, err := h.svc.ClearSession(c.Request.Context(), requestID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ClearResponse{RequestID: requestID, Cleared: cleared})
}
