// Package handler exposes the quotes API: the public intake form, the
// client portal views, and the admin management surface.
package handler

import (
	"github.com/gin-gonic/gin"

	"agency_portal_backend/internal/pricing"
	"agency_portal_backend/internal/quotes/service"
	"agency_portal_backend/internal/quotes/transport"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/validator"
)

type Handler struct {
	service  *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{service: svc, validate: validate}
}

// Submit handles the public quote form. Anyone may submit; the owner account
// is resolved or provisioned by email.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	quote, err := h.service.Submit(c.Request.Context(), service.SubmitParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		ServiceType: req.ServiceType,
		PackageType: req.PackageType,
		AddonIDs:    req.AddonIDs,
		Currency:    req.Currency,
		Message:     req.Message,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	response := transport.ToQuoteResponse(quote)
	response.AdminNotes = nil
	httpkit.Created(c, response)
}

// Calculate prices a configuration without storing anything. Used by the
// public pricing widget.
func (h *Handler) Calculate(c *gin.Context) {
	var req transport.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	result, err := h.service.Preview(pricing.Input{
		ServiceType: req.ServiceType,
		PackageType: req.PackageType,
		AddonIDs:    req.AddonIDs,
		Currency:    req.Currency,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}
