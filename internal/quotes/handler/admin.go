package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency_portal_backend/internal/quotes/service"
	"agency_portal_backend/internal/quotes/transport"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/httpkit"
)

// List returns a filtered page of all quotes. Admin only.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	quotes, total, err := h.service.List(c.Request.Context(),
		c.Query("status"), c.Query("serviceType"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]transport.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, transport.ToQuoteResponse(q))
	}
	httpkit.OK(c, gin.H{"quotes": out, "total": total})
}

// UpdateStatus runs one lifecycle transition.
func (h *Handler) UpdateStatus(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid quote id"))
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	quote, summary, err := h.service.UpdateStatus(c.Request.Context(), quoteID, service.UpdatePatch{
		Status:       req.Status,
		AdminNotes:   req.AdminNotes,
		Notes:        req.Notes,
		TotalPrice:   req.TotalPrice,
		ValidUntil:   req.ValidUntil,
		ServiceType:  req.ServiceType,
		PackageType:  req.PackageType,
		TimelineDays: req.TimelineDays,
		Currency:     req.Currency,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{
		"quote":   transport.ToQuoteResponse(quote),
		"message": "quote " + summary,
	})
}

// BulkUpdateStatus applies one transition to many quotes at once.
func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	var req transport.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	updated, items, err := h.service.BulkUpdateStatus(c.Request.Context(), req.IDs, req.Status, req.AdminNotes)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": updated, "items": items})
}

// BulkConvert converts approved quotes into projects.
func (h *Handler) BulkConvert(c *gin.Context) {
	var req transport.BulkConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	converted, items, err := h.service.ConvertApproved(c.Request.Context(), req.IDs)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"converted": converted, "items": items})
}

// Delete removes a quote without a project.
func (h *Handler) Delete(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid quote id"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), quoteID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "quote deleted"})
}

// Stats returns the cached quote statistics for the dashboard.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, stats)
}
