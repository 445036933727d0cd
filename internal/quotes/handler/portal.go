package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authservice "agency_portal_backend/internal/auth/service"
	"agency_portal_backend/internal/quotes/transport"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/httpkit"
)

// ListMine returns the authenticated client's quotes. Admin notes are never
// exposed to clients.
func (h *Handler) ListMine(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	quotes, err := h.service.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]transport.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		response := transport.ToQuoteResponse(q)
		response.AdminNotes = nil
		out = append(out, response)
	}
	httpkit.OK(c, gin.H{"quotes": out})
}

// Get returns one quote, owner-scoped unless the requester is an admin.
func (h *Handler) Get(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid quote id"))
		return
	}

	isAdmin := user.HasRole(authservice.RoleAdmin)
	quote, err := h.service.Get(c.Request.Context(), quoteID, user.ID, isAdmin)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	response := transport.ToQuoteResponse(quote)
	if !isAdmin {
		response.AdminNotes = nil
	}
	httpkit.OK(c, response)
}
