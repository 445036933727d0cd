// Package handler exposes the client-facing notification endpoints.
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/httpkit"
)

type Handler struct {
	service *inapp.Service
}

func New(svc *inapp.Service) *Handler {
	return &Handler{service: svc}
}

type notificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	ActionURL *string   `json:"actionUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(n *inapp.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.service.List(c.Request.Context(), user.ID, unreadOnly, limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toResponse(n))
	}
	httpkit.OK(c, gin.H{"notifications": out})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	count, err := h.service.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid notification id"))
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), notificationID, user.ID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "notification marked as read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	count, err := h.service.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": count})
}

func (h *Handler) Delete(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid notification id"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), notificationID, user.ID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "notification deleted"})
}
