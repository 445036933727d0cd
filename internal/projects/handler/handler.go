// Package handler exposes project endpoints for clients and admins.
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authservice "agency_portal_backend/internal/auth/service"
	"agency_portal_backend/internal/projects/repository"
	"agency_portal_backend/internal/projects/service"
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

type milestoneDTO struct {
	Title     string `json:"title" validate:"required,max=120"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress" validate:"min=0,max=100"`
}

type updateProjectRequest struct {
	Title            *string        `json:"title" validate:"omitempty,min=2,max=200"`
	Description      *string        `json:"description" validate:"omitempty,max=2000"`
	Status           *string        `json:"status"`
	StatusNotes      *string        `json:"statusNotes" validate:"omitempty,max=2000"`
	Progress         *int           `json:"progress"`
	Milestones       []milestoneDTO `json:"milestones" validate:"omitempty,dive"`
	StartDate        *time.Time     `json:"startDate"`
	EstimatedEndDate *time.Time     `json:"estimatedEndDate"`
}

type projectResponse struct {
	ID               uuid.UUID              `json:"id"`
	QuoteID          *uuid.UUID             `json:"quoteId,omitempty"`
	UserID           uuid.UUID              `json:"userId"`
	Title            string                 `json:"title"`
	Description      *string                `json:"description,omitempty"`
	ServiceType      string                 `json:"serviceType"`
	Status           string                 `json:"status"`
	StatusNotes      *string                `json:"statusNotes,omitempty"`
	Progress         int                    `json:"progress"`
	Budget           int64                  `json:"budget"`
	Currency         string                 `json:"currency"`
	Milestones       []repository.Milestone `json:"milestones"`
	StartDate        *time.Time             `json:"startDate,omitempty"`
	EstimatedEndDate *time.Time             `json:"estimatedEndDate,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

func toResponse(p *repository.Project) projectResponse {
	milestones := p.Milestones
	if milestones == nil {
		milestones = []repository.Milestone{}
	}
	return projectResponse{
		ID:               p.ID,
		QuoteID:          p.QuoteID,
		UserID:           p.UserID,
		Title:            p.Title,
		Description:      p.Description,
		ServiceType:      p.ServiceType,
		Status:           string(p.Status),
		StatusNotes:      p.StatusNotes,
		Progress:         p.Progress,
		Budget:           p.Budget,
		Currency:         p.Currency,
		Milestones:       milestones,
		StartDate:        p.StartDate,
		EstimatedEndDate: p.EstimatedEndDate,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ListMine returns the authenticated client's projects.
func (h *Handler) ListMine(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	projects, err := h.service.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toResponse(p))
	}
	httpkit.OK(c, gin.H{"projects": out})
}

// Get returns one project, owner-scoped unless the requester is an admin.
func (h *Handler) Get(c *gin.Context) {
	user, ok := httpkit.MustCurrentUser(c)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid project id"))
		return
	}
	project, err := h.service.Get(c.Request.Context(), projectID, user.ID, user.HasRole(authservice.RoleAdmin))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(project))
}

// List returns every project for admins, filterable by status.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	projects, total, err := h.service.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toResponse(p))
	}
	httpkit.OK(c, gin.H{"projects": out, "total": total})
}

// Update patches a project. Admin only.
func (h *Handler) Update(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid project id"))
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	params := service.UpdateParams{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		StatusNotes:      req.StatusNotes,
		Progress:         req.Progress,
		StartDate:        req.StartDate,
		EstimatedEndDate: req.EstimatedEndDate,
	}
	if req.Milestones != nil {
		params.Milestones = make([]repository.Milestone, 0, len(req.Milestones))
		for _, m := range req.Milestones {
			params.Milestones = append(params.Milestones, repository.Milestone{
				Title:     m.Title,
				Completed: m.Completed,
				Progress:  m.Progress,
			})
		}
	}

	project, err := h.service.Update(c.Request.Context(), projectID, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(project))
}
