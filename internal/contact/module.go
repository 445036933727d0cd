package contact

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

type Module struct {
	service  *Service
	validate *validator.Validator
}

func NewModule(db *pgxpool.Pool, bus events.Bus, log *logger.Logger, validate *validator.Validator) *Module {
	return &Module{
		service:  NewService(NewRepository(db), bus, log),
		validate: validate,
	}
}

func (m *Module) Name() string { return "contact" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/public/contact", m.submit)

	adminGroup := ctx.Admin.Group("/contact-messages")
	{
		adminGroup.GET("", m.list)
		adminGroup.PATCH("/:id/read", m.markRead)
		adminGroup.DELETE("/:id", m.delete)
	}
}

type submitRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Company string `json:"company" validate:"omitempty,max=120"`
	Message string `json:"message" validate:"required,min=5,max=4000"`
}

type messageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(m *Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Company:   m.Company,
		Message:   m.Body,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

func (m *Module) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := m.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	message, err := m.service.Submit(c.Request.Context(), SubmitParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Body:    req.Message,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, toResponse(message))
}

func (m *Module) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, total, err := m.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]messageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toResponse(msg))
	}
	httpkit.OK(c, gin.H{"messages": out, "total": total})
}

func (m *Module) markRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid message id"))
		return
	}
	if err := m.service.MarkRead(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "marked as read"})
}

func (m *Module) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid message id"))
		return
	}
	if err := m.service.Delete(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "deleted"})
}
