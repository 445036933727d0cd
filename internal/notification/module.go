// Package notification wires in-app notifications and reacts to domain
// events with email delivery. Every effect here is best-effort: failures are
// logged, never propagated to the operation that raised the event.
package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"agency_portal_backend/internal/catalog"
	domainevents "agency_portal_backend/internal/events"
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/notification/handler"
	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/internal/scheduler"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
)

type Module struct {
	service  *inapp.Service
	repo     *inapp.Repository
	handler  *handler.Handler
	enqueuer scheduler.Enqueuer
	log      *logger.Logger
}

func NewModule(db *pgxpool.Pool, enqueuer scheduler.Enqueuer, log *logger.Logger) *Module {
	repo := inapp.NewRepository(db)
	svc := inapp.NewService(repo, log)
	return &Module{
		service:  svc,
		repo:     repo,
		handler:  handler.New(svc),
		enqueuer: enqueuer,
		log:      log,
	}
}

func (m *Module) Name() string { return "notification" }

// Service exposes in-app notification delivery for the quote lifecycle.
func (m *Module) Service() *inapp.Service { return m.service }

// Repository exposes the repository for background cleanup tasks.
func (m *Module) Repository() *inapp.Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	{
		group.GET("", m.handler.List)
		group.GET("/unread-count", m.handler.UnreadCount)
		group.PATCH("/:id/read", m.handler.MarkRead)
		group.PATCH("/read-all", m.handler.MarkAllRead)
		group.DELETE("/:id", m.handler.Delete)
	}
}

// Subscribe registers the module's event handlers on the bus.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(domainevents.QuoteSubmitted{}.EventName(), events.HandlerFunc(m.onQuoteSubmitted))
	bus.Subscribe(domainevents.QuoteStatusChanged{}.EventName(), events.HandlerFunc(m.onQuoteStatusChanged))
	bus.Subscribe(domainevents.UserRegistered{}.EventName(), events.HandlerFunc(m.onUserRegistered))
	bus.Subscribe(domainevents.ContactMessageReceived{}.EventName(), events.HandlerFunc(m.onContactMessageReceived))
}

func (m *Module) onQuoteSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(domainevents.QuoteSubmitted)
	if !ok {
		return nil
	}

	serviceLabel := catalog.ServiceType(e.ServiceType).Label()
	if _, err := m.service.Send(ctx, inapp.SendParams{
		UserID:    e.UserID,
		Type:      inapp.TypeInfo,
		Title:     "Cotización recibida",
		Message:   "Tu cotización de " + serviceLabel + " fue registrada y está en revisión.",
		ActionURL: "/dashboard/quotes/" + e.QuoteID.String(),
	}); err != nil {
		m.log.SideEffectError("inapp_quote_submitted", err)
	}

	if err := m.enqueuer.EnqueueQuoteReceivedEmail(ctx, scheduler.QuoteReceivedEmailPayload{
		Email:        e.Email,
		Name:         e.Name,
		QuoteID:      e.QuoteID.String(),
		ServiceLabel: serviceLabel,
		PackageType:  e.PackageType,
		TotalPrice:   e.TotalPrice,
		Currency:     e.Currency,
	}); err != nil {
		m.log.SideEffectError("email_quote_submitted", err)
	}
	return nil
}

func (m *Module) onQuoteStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(domainevents.QuoteStatusChanged)
	if !ok {
		return nil
	}

	payload := scheduler.QuoteStatusEmailPayload{
		Email:        e.Email,
		Name:         e.Name,
		QuoteID:      e.QuoteID.String(),
		ServiceLabel: catalog.ServiceType(e.ServiceType).Label(),
		NewStatus:    e.NewStatus,
		ProjectTitle: e.ProjectTitle,
	}
	if err := m.enqueuer.EnqueueQuoteStatusEmail(ctx, payload); err != nil {
		m.log.SideEffectError("email_quote_status", err)
	}
	return nil
}

func (m *Module) onUserRegistered(ctx context.Context, event events.Event) error {
	e, ok := event.(domainevents.UserRegistered)
	if !ok {
		return nil
	}
	if err := m.enqueuer.EnqueueWelcomeEmail(ctx, scheduler.WelcomeEmailPayload{
		Email: e.Email,
		Name:  e.Name,
	}); err != nil {
		m.log.SideEffectError("email_welcome", err)
	}
	return nil
}

func (m *Module) onContactMessageReceived(ctx context.Context, event events.Event) error {
	e, ok := event.(domainevents.ContactMessageReceived)
	if !ok {
		return nil
	}
	if err := m.enqueuer.EnqueueContactAckEmail(ctx, scheduler.ContactAckEmailPayload{
		Email: e.Email,
		Name:  e.Name,
	}); err != nil {
		m.log.SideEffectError("email_contact_ack", err)
	}
	return nil
}
