// Package adapters bridges bounded contexts. Each adapter implements a port
// declared by a consuming service in terms of another module's service, so
// the modules never import each other directly.
package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"

	authrepo "agency_portal_backend/internal/auth/repository"
	authservice "agency_portal_backend/internal/auth/service"
	"agency_portal_backend/internal/notification/inapp"
	projectservice "agency_portal_backend/internal/projects/service"
	quoteservice "agency_portal_backend/internal/quotes/service"
)

// UserProvisioner adapts the auth service to the quotes submission flow.
type UserProvisioner struct {
	Auth *authservice.Service
}

func (a *UserProvisioner) ProvisionByEmail(ctx context.Context, email, name, phone, company string) (quoteservice.UserRef, bool, error) {
	user, created, err := a.Auth.ProvisionByEmail(ctx, email, name, phone, company)
	if err != nil {
		return quoteservice.UserRef{}, false, err
	}
	return quoteservice.UserRef{ID: user.ID, Email: user.Email, Name: user.Name}, created, nil
}

// ProjectGateway adapts the projects service to the quote lifecycle.
type ProjectGateway struct {
	Projects *projectservice.Service
}

func (a *ProjectGateway) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	return a.Projects.ExistsForQuote(ctx, quoteID)
}

func (a *ProjectGateway) CreateFromQuote(ctx context.Context, seed quoteservice.ProjectSeed) (quoteservice.ProjectRef, error) {
	project, err := a.Projects.CreateFromQuote(ctx, projectservice.CreateFromQuoteParams{
		QuoteID:      seed.QuoteID,
		UserID:       seed.UserID,
		Title:        seed.Title,
		Description:  seed.Description,
		ServiceType:  seed.ServiceType,
		Budget:       seed.Budget,
		Currency:     seed.Currency,
		TimelineDays: seed.TimelineDays,
	})
	if err != nil {
		return quoteservice.ProjectRef{}, err
	}
	return quoteservice.ProjectRef{ID: project.ID, Title: project.Title}, nil
}

// QuoteNotifier adapts in-app notifications to the quote lifecycle.
type QuoteNotifier struct {
	Notifications *inapp.Service
}

func (a *QuoteNotifier) Notify(ctx context.Context, seed quoteservice.NoticeSeed) error {
	_, err := a.Notifications.Send(ctx, inapp.SendParams{
		UserID:    seed.UserID,
		Type:      seed.Type,
		Title:     seed.Title,
		Message:   seed.Message,
		ActionURL: seed.ActionURL,
	})
	return err
}

func (a *QuoteNotifier) DeleteByActionURL(ctx context.Context, actionURL string) (int64, error) {
	return a.Notifications.DeleteByActionURL(ctx, actionURL)
}

// CleanupStore aggregates the repositories the maintenance task prunes.
type CleanupStore struct {
	Auth          *authrepo.Repository
	Notifications *inapp.Repository
}

func (a *CleanupStore) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	return a.Auth.DeleteExpiredRefreshTokens(ctx)
}

func (a *CleanupStore) DeleteReadNotificationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.Notifications.DeleteReadOlderThan(ctx, cutoff)
}

var (
	_ quoteservice.UserProvisioner = (*UserProvisioner)(nil)
	_ quoteservice.Projects        = (*ProjectGateway)(nil)
	_ quoteservice.Notifier        = (*QuoteNotifier)(nil)
)
