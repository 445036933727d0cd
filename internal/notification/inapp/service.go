package inapp

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/logger"
)

// RepositoryPort is the persistence port for the in-app notification service.
type RepositoryPort interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DeleteByActionURL(ctx context.Context, actionURL string) (int64, error)
}

// SendParams describes one notification to deliver.
type SendParams struct {
	UserID    uuid.UUID
	Type      Type
	Title     string
	Message   string
	ActionURL string
}

type Service struct {
	repo RepositoryPort
	log  *logger.Logger
}

func NewService(repo RepositoryPort, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Send persists an in-app notification. Callers on side-effect paths swallow
// the returned error; the primary operation never depends on it.
func (s *Service) Send(ctx context.Context, params SendParams) (*Notification, error) {
	if params.Type == "" {
		params.Type = TypeInfo
	}
	n := &Notification{
		UserID:  params.UserID,
		Type:    params.Type,
		Title:   params.Title,
		Message: params.Message,
	}
	if params.ActionURL != "" {
		n.ActionURL = &params.ActionURL
	}
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not create notification", err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list notifications", err)
	}
	return notifications, nil
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "could not count notifications", err)
	}
	return count, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	err := s.repo.MarkRead(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not update notification", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "could not update notifications", err)
	}
	return count, nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not delete notification", err)
	}
	return nil
}

// DeleteByActionURL removes notifications referencing a deleted resource.
func (s *Service) DeleteByActionURL(ctx context.Context, actionURL string) (int64, error) {
	count, err := s.repo.DeleteByActionURL(ctx, actionURL)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "could not delete notifications", err)
	}
	return count, nil
}
