// Package contact handles public contact form submissions and the admin
// inbox over them.
package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	domainevents "agency_portal_backend/internal/events"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/phone"
)

// ErrNotFound is returned when a message does not exist.
var ErrNotFound = errors.New("contact message not found")

// Message is one contact form submission.
type Message struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Company   *string
	Body      string
	Read      bool
	CreatedAt time.Time
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m *Message) (*Message, error) {
	query := `
		INSERT INTO contact_messages (name, email, phone, company, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at`
	err := r.db.QueryRow(ctx, query, m.Name, m.Email, m.Phone, m.Company, m.Body).
		Scan(&m.ID, &m.Read, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Message, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, phone, company, body, read, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Company,
			&m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, &m)
	}
	return messages, total, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE contact_messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RepositoryPort is the persistence port for the contact service.
type RepositoryPort interface {
	Create(ctx context.Context, m *Message) (*Message, error)
	List(ctx context.Context, limit, offset int) ([]*Message, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmitParams is a public contact form submission.
type SubmitParams struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Body    string
}

type Service struct {
	repo RepositoryPort
	bus  events.Bus
	log  *logger.Logger
}

func NewService(repo RepositoryPort, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Submit stores a contact message and raises the received event.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Message, error) {
	message := &Message{
		Name:  params.Name,
		Email: params.Email,
		Body:  params.Body,
	}
	if params.Phone != "" {
		normalized := phone.NormalizeE164(params.Phone)
		message.Phone = &normalized
	}
	if params.Company != "" {
		message.Company = &params.Company
	}

	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not store message", err)
	}

	s.bus.Publish(ctx, domainevents.ContactMessageReceived{
		BaseEvent: domainevents.NewBaseEvent(),
		MessageID: created.ID,
		Name:      created.Name,
		Email:     created.Email,
	})
	return created, nil
}

// List returns a page of the admin inbox.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Message, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	messages, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "could not list messages", err)
	}
	return messages, total, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("message not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not update message", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("message not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not delete message", err)
	}
	return nil
}
