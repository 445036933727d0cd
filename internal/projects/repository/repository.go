// Package repository provides PostgreSQL persistence for projects.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

// Status is the project lifecycle status. Projects begin at QUOTE_APPROVED
// when auto-created from an approved quote.
type Status string

const (
	StatusQuoteApproved Status = "QUOTE_APPROVED"
	StatusPlanning      Status = "PLANNING"
	StatusDevelopment   Status = "DEVELOPMENT"
	StatusTesting       Status = "TESTING"
	StatusReview        Status = "REVIEW"
	StatusDelivery      Status = "DELIVERY"
	StatusCompleted     Status = "COMPLETED"
	StatusOnHold        Status = "ON_HOLD"
	StatusCancelled     Status = "CANCELLED"
)

// ValidStatus reports whether s is a known project status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusQuoteApproved, StatusPlanning, StatusDevelopment, StatusTesting,
		StatusReview, StatusDelivery, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// Milestone is one step of the project plan, stored as JSONB.
type Milestone struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress"`
}

// Project is a unit of delivery. QuoteID is set and unique when the project
// was created from an approved quote; Budget is the quote's total at
// approval time, frozen in the quote's currency.
type Project struct {
	ID               uuid.UUID
	QuoteID          *uuid.UUID
	UserID           uuid.UUID
	Title            string
	Description      *string
	ServiceType      string
	Status           Status
	StatusNotes      *string
	Progress         int // 0..100
	Budget           int64
	Currency         string
	Milestones       []Milestone
	StartDate        *time.Time
	EstimatedEndDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ListParams filters and paginates admin project listings.
type ListParams struct {
	Status Status
	Limit  int
	Offset int
}

type Repository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a project. Violating the unique quote_id constraint surfaces
// as an error; callers guard with ExistsForQuote first.
func (r *Repository) Create(ctx context.Context, p *Project) (*Project, error) {
	milestones, err := json.Marshal(p.Milestones)
	if err != nil {
		return nil, fmt.Errorf("marshal milestones: %w", err)
	}

	query := `
		INSERT INTO projects (quote_id, user_id, title, description, service_type, status, status_notes,
			progress, budget, currency, milestones, start_date, estimated_end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		p.QuoteID, p.UserID, p.Title, p.Description, p.ServiceType, p.Status, p.StatusNotes,
		p.Progress, p.Budget, p.Currency, milestones, p.StartDate, p.EstimatedEndDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectProject+` WHERE id = $1`, id))
}

// ExistsForQuote reports whether a project is already linked to the quote.
func (r *Repository) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE quote_id = $1)`, quoteID).Scan(&exists)
	return exists, err
}

// List returns projects newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, params ListParams) ([]*Project, int64, error) {
	where := ""
	args := []interface{}{}
	if params.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, params.Status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectProject + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	projects, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ListByUser returns a client's own projects, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Project, error) {
	rows, err := r.db.Query(ctx, selectProject+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// UpdateParams patches a project. Nil fields are left untouched.
type UpdateParams struct {
	Title            *string
	Description      *string
	Status           *Status
	StatusNotes      *string
	Progress         *int
	Milestones       []Milestone
	StartDate        *time.Time
	EstimatedEndDate *time.Time
}

// Update applies a partial update and returns the updated row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Project, error) {
	var milestones interface{}
	if params.Milestones != nil {
		encoded, err := json.Marshal(params.Milestones)
		if err != nil {
			return nil, fmt.Errorf("marshal milestones: %w", err)
		}
		milestones = encoded
	}

	query := `
		UPDATE projects SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			status_notes = COALESCE($5, status_notes),
			progress = COALESCE($6, progress),
			milestones = COALESCE($7, milestones),
			start_date = COALESCE($8, start_date),
			estimated_end_date = COALESCE($9, estimated_end_date),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + projectColumns

	return r.scanOne(r.db.QueryRow(ctx, query,
		id, params.Title, params.Description, params.Status, params.StatusNotes,
		params.Progress, milestones, params.StartDate, params.EstimatedEndDate))
}

// CountByStatus returns project totals grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int64)
	for rows.Next() {
		var status Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

const projectColumns = `id, quote_id, user_id, title, description, service_type, status, status_notes, progress, budget, currency, milestones, start_date, estimated_end_date, created_at, updated_at`

const selectProject = `SELECT ` + projectColumns + ` FROM projects`

func (r *Repository) scanOne(row pgx.Row) (*Project, error) {
	var p Project
	var milestones []byte
	err := row.Scan(&p.ID, &p.QuoteID, &p.UserID, &p.Title, &p.Description,
		&p.ServiceType, &p.Status, &p.StatusNotes, &p.Progress, &p.Budget, &p.Currency, &milestones,
		&p.StartDate, &p.EstimatedEndDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(milestones) > 0 {
		if err := json.Unmarshal(milestones, &p.Milestones); err != nil {
			return nil, fmt.Errorf("unmarshal milestones: %w", err)
		}
	}
	return &p, nil
}

func (r *Repository) scanAll(rows pgx.Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		var p Project
		var milestones []byte
		if err := rows.Scan(&p.ID, &p.QuoteID, &p.UserID, &p.Title, &p.Description,
			&p.ServiceType, &p.Status, &p.StatusNotes, &p.Progress, &p.Budget, &p.Currency, &milestones,
			&p.StartDate, &p.EstimatedEndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if len(milestones) > 0 {
			if err := json.Unmarshal(milestones, &p.Milestones); err != nil {
				return nil, fmt.Errorf("unmarshal milestones: %w", err)
			}
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}
