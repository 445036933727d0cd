// Package service implements project business logic. Projects are created
// automatically when an admin approves a quote, then managed by hand.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"agency_portal_backend/internal/projects/repository"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/logger"
)

// Repository is the persistence port for the projects service.
type Repository interface {
	Create(ctx context.Context, p *repository.Project) (*repository.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*repository.Project, error)
	ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error)
	List(ctx context.Context, params repository.ListParams) ([]*repository.Project, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*repository.Project, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Project, error)
	CountByStatus(ctx context.Context) (map[repository.Status]int64, error)
}

// CreateFromQuoteParams seeds a project from an approved quote. Budget is
// the quote's total price, frozen in the quote's currency.
type CreateFromQuoteParams struct {
	QuoteID      uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  string
	ServiceType  string
	Budget       int64
	Currency     string
	TimelineDays int
}

type Service struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

func New(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// initialMilestones is the delivery plan every auto-created project starts
// with. The kickoff milestone is completed the moment the quote is approved;
// its 10 percent belongs to the milestone, not to the project, so overall
// progress still starts at zero.
func initialMilestones() []repository.Milestone {
	return []repository.Milestone{
		{Title: "Inicio del proyecto", Completed: true, Progress: 10},
		{Title: "Planificación", Completed: false, Progress: 0},
		{Title: "Desarrollo", Completed: false, Progress: 0},
		{Title: "Pruebas", Completed: false, Progress: 0},
		{Title: "Entrega", Completed: false, Progress: 0},
	}
}

const initialProgress = 0

// CreateFromQuote creates the project linked to an approved quote. The
// estimated end date is the start date plus the quoted timeline.
func (s *Service) CreateFromQuote(ctx context.Context, params CreateFromQuoteParams) (*repository.Project, error) {
	start := s.now()
	estimatedEnd := start.AddDate(0, 0, params.TimelineDays)

	var description *string
	if params.Description != "" {
		description = &params.Description
	}

	project := &repository.Project{
		QuoteID:          &params.QuoteID,
		UserID:           params.UserID,
		Title:            params.Title,
		Description:      description,
		ServiceType:      params.ServiceType,
		Status:           repository.StatusQuoteApproved,
		Progress:         initialProgress,
		Budget:           params.Budget,
		Currency:         params.Currency,
		Milestones:       initialMilestones(),
		StartDate:        &start,
		EstimatedEndDate: &estimatedEnd,
	}

	created, err := s.repo.Create(ctx, project)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not create project", err)
	}
	return created, nil
}

// ExistsForQuote reports whether the quote already has a project.
func (s *Service) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	exists, err := s.repo.ExistsForQuote(ctx, quoteID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "could not check project existence", err)
	}
	return exists, nil
}

// Get returns a project. Admins see everything; clients only their own.
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*repository.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not load project", err)
	}
	if !isAdmin && project.UserID != requesterID {
		// Hidden rather than forbidden so ownership is not probeable.
		return nil, apperr.NotFound("project not found")
	}
	return project, nil
}

// ListMine returns the requesting client's projects.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*repository.Project, error) {
	projects, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list projects", err)
	}
	return projects, nil
}

// List returns a filtered page of all projects. Admin only.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*repository.Project, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	params := repository.ListParams{Limit: limit, Offset: offset}
	if status != "" {
		st := repository.Status(status)
		if !repository.ValidStatus(st) {
			return nil, 0, apperr.Validation("unknown project status " + status)
		}
		params.Status = st
	}

	projects, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "could not list projects", err)
	}
	return projects, total, nil
}

// UpdateParams is the admin-facing partial update.
type UpdateParams struct {
	Title            *string
	Description      *string
	Status           *string
	StatusNotes      *string
	Progress         *int
	Milestones       []repository.Milestone
	StartDate        *time.Time
	EstimatedEndDate *time.Time
}

// Update patches a project. Status and progress are validated; everything
// else is taken as given. Last write wins.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*repository.Project, error) {
	repoParams := repository.UpdateParams{
		Title:            params.Title,
		Description:      params.Description,
		StatusNotes:      params.StatusNotes,
		Progress:         params.Progress,
		Milestones:       params.Milestones,
		StartDate:        params.StartDate,
		EstimatedEndDate: params.EstimatedEndDate,
	}

	if params.Status != nil {
		st := repository.Status(*params.Status)
		if !repository.ValidStatus(st) {
			return nil, apperr.Validation("unknown project status " + *params.Status)
		}
		repoParams.Status = &st
	}
	if params.Progress != nil && (*params.Progress < 0 || *params.Progress > 100) {
		return nil, apperr.Validation("progress must be between 0 and 100")
	}

	project, err := s.repo.Update(ctx, id, repoParams)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not update project", err)
	}
	return project, nil
}

// CountByStatus returns project totals per status for the admin dashboard.
func (s *Service) CountByStatus(ctx context.Context) (map[repository.Status]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not count projects", err)
	}
	return counts, nil
}
