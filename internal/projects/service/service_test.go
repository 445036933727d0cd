package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"agency_portal_backend/internal/projects/repository"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/logger"
)

type fakeRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*repository.Project
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{projects: make(map[uuid.UUID]*repository.Project)}
}

func (r *fakeRepo) Create(_ context.Context, p *repository.Project) (*repository.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.projects[p.ID] = p
	return p, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*repository.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeRepo) ExistsForQuote(_ context.Context, quoteID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.QuoteID != nil && *p.QuoteID == quoteID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]*repository.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Project
	for _, p := range r.projects {
		copied := *p
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*repository.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Project
	for _, p := range r.projects {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.Title != nil {
		p.Title = *params.Title
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
	if params.StatusNotes != nil {
		p.StatusNotes = params.StatusNotes
	}
	if params.Progress != nil {
		p.Progress = *params.Progress
	}
	if params.Milestones != nil {
		p.Milestones = params.Milestones
	}
	copied := *p
	return &copied, nil
}

func (r *fakeRepo) CountByStatus(_ context.Context) (map[repository.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[repository.Status]int64)
	for _, p := range r.projects {
		counts[p.Status]++
	}
	return counts, nil
}

func newService(repo *fakeRepo) *Service {
	return New(repo, logger.New("development"))
}

func TestCreateFromQuoteScaffold(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	quoteID := uuid.New()

	project, err := svc.CreateFromQuote(context.Background(), CreateFromQuoteParams{
		QuoteID:      quoteID,
		UserID:       uuid.New(),
		Title:        "Desarrollo Web para Acme SA",
		ServiceType:  "WEB",
		Budget:       35000,
		Currency:     "MXN",
		TimelineDays: 21,
	})
	if err != nil {
		t.Fatalf("CreateFromQuote() error: %v", err)
	}

	if project.Status != repository.StatusQuoteApproved {
		t.Errorf("status = %s, want QUOTE_APPROVED", project.Status)
	}
	if project.Progress != 0 {
		t.Errorf("progress = %d, want 0; the kickoff 10 belongs to the milestone", project.Progress)
	}
	if project.Budget != 35000 || project.Currency != "MXN" {
		t.Errorf("budget = %d %s, want the quote total", project.Budget, project.Currency)
	}
	if len(project.Milestones) != 5 {
		t.Fatalf("milestones = %d, want 5", len(project.Milestones))
	}
	first := project.Milestones[0]
	if first.Title != "Inicio del proyecto" || !first.Completed || first.Progress != 10 {
		t.Errorf("first milestone = %+v, want completed kickoff at 10", first)
	}
	for _, m := range project.Milestones[1:] {
		if m.Completed || m.Progress != 0 {
			t.Errorf("milestone %q should start untouched, got %+v", m.Title, m)
		}
	}

	if project.StartDate == nil || project.EstimatedEndDate == nil {
		t.Fatal("start and estimated end dates must be set")
	}
	gotDays := int(project.EstimatedEndDate.Sub(*project.StartDate).Hours() / 24)
	if gotDays != 21 {
		t.Errorf("estimated end = start + %d days, want 21", gotDays)
	}

	exists, err := svc.ExistsForQuote(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("ExistsForQuote() error: %v", err)
	}
	if !exists {
		t.Error("project must be linked to its quote")
	}
}

func TestGetScopesToOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	owner := uuid.New()

	project, err := svc.CreateFromQuote(context.Background(), CreateFromQuoteParams{
		QuoteID: uuid.New(), UserID: owner, Title: "P", ServiceType: "WEB", TimelineDays: 7,
	})
	if err != nil {
		t.Fatalf("CreateFromQuote() error: %v", err)
	}

	if _, err := svc.Get(context.Background(), project.ID, owner, false); err != nil {
		t.Errorf("owner should see own project: %v", err)
	}
	if _, err := svc.Get(context.Background(), project.ID, uuid.New(), false); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("stranger should get not found, got %v", err)
	}
	if _, err := svc.Get(context.Background(), project.ID, uuid.New(), true); err != nil {
		t.Errorf("admin should see any project: %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	project, _ := svc.CreateFromQuote(context.Background(), CreateFromQuoteParams{
		QuoteID: uuid.New(), UserID: uuid.New(), Title: "P", ServiceType: "WEB", TimelineDays: 7,
	})

	badStatus := "SHIPPED"
	if _, err := svc.Update(context.Background(), project.ID, UpdateParams{Status: &badStatus}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown status should be rejected, got %v", err)
	}

	badProgress := 120
	if _, err := svc.Update(context.Background(), project.ID, UpdateParams{Progress: &badProgress}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("progress over 100 should be rejected, got %v", err)
	}

	goodStatus := string(repository.StatusDevelopment)
	goodProgress := 40
	statusNotes := "backend en curso"
	updated, err := svc.Update(context.Background(), project.ID, UpdateParams{
		Status:      &goodStatus,
		StatusNotes: &statusNotes,
		Progress:    &goodProgress,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Status != repository.StatusDevelopment || updated.Progress != 40 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.StatusNotes == nil || *updated.StatusNotes != "backend en curso" {
		t.Errorf("statusNotes = %v", updated.StatusNotes)
	}
}

func TestValidStatusCoversDeliveryPipeline(t *testing.T) {
	for _, s := range []repository.Status{
		repository.StatusQuoteApproved, repository.StatusPlanning, repository.StatusDevelopment,
		repository.StatusTesting, repository.StatusReview, repository.StatusDelivery,
		repository.StatusCompleted, repository.StatusOnHold, repository.StatusCancelled,
	} {
		if !repository.ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if repository.ValidStatus("IN_PROGRESS") {
		t.Error("IN_PROGRESS is not a project status")
	}
}
