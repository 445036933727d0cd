// Package service implements quote business logic: submission, pricing,
// lifecycle transitions, bulk operations, and admin statistics.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"agency_portal_backend/internal/catalog"
	domainevents "agency_portal_backend/internal/events"
	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/internal/pricing"
	"agency_portal_backend/internal/quotes/repository"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/phone"
)

// quoteValidityDays is how long a priced quote stays valid. Informational;
// expired quotes are not blocked from transitions.
const quoteValidityDays = 30

// bulkConcurrency bounds parallel item processing in bulk operations.
const bulkConcurrency = 5

// Repository is the persistence port for the quotes service.
type Repository interface {
	Create(ctx context.Context, q *repository.Quote) (*repository.Quote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error)
	List(ctx context.Context, params repository.ListParams) ([]*repository.Quote, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*repository.Quote, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Quote, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[repository.Status]int64, error)
	SumTotalByStatus(ctx context.Context, status repository.Status) (map[string]int64, error)
}

// UserRef is the owner resolved for a submission.
type UserRef struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// UserProvisioner finds or creates the account owning a quote submission.
type UserProvisioner interface {
	ProvisionByEmail(ctx context.Context, email, name, phone, company string) (UserRef, bool, error)
}

// ProjectRef identifies a project created from a quote.
type ProjectRef struct {
	ID    uuid.UUID
	Title string
}

// Projects is the project port used by lifecycle transitions.
type Projects interface {
	ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error)
	CreateFromQuote(ctx context.Context, seed ProjectSeed) (ProjectRef, error)
}

// Notifier delivers in-app notifications and cleans them up on delete.
type Notifier interface {
	Notify(ctx context.Context, seed NoticeSeed) error
	DeleteByActionURL(ctx context.Context, actionURL string) (int64, error)
}

// StatsCache caches computed admin statistics.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type Service struct {
	repo     Repository
	pricer   *pricing.Engine
	users    UserProvisioner
	projects Projects
	notifier Notifier
	bus      events.Bus
	log      *logger.Logger
	cache    StatsCache
	cacheTTL time.Duration
	now      func() time.Time
}

func New(
	repo Repository,
	pricer *pricing.Engine,
	users UserProvisioner,
	projects Projects,
	notifier Notifier,
	bus events.Bus,
	log *logger.Logger,
	cache StatsCache,
	cacheTTL time.Duration,
) *Service {
	return &Service{
		repo:     repo,
		pricer:   pricer,
		users:    users,
		projects: projects,
		notifier: notifier,
		bus:      bus,
		log:      log,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// patchParams maps an UpdatePatch onto repository parameters, validating
// the closed enums. Status is handled separately by the lifecycle decision.
func patchParams(patch UpdatePatch) (repository.UpdateParams, error) {
	params := repository.UpdateParams{
		AdminNotes:   patch.AdminNotes,
		Message:      patch.Notes,
		TotalPrice:   patch.TotalPrice,
		ValidUntil:   patch.ValidUntil,
		TimelineDays: patch.TimelineDays,
	}
	if patch.TotalPrice != nil && *patch.TotalPrice < 0 {
		return params, apperr.Validation("totalPrice must not be negative")
	}
	if patch.TimelineDays != nil && *patch.TimelineDays < 0 {
		return params, apperr.Validation("timeline must not be negative")
	}
	if patch.ServiceType != nil {
		st, err := parseServiceType(*patch.ServiceType)
		if err != nil {
			return params, err
		}
		params.ServiceType = &st
	}
	if patch.PackageType != nil {
		pt, err := parsePackageType(*patch.PackageType)
		if err != nil {
			return params, err
		}
		params.PackageType = &pt
	}
	if patch.Currency != nil {
		cur, err := parseCurrency(*patch.Currency)
		if err != nil {
			return params, err
		}
		params.Currency = &cur
	}
	return params, nil
}

// parseServiceType resolves an admin-supplied service type. Unlike the
// submission path there is no WEB fallback; a typo here would silently
// repoint the quote.
func parseServiceType(raw string) (catalog.ServiceType, error) {
	st := catalog.ServiceType(strings.ToUpper(strings.TrimSpace(raw)))
	switch st {
	case catalog.ServiceWeb, catalog.ServiceMobile, catalog.ServiceEcommerce,
		catalog.ServiceCloud, catalog.ServiceAI, catalog.ServiceConsulting:
		return st, nil
	}
	return "", apperr.Validation("unknown service type " + raw)
}

func parsePackageType(raw string) (catalog.PackageType, error) {
	pt := catalog.PackageType(strings.ToUpper(strings.TrimSpace(raw)))
	switch pt {
	case catalog.PackageStartup, catalog.PackageBusiness, catalog.PackageEnterprise, catalog.PackageCustom:
		return pt, nil
	}
	return "", apperr.Validation("unknown package type " + raw)
}

func parseCurrency(raw string) (catalog.Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MXN":
		return catalog.CurrencyMXN, nil
	case "USD":
		return catalog.CurrencyUSD, nil
	}
	return "", apperr.Validation("unknown currency " + raw)
}

// Preview prices a request without persisting anything.
func (s *Service) Preview(in pricing.Input) (pricing.Result, error) {
	result, err := s.pricer.Calculate(in)
	if err != nil {
		return pricing.Result{}, apperr.Wrap(apperr.KindInternal, "could not price quote", err)
	}
	return result, nil
}

// SubmitParams is a public quote submission.
type SubmitParams struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	ServiceType string
	PackageType string
	AddonIDs    []string
	Currency    string
	Message     string
}

// Submit prices and stores a new quote in PENDING. The submitter's account
// is looked up by email or provisioned on the fly, so every quote has an
// owner who can follow it in the portal.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*repository.Quote, error) {
	user, _, err := s.users.ProvisionByEmail(ctx, params.Email, params.Name, params.Phone, params.Company)
	if err != nil {
		return nil, err
	}

	priced, err := s.pricer.Calculate(pricing.Input{
		ServiceType: params.ServiceType,
		PackageType: params.PackageType,
		AddonIDs:    params.AddonIDs,
		Currency:    params.Currency,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not price quote", err)
	}

	quote := &repository.Quote{
		UserID:       user.ID,
		Name:         params.Name,
		Email:        params.Email,
		ServiceType:  priced.ServiceType,
		PackageType:  priced.PackageType,
		Currency:     priced.Currency,
		BasePrice:    priced.BasePrice,
		AddonsPrice:  priced.AddonsPrice,
		TotalPrice:   priced.TotalPrice,
		TimelineDays: priced.Timeline,
		Features:     priced.Features,
		Addons:       priced.Addons,
		Status:       repository.StatusPending,
		ValidUntil:   s.now().AddDate(0, 0, quoteValidityDays),
	}
	if params.Phone != "" {
		normalized := phone.NormalizeE164(params.Phone)
		quote.Phone = &normalized
	}
	if params.Company != "" {
		quote.Company = &params.Company
	}
	if params.Message != "" {
		quote.Message = &params.Message
	}

	created, err := s.repo.Create(ctx, quote)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not create quote", err)
	}

	s.bus.Publish(ctx, domainevents.QuoteSubmitted{
		BaseEvent:   domainevents.NewBaseEvent(),
		QuoteID:     created.ID,
		UserID:      created.UserID,
		Email:       created.Email,
		Name:        created.Name,
		ServiceType: created.ServiceType.String(),
		PackageType: created.PackageType.String(),
		TotalPrice:  created.TotalPrice,
		Currency:    string(created.Currency),
	})
	return created, nil
}

// Get returns a quote. Admins see everything; clients only their own.
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*repository.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("quote not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not load quote", err)
	}
	if !isAdmin && quote.UserID != requesterID {
		return nil, apperr.NotFound("quote not found")
	}
	return quote, nil
}

// List returns a filtered page of all quotes. Admin only.
func (s *Service) List(ctx context.Context, status, serviceType string, limit, offset int) ([]*repository.Quote, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	params := repository.ListParams{Limit: limit, Offset: offset}
	if status != "" {
		// Statuses are open-ended, so the filter matches stored values as-is.
		params.Status = repository.Status(strings.ToUpper(strings.TrimSpace(status)))
	}
	if serviceType != "" {
		// Filters match stored values exactly; no WEB fallback here.
		st, err := parseServiceType(serviceType)
		if err != nil {
			return nil, 0, err
		}
		params.ServiceType = st
	}

	quotes, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "could not list quotes", err)
	}
	return quotes, total, nil
}

// ListMine returns the requesting client's quotes.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*repository.Quote, error) {
	quotes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list quotes", err)
	}
	return quotes, nil
}

// UpdatePatch is the admin partial update applied alongside a transition.
// Omitted fields leave the quote untouched.
type UpdatePatch struct {
	Status       *string
	AdminNotes   *string
	Notes        *string
	TotalPrice   *int64
	ValidUntil   *time.Time
	ServiceType  *string
	PackageType  *string
	TimelineDays *int
	Currency     *string
}

// UpdateStatus runs a lifecycle transition with optional field patches. The
// decision is pure; this method executes its effects in order: persist,
// create project, notify, publish. Notification failures are swallowed,
// everything else propagates.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*repository.Quote, string, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.NotFound("quote not found")
	}
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "could not load quote", err)
	}

	params, err := patchParams(patch)
	if err != nil {
		return nil, "", err
	}

	hasProject, err := s.projects.ExistsForQuote(ctx, quote.ID)
	if err != nil {
		return nil, "", err
	}

	// When the request does not move the status, the decision sees the
	// current one and treats the update as a pure field patch.
	newStatus := quote.Status
	if patch.Status != nil {
		newStatus = repository.Status(*patch.Status)
	}

	var currencyOverride *string
	if params.Currency != nil {
		cur := string(*params.Currency)
		currencyOverride = &cur
	}
	effects := DecideTransition(TransitionInput{
		Quote:        quote,
		NewStatus:    newStatus,
		HasProject:   hasProject,
		TotalPrice:   patch.TotalPrice,
		TimelineDays: patch.TimelineDays,
		Currency:     currencyOverride,
	})
	if patch.Status != nil {
		params.Status = &effects.NewStatus
	}

	updated, err := s.repo.Update(ctx, quote.ID, params)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "could not update quote", err)
	}

	var project *ProjectRef
	if effects.CreateProject != nil {
		created, err := s.projects.CreateFromQuote(ctx, *effects.CreateProject)
		if err != nil {
			return nil, "", err
		}
		project = &created
	}

	if effects.StatusChanged {
		if effects.Notice != nil {
			if err := s.notifier.Notify(ctx, *effects.Notice); err != nil {
				s.log.SideEffectError("quote_status_notification", err)
			}
		}

		event := domainevents.QuoteStatusChanged{
			BaseEvent:   domainevents.NewBaseEvent(),
			QuoteID:     updated.ID,
			UserID:      updated.UserID,
			Email:       updated.Email,
			Name:        updated.Name,
			ServiceType: updated.ServiceType.String(),
			OldStatus:   string(quote.Status),
			NewStatus:   string(updated.Status),
			TotalPrice:  updated.TotalPrice,
			Currency:    string(updated.Currency),
		}
		if project != nil {
			event.ProjectID = &project.ID
			event.ProjectTitle = project.Title
		}
		s.bus.Publish(ctx, event)
	}

	s.log.QuoteTransition(updated.ID.String(), string(quote.Status), string(updated.Status), project != nil)
	return updated, effects.Summary, nil
}

// BulkItem is the per-quote outcome of a bulk operation.
type BulkItem struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

// BulkUpdateStatus applies the same transition to many quotes. Items fail
// independently; one bad quote never aborts the rest.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, newStatus string, adminNotes *string) (int, []BulkItem, error) {
	if len(ids) == 0 {
		return 0, nil, apperr.Validation("no quote ids provided")
	}

	items := make([]BulkItem, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(bulkConcurrency)

	for i, id := range ids {
		group.Go(func() error {
			_, _, err := s.UpdateStatus(groupCtx, id, UpdatePatch{Status: &newStatus, AdminNotes: adminNotes})
			if err != nil {
				items[i] = BulkItem{ID: id, OK: false, Error: err.Error()}
				return nil
			}
			items[i] = BulkItem{ID: id, OK: true}
			return nil
		})
	}
	_ = group.Wait()

	updated := 0
	for _, item := range items {
		if item.OK {
			updated++
		}
	}
	return updated, items, nil
}

// ConvertApproved turns approved quotes without a project into CONVERTED
// quotes with a generically titled project each. Quotes in any other state,
// or already carrying a project, are skipped.
func (s *Service) ConvertApproved(ctx context.Context, ids []uuid.UUID) (int, []BulkItem, error) {
	if len(ids) == 0 {
		return 0, nil, apperr.Validation("no quote ids provided")
	}

	items := make([]BulkItem, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(bulkConcurrency)

	for i, id := range ids {
		group.Go(func() error {
			items[i] = s.convertOne(groupCtx, id)
			return nil
		})
	}
	_ = group.Wait()

	converted := 0
	for _, item := range items {
		if item.OK {
			converted++
		}
	}
	return converted, items, nil
}

func (s *Service) convertOne(ctx context.Context, id uuid.UUID) BulkItem {
	quote, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return BulkItem{ID: id, Error: "quote not found"}
	}
	if err != nil {
		return BulkItem{ID: id, Error: err.Error()}
	}
	if quote.Status != repository.StatusApproved {
		return BulkItem{ID: id, Error: "quote is not approved"}
	}

	hasProject, err := s.projects.ExistsForQuote(ctx, quote.ID)
	if err != nil {
		return BulkItem{ID: id, Error: err.Error()}
	}
	if hasProject {
		return BulkItem{ID: id, Error: "quote already has a project"}
	}

	project, err := s.projects.CreateFromQuote(ctx, ProjectSeed{
		QuoteID:      quote.ID,
		UserID:       quote.UserID,
		Title:        GenericProjectTitle(quote),
		Description:  projectDescription(quote),
		ServiceType:  quote.ServiceType.String(),
		Budget:       quote.TotalPrice,
		Currency:     string(quote.Currency),
		TimelineDays: quote.TimelineDays,
	})
	if err != nil {
		return BulkItem{ID: id, Error: err.Error()}
	}

	converted := repository.StatusConverted
	updated, err := s.repo.Update(ctx, quote.ID, repository.UpdateParams{Status: &converted})
	if err != nil {
		return BulkItem{ID: id, Error: err.Error()}
	}

	if notice := transitionNotice(updated, repository.StatusConverted, project.Title); notice != nil {
		if err := s.notifier.Notify(ctx, *notice); err != nil {
			s.log.SideEffectError("quote_converted_notification", err)
		}
	}

	s.bus.Publish(ctx, domainevents.QuoteStatusChanged{
		BaseEvent:    domainevents.NewBaseEvent(),
		QuoteID:      updated.ID,
		UserID:       updated.UserID,
		Email:        updated.Email,
		Name:         updated.Name,
		ServiceType:  updated.ServiceType.String(),
		OldStatus:    string(repository.StatusApproved),
		NewStatus:    string(repository.StatusConverted),
		ProjectID:    &project.ID,
		ProjectTitle: project.Title,
		TotalPrice:   updated.TotalPrice,
		Currency:     string(updated.Currency),
	})
	s.log.QuoteTransition(updated.ID.String(), string(repository.StatusApproved), string(repository.StatusConverted), true)
	return BulkItem{ID: id, OK: true}
}

// Delete removes a quote that has no project. Its notifications are cleaned
// up first, and the owner gets a final heads-up.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	quote, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("quote not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not load quote", err)
	}

	hasProject, err := s.projects.ExistsForQuote(ctx, quote.ID)
	if err != nil {
		return err
	}
	if hasProject {
		return apperr.Conflict("quote has an associated project and cannot be deleted")
	}

	if _, err := s.notifier.DeleteByActionURL(ctx, QuoteActionURL(quote.ID)); err != nil {
		s.log.SideEffectError("quote_notification_cleanup", err)
	}

	if err := s.repo.Delete(ctx, quote.ID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not delete quote", err)
	}

	if err := s.notifier.Notify(ctx, NoticeSeed{
		UserID:  quote.UserID,
		Type:    inapp.TypeWarning,
		Title:   "Cotización eliminada",
		Message: "Tu cotización de " + quote.ServiceType.Label() + " fue eliminada por un administrador.",
	}); err != nil {
		s.log.SideEffectError("quote_deleted_notification", err)
	}

	s.bus.Publish(ctx, domainevents.QuoteDeleted{
		BaseEvent: domainevents.NewBaseEvent(),
		QuoteID:   quote.ID,
		UserID:    quote.UserID,
	})
	return nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"byStatus"`
	ConversionRate float64          `json:"conversionRate"`
	ApprovedValue  map[string]int64 `json:"approvedValue"`
	ConvertedValue map[string]int64 `json:"convertedValue"`
}

const statsCacheKey = "admin:quote_stats"

// GetStats computes quote statistics, with a short-lived cache in front so
// dashboard polling does not hammer the database.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, statsCacheKey); ok {
			var stats Stats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not compute stats", err)
	}

	stats := &Stats{ByStatus: make(map[string]int64, len(counts))}
	for status, count := range counts {
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(counts[repository.StatusConverted]) / float64(stats.Total)
	}

	if stats.ApprovedValue, err = s.repo.SumTotalByStatus(ctx, repository.StatusApproved); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not compute stats", err)
	}
	if stats.ConvertedValue, err = s.repo.SumTotalByStatus(ctx, repository.StatusConverted); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not compute stats", err)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, statsCacheKey, encoded, s.cacheTTL)
		}
	}
	return stats, nil
}
