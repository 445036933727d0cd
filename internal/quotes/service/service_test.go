package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"agency_portal_backend/internal/catalog"
	domainevents "agency_portal_backend/internal/events"
	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/internal/pricing"
	"agency_portal_backend/internal/quotes/repository"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
)

// ---------------------------------------------------------------------------
// fakes

type fakeRepo struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]*repository.Quote
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{quotes: make(map[uuid.UUID]*repository.Quote)}
}

func (r *fakeRepo) put(q *repository.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.ID] = q
}

func (r *fakeRepo) Create(_ context.Context, q *repository.Quote) (*repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	r.quotes[q.ID] = q
	return q, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]*repository.Quote, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Quote
	for _, q := range r.quotes {
		copied := *q
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Quote
	for _, q := range r.quotes {
		if q.UserID == userID {
			copied := *q
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.Status != nil {
		q.Status = *params.Status
	}
	if params.AdminNotes != nil {
		q.AdminNotes = params.AdminNotes
	}
	if params.Message != nil {
		q.Message = params.Message
	}
	if params.TotalPrice != nil {
		q.TotalPrice = *params.TotalPrice
	}
	if params.ValidUntil != nil {
		q.ValidUntil = *params.ValidUntil
	}
	if params.ServiceType != nil {
		q.ServiceType = *params.ServiceType
	}
	if params.PackageType != nil {
		q.PackageType = *params.PackageType
	}
	if params.TimelineDays != nil {
		q.TimelineDays = *params.TimelineDays
	}
	if params.Currency != nil {
		q.Currency = *params.Currency
	}
	q.UpdatedAt = time.Now()
	copied := *q
	return &copied, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.quotes, id)
	return nil
}

func (r *fakeRepo) CountByStatus(_ context.Context) (map[repository.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[repository.Status]int64)
	for _, q := range r.quotes {
		counts[q.Status]++
	}
	return counts, nil
}

func (r *fakeRepo) SumTotalByStatus(_ context.Context, status repository.Status) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]int64)
	for _, q := range r.quotes {
		if q.Status == status {
			sums[string(q.Currency)] += q.TotalPrice
		}
	}
	return sums, nil
}

type fakeProjects struct {
	mu      sync.Mutex
	exists  map[uuid.UUID]bool
	created []ProjectSeed
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{exists: make(map[uuid.UUID]bool)}
}

func (p *fakeProjects) ExistsForQuote(_ context.Context, quoteID uuid.UUID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exists[quoteID], nil
}

func (p *fakeProjects) CreateFromQuote(_ context.Context, seed ProjectSeed) (ProjectRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exists[seed.QuoteID] = true
	p.created = append(p.created, seed)
	return ProjectRef{ID: uuid.New(), Title: seed.Title}, nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	notices     []NoticeSeed
	deletedURLs []string
	failNotify  bool
}

func (n *fakeNotifier) Notify(_ context.Context, seed NoticeSeed) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNotify {
		return apperr.Internal("notification store down")
	}
	n.notices = append(n.notices, seed)
	return nil
}

func (n *fakeNotifier) DeleteByActionURL(_ context.Context, actionURL string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deletedURLs = append(n.deletedURLs, actionURL)
	return 1, nil
}

type fakeUsers struct {
	ref UserRef
}

func (u *fakeUsers) ProvisionByEmail(_ context.Context, email, name, _, _ string) (UserRef, bool, error) {
	if u.ref.ID == uuid.Nil {
		u.ref = UserRef{ID: uuid.New(), Email: email, Name: name}
		return u.ref, true, nil
	}
	return u.ref, false, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func strPtr(s string) *string { return &s }

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
}

// ---------------------------------------------------------------------------

type fixture struct {
	service  *Service
	repo     *fakeRepo
	projects *fakeProjects
	notifier *fakeNotifier
	bus      *fakeBus
	cache    *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load() error: %v", err)
	}

	f := &fixture{
		repo:     newFakeRepo(),
		projects: newFakeProjects(),
		notifier: &fakeNotifier{},
		bus:      &fakeBus{},
		cache:    newFakeCache(),
	}
	f.service = New(
		f.repo,
		pricing.NewEngine(cat),
		&fakeUsers{},
		f.projects,
		f.notifier,
		f.bus,
		logger.New("development"),
		f.cache,
		time.Minute,
	)
	return f
}

func seedQuote(f *fixture, status repository.Status) *repository.Quote {
	company := "Acme SA"
	q := &repository.Quote{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Name:         "Laura Méndez",
		Email:        "laura@acme.mx",
		Company:      &company,
		ServiceType:  catalog.ServiceWeb,
		PackageType:  catalog.PackageBusiness,
		Currency:     catalog.CurrencyMXN,
		BasePrice:    35000,
		TotalPrice:   35000,
		TimelineDays: 21,
		Status:       status,
	}
	f.repo.put(q)
	return q
}

func TestSubmitCreatesPendingQuote(t *testing.T) {
	f := newFixture(t)

	quote, err := f.service.Submit(context.Background(), SubmitParams{
		Name:        "Laura Méndez",
		Email:       "laura@acme.mx",
		Company:     "Acme SA",
		ServiceType: "WEB",
		PackageType: "BUSINESS",
		AddonIDs:    []string{"seo-advanced"},
		Currency:    "MXN",
		Message:     "Necesitamos un sitio nuevo",
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if quote.Status != repository.StatusPending {
		t.Errorf("status = %s, want PENDING", quote.Status)
	}
	if quote.TotalPrice != 40000 {
		t.Errorf("totalPrice = %d, want 40000", quote.TotalPrice)
	}
	if quote.TimelineDays != 28 {
		t.Errorf("timeline = %d, want 28", quote.TimelineDays)
	}
	if quote.UserID == uuid.Nil {
		t.Error("quote must be owned by a provisioned user")
	}

	wantValid := time.Now().AddDate(0, 0, 30)
	if quote.ValidUntil.Before(wantValid.Add(-time.Minute)) || quote.ValidUntil.After(wantValid.Add(time.Minute)) {
		t.Errorf("validUntil = %v, want about 30 days out", quote.ValidUntil)
	}

	if len(f.bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.bus.events))
	}
	submitted, ok := f.bus.events[0].(domainevents.QuoteSubmitted)
	if !ok {
		t.Fatalf("event = %T, want QuoteSubmitted", f.bus.events[0])
	}
	if submitted.QuoteID != quote.ID || submitted.TotalPrice != 40000 {
		t.Errorf("event payload mismatch: %+v", submitted)
	}
}

func TestUpdateStatusApproveFlow(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusPending)

	updated, summary, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{Status: strPtr("APPROVED")})
	if err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	if updated.Status != repository.StatusApproved {
		t.Errorf("status = %s, want APPROVED", updated.Status)
	}
	if summary != "updated and project created" {
		t.Errorf("summary = %q", summary)
	}
	if len(f.projects.created) != 1 {
		t.Fatalf("created %d projects, want 1", len(f.projects.created))
	}
	if f.projects.created[0].Title != "Desarrollo Web para Acme SA" {
		t.Errorf("project title = %q", f.projects.created[0].Title)
	}
	if f.projects.created[0].Budget != 35000 || f.projects.created[0].Currency != "MXN" {
		t.Errorf("project budget = %d %s, want the quote total", f.projects.created[0].Budget, f.projects.created[0].Currency)
	}
	if len(f.notifier.notices) != 1 || f.notifier.notices[0].Type != inapp.TypeSuccess {
		t.Fatalf("notices = %+v, want one SUCCESS", f.notifier.notices)
	}

	if len(f.bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.bus.events))
	}
	changed, ok := f.bus.events[0].(domainevents.QuoteStatusChanged)
	if !ok {
		t.Fatalf("event = %T, want QuoteStatusChanged", f.bus.events[0])
	}
	if changed.ProjectID == nil || changed.ProjectTitle == "" {
		t.Error("event must reference the created project")
	}
}

func TestUpdateStatusReapproveDoesNotDuplicateProject(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusPending)

	if _, _, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{Status: strPtr("APPROVED")}); err != nil {
		t.Fatalf("first approve error: %v", err)
	}
	_, summary, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{Status: strPtr("APPROVED")})
	if err != nil {
		t.Fatalf("second approve error: %v", err)
	}

	if summary != "updated" {
		t.Errorf("summary = %q, want plain update on no-op", summary)
	}
	if len(f.projects.created) != 1 {
		t.Errorf("created %d projects, want exactly 1", len(f.projects.created))
	}
	if len(f.notifier.notices) != 1 {
		t.Errorf("sent %d notices, want exactly 1", len(f.notifier.notices))
	}
}

func TestUpdateStatusNotificationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifier.failNotify = true
	quote := seedQuote(f, repository.StatusPending)

	updated, _, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{Status: strPtr("REJECTED")})
	if err != nil {
		t.Fatalf("UpdateStatus() must not fail on notification errors: %v", err)
	}
	if updated.Status != repository.StatusRejected {
		t.Errorf("status = %s, want REJECTED", updated.Status)
	}
}

func TestUpdateStatusUnknownQuote(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.service.UpdateStatus(context.Background(), uuid.New(), UpdatePatch{Status: strPtr("APPROVED")})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusPatchesQuoteFields(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusPending)

	total := int64(42000)
	timeline := 30
	validUntil := time.Now().AddDate(0, 0, 60)
	updated, _, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{
		Status:       strPtr("APPROVED"),
		AdminNotes:   strPtr("negotiated discount"),
		Notes:        strPtr("cliente pidió ajuste"),
		TotalPrice:   &total,
		ValidUntil:   &validUntil,
		PackageType:  strPtr("ENTERPRISE"),
		TimelineDays: &timeline,
		Currency:     strPtr("USD"),
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	if updated.TotalPrice != 42000 {
		t.Errorf("totalPrice = %d, want 42000", updated.TotalPrice)
	}
	if updated.TimelineDays != 30 {
		t.Errorf("timeline = %d, want 30", updated.TimelineDays)
	}
	if updated.Currency != catalog.CurrencyUSD {
		t.Errorf("currency = %s, want USD", updated.Currency)
	}
	if updated.PackageType != catalog.PackageEnterprise {
		t.Errorf("packageType = %s, want ENTERPRISE", updated.PackageType)
	}
	if updated.AdminNotes == nil || *updated.AdminNotes != "negotiated discount" {
		t.Errorf("adminNotes = %v", updated.AdminNotes)
	}
	if updated.Message == nil || *updated.Message != "cliente pidió ajuste" {
		t.Errorf("message = %v", updated.Message)
	}
	if !updated.ValidUntil.Equal(validUntil) {
		t.Errorf("validUntil = %v, want %v", updated.ValidUntil, validUntil)
	}

	// The auto-created project reflects the just-updated values.
	if len(f.projects.created) != 1 {
		t.Fatalf("created %d projects, want 1", len(f.projects.created))
	}
	seed := f.projects.created[0]
	if seed.Budget != 42000 || seed.Currency != "USD" || seed.TimelineDays != 30 {
		t.Errorf("project seed = %+v, want patched budget/currency/timeline", seed)
	}
}

func TestUpdateStatusRejectsUnknownServiceType(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusPending)

	_, _, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{ServiceType: strPtr("BLOCKCHAIN")})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusPersistsArbitraryStatus(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusPending)

	updated, _, err := f.service.UpdateStatus(context.Background(), quote.ID, UpdatePatch{Status: strPtr("ARCHIVED")})
	if err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	if updated.Status != "ARCHIVED" {
		t.Errorf("status = %s, want ARCHIVED", updated.Status)
	}
	if len(f.projects.created) != 0 {
		t.Error("unknown statuses must not create projects")
	}
	if len(f.notifier.notices) != 1 || f.notifier.notices[0].Type != inapp.TypeInfo {
		t.Errorf("notices = %+v, want one INFO", f.notifier.notices)
	}
}

func TestBulkUpdateStatusIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	first := seedQuote(f, repository.StatusPending)
	second := seedQuote(f, repository.StatusPending)
	missing := uuid.New()

	updated, items, err := f.service.BulkUpdateStatus(context.Background(),
		[]uuid.UUID{first.ID, missing, second.ID}, "REJECTED", nil)
	if err != nil {
		t.Fatalf("BulkUpdateStatus() error: %v", err)
	}

	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[1].OK || items[1].Error == "" {
		t.Errorf("missing quote item = %+v, want recorded failure", items[1])
	}
	if !items[0].OK || !items[2].OK {
		t.Errorf("healthy items must succeed: %+v", items)
	}
}

func TestConvertApproved(t *testing.T) {
	f := newFixture(t)
	approved := seedQuote(f, repository.StatusApproved)
	pending := seedQuote(f, repository.StatusPending)
	withProject := seedQuote(f, repository.StatusApproved)
	f.projects.exists[withProject.ID] = true

	converted, items, err := f.service.ConvertApproved(context.Background(),
		[]uuid.UUID{approved.ID, pending.ID, withProject.ID})
	if err != nil {
		t.Fatalf("ConvertApproved() error: %v", err)
	}

	if converted != 1 {
		t.Errorf("converted = %d, want 1", converted)
	}
	if !items[0].OK {
		t.Errorf("approved quote should convert: %+v", items[0])
	}
	if items[1].OK || items[2].OK {
		t.Errorf("pending and already-projected quotes must be skipped: %+v", items)
	}

	stored, err := f.repo.FindByID(context.Background(), approved.ID)
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if stored.Status != repository.StatusConverted {
		t.Errorf("status = %s, want CONVERTED", stored.Status)
	}
	if len(f.projects.created) != 1 || f.projects.created[0].Title != "Proyecto WEB - BUSINESS" {
		t.Errorf("projects created = %+v, want one with generic title", f.projects.created)
	}
	if f.projects.created[0].Budget != 35000 || f.projects.created[0].Currency != "MXN" {
		t.Errorf("project budget = %d %s, want the quote total", f.projects.created[0].Budget, f.projects.created[0].Currency)
	}
	if len(f.notifier.notices) != 1 || f.notifier.notices[0].Type != inapp.TypeSuccess {
		t.Errorf("notices = %+v, want one SUCCESS", f.notifier.notices)
	}
}

func TestDeleteRefusedWhenProjectExists(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusApproved)
	f.projects.exists[quote.ID] = true

	err := f.service.Delete(context.Background(), quote.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), quote.ID); err != nil {
		t.Error("quote must survive a refused delete")
	}
}

func TestDeleteCascadesNotifications(t *testing.T) {
	f := newFixture(t)
	quote := seedQuote(f, repository.StatusPending)

	if err := f.service.Delete(context.Background(), quote.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := f.repo.FindByID(context.Background(), quote.ID); err == nil {
		t.Error("quote should be gone")
	}
	if len(f.notifier.deletedURLs) != 1 || f.notifier.deletedURLs[0] != QuoteActionURL(quote.ID) {
		t.Errorf("deletedURLs = %v", f.notifier.deletedURLs)
	}
	if len(f.notifier.notices) != 1 || f.notifier.notices[0].Type != inapp.TypeWarning {
		t.Errorf("notices = %+v, want one final WARNING", f.notifier.notices)
	}
	if len(f.bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.bus.events))
	}
	if _, ok := f.bus.events[0].(domainevents.QuoteDeleted); !ok {
		t.Errorf("event = %T, want QuoteDeleted", f.bus.events[0])
	}
}

func TestGetStatsComputesAndCaches(t *testing.T) {
	f := newFixture(t)
	seedQuote(f, repository.StatusPending)
	seedQuote(f, repository.StatusApproved)
	seedQuote(f, repository.StatusConverted)
	seedQuote(f, repository.StatusConverted)

	stats, err := f.service.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.ByStatus["CONVERTED"] != 2 {
		t.Errorf("converted count = %d, want 2", stats.ByStatus["CONVERTED"])
	}
	if stats.ConversionRate != 0.5 {
		t.Errorf("conversionRate = %v, want 0.5", stats.ConversionRate)
	}
	if stats.ApprovedValue["MXN"] != 35000 {
		t.Errorf("approvedValue = %v", stats.ApprovedValue)
	}
	if f.cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", f.cache.sets)
	}

	// Second call must come from the cache.
	again, err := f.service.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if f.cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", f.cache.hits)
	}
	encodedFirst, _ := json.Marshal(stats)
	encodedSecond, _ := json.Marshal(again)
	if string(encodedFirst) != string(encodedSecond) {
		t.Error("cached stats must match computed stats")
	}
}
