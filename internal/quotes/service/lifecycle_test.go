package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"agency_portal_backend/internal/catalog"
	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/internal/quotes/repository"
)

func pendingQuote() *repository.Quote {
	company := "Acme SA"
	return &repository.Quote{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Name:         "Laura Méndez",
		Email:        "laura@acme.mx",
		Company:      &company,
		ServiceType:  catalog.ServiceWeb,
		PackageType:  catalog.PackageBusiness,
		Currency:     catalog.CurrencyMXN,
		TotalPrice:   35000,
		TimelineDays: 21,
		Status:       repository.StatusPending,
	}
}

func TestDecideTransitionApproveCreatesProject(t *testing.T) {
	quote := pendingQuote()

	effects := DecideTransition(TransitionInput{
		Quote:     quote,
		NewStatus: repository.StatusApproved,
	})

	if !effects.StatusChanged {
		t.Error("expected status change")
	}
	if effects.CreateProject == nil {
		t.Fatal("expected a project seed")
	}
	if effects.CreateProject.Title != "Desarrollo Web para Acme SA" {
		t.Errorf("project title = %q, want personalized company title", effects.CreateProject.Title)
	}
	if effects.CreateProject.Budget != 35000 {
		t.Errorf("project budget = %d, want the quote total", effects.CreateProject.Budget)
	}
	if effects.CreateProject.Currency != "MXN" {
		t.Errorf("project currency = %q, want MXN", effects.CreateProject.Currency)
	}
	if effects.CreateProject.TimelineDays != 21 {
		t.Errorf("project timeline = %d, want 21", effects.CreateProject.TimelineDays)
	}
	if effects.Summary != "updated and project created" {
		t.Errorf("summary = %q", effects.Summary)
	}
	if effects.Notice == nil || effects.Notice.Type != inapp.TypeSuccess {
		t.Errorf("expected SUCCESS notice, got %+v", effects.Notice)
	}
	if effects.Notice.UserID != quote.UserID {
		t.Error("notice must target the quote owner")
	}
}

func TestDecideTransitionSeedUsesPatchedValues(t *testing.T) {
	quote := pendingQuote()
	total := int64(42000)
	timeline := 30
	currency := "USD"

	effects := DecideTransition(TransitionInput{
		Quote:        quote,
		NewStatus:    repository.StatusApproved,
		TotalPrice:   &total,
		TimelineDays: &timeline,
		Currency:     &currency,
	})

	if effects.CreateProject == nil {
		t.Fatal("expected a project seed")
	}
	if effects.CreateProject.Budget != 42000 {
		t.Errorf("project budget = %d, want the just-patched total", effects.CreateProject.Budget)
	}
	if effects.CreateProject.Currency != "USD" {
		t.Errorf("project currency = %q, want the just-patched currency", effects.CreateProject.Currency)
	}
	if effects.CreateProject.TimelineDays != 30 {
		t.Errorf("project timeline = %d, want the just-patched timeline", effects.CreateProject.TimelineDays)
	}
}

func TestDecideTransitionTitleFallsBackToName(t *testing.T) {
	quote := pendingQuote()
	quote.Company = nil

	effects := DecideTransition(TransitionInput{Quote: quote, NewStatus: repository.StatusApproved})
	if effects.CreateProject.Title != "Desarrollo Web para Laura Méndez" {
		t.Errorf("project title = %q, want name fallback", effects.CreateProject.Title)
	}

	quote.Name = ""
	effects = DecideTransition(TransitionInput{Quote: quote, NewStatus: repository.StatusApproved})
	if effects.CreateProject.Title != "Desarrollo Web para Cliente" {
		t.Errorf("project title = %q, want generic client fallback", effects.CreateProject.Title)
	}
}

func TestDecideTransitionApproveSkipsExistingProject(t *testing.T) {
	quote := pendingQuote()

	effects := DecideTransition(TransitionInput{
		Quote:      quote,
		NewStatus:  repository.StatusApproved,
		HasProject: true,
	})
	if effects.CreateProject != nil {
		t.Error("must not create a second project for the same quote")
	}
	if effects.Summary != "updated" {
		t.Errorf("summary = %q, want plain update", effects.Summary)
	}
	if effects.Notice == nil {
		t.Fatal("status still changed, owner should be notified")
	}
	if strings.Contains(effects.Notice.Message, "proyecto") {
		t.Errorf("notice = %q, must not claim a project was created", effects.Notice.Message)
	}
}

func TestDecideTransitionApprovalNoticeNamesProject(t *testing.T) {
	effects := DecideTransition(TransitionInput{Quote: pendingQuote(), NewStatus: repository.StatusApproved})
	if effects.Notice == nil {
		t.Fatal("expected a notice")
	}
	if !strings.Contains(effects.Notice.Message, `"Desarrollo Web para Acme SA"`) {
		t.Errorf("notice = %q, want the created project's title", effects.Notice.Message)
	}
}

func TestDecideTransitionSameStatusIsNoop(t *testing.T) {
	quote := pendingQuote()
	quote.Status = repository.StatusApproved

	effects := DecideTransition(TransitionInput{Quote: quote, NewStatus: repository.StatusApproved})
	if effects.StatusChanged {
		t.Error("same-status transition must not report a change")
	}
	if effects.CreateProject != nil {
		t.Error("same-status transition must not create a project")
	}
	if effects.Notice != nil {
		t.Error("same-status transition must not notify")
	}
}

func TestDecideTransitionNoticeTypes(t *testing.T) {
	cases := []struct {
		status repository.Status
		want   inapp.Type
	}{
		{repository.StatusApproved, inapp.TypeSuccess},
		{repository.StatusRejected, inapp.TypeWarning},
		{repository.StatusConverted, inapp.TypeSuccess},
		{repository.StatusPending, inapp.TypeInfo},
	}
	for _, tc := range cases {
		quote := pendingQuote()
		if tc.status == repository.StatusPending {
			quote.Status = repository.StatusRejected
		}
		effects := DecideTransition(TransitionInput{Quote: quote, NewStatus: tc.status})
		if effects.Notice == nil || effects.Notice.Type != tc.want {
			t.Errorf("transition to %s: notice = %+v, want type %s", tc.status, effects.Notice, tc.want)
		}
	}
}

func TestDecideTransitionAcceptsArbitraryStatus(t *testing.T) {
	effects := DecideTransition(TransitionInput{Quote: pendingQuote(), NewStatus: "ARCHIVED"})
	if !effects.StatusChanged {
		t.Error("unknown statuses are persisted like any other")
	}
	if effects.NewStatus != "ARCHIVED" {
		t.Errorf("newStatus = %s, want ARCHIVED", effects.NewStatus)
	}
	if effects.CreateProject != nil {
		t.Error("unknown statuses carry no side-effect actions")
	}
	if effects.Notice == nil || effects.Notice.Type != inapp.TypeInfo {
		t.Errorf("notice = %+v, want plain INFO", effects.Notice)
	}
	if !strings.Contains(effects.Notice.Message, "ARCHIVED") {
		t.Errorf("notice = %q, want the raw status named", effects.Notice.Message)
	}
}

func TestGenericProjectTitle(t *testing.T) {
	quote := pendingQuote()
	if got := GenericProjectTitle(quote); got != "Proyecto WEB - BUSINESS" {
		t.Errorf("GenericProjectTitle() = %q", got)
	}
}

func TestQuoteActionURL(t *testing.T) {
	id := uuid.New()
	if got := QuoteActionURL(id); !strings.HasSuffix(got, id.String()) || !strings.HasPrefix(got, "/dashboard/quotes/") {
		t.Errorf("QuoteActionURL() = %q", got)
	}
}
