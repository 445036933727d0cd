// Quote lifecycle rules. The decision function is pure: it inspects the
// current quote and the requested transition and returns the effects to
// apply. The service executes those effects against storage, notifications,
// and the event bus.
package service

import (
	"github.com/google/uuid"

	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/internal/quotes/repository"
)

// ProjectSeed describes the project to create for an approved quote. Budget
// and timeline come from the transition input, which may carry values patched
// in the same request.
type ProjectSeed struct {
	QuoteID      uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  string
	ServiceType  string
	Budget       int64
	Currency     string
	TimelineDays int
}

// NoticeSeed describes the in-app notification a transition produces.
type NoticeSeed struct {
	UserID    uuid.UUID
	Type      inapp.Type
	Title     string
	Message   string
	ActionURL string
}

// TransitionEffects is the full outcome of a lifecycle decision.
type TransitionEffects struct {
	StatusChanged bool
	NewStatus     repository.Status
	CreateProject *ProjectSeed
	Notice        *NoticeSeed
	Summary       string
}

// TransitionInput is the state the decision is made against. TotalPrice and
// TimelineDays override the quote's stored values when the same request
// patches them, so the project seed reflects the just-updated quote.
type TransitionInput struct {
	Quote        *repository.Quote
	NewStatus    repository.Status
	HasProject   bool
	TotalPrice   *int64
	TimelineDays *int
	Currency     *string
}

func (in TransitionInput) budget() int64 {
	if in.TotalPrice != nil {
		return *in.TotalPrice
	}
	return in.Quote.TotalPrice
}

func (in TransitionInput) timelineDays() int {
	if in.TimelineDays != nil {
		return *in.TimelineDays
	}
	return in.Quote.TimelineDays
}

func (in TransitionInput) currency() string {
	if in.Currency != nil {
		return *in.Currency
	}
	return string(in.Quote.Currency)
}

// DecideTransition applies the lifecycle rules:
//
//   - any target status string is accepted and persisted; only the known
//     ones carry side effects beyond the owner notification;
//   - a transition to the current status is a no-op (notes may still change);
//   - moving to APPROVED creates a project unless the quote was already
//     approved or a project already exists;
//   - every real transition notifies the quote's owner, with the severity
//     depending on the new status.
func DecideTransition(in TransitionInput) TransitionEffects {
	effects := TransitionEffects{NewStatus: in.NewStatus, Summary: "updated"}
	if in.Quote.Status == in.NewStatus {
		return effects
	}
	effects.StatusChanged = true

	if in.NewStatus == repository.StatusApproved && in.Quote.Status != repository.StatusApproved && !in.HasProject {
		effects.CreateProject = &ProjectSeed{
			QuoteID:      in.Quote.ID,
			UserID:       in.Quote.UserID,
			Title:        personalizedProjectTitle(in.Quote),
			Description:  projectDescription(in.Quote),
			ServiceType:  in.Quote.ServiceType.String(),
			Budget:       in.budget(),
			Currency:     in.currency(),
			TimelineDays: in.timelineDays(),
		}
		effects.Summary = "updated and project created"
	}

	projectTitle := ""
	if effects.CreateProject != nil {
		projectTitle = effects.CreateProject.Title
	}
	effects.Notice = transitionNotice(in.Quote, in.NewStatus, projectTitle)
	return effects
}

// personalizedProjectTitle names the project after the service and the
// client, preferring the company name.
func personalizedProjectTitle(q *repository.Quote) string {
	client := "Cliente"
	switch {
	case q.Company != nil && *q.Company != "":
		client = *q.Company
	case q.Name != "":
		client = q.Name
	}
	return q.ServiceType.Label() + " para " + client
}

// GenericProjectTitle is used by bulk conversion, which has no room for
// per-quote personalization.
func GenericProjectTitle(q *repository.Quote) string {
	return "Proyecto " + q.ServiceType.String() + " - " + q.PackageType.String()
}

func projectDescription(q *repository.Quote) string {
	desc := "Proyecto generado a partir de la cotización " + q.ID.String()
	if q.Message != nil && *q.Message != "" {
		desc += ". Solicitud original: " + *q.Message
	}
	return desc
}

// transitionNotice builds the owner notification. The approval message only
// claims a project was created when projectTitle names one.
func transitionNotice(q *repository.Quote, newStatus repository.Status, projectTitle string) *NoticeSeed {
	notice := &NoticeSeed{
		UserID:    q.UserID,
		ActionURL: QuoteActionURL(q.ID),
	}
	label := q.ServiceType.Label()

	switch newStatus {
	case repository.StatusApproved:
		notice.Type = inapp.TypeSuccess
		notice.Title = "Cotización aprobada"
		if projectTitle != "" {
			notice.Message = "Tu cotización de " + label + " fue aprobada. Hemos creado tu proyecto \"" + projectTitle + "\"."
		} else {
			notice.Message = "Tu cotización de " + label + " fue aprobada."
		}
	case repository.StatusRejected:
		notice.Type = inapp.TypeWarning
		notice.Title = "Cotización rechazada"
		notice.Message = "Tu cotización de " + label + " fue rechazada. Contáctanos para más detalles."
	case repository.StatusConverted:
		notice.Type = inapp.TypeSuccess
		notice.Title = "Cotización convertida"
		notice.Message = "Tu cotización de " + label + " se convirtió en proyecto."
	default:
		notice.Type = inapp.TypeInfo
		notice.Title = "Cotización actualizada"
		notice.Message = "Tu cotización de " + label + " cambió a estado " + string(newStatus) + "."
	}
	return notice
}

// QuoteActionURL is the portal path notifications link to. Deleting a quote
// removes every notification with this URL.
func QuoteActionURL(id uuid.UUID) string {
	return "/dashboard/quotes/" + id.String()
}
