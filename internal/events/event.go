// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"agency_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published when a new user successfully registers, either
// through the register endpoint or provisioned from an anonymous quote.
type UserRegistered struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Provisioned bool      `json:"provisioned"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteSubmitted is published when a new quote enters the system in PENDING.
type QuoteSubmitted struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ServiceType string    `json:"serviceType"`
	PackageType string    `json:"packageType"`
	TotalPrice  int64     `json:"totalPrice"`
	Currency    string    `json:"currency"`
}

func (e QuoteSubmitted) EventName() string { return "quotes.quote.submitted" }

// QuoteStatusChanged is published after an admin transition persisted a new
// status. ProjectID/ProjectTitle are set when the transition created a project.
type QuoteStatusChanged struct {
	BaseEvent
	QuoteID      uuid.UUID  `json:"quoteId"`
	UserID       uuid.UUID  `json:"userId"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	ServiceType  string     `json:"serviceType"`
	OldStatus    string     `json:"oldStatus"`
	NewStatus    string     `json:"newStatus"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	ProjectTitle string     `json:"projectTitle,omitempty"`
	TotalPrice   int64      `json:"totalPrice"`
	Currency     string     `json:"currency"`
}

func (e QuoteStatusChanged) EventName() string { return "quotes.quote.status_changed" }

// QuoteDeleted is published after a quote without a project was removed.
type QuoteDeleted struct {
	BaseEvent
	QuoteID uuid.UUID `json:"quoteId"`
	UserID  uuid.UUID `json:"userId"`
}

func (e QuoteDeleted) EventName() string { return "quotes.quote.deleted" }

// =============================================================================
// Contact Domain Events
// =============================================================================

// ContactMessageReceived is published when the public contact form is submitted.
type ContactMessageReceived struct {
	BaseEvent
	MessageID uuid.UUID `json:"messageId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

func (e ContactMessageReceived) EventName() string { return "contact.message.received" }
