// Package transport defines the wire-level request and response shapes for
// the quotes API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"agency_portal_backend/internal/pricing"
	"agency_portal_backend/internal/quotes/repository"
)

// SubmitQuoteRequest is the public quote form. Service, package, and add-on
// values are normalized server side; only contact data is strictly validated.
type SubmitQuoteRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"omitempty,max=32"`
	Company     string   `json:"company" validate:"omitempty,max=120"`
	ServiceType string   `json:"serviceType"`
	PackageType string   `json:"packageType"`
	AddonIDs    []string `json:"addons"`
	Currency    string   `json:"currency"`
	Message     string   `json:"message" validate:"omitempty,max=2000"`
}

// CalculateRequest prices a configuration without persisting it.
type CalculateRequest struct {
	ServiceType string   `json:"serviceType"`
	PackageType string   `json:"packageType"`
	AddonIDs    []string `json:"addons"`
	Currency    string   `json:"currency"`
}

// UpdateStatusRequest is the admin transition request. Every field is
// optional; the quote is patched with whatever is present alongside the
// status change.
type UpdateStatusRequest struct {
	Status       *string    `json:"status" validate:"omitempty,min=1,max=64"`
	AdminNotes   *string    `json:"adminNotes" validate:"omitempty,max=2000"`
	Notes        *string    `json:"notes" validate:"omitempty,max=2000"`
	TotalPrice   *int64     `json:"totalPrice"`
	ValidUntil   *time.Time `json:"validUntil"`
	ServiceType  *string    `json:"serviceType"`
	PackageType  *string    `json:"packageType"`
	TimelineDays *int       `json:"timeline"`
	Currency     *string    `json:"currency"`
}

// BulkStatusRequest applies one transition to many quotes.
type BulkStatusRequest struct {
	IDs        []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
	Status     string      `json:"status" validate:"required"`
	AdminNotes *string     `json:"adminNotes" validate:"omitempty,max=2000"`
}

// BulkConvertRequest converts approved quotes into projects.
type BulkConvertRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

// QuoteResponse is the full quote representation.
type QuoteResponse struct {
	ID           uuid.UUID              `json:"id"`
	UserID       uuid.UUID              `json:"userId"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Phone        *string                `json:"phone,omitempty"`
	Company      *string                `json:"company,omitempty"`
	ServiceType  string                 `json:"serviceType"`
	PackageType  string                 `json:"packageType"`
	Currency     string                 `json:"currency"`
	BasePrice    int64                  `json:"basePrice"`
	AddonsPrice  int64                  `json:"addonsPrice"`
	TotalPrice   int64                  `json:"totalPrice"`
	TimelineDays int                    `json:"timelineDays"`
	Features     []string               `json:"features"`
	Addons       []pricing.AppliedAddon `json:"addons"`
	Message      *string                `json:"message,omitempty"`
	AdminNotes   *string                `json:"adminNotes,omitempty"`
	Status       string                 `json:"status"`
	ValidUntil   time.Time              `json:"validUntil"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// ToQuoteResponse maps a stored quote to its wire form.
func ToQuoteResponse(q *repository.Quote) QuoteResponse {
	features := q.Features
	if features == nil {
		features = []string{}
	}
	addons := q.Addons
	if addons == nil {
		addons = []pricing.AppliedAddon{}
	}
	return QuoteResponse{
		ID:           q.ID,
		UserID:       q.UserID,
		Name:         q.Name,
		Email:        q.Email,
		Phone:        q.Phone,
		Company:      q.Company,
		ServiceType:  q.ServiceType.String(),
		PackageType:  q.PackageType.String(),
		Currency:     string(q.Currency),
		BasePrice:    q.BasePrice,
		AddonsPrice:  q.AddonsPrice,
		TotalPrice:   q.TotalPrice,
		TimelineDays: q.TimelineDays,
		Features:     features,
		Addons:       addons,
		Message:      q.Message,
		AdminNotes:   q.AdminNotes,
		Status:       string(q.Status),
		ValidUntil:   q.ValidUntil,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}
